package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-doc-ledger/internal/config"
	"go-doc-ledger/internal/handler"
	"go-doc-ledger/internal/logger"
	"go-doc-ledger/internal/middleware"
	"go-doc-ledger/internal/repository"
	"go-doc-ledger/internal/service"
	"go-doc-ledger/internal/ws"
	"go-doc-ledger/pkg/database"
	"go-doc-ledger/pkg/jwt"
	"go-doc-ledger/pkg/redisx"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatal(err)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log := logger.WithComponent("api")
	if cfg.JWTSecret != "" {
		jwt.SetSecretKey(cfg.JWTSecret)
	}

	// 2. Setup Database
	db, err := database.ConnectDB(database.Options{
		DSN:             cfg.DSN(),
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        cfg.DBLogLevel,
		StrictTenant:    true,
	})
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			log.Fatal(err)
		}
	}

	// 3. Seed privileges and roles
	if cfg.SeedReferenceDB {
		if err := repository.SeedReferenceData(ctx, db); err != nil {
			log.Warn("failed to seed reference data: " + err.Error())
		}
	}

	// 4. Optional redis for cross-instance rebuild locks
	var locker service.RebuildLocker
	if cfg.RedisAddress != "" {
		client, err := redisx.Connect(ctx, redisx.Options{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Attempts: 3,
		}, logger.WithComponent("redis"))
		if err != nil {
			log.Warn("redis unavailable; rebuilds rely on the database lock only: " + err.Error())
		} else {
			defer client.Close()
			locker = redisx.NewLocker(client, cfg.RebuildLockTTL, service.ErrLockNotObtained, logger.WithComponent("redis"))
		}
	}

	// 5. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 6. Dependency Injection (Wiring Layers)
	uow := repository.NewUnitOfWork(db)
	roleRepo := repository.NewRoleRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	idempotencyRepo := repository.NewIdempotencyRepo(db)

	numbering := service.NewNumberingService(uow)
	finalizer := service.NewFinalizationService(uow, numbering, service.FinalizationOptions{
		MaxDueBackdateDays: cfg.MaxDueBackdateDays,
		Notifier:           wsHub,
	})
	documentService := service.NewDocumentService(uow)
	ledgerService := service.NewLedgerService(uow)
	valuationService := service.NewValuationService(uow, locker)
	paymentService := service.NewPaymentService(uow)
	conditionService := service.NewPaymentConditionService(uow)
	policyService := service.NewPolicyService(uow)

	handlers := handler.Handlers{
		Documents: handler.NewDocumentHandler(finalizer, documentService, paymentService),
		Ledger:    handler.NewLedgerHandler(ledgerService),
		Valuation: handler.NewValuationHandler(valuationService),
		Policies:  handler.NewPolicyHandler(policyService),
		Payments:  handler.NewPaymentHandler(paymentService, conditionService),
		Roles:     handler.NewRoleHandler(roleRepo, privilegeRepo),
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: middleware.ErrorHandler,
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 8. Routes
	handler.RegisterRoutes(app, handlers, middleware.RequireAuth(roleRepo), middleware.Idempotency(idempotencyRepo))

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}, middleware.RequireAuth(roleRepo))
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		actor, ok := c.Locals(middleware.ActorLocalsKey).(service.Actor)
		if !ok {
			_ = c.Close()
			return
		}
		client := ws.Client{TenantID: actor.TenantID, Conn: c}
		if !wsHub.Register(client) {
			return
		}
		defer wsHub.Unregister(client)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("Server forced to shutdown: " + err.Error())
	}
	wsHub.Close()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("Server exited")
}

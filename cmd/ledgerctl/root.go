package main

import (
	"context"
	"fmt"

	"go-doc-ledger/internal/config"
	"go-doc-ledger/internal/logger"
	"go-doc-ledger/internal/model"
	"go-doc-ledger/internal/repository"
	"go-doc-ledger/internal/service"
	"go-doc-ledger/pkg/database"
	"go-doc-ledger/pkg/jwt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var version = "1.0.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operator CLI for the document ledger",
		Long: `ledgerctl runs maintenance tasks against the ledger database:
schema migration, valuation rebuilds, stock and numbering inspection,
and signing development tokens.

Configuration is read from the environment and .env (DATABASE_URL or DB_*).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("tenant", "", "Tenant ID")

	root.AddCommand(
		newMigrateCmd(),
		newRebuildYearCmd(),
		newStockCmd(),
		newNumberingCmd(),
		newTokenCmd(),
	)
	return root
}

// env is the wiring shared by commands that touch the database.
type env struct {
	cfg *config.Config
	db  *gorm.DB
	uow repository.UnitOfWork
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.LogLevel, "text")
	if cfg.JWTSecret != "" {
		jwt.SetSecretKey(cfg.JWTSecret)
	}

	db, err := database.ConnectDB(database.Options{
		DSN:             cfg.DSN(),
		MaxIdleConns:    1,
		MaxOpenConns:    4,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        cfg.DBLogLevel,
		StrictTenant:    true,
	})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, uow: repository.NewUnitOfWork(db)}, nil
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func tenantFlag(cmd *cobra.Command) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("tenant")
	if raw == "" {
		return uuid.Nil, fmt.Errorf("--tenant is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --tenant: %w", err)
	}
	return id, nil
}

// operator acts with the tenant admin privileges.
func operator(tenantID uuid.UUID) service.Actor {
	return service.Actor{
		TenantID:   tenantID,
		UserID:     "ledgerctl",
		Role:       model.RoleTenantAdmin,
		Privileges: model.DefaultRolePrivileges[model.RoleTenantAdmin],
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and seed roles and privileges",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			ctx := context.Background()
			if err := repository.Migrate(ctx, e.db); err != nil {
				return err
			}
			if err := repository.SeedReferenceData(ctx, e.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

package handler

import (
	"go-doc-ledger/internal/middleware"
	"go-doc-ledger/internal/model"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Documents *DocumentHandler
	Ledger    *LedgerHandler
	Valuation *ValuationHandler
	Policies  *PolicyHandler
	Payments  *PaymentHandler
	Roles     *RoleHandler
}

// RegisterRoutes mounts the /api/v1 group. auth must set the actor; idempotency may be nil.
func RegisterRoutes(app *fiber.App, h Handlers, auth, idempotency fiber.Handler) {
	api := app.Group("/api/v1")
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	protected := api.Group("", auth)
	if idempotency != nil {
		protected.Use(idempotency)
	}

	// Catalogue
	protected.Get("/me", h.Roles.GetMe)
	protected.Get("/roles", h.Roles.GetRoles)
	protected.Get("/privileges", h.Roles.GetPrivileges)

	// Documents
	protected.Post("/documents", middleware.RequirePrivilege(model.PrivDocumentFinalize), h.Documents.Finalize)
	protected.Get("/documents", middleware.RequirePrivilege(model.PrivDocumentView), h.Documents.ListDocuments)
	protected.Get("/documents/:id", middleware.RequirePrivilege(model.PrivDocumentView), h.Documents.GetDocument)
	protected.Patch("/documents/:id", middleware.RequirePrivilege(model.PrivDocumentUpdate), h.Documents.UpdateDocument)
	protected.Delete("/documents/:id", middleware.RequirePrivilege(model.PrivDocumentDelete), h.Documents.DeleteDocument)
	protected.Get("/documents/:id/installments", middleware.RequirePrivilege(model.PrivDocumentView), h.Documents.ListInstallments)

	// Payments
	protected.Post("/installments/:id/payments", middleware.RequirePrivilege(model.PrivPaymentRegister), h.Payments.RegisterPayment)
	protected.Get("/payment-conditions", h.Payments.ListConditions)
	protected.Get("/payment-conditions/:id", h.Payments.GetCondition)
	protected.Post("/payment-conditions", middleware.RequirePrivilege(model.PrivPolicyManage), h.Payments.CreateCondition)
	protected.Put("/payment-conditions/:id", middleware.RequirePrivilege(model.PrivPolicyManage), h.Payments.UpdateCondition)
	protected.Delete("/payment-conditions/:id", middleware.RequirePrivilege(model.PrivPolicyManage), h.Payments.DeactivateCondition)

	// Stock ledger
	protected.Get("/stock-movements", middleware.RequirePrivilege(model.PrivStockView), h.Ledger.ListMovements)
	protected.Post("/stock/adjustments", middleware.RequirePrivilege(model.PrivStockAdjust), h.Ledger.RecordAdjustment)
	protected.Post("/stock/transfers", middleware.RequirePrivilege(model.PrivStockAdjust), h.Ledger.RecordTransfer)
	protected.Get("/stock/:productId", middleware.RequirePrivilege(model.PrivStockView), h.Ledger.GetStock)
	protected.Get("/stock/:productId/warehouses", middleware.RequirePrivilege(model.PrivStockView), h.Ledger.GetStockByWarehouse)

	// Valuation
	protected.Post("/valuation/rebuild/:year", middleware.RequirePrivilege(model.PrivLedgerRebuild), h.Valuation.RebuildYear)
	protected.Get("/valuation/:year", middleware.RequirePrivilege(model.PrivValuationView), h.Valuation.ListStats)
	protected.Get("/valuation/:productId/:year", middleware.RequirePrivilege(model.PrivValuationView), h.Valuation.GetStat)

	// Document types
	protected.Get("/document-types", h.Policies.List)
	protected.Put("/document-types/:code", middleware.RequirePrivilege(model.PrivPolicyManage), h.Policies.Upsert)
}

package handler

import (
	"go-doc-ledger/internal/repository"
	"go-doc-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type LedgerHandler struct {
	service service.LedgerService
}

func NewLedgerHandler(s service.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: s}
}

// GetStock folds the movements of a product, optionally for one warehouse.
// GET /api/v1/stock/:productId?warehouse_id=
func (h *LedgerHandler) GetStock(c *fiber.Ctx) error {
	productID, err := uuidParam(c, "productId")
	if err != nil {
		return err
	}
	warehouseID, err := optionalUUIDQuery(c, "warehouse_id")
	if err != nil {
		return err
	}

	qty, err := h.service.CurrentStock(c.UserContext(), getActor(c), productID, warehouseID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"product_id":   productID,
		"warehouse_id": warehouseID,
		"quantity":     qty,
	})
}

// GET /api/v1/stock/:productId/warehouses
func (h *LedgerHandler) GetStockByWarehouse(c *fiber.Ctx) error {
	productID, err := uuidParam(c, "productId")
	if err != nil {
		return err
	}
	rows, err := h.service.StockByWarehouse(c.UserContext(), getActor(c), productID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"product_id": productID, "data": rows})
}

// GET /api/v1/stock-movements?product_id=&warehouse_id=&document_id=&type=&from=&to=&q=
func (h *LedgerHandler) ListMovements(c *fiber.Ctx) error {
	page, err := pagination(c)
	if err != nil {
		return err
	}
	filter := repository.MovementFilter{MovementType: c.Query("type"), Search: c.Query("q")}
	if filter.ProductID, err = optionalUUIDQuery(c, "product_id"); err != nil {
		return err
	}
	if filter.WarehouseID, err = optionalUUIDQuery(c, "warehouse_id"); err != nil {
		return err
	}
	if filter.DocumentID, err = optionalUUIDQuery(c, "document_id"); err != nil {
		return err
	}
	if filter.From, err = optionalDateQuery(c, "from"); err != nil {
		return err
	}
	if filter.To, err = optionalDateQuery(c, "to"); err != nil {
		return err
	}

	movements, total, err := h.service.ListMovements(c.UserContext(), getActor(c), filter, page)
	if err != nil {
		return err
	}
	return paged(c, movements, total, page)
}

// POST /api/v1/stock/adjustments
func (h *LedgerHandler) RecordAdjustment(c *fiber.Ctx) error {
	var input service.AdjustmentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	movement, err := h.service.RecordAdjustment(c.UserContext(), getActor(c), input)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(fiber.Map{"message": "Adjustment recorded", "data": movement})
}

// POST /api/v1/stock/transfers
func (h *LedgerHandler) RecordTransfer(c *fiber.Ctx) error {
	var input service.TransferInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	movements, err := h.service.RecordTransfer(c.UserContext(), getActor(c), input)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(fiber.Map{"message": "Transfer recorded", "data": movements})
}

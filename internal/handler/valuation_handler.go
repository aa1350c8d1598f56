package handler

import (
	"go-doc-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ValuationHandler struct {
	service service.ValuationService
}

func NewValuationHandler(s service.ValuationService) *ValuationHandler {
	return &ValuationHandler{service: s}
}

// GET /api/v1/valuation/:productId/:year
func (h *ValuationHandler) GetStat(c *fiber.Ctx) error {
	productID, err := uuidParam(c, "productId")
	if err != nil {
		return err
	}
	year, err := yearParam(c)
	if err != nil {
		return err
	}
	stat, err := h.service.GetStat(c.UserContext(), getActor(c), productID, year)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stat, "stock_quantity": stat.StockQuantity()})
}

// GET /api/v1/valuation/:year
func (h *ValuationHandler) ListStats(c *fiber.Ctx) error {
	year, err := yearParam(c)
	if err != nil {
		return err
	}
	stats, err := h.service.ListStats(c.UserContext(), getActor(c), year)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"year": year, "data": stats})
}

// RebuildYear recomputes every stat of the fiscal year from its documents.
// POST /api/v1/valuation/rebuild/:year
func (h *ValuationHandler) RebuildYear(c *fiber.Ctx) error {
	year, err := yearParam(c)
	if err != nil {
		return err
	}
	n, err := h.service.RebuildYear(c.UserContext(), getActor(c), year)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Valuation rebuilt", "year": year, "products": n})
}

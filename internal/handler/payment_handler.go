package handler

import (
	"go-doc-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	payments   service.PaymentService
	conditions service.PaymentConditionService
}

func NewPaymentHandler(p service.PaymentService, pc service.PaymentConditionService) *PaymentHandler {
	return &PaymentHandler{payments: p, conditions: pc}
}

type registerPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    Date            `json:"paid_at"`
	Reference string          `json:"reference"`
}

// POST /api/v1/installments/:id/payments
func (h *PaymentHandler) RegisterPayment(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req registerPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	view, err := h.payments.RegisterPayment(c.UserContext(), getActor(c), id, service.RegisterPaymentInput{
		Amount:    req.Amount,
		PaidAt:    req.PaidAt.Time(),
		Reference: req.Reference,
	})
	if err != nil {
		return err
	}
	return c.Status(201).JSON(fiber.Map{"message": "Payment registered", "data": view})
}

// GET /api/v1/payment-conditions?active=true
func (h *PaymentHandler) ListConditions(c *fiber.Ctx) error {
	conditions, err := h.conditions.List(c.UserContext(), getActor(c), c.QueryBool("active", false))
	if err != nil {
		return err
	}
	return c.JSON(conditions)
}

// GET /api/v1/payment-conditions/:id
func (h *PaymentHandler) GetCondition(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	pc, err := h.conditions.Get(c.UserContext(), getActor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(pc)
}

// POST /api/v1/payment-conditions
func (h *PaymentHandler) CreateCondition(c *fiber.Ctx) error {
	var input service.PaymentConditionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	pc, err := h.conditions.Create(c.UserContext(), getActor(c), input)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(fiber.Map{"message": "Payment condition created", "data": pc})
}

// PUT /api/v1/payment-conditions/:id
func (h *PaymentHandler) UpdateCondition(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var input service.PaymentConditionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	pc, err := h.conditions.Update(c.UserContext(), getActor(c), id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Payment condition updated", "data": pc})
}

// DELETE /api/v1/payment-conditions/:id
func (h *PaymentHandler) DeactivateCondition(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.conditions.Deactivate(c.UserContext(), getActor(c), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Payment condition deactivated"})
}

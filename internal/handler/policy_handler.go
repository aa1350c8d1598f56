package handler

import (
	"go-doc-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PolicyHandler struct {
	service service.PolicyService
}

func NewPolicyHandler(s service.PolicyService) *PolicyHandler {
	return &PolicyHandler{service: s}
}

// GET /api/v1/document-types
func (h *PolicyHandler) List(c *fiber.Ctx) error {
	policies, err := h.service.List(c.UserContext(), getActor(c))
	if err != nil {
		return err
	}
	return c.JSON(policies)
}

// Upsert creates or replaces the policy of a document type code.
// PUT /api/v1/document-types/:code
func (h *PolicyHandler) Upsert(c *fiber.Ctx) error {
	var input service.UpsertPolicyInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	input.Code = c.Params("code")

	policy, err := h.service.Upsert(c.UserContext(), getActor(c), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Document type saved", "data": policy})
}

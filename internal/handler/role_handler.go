package handler

import (
	"go-doc-ledger/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// RoleHandler exposes the role and privilege catalogue used to expand tokens.
type RoleHandler struct {
	roleRepo      repository.RoleRepository
	privilegeRepo repository.PrivilegeRepository
}

func NewRoleHandler(roleRepo repository.RoleRepository, privilegeRepo repository.PrivilegeRepository) *RoleHandler {
	return &RoleHandler{roleRepo: roleRepo, privilegeRepo: privilegeRepo}
}

// GetRoles returns all available roles
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.roleRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch roles"})
	}
	return c.JSON(roles)
}

// GetPrivileges lists all privilege codes
// GET /api/v1/privileges
func (h *RoleHandler) GetPrivileges(c *fiber.Ctx) error {
	privileges, err := h.privilegeRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
	}
	return c.JSON(privileges)
}

// GetMe echoes the authenticated caller
// GET /api/v1/me
func (h *RoleHandler) GetMe(c *fiber.Ctx) error {
	actor := getActor(c)
	return c.JSON(fiber.Map{
		"tenant_id":  actor.TenantID,
		"user_id":    actor.UserID,
		"role":       actor.Role,
		"privileges": actor.Privileges,
	})
}

package middleware

import (
	"strings"

	"go-doc-ledger/internal/repository"
	"go-doc-ledger/internal/service"
	"go-doc-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// ActorLocalsKey is the fiber locals key holding the service.Actor.
const ActorLocalsKey = "actor"

// ActorFrom returns the caller set by RequireAuth.
func ActorFrom(c *fiber.Ctx) (service.Actor, bool) {
	actor, ok := c.Locals(ActorLocalsKey).(service.Actor)
	return actor, ok
}

// SetActor is used by RequireAuth and by tests that bypass token parsing.
func SetActor(c *fiber.Ctx, actor service.Actor) {
	c.Locals(ActorLocalsKey, actor)
}

// RequireAuth is middleware that validates JWT token and sets the tenant actor in context
func RequireAuth(roleRepo repository.RoleRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		claims, err := jwt.ValidateToken(tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}

		privileges := claims.Privileges
		if len(privileges) == 0 && claims.Role != "" {
			// Tokens without an explicit grant get the role's seeded privileges.
			privileges, err = roleRepo.PrivilegeCodes(claims.Role)
			if err != nil {
				return c.Status(401).JSON(fiber.Map{"error": "Unknown role"})
			}
		}

		SetActor(c, service.Actor{
			TenantID:   claims.TenantID,
			UserID:     claims.UserID,
			Role:       claims.Role,
			Privileges: privileges,
		})
		return c.Next()
	}
}

// bearerToken reads "Bearer <token>" from the Authorization header, or the token query
// parameter for websocket upgrades where browsers cannot set headers.
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if t := c.Query("token"); t != "" {
			return t, true
		}
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}
		if !actor.Can(requiredPrivilege) {
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
			})
		}
		return c.Next()
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}
		for _, p := range requiredPrivileges {
			if actor.Can(p) {
				return c.Next()
			}
		}
		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		})
	}
}

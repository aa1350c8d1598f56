package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"go-doc-ledger/internal/logger"
	"go-doc-ledger/internal/model"
	"go-doc-ledger/internal/repository"

	"github.com/gofiber/fiber/v2"
)

const maxIdempotencyKeyLen = 128

// Idempotency replays the stored response for a repeated Idempotency-Key on mutating
// requests. A key reused with a different request, or still in flight, is a 409.
func Idempotency(repo repository.IdempotencyRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("Idempotency-Key"))
		if key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLen {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Idempotency-Key too long"})
		}

		actor, ok := ActorFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "auth context missing"})
		}

		path := c.OriginalURL()
		reqHash := requestHash(method, path, c.Body(), actor.TenantID.String(), actor.UserID)

		rec := &model.IdempotencyKey{
			TenantID:    actor.TenantID,
			Key:         key,
			RequestHash: reqHash,
			Method:      method,
			Path:        path,
			UserID:      actor.UserID,
		}
		stored, err := repo.Reserve(rec)
		if err != nil {
			logger.LogError("middleware", "Idempotency", "reserve", key, err)
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
		}

		if stored.RequestHash != reqHash {
			return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
		}
		if stored.ResponseStatus != 0 {
			c.Set("Idempotent-Replay", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(stored.ResponseStatus).Send(stored.ResponseBody)
		}
		if rec.ID == 0 || stored.ID != rec.ID {
			return fiber.NewError(fiber.StatusConflict, "request with this Idempotency-Key is still in progress")
		}

		if err := c.Next(); err != nil {
			release(repo, actor.TenantID.String(), rec)
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			release(repo, actor.TenantID.String(), rec)
			return nil
		}
		if err := repo.Complete(rec.TenantID, key, status, c.Response().Body()); err != nil {
			// the handler already succeeded; a lost record only disables the replay
			logger.LogError("middleware", "Idempotency", "complete", key, err)
		}
		return nil
	}
}

func release(repo repository.IdempotencyRepository, tenant string, rec *model.IdempotencyKey) {
	if err := repo.Release(rec.TenantID, rec.Key); err != nil {
		logger.LogError("middleware", "Idempotency", "release", tenant+"/"+rec.Key, err)
	}
}

// requestHash is sha256 over method|path|body|tenant|user.
func requestHash(method, path string, body []byte, tenant, user string) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	h.Write([]byte{'\n'})
	h.Write([]byte(tenant))
	h.Write([]byte{'\n'})
	h.Write([]byte(user))
	return hex.EncodeToString(h.Sum(nil))
}

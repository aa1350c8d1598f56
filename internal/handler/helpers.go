package handler

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go-doc-ledger/internal/middleware"
	"go-doc-ledger/internal/repository"
	"go-doc-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Date accepts "2006-01-02" or RFC 3339 in request bodies and renders as a date.
type Date time.Time

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	*d = Date(t)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format(dateLayout))
}

func (d Date) Time() time.Time {
	return time.Time(d)
}

func (d *Date) TimePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	return &t
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// getActor returns the caller set by the auth middleware. Unauthenticated requests
// get a zero Actor, which every service rejects.
func getActor(c *fiber.Ctx) service.Actor {
	actor, _ := middleware.ActorFrom(c)
	return actor
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

func optionalUUIDQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return &id, nil
}

func optionalDateQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name+", use YYYY-MM-DD")
	}
	return &t, nil
}

func yearParam(c *fiber.Ctx) (int, error) {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid year")
	}
	return year, nil
}

func pagination(c *fiber.Ctx) (repository.Pagination, error) {
	var p repository.Pagination
	if err := c.QueryParser(&p); err != nil {
		return p, fiber.NewError(fiber.StatusBadRequest, "Invalid pagination")
	}
	return p, nil
}

// paged is the list envelope shared by every paginated endpoint.
func paged(c *fiber.Ctx, data interface{}, total int64, p repository.Pagination) error {
	return c.JSON(fiber.Map{
		"data":      data,
		"total":     total,
		"page":      p.Offset()/p.Limit() + 1,
		"page_size": p.Limit(),
	})
}

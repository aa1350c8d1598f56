package handler

import (
	"strconv"

	"go-doc-ledger/internal/repository"
	"go-doc-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type DocumentHandler struct {
	finalizer service.FinalizationService
	documents service.DocumentService
	payments  service.PaymentService
}

func NewDocumentHandler(f service.FinalizationService, d service.DocumentService, p service.PaymentService) *DocumentHandler {
	return &DocumentHandler{finalizer: f, documents: d, payments: p}
}

type finalizeRequest struct {
	DocumentTypeCode   string              `json:"document_type_code"`
	Date               Date                `json:"date"`
	CounterpartyID     *uuid.UUID          `json:"counterparty_id"`
	MainWarehouseID    *uuid.UUID          `json:"main_warehouse_id"`
	Number             *int64              `json:"number"`
	PaymentConditionID *uuid.UUID          `json:"payment_condition_id"`
	Notes              string              `json:"notes"`
	Annotations        string              `json:"annotations"`
	Lines              []service.LineInput `json:"lines"`
}

func (r finalizeRequest) input() service.CreateDocumentInput {
	return service.CreateDocumentInput{
		DocumentTypeCode:   r.DocumentTypeCode,
		Date:               r.Date.Time(),
		CounterpartyID:     r.CounterpartyID,
		MainWarehouseID:    r.MainWarehouseID,
		Number:             r.Number,
		PaymentConditionID: r.PaymentConditionID,
		Notes:              r.Notes,
		Annotations:        r.Annotations,
		Lines:              r.Lines,
	}
}

type updateDocumentRequest struct {
	Notes              *string             `json:"notes"`
	Annotations        *string             `json:"annotations"`
	DocumentTypeCode   *string             `json:"document_type_code"`
	Date               *Date               `json:"date"`
	CounterpartyID     *uuid.UUID          `json:"counterparty_id"`
	MainWarehouseID    *uuid.UUID          `json:"main_warehouse_id"`
	Number             *int64              `json:"number"`
	PaymentConditionID *uuid.UUID          `json:"payment_condition_id"`
	Lines              []service.LineInput `json:"lines"`
}

// Finalize creates and finalizes a document in one step.
// POST /api/v1/documents
func (h *DocumentHandler) Finalize(c *fiber.Ctx) error {
	var req finalizeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	doc, err := h.finalizer.FinalizeWithRetry(c.UserContext(), getActor(c), req.input())
	if err != nil {
		return err
	}
	return c.Status(201).JSON(fiber.Map{"message": "Document finalized", "data": doc})
}

// GET /api/v1/documents/:id
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	doc, err := h.documents.GetDocument(c.UserContext(), getActor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

// GET /api/v1/documents?type=&year=&counterparty_id=&from=&to=&q=&page=&page_size=&sort=
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	page, err := pagination(c)
	if err != nil {
		return err
	}
	filter := repository.DocumentFilter{
		DocumentTypeCode: c.Query("type"),
		Search:           c.Query("q"),
	}
	if y := c.Query("year"); y != "" {
		if filter.FiscalYear, err = strconv.Atoi(y); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid year")
		}
	}
	if filter.CounterpartyID, err = optionalUUIDQuery(c, "counterparty_id"); err != nil {
		return err
	}
	if filter.From, err = optionalDateQuery(c, "from"); err != nil {
		return err
	}
	if filter.To, err = optionalDateQuery(c, "to"); err != nil {
		return err
	}

	docs, total, err := h.documents.ListDocuments(c.UserContext(), getActor(c), filter, page)
	if err != nil {
		return err
	}
	return paged(c, docs, total, page)
}

// UpdateDocument changes notes and annotations; any other field is rejected.
// PATCH /api/v1/documents/:id
func (h *DocumentHandler) UpdateDocument(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req updateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	doc, err := h.documents.UpdateDocument(c.UserContext(), getActor(c), id, service.UpdateDocumentInput{
		Notes:              req.Notes,
		Annotations:        req.Annotations,
		DocumentTypeCode:   req.DocumentTypeCode,
		Date:               req.Date.TimePtr(),
		CounterpartyID:     req.CounterpartyID,
		MainWarehouseID:    req.MainWarehouseID,
		Number:             req.Number,
		PaymentConditionID: req.PaymentConditionID,
		Lines:              req.Lines,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Document updated", "data": doc})
}

// DELETE /api/v1/documents/:id
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.documents.DeleteDocument(c.UserContext(), getActor(c), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Document deleted"})
}

// GET /api/v1/documents/:id/installments
func (h *DocumentHandler) ListInstallments(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	views, err := h.payments.ListInstallments(c.UserContext(), getActor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(views)
}

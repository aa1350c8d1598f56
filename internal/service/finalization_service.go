package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-doc-ledger/internal/logger"
	"go-doc-ledger/internal/model"
	"go-doc-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// EventDocumentFinalized is broadcast to the tenant after a finalization commits.
const EventDocumentFinalized = "document_finalized"

// Notifier fans events out to a tenant's connected clients.
type Notifier interface {
	NotifyTenant(tenantID uuid.UUID, event string, payload interface{})
}

type CreateDocumentInput struct {
	DocumentTypeCode   string      `json:"document_type_code" validate:"required,max=50"`
	Date               time.Time   `json:"date"`
	CounterpartyID     *uuid.UUID  `json:"counterparty_id"`
	MainWarehouseID    *uuid.UUID  `json:"main_warehouse_id"`
	Number             *int64      `json:"number" validate:"omitempty,min=1"`
	PaymentConditionID *uuid.UUID  `json:"payment_condition_id"`
	Notes              string      `json:"notes"`
	Annotations        string      `json:"annotations"`
	Lines              []LineInput `json:"lines" validate:"required,min=1,dive"`
}

type FinalizationService interface {
	Finalize(ctx context.Context, actor Actor, input CreateDocumentInput) (*model.Document, error)
	// FinalizeWithRetry runs Finalize again once when the first attempt hit a ConflictError.
	FinalizeWithRetry(ctx context.Context, actor Actor, input CreateDocumentInput) (*model.Document, error)
}

type FinalizationOptions struct {
	MaxDueBackdateDays int
	Notifier           Notifier
}

type finalizationService struct {
	uow                repository.UnitOfWork
	numbering          NumberingService
	notifier           Notifier
	maxDueBackdateDays int
	log                *logrus.Entry
}

func NewFinalizationService(uow repository.UnitOfWork, numbering NumberingService, opts FinalizationOptions) FinalizationService {
	if numbering == nil {
		numbering = NewNumberingService(uow)
	}
	return &finalizationService{
		uow:                uow,
		numbering:          numbering,
		notifier:           opts.Notifier,
		maxDueBackdateDays: opts.MaxDueBackdateDays,
		log:                logger.WithComponent("finalization"),
	}
}

func (s *finalizationService) FinalizeWithRetry(ctx context.Context, actor Actor, input CreateDocumentInput) (*model.Document, error) {
	doc, err := s.Finalize(ctx, actor, input)
	if err == nil || !errors.Is(err, ErrConflict) || input.Number != nil {
		return doc, err
	}
	s.log.WithFields(logrus.Fields{"tenant_id": actor.TenantID, "type": input.DocumentTypeCode}).
		Warn("ledger.finalize.retry")
	return s.Finalize(ctx, actor, input)
}

// Finalize turns the input into an immutable document in a single transaction:
// validation, counterparty snapshot, line amounts, numbering, stock movements,
// valuation and installments. Any failure rolls everything back.
func (s *finalizationService) Finalize(ctx context.Context, actor Actor, input CreateDocumentInput) (*model.Document, error) {
	const op = "Finalize"
	if err := actor.require(model.PrivDocumentFinalize); err != nil {
		return nil, err
	}
	if err := validateInput(op, input); err != nil {
		return nil, withContext(err, actor.TenantID, uuid.Nil)
	}
	if input.Date.IsZero() {
		return nil, withContext(validationError(op, "date", "is required"), actor.TenantID, uuid.Nil)
	}
	tenantID := actor.TenantID
	date := dateOnly(input.Date)
	year := date.Year()
	start := time.Now()

	var doc *model.Document
	err := s.uow.Transaction(scoped(ctx, tenantID), func(repos *repository.Repositories) error {
		if err := ensureTenantActive(repos, tenantID); err != nil {
			return err
		}
		policy, err := lookupPolicy(repos, tenantID, input.DocumentTypeCode)
		if err != nil {
			return err
		}
		if policy.ImpactsValuation {
			if err := repos.Locks.ValuationShared(tenantID, year); err != nil {
				return err
			}
		}

		draft, err := s.buildDocument(repos, actor, input, policy, date)
		if err != nil {
			return err
		}

		if input.Number != nil {
			err = s.numbering.Reserve(repos, tenantID, policy.NumeratorCode, year, *input.Number)
			draft.Number = *input.Number
		} else {
			draft.Number, err = s.numbering.NextNumber(repos, tenantID, policy.NumeratorCode, year)
		}
		if err != nil {
			return err
		}

		var locked map[uuid.UUID]*model.ProductAnnualStat
		if policy.ImpactsValuation {
			locked, err = lockStats(repos, tenantID, year, entryProducts(valuationEntries(draft)))
			if err != nil {
				return err
			}
		}
		if draft.PostingSeq, err = repos.Documents.NextPostingSeq(); err != nil {
			return err
		}

		if err := repos.Documents.Create(draft); err != nil {
			return err
		}
		if policy.MovesStock {
			if err := repos.Movements.Append(stockMovements(draft, policy, actor.UserID)); err != nil {
				return err
			}
		}
		if policy.ImpactsValuation {
			if err := applyDocumentValuation(repos, draft, valuationEntries(draft), locked); err != nil {
				return err
			}
		}
		doc = draft
		return nil
	})
	if err != nil {
		var le *LedgerError
		if !errors.As(err, &le) && repository.IsConflict(err) {
			err = conflictError(op, "", "concurrent finalization collided, retry the request", err)
		}
		err = withContext(err, tenantID, uuid.Nil)
		logger.LogError("finalization", op, "finalize aborted",
			logrus.Fields{"tenant_id": tenantID, "type": input.DocumentTypeCode}, err)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id":   tenantID,
		"document_id": doc.ID,
		"number":      doc.DisplayNumber(),
		"gross_total": doc.GrossTotal.String(),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	}).Info("ledger.finalize.done")

	if s.notifier != nil {
		s.notifier.NotifyTenant(tenantID, EventDocumentFinalized, finalizedEvent(doc))
	}
	return doc, nil
}

func finalizedEvent(doc *model.Document) map[string]interface{} {
	return map[string]interface{}{
		"id":                 doc.ID,
		"document_type_code": doc.DocumentTypeCode,
		"number":             doc.DisplayNumber(),
		"document_date":      doc.DocumentDate.Format("2006-01-02"),
		"gross_total":        doc.GrossTotal,
	}
}

// buildDocument validates references and computes every frozen field of the document
// before anything is written.
func (s *finalizationService) buildDocument(repos *repository.Repositories, actor Actor, input CreateDocumentInput, policy ResolvedPolicy, date time.Time) (*model.Document, error) {
	const op = "Finalize"
	tenantID := actor.TenantID

	doc := &model.Document{
		FiscalYear:         date.Year(),
		DocumentDate:       date,
		MainWarehouseID:    input.MainWarehouseID,
		PaymentConditionID: input.PaymentConditionID,
		Notes:              input.Notes,
		Annotations:        input.Annotations,
		Status:             model.DocumentFinalized,
	}
	doc.ID = uuid.New()
	doc.TenantID = tenantID
	doc.CreatedBy = actor.UserID
	doc.UpdatedBy = actor.UserID
	freezePolicy(doc, policy)

	if input.CounterpartyID != nil {
		cp, err := repos.Counterparties.FindByID(tenantID, *input.CounterpartyID)
		if repository.IsNotFound(err) {
			return nil, validationError(op, "counterparty_id", "counterparty does not belong to the tenant")
		}
		if err != nil {
			return nil, err
		}
		doc.CounterpartyID = &cp.ID
		doc.CounterpartyName = cp.Name
		doc.CounterpartyVatNumber = cp.VatNumber
		doc.CounterpartyFiscalCode = cp.FiscalCode
		doc.CounterpartyAddress = datatypes.NewJSONType(cp.Address())
	}

	if input.MainWarehouseID != nil {
		if _, err := findWarehouse(repos, op, "main_warehouse_id", tenantID, *input.MainWarehouseID); err != nil {
			return nil, err
		}
	}

	products, err := lineProducts(repos, tenantID, input.Lines)
	if err != nil {
		return nil, err
	}

	checkedWarehouses := make(map[uuid.UUID]bool)
	doc.Lines = make([]model.DocumentLine, 0, len(input.Lines))
	for i, in := range input.Lines {
		var product *model.Product
		if in.ProductID != nil {
			product = products[*in.ProductID]
		}
		if err := checkLine(i, in, product); err != nil {
			return nil, err
		}

		line := model.DocumentLine{
			DocumentID:  doc.ID,
			Position:    i + 1,
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			VatRate:     in.VatRate,
			WarehouseID: in.WarehouseID,
		}
		line.TenantID = tenantID
		if product != nil {
			id := product.ID
			line.ProductID = &id
			line.ProductCode = product.Code
			if line.Description == "" {
				line.Description = product.Description
			}
		}

		if policy.MovesStock && product != nil {
			warehouseID, err := resolveLineWarehouse(i, in, product, input.MainWarehouseID)
			if err != nil {
				return nil, err
			}
			line.WarehouseID = &warehouseID
		}
		if line.WarehouseID != nil && !checkedWarehouses[*line.WarehouseID] {
			if _, err := findWarehouse(repos, op, fmt.Sprintf("lines[%d].warehouse_id", i), tenantID, *line.WarehouseID); err != nil {
				return nil, err
			}
			checkedWarehouses[*line.WarehouseID] = true
		}

		amounts := ComputeLineAmounts(in.Quantity, in.UnitPrice, in.VatRate)
		line.NetAmount = amounts.Net
		line.VatAmount = amounts.Vat
		line.GrossAmount = amounts.Gross
		doc.Lines = append(doc.Lines, line)
	}

	totals := DocumentTotals(doc.Lines)
	doc.NetTotal = totals.Net
	doc.VatTotal = totals.Vat
	doc.GrossTotal = totals.Gross

	if input.PaymentConditionID != nil {
		cond, err := repos.PaymentConditions.FindByID(tenantID, *input.PaymentConditionID)
		if repository.IsNotFound(err) {
			return nil, validationError(op, "payment_condition_id", "payment condition does not belong to the tenant")
		}
		if err != nil {
			return nil, err
		}
		if !cond.IsActive {
			return nil, validationError(op, "payment_condition_id", fmt.Sprintf("payment condition '%s' is inactive", cond.Name))
		}
		installments, err := ExpandInstallments(cond, date, doc.GrossTotal, s.maxDueBackdateDays)
		if err != nil {
			return nil, err
		}
		for i := range installments {
			installments[i].TenantID = tenantID
			installments[i].DocumentID = doc.ID
			installments[i].CreatedBy = actor.UserID
		}
		doc.Installments = installments
	}
	return doc, nil
}

// lineProducts loads the products named by lines; a product outside the tenant is a validation error.
func lineProducts(repos *repository.Repositories, tenantID uuid.UUID, lines []LineInput) (map[uuid.UUID]*model.Product, error) {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, l := range lines {
		if l.ProductID != nil && !seen[*l.ProductID] {
			seen[*l.ProductID] = true
			ids = append(ids, *l.ProductID)
		}
	}
	found, err := repos.Products.FindByIDs(tenantID, ids)
	if err != nil {
		return nil, err
	}
	products := make(map[uuid.UUID]*model.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}
	for i, l := range lines {
		if l.ProductID != nil && products[*l.ProductID] == nil {
			return nil, validationError("Finalize", fmt.Sprintf("lines[%d].product_id", i), "product does not belong to the tenant")
		}
	}
	return products, nil
}

// stockMovements builds one movement per product line, signed by the policy.
func stockMovements(doc *model.Document, policy ResolvedPolicy, userID string) []model.StockMovement {
	movements := make([]model.StockMovement, 0, len(doc.Lines))
	sign := decimalSign(policy.OperationSign)
	docID := doc.ID
	for _, l := range doc.Lines {
		if l.ProductID == nil || l.WarehouseID == nil {
			continue
		}
		movements = append(movements, model.StockMovement{
			TenantID:       doc.TenantID,
			ProductID:      *l.ProductID,
			WarehouseID:    *l.WarehouseID,
			SignedQuantity: l.Quantity.Mul(sign),
			MovementType:   policy.MovementType,
			DocumentID:     &docID,
			DocumentNumber: doc.DisplayNumber(),
			MovedAt:        doc.DocumentDate,
			CreatedBy:      userID,
		})
	}
	return movements
}

func decimalSign(sign int) decimal.Decimal {
	return decimal.NewFromInt(int64(sign))
}

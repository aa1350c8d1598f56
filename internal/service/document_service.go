package service

import (
	"context"
	"time"

	"go-doc-ledger/internal/logger"
	"go-doc-ledger/internal/model"
	"go-doc-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UpdateDocumentInput edits a finalized document. Only Notes and Annotations are
// accepted; any other field set is refused.
type UpdateDocumentInput struct {
	Notes       *string `json:"notes"`
	Annotations *string `json:"annotations"`

	DocumentTypeCode   *string     `json:"document_type_code"`
	Date               *time.Time  `json:"date"`
	CounterpartyID     *uuid.UUID  `json:"counterparty_id"`
	MainWarehouseID    *uuid.UUID  `json:"main_warehouse_id"`
	Number             *int64      `json:"number"`
	PaymentConditionID *uuid.UUID  `json:"payment_condition_id"`
	Lines              []LineInput `json:"lines"`
}

func (in UpdateDocumentInput) touchesFrozenFields() bool {
	return in.DocumentTypeCode != nil || in.Date != nil || in.CounterpartyID != nil ||
		in.MainWarehouseID != nil || in.Number != nil || in.PaymentConditionID != nil ||
		in.Lines != nil
}

type DocumentService interface {
	GetDocument(ctx context.Context, actor Actor, id uuid.UUID) (*model.Document, error)
	ListDocuments(ctx context.Context, actor Actor, filter repository.DocumentFilter, page repository.Pagination) ([]model.Document, int64, error)
	UpdateDocument(ctx context.Context, actor Actor, id uuid.UUID, input UpdateDocumentInput) (*model.Document, error)
	// DeleteDocument soft-deletes a document. Its stock effect is reversed with
	// compensating movements and the affected stats are re-derived; the number stays taken.
	DeleteDocument(ctx context.Context, actor Actor, id uuid.UUID) error
}

type documentService struct {
	uow repository.UnitOfWork
	log *logrus.Entry
}

func NewDocumentService(uow repository.UnitOfWork) DocumentService {
	return &documentService{uow: uow, log: logger.WithComponent("documents")}
}

func (s *documentService) GetDocument(ctx context.Context, actor Actor, id uuid.UUID) (*model.Document, error) {
	if err := actor.require(model.PrivDocumentView); err != nil {
		return nil, err
	}
	doc, err := s.uow.Read(scoped(ctx, actor.TenantID)).Documents.FindByID(actor.TenantID, id)
	if repository.IsNotFound(err) {
		return nil, ErrNotFound
	}
	return doc, err
}

func (s *documentService) ListDocuments(ctx context.Context, actor Actor, filter repository.DocumentFilter, page repository.Pagination) ([]model.Document, int64, error) {
	if err := actor.require(model.PrivDocumentView); err != nil {
		return nil, 0, err
	}
	return s.uow.Read(scoped(ctx, actor.TenantID)).Documents.List(actor.TenantID, filter, page)
}

func (s *documentService) UpdateDocument(ctx context.Context, actor Actor, id uuid.UUID, input UpdateDocumentInput) (*model.Document, error) {
	const op = "UpdateDocument"
	if err := actor.require(model.PrivDocumentUpdate); err != nil {
		return nil, err
	}
	if input.touchesFrozenFields() {
		e := newLedgerError(ErrValidation, op, "", "finalized documents are immutable, issue a corrective document", ErrDocumentFinalized)
		return nil, withContext(e, actor.TenantID, id)
	}

	fields := map[string]interface{}{"updated_by": actor.UserID}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}
	if input.Annotations != nil {
		fields["annotations"] = *input.Annotations
	}

	var doc *model.Document
	err := s.uow.Transaction(scoped(ctx, actor.TenantID), func(repos *repository.Repositories) error {
		if err := ensureTenantActive(repos, actor.TenantID); err != nil {
			return err
		}
		if err := repos.Documents.UpdateMetadata(actor.TenantID, id, fields); err != nil {
			if repository.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		found, err := repos.Documents.FindByID(actor.TenantID, id)
		if err != nil {
			return err
		}
		doc = found
		return nil
	})
	if err != nil {
		return nil, withContext(err, actor.TenantID, id)
	}
	return doc, nil
}

func (s *documentService) DeleteDocument(ctx context.Context, actor Actor, id uuid.UUID) error {
	const op = "DeleteDocument"
	if err := actor.require(model.PrivDocumentDelete); err != nil {
		return err
	}
	tenantID := actor.TenantID

	err := s.uow.Transaction(scoped(ctx, tenantID), func(repos *repository.Repositories) error {
		if err := ensureTenantActive(repos, tenantID); err != nil {
			return err
		}
		doc, err := repos.Documents.FindByID(tenantID, id)
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var locked map[uuid.UUID]*model.ProductAnnualStat
		if doc.PolicyImpactsValuation {
			if err := repos.Locks.ValuationShared(tenantID, doc.FiscalYear); err != nil {
				return err
			}
			locked, err = lockStats(repos, tenantID, doc.FiscalYear, entryProducts(valuationEntries(doc)))
			if err != nil {
				return err
			}
		}

		if err := repos.Documents.SoftDelete(tenantID, id, actor.UserID); err != nil {
			return err
		}
		if doc.PolicyMovesStock {
			if err := repos.Movements.Append(reversalMovements(doc, actor.UserID)); err != nil {
				return err
			}
		}
		for _, productID := range entryProducts(valuationEntries(doc)) {
			stat, ok := locked[productID]
			if !ok {
				continue
			}
			if err := replayProductYear(repos, stat); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return withContext(err, tenantID, id)
	}

	s.log.WithFields(logrus.Fields{"tenant_id": tenantID, "document_id": id, "user_id": actor.UserID}).
		Info("ledger.document.deleted")
	return nil
}

// reversalMovements compensates every movement the document appended.
func reversalMovements(doc *model.Document, userID string) []model.StockMovement {
	policy := frozenPolicy(doc)
	policy.OperationSign = -doc.PolicyOperationSign
	policy.MovementType = model.MovementAdjustment

	movements := stockMovements(doc, policy, userID)
	now := time.Now().UTC()
	for i := range movements {
		movements[i].MovedAt = now
		movements[i].Notes = "reversal of " + doc.DisplayNumber()
	}
	return movements
}

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
	"github.com/sirupsen/logrus"
)

var ErrLockNotObtained = errors.New("lock not obtained")

// RebuildLocker serializes rebuilds across instances before they queue on the database lock.
type RebuildLocker interface {
	// Obtain returns ErrLockNotObtained when another holder has the key.
	Obtain(ctx context.Context, key string) (release func(), err error)
}

type noopLocker struct{}

func (noopLocker) Obtain(ctx context.Context, key string) (func(), error) {
	return func() {}, nil
}

type ValuationService interface {
	RebuildYear(ctx context.Context, actor Actor, year int) (int, error)
	GetStat(ctx context.Context, actor Actor, productID uuid.UUID, year int) (*model.ProductAnnualStat, error)
	ListStats(ctx context.Context, actor Actor, year int) ([]model.ProductAnnualStat, error)
}

type valuationService struct {
	uow    repository.UnitOfWork
	locker RebuildLocker
	log    *logrus.Entry
}

func NewValuationService(uow repository.UnitOfWork, locker RebuildLocker) ValuationService {
	if locker == nil {
		locker = noopLocker{}
	}
	return &valuationService{
		uow:    uow,
		locker: locker,
		log:    logger.WithComponent("valuation"),
	}
}

func rebuildLockKey(tenantID uuid.UUID, year int) string {
	return fmt.Sprintf("ledger:rebuild:%s:%d", tenantID, year)
}

// RebuildYear deletes the tenant's stats for year and replays every valuation-impacting
// document of that year in (date, posting) order. It holds the (tenant, year) lock
// exclusively so no finalization of that year interleaves. Running it twice yields
// identical rows.
func (s *valuationService) RebuildYear(ctx context.Context, actor Actor, year int) (int, error) {
	const op = "RebuildYear"
	if err := actor.require(model.PrivLedgerRebuild); err != nil {
		return 0, err
	}
	if year < 1900 || year > 9999 {
		return 0, validationError(op, "year", "out of range")
	}
	tenantID := actor.TenantID
	ctx = scoped(ctx, tenantID)

	release, err := s.locker.Obtain(ctx, rebuildLockKey(tenantID, year))
	if errors.Is(err, ErrLockNotObtained) {
		return 0, withContext(conflictError(op, "year", "a rebuild of this year is already running", err), tenantID, uuid.Nil)
	}
	if err != nil {
		return 0, err
	}
	defer release()

	start := time.Now()
	s.log.WithFields(logrus.Fields{"tenant_id": tenantID, "year": year, "user_id": actor.UserID}).Info("valuation.rebuild.start")

	processed := 0
	err = s.uow.Transaction(ctx, func(repos *repository.Repositories) error {
		if err := ensureTenantActive(repos, tenantID); err != nil {
			return err
		}
		if err := repos.Locks.ValuationExclusive(tenantID, year); err != nil {
			return err
		}
		if err := repos.Stats.DeleteYear(tenantID, year); err != nil {
			return err
		}

		docs, err := repos.Documents.FindForValuation(tenantID, year, nil)
		if err != nil {
			return err
		}
		if err := checkReplayable(repos, tenantID, docs); err != nil {
			return err
		}

		folded := FoldDocuments(tenantID, year, docs, nil)
		ids := make([]uuid.UUID, 0, len(folded))
		for id := range folded {
			ids = append(ids, id)
		}
		sortIDs(ids)
		rows := make([]model.ProductAnnualStat, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, *folded[id])
		}
		if err := repos.Stats.CreateBatch(rows); err != nil {
			return err
		}
		processed = len(docs)
		return nil
	})
	if err != nil {
		err = withContext(err, tenantID, uuid.Nil)
		logger.LogError("valuation", op, "rebuild aborted", logrus.Fields{"tenant_id": tenantID, "year": year}, err)
		return 0, err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id":           tenantID,
		"year":                year,
		"documents_processed": processed,
		"elapsed_ms":          time.Since(start).Milliseconds(),
	}).Info("valuation.rebuild.end")
	return processed, nil
}

// checkReplayable fails the rebuild when a document's type or product no longer exists.
func checkReplayable(repos *repository.Repositories, tenantID uuid.UUID, docs []model.Document) error {
	const op = "RebuildYear"
	policies := make(map[string]bool)
	var productIDs []uuid.UUID
	seenProducts := make(map[uuid.UUID]bool)

	for i := range docs {
		doc := &docs[i]
		if doc.PolicyOperationSign != model.SignInbound && doc.PolicyOperationSign != model.SignOutbound {
			e := consistencyError(op, "policy_operation_sign", fmt.Sprintf("document has operation sign %d", doc.PolicyOperationSign))
			e.DocumentID = doc.ID
			return e
		}
		if _, checked := policies[doc.DocumentTypeCode]; !checked {
			_, err := repos.Policies.FindByCode(tenantID, doc.DocumentTypeCode)
			if err != nil && !repository.IsNotFound(err) {
				return err
			}
			policies[doc.DocumentTypeCode] = err == nil
		}
		if !policies[doc.DocumentTypeCode] {
			e := consistencyError(op, "document_type_code", fmt.Sprintf("document type '%s' no longer exists", doc.DocumentTypeCode))
			e.DocumentID = doc.ID
			return e
		}
		for _, l := range doc.Lines {
			if l.ProductID != nil && !seenProducts[*l.ProductID] {
				seenProducts[*l.ProductID] = true
				productIDs = append(productIDs, *l.ProductID)
			}
		}
	}

	products, err := repos.Products.FindByIDs(tenantID, productIDs)
	if err != nil {
		return err
	}
	existing := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		existing[p.ID] = true
	}
	for i := range docs {
		for _, l := range docs[i].Lines {
			if l.ProductID != nil && !existing[*l.ProductID] {
				e := consistencyError(op, fmt.Sprintf("lines[%d].product_id", l.Position), fmt.Sprintf("product %s no longer exists", *l.ProductID))
				e.DocumentID = docs[i].ID
				return e
			}
		}
	}
	return nil
}

func (s *valuationService) GetStat(ctx context.Context, actor Actor, productID uuid.UUID, year int) (*model.ProductAnnualStat, error) {
	if err := actor.require(model.PrivValuationView); err != nil {
		return nil, err
	}
	stat, err := s.uow.Read(scoped(ctx, actor.TenantID)).Stats.Find(actor.TenantID, productID, year)
	if repository.IsNotFound(err) {
		return nil, ErrNotFound
	}
	return stat, err
}

func (s *valuationService) ListStats(ctx context.Context, actor Actor, year int) ([]model.ProductAnnualStat, error) {
	if err := actor.require(model.PrivValuationView); err != nil {
		return nil, err
	}
	return s.uow.Read(scoped(ctx, actor.TenantID)).Stats.FindYear(actor.TenantID, year)
}

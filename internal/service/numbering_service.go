package service

import (
	"context"
	"fmt"

	"go-doc-ledger/internal/repository"

	"github.com/google/uuid"
)

// NumberingService issues document numbers per (tenant, numerator, year).
// NextNumber and Reserve must run on transaction-bound repositories; the numerator row
// stays locked until that transaction ends.
type NumberingService interface {
	NextNumber(repos *repository.Repositories, tenantID uuid.UUID, numeratorCode string, year int) (int64, error)
	Reserve(repos *repository.Repositories, tenantID uuid.UUID, numeratorCode string, year int, number int64) error
	Peek(ctx context.Context, tenantID uuid.UUID, numeratorCode string, year int) (int64, error)
}

type numberingService struct {
	uow repository.UnitOfWork
}

func NewNumberingService(uow repository.UnitOfWork) NumberingService {
	return &numberingService{uow: uow}
}

func (s *numberingService) NextNumber(repos *repository.Repositories, tenantID uuid.UUID, numeratorCode string, year int) (int64, error) {
	const op = "NextNumber"
	numerator, err := repos.Numerators.LockForUpdate(tenantID, numeratorCode, year)
	if err != nil {
		return 0, err
	}

	next := numerator.LastNumber + 1
	taken, err := repos.Documents.NumberTaken(tenantID, numeratorCode, year, next)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, conflictError(op, "number",
			fmt.Sprintf("number %d of %s/%d is already used", next, numeratorCode, year), nil)
	}

	if err := repos.Numerators.SetLastNumber(numerator, next); err != nil {
		return 0, err
	}
	return next, nil
}

// Reserve claims a manually chosen number. A number above the counter advances it
// so later automatic numbers cannot collide.
func (s *numberingService) Reserve(repos *repository.Repositories, tenantID uuid.UUID, numeratorCode string, year int, number int64) error {
	const op = "ReserveNumber"
	if number < 1 {
		return validationError(op, "number", "must be a positive integer")
	}

	numerator, err := repos.Numerators.LockForUpdate(tenantID, numeratorCode, year)
	if err != nil {
		return err
	}

	taken, err := repos.Documents.NumberTaken(tenantID, numeratorCode, year, number)
	if err != nil {
		return err
	}
	if taken {
		return conflictError(op, "number",
			fmt.Sprintf("number %d of %s/%d is already used", number, numeratorCode, year), nil)
	}

	if number > numerator.LastNumber {
		return repos.Numerators.SetLastNumber(numerator, number)
	}
	return nil
}

// Peek returns the number the next automatic finalization would get.
func (s *numberingService) Peek(ctx context.Context, tenantID uuid.UUID, numeratorCode string, year int) (int64, error) {
	last, err := s.uow.Read(scoped(ctx, tenantID)).Numerators.Peek(tenantID, numeratorCode, year)
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

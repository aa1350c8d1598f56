package service

import (
	"context"

	"go-doc-ledger/internal/model"
	"go-doc-ledger/internal/repository"

	"github.com/google/uuid"
)

type PaymentConditionInput struct {
	Name           string `json:"name" validate:"required,max=255"`
	PaymentTypeID  string `json:"payment_type_id" validate:"max=50"`
	DaysToFirstDue int    `json:"days_to_first_due"`
	GapBetweenDues int    `json:"gap_between_dues"`
	NumberOfDues   int    `json:"number_of_dues" validate:"min=1,max=24"`
	IsEndOfMonth   bool   `json:"is_end_of_month"`
}

type PaymentConditionService interface {
	Create(ctx context.Context, actor Actor, input PaymentConditionInput) (*model.PaymentCondition, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, input PaymentConditionInput) (*model.PaymentCondition, error)
	Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.PaymentCondition, error)
	List(ctx context.Context, actor Actor, activeOnly bool) ([]model.PaymentCondition, error)
}

type paymentConditionService struct {
	uow repository.UnitOfWork
}

func NewPaymentConditionService(uow repository.UnitOfWork) PaymentConditionService {
	return &paymentConditionService{uow: uow}
}

func (s *paymentConditionService) Create(ctx context.Context, actor Actor, input PaymentConditionInput) (*model.PaymentCondition, error) {
	if err := actor.require(model.PrivPolicyManage); err != nil {
		return nil, err
	}
	if err := validateInput("CreatePaymentCondition", input); err != nil {
		return nil, err
	}

	condition := &model.PaymentCondition{IsActive: true}
	condition.TenantID = actor.TenantID
	condition.CreatedBy = actor.UserID
	applyConditionInput(condition, input, actor.UserID)

	err := s.uow.Transaction(scoped(ctx, actor.TenantID), func(repos *repository.Repositories) error {
		if err := ensureTenantActive(repos, actor.TenantID); err != nil {
			return err
		}
		return repos.PaymentConditions.Create(condition)
	})
	if err != nil {
		return nil, withContext(err, actor.TenantID, uuid.Nil)
	}
	return condition, nil
}

// Update edits a condition. Installments already generated are not touched.
func (s *paymentConditionService) Update(ctx context.Context, actor Actor, id uuid.UUID, input PaymentConditionInput) (*model.PaymentCondition, error) {
	if err := actor.require(model.PrivPolicyManage); err != nil {
		return nil, err
	}
	if err := validateInput("UpdatePaymentCondition", input); err != nil {
		return nil, err
	}

	var condition *model.PaymentCondition
	err := s.uow.Transaction(scoped(ctx, actor.TenantID), func(repos *repository.Repositories) error {
		if err := ensureTenantActive(repos, actor.TenantID); err != nil {
			return err
		}
		found, err := repos.PaymentConditions.FindByID(actor.TenantID, id)
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		applyConditionInput(found, input, actor.UserID)
		condition = found
		return repos.PaymentConditions.Update(found)
	})
	if err != nil {
		return nil, withContext(err, actor.TenantID, uuid.Nil)
	}
	return condition, nil
}

func (s *paymentConditionService) Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := actor.require(model.PrivPolicyManage); err != nil {
		return err
	}
	return s.uow.Transaction(scoped(ctx, actor.TenantID), func(repos *repository.Repositories) error {
		condition, err := repos.PaymentConditions.FindByID(actor.TenantID, id)
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		condition.IsActive = false
		condition.UpdatedBy = actor.UserID
		return repos.PaymentConditions.Update(condition)
	})
}

func (s *paymentConditionService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.PaymentCondition, error) {
	if err := actor.require(model.PrivDocumentView); err != nil {
		return nil, err
	}
	condition, err := s.uow.Read(scoped(ctx, actor.TenantID)).PaymentConditions.FindByID(actor.TenantID, id)
	if repository.IsNotFound(err) {
		return nil, ErrNotFound
	}
	return condition, err
}

func (s *paymentConditionService) List(ctx context.Context, actor Actor, activeOnly bool) ([]model.PaymentCondition, error) {
	if err := actor.require(model.PrivDocumentView); err != nil {
		return nil, err
	}
	return s.uow.Read(scoped(ctx, actor.TenantID)).PaymentConditions.FindAll(actor.TenantID, activeOnly)
}

func applyConditionInput(c *model.PaymentCondition, input PaymentConditionInput, userID string) {
	c.Name = input.Name
	c.PaymentTypeID = input.PaymentTypeID
	c.DaysToFirstDue = input.DaysToFirstDue
	c.GapBetweenDues = input.GapBetweenDues
	c.NumberOfDues = input.NumberOfDues
	c.IsEndOfMonth = input.IsEndOfMonth
	c.UpdatedBy = userID
}

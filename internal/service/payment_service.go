package service

import (
	"context"
	"fmt"
	"time"

	"go-doc-ledger/internal/model"
	"go-doc-ledger/internal/repository"
	"go-doc-ledger/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentView is an installment with its derived payment status.
type InstallmentView struct {
	model.Installment
	Paid        decimal.Decimal         `json:"paid"`
	Outstanding decimal.Decimal         `json:"outstanding"`
	Status      model.InstallmentStatus `json:"status"`
}

func newInstallmentView(inst model.Installment, paid decimal.Decimal) InstallmentView {
	outstanding := inst.Amount.Sub(paid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return InstallmentView{
		Installment: inst,
		Paid:        paid,
		Outstanding: outstanding,
		Status:      InstallmentStatus(inst.Amount, paid),
	}
}

type RegisterPaymentInput struct {
	Amount    decimal.Decimal `json:"amount" validate:"decimal_gt0,decimal_scale=2"`
	PaidAt    time.Time       `json:"paid_at" validate:"required"`
	Reference string          `json:"reference" validate:"max=255"`
}

type PaymentService interface {
	ListInstallments(ctx context.Context, actor Actor, documentID uuid.UUID) ([]InstallmentView, error)
	RegisterPayment(ctx context.Context, actor Actor, installmentID uuid.UUID, input RegisterPaymentInput) (*InstallmentView, error)
}

type paymentService struct {
	uow repository.UnitOfWork
}

func NewPaymentService(uow repository.UnitOfWork) PaymentService {
	return &paymentService{uow: uow}
}

func (s *paymentService) ListInstallments(ctx context.Context, actor Actor, documentID uuid.UUID) ([]InstallmentView, error) {
	if err := actor.require(model.PrivDocumentView); err != nil {
		return nil, err
	}
	repos := s.uow.Read(scoped(ctx, actor.TenantID))
	installments, err := repos.Installments.FindByDocument(actor.TenantID, documentID)
	if err != nil {
		return nil, err
	}
	return viewsWithPayments(repos, actor.TenantID, installments)
}

func viewsWithPayments(repos *repository.Repositories, tenantID uuid.UUID, installments []model.Installment) ([]InstallmentView, error) {
	ids := make([]uuid.UUID, len(installments))
	for i, inst := range installments {
		ids[i] = inst.ID
	}
	paid, err := repos.Payments.SumByInstallments(tenantID, ids)
	if err != nil {
		return nil, err
	}
	views := make([]InstallmentView, len(installments))
	for i, inst := range installments {
		views[i] = newInstallmentView(inst, paid[inst.ID])
	}
	return views, nil
}

// RegisterPayment records a payment against an installment. Overpayment is rejected.
func (s *paymentService) RegisterPayment(ctx context.Context, actor Actor, installmentID uuid.UUID, input RegisterPaymentInput) (*InstallmentView, error) {
	const op = "RegisterPayment"
	if err := actor.require(model.PrivPaymentRegister); err != nil {
		return nil, err
	}
	if err := validateInput(op, input); err != nil {
		return nil, err
	}
	if err := money.CheckScale(input.Amount, money.AmountScale); err != nil {
		return nil, validationError(op, "amount", err.Error())
	}

	var view InstallmentView
	err := s.uow.Transaction(scoped(ctx, actor.TenantID), func(repos *repository.Repositories) error {
		if err := ensureTenantActive(repos, actor.TenantID); err != nil {
			return err
		}
		inst, err := repos.Installments.LockByID(actor.TenantID, installmentID)
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		sums, err := repos.Payments.SumByInstallments(actor.TenantID, []uuid.UUID{inst.ID})
		if err != nil {
			return err
		}
		paid := sums[inst.ID]
		outstanding := inst.Amount.Sub(paid)
		if input.Amount.GreaterThan(outstanding) {
			return validationError(op, "amount",
				fmt.Sprintf("exceeds outstanding amount %s", outstanding.StringFixed(money.AmountScale)))
		}

		payment := &model.Payment{
			InstallmentID: inst.ID,
			Amount:        input.Amount,
			PaidAt:        dateOnly(input.PaidAt),
			Reference:     input.Reference,
		}
		payment.TenantID = actor.TenantID
		payment.CreatedBy = actor.UserID
		payment.UpdatedBy = actor.UserID
		if err := repos.Payments.Create(payment); err != nil {
			return err
		}

		view = newInstallmentView(*inst, paid.Add(input.Amount))
		return nil
	})
	if err != nil {
		return nil, withContext(err, actor.TenantID, uuid.Nil)
	}
	return &view, nil
}

package repository

import (
	"go-doc-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InstallmentRepository interface {
	FindByDocument(tenantID, documentID uuid.UUID) ([]model.Installment, error)
	LockByID(tenantID, id uuid.UUID) (*model.Installment, error)
}

type installmentRepo struct {
	db *gorm.DB
}

func NewInstallmentRepo(db *gorm.DB) InstallmentRepository {
	return &installmentRepo{db}
}

func (r *installmentRepo) FindByDocument(tenantID, documentID uuid.UUID) ([]model.Installment, error) {
	var installments []model.Installment
	err := r.db.Where("tenant_id = ? AND document_id = ?", tenantID, documentID).
		Order("sequence ASC").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepo) LockByID(tenantID, id uuid.UUID) (*model.Installment, error) {
	var installment model.Installment
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&installment, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		return nil, err
	}
	return &installment, nil
}

type PaymentRepository interface {
	Create(payment *model.Payment) error
	FindByInstallment(tenantID, installmentID uuid.UUID) ([]model.Payment, error)
	// SumByInstallments returns paid totals; installments without payments are absent.
	SumByInstallments(tenantID uuid.UUID, installmentIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db}
}

func (r *paymentRepo) Create(payment *model.Payment) error {
	return r.db.Create(payment).Error
}

func (r *paymentRepo) FindByInstallment(tenantID, installmentID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.Where("tenant_id = ? AND installment_id = ?", tenantID, installmentID).
		Order("paid_at ASC, created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) SumByInstallments(tenantID uuid.UUID, installmentIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	sums := make(map[uuid.UUID]decimal.Decimal, len(installmentIDs))
	if len(installmentIDs) == 0 {
		return sums, nil
	}

	rows, err := r.db.Model(&model.Payment{}).
		Select("installment_id, COALESCE(SUM(amount), 0)").
		Where("tenant_id = ? AND installment_id IN ?", tenantID, installmentIDs).
		Group("installment_id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var paid decimal.Decimal
		if err := rows.Scan(&id, &paid); err != nil {
			return nil, err
		}
		sums[id] = paid
	}
	return sums, rows.Err()
}

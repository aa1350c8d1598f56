package repository

import (
	"go-doc-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentConditionRepository interface {
	Create(condition *model.PaymentCondition) error
	FindAll(tenantID uuid.UUID, activeOnly bool) ([]model.PaymentCondition, error)
	FindByID(tenantID, id uuid.UUID) (*model.PaymentCondition, error)
	Update(condition *model.PaymentCondition) error
}

type paymentConditionRepo struct {
	db *gorm.DB
}

func NewPaymentConditionRepo(db *gorm.DB) PaymentConditionRepository {
	return &paymentConditionRepo{db}
}

func (r *paymentConditionRepo) Create(condition *model.PaymentCondition) error {
	return r.db.Create(condition).Error
}

func (r *paymentConditionRepo) FindAll(tenantID uuid.UUID, activeOnly bool) ([]model.PaymentCondition, error) {
	q := r.db.Where("tenant_id = ?", tenantID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var conditions []model.PaymentCondition
	err := q.Order("name ASC").Find(&conditions).Error
	return conditions, err
}

func (r *paymentConditionRepo) FindByID(tenantID, id uuid.UUID) (*model.PaymentCondition, error) {
	var condition model.PaymentCondition
	if err := r.db.First(&condition, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &condition, nil
}

func (r *paymentConditionRepo) Update(condition *model.PaymentCondition) error {
	return r.db.Where("tenant_id = ?", condition.TenantID).Save(condition).Error
}

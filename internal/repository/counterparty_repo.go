package repository

import (
	"go-doc-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CounterpartyRepository interface {
	Create(counterparty *model.Counterparty) error
	FindByID(tenantID, id uuid.UUID) (*model.Counterparty, error)
	Update(counterparty *model.Counterparty) error
}

type counterpartyRepo struct {
	db *gorm.DB
}

func NewCounterpartyRepo(db *gorm.DB) CounterpartyRepository {
	return &counterpartyRepo{db}
}

func (r *counterpartyRepo) Create(counterparty *model.Counterparty) error {
	return r.db.Create(counterparty).Error
}

func (r *counterpartyRepo) FindByID(tenantID, id uuid.UUID) (*model.Counterparty, error) {
	var counterparty model.Counterparty
	if err := r.db.First(&counterparty, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &counterparty, nil
}

func (r *counterpartyRepo) Update(counterparty *model.Counterparty) error {
	return r.db.Where("tenant_id = ?", counterparty.TenantID).Save(counterparty).Error
}

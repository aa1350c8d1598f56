package repository

import (
	"go-doc-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WarehouseRepository interface {
	Create(warehouse *model.Warehouse) error
	FindAll(tenantID uuid.UUID) ([]model.Warehouse, error)
	FindByID(tenantID, id uuid.UUID) (*model.Warehouse, error)
}

type warehouseRepo struct {
	db *gorm.DB
}

func NewWarehouseRepo(db *gorm.DB) WarehouseRepository {
	return &warehouseRepo{db}
}

func (r *warehouseRepo) Create(warehouse *model.Warehouse) error {
	return r.db.Create(warehouse).Error
}

func (r *warehouseRepo) FindAll(tenantID uuid.UUID) ([]model.Warehouse, error) {
	var warehouses []model.Warehouse
	err := r.db.Where("tenant_id = ?", tenantID).Order("code ASC").Find(&warehouses).Error
	return warehouses, err
}

func (r *warehouseRepo) FindByID(tenantID, id uuid.UUID) (*model.Warehouse, error) {
	var warehouse model.Warehouse
	if err := r.db.First(&warehouse, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &warehouse, nil
}

package repository

import (
	"go-doc-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll(tenantID uuid.UUID) ([]model.Product, error)
	FindByID(tenantID, id uuid.UUID) (*model.Product, error)
	FindByIDs(tenantID uuid.UUID, ids []uuid.UUID) ([]model.Product, error)
	FindByCode(tenantID uuid.UUID, code string) (*model.Product, error)
	Update(product *model.Product) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll(tenantID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("tenant_id = ?", tenantID).Order("code ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(tenantID, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs returns only the products that exist for the tenant; callers compare lengths.
func (r *productRepo) FindByIDs(tenantID uuid.UUID, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&products).Error
	return products, err
}

func (r *productRepo) FindByCode(tenantID uuid.UUID, code string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "tenant_id = ? AND code = ?", tenantID, code).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Where("tenant_id = ?", product.TenantID).Save(product).Error
}

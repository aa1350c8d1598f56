package repository

import (
	"go-doc-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductAnnualStatRepository interface {
	// LockForUpdate creates an empty stat row if needed and locks it until the transaction ends.
	LockForUpdate(tenantID, productID uuid.UUID, year int) (*model.ProductAnnualStat, error)
	Save(stat *model.ProductAnnualStat) error
	CreateBatch(stats []model.ProductAnnualStat) error
	Find(tenantID, productID uuid.UUID, year int) (*model.ProductAnnualStat, error)
	FindYear(tenantID uuid.UUID, year int) ([]model.ProductAnnualStat, error)
	Delete(stat *model.ProductAnnualStat) error
	DeleteYear(tenantID uuid.UUID, year int) error
}

type productAnnualStatRepo struct {
	db *gorm.DB
}

func NewProductAnnualStatRepo(db *gorm.DB) ProductAnnualStatRepository {
	return &productAnnualStatRepo{db}
}

func (r *productAnnualStatRepo) LockForUpdate(tenantID, productID uuid.UUID, year int) (*model.ProductAnnualStat, error) {
	seed := model.ProductAnnualStat{
		TenantID:   tenantID,
		ProductID:  productID,
		FiscalYear: year,
	}
	seed.Reset()
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}, {Name: "fiscal_year"}},
		DoNothing: true,
	}).Create(&seed).Error
	if err != nil {
		return nil, err
	}

	var stat model.ProductAnnualStat
	err = r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND product_id = ? AND fiscal_year = ?", tenantID, productID, year).
		First(&stat).Error
	if err != nil {
		return nil, err
	}
	return &stat, nil
}

func (r *productAnnualStatRepo) Save(stat *model.ProductAnnualStat) error {
	return r.db.Where("tenant_id = ?", stat.TenantID).Save(stat).Error
}

func (r *productAnnualStatRepo) CreateBatch(stats []model.ProductAnnualStat) error {
	if len(stats) == 0 {
		return nil
	}
	return r.db.CreateInBatches(&stats, 200).Error
}

func (r *productAnnualStatRepo) Find(tenantID, productID uuid.UUID, year int) (*model.ProductAnnualStat, error) {
	var stat model.ProductAnnualStat
	err := r.db.First(&stat, "tenant_id = ? AND product_id = ? AND fiscal_year = ?", tenantID, productID, year).Error
	if err != nil {
		return nil, err
	}
	return &stat, nil
}

func (r *productAnnualStatRepo) FindYear(tenantID uuid.UUID, year int) ([]model.ProductAnnualStat, error) {
	var stats []model.ProductAnnualStat
	err := r.db.Where("tenant_id = ? AND fiscal_year = ?", tenantID, year).
		Order("product_id ASC").
		Find(&stats).Error
	return stats, err
}

func (r *productAnnualStatRepo) Delete(stat *model.ProductAnnualStat) error {
	return r.db.Where("tenant_id = ? AND product_id = ? AND fiscal_year = ?", stat.TenantID, stat.ProductID, stat.FiscalYear).
		Delete(&model.ProductAnnualStat{}).Error
}

func (r *productAnnualStatRepo) DeleteYear(tenantID uuid.UUID, year int) error {
	return r.db.Where("tenant_id = ? AND fiscal_year = ?", tenantID, year).
		Delete(&model.ProductAnnualStat{}).Error
}

package repository

import (
	"go-doc-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentNumeratorRepository interface {
	// LockForUpdate creates the counter row if needed and locks it until the transaction ends.
	LockForUpdate(tenantID uuid.UUID, numeratorCode string, year int) (*model.DocumentNumerator, error)
	SetLastNumber(numerator *model.DocumentNumerator, lastNumber int64) error
	// Peek reads the last issued number without locking. Missing counters read as zero.
	Peek(tenantID uuid.UUID, numeratorCode string, year int) (int64, error)
}

type documentNumeratorRepo struct {
	db *gorm.DB
}

func NewDocumentNumeratorRepo(db *gorm.DB) DocumentNumeratorRepository {
	return &documentNumeratorRepo{db}
}

func (r *documentNumeratorRepo) LockForUpdate(tenantID uuid.UUID, numeratorCode string, year int) (*model.DocumentNumerator, error) {
	seed := model.DocumentNumerator{
		TenantID:      tenantID,
		NumeratorCode: numeratorCode,
		FiscalYear:    year,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "numerator_code"}, {Name: "fiscal_year"}},
		DoNothing: true,
	}).Create(&seed).Error
	if err != nil {
		return nil, err
	}

	var numerator model.DocumentNumerator
	err = r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND numerator_code = ? AND fiscal_year = ?", tenantID, numeratorCode, year).
		First(&numerator).Error
	if err != nil {
		return nil, err
	}
	return &numerator, nil
}

func (r *documentNumeratorRepo) SetLastNumber(numerator *model.DocumentNumerator, lastNumber int64) error {
	err := r.db.Model(&model.DocumentNumerator{}).
		Where("tenant_id = ? AND id = ?", numerator.TenantID, numerator.ID).
		Update("last_number", lastNumber).Error
	if err != nil {
		return err
	}
	numerator.LastNumber = lastNumber
	return nil
}

func (r *documentNumeratorRepo) Peek(tenantID uuid.UUID, numeratorCode string, year int) (int64, error) {
	var numerator model.DocumentNumerator
	err := r.db.Where("tenant_id = ? AND numerator_code = ? AND fiscal_year = ?", tenantID, numeratorCode, year).
		First(&numerator).Error
	if IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return numerator.LastNumber, nil
}

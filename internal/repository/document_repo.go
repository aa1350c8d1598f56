package repository

import (
	"go-doc-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	// Create inserts the document with its lines and installments.
	Create(doc *model.Document) error
	FindByID(tenantID, id uuid.UUID) (*model.Document, error)
	List(tenantID uuid.UUID, filter DocumentFilter, page Pagination) ([]model.Document, int64, error)
	// NumberTaken includes soft-deleted documents; their numbers stay reserved.
	NumberTaken(tenantID uuid.UUID, numeratorCode string, year int, number int64) (bool, error)
	NextPostingSeq() (int64, error)
	UpdateMetadata(tenantID, id uuid.UUID, fields map[string]interface{}) error
	SoftDelete(tenantID, id uuid.UUID, deletedBy string) error
	// FindForValuation returns valuation-impacting documents of a fiscal year in replay order,
	// optionally only those with a line for productID.
	FindForValuation(tenantID uuid.UUID, year int, productID *uuid.UUID) ([]model.Document, error)
}

type documentRepo struct {
	db *gorm.DB
}

func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db}
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func orderedInstallments(db *gorm.DB) *gorm.DB {
	return db.Order("sequence ASC")
}

func (r *documentRepo) Create(doc *model.Document) error {
	return r.db.Create(doc).Error
}

func (r *documentRepo) FindByID(tenantID, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	err := r.db.
		Preload("Lines", orderedLines).
		Preload("Installments", orderedInstallments).
		First(&doc, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

var documentSortColumns = map[string]string{
	"date":   "document_date",
	"number": "number",
	"gross":  "gross_total",
	"type":   "document_type_code",
}

func (r *documentRepo) List(tenantID uuid.UUID, filter DocumentFilter, page Pagination) ([]model.Document, int64, error) {
	q := r.db.Model(&model.Document{}).Where("tenant_id = ?", tenantID)
	if filter.DocumentTypeCode != "" {
		q = q.Where("document_type_code = ?", filter.DocumentTypeCode)
	}
	if filter.FiscalYear != 0 {
		q = q.Where("fiscal_year = ?", filter.FiscalYear)
	}
	if filter.CounterpartyID != nil {
		q = q.Where("counterparty_id = ?", *filter.CounterpartyID)
	}
	if filter.From != nil {
		q = q.Where("document_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("document_date <= ?", *filter.To)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("(counterparty_name ILIKE ? OR notes ILIKE ?)", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []model.Document
	err := page.apply(q).
		Order(page.OrderClause(documentSortColumns, "document_date DESC, posting_seq DESC")).
		Find(&docs).Error
	return docs, total, err
}

func (r *documentRepo) NumberTaken(tenantID uuid.UUID, numeratorCode string, year int, number int64) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&model.Document{}).
		Where("tenant_id = ? AND numerator_code = ? AND fiscal_year = ? AND number = ?", tenantID, numeratorCode, year, number).
		Count(&count).Error
	return count > 0, err
}

func (r *documentRepo) NextPostingSeq() (int64, error) {
	var seq int64
	err := r.db.Raw("SELECT nextval('document_posting_seq')").Scan(&seq).Error
	return seq, err
}

func (r *documentRepo) UpdateMetadata(tenantID, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.Model(&model.Document{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *documentRepo) SoftDelete(tenantID, id uuid.UUID, deletedBy string) error {
	err := r.db.Model(&model.Document{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("deleted_by", deletedBy).Error
	if err != nil {
		return err
	}
	res := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *documentRepo) FindForValuation(tenantID uuid.UUID, year int, productID *uuid.UUID) ([]model.Document, error) {
	q := r.db.Where("tenant_id = ? AND fiscal_year = ? AND policy_impacts_valuation = ? AND status = ?",
		tenantID, year, true, model.DocumentFinalized)
	if productID != nil {
		q = q.Where("id IN (?)", r.db.Model(&model.DocumentLine{}).
			Select("document_id").
			Where("tenant_id = ? AND product_id = ?", tenantID, *productID))
	}

	var docs []model.Document
	err := q.Preload("Lines", orderedLines).
		Order("document_date ASC, posting_seq ASC").
		Find(&docs).Error
	return docs, err
}

package repository

import (
	"go-doc-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentTypePolicyRepository interface {
	FindByCode(tenantID uuid.UUID, code string) (*model.DocumentTypePolicy, error)
	FindAll(tenantID uuid.UUID) ([]model.DocumentTypePolicy, error)
	Create(policy *model.DocumentTypePolicy) error
	Update(policy *model.DocumentTypePolicy) error
}

type documentTypePolicyRepo struct {
	db *gorm.DB
}

func NewDocumentTypePolicyRepo(db *gorm.DB) DocumentTypePolicyRepository {
	return &documentTypePolicyRepo{db}
}

func (r *documentTypePolicyRepo) FindByCode(tenantID uuid.UUID, code string) (*model.DocumentTypePolicy, error) {
	var policy model.DocumentTypePolicy
	if err := r.db.First(&policy, "tenant_id = ? AND code = ?", tenantID, code).Error; err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *documentTypePolicyRepo) FindAll(tenantID uuid.UUID) ([]model.DocumentTypePolicy, error) {
	var policies []model.DocumentTypePolicy
	err := r.db.Where("tenant_id = ?", tenantID).Order("code ASC").Find(&policies).Error
	return policies, err
}

func (r *documentTypePolicyRepo) Create(policy *model.DocumentTypePolicy) error {
	return r.db.Create(policy).Error
}

func (r *documentTypePolicyRepo) Update(policy *model.DocumentTypePolicy) error {
	return r.db.Where("tenant_id = ?", policy.TenantID).Save(policy).Error
}

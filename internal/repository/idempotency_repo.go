package repository

import (
	"time"

	"go-doc-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IdempotencyRepository interface {
	// Reserve inserts a pending record or returns the one already stored for the key.
	Reserve(rec *model.IdempotencyKey) (*model.IdempotencyKey, error)
	Complete(tenantID uuid.UUID, key string, status int, body []byte) error
	Release(tenantID uuid.UUID, key string) error
}

type idempotencyRepo struct {
	db *gorm.DB
}

func NewIdempotencyRepo(db *gorm.DB) IdempotencyRepository {
	return &idempotencyRepo{db}
}

func (r *idempotencyRepo) Reserve(rec *model.IdempotencyKey) (*model.IdempotencyKey, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "key"}},
		DoNothing: true,
	}).Create(rec).Error
	if err != nil {
		return nil, err
	}

	var stored model.IdempotencyKey
	err = r.db.Where("tenant_id = ? AND key = ?", rec.TenantID, rec.Key).First(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *idempotencyRepo) Complete(tenantID uuid.UUID, key string, status int, body []byte) error {
	now := time.Now().UTC()
	blob := make([]byte, len(body))
	copy(blob, body)

	return r.db.Model(&model.IdempotencyKey{}).
		Where("tenant_id = ? AND key = ?", tenantID, key).
		Updates(map[string]interface{}{
			"response_status": status,
			"response_body":   datatypes.JSON(blob),
			"completed_at":    &now,
		}).Error
}

// Release drops a pending record so a failed request can be retried with the same key.
func (r *idempotencyRepo) Release(tenantID uuid.UUID, key string) error {
	return r.db.Where("tenant_id = ? AND key = ? AND response_status = 0", tenantID, key).
		Delete(&model.IdempotencyKey{}).Error
}

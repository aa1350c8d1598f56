package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IdempotencyKey stores the first completed response for a tenant-scoped Idempotency-Key.
type IdempotencyKey struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	TenantID       uuid.UUID      `gorm:"type:uuid;not null" json:"tenant_id"`
	Key            string         `gorm:"size:128;not null" json:"key"`
	RequestHash    string         `gorm:"size:64;not null" json:"request_hash"` // sha256 of method|path|body|tenant|user
	Method         string         `gorm:"size:10" json:"method"`
	Path           string         `gorm:"size:255" json:"path"`
	UserID         string         `gorm:"size:128" json:"user_id"`
	ResponseStatus int            `json:"response_status"` // 0 => not completed yet
	ResponseBody   datatypes.JSON `gorm:"type:jsonb" json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	CompletedAt    *time.Time     `json:"completed_at"`
}

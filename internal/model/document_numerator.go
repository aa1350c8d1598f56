package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentNumerator holds the last number issued for (tenant, numerator, year).
type DocumentNumerator struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null" json:"tenant_id"`
	NumeratorCode string    `gorm:"type:varchar(50);not null" json:"numerator_code"`
	FiscalYear    int       `gorm:"not null" json:"fiscal_year"`
	LastNumber    int64     `gorm:"not null;default:0" json:"last_number"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (n *DocumentNumerator) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}

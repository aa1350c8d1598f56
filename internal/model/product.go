package model

import (
	"go-doc-ledger/pkg/money"

	"github.com/google/uuid"
)

type Product struct {
	BaseModel
	TenantScoped
	Code        string `gorm:"type:varchar(50);not null" json:"code" validate:"required"`
	Description string `gorm:"type:varchar(255);not null" json:"description" validate:"required"`
	Unit        string `gorm:"type:varchar(20)" json:"unit"`

	// Warehouse used when a document line does not name one.
	DefaultWarehouseID *uuid.UUID `gorm:"type:uuid" json:"default_warehouse_id,omitempty"`

	// Fractional digits allowed on quantities, 0..4. Zero means whole units, so the
	// column carries no default and callers always set it.
	QuantityScale int32 `gorm:"not null" json:"quantity_scale" validate:"min=0,max=4"`
}

// AllowedQuantityScale clamps the configured scale to the engine maximum.
func (p *Product) AllowedQuantityScale() int32 {
	if p.QuantityScale < 0 || p.QuantityScale > money.QuantityScale {
		return money.QuantityScale
	}
	return p.QuantityScale
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementType string

const (
	MovementInitialLoad     MovementType = "INITIAL_LOAD"
	MovementSupplierReceipt MovementType = "SUPPLIER_RECEIPT"
	MovementSaleIssue       MovementType = "SALE_ISSUE"
	MovementCustomerReturn  MovementType = "CUSTOMER_RETURN"
	MovementSupplierReturn  MovementType = "SUPPLIER_RETURN"
	MovementAdjustment      MovementType = "ADJUSTMENT"
	MovementTransferIn      MovementType = "TRANSFER_IN"
	MovementTransferOut     MovementType = "TRANSFER_OUT"
)

var MovementTypes = []MovementType{
	MovementInitialLoad,
	MovementSupplierReceipt,
	MovementSaleIssue,
	MovementCustomerReturn,
	MovementSupplierReturn,
	MovementAdjustment,
	MovementTransferIn,
	MovementTransferOut,
}

func (t MovementType) Valid() bool {
	for _, m := range MovementTypes {
		if m == t {
			return true
		}
	}
	return false
}

// StockMovement is an append-only ledger entry. Rows are inserted and never updated or deleted.
// DocumentID carries no foreign key so entries outlive their document.
type StockMovement struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_stock,priority:1" json:"tenant_id"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_stock,priority:2" json:"product_id"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_stock,priority:3" json:"warehouse_id"`
	SignedQuantity decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"signed_quantity"`
	MovementType   MovementType    `gorm:"type:varchar(32);not null" json:"movement_type"`
	DocumentID     *uuid.UUID      `gorm:"type:uuid;index" json:"document_id,omitempty"`
	DocumentNumber string          `gorm:"type:varchar(64)" json:"document_number"`
	MovedAt        time.Time       `gorm:"not null;index" json:"moved_at"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
	CreatedBy      string          `json:"created_by"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

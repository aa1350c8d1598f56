package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type DocumentStatus string

const (
	DocumentFinalized DocumentStatus = "FINALIZED"
)

// Document is immutable once finalized except for Notes and Annotations.
type Document struct {
	BaseModel
	TenantScoped
	DocumentTypeCode string    `gorm:"type:varchar(50);not null;index" json:"document_type_code"`
	NumeratorCode    string    `gorm:"type:varchar(50);not null" json:"numerator_code"`
	FiscalYear       int       `gorm:"not null;index" json:"fiscal_year"`
	Number           int64     `gorm:"not null" json:"number"`
	DocumentDate     time.Time `gorm:"type:date;not null;index" json:"document_date"`

	// Counterparty snapshot taken at finalization
	CounterpartyID         *uuid.UUID                  `gorm:"type:uuid" json:"counterparty_id,omitempty"`
	CounterpartyName       string                      `gorm:"type:varchar(255)" json:"counterparty_name"`
	CounterpartyVatNumber  string                      `gorm:"type:varchar(32)" json:"counterparty_vat_number"`
	CounterpartyFiscalCode string                      `gorm:"type:varchar(32)" json:"counterparty_fiscal_code"`
	CounterpartyAddress    datatypes.JSONType[Address] `gorm:"type:jsonb" json:"counterparty_address"`

	MainWarehouseID    *uuid.UUID      `gorm:"type:uuid" json:"main_warehouse_id,omitempty"`
	PaymentConditionID *uuid.UUID      `gorm:"type:uuid" json:"payment_condition_id,omitempty"`
	NetTotal           decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"net_total"`
	VatTotal           decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"vat_total"`
	GrossTotal         decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"gross_total"`
	Notes              string          `gorm:"type:text" json:"notes"`
	Annotations        string          `gorm:"type:text" json:"annotations"`
	Status             DocumentStatus  `gorm:"type:varchar(20);not null" json:"status"`

	// Policy as it was when the document was finalized
	PolicyMovesStock       bool         `gorm:"not null" json:"policy_moves_stock"`
	PolicyImpactsValuation bool         `gorm:"not null;index" json:"policy_impacts_valuation"`
	PolicyOperationSign    int          `gorm:"not null" json:"policy_operation_sign"`
	PolicyMovementType     MovementType `gorm:"type:varchar(32)" json:"policy_movement_type,omitempty"`

	// Orders same-date documents for replay
	PostingSeq int64 `gorm:"not null;index" json:"posting_seq"`

	Lines        []DocumentLine `gorm:"foreignKey:DocumentID" json:"lines"`
	Installments []Installment  `gorm:"foreignKey:DocumentID" json:"installments,omitempty"`
}

// DisplayNumber is the human reference stored on ledger entries, e.g. "INV/2024/17".
func (d *Document) DisplayNumber() string {
	return fmt.Sprintf("%s/%d/%d", d.NumeratorCode, d.FiscalYear, d.Number)
}

type DocumentLine struct {
	BaseModel
	TenantScoped
	DocumentID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"document_id"`
	Position    int             `gorm:"not null" json:"position"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"`
	ProductCode string          `gorm:"type:varchar(50)" json:"product_code"`
	Description string          `gorm:"type:varchar(255)" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"unit_price"`
	VatRate     decimal.Decimal `gorm:"type:numeric(6,4);not null" json:"vat_rate"`
	WarehouseID *uuid.UUID      `gorm:"type:uuid" json:"warehouse_id,omitempty"`
	NetAmount   decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"net_amount"`
	VatAmount   decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"vat_amount"`
	GrossAmount decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"gross_amount"`
}

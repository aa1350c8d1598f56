package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "PENDING"
	InstallmentPartial InstallmentStatus = "PARTIAL"
	InstallmentPaid    InstallmentStatus = "PAID"
)

// Installment is one scheduled payment of a document. Status is derived from payments, not stored.
type Installment struct {
	BaseModel
	TenantScoped
	DocumentID uuid.UUID       `gorm:"type:uuid;not null;index" json:"document_id"`
	Sequence   int             `gorm:"not null" json:"sequence"`
	DueDate    time.Time       `gorm:"type:date;not null" json:"due_date"`
	Amount     decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
}

// Payment settles part or all of an installment.
type Payment struct {
	BaseModel
	TenantScoped
	InstallmentID uuid.UUID       `gorm:"type:uuid;not null;index" json:"installment_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	PaidAt        time.Time       `gorm:"type:date;not null" json:"paid_at"`
	Reference     string          `gorm:"type:varchar(255)" json:"reference"`
}

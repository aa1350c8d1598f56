package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductAnnualStat is a rebuildable cache over valuation-impacting documents of one fiscal year.
type ProductAnnualStat struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID            uuid.UUID       `gorm:"type:uuid;not null" json:"tenant_id"`
	ProductID           uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	FiscalYear          int             `gorm:"not null" json:"fiscal_year"`
	PurchasedQuantity   decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0" json:"purchased_quantity"`
	PurchasedAmount     decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"purchased_amount"`
	SoldQuantity        decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0" json:"sold_quantity"`
	SoldAmount          decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"sold_amount"`
	WeightedAverageCost decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0" json:"weighted_average_cost"`
	LastCost            decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"last_cost"`
	LastDocumentDate    *time.Time      `gorm:"type:date" json:"last_document_date,omitempty"`
	LastPostingSeq      int64           `gorm:"not null;default:0" json:"last_posting_seq"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (s *ProductAnnualStat) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// StockQuantity is purchased minus sold within the year.
func (s *ProductAnnualStat) StockQuantity() decimal.Decimal {
	return s.PurchasedQuantity.Sub(s.SoldQuantity)
}

// Reset clears the folded values, keeping identity columns.
func (s *ProductAnnualStat) Reset() {
	s.PurchasedQuantity = decimal.Zero
	s.PurchasedAmount = decimal.Zero
	s.SoldQuantity = decimal.Zero
	s.SoldAmount = decimal.Zero
	s.WeightedAverageCost = decimal.Zero
	s.LastCost = decimal.Zero
	s.LastDocumentDate = nil
	s.LastPostingSeq = 0
}

package model

// Operation signs applied to quantities folded into the ledger and valuation.
const (
	SignInbound  = 1
	SignOutbound = -1
)

// DocumentTypePolicy describes how a document type affects stock, valuation and numbering.
// Editing a policy never changes documents already finalized; they carry a frozen copy.
type DocumentTypePolicy struct {
	BaseModel
	TenantScoped
	Code             string       `gorm:"type:varchar(50);not null" json:"code" validate:"required,max=50"`
	Description      string       `gorm:"type:varchar(255)" json:"description"`
	MovesStock       bool         `gorm:"not null;default:false" json:"moves_stock"`
	ImpactsValuation bool         `gorm:"not null;default:false" json:"impacts_valuation"`
	OperationSign    int          `gorm:"not null;default:1" json:"operation_sign" validate:"oneof=1 -1"`
	NumeratorCode    string       `gorm:"type:varchar(50);not null" json:"numerator_code" validate:"required,max=50"`
	MovementType     MovementType `gorm:"type:varchar(32)" json:"movement_type,omitempty"`
}

package model

// PaymentCondition is configuration. Changing it only affects documents finalized afterward.
type PaymentCondition struct {
	BaseModel
	TenantScoped
	Name           string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	PaymentTypeID  string `gorm:"type:varchar(50)" json:"payment_type_id"`
	DaysToFirstDue int    `gorm:"not null;default:0" json:"days_to_first_due"`
	GapBetweenDues int    `gorm:"not null;default:0" json:"gap_between_dues"`
	NumberOfDues   int    `gorm:"not null;default:1" json:"number_of_dues" validate:"min=1,max=24"`
	IsEndOfMonth   bool   `gorm:"not null;default:false" json:"is_end_of_month"`
	IsActive       bool   `gorm:"not null;default:true" json:"is_active"`
}

package model

type Warehouse struct {
	BaseModel
	TenantScoped
	Code     string `gorm:"type:varchar(50);not null" json:"code" validate:"required"`
	Name     string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

package model

// Tenant is the isolation boundary. Inactive tenants keep their data but reject writes.
type Tenant struct {
	BaseModel
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

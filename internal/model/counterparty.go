package model

// Counterparty is the live customer/supplier master record.
// Documents copy its fields at finalization and never read it again.
type Counterparty struct {
	BaseModel
	TenantScoped
	Name       string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	VatNumber  string `gorm:"type:varchar(32)" json:"vat_number"`
	FiscalCode string `gorm:"type:varchar(32)" json:"fiscal_code"`
	Street     string `gorm:"type:varchar(255)" json:"street"`
	City       string `gorm:"type:varchar(100)" json:"city"`
	Zip        string `gorm:"type:varchar(16)" json:"zip"`
	Province   string `gorm:"type:varchar(8)" json:"province"`
	Country    string `gorm:"type:varchar(2)" json:"country"`
}

// Address is the frozen postal address stored on a document.
type Address struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Province string `json:"province"`
	Country  string `json:"country"`
}

func (c *Counterparty) Address() Address {
	return Address{
		Street:   c.Street,
		City:     c.City,
		Zip:      c.Zip,
		Province: c.Province,
		Country:  c.Country,
	}
}

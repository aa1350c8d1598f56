package model

// Privilege represents a permission carried in the caller's token
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "document:finalize"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Finalize Document"
}

const (
	PrivDocumentView     = "document:view"
	PrivDocumentFinalize = "document:finalize"
	PrivDocumentUpdate   = "document:update"
	PrivDocumentDelete   = "document:delete"
	PrivStockView        = "stock:view"
	PrivStockAdjust      = "stock:adjust"
	PrivValuationView    = "valuation:view"
	PrivLedgerRebuild    = "ledger:rebuild"
	PrivPolicyManage     = "policy:manage"
	PrivPaymentRegister  = "payment:register"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// Documents
	{Code: PrivDocumentView, Name: "View Document"},
	{Code: PrivDocumentFinalize, Name: "Finalize Document"},
	{Code: PrivDocumentUpdate, Name: "Update Document Notes"},
	{Code: PrivDocumentDelete, Name: "Delete Document"},
	// Stock ledger
	{Code: PrivStockView, Name: "View Stock"},
	{Code: PrivStockAdjust, Name: "Adjust Stock"},
	// Valuation
	{Code: PrivValuationView, Name: "View Valuation"},
	{Code: PrivLedgerRebuild, Name: "Rebuild Valuation"},
	// Configuration (tenant admins only)
	{Code: PrivPolicyManage, Name: "Manage Document Types and Payment Conditions"},
	// Payments
	{Code: PrivPaymentRegister, Name: "Register Payment"},
}

package model

// Role groups privileges. A token that names a role but carries no privileges gets the role's set.
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // TENANT_ADMIN, ACCOUNTANT, CLERK
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleTenantAdmin = "TENANT_ADMIN"
	RoleAccountant  = "ACCOUNTANT"
	RoleClerk       = "CLERK"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleTenantAdmin,
		Name:        "Tenant Administrator",
		Description: "Full access including document type policies and valuation rebuild",
	},
	{
		Code:        RoleAccountant,
		Name:        "Accountant",
		Description: "Finalizes documents, registers payments and reads valuation",
	},
	{
		Code:        RoleClerk,
		Name:        "Warehouse Clerk",
		Description: "Reads stock and records manual adjustments",
	},
}

// DefaultRolePrivileges maps role codes to the privilege codes seeded for them.
var DefaultRolePrivileges = map[string][]string{
	RoleTenantAdmin: {
		PrivDocumentView, PrivDocumentFinalize, PrivDocumentUpdate, PrivDocumentDelete,
		PrivStockView, PrivStockAdjust, PrivValuationView, PrivLedgerRebuild,
		PrivPolicyManage, PrivPaymentRegister,
	},
	RoleAccountant: {
		PrivDocumentView, PrivDocumentFinalize, PrivDocumentUpdate,
		PrivStockView, PrivValuationView, PrivPaymentRegister,
	},
	RoleClerk: {
		PrivDocumentView, PrivStockView, PrivStockAdjust,
	},
}

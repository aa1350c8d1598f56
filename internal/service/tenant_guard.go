package service

import (
	"go-doc-ledger/internal/repository"

	"github.com/google/uuid"
)

// ensureTenantActive blocks writes for unknown or deactivated tenants.
func ensureTenantActive(repos *repository.Repositories, tenantID uuid.UUID) error {
	tenant, err := repos.Tenants.FindByID(tenantID)
	if repository.IsNotFound(err) {
		return validationError("ensureTenantActive", "tenant_id", "tenant does not exist")
	}
	if err != nil {
		return err
	}
	if !tenant.IsActive {
		return newLedgerError(ErrValidation, "ensureTenantActive", "tenant_id", "writes are blocked", ErrTenantInactive)
	}
	return nil
}

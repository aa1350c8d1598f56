package service

import (
	"context"
	"fmt"

	"go-doc-ledger/pkg/database"

	"github.com/google/uuid"
)

// Actor is the authenticated caller as supplied by the auth layer.
type Actor struct {
	TenantID   uuid.UUID
	UserID     string
	Role       string
	Privileges []string
}

func (a Actor) Can(privilege string) bool {
	for _, p := range a.Privileges {
		if p == privilege {
			return true
		}
	}
	return false
}

func (a Actor) require(privilege string) error {
	if a.TenantID == uuid.Nil {
		return fmt.Errorf("%w: no tenant in caller context", ErrForbidden)
	}
	if !a.Can(privilege) {
		return fmt.Errorf("%w: requires '%s' privilege", ErrForbidden, privilege)
	}
	return nil
}

// scoped pins ctx to the actor's tenant for the tenant guard.
func scoped(ctx context.Context, tenantID uuid.UUID) context.Context {
	return database.WithTenant(ctx, tenantID)
}

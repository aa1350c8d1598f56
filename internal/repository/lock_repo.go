package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LockRepository takes transaction-scoped Postgres advisory locks keyed on (tenant, fiscal year).
// Finalizations share the key; a rebuild holds it exclusively.
type LockRepository interface {
	ValuationShared(tenantID uuid.UUID, year int) error
	ValuationExclusive(tenantID uuid.UUID, year int) error
}

type lockRepo struct {
	db *gorm.DB
}

func NewLockRepo(db *gorm.DB) LockRepository {
	return &lockRepo{db}
}

func (r *lockRepo) ValuationShared(tenantID uuid.UUID, year int) error {
	return r.db.Exec("SELECT pg_advisory_xact_lock_shared(hashtext(?), ?)", tenantID.String(), year).Error
}

func (r *lockRepo) ValuationExclusive(tenantID uuid.UUID, year int) error {
	return r.db.Exec("SELECT pg_advisory_xact_lock(hashtext(?), ?)", tenantID.String(), year).Error
}

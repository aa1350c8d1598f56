package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository bound to the same *gorm.DB,
// either the pool or a single transaction.
type Repositories struct {
	Tenants           TenantRepository
	Products          ProductRepository
	Warehouses        WarehouseRepository
	Counterparties    CounterpartyRepository
	Policies          DocumentTypePolicyRepository
	Numerators        DocumentNumeratorRepository
	Documents         DocumentRepository
	Movements         StockMovementRepository
	Stats             ProductAnnualStatRepository
	Installments      InstallmentRepository
	Payments          PaymentRepository
	PaymentConditions PaymentConditionRepository
	Locks             LockRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Tenants:           NewTenantRepo(db),
		Products:          NewProductRepo(db),
		Warehouses:        NewWarehouseRepo(db),
		Counterparties:    NewCounterpartyRepo(db),
		Policies:          NewDocumentTypePolicyRepo(db),
		Numerators:        NewDocumentNumeratorRepo(db),
		Documents:         NewDocumentRepo(db),
		Movements:         NewStockMovementRepo(db),
		Stats:             NewProductAnnualStatRepo(db),
		Installments:      NewInstallmentRepo(db),
		Payments:          NewPaymentRepo(db),
		PaymentConditions: NewPaymentConditionRepo(db),
		Locks:             NewLockRepo(db),
	}
}

// UnitOfWork hands out repositories for reads and runs write paths atomically.
type UnitOfWork interface {
	Read(ctx context.Context) *Repositories
	// Transaction commits when fn returns nil and rolls back otherwise,
	// including when ctx is cancelled before commit.
	Transaction(ctx context.Context, fn func(repos *Repositories) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Read(ctx context.Context) *Repositories {
	return NewRepositories(u.db.WithContext(ctx))
}

func (u *gormUnitOfWork) Transaction(ctx context.Context, fn func(repos *Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

package repository

import (
	"context"
	"fmt"

	"go-doc-ledger/internal/model"
	"go-doc-ledger/pkg/database"

	"gorm.io/gorm"
)

// Migrate applies idempotent schema migrations:
// - AutoMigrate (tables/columns)
// - natural-key unique indexes per tenant
// - the posting sequence used to order same-date documents
// - CHECK constraints on ledger amounts
func Migrate(ctx context.Context, db *gorm.DB) error {
	ctx = database.SkipTenantScope(ctx)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&model.Tenant{},
			&model.Privilege{},
			&model.Role{},
			&model.Warehouse{},
			&model.Product{},
			&model.Counterparty{},
			&model.DocumentTypePolicy{},
			&model.PaymentCondition{},
			&model.DocumentNumerator{},
			&model.Document{},
			&model.DocumentLine{},
			&model.StockMovement{},
			&model.ProductAnnualStat{},
			&model.Installment{},
			&model.Payment{},
			&model.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		statements := []string{
			`CREATE SEQUENCE IF NOT EXISTS document_posting_seq`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_warehouses_tenant_code ON warehouses (tenant_id, code) WHERE deleted_at IS NULL`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_products_tenant_code ON products (tenant_id, code) WHERE deleted_at IS NULL`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_policies_tenant_code ON document_type_policies (tenant_id, code) WHERE deleted_at IS NULL`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_numerators_tenant_code_year ON document_numerators (tenant_id, numerator_code, fiscal_year)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_tenant_number ON documents (tenant_id, numerator_code, fiscal_year, number)`,
			`CREATE INDEX IF NOT EXISTS idx_documents_valuation_replay ON documents (tenant_id, fiscal_year, document_date, posting_seq) WHERE policy_impacts_valuation`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_stats_tenant_product_year ON product_annual_stats (tenant_id, product_id, fiscal_year)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_installments_document_sequence ON installments (document_id, sequence)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_tenant_key ON idempotency_keys (tenant_id, key)`,
		}
		for _, stmt := range statements {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		checks := map[string]string{
			"chk_document_lines_quantity_positive": `ALTER TABLE document_lines ADD CONSTRAINT chk_document_lines_quantity_positive CHECK (quantity > 0)`,
			"chk_document_lines_price_nonneg":      `ALTER TABLE document_lines ADD CONSTRAINT chk_document_lines_price_nonneg CHECK (unit_price >= 0)`,
			"chk_document_lines_vat_rate":          `ALTER TABLE document_lines ADD CONSTRAINT chk_document_lines_vat_rate CHECK (vat_rate >= 0 AND vat_rate <= 1)`,
			"chk_payment_conditions_dues":          `ALTER TABLE payment_conditions ADD CONSTRAINT chk_payment_conditions_dues CHECK (number_of_dues BETWEEN 1 AND 24)`,
			"chk_policies_sign":                    `ALTER TABLE document_type_policies ADD CONSTRAINT chk_policies_sign CHECK (operation_sign IN (1, -1))`,
		}
		for name, stmt := range checks {
			var exists bool
			if err := tx.Raw(`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, name).Scan(&exists).Error; err != nil {
				return fmt.Errorf("constraint lookup failed on %s: %w", name, err)
			}
			if exists {
				continue
			}
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("constraint migration failed on: %s - %w", stmt, err)
			}
		}
		return nil
	})
}

// SeedReferenceData seeds the privilege catalogue and default roles.
func SeedReferenceData(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(database.SkipTenantScope(ctx))
	privileges := NewPrivilegeRepo(db)
	if err := privileges.SeedDefaults(); err != nil {
		return fmt.Errorf("seed privileges: %w", err)
	}
	if err := NewRoleRepo(db).SeedDefaults(privileges); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	return nil
}

package database

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tenantColumn = "tenant_id"

var ErrMissingTenantScope = errors.New("query on tenant-scoped table without tenant_id filter")

type ctxKey int

const (
	ctxKeyTenant ctxKey = iota
	ctxKeySkipTenant
)

// WithTenant scopes every statement run with ctx to tenantID.
func WithTenant(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKeyTenant, tenantID)
}

// SkipTenantScope disables the guard, for migrations and cross-tenant maintenance.
func SkipTenantScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKeySkipTenant, true)
}

func TenantFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKeyTenant).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// TenantGuard scopes Query/Row/Update/Delete on tables with a tenant_id column.
// A tenant in the statement context is added as a filter when the WHERE clause lacks one.
// In strict mode a statement with neither fails with ErrMissingTenantScope.
// Raw SQL is not inspected.
type TenantGuard struct {
	strict bool
}

func NewTenantGuard(strict bool) *TenantGuard {
	return &TenantGuard{strict: strict}
}

func (g *TenantGuard) Name() string { return "tenant_guard" }

func (g *TenantGuard) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("tenant_guard:query", g.callback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("tenant_guard:row", g.callback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenant_guard:update", g.callback); err != nil {
		return err
	}
	return db.Callback().Delete().Before("gorm:delete").Register("tenant_guard:delete", g.callback)
}

func (g *TenantGuard) callback(db *gorm.DB) {
	if db == nil || db.Statement == nil || db.Statement.Schema == nil {
		return
	}
	if db.Statement.SQL.Len() > 0 {
		return
	}
	ctx := db.Statement.Context
	if ctx != nil {
		if skip, _ := ctx.Value(ctxKeySkipTenant).(bool); skip {
			return
		}
	}
	if db.Statement.Schema.LookUpField(tenantColumn) == nil {
		return
	}
	if whereHasTenant(db.Statement.Clauses["WHERE"]) {
		return
	}

	if ctx != nil {
		if tenantID, ok := TenantFromContext(ctx); ok {
			db.Statement.AddClause(clause.Where{Exprs: []clause.Expression{
				clause.Eq{Column: clause.Column{Table: db.Statement.Table, Name: tenantColumn}, Value: tenantID},
			}})
			return
		}
	}
	if g.strict {
		_ = db.AddError(ErrMissingTenantScope)
	}
}

func whereHasTenant(c clause.Clause) bool {
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasTenant(e) {
			return true
		}
	}
	return false
}

func exprHasTenant(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return isTenantColumn(v.Column)
	case clause.IN:
		return isTenantColumn(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasTenant(x) {
				return true
			}
		}
	case clause.Expr:
		return strings.Contains(strings.ToLower(v.SQL), tenantColumn)
	case clause.NamedExpr:
		return strings.Contains(strings.ToLower(v.SQL), tenantColumn)
	}
	return false
}

func isTenantColumn(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, tenantColumn) || strings.HasSuffix(strings.ToLower(c), "."+tenantColumn)
	case clause.Column:
		return strings.EqualFold(c.Name, tenantColumn)
	}
	return false
}

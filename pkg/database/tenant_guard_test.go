package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/clause"
)

func TestWhereHasTenant(t *testing.T) {
	tests := []struct {
		name  string
		where clause.Where
		want  bool
	}{
		{"raw expression", clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "tenant_id = ? AND id = ?"}}}, true},
		{"eq column", clause.Where{Exprs: []clause.Expression{clause.Eq{Column: clause.Column{Name: "tenant_id"}}}}, true},
		{"qualified string", clause.Where{Exprs: []clause.Expression{clause.Eq{Column: "documents.tenant_id"}}}, true},
		{"nested and", clause.Where{Exprs: []clause.Expression{clause.AndConditions{Exprs: []clause.Expression{
			clause.Eq{Column: "id"}, clause.Eq{Column: "tenant_id"},
		}}}}, true},
		{"id only", clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "id = ?"}}}, false},
		{"in on foreign key", clause.Where{Exprs: []clause.Expression{clause.IN{Column: clause.Column{Name: "document_id"}}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, whereHasTenant(clause.Clause{Expression: tt.where}))
		})
	}

	assert.False(t, whereHasTenant(clause.Clause{}))
}

func TestTenantContext(t *testing.T) {
	ctx := context.Background()
	_, ok := TenantFromContext(ctx)
	assert.False(t, ok)

	id := uuid.New()
	got, ok := TenantFromContext(WithTenant(ctx, id))
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = TenantFromContext(WithTenant(ctx, uuid.Nil))
	assert.False(t, ok)
}

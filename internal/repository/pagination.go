package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

type Pagination struct {
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
	Sort     string `query:"sort"` // column, "-" prefix for descending
}

func (p Pagination) normalized() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	n := p.normalized()
	return (n.Page - 1) * n.PageSize
}

func (p Pagination) Limit() int {
	return p.normalized().PageSize
}

// OrderClause maps Sort onto an allowed column, falling back to def.
func (p Pagination) OrderClause(allowed map[string]string, def string) string {
	key := strings.TrimSpace(p.Sort)
	desc := strings.HasPrefix(key, "-")
	key = strings.TrimPrefix(key, "-")
	col, ok := allowed[key]
	if !ok {
		return def
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}

func (p Pagination) apply(q *gorm.DB) *gorm.DB {
	return q.Offset(p.Offset()).Limit(p.Limit())
}

type MovementFilter struct {
	ProductID    *uuid.UUID
	WarehouseID  *uuid.UUID
	DocumentID   *uuid.UUID
	MovementType string
	From         *time.Time
	To           *time.Time
	Search       string
}

type DocumentFilter struct {
	DocumentTypeCode string
	FiscalYear       int
	CounterpartyID   *uuid.UUID
	From             *time.Time
	To               *time.Time
	Search           string
}

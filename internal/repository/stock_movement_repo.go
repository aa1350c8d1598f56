package repository

import (
	"go-doc-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockMovementRepository is insert-only. It has no update or delete.
type StockMovementRepository interface {
	Append(movements []model.StockMovement) error
	SumQuantity(tenantID, productID uuid.UUID, warehouseID *uuid.UUID) (decimal.Decimal, error)
	SumByWarehouse(tenantID, productID uuid.UUID) ([]WarehouseStock, error)
	List(tenantID uuid.UUID, filter MovementFilter, page Pagination) ([]model.StockMovement, int64, error)
}

// WarehouseStock is one row of a per-warehouse stock fold.
type WarehouseStock struct {
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

type stockMovementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db}
}

func (r *stockMovementRepo) Append(movements []model.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.Create(&movements).Error
}

func (r *stockMovementRepo) SumQuantity(tenantID, productID uuid.UUID, warehouseID *uuid.UUID) (decimal.Decimal, error) {
	q := r.db.Model(&model.StockMovement{}).
		Select("COALESCE(SUM(signed_quantity), 0)").
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)
	if warehouseID != nil {
		q = q.Where("warehouse_id = ?", *warehouseID)
	}

	var total decimal.Decimal
	if err := q.Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *stockMovementRepo) SumByWarehouse(tenantID, productID uuid.UUID) ([]WarehouseStock, error) {
	rows, err := r.db.Model(&model.StockMovement{}).
		Select("warehouse_id, COALESCE(SUM(signed_quantity), 0)").
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Group("warehouse_id").
		Order("warehouse_id ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []WarehouseStock
	for rows.Next() {
		var ws WarehouseStock
		if err := rows.Scan(&ws.WarehouseID, &ws.Quantity); err != nil {
			return nil, err
		}
		results = append(results, ws)
	}
	return results, rows.Err()
}

var movementSortColumns = map[string]string{
	"moved_at": "moved_at",
	"quantity": "signed_quantity",
	"type":     "movement_type",
	"document": "document_number",
}

func (r *stockMovementRepo) List(tenantID uuid.UUID, filter MovementFilter, page Pagination) ([]model.StockMovement, int64, error) {
	q := r.db.Model(&model.StockMovement{}).Where("tenant_id = ?", tenantID)
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.DocumentID != nil {
		q = q.Where("document_id = ?", *filter.DocumentID)
	}
	if filter.MovementType != "" {
		q = q.Where("movement_type = ?", filter.MovementType)
	}
	if filter.From != nil {
		q = q.Where("moved_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("moved_at <= ?", *filter.To)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("(document_number ILIKE ? OR notes ILIKE ?)", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []model.StockMovement
	err := page.apply(q).
		Order(page.OrderClause(movementSortColumns, "moved_at DESC")).
		Find(&movements).Error
	return movements, total, err
}

package service

import (
	"context"
	"fmt"
	"time"

	"go-doc-ledger/internal/logger"
	"go-doc-ledger/internal/model"
	"go-doc-ledger/internal/repository"
	"go-doc-ledger/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type AdjustmentInput struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"uuid_required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" validate:"uuid_required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"decimal_scale=4"`
	// Defaults to ADJUSTMENT; INITIAL_LOAD is the only other accepted kind.
	MovementType model.MovementType `json:"movement_type" validate:"omitempty,oneof=ADJUSTMENT INITIAL_LOAD"`
	Notes        string             `json:"notes" validate:"max=1000"`
}

type TransferInput struct {
	ProductID       uuid.UUID       `json:"product_id" validate:"uuid_required"`
	FromWarehouseID uuid.UUID       `json:"from_warehouse_id" validate:"uuid_required"`
	ToWarehouseID   uuid.UUID       `json:"to_warehouse_id" validate:"uuid_required"`
	Quantity        decimal.Decimal `json:"quantity" validate:"decimal_gt0,decimal_scale=4"`
	Notes           string          `json:"notes" validate:"max=1000"`
}

type LedgerService interface {
	CurrentStock(ctx context.Context, actor Actor, productID uuid.UUID, warehouseID *uuid.UUID) (decimal.Decimal, error)
	StockByWarehouse(ctx context.Context, actor Actor, productID uuid.UUID) ([]repository.WarehouseStock, error)
	ListMovements(ctx context.Context, actor Actor, filter repository.MovementFilter, page repository.Pagination) ([]model.StockMovement, int64, error)
	RecordAdjustment(ctx context.Context, actor Actor, input AdjustmentInput) (*model.StockMovement, error)
	RecordTransfer(ctx context.Context, actor Actor, input TransferInput) ([]model.StockMovement, error)
}

type ledgerService struct {
	uow repository.UnitOfWork
	log *logrus.Entry
}

func NewLedgerService(uow repository.UnitOfWork) LedgerService {
	return &ledgerService{uow: uow, log: logger.WithComponent("ledger")}
}

// CurrentStock is the signed sum of the product's movements, optionally in one warehouse.
func (s *ledgerService) CurrentStock(ctx context.Context, actor Actor, productID uuid.UUID, warehouseID *uuid.UUID) (decimal.Decimal, error) {
	if err := actor.require(model.PrivStockView); err != nil {
		return decimal.Zero, err
	}
	return s.uow.Read(scoped(ctx, actor.TenantID)).Movements.SumQuantity(actor.TenantID, productID, warehouseID)
}

func (s *ledgerService) StockByWarehouse(ctx context.Context, actor Actor, productID uuid.UUID) ([]repository.WarehouseStock, error) {
	if err := actor.require(model.PrivStockView); err != nil {
		return nil, err
	}
	return s.uow.Read(scoped(ctx, actor.TenantID)).Movements.SumByWarehouse(actor.TenantID, productID)
}

func (s *ledgerService) ListMovements(ctx context.Context, actor Actor, filter repository.MovementFilter, page repository.Pagination) ([]model.StockMovement, int64, error) {
	if err := actor.require(model.PrivStockView); err != nil {
		return nil, 0, err
	}
	if filter.MovementType != "" && !model.MovementType(filter.MovementType).Valid() {
		return nil, 0, validationError("ListMovements", "movement_type",
			fmt.Sprintf("unknown movement type '%s'", filter.MovementType))
	}
	return s.uow.Read(scoped(ctx, actor.TenantID)).Movements.List(actor.TenantID, filter, page)
}

// RecordAdjustment appends one signed manual movement. Valuation is not affected.
func (s *ledgerService) RecordAdjustment(ctx context.Context, actor Actor, input AdjustmentInput) (*model.StockMovement, error) {
	const op = "RecordAdjustment"
	if err := actor.require(model.PrivStockAdjust); err != nil {
		return nil, err
	}
	if err := validateInput(op, input); err != nil {
		return nil, err
	}
	if input.Quantity.IsZero() {
		return nil, validationError(op, "quantity", "must not be zero")
	}
	movementType := input.MovementType
	if movementType == "" {
		movementType = model.MovementAdjustment
	}

	var movement model.StockMovement
	err := s.uow.Transaction(scoped(ctx, actor.TenantID), func(repos *repository.Repositories) error {
		if err := ensureTenantActive(repos, actor.TenantID); err != nil {
			return err
		}
		product, err := checkStockTarget(repos, op, actor.TenantID, input.ProductID, input.WarehouseID)
		if err != nil {
			return err
		}
		if !money.HasScale(input.Quantity, product.AllowedQuantityScale()) {
			return validationError(op, "quantity", fmt.Sprintf("at most %d decimal places", product.AllowedQuantityScale()))
		}

		movement = model.StockMovement{
			TenantID:       actor.TenantID,
			ProductID:      input.ProductID,
			WarehouseID:    input.WarehouseID,
			SignedQuantity: input.Quantity,
			MovementType:   movementType,
			MovedAt:        time.Now().UTC(),
			Notes:          input.Notes,
			CreatedBy:      actor.UserID,
		}
		return repos.Movements.Append([]model.StockMovement{movement})
	})
	if err != nil {
		return nil, withContext(err, actor.TenantID, uuid.Nil)
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id":    actor.TenantID,
		"product_id":   input.ProductID,
		"warehouse_id": input.WarehouseID,
		"quantity":     input.Quantity.String(),
		"type":         movementType,
	}).Info("ledger.adjustment.recorded")
	return &movement, nil
}

// RecordTransfer moves quantity between two warehouses as an OUT/IN pair.
func (s *ledgerService) RecordTransfer(ctx context.Context, actor Actor, input TransferInput) ([]model.StockMovement, error) {
	const op = "RecordTransfer"
	if err := actor.require(model.PrivStockAdjust); err != nil {
		return nil, err
	}
	if err := validateInput(op, input); err != nil {
		return nil, err
	}
	if input.FromWarehouseID == input.ToWarehouseID {
		return nil, validationError(op, "to_warehouse_id", "must differ from the source warehouse")
	}

	var movements []model.StockMovement
	err := s.uow.Transaction(scoped(ctx, actor.TenantID), func(repos *repository.Repositories) error {
		if err := ensureTenantActive(repos, actor.TenantID); err != nil {
			return err
		}
		product, err := checkStockTarget(repos, op, actor.TenantID, input.ProductID, input.FromWarehouseID)
		if err != nil {
			return err
		}
		if _, err := findWarehouse(repos, op, "to_warehouse_id", actor.TenantID, input.ToWarehouseID); err != nil {
			return err
		}
		if !money.HasScale(input.Quantity, product.AllowedQuantityScale()) {
			return validationError(op, "quantity", fmt.Sprintf("at most %d decimal places", product.AllowedQuantityScale()))
		}

		now := time.Now().UTC()
		movements = []model.StockMovement{
			{
				TenantID:       actor.TenantID,
				ProductID:      input.ProductID,
				WarehouseID:    input.FromWarehouseID,
				SignedQuantity: input.Quantity.Neg(),
				MovementType:   model.MovementTransferOut,
				MovedAt:        now,
				Notes:          input.Notes,
				CreatedBy:      actor.UserID,
			},
			{
				TenantID:       actor.TenantID,
				ProductID:      input.ProductID,
				WarehouseID:    input.ToWarehouseID,
				SignedQuantity: input.Quantity,
				MovementType:   model.MovementTransferIn,
				MovedAt:        now,
				Notes:          input.Notes,
				CreatedBy:      actor.UserID,
			},
		}
		return repos.Movements.Append(movements)
	})
	if err != nil {
		return nil, withContext(err, actor.TenantID, uuid.Nil)
	}
	return movements, nil
}

func checkStockTarget(repos *repository.Repositories, op string, tenantID, productID, warehouseID uuid.UUID) (*model.Product, error) {
	product, err := repos.Products.FindByID(tenantID, productID)
	if repository.IsNotFound(err) {
		return nil, validationError(op, "product_id", "product does not belong to the tenant")
	}
	if err != nil {
		return nil, err
	}
	if _, err := findWarehouse(repos, op, "warehouse_id", tenantID, warehouseID); err != nil {
		return nil, err
	}
	return product, nil
}

func findWarehouse(repos *repository.Repositories, op, field string, tenantID, warehouseID uuid.UUID) (*model.Warehouse, error) {
	warehouse, err := repos.Warehouses.FindByID(tenantID, warehouseID)
	if repository.IsNotFound(err) {
		return nil, validationError(op, field, "warehouse does not belong to the tenant")
	}
	if err != nil {
		return nil, err
	}
	if !warehouse.IsActive {
		return nil, validationError(op, field, fmt.Sprintf("warehouse '%s' is inactive", warehouse.Code))
	}
	return warehouse, nil
}

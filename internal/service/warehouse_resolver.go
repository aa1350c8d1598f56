package service

import (
	"fmt"

	"go-doc-ledger/internal/model"

	"github.com/google/uuid"
)

// ResolveWarehouse picks the warehouse for a line. First match wins:
// the line's own warehouse, the product default, the document main warehouse.
func ResolveWarehouse(lineWarehouseID *uuid.UUID, product *model.Product, mainWarehouseID *uuid.UUID) (uuid.UUID, bool) {
	if lineWarehouseID != nil && *lineWarehouseID != uuid.Nil {
		return *lineWarehouseID, true
	}
	if product != nil && product.DefaultWarehouseID != nil && *product.DefaultWarehouseID != uuid.Nil {
		return *product.DefaultWarehouseID, true
	}
	if mainWarehouseID != nil && *mainWarehouseID != uuid.Nil {
		return *mainWarehouseID, true
	}
	return uuid.Nil, false
}

func resolveLineWarehouse(index int, line LineInput, product *model.Product, mainWarehouseID *uuid.UUID) (uuid.UUID, error) {
	id, ok := ResolveWarehouse(line.WarehouseID, product, mainWarehouseID)
	if !ok {
		code := ""
		if product != nil {
			code = product.Code
		}
		return uuid.Nil, configurationError("resolveWarehouse", fmt.Sprintf("lines[%d].warehouse_id", index),
			fmt.Sprintf("no warehouse on the line, on product '%s' or on the document", code))
	}
	return id, nil
}

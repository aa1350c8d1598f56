package service

import (
	"fmt"

	"go-doc-ledger/internal/model"
	"go-doc-ledger/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LineInput struct {
	ProductID   *uuid.UUID      `json:"product_id"`
	Description string          `json:"description" validate:"max=255"`
	Quantity    decimal.Decimal `json:"quantity" validate:"decimal_gt0,decimal_scale=4"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"decimal_gte0,decimal_scale=2"`
	VatRate     decimal.Decimal `json:"vat_rate" validate:"decimal_gte0,decimal_max=1,decimal_scale=4"`
	WarehouseID *uuid.UUID      `json:"warehouse_id"`
}

// LineAmounts are the persisted amounts of one line.
type LineAmounts struct {
	Net   decimal.Decimal
	Vat   decimal.Decimal
	Gross decimal.Decimal
}

// ComputeLineAmounts rounds once per persisted amount: net and vat to cents, gross as their sum.
func ComputeLineAmounts(quantity, unitPrice, vatRate decimal.Decimal) LineAmounts {
	net := money.LineNet(quantity, unitPrice)
	vat := money.LineVat(net, vatRate)
	return LineAmounts{Net: net, Vat: vat, Gross: net.Add(vat)}
}

// DocumentTotals sums line amounts exactly.
func DocumentTotals(lines []model.DocumentLine) LineAmounts {
	var t LineAmounts
	for _, l := range lines {
		t.Net = t.Net.Add(l.NetAmount)
		t.Vat = t.Vat.Add(l.VatAmount)
		t.Gross = t.Gross.Add(l.GrossAmount)
	}
	return t
}

// checkLine enforces ranges and scales. Excess digits are an error, never truncated.
func checkLine(index int, line LineInput, product *model.Product) error {
	const op = "checkLine"
	field := func(name string) string { return fmt.Sprintf("lines[%d].%s", index, name) }

	quantityScale := money.QuantityScale
	if product != nil {
		quantityScale = product.AllowedQuantityScale()
	}

	if !line.Quantity.IsPositive() {
		return validationError(op, field("quantity"), "must be greater than zero")
	}
	if !money.HasScale(line.Quantity, quantityScale) {
		return validationError(op, field("quantity"), fmt.Sprintf("at most %d decimal places", quantityScale))
	}
	if line.UnitPrice.IsNegative() {
		return validationError(op, field("unit_price"), "must not be negative")
	}
	if !money.HasScale(line.UnitPrice, money.PriceScale) {
		return validationError(op, field("unit_price"), fmt.Sprintf("at most %d decimal places", money.PriceScale))
	}
	if !money.InRange(line.VatRate, money.Zero, money.One) {
		return validationError(op, field("vat_rate"), "must be between 0 and 1")
	}
	if !money.HasScale(line.VatRate, money.RateScale) {
		return validationError(op, field("vat_rate"), fmt.Sprintf("at most %d decimal places", money.RateScale))
	}
	return nil
}

package service

import (
	"fmt"
	"time"

	"go-doc-ledger/internal/model"
	"go-doc-ledger/pkg/money"

	"github.com/shopspring/decimal"
)

const (
	MinDues = 1
	MaxDues = 24
)

// DefaultMaxDueBackdateDays bounds how far before the document date a due date may fall.
const DefaultMaxDueBackdateDays = 365

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// ExpandInstallments splits grossTotal into the condition's dues.
// Every installment gets floor(gross/n, 2) and the last one takes the remainder,
// so the amounts always sum to grossTotal. Due date i is
// documentDate + daysToFirstDue + i*gapBetweenDues, moved to month end when the
// condition says so. A single due ignores the gap.
func ExpandInstallments(cond *model.PaymentCondition, documentDate time.Time, grossTotal decimal.Decimal, maxBackdateDays int) ([]model.Installment, error) {
	const op = "ExpandInstallments"
	n := cond.NumberOfDues
	if n < MinDues || n > MaxDues {
		return nil, validationError(op, "number_of_dues", fmt.Sprintf("must be between %d and %d, got %d", MinDues, MaxDues, n))
	}
	if !money.HasScale(grossTotal, money.AmountScale) {
		return nil, validationError(op, "gross_total", "must have at most 2 decimal places")
	}
	if maxBackdateDays < 0 {
		maxBackdateDays = DefaultMaxDueBackdateDays
	}

	base := dateOnly(documentDate)
	earliest := base.AddDate(0, 0, -maxBackdateDays)
	gap := cond.GapBetweenDues
	if n == 1 {
		gap = 0
	}

	share := money.Floor(grossTotal.Div(decimal.NewFromInt(int64(n))), money.AmountScale)
	last := grossTotal.Sub(share.Mul(decimal.NewFromInt(int64(n - 1))))

	installments := make([]model.Installment, 0, n)
	for i := 0; i < n; i++ {
		due := base.AddDate(0, 0, cond.DaysToFirstDue+i*gap)
		if cond.IsEndOfMonth {
			due = endOfMonth(due)
		}
		if due.Before(earliest) {
			field := "days_to_first_due"
			if i > 0 {
				field = "gap_between_dues"
			}
			return nil, validationError(op, field,
				fmt.Sprintf("installment %d would be due %s, more than %d days before the document date", i+1, due.Format("2006-01-02"), maxBackdateDays))
		}

		amount := share
		if i == n-1 {
			amount = last
		}
		installments = append(installments, model.Installment{
			Sequence: i + 1,
			DueDate:  due,
			Amount:   amount,
		})
	}
	return installments, nil
}

// InstallmentStatus derives the status from the amount paid so far.
func InstallmentStatus(amount, paid decimal.Decimal) model.InstallmentStatus {
	switch {
	case paid.GreaterThanOrEqual(amount):
		return model.InstallmentPaid
	case paid.IsPositive():
		return model.InstallmentPartial
	default:
		return model.InstallmentPending
	}
}

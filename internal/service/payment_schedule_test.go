package service

import (
	"fmt"
	"testing"

	"go-doc-ledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandInstallmentsThreeDues(t *testing.T) {
	cond := &model.PaymentCondition{DaysToFirstDue: 30, GapBetweenDues: 30, NumberOfDues: 3}

	got, err := ExpandInstallments(cond, day("2024-01-15"), dec("100.00"), DefaultMaxDueBackdateDays)
	require.NoError(t, err)
	require.Len(t, got, 3)

	want := []struct {
		due    string
		amount string
	}{
		{"2024-02-14", "33.33"},
		{"2024-03-15", "33.33"},
		{"2024-04-14", "33.34"},
	}
	for i, w := range want {
		assert.Equal(t, i+1, got[i].Sequence)
		assert.Equal(t, w.due, got[i].DueDate.Format("2006-01-02"))
		requireDecimal(t, w.amount, got[i].Amount)
	}
}

func TestExpandInstallmentsSumLaw(t *testing.T) {
	totals := []string{"0.00", "0.01", "0.05", "1.00", "99.99", "100.00", "1234.57", "999999.99"}
	for n := MinDues; n <= MaxDues; n++ {
		for _, total := range totals {
			t.Run(fmt.Sprintf("%d dues of %s", n, total), func(t *testing.T) {
				gross := dec(total)
				cond := &model.PaymentCondition{DaysToFirstDue: 10, GapBetweenDues: 15, NumberOfDues: n}
				got, err := ExpandInstallments(cond, day("2024-01-31"), gross, DefaultMaxDueBackdateDays)
				require.NoError(t, err)
				require.Len(t, got, n)

				sum := decimal.Zero
				for i, inst := range got {
					sum = sum.Add(inst.Amount)
					assert.True(t, inst.Amount.Equal(inst.Amount.Truncate(2)), "installment %d has sub-cent digits", i)
					if i < n-1 {
						assert.True(t, inst.Amount.Equal(got[0].Amount))
					}
				}
				assert.Truef(t, sum.Equal(gross), "sum %s != gross %s", sum, gross)
				assert.True(t, got[n-1].Amount.GreaterThanOrEqual(got[0].Amount))
			})
		}
	}
}

func TestExpandInstallmentsEndOfMonth(t *testing.T) {
	cond := &model.PaymentCondition{DaysToFirstDue: 30, GapBetweenDues: 30, NumberOfDues: 3, IsEndOfMonth: true}

	got, err := ExpandInstallments(cond, day("2024-01-15"), dec("90.00"), DefaultMaxDueBackdateDays)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got[0].DueDate.Format("2006-01-02"))
	assert.Equal(t, "2024-03-31", got[1].DueDate.Format("2006-01-02"))
	assert.Equal(t, "2024-04-30", got[2].DueDate.Format("2006-01-02"))
}

func TestExpandInstallmentsSingleDueIgnoresGap(t *testing.T) {
	cond := &model.PaymentCondition{DaysToFirstDue: 0, GapBetweenDues: 90, NumberOfDues: 1}

	got, err := ExpandInstallments(cond, day("2024-06-10"), dec("42.42"), DefaultMaxDueBackdateDays)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-06-10", got[0].DueDate.Format("2006-01-02"))
	requireDecimal(t, "42.42", got[0].Amount)
}

func TestExpandInstallmentsNegativeOffsets(t *testing.T) {
	cond := &model.PaymentCondition{DaysToFirstDue: -10, GapBetweenDues: -5, NumberOfDues: 3}
	got, err := ExpandInstallments(cond, day("2024-06-10"), dec("10.00"), DefaultMaxDueBackdateDays)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-31", got[0].DueDate.Format("2006-01-02"))
	assert.Equal(t, "2024-05-21", got[2].DueDate.Format("2006-01-02"))

	cond = &model.PaymentCondition{DaysToFirstDue: 0, GapBetweenDues: -200, NumberOfDues: 3}
	_, err = ExpandInstallments(cond, day("2024-06-10"), dec("10.00"), DefaultMaxDueBackdateDays)
	require.Error(t, err)
	var le *LedgerError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "gap_between_dues", le.Field)

	_, err = ExpandInstallments(cond, day("2024-06-10"), dec("10.00"), 1000)
	assert.NoError(t, err)
}

func TestExpandInstallmentsRejects(t *testing.T) {
	tests := []struct {
		name  string
		cond  model.PaymentCondition
		gross string
		field string
	}{
		{"no dues", model.PaymentCondition{NumberOfDues: 0}, "10.00", "number_of_dues"},
		{"too many dues", model.PaymentCondition{NumberOfDues: 25}, "10.00", "number_of_dues"},
		{"sub-cent total", model.PaymentCondition{NumberOfDues: 2}, "10.001", "gross_total"},
		{"first due too early", model.PaymentCondition{NumberOfDues: 1, DaysToFirstDue: -366}, "10.00", "days_to_first_due"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExpandInstallments(&tt.cond, day("2024-06-10"), dec(tt.gross), DefaultMaxDueBackdateDays)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			var le *LedgerError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.field, le.Field)
		})
	}
}

func TestInstallmentStatus(t *testing.T) {
	assert.Equal(t, model.InstallmentPending, InstallmentStatus(dec("10.00"), decimal.Zero))
	assert.Equal(t, model.InstallmentPartial, InstallmentStatus(dec("10.00"), dec("0.01")))
	assert.Equal(t, model.InstallmentPaid, InstallmentStatus(dec("10.00"), dec("10.00")))
}

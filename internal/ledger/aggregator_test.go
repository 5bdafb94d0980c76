package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msg ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s got %s %v", want, got, msg)
}

func scenario() *memRecords {
	m := newMemRecords()
	m.add(core.KindIncome, "100", "2024-01-05")
	m.add(core.KindExpense, "30", "2024-01-10")
	m.add(core.KindCard, "20", "2024-02-03")
	return m
}

func TestTotalsAndBalance(t *testing.T) {
	agg := NewAggregator(scenario())

	totals, err := agg.Totals(context.Background(), time.Time{})
	require.NoError(t, err)
	assertDec(t, "100", totals.Income)
	assertDec(t, "30", totals.Expense)
	assertDec(t, "20", totals.Card)
	assertDec(t, "0", totals.Donation)
	assertDec(t, "50", totals.Balance)
}

func TestTotalsAsOf(t *testing.T) {
	agg := NewAggregator(scenario())

	totals, err := agg.Totals(context.Background(), time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assertDec(t, "0", totals.Card, "card charge is dated after asOf")
	assertDec(t, "70", totals.Balance)
}

func TestTotalsIgnoreInactive(t *testing.T) {
	m := scenario()
	d := m.add(core.KindDonation, "15", "2024-01-20")
	m.deactivate(core.KindDonation, d.ID)

	totals, err := NewAggregator(m).Totals(context.Background(), time.Time{})
	require.NoError(t, err)
	assertDec(t, "0", totals.Donation)
	assertDec(t, "50", totals.Balance)
}

func TestPeriodTotals(t *testing.T) {
	agg := NewAggregator(scenario())
	ctx := context.Background()

	jan, err := agg.PeriodTotals(ctx, 1, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, jan.Month)
	assert.Equal(t, 2024, jan.Year)
	assertDec(t, "100", jan.Totals.Income)
	assertDec(t, "30", jan.Totals.Expense)
	assertDec(t, "0", jan.Totals.Card)
	assertDec(t, "70", jan.Totals.Balance)

	_, err = agg.PeriodTotals(ctx, 13, 2024)
	assert.True(t, errors.Is(err, core.ErrInvalidMonth))
	_, err = agg.PeriodTotals(ctx, 1, 0)
	assert.True(t, errors.Is(err, core.ErrInvalidYear))
}

func TestPeriodTotalsCalendarBoundaries(t *testing.T) {
	m := newMemRecords()
	m.add(core.KindExpense, "1", "2024-02-01")
	m.add(core.KindExpense, "2", "2024-02-29")
	m.add(core.KindExpense, "4", "2024-03-01")
	m.add(core.KindExpense, "8", "2024-01-31")

	feb, err := NewAggregator(m).PeriodTotals(context.Background(), 2, 2024)
	require.NoError(t, err)
	assertDec(t, "3", feb.Totals.Expense)
}

func TestMonthlyTotalsOmitsEmptyMonths(t *testing.T) {
	m := newMemRecords()
	m.add(core.KindExpense, "10", "2024-03-02")
	m.add(core.KindExpense, "5.50", "2024-03-20")
	m.add(core.KindExpense, "7", "2024-01-15")
	m.add(core.KindExpense, "99", "2023-12-31")
	m.add(core.KindIncome, "1000", "2024-02-01")

	got, err := NewAggregator(m).MonthlyTotals(context.Background(), core.KindExpense, 2024)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Month)
	assertDec(t, "7", got[0].Amount)
	assert.Equal(t, 3, got[1].Month)
	assertDec(t, "15.50", got[1].Amount)
}

func TestMonthlyTotalsEmptyYear(t *testing.T) {
	got, err := NewAggregator(newMemRecords()).MonthlyTotals(context.Background(), core.KindCard, 2024)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAnnualReport(t *testing.T) {
	report, err := NewAggregator(scenario()).AnnualReport(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, 2024, report.Year)
	require.Len(t, report.Series, len(core.Kinds))

	byKind := map[core.Kind][]core.MonthTotal{}
	for _, s := range report.Series {
		byKind[s.Kind] = s.Months
	}
	require.Len(t, byKind[core.KindIncome], 1)
	assert.Equal(t, 1, byKind[core.KindIncome][0].Month)
	require.Len(t, byKind[core.KindCard], 1)
	assert.Equal(t, 2, byKind[core.KindCard][0].Month)
	assert.Empty(t, byKind[core.KindDonation])
	assertDec(t, "50", report.Totals.Balance)
}

func TestAggregatorPropagatesStorageErrors(t *testing.T) {
	m := newMemRecords()
	m.err = &core.StorageError{Op: "list", Err: errors.New("disk gone")}

	_, err := NewAggregator(m).Totals(context.Background(), time.Time{})
	assert.True(t, core.IsStorage(err))
}

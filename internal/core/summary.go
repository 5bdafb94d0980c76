package core

import "github.com/shopspring/decimal"

// Totals holds one sum per kind plus the net balance.
type Totals struct {
	Income   decimal.Decimal
	Expense  decimal.Decimal
	Card     decimal.Decimal
	Donation decimal.Decimal
	Balance  decimal.Decimal
}

// NewTotals returns zeroed totals.
func NewTotals() Totals {
	return Totals{
		Income:   decimal.Zero,
		Expense:  decimal.Zero,
		Card:     decimal.Zero,
		Donation: decimal.Zero,
		Balance:  decimal.Zero,
	}
}

// Add accumulates amount into the bucket for kind k and refreshes Balance.
func (t *Totals) Add(k Kind, amount decimal.Decimal) {
	switch k {
	case KindIncome:
		t.Income = t.Income.Add(amount)
	case KindExpense:
		t.Expense = t.Expense.Add(amount)
	case KindCard:
		t.Card = t.Card.Add(amount)
	case KindDonation:
		t.Donation = t.Donation.Add(amount)
	}
	t.Balance = decimal.Zero
	for _, kind := range Kinds {
		if kind.Outflow() {
			t.Balance = t.Balance.Sub(t.Of(kind))
		} else {
			t.Balance = t.Balance.Add(t.Of(kind))
		}
	}
}

// Of returns the sum for kind k.
func (t Totals) Of(k Kind) decimal.Decimal {
	switch k {
	case KindIncome:
		return t.Income
	case KindExpense:
		return t.Expense
	case KindCard:
		return t.Card
	case KindDonation:
		return t.Donation
	}
	return decimal.Zero
}

// MonthTotal is the summed amount of one kind in one calendar month.
type MonthTotal struct {
	Month  int // 1-12
	Amount decimal.Decimal
}

// PeriodReport summarizes one calendar month.
type PeriodReport struct {
	Year   int
	Month  int
	Totals Totals
}

// KindSeries is the month-by-month activity of one kind over a year.
type KindSeries struct {
	Kind   Kind
	Months []MonthTotal
}

// AnnualReport summarizes one calendar year.
type AnnualReport struct {
	Year   int
	Series []KindSeries
	Totals Totals
}

package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"ledger/internal/core"
)

// Aggregator sums active records by kind and by calendar period.
type Aggregator struct {
	records RecordReader
}

func NewAggregator(records RecordReader) *Aggregator {
	return &Aggregator{records: records}
}

// Totals sums every active record of each kind. A non-zero asOf limits the
// sums to records dated on or before it.
func (a *Aggregator) Totals(ctx context.Context, asOf time.Time) (core.Totals, error) {
	span := core.Span{}
	if !asOf.IsZero() {
		span = core.Through(core.DateOf(asOf))
	}
	return a.sumSpan(ctx, span)
}

// PeriodTotals sums the records dated inside one calendar month.
func (a *Aggregator) PeriodTotals(ctx context.Context, month, year int) (core.PeriodReport, error) {
	span, err := core.MonthSpan(year, month)
	if err != nil {
		return core.PeriodReport{}, err
	}
	totals, err := a.sumSpan(ctx, span)
	if err != nil {
		return core.PeriodReport{}, err
	}
	return core.PeriodReport{Year: year, Month: month, Totals: totals}, nil
}

// MonthlyTotals returns one entry per month of year with activity for kind k,
// ascending. Months without records are left out rather than reported as zero.
func (a *Aggregator) MonthlyTotals(ctx context.Context, k core.Kind, year int) ([]core.MonthTotal, error) {
	span, err := core.YearSpan(year)
	if err != nil {
		return nil, err
	}
	recs, err := a.records.ListActive(ctx, k, span)
	if err != nil {
		return nil, err
	}
	return monthly(recs), nil
}

// AnnualReport returns the month series of every kind plus the yearly totals.
func (a *Aggregator) AnnualReport(ctx context.Context, year int) (core.AnnualReport, error) {
	span, err := core.YearSpan(year)
	if err != nil {
		return core.AnnualReport{}, err
	}
	byKind, err := a.fetch(ctx, span)
	if err != nil {
		return core.AnnualReport{}, err
	}

	report := core.AnnualReport{Year: year, Totals: core.NewTotals()}
	for i, k := range core.Kinds {
		report.Series = append(report.Series, core.KindSeries{Kind: k, Months: monthly(byKind[i])})
		for _, r := range byKind[i] {
			report.Totals.Add(k, r.Amount)
		}
	}
	return report, nil
}

func (a *Aggregator) sumSpan(ctx context.Context, span core.Span) (core.Totals, error) {
	byKind, err := a.fetch(ctx, span)
	if err != nil {
		return core.Totals{}, err
	}
	totals := core.NewTotals()
	for i, k := range core.Kinds {
		for _, r := range byKind[i] {
			totals.Add(k, r.Amount)
		}
	}
	return totals, nil
}

// fetch loads the active records of every kind concurrently, indexed like core.Kinds.
func (a *Aggregator) fetch(ctx context.Context, span core.Span) ([len(core.Kinds)][]core.Record, error) {
	var out [len(core.Kinds)][]core.Record
	g, gctx := errgroup.WithContext(ctx)
	for i, k := range core.Kinds {
		g.Go(func() error {
			recs, err := a.records.ListActive(gctx, k, span)
			if err != nil {
				return err
			}
			out[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

func monthly(recs []core.Record) []core.MonthTotal {
	sums := map[int]decimal.Decimal{}
	for _, r := range recs {
		m := r.Date.Month()
		sums[m] = sums[m].Add(r.Amount)
	}
	out := make([]core.MonthTotal, 0, len(sums))
	for m, amount := range sums {
		if amount.IsZero() {
			continue
		}
		out = append(out, core.MonthTotal{Month: m, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

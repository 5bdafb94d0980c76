package ledger

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"ledger/internal/core"
)

// DefaultRecentLimit is the dashboard feed size.
const DefaultRecentLimit = 5

// Feed merges the records of several kinds into one chronological view.
type Feed struct {
	records RecordReader
}

func NewFeed(records RecordReader) *Feed {
	return &Feed{records: records}
}

// Recent takes up to limit records per kind, merges them and keeps the first
// limit. The per-kind cap keeps one busy kind from hiding the others, so the
// result is not a true global top-N when volume is high.
func (f *Feed) Recent(ctx context.Context, limit int) ([]core.Record, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	parts := make([][]core.Record, len(core.Kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, k := range core.Kinds {
		g.Go(func() error {
			recs, err := f.records.RecentActive(gctx, k, limit)
			if err != nil {
				return err
			}
			parts[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := merge(parts)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// Statement returns every active record selected by filter, newest first.
func (f *Feed) Statement(ctx context.Context, filter core.KindFilter) ([]core.Record, error) {
	kinds := filter.Kinds()
	parts := make([][]core.Record, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, k := range kinds {
		g.Go(func() error {
			recs, err := f.records.ListActive(gctx, k, core.Span{})
			if err != nil {
				return err
			}
			parts[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return merge(parts), nil
}

func merge(parts [][]core.Record) []core.Record {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]core.Record, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	SortFeed(out)
	return out
}

// SortFeed orders records by date descending, then kind order, then id descending.
func SortFeed(recs []core.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.After(b.Date.Time)
		}
		if a.Kind() != b.Kind() {
			return a.Kind() < b.Kind()
		}
		return a.ID > b.ID
	})
}

package ledger

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/operator/actions"
)

// memRecords is an in-memory RecordReader.
type memRecords struct {
	mu     sync.Mutex
	nextID int64
	recs   map[core.Kind][]core.Record
	err    error
}

func newMemRecords() *memRecords {
	return &memRecords{recs: map[core.Kind][]core.Record{}}
}

func (m *memRecords) add(k core.Kind, amount, date string) core.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	detail, err := core.NewDetail(k, "x")
	if err != nil {
		panic(err)
	}
	rec := core.Record{
		ID:     m.nextID,
		Amount: decimal.RequireFromString(amount),
		Date:   d,
		Active: true,
		Detail: detail,
	}
	m.recs[k] = append(m.recs[k], rec)
	return rec
}

func (m *memRecords) deactivate(k core.Kind, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.recs[k] {
		if m.recs[k][i].ID == id {
			m.recs[k][i].Active = false
		}
	}
}

func (m *memRecords) ListActive(_ context.Context, k core.Kind, span core.Span) ([]core.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []core.Record
	for _, r := range m.recs[k] {
		if r.Active && span.Contains(r.Date) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memRecords) RecentActive(ctx context.Context, k core.Kind, limit int) ([]core.Record, error) {
	out, err := m.ListActive(ctx, k, core.Span{})
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeCategories struct {
	cats []core.Category
}

func (f *fakeCategories) ListCategories(context.Context) ([]core.Category, error) {
	return f.cats, nil
}

// fakeProcessor applies category actions to fakeCategories without a database.
type fakeProcessor struct {
	store *fakeCategories
	calls int
}

var errUnsupported = errors.New("unsupported action")

func (p *fakeProcessor) Process(_ context.Context, act actions.IAction) error {
	p.calls++
	switch a := act.(type) {
	case *actions.EnsureCategory:
		a.Category, a.Created = p.ensure(a.Name)
	case *actions.SeedCategories:
		for _, n := range a.Names {
			if _, created := p.ensure(n); created {
				a.Created = append(a.Created, n)
			}
		}
	default:
		return errUnsupported
	}
	return nil
}

func (p *fakeProcessor) ensure(name string) (core.Category, bool) {
	name, _ = core.NormalizeCategoryName(name)
	for _, c := range p.store.cats {
		if equalFold(c.Name, name) {
			return c, false
		}
	}
	c := core.Category{ID: int64(len(p.store.cats) + 1), Name: name, Active: true}
	p.store.cats = append(p.store.cats, c)
	return c, true
}

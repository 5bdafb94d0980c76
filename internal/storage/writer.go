package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"ledger/internal/core"
)

// Writer performs writes inside one transaction. Callers must end it with
// Commit or Rollback.
type Writer struct {
	tx *sql.Tx
}

func newWriter(tx *sql.Tx) *Writer {
	return &Writer{tx: tx}
}

func (w *Writer) Commit() error {
	return storageErr("commit", w.tx.Commit())
}

func (w *Writer) Rollback() error {
	return storageErr("rollback", w.tx.Rollback())
}

// CreateRecord inserts a new active record. An expense must reference an
// existing active category.
func (w *Writer) CreateRecord(ctx context.Context, nr core.NewRecord) (core.Record, error) {
	if err := nr.Validate(); err != nil {
		return core.Record{}, err
	}
	k := nr.Kind()
	t, err := tableFor(k)
	if err != nil {
		return core.Record{}, err
	}

	detail := nr.Detail
	var detailArg any = detail.Value()
	if k == core.KindExpense {
		cat, found, err := w.FindCategory(ctx, detail.Value())
		if err != nil {
			return core.Record{}, err
		}
		if !found {
			return core.Record{}, core.Invalid("category", core.ErrUnknownCategory,
				fmt.Sprintf("unknown category %q", detail.Value()))
		}
		detailArg = cat.ID
		detail = core.ExpenseDetail{Category: cat.Name}
	}

	q := fmt.Sprintf(`INSERT INTO %s (amount, occurred_on, %s, note) VALUES (?, ?, ?, ?) RETURNING id, created_at`,
		t.name, t.detailCol)

	rec := core.Record{
		Amount: nr.Amount,
		Date:   nr.Date,
		Note:   nr.Note,
		Active: true,
		Detail: detail,
	}
	var createdAt string
	err = w.tx.QueryRowContext(ctx, q, nr.Amount.StringFixed(core.AmountPlaces), nr.Date.String(), detailArg, nr.Note).
		Scan(&rec.ID, &createdAt)
	if err != nil {
		return core.Record{}, storageErr("create "+k.String(), err)
	}
	rec.CreatedAt = parseTimestamp(createdAt)

	slog.InfoContext(ctx, "Record saved to SQLite",
		"kind", k.String(),
		"id", rec.ID,
		"amount", rec.Amount.String(),
		"date", rec.Date.String())

	return rec, nil
}

// SoftDelete marks an active record inactive.
func (w *Writer) SoftDelete(ctx context.Context, k core.Kind, id int64) error {
	t, err := tableFor(k)
	if err != nil {
		return err
	}
	res, err := w.tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET active = 0 WHERE id = ? AND active = 1`, t.name), id)
	if err != nil {
		return storageErr("soft delete "+k.String(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("soft delete "+k.String(), err)
	}
	if n == 0 {
		return &core.NotFoundError{Kind: k.String(), ID: id}
	}

	slog.InfoContext(ctx, "Record soft deleted", "kind", k.String(), "id", id)
	return nil
}

// FindCategory looks up an active category by name, ignoring case.
func (w *Writer) FindCategory(ctx context.Context, name string) (core.Category, bool, error) {
	c, err := scanCategory(w.tx.QueryRowContext(ctx,
		`SELECT id, name, active, created_at FROM categories WHERE name = ? COLLATE NOCASE AND active = 1`, name))
	if isNoRows(err) {
		return core.Category{}, false, nil
	}
	if err != nil {
		return core.Category{}, false, storageErr("find category", err)
	}
	return c, true, nil
}

// InsertCategory stores a new active category. A name clash with an active
// category fails with an error wrapping ErrDuplicate.
func (w *Writer) InsertCategory(ctx context.Context, name string) (core.Category, error) {
	c := core.Category{Name: name, Active: true}
	var createdAt string
	err := w.tx.QueryRowContext(ctx,
		`INSERT INTO categories (name) VALUES (?) RETURNING id, created_at`, name).Scan(&c.ID, &createdAt)
	if IsUniqueViolation(err) {
		err = fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	if err != nil {
		return core.Category{}, storageErr("insert category", err)
	}
	c.CreatedAt = parseTimestamp(createdAt)

	slog.InfoContext(ctx, "Category created", "id", c.ID, "name", c.Name)
	return c, nil
}

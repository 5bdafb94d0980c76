package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"ledger/internal/core"
)

// recordTable maps a kind to its table and kind-specific column.
type recordTable struct {
	name      string
	detailCol string
}

func tableFor(k core.Kind) (recordTable, error) {
	switch k {
	case core.KindIncome:
		return recordTable{name: "incomes", detailCol: "source"}, nil
	case core.KindExpense:
		return recordTable{name: "expenses", detailCol: "category_id"}, nil
	case core.KindCard:
		return recordTable{name: "card_charges", detailCol: "installment"}, nil
	case core.KindDonation:
		return recordTable{name: "donations", detailCol: "institution"}, nil
	}
	return recordTable{}, &core.InvalidKindError{Value: k.String()}
}

// selectFrom returns the column list and FROM clause for kind k, with the
// kind-specific value exposed as the fourth column and the table aliased r.
func selectFrom(k core.Kind) (string, error) {
	t, err := tableFor(k)
	if err != nil {
		return "", err
	}
	if k == core.KindExpense {
		return `SELECT r.id, r.amount, r.occurred_on, c.name, r.note, r.active, r.created_at
			FROM expenses r JOIN categories c ON c.id = r.category_id`, nil
	}
	return fmt.Sprintf(`SELECT r.id, r.amount, r.occurred_on, r.%s, r.note, r.active, r.created_at
			FROM %s r`, t.detailCol, t.name), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(k core.Kind, row rowScanner) (core.Record, error) {
	var (
		rec       core.Record
		amount    decimal.Decimal
		occurred  string
		detail    string
		createdAt string
	)
	if err := row.Scan(&rec.ID, &amount, &occurred, &detail, &rec.Note, &rec.Active, &createdAt); err != nil {
		return core.Record{}, err
	}
	d, err := time.Parse(core.DateLayout, occurred)
	if err != nil {
		return core.Record{}, fmt.Errorf("parse occurred_on %q: %w", occurred, err)
	}
	rec.Amount = amount
	rec.Date = core.Date{Time: d}
	rec.CreatedAt = parseTimestamp(createdAt)
	rec.Detail, err = core.NewDetail(k, detail)
	if err != nil {
		return core.Record{}, err
	}
	return rec, nil
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c         core.Category
		createdAt string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Active, &createdAt); err != nil {
		return core.Category{}, err
	}
	c.CreatedAt = parseTimestamp(createdAt)
	return c, nil
}

func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// spanClause appends the date bounds of span to a WHERE clause.
func spanClause(span core.Span, where []string, args []any) ([]string, []any) {
	if !span.From.IsZero() {
		where = append(where, "r.occurred_on >= ?")
		args = append(args, span.From.String())
	}
	if !span.To.IsZero() {
		where = append(where, "r.occurred_on < ?")
		args = append(args, span.To.String())
	}
	return where, args
}

func whereSQL(where []string) string {
	if len(where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(where, " AND ")
}

// ErrDuplicate marks a write rejected by a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate key")

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint failure
// or wraps ErrDuplicate.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, ErrDuplicate) {
		return true
	}
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	if se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &core.StorageError{Op: op, Err: err}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

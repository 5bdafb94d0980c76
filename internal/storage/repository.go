package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"ledger/internal/core"
)

const dsnOptions = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"

// SQLiteRepository is the record store. Reads go straight to the pool;
// writes go through a Writer obtained from Write.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + "?" + dsnOptions
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("SQLite repository ready", "path", dbPath)
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return storageErr("ping", r.db.PingContext(ctx))
}

// Write begins a transaction and returns a Writer bound to it.
func (r *SQLiteRepository) Write(ctx context.Context) (*Writer, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	return newWriter(tx), nil
}

// Get returns the record of kind k with the given id, active or not.
func (r *SQLiteRepository) Get(ctx context.Context, k core.Kind, id int64) (core.Record, error) {
	q, err := selectFrom(k)
	if err != nil {
		return core.Record{}, err
	}
	rec, err := scanRecord(k, r.db.QueryRowContext(ctx, q+" WHERE r.id = ?", id))
	if isNoRows(err) {
		return core.Record{}, &core.NotFoundError{Kind: k.String(), ID: id}
	}
	if err != nil {
		return core.Record{}, storageErr("get "+k.String(), err)
	}
	return rec, nil
}

// ListActive returns the active records of kind k dated inside span,
// newest first.
func (r *SQLiteRepository) ListActive(ctx context.Context, k core.Kind, span core.Span) ([]core.Record, error) {
	q, err := selectFrom(k)
	if err != nil {
		return nil, err
	}
	where, args := spanClause(span, []string{"r.active = 1"}, nil)
	return r.queryRecords(ctx, k, q+whereSQL(where)+" ORDER BY r.occurred_on DESC, r.id DESC", args...)
}

// RecentActive returns at most limit active records of kind k, newest first.
func (r *SQLiteRepository) RecentActive(ctx context.Context, k core.Kind, limit int) ([]core.Record, error) {
	q, err := selectFrom(k)
	if err != nil {
		return nil, err
	}
	return r.queryRecords(ctx, k, q+" WHERE r.active = 1 ORDER BY r.occurred_on DESC, r.id DESC LIMIT ?", limit)
}

func (r *SQLiteRepository) queryRecords(ctx context.Context, k core.Kind, q string, args ...any) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storageErr("list "+k.String(), err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		rec, err := scanRecord(k, rows)
		if err != nil {
			return nil, storageErr("scan "+k.String(), err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list "+k.String(), err)
	}
	return out, nil
}

// ListCategories returns the active categories ordered by name.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, active, created_at FROM categories WHERE active = 1 ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, storageErr("scan category", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list categories", err)
	}
	return out, nil
}

// CategoryCount returns the number of stored category rows, active or not.
func (r *SQLiteRepository) CategoryCount(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, storageErr("count categories", err)
	}
	return n, nil
}

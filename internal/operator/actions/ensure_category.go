package actions

import (
	"context"
	"log/slog"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// EnsureCategory returns the active category with Name, creating it when
// missing. A concurrent insert of the same name is resolved by a lookup.
type EnsureCategory struct {
	Name string

	Category core.Category
	Created  bool
}

func (e *EnsureCategory) Op() string { return "ensure_category" }

func (e *EnsureCategory) Perform(ctx context.Context, writer *storage.Writer) error {
	c, created, err := ensureCategory(ctx, writer, e.Name)
	if err != nil {
		return err
	}
	e.Category, e.Created = c, created
	return nil
}

// categoryWriter is the part of *storage.Writer that category resolution needs.
type categoryWriter interface {
	FindCategory(ctx context.Context, name string) (core.Category, bool, error)
	InsertCategory(ctx context.Context, name string) (core.Category, error)
}

func ensureCategory(ctx context.Context, writer categoryWriter, raw string) (core.Category, bool, error) {
	name, err := core.NormalizeCategoryName(raw)
	if err != nil {
		return core.Category{}, false, err
	}

	c, found, err := writer.FindCategory(ctx, name)
	if err != nil {
		return core.Category{}, false, err
	}
	if found {
		return c, false, nil
	}

	c, err = writer.InsertCategory(ctx, name)
	if err == nil {
		return c, true, nil
	}
	if !storage.IsUniqueViolation(err) {
		return core.Category{}, false, err
	}

	slog.InfoContext(ctx, "Category created concurrently, retrying as lookup", "name", name)
	c, found, lookupErr := writer.FindCategory(ctx, name)
	if lookupErr != nil {
		return core.Category{}, false, lookupErr
	}
	if !found {
		return core.Category{}, false, err
	}
	return c, false, nil
}

package ledger

import (
	"context"
	"log/slog"

	"ledger/internal/core"
	"ledger/internal/operator/actions"
)

// Categories is the expense category registry.
type Categories struct {
	reader CategoryReader
	writes Processor
}

func NewCategories(reader CategoryReader, writes Processor) *Categories {
	return &Categories{reader: reader, writes: writes}
}

// ListActive returns the active categories ordered by name.
func (c *Categories) ListActive(ctx context.Context) ([]core.Category, error) {
	return c.reader.ListCategories(ctx)
}

// Ensure returns the active category called name, creating it if needed.
func (c *Categories) Ensure(ctx context.Context, name string) (core.Category, error) {
	if _, err := core.NormalizeCategoryName(name); err != nil {
		return core.Category{}, err
	}
	act := &actions.EnsureCategory{Name: name}
	if err := c.writes.Process(ctx, act); err != nil {
		return core.Category{}, err
	}
	if act.Created {
		slog.InfoContext(ctx, "Category registered", "name", act.Category.Name, "id", act.Category.ID)
	}
	return act.Category, nil
}

// Seed makes sure the default categories exist. Safe on every startup.
func (c *Categories) Seed(ctx context.Context) error {
	act := &actions.SeedCategories{Names: actions.DefaultCategories}
	if err := c.writes.Process(ctx, act); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Default categories seeded", "created", len(act.Created))
	return nil
}

package actions

import (
	"context"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// CreateMovement stores one record. When NewCategory is set the category is
// ensured first and used for the expense, all in the same transaction.
type CreateMovement struct {
	Record      core.NewRecord
	NewCategory string

	Created         core.Record
	Category        core.Category
	CategoryCreated bool
}

func (c *CreateMovement) Op() string { return "create_movement" }

func (c *CreateMovement) Perform(ctx context.Context, writer *storage.Writer) error {
	nr := c.Record
	if c.NewCategory != "" && nr.Kind() == core.KindExpense {
		cat, created, err := ensureCategory(ctx, writer, c.NewCategory)
		if err != nil {
			return err
		}
		c.Category, c.CategoryCreated = cat, created
		nr.Detail = core.ExpenseDetail{Category: cat.Name}
	}

	rec, err := writer.CreateRecord(ctx, nr)
	if err != nil {
		return err
	}
	c.Created = rec
	return nil
}

package actions

import (
	"context"

	"ledger/internal/storage"
)

// DefaultCategories is the expense category set seeded on first start.
var DefaultCategories = []string{"Food", "Transport", "Housing", "Leisure", "Health", "Other"}

// SeedCategories ensures every name exists. Running it again is a no-op.
type SeedCategories struct {
	Names []string

	Created []string
}

func (s *SeedCategories) Op() string { return "seed_categories" }

func (s *SeedCategories) Perform(ctx context.Context, writer *storage.Writer) error {
	s.Created = nil
	for _, name := range s.Names {
		c, created, err := ensureCategory(ctx, writer, name)
		if err != nil {
			return err
		}
		if created {
			s.Created = append(s.Created, c.Name)
		}
	}
	return nil
}

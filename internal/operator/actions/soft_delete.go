package actions

import (
	"context"

	"ledger/internal/core"
	"ledger/internal/storage"
)

type SoftDelete struct {
	Kind core.Kind
	ID   int64
}

func (s *SoftDelete) Op() string { return "soft_delete" }

func (s *SoftDelete) Perform(ctx context.Context, writer *storage.Writer) error {
	return writer.SoftDelete(ctx, s.Kind, s.ID)
}

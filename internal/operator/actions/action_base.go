package actions

import (
	"context"

	"ledger/internal/storage"
)

type IAction interface {
	Op() string
	Perform(ctx context.Context, writer *storage.Writer) error
}

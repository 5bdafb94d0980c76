// Package ledger computes totals, reports and merged transaction feeds over
// the active records of the store, and manages the expense category registry.
package ledger

import (
	"context"

	"ledger/internal/core"
	"ledger/internal/operator/actions"
)

// Ports for the record store.
type (
	RecordReader interface {
		// ListActive returns active records of kind k dated inside span, newest first.
		ListActive(ctx context.Context, k core.Kind, span core.Span) ([]core.Record, error)
		// RecentActive returns at most limit active records of kind k, newest first.
		RecentActive(ctx context.Context, k core.Kind, limit int) ([]core.Record, error)
	}

	CategoryReader interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	// Processor runs a write action on the single writer.
	Processor interface {
		Process(ctx context.Context, action actions.IAction) error
	}
)

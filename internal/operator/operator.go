// Package operator serializes ledger writes. Every action runs inside its own
// transaction on a worker goroutine; an action error rolls the transaction back.
package operator

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/operator/actions"
	"ledger/internal/storage"
)

// WriteStore opens write transactions.
type WriteStore interface {
	Write(ctx context.Context) (*storage.Writer, error)
}

// Operator is the worker that processes items from the queue.
type Operator struct {
	store WriteStore
	queue chan ActionItem
}

func NewOperator(s WriteStore, queue chan ActionItem) *Operator {
	return &Operator{
		store: s,
		queue: queue,
	}
}

// Run listens to the queue and processes items. Exits when the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		o.processItem(item)
	}
}

func (o *Operator) processItem(item ActionItem) {
	// The caller may have given up while the item was queued
	if err := item.ctx.Err(); err != nil {
		item.response <- ActionItemResponse{err: err}
		return
	}

	writer, err := o.store.Write(item.ctx)
	if err != nil {
		item.response <- ActionItemResponse{err: err}
		return
	}

	if err := o.perform(item, writer); err != nil {
		if rbErr := writer.Rollback(); rbErr != nil {
			slog.WarnContext(item.ctx, "Rollback failed", "action", item.action.Op(), "error", rbErr)
		}
		item.response <- ActionItemResponse{err: err}
		return
	}

	if err := writer.Commit(); err != nil {
		item.response <- ActionItemResponse{err: err}
		return
	}

	item.response <- ActionItemResponse{}
}

func (o *Operator) perform(item ActionItem, writer *storage.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action %s panicked: %v", item.action.Op(), r)
		}
	}()
	return item.action.Perform(item.ctx, writer)
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}

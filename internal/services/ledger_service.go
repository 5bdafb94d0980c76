package services

import (
	"context"
	"log/slog"
	"strings"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/operator/actions"
)

// Processor runs a write action on the single writer.
type Processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// EventPublisher delivers ledger events to other systems.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// MovementInput is a movement as submitted by a form, before parsing.
type MovementInput struct {
	Kind        string
	Amount      string
	Date        string
	Detail      string
	Note        string
	NewCategory string
}

// LedgerService orchestrates movement writes: parsing, the transactional
// write, cache invalidation and event publishing.
type LedgerService struct {
	writes    Processor
	publisher EventPublisher
	onChange  []func()
	logger    *log.StructuredLogger
}

// NewLedgerService wires the service. publisher may be nil.
func NewLedgerService(writes Processor, publisher EventPublisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &LedgerService{
		writes:    writes,
		publisher: publisher,
		logger:    log.NewStructuredLogger(logger),
	}
}

// OnChange registers fn to run after every successful write.
func (s *LedgerService) OnChange(fn func()) {
	s.onChange = append(s.onChange, fn)
}

// CreateMovement parses and stores one movement. The kind is checked before
// anything else so an unknown kind never reaches storage. For an expense a
// non-blank NewCategory replaces the selected category and is created in the
// same transaction when missing.
func (s *LedgerService) CreateMovement(ctx context.Context, in MovementInput) (core.Record, error) {
	nr, newCategory, err := ParseMovement(in)
	if err != nil {
		return core.Record{}, err
	}

	act := &actions.CreateMovement{Record: nr, NewCategory: newCategory}
	if err := s.writes.Process(ctx, act); err != nil {
		return core.Record{}, err
	}

	s.changed()
	s.logger.LogMovementCreated(ctx, act.Created)
	s.publish(ctx, amqp.NewMovementCreated(act.Created))
	return act.Created, nil
}

// ParseMovement turns form input into a validated NewRecord. The second
// result is the category to ensure before the write, empty when none.
func ParseMovement(in MovementInput) (core.NewRecord, string, error) {
	k, err := core.ParseKind(in.Kind)
	if err != nil {
		return core.NewRecord{}, "", err
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.NewRecord{}, "", err
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.NewRecord{}, "", err
	}

	value := in.Detail
	newCategory := ""
	if k == core.KindExpense {
		if nc := strings.TrimSpace(in.NewCategory); nc != "" {
			if _, err := core.NormalizeCategoryName(nc); err != nil {
				return core.NewRecord{}, "", err
			}
			newCategory, value = nc, nc
		}
	}
	detail, err := core.NewDetail(k, value)
	if err != nil {
		return core.NewRecord{}, "", err
	}

	nr := core.NewRecord{
		Amount: amount,
		Date:   date,
		Note:   strings.TrimSpace(in.Note),
		Detail: detail,
	}
	if err := nr.Validate(); err != nil {
		return core.NewRecord{}, "", err
	}
	return nr, newCategory, nil
}

// DeleteMovement soft deletes the record. The kind is parsed before any
// storage access.
func (s *LedgerService) DeleteMovement(ctx context.Context, kindName string, id int64) error {
	k, err := core.ParseKind(kindName)
	if err != nil {
		return err
	}
	if id <= 0 {
		return &core.NotFoundError{Kind: k.String(), ID: id}
	}

	if err := s.writes.Process(ctx, &actions.SoftDelete{Kind: k, ID: id}); err != nil {
		return err
	}

	s.changed()
	s.logger.LogMovementDeleted(ctx, k, id)
	s.publish(ctx, amqp.NewMovementDeleted(k, id))
	return nil
}

func (s *LedgerService) changed() {
	for _, fn := range s.onChange {
		fn()
	}
}

// publish never fails the caller: the write is already committed.
func (s *LedgerService) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping ledger event", "type", ev.Type)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", ev.Type,
			"kind", ev.Kind,
			"id", ev.ID,
			"error", err)
	}
}

package amqp

import (
	"encoding/json"
	"time"

	"ledger/internal/core"
)

const (
	EventMovementCreated = "movement.created"
	EventMovementDeleted = "movement.deleted"
)

// LedgerEvent announces a change to the ledger. Consumers fetch the full
// record by kind and id when they need more than the summary fields.
type LedgerEvent struct {
	Type      string    `json:"type"`
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Amount    string    `json:"amount,omitempty"`
	Date      string    `json:"date,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMovementCreated builds the event for a freshly stored record.
func NewMovementCreated(rec core.Record) *LedgerEvent {
	return &LedgerEvent{
		Type:      EventMovementCreated,
		Kind:      rec.Kind().String(),
		ID:        rec.ID,
		Amount:    rec.Amount.StringFixed(core.AmountPlaces),
		Date:      rec.Date.String(),
		Timestamp: time.Now(),
	}
}

// NewMovementDeleted builds the event for a soft deleted record.
func NewMovementDeleted(k core.Kind, id int64) *LedgerEvent {
	return &LedgerEvent{
		Type:      EventMovementDeleted,
		Kind:      k.String(),
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

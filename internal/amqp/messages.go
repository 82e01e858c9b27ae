package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names a change to a user's ledger.
type EventType string

const (
	TransactionCreated EventType = "transaction.created"
	TransactionUpdated EventType = "transaction.updated"
	TransactionDeleted EventType = "transaction.deleted"
	CategoryDeleted    EventType = "category.deleted"
)

func (t EventType) Valid() bool {
	switch t {
	case TransactionCreated, TransactionUpdated, TransactionDeleted, CategoryDeleted:
		return true
	}
	return false
}

// TransactionEvent is a lightweight change notification. It carries ids only;
// the exporter reloads the current row from the database.
type TransactionEvent struct {
	Type          EventType `json:"type"`
	UserID        int64     `json:"user_id"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	CategoryID    int64     `json:"category_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEvent(typ EventType, userID, transactionID, categoryID int64) *TransactionEvent {
	return &TransactionEvent{
		Type:          typ,
		UserID:        userID,
		TransactionID: transactionID,
		CategoryID:    categoryID,
		Timestamp:     time.Now().UTC(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and checks an event body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if !e.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.UserID == 0 {
		return nil, fmt.Errorf("event %s without user id", e.Type)
	}
	return &e, nil
}

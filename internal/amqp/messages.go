package amqp

import (
	"encoding/json"
	"time"
)

// Actions carried by TransactionEvent.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// TransactionEvent is the lightweight message published whenever a
// transaction changes. It carries only identifiers; consumers fetch the
// current state from the database so stale deliveries stay harmless.
type TransactionEvent struct {
	OwnerID       string    `json:"ownerId"`
	TransactionID string    `json:"transactionId"`
	Action        string    `json:"action"`
	Year          int       `json:"year"`
	Month         int       `json:"month"` // 0-based
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEvent(ownerID, transactionID, action string, year, month int) *TransactionEvent {
	return &TransactionEvent{
		OwnerID:       ownerID,
		TransactionID: transactionID,
		Action:        action,
		Year:          year,
		Month:         month,
		Timestamp:     time.Now(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

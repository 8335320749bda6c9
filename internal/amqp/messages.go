package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds carried on the ledger event stream.
const (
	EventTransactionAppended = "transaction.appended"
	EventLedgerReset         = "ledger.reset"
)

// LedgerEvent is a lightweight notification for external consumers that the
// ledger changed. It carries identifiers only; consumers read the ledger
// snapshot themselves.
type LedgerEvent struct {
	Kind          string    `json:"kind"`
	TransactionID int64     `json:"transactionId,omitempty"`
	Type          string    `json:"type,omitempty"`
	BaseCurrency  string    `json:"baseCurrency,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionAppendedEvent creates an event for a freshly appended transaction.
func NewTransactionAppendedEvent(id int64, txType, baseCurrency string) *LedgerEvent {
	return &LedgerEvent{
		Kind:          EventTransactionAppended,
		TransactionID: id,
		Type:          txType,
		BaseCurrency:  baseCurrency,
		Timestamp:     time.Now(),
	}
}

// NewLedgerResetEvent creates an event for a full ledger reset.
func NewLedgerResetEvent() *LedgerEvent {
	return &LedgerEvent{
		Kind:      EventLedgerReset,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

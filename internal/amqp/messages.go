package amqp

import (
	"encoding/json"
	"time"
)

// SourceChangedMessage tells the archive worker that a source collection
// changed on a given business date. The worker re-reads the snapshot and
// recomputes that day's corte; the message carries no monetary data.
type SourceChangedMessage struct {
	Collection string    `json:"collection"` // sales | services | ledger | balances
	Date       string    `json:"date"`       // YYYY-MM-DD of the affected corte
	Timestamp  time.Time `json:"timestamp"`
}

// NewSourceChangedMessage creates a change notification for one collection.
func NewSourceChangedMessage(collection, date string) *SourceChangedMessage {
	return &SourceChangedMessage{
		Collection: collection,
		Date:       date,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SourceChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SourceChangedMessageFromJSON creates a message from JSON bytes
func SourceChangedMessageFromJSON(data []byte) (*SourceChangedMessage, error) {
	var msg SourceChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

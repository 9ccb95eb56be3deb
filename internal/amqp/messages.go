package amqp

import (
	"encoding/json"
	"time"
)

// StoreChangedMessage announces rows appended to the store. Receivers only
// drop their caches; the message carries no row data.
type StoreChangedMessage struct {
	Kind      string    `json:"kind"`
	Rows      int       `json:"rows"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewStoreChangedMessage(kind string, rows int, source string) *StoreChangedMessage {
	return &StoreChangedMessage{
		Kind:      kind,
		Rows:      rows,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *StoreChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func StoreChangedMessageFromJSON(data []byte) (*StoreChangedMessage, error) {
	var msg StoreChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"tractorlog/internal/core"
)

// EntryCreatedMessage carries a whole stored entry, so consumers never read
// the record store back.
type EntryCreatedMessage struct {
	EventID   string        `json:"event_id"`
	Entry     core.LogEntry `json:"entry"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewEntryCreatedMessage(e core.LogEntry) *EntryCreatedMessage {
	return &EntryCreatedMessage{
		EventID:   uuid.NewString(),
		Entry:     e,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntryCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryCreatedMessageFromJSON decodes a message and rejects ones without an
// event id.
func EntryCreatedMessageFromJSON(data []byte) (*EntryCreatedMessage, error) {
	var msg EntryCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.EventID == "" {
		return nil, errors.New("message without event id")
	}
	return &msg, nil
}

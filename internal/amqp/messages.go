package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"finance/internal/core"

	"github.com/google/uuid"
)

// TransactionRecordedMessage announces a stored transaction. Consumers
// reload the row by ID; the remaining fields are informational.
type TransactionRecordedMessage struct {
	MessageID string    `json:"message_id"`
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

var errMissingID = errors.New("message has no transaction id")

// NewTransactionRecordedMessage builds the event for a stored transaction.
func NewTransactionRecordedMessage(t core.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		MessageID: uuid.NewString(),
		ID:        t.ID,
		Type:      string(t.Type),
		Amount:    t.Amount,
		Date:      t.Date.String(),
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionRecordedMessageFromJSON decodes a message and rejects ones
// that do not reference a transaction.
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID <= 0 {
		return nil, errMissingID
	}
	return &msg, nil
}

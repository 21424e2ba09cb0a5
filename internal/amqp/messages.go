package amqp

import (
	"encoding/json"
	"time"
)

// TransactionRecordedMessage notifies the snapshot worker that a
// transaction landed. It carries only the sequence id and the date;
// the worker rebuilds whatever it needs from the database.
type TransactionRecordedMessage struct {
	SequenceID int64     `json:"sequence_id"`
	Date       string    `json:"date"` // YYYY-MM-DD
	Timestamp  time.Time `json:"timestamp"`
}

// NewTransactionRecordedMessage creates an event for the given ledger row.
func NewTransactionRecordedMessage(sequenceID int64, date string) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		SequenceID: sequenceID,
		Date:       date,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionRecordedMessageFromJSON decodes a message from JSON bytes.
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

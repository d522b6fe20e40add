package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/4rinababan/chatfinance/internal/core"
)

const EventTransactionRecorded = "transaction.recorded"

// TransactionRecordedMessage is published after a transaction is persisted.
// It carries the full row so consumers need not read the database.
type TransactionRecordedMessage struct {
	EventID   string    `json:"event_id"`
	Event     string    `json:"event"`
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionRecordedMessage(tx core.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		EventID:   uuid.NewString(),
		Event:     EventTransactionRecorded,
		ID:        tx.ID,
		Type:      string(tx.Type),
		Amount:    tx.Amount,
		CreatedAt: tx.CreatedAt.UTC(),
		Timestamp: time.Now(),
	}
}

// Transaction rebuilds the domain value, validating it.
func (m *TransactionRecordedMessage) Transaction() (core.Transaction, error) {
	tx := core.Transaction{
		ID:        m.ID,
		Type:      core.TransactionType(m.Type),
		Amount:    m.Amount,
		CreatedAt: m.CreatedAt,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"finvision/internal/core"
)

// TransactionAppendedMessage announces a transaction that was saved to the
// ledger. It carries the full row so consumers never read the ledger back.
type TransactionAppendedMessage struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	AmountCents int64     `json:"amount_cents"` // signed: expenses are negative
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewTransactionAppendedMessage(tx core.Transaction) *TransactionAppendedMessage {
	return &TransactionAppendedMessage{
		ID:          uuid.NewString(),
		Date:        tx.Date.String(),
		Type:        string(tx.Type),
		Category:    string(tx.Category),
		AmountCents: tx.Signed().Cents,
		Description: tx.Description,
		Timestamp:   time.Now(),
	}
}

// Transaction rebuilds and validates the announced transaction.
func (m *TransactionAppendedMessage) Transaction() (core.Transaction, error) {
	date, err := core.ParseDate(m.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	typ, err := core.ParseType(m.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	cat, err := core.ParseCategory(m.Category)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.FromSigned(date, typ, cat, core.Money{Cents: m.AmountCents}, m.Description)
}

func (m *TransactionAppendedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionAppendedMessageFromJSON(data []byte) (*TransactionAppendedMessage, error) {
	var msg TransactionAppendedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

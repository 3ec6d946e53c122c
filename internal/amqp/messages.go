package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds emitted by the expense service.
const (
	EventExpenseCreated = "expense.created"
	EventExpenseDeleted = "expense.deleted"
)

// ExpenseEvent is the message published after a successful expense mutation.
// Consumers get enough to act without a database round-trip.
type ExpenseEvent struct {
	Kind        string    `json:"kind"`
	ExpenseID   int64     `json:"expense_id"`
	UserID      int64     `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseEvent builds an event stamped with the current time.
func NewExpenseEvent(kind string, expenseID, userID, amountCents int64, category string) *ExpenseEvent {
	return &ExpenseEvent{
		Kind:        kind,
		ExpenseID:   expenseID,
		UserID:      userID,
		AmountCents: amountCents,
		Category:    category,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

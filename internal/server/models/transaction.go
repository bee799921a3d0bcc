package models

import "time"

// Transaction statuses. A transaction is created pending and transitions to
// completed at most once; it never moves backward.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Transaction is one ledger entry: a payment attempt and its resolution.
// OrderID is the gateway-assigned order identifier and is unique.
// PaymentID stays nil until the payment is confirmed.
type Transaction struct {
	ID        string
	UserID    string
	OrderID   string
	PaymentID *string
	PlanID    string
	Amount    int64
	Credits   int64
	Status    string
	CreatedAt time.Time
}

// Package gateway is the external-service boundary to the payment provider.
// It creates orders, fetches payment details, and verifies the HMAC
// signature the provider attaches to payment confirmations.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// OrderNotes is caller metadata bound into the order at creation time, so a
// later confirmation can be applied without trusting client-supplied data.
type OrderNotes struct {
	UserID  string `json:"user_id"`
	Credits int64  `json:"credits,string"`
	PlanID  string `json:"plan_id"`
}

// OrderRequest describes an order to open with the provider. Amount is in
// the currency's minor unit.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    OrderNotes
}

// Order is the provider's view of a created order.
type Order struct {
	ID       string     `json:"id"`
	Amount   int64      `json:"amount"`
	Currency string     `json:"currency"`
	Receipt  string     `json:"receipt"`
	Status   string     `json:"status"`
	Notes    OrderNotes `json:"notes"`
}

// Payment is the provider's record of a payment attempt.
type Payment struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
	Email    string `json:"email"`
}

// Gateway abstracts the payment provider. Failures surface as
// common.ErrGatewayUnavailable wrapped with detail; they are never silently
// swallowed.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// Signature computes the hex HMAC-SHA256 of "orderID|paymentID" under the
// shared gateway secret.
func Signature(orderID, paymentID string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the expected signature and compares it against
// the supplied one in constant time.
func VerifySignature(orderID, paymentID, signature string, secret []byte) bool {
	expected := Signature(orderID, paymentID, secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

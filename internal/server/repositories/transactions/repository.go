// Package transactions declares the repository contract for the payment
// ledger: an append-mostly log of purchase attempts keyed by the
// gateway-assigned order id.
package transactions

import (
	"context"

	"github.com/dmitrijs2005/imagifine/internal/server/models"
)

// Repository defines ledger access. MarkCompleted is the only mutation of a
// stored entry and is guarded so a pending entry transitions to completed at
// most once.
type Repository interface {
	Create(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Transaction, error)

	// ListByUser returns the user's entries, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Transaction, error)

	// MarkCompleted sets payment_id and status=completed on the entry for
	// orderID, but only while it is still pending. It returns true when the
	// row transitioned, false when another caller already completed it.
	MarkCompleted(ctx context.Context, orderID, paymentID string) (bool, error)
}

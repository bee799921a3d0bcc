// This file implements CreditService: the credit-purchase workflow that
// opens gateway orders, verifies payment confirmations, and applies credit
// grants to account balances exactly once per completed ledger entry.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/imagifine/internal/common"
	"github.com/dmitrijs2005/imagifine/internal/dbx"
	"github.com/dmitrijs2005/imagifine/internal/logging"
	"github.com/dmitrijs2005/imagifine/internal/server/gateway"
	"github.com/dmitrijs2005/imagifine/internal/server/models"
	"github.com/dmitrijs2005/imagifine/internal/server/repositories/repomanager"
)

// Currency is the only settlement currency; amounts are in paise.
const Currency = "INR"

// MaxCreditBalance bounds administrative balance overwrites.
const MaxCreditBalance = 10_000_000

// Plan maps a purchasable plan to its price (minor units) and the credit
// quantity it grants.
type Plan struct {
	Amount  int64
	Credits int64
}

// DefaultPlans returns the fixed plan table. Loaded once at construction
// and shared by reference; never mutated afterwards.
func DefaultPlans() map[string]Plan {
	return map[string]Plan{
		"basic":    {Amount: 200, Credits: 2},
		"advanced": {Amount: 500, Credits: 5},
		"business": {Amount: 1000, Credits: 10},
	}
}

// OrderResult is returned by CreateOrder.
type OrderResult struct {
	OrderID string
	Amount  int64
	Credits int64
}

// VerifyResult is returned by VerifyPayment. Credits is the account's
// balance after the grant (or the unchanged balance on an idempotent
// re-delivery).
type VerifyResult struct {
	Credits       int64
	TransactionID string
}

// TransactionDetail joins a ledger entry with the gateway's payment record,
// when one exists and the gateway is reachable.
type TransactionDetail struct {
	Transaction *models.Transaction
	Payment     *gateway.Payment
}

// CreditService orchestrates the purchase workflow over the ledger, the
// account store, and the payment gateway.
type CreditService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	gw              gateway.Gateway
	signatureSecret []byte
	plans           map[string]Plan
	logger          logging.Logger
}

// NewCreditService constructs a CreditService. The signature secret is the
// gateway key secret shared between this service and the provider.
func NewCreditService(db *sql.DB, m repomanager.RepositoryManager, gw gateway.Gateway, signatureSecret string, l logging.Logger) *CreditService {
	return &CreditService{
		db:              db,
		repomanager:     m,
		gw:              gw,
		signatureSecret: []byte(signatureSecret),
		plans:           DefaultPlans(),
		logger:          l.With("module", "credits"),
	}
}

// CreateOrder resolves planID, opens a gateway order carrying the resolved
// account/credits/plan metadata, and records a pending ledger entry. An
// unknown plan fails before any side effect. If the ledger write fails
// after the gateway call succeeded, no order id is returned and the
// gateway-side order is left for out-of-band reconciliation.
func (s *CreditService) CreateOrder(ctx context.Context, userID, planID string) (*OrderResult, error) {

	plan, ok := s.plans[planID]
	if !ok {
		return nil, common.ErrInvalidPlan
	}

	order, err := s.gw.CreateOrder(ctx, gateway.OrderRequest{
		Amount:   plan.Amount,
		Currency: Currency,
		Receipt:  fmt.Sprintf("receipt_%d", time.Now().UnixMilli()),
		Notes: gateway.OrderNotes{
			UserID:  userID,
			Credits: plan.Credits,
			PlanID:  planID,
		},
	})
	if err != nil {
		return nil, err
	}

	entry := &models.Transaction{
		ID:      uuid.NewString(),
		UserID:  userID,
		OrderID: order.ID,
		PlanID:  planID,
		Amount:  plan.Amount,
		Credits: plan.Credits,
		Status:  models.TransactionStatusPending,
	}

	if _, err := s.repomanager.Transactions(s.db).Create(ctx, entry); err != nil {
		s.logger.Error(ctx, "order created at gateway but not persisted",
			"order_id", order.ID, "error", err.Error())
		return nil, fmt.Errorf("%w: %v", common.ErrOrderPersistence, err)
	}

	return &OrderResult{OrderID: order.ID, Amount: plan.Amount, Credits: plan.Credits}, nil
}

// VerifyPayment applies a payment confirmation. The signature is checked
// before any storage access; a forged confirmation learns nothing about
// which orders exist. An entry that is already completed is an idempotent
// re-delivery and returns the current balance without crediting again.
// Otherwise the status transition and the balance increment commit in one
// atomic unit, or neither does.
func (s *CreditService) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (*VerifyResult, error) {

	if !gateway.VerifySignature(orderID, paymentID, signature, s.signatureSecret) {
		return nil, common.ErrInvalidSignature
	}

	entry, err := s.repomanager.Transactions(s.db).GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if entry.Status == models.TransactionStatusCompleted {
		user, err := s.repomanager.Users(s.db).GetByID(ctx, entry.UserID)
		if err != nil {
			return nil, err
		}
		return &VerifyResult{Credits: user.Credits, TransactionID: entry.ID}, nil
	}

	var balance int64
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		moved, err := s.repomanager.Transactions(tx).MarkCompleted(ctx, orderID, paymentID)
		if err != nil {
			return err
		}
		if !moved {
			// Lost the race to a concurrent confirmation; the credit has
			// already been applied. Report the settled balance.
			user, err := s.repomanager.Users(tx).GetByID(ctx, entry.UserID)
			if err != nil {
				return err
			}
			balance = user.Credits
			return nil
		}
		balance, err = s.repomanager.Users(tx).IncrementCredits(ctx, entry.UserID, entry.Credits)
		return err
	}); err != nil {
		s.logger.Error(ctx, "payment verification aborted",
			"order_id", orderID, "error", err.Error())
		return nil, fmt.Errorf("%w: %v", common.ErrVerificationFailed, err)
	}

	return &VerifyResult{Credits: balance, TransactionID: entry.ID}, nil
}

// ListTransactions returns the user's ledger entries, newest first.
func (s *CreditService) ListTransactions(ctx context.Context, userID string) ([]*models.Transaction, error) {
	return s.repomanager.Transactions(s.db).ListByUser(ctx, userID)
}

// GetTransaction returns one of the user's ledger entries together with the
// gateway's payment record when available. A gateway failure degrades to
// the bare entry rather than failing the lookup.
func (s *CreditService) GetTransaction(ctx context.Context, userID, id string) (*TransactionDetail, error) {

	entry, err := s.repomanager.Transactions(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, common.ErrorNotFound
	}

	detail := &TransactionDetail{Transaction: entry}

	if entry.PaymentID != nil {
		payment, err := s.gw.FetchPayment(ctx, *entry.PaymentID)
		if err != nil {
			s.logger.Warn(ctx, "payment detail unavailable",
				"payment_id", *entry.PaymentID, "error", err.Error())
		} else {
			detail.Payment = payment
		}
	}

	return detail, nil
}

// OverwriteCredits sets an account's balance to an explicit value inside
// its own atomic unit. The value is bounded; authorization is enforced at
// the HTTP layer.
func (s *CreditService) OverwriteCredits(ctx context.Context, userID string, credits int64) (int64, error) {

	if credits < 0 || credits > MaxCreditBalance {
		return 0, common.ErrorValidation
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Users(tx).SetCredits(ctx, userID, credits)
	}); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.ErrorNotFound
		}
		return 0, err
	}

	return credits, nil
}

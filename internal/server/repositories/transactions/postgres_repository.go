package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/imagifine/internal/common"
	"github.com/dmitrijs2005/imagifine/internal/dbx"
	"github.com/dmitrijs2005/imagifine/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const txColumns = `id, user_id, order_id, payment_id, plan_id, amount, credits, status, created_at`

func scanTransaction(row *sql.Row) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(&t.ID, &t.UserID, &t.OrderID, &t.PaymentID,
		&t.PlanID, &t.Amount, &t.Credits, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {

	query :=
		`INSERT INTO transactions (id, user_id, order_id, payment_id, plan_id, amount, credits, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.UserID, t.OrderID, t.PaymentID, t.PlanID, t.Amount, t.Credits, t.Status).
		Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE order_id = $1`
	return scanTransaction(r.db.QueryRowContext(ctx, query, orderID))
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Transaction, error) {

	query := `SELECT ` + txColumns + ` FROM transactions WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var list []*models.Transaction
	for rows.Next() {
		t := &models.Transaction{}
		if err := rows.Scan(&t.ID, &t.UserID, &t.OrderID, &t.PaymentID,
			&t.PlanID, &t.Amount, &t.Credits, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

// MarkCompleted transitions the entry pending->completed. The status guard
// in the WHERE clause makes the transition single-shot: a concurrent
// duplicate confirmation blocks on the row lock and then matches zero rows.
func (r *PostgresRepository) MarkCompleted(ctx context.Context, orderID, paymentID string) (bool, error) {

	query :=
		`UPDATE transactions SET status = $3, payment_id = $2
		 WHERE order_id = $1 AND status = $4
		 `

	res, err := r.db.ExecContext(ctx, query, orderID, paymentID,
		models.TransactionStatusCompleted, models.TransactionStatusPending)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n == 1, nil
}

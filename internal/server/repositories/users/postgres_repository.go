package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/imagifine/internal/common"
	"github.com/dmitrijs2005/imagifine/internal/dbx"
	"github.com/dmitrijs2005/imagifine/internal/server/models"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, email, password_hash, credits, is_verified, is_admin, otp_code, otp_expiry, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Credits, &user.IsVerified, &user.IsAdmin,
		&user.OTPCode, &user.OTPExpiry, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, username, email, password_hash, credits, is_verified, otp_code, otp_expiry)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.Credits, user.IsVerified, user.OTPCode, user.OTPExpiry).
		Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1) OR username = $2`
	return scanUser(r.db.QueryRowContext(ctx, query, email, username))
}

func (r *PostgresRepository) SaveOTP(ctx context.Context, id string, code string, expiry time.Time) error {
	query := `UPDATE users SET otp_code = $2, otp_expiry = $3 WHERE id = $1`
	return r.exec(ctx, query, id, code, expiry)
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, id string) error {
	query := `UPDATE users SET is_verified = TRUE, otp_code = NULL, otp_expiry = NULL WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *PostgresRepository) SetCredits(ctx context.Context, id string, credits int64) error {
	query := `UPDATE users SET credits = $2 WHERE id = $1`
	return r.exec(ctx, query, id, credits)
}

func (r *PostgresRepository) IncrementCredits(ctx context.Context, id string, delta int64) (int64, error) {
	query := `UPDATE users SET credits = credits + $2 WHERE id = $1 RETURNING credits`

	var balance int64
	err := r.db.QueryRowContext(ctx, query, id, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return balance, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

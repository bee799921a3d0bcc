package contacts

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

const contactColumns = `id, first_name, last_name, email, query, status, created_at`

func (r *PostgresRepository) Create(ctx context.Context, c *models.Contact) (*models.Contact, error) {

	query :=
		`INSERT INTO contacts (id, first_name, last_name, email, query, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.FirstName, c.LastName, c.Email, c.Query, c.Status).
		Scan(&c.ID, &c.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Contact, error) {

	query := `SELECT ` + contactColumns + ` FROM contacts ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var list []*models.Contact
	for rows.Next() {
		c := &models.Contact{}
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email,
			&c.Query, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) (*models.Contact, error) {

	query :=
		`UPDATE contacts SET status = $2
		 WHERE id = $1
		 RETURNING ` + contactColumns

	c := &models.Contact{}
	err := r.db.QueryRowContext(ctx, query, id, status).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Query, &c.Status, &c.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

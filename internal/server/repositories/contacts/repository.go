// Package contacts declares the repository contract for contact-form
// submissions.
package contacts

import (
	"context"

	"github.com/dmitrijs2005/imagifine/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Contact) (*models.Contact, error)

	// List returns all submissions, newest first.
	List(ctx context.Context) ([]*models.Contact, error)

	// UpdateStatus sets the status of a submission and returns the updated
	// record.
	UpdateStatus(ctx context.Context, id, status string) (*models.Contact, error)
}

// Package users declares the repository contract for account records.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/imagifine/internal/server/models"
)

// Repository defines keyed access to account records. Uniqueness of
// username and email is enforced at the store level; a violation surfaces
// as common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByEmailOrUsername finds an account matching either value,
	// used by registration to detect an existing record.
	GetByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error)

	// SaveOTP replaces the user's outstanding one-time code and expiry.
	SaveOTP(ctx context.Context, id string, code string, expiry time.Time) error

	// MarkVerified sets is_verified and clears the one-time code.
	MarkVerified(ctx context.Context, id string) error

	// SetCredits overwrites the balance.
	SetCredits(ctx context.Context, id string, credits int64) error

	// IncrementCredits adds delta to the balance and returns the new value.
	IncrementCredits(ctx context.Context, id string, delta int64) (int64, error)

	Delete(ctx context.Context, id string) error
}

// Package refreshtokens declares the repository contract for server-stored
// refresh tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/imagifine/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of
	// now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find looks up a refresh token by its opaque token string.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token by its token string. Deleting an
	// absent token is not an error.
	Delete(ctx context.Context, token string) error
}

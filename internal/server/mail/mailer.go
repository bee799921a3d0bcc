// Package mail abstracts outbound notification delivery so services depend
// on an injected Sender rather than a process-wide transport.
package mail

import (
	"context"

	"github.com/dmitrijs2005/imagifine/internal/server/models"
)

// Sender delivers the three notification kinds the server produces.
// Implementations report delivery failure via error; callers decide whether
// a failure rolls back state (registration) or is only logged (contact).
type Sender interface {
	// SendOTP delivers a verification code to a registering address.
	SendOTP(ctx context.Context, email, code string) error

	// SendContactReceipt acknowledges a contact-form submission to its author.
	SendContactReceipt(ctx context.Context, c *models.Contact) error

	// SendContactAlert notifies the admin address of a new submission.
	SendContactAlert(ctx context.Context, c *models.Contact) error
}

// This file implements ContactService: contact-form submissions and their
// admin-side triage.
package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/imagifine/internal/common"
	"github.com/dmitrijs2005/imagifine/internal/logging"
	"github.com/dmitrijs2005/imagifine/internal/server/mail"
	"github.com/dmitrijs2005/imagifine/internal/server/models"
	"github.com/dmitrijs2005/imagifine/internal/server/repositories/repomanager"
)

type ContactService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sender      mail.Sender
	logger      logging.Logger
}

func NewContactService(db *sql.DB, m repomanager.RepositoryManager, sender mail.Sender, l logging.Logger) *ContactService {
	return &ContactService{
		db:          db,
		repomanager: m,
		sender:      sender,
		logger:      l.With("module", "contact"),
	}
}

// Submit persists a contact-form submission and then sends the receipt and
// admin alert. Unlike registration, a delivery failure does not roll the
// submission back; it is reported in the log only.
func (s *ContactService) Submit(ctx context.Context, firstName, lastName, email, query string) (*models.Contact, error) {

	firstName = strings.TrimSpace(firstName)
	email = strings.ToLower(strings.TrimSpace(email))
	if firstName == "" || email == "" || strings.TrimSpace(query) == "" {
		return nil, common.ErrorValidation
	}

	contact := &models.Contact{
		ID:        uuid.NewString(),
		FirstName: firstName,
		LastName:  strings.TrimSpace(lastName),
		Email:     email,
		Query:     query,
		Status:    models.ContactStatusNew,
	}

	if _, err := s.repomanager.Contacts(s.db).Create(ctx, contact); err != nil {
		return nil, err
	}

	if err := s.sender.SendContactReceipt(ctx, contact); err != nil {
		s.logger.Warn(ctx, "contact receipt not delivered", "contact_id", contact.ID, "error", err.Error())
	}
	if err := s.sender.SendContactAlert(ctx, contact); err != nil {
		s.logger.Warn(ctx, "contact alert not delivered", "contact_id", contact.ID, "error", err.Error())
	}

	return contact, nil
}

// List returns all submissions, newest first.
func (s *ContactService) List(ctx context.Context) ([]*models.Contact, error) {
	return s.repomanager.Contacts(s.db).List(ctx)
}

// UpdateStatus moves a submission to a new triage status.
func (s *ContactService) UpdateStatus(ctx context.Context, id, status string) (*models.Contact, error) {
	if !models.ValidContactStatus(status) {
		return nil, common.ErrorValidation
	}
	return s.repomanager.Contacts(s.db).UpdateStatus(ctx, id, status)
}

package models

import "time"

// Contact submission statuses.
const (
	ContactStatusNew        = "new"
	ContactStatusInProgress = "in_progress"
	ContactStatusResolved   = "resolved"
)

// Contact is a contact-form submission.
type Contact struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Query     string
	Status    string
	CreatedAt time.Time
}

// ValidContactStatus reports whether s is one of the allowed statuses.
func ValidContactStatus(s string) bool {
	switch s {
	case ContactStatusNew, ContactStatusInProgress, ContactStatusResolved:
		return true
	}
	return false
}

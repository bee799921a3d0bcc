package models

import "time"

// RefreshToken is a server-stored opaque token that can be exchanged for a
// fresh access token until it expires. Tokens are rotated on every use.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

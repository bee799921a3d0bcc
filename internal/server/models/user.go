// Package models defines the persisted record types used by the server
// repositories and services.
package models

import "time"

// DefaultCredits is the balance granted to every newly registered account.
const DefaultCredits = 10

// User is a registered account. Email is stored lowercase and is unique,
// as is Username. OTPCode/OTPExpiry are set only while a verification or
// resend cycle is outstanding and are cleared on successful verification.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Credits      int64
	IsVerified   bool
	IsAdmin      bool
	OTPCode      *string
	OTPExpiry    *time.Time
	CreatedAt    time.Time
}

// HasValidOTP reports whether the user has an outstanding code that has not
// expired at the given instant.
func (u *User) HasValidOTP(now time.Time) bool {
	return u.OTPCode != nil && u.OTPExpiry != nil && now.Before(*u.OTPExpiry)
}

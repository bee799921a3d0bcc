// Package common defines shared constants and sentinel errors used across
// the Imagifine server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid or malformed token, bad credentials).
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInvalidCredentials  = errors.New("invalid credentials")

	// OTP lifecycle errors.
	ErrOTPExpired = errors.New("otp has expired")
	ErrInvalidOTP = errors.New("invalid otp")

	// Purchase workflow errors.
	ErrInvalidPlan        = errors.New("invalid plan")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrOrderPersistence   = errors.New("order persistence failed")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrVerificationFailed = errors.New("payment verification failed")

	// Notification errors.
	ErrNotificationFailed = errors.New("notification delivery failed")
)

// Package services contains server-side business logic. This file implements
// UserService, which handles registration with email OTP verification, login,
// and issuing/refreshing JWTs plus server-stored refresh tokens.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/imagifine/internal/common"
	"github.com/dmitrijs2005/imagifine/internal/dbx"
	"github.com/dmitrijs2005/imagifine/internal/server/auth"
	"github.com/dmitrijs2005/imagifine/internal/server/config"
	"github.com/dmitrijs2005/imagifine/internal/server/mail"
	"github.com/dmitrijs2005/imagifine/internal/server/models"
	"github.com/dmitrijs2005/imagifine/internal/server/repositories/repomanager"
)

// OTPValidity is how long a one-time verification code stays usable.
const OTPValidity = 10 * time.Minute

const otpDigits = 6

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterResult reports the outcome of a registration attempt. Resent is
// true when an existing unverified account was reused and only a new code
// was issued.
type RegisterResult struct {
	UserID string
	Resent bool
}

// AuthResult bundles fresh tokens with the authenticated account.
type AuthResult struct {
	Tokens TokenPair
	User   *models.User
}

// UserService provides the account lifecycle:
// - Register: create accounts (or reissue codes to unverified ones)
// - VerifyOTP: confirm control of the email address and mint tokens
// - ResendOTP / Login / GetUser
// - RefreshToken: rotate refresh tokens and mint new access tokens
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	sender                       mail.Sender
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories, the
// notification sender, and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, sender mail.Sender, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		sender:                       sender,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates an unverified account with a fresh one-time code and
// sends it to the address. If an unverified account already exists for the
// email or username, it is reused and a new code is issued instead of
// erroring. A verified duplicate yields ErrorAlreadyExists. When code
// delivery fails for a freshly created account, the account is removed
// again so no unverifiable record is left behind.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*RegisterResult, error) {

	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)

	existing, err := repo.GetByEmailOrUsername(ctx, email, username)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if existing != nil {
		if existing.IsVerified {
			return nil, common.ErrorAlreadyExists
		}
		if err := s.issueOTP(ctx, existing.ID, existing.Email); err != nil {
			return nil, err
		}
		return &RegisterResult{UserID: existing.ID, Resent: true}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	code, err := common.MakeRandDigits(otpDigits)
	if err != nil {
		return nil, common.ErrorInternal
	}
	expiry := time.Now().Add(OTPValidity)

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Credits:      models.DefaultCredits,
		OTPCode:      &code,
		OTPExpiry:    &expiry,
	}

	if _, err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if err := s.sender.SendOTP(ctx, email, code); err != nil {
		// Roll the account back; an account whose owner never received a
		// code can never be verified.
		_ = repo.Delete(ctx, user.ID)
		return nil, fmt.Errorf("%w: %v", common.ErrNotificationFailed, err)
	}

	return &RegisterResult{UserID: user.ID}, nil
}

// VerifyOTP checks the supplied code against the outstanding one. On
// success the account is marked verified, the code is cleared, and a fresh
// token pair is issued, all in one atomic unit.
func (s *UserService) VerifyOTP(ctx context.Context, userID, code string) (*AuthResult, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.OTPCode == nil || user.OTPExpiry == nil {
		return nil, common.ErrInvalidOTP
	}
	if time.Now().After(*user.OTPExpiry) {
		return nil, common.ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(*user.OTPCode), []byte(code)) != 1 {
		return nil, common.ErrInvalidOTP
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).MarkVerified(ctx, userID); err != nil {
			return err
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, userID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}

	user.IsVerified = true
	user.OTPCode = nil
	user.OTPExpiry = nil

	return &AuthResult{Tokens: *pair, User: user}, nil
}

// ResendOTP issues a new code to the account's address.
func (s *UserService) ResendOTP(ctx context.Context, userID string) error {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	return s.issueOTP(ctx, user.ID, user.Email)
}

// Login verifies the password and, on success, returns fresh tokens and the
// account. Unknown address and wrong password collapse into the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Tokens: *pair, User: user}, nil
}

// GetUser returns the account for id.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// --- helpers below ---

// issueOTP stores a fresh code on the account and sends it. The stored code
// is replaced before delivery, so a delivery failure leaves a code the
// caller can retry with ResendOTP.
func (s *UserService) issueOTP(ctx context.Context, userID, email string) error {
	code, err := common.MakeRandDigits(otpDigits)
	if err != nil {
		return common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.SaveOTP(ctx, userID, code, time.Now().Add(OTPValidity)); err != nil {
		return err
	}

	if err := s.sender.SendOTP(ctx, email, code); err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotificationFailed, err)
	}
	return nil
}

func (s *UserService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

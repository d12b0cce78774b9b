// Package services contains server-side business logic: user signup and the
// session lifecycle (login, access token refresh, logout).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Anish-3-12/public-issue/internal/common"
	"github.com/Anish-3-12/public-issue/internal/logging"
	"github.com/Anish-3-12/public-issue/internal/server/auth"
	"github.com/Anish-3-12/public-issue/internal/server/models"
	"github.com/Anish-3-12/public-issue/internal/server/password"
	"github.com/Anish-3-12/public-issue/internal/server/repositories/repomanager"
)

// refreshTokenBytes gives 256 bits of entropy per opaque token.
const refreshTokenBytes = 32

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionService mints and exchanges tokens:
//   - Login: verify credentials, issue an access+refresh pair
//   - Refresh: exchange a valid refresh token for a new access token
//   - Logout / LogoutAll: revoke refresh tokens
//
// Refresh tokens are not rotated on use; they stay valid until their own
// expiry or an explicit revocation.
type SessionService struct {
	db         *sql.DB
	repos      repomanager.RepositoryManager
	codec      *auth.Codec
	hasher     *password.Hasher
	refreshTTL time.Duration
	logger     logging.Logger
	now        func() time.Time
}

func NewSessionService(db *sql.DB, repos repomanager.RepositoryManager, codec *auth.Codec,
	hasher *password.Hasher, refreshTTL time.Duration, logger logging.Logger) *SessionService {
	return &SessionService{
		db:         db,
		repos:      repos,
		codec:      codec,
		hasher:     hasher,
		refreshTTL: refreshTTL,
		logger:     logger.With("module", "session_service"),
		now:        time.Now,
	}
}

// Login verifies the email/password pair and, on success, returns a fresh
// token pair. Unknown email and wrong password both come back as
// common.ErrBadCredentials; the distinction is only logged server-side.
func (s *SessionService) Login(ctx context.Context, email, plaintext string) (*TokenPair, error) {
	user, err := s.repos.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "login failed: unknown email")
			return nil, common.ErrBadCredentials
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		s.logger.Debug(ctx, "login failed: password mismatch", "user_id", user.ID)
		return nil, common.ErrBadCredentials
	}

	return s.issuePair(ctx, user)
}

// Refresh exchanges a refresh token for a new access token. Revoked, expired
// and unknown tokens are indistinguishable to the caller; the refresh token
// itself is left untouched.
func (s *SessionService) Refresh(ctx context.Context, tokenString string) (string, error) {
	token, err := s.repos.RefreshTokens(s.db).Find(ctx, tokenString)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "refresh failed: token not found")
			return "", common.ErrRefreshTokenInvalid
		}
		return "", fmt.Errorf("error looking up refresh token: %w", err)
	}

	now := s.now()
	if !token.Valid(now) {
		s.logger.Debug(ctx, "refresh failed: token revoked or expired",
			"user_id", token.UserID, "revoked", token.Revoked)
		return "", common.ErrRefreshTokenInvalid
	}

	user, err := s.repos.Users(s.db).FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Owner deleted after issuance.
			s.logger.Warn(ctx, "refresh failed: owning user gone", "user_id", token.UserID)
			return "", common.ErrRefreshTokenInvalid
		}
		return "", fmt.Errorf("error looking up user: %w", err)
	}

	access, err := s.codec.Issue(user.ID, user.Email, user.Role, now)
	if err != nil {
		return "", fmt.Errorf("error minting access token: %w", err)
	}
	return access, nil
}

// Logout revokes the given refresh token if it is currently valid. It
// reports success either way so callers cannot probe token validity.
func (s *SessionService) Logout(ctx context.Context, tokenString string) error {
	repo := s.repos.RefreshTokens(s.db)

	token, err := repo.Find(ctx, tokenString)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("error looking up refresh token: %w", err)
	}
	if !token.Valid(s.now()) {
		return nil
	}

	if err := repo.Revoke(ctx, tokenString); err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	s.logger.Info(ctx, "refresh token revoked", "user_id", token.UserID)
	return nil
}

// LogoutAll revokes every active refresh token owned by the user
// ("logout everywhere").
func (s *SessionService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.repos.RefreshTokens(s.db).RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("error revoking refresh tokens: %w", err)
	}
	s.logger.Info(ctx, "all refresh tokens revoked", "user_id", userID)
	return nil
}

// PurgeExpired deletes refresh tokens past their expiry. Housekeeping only;
// validity checks never depend on it.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repos.RefreshTokens(s.db).DeleteExpired(ctx, s.now())
}

func (s *SessionService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	now := s.now()

	access, err := s.codec.Issue(user.ID, user.Email, user.Role, now)
	if err != nil {
		return nil, fmt.Errorf("error minting access token: %w", err)
	}

	opaque, err := common.MakeRandTokenString(refreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	refresh := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     opaque,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	if err := s.repos.RefreshTokens(s.db).Create(ctx, refresh); err != nil {
		// Includes the (practically impossible) token collision, which is
		// surfaced, not papered over.
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: opaque}, nil
}

// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/Anish-3-12/public-issue/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// refresh tokens. Validity (not revoked, not expired) is a predicate applied
// by the service layer; the store returns rows as they are.
type Repository interface {
	// Create stores a new refresh token. A collision on the opaque token
	// string is an integrity error, never a silent overwrite.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Find looks up a refresh token by its opaque token string, returning
	// common.ErrorNotFound when absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke marks the token revoked. Revoking an already-revoked or
	// unknown token is a no-op.
	Revoke(ctx context.Context, token string) error

	// RevokeAllForUser marks every active token owned by the user revoked.
	// Tokens of other users are untouched.
	RevokeAllForUser(ctx context.Context, userID string) error

	// DeleteExpired removes tokens whose expiry is in the past and returns
	// how many rows were deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

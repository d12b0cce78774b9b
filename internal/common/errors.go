// Package common defines shared constants and sentinel errors used across
// the issue tracker's auth layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Access token verification errors. The middleware collapses all of
	// these to "no principal"; they stay distinct for server-side logging.
	ErrTokenMalformed = errors.New("malformed token")
	ErrBadSignature   = errors.New("bad token signature")
	ErrTokenExpired   = errors.New("token expired")
	ErrInvalidToken   = errors.New("invalid token")

	// Login failures. Unknown email and wrong password both map here so the
	// response cannot be used for user enumeration.
	ErrBadCredentials = errors.New("bad credentials")

	// Refresh/logout failures. Revoked, expired and unknown tokens are
	// deliberately indistinguishable to the caller.
	ErrRefreshTokenInvalid = errors.New("invalid or expired refresh token")
)

package models

import "time"

// RefreshToken is a long-lived opaque credential persisted server-side.
// Revoked transitions false→true exactly once and is never reset.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Valid reports whether the token can still be exchanged at the given time.
func (t *RefreshToken) Valid(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

package models

// Principal is the identity attached to one request's context after the
// access token has been verified. It is derived per request and never
// persisted.
type Principal struct {
	UserID string
	Role   Role
}

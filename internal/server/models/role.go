package models

import "fmt"

// Role is the closed set of roles a user can hold. Keeping it a dedicated
// type (rather than a free-form string) lets authorization code switch over
// it exhaustively.
type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole validates a stored or transmitted role value.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCitizen:
		return RoleCitizen, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }

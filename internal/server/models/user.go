package models

import "time"

// User is a registered account. The auth core only reads ID, Role and
// PasswordHash; accounts are created through signup and never deleted here.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Package users declares the server-side repository contract for user
// accounts in persistent storage.
package users

import (
	"context"

	"github.com/Anish-3-12/public-issue/internal/server/models"
)

// Repository defines lookup and creation of user accounts. The auth core
// never updates or deletes users.
type Repository interface {
	// Create inserts a new user. A duplicate email yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByID returns the user with the given id, or common.ErrorNotFound.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail returns the user with the given email, or common.ErrorNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Anish-3-12/public-issue/internal/common"
	"github.com/Anish-3-12/public-issue/internal/dbx"
	"github.com/Anish-3-12/public-issue/internal/logging"
	"github.com/Anish-3-12/public-issue/internal/server/models"
	"github.com/Anish-3-12/public-issue/internal/server/password"
	"github.com/Anish-3-12/public-issue/internal/server/repositories/repomanager"
)

// UserService handles account creation and lookup. New accounts always get
// the CITIZEN role; promotion to ADMIN happens out of band.
type UserService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	hasher *password.Hasher
	logger logging.Logger
}

func NewUserService(db *sql.DB, repos repomanager.RepositoryManager,
	hasher *password.Hasher, logger logging.Logger) *UserService {
	return &UserService{
		db:     db,
		repos:  repos,
		hasher: hasher,
		logger: logger.With("module", "user_service"),
	}
}

// Signup creates a new CITIZEN account. A taken email yields
// common.ErrorAlreadyExists.
func (s *UserService) Signup(ctx context.Context, name, email, plaintext string) (*models.User, error) {
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleCitizen,
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Users(tx)
		_, err := repo.FindByEmail(ctx, email)
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		// The unique index backstops the check against concurrent signups.
		_, err = repo.Create(ctx, user)
		return err
	}); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user created", "user_id", user.ID)
	return user, nil
}

// FindByID returns the user with the given id, or common.ErrorNotFound.
func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.repos.Users(s.db).FindByID(ctx, id)
}

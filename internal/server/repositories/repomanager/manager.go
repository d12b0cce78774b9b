// Package repomanager vends repository implementations bound to a database
// handle and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/Anish-3-12/public-issue/internal/dbx"
	"github.com/Anish-3-12/public-issue/internal/server/repositories/refreshtokens"
	"github.com/Anish-3-12/public-issue/internal/server/repositories/users"
)

// RepositoryManager abstracts over the storage backend so services can be
// handed either a *sql.DB or a transaction and get repositories bound to it.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}

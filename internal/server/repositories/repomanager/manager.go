package repomanager

import (
	"context"
	"database/sql"

	"github.com/electronshop/shopkeeper/internal/dbx"
	"github.com/electronshop/shopkeeper/internal/server/repositories/emailindex"
)

// RepositoryManager owns the SQL side of the service: the schema and the
// repositories built on it. The ledger repositories are not SQL-backed and
// are constructed directly.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	EmailIndex(db dbx.DBTX) emailindex.Repository
}

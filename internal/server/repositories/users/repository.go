package users

import (
	"context"

	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/models"
	"github.com/electronshop/shopkeeper/internal/server/payload"
)

// Ledger is the part of the contract proxy the users repository needs.
type Ledger interface {
	RegisterCredential(ctx context.Context, a ledger.UserArgs) (models.Confirmation, error)
	ListCredentials(ctx context.Context) ([]ledger.UserRecord, error)
}

type Repository interface {
	Register(ctx context.Context, in payload.Fields) (models.Confirmation, error)
	Profile(ctx context.Context, userID uint64) (models.Credential, error)
	List(ctx context.Context) (models.List[models.Credential], error)
}

package cart

import (
	"context"

	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/models"
	"github.com/electronshop/shopkeeper/internal/server/payload"
)

type Ledger interface {
	AddCartLine(ctx context.Context, a ledger.CartArgs) (models.Confirmation, error)
	ListCartLines(ctx context.Context, userID uint64) ([]ledger.CartRecord, error)
	ListAllCartLines(ctx context.Context) ([]ledger.CartRecord, error)
	ClearCart(ctx context.Context, userID uint64) (models.Confirmation, error)
}

type Repository interface {
	Add(ctx context.Context, in payload.Fields) (models.Confirmation, error)
	ListForUser(ctx context.Context, userID uint64) (models.List[models.CartLine], error)
	ListAll(ctx context.Context) (models.List[models.CartLine], error)
	Summary(ctx context.Context, userID uint64) (models.CartSummary, error)
	Clear(ctx context.Context, userID uint64) (models.Confirmation, error)
}

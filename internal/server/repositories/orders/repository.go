package orders

import (
	"context"

	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/models"
	"github.com/electronshop/shopkeeper/internal/server/payload"
)

type Ledger interface {
	AddOrder(ctx context.Context, a ledger.OrderArgs) (models.Confirmation, error)
	ListOrders(ctx context.Context, userID uint64) ([]ledger.OrderRecord, error)
	ListAllOrders(ctx context.Context) ([]ledger.OrderRecord, error)
	UpdateOrderStatus(ctx context.Context, orderID uint64, status string) (models.Confirmation, error)
}

type Repository interface {
	Create(ctx context.Context, in payload.Fields) (models.Confirmation, error)
	ListForUser(ctx context.Context, userID uint64) (models.List[models.Order], error)
	ListAll(ctx context.Context) (models.List[models.Order], error)
	UpdateStatus(ctx context.Context, orderID uint64, in payload.Fields) (models.Confirmation, error)
}

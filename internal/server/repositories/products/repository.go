package products

import (
	"context"

	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/models"
	"github.com/electronshop/shopkeeper/internal/server/payload"
)

type Ledger interface {
	AddProduct(ctx context.Context, a ledger.ProductArgs) (models.Confirmation, error)
	ListProducts(ctx context.Context) ([]ledger.ProductRecord, error)
	GetProduct(ctx context.Context, productID uint64) (ledger.ProductRecord, error)
	UpdateProductPrice(ctx context.Context, productID uint64, price string) (models.Confirmation, error)
	UpdateProductStock(ctx context.Context, productID uint64, stock string) (models.Confirmation, error)
	DeleteProduct(ctx context.Context, productID uint64) (models.Confirmation, error)
}

type Repository interface {
	Create(ctx context.Context, in payload.Fields) (models.Confirmation, error)
	List(ctx context.Context) (models.List[models.Product], error)
	Search(ctx context.Context, query, category string) (models.List[models.Product], error)
	Get(ctx context.Context, productID uint64) (models.Product, error)
	Update(ctx context.Context, productID uint64, in payload.Fields) ([]models.Confirmation, error)
	Delete(ctx context.Context, productID uint64) (models.Confirmation, error)
}

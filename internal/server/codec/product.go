package codec

import (
	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/models"
)

// Products has no confidential field; it only converts shapes.
type Products struct{}

func (Products) Encode(p models.Product) ledger.ProductArgs {
	return ledger.ProductArgs{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Image:       p.Image,
	}
}

func (Products) Decode(r ledger.ProductRecord) models.Product {
	return models.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Category:    r.Category,
		Image:       r.Image,
	}
}

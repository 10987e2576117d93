// Package products stores the catalogue. Products carry no confidential
// field, so records travel to and from the ledger in plaintext.
package products

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server/codec"
	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/models"
	"github.com/electronshop/shopkeeper/internal/server/payload"
)

// CategoryAll disables the category filter of Search.
const CategoryAll = "all"

type LedgerRepository struct {
	ledger Ledger
	codec  codec.Products
	logger logging.Logger
}

func NewLedgerRepository(l Ledger, logger logging.Logger) *LedgerRepository {
	return &LedgerRepository{ledger: l, logger: logger.With("module", "products")}
}

func (r *LedgerRepository) Create(ctx context.Context, in payload.Fields) (models.Confirmation, error) {
	p := payload.Read(in)
	prod := models.Product{
		Name:        p.String("name"),
		Description: p.String("description"),
		Price:       p.PositiveDecimal("price"),
		Stock:       strconv.FormatInt(p.NonNegativeInt("stock"), 10),
		Category:    models.DefaultCategory,
		Image:       models.DefaultImage,
	}
	if err := p.Err(); err != nil {
		return models.Confirmation{}, err
	}
	if v, ok := p.OptionalString("category"); ok {
		prod.Category = v
	}
	if v, ok := p.OptionalString("image"); ok {
		prod.Image = v
	}

	conf, err := r.ledger.AddProduct(ctx, r.codec.Encode(prod))
	if err != nil {
		return models.Confirmation{}, common.Surface("add product", err)
	}
	r.logger.Info(ctx, "product added", "name", prod.Name, "block", conf.Position)
	return conf, nil
}

func (r *LedgerRepository) List(ctx context.Context) (models.List[models.Product], error) {
	return r.Search(ctx, "", "")
}

// Search matches query case-insensitively against name and description, and
// category case-insensitively against the whole category. Empty arguments
// and CategoryAll match everything.
func (r *LedgerRepository) Search(ctx context.Context, query, category string) (models.List[models.Product], error) {
	recs, err := r.ledger.ListProducts(ctx)
	if err != nil {
		return models.List[models.Product]{}, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, CategoryAll) {
		category = ""
	}

	out := make([]models.Product, 0, len(recs))
	for _, rec := range recs {
		prod := r.codec.Decode(rec)
		if query != "" &&
			!strings.Contains(strings.ToLower(prod.Name), query) &&
			!strings.Contains(strings.ToLower(prod.Description), query) {
			continue
		}
		if category != "" && !strings.EqualFold(prod.Category, category) {
			continue
		}
		out = append(out, prod)
	}
	return models.NewList(out), nil
}

// Get maps a reverted lookup, or the empty record the contract returns for
// an unknown id, to NotFound.
func (r *LedgerRepository) Get(ctx context.Context, productID uint64) (models.Product, error) {
	if productID == 0 {
		return models.Product{}, common.Validation("invalid or missing fields", "product_id")
	}
	rec, err := r.ledger.GetProduct(ctx, productID)
	if errors.Is(err, ledger.ErrReverted) || (err == nil && rec.ID == 0) {
		return models.Product{}, common.NotFound("product not found")
	}
	if err != nil {
		return models.Product{}, err
	}
	return r.codec.Decode(rec), nil
}

// Update rewrites price and/or stock, one write per field. Both values are
// validated before the first write.
func (r *LedgerRepository) Update(ctx context.Context, productID uint64, in payload.Fields) ([]models.Confirmation, error) {
	p := payload.Read(in)
	if productID == 0 {
		return nil, common.Validation("invalid or missing fields", "product_id")
	}

	var price, stock string
	_, hasPrice := p.OptionalString("price")
	if hasPrice {
		price = p.PositiveDecimal("price")
	}
	_, hasStock := p.OptionalString("stock")
	if hasStock {
		stock = strconv.FormatInt(p.NonNegativeInt("stock"), 10)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	if !hasPrice && !hasStock {
		return nil, common.Validation("price or stock is required", "price", "stock")
	}

	var confs []models.Confirmation
	if hasPrice {
		conf, err := r.ledger.UpdateProductPrice(ctx, productID, price)
		if err != nil {
			return confs, common.Surface("update price", err)
		}
		confs = append(confs, conf)
	}
	if hasStock {
		conf, err := r.ledger.UpdateProductStock(ctx, productID, stock)
		if err != nil {
			return confs, common.Surface("update stock", err)
		}
		confs = append(confs, conf)
	}
	r.logger.Info(ctx, "product updated", "id", productID, "writes", len(confs))
	return confs, nil
}

func (r *LedgerRepository) Delete(ctx context.Context, productID uint64) (models.Confirmation, error) {
	if productID == 0 {
		return models.Confirmation{}, common.Validation("invalid or missing fields", "product_id")
	}
	conf, err := r.ledger.DeleteProduct(ctx, productID)
	if err != nil {
		return models.Confirmation{}, common.Surface("delete product", err)
	}
	r.logger.Info(ctx, "product deleted", "id", productID, "block", conf.Position)
	return conf, nil
}

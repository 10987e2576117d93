// Package cart stores add-to-cart events. Lines are never merged or deleted:
// adding the same product twice yields two lines, and clearing a cart
// rewrites every line of the user to the tombstone quantity.
package cart

import (
	"context"
	"math"
	"strconv"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server/codec"
	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/models"
	"github.com/electronshop/shopkeeper/internal/server/payload"
)

type LedgerRepository struct {
	ledger Ledger
	codec  *codec.CartLines
	logger logging.Logger
}

func NewLedgerRepository(l Ledger, c *codec.CartLines, logger logging.Logger) *LedgerRepository {
	return &LedgerRepository{ledger: l, codec: c, logger: logger.With("module", "cart")}
}

func (r *LedgerRepository) Add(ctx context.Context, in payload.Fields) (models.Confirmation, error) {
	p := payload.Read(in)
	userID := p.PositiveInt("user_id")
	productID := p.PositiveInt("product_id")
	quantity := p.PositiveInt("quantity")
	if err := p.Err(); err != nil {
		return models.Confirmation{}, err
	}
	if quantity > math.MaxInt64 {
		return models.Confirmation{}, common.Validation("invalid or missing fields", "quantity")
	}

	args, err := r.codec.Encode(userID, productID, int64(quantity))
	if err != nil {
		return models.Confirmation{}, err
	}
	conf, err := r.ledger.AddCartLine(ctx, args)
	if err != nil {
		return models.Confirmation{}, common.Surface("add to cart", err)
	}
	r.logger.Info(ctx, "cart line added", "user_id", userID, "block", conf.Position)
	return conf, nil
}

func (r *LedgerRepository) ListForUser(ctx context.Context, userID uint64) (models.List[models.CartLine], error) {
	if userID == 0 {
		return models.List[models.CartLine]{}, common.Validation("invalid or missing fields", "user_id")
	}
	recs, err := r.ledger.ListCartLines(ctx, userID)
	if err != nil {
		return models.List[models.CartLine]{}, err
	}
	return models.NewList(r.active(ctx, recs)), nil
}

func (r *LedgerRepository) ListAll(ctx context.Context) (models.List[models.CartLine], error) {
	recs, err := r.ledger.ListAllCartLines(ctx)
	if err != nil {
		return models.List[models.CartLine]{}, err
	}
	return models.NewList(r.active(ctx, recs)), nil
}

// Summary totals the active lines of a user. Lines whose quantity cannot be
// read are listed but not counted.
func (r *LedgerRepository) Summary(ctx context.Context, userID uint64) (models.CartSummary, error) {
	lines, err := r.ListForUser(ctx, userID)
	if err != nil {
		return models.CartSummary{}, err
	}

	s := models.CartSummary{Lines: lines.Items}
	products := make(map[string]struct{})
	for _, l := range lines.Items {
		if l.Encrypted {
			continue
		}
		n, err := strconv.ParseInt(l.Quantity, 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		s.TotalItems += n
		products[l.ProductID] = struct{}{}
	}
	s.UniqueProducts = len(products)
	return s, nil
}

func (r *LedgerRepository) Clear(ctx context.Context, userID uint64) (models.Confirmation, error) {
	if userID == 0 {
		return models.Confirmation{}, common.Validation("invalid or missing fields", "user_id")
	}
	conf, err := r.ledger.ClearCart(ctx, userID)
	if err != nil {
		return models.Confirmation{}, common.Surface("clear cart", err)
	}
	r.logger.Info(ctx, "cart cleared", "user_id", userID, "block", conf.Position)
	return conf, nil
}

// active decodes recs and drops tombstones. A tombstone written by the
// contract is a plaintext "0": it fails to decrypt, keeps its raw value and
// is dropped all the same.
func (r *LedgerRepository) active(ctx context.Context, recs []ledger.CartRecord) []models.CartLine {
	out := make([]models.CartLine, 0, len(recs))
	for _, rec := range recs {
		if rec.Quantity == models.TombstoneQuantity {
			continue
		}
		l := r.codec.Decode(ctx, rec)
		if !l.Active() {
			continue
		}
		out = append(out, l)
	}
	return out
}

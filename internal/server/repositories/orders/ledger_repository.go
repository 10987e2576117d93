package orders

import (
	"context"
	"time"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server/codec"
	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/models"
	"github.com/electronshop/shopkeeper/internal/server/payload"
)

// TimestampLayout is ISO-8601 in UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var now = time.Now

type LedgerRepository struct {
	ledger Ledger
	codec  *codec.Orders
	logger logging.Logger
}

func NewLedgerRepository(l Ledger, c *codec.Orders, logger logging.Logger) *LedgerRepository {
	return &LedgerRepository{ledger: l, codec: c, logger: logger.With("module", "orders")}
}

func statuses() []string {
	out := make([]string, 0, len(models.OrderStatuses))
	for _, s := range models.OrderStatuses {
		out = append(out, string(s))
	}
	return out
}

// Create places an order. A missing timestamp defaults to the current time;
// a supplied one must be RFC 3339 and is stored as given.
func (r *LedgerRepository) Create(ctx context.Context, in payload.Fields) (models.Confirmation, error) {
	p := payload.Read(in)
	o := models.Order{
		UserID:     p.PositiveInt("user_id"),
		OrderTotal: p.PositiveDecimal("order_total"),
		Status:     p.OneOf("status", statuses()...),
	}
	if ts, ok := p.OptionalString("timestamp"); ok {
		if _, err := time.Parse(time.RFC3339, ts); err != nil {
			return models.Confirmation{}, common.Validation("invalid or missing fields", append(common.FieldsOf(p.Err()), "timestamp")...)
		}
		o.Timestamp = ts
	} else {
		o.Timestamp = now().UTC().Format(TimestampLayout)
	}
	if err := p.Err(); err != nil {
		return models.Confirmation{}, err
	}

	args, err := r.codec.Encode(o)
	if err != nil {
		return models.Confirmation{}, err
	}
	conf, err := r.ledger.AddOrder(ctx, args)
	if err != nil {
		return models.Confirmation{}, common.Surface("add order", err)
	}
	r.logger.Info(ctx, "order placed", "user_id", o.UserID, "block", conf.Position)
	return conf, nil
}

func (r *LedgerRepository) ListForUser(ctx context.Context, userID uint64) (models.List[models.Order], error) {
	if userID == 0 {
		return models.List[models.Order]{}, common.Validation("invalid or missing fields", "user_id")
	}
	recs, err := r.ledger.ListOrders(ctx, userID)
	if err != nil {
		return models.List[models.Order]{}, err
	}
	return models.NewList(r.decode(ctx, recs)), nil
}

func (r *LedgerRepository) ListAll(ctx context.Context) (models.List[models.Order], error) {
	recs, err := r.ledger.ListAllOrders(ctx)
	if err != nil {
		return models.List[models.Order]{}, err
	}
	return models.NewList(r.decode(ctx, recs)), nil
}

// UpdateStatus re-encodes and rewrites the status field only.
func (r *LedgerRepository) UpdateStatus(ctx context.Context, orderID uint64, in payload.Fields) (models.Confirmation, error) {
	p := payload.Read(in)
	status := models.OrderStatus(p.OneOf("status", statuses()...))
	if orderID == 0 {
		return models.Confirmation{}, common.Validation("invalid or missing fields", append([]string{"order_id"}, common.FieldsOf(p.Err())...)...)
	}
	if err := p.Err(); err != nil {
		return models.Confirmation{}, err
	}

	token, err := r.codec.EncodeStatus(status)
	if err != nil {
		return models.Confirmation{}, err
	}
	conf, err := r.ledger.UpdateOrderStatus(ctx, orderID, token)
	if err != nil {
		return models.Confirmation{}, common.Surface("update order status", err)
	}
	r.logger.Info(ctx, "order status updated", "id", orderID, "block", conf.Position)
	return conf, nil
}

func (r *LedgerRepository) decode(ctx context.Context, recs []ledger.OrderRecord) []models.Order {
	out := make([]models.Order, 0, len(recs))
	for _, rec := range recs {
		out = append(out, r.codec.Decode(ctx, rec))
	}
	return out
}

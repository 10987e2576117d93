package codec

import (
	"context"

	"github.com/electronshop/shopkeeper/internal/cryptox"
	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/models"
)

// Orders seals total, status and timestamp.
type Orders struct {
	base
}

func NewOrders(c cryptox.FieldCipher, l logging.Logger, r FailureRecorder) *Orders {
	return &Orders{base: newBase("order", c, l, r)}
}

func (c *Orders) Encode(o models.Order) (ledger.OrderArgs, error) {
	a := ledger.OrderArgs{
		UserID:     o.UserID,
		OrderTotal: o.OrderTotal,
		Status:     o.Status,
		Timestamp:  o.Timestamp,
	}
	err := c.seal(
		slot{"order_total", &a.OrderTotal},
		slot{"status", &a.Status},
		slot{"timestamp", &a.Timestamp},
	)
	return a, err
}

// EncodeStatus seals a status alone, for the status update.
func (c *Orders) EncodeStatus(s models.OrderStatus) (string, error) {
	v := string(s)
	err := c.seal(slot{"status", &v})
	return v, err
}

func (c *Orders) Decode(ctx context.Context, r ledger.OrderRecord) models.Order {
	o := models.Order{
		ID:         r.ID,
		UserID:     r.UserID,
		OrderTotal: r.OrderTotal,
		Status:     r.Status,
		Timestamp:  r.Timestamp,
	}
	o.EncryptedFields = c.open(ctx, r.ID,
		slot{"order_total", &o.OrderTotal},
		slot{"status", &o.Status},
		slot{"timestamp", &o.Timestamp},
	)
	o.Encrypted = len(o.EncryptedFields) > 0
	return o
}

package codec

import (
	"context"
	"strconv"

	"github.com/electronshop/shopkeeper/internal/cryptox"
	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/models"
)

// CartLines seals product id and quantity. UserID stays plaintext so the
// contract can filter on it.
type CartLines struct {
	base
}

func NewCartLines(c cryptox.FieldCipher, l logging.Logger, r FailureRecorder) *CartLines {
	return &CartLines{base: newBase("cart_line", c, l, r)}
}

// Encode coerces the numeric inputs to their decimal string form before
// sealing them.
func (c *CartLines) Encode(userID, productID uint64, quantity int64) (ledger.CartArgs, error) {
	a := ledger.CartArgs{
		UserID:    userID,
		ProductID: strconv.FormatUint(productID, 10),
		Quantity:  strconv.FormatInt(quantity, 10),
	}
	err := c.seal(
		slot{"product_id", &a.ProductID},
		slot{"quantity", &a.Quantity},
	)
	return a, err
}

func (c *CartLines) Decode(ctx context.Context, r ledger.CartRecord) models.CartLine {
	l := models.CartLine{
		ID:        r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
	}
	l.EncryptedFields = c.open(ctx, r.ID,
		slot{"product_id", &l.ProductID},
		slot{"quantity", &l.Quantity},
	)
	l.Encrypted = len(l.EncryptedFields) > 0
	return l
}

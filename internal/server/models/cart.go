package models

// TombstoneQuantity marks a cart line as removed. Readers drop such lines.
const TombstoneQuantity = "0"

// CartLine is one add-to-cart event. UserID stays plaintext so the ledger can
// filter by it; ProductID and Quantity are cipher tokens at rest.
type CartLine struct {
	ID        uint64 `json:"id"`
	UserID    uint64 `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  string `json:"quantity"`

	Encrypted       bool     `json:"encrypted,omitempty"`
	EncryptedFields []string `json:"encrypted_fields,omitempty"`
}

// Active reports whether the line is not a tombstone.
func (l CartLine) Active() bool {
	return l.Quantity != TombstoneQuantity
}

// CartSummary aggregates the active lines of one user's cart.
type CartSummary struct {
	TotalItems     int64      `json:"total_items"`
	UniqueProducts int        `json:"unique_products"`
	Lines          []CartLine `json:"cart_items"`
}

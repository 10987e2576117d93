package models

// Product is a catalogue item. No field is confidential; Price is a decimal
// string and Stock an integer string, exactly as the ledger stores them.
type Product struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       string `json:"stock"`
	Category    string `json:"category"`
	Image       string `json:"image"`
}

// Defaults applied when a product is created without them.
const (
	DefaultCategory = "General"
	DefaultImage    = "📦"
)

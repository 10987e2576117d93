package models

// Confirmation is the proof that a write was included in the ledger.
//
// Position is the block number, HandleID the transaction hash.
type Confirmation struct {
	Confirmed bool   `json:"confirmed"`
	Position  uint64 `json:"position"`
	HandleID  string `json:"handle_id"`
}

// List is a read result together with its size.
type List[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

// NewList wraps items, never returning a nil slice.
func NewList[T any](items []T) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{Count: len(items), Items: items}
}

package models

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every valid status.
var OrderStatuses = []OrderStatus{OrderPending, OrderShipped, OrderDelivered, OrderCancelled}

// Valid reports whether s is one of OrderStatuses.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Order is created at checkout. OrderTotal, Status and Timestamp are cipher
// tokens at rest; only Status is ever rewritten.
type Order struct {
	ID         uint64 `json:"id"`
	UserID     uint64 `json:"user_id"`
	OrderTotal string `json:"order_total"`
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`

	Encrypted       bool     `json:"encrypted,omitempty"`
	EncryptedFields []string `json:"encrypted_fields,omitempty"`
}

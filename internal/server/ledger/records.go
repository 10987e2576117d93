package ledger

import "math/big"

// Records as the contract returns them. Confidential fields hold cipher
// tokens; this package never looks inside them.

type UserRecord struct {
	ID           uint64
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

type ProductRecord struct {
	ID          uint64
	Name        string
	Description string
	Price       string
	Stock       string
	Category    string
	Image       string
}

type CartRecord struct {
	ID        uint64
	UserID    uint64
	ProductID string
	Quantity  string
}

type OrderRecord struct {
	ID         uint64
	UserID     uint64
	OrderTotal string
	Status     string
	Timestamp  string
}

// Wire shapes of the contract tuples. Field order must follow the ABI
// component order; abi tags let the same types be packed in tests.

type rawUser struct {
	Id           *big.Int `abi:"id"`
	Username     string   `abi:"username"`
	Email        string   `abi:"email"`
	PasswordHash string   `abi:"passwordHash"`
	Role         string   `abi:"role"`
}

type rawProduct struct {
	Id          *big.Int `abi:"id"`
	Name        string   `abi:"name"`
	Description string   `abi:"description"`
	Price       string   `abi:"price"`
	Stock       string   `abi:"stock"`
	Category    string   `abi:"category"`
	Image       string   `abi:"image"`
}

type rawCartItem struct {
	Id        *big.Int `abi:"id"`
	UserId    *big.Int `abi:"user_id"`
	ProductId string   `abi:"product_id"`
	Quantity  string   `abi:"quantity"`
}

type rawOrder struct {
	Id         *big.Int `abi:"id"`
	UserId     *big.Int `abi:"user_id"`
	OrderTotal string   `abi:"order_total"`
	Status     string   `abi:"status"`
	Timestamp  string   `abi:"timestamp"`
}

func u64(b *big.Int) uint64 {
	if b == nil || !b.IsUint64() {
		return 0
	}
	return b.Uint64()
}

func (r rawUser) record() UserRecord {
	return UserRecord{ID: u64(r.Id), Username: r.Username, Email: r.Email, PasswordHash: r.PasswordHash, Role: r.Role}
}

func (r rawProduct) record() ProductRecord {
	return ProductRecord{
		ID:          u64(r.Id),
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Category:    r.Category,
		Image:       r.Image,
	}
}

func (r rawCartItem) record() CartRecord {
	return CartRecord{ID: u64(r.Id), UserID: u64(r.UserId), ProductID: r.ProductId, Quantity: r.Quantity}
}

func (r rawOrder) record() OrderRecord {
	return OrderRecord{
		ID:         u64(r.Id),
		UserID:     u64(r.UserId),
		OrderTotal: r.OrderTotal,
		Status:     r.Status,
		Timestamp:  r.Timestamp,
	}
}

package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/electronshop/shopkeeper/internal/server/models"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// UserArgs are the addUser arguments. Every field but Role is a token.
type UserArgs struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

// ProductArgs are the addProduct arguments, all plaintext.
type ProductArgs struct {
	Name        string
	Description string
	Price       string
	Stock       string
	Category    string
	Image       string
}

// CartArgs are the addToCart arguments. ProductID and Quantity are tokens.
type CartArgs struct {
	UserID    uint64
	ProductID string
	Quantity  string
}

// OrderArgs are the addOrder arguments. All but UserID are tokens.
type OrderArgs struct {
	UserID     uint64
	OrderTotal string
	Status     string
	Timestamp  string
}

func id(v uint64) *big.Int { return new(big.Int).SetUint64(v) }

// unpackOne converts the single return value of a call into T.
func unpackOne[T any](method string, values []any) (out T, err error) {
	if len(values) != 1 {
		return out, common.OperationFailed("decode "+method, fmt.Errorf("expected 1 value, got %d", len(values)))
	}
	defer func() {
		if r := recover(); r != nil {
			err = common.OperationFailed("decode "+method, fmt.Errorf("%v", r))
		}
	}()
	return *abi.ConvertType(values[0], new(T)).(*T), nil
}

func (c *Client) RegisterCredential(ctx context.Context, a UserArgs) (models.Confirmation, error) {
	return c.transact(ctx, MethodAddUser, a.Username, a.Email, a.PasswordHash, a.Role)
}

func (c *Client) ListCredentials(ctx context.Context) ([]UserRecord, error) {
	values, err := c.call(ctx, MethodGetUsers)
	if err != nil {
		return nil, err
	}
	raw, err := unpackOne[[]rawUser](MethodGetUsers, values)
	if err != nil {
		return nil, err
	}
	out := make([]UserRecord, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.record())
	}
	return out, nil
}

func (c *Client) AddProduct(ctx context.Context, a ProductArgs) (models.Confirmation, error) {
	return c.transact(ctx, MethodAddProduct, a.Name, a.Description, a.Price, a.Stock, a.Category, a.Image)
}

func (c *Client) ListProducts(ctx context.Context) ([]ProductRecord, error) {
	values, err := c.call(ctx, MethodGetProducts)
	if err != nil {
		return nil, err
	}
	raw, err := unpackOne[[]rawProduct](MethodGetProducts, values)
	if err != nil {
		return nil, err
	}
	out := make([]ProductRecord, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.record())
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, productID uint64) (ProductRecord, error) {
	values, err := c.call(ctx, MethodGetProductByID, id(productID))
	if err != nil {
		return ProductRecord{}, err
	}
	raw, err := unpackOne[rawProduct](MethodGetProductByID, values)
	if err != nil {
		return ProductRecord{}, err
	}
	return raw.record(), nil
}

func (c *Client) UpdateProductPrice(ctx context.Context, productID uint64, price string) (models.Confirmation, error) {
	return c.transact(ctx, MethodUpdateProductPrice, id(productID), price)
}

func (c *Client) UpdateProductStock(ctx context.Context, productID uint64, stock string) (models.Confirmation, error) {
	return c.transact(ctx, MethodUpdateProductStock, id(productID), stock)
}

func (c *Client) DeleteProduct(ctx context.Context, productID uint64) (models.Confirmation, error) {
	return c.transact(ctx, MethodDeleteProduct, id(productID))
}

func (c *Client) AddCartLine(ctx context.Context, a CartArgs) (models.Confirmation, error) {
	return c.transact(ctx, MethodAddToCart, id(a.UserID), a.ProductID, a.Quantity)
}

func (c *Client) ListCartLines(ctx context.Context, userID uint64) ([]CartRecord, error) {
	return c.cartItems(ctx, MethodGetUserCart, id(userID))
}

func (c *Client) ListAllCartLines(ctx context.Context) ([]CartRecord, error) {
	return c.cartItems(ctx, MethodGetCart)
}

func (c *Client) cartItems(ctx context.Context, method string, args ...any) ([]CartRecord, error) {
	values, err := c.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	raw, err := unpackOne[[]rawCartItem](method, values)
	if err != nil {
		return nil, err
	}
	out := make([]CartRecord, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.record())
	}
	return out, nil
}

func (c *Client) ClearCart(ctx context.Context, userID uint64) (models.Confirmation, error) {
	return c.transact(ctx, MethodClearUserCart, id(userID))
}

func (c *Client) AddOrder(ctx context.Context, a OrderArgs) (models.Confirmation, error) {
	return c.transact(ctx, MethodAddOrder, id(a.UserID), a.OrderTotal, a.Status, a.Timestamp)
}

func (c *Client) ListOrders(ctx context.Context, userID uint64) ([]OrderRecord, error) {
	return c.orders(ctx, MethodGetUserOrders, id(userID))
}

func (c *Client) ListAllOrders(ctx context.Context) ([]OrderRecord, error) {
	return c.orders(ctx, MethodGetOrders)
}

func (c *Client) orders(ctx context.Context, method string, args ...any) ([]OrderRecord, error) {
	values, err := c.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	raw, err := unpackOne[[]rawOrder](method, values)
	if err != nil {
		return nil, err
	}
	out := make([]OrderRecord, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.record())
	}
	return out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID uint64, status string) (models.Confirmation, error) {
	return c.transact(ctx, MethodUpdateOrderStatus, id(orderID), status)
}

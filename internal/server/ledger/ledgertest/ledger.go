// Package ledgertest provides an in-memory stand-in for the shop contract.
//
// It keeps the contract's observable behaviour: ids are assigned from 1 in
// insertion order, reads return copies, clearUserCart writes the tombstone
// quantity in place, and a method listed in Reject fails at estimation
// without being submitted.
package ledgertest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/models"
)

type Ledger struct {
	mu sync.Mutex

	block    uint64
	users    []ledger.UserRecord
	products []ledger.ProductRecord
	deleted  map[uint64]bool
	cart     []ledger.CartRecord
	orders   []ledger.OrderRecord

	// Reject makes estimation of the named method fail with the given reason.
	Reject map[string]error
	// WriteErr, when set, is returned by every write after estimation, as if
	// confirmation failed.
	WriteErr error
	// ReadErr, when set, is returned by every read.
	ReadErr error

	// Submitted lists every write that passed estimation, in order.
	Submitted []string
	// Reads lists every read, in order.
	Reads []string
}

func New() *Ledger {
	return &Ledger{Reject: map[string]error{}, deleted: map[uint64]bool{}}
}

func (l *Ledger) write(method string, apply func() error) (models.Confirmation, error) {
	if reason, ok := l.Reject[method]; ok {
		return models.Confirmation{}, common.WriteRejected(method, reason)
	}
	if err := apply(); err != nil {
		return models.Confirmation{}, common.WriteRejected(method, err)
	}
	l.Submitted = append(l.Submitted, method)
	if l.WriteErr != nil {
		return models.Confirmation{}, l.WriteErr
	}
	l.block++
	return models.Confirmation{Confirmed: true, Position: l.block, HandleID: fmt.Sprintf("0x%064x", l.block)}, nil
}

func (l *Ledger) read(method string) error {
	l.Reads = append(l.Reads, method)
	return l.ReadErr
}

// SeedUsers appends raw credential records, bypassing the codec. Ids are
// assigned as usual.
func (l *Ledger) SeedUsers(recs ...ledger.UserRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range recs {
		r.ID = uint64(len(l.users) + 1)
		l.users = append(l.users, r)
	}
}

// SeedCart appends raw cart records.
func (l *Ledger) SeedCart(recs ...ledger.CartRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range recs {
		r.ID = uint64(len(l.cart) + 1)
		l.cart = append(l.cart, r)
	}
}

// SeedOrders appends raw order records.
func (l *Ledger) SeedOrders(recs ...ledger.OrderRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range recs {
		r.ID = uint64(len(l.orders) + 1)
		l.orders = append(l.orders, r)
	}
}

// Orders returns the stored order records as the contract holds them.
func (l *Ledger) Orders() []ledger.OrderRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ledger.OrderRecord(nil), l.orders...)
}

func (l *Ledger) RegisterCredential(_ context.Context, a ledger.UserArgs) (models.Confirmation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write(ledger.MethodAddUser, func() error {
		l.users = append(l.users, ledger.UserRecord{
			ID:           uint64(len(l.users) + 1),
			Username:     a.Username,
			Email:        a.Email,
			PasswordHash: a.PasswordHash,
			Role:         a.Role,
		})
		return nil
	})
}

func (l *Ledger) ListCredentials(context.Context) ([]ledger.UserRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.read(ledger.MethodGetUsers); err != nil {
		return nil, err
	}
	return append([]ledger.UserRecord(nil), l.users...), nil
}

func (l *Ledger) AddProduct(_ context.Context, a ledger.ProductArgs) (models.Confirmation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write(ledger.MethodAddProduct, func() error {
		l.products = append(l.products, ledger.ProductRecord{
			ID:          uint64(len(l.products) + 1),
			Name:        a.Name,
			Description: a.Description,
			Price:       a.Price,
			Stock:       a.Stock,
			Category:    a.Category,
			Image:       a.Image,
		})
		return nil
	})
}

func (l *Ledger) ListProducts(context.Context) ([]ledger.ProductRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.read(ledger.MethodGetProducts); err != nil {
		return nil, err
	}
	var out []ledger.ProductRecord
	for _, p := range l.products {
		if !l.deleted[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

var errNotFound = errors.New("not found")

func (l *Ledger) product(id uint64) (*ledger.ProductRecord, error) {
	if id == 0 || id > uint64(len(l.products)) || l.deleted[id] {
		return nil, fmt.Errorf("product %d %w", id, errNotFound)
	}
	return &l.products[id-1], nil
}

func (l *Ledger) GetProduct(_ context.Context, id uint64) (ledger.ProductRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.read(ledger.MethodGetProductByID); err != nil {
		return ledger.ProductRecord{}, err
	}
	p, err := l.product(id)
	if err != nil {
		return ledger.ProductRecord{}, common.OperationFailed(ledger.MethodGetProductByID+" failed", fmt.Errorf("%w: %v", ledger.ErrReverted, err))
	}
	return *p, nil
}

func (l *Ledger) UpdateProductPrice(_ context.Context, id uint64, price string) (models.Confirmation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write(ledger.MethodUpdateProductPrice, func() error {
		p, err := l.product(id)
		if err != nil {
			return err
		}
		p.Price = price
		return nil
	})
}

func (l *Ledger) UpdateProductStock(_ context.Context, id uint64, stock string) (models.Confirmation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write(ledger.MethodUpdateProductStock, func() error {
		p, err := l.product(id)
		if err != nil {
			return err
		}
		p.Stock = stock
		return nil
	})
}

func (l *Ledger) DeleteProduct(_ context.Context, id uint64) (models.Confirmation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write(ledger.MethodDeleteProduct, func() error {
		if _, err := l.product(id); err != nil {
			return err
		}
		l.deleted[id] = true
		return nil
	})
}

func (l *Ledger) AddCartLine(_ context.Context, a ledger.CartArgs) (models.Confirmation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write(ledger.MethodAddToCart, func() error {
		l.cart = append(l.cart, ledger.CartRecord{
			ID:        uint64(len(l.cart) + 1),
			UserID:    a.UserID,
			ProductID: a.ProductID,
			Quantity:  a.Quantity,
		})
		return nil
	})
}

func (l *Ledger) ListCartLines(_ context.Context, userID uint64) ([]ledger.CartRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.read(ledger.MethodGetUserCart); err != nil {
		return nil, err
	}
	var out []ledger.CartRecord
	for _, c := range l.cart {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (l *Ledger) ListAllCartLines(context.Context) ([]ledger.CartRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.read(ledger.MethodGetCart); err != nil {
		return nil, err
	}
	return append([]ledger.CartRecord(nil), l.cart...), nil
}

func (l *Ledger) ClearCart(_ context.Context, userID uint64) (models.Confirmation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write(ledger.MethodClearUserCart, func() error {
		for i := range l.cart {
			if l.cart[i].UserID == userID {
				l.cart[i].Quantity = models.TombstoneQuantity
			}
		}
		return nil
	})
}

func (l *Ledger) AddOrder(_ context.Context, a ledger.OrderArgs) (models.Confirmation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write(ledger.MethodAddOrder, func() error {
		l.orders = append(l.orders, ledger.OrderRecord{
			ID:         uint64(len(l.orders) + 1),
			UserID:     a.UserID,
			OrderTotal: a.OrderTotal,
			Status:     a.Status,
			Timestamp:  a.Timestamp,
		})
		return nil
	})
}

func (l *Ledger) ListOrders(_ context.Context, userID uint64) ([]ledger.OrderRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.read(ledger.MethodGetUserOrders); err != nil {
		return nil, err
	}
	var out []ledger.OrderRecord
	for _, o := range l.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (l *Ledger) ListAllOrders(context.Context) ([]ledger.OrderRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.read(ledger.MethodGetOrders); err != nil {
		return nil, err
	}
	return append([]ledger.OrderRecord(nil), l.orders...), nil
}

func (l *Ledger) UpdateOrderStatus(_ context.Context, orderID uint64, status string) (models.Confirmation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write(ledger.MethodUpdateOrderStatus, func() error {
		if orderID == 0 || orderID > uint64(len(l.orders)) {
			return fmt.Errorf("order %d %w", orderID, errNotFound)
		}
		l.orders[orderID-1].Status = status
		return nil
	})
}

// Head reports the number of confirmed writes, standing in for the block
// height.
func (l *Ledger) Head(context.Context) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ReadErr != nil {
		return 0, l.ReadErr
	}
	return l.block, nil
}

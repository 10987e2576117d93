package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/electronshop/shopkeeper/internal/server/models"
	"github.com/electronshop/shopkeeper/internal/server/payload"
	"github.com/shopspring/decimal"
)

func (a *App) confirmed(c models.Confirmation) {
	fmt.Fprintf(a.out, "confirmed in block %d (%s)\n", c.Position, c.HandleID)
}

func (a *App) prompt(label string) (string, error) {
	v, err := GetSimpleText(a.reader, label, a.out)
	if err != nil {
		return "", a.fail(err)
	}
	return v, nil
}

func (a *App) password() (string, error) {
	pw, err := GetPassword(a.out)
	if err != nil {
		return "", a.fail(err)
	}
	defer wipe(pw)
	return string(pw), nil
}

func (a *App) Register(ctx context.Context) error {
	name, err := a.prompt("Enter name")
	if err != nil {
		return err
	}
	email, err := a.prompt("Enter email")
	if err != nil {
		return err
	}
	password, err := a.password()
	if err != nil {
		return err
	}

	c, err := a.users.Register(ctx, payload.Fields{"name": name, "email": email, "password": password})
	if err != nil {
		return a.fail(err)
	}
	a.confirmed(c)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := a.prompt("Enter email")
	if err != nil {
		return err
	}
	password, err := a.password()
	if err != nil {
		return err
	}

	s, err := a.sessions.Login(ctx, payload.Fields{"email": email, "password": password})
	if err != nil {
		return a.fail(err)
	}
	a.session = s
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", s.User.Username, s.User.Role)
	return nil
}

func (a *App) Logout(context.Context) error {
	a.session = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) printProduct(p models.Product) {
	fmt.Fprintf(a.out, "#%d %s %s | %s | stock %s | %s\n", p.ID, p.Image, p.Name, p.Price, p.Stock, p.Category)
}

// Products lists the catalogue; optional arguments are a search query and a
// category.
func (a *App) Products(ctx context.Context, args []string) error {
	var query, category string
	if len(args) > 0 {
		query = args[0]
	}
	if len(args) > 1 {
		category = args[1]
	}

	list, err := a.products.Search(ctx, query, category)
	if err != nil {
		return a.fail(err)
	}
	for _, p := range list.Items {
		a.printProduct(p)
	}
	fmt.Fprintf(a.out, "%d product(s)\n", list.Count)
	return nil
}

func (a *App) Product(ctx context.Context, args []string) error {
	id, err := argID(args, "product_id")
	if err != nil {
		return a.fail(err)
	}
	p, err := a.products.Get(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	a.printProduct(p)
	fmt.Fprintln(a.out, p.Description)
	return nil
}

func (a *App) AddProduct(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	in := payload.Fields{}
	for _, f := range []struct{ name, label string }{
		{"name", "Enter name"},
		{"description", "Enter description"},
		{"price", "Enter price"},
		{"stock", "Enter stock"},
		{"category", "Enter category (empty for default)"},
		{"image", "Enter image (empty for default)"},
	} {
		v, err := a.prompt(f.label)
		if err != nil {
			return err
		}
		if v != "" {
			in[f.name] = v
		}
	}

	c, err := a.products.Create(ctx, in)
	if err != nil {
		return a.fail(err)
	}
	a.confirmed(c)
	return nil
}

// UpdateProduct takes "price=.." and "stock=.." assignments after the id.
func (a *App) UpdateProduct(ctx context.Context, args []string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	id, err := argID(args, "product_id")
	if err != nil {
		return a.fail(err)
	}
	in := payload.Fields{}
	for _, kv := range args[1:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return a.fail(common.Validation("expected name=value", kv))
		}
		in[k] = v
	}

	cs, err := a.products.Update(ctx, id, in)
	if err != nil {
		return a.fail(err)
	}
	for _, c := range cs {
		a.confirmed(c)
	}
	return nil
}

func (a *App) DeleteProduct(ctx context.Context, args []string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	id, err := argID(args, "product_id")
	if err != nil {
		return a.fail(err)
	}
	c, err := a.products.Delete(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	a.confirmed(c)
	return nil
}

func (a *App) Cart(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	s, err := a.cart.Summary(ctx, a.session.User.ID)
	if err != nil {
		return a.fail(err)
	}
	for _, l := range s.Lines {
		if l.Encrypted {
			fmt.Fprintf(a.out, "line #%d unreadable\n", l.ID)
			continue
		}
		fmt.Fprintf(a.out, "line #%d product %s x %s\n", l.ID, l.ProductID, l.Quantity)
	}
	fmt.Fprintf(a.out, "%d item(s), %d product(s)\n", s.TotalItems, s.UniqueProducts)
	return nil
}

func (a *App) AddToCart(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) != 2 {
		return a.fail(common.Validation("usage: add <product_id> <quantity>", "product_id", "quantity"))
	}
	c, err := a.cart.Add(ctx, payload.Fields{
		"user_id":    a.session.User.ID,
		"product_id": args[0],
		"quantity":   args[1],
	})
	if err != nil {
		return a.fail(err)
	}
	a.confirmed(c)
	return nil
}

func (a *App) ClearCart(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	c, err := a.cart.Clear(ctx, a.session.User.ID)
	if err != nil {
		return a.fail(err)
	}
	a.confirmed(c)
	return nil
}

var errEmptyCart = errors.New("cart is empty")

// Checkout prices the readable cart lines against the catalogue, records a
// pending order for the total and clears the cart.
func (a *App) Checkout(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	userID := a.session.User.ID

	s, err := a.cart.Summary(ctx, userID)
	if err != nil {
		return a.fail(err)
	}

	total := decimal.Zero
	for _, l := range s.Lines {
		if l.Encrypted {
			fmt.Fprintf(a.out, "skipping unreadable line #%d\n", l.ID)
			continue
		}
		productID, err := payload.ID("product_id", l.ProductID)
		if err != nil {
			return a.fail(err)
		}
		qty, err := decimal.NewFromString(l.Quantity)
		if err != nil {
			return a.fail(common.Validation("invalid quantity", "quantity"))
		}
		p, err := a.products.Get(ctx, productID)
		if err != nil {
			return a.fail(err)
		}
		price, err := payload.ParseDecimal(p.Price)
		if err != nil {
			return a.fail(err)
		}
		total = total.Add(price.Mul(qty))
	}
	if !total.IsPositive() {
		return a.fail(errEmptyCart)
	}

	c, err := a.orders.Create(ctx, payload.Fields{
		"user_id":     userID,
		"order_total": total.String(),
		"status":      string(models.OrderPending),
	})
	if err != nil {
		return a.fail(err)
	}
	a.confirmed(c)
	fmt.Fprintf(a.out, "order total %s\n", total.String())

	c, err = a.cart.Clear(ctx, userID)
	if err != nil {
		return a.fail(err)
	}
	a.confirmed(c)
	return nil
}

// Orders lists the caller's orders, or every order for an admin.
func (a *App) Orders(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	var (
		list models.List[models.Order]
		err  error
	)
	if a.isAdmin() {
		list, err = a.orders.ListAll(ctx)
	} else {
		list, err = a.orders.ListForUser(ctx, a.session.User.ID)
	}
	if err != nil {
		return a.fail(err)
	}
	for _, o := range list.Items {
		if o.Encrypted {
			fmt.Fprintf(a.out, "order #%d user %d unreadable %v\n", o.ID, o.UserID, o.EncryptedFields)
			continue
		}
		fmt.Fprintf(a.out, "order #%d user %d %s %s %s\n", o.ID, o.UserID, o.OrderTotal, o.Status, o.Timestamp)
	}
	fmt.Fprintf(a.out, "%d order(s)\n", list.Count)
	return nil
}

func (a *App) SetStatus(ctx context.Context, args []string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	id, err := argID(args, "order_id")
	if err != nil {
		return a.fail(err)
	}
	if len(args) != 2 {
		return a.fail(common.Validation("usage: status <order_id> <status>", "status"))
	}
	c, err := a.orders.UpdateStatus(ctx, id, payload.Fields{"status": args[1]})
	if err != nil {
		return a.fail(err)
	}
	a.confirmed(c)
	return nil
}

func (a *App) Users(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	list, err := a.users.List(ctx)
	if err != nil {
		return a.fail(err)
	}
	for _, u := range list.Items {
		if u.Encrypted {
			fmt.Fprintf(a.out, "user #%d unreadable %v\n", u.ID, u.EncryptedFields)
			continue
		}
		fmt.Fprintf(a.out, "user #%d %s <%s> %s\n", u.ID, u.Username, u.Email, u.Role)
	}
	fmt.Fprintf(a.out, "%d user(s)\n", list.Count)
	return nil
}

func argID(args []string, name string) (uint64, error) {
	if len(args) == 0 {
		return 0, common.Validation("missing "+name, name)
	}
	return payload.ID(name, args[0])
}

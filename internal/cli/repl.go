package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	Products(ctx context.Context, args []string) error
	Product(ctx context.Context, args []string) error
	AddProduct(ctx context.Context) error
	UpdateProduct(ctx context.Context, args []string) error
	DeleteProduct(ctx context.Context, args []string) error

	Cart(ctx context.Context) error
	AddToCart(ctx context.Context, args []string) error
	ClearCart(ctx context.Context) error
	Checkout(ctx context.Context) error

	Orders(ctx context.Context) error
	SetStatus(ctx context.Context, args []string) error
	Users(ctx context.Context) error
}

const (
	helpGuest = "Available commands: register, login, products [query] [category], product <id>, exit"
	helpUser  = "Available commands: products [query] [category], product <id>, cart, add <product_id> <qty>, clear, checkout, orders, logout, exit"
	helpAdmin = "Admin commands: addproduct, update <id> [price=..] [stock=..], delete <id>, status <order_id> <status>, users"
)

// runREPL reads commands line by line and dispatches them to a until EOF or
// exit. Handler errors are reported by the handlers themselves. Commands
// prompting for input read from the same reader.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "shop %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if ctx.Err() != nil {
			return
		}

		switch cmd {
		case "help":
			switch {
			case a.isAdmin():
				fmt.Fprintln(w, helpUser)
				fmt.Fprintln(w, helpAdmin)
			case a.isLoggedIn():
				fmt.Fprintln(w, helpUser)
			default:
				fmt.Fprintln(w, helpGuest)
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)

		case "products", "p":
			_ = a.Products(ctx, args)
		case "product":
			_ = a.Product(ctx, args)
		case "addproduct":
			_ = a.AddProduct(ctx)
		case "update":
			_ = a.UpdateProduct(ctx, args)
		case "delete":
			_ = a.DeleteProduct(ctx, args)

		case "cart":
			_ = a.Cart(ctx)
		case "add":
			_ = a.AddToCart(ctx, args)
		case "clear":
			_ = a.ClearCart(ctx)
		case "checkout":
			_ = a.Checkout(ctx)

		case "orders":
			_ = a.Orders(ctx)
		case "status":
			_ = a.SetStatus(ctx, args)
		case "users":
			_ = a.Users(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server"
	"github.com/electronshop/shopkeeper/internal/server/config"
	"github.com/electronshop/shopkeeper/internal/server/payload"
	"github.com/electronshop/shopkeeper/internal/server/repositories/cart"
	"github.com/electronshop/shopkeeper/internal/server/repositories/orders"
	"github.com/electronshop/shopkeeper/internal/server/repositories/products"
	"github.com/electronshop/shopkeeper/internal/server/repositories/users"
	"github.com/electronshop/shopkeeper/internal/server/services"
)

// Sessions authenticates console users.
type Sessions interface {
	Login(ctx context.Context, in payload.Fields) (*services.Session, error)
}

type App struct {
	users    users.Repository
	products products.Repository
	cart     cart.Repository
	orders   orders.Repository
	sessions Sessions

	session *services.Session
	reader  *bufio.Reader
	out     io.Writer
	close   func()
}

// NewApp connects to the ledger described by c. Ledger diagnostics go to
// stderr so they do not interleave with the prompt.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level := c.LogLevel
	if level == "info" {
		level = "warn"
	}
	logger := logging.NewJSONLogger(os.Stderr, level)

	core, err := server.NewCore(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	a := newApp(core.Users, core.Products, core.Cart, core.Orders, core.Sessions, os.Stdin, os.Stdout)
	a.close = core.Close
	return a, nil
}

func newApp(u users.Repository, p products.Repository, c cart.Repository, o orders.Repository, s Sessions, in io.Reader, out io.Writer) *App {
	return &App{
		users:    u,
		products: p,
		cart:     c,
		orders:   o,
		sessions: s,
		reader:   bufio.NewReader(in),
		out:      out,
		close:    func() {},
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.close()
	fmt.Fprintln(a.out, "Shop ledger console (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) isLoggedIn() bool { return a.session != nil }

func (a *App) isAdmin() bool {
	return a.session != nil && a.session.User.Role == common.RoleAdmin
}

func (a *App) getStatus() string {
	if a.session == nil {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.session.User.Username)
}

// fail reports err to the user and returns it.
func (a *App) fail(err error) error {
	fmt.Fprintf(a.out, "error: %v\n", err)
	return err
}

func (a *App) requireLogin() error {
	if a.session == nil {
		return a.fail(common.ErrAuthRejected)
	}
	return nil
}

func (a *App) requireAdmin() error {
	if !a.isAdmin() {
		return a.fail(fmt.Errorf("%w: admin session required", common.ErrAuthRejected))
	}
	return nil
}

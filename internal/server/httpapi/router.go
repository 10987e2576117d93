// Package httpapi is the HTTP transport. Handlers decode request bodies into
// field maps, call the repositories and wrap the outcome in the envelope
// {"success": bool, "message": string, ...}. Error kinds map to statuses:
// validation 400, not found 404, auth rejected 401, ledger timeouts and
// outages 503, anything else 500.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server/payload"
	"github.com/electronshop/shopkeeper/internal/server/repositories/cart"
	"github.com/electronshop/shopkeeper/internal/server/repositories/orders"
	"github.com/electronshop/shopkeeper/internal/server/repositories/products"
	"github.com/electronshop/shopkeeper/internal/server/repositories/users"
	"github.com/electronshop/shopkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Sessions is the login side of the API.
type Sessions interface {
	Authorizer
	Login(ctx context.Context, in payload.Fields) (*services.Session, error)
	VerifySession(ctx context.Context, in payload.Fields) (bool, error)
}

// HeadReader reports the ledger head; it backs the health endpoint.
type HeadReader interface {
	Head(ctx context.Context) (uint64, error)
}

type Config struct {
	Users    users.Repository
	Products products.Repository
	Cart     cart.Repository
	Orders   orders.Repository
	Sessions Sessions
	Ledger   HeadReader
	Recorder Recorder
	Metrics  http.Handler
	Logger   logging.Logger

	AllowedOrigins []string
	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit float64
	RateBurst int
	// RequireAdminToken guards admin routes with an admin session token.
	RequireAdminToken bool
	RequestTimeout    time.Duration
}

type handler struct {
	cfg    Config
	logger logging.Logger
}

// NewRouter builds the routing tree. Background work started for the router
// stops when ctx is done.
func NewRouter(ctx context.Context, cfg Config) *chi.Mux {
	h := &handler{cfg: cfg, logger: cfg.Logger.With("module", "http")}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 3 * time.Minute
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if cfg.Recorder != nil {
		r.Use(instrument(cfg.Recorder))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	if cfg.RateLimit > 0 {
		rl := newRateLimiter(cfg.RateLimit, max(cfg.RateBurst, 1))
		go rl.run(ctx)
		r.Use(rl.middleware)
	}
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	admin := func(next http.Handler) http.Handler { return next }
	if cfg.RequireAdminToken {
		admin = requireAdmin(cfg.Sessions)
	}

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)

		r.Post("/signup", h.signup)
		r.Post("/login", h.login)
		r.Post("/verify-session", h.verifySession)
		r.Get("/profile/{user_id}", h.profile)
		r.With(admin).Get("/users", h.listUsers)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Get("/search", h.searchProducts)
			r.Get("/{product_id}", h.getProduct)
			r.With(admin).Post("/", h.createProduct)
			r.With(admin).Put("/{product_id}", h.updateProduct)
			r.With(admin).Delete("/{product_id}", h.deleteProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/", h.addToCart)
			r.With(admin).Get("/", h.listAllCarts)
			r.Get("/user/{user_id}", h.userCart)
			r.Get("/summary/{user_id}", h.cartSummary)
			r.Post("/clear/{user_id}", h.clearCart)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.createOrder)
			r.With(admin).Get("/", h.listAllOrders)
			r.Get("/user/{user_id}", h.userOrders)
			r.With(admin).Put("/{order_id}/status", h.updateOrderStatus)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{"success": false, "message": "route not found", "path": r.URL.Path})
	})
	return r
}

// actor is the id of the admin making the request, or 0 when unguarded.
func actor(r *http.Request) uint64 {
	if c, ok := ClaimsFrom(r.Context()); ok {
		return c.UserID
	}
	return 0
}

var _ Sessions = (*services.SessionAuthenticator)(nil)

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/electronshop/shopkeeper/internal/cryptox"
	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server/auth"
	"github.com/electronshop/shopkeeper/internal/server/codec"
	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/ledger/ledgertest"
	"github.com/electronshop/shopkeeper/internal/server/metrics"
	"github.com/electronshop/shopkeeper/internal/server/repositories/cart"
	"github.com/electronshop/shopkeeper/internal/server/repositories/orders"
	"github.com/electronshop/shopkeeper/internal/server/repositories/products"
	"github.com/electronshop/shopkeeper/internal/server/repositories/users"
	"github.com/electronshop/shopkeeper/internal/server/services"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("http-secret")

type env struct {
	srv     *httptest.Server
	ledger  *ledgertest.Ledger
	metrics *metrics.Metrics
	codec   *codec.Credentials
}

func newEnv(t *testing.T, mutate func(*Config)) *env {
	t.Helper()
	c, err := cryptox.NewCipherWithKey([]byte(strings.Repeat("h", 32)))
	require.NoError(t, err)

	log := logging.NewNopLogger()
	m := metrics.New()
	l := ledgertest.New()
	creds := codec.NewCredentials(c, log, m)

	cfg := Config{
		Users:    users.NewLedgerRepository(l, creds, log),
		Products: products.NewLedgerRepository(l, log),
		Cart:     cart.NewLedgerRepository(l, codec.NewCartLines(c, log, m), log),
		Orders:   orders.NewLedgerRepository(l, codec.NewOrders(c, log, m), log),
		Sessions: services.NewSessionAuthenticator(l, creds, log, testSecret, time.Hour),
		Ledger:   l,
		Recorder: m,
		Metrics:  m.Handler(),
		Logger:   log,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(NewRouter(ctx, cfg))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &env{srv: srv, ledger: l, metrics: m, codec: creds}
}

func (e *env) do(t *testing.T, method, path, body string, header ...string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestSignupLoginProfile(t *testing.T) {
	e := newEnv(t, nil)

	code, body := e.do(t, http.MethodPost, "/api/signup", `{"name":"Ann","email":"Ann@x.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["transactionHash"])

	code, body = e.do(t, http.MethodPost, "/api/login", `{"email":"ann@x.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, code, body)
	user := body["user"].(map[string]any)
	assert.Equal(t, "Ann", user["username"])
	assert.NotContains(t, user, "secret")
	assert.NotEmpty(t, body["token"])

	code, body = e.do(t, http.MethodPost, "/api/login", `{"email":"ann@x.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, false, body["success"])

	code, body = e.do(t, http.MethodGet, "/api/profile/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ann@x.com", body["user"].(map[string]any)["email"])

	code, _ = e.do(t, http.MethodGet, "/api/profile/9", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = e.do(t, http.MethodGet, "/api/profile/abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestVerifySession(t *testing.T) {
	e := newEnv(t, nil)
	code, _ := e.do(t, http.MethodPost, "/api/signup", `{"name":"Ann","email":"ann@x.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, code)

	code, _ = e.do(t, http.MethodPost, "/api/verify-session", `{"user_id":1,"email":"ANN@x.com"}`)
	assert.Equal(t, http.StatusOK, code)

	code, _ = e.do(t, http.MethodPost, "/api/verify-session", `{"user_id":1,"email":"bob@x.com"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = e.do(t, http.MethodPost, "/api/verify-session", `{"user_id":7,"email":"ann@x.com"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestValidationErrorListsFields(t *testing.T) {
	e := newEnv(t, nil)

	code, body := e.do(t, http.MethodPost, "/api/cart", `{"user_id":"x","quantity":0}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.ElementsMatch(t, []any{"user_id", "product_id", "quantity"}, body["fields"])
	assert.Equal(t, string(common.KindValidation), body["kind"])
	assert.Empty(t, e.ledger.Submitted)

	code, _ = e.do(t, http.MethodPost, "/api/cart", `{not json`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCartFlow(t *testing.T) {
	e := newEnv(t, nil)

	for _, b := range []string{
		`{"user_id":1,"product_id":2,"quantity":2}`,
		`{"user_id":1,"product_id":3,"quantity":"5"}`,
	} {
		code, body := e.do(t, http.MethodPost, "/api/cart", b)
		require.Equal(t, http.StatusOK, code, body)
	}

	code, body := e.do(t, http.MethodGet, "/api/cart/summary/1", "")
	require.Equal(t, http.StatusOK, code)
	s := body["summary"].(map[string]any)
	assert.Equal(t, 7.0, s["total_items"])
	assert.Equal(t, 2.0, s["unique_products"])

	code, _ = e.do(t, http.MethodPost, "/api/cart/clear/1", "")
	require.Equal(t, http.StatusOK, code)

	code, body = e.do(t, http.MethodGet, "/api/cart/user/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.0, body["count"])
}

func TestOrderFlow(t *testing.T) {
	e := newEnv(t, nil)

	code, body := e.do(t, http.MethodPost, "/api/orders", `{"user_id":4,"order_total":"10.00","status":"pending"}`)
	require.Equal(t, http.StatusOK, code, body)

	code, _ = e.do(t, http.MethodPut, "/api/orders/1/status", `{"status":"delivered"}`)
	require.Equal(t, http.StatusOK, code)

	code, body = e.do(t, http.MethodGet, "/api/orders/user/4", "")
	require.Equal(t, http.StatusOK, code)
	o := body["orders"].([]any)[0].(map[string]any)
	assert.Equal(t, "delivered", o["status"])
	assert.Equal(t, "10", o["order_total"])

	code, _ = e.do(t, http.MethodPut, "/api/orders/1/status", `{"status":"lost"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestWriteRejectedIs500WithReason(t *testing.T) {
	e := newEnv(t, nil)
	e.ledger.Reject[ledger.MethodAddOrder] = errors.New("execution reverted: bad user")

	code, body := e.do(t, http.MethodPost, "/api/orders", `{"user_id":4,"order_total":"10","status":"pending"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, string(common.KindOperationFailed), body["kind"])
	assert.Contains(t, body["error"], "bad user")
	assert.Empty(t, e.ledger.Submitted)
}

func TestLedgerUnavailableIs503(t *testing.T) {
	e := newEnv(t, nil)
	e.ledger.ReadErr = common.LedgerUnavailable(errors.New("connection refused"))

	code, _ := e.do(t, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	code, body := e.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, false, body["success"])
}

func TestProductsAndSearch(t *testing.T) {
	e := newEnv(t, nil)

	code, body := e.do(t, http.MethodPost, "/api/products", `{"name":"Phone","description":"d","price":"10.5","stock":0}`)
	require.Equal(t, http.StatusOK, code, body)

	code, body = e.do(t, http.MethodGet, "/api/products/search?query=PHO&category=all", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, body["count"])

	code, body = e.do(t, http.MethodGet, "/api/products/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "General", body["product"].(map[string]any)["category"])

	code, body = e.do(t, http.MethodPut, "/api/products/1", `{"price":"11"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["confirmations"], 1)

	code, _ = e.do(t, http.MethodDelete, "/api/products/1", "")
	require.Equal(t, http.StatusOK, code)

	code, _ = e.do(t, http.MethodGet, "/api/products/1", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdminGuard(t *testing.T) {
	e := newEnv(t, func(c *Config) { c.RequireAdminToken = true })

	code, _ := e.do(t, http.MethodGet, "/api/orders", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	userTok, _, err := auth.GenerateToken(1, "u@x.com", common.RoleUser, testSecret, time.Hour)
	require.NoError(t, err)
	code, _ = e.do(t, http.MethodGet, "/api/orders", "", "Authorization", "Bearer "+userTok)
	assert.Equal(t, http.StatusForbidden, code)

	adminTok, _, err := auth.GenerateToken(2, "a@x.com", common.RoleAdmin, testSecret, time.Hour)
	require.NoError(t, err)
	code, body := e.do(t, http.MethodGet, "/api/orders", "", "Authorization", "Bearer "+adminTok)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.0, body["count"])

	expired, _, err := auth.GenerateToken(2, "a@x.com", common.RoleAdmin, testSecret, -time.Minute)
	require.NoError(t, err)
	code, _ = e.do(t, http.MethodGet, "/api/users", "", "Authorization", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = e.do(t, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestListUsersMarksUnreadable(t *testing.T) {
	e := newEnv(t, nil)
	e.ledger.SeedUsers(ledger.UserRecord{Username: "?", Email: "?", PasswordHash: "?", Role: "user"})

	code, body := e.do(t, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, code)
	u := body["users"].([]any)[0].(map[string]any)
	assert.Equal(t, true, u["encrypted"])
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.DecodeFailuresTotal.WithLabelValues("credential")))
}

func TestRateLimit(t *testing.T) {
	e := newEnv(t, func(c *Config) { c.RateLimit = 0.001; c.RateBurst = 2 })

	for i := 0; i < 2; i++ {
		code, _ := e.do(t, http.MethodGet, "/api/products", "")
		require.Equal(t, http.StatusOK, code)
	}
	code, _ := e.do(t, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestMetricsAndNotFound(t *testing.T) {
	e := newEnv(t, nil)

	code, _ := e.do(t, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, code)

	code, body := e.do(t, http.MethodGet, "/api/nowhere", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "/api/nowhere", body["path"])

	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/products/", "200")))

	resp, err := http.Get(e.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimiterSweep(t *testing.T) {
	l := newRateLimiter(1, 1)
	now := time.Now()
	assert.True(t, l.allow("a", now))
	assert.False(t, l.allow("a", now))
	l.sweep(now.Add(4*time.Minute), 3*time.Minute)
	assert.Empty(t, l.visitors)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusOf(common.Validation("x")))
	assert.Equal(t, http.StatusNotFound, statusOf(common.NotFound("x")))
	assert.Equal(t, http.StatusUnauthorized, statusOf(common.ErrAuthRejected))
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(common.ConfirmationTimeout("0x1", nil)))
	assert.Equal(t, http.StatusInternalServerError, statusOf(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, statusOf(common.OperationFailed("x", nil)))
}

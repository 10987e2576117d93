// Package server wires the data layer to its transports and runs them until
// the process is told to stop.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server/config"
	"github.com/electronshop/shopkeeper/internal/server/httpapi"

	gs "github.com/electronshop/shopkeeper/internal/server/grpc"
)

const (
	requestMargin   = 30 * time.Second
	shutdownTimeout = 10 * time.Second
	healthInterval  = 10 * time.Second
)

// requestTimeout bounds one HTTP request: a confirmed write, the read barrier
// after it, and a margin for estimation and the reads around them.
func requestTimeout(c *config.Config) time.Duration {
	return c.ConfirmationTimeout + c.ReadBarrierTimeout + requestMargin
}

type App struct {
	config *config.Config
	logger logging.Logger
	core   *Core
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	core, err := NewCore(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	return &App{config: c, logger: logger, core: core}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) router(ctx context.Context) http.Handler {
	return httpapi.NewRouter(ctx, httpapi.Config{
		Users:             app.core.Users,
		Products:          app.core.Products,
		Cart:              app.core.Cart,
		Orders:            app.core.Orders,
		Sessions:          app.core.Sessions,
		Ledger:            app.core.Ledger,
		Recorder:          app.core.Metrics,
		Metrics:           app.core.Metrics.Handler(),
		Logger:            app.logger,
		AllowedOrigins:    app.config.AllowedOrigins,
		RateLimit:         app.config.RateLimit,
		RateBurst:         app.config.RateBurst,
		RequireAdminToken: app.config.RequireAdminToken,
		RequestTimeout:    requestTimeout(app.config),
	})
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.router(ctx),
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.GRPCHealthAddr, app.logger, app.core.Ledger, healthInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves HTTP and gRPC health until a signal arrives or either server
// fails, then waits for both to stop and releases the ledger connection.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "account", app.core.Ledger.Account().Hex())

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	confirmed := app.core.Ledger.ConfirmedPosition()
	app.core.Close()
	app.logger.Info(context.Background(), "app stopped", "confirmed_block", confirmed)
}

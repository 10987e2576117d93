package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/electronshop/shopkeeper/internal/cryptox"
	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server/codec"
	"github.com/electronshop/shopkeeper/internal/server/config"
	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/electronshop/shopkeeper/internal/server/metrics"
	"github.com/electronshop/shopkeeper/internal/server/repositories/cart"
	"github.com/electronshop/shopkeeper/internal/server/repositories/orders"
	"github.com/electronshop/shopkeeper/internal/server/repositories/products"
	"github.com/electronshop/shopkeeper/internal/server/repositories/repomanager"
	"github.com/electronshop/shopkeeper/internal/server/repositories/users"
	"github.com/electronshop/shopkeeper/internal/server/services"
)

// Core is the data layer shared by the server and the operator CLI: one
// ledger client, one cipher and the repositories built on them.
type Core struct {
	Ledger   *ledger.Client
	Metrics  *metrics.Metrics
	Users    *users.LedgerRepository
	Products *products.LedgerRepository
	Cart     *cart.LedgerRepository
	Orders   *orders.LedgerRepository
	Sessions *services.SessionAuthenticator

	db *sql.DB
}

var dialLedger = func(ctx context.Context, cfg ledger.Config, source string, s3cfg ledger.S3Config, logger logging.Logger, rec ledger.Recorder) (*ledger.Client, error) {
	parsed, err := ledger.LoadABI(ctx, source, ledger.NewS3Fetcher(s3cfg))
	if err != nil {
		return nil, err
	}
	return ledger.Dial(ctx, cfg, parsed, logger, rec)
}

// NewCore validates cfg and connects to the ledger. Any failure is fatal:
// the process cannot serve without a verified contract.
func NewCore(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cipher, err := cryptox.NewCipher(cfg.CipherPassphrase, cfg.CipherSalt)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}

	m := metrics.New()

	client, err := dialLedger(ctx, ledger.Config{
		RPCURL:              cfg.RPCURL,
		PrivateKey:          cfg.PrivateKey,
		ContractAddress:     cfg.ContractAddress,
		GasLimit:            cfg.GasLimit,
		ConfirmationTimeout: cfg.ConfirmationTimeout,
		ReadBarrierTimeout:  cfg.ReadBarrierTimeout,
	}, cfg.ABISource, ledger.S3Config{
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	}, logger, m)
	if err != nil {
		return nil, fmt.Errorf("ledger init error: %w", err)
	}

	credentials := codec.NewCredentials(cipher, logger, m)
	c := &Core{
		Ledger:   client,
		Metrics:  m,
		Users:    users.NewLedgerRepository(client, credentials, logger),
		Products: products.NewLedgerRepository(client, logger),
		Cart:     cart.NewLedgerRepository(client, codec.NewCartLines(cipher, logger, m), logger),
		Orders:   orders.NewLedgerRepository(client, codec.NewOrders(cipher, logger, m), logger),
		Sessions: services.NewSessionAuthenticator(client, credentials, logger, []byte(cfg.SecretKey), cfg.SessionValidityDuration),
	}

	if cfg.DatabaseDSN == "" {
		return c, nil
	}

	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		client.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	c.db = db
	c.Sessions.WithEmailIndex(db, rm, cipher)
	logger.Info(ctx, "credential email index enabled")

	return c, nil
}

func (c *Core) Close() {
	if c.db != nil {
		_ = c.db.Close()
	}
	c.Ledger.Close()
}

package server

import (
	"context"
	"errors"
	"testing"

	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/electronshop/shopkeeper/internal/server/config"
	"github.com/electronshop/shopkeeper/internal/server/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	return c
}

func TestNewCore_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.RPCURL = ""
	cfg.GasLimit = 0

	_, err := NewCore(context.Background(), cfg, logging.NewNopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc url is required")
	assert.Contains(t, err.Error(), "gas limit must be positive")
}

func TestNewCore_LedgerFailureIsFatal(t *testing.T) {
	orig := dialLedger
	t.Cleanup(func() { dialLedger = orig })

	var got ledger.Config
	var gotSource string
	dialLedger = func(_ context.Context, cfg ledger.Config, source string, _ ledger.S3Config, _ logging.Logger, _ ledger.Recorder) (*ledger.Client, error) {
		got, gotSource = cfg, source
		return nil, errors.New("no contract deployed")
	}

	cfg := testConfig()
	cfg.ABISource = "s3://abis/electron.json"

	_, err := NewCore(context.Background(), cfg, logging.NewNopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger init error")
	assert.Equal(t, cfg.RPCURL, got.RPCURL)
	assert.Equal(t, cfg.GasLimit, got.GasLimit)
	assert.Equal(t, cfg.ConfirmationTimeout, got.ConfirmationTimeout)
	assert.Equal(t, "s3://abis/electron.json", gotSource)
}

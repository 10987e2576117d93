// Package ledger is the typed proxy to the shop contract.
//
// Reads are plain eth_call requests. Writes are estimated first, then signed,
// submitted once and awaited until the receipt is known. A write is never
// resubmitted: the contract has no idempotency key, so a retry would create
// a duplicate entity.
package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/electronshop/shopkeeper/internal/logging"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	ethereum "github.com/ethereum/go-ethereum"
)

// Backend is the subset of *ethclient.Client the ledger client uses.
type Backend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	Close()
}

// Recorder receives one observation per ledger call.
type Recorder interface {
	ObserveLedgerCall(method, kind, outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLedgerCall(string, string, string, time.Duration) {}

// Config holds connection and account settings.
type Config struct {
	RPCURL          string
	PrivateKey      string
	ContractAddress string

	// GasLimit is attached to every submitted write.
	GasLimit uint64
	// ConfirmationTimeout bounds the wait for a receipt after submission.
	ConfirmationTimeout time.Duration
	// ReadBarrierTimeout bounds how long a read waits for the endpoint to
	// catch up with the last write confirmed by this process.
	ReadBarrierTimeout time.Duration
	// PollInterval is the receipt and head polling period. Defaults to 1s.
	PollInterval time.Duration
}

// Client talks to one contract with one signing identity. It is safe for
// concurrent use.
type Client struct {
	backend  Backend
	abi      abi.ABI
	contract common.Address
	key      *ecdsa.PrivateKey
	from     common.Address
	chainID  *big.Int
	cfg      Config
	logger   logging.Logger
	recorder Recorder

	// sendMu serializes nonce assignment and submission.
	sendMu sync.Mutex
	// confirmed is the highest block holding a write confirmed by this client.
	confirmed atomic.Uint64
}

var dialContext = func(ctx context.Context, url string) (Backend, error) {
	return ethclient.DialContext(ctx, url)
}

// Dial connects to cfg.RPCURL and returns a verified Client.
func Dial(ctx context.Context, cfg Config, parsed abi.ABI, logger logging.Logger, recorder Recorder) (*Client, error) {
	if strings.TrimSpace(cfg.RPCURL) == "" {
		return nil, errors.New("ledger rpc url is empty")
	}
	backend, err := dialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.RPCURL, err)
	}
	c, err := New(ctx, backend, cfg, parsed, logger, recorder)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return c, nil
}

// New verifies the account and contract configuration against backend.
// Any failure here is fatal for the process.
func New(ctx context.Context, backend Backend, cfg Config, parsed abi.ABI, logger logging.Logger, recorder Recorder) (*Client, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(cfg.PrivateKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.ContractAddress)
	}
	if err := checkMenu(parsed); err != nil {
		return nil, err
	}
	if cfg.GasLimit == 0 {
		return nil, errors.New("gas limit must be positive")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}

	contract := common.HexToAddress(cfg.ContractAddress)

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read chain id: %w", err)
	}
	code, err := backend.CodeAt(ctx, contract, nil)
	if err != nil {
		return nil, fmt.Errorf("read contract code: %w", err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("no contract deployed at %s", contract.Hex())
	}

	c := &Client{
		backend:  backend,
		abi:      parsed,
		contract: contract,
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		chainID:  chainID,
		cfg:      cfg,
		logger:   logger.With("module", "ledger"),
		recorder: recorder,
	}

	c.logger.Info(ctx, "ledger client ready",
		"contract", contract.Hex(),
		"account", c.from.Hex(),
		"chain_id", chainID.String(),
	)
	return c, nil
}

// Account is the signing address.
func (c *Client) Account() common.Address { return c.from }

// Head returns the latest block number of the endpoint. It doubles as the
// readiness probe.
func (c *Client) Head(ctx context.Context) (uint64, error) {
	return c.backend.BlockNumber(ctx)
}

// ConfirmedPosition is the highest block this client has seen a write
// confirmed in.
func (c *Client) ConfirmedPosition() uint64 { return c.confirmed.Load() }

func (c *Client) Close() {
	c.backend.Close()
}

func (c *Client) observe(method, kind string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = outcomeOf(err)
	}
	c.recorder.ObserveLedgerCall(method, kind, outcome, time.Since(start))
}

func (c *Client) raiseBarrier(block uint64) {
	for {
		cur := c.confirmed.Load()
		if block <= cur || c.confirmed.CompareAndSwap(cur, block) {
			return
		}
	}
}

package ledger

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/electronshop/shopkeeper/internal/server/models"
	"github.com/ethereum/go-ethereum/core/types"

	ethereum "github.com/ethereum/go-ethereum"
)

// ErrReverted is wrapped by read errors caused by the contract reverting
// the call, as opposed to the endpoint being unreachable.
var ErrReverted = errors.New("execution reverted")

const (
	kindRead  = "read"
	kindWrite = "write"
)

func isTransportError(err error) bool {
	var ne net.Error
	return errors.As(err, &ne)
}

func outcomeOf(err error) string {
	switch common.KindOf(err) {
	case common.KindWriteRejected:
		return "rejected"
	case common.KindConfirmationTimeout:
		return "timeout"
	case common.KindLedgerUnavailable:
		return "unavailable"
	default:
		return "failed"
	}
}

// transact runs one write: estimate, sign, submit once, await the receipt.
func (c *Client) transact(ctx context.Context, method string, args ...any) (_ models.Confirmation, err error) {
	start := time.Now()
	defer func() { c.observe(method, kindWrite, start, err) }()

	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return models.Confirmation{}, common.OperationFailed("encode "+method, err)
	}

	msg := ethereum.CallMsg{From: c.from, To: &c.contract, Data: data}
	estimated, err := c.backend.EstimateGas(ctx, msg)
	if err != nil {
		if isTransportError(err) || ctx.Err() != nil {
			return models.Confirmation{}, common.LedgerUnavailable(err)
		}
		c.logger.Warn(ctx, "gas estimation failed", "method", method, "error", err)
		return models.Confirmation{}, common.WriteRejected(method, err)
	}

	tx, err := c.submit(ctx, data)
	if err != nil {
		return models.Confirmation{}, err
	}
	handle := tx.Hash().Hex()

	c.logger.Info(ctx, "transaction submitted",
		"method", method,
		"estimated_gas", estimated,
		"tx", handle,
	)

	receipt, err := c.waitMined(ctx, tx)
	if err != nil {
		return models.Confirmation{}, err
	}

	block := receipt.BlockNumber.Uint64()
	if receipt.Status != types.ReceiptStatusSuccessful {
		c.logger.Error(ctx, "transaction reverted", "method", method, "tx", handle, "block", block)
		return models.Confirmation{}, common.OperationFailed("transaction reverted", fmt.Errorf("%s in block %d", handle, block))
	}

	c.raiseBarrier(block)
	c.logger.Info(ctx, "transaction confirmed", "method", method, "tx", handle, "block", block)

	return models.Confirmation{Confirmed: true, Position: block, HandleID: handle}, nil
}

func (c *Client) submit(ctx context.Context, data []byte) (*types.Transaction, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	nonce, err := c.backend.PendingNonceAt(ctx, c.from)
	if err != nil {
		return nil, common.LedgerUnavailable(fmt.Errorf("nonce: %w", err))
	}
	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, common.LedgerUnavailable(fmt.Errorf("gas price: %w", err))
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      c.cfg.GasLimit,
		To:       &c.contract,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return nil, common.OperationFailed("sign transaction", err)
	}

	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		if isTransportError(err) {
			return nil, common.LedgerUnavailable(err)
		}
		return nil, common.OperationFailed("submission failed", err)
	}
	return signed, nil
}

// waitMined polls for the receipt until it appears or the confirmation
// timeout expires. Receipt lookup errors are logged and polling continues.
func (c *Client) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ConfirmationTimeout)
	defer cancel()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	handle := tx.Hash().Hex()
	for {
		receipt, err := c.backend.TransactionReceipt(ctx, tx.Hash())
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) && ctx.Err() == nil {
			c.logger.Debug(ctx, "receipt retrieval failed", "tx", handle, "error", err)
		}

		select {
		case <-ctx.Done():
			return nil, common.ConfirmationTimeout(handle, ctx.Err())
		case <-ticker.C:
		}
	}
}

// call runs a read against the latest state after the read barrier.
func (c *Client) call(ctx context.Context, method string, args ...any) (_ []any, err error) {
	start := time.Now()
	defer func() { c.observe(method, kindRead, start, err) }()

	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, common.OperationFailed("encode "+method, err)
	}

	c.awaitBarrier(ctx)

	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{From: c.from, To: &c.contract, Data: data}, nil)
	if err != nil {
		if isTransportError(err) || ctx.Err() != nil {
			return nil, common.LedgerUnavailable(err)
		}
		return nil, common.OperationFailed(method+" failed", fmt.Errorf("%w: %v", ErrReverted, err))
	}

	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, common.OperationFailed("decode "+method, err)
	}
	return values, nil
}

// awaitBarrier waits until the endpoint head reaches the highest position
// confirmed by this client. Stalling is not an error: the read proceeds.
func (c *Client) awaitBarrier(ctx context.Context) {
	target := c.confirmed.Load()
	if target == 0 || c.cfg.ReadBarrierTimeout <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ReadBarrierTimeout)
	defer cancel()

	for {
		head, err := c.backend.BlockNumber(ctx)
		if err == nil && head >= target {
			return
		}
		select {
		case <-ctx.Done():
			c.logger.Warn(ctx, "read barrier not reached", "target", target, "head", head)
			return
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

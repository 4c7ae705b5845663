package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/blockful/anticapture-sub000/internal/adapter"
	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/governor"
	"github.com/blockful/anticapture-sub000/internal/logger"
)

const (
	// initialLogStep is the widest block range asked of eth_getLogs at once
	initialLogStep = uint64(100_000)

	// maxCachedHeaders bounds the block timestamp cache used while parsing logs
	maxCachedHeaders = 1024
)

// EthereumClient is the chain surface of one EVM network.
// It satisfies governor.ChainReader.
//
//go:generate mockgen -source=client.go -destination=../../mocks/ethereum_client.go -package=mocks -mock_names=EthereumClient=MockEthereumClient
type EthereumClient interface {
	governor.ChainReader

	// ParseEventLog parses a log into a governance event of dao
	ParseEventLog(ctx context.Context, dao domain.DaoID, vLog types.Log) (*domain.GovernanceEvent, error)

	// FilterLogs returns the logs matching query, splitting the block range as the node requires
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)

	// SubscribeFilterLogs subscribes to new logs matching query
	SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)

	// Close closes the connection
	Close()
}

// RetryConfig bounds the retries of read calls
type RetryConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

type ethereumClient struct {
	chainID domain.Chain
	client  adapter.EthClient
	retry   RetryConfig

	mu      sync.Mutex
	headers map[uint64]uint64
}

// NewClient creates a new client over an RPC connection
func NewClient(chainID domain.Chain, client adapter.EthClient, retry RetryConfig) EthereumClient {
	return &ethereumClient{
		chainID: chainID,
		client:  client,
		retry:   retry,
		headers: make(map[uint64]uint64),
	}
}

// withRetry runs a read with exponential backoff, giving up on NotFound and context errors
func (c *ethereumClient) withRetry(ctx context.Context, name string, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	if c.retry.InitialInterval > 0 {
		b.InitialInterval = c.retry.InitialInterval
	}
	if c.retry.MaxInterval > 0 {
		b.MaxInterval = c.retry.MaxInterval
	}
	if c.retry.MaxElapsedTime > 0 {
		b.MaxElapsedTime = c.retry.MaxElapsedTime
	}

	op := func() error {
		err := operation()
		if err == nil {
			return nil
		}
		if errors.Is(err, ethereum.NotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		return err
	}

	var attempt int
	notify := func(err error, next time.Duration) {
		attempt++
		logger.WarnCtx(ctx, "RPC call failed, retrying",
			zap.String("call", name),
			zap.String("chain", string(c.chainID)),
			zap.Int("attempt", attempt),
			zap.Duration("next_retry_in", next),
			zap.Error(err))
	}

	return backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify)
}

// GetBlockNumber returns the current chain height
func (c *ethereumClient) GetBlockNumber(ctx context.Context) (uint64, error) {
	var number uint64
	err := c.withRetry(ctx, "eth_blockNumber", func() error {
		var err error
		number, err = c.client.BlockNumber(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get block number: %w", err)
	}
	return number, nil
}

// GetBlockByNumber returns a block header, nil when the node does not know the block
func (c *ethereumClient) GetBlockByNumber(ctx context.Context, number uint64) (*types.Header, error) {
	var header *types.Header
	err := c.withRetry(ctx, "eth_getBlockByNumber", func() error {
		var err error
		header, err = c.client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
		return err
	})
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get block %d: %w", number, err)
	}
	return header, nil
}

// ReadContract calls a view function on address and returns its unpacked outputs
func (c *ethereumClient) ReadContract(ctx context.Context, contractABI *abi.ABI, address string, method string, args ...interface{}) ([]interface{}, error) {
	if contractABI == nil {
		return nil, fmt.Errorf("missing ABI for %s", method)
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid contract address %q", address)
	}

	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	to := common.HexToAddress(address)
	var result []byte
	err = c.withRetry(ctx, method, func() error {
		var err error
		result, err = c.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call %s on %s: %w", method, address, err)
	}

	outputs, err := contractABI.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	return outputs, nil
}

// ParseEventLog parses a governance log and stamps it with its block time
func (c *ethereumClient) ParseEventLog(ctx context.Context, dao domain.DaoID, vLog types.Log) (*domain.GovernanceEvent, error) {
	event := &domain.GovernanceEvent{
		DaoID:           dao,
		Chain:           c.chainID,
		ContractAddress: vLog.Address.Hex(),
		TxHash:          vLog.TxHash.Hex(),
		LogIndex:        vLog.Index,
		BlockNumber:     vLog.BlockNumber,
	}
	if err := decodeLog(vLog, event); err != nil {
		return nil, err
	}

	timestamp, err := c.blockTimestamp(ctx, vLog.BlockNumber)
	if err != nil {
		return nil, err
	}
	event.Timestamp = time.Unix(int64(timestamp), 0).UTC() //nolint:gosec,G115 // block times fit in int64

	return event, nil
}

func (c *ethereumClient) blockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	c.mu.Lock()
	ts, ok := c.headers[number]
	c.mu.Unlock()
	if ok {
		return ts, nil
	}

	header, err := c.GetBlockByNumber(ctx, number)
	if err != nil {
		return 0, err
	}
	if header == nil {
		return 0, fmt.Errorf("block %d not found", number)
	}

	c.mu.Lock()
	if len(c.headers) >= maxCachedHeaders {
		c.headers = make(map[uint64]uint64)
	}
	c.headers[number] = header.Time
	c.mu.Unlock()

	return header.Time, nil
}

// FilterLogs walks [FromBlock, ToBlock] in steps, halving the step when the node refuses the range
func (c *ethereumClient) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	if query.BlockHash != nil {
		return c.client.FilterLogs(ctx, query)
	}

	from := uint64(0)
	if query.FromBlock != nil {
		from = query.FromBlock.Uint64()
	}

	var to uint64
	if query.ToBlock != nil {
		to = query.ToBlock.Uint64()
	} else {
		head, err := c.GetBlockNumber(ctx)
		if err != nil {
			return nil, err
		}
		to = head
	}

	var all []types.Log
	step := initialLogStep
	for current := from; current <= to; {
		end := current + step - 1
		if end > to {
			end = to
		}

		rangeQuery := query
		rangeQuery.FromBlock = new(big.Int).SetUint64(current)
		rangeQuery.ToBlock = new(big.Int).SetUint64(end)

		logs, err := c.client.FilterLogs(ctx, rangeQuery)
		if err != nil {
			if !isTooManyResultsError(err) || step == 1 {
				return nil, fmt.Errorf("failed to get logs for range %d-%d: %w", current, end, err)
			}
			step /= 2
			logger.WarnCtx(ctx, "Too many results, reducing step size",
				zap.Uint64("newStepSize", step),
				zap.Uint64("fromBlock", current),
				zap.Uint64("toBlock", end))
			continue
		}

		all = append(all, logs...)
		current = end + 1
	}

	return all, nil
}

// isTooManyResultsError checks if the node rejected a range as too large
func isTooManyResultsError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	return strings.Contains(msg, "query returned more than 10000 results") ||
		strings.Contains(msg, "query timeout exceeded") ||
		strings.Contains(msg, "too many results") ||
		strings.Contains(msg, "exceeded maximum") ||
		strings.Contains(msg, "block range")
}

// SubscribeFilterLogs subscribes to new logs matching query
func (c *ethereumClient) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return c.client.SubscribeFilterLogs(ctx, query, ch)
}

// Close closes the connection
func (c *ethereumClient) Close() {
	c.client.Close()
}

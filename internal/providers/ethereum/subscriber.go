package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/logger"
	"github.com/blockful/anticapture-sub000/internal/messaging"
)

const defaultBackfillWindow = uint64(50_000)

// Config holds the contracts of one DAO
type Config struct {
	DAO             domain.DaoID
	TokenAddress    string
	GovernorAddress string
	// BackfillWindow is the block range fetched per backfill round
	BackfillWindow uint64
}

type ethSubscriber struct {
	client   EthereumClient
	config   Config
	token    common.Address
	governor common.Address

	// position of the last handled log
	lastBlock uint64
	lastIndex uint
	started   bool
}

// NewSubscriber creates a subscriber delivering the governance events of one DAO
// in (block number, log index) order
func NewSubscriber(cfg Config, client EthereumClient) (messaging.Subscriber, error) {
	if !common.IsHexAddress(cfg.TokenAddress) {
		return nil, fmt.Errorf("invalid token address %q for %s", cfg.TokenAddress, cfg.DAO)
	}
	if cfg.GovernorAddress != "" && !common.IsHexAddress(cfg.GovernorAddress) {
		return nil, fmt.Errorf("invalid governor address %q for %s", cfg.GovernorAddress, cfg.DAO)
	}
	if cfg.BackfillWindow == 0 {
		cfg.BackfillWindow = defaultBackfillWindow
	}

	s := &ethSubscriber{
		client: client,
		config: cfg,
		token:  common.HexToAddress(cfg.TokenAddress),
	}
	if cfg.GovernorAddress != "" {
		s.governor = common.HexToAddress(cfg.GovernorAddress)
	}
	return s, nil
}

func (s *ethSubscriber) query(from, to *big.Int) ethereum.FilterQuery {
	addresses := []common.Address{s.token}
	signatures := append([]common.Hash{}, tokenEventSignatures...)
	if s.governor != (common.Address{}) {
		addresses = append(addresses, s.governor)
		signatures = append(signatures, governorEventSignatures...)
	}
	return ethereum.FilterQuery{
		FromBlock: from,
		ToBlock:   to,
		Addresses: addresses,
		Topics:    [][]common.Hash{signatures},
	}
}

// SubscribeEvents backfills from fromBlock to the chain head, then follows new blocks
func (s *ethSubscriber) SubscribeEvents(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
	head, err := s.backfill(ctx, fromBlock, handler)
	if err != nil {
		return err
	}

	logs := make(chan types.Log, 1024)
	sub, err := s.client.SubscribeFilterLogs(ctx, s.query(nil, nil), logs)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSubscriptionFailed, err)
	}
	defer func() {
		logger.InfoCtx(ctx, "Unsubscribing from governance logs", logger.DAO(s.config.DAO))
		sub.Unsubscribe()
	}()

	// close the gap between the end of the backfill and the subscription
	if _, err := s.backfill(ctx, head+1, handler); err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Following new blocks", logger.DAO(s.config.DAO), zap.Uint64("fromBlock", s.lastBlock))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return fmt.Errorf("subscription error: %w", err)
		case vLog := <-logs:
			if vLog.Removed {
				// reorgs are not handled
				logger.WarnCtx(ctx, "Ignoring removed log",
					logger.DAO(s.config.DAO),
					zap.String("txHash", vLog.TxHash.Hex()),
					zap.Uint64("block", vLog.BlockNumber))
				continue
			}
			if err := s.handle(ctx, vLog, handler); err != nil {
				return err
			}
		}
	}
}

// backfill delivers logs from fromBlock up to the chain head and returns the head it reached
func (s *ethSubscriber) backfill(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) (uint64, error) {
	head, err := s.client.GetBlockNumber(ctx)
	if err != nil {
		return 0, err
	}

	for from := fromBlock; from <= head; {
		to := from + s.config.BackfillWindow - 1
		if to > head {
			to = head
		}

		logs, err := s.client.FilterLogs(ctx, s.query(new(big.Int).SetUint64(from), new(big.Int).SetUint64(to)))
		if err != nil {
			return 0, fmt.Errorf("failed to backfill blocks %d-%d: %w", from, to, err)
		}
		SortLogs(logs)

		for _, vLog := range logs {
			if err := s.handle(ctx, vLog, handler); err != nil {
				return 0, err
			}
		}

		logger.DebugCtx(ctx, "Backfilled blocks",
			logger.DAO(s.config.DAO),
			zap.Uint64("fromBlock", from),
			zap.Uint64("toBlock", to),
			zap.Int("logs", len(logs)))

		from = to + 1
	}

	return head, nil
}

func (s *ethSubscriber) handle(ctx context.Context, vLog types.Log, handler messaging.EventHandler) error {
	if s.seen(vLog) || !s.accepts(vLog) {
		return nil
	}

	event, err := s.client.ParseEventLog(ctx, s.config.DAO, vLog)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedEvent) || errors.Is(err, domain.ErrInvalidEvent) {
			logger.WarnCtx(ctx, "Skipping unparseable log",
				logger.DAO(s.config.DAO),
				zap.String("txHash", vLog.TxHash.Hex()),
				zap.Uint("logIndex", vLog.Index),
				zap.Error(err))
			s.advance(vLog)
			return nil
		}
		return fmt.Errorf("failed to parse log %s-%d: %w", vLog.TxHash.Hex(), vLog.Index, err)
	}

	if err := handler(event); err != nil {
		return fmt.Errorf("failed to handle event %s: %w", event.ID(), err)
	}
	s.advance(vLog)
	return nil
}

// accepts keeps token events from the token and governor events from the governor
func (s *ethSubscriber) accepts(vLog types.Log) bool {
	if len(vLog.Topics) == 0 {
		return false
	}
	switch vLog.Address {
	case s.token:
		return containsHash(tokenEventSignatures, vLog.Topics[0])
	case s.governor:
		return containsHash(governorEventSignatures, vLog.Topics[0])
	}
	return false
}

func (s *ethSubscriber) seen(vLog types.Log) bool {
	if !s.started {
		return false
	}
	return vLog.BlockNumber < s.lastBlock || (vLog.BlockNumber == s.lastBlock && vLog.Index <= s.lastIndex)
}

func (s *ethSubscriber) advance(vLog types.Log) {
	s.started = true
	s.lastBlock = vLog.BlockNumber
	s.lastIndex = vLog.Index
}

// GetLatestBlock returns the latest block number
func (s *ethSubscriber) GetLatestBlock(ctx context.Context) (uint64, error) {
	return s.client.GetBlockNumber(ctx)
}

// Close closes the connection
func (s *ethSubscriber) Close() {
	if s.client == nil {
		return
	}

	s.client.Close()
	logger.Info("Ethereum connection closed", logger.DAO(s.config.DAO))
}

// SortLogs orders logs by (block number, log index)
func SortLogs(logs []types.Log) {
	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})
}

func containsHash(hashes []common.Hash, h common.Hash) bool {
	for _, candidate := range hashes {
		if candidate == h {
			return true
		}
	}
	return false
}

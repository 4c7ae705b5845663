package block

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/blockful/anticapture-sub000/internal/adapter"
	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/governor"
	"github.com/blockful/anticapture-sub000/internal/logger"
)

// Head is a cached chain height
type Head struct {
	Number    uint64
	FetchedAt time.Time
}

type cachedTime struct {
	timestamp time.Time
	cachedAt  time.Time
}

// BlockProvider serves the chain head and block times of one DAO's chain.
// Proposal status readers call it on every read, so answers are cached.
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=BlockProvider=MockBlockProvider,BlockFetcher=MockBlockFetcher,Registry=MockBlockRegistry
type BlockProvider interface {
	// GetLatestBlock returns the chain height, possibly from cache
	GetLatestBlock(ctx context.Context) (uint64, error)

	// GetBlockTime returns the timestamp of a block, nil when the chain does not know it yet
	GetBlockTime(ctx context.Context, blockNumber uint64) (*time.Time, error)
}

// BlockFetcher reads the chain directly. governor.Governor satisfies it.
type BlockFetcher interface {
	GetCurrentBlockNumber(ctx context.Context) (uint64, error)
	GetBlockTime(ctx context.Context, blockNumber uint64) (*time.Time, error)
}

// Registry hands out the provider of a DAO
type Registry interface {
	Provider(dao domain.DaoID) (BlockProvider, error)
}

// Config holds the cache settings of a BlockProvider
type Config struct {
	// TTL is how long a chain head is served from cache
	TTL time.Duration

	// StaleWindow is how long an expired head may still be served when the chain read fails
	StaleWindow time.Duration

	// BlockTimeTTL bounds how long a block time stays cached, 0 keeps it forever
	BlockTimeTTL time.Duration
}

type blockProvider struct {
	dao     domain.DaoID
	fetcher BlockFetcher
	config  Config
	clock   adapter.Clock

	mu         sync.RWMutex
	head       *Head
	blockTimes map[uint64]cachedTime
}

// NewBlockProvider creates a caching provider in front of fetcher
func NewBlockProvider(dao domain.DaoID, fetcher BlockFetcher, config Config, clock adapter.Clock) BlockProvider {
	return &blockProvider{
		dao:        dao,
		fetcher:    fetcher,
		config:     config,
		clock:      clock,
		blockTimes: make(map[uint64]cachedTime),
	}
}

func (p *blockProvider) GetLatestBlock(ctx context.Context) (uint64, error) {
	p.mu.RLock()
	head := p.head
	p.mu.RUnlock()

	now := p.clock.Now()
	if head != nil && now.Sub(head.FetchedAt) < p.config.TTL {
		return head.Number, nil
	}

	number, err := p.fetcher.GetCurrentBlockNumber(ctx)
	if err != nil {
		if head != nil && now.Sub(head.FetchedAt) < p.config.StaleWindow {
			logger.WarnCtx(ctx, "Serving stale chain head",
				logger.DAO(p.dao),
				zap.Uint64("blockNumber", head.Number),
				zap.Error(err))
			return head.Number, nil
		}
		return 0, fmt.Errorf("failed to get chain head of %s: %w", p.dao, err)
	}

	p.mu.Lock()
	// a slower concurrent read must not move the head backwards
	if p.head == nil || number >= p.head.Number {
		p.head = &Head{Number: number, FetchedAt: now}
	}
	p.mu.Unlock()

	return number, nil
}

func (p *blockProvider) GetBlockTime(ctx context.Context, blockNumber uint64) (*time.Time, error) {
	p.mu.RLock()
	cached, ok := p.blockTimes[blockNumber]
	p.mu.RUnlock()

	now := p.clock.Now()
	if ok && (p.config.BlockTimeTTL == 0 || now.Sub(cached.cachedAt) < p.config.BlockTimeTTL) {
		ts := cached.timestamp
		return &ts, nil
	}

	ts, err := p.fetcher.GetBlockTime(ctx, blockNumber)
	if err != nil {
		if ok && now.Sub(cached.cachedAt) < p.config.StaleWindow {
			stale := cached.timestamp
			return &stale, nil
		}
		return nil, fmt.Errorf("failed to get time of block %d: %w", blockNumber, err)
	}
	if ts == nil {
		// not mined yet, ask again next time
		return nil, nil
	}

	p.mu.Lock()
	p.blockTimes[blockNumber] = cachedTime{timestamp: *ts, cachedAt: now}
	p.mu.Unlock()

	logger.DebugCtx(ctx, "Cached block time",
		logger.DAO(p.dao),
		zap.Uint64("blockNumber", blockNumber),
		zap.Time("timestamp", *ts))

	return ts, nil
}

type registry struct {
	resolver governor.Resolver
	config   Config
	clock    adapter.Clock

	mu        sync.Mutex
	providers map[domain.DaoID]BlockProvider
}

// NewRegistry creates a registry that builds one provider per DAO on first use,
// reading the chain through the DAO's governor
func NewRegistry(resolver governor.Resolver, config Config, clock adapter.Clock) Registry {
	return &registry{
		resolver:  resolver,
		config:    config,
		clock:     clock,
		providers: make(map[domain.DaoID]BlockProvider),
	}
}

func (r *registry) Provider(dao domain.DaoID) (BlockProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.providers[dao]; ok {
		return p, nil
	}

	gov, err := r.resolver.Governor(dao)
	if err != nil {
		return nil, err
	}
	p := NewBlockProvider(dao, gov, r.config, r.clock)
	r.providers[dao] = p
	return p, nil
}

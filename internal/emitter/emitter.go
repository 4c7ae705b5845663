package emitter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/blockful/anticapture-sub000/internal/adapter"
	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/logger"
	"github.com/blockful/anticapture-sub000/internal/messaging"
	"github.com/blockful/anticapture-sub000/internal/metrics"
	"github.com/blockful/anticapture-sub000/internal/store"
)

// Config holds the configuration for the event emitter of one DAO
type Config struct {
	DAO             domain.DaoID
	StartBlock      uint64
	CursorSaveFreq  uint64        // Save cursor every N blocks
	CursorSaveDelay time.Duration // Or save cursor every N seconds
}

// Emitter defines the interface for the event emitter
//
//go:generate mockgen -source=emitter.go -destination=../mocks/emitter.go -package=mocks -mock_names=Emitter=MockEmitter
type Emitter interface {
	// Run publishes the DAO's events until ctx ends or delivery fails
	Run(ctx context.Context) error
	// Close closes the emitter and cleans up resources
	Close()
}

type emitter struct {
	subscriber messaging.Subscriber
	publisher  messaging.Publisher
	cursors    store.CursorStore
	config     Config
	clock      adapter.Clock
}

// NewEmitter creates a new event emitter
func NewEmitter(
	sub messaging.Subscriber,
	pub messaging.Publisher,
	cursors store.CursorStore,
	cfg Config,
	clock adapter.Clock,
) Emitter {
	return &emitter{
		subscriber: sub,
		publisher:  pub,
		cursors:    cursors,
		config:     cfg,
		clock:      clock,
	}
}

// startBlock picks the configured block, else the saved cursor, else the chain head.
// A saved cursor block is read again since it may have been only partly published;
// the stream deduplicates the repeats.
func (e *emitter) startBlock(ctx context.Context) (uint64, error) {
	dao := e.config.DAO

	lastBlock, err := e.cursors.GetBlockCursor(ctx, dao)
	if err != nil {
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}

	if lastBlock > 0 && lastBlock >= e.config.StartBlock {
		logger.InfoCtx(ctx, "Resuming from last processed block", logger.DAO(dao), zap.Uint64("block", lastBlock))
		return lastBlock, nil
	}

	if e.config.StartBlock > 0 {
		logger.InfoCtx(ctx, "Starting from configured block", logger.DAO(dao), zap.Uint64("block", e.config.StartBlock))
		return e.config.StartBlock, nil
	}

	latestBlock, err := e.subscriber.GetLatestBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block number: %w", err)
	}
	logger.InfoCtx(ctx, "Starting from latest block", logger.DAO(dao), zap.Uint64("block", latestBlock))
	return latestBlock, nil
}

func (e *emitter) Run(ctx context.Context) error {
	dao := e.config.DAO

	startBlock, err := e.startBlock(ctx)
	if err != nil {
		return err
	}

	lastSavedBlock := startBlock
	lastSaveTime := e.clock.Now()

	handler := func(event *domain.GovernanceEvent) error {
		if err := e.publisher.PublishEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to publish event %s: %w", event.ID(), err)
		}
		metrics.EventsEmitted.WithLabelValues(dao.String(), string(event.EventType)).Inc()
		metrics.LastBlock.WithLabelValues(dao.String(), metrics.StageEmitter).Set(float64(event.BlockNumber))

		shouldSave := event.BlockNumber-lastSavedBlock >= e.config.CursorSaveFreq ||
			e.clock.Since(lastSaveTime) >= e.config.CursorSaveDelay
		if shouldSave && event.BlockNumber > lastSavedBlock {
			if err := e.cursors.SetBlockCursor(ctx, dao, event.BlockNumber); err != nil {
				// the cursor only bounds replay after a restart
				logger.WarnCtx(ctx, "Failed to save block cursor", logger.DAO(dao), zap.Error(err))
			} else {
				lastSavedBlock = event.BlockNumber
				lastSaveTime = e.clock.Now()
			}
		}

		return nil
	}

	logger.InfoCtx(ctx, "Starting event subscription", logger.DAO(dao), zap.Uint64("fromBlock", startBlock))
	return e.subscriber.SubscribeEvents(ctx, startBlock, handler)
}

func (e *emitter) Close() {
	e.subscriber.Close()
	e.publisher.Close()
}

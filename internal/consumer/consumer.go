package consumer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alitto/pond/v2"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/blockful/anticapture-sub000/internal/adapter"
	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/logger"
	"github.com/blockful/anticapture-sub000/internal/providers/jetstream"
)

// Config holds the configuration for the event consumer
type Config struct {
	JetStream      jetstream.Config
	ConsumerPrefix string
	AckWaitTimeout time.Duration
	MaxDeliver     int
	DAOs           []domain.DaoID
}

// Applier applies one governance event to the aggregates
//
//go:generate mockgen -source=consumer.go -destination=../mocks/consumer.go -package=mocks -mock_names=Applier=MockApplier,Consumer=MockConsumer
type Applier interface {
	Apply(ctx context.Context, event *domain.GovernanceEvent) error
}

// Consumer feeds the events of the stream to the aggregation engine
type Consumer interface {
	// Run consumes every configured DAO until ctx ends or a DAO consumer fails
	Run(ctx context.Context) error
	// Close closes the NATS connection
	Close()
}

type consumer struct {
	nc      adapter.NatsConn
	js      adapter.JetStream
	applier Applier
	json    adapter.JSON
	config  Config
}

// NewConsumer connects to NATS and makes sure the stream exists
func NewConsumer(
	ctx context.Context,
	cfg Config,
	natsJS adapter.NatsJetStream,
	applier Applier,
	jsonAdapter adapter.JSON,
) (Consumer, error) {
	if len(cfg.DAOs) == 0 {
		return nil, fmt.Errorf("no dao to consume")
	}

	nc, js, err := natsJS.Connect(cfg.JetStream.URL, jetstream.ConnectionOptions(cfg.JetStream)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	if err := jetstream.EnsureStream(ctx, js, cfg.JetStream); err != nil {
		nc.Close()
		return nil, err
	}

	return &consumer{
		nc:      nc,
		js:      js,
		applier: applier,
		json:    jsonAdapter,
		config:  cfg,
	}, nil
}

// ConsumerName returns the durable consumer name of a DAO
func ConsumerName(prefix string, dao domain.DaoID) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ToLower(dao.String()))
}

func (c *consumer) Run(ctx context.Context) error {
	logger.InfoCtx(ctx, "Starting event consumer",
		zap.String("stream", c.config.JetStream.StreamName),
		zap.Int("daos", len(c.config.DAOs)))

	// one worker per DAO: events of a DAO are applied strictly one after another
	pool := pond.NewPool(len(c.config.DAOs), pond.WithContext(ctx))
	defer pool.StopAndWait()

	tasks := make([]pond.Task, 0, len(c.config.DAOs))
	for _, dao := range c.config.DAOs {
		tasks = append(tasks, pool.SubmitErr(func() error {
			return c.consumeDAO(ctx, dao)
		}))
	}

	var errs []error
	for _, task := range tasks {
		if err := task.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// consumeDAO runs the ordered consumer of one DAO until ctx ends
func (c *consumer) consumeDAO(ctx context.Context, dao domain.DaoID) error {
	name := ConsumerName(c.config.ConsumerPrefix, dao)
	cons, err := c.js.CreateOrUpdateConsumer(ctx, c.config.JetStream.StreamName, natsjs.ConsumerConfig{
		Durable:       name,
		AckPolicy:     natsjs.AckExplicitPolicy,
		AckWait:       c.config.AckWaitTimeout,
		MaxDeliver:    c.config.MaxDeliver,
		MaxAckPending: 1,
		DeliverPolicy: natsjs.DeliverAllPolicy,
		FilterSubject: jetstream.DAOSubject(dao),
	})
	if err != nil {
		return fmt.Errorf("failed to create/update consumer %s: %w", name, err)
	}

	// the consume callback runs serially, so a message is settled before the next arrives
	cc, err := cons.Consume(func(msg adapter.Message) {
		c.handleMessage(ctx, dao, msg)
	}, natsjs.PullMaxMessages(1))
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", name, err)
	}
	defer cc.Stop()

	logger.InfoCtx(ctx, "Started consuming messages", logger.DAO(dao), zap.String("consumer", name))

	select {
	case <-ctx.Done():
		logger.InfoCtx(ctx, "Shutting down consumer", logger.DAO(dao))
		return nil
	case <-cc.Closed():
		return fmt.Errorf("consumer %s closed unexpectedly", name)
	}
}

// handleMessage applies one message and settles it.
// Events that can never apply are terminated; other failures are redelivered.
func (c *consumer) handleMessage(ctx context.Context, dao domain.DaoID, msg adapter.Message) {
	var delivered uint64
	if metadata, err := msg.Metadata(); err == nil && metadata != nil {
		delivered = metadata.NumDelivered
	}

	var event domain.GovernanceEvent
	if err := c.json.Unmarshal(msg.Data(), &event); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to unmarshal event"), zap.String("subject", msg.Subject()))
		settle(ctx, msg.Term, "terminate")
		return
	}

	logger.DebugCtx(ctx, "Received event",
		logger.DAO(dao),
		zap.String("eventType", string(event.EventType)),
		zap.String("id", event.ID()),
		zap.Uint64("block", event.BlockNumber),
		zap.Uint64("deliveryCount", delivered))

	if err := c.applier.Apply(ctx, &event); err != nil {
		if isTerminal(err) {
			logger.ErrorCtx(ctx, err, zap.String("message", "Dropping event that cannot be applied"), logger.DAO(dao), zap.String("id", event.ID()))
			settle(ctx, msg.Term, "terminate")
			return
		}
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to apply event"), logger.DAO(dao), zap.String("id", event.ID()))
		settle(ctx, msg.Nak, "NAK")
		return
	}

	settle(ctx, msg.Ack, "ACK")
}

func isTerminal(err error) bool {
	return errors.Is(err, domain.ErrInvalidEvent) ||
		errors.Is(err, domain.ErrUnsupportedEvent) ||
		errors.Is(err, domain.ErrUnknownDAO)
}

func settle(ctx context.Context, fn func() error, action string) {
	if err := fn(); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to "+action+" message"))
	}
}

func (c *consumer) Close() {
	if c.nc == nil {
		return
	}
	c.nc.Close()
}

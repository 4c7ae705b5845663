package jetstream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/blockful/anticapture-sub000/internal/adapter"
	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/logger"
	"github.com/blockful/anticapture-sub000/internal/messaging"
)

// SubjectPrefix is the root of every governance event subject
const SubjectPrefix = "governance"

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	// DuplicateWindow is how long JetStream remembers message ids for deduplication
	DuplicateWindow time.Duration
}

type publisher struct {
	nc         adapter.NatsConn
	js         adapter.JetStream
	streamName string
	json       adapter.JSON
}

// ConnectionOptions returns the NATS options shared by publishers and consumers
func ConnectionOptions(cfg Config) []nats.Option {
	return []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}
}

// EnsureStream creates the governance stream or updates its configuration
func EnsureStream(ctx context.Context, js adapter.JetStream, cfg Config) error {
	err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{SubjectPrefix + ".>"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		Duplicates: cfg.DuplicateWindow,
	})
	if err != nil {
		return fmt.Errorf("failed to create or update stream %s: %w", cfg.StreamName, err)
	}
	return nil
}

// NewPublisher creates a new NATS JetStream publisher
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	nc, js, err := natsJS.Connect(cfg.URL, ConnectionOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	if err := EnsureStream(ctx, js, cfg); err != nil {
		nc.Close()
		return nil, err
	}

	return &publisher{
		nc:         nc,
		js:         js,
		streamName: cfg.StreamName,
		json:       jsonAdapter,
	}, nil
}

// PublishEvent publishes a governance event to NATS JetStream
func (p *publisher) PublishEvent(ctx context.Context, event *domain.GovernanceEvent) error {
	data, err := p.json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := Subject(event.DaoID, event.EventType)
	ack, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(MessageID(event)))
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	if ack != nil && ack.Duplicate {
		logger.DebugCtx(ctx, "Event already published",
			logger.DAO(event.DaoID),
			zap.String("id", event.ID()))
	}

	return nil
}

// Subject builds the subject of an event: governance.{dao}.{event_type}
func Subject(dao domain.DaoID, eventType domain.EventType) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, strings.ToLower(dao.String()), eventType)
}

// DAOSubject matches every event of a DAO
func DAOSubject(dao domain.DaoID) string {
	return fmt.Sprintf("%s.%s.>", SubjectPrefix, strings.ToLower(dao.String()))
}

// MessageID is the deduplication id of an event
func MessageID(event *domain.GovernanceEvent) string {
	return fmt.Sprintf("%s:%s", event.DaoID, event.ID())
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}

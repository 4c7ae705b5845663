package messaging

import (
	"context"

	"github.com/blockful/anticapture-sub000/internal/domain"
)

// EventHandler is called for each governance event, in chain order
type EventHandler func(event *domain.GovernanceEvent) error

// Subscriber delivers the governance events of one DAO
//
//go:generate mockgen -source=subscriber.go -destination=../mocks/subscriber.go -package=mocks -mock_names=Subscriber=MockSubscriber
type Subscriber interface {
	// SubscribeEvents delivers events from fromBlock on and blocks until ctx ends or delivery fails.
	// A handler error stops the subscription.
	SubscribeEvents(ctx context.Context, fromBlock uint64, handler EventHandler) error

	// GetLatestBlock returns the latest block number
	GetLatestBlock(ctx context.Context) (uint64, error)

	// Close closes the connection and cleans up resources
	Close()
}

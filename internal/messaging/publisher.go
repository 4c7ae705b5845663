package messaging

import (
	"context"

	"github.com/blockful/anticapture-sub000/internal/domain"
)

// Publisher defines the interface for publishing events to message queue
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishEvent publishes a governance event; republishing the same event is deduplicated
	PublishEvent(ctx context.Context, event *domain.GovernanceEvent) error
	// Close closes the connection
	Close()
}

package domain

import "errors"

var (
	// ErrSubscriptionFailed is returned when subscription to events fails
	ErrSubscriptionFailed = errors.New("subscription failed")

	// ErrUnknownDAO is returned when a DAO has no governor variant or configuration
	ErrUnknownDAO = errors.New("unknown dao")

	// ErrProposalNotFound is returned when a proposal does not exist for the DAO
	ErrProposalNotFound = errors.New("proposal not found")

	// ErrUnsupportedEvent is returned for logs or events the engine does not handle
	ErrUnsupportedEvent = errors.New("unsupported event")

	// ErrInvalidEvent is returned when an event misses fields required by its type
	ErrInvalidEvent = errors.New("invalid event")

	// ErrInvalidFilter is returned when query filters cannot be parsed
	ErrInvalidFilter = errors.New("invalid filter")
)

package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/store/schema"
)

// Order is the sort direction of range queries
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// MetricsQueryFilter selects day buckets of a DAO
type MetricsQueryFilter struct {
	DaoID       domain.DaoID
	MetricTypes []domain.MetricType
	// StartDate and EndDate are inclusive; nil leaves the side open
	StartDate *time.Time
	EndDate   *time.Time
	Order     Order
	// Limit of 0 returns every matching bucket
	Limit int
}

// ProposalQueryFilter selects proposals of a DAO, newest first
type ProposalQueryFilter struct {
	DaoID  domain.DaoID
	Limit  int
	Offset int
}

// DailyBucketKey identifies a day bucket
type DailyBucketKey struct {
	Date       time.Time
	DaoID      domain.DaoID
	TokenID    string
	MetricType domain.MetricType
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	CursorStore

	// Transaction runs fn against a store bound to a single database transaction
	Transaction(ctx context.Context, fn func(Store) error) error

	// EnsureAccounts creates the accounts that do not exist yet
	EnsureAccounts(ctx context.Context, addresses ...string) error

	// CreateTransfer appends a transfer; false when the transfer was already recorded
	CreateTransfer(ctx context.Context, transfer *schema.Transfer) (bool, error)
	// AdjustAccountBalance adds delta to the balance of the account, creating it at delta
	AdjustAccountBalance(ctx context.Context, accountID string, tokenID string, delta decimal.Decimal) error
	// GetAccountBalance retrieves a balance, nil when the account never held the token
	GetAccountBalance(ctx context.Context, accountID string, tokenID string) (*schema.AccountBalance, error)

	// GetToken retrieves the supply aggregate of a token, nil when missing
	GetToken(ctx context.Context, dao domain.DaoID, tokenID string) (*schema.Token, error)
	// SaveToken creates or overwrites a supply aggregate
	SaveToken(ctx context.Context, token *schema.Token) error

	// GetAccountPower retrieves the power of an account, nil when missing
	GetAccountPower(ctx context.Context, dao domain.DaoID, accountID string) (*schema.AccountPower, error)
	// SaveAccountPower creates or overwrites the power of an account
	SaveAccountPower(ctx context.Context, power *schema.AccountPower) error
	// DeactivateInactiveVoters flips active voters whose last vote is before cutoff
	// and returns the sum of their voting power
	DeactivateInactiveVoters(ctx context.Context, dao domain.DaoID, cutoff time.Time) (decimal.Decimal, error)

	// CreateDelegation appends a delegation; false when it was already recorded
	CreateDelegation(ctx context.Context, delegation *schema.Delegation) (bool, error)
	// CreateVotingPowerHistory appends a voting power change; false when it was already recorded
	CreateVotingPowerHistory(ctx context.Context, history *schema.VotingPowerHistory) (bool, error)
	// CreateVote appends a vote; false when it was already recorded
	CreateVote(ctx context.Context, vote *schema.VoteOnchain) (bool, error)

	// CreateProposal inserts a proposal; false when it already exists
	CreateProposal(ctx context.Context, proposal *schema.ProposalOnchain) (bool, error)
	// GetProposal retrieves a proposal, nil when missing
	GetProposal(ctx context.Context, dao domain.DaoID, proposalID string) (*schema.ProposalOnchain, error)
	// GetProposals lists proposals and the total count matching the filter
	GetProposals(ctx context.Context, filter ProposalQueryFilter) ([]schema.ProposalOnchain, uint64, error)
	// UpdateProposalStatus sets the status of a proposal
	UpdateProposalStatus(ctx context.Context, dao domain.DaoID, proposalID string, status domain.ProposalStatus) error
	// AddProposalVotes adds weight to the tally matching support
	AddProposalVotes(ctx context.Context, dao domain.DaoID, proposalID string, support domain.VoteSupport, weight decimal.Decimal) error

	// GetDailyBucket retrieves a day bucket, nil when missing
	GetDailyBucket(ctx context.Context, key DailyBucketKey) (*schema.DaoMetricsDayBucket, error)
	// SaveDailyBucket creates or overwrites a day bucket
	SaveDailyBucket(ctx context.Context, bucket *schema.DaoMetricsDayBucket) error
	// GetDaoMetricsByDateRange lists day buckets ordered by date
	GetDaoMetricsByDateRange(ctx context.Context, filter MetricsQueryFilter) ([]schema.DaoMetricsDayBucket, error)
	// GetLastMetricValueBefore retrieves the latest bucket strictly before the given date, nil when none
	GetLastMetricValueBefore(ctx context.Context, dao domain.DaoID, metricType domain.MetricType, before time.Time) (*schema.DaoMetricsDayBucket, error)
}

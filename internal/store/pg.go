package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/store/schema"
)

type pgStore struct {
	CursorStore
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{
		CursorStore: NewCursorStore(db),
		db:          db,
	}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// If any of the pool settings are 0, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	maxIdleConns = min(maxIdleConns, maxOpenConns)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// Transaction runs fn against a store bound to a single database transaction
func (s *pgStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewPGStore(tx))
	})
}

// EnsureAccounts creates the accounts that do not exist yet
func (s *pgStore) EnsureAccounts(ctx context.Context, addresses ...string) error {
	seen := make(map[string]bool, len(addresses))
	accounts := make([]schema.Account, 0, len(addresses))
	for _, address := range addresses {
		if address == "" || seen[address] {
			continue
		}
		seen[address] = true
		accounts = append(accounts, schema.Account{ID: address})
	}
	if len(accounts) == 0 {
		return nil
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&accounts).Error; err != nil {
		return fmt.Errorf("failed to create accounts: %w", err)
	}

	return nil
}

// insertOnce inserts a row keyed by its primary key and reports whether it was new
func (s *pgStore) insertOnce(ctx context.Context, value interface{}, columns ...string) (bool, error) {
	conflict := make([]clause.Column, 0, len(columns))
	for _, c := range columns {
		conflict = append(conflict, clause.Column{Name: c})
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   conflict,
		DoNothing: true,
	}).Create(value)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// CreateTransfer appends a transfer
func (s *pgStore) CreateTransfer(ctx context.Context, transfer *schema.Transfer) (bool, error) {
	created, err := s.insertOnce(ctx, transfer, "id")
	if err != nil {
		return false, fmt.Errorf("failed to create transfer: %w", err)
	}
	return created, nil
}

// AdjustAccountBalance adds delta to the balance of the account
func (s *pgStore) AdjustAccountBalance(ctx context.Context, accountID string, tokenID string, delta decimal.Decimal) error {
	balance := schema.AccountBalance{
		AccountID: accountID,
		TokenID:   tokenID,
		Balance:   delta,
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}, {Name: "token_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance":    gorm.Expr("account_balances.balance + EXCLUDED.balance"),
			"updated_at": gorm.Expr("now()"),
		}),
	}).Create(&balance).Error; err != nil {
		return fmt.Errorf("failed to adjust account balance: %w", err)
	}

	return nil
}

// GetAccountBalance retrieves a balance
func (s *pgStore) GetAccountBalance(ctx context.Context, accountID string, tokenID string) (*schema.AccountBalance, error) {
	var balance schema.AccountBalance
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND token_id = ?", accountID, tokenID).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account balance: %w", err)
	}
	return &balance, nil
}

// GetToken retrieves the supply aggregate of a token
func (s *pgStore) GetToken(ctx context.Context, dao domain.DaoID, tokenID string) (*schema.Token, error) {
	var token schema.Token
	err := s.db.WithContext(ctx).Where("id = ? AND dao_id = ?", tokenID, dao).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &token, nil
}

// SaveToken creates or overwrites a supply aggregate
func (s *pgStore) SaveToken(ctx context.Context, token *schema.Token) error {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(token).Error; err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// GetAccountPower retrieves the power of an account
func (s *pgStore) GetAccountPower(ctx context.Context, dao domain.DaoID, accountID string) (*schema.AccountPower, error) {
	var power schema.AccountPower
	err := s.db.WithContext(ctx).Where("account_id = ? AND dao_id = ?", accountID, dao).First(&power).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account power: %w", err)
	}
	return &power, nil
}

// SaveAccountPower creates or overwrites the power of an account
func (s *pgStore) SaveAccountPower(ctx context.Context, power *schema.AccountPower) error {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(power).Error; err != nil {
		return fmt.Errorf("failed to save account power: %w", err)
	}
	return nil
}

// DeactivateInactiveVoters flips active voters whose last vote is before cutoff
func (s *pgStore) DeactivateInactiveVoters(ctx context.Context, dao domain.DaoID, cutoff time.Time) (decimal.Decimal, error) {
	removed := decimal.Zero
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var powers []schema.AccountPower
		if err := tx.
			Where("dao_id = ? AND active = ? AND last_vote_timestamp < ?", dao, true, cutoff).
			Find(&powers).Error; err != nil {
			return fmt.Errorf("failed to find inactive voters: %w", err)
		}
		if len(powers) == 0 {
			return nil
		}

		accountIDs := make([]string, 0, len(powers))
		for _, p := range powers {
			accountIDs = append(accountIDs, p.AccountID)
			removed = removed.Add(p.VotingPower)
		}

		if err := tx.Model(&schema.AccountPower{}).
			Where("dao_id = ? AND account_id IN ?", dao, accountIDs).
			Update("active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate voters: %w", err)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	return removed, nil
}

// CreateDelegation appends a delegation
func (s *pgStore) CreateDelegation(ctx context.Context, delegation *schema.Delegation) (bool, error) {
	created, err := s.insertOnce(ctx, delegation, "id")
	if err != nil {
		return false, fmt.Errorf("failed to create delegation: %w", err)
	}
	return created, nil
}

// CreateVotingPowerHistory appends a voting power change
func (s *pgStore) CreateVotingPowerHistory(ctx context.Context, history *schema.VotingPowerHistory) (bool, error) {
	created, err := s.insertOnce(ctx, history, "id")
	if err != nil {
		return false, fmt.Errorf("failed to create voting power history: %w", err)
	}
	return created, nil
}

// CreateVote appends a vote
func (s *pgStore) CreateVote(ctx context.Context, vote *schema.VoteOnchain) (bool, error) {
	created, err := s.insertOnce(ctx, vote, "id")
	if err != nil {
		return false, fmt.Errorf("failed to create vote: %w", err)
	}
	return created, nil
}

// CreateProposal inserts a proposal
func (s *pgStore) CreateProposal(ctx context.Context, proposal *schema.ProposalOnchain) (bool, error) {
	created, err := s.insertOnce(ctx, proposal, "id", "dao_id")
	if err != nil {
		return false, fmt.Errorf("failed to create proposal: %w", err)
	}
	return created, nil
}

// GetProposal retrieves a proposal
func (s *pgStore) GetProposal(ctx context.Context, dao domain.DaoID, proposalID string) (*schema.ProposalOnchain, error) {
	var proposal schema.ProposalOnchain
	err := s.db.WithContext(ctx).Where("id = ? AND dao_id = ?", proposalID, dao).First(&proposal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return &proposal, nil
}

// GetProposals lists proposals of a DAO, newest first
func (s *pgStore) GetProposals(ctx context.Context, filter ProposalQueryFilter) ([]schema.ProposalOnchain, uint64, error) {
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&schema.ProposalOnchain{}).Where("dao_id = ?", filter.DaoID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count proposals: %w", err)
	}

	query := base().Order("timestamp DESC").Order("id DESC").Offset(filter.Offset)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var proposals []schema.ProposalOnchain
	if err := query.Find(&proposals).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get proposals: %w", err)
	}

	return proposals, uint64(total), nil //nolint:gosec,G115
}

// UpdateProposalStatus sets the status of a proposal
func (s *pgStore) UpdateProposalStatus(ctx context.Context, dao domain.DaoID, proposalID string, status domain.ProposalStatus) error {
	if err := s.db.WithContext(ctx).Model(&schema.ProposalOnchain{}).
		Where("id = ? AND dao_id = ?", proposalID, dao).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update proposal status: %w", err)
	}
	return nil
}

// AddProposalVotes adds weight to the tally matching support
func (s *pgStore) AddProposalVotes(ctx context.Context, dao domain.DaoID, proposalID string, support domain.VoteSupport, weight decimal.Decimal) error {
	column, err := tallyColumn(support)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(&schema.ProposalOnchain{}).
		Where("id = ? AND dao_id = ?", proposalID, dao).
		Update(column, gorm.Expr(column+" + ?", weight)).Error; err != nil {
		return fmt.Errorf("failed to add proposal votes: %w", err)
	}
	return nil
}

func tallyColumn(support domain.VoteSupport) (string, error) {
	switch support {
	case domain.VoteAgainst:
		return "against_votes", nil
	case domain.VoteFor:
		return "for_votes", nil
	case domain.VoteAbstain:
		return "abstain_votes", nil
	}
	return "", fmt.Errorf("%w: vote support %d", domain.ErrInvalidEvent, support)
}

// GetDailyBucket retrieves a day bucket
func (s *pgStore) GetDailyBucket(ctx context.Context, key DailyBucketKey) (*schema.DaoMetricsDayBucket, error) {
	var bucket schema.DaoMetricsDayBucket
	err := s.db.WithContext(ctx).
		Where("date = ? AND dao_id = ? AND token_id = ? AND metric_type = ?",
			key.Date, key.DaoID, key.TokenID, key.MetricType).
		First(&bucket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily bucket: %w", err)
	}
	return &bucket, nil
}

// SaveDailyBucket creates or overwrites a day bucket
func (s *pgStore) SaveDailyBucket(ctx context.Context, bucket *schema.DaoMetricsDayBucket) error {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(bucket).Error; err != nil {
		return fmt.Errorf("failed to save daily bucket: %w", err)
	}
	return nil
}

// GetDaoMetricsByDateRange lists day buckets ordered by date
func (s *pgStore) GetDaoMetricsByDateRange(ctx context.Context, filter MetricsQueryFilter) ([]schema.DaoMetricsDayBucket, error) {
	query := s.db.WithContext(ctx).Where("dao_id = ?", filter.DaoID)
	if len(filter.MetricTypes) > 0 {
		query = query.Where("metric_type IN ?", filter.MetricTypes)
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	if filter.Order == OrderDesc {
		query = query.Order("date DESC")
	} else {
		query = query.Order("date ASC")
	}
	query = query.Order("metric_type ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var buckets []schema.DaoMetricsDayBucket
	if err := query.Find(&buckets).Error; err != nil {
		return nil, fmt.Errorf("failed to get dao metrics: %w", err)
	}
	return buckets, nil
}

// GetLastMetricValueBefore retrieves the latest bucket strictly before the given date
func (s *pgStore) GetLastMetricValueBefore(ctx context.Context, dao domain.DaoID, metricType domain.MetricType, before time.Time) (*schema.DaoMetricsDayBucket, error) {
	var bucket schema.DaoMetricsDayBucket
	err := s.db.WithContext(ctx).
		Where("dao_id = ? AND metric_type = ? AND date < ?", dao, metricType, before).
		Order("date DESC").
		First(&bucket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last metric value: %w", err)
	}
	return &bucket, nil
}

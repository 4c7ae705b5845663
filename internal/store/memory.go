package store

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/store/schema"
)

type balanceKey struct {
	accountID string
	tokenID   string
}

type daoKey struct {
	dao domain.DaoID
	id  string
}

type bucketKey struct {
	date       int64
	dao        domain.DaoID
	tokenID    string
	metricType domain.MetricType
}

func newBucketKey(date time.Time, dao domain.DaoID, tokenID string, metricType domain.MetricType) bucketKey {
	return bucketKey{date: date.Unix(), dao: dao, tokenID: tokenID, metricType: metricType}
}

type memoryState struct {
	cursors     map[domain.DaoID]uint64
	accounts    map[string]schema.Account
	balances    map[balanceKey]schema.AccountBalance
	tokens      map[daoKey]schema.Token
	powers      map[daoKey]schema.AccountPower
	transfers   map[string]schema.Transfer
	delegations map[string]schema.Delegation
	history     map[string]schema.VotingPowerHistory
	votes       map[string]schema.VoteOnchain
	proposals   map[daoKey]schema.ProposalOnchain
	buckets     map[bucketKey]schema.DaoMetricsDayBucket
}

func (m *memoryState) clone() *memoryState {
	return &memoryState{
		cursors:     maps.Clone(m.cursors),
		accounts:    maps.Clone(m.accounts),
		balances:    maps.Clone(m.balances),
		tokens:      maps.Clone(m.tokens),
		powers:      maps.Clone(m.powers),
		transfers:   maps.Clone(m.transfers),
		delegations: maps.Clone(m.delegations),
		history:     maps.Clone(m.history),
		votes:       maps.Clone(m.votes),
		proposals:   maps.Clone(m.proposals),
		buckets:     maps.Clone(m.buckets),
	}
}

// memoryStore is an in-memory implementation of Store.
// Rows are stored by value so callers never share state with the store.
type memoryStore struct {
	mu    sync.RWMutex
	state *memoryState
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() Store {
	return &memoryStore{
		state: &memoryState{
			cursors:     make(map[domain.DaoID]uint64),
			accounts:    make(map[string]schema.Account),
			balances:    make(map[balanceKey]schema.AccountBalance),
			tokens:      make(map[daoKey]schema.Token),
			powers:      make(map[daoKey]schema.AccountPower),
			transfers:   make(map[string]schema.Transfer),
			delegations: make(map[string]schema.Delegation),
			history:     make(map[string]schema.VotingPowerHistory),
			votes:       make(map[string]schema.VoteOnchain),
			proposals:   make(map[daoKey]schema.ProposalOnchain),
			buckets:     make(map[bucketKey]schema.DaoMetricsDayBucket),
		},
	}
}

// Transaction runs fn and restores the previous state when it fails.
// Concurrent writers are not isolated from each other.
func (s *memoryStore) Transaction(_ context.Context, fn func(Store) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memoryStore) GetBlockCursor(_ context.Context, dao domain.DaoID) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.cursors[dao], nil
}

func (s *memoryStore) SetBlockCursor(_ context.Context, dao domain.DaoID, blockNumber uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.cursors[dao] = blockNumber
	return nil
}

func (s *memoryStore) EnsureAccounts(_ context.Context, addresses ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, address := range addresses {
		if address == "" {
			continue
		}
		if _, ok := s.state.accounts[address]; !ok {
			s.state.accounts[address] = schema.Account{ID: address, CreatedAt: time.Now()}
		}
	}
	return nil
}

func (s *memoryStore) CreateTransfer(_ context.Context, transfer *schema.Transfer) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertOnce(s.state.transfers, transfer.ID, *transfer), nil
}

func (s *memoryStore) AdjustAccountBalance(_ context.Context, accountID string, tokenID string, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := balanceKey{accountID: accountID, tokenID: tokenID}
	balance, ok := s.state.balances[key]
	if !ok {
		balance = schema.AccountBalance{AccountID: accountID, TokenID: tokenID, Balance: decimal.Zero}
	}
	balance.Balance = balance.Balance.Add(delta)
	balance.UpdatedAt = time.Now()
	s.state.balances[key] = balance
	return nil
}

func (s *memoryStore) GetAccountBalance(_ context.Context, accountID string, tokenID string) (*schema.AccountBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(s.state.balances, balanceKey{accountID: accountID, tokenID: tokenID}), nil
}

func (s *memoryStore) GetToken(_ context.Context, dao domain.DaoID, tokenID string) (*schema.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(s.state.tokens, daoKey{dao: dao, id: tokenID}), nil
}

func (s *memoryStore) SaveToken(_ context.Context, token *schema.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *token
	t.UpdatedAt = time.Now()
	s.state.tokens[daoKey{dao: token.DaoID, id: token.ID}] = t
	return nil
}

func (s *memoryStore) GetAccountPower(_ context.Context, dao domain.DaoID, accountID string) (*schema.AccountPower, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(s.state.powers, daoKey{dao: dao, id: accountID}), nil
}

func (s *memoryStore) SaveAccountPower(_ context.Context, power *schema.AccountPower) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.powers[daoKey{dao: power.DaoID, id: power.AccountID}] = *power
	return nil
}

func (s *memoryStore) DeactivateInactiveVoters(_ context.Context, dao domain.DaoID, cutoff time.Time) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := decimal.Zero
	for key, power := range s.state.powers {
		if key.dao != dao || !power.Active || power.LastVoteTimestamp == nil {
			continue
		}
		if !power.LastVoteTimestamp.Before(cutoff) {
			continue
		}
		power.Active = false
		s.state.powers[key] = power
		removed = removed.Add(power.VotingPower)
	}
	return removed, nil
}

func (s *memoryStore) CreateDelegation(_ context.Context, delegation *schema.Delegation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertOnce(s.state.delegations, delegation.ID, *delegation), nil
}

func (s *memoryStore) CreateVotingPowerHistory(_ context.Context, history *schema.VotingPowerHistory) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertOnce(s.state.history, history.ID, *history), nil
}

func (s *memoryStore) CreateVote(_ context.Context, vote *schema.VoteOnchain) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertOnce(s.state.votes, vote.ID, *vote), nil
}

func (s *memoryStore) CreateProposal(_ context.Context, proposal *schema.ProposalOnchain) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertOnce(s.state.proposals, daoKey{dao: proposal.DaoID, id: proposal.ID}, *proposal), nil
}

func (s *memoryStore) GetProposal(_ context.Context, dao domain.DaoID, proposalID string) (*schema.ProposalOnchain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(s.state.proposals, daoKey{dao: dao, id: proposalID}), nil
}

func (s *memoryStore) GetProposals(_ context.Context, filter ProposalQueryFilter) ([]schema.ProposalOnchain, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var proposals []schema.ProposalOnchain
	for key, p := range s.state.proposals {
		if key.dao == filter.DaoID {
			proposals = append(proposals, p)
		}
	}

	// Sort by timestamp DESC, id DESC
	sort.Slice(proposals, func(i, j int) bool {
		if !proposals[i].Timestamp.Equal(proposals[j].Timestamp) {
			return proposals[i].Timestamp.After(proposals[j].Timestamp)
		}
		return proposals[i].ID > proposals[j].ID
	})

	total := uint64(len(proposals))
	start := min(filter.Offset, len(proposals))
	end := len(proposals)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(proposals))
	}

	return proposals[start:end], total, nil
}

func (s *memoryStore) UpdateProposalStatus(_ context.Context, dao domain.DaoID, proposalID string, status domain.ProposalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := daoKey{dao: dao, id: proposalID}
	if p, ok := s.state.proposals[key]; ok {
		p.Status = status
		s.state.proposals[key] = p
	}
	return nil
}

func (s *memoryStore) AddProposalVotes(_ context.Context, dao domain.DaoID, proposalID string, support domain.VoteSupport, weight decimal.Decimal) error {
	if _, err := tallyColumn(support); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := daoKey{dao: dao, id: proposalID}
	p, ok := s.state.proposals[key]
	if !ok {
		return nil
	}
	switch support {
	case domain.VoteAgainst:
		p.AgainstVotes = p.AgainstVotes.Add(weight)
	case domain.VoteFor:
		p.ForVotes = p.ForVotes.Add(weight)
	case domain.VoteAbstain:
		p.AbstainVotes = p.AbstainVotes.Add(weight)
	}
	s.state.proposals[key] = p
	return nil
}

func (s *memoryStore) GetDailyBucket(_ context.Context, key DailyBucketKey) (*schema.DaoMetricsDayBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(s.state.buckets, newBucketKey(key.Date, key.DaoID, key.TokenID, key.MetricType)), nil
}

func (s *memoryStore) SaveDailyBucket(_ context.Context, bucket *schema.DaoMetricsDayBucket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := newBucketKey(bucket.Date, bucket.DaoID, bucket.TokenID, bucket.MetricType)
	s.state.buckets[key] = *bucket
	return nil
}

func (s *memoryStore) GetDaoMetricsByDateRange(_ context.Context, filter MetricsQueryFilter) ([]schema.DaoMetricsDayBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics := make(map[domain.MetricType]bool, len(filter.MetricTypes))
	for _, m := range filter.MetricTypes {
		metrics[m] = true
	}

	var buckets []schema.DaoMetricsDayBucket
	for _, b := range s.state.buckets {
		if b.DaoID != filter.DaoID {
			continue
		}
		if len(metrics) > 0 && !metrics[b.MetricType] {
			continue
		}
		if filter.StartDate != nil && b.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && b.Date.After(*filter.EndDate) {
			continue
		}
		buckets = append(buckets, b)
	}

	sort.Slice(buckets, func(i, j int) bool {
		if !buckets[i].Date.Equal(buckets[j].Date) {
			if filter.Order == OrderDesc {
				return buckets[i].Date.After(buckets[j].Date)
			}
			return buckets[i].Date.Before(buckets[j].Date)
		}
		return buckets[i].MetricType < buckets[j].MetricType
	})

	if filter.Limit > 0 && len(buckets) > filter.Limit {
		buckets = buckets[:filter.Limit]
	}
	return buckets, nil
}

func (s *memoryStore) GetLastMetricValueBefore(_ context.Context, dao domain.DaoID, metricType domain.MetricType, before time.Time) (*schema.DaoMetricsDayBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last *schema.DaoMetricsDayBucket
	for _, b := range s.state.buckets {
		if b.DaoID != dao || b.MetricType != metricType || !b.Date.Before(before) {
			continue
		}
		if last == nil || b.Date.After(last.Date) {
			found := b
			last = &found
		}
	}
	return last, nil
}

func insertOnce[K comparable, V any](m map[K]V, key K, value V) bool {
	if _, exists := m[key]; exists {
		return false
	}
	m[key] = value
	return true
}

func lookup[K comparable, V any](m map[K]V, key K) *V {
	v, ok := m[key]
	if !ok {
		return nil
	}
	return &v
}

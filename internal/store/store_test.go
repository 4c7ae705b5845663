package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/store/schema"
)

const (
	testToken = "0xC18360217D8F7Ab5e7c516566761Ea12Ce7F9D72"
	testAlice = "0x1111111111111111111111111111111111111111"
	testBob   = "0x2222222222222222222222222222222222222222"
	testCarol = "0x3333333333333333333333333333333333333333"
)

var testDay = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// =============================================================================
// Test Data Builders
// =============================================================================

func buildTestProposal(dao domain.DaoID, id string, ts time.Time) *schema.ProposalOnchain {
	return &schema.ProposalOnchain{
		ID:           id,
		DaoID:        dao,
		TxHash:       "0xproposal" + id,
		Proposer:     testAlice,
		StartBlock:   100,
		EndBlock:     200,
		Description:  "proposal " + id,
		Status:       domain.ProposalStatusPending,
		ForVotes:     decimal.Zero,
		AgainstVotes: decimal.Zero,
		AbstainVotes: decimal.Zero,
		Timestamp:    ts,
	}
}

func buildTestBucket(date time.Time, metric domain.MetricType, close int64) *schema.DaoMetricsDayBucket {
	v := decimal.NewFromInt(close)
	return &schema.DaoMetricsDayBucket{
		Date:       date,
		DaoID:      domain.DaoENS,
		TokenID:    testToken,
		MetricType: metric,
		Open:       v,
		Close:      v,
		Low:        v,
		High:       v,
		Average:    v,
		Volume:     decimal.Zero,
		Count:      1,
		LastUpdate: date.Add(time.Hour),
	}
}

func buildTestPower(dao domain.DaoID, account string, power int64, active bool, lastVote *time.Time) *schema.AccountPower {
	p := schema.NewAccountPower(dao, account)
	p.VotingPower = decimal.NewFromInt(power)
	p.Active = active
	p.LastVoteTimestamp = lastVote
	return p
}

// =============================================================================
// Tests
// =============================================================================

func testBlockCursor(t *testing.T, store Store) {
	ctx := context.Background()

	cursor, err := store.GetBlockCursor(ctx, domain.DaoENS)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cursor)

	require.NoError(t, store.SetBlockCursor(ctx, domain.DaoENS, 100))
	require.NoError(t, store.SetBlockCursor(ctx, domain.DaoENS, 150))
	require.NoError(t, store.SetBlockCursor(ctx, domain.DaoUNI, 7))

	cursor, err = store.GetBlockCursor(ctx, domain.DaoENS)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), cursor)

	cursor, err = store.GetBlockCursor(ctx, domain.DaoUNI)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cursor)
}

func testAccountBalances(t *testing.T, store Store) {
	ctx := context.Background()

	require.NoError(t, store.EnsureAccounts(ctx, testAlice, testBob, testAlice, ""))
	require.NoError(t, store.EnsureAccounts(ctx, testAlice))

	balance, err := store.GetAccountBalance(ctx, testAlice, testToken)
	require.NoError(t, err)
	assert.Nil(t, balance)

	require.NoError(t, store.AdjustAccountBalance(ctx, testAlice, testToken, decimal.NewFromInt(100)))
	require.NoError(t, store.AdjustAccountBalance(ctx, testAlice, testToken, decimal.NewFromInt(-30)))
	require.NoError(t, store.AdjustAccountBalance(ctx, testBob, testToken, decimal.NewFromInt(-5)))

	balance, err = store.GetAccountBalance(ctx, testAlice, testToken)
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, "70", balance.Balance.String())

	balance, err = store.GetAccountBalance(ctx, testBob, testToken)
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, "-5", balance.Balance.String())
}

func testTokenAggregate(t *testing.T, store Store) {
	ctx := context.Background()

	token, err := store.GetToken(ctx, domain.DaoENS, testToken)
	require.NoError(t, err)
	assert.Nil(t, token)

	token = schema.NewToken(domain.DaoENS, testToken)
	token.TotalSupply = decimal.RequireFromString("100000000000000000000000000")
	require.NoError(t, store.SaveToken(ctx, token))

	token.Treasury = decimal.NewFromInt(40)
	token.CirculatingSupply = token.TotalSupply.Sub(token.Treasury)
	require.NoError(t, store.SaveToken(ctx, token))

	got, err := store.GetToken(ctx, domain.DaoENS, testToken)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "100000000000000000000000000", got.TotalSupply.String())
	assert.Equal(t, "40", got.Treasury.String())
	assert.Equal(t, "99999999999999999999999960", got.CirculatingSupply.String())
	assert.Equal(t, "0", got.DelegatedSupply.String())

	other, err := store.GetToken(ctx, domain.DaoUNI, testToken)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func testAccountPower(t *testing.T, store Store) {
	ctx := context.Background()
	now := testDay
	old := now.Add(-200 * 24 * time.Hour)
	recent := now.Add(-10 * 24 * time.Hour)

	power, err := store.GetAccountPower(ctx, domain.DaoENS, testAlice)
	require.NoError(t, err)
	assert.Nil(t, power)

	require.NoError(t, store.SaveAccountPower(ctx, buildTestPower(domain.DaoENS, testAlice, 10, true, &old)))
	require.NoError(t, store.SaveAccountPower(ctx, buildTestPower(domain.DaoENS, testBob, 20, true, &recent)))
	require.NoError(t, store.SaveAccountPower(ctx, buildTestPower(domain.DaoENS, testCarol, 30, false, &old)))
	require.NoError(t, store.SaveAccountPower(ctx, buildTestPower(domain.DaoUNI, testAlice, 40, true, &old)))

	removed, err := store.DeactivateInactiveVoters(ctx, domain.DaoENS, now.Add(-domain.ACTIVE_VOTER_WINDOW))
	require.NoError(t, err)
	assert.Equal(t, "10", removed.String())

	alice, err := store.GetAccountPower(ctx, domain.DaoENS, testAlice)
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.False(t, alice.Active)

	bob, err := store.GetAccountPower(ctx, domain.DaoENS, testBob)
	require.NoError(t, err)
	require.NotNil(t, bob)
	assert.True(t, bob.Active)

	uniAlice, err := store.GetAccountPower(ctx, domain.DaoUNI, testAlice)
	require.NoError(t, err)
	require.NotNil(t, uniAlice)
	assert.True(t, uniAlice.Active)

	// counters can go back to zero through a save
	bob.DelegationsCount = 1
	require.NoError(t, store.SaveAccountPower(ctx, bob))
	bob.DelegationsCount = 0
	require.NoError(t, store.SaveAccountPower(ctx, bob))
	bob, err = store.GetAccountPower(ctx, domain.DaoENS, testBob)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bob.DelegationsCount)

	removed, err = store.DeactivateInactiveVoters(ctx, domain.DaoENS, now.Add(-domain.ACTIVE_VOTER_WINDOW))
	require.NoError(t, err)
	assert.True(t, removed.IsZero())
}

func testAppendOnlyLogs(t *testing.T, store Store) {
	ctx := context.Background()

	transfer := &schema.Transfer{
		ID:            "0xaaa-1",
		DaoID:         domain.DaoENS,
		TokenID:       testToken,
		TxHash:        "0xaaa",
		FromAccountID: testAlice,
		ToAccountID:   testBob,
		Amount:        decimal.NewFromInt(5),
		BlockNumber:   10,
		Timestamp:     testDay,
	}
	created, err := store.CreateTransfer(ctx, transfer)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = store.CreateTransfer(ctx, transfer)
	require.NoError(t, err)
	assert.False(t, created)

	delegation := &schema.Delegation{
		ID:               "0xaaa-2",
		DaoID:            domain.DaoENS,
		TxHash:           "0xaaa",
		Delegator:        testAlice,
		Delegate:         testBob,
		PreviousDelegate: domain.ETHEREUM_ZERO_ADDRESS,
		BlockNumber:      10,
		Timestamp:        testDay,
	}
	created, err = store.CreateDelegation(ctx, delegation)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = store.CreateDelegation(ctx, delegation)
	require.NoError(t, err)
	assert.False(t, created)

	history := &schema.VotingPowerHistory{
		ID:                  "0xaaa-3",
		DaoID:               domain.DaoENS,
		AccountID:           testBob,
		TxHash:              "0xaaa",
		PreviousVotingPower: decimal.Zero,
		NewVotingPower:      decimal.NewFromInt(5),
		Delta:               decimal.NewFromInt(5),
		BlockNumber:         10,
		Timestamp:           testDay,
	}
	created, err = store.CreateVotingPowerHistory(ctx, history)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = store.CreateVotingPowerHistory(ctx, history)
	require.NoError(t, err)
	assert.False(t, created)

	vote := &schema.VoteOnchain{
		ID:             "0xbbb-0",
		DaoID:          domain.DaoENS,
		ProposalID:     "1",
		VoterAccountID: testBob,
		TxHash:         "0xbbb",
		Support:        domain.VoteFor,
		Weight:         decimal.NewFromInt(5),
		Timestamp:      testDay,
	}
	created, err = store.CreateVote(ctx, vote)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = store.CreateVote(ctx, vote)
	require.NoError(t, err)
	assert.False(t, created)
}

func testProposals(t *testing.T, store Store) {
	ctx := context.Background()

	created, err := store.CreateProposal(ctx, buildTestProposal(domain.DaoENS, "1", testDay))
	require.NoError(t, err)
	assert.True(t, created)
	created, err = store.CreateProposal(ctx, buildTestProposal(domain.DaoENS, "1", testDay))
	require.NoError(t, err)
	assert.False(t, created)

	_, err = store.CreateProposal(ctx, buildTestProposal(domain.DaoENS, "2", testDay.Add(time.Hour)))
	require.NoError(t, err)
	_, err = store.CreateProposal(ctx, buildTestProposal(domain.DaoENS, "3", testDay.Add(2*time.Hour)))
	require.NoError(t, err)
	_, err = store.CreateProposal(ctx, buildTestProposal(domain.DaoUNI, "1", testDay))
	require.NoError(t, err)

	t.Run("get", func(t *testing.T) {
		p, err := store.GetProposal(ctx, domain.DaoENS, "1")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, testAlice, p.Proposer)
		assert.Equal(t, uint64(100), p.StartBlock)
		assert.Equal(t, uint64(200), p.EndBlock)
		assert.Equal(t, domain.ProposalStatusPending, p.Status)

		missing, err := store.GetProposal(ctx, domain.DaoENS, "404")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("votes and status", func(t *testing.T) {
		require.NoError(t, store.AddProposalVotes(ctx, domain.DaoENS, "1", domain.VoteFor, decimal.NewFromInt(10)))
		require.NoError(t, store.AddProposalVotes(ctx, domain.DaoENS, "1", domain.VoteFor, decimal.NewFromInt(5)))
		require.NoError(t, store.AddProposalVotes(ctx, domain.DaoENS, "1", domain.VoteAgainst, decimal.NewFromInt(3)))
		require.NoError(t, store.AddProposalVotes(ctx, domain.DaoENS, "1", domain.VoteAbstain, decimal.NewFromInt(1)))
		require.NoError(t, store.UpdateProposalStatus(ctx, domain.DaoENS, "1", domain.ProposalStatusQueued))

		err := store.AddProposalVotes(ctx, domain.DaoENS, "1", domain.VoteSupport(7), decimal.NewFromInt(1))
		assert.ErrorIs(t, err, domain.ErrInvalidEvent)

		p, err := store.GetProposal(ctx, domain.DaoENS, "1")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "15", p.ForVotes.String())
		assert.Equal(t, "3", p.AgainstVotes.String())
		assert.Equal(t, "1", p.AbstainVotes.String())
		assert.Equal(t, domain.ProposalStatusQueued, p.Status)

		tally := p.Tally()
		assert.Equal(t, "19", tally.Total().String())
	})

	t.Run("list newest first with pagination", func(t *testing.T) {
		proposals, total, err := store.GetProposals(ctx, ProposalQueryFilter{DaoID: domain.DaoENS, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, uint64(3), total)
		require.Len(t, proposals, 2)
		assert.Equal(t, "3", proposals[0].ID)
		assert.Equal(t, "2", proposals[1].ID)

		proposals, total, err = store.GetProposals(ctx, ProposalQueryFilter{DaoID: domain.DaoENS, Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, uint64(3), total)
		require.Len(t, proposals, 1)
		assert.Equal(t, "1", proposals[0].ID)
	})
}

func testDailyBuckets(t *testing.T, store Store) {
	ctx := context.Background()
	day1 := testDay
	day2 := testDay.Add(domain.ONE_DAY)
	day4 := testDay.Add(3 * domain.ONE_DAY)

	key := DailyBucketKey{Date: day1, DaoID: domain.DaoENS, TokenID: testToken, MetricType: domain.MetricTypeTotalSupply}
	bucket, err := store.GetDailyBucket(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, bucket)

	require.NoError(t, store.SaveDailyBucket(ctx, buildTestBucket(day1, domain.MetricTypeTotalSupply, 100)))
	require.NoError(t, store.SaveDailyBucket(ctx, buildTestBucket(day1, domain.MetricTypeDelegatedSupply, 40)))
	require.NoError(t, store.SaveDailyBucket(ctx, buildTestBucket(day2, domain.MetricTypeDelegatedSupply, 50)))
	require.NoError(t, store.SaveDailyBucket(ctx, buildTestBucket(day4, domain.MetricTypeTotalSupply, 120)))
	require.NoError(t, store.SaveDailyBucket(ctx, buildTestBucket(day4, domain.MetricTypeTreasury, 7)))

	updated := buildTestBucket(day1, domain.MetricTypeTotalSupply, 110)
	updated.Count = 2
	require.NoError(t, store.SaveDailyBucket(ctx, updated))

	t.Run("get", func(t *testing.T) {
		bucket, err := store.GetDailyBucket(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, bucket)
		assert.Equal(t, "110", bucket.Close.String())
		assert.Equal(t, int64(2), bucket.Count)
		assert.True(t, bucket.Date.Equal(day1))
	})

	t.Run("range filtered by metric and date", func(t *testing.T) {
		start := day2
		buckets, err := store.GetDaoMetricsByDateRange(ctx, MetricsQueryFilter{
			DaoID:       domain.DaoENS,
			MetricTypes: []domain.MetricType{domain.MetricTypeTotalSupply, domain.MetricTypeDelegatedSupply},
			StartDate:   &start,
			Order:       OrderAsc,
		})
		require.NoError(t, err)
		require.Len(t, buckets, 2)
		assert.True(t, buckets[0].Date.Equal(day2))
		assert.Equal(t, domain.MetricTypeDelegatedSupply, buckets[0].MetricType)
		assert.True(t, buckets[1].Date.Equal(day4))
		assert.Equal(t, domain.MetricTypeTotalSupply, buckets[1].MetricType)
	})

	t.Run("range descending with limit", func(t *testing.T) {
		end := day2
		buckets, err := store.GetDaoMetricsByDateRange(ctx, MetricsQueryFilter{
			DaoID:   domain.DaoENS,
			EndDate: &end,
			Order:   OrderDesc,
			Limit:   2,
		})
		require.NoError(t, err)
		require.Len(t, buckets, 2)
		assert.True(t, buckets[0].Date.Equal(day2))
		assert.True(t, buckets[1].Date.Equal(day1))
	})

	t.Run("last value before", func(t *testing.T) {
		last, err := store.GetLastMetricValueBefore(ctx, domain.DaoENS, domain.MetricTypeTotalSupply, day4)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.True(t, last.Date.Equal(day1))
		assert.Equal(t, "110", last.Close.String())

		none, err := store.GetLastMetricValueBefore(ctx, domain.DaoENS, domain.MetricTypeTotalSupply, day1)
		require.NoError(t, err)
		assert.Nil(t, none)
	})
}

func testTransactionRollback(t *testing.T, store Store) {
	ctx := context.Background()
	require.NoError(t, store.AdjustAccountBalance(ctx, testAlice, testToken, decimal.NewFromInt(10)))

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx Store) error {
		if err := tx.AdjustAccountBalance(ctx, testAlice, testToken, decimal.NewFromInt(5)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = store.Transaction(ctx, func(tx Store) error {
		return tx.AdjustAccountBalance(ctx, testAlice, testToken, decimal.NewFromInt(1))
	})
	require.NoError(t, err)

	balance, err := store.GetAccountBalance(ctx, testAlice, testToken)
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, "11", balance.Balance.String())
}

// RunStoreTests runs every store test against a fresh store from initDB
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"BlockCursor", testBlockCursor},
		{"AccountBalances", testAccountBalances},
		{"TokenAggregate", testTokenAggregate},
		{"AccountPower", testAccountPower},
		{"AppendOnlyLogs", testAppendOnlyLogs},
		{"Proposals", testProposals},
		{"DailyBuckets", testDailyBuckets},
		{"TransactionRollback", testTransactionRollback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, initDB(t))
		})
	}
}

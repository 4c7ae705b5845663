package aggregator_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockful/anticapture-sub000/internal/aggregator"
	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/registry"
	"github.com/blockful/anticapture-sub000/internal/store"
)

const (
	token    = "0xC18360217D8F7Ab5e7c516566761Ea12Ce7F9D72"
	alice    = "0x1111111111111111111111111111111111111111"
	bob      = "0x2222222222222222222222222222222222222222"
	carol    = "0x3333333333333333333333333333333333333333"
	exchange = "0x4444444444444444444444444444444444444444"
	treasury = "0x5555555555555555555555555555555555555555"
	pool     = "0x6666666666666666666666666666666666666666"
	zero     = domain.ETHEREUM_ZERO_ADDRESS
)

var (
	baseTime = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	logIndex atomic.Uint32
)

func newEvent(eventType domain.EventType, ts time.Time) *domain.GovernanceEvent {
	idx := logIndex.Add(1)
	return &domain.GovernanceEvent{
		DaoID:           domain.DaoENS,
		Chain:           domain.ChainEthereumMainnet,
		EventType:       eventType,
		ContractAddress: token,
		TxHash:          fmt.Sprintf("0x%064x", idx),
		LogIndex:        uint(idx),
		BlockNumber:     uint64(1000 + idx),
		Timestamp:       ts,
	}
}

func transfer(from, to string, value int64, ts time.Time) *domain.GovernanceEvent {
	ev := newEvent(domain.EventTypeTransfer, ts)
	ev.From, ev.To, ev.Value = from, to, fmt.Sprint(value)
	return ev
}

func delegateChanged(delegator, from, to string, ts time.Time) *domain.GovernanceEvent {
	ev := newEvent(domain.EventTypeDelegateChanged, ts)
	ev.Delegator, ev.FromDelegate, ev.ToDelegate = delegator, from, to
	return ev
}

func votesChanged(delegate string, previous, current int64, ts time.Time) *domain.GovernanceEvent {
	ev := newEvent(domain.EventTypeDelegateVotesChanged, ts)
	ev.Delegate, ev.PreviousBalance, ev.NewBalance = delegate, fmt.Sprint(previous), fmt.Sprint(current)
	return ev
}

func voteCast(voter, proposalID string, support domain.VoteSupport, weight int64, ts time.Time) *domain.GovernanceEvent {
	ev := newEvent(domain.EventTypeVoteCast, ts)
	ev.Voter, ev.ProposalID, ev.Support, ev.Weight = voter, proposalID, support, fmt.Sprint(weight)
	return ev
}

func proposalCreated(proposalID, proposer string, ts time.Time) *domain.GovernanceEvent {
	ev := newEvent(domain.EventTypeProposalCreated, ts)
	ev.ProposalID = proposalID
	ev.Proposer = proposer
	ev.Targets = []string{treasury}
	ev.Values = []string{"0"}
	ev.Signatures = []string{""}
	ev.Calldatas = []string{"0x"}
	ev.StartBlock = 100
	ev.EndBlock = 200
	ev.Description = "# Fund the working group"
	return ev
}

func newTestEngine(t *testing.T) (*aggregator.Engine, store.Store) {
	classification, err := registry.NewClassificationRegistry(registry.ClassificationData{
		"ENS": {
			"cex":      {exchange},
			"dex":      {pool},
			"treasury": {treasury},
			"sink":     {zero},
		},
	})
	require.NoError(t, err)

	st := store.NewMemoryStore()
	return aggregator.NewEngine(st, classification, map[domain.DaoID]string{domain.DaoENS: token}), st
}

func applyAll(t *testing.T, engine *aggregator.Engine, events ...*domain.GovernanceEvent) {
	for _, ev := range events {
		require.NoError(t, engine.Apply(context.Background(), ev), "event %s", ev.EventType)
	}
}

func getToken(t *testing.T, st store.Store) map[domain.MetricType]string {
	tok, err := st.GetToken(context.Background(), domain.DaoENS, token)
	require.NoError(t, err)
	require.NotNil(t, tok)
	return map[domain.MetricType]string{
		domain.MetricTypeTotalSupply:       tok.TotalSupply.String(),
		domain.MetricTypeDelegatedSupply:   tok.DelegatedSupply.String(),
		domain.MetricTypeCexSupply:         tok.CexSupply.String(),
		domain.MetricTypeDexSupply:         tok.DexSupply.String(),
		domain.MetricTypeLendingSupply:     tok.LendingSupply.String(),
		domain.MetricTypeTreasury:          tok.Treasury.String(),
		domain.MetricTypeCirculatingSupply: tok.CirculatingSupply.String(),
		domain.MetricTypeActiveSupply:      tok.ActiveSupply.String(),
	}
}

func balanceOf(t *testing.T, st store.Store, account string) string {
	b, err := st.GetAccountBalance(context.Background(), account, token)
	require.NoError(t, err)
	if b == nil {
		return "0"
	}
	return b.Balance.String()
}

func TestEngine_Transfers(t *testing.T) {
	engine, st := newTestEngine(t)

	mint := transfer(zero, alice, 1000, baseTime)
	applyAll(t, engine,
		mint,
		transfer(alice, exchange, 100, baseTime.Add(time.Minute)),
		transfer(alice, treasury, 300, baseTime.Add(2*time.Minute)),
		transfer(exchange, pool, 40, baseTime.Add(3*time.Minute)),
		transfer(alice, bob, 10, baseTime.Add(4*time.Minute)),
	)

	supply := getToken(t, st)
	assert.Equal(t, "1000", supply[domain.MetricTypeTotalSupply])
	assert.Equal(t, "60", supply[domain.MetricTypeCexSupply])
	assert.Equal(t, "40", supply[domain.MetricTypeDexSupply])
	assert.Equal(t, "300", supply[domain.MetricTypeTreasury])
	assert.Equal(t, "700", supply[domain.MetricTypeCirculatingSupply])
	assert.Equal(t, "0", supply[domain.MetricTypeLendingSupply])

	assert.Equal(t, "590", balanceOf(t, st, alice))
	assert.Equal(t, "10", balanceOf(t, st, bob))
	assert.Equal(t, "60", balanceOf(t, st, exchange))
	assert.Equal(t, "-1000", balanceOf(t, st, zero))

	t.Run("redelivered event is skipped", func(t *testing.T) {
		require.NoError(t, engine.Apply(context.Background(), mint))
		assert.Equal(t, "1000", getToken(t, st)[domain.MetricTypeTotalSupply])
		assert.Equal(t, "590", balanceOf(t, st, alice))
	})

	t.Run("burn reduces supply", func(t *testing.T) {
		applyAll(t, engine, transfer(bob, zero, 10, baseTime.Add(5*time.Minute)))
		supply := getToken(t, st)
		assert.Equal(t, "990", supply[domain.MetricTypeTotalSupply])
		assert.Equal(t, "690", supply[domain.MetricTypeCirculatingSupply])
	})

	t.Run("day buckets follow the aggregate", func(t *testing.T) {
		bucket, err := st.GetDailyBucket(context.Background(), store.DailyBucketKey{
			Date:       domain.DayStart(baseTime),
			DaoID:      domain.DaoENS,
			TokenID:    token,
			MetricType: domain.MetricTypeTotalSupply,
		})
		require.NoError(t, err)
		require.NotNil(t, bucket)
		assert.Equal(t, "0", bucket.Open.String())
		assert.Equal(t, "990", bucket.Close.String())
		assert.Equal(t, int64(2), bucket.Count)
		assert.Equal(t, "1010", bucket.Volume.String())

		circulating, err := st.GetDailyBucket(context.Background(), store.DailyBucketKey{
			Date:       domain.DayStart(baseTime),
			DaoID:      domain.DaoENS,
			TokenID:    token,
			MetricType: domain.MetricTypeCirculatingSupply,
		})
		require.NoError(t, err)
		require.NotNil(t, circulating)
		assert.Equal(t, int64(3), circulating.Count)
		assert.Equal(t, "690", circulating.Close.String())
	})
}

func TestEngine_Delegations(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	applyAll(t, engine,
		delegateChanged(alice, zero, bob, baseTime),
		delegateChanged(carol, zero, bob, baseTime),
		delegateChanged(alice, bob, carol, baseTime.Add(time.Hour)),
	)

	a, err := st.GetAccountPower(ctx, domain.DaoENS, alice)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, carol, a.Delegate)

	b, err := st.GetAccountPower(ctx, domain.DaoENS, bob)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, int64(1), b.DelegationsCount)

	c, err := st.GetAccountPower(ctx, domain.DaoENS, carol)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, int64(1), c.DelegationsCount)
	assert.Equal(t, bob, c.Delegate)

	z, err := st.GetAccountPower(ctx, domain.DaoENS, zero)
	require.NoError(t, err)
	assert.Nil(t, z, "the zero address never loses delegations")
}

func TestEngine_VotingPowerAndActiveWindow(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	applyAll(t, engine,
		proposalCreated("1", alice, baseTime),
		votesChanged(bob, 0, 100, baseTime),
		votesChanged(carol, 0, 50, baseTime),
	)

	supply := getToken(t, st)
	assert.Equal(t, "150", supply[domain.MetricTypeDelegatedSupply])
	assert.Equal(t, "0", supply[domain.MetricTypeActiveSupply])

	// bob becomes active
	applyAll(t, engine, voteCast(bob, "1", domain.VoteFor, 100, baseTime.Add(time.Hour)))
	assert.Equal(t, "100", getToken(t, st)[domain.MetricTypeActiveSupply])

	// power changes of an active voter move the active supply too
	applyAll(t, engine, votesChanged(bob, 100, 150, baseTime.Add(2*time.Hour)))
	supply = getToken(t, st)
	assert.Equal(t, "200", supply[domain.MetricTypeDelegatedSupply])
	assert.Equal(t, "150", supply[domain.MetricTypeActiveSupply])

	// a second vote of an active voter does not count twice
	applyAll(t, engine, voteCast(bob, "1", domain.VoteAgainst, 150, baseTime.Add(3*time.Hour)))
	assert.Equal(t, "150", getToken(t, st)[domain.MetricTypeActiveSupply])

	// 200 days later bob falls out of the window while carol enters it
	later := baseTime.Add(200 * 24 * time.Hour)
	applyAll(t, engine, voteCast(carol, "1", domain.VoteAbstain, 50, later))
	assert.Equal(t, "50", getToken(t, st)[domain.MetricTypeActiveSupply])

	b, err := st.GetAccountPower(ctx, domain.DaoENS, bob)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.False(t, b.Active)
	assert.Equal(t, int64(2), b.VotesCount)
	assert.Equal(t, "150", b.VotingPower.String())

	c, err := st.GetAccountPower(ctx, domain.DaoENS, carol)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.Active)
	require.NotNil(t, c.LastVoteTimestamp)
	assert.True(t, c.LastVoteTimestamp.Equal(later))

	p, err := st.GetProposal(ctx, domain.DaoENS, "1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "100", p.ForVotes.String())
	assert.Equal(t, "150", p.AgainstVotes.String())
	assert.Equal(t, "50", p.AbstainVotes.String())

	bucket, err := st.GetDailyBucket(ctx, store.DailyBucketKey{
		Date:       domain.DayStart(later),
		DaoID:      domain.DaoENS,
		TokenID:    token,
		MetricType: domain.MetricTypeActiveSupply,
	})
	require.NoError(t, err)
	require.NotNil(t, bucket)
	assert.Equal(t, "150", bucket.Open.String())
	assert.Equal(t, "50", bucket.Close.String())
}

func TestEngine_ProposalLifecycle(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	created := proposalCreated("42", alice, baseTime)
	applyAll(t, engine, created, created)

	p, err := st.GetProposal(ctx, domain.DaoENS, "42")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, domain.ProposalStatusPending, p.Status)
	assert.Equal(t, uint64(100), p.StartBlock)
	assert.Equal(t, uint64(200), p.EndBlock)
	assert.JSONEq(t, `["`+treasury+`"]`, string(p.Targets))
	assert.True(t, p.ForVotes.IsZero())

	power, err := st.GetAccountPower(ctx, domain.DaoENS, alice)
	require.NoError(t, err)
	require.NotNil(t, power)
	assert.Equal(t, int64(1), power.ProposalsCount)

	for _, tc := range []struct {
		eventType domain.EventType
		status    domain.ProposalStatus
	}{
		{domain.EventTypeProposalQueued, domain.ProposalStatusQueued},
		{domain.EventTypeProposalExecuted, domain.ProposalStatusExecuted},
		{domain.EventTypeProposalCanceled, domain.ProposalStatusCanceled},
	} {
		ev := newEvent(tc.eventType, baseTime.Add(time.Hour))
		ev.ProposalID = "42"
		applyAll(t, engine, ev)

		p, err := st.GetProposal(ctx, domain.DaoENS, "42")
		require.NoError(t, err)
		assert.Equal(t, tc.status, p.Status)
	}
}

func TestEngine_Errors(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	t.Run("nil event", func(t *testing.T) {
		assert.ErrorIs(t, engine.Apply(ctx, nil), domain.ErrInvalidEvent)
	})

	t.Run("missing fields", func(t *testing.T) {
		ev := transfer(alice, bob, 1, baseTime)
		ev.Value = "not-a-number"
		assert.ErrorIs(t, engine.Apply(ctx, ev), domain.ErrInvalidEvent)
	})

	t.Run("unknown dao", func(t *testing.T) {
		ev := transfer(alice, bob, 1, baseTime)
		ev.DaoID = domain.DaoUNI
		assert.ErrorIs(t, engine.Apply(ctx, ev), domain.ErrUnknownDAO)
	})

	t.Run("unknown event type", func(t *testing.T) {
		ev := transfer(alice, bob, 1, baseTime)
		ev.EventType = domain.EventType("approval")
		assert.ErrorIs(t, engine.Apply(ctx, ev), domain.ErrInvalidEvent)
	})
}

func TestEngine_NilClassification(t *testing.T) {
	st := store.NewMemoryStore()
	engine := aggregator.NewEngine(st, nil, map[domain.DaoID]string{domain.DaoENS: token})

	applyAll(t, engine, transfer(alice, bob, 5, baseTime))
	assert.Equal(t, "5", balanceOf(t, st, bob))

	tok, err := st.GetToken(context.Background(), domain.DaoENS, token)
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.True(t, tok.TotalSupply.IsZero())
}

package proposals_test

import (
	"context"
	"errors"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/governor"
	"github.com/blockful/anticapture-sub000/internal/logger"
	"github.com/blockful/anticapture-sub000/internal/mocks"
	"github.com/blockful/anticapture-sub000/internal/proposals"
	"github.com/blockful/anticapture-sub000/internal/store"
	"github.com/blockful/anticapture-sub000/internal/store/schema"
)

func TestMain(m *testing.M) {
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

type testServiceMocks struct {
	ctrl     *gomock.Controller
	reader   *mocks.MockProposalReader
	resolver *mocks.MockGovernorResolver
	governor *mocks.MockGovernor
	registry *mocks.MockBlockRegistry
	provider *mocks.MockBlockProvider
	service  proposals.Service
}

func setupTestService(t *testing.T) *testServiceMocks {
	ctrl := gomock.NewController(t)
	tm := &testServiceMocks{
		ctrl:     ctrl,
		reader:   mocks.NewMockProposalReader(ctrl),
		resolver: mocks.NewMockGovernorResolver(ctrl),
		governor: mocks.NewMockGovernor(ctrl),
		registry: mocks.NewMockBlockRegistry(ctrl),
		provider: mocks.NewMockBlockProvider(ctrl),
	}
	tm.service = proposals.NewService(tm.reader, tm.resolver, tm.registry, governor.PolicySeparateNoQuorum)
	return tm
}

// expectDAO wires the governor and block provider of ENS
func (tm *testServiceMocks) expectDAO() {
	tm.resolver.EXPECT().Governor(domain.DaoENS).Return(tm.governor, nil).AnyTimes()
	tm.registry.EXPECT().Provider(domain.DaoENS).Return(tm.provider, nil).AnyTimes()
	tm.governor.EXPECT().CalculateQuorum(gomock.Any()).DoAndReturn(func(votes domain.VoteTally) *big.Int {
		return new(big.Int).Add(votes.For, votes.Abstain)
	}).AnyTimes()
}

func proposal(id string, status domain.ProposalStatus, forVotes, againstVotes int64) schema.ProposalOnchain {
	return schema.ProposalOnchain{
		ID:           id,
		DaoID:        domain.DaoENS,
		TxHash:       "0xtx",
		Proposer:     "0x1111111111111111111111111111111111111111",
		Description:  "proposal " + id,
		StartBlock:   100,
		EndBlock:     200,
		Status:       status,
		ForVotes:     decimal.NewFromInt(forVotes),
		AgainstVotes: decimal.NewFromInt(againstVotes),
		AbstainVotes: decimal.Zero,
		Timestamp:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestService_GetProposal(t *testing.T) {
	ctx := context.Background()
	endTime := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		setupMocks func(tm *testServiceMocks)
		wantStatus domain.ProposalStatus
		wantEnd    *time.Time
		wantErr    error
	}{
		{
			name: "voting in progress",
			setupMocks: func(tm *testServiceMocks) {
				p := proposal("1", domain.ProposalStatusPending, 0, 0)
				tm.reader.EXPECT().GetProposal(ctx, domain.DaoENS, "1").Return(&p, nil)
				tm.provider.EXPECT().GetLatestBlock(ctx).Return(uint64(150), nil)
				tm.provider.EXPECT().GetBlockTime(ctx, uint64(200)).Return(nil, nil)
			},
			wantStatus: domain.ProposalStatusActive,
		},
		{
			name: "ended with quorum and majority",
			setupMocks: func(tm *testServiceMocks) {
				p := proposal("1", domain.ProposalStatusPending, 60, 10)
				tm.reader.EXPECT().GetProposal(ctx, domain.DaoENS, "1").Return(&p, nil)
				tm.provider.EXPECT().GetLatestBlock(ctx).Return(uint64(250), nil)
				tm.governor.EXPECT().GetQuorum(ctx, "1").Return(big.NewInt(50), nil)
				tm.provider.EXPECT().GetBlockTime(ctx, uint64(200)).Return(&endTime, nil)
			},
			wantStatus: domain.ProposalStatusSucceeded,
			wantEnd:    &endTime,
		},
		{
			name: "ended without quorum",
			setupMocks: func(tm *testServiceMocks) {
				p := proposal("1", domain.ProposalStatusActive, 10, 0)
				tm.reader.EXPECT().GetProposal(ctx, domain.DaoENS, "1").Return(&p, nil)
				tm.provider.EXPECT().GetLatestBlock(ctx).Return(uint64(250), nil)
				tm.governor.EXPECT().GetQuorum(ctx, "1").Return(big.NewInt(50), nil)
				tm.provider.EXPECT().GetBlockTime(ctx, uint64(200)).Return(&endTime, nil)
			},
			wantStatus: domain.ProposalStatusNoQuorum,
			wantEnd:    &endTime,
		},
		{
			name: "final status skips the chain",
			setupMocks: func(tm *testServiceMocks) {
				p := proposal("1", domain.ProposalStatusExecuted, 60, 10)
				tm.reader.EXPECT().GetProposal(ctx, domain.DaoENS, "1").Return(&p, nil)
				tm.provider.EXPECT().GetBlockTime(ctx, uint64(200)).Return(&endTime, nil)
			},
			wantStatus: domain.ProposalStatusExecuted,
			wantEnd:    &endTime,
		},
		{
			name: "end time failure is not fatal",
			setupMocks: func(tm *testServiceMocks) {
				p := proposal("1", domain.ProposalStatusCanceled, 0, 0)
				tm.reader.EXPECT().GetProposal(ctx, domain.DaoENS, "1").Return(&p, nil)
				tm.provider.EXPECT().GetBlockTime(ctx, uint64(200)).Return(nil, errors.New("rpc down"))
			},
			wantStatus: domain.ProposalStatusCanceled,
		},
		{
			name: "missing proposal",
			setupMocks: func(tm *testServiceMocks) {
				tm.reader.EXPECT().GetProposal(ctx, domain.DaoENS, "1").Return(nil, nil)
			},
			wantErr: domain.ErrProposalNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestService(t)
			defer tm.ctrl.Finish()
			tm.expectDAO()
			tt.setupMocks(tm)

			got, err := tm.service.GetProposal(ctx, domain.DaoENS, "1")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantEnd, got.EndTimestamp)
			assert.Equal(t, "proposal 1", got.Description)
		})
	}
}

func TestService_GetProposal_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown dao", func(t *testing.T) {
		tm := setupTestService(t)
		defer tm.ctrl.Finish()

		tm.resolver.EXPECT().Governor(domain.DaoID("FOO")).Return(nil, domain.ErrUnknownDAO)

		_, err := tm.service.GetProposal(ctx, "FOO", "1")
		assert.ErrorIs(t, err, domain.ErrUnknownDAO)
	})

	t.Run("quorum read failure", func(t *testing.T) {
		tm := setupTestService(t)
		defer tm.ctrl.Finish()
		tm.expectDAO()

		p := proposal("1", domain.ProposalStatusActive, 10, 0)
		tm.reader.EXPECT().GetProposal(ctx, domain.DaoENS, "1").Return(&p, nil)
		tm.provider.EXPECT().GetLatestBlock(ctx).Return(uint64(250), nil)
		tm.governor.EXPECT().GetQuorum(ctx, "1").Return(nil, errors.New("reverted"))

		_, err := tm.service.GetProposal(ctx, domain.DaoENS, "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to compute status of proposal 1")
	})

	t.Run("store failure", func(t *testing.T) {
		tm := setupTestService(t)
		defer tm.ctrl.Finish()
		tm.expectDAO()

		tm.reader.EXPECT().GetProposal(ctx, domain.DaoENS, "1").Return(nil, errors.New("db down"))

		_, err := tm.service.GetProposal(ctx, domain.DaoENS, "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get proposal")
	})
}

func TestService_ListProposals(t *testing.T) {
	ctx := context.Background()

	t.Run("reads the head once", func(t *testing.T) {
		tm := setupTestService(t)
		defer tm.ctrl.Finish()
		tm.expectDAO()

		rows := []schema.ProposalOnchain{
			proposal("3", domain.ProposalStatusPending, 0, 0),
			proposal("2", domain.ProposalStatusQueued, 80, 0),
			proposal("1", domain.ProposalStatusActive, 10, 70),
		}
		rows[0].StartBlock, rows[0].EndBlock = 300, 400

		tm.reader.EXPECT().GetProposals(ctx, store.ProposalQueryFilter{DaoID: domain.DaoENS, Limit: proposals.DefaultLimit}).
			Return(rows, uint64(3), nil)
		tm.provider.EXPECT().GetLatestBlock(ctx).Return(uint64(250), nil).Times(1)
		tm.governor.EXPECT().GetQuorum(ctx, "1").Return(big.NewInt(5), nil)

		page, err := tm.service.ListProposals(ctx, domain.DaoENS, 0, 0)
		require.NoError(t, err)
		require.Len(t, page.Items, 3)
		assert.Equal(t, uint64(3), page.TotalCount)
		assert.Equal(t, domain.ProposalStatusPending, page.Items[0].Status)
		assert.Equal(t, domain.ProposalStatusQueued, page.Items[1].Status)
		assert.Equal(t, domain.ProposalStatusDefeated, page.Items[2].Status)
		assert.Equal(t, "70", page.Items[2].AgainstVotes)
	})

	t.Run("limit is capped", func(t *testing.T) {
		tm := setupTestService(t)
		defer tm.ctrl.Finish()
		tm.expectDAO()

		tm.reader.EXPECT().GetProposals(ctx, store.ProposalQueryFilter{DaoID: domain.DaoENS, Limit: proposals.MaxLimit, Offset: 10}).
			Return(nil, uint64(0), nil)

		page, err := tm.service.ListProposals(ctx, domain.DaoENS, 5000, 10)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})

	t.Run("invalid paging", func(t *testing.T) {
		tm := setupTestService(t)
		defer tm.ctrl.Finish()

		_, err := tm.service.ListProposals(ctx, domain.DaoENS, -1, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidFilter)

		_, err = tm.service.ListProposals(ctx, domain.DaoENS, 10, -1)
		assert.ErrorIs(t, err, domain.ErrInvalidFilter)
	})

	t.Run("head failure", func(t *testing.T) {
		tm := setupTestService(t)
		defer tm.ctrl.Finish()
		tm.expectDAO()

		tm.reader.EXPECT().GetProposals(ctx, gomock.Any()).
			Return([]schema.ProposalOnchain{proposal("1", domain.ProposalStatusPending, 0, 0)}, uint64(1), nil)
		tm.provider.EXPECT().GetLatestBlock(ctx).Return(uint64(0), errors.New("rpc down"))

		_, err := tm.service.ListProposals(ctx, domain.DaoENS, 10, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rpc down")
	})
}

func TestService_GetGovernanceParameters(t *testing.T) {
	ctx := context.Background()

	expectParameters := func(tm *testServiceMocks) {
		tm.governor.EXPECT().GetVotingDelay(ctx).Return(big.NewInt(1), nil)
		tm.governor.EXPECT().GetVotingPeriod(ctx).Return(big.NewInt(45818), nil)
		tm.governor.EXPECT().GetProposalThreshold(ctx).Return(big.NewInt(100), nil)
		tm.governor.EXPECT().GetTimelockDelay(ctx).Return(big.NewInt(172800), nil)
		tm.provider.EXPECT().GetLatestBlock(ctx).Return(uint64(1234), nil)
	}

	t.Run("quorum of the latest proposal", func(t *testing.T) {
		tm := setupTestService(t)
		defer tm.ctrl.Finish()
		tm.expectDAO()
		expectParameters(tm)

		tm.reader.EXPECT().GetProposals(ctx, store.ProposalQueryFilter{DaoID: domain.DaoENS, Limit: 1}).
			Return([]schema.ProposalOnchain{proposal("42", domain.ProposalStatusActive, 0, 0)}, uint64(7), nil)
		tm.governor.EXPECT().GetQuorum(ctx, "42").Return(big.NewInt(1000), nil)

		params, err := tm.service.GetGovernanceParameters(ctx, domain.DaoENS)
		require.NoError(t, err)
		assert.Equal(t, domain.DaoENS, params.DaoID)
		assert.Equal(t, "1", params.VotingDelay)
		assert.Equal(t, "45818", params.VotingPeriod)
		assert.Equal(t, "100", params.ProposalThreshold)
		assert.Equal(t, "172800", params.TimelockDelay)
		assert.Equal(t, uint64(1234), params.CurrentBlock)
		require.NotNil(t, params.Quorum)
		assert.Equal(t, "1000", *params.Quorum)
	})

	t.Run("quorum unavailable", func(t *testing.T) {
		tm := setupTestService(t)
		defer tm.ctrl.Finish()
		tm.expectDAO()
		expectParameters(tm)

		tm.reader.EXPECT().GetProposals(ctx, gomock.Any()).Return(nil, uint64(0), nil)
		tm.governor.EXPECT().GetQuorum(ctx, "").Return(nil, errors.New("invalid proposal id"))

		params, err := tm.service.GetGovernanceParameters(ctx, domain.DaoENS)
		require.NoError(t, err)
		assert.Nil(t, params.Quorum)
	})

	t.Run("contract read failure", func(t *testing.T) {
		tm := setupTestService(t)
		defer tm.ctrl.Finish()
		tm.expectDAO()

		tm.governor.EXPECT().GetVotingDelay(ctx).Return(big.NewInt(1), nil)
		tm.governor.EXPECT().GetVotingPeriod(ctx).Return(nil, errors.New("reverted"))

		_, err := tm.service.GetGovernanceParameters(ctx, domain.DaoENS)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get voting period")
	})
}

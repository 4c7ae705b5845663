package block_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockful/anticapture-sub000/internal/block"
	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/logger"
	"github.com/blockful/anticapture-sub000/internal/mocks"
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

type testBlockProviderMocks struct {
	ctrl     *gomock.Controller
	fetcher  *mocks.MockBlockFetcher
	clock    *mocks.MockClock
	provider block.BlockProvider
}

func setupTest(t *testing.T, config block.Config) *testBlockProviderMocks {
	ctrl := gomock.NewController(t)

	mockFetcher := mocks.NewMockBlockFetcher(ctrl)
	mockClock := mocks.NewMockClock(ctrl)

	return &testBlockProviderMocks{
		ctrl:     ctrl,
		fetcher:  mockFetcher,
		clock:    mockClock,
		provider: block.NewBlockProvider(domain.DaoENS, mockFetcher, config, mockClock),
	}
}

var defaultConfig = block.Config{
	TTL:          10 * time.Second,
	StaleWindow:  2 * time.Minute,
	BlockTimeTTL: 0,
}

func TestBlockProvider_GetLatestBlock(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rpcErr := errors.New("rpc unavailable")

	tests := []struct {
		name string
		// second read happens at base+elapsed
		elapsed    time.Duration
		setupMocks func(tm *testBlockProviderMocks)
		want       uint64
		wantErr    bool
	}{
		{
			name:    "served from cache within ttl",
			elapsed: 5 * time.Second,
			setupMocks: func(tm *testBlockProviderMocks) {
				tm.fetcher.EXPECT().GetCurrentBlockNumber(ctx).Return(uint64(1000), nil).Times(1)
			},
			want: 1000,
		},
		{
			name:    "refreshed after ttl",
			elapsed: 11 * time.Second,
			setupMocks: func(tm *testBlockProviderMocks) {
				gomock.InOrder(
					tm.fetcher.EXPECT().GetCurrentBlockNumber(ctx).Return(uint64(1000), nil),
					tm.fetcher.EXPECT().GetCurrentBlockNumber(ctx).Return(uint64(1001), nil),
				)
			},
			want: 1001,
		},
		{
			name:    "stale head served when the chain read fails",
			elapsed: time.Minute,
			setupMocks: func(tm *testBlockProviderMocks) {
				gomock.InOrder(
					tm.fetcher.EXPECT().GetCurrentBlockNumber(ctx).Return(uint64(1000), nil),
					tm.fetcher.EXPECT().GetCurrentBlockNumber(ctx).Return(uint64(0), rpcErr),
				)
			},
			want: 1000,
		},
		{
			name:    "error beyond stale window",
			elapsed: 3 * time.Minute,
			setupMocks: func(tm *testBlockProviderMocks) {
				gomock.InOrder(
					tm.fetcher.EXPECT().GetCurrentBlockNumber(ctx).Return(uint64(1000), nil),
					tm.fetcher.EXPECT().GetCurrentBlockNumber(ctx).Return(uint64(0), rpcErr),
				)
			},
			wantErr: true,
		},
		{
			name:    "head never moves backwards",
			elapsed: 11 * time.Second,
			setupMocks: func(tm *testBlockProviderMocks) {
				gomock.InOrder(
					tm.fetcher.EXPECT().GetCurrentBlockNumber(ctx).Return(uint64(1000), nil),
					tm.fetcher.EXPECT().GetCurrentBlockNumber(ctx).Return(uint64(999), nil),
					tm.fetcher.EXPECT().GetCurrentBlockNumber(ctx).Return(uint64(1002), nil),
				)
			},
			// the lagging answer is returned but not cached, so the third read refetches
			want: 999,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTest(t, defaultConfig)
			defer tm.ctrl.Finish()
			tt.setupMocks(tm)

			tm.clock.EXPECT().Now().Return(base)
			first, err := tm.provider.GetLatestBlock(ctx)
			require.NoError(t, err)
			assert.Equal(t, uint64(1000), first)

			tm.clock.EXPECT().Now().Return(base.Add(tt.elapsed))
			got, err := tm.provider.GetLatestBlock(ctx)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, rpcErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			if tt.name == "head never moves backwards" {
				tm.clock.EXPECT().Now().Return(base.Add(tt.elapsed + time.Second))
				got, err = tm.provider.GetLatestBlock(ctx)
				require.NoError(t, err)
				assert.Equal(t, uint64(1002), got)
			}
		})
	}
}

func TestBlockProvider_GetLatestBlock_NoCacheAndFetchFails(t *testing.T) {
	tm := setupTest(t, defaultConfig)
	defer tm.ctrl.Finish()

	ctx := context.Background()
	tm.clock.EXPECT().Now().Return(time.Now())
	tm.fetcher.EXPECT().GetCurrentBlockNumber(ctx).Return(uint64(0), errors.New("boom"))

	_, err := tm.provider.GetLatestBlock(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get chain head of ENS")
}

func TestBlockProvider_GetBlockTime(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mined := time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC)

	t.Run("cached forever with zero ttl", func(t *testing.T) {
		tm := setupTest(t, defaultConfig)
		defer tm.ctrl.Finish()

		tm.fetcher.EXPECT().GetBlockTime(ctx, uint64(100)).Return(&mined, nil).Times(1)
		tm.clock.EXPECT().Now().Return(base)
		tm.clock.EXPECT().Now().Return(base.Add(365 * 24 * time.Hour))

		first, err := tm.provider.GetBlockTime(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, first)
		second, err := tm.provider.GetBlockTime(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, second)
		assert.True(t, mined.Equal(*first))
		assert.True(t, mined.Equal(*second))
	})

	t.Run("unknown block is not cached", func(t *testing.T) {
		tm := setupTest(t, defaultConfig)
		defer tm.ctrl.Finish()

		gomock.InOrder(
			tm.fetcher.EXPECT().GetBlockTime(ctx, uint64(200)).Return(nil, nil),
			tm.fetcher.EXPECT().GetBlockTime(ctx, uint64(200)).Return(&mined, nil),
		)
		tm.clock.EXPECT().Now().Return(base).Times(2)

		ts, err := tm.provider.GetBlockTime(ctx, 200)
		require.NoError(t, err)
		assert.Nil(t, ts)

		ts, err = tm.provider.GetBlockTime(ctx, 200)
		require.NoError(t, err)
		require.NotNil(t, ts)
		assert.True(t, mined.Equal(*ts))
	})

	t.Run("refetched after ttl and stale value served on error", func(t *testing.T) {
		tm := setupTest(t, block.Config{TTL: time.Second, StaleWindow: time.Hour, BlockTimeTTL: time.Minute})
		defer tm.ctrl.Finish()

		gomock.InOrder(
			tm.fetcher.EXPECT().GetBlockTime(ctx, uint64(300)).Return(&mined, nil),
			tm.fetcher.EXPECT().GetBlockTime(ctx, uint64(300)).Return(nil, errors.New("timeout")),
		)
		tm.clock.EXPECT().Now().Return(base)
		tm.clock.EXPECT().Now().Return(base.Add(2 * time.Minute))

		_, err := tm.provider.GetBlockTime(ctx, 300)
		require.NoError(t, err)

		ts, err := tm.provider.GetBlockTime(ctx, 300)
		require.NoError(t, err)
		require.NotNil(t, ts)
		assert.True(t, mined.Equal(*ts))
	})

	t.Run("error without cache", func(t *testing.T) {
		tm := setupTest(t, defaultConfig)
		defer tm.ctrl.Finish()

		tm.clock.EXPECT().Now().Return(base)
		tm.fetcher.EXPECT().GetBlockTime(ctx, uint64(400)).Return(nil, errors.New("timeout"))

		ts, err := tm.provider.GetBlockTime(ctx, 400)
		assert.Nil(t, ts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get time of block 400")
	})
}

func TestBlockProvider_ConcurrentAccess(t *testing.T) {
	tm := setupTest(t, defaultConfig)
	defer tm.ctrl.Finish()

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tm.clock.EXPECT().Now().Return(now).AnyTimes()
	tm.fetcher.EXPECT().GetCurrentBlockNumber(ctx).Return(uint64(5000), nil).MinTimes(1)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := tm.provider.GetLatestBlock(ctx)
			assert.NoError(t, err)
			assert.Equal(t, uint64(5000), n)
		}()
	}
	wg.Wait()
}

func TestRegistry_Provider(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	resolver := mocks.NewMockGovernorResolver(ctrl)
	gov := mocks.NewMockGovernor(ctrl)
	clock := mocks.NewMockClock(ctrl)
	ctx := context.Background()

	resolver.EXPECT().Governor(domain.DaoENS).Return(gov, nil).Times(1)
	resolver.EXPECT().Governor(domain.DaoID("XYZ")).Return(nil, domain.ErrUnknownDAO)
	clock.EXPECT().Now().Return(time.Now()).AnyTimes()
	gov.EXPECT().GetCurrentBlockNumber(ctx).Return(uint64(42), nil)

	registry := block.NewRegistry(resolver, defaultConfig, clock)

	first, err := registry.Provider(domain.DaoENS)
	require.NoError(t, err)
	second, err := registry.Provider(domain.DaoENS)
	require.NoError(t, err)
	assert.Same(t, first, second)

	n, err := first.GetLatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)

	_, err = registry.Provider(domain.DaoID("XYZ"))
	assert.ErrorIs(t, err, domain.ErrUnknownDAO)
}

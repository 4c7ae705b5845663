package governor_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/governor"
	"github.com/blockful/anticapture-sub000/internal/mocks"
)

const (
	governorAddress = "0x323A76393544d5ecca80cd6ef2A560C6a395b7E3"
	timelockAddress = "0xFe89cc7aBB2C4183683ab71653C4cdc9B02D44b7"
)

func uint256(n int64) []interface{} {
	return []interface{}{big.NewInt(n)}
}

// expectRead expects a single contract read and checks its numeric argument when want is set
func expectRead(t *testing.T, rpc *mocks.MockChainReader, address, method string, want *big.Int, result []interface{}) {
	rpc.EXPECT().
		ReadContract(gomock.Any(), gomock.Any(), address, method, gomock.Any()).
		DoAndReturn(func(_ context.Context, contractABI *abi.ABI, _ string, _ string, args ...interface{}) ([]interface{}, error) {
			_, ok := contractABI.Methods[method]
			assert.True(t, ok, "abi should define %s", method)
			if want != nil {
				require.Len(t, args, 1)
				assert.Equal(t, 0, want.Cmp(args[0].(*big.Int)))
			}
			return result, nil
		})
}

func TestNew_UnknownDAO(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gov, err := governor.New(domain.DaoID("NOPE"), governorAddress, mocks.NewMockChainReader(ctrl))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownDAO)
	assert.Nil(t, gov)
}

func TestVariants_CoverAllDAOs(t *testing.T) {
	for _, dao := range []domain.DaoID{
		domain.DaoENS, domain.DaoUNI, domain.DaoCOMP, domain.DaoGTC, domain.DaoARB,
		domain.DaoOP, domain.DaoNOUNS, domain.DaoSCR, domain.DaoOBOL,
	} {
		v, ok := governor.VariantFor(dao)
		require.True(t, ok, "missing variant for %s", dao)

		switch v.Quorum {
		case governor.QuorumFixed:
			assert.NotNil(t, v.FixedQuorum, dao.String())
		default:
			assert.NotEmpty(t, v.QuorumMethod, dao.String())
		}
		switch v.Timelock {
		case governor.TimelockFixed:
			assert.NotNil(t, v.FixedTimelockDelay, dao.String())
		default:
			assert.NotEmpty(t, v.TimelockMethod, dao.String())
		}
		assert.True(t, v.Weights.For, "for votes always count towards quorum for %s", dao)
	}
}

func TestGovernor_GetQuorum(t *testing.T) {
	tests := []struct {
		name       string
		dao        domain.DaoID
		proposalID string
		setupMocks func(t *testing.T, rpc *mocks.MockChainReader)
		expected   *big.Int
		expectErr  string
	}{
		{
			name:       "snapshot governor reads ten blocks behind head",
			dao:        domain.DaoENS,
			proposalID: "1",
			setupMocks: func(t *testing.T, rpc *mocks.MockChainReader) {
				rpc.EXPECT().GetBlockNumber(gomock.Any()).Return(uint64(1000), nil)
				expectRead(t, rpc, governorAddress, "quorum", big.NewInt(990), uint256(1_000_000))
			},
			expected: big.NewInt(1_000_000),
		},
		{
			name:       "snapshot governor near genesis reads block zero",
			dao:        domain.DaoARB,
			proposalID: "1",
			setupMocks: func(t *testing.T, rpc *mocks.MockChainReader) {
				rpc.EXPECT().GetBlockNumber(gomock.Any()).Return(uint64(3), nil)
				expectRead(t, rpc, governorAddress, "quorum", big.NewInt(0), uint256(7))
			},
			expected: big.NewInt(7),
		},
		{
			name:       "index governor reads at proposal id",
			dao:        domain.DaoOP,
			proposalID: "102821998933460159156263544808281872605936639206851804749751748763651967264110",
			setupMocks: func(t *testing.T, rpc *mocks.MockChainReader) {
				id, _ := new(big.Int).SetString("102821998933460159156263544808281872605936639206851804749751748763651967264110", 10)
				expectRead(t, rpc, governorAddress, "quorum", id, uint256(42))
			},
			expected: big.NewInt(42),
		},
		{
			name:       "index governor rejects non numeric proposal id",
			dao:        domain.DaoNOUNS,
			proposalID: "abc",
			setupMocks: func(t *testing.T, rpc *mocks.MockChainReader) {},
			expectErr:  `invalid proposal id "abc"`,
		},
		{
			name:       "plain governor reads quorumVotes",
			dao:        domain.DaoUNI,
			proposalID: "1",
			setupMocks: func(t *testing.T, rpc *mocks.MockChainReader) {
				rpc.EXPECT().
					ReadContract(gomock.Any(), gomock.Any(), governorAddress, "quorumVotes").
					Return(uint256(40_000_000), nil)
			},
			expected: big.NewInt(40_000_000),
		},
		{
			name:       "fixed quorum never calls the chain",
			dao:        domain.DaoOBOL,
			proposalID: "1",
			setupMocks: func(t *testing.T, rpc *mocks.MockChainReader) {},
			expected:   governor.Variants[domain.DaoOBOL].FixedQuorum,
		},
		{
			name:       "rpc failure is wrapped",
			dao:        domain.DaoCOMP,
			proposalID: "1",
			setupMocks: func(t *testing.T, rpc *mocks.MockChainReader) {
				rpc.EXPECT().
					ReadContract(gomock.Any(), gomock.Any(), governorAddress, "quorumVotes").
					Return(nil, errors.New("connection refused"))
			},
			expectErr: "failed to read quorumVotes: connection refused",
		},
		{
			name:       "unexpected result type",
			dao:        domain.DaoGTC,
			proposalID: "1",
			setupMocks: func(t *testing.T, rpc *mocks.MockChainReader) {
				rpc.EXPECT().
					ReadContract(gomock.Any(), gomock.Any(), governorAddress, "quorumVotes").
					Return([]interface{}{"nope"}, nil)
			},
			expectErr: "unexpected type string for quorumVotes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			rpc := mocks.NewMockChainReader(ctrl)
			tt.setupMocks(t, rpc)

			gov, err := governor.New(tt.dao, governorAddress, rpc)
			require.NoError(t, err)

			quorum, err := gov.GetQuorum(context.Background(), tt.proposalID)
			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, tt.expected.Cmp(quorum), "got %s", quorum)
		})
	}
}

func TestGovernor_GetTimelockDelay(t *testing.T) {
	tests := []struct {
		name       string
		dao        domain.DaoID
		setupMocks func(rpc *mocks.MockChainReader)
		expected   int64
	}{
		{
			name: "two step read with getMinDelay",
			dao:  domain.DaoENS,
			setupMocks: func(rpc *mocks.MockChainReader) {
				rpc.EXPECT().
					ReadContract(gomock.Any(), gomock.Any(), governorAddress, "timelock").
					Return([]interface{}{common.HexToAddress(timelockAddress)}, nil)
				rpc.EXPECT().
					ReadContract(gomock.Any(), gomock.Any(), timelockAddress, "getMinDelay").
					Return(uint256(172800), nil)
			},
			expected: 172800,
		},
		{
			name: "two step read with delay",
			dao:  domain.DaoUNI,
			setupMocks: func(rpc *mocks.MockChainReader) {
				rpc.EXPECT().
					ReadContract(gomock.Any(), gomock.Any(), governorAddress, "timelock").
					Return([]interface{}{common.HexToAddress(timelockAddress)}, nil)
				rpc.EXPECT().
					ReadContract(gomock.Any(), gomock.Any(), timelockAddress, "delay").
					Return(uint256(259200), nil)
			},
			expected: 259200,
		},
		{
			name: "direct read",
			dao:  domain.DaoOBOL,
			setupMocks: func(rpc *mocks.MockChainReader) {
				rpc.EXPECT().
					ReadContract(gomock.Any(), gomock.Any(), governorAddress, "timelockDelay").
					Return(uint256(3600), nil)
			},
			expected: 3600,
		},
		{
			name:       "fixed delay",
			dao:        domain.DaoOP,
			setupMocks: func(rpc *mocks.MockChainReader) {},
			expected:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			rpc := mocks.NewMockChainReader(ctrl)
			tt.setupMocks(rpc)

			gov, err := governor.New(tt.dao, governorAddress, rpc)
			require.NoError(t, err)

			delay, err := gov.GetTimelockDelay(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, delay.Int64())
		})
	}
}

func TestGovernor_Parameters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rpc := mocks.NewMockChainReader(ctrl)
	rpc.EXPECT().ReadContract(gomock.Any(), gomock.Any(), governorAddress, "votingDelay").Return(uint256(1), nil)
	rpc.EXPECT().ReadContract(gomock.Any(), gomock.Any(), governorAddress, "votingPeriod").Return(uint256(45818), nil)
	rpc.EXPECT().ReadContract(gomock.Any(), gomock.Any(), governorAddress, "proposalThreshold").Return(uint256(100_000), nil)

	gov, err := governor.New(domain.DaoENS, governorAddress, rpc)
	require.NoError(t, err)
	ctx := context.Background()

	delay, err := gov.GetVotingDelay(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), delay.Int64())

	period, err := gov.GetVotingPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(45818), period.Int64())

	threshold, err := gov.GetProposalThreshold(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), threshold.Int64())
}

func TestGovernor_Blocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rpc := mocks.NewMockChainReader(ctrl)
	rpc.EXPECT().GetBlockNumber(gomock.Any()).Return(uint64(19_000_000), nil)
	rpc.EXPECT().GetBlockByNumber(gomock.Any(), uint64(100)).Return(&types.Header{Time: 1700000000}, nil)
	rpc.EXPECT().GetBlockByNumber(gomock.Any(), uint64(99_999_999)).Return(nil, nil)
	rpc.EXPECT().GetBlockByNumber(gomock.Any(), uint64(5)).Return(nil, errors.New("timeout"))

	gov, err := governor.New(domain.DaoENS, governorAddress, rpc)
	require.NoError(t, err)
	ctx := context.Background()

	head, err := gov.GetCurrentBlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(19_000_000), head)

	ts, err := gov.GetBlockTime(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, ts)
	assert.True(t, ts.Equal(time.Unix(1700000000, 0)))

	ts, err = gov.GetBlockTime(ctx, 99_999_999)
	require.NoError(t, err)
	assert.Nil(t, ts)

	_, err = gov.GetBlockTime(ctx, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get block 5")
}

func TestGovernor_CalculateQuorum(t *testing.T) {
	votes := domain.VoteTally{For: big.NewInt(100), Against: big.NewInt(20), Abstain: big.NewInt(3)}

	tests := []struct {
		dao      domain.DaoID
		expected int64
	}{
		{domain.DaoUNI, 100},
		{domain.DaoCOMP, 100},
		{domain.DaoNOUNS, 100},
		{domain.DaoENS, 103},
		{domain.DaoARB, 103},
		{domain.DaoOBOL, 103},
		{domain.DaoOP, 123},
		{domain.DaoSCR, 123},
	}

	for _, tt := range tests {
		t.Run(tt.dao.String(), func(t *testing.T) {
			gov, err := governor.New(tt.dao, governorAddress, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, gov.CalculateQuorum(votes).Int64())
		})
	}

	t.Run("nil tallies count as zero", func(t *testing.T) {
		gov, err := governor.New(domain.DaoOP, governorAddress, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(7), gov.CalculateQuorum(domain.VoteTally{For: big.NewInt(7)}).Int64())
	})
}

func TestStaticResolver(t *testing.T) {
	ens, err := governor.New(domain.DaoENS, governorAddress, nil)
	require.NoError(t, err)
	resolver := governor.NewStaticResolver(ens)

	got, err := resolver.Governor(domain.DaoENS)
	require.NoError(t, err)
	assert.Equal(t, domain.DaoENS, got.DAO())

	_, err = resolver.Governor(domain.DaoUNI)
	assert.ErrorIs(t, err, domain.ErrUnknownDAO)
}

package domain

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidChain(t *testing.T) {
	tests := []struct {
		name     string
		chain    Chain
		expected bool
	}{
		{
			name:     "valid ethereum mainnet",
			chain:    ChainEthereumMainnet,
			expected: true,
		},
		{
			name:     "valid arbitrum",
			chain:    ChainArbitrumMainnet,
			expected: true,
		},
		{
			name:     "invalid empty chain",
			chain:    Chain(""),
			expected: false,
		},
		{
			name:     "invalid tezos chain",
			chain:    Chain("tezos:mainnet"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidChain(tt.chain))
		})
	}
}

func TestParseDaoID(t *testing.T) {
	assert.Equal(t, DaoENS, ParseDaoID("ens"))
	assert.Equal(t, DaoNOUNS, ParseDaoID(" Nouns "))
}

func TestProposalStatus_IsFinal(t *testing.T) {
	final := []ProposalStatus{ProposalStatusCanceled, ProposalStatusQueued, ProposalStatusExecuted}
	for _, s := range final {
		assert.True(t, s.IsFinal(), s)
	}

	open := []ProposalStatus{
		ProposalStatusPending,
		ProposalStatusActive,
		ProposalStatusDefeated,
		ProposalStatusSucceeded,
		ProposalStatusNoQuorum,
		ProposalStatusExpired,
		ProposalStatusPendingExecution,
	}
	for _, s := range open {
		assert.False(t, s.IsFinal(), s)
	}
}

func TestVoteTally_Total(t *testing.T) {
	tally := VoteTally{For: big.NewInt(5), Against: big.NewInt(3), Abstain: nil}
	assert.Equal(t, "8", tally.Total().String())
}

func TestGovernanceEvent_Valid(t *testing.T) {
	addr1 := "0x1111111111111111111111111111111111111111"
	addr2 := "0x2222222222222222222222222222222222222222"
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	base := func(eventType EventType) GovernanceEvent {
		return GovernanceEvent{
			DaoID:     DaoENS,
			Chain:     ChainEthereumMainnet,
			EventType: eventType,
			TxHash:    "0xabc",
			Timestamp: ts,
		}
	}

	tests := []struct {
		name     string
		event    func() GovernanceEvent
		expected bool
	}{
		{
			name: "valid transfer",
			event: func() GovernanceEvent {
				e := base(EventTypeTransfer)
				e.From, e.To, e.Value = addr1, addr2, "100"
				return e
			},
			expected: true,
		},
		{
			name: "mint from zero address is a valid transfer",
			event: func() GovernanceEvent {
				e := base(EventTypeTransfer)
				e.From, e.To, e.Value = ETHEREUM_ZERO_ADDRESS, addr2, "100"
				return e
			},
			expected: true,
		},
		{
			name: "transfer with invalid amount",
			event: func() GovernanceEvent {
				e := base(EventTypeTransfer)
				e.From, e.To, e.Value = addr1, addr2, "1.5"
				return e
			},
			expected: false,
		},
		{
			name: "vote with invalid support",
			event: func() GovernanceEvent {
				e := base(EventTypeVoteCast)
				e.Voter, e.ProposalID, e.Support, e.Weight = addr1, "1", VoteSupport(3), "10"
				return e
			},
			expected: false,
		},
		{
			name: "valid vote",
			event: func() GovernanceEvent {
				e := base(EventTypeVoteCast)
				e.Voter, e.ProposalID, e.Support, e.Weight = addr1, "1", VoteAbstain, "10"
				return e
			},
			expected: true,
		},
		{
			name: "proposal queued without id",
			event: func() GovernanceEvent {
				return base(EventTypeProposalQueued)
			},
			expected: false,
		},
		{
			name: "missing timestamp",
			event: func() GovernanceEvent {
				e := base(EventTypeProposalExecuted)
				e.ProposalID = "1"
				e.Timestamp = time.Time{}
				return e
			},
			expected: false,
		},
		{
			name: "unknown event type",
			event: func() GovernanceEvent {
				return base(EventType("approval"))
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.event()
			assert.Equal(t, tt.expected, e.Valid())
		})
	}
}

func TestGovernanceEvent_ID(t *testing.T) {
	e := GovernanceEvent{TxHash: "0xdead", LogIndex: 7}
	assert.Equal(t, "0xdead-7", e.ID())
}

func TestParseAmount(t *testing.T) {
	n, err := ParseAmount("1000000000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000000000", n.String())

	_, err = ParseAmount("abc")
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t,
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		NormalizeAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))
	assert.Equal(t, "not-an-address", NormalizeAddress("not-an-address"))
}

func TestDayStart(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	ts := time.Date(2024, 3, 2, 3, 30, 0, 0, loc) // 2024-03-01 20:30 UTC
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), DayStart(ts))
}

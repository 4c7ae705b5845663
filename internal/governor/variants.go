package governor

import (
	"math/big"

	"github.com/blockful/anticapture-sub000/internal/domain"
)

// QuorumMode is how a governor exposes its quorum
type QuorumMode int

const (
	// QuorumSnapshot reads quorum(blockNumber) a few blocks behind the head
	QuorumSnapshot QuorumMode = iota
	// QuorumByProposal reads the quorum function with the proposal id
	QuorumByProposal
	// QuorumPlain reads a quorum function without arguments
	QuorumPlain
	// QuorumFixed uses a constant, the governor has no quorum function
	QuorumFixed
)

// TimelockMode is how a governor exposes its timelock delay
type TimelockMode int

const (
	// TimelockDirect reads the delay from the governor itself
	TimelockDirect TimelockMode = iota
	// TimelockTwoStep reads timelock() from the governor, then the delay from the timelock
	TimelockTwoStep
	// TimelockFixed uses a constant
	TimelockFixed
)

// QuorumWeights selects the vote types counted towards quorum
type QuorumWeights struct {
	For     bool
	Against bool
	Abstain bool
}

var (
	weightsFor        = QuorumWeights{For: true}
	weightsForAbstain = QuorumWeights{For: true, Abstain: true}
	weightsAll        = QuorumWeights{For: true, Against: true, Abstain: true}
)

// Variant describes the governance-contract flavour of a DAO
type Variant struct {
	Quorum       QuorumMode
	QuorumMethod string
	FixedQuorum  *big.Int

	Timelock           TimelockMode
	TimelockMethod     string
	FixedTimelockDelay *big.Int

	Weights QuorumWeights
}

// Apply returns the weighted sum of the tally counted towards quorum
func (w QuorumWeights) Apply(votes domain.VoteTally) *big.Int {
	total := new(big.Int)
	if w.For && votes.For != nil {
		total.Add(total, votes.For)
	}
	if w.Against && votes.Against != nil {
		total.Add(total, votes.Against)
	}
	if w.Abstain && votes.Abstain != nil {
		total.Add(total, votes.Abstain)
	}
	return total
}

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// Variants is the governor strategy table keyed by DAO
var Variants = map[domain.DaoID]Variant{
	domain.DaoENS: {
		Quorum:         QuorumSnapshot,
		QuorumMethod:   "quorum",
		Timelock:       TimelockTwoStep,
		TimelockMethod: "getMinDelay",
		Weights:        weightsForAbstain,
	},
	domain.DaoUNI: {
		Quorum:         QuorumPlain,
		QuorumMethod:   "quorumVotes",
		Timelock:       TimelockTwoStep,
		TimelockMethod: "delay",
		Weights:        weightsFor,
	},
	domain.DaoCOMP: {
		Quorum:         QuorumPlain,
		QuorumMethod:   "quorumVotes",
		Timelock:       TimelockTwoStep,
		TimelockMethod: "delay",
		Weights:        weightsFor,
	},
	domain.DaoGTC: {
		Quorum:         QuorumPlain,
		QuorumMethod:   "quorumVotes",
		Timelock:       TimelockTwoStep,
		TimelockMethod: "delay",
		Weights:        weightsFor,
	},
	domain.DaoARB: {
		Quorum:         QuorumSnapshot,
		QuorumMethod:   "quorum",
		Timelock:       TimelockTwoStep,
		TimelockMethod: "getMinDelay",
		Weights:        weightsForAbstain,
	},
	domain.DaoOP: {
		Quorum:             QuorumByProposal,
		QuorumMethod:       "quorum",
		Timelock:           TimelockFixed,
		FixedTimelockDelay: big.NewInt(0),
		Weights:            weightsAll,
	},
	domain.DaoNOUNS: {
		Quorum:         QuorumByProposal,
		QuorumMethod:   "quorumVotes",
		Timelock:       TimelockTwoStep,
		TimelockMethod: "delay",
		Weights:        weightsFor,
	},
	domain.DaoSCR: {
		Quorum:         QuorumSnapshot,
		QuorumMethod:   "quorum",
		Timelock:       TimelockTwoStep,
		TimelockMethod: "getMinDelay",
		Weights:        weightsAll,
	},
	domain.DaoOBOL: {
		Quorum:         QuorumFixed,
		FixedQuorum:    tokens(37_500_000),
		Timelock:       TimelockDirect,
		TimelockMethod: "timelockDelay",
		Weights:        weightsForAbstain,
	},
}

// VariantFor returns the variant of a DAO
func VariantFor(dao domain.DaoID) (Variant, bool) {
	v, ok := Variants[dao]
	return v, ok
}

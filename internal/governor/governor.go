package governor

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/blockful/anticapture-sub000/internal/domain"
)

// ChainReader is the on-chain RPC surface a governor reads through
//
//go:generate mockgen -source=governor.go -destination=../mocks/governor.go -package=mocks -mock_names=ChainReader=MockChainReader,Governor=MockGovernor,Resolver=MockGovernorResolver
type ChainReader interface {
	// GetBlockNumber returns the current chain height
	GetBlockNumber(ctx context.Context) (uint64, error)

	// GetBlockByNumber returns the header of a block, nil when the block is unknown
	GetBlockByNumber(ctx context.Context, number uint64) (*types.Header, error)

	// ReadContract calls a view function and returns its unpacked outputs
	ReadContract(ctx context.Context, contractABI *abi.ABI, address string, method string, args ...interface{}) ([]interface{}, error)
}

// Governor reads the governance parameters of a DAO
type Governor interface {
	// DAO returns the DAO the governor belongs to
	DAO() domain.DaoID

	// GetQuorum returns the quorum that applies to a proposal
	GetQuorum(ctx context.Context, proposalID string) (*big.Int, error)

	// GetVotingDelay returns the delay in blocks before voting starts
	GetVotingDelay(ctx context.Context) (*big.Int, error)

	// GetVotingPeriod returns the voting period in blocks
	GetVotingPeriod(ctx context.Context) (*big.Int, error)

	// GetProposalThreshold returns the voting power required to propose
	GetProposalThreshold(ctx context.Context) (*big.Int, error)

	// GetTimelockDelay returns the delay in seconds between queue and execution
	GetTimelockDelay(ctx context.Context) (*big.Int, error)

	// CalculateQuorum returns the part of the tally counted towards quorum
	CalculateQuorum(votes domain.VoteTally) *big.Int

	// GetCurrentBlockNumber returns the current chain height
	GetCurrentBlockNumber(ctx context.Context) (uint64, error)

	// GetBlockTime returns the timestamp of a block, nil when the block is unknown
	GetBlockTime(ctx context.Context, blockNumber uint64) (*time.Time, error)
}

// Resolver returns the governor of a DAO
type Resolver interface {
	Governor(dao domain.DaoID) (Governor, error)
}

type governor struct {
	dao     domain.DaoID
	address string
	variant Variant
	rpc     ChainReader
}

// New creates the governor of a DAO from its strategy table entry
func New(dao domain.DaoID, governorAddress string, rpc ChainReader) (Governor, error) {
	variant, ok := VariantFor(dao)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDAO, dao)
	}
	return NewWithVariant(dao, governorAddress, variant, rpc), nil
}

// NewWithVariant creates a governor with an explicit variant
func NewWithVariant(dao domain.DaoID, governorAddress string, variant Variant, rpc ChainReader) Governor {
	return &governor{
		dao:     dao,
		address: governorAddress,
		variant: variant,
		rpc:     rpc,
	}
}

func (g *governor) DAO() domain.DaoID {
	return g.dao
}

func (g *governor) GetQuorum(ctx context.Context, proposalID string) (*big.Int, error) {
	switch g.variant.Quorum {
	case QuorumFixed:
		return new(big.Int).Set(g.variant.FixedQuorum), nil

	case QuorumPlain:
		return g.readUint(ctx, g.address, g.variant.QuorumMethod, false)

	case QuorumByProposal:
		id, ok := new(big.Int).SetString(proposalID, 10)
		if !ok {
			return nil, fmt.Errorf("invalid proposal id %q", proposalID)
		}
		return g.readUint(ctx, g.address, g.variant.QuorumMethod, true, id)

	case QuorumSnapshot:
		head, err := g.rpc.GetBlockNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get block number: %w", err)
		}
		var snapshot uint64
		if head > domain.QUORUM_SNAPSHOT_OFFSET {
			snapshot = head - domain.QUORUM_SNAPSHOT_OFFSET
		}
		return g.readUint(ctx, g.address, g.variant.QuorumMethod, true, new(big.Int).SetUint64(snapshot))
	}

	return nil, fmt.Errorf("unsupported quorum mode %d", g.variant.Quorum)
}

func (g *governor) GetVotingDelay(ctx context.Context) (*big.Int, error) {
	return g.readUint(ctx, g.address, "votingDelay", false)
}

func (g *governor) GetVotingPeriod(ctx context.Context) (*big.Int, error) {
	return g.readUint(ctx, g.address, "votingPeriod", false)
}

func (g *governor) GetProposalThreshold(ctx context.Context) (*big.Int, error) {
	return g.readUint(ctx, g.address, "proposalThreshold", false)
}

func (g *governor) GetTimelockDelay(ctx context.Context) (*big.Int, error) {
	switch g.variant.Timelock {
	case TimelockFixed:
		return new(big.Int).Set(g.variant.FixedTimelockDelay), nil

	case TimelockDirect:
		return g.readUint(ctx, g.address, g.variant.TimelockMethod, false)

	case TimelockTwoStep:
		out, err := g.rpc.ReadContract(ctx, addressABI("timelock"), g.address, "timelock")
		if err != nil {
			return nil, fmt.Errorf("failed to read timelock address: %w", err)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("empty result for timelock")
		}
		timelock, ok := out[0].(common.Address)
		if !ok {
			return nil, fmt.Errorf("unexpected type %T for timelock", out[0])
		}
		return g.readUint(ctx, timelock.Hex(), g.variant.TimelockMethod, false)
	}

	return nil, fmt.Errorf("unsupported timelock mode %d", g.variant.Timelock)
}

func (g *governor) CalculateQuorum(votes domain.VoteTally) *big.Int {
	return g.variant.Weights.Apply(votes)
}

func (g *governor) GetCurrentBlockNumber(ctx context.Context) (uint64, error) {
	return g.rpc.GetBlockNumber(ctx)
}

func (g *governor) GetBlockTime(ctx context.Context, blockNumber uint64) (*time.Time, error) {
	header, err := g.rpc.GetBlockByNumber(ctx, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get block %d: %w", blockNumber, err)
	}
	if header == nil {
		return nil, nil
	}
	ts := time.Unix(int64(header.Time), 0).UTC() //nolint:gosec,G115
	return &ts, nil
}

func (g *governor) readUint(ctx context.Context, address, method string, withArg bool, args ...interface{}) (*big.Int, error) {
	out, err := g.rpc.ReadContract(ctx, uintABI(method, withArg), address, method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty result for %s", method)
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected type %T for %s", out[0], method)
	}
	return value, nil
}

var (
	abiCache   = make(map[string]*abi.ABI)
	abiCacheMu sync.Mutex
)

// uintABI builds a single-function ABI returning uint256, with an optional uint256 argument.
// Single-function ABIs keep overloaded names (quorum vs quorum(uint256)) apart.
func uintABI(method string, withArg bool) *abi.ABI {
	inputs := `[]`
	if withArg {
		inputs = `[{"name":"arg","type":"uint256"}]`
	}
	return parseABI(fmt.Sprintf(
		`[{"type":"function","name":%q,"stateMutability":"view","inputs":%s,"outputs":[{"name":"","type":"uint256"}]}]`,
		method, inputs))
}

func addressABI(method string) *abi.ABI {
	return parseABI(fmt.Sprintf(
		`[{"type":"function","name":%q,"stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}]`,
		method))
}

func parseABI(definition string) *abi.ABI {
	abiCacheMu.Lock()
	defer abiCacheMu.Unlock()

	if parsed, ok := abiCache[definition]; ok {
		return parsed
	}
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		// definitions are built from constants above
		panic(fmt.Sprintf("invalid governor ABI: %v", err))
	}
	abiCache[definition] = &parsed
	return &parsed
}

// StaticResolver resolves governors built once at startup
type StaticResolver struct {
	governors map[domain.DaoID]Governor
}

// NewStaticResolver creates a resolver over the given governors
func NewStaticResolver(governors ...Governor) *StaticResolver {
	r := &StaticResolver{governors: make(map[domain.DaoID]Governor, len(governors))}
	for _, g := range governors {
		r.governors[g.DAO()] = g
	}
	return r
}

// Governor returns the governor of a DAO
func (r *StaticResolver) Governor(dao domain.DaoID) (Governor, error) {
	g, ok := r.governors[dao]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDAO, dao)
	}
	return g, nil
}

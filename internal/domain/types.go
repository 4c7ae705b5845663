package domain

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet  Chain = "eip155:1"
	ChainEthereumSepolia  Chain = "eip155:11155111"
	ChainOptimismMainnet  Chain = "eip155:10"
	ChainArbitrumMainnet  Chain = "eip155:42161"
	ChainScrollMainnet    Chain = "eip155:534352"
	ChainAnvilDevelopment Chain = "eip155:31337"
)

// IsValidChain checks if a chain is valid
func IsValidChain(chain Chain) bool {
	switch chain {
	case ChainEthereumMainnet,
		ChainEthereumSepolia,
		ChainOptimismMainnet,
		ChainArbitrumMainnet,
		ChainScrollMainnet,
		ChainAnvilDevelopment:
		return true
	}
	return false
}

// DaoID identifies a DAO indexed by the system
type DaoID string

const (
	DaoENS   DaoID = "ENS"
	DaoUNI   DaoID = "UNI"
	DaoCOMP  DaoID = "COMP"
	DaoGTC   DaoID = "GTC"
	DaoARB   DaoID = "ARB"
	DaoOP    DaoID = "OP"
	DaoNOUNS DaoID = "NOUNS"
	DaoSCR   DaoID = "SCR"
	DaoOBOL  DaoID = "OBOL"
)

// ParseDaoID parses a DAO id case-insensitively
func ParseDaoID(s string) DaoID {
	return DaoID(strings.ToUpper(strings.TrimSpace(s)))
}

// String returns the string representation of the DaoID
func (d DaoID) String() string {
	return string(d)
}

// EventType represents the type of governance event
type EventType string

const (
	EventTypeTransfer             EventType = "transfer"
	EventTypeDelegateChanged      EventType = "delegate_changed"
	EventTypeDelegateVotesChanged EventType = "delegate_votes_changed"
	EventTypeVoteCast             EventType = "vote_cast"
	EventTypeProposalCreated      EventType = "proposal_created"
	EventTypeProposalCanceled     EventType = "proposal_canceled"
	EventTypeProposalExecuted     EventType = "proposal_executed"
	EventTypeProposalQueued       EventType = "proposal_queued"
)

// MetricType is the kind of supply tracked in the daily metric buckets
type MetricType string

const (
	MetricTypeTotalSupply       MetricType = "TOTAL_SUPPLY"
	MetricTypeDelegatedSupply   MetricType = "DELEGATED_SUPPLY"
	MetricTypeCexSupply         MetricType = "CEX_SUPPLY"
	MetricTypeDexSupply         MetricType = "DEX_SUPPLY"
	MetricTypeLendingSupply     MetricType = "LENDING_SUPPLY"
	MetricTypeTreasury          MetricType = "TREASURY"
	MetricTypeCirculatingSupply MetricType = "CIRCULATING_SUPPLY"
	MetricTypeActiveSupply      MetricType = "ACTIVE_SUPPLY_180D"
)

// ProposalStatus is the lifecycle status of an on-chain proposal
type ProposalStatus string

const (
	ProposalStatusPending          ProposalStatus = "PENDING"
	ProposalStatusActive           ProposalStatus = "ACTIVE"
	ProposalStatusCanceled         ProposalStatus = "CANCELED"
	ProposalStatusQueued           ProposalStatus = "QUEUED"
	ProposalStatusExecuted         ProposalStatus = "EXECUTED"
	ProposalStatusDefeated         ProposalStatus = "DEFEATED"
	ProposalStatusSucceeded        ProposalStatus = "SUCCEEDED"
	ProposalStatusNoQuorum         ProposalStatus = "NO_QUORUM"
	ProposalStatusExpired          ProposalStatus = "EXPIRED"
	ProposalStatusPendingExecution ProposalStatus = "PENDING_EXECUTION"
)

// IsFinal reports whether the status is only changed by explicit lifecycle events
func (s ProposalStatus) IsFinal() bool {
	return s == ProposalStatusCanceled || s == ProposalStatusQueued || s == ProposalStatusExecuted
}

// VoteSupport is the direction of a vote
type VoteSupport uint8

const (
	VoteAgainst VoteSupport = 0
	VoteFor     VoteSupport = 1
	VoteAbstain VoteSupport = 2
)

// Valid checks if the support value is one of against, for or abstain
func (v VoteSupport) Valid() bool {
	return v <= VoteAbstain
}

// VoteTally is the vote totals of a proposal
type VoteTally struct {
	For     *big.Int
	Against *big.Int
	Abstain *big.Int
}

// Total returns for + against + abstain
func (v VoteTally) Total() *big.Int {
	total := new(big.Int)
	for _, n := range []*big.Int{v.For, v.Against, v.Abstain} {
		if n != nil {
			total.Add(total, n)
		}
	}
	return total
}

// GovernanceEvent represents a normalized governance event
// This is the standard format published to NATS
type GovernanceEvent struct {
	DaoID           DaoID     `json:"dao_id"`
	Chain           Chain     `json:"chain"`
	EventType       EventType `json:"event_type"`
	ContractAddress string    `json:"contract_address"`
	TxHash          string    `json:"tx_hash"`
	LogIndex        uint      `json:"log_index"`
	BlockNumber     uint64    `json:"block_number"`
	Timestamp       time.Time `json:"timestamp"`

	// Transfer
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
	Value string `json:"value,omitempty"`

	// DelegateChanged
	Delegator    string `json:"delegator,omitempty"`
	FromDelegate string `json:"from_delegate,omitempty"`
	ToDelegate   string `json:"to_delegate,omitempty"`

	// DelegateVotesChanged
	Delegate        string `json:"delegate,omitempty"`
	PreviousBalance string `json:"previous_balance,omitempty"`
	NewBalance      string `json:"new_balance,omitempty"`

	// VoteCast
	Voter   string      `json:"voter,omitempty"`
	Support VoteSupport `json:"support,omitempty"`
	Weight  string      `json:"weight,omitempty"`
	Reason  string      `json:"reason,omitempty"`

	// Proposal lifecycle
	ProposalID  string   `json:"proposal_id,omitempty"`
	Proposer    string   `json:"proposer,omitempty"`
	Targets     []string `json:"targets,omitempty"`
	Values      []string `json:"values,omitempty"`
	Signatures  []string `json:"signatures,omitempty"`
	Calldatas   []string `json:"calldatas,omitempty"`
	StartBlock  uint64   `json:"start_block,omitempty"`
	EndBlock    uint64   `json:"end_block,omitempty"`
	Description string   `json:"description,omitempty"`
	ETA         string   `json:"eta,omitempty"`
}

// ID returns the unique identifier of the event: txHash-logIndex
func (e *GovernanceEvent) ID() string {
	return fmt.Sprintf("%s-%d", e.TxHash, e.LogIndex)
}

// Valid checks the event carries the fields its type needs
func (e *GovernanceEvent) Valid() bool {
	if e.DaoID == "" || e.TxHash == "" || e.Timestamp.IsZero() {
		return false
	}

	switch e.EventType {
	case EventTypeTransfer:
		return validAddress(e.From) && validAddress(e.To) && validAmount(e.Value)
	case EventTypeDelegateChanged:
		return validAddress(e.Delegator) && validAddress(e.FromDelegate) && validAddress(e.ToDelegate)
	case EventTypeDelegateVotesChanged:
		return validAddress(e.Delegate) && validAmount(e.PreviousBalance) && validAmount(e.NewBalance)
	case EventTypeVoteCast:
		return validAddress(e.Voter) && e.ProposalID != "" && e.Support.Valid() && validAmount(e.Weight)
	case EventTypeProposalCreated:
		return e.ProposalID != "" && validAddress(e.Proposer)
	case EventTypeProposalCanceled, EventTypeProposalExecuted, EventTypeProposalQueued:
		return e.ProposalID != ""
	}

	return false
}

// ParseAmount parses a base-10 integer carried as a string in events
func ParseAmount(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: invalid amount %q", ErrInvalidEvent, s)
	}
	return n, nil
}

// NormalizeAddresses normalizes a list of addresses to their checksummed form
func NormalizeAddresses(addresses []string) []string {
	for i, address := range addresses {
		addresses[i] = NormalizeAddress(address)
	}
	return addresses
}

// NormalizeAddress normalizes an address to its checksummed form
func NormalizeAddress(address string) string {
	if strings.HasPrefix(address, "0x") {
		return common.HexToAddress(address).String()
	}
	return address
}

// DayStart truncates a timestamp to UTC midnight
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func validAddress(address string) bool {
	return common.IsHexAddress(address)
}

func validAmount(s string) bool {
	_, ok := new(big.Int).SetString(s, 10)
	return ok
}

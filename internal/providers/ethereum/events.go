package ethereum

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/blockful/anticapture-sub000/internal/domain"
)

// Event signatures
var (
	// ERC20 Transfer(address indexed from, address indexed to, uint256 value) - 3 topics
	// ERC721 Transfer(address indexed from, address indexed to, uint256 indexed tokenId) - 4 topics
	transferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

	// DelegateChanged(address indexed delegator, address indexed fromDelegate, address indexed toDelegate)
	delegateChangedEventSignature = crypto.Keccak256Hash([]byte("DelegateChanged(address,address,address)"))

	// DelegateVotesChanged(address indexed delegate, uint256 previousBalance, uint256 newBalance)
	delegateVotesChangedEventSignature = crypto.Keccak256Hash([]byte("DelegateVotesChanged(address,uint256,uint256)"))

	// VoteCast(address indexed voter, uint256 proposalId, uint8 support, uint256 weight, string reason)
	voteCastEventSignature = crypto.Keccak256Hash([]byte("VoteCast(address,uint256,uint8,uint256,string)"))

	// ProposalCreated(uint256 proposalId, address proposer, address[] targets, uint256[] values,
	// string[] signatures, bytes[] calldatas, uint256 voteStart, uint256 voteEnd, string description)
	proposalCreatedEventSignature = crypto.Keccak256Hash([]byte("ProposalCreated(uint256,address,address[],uint256[],string[],bytes[],uint256,uint256,string)"))

	// ProposalCanceled(uint256 proposalId)
	proposalCanceledEventSignature = crypto.Keccak256Hash([]byte("ProposalCanceled(uint256)"))

	// ProposalExecuted(uint256 proposalId)
	proposalExecutedEventSignature = crypto.Keccak256Hash([]byte("ProposalExecuted(uint256)"))

	// ProposalQueued(uint256 proposalId, uint256 eta)
	proposalQueuedEventSignature = crypto.Keccak256Hash([]byte("ProposalQueued(uint256,uint256)"))
)

// tokenEventSignatures are emitted by the governance token
var tokenEventSignatures = []common.Hash{
	transferEventSignature,
	delegateChangedEventSignature,
	delegateVotesChangedEventSignature,
}

// governorEventSignatures are emitted by the governor
var governorEventSignatures = []common.Hash{
	voteCastEventSignature,
	proposalCreatedEventSignature,
	proposalCanceledEventSignature,
	proposalExecutedEventSignature,
	proposalQueuedEventSignature,
}

// governanceEventsABI decodes the non-indexed data of the governance events
const governanceEventsABI = `[
{"anonymous":false,"type":"event","name":"Transfer","inputs":[
	{"indexed":true,"name":"from","type":"address"},
	{"indexed":true,"name":"to","type":"address"},
	{"indexed":false,"name":"value","type":"uint256"}]},
{"anonymous":false,"type":"event","name":"DelegateVotesChanged","inputs":[
	{"indexed":true,"name":"delegate","type":"address"},
	{"indexed":false,"name":"previousBalance","type":"uint256"},
	{"indexed":false,"name":"newBalance","type":"uint256"}]},
{"anonymous":false,"type":"event","name":"VoteCast","inputs":[
	{"indexed":true,"name":"voter","type":"address"},
	{"indexed":false,"name":"proposalId","type":"uint256"},
	{"indexed":false,"name":"support","type":"uint8"},
	{"indexed":false,"name":"weight","type":"uint256"},
	{"indexed":false,"name":"reason","type":"string"}]},
{"anonymous":false,"type":"event","name":"ProposalCreated","inputs":[
	{"indexed":false,"name":"proposalId","type":"uint256"},
	{"indexed":false,"name":"proposer","type":"address"},
	{"indexed":false,"name":"targets","type":"address[]"},
	{"indexed":false,"name":"values","type":"uint256[]"},
	{"indexed":false,"name":"signatures","type":"string[]"},
	{"indexed":false,"name":"calldatas","type":"bytes[]"},
	{"indexed":false,"name":"voteStart","type":"uint256"},
	{"indexed":false,"name":"voteEnd","type":"uint256"},
	{"indexed":false,"name":"description","type":"string"}]},
{"anonymous":false,"type":"event","name":"ProposalCanceled","inputs":[
	{"indexed":false,"name":"proposalId","type":"uint256"}]},
{"anonymous":false,"type":"event","name":"ProposalExecuted","inputs":[
	{"indexed":false,"name":"proposalId","type":"uint256"}]},
{"anonymous":false,"type":"event","name":"ProposalQueued","inputs":[
	{"indexed":false,"name":"proposalId","type":"uint256"},
	{"indexed":false,"name":"eta","type":"uint256"}]}
]`

var eventsABI = mustParseABI(governanceEventsABI)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(fmt.Sprintf("invalid governance events ABI: %v", err))
	}
	return parsed
}

// unpackData decodes the non-indexed fields of an event
func unpackData(name string, data []byte) (map[string]interface{}, error) {
	values := make(map[string]interface{})
	if err := eventsABI.UnpackIntoMap(values, name, data); err != nil {
		return nil, fmt.Errorf("failed to unpack %s data: %w", name, err)
	}
	return values, nil
}

func topicAddress(topic common.Hash) string {
	return common.BytesToAddress(topic.Bytes()).Hex()
}

func requireTopics(name string, vLog types.Log, n int) error {
	if len(vLog.Topics) != n {
		return fmt.Errorf("%w: %s expected %d topics, got %d", domain.ErrInvalidEvent, name, n, len(vLog.Topics))
	}
	return nil
}

// decodeLog fills the type specific fields of event from vLog
func decodeLog(vLog types.Log, event *domain.GovernanceEvent) error {
	if len(vLog.Topics) == 0 {
		return fmt.Errorf("%w: log without topics", domain.ErrUnsupportedEvent)
	}

	switch vLog.Topics[0] {
	case transferEventSignature:
		event.EventType = domain.EventTypeTransfer
		switch len(vLog.Topics) {
		case 3:
			values, err := unpackData("Transfer", vLog.Data)
			if err != nil {
				return err
			}
			event.Value = bigString(values["value"])
		case 4:
			// ERC721 voting tokens move one unit per transfer
			event.Value = "1"
		default:
			return fmt.Errorf("%w: Transfer expected 3 or 4 topics, got %d", domain.ErrInvalidEvent, len(vLog.Topics))
		}
		event.From = topicAddress(vLog.Topics[1])
		event.To = topicAddress(vLog.Topics[2])

	case delegateChangedEventSignature:
		if err := requireTopics("DelegateChanged", vLog, 4); err != nil {
			return err
		}
		event.EventType = domain.EventTypeDelegateChanged
		event.Delegator = topicAddress(vLog.Topics[1])
		event.FromDelegate = topicAddress(vLog.Topics[2])
		event.ToDelegate = topicAddress(vLog.Topics[3])

	case delegateVotesChangedEventSignature:
		if err := requireTopics("DelegateVotesChanged", vLog, 2); err != nil {
			return err
		}
		values, err := unpackData("DelegateVotesChanged", vLog.Data)
		if err != nil {
			return err
		}
		event.EventType = domain.EventTypeDelegateVotesChanged
		event.Delegate = topicAddress(vLog.Topics[1])
		event.PreviousBalance = bigString(values["previousBalance"])
		event.NewBalance = bigString(values["newBalance"])

	case voteCastEventSignature:
		if err := requireTopics("VoteCast", vLog, 2); err != nil {
			return err
		}
		values, err := unpackData("VoteCast", vLog.Data)
		if err != nil {
			return err
		}
		support, _ := values["support"].(uint8)
		reason, _ := values["reason"].(string)
		event.EventType = domain.EventTypeVoteCast
		event.Voter = topicAddress(vLog.Topics[1])
		event.ProposalID = bigString(values["proposalId"])
		event.Support = domain.VoteSupport(support)
		event.Weight = bigString(values["weight"])
		event.Reason = reason

	case proposalCreatedEventSignature:
		values, err := unpackData("ProposalCreated", vLog.Data)
		if err != nil {
			return err
		}
		event.EventType = domain.EventTypeProposalCreated
		event.ProposalID = bigString(values["proposalId"])
		if proposer, ok := values["proposer"].(common.Address); ok {
			event.Proposer = proposer.Hex()
		}
		if targets, ok := values["targets"].([]common.Address); ok {
			for _, target := range targets {
				event.Targets = append(event.Targets, target.Hex())
			}
		}
		if amounts, ok := values["values"].([]*big.Int); ok {
			for _, amount := range amounts {
				event.Values = append(event.Values, amount.String())
			}
		}
		if signatures, ok := values["signatures"].([]string); ok {
			event.Signatures = signatures
		}
		if calldatas, ok := values["calldatas"].([][]byte); ok {
			for _, calldata := range calldatas {
				event.Calldatas = append(event.Calldatas, hexutil.Encode(calldata))
			}
		}
		event.StartBlock = bigUint64(values["voteStart"])
		event.EndBlock = bigUint64(values["voteEnd"])
		event.Description, _ = values["description"].(string)

	case proposalCanceledEventSignature:
		values, err := unpackData("ProposalCanceled", vLog.Data)
		if err != nil {
			return err
		}
		event.EventType = domain.EventTypeProposalCanceled
		event.ProposalID = bigString(values["proposalId"])

	case proposalExecutedEventSignature:
		values, err := unpackData("ProposalExecuted", vLog.Data)
		if err != nil {
			return err
		}
		event.EventType = domain.EventTypeProposalExecuted
		event.ProposalID = bigString(values["proposalId"])

	case proposalQueuedEventSignature:
		values, err := unpackData("ProposalQueued", vLog.Data)
		if err != nil {
			return err
		}
		event.EventType = domain.EventTypeProposalQueued
		event.ProposalID = bigString(values["proposalId"])
		event.ETA = bigString(values["eta"])

	default:
		return fmt.Errorf("%w: signature %s", domain.ErrUnsupportedEvent, vLog.Topics[0].Hex())
	}

	return nil
}

func bigString(v interface{}) string {
	n, ok := v.(*big.Int)
	if !ok || n == nil {
		return "0"
	}
	return n.String()
}

func bigUint64(v interface{}) uint64 {
	n, ok := v.(*big.Int)
	if !ok || n == nil || !n.IsUint64() {
		return 0
	}
	return n.Uint64()
}

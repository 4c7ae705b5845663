package governor

import (
	"context"
	"fmt"
	"math/big"

	"github.com/blockful/anticapture-sub000/internal/domain"
)

// Policy decides the outcome of a proposal once voting has ended
type Policy int

const (
	// PolicySeparateNoQuorum reports NO_QUORUM apart from DEFEATED
	PolicySeparateNoQuorum Policy = iota
	// PolicyCollapsedDefeat reports DEFEATED for both a missed quorum and a missed majority
	PolicyCollapsedDefeat
)

// String returns the name of the policy
func (p Policy) String() string {
	switch p {
	case PolicySeparateNoQuorum:
		return "separate_no_quorum"
	case PolicyCollapsedDefeat:
		return "collapsed_defeat"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParsePolicy parses a policy name as returned by Policy.String
func ParsePolicy(name string) (Policy, error) {
	for _, p := range []Policy{PolicySeparateNoQuorum, PolicyCollapsedDefeat} {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown status policy %q", name)
}

// Proposal is the part of a stored proposal the status machine needs
type Proposal struct {
	ID         string
	Status     domain.ProposalStatus
	StartBlock uint64
	EndBlock   uint64
	Votes      domain.VoteTally
}

// ProposalStatus recomputes the status of a proposal at chain height currentBlock.
// Statuses set by lifecycle events are returned unchanged.
func ProposalStatus(ctx context.Context, gov Governor, proposal Proposal, currentBlock uint64, policy Policy) (domain.ProposalStatus, error) {
	if proposal.Status.IsFinal() {
		return proposal.Status, nil
	}

	if currentBlock < proposal.StartBlock {
		return domain.ProposalStatusPending, nil
	}
	if currentBlock < proposal.EndBlock {
		return domain.ProposalStatusActive, nil
	}

	quorum, err := gov.GetQuorum(ctx, proposal.ID)
	if err != nil {
		return "", fmt.Errorf("failed to get quorum for proposal %s: %w", proposal.ID, err)
	}

	votes := proposal.Votes
	forVotes := orZero(votes.For)
	againstVotes := orZero(votes.Against)

	hasQuorum := gov.CalculateQuorum(votes).Cmp(quorum) >= 0
	hasMajority := forVotes.Cmp(againstVotes) > 0

	switch policy {
	case PolicyCollapsedDefeat:
		if !hasQuorum || !hasMajority {
			return domain.ProposalStatusDefeated, nil
		}
		return domain.ProposalStatusSucceeded, nil

	case PolicySeparateNoQuorum:
		if !hasQuorum {
			return domain.ProposalStatusNoQuorum, nil
		}
		if votes.Total().Cmp(quorum) > 0 && !hasMajority {
			return domain.ProposalStatusDefeated, nil
		}
		return domain.ProposalStatusSucceeded, nil
	}

	return proposal.Status, nil
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}

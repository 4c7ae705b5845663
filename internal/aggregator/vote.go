package aggregator

import (
	"context"
	"math/big"

	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/store/schema"
)

func (a *application) applyVoteCast(ctx context.Context) error {
	ev := a.event
	voter := domain.NormalizeAddress(ev.Voter)
	ts := a.timestamp()

	weight, err := domain.ParseAmount(ev.Weight)
	if err != nil {
		return err
	}

	if err := created(a.store.CreateVote(ctx, &schema.VoteOnchain{
		ID:             ev.ID(),
		DaoID:          a.dao,
		ProposalID:     ev.ProposalID,
		VoterAccountID: voter,
		TxHash:         ev.TxHash,
		Support:        ev.Support,
		Weight:         toDecimal(weight),
		Reason:         ev.Reason,
		Timestamp:      ts,
	})); err != nil {
		return err
	}

	if err := a.store.EnsureAccounts(ctx, voter); err != nil {
		return err
	}
	if err := a.store.AddProposalVotes(ctx, a.dao, ev.ProposalID, ev.Support, toDecimal(weight)); err != nil {
		return err
	}

	var wasActive bool
	power, err := a.updatePower(ctx, voter, func(p *schema.AccountPower) {
		wasActive = p.Active
		p.VotesCount++
		p.Active = true
		p.LastVoteTimestamp = &ts
	})
	if err != nil {
		return err
	}

	// roll the active window forward to this vote
	removed, err := a.store.DeactivateInactiveVoters(ctx, a.dao, ts.Add(-domain.ACTIVE_VOTER_WINDOW))
	if err != nil {
		return err
	}

	token, err := a.loadToken(ctx)
	if err != nil {
		return err
	}

	active := new(big.Int).Sub(token.ActiveSupply.BigInt(), removed.BigInt())
	if !wasActive {
		active.Add(active, power.VotingPower.BigInt())
	}
	if err := a.setMetric(ctx, token, domain.MetricTypeActiveSupply, active); err != nil {
		return err
	}

	return a.store.SaveToken(ctx, token)
}

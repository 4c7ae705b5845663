package aggregator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/store/schema"
)

func (a *application) applyProposalCreated(ctx context.Context) error {
	ev := a.event
	proposer := domain.NormalizeAddress(ev.Proposer)

	proposal := &schema.ProposalOnchain{
		ID:           ev.ProposalID,
		DaoID:        a.dao,
		TxHash:       ev.TxHash,
		Proposer:     proposer,
		StartBlock:   ev.StartBlock,
		EndBlock:     ev.EndBlock,
		Description:  ev.Description,
		Status:       domain.ProposalStatusPending,
		ForVotes:     decimal.Zero,
		AgainstVotes: decimal.Zero,
		AbstainVotes: decimal.Zero,
		Timestamp:    a.timestamp(),
	}

	var err error
	if proposal.Targets, err = jsonList(domain.NormalizeAddresses(ev.Targets)); err != nil {
		return err
	}
	if proposal.Values, err = jsonList(ev.Values); err != nil {
		return err
	}
	if proposal.Signatures, err = jsonList(ev.Signatures); err != nil {
		return err
	}
	if proposal.Calldatas, err = jsonList(ev.Calldatas); err != nil {
		return err
	}

	if err := created(a.store.CreateProposal(ctx, proposal)); err != nil {
		return err
	}

	if err := a.store.EnsureAccounts(ctx, proposer); err != nil {
		return err
	}

	_, err = a.updatePower(ctx, proposer, func(p *schema.AccountPower) {
		p.ProposalsCount++
	})
	return err
}

// setProposalStatus applies a lifecycle event; these statuses are never recomputed
func (a *application) setProposalStatus(ctx context.Context, status domain.ProposalStatus) error {
	return a.store.UpdateProposalStatus(ctx, a.dao, a.event.ProposalID, status)
}

func jsonList(items []string) (datatypes.JSON, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal proposal field: %w", err)
	}
	return datatypes.JSON(data), nil
}

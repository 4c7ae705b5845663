package aggregator

import (
	"context"
	"math/big"

	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/store/schema"
)

func (a *application) applyDelegateChanged(ctx context.Context) error {
	ev := a.event
	delegator := domain.NormalizeAddress(ev.Delegator)
	from := domain.NormalizeAddress(ev.FromDelegate)
	to := domain.NormalizeAddress(ev.ToDelegate)

	if err := created(a.store.CreateDelegation(ctx, &schema.Delegation{
		ID:               ev.ID(),
		DaoID:            a.dao,
		TxHash:           ev.TxHash,
		Delegator:        delegator,
		Delegate:         to,
		PreviousDelegate: from,
		BlockNumber:      ev.BlockNumber,
		Timestamp:        a.timestamp(),
	})); err != nil {
		return err
	}

	if err := a.store.EnsureAccounts(ctx, delegator, from, to); err != nil {
		return err
	}

	if _, err := a.updatePower(ctx, delegator, func(p *schema.AccountPower) {
		p.Delegate = to
	}); err != nil {
		return err
	}

	if from != domain.ETHEREUM_ZERO_ADDRESS {
		if _, err := a.updatePower(ctx, from, func(p *schema.AccountPower) {
			p.DelegationsCount--
		}); err != nil {
			return err
		}
	}

	_, err := a.updatePower(ctx, to, func(p *schema.AccountPower) {
		p.DelegationsCount++
	})
	return err
}

func (a *application) applyDelegateVotesChanged(ctx context.Context) error {
	ev := a.event
	delegate := domain.NormalizeAddress(ev.Delegate)

	previous, err := domain.ParseAmount(ev.PreviousBalance)
	if err != nil {
		return err
	}
	current, err := domain.ParseAmount(ev.NewBalance)
	if err != nil {
		return err
	}
	delta := new(big.Int).Sub(current, previous)

	if err := created(a.store.CreateVotingPowerHistory(ctx, &schema.VotingPowerHistory{
		ID:                  ev.ID(),
		DaoID:               a.dao,
		AccountID:           delegate,
		TxHash:              ev.TxHash,
		PreviousVotingPower: toDecimal(previous),
		NewVotingPower:      toDecimal(current),
		Delta:               toDecimal(delta),
		BlockNumber:         ev.BlockNumber,
		Timestamp:           a.timestamp(),
	})); err != nil {
		return err
	}

	if err := a.store.EnsureAccounts(ctx, delegate); err != nil {
		return err
	}

	power, err := a.updatePower(ctx, delegate, func(p *schema.AccountPower) {
		p.VotingPower = toDecimal(current)
	})
	if err != nil {
		return err
	}

	token, err := a.loadToken(ctx)
	if err != nil {
		return err
	}
	if err := a.adjustMetric(ctx, token, domain.MetricTypeDelegatedSupply, delta); err != nil {
		return err
	}
	if power.Active {
		if err := a.adjustMetric(ctx, token, domain.MetricTypeActiveSupply, delta); err != nil {
			return err
		}
	}

	return a.store.SaveToken(ctx, token)
}

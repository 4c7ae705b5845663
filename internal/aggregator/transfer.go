package aggregator

import (
	"context"
	"math/big"

	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/registry"
	"github.com/blockful/anticapture-sub000/internal/store/schema"
)

var roleMetrics = map[registry.Role]domain.MetricType{
	registry.RoleLending:  domain.MetricTypeLendingSupply,
	registry.RoleCEX:      domain.MetricTypeCexSupply,
	registry.RoleDEX:      domain.MetricTypeDexSupply,
	registry.RoleTreasury: domain.MetricTypeTreasury,
}

func (a *application) applyTransfer(ctx context.Context) error {
	ev := a.event
	from := domain.NormalizeAddress(ev.From)
	to := domain.NormalizeAddress(ev.To)

	value, err := domain.ParseAmount(ev.Value)
	if err != nil {
		return err
	}

	if err := created(a.store.CreateTransfer(ctx, &schema.Transfer{
		ID:            ev.ID(),
		DaoID:         a.dao,
		TokenID:       a.tokenID,
		TxHash:        ev.TxHash,
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        toDecimal(value),
		BlockNumber:   ev.BlockNumber,
		Timestamp:     a.timestamp(),
	})); err != nil {
		return err
	}

	if err := a.store.EnsureAccounts(ctx, from, to); err != nil {
		return err
	}
	if err := a.store.AdjustAccountBalance(ctx, to, a.tokenID, toDecimal(value)); err != nil {
		return err
	}
	if err := a.store.AdjustAccountBalance(ctx, from, a.tokenID, toDecimal(new(big.Int).Neg(value))); err != nil {
		return err
	}

	token, err := a.loadToken(ctx)
	if err != nil {
		return err
	}

	circulatingChanged := false

	for _, role := range registry.SupplyRoles {
		delta := a.flow(role, from, to, value)
		if delta.Sign() == 0 {
			continue
		}
		metric := roleMetrics[role]
		if err := a.adjustMetric(ctx, token, metric, delta); err != nil {
			return err
		}
		if metric == domain.MetricTypeTreasury {
			circulatingChanged = true
		}
	}

	// sinks mint when sending and burn when receiving, the reverse of a supply role
	supplyDelta := new(big.Int).Neg(a.flow(registry.RoleSink, from, to, value))
	if supplyDelta.Sign() != 0 {
		if err := a.adjustMetric(ctx, token, domain.MetricTypeTotalSupply, supplyDelta); err != nil {
			return err
		}
		circulatingChanged = true
	}

	if circulatingChanged {
		circulating := new(big.Int).Sub(token.TotalSupply.BigInt(), token.Treasury.BigInt())
		if err := a.setMetric(ctx, token, domain.MetricTypeCirculatingSupply, circulating); err != nil {
			return err
		}
	}

	return a.store.SaveToken(ctx, token)
}

// flow returns value flowing into the role's addresses: +value when to is a member,
// -value when from is a member, zero for transfers between two members
func (a *application) flow(role registry.Role, from, to string, value *big.Int) *big.Int {
	delta := new(big.Int)
	if a.classification.IsMember(a.dao, role, to) {
		delta.Add(delta, value)
	}
	if a.classification.IsMember(a.dao, role, from) {
		delta.Sub(delta, value)
	}
	return delta
}

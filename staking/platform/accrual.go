package platform

import (
	"errors"

	"github.com/cryptogopniks/GopStake/common/quantity"
	"github.com/cryptogopniks/GopStake/staking/api"
	"github.com/cryptogopniks/GopStake/staking/rewards"
	stakingState "github.com/cryptogopniks/GopStake/staking/state"
)

// terms are the reward terms of a collection together with its balance.
type terms struct {
	address    api.Address
	collection *api.Collection
	// balance is nil for minting collections.
	balance *api.Funds
	dirty   bool
}

// accrue computes the deliverable reward of an item, debits it from the
// balance of spending collections and advances the item's last claim.
//
// For spending collections the reward is clamped to the balance and the
// shortfall is forfeited.
func (t *terms) accrue(item *api.StakedItem, now api.Timestamp) *quantity.Quantity {
	amount := rewards.Accrued(item.LastClaim, now, t.collection.DailyRewards)
	if now > item.LastClaim {
		item.LastClaim = now
	}

	if t.collection.EmissionType != api.EmissionSpending {
		return amount
	}
	if t.balance == nil {
		return quantity.NewQuantity()
	}
	paid, err := t.balance.Amount.SubUpTo(amount)
	if err != nil {
		return quantity.NewQuantity()
	}
	if !paid.IsZero() {
		t.dirty = true
	}
	return paid
}

// termsCache loads collection terms at most once per transaction.
type termsCache struct {
	state   *stakingState.ImmutableState
	entries map[api.Address]*terms
	order   []api.Address
}

func newTermsCache(state *stakingState.ImmutableState) *termsCache {
	return &termsCache{
		state:   state,
		entries: make(map[api.Address]*terms),
	}
}

// get returns the terms of a collection, nil if the collection is not
// registered.
func (c *termsCache) get(addr api.Address) (*terms, error) {
	if t, ok := c.entries[addr]; ok {
		return t, nil
	}

	coll, err := c.state.Collection(addr)
	switch {
	case err == nil:
	case errors.Is(err, api.ErrCollectionIsNotFound):
		c.entries[addr] = nil
		return nil, nil
	default:
		return nil, err
	}

	t := &terms{address: addr, collection: coll}
	if coll.EmissionType == api.EmissionSpending {
		if t.balance, err = c.state.CollectionBalance(addr); err != nil {
			return nil, err
		}
	}
	c.entries[addr] = t
	c.order = append(c.order, addr)
	return t, nil
}

// flush persists modified balances.
func (c *termsCache) flush(ctx *Context, state *stakingState.MutableState) error {
	for _, addr := range c.order {
		t := c.entries[addr]
		if t == nil || !t.dirty {
			continue
		}
		if err := state.SetCollectionBalance(addr, t.balance); err != nil {
			return err
		}
		ctx.EmitEvent(api.Event{Balance: &api.BalanceEvent{
			Collection: addr,
			Balance:    *t.balance,
		}})
		t.dirty = false
	}
	return nil
}

type payout struct {
	recipient api.Address
	currency  api.Currency
	emission  api.EmissionType
	amount    *quantity.Quantity
}

// payouts aggregates rewards per recipient, currency and emission type in
// first-seen order.
type payouts struct {
	list []*payout
}

func (ps *payouts) add(recipient api.Address, currency api.Currency, emission api.EmissionType, amount *quantity.Quantity) {
	if amount.IsZero() {
		return
	}
	for _, p := range ps.list {
		if p.recipient == recipient && p.emission == emission && p.currency.Token.Equal(currency.Token) {
			_ = p.amount.Add(amount)
			return
		}
	}
	ps.list = append(ps.list, &payout{
		recipient: recipient,
		currency:  currency,
		emission:  emission,
		amount:    amount.Clone(),
	})
}

// emit turns the aggregated payouts into instructions: a transfer for
// spending rewards and a mint request for minting rewards.
func (ps *payouts) emit(ctx *Context) error {
	paid := make(map[api.Address][]api.Funds)
	var recipients []api.Address
	for _, p := range ps.list {
		switch p.emission {
		case api.EmissionSpending:
			ctx.transferOut(p.recipient, p.amount, p.currency)
		case api.EmissionMinting:
			if ctx.cfg.Minter == nil {
				return api.ErrParameterIsNotFound
			}
			denom, err := p.currency.Token.NativeDenom()
			if err != nil {
				return err
			}
			ctx.Emit(api.NewMint(*ctx.cfg.Minter, p.recipient, denom, p.amount))
		default:
			return api.ErrActionByEmissionType
		}

		if _, ok := paid[p.recipient]; !ok {
			recipients = append(recipients, p.recipient)
		}
		paid[p.recipient] = append(paid[p.recipient], api.NewFunds(p.amount, p.currency))
	}

	for _, r := range recipients {
		ctx.EmitEvent(api.Event{RewardsPaid: &api.RewardsPaidEvent{
			Staker: r,
			Funds:  paid[r],
		}})
	}
	return nil
}

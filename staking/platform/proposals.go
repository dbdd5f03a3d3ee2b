package platform

import (
	"fmt"

	"github.com/cryptogopniks/GopStake/common/accessctl"
	"github.com/cryptogopniks/GopStake/common/quantity"
	"github.com/cryptogopniks/GopStake/staking/api"
	stakingState "github.com/cryptogopniks/GopStake/staking/state"
)

// checkCollision fails with CollectionDuplication if the address is taken
// or the name is used by any live collection other than the excluded one.
func checkCollision(state *stakingState.ImmutableState, addr *api.Address, name string, exclude *api.Address) error {
	collections, err := state.Collections()
	if err != nil {
		return err
	}
	for _, e := range collections {
		if exclude != nil && e.Address == *exclude {
			continue
		}
		if addr != nil && e.Address == *addr {
			return fmt.Errorf("%w: address %s is taken", api.ErrCollectionDuplication, e.Address)
		}
		if e.Collection.Name == name {
			return fmt.Errorf("%w: name '%s' is taken by %s", api.ErrCollectionDuplication, name, e.Address)
		}
	}
	return nil
}

// checkUpdateTarget verifies that an update proposal targets a live
// collection and does not move it onto a taken address or name.
func checkUpdateTarget(state *stakingState.ImmutableState, upd *api.UpdateCollectionProposal) (*api.Collection, error) {
	current, err := state.Collection(upd.CollectionAddress)
	if err != nil {
		return nil, err
	}

	var newAddr *api.Address
	if upd.NewCollectionAddress != nil && *upd.NewCollectionAddress != upd.CollectionAddress {
		newAddr = upd.NewCollectionAddress
	}
	if err = checkCollision(state, newAddr, upd.NewCollection.Name, &upd.CollectionAddress); err != nil {
		return nil, err
	}
	return current, nil
}

func (p *Platform) createProposal(ctx *Context, state *stakingState.MutableState, body *api.CreateProposalBody) error {
	if err := ctx.nonpayable(); err != nil {
		return err
	}
	if err := ctx.authorize(accessctl.AdminOrOwner()); err != nil {
		return err
	}
	if err := body.ValidateBasic(); err != nil {
		return err
	}

	switch {
	case body.Content.AddCollection != nil:
		add := body.Content.AddCollection
		if err := checkCollision(state.ImmutableState, &add.CollectionAddress, add.Collection.Name, nil); err != nil {
			return err
		}
	case body.Content.UpdateCollection != nil:
		if _, err := checkUpdateTarget(state.ImmutableState, body.Content.UpdateCollection); err != nil {
			return err
		}
	}

	id, err := state.NextProposalID()
	if err != nil {
		return err
	}
	proposal := api.Proposal{
		ID:      id,
		Status:  api.StatusActive,
		Content: body.Content,
		Price:   body.Price,
	}
	if err = state.SetProposal(&proposal); err != nil {
		return fmt.Errorf("failed to set proposal: %w", err)
	}

	ctx.Logger().Debug("CreateProposal: created proposal",
		"id", id,
	)
	ctx.EmitEvent(api.Event{Proposal: &api.ProposalEvent{ID: id, Status: api.StatusActive}})

	return nil
}

func (p *Platform) rejectProposal(ctx *Context, state *stakingState.MutableState, body *api.ProposalIDBody) error {
	if err := ctx.nonpayable(); err != nil {
		return err
	}
	if err := ctx.authorize(accessctl.AdminOrOwner()); err != nil {
		return err
	}

	proposal, err := state.Proposal(body.ID)
	if err != nil {
		return err
	}
	if proposal.Status != api.StatusActive {
		return api.ErrWrongProposalStatus
	}

	proposal.Status = api.StatusRejected
	if err = state.SetProposal(proposal); err != nil {
		return fmt.Errorf("failed to set proposal: %w", err)
	}

	ctx.EmitEvent(api.Event{Proposal: &api.ProposalEvent{ID: proposal.ID, Status: api.StatusRejected}})

	return nil
}

// verifyPrice checks that the attached payment matches the price exactly.
// A zero price requires no payment.
func (ctx *Context) verifyPrice(price *api.Funds) error {
	if price.Amount.IsZero() {
		return ctx.nonpayable()
	}
	payment, err := ctx.singlePayment()
	if err != nil {
		return err
	}
	if payment.Amount.Cmp(&price.Amount) != 0 || !payment.Currency.Token.Equal(price.Currency.Token) {
		return api.ErrWrongFundsCombination
	}
	return nil
}

func (p *Platform) acceptProposal(ctx *Context, state *stakingState.MutableState, body *api.ProposalIDBody) error {
	proposal, err := state.Proposal(body.ID)
	if err != nil {
		return err
	}
	if err = ctx.verifyPrice(&proposal.Price); err != nil {
		return err
	}
	if proposal.Status != api.StatusActive {
		return api.ErrWrongProposalStatus
	}

	var events []api.Event
	switch {
	case proposal.Content.AddCollection != nil:
		events, err = p.acceptAddCollection(ctx, state, proposal.Content.AddCollection)
	case proposal.Content.UpdateCollection != nil:
		events, err = p.acceptUpdateCollection(ctx, state, proposal.Content.UpdateCollection)
	default:
		err = api.ErrInvalidArgument
	}
	if err != nil {
		return err
	}

	if err = addFees(state, &proposal.Price); err != nil {
		return err
	}

	proposal.Status = api.StatusAccepted
	if err = state.SetProposal(proposal); err != nil {
		return fmt.Errorf("failed to set proposal: %w", err)
	}

	ctx.Logger().Debug("AcceptProposal: accepted proposal",
		"id", proposal.ID,
	)
	for _, ev := range events {
		ctx.EmitEvent(ev)
	}
	ctx.EmitEvent(api.Event{Proposal: &api.ProposalEvent{ID: proposal.ID, Status: api.StatusAccepted}})

	return nil
}

func (p *Platform) acceptAddCollection(ctx *Context, state *stakingState.MutableState, add *api.AddCollectionProposal) ([]api.Event, error) {
	if err := checkCollision(state.ImmutableState, &add.CollectionAddress, add.Collection.Name, nil); err != nil {
		return nil, err
	}
	if ctx.caller != add.Collection.Owner {
		return nil, api.ErrUnauthorized
	}

	if err := state.SetCollection(add.CollectionAddress, &add.Collection); err != nil {
		return nil, fmt.Errorf("failed to set collection: %w", err)
	}
	if err := restartOrphans(ctx, state, add.CollectionAddress); err != nil {
		return nil, err
	}
	if add.Collection.EmissionType == api.EmissionSpending {
		balance := api.NewFunds(quantity.NewQuantity(), add.Collection.StakingCurrency)
		if err := state.SetCollectionBalance(add.CollectionAddress, &balance); err != nil {
			return nil, fmt.Errorf("failed to set collection balance: %w", err)
		}
	}

	coll := add.Collection
	return []api.Event{{Collection: &api.CollectionEvent{Address: add.CollectionAddress, Collection: &coll}}}, nil
}

func (p *Platform) acceptUpdateCollection(ctx *Context, state *stakingState.MutableState, upd *api.UpdateCollectionProposal) ([]api.Event, error) {
	current, err := checkUpdateTarget(state.ImmutableState, upd)
	if err != nil {
		return nil, err
	}
	if ctx.caller != upd.NewCollection.Owner {
		return nil, api.ErrUnauthorized
	}

	oldAddr, newAddr := upd.CollectionAddress, upd.ResultAddress()
	next := &upd.NewCollection

	var balance *api.Funds
	if current.EmissionType == api.EmissionSpending {
		if balance, err = state.CollectionBalance(oldAddr); err != nil {
			return nil, err
		}
	}

	var events []api.Event
	var out payouts

	// Settle outstanding rewards at the old terms before they change.
	if current.TermsDiffer(next) {
		t := &terms{address: oldAddr, collection: current, balance: balance}
		stakers, err := state.CollectionStakers(oldAddr)
		if err != nil {
			return nil, err
		}
		for _, addr := range stakers {
			staker, err := state.Staker(addr)
			if err != nil {
				return nil, err
			}
			for _, c := range staker.Collections {
				if c.CollectionAddress != oldAddr {
					continue
				}
				for i := range c.Items {
					item := &c.Items[i]
					out.add(addr, current.StakingCurrency, current.EmissionType, t.accrue(item, ctx.now))
					if err = state.SetStakedItem(addr, oldAddr, item); err != nil {
						return nil, fmt.Errorf("failed to set staked item: %w", err)
					}
				}
			}
		}
		ctx.Logger().Debug("UpdateCollection: settled stakers at old terms",
			"collection", oldAddr,
			"stakers", len(stakers),
		)
	}

	// The remaining balance cannot carry over into a different currency or
	// into minting terms, it goes back to the old owner.
	if balance != nil && !balance.Amount.IsZero() &&
		(!current.StakingCurrency.Equal(next.StakingCurrency) || next.EmissionType != api.EmissionSpending) {
		out.add(current.Owner, current.StakingCurrency, api.EmissionSpending, &balance.Amount)
		balance.Amount = *quantity.NewQuantity()
	}

	if newAddr != oldAddr {
		if err = restartOrphans(ctx, state, newAddr); err != nil {
			return nil, err
		}
		if err = state.RemoveCollection(oldAddr); err != nil {
			return nil, err
		}
		if err = state.MoveCollectionItems(oldAddr, newAddr); err != nil {
			return nil, err
		}
	}
	if err = state.SetCollection(newAddr, next); err != nil {
		return nil, fmt.Errorf("failed to set collection: %w", err)
	}

	if balance != nil {
		if err = state.RemoveCollectionBalance(oldAddr); err != nil {
			return nil, err
		}
	}
	if next.EmissionType == api.EmissionSpending {
		amount := quantity.NewQuantity()
		if balance != nil {
			amount = &balance.Amount
		}
		nextBalance := api.NewFunds(amount, next.StakingCurrency)
		if err = state.SetCollectionBalance(newAddr, &nextBalance); err != nil {
			return nil, fmt.Errorf("failed to set collection balance: %w", err)
		}
		events = append(events, api.Event{Balance: &api.BalanceEvent{Collection: newAddr, Balance: nextBalance}})
	}

	if err = out.emit(ctx); err != nil {
		return nil, err
	}

	if newAddr != oldAddr {
		events = append(events, api.Event{Collection: &api.CollectionEvent{Address: oldAddr, Removed: true}})
	}
	coll := *next
	events = append(events, api.Event{Collection: &api.CollectionEvent{Address: newAddr, Collection: &coll}})
	return events, nil
}

// restartOrphans restarts accrual of items left staked under an address
// whose collection was removed, once the address is registered again.
func restartOrphans(ctx *Context, state *stakingState.MutableState, addr api.Address) error {
	n, err := state.RestartCollectionItems(addr, ctx.now)
	if err != nil {
		return err
	}
	if n > 0 {
		ctx.Logger().Info("restarted items of a removed collection",
			"collection", addr,
			"items", n,
		)
	}
	return nil
}

package platform

import (
	"fmt"

	"github.com/cryptogopniks/GopStake/common/accessctl"
	"github.com/cryptogopniks/GopStake/staking/api"
	stakingState "github.com/cryptogopniks/GopStake/staking/state"
)

func (p *Platform) stake(ctx *Context, state *stakingState.MutableState, body *api.StakeBody) error {
	if err := ctx.nonpayable(); err != nil {
		return err
	}
	if err := ctx.authorize(accessctl.Any()); err != nil {
		return err
	}
	if err := body.ValidateBasic(); err != nil {
		return err
	}

	for _, c := range body.Collections {
		if _, err := state.Collection(c.CollectionAddress); err != nil {
			return err
		}
		for _, id := range c.Items {
			item, err := state.StakedItem(ctx.caller, c.CollectionAddress, id)
			if err != nil {
				return err
			}
			if item != nil {
				return fmt.Errorf("%w: item %s of %s is already staked", api.ErrAssetIsNotFound, id, c.CollectionAddress)
			}
		}
	}

	if err := state.EnsureStaker(ctx.caller); err != nil {
		return err
	}
	for _, c := range body.Collections {
		for _, id := range c.Items {
			item := api.StakedItem{
				ItemID:       id,
				StakingStart: ctx.now,
				LastClaim:    ctx.now,
			}
			if err := state.SetStakedItem(ctx.caller, c.CollectionAddress, &item); err != nil {
				return fmt.Errorf("failed to set staked item: %w", err)
			}
			ctx.Emit(api.NewCustody(c.CollectionAddress, id, ctx.caller, ctx.self))
		}

		ctx.EmitEvent(api.Event{Staked: &api.StakedEvent{
			Staker:     ctx.caller,
			Collection: c.CollectionAddress,
			Items:      c.Items,
		}})
	}

	ctx.Logger().Debug("Stake: staked items",
		"collections", len(body.Collections),
	)

	return nil
}

func (p *Platform) unstake(ctx *Context, state *stakingState.MutableState, body *api.UnstakeBody) error {
	if err := ctx.nonpayable(); err != nil {
		return err
	}
	if err := body.ValidateBasic(); err != nil {
		return err
	}

	staker, err := state.Staker(ctx.caller)
	if err != nil {
		return err
	}
	if staker == nil {
		return api.ErrCollectionIsNotFound
	}

	// Validate the whole request before touching anything.
	staked := make(map[api.Address]map[api.ItemID]api.StakedItem, len(staker.Collections))
	for _, c := range staker.Collections {
		items := make(map[api.ItemID]api.StakedItem, len(c.Items))
		for _, it := range c.Items {
			items[it.ItemID] = it
		}
		staked[c.CollectionAddress] = items
	}
	for _, c := range body.Collections {
		items, ok := staked[c.CollectionAddress]
		if !ok {
			return fmt.Errorf("%w: nothing staked in %s", api.ErrCollectionIsNotFound, c.CollectionAddress)
		}
		for _, id := range c.Items {
			if _, ok = items[id]; !ok {
				return fmt.Errorf("%w: item %s of %s is not staked", api.ErrAssetIsNotFound, id, c.CollectionAddress)
			}
		}
	}

	cache := newTermsCache(state.ImmutableState)
	var out payouts
	for _, c := range body.Collections {
		t, err := cache.get(c.CollectionAddress)
		if err != nil {
			return err
		}

		for _, id := range c.Items {
			item := staked[c.CollectionAddress][id]
			if t != nil {
				amount := t.accrue(&item, ctx.now)
				out.add(ctx.caller, t.collection.StakingCurrency, t.collection.EmissionType, amount)
			}

			if err = state.RemoveStakedItem(ctx.caller, c.CollectionAddress, id); err != nil {
				return fmt.Errorf("failed to remove staked item: %w", err)
			}
			ctx.Emit(api.NewCustody(c.CollectionAddress, id, ctx.self, ctx.caller))
		}

		if t == nil {
			ctx.Logger().Info("Unstake: returning items of a removed collection without rewards",
				"collection", c.CollectionAddress,
			)
		}
		ctx.EmitEvent(api.Event{Unstaked: &api.UnstakedEvent{
			Staker:     ctx.caller,
			Collection: c.CollectionAddress,
			Items:      c.Items,
		}})
	}

	if err = cache.flush(ctx, state); err != nil {
		return err
	}
	return out.emit(ctx)
}

func (p *Platform) claimStakingRewards(ctx *Context, state *stakingState.MutableState) error {
	if err := ctx.nonpayable(); err != nil {
		return err
	}

	staker, err := state.Staker(ctx.caller)
	if err != nil {
		return err
	}
	if staker == nil {
		return fmt.Errorf("%w: %s is not a staker", api.ErrParameterIsNotFound, ctx.caller)
	}

	cache := newTermsCache(state.ImmutableState)
	var out payouts
	for _, c := range staker.Collections {
		t, err := cache.get(c.CollectionAddress)
		if err != nil {
			return err
		}
		if t == nil {
			continue
		}

		for i := range c.Items {
			item := &c.Items[i]
			amount := t.accrue(item, ctx.now)
			out.add(ctx.caller, t.collection.StakingCurrency, t.collection.EmissionType, amount)

			if err = state.SetStakedItem(ctx.caller, c.CollectionAddress, item); err != nil {
				return fmt.Errorf("failed to set staked item: %w", err)
			}
		}
	}

	if err = cache.flush(ctx, state); err != nil {
		return err
	}
	return out.emit(ctx)
}

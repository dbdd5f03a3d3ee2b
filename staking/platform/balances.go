package platform

import (
	"fmt"

	"github.com/cryptogopniks/GopStake/common/accessctl"
	"github.com/cryptogopniks/GopStake/common/quantity"
	"github.com/cryptogopniks/GopStake/staking/api"
	stakingState "github.com/cryptogopniks/GopStake/staking/state"
)

// spendingCollection loads a collection that the caller owns and that pays
// rewards from its balance.
func spendingCollection(ctx *Context, state *stakingState.MutableState, addr api.Address) (*api.Collection, *api.Funds, error) {
	coll, err := state.Collection(addr)
	if err != nil {
		return nil, nil, err
	}
	if ctx.caller != coll.Owner {
		return nil, nil, api.ErrUnauthorized
	}
	if coll.EmissionType != api.EmissionSpending {
		return nil, nil, api.ErrActionByEmissionType
	}

	balance, err := state.CollectionBalance(addr)
	if err != nil {
		return nil, nil, err
	}
	if balance == nil {
		b := api.NewFunds(quantity.NewQuantity(), coll.StakingCurrency)
		balance = &b
	}
	return coll, balance, nil
}

func (p *Platform) depositTokens(ctx *Context, state *stakingState.MutableState, body *api.DepositTokensBody) error {
	coll, balance, err := spendingCollection(ctx, state, body.CollectionAddress)
	if err != nil {
		return err
	}

	payment, err := ctx.singlePayment()
	if err != nil {
		return err
	}
	if !payment.Currency.Token.Equal(coll.StakingCurrency.Token) || payment.Amount.IsZero() {
		return api.ErrWrongFundsCombination
	}

	if err = balance.Amount.Add(&payment.Amount); err != nil {
		return err
	}
	if err = state.SetCollectionBalance(body.CollectionAddress, balance); err != nil {
		return fmt.Errorf("failed to set collection balance: %w", err)
	}

	ctx.Logger().Debug("DepositTokens: deposited",
		"collection", body.CollectionAddress,
		"amount", payment.Amount,
	)
	ctx.EmitEvent(api.Event{Balance: &api.BalanceEvent{Collection: body.CollectionAddress, Balance: *balance}})

	return nil
}

func (p *Platform) withdrawTokens(ctx *Context, state *stakingState.MutableState, body *api.WithdrawTokensBody) error {
	if err := ctx.nonpayable(); err != nil {
		return err
	}
	coll, balance, err := spendingCollection(ctx, state, body.CollectionAddress)
	if err != nil {
		return err
	}
	if body.Amount.IsZero() {
		return fmt.Errorf("%w: zero withdrawal", api.ErrInvalidArgument)
	}

	if err = balance.Amount.Sub(&body.Amount); err != nil {
		ctx.Logger().Error("WithdrawTokens: withdrawal greater than balance",
			"err", err,
			"collection", body.CollectionAddress,
			"amount", body.Amount,
		)
		return fmt.Errorf("staking: withdraw %s from %s: %w", body.Amount, body.CollectionAddress, err)
	}
	if err = state.SetCollectionBalance(body.CollectionAddress, balance); err != nil {
		return fmt.Errorf("failed to set collection balance: %w", err)
	}

	ctx.transferOut(coll.Owner, &body.Amount, coll.StakingCurrency)
	ctx.EmitEvent(api.Event{Balance: &api.BalanceEvent{Collection: body.CollectionAddress, Balance: *balance}})

	return nil
}

func (p *Platform) removeCollection(ctx *Context, state *stakingState.MutableState, body *api.RemoveCollectionBody) error {
	if err := ctx.nonpayable(); err != nil {
		return err
	}
	if err := ctx.authorize(accessctl.AdminOrOwner()); err != nil {
		return err
	}

	coll, err := state.Collection(body.Address)
	if err != nil {
		return err
	}
	balance, err := state.CollectionBalance(body.Address)
	if err != nil {
		return err
	}

	if err = state.RemoveCollection(body.Address); err != nil {
		return err
	}
	if balance != nil {
		if err = state.RemoveCollectionBalance(body.Address); err != nil {
			return err
		}
		ctx.transferOut(coll.Owner, &balance.Amount, balance.Currency)
	}

	ctx.Logger().Info("RemoveCollection: removed collection",
		"collection", body.Address,
	)
	ctx.EmitEvent(api.Event{Collection: &api.CollectionEvent{Address: body.Address, Removed: true}})

	return nil
}

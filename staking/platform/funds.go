package platform

import (
	"fmt"

	"github.com/cryptogopniks/GopStake/common/accessctl"
	"github.com/cryptogopniks/GopStake/common/quantity"
	"github.com/cryptogopniks/GopStake/staking/api"
	"github.com/cryptogopniks/GopStake/staking/rewards"
	stakingState "github.com/cryptogopniks/GopStake/staking/state"
)

// addFees credits a proposal payment to the fee ledger, appending a new
// entry the first time a currency is seen.
func addFees(state *stakingState.MutableState, price *api.Funds) error {
	if price.Amount.IsZero() {
		return nil
	}

	ledger, err := state.FeeLedger()
	if err != nil {
		return err
	}

	var found bool
	for i := range ledger {
		if ledger[i].Currency.Token.Equal(price.Currency.Token) {
			if err = ledger[i].Amount.Add(&price.Amount); err != nil {
				return err
			}
			found = true
			break
		}
	}
	if !found {
		ledger = append(ledger, api.NewFunds(&price.Amount, price.Currency))
	}

	return state.SetFeeLedger(ledger)
}

func (p *Platform) distributeFunds(ctx *Context, state *stakingState.MutableState, body *api.DistributeFundsBody) error {
	if err := ctx.nonpayable(); err != nil {
		return err
	}
	if err := ctx.authorize(accessctl.AdminOrOwner()); err != nil {
		return err
	}
	for _, r := range body.Recipients {
		if !r.Address.IsValid() {
			return fmt.Errorf("%w: malformed recipient", api.ErrInvalidArgument)
		}
	}
	if err := rewards.ValidateWeights(body.Recipients); err != nil {
		return err
	}

	ledger, err := state.FeeLedger()
	if err != nil {
		return err
	}

	for i := range ledger {
		entry := &ledger[i]
		paid := quantity.NewQuantity()
		for _, r := range body.Recipients {
			share := rewards.WeightedShare(&entry.Amount, r.Weight)
			if share.IsZero() {
				continue
			}
			ctx.transferOut(r.Address, share, entry.Currency)
			ctx.EmitEvent(api.Event{Distribution: &api.DistributionEvent{
				Recipient: r.Address,
				Funds:     api.NewFunds(share, entry.Currency),
			}})
			_ = paid.Add(share)
		}
		if err = entry.Amount.Sub(paid); err != nil {
			return fmt.Errorf("staking: distribution exceeds fee ledger: %w", err)
		}
	}

	ctx.Logger().Debug("DistributeFunds: distributed fee ledger",
		"recipients", len(body.Recipients),
		"currencies", len(ledger),
	)

	return state.SetFeeLedger(ledger)
}

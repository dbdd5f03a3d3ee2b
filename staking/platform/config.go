package platform

import (
	"fmt"

	"github.com/cryptogopniks/GopStake/common/accessctl"
	"github.com/cryptogopniks/GopStake/staking/api"
	stakingState "github.com/cryptogopniks/GopStake/staking/state"
)

func (p *Platform) updateConfig(ctx *Context, state *stakingState.MutableState, body *api.UpdateConfigBody) error {
	if err := ctx.nonpayable(); err != nil {
		return err
	}
	if err := ctx.authorize(accessctl.Admin()); err != nil {
		return err
	}

	cfg := *ctx.cfg
	if body.Owner != nil {
		owner := *body.Owner
		cfg.Owner = &owner
	}
	if body.Minter != nil {
		minter := *body.Minter
		cfg.Minter = &minter
	}
	if err := cfg.ValidateBasic(); err != nil {
		return err
	}

	if err := state.SetConfig(&cfg); err != nil {
		return fmt.Errorf("failed to set config: %w", err)
	}
	ctx.cfg = &cfg

	ctx.Logger().Info("UpdateConfig: updated config",
		"owner", api.OptionalSubject(cfg.Owner),
		"minter", api.OptionalSubject(cfg.Minter),
	)
	ctx.EmitEvent(api.Event{Config: &api.ConfigEvent{Config: cfg}})

	return nil
}

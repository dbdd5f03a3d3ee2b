// Package minter implements the token minter: a registry of factory denoms
// and the authorization of mint, burn and metadata requests.
package minter

import (
	"fmt"

	"github.com/cryptogopniks/GopStake/common/accessctl"
	"github.com/cryptogopniks/GopStake/common/logging"
	"github.com/cryptogopniks/GopStake/minter/api"
	minterState "github.com/cryptogopniks/GopStake/minter/state"
	staking "github.com/cryptogopniks/GopStake/staking/api"
)

// Minter is the token minter.
type Minter struct {
	logger *logging.Logger

	self staking.Address
}

// Address returns the account address of the minter, which is the creator
// of every denom it issues.
func (m *Minter) Address() staking.Address {
	return m.self
}

type txContext struct {
	caller       staking.Address
	funds        []staking.Funds
	cfg          *api.Config
	instructions []api.Instruction
}

func (ctx *txContext) authorize(mode accessctl.Mode) error {
	if !ctx.cfg.Roles().IsAllowed(ctx.caller.Subject(), mode) {
		return api.ErrUnauthorized
	}
	return nil
}

func (ctx *txContext) nonpayable() error {
	if len(ctx.funds) > 0 {
		return api.ErrWrongFundsCombination
	}
	return nil
}

func (ctx *txContext) singlePayment() (*staking.Funds, error) {
	if len(ctx.funds) != 1 {
		return nil, api.ErrWrongFundsCombination
	}
	return &ctx.funds[0], nil
}

// ExecuteTx executes a minter transaction against the given state.
//
// On error the state may have been partially modified and must be
// discarded by the caller.
func (m *Minter) ExecuteTx(state *minterState.MutableState, tx *staking.Transaction) (*api.Result, error) {
	if err := tx.SanityCheck(); err != nil {
		return nil, fmt.Errorf("%w: %s", api.ErrInvalidArgument, err)
	}

	cfg, err := state.Config()
	if err != nil {
		return nil, err
	}
	ctx := &txContext{
		caller: tx.Caller,
		funds:  tx.Funds,
		cfg:    cfg,
	}

	switch tx.Call.Method {
	case api.MethodCreateDenom:
		var body api.CreateDenomBody
		if err = tx.Call.DecodeBody(&body); err != nil {
			return nil, fmt.Errorf("%w: %s", api.ErrInvalidArgument, err)
		}

		err = m.createDenom(ctx, state, &body)
	case api.MethodMintTokens:
		var body api.MintTokensBody
		if err = tx.Call.DecodeBody(&body); err != nil {
			return nil, fmt.Errorf("%w: %s", api.ErrInvalidArgument, err)
		}

		err = m.mintTokens(ctx, state, &body)
	case api.MethodBurnTokens:
		err = m.burnTokens(ctx, state)
	case api.MethodSetMetadata:
		var body api.SetMetadataBody
		if err = tx.Call.DecodeBody(&body); err != nil {
			return nil, fmt.Errorf("%w: %s", api.ErrInvalidArgument, err)
		}

		err = m.setMetadata(ctx, state, &body)
	case api.MethodUpdateConfig:
		var body api.UpdateConfigBody
		if err = tx.Call.DecodeBody(&body); err != nil {
			return nil, fmt.Errorf("%w: %s", api.ErrInvalidArgument, err)
		}

		err = m.updateConfig(ctx, state, &body)
	default:
		return nil, api.ErrInvalidArgument
	}
	if err != nil {
		m.logger.Debug("transaction failed",
			"err", err,
			"method", tx.Call.Method,
			"caller", tx.Caller,
		)
		return nil, err
	}

	return &api.Result{Instructions: ctx.instructions}, nil
}

func (m *Minter) createDenom(ctx *txContext, state *minterState.MutableState, body *api.CreateDenomBody) error {
	if err := ctx.authorize(accessctl.AdminOrOwner()); err != nil {
		return err
	}
	// The payment is the denom creation fee and stays with the minter.
	if _, err := ctx.singlePayment(); err != nil {
		return err
	}
	if !body.Owner.IsValid() {
		return fmt.Errorf("%w: malformed owner address", api.ErrInvalidArgument)
	}
	if err := api.ValidateSubdenom(body.Subdenom); err != nil {
		return err
	}

	denom := api.FullDenom(m.self, body.Subdenom)
	if err := state.AddDenom(body.Owner, denom); err != nil {
		return err
	}

	m.logger.Info("CreateDenom: registered denom",
		"denom", denom,
		"owner", body.Owner,
	)
	ctx.instructions = append(ctx.instructions, api.Instruction{
		CreateDenom: &api.CreateDenomInstruction{Denom: denom},
	})
	return nil
}

func (m *Minter) mintTokens(ctx *txContext, state *minterState.MutableState, body *api.MintTokensBody) error {
	if err := ctx.nonpayable(); err != nil {
		return err
	}
	if !body.Recipient.IsValid() || body.Amount.IsZero() {
		return fmt.Errorf("%w: malformed mint request", api.ErrInvalidArgument)
	}

	owner, err := state.DenomOwner(body.Denom)
	if err != nil {
		return err
	}
	if owner == nil {
		return fmt.Errorf("%w: %s", api.ErrAssetIsNotFound, body.Denom)
	}

	platform := ctx.cfg.StakingPlatform
	if ctx.caller != *owner && (platform == nil || ctx.caller != *platform) {
		return api.ErrUnauthorized
	}

	ctx.instructions = append(ctx.instructions, api.Instruction{
		MintTo: &api.MintToInstruction{
			Denom:     body.Denom,
			Amount:    *body.Amount.Clone(),
			Recipient: body.Recipient,
		},
	})
	return nil
}

func (m *Minter) burnTokens(ctx *txContext, state *minterState.MutableState) error {
	payment, err := ctx.singlePayment()
	if err != nil {
		return err
	}
	denom, err := payment.Currency.Token.NativeDenom()
	if err != nil {
		return fmt.Errorf("%w: only native denoms can be burned", api.ErrAssetIsNotFound)
	}

	owner, err := state.DenomOwner(denom)
	if err != nil {
		return err
	}
	if owner == nil {
		return fmt.Errorf("%w: %s", api.ErrAssetIsNotFound, denom)
	}

	ctx.instructions = append(ctx.instructions, api.Instruction{
		Burn: &api.BurnInstruction{
			Denom:  denom,
			Amount: *payment.Amount.Clone(),
		},
	})
	return nil
}

func (m *Minter) setMetadata(ctx *txContext, state *minterState.MutableState, body *api.SetMetadataBody) error {
	if err := ctx.nonpayable(); err != nil {
		return err
	}

	md := body.Metadata
	owner, err := state.DenomOwner(md.Base)
	if err != nil {
		return err
	}
	if owner == nil {
		return fmt.Errorf("%w: %s", api.ErrAssetIsNotFound, md.Base)
	}
	if err = ctx.authorize(accessctl.AdminOrOwnerOrSpecified(owner.Subject())); err != nil {
		return err
	}

	if err = state.SetMetadata(&md); err != nil {
		return err
	}
	ctx.instructions = append(ctx.instructions, api.Instruction{SetMetadata: &md})
	return nil
}

func (m *Minter) updateConfig(ctx *txContext, state *minterState.MutableState, body *api.UpdateConfigBody) error {
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
	if body.StakingPlatform != nil {
		platform := *body.StakingPlatform
		cfg.StakingPlatform = &platform
	}
	if err := cfg.ValidateBasic(); err != nil {
		return err
	}
	return state.SetConfig(&cfg)
}

// InitChain imports a genesis state into empty storage.
func (m *Minter) InitChain(state *minterState.MutableState, genesis *api.Genesis) error {
	if _, err := state.Config(); err == nil {
		return fmt.Errorf("minter: refusing to initialize non-empty state")
	}
	if err := genesis.SanityCheck(); err != nil {
		return fmt.Errorf("minter: genesis sanity check failed: %w", err)
	}

	if err := state.SetConfig(&genesis.Config); err != nil {
		return err
	}
	for _, od := range genesis.Denoms {
		for _, d := range od.Denoms {
			if err := state.AddDenom(od.Owner, d); err != nil {
				return err
			}
		}
	}
	return nil
}

// New creates a new minter whose account is the given address.
func New(self staking.Address) *Minter {
	return &Minter{
		logger: logging.GetLogger("minter"),
		self:   self,
	}
}

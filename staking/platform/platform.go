// Package platform implements the staking platform: the staking ledger, the
// reward accrual engine, the proposal state machine and the fee ledger.
//
// The platform is pure with respect to the outside world. Every operation
// reads and writes the state passed to it and returns the instructions the
// host must execute for the operation to take effect.
package platform

import (
	"fmt"

	"github.com/cryptogopniks/GopStake/common/logging"
	"github.com/cryptogopniks/GopStake/staking/api"
	stakingState "github.com/cryptogopniks/GopStake/staking/state"
)

// Platform is the staking platform.
type Platform struct {
	logger *logging.Logger

	self api.Address
}

// Address returns the account address of the platform, which holds escrowed
// payments, collection balances and staked items.
func (p *Platform) Address() api.Address {
	return p.self
}

// ExecuteTx executes a transaction against the given state.
//
// On error the state may have been partially modified and must be
// discarded by the caller.
func (p *Platform) ExecuteTx(state *stakingState.MutableState, tx *api.Transaction) (*api.Result, error) {
	if err := tx.SanityCheck(); err != nil {
		return nil, err
	}

	ctx, err := newContext(p.self, state, tx, p.logger)
	if err != nil {
		return nil, err
	}

	switch tx.Call.Method {
	case api.MethodStake:
		var body api.StakeBody
		if err = tx.Call.DecodeBody(&body); err != nil {
			return nil, fmt.Errorf("%w: %s", api.ErrInvalidArgument, err)
		}

		err = p.stake(ctx, state, &body)
	case api.MethodUnstake:
		var body api.UnstakeBody
		if err = tx.Call.DecodeBody(&body); err != nil {
			return nil, fmt.Errorf("%w: %s", api.ErrInvalidArgument, err)
		}

		err = p.unstake(ctx, state, &body)
	case api.MethodClaimStakingRewards:
		err = p.claimStakingRewards(ctx, state)
	case api.MethodUpdateConfig:
		var body api.UpdateConfigBody
		if err = tx.Call.DecodeBody(&body); err != nil {
			return nil, fmt.Errorf("%w: %s", api.ErrInvalidArgument, err)
		}

		err = p.updateConfig(ctx, state, &body)
	case api.MethodDistributeFunds:
		var body api.DistributeFundsBody
		if err = tx.Call.DecodeBody(&body); err != nil {
			return nil, fmt.Errorf("%w: %s", api.ErrInvalidArgument, err)
		}

		err = p.distributeFunds(ctx, state, &body)
	case api.MethodRemoveCollection:
		var body api.RemoveCollectionBody
		if err = tx.Call.DecodeBody(&body); err != nil {
			return nil, fmt.Errorf("%w: %s", api.ErrInvalidArgument, err)
		}

		err = p.removeCollection(ctx, state, &body)
	case api.MethodCreateProposal:
		var body api.CreateProposalBody
		if err = tx.Call.DecodeBody(&body); err != nil {
			return nil, fmt.Errorf("%w: %s", api.ErrInvalidArgument, err)
		}

		err = p.createProposal(ctx, state, &body)
	case api.MethodRejectProposal:
		var body api.ProposalIDBody
		if err = tx.Call.DecodeBody(&body); err != nil {
			return nil, fmt.Errorf("%w: %s", api.ErrInvalidArgument, err)
		}

		err = p.rejectProposal(ctx, state, &body)
	case api.MethodAcceptProposal:
		var body api.ProposalIDBody
		if err = tx.Call.DecodeBody(&body); err != nil {
			return nil, fmt.Errorf("%w: %s", api.ErrInvalidArgument, err)
		}

		err = p.acceptProposal(ctx, state, &body)
	case api.MethodDepositTokens:
		var body api.DepositTokensBody
		if err = tx.Call.DecodeBody(&body); err != nil {
			return nil, fmt.Errorf("%w: %s", api.ErrInvalidArgument, err)
		}

		err = p.depositTokens(ctx, state, &body)
	case api.MethodWithdrawTokens:
		var body api.WithdrawTokensBody
		if err = tx.Call.DecodeBody(&body); err != nil {
			return nil, fmt.Errorf("%w: %s", api.ErrInvalidArgument, err)
		}

		err = p.withdrawTokens(ctx, state, &body)
	default:
		return nil, api.ErrInvalidArgument
	}
	if err != nil {
		ctx.Logger().Debug("transaction failed",
			"err", err,
		)
		return nil, err
	}

	return ctx.Result(), nil
}

// New creates a new staking platform whose account is the given address.
func New(self api.Address) *Platform {
	return &Platform{
		logger: logging.GetLogger("staking/platform"),
		self:   self,
	}
}

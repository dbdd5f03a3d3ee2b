package platform

import (
	"github.com/cryptogopniks/GopStake/common/accessctl"
	"github.com/cryptogopniks/GopStake/common/logging"
	"github.com/cryptogopniks/GopStake/common/quantity"
	"github.com/cryptogopniks/GopStake/common/transaction"
	"github.com/cryptogopniks/GopStake/staking/api"
	stakingState "github.com/cryptogopniks/GopStake/staking/state"
)

// Context is the execution context of a single platform transaction.
type Context struct {
	logger *logging.Logger

	self   api.Address
	method transaction.MethodName
	caller api.Address
	funds  []api.Funds
	now    api.Timestamp

	cfg *api.Config

	instructions []api.Instruction
	events       []api.Event
}

// Logger returns the context logger.
func (ctx *Context) Logger() *logging.Logger {
	return ctx.logger
}

// Caller returns the transaction caller.
func (ctx *Context) Caller() api.Address {
	return ctx.caller
}

// Now returns the transaction timestamp.
func (ctx *Context) Now() api.Timestamp {
	return ctx.now
}

// Config returns the platform config as of the start of the transaction.
func (ctx *Context) Config() *api.Config {
	return ctx.cfg
}

// EmitEvent appends an event to the transaction result.
func (ctx *Context) EmitEvent(ev api.Event) {
	ev.Method = ctx.method
	ev.Now = ctx.now
	ctx.events = append(ctx.events, ev)
}

// Emit appends an instruction to the transaction result.
func (ctx *Context) Emit(in api.Instruction) {
	ctx.instructions = append(ctx.instructions, in)
}

// Result returns the accumulated transaction result.
func (ctx *Context) Result() *api.Result {
	return &api.Result{
		Instructions: ctx.instructions,
		Events:       ctx.events,
	}
}

func (ctx *Context) authorize(mode accessctl.Mode) error {
	if !ctx.cfg.Roles().IsAllowed(ctx.caller.Subject(), mode) {
		return api.ErrUnauthorized
	}
	return nil
}

func (ctx *Context) nonpayable() error {
	if len(ctx.funds) > 0 {
		return api.ErrWrongFundsCombination
	}
	return nil
}

// singlePayment returns the only attached payment.
func (ctx *Context) singlePayment() (*api.Funds, error) {
	if len(ctx.funds) != 1 {
		return nil, api.ErrWrongFundsCombination
	}
	return &ctx.funds[0], nil
}

// transferOut emits a transfer from the platform account.
func (ctx *Context) transferOut(to api.Address, amount *quantity.Quantity, currency api.Currency) {
	if amount.IsZero() {
		return
	}
	ctx.Emit(api.NewTransfer(ctx.self, to, api.NewFunds(amount, currency)))
}

func newContext(self api.Address, state *stakingState.MutableState, tx *api.Transaction, logger *logging.Logger) (*Context, error) {
	cfg, err := state.Config()
	if err != nil {
		return nil, err
	}
	return &Context{
		logger: logger.With("method", tx.Call.Method, "caller", tx.Caller),
		self:   self,
		method: tx.Call.Method,
		caller: tx.Caller,
		funds:  tx.Funds,
		now:    tx.Now,
		cfg:    cfg,
	}, nil
}

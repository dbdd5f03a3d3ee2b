// Package api implements the staking platform API.
package api

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cryptogopniks/GopStake/common/pubsub"
	"github.com/cryptogopniks/GopStake/common/quantity"
	"github.com/cryptogopniks/GopStake/common/transaction"
)

const (
	// NanosPerMinute is the number of nanoseconds in a minute.
	NanosPerMinute = 60_000_000_000
	// MinutesPerDay is the number of minutes in a day.
	MinutesPerDay = 1440
	// NanosPerDay is the number of nanoseconds in a day.
	NanosPerDay = NanosPerMinute * MinutesPerDay
)

var (
	// MethodStake is the method name for staking items.
	MethodStake = transaction.NewMethodName(ModuleName, "Stake", StakeBody{})
	// MethodUnstake is the method name for unstaking items.
	MethodUnstake = transaction.NewMethodName(ModuleName, "Unstake", UnstakeBody{})
	// MethodClaimStakingRewards is the method name for claiming rewards.
	MethodClaimStakingRewards = transaction.NewMethodName(ModuleName, "ClaimStakingRewards", nil)
	// MethodUpdateConfig is the method name for config updates.
	MethodUpdateConfig = transaction.NewMethodName(ModuleName, "UpdateConfig", UpdateConfigBody{})
	// MethodDistributeFunds is the method name for fee ledger distribution.
	MethodDistributeFunds = transaction.NewMethodName(ModuleName, "DistributeFunds", DistributeFundsBody{})
	// MethodRemoveCollection is the method name for collection removal.
	MethodRemoveCollection = transaction.NewMethodName(ModuleName, "RemoveCollection", RemoveCollectionBody{})
	// MethodCreateProposal is the method name for proposal creation.
	MethodCreateProposal = transaction.NewMethodName(ModuleName, "CreateProposal", CreateProposalBody{})
	// MethodRejectProposal is the method name for proposal rejection.
	MethodRejectProposal = transaction.NewMethodName(ModuleName, "RejectProposal", ProposalIDBody{})
	// MethodAcceptProposal is the method name for proposal acceptance.
	MethodAcceptProposal = transaction.NewMethodName(ModuleName, "AcceptProposal", ProposalIDBody{})
	// MethodDepositTokens is the method name for collection balance deposits.
	MethodDepositTokens = transaction.NewMethodName(ModuleName, "DepositTokens", DepositTokensBody{})
	// MethodWithdrawTokens is the method name for collection balance
	// withdrawals.
	MethodWithdrawTokens = transaction.NewMethodName(ModuleName, "WithdrawTokens", WithdrawTokensBody{})

	// Methods is the list of all methods supported by the staking platform.
	Methods = []transaction.MethodName{
		MethodStake,
		MethodUnstake,
		MethodClaimStakingRewards,
		MethodUpdateConfig,
		MethodDistributeFunds,
		MethodRemoveCollection,
		MethodCreateProposal,
		MethodRejectProposal,
		MethodAcceptProposal,
		MethodDepositTokens,
		MethodWithdrawTokens,
	}
)

// StakeBody is the body of a stake transaction.
type StakeBody struct {
	Collections []CollectionItems `json:"collections"`
}

// ValidateBasic performs basic stake request validity checks.
func (b *StakeBody) ValidateBasic() error {
	return validateCollectionItems(b.Collections)
}

// UnstakeBody is the body of an unstake transaction.
type UnstakeBody struct {
	Collections []CollectionItems `json:"collections"`
}

// ValidateBasic performs basic unstake request validity checks.
func (b *UnstakeBody) ValidateBasic() error {
	return validateCollectionItems(b.Collections)
}

// UpdateConfigBody is the body of a config update transaction.
type UpdateConfigBody struct {
	Owner  *Address `json:"owner,omitempty"`
	Minter *Address `json:"minter,omitempty"`
}

// WeightedRecipient is a fee ledger distribution recipient.
type WeightedRecipient struct {
	Address Address         `json:"address"`
	Weight  decimal.Decimal `json:"weight"`
}

// DistributeFundsBody is the body of a fee ledger distribution
// transaction.
type DistributeFundsBody struct {
	Recipients []WeightedRecipient `json:"recipients"`
}

// RemoveCollectionBody is the body of a collection removal transaction.
type RemoveCollectionBody struct {
	Address Address `json:"address"`
}

// CreateProposalBody is the body of a proposal creation transaction.
type CreateProposalBody struct {
	Content ProposalContent `json:"content"`
	Price   Funds           `json:"price"`
}

// ValidateBasic performs basic proposal creation validity checks.
func (b *CreateProposalBody) ValidateBasic() error {
	if c := b.Content.Collection(); c != nil && c.EmissionType == EmissionMinting && !c.StakingCurrency.Token.IsNative() {
		return ErrWrongMinterTokenType
	}
	if err := b.Content.ValidateBasic(); err != nil {
		return err
	}
	if !b.Price.Amount.IsValid() {
		return fmt.Errorf("%w: invalid price", ErrInvalidArgument)
	}
	return b.Price.Currency.Token.ValidateBasic()
}

// ProposalIDBody is the body of a transaction that references a proposal.
type ProposalIDBody struct {
	ID ProposalID `json:"id"`
}

// DepositTokensBody is the body of a collection balance deposit.
type DepositTokensBody struct {
	CollectionAddress Address `json:"collection_address"`
}

// WithdrawTokensBody is the body of a collection balance withdrawal.
type WithdrawTokensBody struct {
	CollectionAddress Address           `json:"collection_address"`
	Amount            quantity.Quantity `json:"amount"`
}

// Transaction is a request to execute a platform method.
type Transaction struct {
	// Caller is the authenticated caller.
	Caller Address `json:"caller"`
	// Funds are the payments attached to the call.
	Funds []Funds `json:"funds,omitempty"`
	// Now is the host supplied time of execution.
	Now Timestamp `json:"now"`
	// Call is the method call.
	Call transaction.Call `json:"call"`
}

// NewTransaction creates a new transaction.
func NewTransaction(caller Address, funds []Funds, now Timestamp, method transaction.MethodName, body interface{}) *Transaction {
	return &Transaction{
		Caller: caller,
		Funds:  funds,
		Now:    now,
		Call:   transaction.NewCall(method, body),
	}
}

// SanityCheck performs basic transaction validity checks.
func (tx *Transaction) SanityCheck() error {
	if !tx.Caller.IsValid() {
		return fmt.Errorf("%w: malformed caller", ErrInvalidArgument)
	}
	if err := tx.Call.Method.SanityCheck(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}
	for i := range tx.Funds {
		if err := tx.Funds[i].Currency.Token.ValidateBasic(); err != nil {
			return err
		}
	}
	return nil
}

// Result is the outcome of a successfully executed transaction.
type Result struct {
	Instructions []Instruction `json:"instructions"`
	Events       []Event       `json:"events"`
}

// AddressesQuery is an optionally filtered listing query.
type AddressesQuery struct {
	Addresses []Address `json:"addresses,omitempty"`
}

// Contains returns true iff the address passes the filter.
func (q *AddressesQuery) Contains(addr Address) bool {
	if q == nil || len(q.Addresses) == 0 {
		return true
	}
	for _, a := range q.Addresses {
		if a == addr {
			return true
		}
	}
	return false
}

// RewardsQuery is a staking rewards query.
type RewardsQuery struct {
	Address Address `json:"address"`
	// Collection restricts the query to a single collection.
	Collection *Address `json:"collection,omitempty"`
	// Now is the time at which rewards are evaluated. Zero means the
	// current time of the serving node.
	Now Timestamp `json:"now,omitempty"`
}

// ProposalsQuery is a proposal listing query.
type ProposalsQuery struct {
	// LastAmount restricts the result to the last N proposals.
	LastAmount *uint64 `json:"last_amount,omitempty"`
}

// BalancesResponse are the balances of an account.
type BalancesResponse struct {
	Address Address `json:"address"`
	Funds   []Funds `json:"funds"`
}

// Backend is a staking platform implementation.
type Backend interface {
	// SubmitTx executes a transaction.
	SubmitTx(ctx context.Context, tx *Transaction) (*Result, error)

	// Config returns the platform config.
	Config(ctx context.Context) (*Config, error)

	// Funds returns the fee ledger.
	Funds(ctx context.Context) ([]Funds, error)

	// Stakers returns the staking ledger entries in ascending address
	// order.
	Stakers(ctx context.Context, query *AddressesQuery) ([]StakerInfo, error)

	// StakingRewards returns the rewards deliverable to a staker.
	StakingRewards(ctx context.Context, query *RewardsQuery) (*BalancesResponse, error)

	// AssociatedBalances returns the wallet balances of a holder in every
	// staking currency in use.
	AssociatedBalances(ctx context.Context, address Address) (*BalancesResponse, error)

	// Proposals returns proposals in ascending ID order.
	Proposals(ctx context.Context, query *ProposalsQuery) ([]Proposal, error)

	// Collections returns the registered collections.
	Collections(ctx context.Context, query *AddressesQuery) ([]CollectionEntry, error)

	// CollectionsBalances returns the balances of spending collections.
	CollectionsBalances(ctx context.Context, query *AddressesQuery) ([]CollectionBalance, error)

	// StateToGenesis returns the genesis state of the platform.
	StateToGenesis(ctx context.Context) (*Genesis, error)

	// WatchEvents returns a channel that produces a stream of platform
	// events.
	WatchEvents(ctx context.Context) (<-chan *Event, pubsub.ClosableSubscription, error)
}

// Package host implements the staking platform host.
//
// The host serializes transactions, runs them against the platform inside a
// storage transaction and executes the resulting instructions through its
// collaborators.
package host

import (
	"context"

	"github.com/cryptogopniks/GopStake/common/quantity"
	"github.com/cryptogopniks/GopStake/staking/api"
)

// Bank moves funds between accounts.
type Bank interface {
	// Transfer moves funds from one account to another.
	Transfer(ctx context.Context, from, to api.Address, funds *api.Funds) error

	// Balance returns the balance of a holder in the given token.
	Balance(ctx context.Context, holder api.Address, token api.Token) (*quantity.Quantity, error)
}

// Custody moves collection items between owners.
type Custody interface {
	// TransferItem moves an item of a collection from one owner to another.
	TransferItem(ctx context.Context, collection api.Address, item api.ItemID, from, to api.Address) error
}

// Minter issues native tokens on request of the platform.
type Minter interface {
	// Address returns the account address of the minter.
	Address() api.Address

	// Mint mints amount of denom to the recipient on behalf of caller.
	Mint(ctx context.Context, caller, recipient api.Address, denom string, amount *quantity.Quantity) error
}

// Journal is implemented by collaborators that can undo their effects.
//
// When every collaborator of a host shares a journal, a failed dispatch
// leaves no trace outside of the host.
type Journal interface {
	// Snapshot returns an identifier of the current journal position.
	Snapshot() int

	// RevertToSnapshot undoes every change recorded after the snapshot and
	// releases it.
	RevertToSnapshot(id int)

	// DiscardSnapshot releases a snapshot, keeping its changes.
	DiscardSnapshot(id int)
}

// Clock returns the current time.
type Clock func() api.Timestamp

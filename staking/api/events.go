package api

import (
	"context"
	"fmt"
	"io"

	"github.com/cryptogopniks/GopStake/common/prettyprint"
	"github.com/cryptogopniks/GopStake/common/transaction"
)

var _ prettyprint.PrettyPrinter = (*Event)(nil)

// StakedEvent is emitted when items are staked.
type StakedEvent struct {
	Staker     Address  `json:"staker"`
	Collection Address  `json:"collection"`
	Items      []ItemID `json:"items"`
}

// UnstakedEvent is emitted when items are unstaked.
type UnstakedEvent struct {
	Staker     Address  `json:"staker"`
	Collection Address  `json:"collection"`
	Items      []ItemID `json:"items"`
}

// RewardsPaidEvent is emitted when accrued rewards are paid out to a staker.
type RewardsPaidEvent struct {
	Staker Address `json:"staker"`
	Funds  []Funds `json:"funds"`
}

// ProposalEvent is emitted when a proposal changes status.
type ProposalEvent struct {
	ID     ProposalID     `json:"id"`
	Status ProposalStatus `json:"status"`
}

// CollectionEvent is emitted when a collection is added, updated or
// removed.
type CollectionEvent struct {
	Address    Address     `json:"address"`
	Collection *Collection `json:"collection,omitempty"`
	Removed    bool        `json:"removed,omitempty"`
}

// BalanceEvent is emitted when a collection balance changes.
type BalanceEvent struct {
	Collection Address `json:"collection"`
	Balance    Funds   `json:"balance"`
}

// DistributionEvent is emitted when the fee ledger is distributed.
type DistributionEvent struct {
	Recipient Address `json:"recipient"`
	Funds     Funds   `json:"funds"`
}

// ConfigEvent is emitted when the config changes.
type ConfigEvent struct {
	Config Config `json:"config"`
}

// Event is a staking platform event. Exactly one of the variant fields is
// set.
type Event struct {
	Method transaction.MethodName `json:"method"`
	Now    Timestamp              `json:"now"`

	Staked       *StakedEvent       `json:"staked,omitempty"`
	Unstaked     *UnstakedEvent     `json:"unstaked,omitempty"`
	RewardsPaid  *RewardsPaidEvent  `json:"rewards_paid,omitempty"`
	Proposal     *ProposalEvent     `json:"proposal,omitempty"`
	Collection   *CollectionEvent   `json:"collection,omitempty"`
	Balance      *BalanceEvent      `json:"balance,omitempty"`
	Distribution *DistributionEvent `json:"distribution,omitempty"`
	Config       *ConfigEvent       `json:"config,omitempty"`
}

// PrettyPrint writes a pretty-printed representation of the event to the
// given writer.
func (e Event) PrettyPrint(ctx context.Context, prefix string, w io.Writer) {
	switch {
	case e.Staked != nil:
		fmt.Fprintf(w, "%sStaked %s: %v by %s\n", prefix, e.Staked.Collection, e.Staked.Items, e.Staked.Staker)
	case e.Unstaked != nil:
		fmt.Fprintf(w, "%sUnstaked %s: %v by %s\n", prefix, e.Unstaked.Collection, e.Unstaked.Items, e.Unstaked.Staker)
	case e.RewardsPaid != nil:
		fmt.Fprintf(w, "%sRewards paid to %s:\n", prefix, e.RewardsPaid.Staker)
		for _, f := range e.RewardsPaid.Funds {
			f.PrettyPrint(ctx, prefix+"  ", w)
		}
	case e.Proposal != nil:
		fmt.Fprintf(w, "%sProposal %d: %s\n", prefix, e.Proposal.ID, e.Proposal.Status)
	case e.Collection != nil && e.Collection.Removed:
		fmt.Fprintf(w, "%sCollection %s removed\n", prefix, e.Collection.Address)
	case e.Collection != nil:
		fmt.Fprintf(w, "%sCollection %s:\n", prefix, e.Collection.Address)
		if e.Collection.Collection != nil {
			e.Collection.Collection.PrettyPrint(ctx, prefix+"  ", w)
		}
	case e.Balance != nil:
		fmt.Fprintf(w, "%sBalance of %s: %s\n", prefix, e.Balance.Collection, e.Balance.Balance)
	case e.Distribution != nil:
		fmt.Fprintf(w, "%sDistributed %s to %s\n", prefix, e.Distribution.Funds, e.Distribution.Recipient)
	case e.Config != nil:
		fmt.Fprintf(w, "%sConfig updated:\n", prefix)
		e.Config.Config.PrettyPrint(ctx, prefix+"  ", w)
	default:
		fmt.Fprintf(w, "%s(invalid)\n", prefix)
	}
}

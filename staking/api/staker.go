package api

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/cryptogopniks/GopStake/common/prettyprint"
)

var _ prettyprint.PrettyPrinter = (*StakerInfo)(nil)

// Timestamp is a point in time in nanoseconds since the Unix epoch.
type Timestamp uint64

// ItemID identifies an item within a collection.
type ItemID string

// IsValid performs a basic well-formedness check of the item identifier.
func (id ItemID) IsValid() bool {
	return id != "" && strings.IndexFunc(string(id), unicode.IsSpace) < 0
}

// StakedItem is a single staked item.
type StakedItem struct {
	ItemID       ItemID    `json:"item_id"`
	StakingStart Timestamp `json:"staking_start"`
	LastClaim    Timestamp `json:"last_claim"`
}

// StakedCollectionInfo are the items a staker has staked in a collection.
type StakedCollectionInfo struct {
	CollectionAddress Address      `json:"collection_address"`
	Items             []StakedItem `json:"items"`
}

// StakerInfo is the staking ledger entry of a staker.
type StakerInfo struct {
	Address     Address                `json:"address"`
	Collections []StakedCollectionInfo `json:"collections"`
}

// ItemCount returns the total number of items staked by the staker.
func (s *StakerInfo) ItemCount() int {
	var n int
	for _, c := range s.Collections {
		n += len(c.Items)
	}
	return n
}

// PrettyPrint writes a pretty-printed representation of the staker to the
// given writer.
func (s StakerInfo) PrettyPrint(ctx context.Context, prefix string, w io.Writer) {
	fmt.Fprintf(w, "%sStaker: %s\n", prefix, s.Address)
	if len(s.Collections) == 0 {
		fmt.Fprintf(w, "%s  (nothing staked)\n", prefix)
		return
	}
	for _, c := range s.Collections {
		fmt.Fprintf(w, "%s  Collection: %s\n", prefix, c.CollectionAddress)
		for _, it := range c.Items {
			fmt.Fprintf(w, "%s    %s (since %d, last claim %d)\n", prefix, it.ItemID, it.StakingStart, it.LastClaim)
		}
	}
}

// CollectionItems is a set of items of a single collection.
type CollectionItems struct {
	CollectionAddress Address  `json:"collection_address"`
	Items             []ItemID `json:"items"`
}

// ValidateBasic performs basic validity checks.
func (c *CollectionItems) ValidateBasic() error {
	if !c.CollectionAddress.IsValid() {
		return fmt.Errorf("%w: malformed collection address", ErrInvalidArgument)
	}
	if len(c.Items) == 0 {
		return ErrCollectionIsNotAdded
	}
	seen := make(map[ItemID]bool, len(c.Items))
	for _, id := range c.Items {
		if !id.IsValid() {
			return fmt.Errorf("%w: malformed item identifier", ErrInvalidArgument)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate item %s", ErrInvalidArgument, id)
		}
		seen[id] = true
	}
	return nil
}

func validateCollectionItems(list []CollectionItems) error {
	if len(list) == 0 {
		return ErrCollectionIsNotAdded
	}
	seen := make(map[Address]bool, len(list))
	for i := range list {
		if err := list[i].ValidateBasic(); err != nil {
			return err
		}
		if seen[list[i].CollectionAddress] {
			return fmt.Errorf("%w: duplicate collection %s", ErrInvalidArgument, list[i].CollectionAddress)
		}
		seen[list[i].CollectionAddress] = true
	}
	return nil
}

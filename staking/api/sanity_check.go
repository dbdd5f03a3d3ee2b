package api

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// SanityCheck performs a sanity check on the genesis state and returns all
// violations found.
func (g *Genesis) SanityCheck() error {
	var result *multierror.Error

	if err := g.Config.ValidateBasic(); err != nil {
		result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: config: %w", err))
	}

	collections := make(map[Address]*Collection, len(g.Collections))
	names := make(map[string]Address, len(g.Collections))
	for i := range g.Collections {
		entry := &g.Collections[i]
		if !entry.Address.IsValid() {
			result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: malformed collection address '%s'", entry.Address))
			continue
		}
		if _, ok := collections[entry.Address]; ok {
			result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: duplicate collection %s", entry.Address))
			continue
		}
		if err := entry.Collection.ValidateBasic(); err != nil {
			result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: collection %s: %w", entry.Address, err))
		}
		if other, ok := names[entry.Collection.Name]; ok {
			result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: collections %s and %s share name '%s'", other, entry.Address, entry.Collection.Name))
		}
		names[entry.Collection.Name] = entry.Address
		collections[entry.Address] = &entry.Collection
	}

	seenBalances := make(map[Address]bool, len(g.Balances))
	for i := range g.Balances {
		bal := &g.Balances[i]
		if seenBalances[bal.Address] {
			result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: duplicate balance for %s", bal.Address))
			continue
		}
		seenBalances[bal.Address] = true

		coll, ok := collections[bal.Address]
		switch {
		case !ok:
			result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: balance for unknown collection %s", bal.Address))
		case coll.EmissionType != EmissionSpending:
			result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: balance for %s collection %s", coll.EmissionType, bal.Address))
		case !coll.StakingCurrency.Equal(bal.Funds.Currency):
			result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: balance currency mismatch for %s", bal.Address))
		}
		if !bal.Funds.Amount.IsValid() {
			result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: invalid balance for %s", bal.Address))
		}
	}
	for addr, coll := range collections {
		if coll.EmissionType == EmissionSpending && !seenBalances[addr] {
			result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: missing balance for spending collection %s", addr))
		}
	}

	seenProposals := make(map[ProposalID]bool, len(g.Proposals))
	for i := range g.Proposals {
		p := &g.Proposals[i]
		if p.ID == 0 || p.ID > g.LastProposalID {
			result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: proposal ID %d out of range (last: %d)", p.ID, g.LastProposalID))
		}
		if seenProposals[p.ID] {
			result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: duplicate proposal %d", p.ID))
		}
		seenProposals[p.ID] = true
		switch p.Status {
		case StatusActive, StatusAccepted, StatusRejected:
		default:
			result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: proposal %d has invalid status", p.ID))
		}
		if err := p.Content.ValidateBasic(); err != nil {
			result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: proposal %d: %w", p.ID, err))
		}
	}

	for i := range g.Funds {
		for j := 0; j < i; j++ {
			if g.Funds[i].Currency.Token.Equal(g.Funds[j].Currency.Token) {
				result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: fee ledger currency %s listed more than once", g.Funds[i].Currency.Token))
				break
			}
		}
	}

	seenStakers := make(map[Address]bool, len(g.Stakers))
	for i := range g.Stakers {
		s := &g.Stakers[i]
		if !s.Address.IsValid() || seenStakers[s.Address] {
			result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: malformed or duplicate staker '%s'", s.Address))
			continue
		}
		seenStakers[s.Address] = true
		for _, c := range s.Collections {
			if !c.CollectionAddress.IsValid() || len(c.Items) == 0 {
				result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: staker %s has malformed collection entry '%s'", s.Address, c.CollectionAddress))
				continue
			}
			seenItems := make(map[ItemID]bool, len(c.Items))
			for _, it := range c.Items {
				if !it.ItemID.IsValid() || seenItems[it.ItemID] {
					result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: staker %s has malformed item '%s' in %s", s.Address, it.ItemID, c.CollectionAddress))
				}
				if it.LastClaim < it.StakingStart {
					result = multierror.Append(result, fmt.Errorf("staking: sanity check failed: staker %s item %s claimed before staking", s.Address, it.ItemID))
				}
				seenItems[it.ItemID] = true
			}
		}
	}

	return result.ErrorOrNil()
}

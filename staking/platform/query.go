package platform

import (
	"fmt"

	"github.com/cryptogopniks/GopStake/staking/api"
	stakingState "github.com/cryptogopniks/GopStake/staking/state"
)

// Query is a read-only view over the platform state.
type Query struct {
	state *stakingState.ImmutableState
}

// NewQuery creates a new query over the given state.
func NewQuery(state *stakingState.ImmutableState) *Query {
	return &Query{state: state}
}

// Config returns the platform config.
func (q *Query) Config() (*api.Config, error) {
	return q.state.Config()
}

// Funds returns the fee ledger.
func (q *Query) Funds() ([]api.Funds, error) {
	funds, err := q.state.FeeLedger()
	if err != nil {
		return nil, err
	}
	if funds == nil {
		funds = []api.Funds{}
	}
	return funds, nil
}

// Stakers returns staking ledger entries in ascending address order.
func (q *Query) Stakers(query *api.AddressesQuery) ([]api.StakerInfo, error) {
	addrs, err := q.state.StakerAddresses()
	if err != nil {
		return nil, err
	}

	stakers := []api.StakerInfo{}
	for _, addr := range addrs {
		if !query.Contains(addr) {
			continue
		}
		info, err := q.state.Staker(addr)
		if err != nil {
			return nil, err
		}
		stakers = append(stakers, *info)
	}
	return stakers, nil
}

// StakingRewards returns the rewards a claim at the given instant would
// deliver, optionally restricted to a single collection.
func (q *Query) StakingRewards(query *api.RewardsQuery) (*api.BalancesResponse, error) {
	rsp := &api.BalancesResponse{
		Address: query.Address,
		Funds:   []api.Funds{},
	}

	staker, err := q.state.Staker(query.Address)
	if err != nil {
		return nil, err
	}
	if staker == nil {
		return rsp, nil
	}

	cache := newTermsCache(q.state)
	var out payouts
	for _, c := range staker.Collections {
		if query.Collection != nil && c.CollectionAddress != *query.Collection {
			continue
		}
		t, err := cache.get(c.CollectionAddress)
		if err != nil {
			return nil, err
		}
		if t == nil {
			continue
		}
		for i := range c.Items {
			out.add(query.Address, t.collection.StakingCurrency, t.collection.EmissionType, t.accrue(&c.Items[i], query.Now))
		}
	}

	// Rewards are reported per currency regardless of emission type.
	for _, p := range out.list {
		var merged bool
		for i := range rsp.Funds {
			if rsp.Funds[i].Currency.Token.Equal(p.currency.Token) {
				_ = rsp.Funds[i].Amount.Add(p.amount)
				merged = true
				break
			}
		}
		if !merged {
			rsp.Funds = append(rsp.Funds, api.NewFunds(p.amount, p.currency))
		}
	}
	return rsp, nil
}

// StakingCurrencies returns the distinct staking currencies of all
// registered collections.
func (q *Query) StakingCurrencies() ([]api.Currency, error) {
	collections, err := q.state.Collections()
	if err != nil {
		return nil, err
	}

	var currencies []api.Currency
	for _, e := range collections {
		var seen bool
		for _, c := range currencies {
			if c.Token.Equal(e.Collection.StakingCurrency.Token) {
				seen = true
				break
			}
		}
		if !seen {
			currencies = append(currencies, e.Collection.StakingCurrency)
		}
	}
	return currencies, nil
}

// Proposals returns all proposals in ascending ID order, or only the last
// N of them.
func (q *Query) Proposals(query *api.ProposalsQuery) ([]api.Proposal, error) {
	proposals, err := q.state.Proposals()
	if err != nil {
		return nil, err
	}
	if query != nil && query.LastAmount != nil && *query.LastAmount < uint64(len(proposals)) {
		proposals = proposals[uint64(len(proposals))-*query.LastAmount:]
	}
	return proposals, nil
}

// Collections returns registered collections in ascending address order.
func (q *Query) Collections(query *api.AddressesQuery) ([]api.CollectionEntry, error) {
	collections, err := q.state.Collections()
	if err != nil {
		return nil, err
	}

	filtered := []api.CollectionEntry{}
	for _, e := range collections {
		if query.Contains(e.Address) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// CollectionsBalances returns spending collection balances in ascending
// address order.
func (q *Query) CollectionsBalances(query *api.AddressesQuery) ([]api.CollectionBalance, error) {
	balances, err := q.state.CollectionBalances()
	if err != nil {
		return nil, err
	}

	filtered := []api.CollectionBalance{}
	for _, b := range balances {
		if query.Contains(b.Address) {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// Genesis exports the whole platform state.
func (q *Query) Genesis() (*api.Genesis, error) {
	cfg, err := q.state.Config()
	if err != nil {
		return nil, err
	}
	collections, err := q.state.Collections()
	if err != nil {
		return nil, err
	}
	balances, err := q.state.CollectionBalances()
	if err != nil {
		return nil, err
	}
	proposals, err := q.state.Proposals()
	if err != nil {
		return nil, err
	}
	lastID, err := q.state.LastProposalID()
	if err != nil {
		return nil, err
	}
	funds, err := q.state.FeeLedger()
	if err != nil {
		return nil, err
	}
	stakers, err := q.state.Stakers()
	if err != nil {
		return nil, err
	}

	return &api.Genesis{
		Config:         *cfg,
		Collections:    collections,
		Balances:       balances,
		Proposals:      proposals,
		LastProposalID: lastID,
		Funds:          funds,
		Stakers:        stakers,
	}, nil
}

// InitChain imports a genesis state into empty storage.
func (p *Platform) InitChain(state *stakingState.MutableState, genesis *api.Genesis) error {
	if _, err := state.Config(); err == nil {
		return fmt.Errorf("staking: refusing to initialize non-empty state")
	}
	if err := genesis.SanityCheck(); err != nil {
		return fmt.Errorf("staking: genesis sanity check failed: %w", err)
	}

	if err := state.SetConfig(&genesis.Config); err != nil {
		return fmt.Errorf("staking: failed to set config: %w", err)
	}
	for i := range genesis.Collections {
		e := &genesis.Collections[i]
		if err := state.SetCollection(e.Address, &e.Collection); err != nil {
			return fmt.Errorf("staking: failed to set collection: %w", err)
		}
	}
	for i := range genesis.Balances {
		b := &genesis.Balances[i]
		if err := state.SetCollectionBalance(b.Address, &b.Funds); err != nil {
			return fmt.Errorf("staking: failed to set collection balance: %w", err)
		}
	}
	for i := range genesis.Proposals {
		if err := state.SetProposal(&genesis.Proposals[i]); err != nil {
			return fmt.Errorf("staking: failed to set proposal: %w", err)
		}
	}
	if err := state.SetLastProposalID(genesis.LastProposalID); err != nil {
		return fmt.Errorf("staking: failed to set proposal counter: %w", err)
	}
	if err := state.SetFeeLedger(genesis.Funds); err != nil {
		return fmt.Errorf("staking: failed to set fee ledger: %w", err)
	}
	for _, s := range genesis.Stakers {
		if err := state.EnsureStaker(s.Address); err != nil {
			return fmt.Errorf("staking: failed to set staker: %w", err)
		}
		for _, c := range s.Collections {
			for i := range c.Items {
				if err := state.SetStakedItem(s.Address, c.CollectionAddress, &c.Items[i]); err != nil {
					return fmt.Errorf("staking: failed to set staked item: %w", err)
				}
			}
		}
	}

	p.logger.Info("InitChain: imported genesis state",
		"collections", len(genesis.Collections),
		"proposals", len(genesis.Proposals),
		"stakers", len(genesis.Stakers),
	)
	return nil
}

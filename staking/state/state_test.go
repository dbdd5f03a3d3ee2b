package state

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cryptogopniks/GopStake/staking/api"
	storage "github.com/cryptogopniks/GopStake/storage/api"
	"github.com/cryptogopniks/GopStake/storage/memory"
)

func newTestState(t *testing.T) (*MutableState, storage.Transaction) {
	backend := memory.New()
	t.Cleanup(backend.Close)

	tx, err := backend.NewTransaction(context.Background(), true)
	require.NoError(t, err, "NewTransaction")
	t.Cleanup(tx.Discard)

	return NewMutableState(tx), tx
}

func TestConfig(t *testing.T) {
	require := require.New(t)
	s, _ := newTestState(t)

	_, err := s.Config()
	require.ErrorIs(err, api.ErrNotInitialized, "config before init")

	owner := api.Address("owner")
	require.NoError(s.SetConfig(&api.Config{Admin: "admin", Owner: &owner}))
	cfg, err := s.Config()
	require.NoError(err, "Config")
	require.EqualValues("admin", cfg.Admin)
	require.EqualValues("owner", *cfg.Owner)
	require.Nil(cfg.Minter)
}

func TestCollections(t *testing.T) {
	require := require.New(t)
	s, _ := newTestState(t)

	cur := api.NewCurrency(api.NewNativeToken("ustars"), 6)
	for _, addr := range []api.Address{"coll_b", "coll_a", "coll_c"} {
		require.NoError(s.SetCollection(addr, &api.Collection{
			Name:            "name-" + addr.String(),
			StakingCurrency: cur,
			DailyRewards:    decimal.NewFromInt(10),
			EmissionType:    api.EmissionSpending,
			Owner:           "owner",
		}))
	}

	colls, err := s.Collections()
	require.NoError(err, "Collections")
	require.Len(colls, 3)
	require.EqualValues("coll_a", colls[0].Address, "ascending order")
	require.EqualValues("coll_c", colls[2].Address, "ascending order")

	c, err := s.Collection("coll_b")
	require.NoError(err, "Collection")
	require.Equal("name-coll_b", c.Name)
	require.True(c.DailyRewards.Equal(decimal.NewFromInt(10)))

	require.NoError(s.RemoveCollection("coll_b"))
	_, err = s.Collection("coll_b")
	require.ErrorIs(err, api.ErrCollectionIsNotFound, "removed collection")

	bal, err := s.CollectionBalance("coll_a")
	require.NoError(err)
	require.Nil(bal, "no balance entry")

	f := api.NewFundsFromUint64(42, cur)
	require.NoError(s.SetCollectionBalance("coll_a", &f))
	bal, err = s.CollectionBalance("coll_a")
	require.NoError(err)
	require.True(bal.Equal(&f))

	balances, err := s.CollectionBalances()
	require.NoError(err)
	require.Len(balances, 1)

	require.NoError(s.RemoveCollectionBalance("coll_a"))
	balances, err = s.CollectionBalances()
	require.NoError(err)
	require.Empty(balances)
}

func TestProposals(t *testing.T) {
	require := require.New(t)
	s, _ := newTestState(t)

	last, err := s.LastProposalID()
	require.NoError(err)
	require.EqualValues(0, last, "counter starts at zero")

	for i := 1; i <= 3; i++ {
		id, err := s.NextProposalID()
		require.NoError(err, "NextProposalID")
		require.EqualValues(i, id, "IDs start at one")
		require.NoError(s.SetProposal(&api.Proposal{ID: id, Status: api.StatusActive}))
	}

	p, err := s.Proposal(2)
	require.NoError(err)
	require.Equal(api.StatusActive, p.Status)

	_, err = s.Proposal(7)
	require.ErrorIs(err, api.ErrParameterIsNotFound, "missing proposal")

	ps, err := s.Proposals()
	require.NoError(err)
	require.Len(ps, 3)
	for i, p := range ps {
		require.EqualValues(i+1, p.ID, "ascending order")
	}
}

func TestFeeLedger(t *testing.T) {
	require := require.New(t)
	s, _ := newTestState(t)

	funds, err := s.FeeLedger()
	require.NoError(err)
	require.Empty(funds)

	cur := api.NewCurrency(api.NewNativeToken("ustars"), 6)
	require.NoError(s.SetFeeLedger([]api.Funds{api.NewFundsFromUint64(7, cur)}))
	funds, err = s.FeeLedger()
	require.NoError(err)
	require.Len(funds, 1)
	require.EqualValues(7, funds[0].Amount.ToBigInt().Uint64())
}

func TestStakers(t *testing.T) {
	require := require.New(t)
	s, _ := newTestState(t)

	info, err := s.Staker("alice")
	require.NoError(err)
	require.Nil(info, "unknown staker")

	put := func(staker, coll api.Address, id api.ItemID) {
		require.NoError(s.SetStakedItem(staker, coll, &api.StakedItem{ItemID: id, StakingStart: 1, LastClaim: 1}))
	}
	put("bob", "coll_b", "2")
	put("alice", "coll_b", "9")
	put("alice", "coll_a", "3")
	put("alice", "coll_b", "10")

	info, err = s.Staker("alice")
	require.NoError(err)
	require.Len(info.Collections, 2)
	require.EqualValues("coll_a", info.Collections[0].CollectionAddress, "collections ordered by address")
	require.Len(info.Collections[1].Items, 2)
	require.EqualValues("10", info.Collections[1].Items[0].ItemID, "items ordered by ID")
	require.Equal(3, info.ItemCount())

	stakers, err := s.CollectionStakers("coll_b")
	require.NoError(err)
	require.Equal([]api.Address{"alice", "bob"}, stakers)

	require.NoError(s.RemoveStakedItem("bob", "coll_b", "2"))
	info, err = s.Staker("bob")
	require.NoError(err)
	require.NotNil(info, "marker outlives items")
	require.Empty(info.Collections)

	stakers, err = s.CollectionStakers("coll_b")
	require.NoError(err)
	require.Equal([]api.Address{"alice"}, stakers, "reverse index updated")

	all, err := s.Stakers()
	require.NoError(err)
	require.Len(all, 2)
	require.EqualValues("alice", all[0].Address)
	require.EqualValues("bob", all[1].Address)
}

func TestMoveCollectionItems(t *testing.T) {
	require := require.New(t)
	s, _ := newTestState(t)

	require.NoError(s.SetStakedItem("alice", "old", &api.StakedItem{ItemID: "1", StakingStart: 5, LastClaim: 6}))
	require.NoError(s.SetStakedItem("bob", "old", &api.StakedItem{ItemID: "2", StakingStart: 5, LastClaim: 6}))
	require.NoError(s.SetStakedItem("bob", "other", &api.StakedItem{ItemID: "3", StakingStart: 5, LastClaim: 6}))

	require.NoError(s.MoveCollectionItems("old", "new"))

	stakers, err := s.CollectionStakers("old")
	require.NoError(err)
	require.Empty(stakers)
	stakers, err = s.CollectionStakers("new")
	require.NoError(err)
	require.Equal([]api.Address{"alice", "bob"}, stakers)

	item, err := s.StakedItem("alice", "new", "1")
	require.NoError(err)
	require.NotNil(item)
	require.EqualValues(6, item.LastClaim, "timestamps preserved")

	item, err = s.StakedItem("bob", "other", "3")
	require.NoError(err)
	require.NotNil(item, "other collections untouched")
}

func TestRestartCollectionItems(t *testing.T) {
	require := require.New(t)
	s, _ := newTestState(t)

	require.NoError(s.SetStakedItem("alice", "coll", &api.StakedItem{ItemID: "1", StakingStart: 5, LastClaim: 6}))
	require.NoError(s.SetStakedItem("bob", "coll", &api.StakedItem{ItemID: "2", StakingStart: 5, LastClaim: 50}))
	require.NoError(s.SetStakedItem("bob", "other", &api.StakedItem{ItemID: "3", StakingStart: 5, LastClaim: 6}))

	n, err := s.RestartCollectionItems("coll", 20)
	require.NoError(err, "RestartCollectionItems")
	require.Equal(2, n)

	for _, tc := range []struct {
		staker     api.Address
		collection api.Address
		id         api.ItemID
		lastClaim  uint64
		msg        string
	}{
		{"alice", "coll", "1", 20, "restarted"},
		{"bob", "coll", "2", 50, "never moves backwards"},
		{"bob", "other", "3", 6, "other collections untouched"},
	} {
		item, err := s.StakedItem(tc.staker, tc.collection, tc.id)
		require.NoError(err, tc.msg)
		require.EqualValues(tc.lastClaim, item.LastClaim, tc.msg)
		require.EqualValues(5, item.StakingStart, tc.msg)
	}

	// Moving onto an address that still holds the same item fails.
	require.NoError(s.SetStakedItem("alice", "other", &api.StakedItem{ItemID: "1", StakingStart: 7, LastClaim: 7}))
	err = s.MoveCollectionItems("other", "coll")
	require.ErrorIs(err, api.ErrCollectionDuplication)
}

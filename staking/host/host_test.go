package host_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cryptogopniks/GopStake/common/quantity"
	"github.com/cryptogopniks/GopStake/common/transaction"
	"github.com/cryptogopniks/GopStake/minter"
	minterAPI "github.com/cryptogopniks/GopStake/minter/api"
	"github.com/cryptogopniks/GopStake/staking/api"
	"github.com/cryptogopniks/GopStake/staking/host"
	"github.com/cryptogopniks/GopStake/staking/platform"
	"github.com/cryptogopniks/GopStake/storage/memory"
)

const (
	admin      = api.Address("admin")
	owner      = api.Address("owner")
	project    = api.Address("project")
	alice      = api.Address("alice")
	bob        = api.Address("bob")
	self       = api.Address("platform")
	minterAddr = api.Address("minter")

	day = api.Timestamp(api.NanosPerDay)
	t0  = api.Timestamp(1_700_000_000_000_000_000)
)

var (
	stars = api.NewCurrency(api.NewNativeToken("ustars"), 6)
	price = api.NewFundsFromUint64(1000, stars)
)

type testNode struct {
	t *testing.T

	now     api.Timestamp
	ledger  *host.LocalLedger
	service *host.Service
	minter  *minter.Service
}

func newTestNode(t *testing.T, platformMayMint bool) *testNode {
	require := require.New(t)
	ctx := context.Background()

	ledger, err := host.NewLocalLedger(&host.LedgerGenesis{
		Accounts: []host.LedgerAccount{
			{Address: project, Funds: []api.Funds{api.NewFundsFromUint64(100_000_000, stars)}},
			{Address: owner, Funds: []api.Funds{api.NewFundsFromUint64(10_000, stars)}},
		},
		Items: []host.ItemOwner{
			{Collection: "coll1", ItemID: "1", Owner: alice},
			{Collection: "coll1", ItemID: "2", Owner: alice},
			{Collection: "coll1", ItemID: "3", Owner: bob},
			{Collection: "coll2", ItemID: "1", Owner: alice},
		},
	})
	require.NoError(err, "NewLocalLedger")

	node := &testNode{
		t:      t,
		now:    t0,
		ledger: ledger,
	}

	minterStorage := memory.New()
	t.Cleanup(minterStorage.Close)
	node.minter, err = minter.NewService(&minter.Config{
		Storage: minterStorage,
		Minter:  minter.New(minterAddr),
		Bank:    ledger,
		Factory: ledger,
	})
	require.NoError(err, "minter.NewService")
	ownerAddr := owner
	minterCfg := minterAPI.Config{Admin: admin, Owner: &ownerAddr}
	if platformMayMint {
		p := self
		minterCfg.StakingPlatform = &p
	}
	require.NoError(node.minter.InitChain(ctx, &minterAPI.Genesis{Config: minterCfg}), "minter InitChain")

	storage := memory.New()
	t.Cleanup(storage.Close)
	node.service, err = host.New(&host.Config{
		Storage:  storage,
		Platform: platform.New(self),
		Bank:     ledger,
		Custody:  ledger,
		Minter:   node.minter,
		Clock: func() api.Timestamp {
			return node.now
		},
	})
	require.NoError(err, "host.New")

	initialized, err := node.service.IsInitialized(ctx)
	require.NoError(err, "IsInitialized")
	require.False(initialized, "fresh storage")

	o, m := owner, minterAddr
	require.NoError(node.service.InitChain(ctx, api.NewGenesis(admin, &o, &m)), "InitChain")

	initialized, err = node.service.IsInitialized(ctx)
	require.NoError(err, "IsInitialized")
	require.True(initialized, "after InitChain")

	return node
}

func (n *testNode) submit(caller api.Address, funds []api.Funds, method transaction.MethodName, body interface{}) (*api.Result, error) {
	return n.service.SubmitTx(context.Background(), api.NewTransaction(caller, funds, 0, method, body))
}

func (n *testNode) mustSubmit(caller api.Address, funds []api.Funds, method transaction.MethodName, body interface{}) *api.Result {
	res, err := n.submit(caller, funds, method, body)
	require.NoError(n.t, err, "SubmitTx %s", method)
	return res
}

func (n *testNode) balance(holder api.Address, token api.Token) uint64 {
	b, err := n.ledger.Balance(context.Background(), holder, token)
	require.NoError(n.t, err, "Balance")
	return b.ToBigInt().Uint64()
}

func (n *testNode) addCollection(addr api.Address, coll api.Collection) {
	res := n.mustSubmit(admin, nil, api.MethodCreateProposal, &api.CreateProposalBody{
		Content: api.ProposalContent{AddCollection: &api.AddCollectionProposal{CollectionAddress: addr, Collection: coll}},
		Price:   price,
	})
	n.mustSubmit(coll.Owner, []api.Funds{price}, api.MethodAcceptProposal, &api.ProposalIDBody{ID: res.Events[0].Proposal.ID})
}

func newCollection(name string, emission api.EmissionType, currency api.Currency, daily int64) api.Collection {
	return api.Collection{
		Name:            name,
		StakingCurrency: currency,
		DailyRewards:    decimal.NewFromInt(daily),
		EmissionType:    emission,
		Owner:           project,
	}
}

func stakeBody(coll api.Address, items ...api.ItemID) *api.StakeBody {
	return &api.StakeBody{Collections: []api.CollectionItems{{CollectionAddress: coll, Items: items}}}
}

func TestSpendingLifecycle(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	node := newTestNode(t, true)

	node.addCollection("coll1", newCollection("punks", api.EmissionSpending, stars, 1_000_000))
	require.EqualValues(100_000_000-1000, node.balance(project, stars.Token), "price escrowed")
	require.EqualValues(1000, node.balance(self, stars.Token))

	res := node.mustSubmit(project, []api.Funds{api.NewFundsFromUint64(10_000_000, stars)}, api.MethodDepositTokens, &api.DepositTokensBody{CollectionAddress: "coll1"})
	require.NotNil(res.Instructions[0].Transfer, "escrow comes first")
	require.Equal(project, res.Instructions[0].Transfer.From)
	require.EqualValues(10_001_000, node.balance(self, stars.Token))

	node.mustSubmit(alice, nil, api.MethodStake, stakeBody("coll1", "1"))
	itemOwner, ok := node.ledger.ItemOwner("coll1", "1")
	require.True(ok)
	require.Equal(self, itemOwner, "platform takes custody")

	node.now = t0 + day/2
	rewards, err := node.service.StakingRewards(ctx, &api.RewardsQuery{Address: alice})
	require.NoError(err, "StakingRewards")
	require.EqualValues(500_000, rewards.Funds[0].Amount.ToBigInt().Uint64(), "query stamped with the clock")

	node.mustSubmit(alice, nil, api.MethodClaimStakingRewards, nil)
	require.EqualValues(500_000, node.balance(alice, stars.Token), "half a day of rewards")

	node.mustSubmit(alice, nil, api.MethodClaimStakingRewards, nil)
	require.EqualValues(500_000, node.balance(alice, stars.Token), "second claim pays nothing")

	balances, err := node.service.AssociatedBalances(ctx, alice)
	require.NoError(err, "AssociatedBalances")
	require.Len(balances.Funds, 1)
	require.EqualValues(500_000, balances.Funds[0].Amount.ToBigInt().Uint64())

	balances, err = node.service.AssociatedBalances(ctx, bob)
	require.NoError(err, "AssociatedBalances")
	require.Empty(balances.Funds, "zero balances are omitted")

	node.now = t0 + day
	node.mustSubmit(alice, nil, api.MethodUnstake, &api.UnstakeBody{Collections: []api.CollectionItems{{CollectionAddress: "coll1", Items: []api.ItemID{"1"}}}})
	itemOwner, _ = node.ledger.ItemOwner("coll1", "1")
	require.Equal(alice, itemOwner, "item returned")
	require.EqualValues(1_000_000, node.balance(alice, stars.Token))

	genesis, err := node.service.StateToGenesis(ctx)
	require.NoError(err, "StateToGenesis")
	require.NoError(genesis.SanityCheck())
	require.EqualValues(9_000_000, genesis.Balances[0].Funds.Amount.ToBigInt().Uint64())
}

func TestFailedTransactionRollsBack(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	node := newTestNode(t, true)

	node.addCollection("coll1", newCollection("punks", api.EmissionSpending, stars, 1_000_000))

	for _, tc := range []struct {
		msg    string
		caller api.Address
		funds  []api.Funds
		method transaction.MethodName
		body   interface{}
		err    error
	}{
		{
			msg:    "custody of an item the caller does not hold",
			caller: alice,
			method: api.MethodStake,
			body:   stakeBody("coll1", "1", "3"),
			err:    api.ErrAssetIsNotFound,
		},
		{
			msg:    "escrow beyond the caller balance",
			caller: owner,
			funds:  []api.Funds{api.NewFundsFromUint64(20_000, stars)},
			method: api.MethodDepositTokens,
			body:   &api.DepositTokensBody{CollectionAddress: "coll1"},
			err:    quantity.ErrInsufficientBalance,
		},
		{
			msg:    "escrowed payment of a rejected operation",
			caller: project,
			funds:  []api.Funds{price},
			method: api.MethodAcceptProposal,
			body:   &api.ProposalIDBody{ID: 1},
			err:    api.ErrWrongProposalStatus,
		},
	} {
		projectBefore := node.balance(project, stars.Token)
		platformBefore := node.balance(self, stars.Token)

		_, err := node.submit(tc.caller, tc.funds, tc.method, tc.body)
		require.ErrorIs(err, tc.err, tc.msg)

		require.Equal(projectBefore, node.balance(project, stars.Token), tc.msg)
		require.Equal(platformBefore, node.balance(self, stars.Token), tc.msg)
		itemOwner, _ := node.ledger.ItemOwner("coll1", "1")
		require.Equal(alice, itemOwner, tc.msg)
		stakers, err := node.service.Stakers(ctx, nil)
		require.NoError(err, tc.msg)
		require.Empty(stakers, tc.msg)
	}
}

func TestMintingThroughMinter(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	for _, tc := range []struct {
		msg             string
		platformMayMint bool
	}{
		{msg: "platform authorized by the minter", platformMayMint: true},
		{msg: "platform unknown to the minter", platformMayMint: false},
	} {
		node := newTestNode(t, tc.platformMayMint)

		_, err := node.minter.SubmitTx(ctx, api.NewTransaction(owner, []api.Funds{api.NewFundsFromUint64(100, stars)}, 0,
			minterAPI.MethodCreateDenom, &minterAPI.CreateDenomBody{Owner: project, Subdenom: "ugop"}))
		require.NoError(err, "CreateDenom (%s)", tc.msg)
		denom := minterAPI.FullDenom(minterAddr, "ugop")
		gop := api.NewCurrency(api.NewNativeToken(denom), 6)

		node.addCollection("coll1", newCollection("punks", api.EmissionMinting, gop, 2_000_000))
		node.mustSubmit(alice, nil, api.MethodStake, stakeBody("coll1", "1"))

		node.now = t0 + day
		_, err = node.submit(alice, nil, api.MethodClaimStakingRewards, nil)
		if !tc.platformMayMint {
			require.ErrorIs(err, minterAPI.ErrUnauthorized, tc.msg)
			stakers, qerr := node.service.Stakers(ctx, nil)
			require.NoError(qerr, tc.msg)
			require.Equal(t0, stakers[0].Collections[0].Items[0].LastClaim, "failed claim leaves the item untouched (%s)", tc.msg)
			continue
		}
		require.NoError(err, tc.msg)
		require.EqualValues(2_000_000, node.balance(alice, gop.Token), tc.msg)
	}
}

func TestWatchEvents(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	node := newTestNode(t, true)

	ch, sub, err := node.service.WatchEvents(ctx)
	require.NoError(err, "WatchEvents")
	defer sub.Close()

	node.mustSubmit(admin, nil, api.MethodUpdateConfig, &api.UpdateConfigBody{})

	select {
	case ev := <-ch:
		require.Equal(api.MethodUpdateConfig, ev.Method)
		require.Equal(t0, ev.Now, "event stamped with the transaction time")
		require.NotNil(ev.Config)
	case <-time.After(time.Second):
		t.Fatal("failed to receive event")
	}
}

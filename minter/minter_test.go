package minter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryptogopniks/GopStake/common/quantity"
	"github.com/cryptogopniks/GopStake/common/transaction"
	"github.com/cryptogopniks/GopStake/minter/api"
	staking "github.com/cryptogopniks/GopStake/staking/api"
	"github.com/cryptogopniks/GopStake/staking/host"
	"github.com/cryptogopniks/GopStake/storage/memory"
)

const (
	admin    = staking.Address("admin")
	owner    = staking.Address("owner")
	creator  = staking.Address("creator")
	platform = staking.Address("platform")
	stranger = staking.Address("stranger")
	self     = staking.Address("minter")
)

var fee = staking.NewFundsFromUint64(10, staking.NewCurrency(staking.NewNativeToken("ustars"), 6))

func newTestService(t *testing.T) (*Service, *host.LocalLedger) {
	require := require.New(t)

	ledger, err := host.NewLocalLedger(&host.LedgerGenesis{
		Accounts: []host.LedgerAccount{
			{Address: owner, Funds: []staking.Funds{staking.NewFundsFromUint64(1000, fee.Currency)}},
			{Address: stranger, Funds: []staking.Funds{staking.NewFundsFromUint64(1000, fee.Currency)}},
		},
	})
	require.NoError(err, "NewLocalLedger")

	backend := memory.New()
	t.Cleanup(backend.Close)

	svc, err := NewService(&Config{
		Storage: backend,
		Minter:  New(self),
		Bank:    ledger,
		Factory: ledger,
	})
	require.NoError(err, "NewService")

	o, p := owner, platform
	require.NoError(svc.InitChain(context.Background(), &api.Genesis{
		Config: api.Config{Admin: admin, Owner: &o, StakingPlatform: &p},
	}), "InitChain")

	return svc, ledger
}

func submit(svc *Service, caller staking.Address, funds []staking.Funds, method transaction.MethodName, body interface{}) (*api.Result, error) {
	return svc.SubmitTx(context.Background(), staking.NewTransaction(caller, funds, 0, method, body))
}

func TestCreateDenom(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	svc, ledger := newTestService(t)

	body := &api.CreateDenomBody{Owner: creator, Subdenom: "ugop"}
	for _, tc := range []struct {
		msg    string
		caller staking.Address
		funds  []staking.Funds
		body   *api.CreateDenomBody
		err    error
	}{
		{msg: "stranger", caller: stranger, funds: []staking.Funds{fee}, body: body, err: api.ErrUnauthorized},
		{msg: "missing fee", caller: owner, body: body, err: api.ErrWrongFundsCombination},
		{msg: "malformed subdenom", caller: owner, funds: []staking.Funds{fee}, body: &api.CreateDenomBody{Owner: creator, Subdenom: "a/b"}, err: api.ErrInvalidArgument},
	} {
		_, err := submit(svc, tc.caller, tc.funds, api.MethodCreateDenom, tc.body)
		require.ErrorIs(err, tc.err, tc.msg)
	}

	res, err := submit(svc, owner, []staking.Funds{fee}, api.MethodCreateDenom, body)
	require.NoError(err, "CreateDenom")
	require.Len(res.Instructions, 1)
	require.Equal("factory/minter/ugop", res.Instructions[0].CreateDenom.Denom)

	paid, _ := ledger.Balance(ctx, self, fee.Currency.Token)
	require.EqualValues(10, paid.ToBigInt().Uint64(), "fee kept by the minter")

	_, err = submit(svc, admin, []staking.Funds{fee}, api.MethodCreateDenom, &api.CreateDenomBody{Owner: stranger, Subdenom: "ugop"})
	require.ErrorIs(err, quantity.ErrInsufficientBalance, "admin holds no funds for the fee")
	_, err = submit(svc, owner, []staking.Funds{fee}, api.MethodCreateDenom, &api.CreateDenomBody{Owner: stranger, Subdenom: "ugop"})
	require.ErrorIs(err, api.ErrDenomExists, "denoms are unique across owners")

	left, _ := ledger.Balance(ctx, owner, fee.Currency.Token)
	require.EqualValues(990, left.ToBigInt().Uint64(), "failed creation refunds the fee")

	denoms, err := svc.DenomsByCreator(ctx, creator)
	require.NoError(err, "DenomsByCreator")
	require.Equal([]string{"factory/minter/ugop"}, denoms)
	denoms, err = svc.DenomsByCreator(ctx, stranger)
	require.NoError(err, "DenomsByCreator")
	require.Empty(denoms)
}

func TestMintAndBurn(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	svc, ledger := newTestService(t)

	_, err := submit(svc, owner, []staking.Funds{fee}, api.MethodCreateDenom, &api.CreateDenomBody{Owner: creator, Subdenom: "ugop"})
	require.NoError(err, "CreateDenom")
	denom := api.FullDenom(self, "ugop")
	gop := staking.NewNativeToken(denom)

	mint := func(amount uint64) *api.MintTokensBody {
		return &api.MintTokensBody{Denom: denom, Amount: *quantity.NewFromUint64(amount), Recipient: stranger}
	}
	for _, tc := range []struct {
		msg    string
		caller staking.Address
		body   *api.MintTokensBody
		err    error
	}{
		{msg: "staking platform", caller: platform, body: mint(100)},
		{msg: "denom owner", caller: creator, body: mint(50)},
		{msg: "stranger", caller: stranger, body: mint(1), err: api.ErrUnauthorized},
		{msg: "config owner is not the denom owner", caller: owner, body: mint(1), err: api.ErrUnauthorized},
		{msg: "unknown denom", caller: platform, body: &api.MintTokensBody{Denom: "factory/minter/none", Amount: *quantity.NewFromUint64(1), Recipient: stranger}, err: api.ErrAssetIsNotFound},
		{msg: "zero amount", caller: platform, body: mint(0), err: api.ErrInvalidArgument},
	} {
		_, err = submit(svc, tc.caller, nil, api.MethodMintTokens, tc.body)
		if tc.err != nil {
			require.ErrorIs(err, tc.err, tc.msg)
			continue
		}
		require.NoError(err, tc.msg)
	}

	require.NoError(svc.Mint(ctx, platform, stranger, denom, quantity.NewFromUint64(25)), "Mint")
	require.ErrorIs(svc.Mint(ctx, stranger, stranger, denom, quantity.NewFromUint64(25)), api.ErrUnauthorized)

	held, _ := ledger.Balance(ctx, stranger, gop)
	require.EqualValues(175, held.ToBigInt().Uint64())

	burn := staking.NewFundsFromUint64(75, staking.NewCurrency(gop, 0))
	_, err = submit(svc, stranger, []staking.Funds{burn}, api.MethodBurnTokens, nil)
	require.NoError(err, "BurnTokens")
	held, _ = ledger.Balance(ctx, stranger, gop)
	require.EqualValues(100, held.ToBigInt().Uint64())
	burned, _ := ledger.Balance(ctx, self, gop)
	require.True(burned.IsZero(), "escrowed tokens are burned")

	_, err = submit(svc, stranger, []staking.Funds{fee}, api.MethodBurnTokens, nil)
	require.ErrorIs(err, api.ErrAssetIsNotFound, "only registered denoms burn")
	_, err = submit(svc, stranger, nil, api.MethodBurnTokens, nil)
	require.ErrorIs(err, api.ErrWrongFundsCombination)
}

func TestSetMetadataAndConfig(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := submit(svc, owner, []staking.Funds{fee}, api.MethodCreateDenom, &api.CreateDenomBody{Owner: creator, Subdenom: "ugop"})
	require.NoError(err, "CreateDenom")
	denom := api.FullDenom(self, "ugop")

	md := &api.SetMetadataBody{Metadata: api.Metadata{Base: denom, Display: "gop", Name: "Gop", Symbol: "GOP"}}
	_, err = submit(svc, stranger, nil, api.MethodSetMetadata, md)
	require.ErrorIs(err, api.ErrUnauthorized, "stranger")
	_, err = submit(svc, creator, nil, api.MethodSetMetadata, md)
	require.NoError(err, "denom owner may set metadata")
	_, err = submit(svc, admin, nil, api.MethodSetMetadata, &api.SetMetadataBody{Metadata: api.Metadata{Base: "factory/minter/none"}})
	require.ErrorIs(err, api.ErrAssetIsNotFound)

	newPlatform := staking.Address("platform2")
	_, err = submit(svc, owner, nil, api.MethodUpdateConfig, &api.UpdateConfigBody{StakingPlatform: &newPlatform})
	require.ErrorIs(err, api.ErrUnauthorized, "only the admin updates config")
	_, err = submit(svc, admin, nil, api.MethodUpdateConfig, &api.UpdateConfigBody{StakingPlatform: &newPlatform})
	require.NoError(err, "UpdateConfig")

	genesis, err := svc.StateToGenesis(ctx)
	require.NoError(err, "StateToGenesis")
	require.NoError(genesis.SanityCheck())
	require.Equal(newPlatform, *genesis.Config.StakingPlatform)
	require.Equal(owner, *genesis.Config.Owner, "unset fields are kept")
	require.Equal([]api.OwnerDenoms{{Owner: creator, Denoms: []string{denom}}}, genesis.Denoms)

	require.ErrorIs(svc.Mint(ctx, platform, stranger, denom, quantity.NewFromUint64(1)), api.ErrUnauthorized, "old platform revoked")
}

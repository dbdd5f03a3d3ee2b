package node

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	cmnGrpc "github.com/cryptogopniks/GopStake/common/grpc"
	genesisAPI "github.com/cryptogopniks/GopStake/genesis/api"
	genesisFile "github.com/cryptogopniks/GopStake/genesis/file"
	cmdCommon "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common"
	"github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/flags"
	cmdGrpc "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/grpc"
	minterAPI "github.com/cryptogopniks/GopStake/minter/api"
	stakingAPI "github.com/cryptogopniks/GopStake/staking/api"
	"github.com/cryptogopniks/GopStake/staking/host"
)

func testGenesis() *genesisAPI.Document {
	stars := stakingAPI.NewCurrency(stakingAPI.NewNativeToken("ustars"), 6)
	platform, minter := stakingAPI.Address("platform"), stakingAPI.Address("minter")

	doc := &genesisAPI.Document{
		ChainID:     "gopstake-node-test",
		Time:        time.Unix(1_700_000_000, 0).UTC(),
		Platform:    platform,
		Minter:      minter,
		Staking:     *stakingAPI.NewGenesis("admin", nil, &minter),
		MinterState: minterAPI.Genesis{Config: minterAPI.Config{Admin: "admin", StakingPlatform: &platform}},
		Ledger: host.LedgerGenesis{
			Accounts: []host.LedgerAccount{
				{Address: platform, Funds: []stakingAPI.Funds{stakingAPI.NewFundsFromUint64(10_000_000, stars)}},
			},
			Items: []host.ItemOwner{{Collection: "coll1", ItemID: "1", Owner: "alice"}},
		},
	}
	doc.Staking.Collections = []stakingAPI.CollectionEntry{{
		Address: "coll1",
		Collection: stakingAPI.Collection{
			Name:            "punks",
			StakingCurrency: stars,
			DailyRewards:    decimal.NewFromInt(1_000_000),
			EmissionType:    stakingAPI.EmissionSpending,
			Owner:           "project",
		},
	}}
	doc.Staking.Balances = []stakingAPI.CollectionBalance{{
		Address: "coll1",
		Funds:   stakingAPI.NewFundsFromUint64(10_000_000, stars),
	}}
	return doc
}

func TestNodeLifecycle(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	dataDir := t.TempDir()
	genesisFilename := filepath.Join(dataDir, "genesis.json")
	require.NoError(genesisFile.WriteFile(testGenesis(), genesisFilename), "WriteFile")

	socket := "unix:" + filepath.Join(dataDir, "test.sock")
	viper.Set(cmdCommon.CfgDataDir, dataDir)
	viper.Set(flags.CfgGenesisFile, genesisFilename)
	viper.Set(CfgStorageBackend, storageBackendMemory)
	viper.Set(cmdGrpc.CfgServerAddress, socket)

	node, err := NewNode()
	require.NoError(err, "NewNode")

	conn, err := cmnGrpc.Dial(socket)
	require.NoError(err, "Dial")

	staking := stakingAPI.NewStakingClient(conn)
	cfg, err := staking.Config(ctx)
	require.NoError(err, "Config")
	require.Equal(stakingAPI.Address("admin"), cfg.Admin)

	minterCfg, err := minterAPI.NewMinterClient(conn).Config(ctx)
	require.NoError(err, "minter Config")
	require.NotNil(minterCfg.StakingPlatform)

	_, err = staking.SubmitTx(ctx, stakingAPI.NewTransaction("alice", nil, 0, stakingAPI.MethodStake, &stakingAPI.StakeBody{
		Collections: []stakingAPI.CollectionItems{{CollectionAddress: "coll1", Items: []stakingAPI.ItemID{"1"}}},
	}))
	require.NoError(err, "SubmitTx")

	_, err = staking.SubmitTx(ctx, stakingAPI.NewTransaction("bob", nil, 0, stakingAPI.MethodStake, &stakingAPI.StakeBody{
		Collections: []stakingAPI.CollectionItems{{CollectionAddress: "coll1", Items: []stakingAPI.ItemID{"1"}}},
	}))
	require.ErrorIs(err, stakingAPI.ErrAssetIsNotFound, "error codes survive the transport")

	stakers, err := staking.Stakers(ctx, nil)
	require.NoError(err, "Stakers")
	require.Len(stakers, 1)

	require.NoError(conn.Close())
	node.Cleanup()

	ledger, err := loadLedger(dataDir, &host.LedgerGenesis{})
	require.NoError(err, "loadLedger")
	owner, ok := ledger.ItemOwner("coll1", "1")
	require.True(ok, "persisted item")
	require.Equal(stakingAPI.Address("platform"), owner, "persisted custody")
}

package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cryptogopniks/GopStake/genesis/api"
	minter "github.com/cryptogopniks/GopStake/minter/api"
	staking "github.com/cryptogopniks/GopStake/staking/api"
	"github.com/cryptogopniks/GopStake/staking/host"
)

func testDocument() *api.Document {
	stars := staking.NewCurrency(staking.NewNativeToken("ustars"), 6)
	owner, minterAddr, platform := staking.Address("owner"), staking.Address("minter"), staking.Address("platform")

	doc := &api.Document{
		ChainID:  "gopstake-test",
		Time:     time.Unix(1_700_000_000, 0).UTC(),
		Platform: platform,
		Minter:   minterAddr,
		Staking:  *staking.NewGenesis("admin", &owner, &minterAddr),
		MinterState: minter.Genesis{
			Config: minter.Config{Admin: "admin", StakingPlatform: &platform},
		},
		Ledger: host.LedgerGenesis{
			Accounts: []host.LedgerAccount{{Address: "project", Funds: []staking.Funds{staking.NewFundsFromUint64(1_000, stars)}}},
			Items:    []host.ItemOwner{{Collection: "coll1", ItemID: "1", Owner: "alice"}},
		},
	}
	doc.Staking.Collections = []staking.CollectionEntry{{
		Address: "coll1",
		Collection: staking.Collection{
			Name:            "punks",
			StakingCurrency: stars,
			DailyRewards:    decimal.NewFromInt(1_000_000),
			EmissionType:    staking.EmissionSpending,
			Owner:           "project",
		},
	}}
	doc.Staking.Balances = []staking.CollectionBalance{{Address: "coll1", Funds: staking.NewFundsFromUint64(0, stars)}}
	return doc
}

func TestFileRoundTrip(t *testing.T) {
	require := require.New(t)

	doc := testDocument()
	require.NoError(doc.SanityCheck(), "SanityCheck")

	filename := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(WriteFile(doc, filename), "WriteFile")

	provider, err := NewFileProvider(filename)
	require.NoError(err, "NewFileProvider")
	loaded, err := provider.GetGenesisDocument()
	require.NoError(err, "GetGenesisDocument")

	require.Equal(doc.ChainID, loaded.ChainID)
	require.True(doc.Time.Equal(loaded.Time))
	require.Equal(doc.Staking.Config, loaded.Staking.Config)
	require.Len(loaded.Staking.Collections, 1)
	require.True(doc.Staking.Collections[0].Collection.DailyRewards.Equal(loaded.Staking.Collections[0].Collection.DailyRewards))
	require.Equal(staking.EmissionSpending, loaded.Staking.Collections[0].Collection.EmissionType)
	require.EqualValues(1_000, loaded.Ledger.Accounts[0].Funds[0].Amount.ToBigInt().Uint64())
}

func TestFileRejectsBadDocuments(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	_, err := NewFileProvider(filepath.Join(dir, "missing.json"))
	require.Error(err, "missing file")

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(os.WriteFile(garbage, []byte("{"), 0o600))
	_, err = NewFileProvider(garbage)
	require.ErrorContains(err, "malformed genesis file")

	doc := testDocument()
	doc.ChainID = ""
	other := staking.Address("other")
	doc.MinterState.Config.StakingPlatform = &other
	bad := filepath.Join(dir, "bad.json")
	require.NoError(WriteFile(doc, bad))
	_, err = NewFileProvider(bad)
	require.ErrorContains(err, "chain ID must not be empty")
	require.ErrorContains(err, "minter config names platform 'other'")
}

package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	minter "github.com/cryptogopniks/GopStake/minter/api"
	staking "github.com/cryptogopniks/GopStake/staking/api"
	"github.com/cryptogopniks/GopStake/staking/host"
)

func TestDocumentSanityCheck(t *testing.T) {
	require := require.New(t)

	platform, minterAddr, other := staking.Address("platform"), staking.Address("minter"), staking.Address("other")
	valid := func() *Document {
		return &Document{
			ChainID:     "gopstake-test",
			Time:        time.Unix(1_700_000_000, 0),
			Platform:    platform,
			Minter:      minterAddr,
			Staking:     *staking.NewGenesis("admin", nil, &minterAddr),
			MinterState: minter.Genesis{Config: minter.Config{Admin: "admin", StakingPlatform: &platform}},
		}
	}
	require.NoError(valid().SanityCheck(), "valid document")

	for _, tc := range []struct {
		msg    string
		mutate func(*Document)
		errs   int
	}{
		{"empty chain ID", func(d *Document) { d.ChainID = " " }, 1},
		{"future genesis", func(d *Document) { d.Time = time.Now().Add(time.Hour) }, 1},
		{"shared address", func(d *Document) { d.Minter = platform; d.Staking.Config.Minter = nil }, 1},
		{"staking names another minter", func(d *Document) { d.Staking.Config.Minter = &other }, 1},
		{
			msg: "violations accumulate",
			mutate: func(d *Document) {
				d.ChainID = ""
				d.MinterState.Config.StakingPlatform = &other
				d.Ledger = host.LedgerGenesis{Accounts: []host.LedgerAccount{{Address: ""}}}
			},
			errs: 3,
		},
	} {
		doc := valid()
		tc.mutate(doc)
		err := doc.SanityCheck()
		require.Error(err, tc.msg)
		require.Len(multierr.Errors(err), tc.errs, tc.msg)
	}
}

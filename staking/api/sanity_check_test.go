package api

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
)

func validGenesis() *Genesis {
	owner := Address("owner")
	g := NewGenesis("admin", &owner, nil)
	cur := NewCurrency(NewNativeToken("ustars"), 6)
	coll := testCollection("punks", EmissionSpending, cur.Token)
	g.Collections = []CollectionEntry{
		{Address: "coll1", Collection: coll},
		{Address: "coll2", Collection: testCollection("apes", EmissionMinting, cur.Token)},
	}
	g.Balances = []CollectionBalance{{Address: "coll1", Funds: NewFundsFromUint64(100, cur)}}
	g.Proposals = []Proposal{{
		ID:      1,
		Status:  StatusAccepted,
		Content: ProposalContent{AddCollection: &AddCollectionProposal{CollectionAddress: "coll1", Collection: coll}},
		Price:   NewFundsFromUint64(10, cur),
	}}
	g.LastProposalID = 1
	g.Funds = []Funds{NewFundsFromUint64(10, cur)}
	g.Stakers = []StakerInfo{{
		Address: "alice",
		Collections: []StakedCollectionInfo{{
			CollectionAddress: "coll1",
			Items:             []StakedItem{{ItemID: "1", StakingStart: 5, LastClaim: 10}},
		}},
	}}
	return g
}

func TestGenesisSanityCheck(t *testing.T) {
	require := require.New(t)

	require.NoError(validGenesis().SanityCheck(), "valid genesis")

	g := validGenesis()
	g.Collections[1].Collection.Name = "punks"
	g.LastProposalID = 0
	g.Funds = append(g.Funds, g.Funds[0])
	err := g.SanityCheck()
	require.Error(err, "broken genesis")
	var merr *multierror.Error
	require.ErrorAs(err, &merr)
	require.Len(merr.Errors, 3, "all violations are reported")

	g = validGenesis()
	g.Balances = append(g.Balances, CollectionBalance{Address: "coll2", Funds: g.Balances[0].Funds})
	require.Error(g.SanityCheck(), "balance for minting collection")

	g = validGenesis()
	g.Balances = nil
	require.Error(g.SanityCheck(), "missing balance for spending collection")

	g = validGenesis()
	g.Stakers[0].Collections[0].Items[0].LastClaim = 1
	require.Error(g.SanityCheck(), "last claim before staking start")
}

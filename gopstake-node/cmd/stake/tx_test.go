package stake

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryptogopniks/GopStake/staking/api"
)

func TestParseItems(t *testing.T) {
	require := require.New(t)

	items, err := parseItems([]string{"coll1:1", "coll2:7", "coll1:2"})
	require.NoError(err, "parseItems")
	require.Equal([]api.CollectionItems{
		{CollectionAddress: "coll1", Items: []api.ItemID{"1", "2"}},
		{CollectionAddress: "coll2", Items: []api.ItemID{"7"}},
	}, items, "grouped in order of first appearance")

	_, err = parseItems([]string{"coll1"})
	require.Error(err, "missing item ID")
}

func TestParseRecipients(t *testing.T) {
	require := require.New(t)

	recipients, err := parseRecipients([]string{"alice:0.5", "bob:1"})
	require.NoError(err, "parseRecipients")
	require.Len(recipients, 2)
	require.Equal(api.Address("alice"), recipients[0].Address)
	require.Equal("0.5", recipients[0].Weight.String())

	_, err = parseRecipients([]string{"alice:half"})
	require.Error(err, "malformed weight")
}

package api

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testCollection(name string, emission EmissionType, token Token) Collection {
	return Collection{
		Name:            name,
		StakingCurrency: NewCurrency(token, 6),
		DailyRewards:    decimal.NewFromInt(1_000_000),
		EmissionType:    emission,
		Owner:           "owner1",
	}
}

func TestCollectionValidateBasic(t *testing.T) {
	native := NewNativeToken("ustars")
	issued := NewIssuedToken("cw20")

	negative := testCollection("neg", EmissionSpending, native)
	negative.DailyRewards = decimal.NewFromInt(-1)
	noOwner := testCollection("noowner", EmissionSpending, native)
	noOwner.Owner = ""

	for _, tc := range []struct {
		coll Collection
		err  error
		msg  string
	}{
		{testCollection("a", EmissionSpending, native), nil, "spending native"},
		{testCollection("a", EmissionSpending, issued), nil, "spending issued"},
		{testCollection("a", EmissionMinting, native), nil, "minting native"},
		{testCollection("a", EmissionMinting, issued), ErrWrongMinterTokenType, "minting issued"},
		{testCollection("", EmissionSpending, native), ErrInvalidArgument, "empty name"},
		{testCollection("a", EmissionInvalid, native), ErrInvalidArgument, "invalid emission"},
		{negative, ErrInvalidArgument, "negative rate"},
		{noOwner, ErrInvalidArgument, "missing owner"},
	} {
		err := tc.coll.ValidateBasic()
		if tc.err == nil {
			require.NoError(t, err, tc.msg)
		} else {
			require.ErrorIs(t, err, tc.err, tc.msg)
		}
	}
}

func TestTermsDiffer(t *testing.T) {
	require := require.New(t)

	a := testCollection("a", EmissionSpending, NewNativeToken("ustars"))
	b := a
	b.Name = "renamed"
	b.Owner = "owner2"
	require.False(a.TermsDiffer(&b), "name and owner are not reward terms")

	b.DailyRewards = decimal.RequireFromString("1000000.0")
	require.False(a.TermsDiffer(&b), "equal rates with different scale")

	b.DailyRewards = decimal.NewFromInt(2)
	require.True(a.TermsDiffer(&b), "rate changed")

	c := a
	c.StakingCurrency = NewCurrency(NewNativeToken("uosmo"), 6)
	require.True(a.TermsDiffer(&c), "currency changed")
}

func TestProposalContent(t *testing.T) {
	require := require.New(t)

	coll := testCollection("a", EmissionSpending, NewNativeToken("ustars"))
	var pc ProposalContent
	require.ErrorIs(pc.ValidateBasic(), ErrInvalidArgument, "empty content")
	require.Nil(pc.Collection())

	pc.AddCollection = &AddCollectionProposal{CollectionAddress: "coll1", Collection: coll}
	require.NoError(pc.ValidateBasic(), "add collection")
	require.Equal("a", pc.Collection().Name)

	pc.UpdateCollection = &UpdateCollectionProposal{CollectionAddress: "coll1", NewCollection: coll}
	require.ErrorIs(pc.ValidateBasic(), ErrInvalidArgument, "both variants set")

	pc.AddCollection = nil
	require.NoError(pc.ValidateBasic(), "update collection")
	require.EqualValues("coll1", pc.UpdateCollection.ResultAddress())

	newAddr := Address("coll2")
	pc.UpdateCollection.NewCollectionAddress = &newAddr
	require.EqualValues("coll2", pc.UpdateCollection.ResultAddress())
}

func TestProposalStatusText(t *testing.T) {
	require := require.New(t)

	for _, s := range []ProposalStatus{StatusActive, StatusAccepted, StatusRejected} {
		text, err := s.MarshalText()
		require.NoError(err, "MarshalText")
		var dec ProposalStatus
		require.NoError(dec.UnmarshalText(text), "UnmarshalText")
		require.Equal(s, dec)
	}
	_, err := StatusInvalid.MarshalText()
	require.Error(err, "invalid status")

	var e EmissionType
	require.NoError(e.UnmarshalText([]byte("minting")))
	require.Equal(EmissionMinting, e)
	require.Error(e.UnmarshalText([]byte("burning")))
}

func TestCreateProposalBody(t *testing.T) {
	require := require.New(t)

	coll := testCollection("a", EmissionMinting, NewIssuedToken("cw20"))
	body := CreateProposalBody{
		Content: ProposalContent{AddCollection: &AddCollectionProposal{CollectionAddress: "coll1", Collection: coll}},
		Price:   NewFundsFromUint64(0, NewCurrency(NewNativeToken("ustars"), 6)),
	}
	require.ErrorIs(body.ValidateBasic(), ErrWrongMinterTokenType, "minting proposal with issued currency")

	body.Content.AddCollection.Collection.StakingCurrency = NewCurrency(NewNativeToken("ustars"), 6)
	require.NoError(body.ValidateBasic(), "minting proposal with native currency")
}

func TestStakeBody(t *testing.T) {
	require := require.New(t)

	var body StakeBody
	require.ErrorIs(body.ValidateBasic(), ErrCollectionIsNotAdded, "no collections")

	body.Collections = []CollectionItems{{CollectionAddress: "coll1"}}
	require.ErrorIs(body.ValidateBasic(), ErrCollectionIsNotAdded, "no items")

	body.Collections[0].Items = []ItemID{"1", "1"}
	require.ErrorIs(body.ValidateBasic(), ErrInvalidArgument, "duplicate items")

	body.Collections[0].Items = []ItemID{"1", "2"}
	require.NoError(body.ValidateBasic())

	body.Collections = append(body.Collections, CollectionItems{CollectionAddress: "coll1", Items: []ItemID{"3"}})
	require.ErrorIs(body.ValidateBasic(), ErrInvalidArgument, "duplicate collections")
}

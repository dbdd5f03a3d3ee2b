package api

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryptogopniks/GopStake/common/cbor"
	"github.com/cryptogopniks/GopStake/common/prettyprint"
)

func TestTokenEqual(t *testing.T) {
	for _, tc := range []struct {
		a, b  Token
		equal bool
		msg   string
	}{
		{NewNativeToken("ustars"), NewNativeToken("ustars"), true, "same native"},
		{NewNativeToken("ustars"), NewNativeToken("uosmo"), false, "different denom"},
		{NewIssuedToken("cw20"), NewIssuedToken("cw20"), true, "same issued"},
		{NewNativeToken("cw20"), NewIssuedToken("cw20"), false, "native vs issued"},
		{Token{}, Token{}, false, "invalid tokens are never equal"},
	} {
		require.Equal(t, tc.equal, tc.a.Equal(tc.b), tc.msg)
	}
}

func TestParseToken(t *testing.T) {
	require := require.New(t)

	tok, err := ParseToken("native:ustars")
	require.NoError(err, "ParseToken native")
	require.True(tok.Equal(NewNativeToken("ustars")))
	require.Equal("native:ustars", tok.String())

	tok, err = ParseToken("issued:contract1")
	require.NoError(err, "ParseToken issued")
	require.True(tok.Equal(NewIssuedToken("contract1")))

	denom, err := tok.NativeDenom()
	require.ErrorIs(err, ErrWrongMinterTokenType, "NativeDenom of issued token")
	require.Empty(denom)

	_, err = ParseToken("ustars")
	require.ErrorIs(err, ErrInvalidArgument, "missing kind")
	_, err = ParseToken("native:")
	require.ErrorIs(err, ErrInvalidArgument, "empty denom")
	_, err = ParseToken("issued:a b")
	require.ErrorIs(err, ErrInvalidArgument, "malformed issuer")
}

func TestCurrencyEqual(t *testing.T) {
	require := require.New(t)

	a := NewCurrency(NewNativeToken("ustars"), 6)
	b := NewCurrency(NewNativeToken("ustars"), 6)
	c := NewCurrency(NewNativeToken("ustars"), 8)
	require.True(a.Equal(b), "structurally equal currencies")
	require.False(a.Equal(c), "decimals differ")
}

func TestFunds(t *testing.T) {
	require := require.New(t)

	cur := NewCurrency(NewNativeToken("ustars"), 6)
	f := NewFundsFromUint64(1_500_000, cur)
	g := NewFundsFromUint64(1_500_000, cur)
	require.True(f.Equal(&g), "equal funds")

	var dec Funds
	require.NoError(cbor.Unmarshal(cbor.Marshal(f), &dec), "cbor round trip")
	require.True(f.Equal(&dec), "round trip preserves funds")

	var sb strings.Builder
	f.PrettyPrint(context.Background(), "", &sb)
	require.Equal("1500000 native:ustars\n", sb.String())

	sb.Reset()
	ctx := context.WithValue(context.Background(), prettyprint.ContextKeyShowDecimals, true)
	f.PrettyPrint(ctx, "", &sb)
	require.Equal("1.5 native:ustars\n", sb.String())
}

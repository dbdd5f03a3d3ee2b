package common

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryptogopniks/GopStake/staking/api"
)

func TestParseFunds(t *testing.T) {
	require := require.New(t)

	f, err := ParseFunds("1000:6:native:ustars")
	require.NoError(err, "ParseFunds")
	require.EqualValues(1000, f.Amount.ToBigInt().Uint64())
	require.True(f.Currency.Equal(api.NewCurrency(api.NewNativeToken("ustars"), 6)))

	f, err = ParseFunds(" 5:18:issued:cw20usdc ")
	require.NoError(err, "ParseFunds")
	require.True(f.Currency.Token.Equal(api.NewIssuedToken("cw20usdc")))

	for _, tc := range []struct {
		msg string
		raw string
	}{
		{"missing parts", "1000:6"},
		{"negative amount", "-1:6:native:ustars"},
		{"decimals overflow", "1:256:native:ustars"},
		{"unknown token kind", "1:6:wrapped:ustars"},
	} {
		_, err = ParseFunds(tc.raw)
		require.Error(err, tc.msg)
	}
}

package quantity

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryptogopniks/GopStake/common/cbor"
)

func fromInt(n int) *Quantity {
	q := NewQuantity()
	q.inner.SetInt64(int64(n))
	return q
}

func (q *Quantity) eqInt(n int) bool {
	return q.Cmp(fromInt(n)) == 0
}

func TestQuantityCtors(t *testing.T) {
	require := require.New(t)

	q := NewQuantity()
	require.True(q.eqInt(0), "New value")

	q = fromInt(23)
	nq := q.Clone()
	_ = q.FromBigInt(big.NewInt(666))
	require.True(nq.eqInt(23), "Clone value")
	require.True(NewFromUint64(7).eqInt(7), "NewFromUint64")
}

func TestFromBigInt(t *testing.T) {
	require := require.New(t)

	var q Quantity
	require.Equal(ErrInvalidQuantity, q.FromBigInt(nil), "FromBigInt(nil)")
	require.Equal(ErrInvalidQuantity, q.FromBigInt(big.NewInt(-1)), "FromBigInt(-1)")
	require.NoError(q.FromBigInt(big.NewInt(23)), "FromBigInt(23)")
	require.True(q.eqInt(23), "FromBigInt(23) value")
	require.Equal(ErrInvalidQuantity, q.FromInt64(-1), "FromInt64(-1)")
}

func TestQuantityArithmetic(t *testing.T) {
	require := require.New(t)

	q := fromInt(100)
	require.NoError(q.Add(fromInt(20)), "Add")
	require.True(q.eqInt(120), "Add value")
	require.Equal(ErrInvalidQuantity, q.Add(nil), "Add(nil)")

	require.NoError(q.Sub(fromInt(20)), "Sub")
	require.True(q.eqInt(100), "Sub value")
	require.Equal(ErrInsufficientBalance, q.Sub(fromInt(101)), "Sub underflow")
	require.True(q.eqInt(100), "Sub underflow leaves the value unchanged")

	taken, err := q.SubUpTo(fromInt(30))
	require.NoError(err, "SubUpTo")
	require.True(taken.eqInt(30), "SubUpTo amount")
	require.True(q.eqInt(70), "SubUpTo remaining")

	taken, err = q.SubUpTo(fromInt(1000))
	require.NoError(err, "SubUpTo clamped")
	require.True(taken.eqInt(70), "SubUpTo clamped amount")
	require.True(q.IsZero(), "SubUpTo clamped remaining")

	require.True(fromInt(5).Min(fromInt(9)).eqInt(5), "Min")
	require.True(fromInt(9).Min(fromInt(5)).eqInt(5), "Min reversed")
}

func TestQuantityCBORRoundTrip(t *testing.T) {
	require := require.New(t)

	for _, tc := range []struct {
		value  uint64
		rawHex string
	}{
		{0, "40"},
		{1, "4101"},
		{1000, "4203e8"},
		{18446744073709551615, "48ffffffffffffffff"},
	} {
		raw, err := hex.DecodeString(tc.rawHex)
		require.NoError(err, "DecodeString(%s)", tc.rawHex)

		q := NewFromUint64(tc.value)
		enc := cbor.Marshal(q)
		require.EqualValues(raw, enc, "serialization should match")

		var dec Quantity
		require.NoError(cbor.Unmarshal(enc, &dec), "Unmarshal")
		require.EqualValues(tc.value, dec.ToBigInt().Uint64(), "value should round-trip")
	}
}

func TestQuantityJSON(t *testing.T) {
	require := require.New(t)

	data, err := json.Marshal(NewFromUint64(1500000))
	require.NoError(err)
	require.Equal(`"1500000"`, string(data))

	var q Quantity
	require.NoError(json.Unmarshal(data, &q))
	require.True(q.eqInt(1500000))
	require.Error(json.Unmarshal([]byte(`"-5"`), &q), "negative quantities are rejected")
}

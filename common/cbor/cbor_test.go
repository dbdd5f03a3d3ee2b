package cbor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Name   string            `json:"name"`
	Amount uint64            `json:"amount,omitempty"`
	Tags   map[string]uint64 `json:"tags,omitempty"`
}

func TestCanonicalMapOrder(t *testing.T) {
	require := require.New(t)

	a := testRecord{Name: "x", Tags: map[string]uint64{"b": 2, "a": 1, "ccc": 3}}
	b := testRecord{Name: "x", Tags: map[string]uint64{"ccc": 3, "a": 1, "b": 2}}
	require.Equal(Marshal(a), Marshal(b), "map ordering must not affect the encoding")

	var dec testRecord
	require.NoError(Unmarshal(Marshal(a), &dec))
	require.Equal(a, dec)
}

func TestUnmarshalNil(t *testing.T) {
	var dec testRecord
	require.NoError(t, Unmarshal(nil, &dec), "nil input is a no-op")
	require.Equal(t, testRecord{}, dec)
}

func TestUnmarshalGarbage(t *testing.T) {
	var dec testRecord
	require.Error(t, Unmarshal([]byte{0xff, 0x00}, &dec))
	require.Panics(t, func() { MustUnmarshal([]byte{0xff, 0x00}, &dec) })
}

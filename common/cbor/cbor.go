// Package cbor provides helpers for encoding and decoding canonical CBOR.
//
// All persisted ledger state and all RPC payloads go through this package
// so that the same value always has the same serialization.
package cbor

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CfgDebugStrictCBOR enables CBOR round-trip enforcement.
const CfgDebugStrictCBOR = "debug.strict_cbor"

// Flags has the flags used by the CBOR wrapper.
var Flags = flag.NewFlagSet("", flag.ContinueOnError)

// RawMessage is a raw encoded CBOR value.
type RawMessage = cbor.RawMessage

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

// Marshal serializes a given type into a CBOR byte vector.
func Marshal(src interface{}) []byte {
	b, err := encMode.Marshal(src)
	if err != nil {
		panic("common/cbor: failed to marshal: " + err.Error())
	}
	return b
}

// Unmarshal deserializes a CBOR byte vector into a given type.
func Unmarshal(data []byte, dst interface{}) error {
	if data == nil {
		return nil
	}

	if err := decMode.Unmarshal(data, dst); err != nil {
		return err
	}

	if viper.GetBool(CfgDebugStrictCBOR) {
		reencoded := Marshal(dst)
		if !bytes.Equal(data, reencoded) {
			panic(fmt.Sprintf(
				"common/cbor: encoded %T does not round-trip (expected: %s, actual: %s)",
				dst,
				hex.EncodeToString(data),
				hex.EncodeToString(reencoded),
			))
		}
	}
	return nil
}

// MustUnmarshal deserializes a CBOR byte vector into a given type.
// Panics if unmarshal fails.
func MustUnmarshal(data []byte, dst interface{}) {
	if err := Unmarshal(data, dst); err != nil {
		panic(err)
	}
}

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
		TagsMd:      cbor.TagsForbidden,
	}
	if decMode, err = decOpts.DecMode(); err != nil {
		panic(err)
	}

	Flags.Bool(CfgDebugStrictCBOR, false, "(DEBUG) Enforce that CBOR blobs roundtrip")
	_ = Flags.MarkHidden(CfgDebugStrictCBOR)

	_ = viper.BindPFlags(Flags)
}

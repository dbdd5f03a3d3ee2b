package grpc

import (
	"github.com/cryptogopniks/GopStake/common/cbor"
)

// CBORCodec implements gRPC's encoding.Codec interface.
type CBORCodec struct{}

// Marshal serializes v into canonical CBOR.
func (c *CBORCodec) Marshal(v interface{}) ([]byte, error) {
	return cbor.Marshal(v), nil
}

// Unmarshal deserializes CBOR data into v.
func (c *CBORCodec) Unmarshal(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}

// Name returns the codec name.
func (c *CBORCodec) Name() string {
	return "cbor"
}

package transaction

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type testBody struct {
	Value uint64 `json:"value"`
}

var methodTest = NewMethodName("test", "Method", testBody{})

func TestCall(t *testing.T) {
	require := require.New(t)

	require.NoError(methodTest.SanityCheck())
	require.Error(MethodName("").SanityCheck(), "empty method")
	require.Error(MethodName("test.Unknown").SanityCheck(), "unregistered method")
	require.Panics(func() { NewMethodName("test", "Method", nil) }, "duplicate method")

	call := NewCall(methodTest, &testBody{Value: 42})
	var body testBody
	require.NoError(call.DecodeBody(&body))
	require.EqualValues(42, body.Value)

	empty := NewCall(methodTest, nil)
	require.Error(empty.DecodeBody(&body), "missing body")

	var buf bytes.Buffer
	call.PrettyPrint(context.Background(), "", &buf)
	require.Contains(buf.String(), "test.Method")
	require.Contains(buf.String(), "Value:42")
}

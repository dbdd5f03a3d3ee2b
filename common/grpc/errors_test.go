package grpc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryptogopniks/GopStake/common/errors"
)

var errTestMapped = errors.New("test/grpc", 1, "test: mapped error")

func TestErrorMapping(t *testing.T) {
	require := require.New(t)

	require.NoError(errorFromGrpc(errorToGrpc(nil)))

	err := errorFromGrpc(errorToGrpc(errTestMapped))
	require.True(errors.Is(err, errTestMapped), "coded errors survive the round trip")

	err = errorFromGrpc(errorToGrpc(errors.WithContext(errTestMapped, "collection c1")))
	require.True(errors.Is(err, errTestMapped), "context does not break matching")
	require.Equal("collection c1", errors.Context(err))

	plain := fmt.Errorf("plain failure")
	require.Equal(plain, errorToGrpc(plain), "uncoded errors pass through")
}

func TestServiceName(t *testing.T) {
	require := require.New(t)

	sn := NewServiceName("TestService")
	require.EqualValues("gopstake.TestService", sn)

	md := sn.NewMethod("Ping", nil)
	require.Equal("Ping", md.ShortName())
	require.Equal("/gopstake.TestService/Ping", md.FullName())

	got, err := GetRegisteredMethod(md.FullName())
	require.NoError(err)
	require.Equal(md, got)

	require.Panics(func() { sn.NewMethod("Ping", nil) }, "duplicate method")
	require.Panics(func() { NewServiceName("bad/name") }, "slash in service name")
}

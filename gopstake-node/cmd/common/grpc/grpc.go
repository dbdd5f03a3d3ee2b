// Package grpc implements common gRPC command-line flags.
package grpc

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	cmnGrpc "github.com/cryptogopniks/GopStake/common/grpc"
	"github.com/cryptogopniks/GopStake/gopstake-node/cmd/common"
)

const (
	// CfgServerAddress configures the server listen address.
	CfgServerAddress = "grpc.address"
	// CfgAddress configures the remote address.
	CfgAddress = "address"

	localSocketFilename = "internal.sock"
)

var (
	// ServerFlags has the flags used by the gRPC server.
	ServerFlags = flag.NewFlagSet("", flag.ContinueOnError)
	// ClientFlags has the flags for a gRPC client.
	ClientFlags = flag.NewFlagSet("", flag.ContinueOnError)
)

func localSocketAddress() (string, error) {
	dataDir := common.DataDir()
	if dataDir == "" {
		return "", errors.New("data directory must be set")
	}
	return "unix:" + filepath.Join(dataDir, localSocketFilename), nil
}

// NewServer constructs a new gRPC server service listening on the
// configured address, or on the local socket in the data directory.
func NewServer() (*cmnGrpc.Server, error) {
	addr := viper.GetString(CfgServerAddress)
	if addr == "" {
		var err error
		if addr, err = localSocketAddress(); err != nil {
			return nil, err
		}
	}

	return cmnGrpc.NewServer(&cmnGrpc.ServerConfig{
		Name:    "internal",
		Address: addr,
	})
}

// NewClient connects to a remote gRPC server.
func NewClient(cmd *cobra.Command) (*grpc.ClientConn, error) {
	addr, _ := cmd.Flags().GetString(CfgAddress)
	if addr == "" {
		var err error
		if addr, err = localSocketAddress(); err != nil {
			return nil, err
		}
	}

	return cmnGrpc.Dial(addr)
}

func init() {
	ServerFlags.String(CfgServerAddress, "", "gRPC listen address, the data directory socket if empty")
	_ = viper.BindPFlags(ServerFlags)

	ClientFlags.StringP(CfgAddress, "a", "", "remote gRPC address, the data directory socket if empty")
	_ = viper.BindPFlags(ClientFlags)
}

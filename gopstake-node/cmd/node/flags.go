package node

import (
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/flags"
	cmdGrpc "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/grpc"
	"github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/metrics"
)

const (
	// CfgStorageBackend configures the storage backend.
	CfgStorageBackend = "storage.backend"
	// CfgStorageGCInterval configures the badger value log GC interval.
	CfgStorageGCInterval = "storage.gc_interval"
	// CfgRESTAddress configures the REST gateway listen address. An empty
	// address disables the gateway.
	CfgRESTAddress = "rest.address"
	// CfgRESTAllowedOrigins configures the REST gateway CORS origins.
	CfgRESTAllowedOrigins = "rest.allowed_origins"

	storageBackendBadger = "badger"
	storageBackendMemory = "memory"
)

// Flags has the configuration flags.
var Flags = flag.NewFlagSet("", flag.ContinueOnError)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "run the node",
	Args:  cobra.NoArgs,
	Run:   Run,
}

// Register registers the node sub-commands.
func Register(parentCmd *cobra.Command) {
	nodeCmd.Flags().AddFlagSet(Flags)
	unsafeResetCmd.Flags().AddFlagSet(flags.ForceFlags)
	unsafeResetCmd.Flags().AddFlagSet(unsafeResetFlags)

	parentCmd.AddCommand(nodeCmd)
	parentCmd.AddCommand(unsafeResetCmd)
}

func init() {
	Flags.String(CfgStorageBackend, storageBackendBadger, "storage backend (badger, memory)")
	Flags.Duration(CfgStorageGCInterval, 0, "badger value log GC interval (0 selects the default)")
	Flags.String(CfgRESTAddress, "", "REST gateway listen address")
	Flags.String(CfgRESTAllowedOrigins, "", "comma separated list of REST gateway CORS origins")

	_ = viper.BindPFlags(Flags)

	Flags.AddFlagSet(flags.GenesisFileFlags)
	for _, v := range []*flag.FlagSet{
		metrics.Flags,
		cmdGrpc.ServerFlags,
	} {
		Flags.AddFlagSet(v)
	}
}

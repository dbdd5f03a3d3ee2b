// Package cmd implements the commands for the gopstake-node executable.
package cmd

import (
	"os"
	"syscall"

	"github.com/spf13/cobra"

	cmdCommon "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common"
	"github.com/cryptogopniks/GopStake/gopstake-node/cmd/genesis"
	"github.com/cryptogopniks/GopStake/gopstake-node/cmd/minter"
	"github.com/cryptogopniks/GopStake/gopstake-node/cmd/node"
	"github.com/cryptogopniks/GopStake/gopstake-node/cmd/stake"
)

var rootCmd = &cobra.Command{
	Use:   "gopstake-node",
	Short: "GopStake node",
	Run:   node.Run,
}

// RootCommand returns the root (top level) cobra.Command.
func RootCommand() *cobra.Command {
	return rootCmd
}

// Execute spawns the main entry point after handling the config file
// and command line arguments.
func Execute() {
	// Only the owner should have access to anything the node creates.
	syscall.Umask(0o077)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(cmdCommon.InitConfig)

	rootCmd.PersistentFlags().AddFlagSet(cmdCommon.RootFlags)
	rootCmd.Flags().AddFlagSet(node.Flags)

	for _, v := range []func(*cobra.Command){
		genesis.Register,
		stake.Register,
		minter.Register,
		node.Register,
	} {
		v(rootCmd)
	}
}

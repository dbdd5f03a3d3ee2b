package node

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	cmdCommon "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common"
	"github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/flags"
)

const cfgKeepLedger = "keep_ledger"

var (
	unsafeResetFlags = flag.NewFlagSet("", flag.ContinueOnError)

	unsafeResetCmd = &cobra.Command{
		Use:   "unsafe-reset",
		Short: "reset the node state (UNSAFE)",
		Args:  cobra.NoArgs,
		Run:   doUnsafeReset,
	}
)

func doUnsafeReset(cmd *cobra.Command, args []string) {
	if err := cmdCommon.Init(); err != nil {
		cmdCommon.EarlyLogAndExit(err)
	}

	dataDir := cmdCommon.DataDir()
	if dataDir == "" {
		cmdCommon.EarlyLogAndExit(fmt.Errorf("data directory must be set"))
	}

	targets := []string{
		filepath.Join(dataDir, stakingStorageDir),
		filepath.Join(dataDir, minterStorageDir),
	}
	if !viper.GetBool(cfgKeepLedger) {
		targets = append(targets, filepath.Join(dataDir, ledgerStateFile))
	}

	for _, target := range targets {
		if !flags.Force() {
			fmt.Printf("would remove %s (use --force)\n", target)
			continue
		}
		if err := os.RemoveAll(target); err != nil {
			logger.Error("failed to remove node state",
				"err", err,
				"path", target,
			)
			os.Exit(1)
		}
		logger.Info("removed node state",
			"path", target,
		)
	}
}

func init() {
	unsafeResetFlags.Bool(cfgKeepLedger, false, "keep the local ledger state")
	_ = viper.BindPFlags(unsafeResetFlags)
}

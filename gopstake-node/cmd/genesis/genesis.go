// Package genesis implements the genesis sub-commands.
package genesis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cryptogopniks/GopStake/common/logging"
	genesis "github.com/cryptogopniks/GopStake/genesis/api"
	genesisFile "github.com/cryptogopniks/GopStake/genesis/file"
	cmdCommon "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common"
	"github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/flags"
	cmdGrpc "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/grpc"
	minter "github.com/cryptogopniks/GopStake/minter/api"
	staking "github.com/cryptogopniks/GopStake/staking/api"
	"github.com/cryptogopniks/GopStake/staking/host"
)

const (
	cfgChainID  = "chain.id"
	cfgAdmin    = "admin"
	cfgOwner    = "owner"
	cfgPlatform = "platform.address"
	cfgMinter   = "minter.address"
	cfgLedger   = "ledger"

	cfgMinterAllowsPlatform = "minter.allow_platform"
)

var (
	checkGenesisFlags = flag.NewFlagSet("", flag.ContinueOnError)
	initGenesisFlags  = flag.NewFlagSet("", flag.ContinueOnError)
	dumpGenesisFlags  = flag.NewFlagSet("", flag.ContinueOnError)

	genesisCmd = &cobra.Command{
		Use:   "genesis",
		Short: "genesis block utilities",
	}

	initGenesisCmd = &cobra.Command{
		Use:   "init",
		Short: "initialize the genesis file",
		Args:  cobra.NoArgs,
		Run:   doInitGenesis,
	}

	checkGenesisCmd = &cobra.Command{
		Use:   "check",
		Short: "sanity check the genesis file",
		Args:  cobra.NoArgs,
		Run:   doCheckGenesis,
	}

	dumpGenesisCmd = &cobra.Command{
		Use:   "dump",
		Short: "dump the current state of a running node into a genesis file",
		Args:  cobra.NoArgs,
		Run:   doDumpGenesis,
	}

	logger = logging.GetLogger("cmd/genesis")
)

func optionalAddress(cfg string) *staking.Address {
	raw := viper.GetString(cfg)
	if raw == "" {
		return nil
	}
	addr := staking.Address(raw)
	return &addr
}

func doInitGenesis(cmd *cobra.Command, args []string) {
	if err := cmdCommon.Init(); err != nil {
		cmdCommon.EarlyLogAndExit(err)
	}

	filename := flags.GenesisFile()
	if _, err := os.Stat(filename); err == nil && !flags.Force() {
		logger.Error("genesis file already exists, use --force to overwrite",
			"filename", filename,
		)
		os.Exit(1)
	}

	doc := &genesis.Document{
		ChainID:  viper.GetString(cfgChainID),
		Time:     time.Now().UTC().Truncate(time.Second),
		Platform: staking.Address(viper.GetString(cfgPlatform)),
		Minter:   staking.Address(viper.GetString(cfgMinter)),
	}

	admin := staking.Address(viper.GetString(cfgAdmin))
	owner := optionalAddress(cfgOwner)
	minterAddr := doc.Minter
	doc.Staking = *staking.NewGenesis(admin, owner, &minterAddr)
	doc.MinterState = minter.Genesis{
		Config: minter.Config{Admin: admin, Owner: owner},
	}
	if viper.GetBool(cfgMinterAllowsPlatform) {
		platform := doc.Platform
		doc.MinterState.Config.StakingPlatform = &platform
	}

	if ledgerFile := viper.GetString(cfgLedger); ledgerFile != "" {
		raw, err := os.ReadFile(ledgerFile)
		if err != nil {
			logger.Error("failed to read ledger state",
				"err", err,
			)
			os.Exit(1)
		}
		if err = json.Unmarshal(raw, &doc.Ledger); err != nil {
			logger.Error("malformed ledger state",
				"err", err,
			)
			os.Exit(1)
		}
	}

	if err := doc.SanityCheck(); err != nil {
		logger.Error("genesis document failed sanity check",
			"err", err,
		)
		os.Exit(1)
	}
	if err := genesisFile.WriteFile(doc, filename); err != nil {
		logger.Error("failed to write genesis file",
			"err", err,
		)
		os.Exit(1)
	}

	logger.Info("generated genesis file",
		"filename", filename,
	)
}

func doCheckGenesis(cmd *cobra.Command, args []string) {
	if err := cmdCommon.Init(); err != nil {
		cmdCommon.EarlyLogAndExit(err)
	}

	filename := flags.GenesisFile()
	provider, err := genesisFile.NewFileProvider(filename)
	if err != nil {
		logger.Error("failed to open genesis file",
			"err", err,
		)
		os.Exit(1)
	}
	doc, _ := provider.GetGenesisDocument()

	// The provider already sanity checked the document.
	fmt.Printf("genesis file %s is valid (chain: %s, collections: %d, proposals: %d, stakers: %d)\n",
		filename,
		doc.ChainID,
		len(doc.Staking.Collections),
		len(doc.Staking.Proposals),
		len(doc.Staking.Stakers),
	)
}

func doDumpGenesis(cmd *cobra.Command, args []string) {
	if err := cmdCommon.Init(); err != nil {
		cmdCommon.EarlyLogAndExit(err)
	}

	conn, err := cmdGrpc.NewClient(cmd)
	if err != nil {
		logger.Error("failed to establish connection with node",
			"err", err,
		)
		os.Exit(1)
	}
	defer conn.Close()

	ctx := context.Background()
	provider, err := genesisFile.NewFileProvider(flags.GenesisFile())
	if err != nil {
		logger.Error("failed to open genesis file",
			"err", err,
		)
		os.Exit(1)
	}
	doc, _ := provider.GetGenesisDocument()

	stakingState, err := staking.NewStakingClient(conn).StateToGenesis(ctx)
	if err != nil {
		logger.Error("failed to dump staking state",
			"err", err,
		)
		os.Exit(1)
	}
	minterState, err := minter.NewMinterClient(conn).StateToGenesis(ctx)
	if err != nil {
		logger.Error("failed to dump minter state",
			"err", err,
		)
		os.Exit(1)
	}

	dump := *doc
	dump.Time = time.Now().UTC().Truncate(time.Second)
	dump.Staking = *stakingState
	dump.MinterState = *minterState
	// The ledger is local to the node and is not exported over gRPC.
	dump.Ledger = host.LedgerGenesis{}

	if err = cmdCommon.WriteJSON(cmd, cfgDumpOutput, &dump); err != nil {
		logger.Error("failed to write genesis document",
			"err", err,
		)
		os.Exit(1)
	}
}

const cfgDumpOutput = "genesis.dump_file"

// Register registers the genesis sub-command and all of its children.
func Register(parentCmd *cobra.Command) {
	initGenesisCmd.Flags().AddFlagSet(initGenesisFlags)
	checkGenesisCmd.Flags().AddFlagSet(checkGenesisFlags)
	dumpGenesisCmd.Flags().AddFlagSet(dumpGenesisFlags)
	dumpGenesisCmd.Flags().AddFlagSet(cmdGrpc.ClientFlags)

	for _, v := range []*cobra.Command{
		initGenesisCmd,
		checkGenesisCmd,
		dumpGenesisCmd,
	} {
		genesisCmd.AddCommand(v)
	}

	parentCmd.AddCommand(genesisCmd)
}

func init() {
	initGenesisFlags.String(cfgChainID, "", "chain ID")
	initGenesisFlags.String(cfgAdmin, "", "platform and minter admin address")
	initGenesisFlags.String(cfgOwner, "", "platform and minter owner address")
	initGenesisFlags.String(cfgPlatform, "platform", "staking platform address")
	initGenesisFlags.String(cfgMinter, "minter", "minter address")
	initGenesisFlags.Bool(cfgMinterAllowsPlatform, true, "allow the staking platform to mint factory denoms")
	initGenesisFlags.String(cfgLedger, "", "path to an initial ledger state (JSON)")
	_ = viper.BindPFlags(initGenesisFlags)
	initGenesisFlags.AddFlagSet(flags.GenesisFileFlags)
	initGenesisFlags.AddFlagSet(flags.ForceFlags)

	checkGenesisFlags.AddFlagSet(flags.GenesisFileFlags)

	dumpGenesisFlags.String(cfgDumpOutput, "", "genesis dump output file, stdout if empty")
	_ = viper.BindPFlags(dumpGenesisFlags)
	dumpGenesisFlags.AddFlagSet(flags.GenesisFileFlags)
}

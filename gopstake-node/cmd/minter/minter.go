// Package minter implements the minter sub-commands.
package minter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"google.golang.org/grpc"

	"github.com/cryptogopniks/GopStake/common/logging"
	"github.com/cryptogopniks/GopStake/common/transaction"
	cmdCommon "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common"
	cmdFlags "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/flags"
	cmdGrpc "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/grpc"
	"github.com/cryptogopniks/GopStake/minter/api"
	staking "github.com/cryptogopniks/GopStake/staking/api"
)

const (
	cfgCreator   = "creator"
	cfgFunds     = "funds"
	cfgOwner     = "owner"
	cfgSubdenom  = "subdenom"
	cfgDenom     = "denom"
	cfgAmount    = "amount"
	cfgRecipient = "recipient"
	cfgMetadata  = "metadata"
	cfgPlatform  = "staking_platform"
)

var (
	minterCmd = &cobra.Command{
		Use:   "minter",
		Short: "token factory utilities",
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "query the minter config",
		Args:  cobra.NoArgs,
		Run:   doQueryConfig,
	}

	denomsCmd = &cobra.Command{
		Use:   "denoms",
		Short: "list the denoms created for an owner",
		Args:  cobra.NoArgs,
		Run:   doQueryDenoms,
	}

	logger = logging.GetLogger("cmd/minter")

	txFlags = flag.NewFlagSet("", flag.ContinueOnError)
)

func doConnect(cmd *cobra.Command) (*grpc.ClientConn, api.Backend) {
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
	return conn, api.NewMinterClient(conn)
}

func exitOnError(err error, msg string) {
	if err == nil {
		return
	}
	logger.Error(msg,
		"err", err,
	)
	os.Exit(1)
}

func doQueryConfig(cmd *cobra.Command, args []string) {
	conn, client := doConnect(cmd)
	defer conn.Close()

	cfg, err := client.Config(context.Background())
	exitOnError(err, "failed to query minter config")
	cfg.PrettyPrint(context.Background(), "", os.Stdout)
}

func doQueryDenoms(cmd *cobra.Command, args []string) {
	conn, client := doConnect(cmd)
	defer conn.Close()

	creator, _ := cmd.Flags().GetString(cfgCreator)
	denoms, err := client.DenomsByCreator(context.Background(), staking.Address(creator))
	exitOnError(err, "failed to query denoms")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Denom"})
	table.SetBorder(false)
	for _, d := range denoms {
		table.Append([]string{d})
	}
	table.Render()
}

type txBuilder func(cmd *cobra.Command) (transaction.MethodName, interface{}, error)

func newTxCmd(use, short string, build txBuilder, setup func(*flag.FlagSet)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			doSubmitTx(cmd, build)
		},
	}
	cmd.Flags().AddFlagSet(txFlags)
	if setup != nil {
		setup(cmd.Flags())
	}
	return cmd
}

func doSubmitTx(cmd *cobra.Command, build txBuilder) {
	conn, client := doConnect(cmd)
	defer conn.Close()

	method, body, err := build(cmd)
	exitOnError(err, "malformed transaction")

	rawFunds, _ := cmd.Flags().GetStringSlice(cfgFunds)
	var funds []staking.Funds
	for _, raw := range rawFunds {
		f, ferr := cmdCommon.ParseFunds(raw)
		exitOnError(ferr, "malformed funds")
		funds = append(funds, f)
	}

	tx := staking.NewTransaction(staking.Address(cmdFlags.Caller()), funds, 0, method, body)
	exitOnError(tx.SanityCheck(), "malformed transaction")

	res, err := client.SubmitTx(context.Background(), tx)
	exitOnError(err, "transaction failed")

	fmt.Printf("%s executed\n", method)
	for i := range res.Instructions {
		fmt.Printf("  %s\n", res.Instructions[i].Kind())
	}
}

func buildCreateDenom(cmd *cobra.Command) (transaction.MethodName, interface{}, error) {
	owner, _ := cmd.Flags().GetString(cfgOwner)
	subdenom, _ := cmd.Flags().GetString(cfgSubdenom)
	return api.MethodCreateDenom, &api.CreateDenomBody{Owner: staking.Address(owner), Subdenom: subdenom}, nil
}

func buildMint(cmd *cobra.Command) (transaction.MethodName, interface{}, error) {
	denom, _ := cmd.Flags().GetString(cfgDenom)
	rawAmount, _ := cmd.Flags().GetString(cfgAmount)
	recipient, _ := cmd.Flags().GetString(cfgRecipient)

	body := api.MintTokensBody{Denom: denom, Recipient: staking.Address(recipient)}
	if err := body.Amount.UnmarshalText([]byte(rawAmount)); err != nil {
		return "", nil, fmt.Errorf("malformed amount: %w", err)
	}
	return api.MethodMintTokens, &body, nil
}

func buildBurn(cmd *cobra.Command) (transaction.MethodName, interface{}, error) {
	return api.MethodBurnTokens, nil, nil
}

func buildSetMetadata(cmd *cobra.Command) (transaction.MethodName, interface{}, error) {
	filename, _ := cmd.Flags().GetString(cfgMetadata)
	raw, err := os.ReadFile(filename)
	if err != nil {
		return "", nil, err
	}
	var body api.SetMetadataBody
	if err = json.Unmarshal(raw, &body.Metadata); err != nil {
		return "", nil, fmt.Errorf("malformed metadata: %w", err)
	}
	return api.MethodSetMetadata, &body, nil
}

func buildUpdateConfig(cmd *cobra.Command) (transaction.MethodName, interface{}, error) {
	var body api.UpdateConfigBody
	if owner, _ := cmd.Flags().GetString(cfgOwner); owner != "" {
		addr := staking.Address(owner)
		body.Owner = &addr
	}
	if platform, _ := cmd.Flags().GetString(cfgPlatform); platform != "" {
		addr := staking.Address(platform)
		body.StakingPlatform = &addr
	}
	return api.MethodUpdateConfig, &body, nil
}

// Register registers the minter sub-command and all of its children.
func Register(parentCmd *cobra.Command) {
	configCmd.Flags().AddFlagSet(cmdGrpc.ClientFlags)
	denomsCmd.Flags().AddFlagSet(cmdGrpc.ClientFlags)
	denomsCmd.Flags().String(cfgCreator, "", "denom owner address")

	for _, v := range []*cobra.Command{
		configCmd,
		denomsCmd,
		newTxCmd("create-denom", "create a factory denom, paying the attached fee", buildCreateDenom, func(fs *flag.FlagSet) {
			fs.String(cfgOwner, "", "denom owner address")
			fs.String(cfgSubdenom, "", "subdenom")
		}),
		newTxCmd("mint", "mint tokens of a factory denom", buildMint, func(fs *flag.FlagSet) {
			fs.String(cfgDenom, "", "full denom")
			fs.String(cfgAmount, "0", "amount in base units")
			fs.String(cfgRecipient, "", "recipient address")
		}),
		newTxCmd("burn", "burn the attached factory tokens", buildBurn, nil),
		newTxCmd("set-metadata", "set the metadata of a factory denom", buildSetMetadata, func(fs *flag.FlagSet) {
			fs.String(cfgMetadata, "", "path to a JSON metadata document")
		}),
		newTxCmd("update-config", "update the minter config", buildUpdateConfig, func(fs *flag.FlagSet) {
			fs.String(cfgOwner, "", "new owner address")
			fs.String(cfgPlatform, "", "new staking platform address")
		}),
	} {
		minterCmd.AddCommand(v)
	}

	parentCmd.AddCommand(minterCmd)
}

func init() {
	txFlags.StringSlice(cfgFunds, nil, "attached funds as <amount>:<decimals>:<token>")
	txFlags.AddFlagSet(cmdFlags.CallerFlags)
	txFlags.AddFlagSet(cmdGrpc.ClientFlags)
}

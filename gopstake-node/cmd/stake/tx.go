package stake

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/cryptogopniks/GopStake/common/transaction"
	cmdCommon "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common"
	cmdFlags "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/flags"
	cmdGrpc "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/grpc"
	"github.com/cryptogopniks/GopStake/staking/api"
)

const (
	cfgTxFunds      = "funds"
	cfgTxItems      = "items"
	cfgTxCollection = "collection"
	cfgTxAmount     = "amount"
	cfgTxID         = "id"
	cfgTxBody       = "body"
	cfgTxRecipients = "recipients"
	cfgTxOwner      = "owner"
	cfgTxMinter     = "minter"
)

var (
	txCmd = &cobra.Command{
		Use:   "tx",
		Short: "submit staking platform transactions",
	}

	txFlags = flag.NewFlagSet("", flag.ContinueOnError)

	itemsFlags      = flag.NewFlagSet("", flag.ContinueOnError)
	collectionFlags = flag.NewFlagSet("", flag.ContinueOnError)
	amountFlags     = flag.NewFlagSet("", flag.ContinueOnError)
	idFlags         = flag.NewFlagSet("", flag.ContinueOnError)
	bodyFlags       = flag.NewFlagSet("", flag.ContinueOnError)
	recipientsFlags = flag.NewFlagSet("", flag.ContinueOnError)
	configFlags     = flag.NewFlagSet("", flag.ContinueOnError)
)

// txBuilder builds the method call of a transaction from the command flags.
type txBuilder func(cmd *cobra.Command) (transaction.MethodName, interface{}, error)

func newTxCmd(use, short string, build txBuilder, extra ...*flag.FlagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			doSubmitTx(cmd, build)
		},
	}
	cmd.Flags().AddFlagSet(txFlags)
	for _, fs := range extra {
		cmd.Flags().AddFlagSet(fs)
	}
	return cmd
}

func doSubmitTx(cmd *cobra.Command, build txBuilder) {
	conn, client := doConnect(cmd)
	defer conn.Close()

	method, body, err := build(cmd)
	exitOnError(err, "malformed transaction")

	rawFunds, _ := cmd.Flags().GetStringSlice(cfgTxFunds)
	var funds []api.Funds
	for _, raw := range rawFunds {
		f, ferr := cmdCommon.ParseFunds(raw)
		exitOnError(ferr, "malformed funds")
		funds = append(funds, f)
	}

	tx := api.NewTransaction(api.Address(cmdFlags.Caller()), funds, 0, method, body)
	exitOnError(tx.SanityCheck(), "malformed transaction")

	res, err := client.SubmitTx(context.Background(), tx)
	exitOnError(err, "transaction failed", "method", method)

	ctx := prettyContext()
	fmt.Printf("%s executed\n", method)
	for _, in := range res.Instructions {
		in.PrettyPrint(ctx, "  ", os.Stdout)
	}
	for i := range res.Events {
		res.Events[i].PrettyPrint(ctx, "  ", os.Stdout)
	}
}

// parseItems parses items in the "<collection>:<id>" form, grouping them by
// collection in the order of first appearance.
func parseItems(raw []string) ([]api.CollectionItems, error) {
	var out []api.CollectionItems
	index := make(map[api.Address]int)
	for _, r := range raw {
		parts := strings.SplitN(strings.TrimSpace(r), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed item '%s'", r)
		}
		coll, id := api.Address(parts[0]), api.ItemID(parts[1])
		i, ok := index[coll]
		if !ok {
			i = len(out)
			index[coll] = i
			out = append(out, api.CollectionItems{CollectionAddress: coll})
		}
		out[i].Items = append(out[i].Items, id)
	}
	return out, nil
}

// parseRecipients parses recipients in the "<address>:<weight>" form.
func parseRecipients(raw []string) ([]api.WeightedRecipient, error) {
	out := make([]api.WeightedRecipient, 0, len(raw))
	for _, r := range raw {
		parts := strings.SplitN(strings.TrimSpace(r), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed recipient '%s'", r)
		}
		weight, err := decimal.NewFromString(parts[1])
		if err != nil {
			return nil, fmt.Errorf("malformed weight '%s': %w", parts[1], err)
		}
		out = append(out, api.WeightedRecipient{Address: api.Address(parts[0]), Weight: weight})
	}
	return out, nil
}

func buildStake(cmd *cobra.Command) (transaction.MethodName, interface{}, error) {
	raw, _ := cmd.Flags().GetStringSlice(cfgTxItems)
	items, err := parseItems(raw)
	if err != nil {
		return "", nil, err
	}
	return api.MethodStake, &api.StakeBody{Collections: items}, nil
}

func buildUnstake(cmd *cobra.Command) (transaction.MethodName, interface{}, error) {
	raw, _ := cmd.Flags().GetStringSlice(cfgTxItems)
	items, err := parseItems(raw)
	if err != nil {
		return "", nil, err
	}
	return api.MethodUnstake, &api.UnstakeBody{Collections: items}, nil
}

func buildClaim(cmd *cobra.Command) (transaction.MethodName, interface{}, error) {
	return api.MethodClaimStakingRewards, nil, nil
}

func buildDeposit(cmd *cobra.Command) (transaction.MethodName, interface{}, error) {
	coll, _ := cmd.Flags().GetString(cfgTxCollection)
	return api.MethodDepositTokens, &api.DepositTokensBody{CollectionAddress: api.Address(coll)}, nil
}

func buildWithdraw(cmd *cobra.Command) (transaction.MethodName, interface{}, error) {
	coll, _ := cmd.Flags().GetString(cfgTxCollection)
	rawAmount, _ := cmd.Flags().GetString(cfgTxAmount)

	body := api.WithdrawTokensBody{CollectionAddress: api.Address(coll)}
	if err := body.Amount.UnmarshalText([]byte(rawAmount)); err != nil {
		return "", nil, fmt.Errorf("malformed amount: %w", err)
	}
	return api.MethodWithdrawTokens, &body, nil
}

func buildRemove(cmd *cobra.Command) (transaction.MethodName, interface{}, error) {
	coll, _ := cmd.Flags().GetString(cfgTxCollection)
	return api.MethodRemoveCollection, &api.RemoveCollectionBody{Address: api.Address(coll)}, nil
}

func buildCreateProposal(cmd *cobra.Command) (transaction.MethodName, interface{}, error) {
	filename, _ := cmd.Flags().GetString(cfgTxBody)
	raw, err := os.ReadFile(filename)
	if err != nil {
		return "", nil, err
	}
	var body api.CreateProposalBody
	if err = json.Unmarshal(raw, &body); err != nil {
		return "", nil, fmt.Errorf("malformed proposal: %w", err)
	}
	return api.MethodCreateProposal, &body, nil
}

func proposalIDBuilder(method transaction.MethodName) txBuilder {
	return func(cmd *cobra.Command) (transaction.MethodName, interface{}, error) {
		raw, _ := cmd.Flags().GetString(cfgTxID)
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("malformed proposal ID: %w", err)
		}
		return method, &api.ProposalIDBody{ID: api.ProposalID(id)}, nil
	}
}

func buildDistribute(cmd *cobra.Command) (transaction.MethodName, interface{}, error) {
	raw, _ := cmd.Flags().GetStringSlice(cfgTxRecipients)
	recipients, err := parseRecipients(raw)
	if err != nil {
		return "", nil, err
	}
	return api.MethodDistributeFunds, &api.DistributeFundsBody{Recipients: recipients}, nil
}

func buildUpdateConfig(cmd *cobra.Command) (transaction.MethodName, interface{}, error) {
	var body api.UpdateConfigBody
	if owner, _ := cmd.Flags().GetString(cfgTxOwner); owner != "" {
		addr := api.Address(owner)
		body.Owner = &addr
	}
	if minter, _ := cmd.Flags().GetString(cfgTxMinter); minter != "" {
		addr := api.Address(minter)
		body.Minter = &addr
	}
	return api.MethodUpdateConfig, &body, nil
}

func registerTxCmds() {
	for _, v := range []*cobra.Command{
		newTxCmd("stake", "stake items", buildStake, itemsFlags),
		newTxCmd("unstake", "unstake items and claim their rewards", buildUnstake, itemsFlags),
		newTxCmd("claim", "claim staking rewards", buildClaim),
		newTxCmd("deposit", "deposit the attached funds into a collection balance", buildDeposit, collectionFlags),
		newTxCmd("withdraw", "withdraw from a collection balance", buildWithdraw, collectionFlags, amountFlags),
		newTxCmd("remove", "remove a collection", buildRemove, collectionFlags),
		newTxCmd("create-proposal", "create a collection proposal", buildCreateProposal, bodyFlags),
		newTxCmd("accept", "accept a proposal, paying its price", proposalIDBuilder(api.MethodAcceptProposal), idFlags),
		newTxCmd("reject", "reject a proposal", proposalIDBuilder(api.MethodRejectProposal), idFlags),
		newTxCmd("distribute", "distribute the fee ledger", buildDistribute, recipientsFlags),
		newTxCmd("update-config", "update the platform config", buildUpdateConfig, configFlags),
	} {
		txCmd.AddCommand(v)
	}
}

func init() {
	txFlags.StringSlice(cfgTxFunds, nil, "attached funds as <amount>:<decimals>:<token>")
	txFlags.AddFlagSet(cmdFlags.CallerFlags)
	txFlags.AddFlagSet(cmdGrpc.ClientFlags)

	itemsFlags.StringSlice(cfgTxItems, nil, "items as <collection>:<id>")
	collectionFlags.String(cfgTxCollection, "", "collection address")
	amountFlags.String(cfgTxAmount, "0", "amount in base units")
	idFlags.String(cfgTxID, "", "proposal ID")
	bodyFlags.String(cfgTxBody, "", "path to a JSON proposal body")
	recipientsFlags.StringSlice(cfgTxRecipients, nil, "recipients as <address>:<weight>")
	configFlags.String(cfgTxOwner, "", "new owner address")
	configFlags.String(cfgTxMinter, "", "new minter address")
}

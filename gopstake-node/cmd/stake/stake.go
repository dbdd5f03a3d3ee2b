// Package stake implements the staking sub-commands.
package stake

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	"github.com/cryptogopniks/GopStake/common/logging"
	"github.com/cryptogopniks/GopStake/common/prettyprint"
	cmdCommon "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common"
	cmdFlags "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/flags"
	cmdGrpc "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/grpc"
	"github.com/cryptogopniks/GopStake/staking/api"
)

const (
	cfgAddresses  = "addresses"
	cfgStaker     = "staker"
	cfgCollection = "collection"
	cfgLast       = "last"
)

var (
	stakeCmd = &cobra.Command{
		Use:   "stake",
		Short: "staking platform utilities",
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "query the staking platform state",
	}

	queryConfigCmd = &cobra.Command{
		Use:   "config",
		Short: "query the platform config",
		Args:  cobra.NoArgs,
		Run:   doQueryConfig,
	}

	queryFundsCmd = &cobra.Command{
		Use:   "funds",
		Short: "query the fee ledger",
		Args:  cobra.NoArgs,
		Run:   doQueryFunds,
	}

	queryCollectionsCmd = &cobra.Command{
		Use:   "collections",
		Short: "list registered collections",
		Args:  cobra.NoArgs,
		Run:   doQueryCollections,
	}

	queryBalancesCmd = &cobra.Command{
		Use:   "balances",
		Short: "list spending collection balances",
		Args:  cobra.NoArgs,
		Run:   doQueryBalances,
	}

	queryProposalsCmd = &cobra.Command{
		Use:   "proposals",
		Short: "list proposals",
		Args:  cobra.NoArgs,
		Run:   doQueryProposals,
	}

	queryStakersCmd = &cobra.Command{
		Use:   "stakers",
		Short: "list stakers",
		Args:  cobra.NoArgs,
		Run:   doQueryStakers,
	}

	queryRewardsCmd = &cobra.Command{
		Use:   "rewards",
		Short: "query the claimable rewards of a staker",
		Args:  cobra.NoArgs,
		Run:   doQueryRewards,
	}

	queryAssociatedCmd = &cobra.Command{
		Use:   "associated-balances",
		Short: "query the wallet balances of an account in the staking currencies",
		Args:  cobra.NoArgs,
		Run:   doQueryAssociated,
	}

	logger = logging.GetLogger("cmd/stake")

	listFlags    = flag.NewFlagSet("", flag.ContinueOnError)
	stakerFlags  = flag.NewFlagSet("", flag.ContinueOnError)
	rewardsFlags = flag.NewFlagSet("", flag.ContinueOnError)
	proposalFlag = flag.NewFlagSet("", flag.ContinueOnError)
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

	return conn, api.NewStakingClient(conn)
}

func exitOnError(err error, msg string, keyvals ...interface{}) {
	if err == nil {
		return
	}
	logger.Error(msg, append(keyvals, "err", err)...)
	os.Exit(1)
}

func addressesQuery() *api.AddressesQuery {
	var q api.AddressesQuery
	for _, raw := range viper.GetStringSlice(cfgAddresses) {
		q.Addresses = append(q.Addresses, api.Address(strings.TrimSpace(raw)))
	}
	return &q
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetBorder(false)
	return table
}

func prettyContext() context.Context {
	return context.WithValue(context.Background(), prettyprint.ContextKeyShowDecimals, true)
}

func doQueryConfig(cmd *cobra.Command, args []string) {
	conn, client := doConnect(cmd)
	defer conn.Close()

	cfg, err := client.Config(context.Background())
	exitOnError(err, "failed to query config")

	cfg.PrettyPrint(prettyContext(), "", os.Stdout)
}

func doQueryFunds(cmd *cobra.Command, args []string) {
	conn, client := doConnect(cmd)
	defer conn.Close()

	funds, err := client.Funds(context.Background())
	exitOnError(err, "failed to query fee ledger")

	table := newTable("Currency", "Amount")
	for _, f := range funds {
		table.Append([]string{f.Currency.String(), f.Amount.String()})
	}
	table.Render()
}

func doQueryCollections(cmd *cobra.Command, args []string) {
	conn, client := doConnect(cmd)
	defer conn.Close()

	collections, err := client.Collections(context.Background(), addressesQuery())
	exitOnError(err, "failed to query collections")

	if cmdFlags.Verbose() {
		ctx := prettyContext()
		for _, c := range collections {
			fmt.Printf("%s:\n", c.Address)
			c.Collection.PrettyPrint(ctx, "  ", os.Stdout)
		}
		return
	}

	table := newTable("Address", "Name", "Emission", "Currency", "Daily rewards", "Owner")
	for _, c := range collections {
		table.Append([]string{
			c.Address.String(),
			c.Collection.Name,
			c.Collection.EmissionType.String(),
			c.Collection.StakingCurrency.String(),
			c.Collection.DailyRewards.String(),
			c.Collection.Owner.String(),
		})
	}
	table.Render()
}

func doQueryBalances(cmd *cobra.Command, args []string) {
	conn, client := doConnect(cmd)
	defer conn.Close()

	balances, err := client.CollectionsBalances(context.Background(), addressesQuery())
	exitOnError(err, "failed to query collection balances")

	table := newTable("Collection", "Currency", "Amount")
	for _, b := range balances {
		table.Append([]string{b.Address.String(), b.Funds.Currency.String(), b.Funds.Amount.String()})
	}
	table.Render()
}

func doQueryProposals(cmd *cobra.Command, args []string) {
	conn, client := doConnect(cmd)
	defer conn.Close()

	var q api.ProposalsQuery
	if last := viper.GetUint64(cfgLast); last > 0 {
		q.LastAmount = &last
	}
	proposals, err := client.Proposals(context.Background(), &q)
	exitOnError(err, "failed to query proposals")

	if cmdFlags.Verbose() {
		ctx := prettyContext()
		for _, p := range proposals {
			p.PrettyPrint(ctx, "", os.Stdout)
			fmt.Println()
		}
		return
	}

	table := newTable("ID", "Status", "Kind", "Collection", "Price")
	for _, p := range proposals {
		kind, coll := "add", ""
		switch {
		case p.Content.AddCollection != nil:
			coll = p.Content.AddCollection.CollectionAddress.String()
		case p.Content.UpdateCollection != nil:
			kind, coll = "update", p.Content.UpdateCollection.CollectionAddress.String()
		}
		table.Append([]string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.Status.String(),
			kind,
			coll,
			p.Price.String(),
		})
	}
	table.Render()
}

func doQueryStakers(cmd *cobra.Command, args []string) {
	conn, client := doConnect(cmd)
	defer conn.Close()

	stakers, err := client.Stakers(context.Background(), addressesQuery())
	exitOnError(err, "failed to query stakers")

	if cmdFlags.Verbose() {
		ctx := prettyContext()
		for _, s := range stakers {
			s.PrettyPrint(ctx, "", os.Stdout)
		}
		return
	}

	table := newTable("Staker", "Collection", "Items")
	for _, s := range stakers {
		for _, c := range s.Collections {
			ids := make([]string, 0, len(c.Items))
			for _, it := range c.Items {
				ids = append(ids, string(it.ItemID))
			}
			sort.Strings(ids)
			table.Append([]string{s.Address.String(), c.CollectionAddress.String(), strings.Join(ids, ",")})
		}
	}
	table.Render()
}

func renderBalances(rsp *api.BalancesResponse) {
	table := newTable("Currency", "Amount")
	for _, f := range rsp.Funds {
		table.Append([]string{f.Currency.String(), f.Amount.String()})
	}
	table.Render()
}

func doQueryRewards(cmd *cobra.Command, args []string) {
	conn, client := doConnect(cmd)
	defer conn.Close()

	q := api.RewardsQuery{Address: api.Address(viper.GetString(cfgStaker))}
	if coll := viper.GetString(cfgCollection); coll != "" {
		addr := api.Address(coll)
		q.Collection = &addr
	}
	rsp, err := client.StakingRewards(context.Background(), &q)
	exitOnError(err, "failed to query staking rewards", "staker", q.Address)

	renderBalances(rsp)
}

func doQueryAssociated(cmd *cobra.Command, args []string) {
	conn, client := doConnect(cmd)
	defer conn.Close()

	addr := api.Address(viper.GetString(cfgStaker))
	rsp, err := client.AssociatedBalances(context.Background(), addr)
	exitOnError(err, "failed to query associated balances", "address", addr)

	renderBalances(rsp)
}

// Register registers the stake sub-command and all of its children.
func Register(parentCmd *cobra.Command) {
	for _, v := range []*cobra.Command{
		queryCollectionsCmd,
		queryBalancesCmd,
		queryStakersCmd,
	} {
		v.Flags().AddFlagSet(listFlags)
	}
	queryRewardsCmd.Flags().AddFlagSet(rewardsFlags)
	queryAssociatedCmd.Flags().AddFlagSet(stakerFlags)
	queryProposalsCmd.Flags().AddFlagSet(proposalFlag)

	for _, v := range []*cobra.Command{
		queryConfigCmd,
		queryFundsCmd,
		queryCollectionsCmd,
		queryBalancesCmd,
		queryProposalsCmd,
		queryStakersCmd,
		queryRewardsCmd,
		queryAssociatedCmd,
	} {
		v.Flags().AddFlagSet(cmdGrpc.ClientFlags)
		queryCmd.AddCommand(v)
	}

	registerTxCmds()

	stakeCmd.AddCommand(queryCmd)
	stakeCmd.AddCommand(txCmd)
	parentCmd.AddCommand(stakeCmd)
}

func init() {
	listFlags.StringSlice(cfgAddresses, nil, "restrict the listing to the given addresses")
	listFlags.AddFlagSet(cmdFlags.VerboseFlags)
	_ = viper.BindPFlags(listFlags)

	stakerFlags.String(cfgStaker, "", "staker address")
	_ = viper.BindPFlags(stakerFlags)

	rewardsFlags.String(cfgCollection, "", "restrict the query to a collection")
	_ = viper.BindPFlags(rewardsFlags)
	rewardsFlags.AddFlagSet(stakerFlags)

	proposalFlag.Uint64(cfgLast, 0, "only list the last N proposals")
	_ = viper.BindPFlags(proposalFlag)
	proposalFlag.AddFlagSet(cmdFlags.VerboseFlags)
}

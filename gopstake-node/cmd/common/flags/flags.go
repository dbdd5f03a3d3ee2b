// Package flags implements common flags used across multiple commands.
package flags

import (
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// CfgGenesisFile is the flag used to specify a genesis file.
	CfgGenesisFile = "genesis.file"

	// CfgCaller is the flag used to specify the transaction caller.
	CfgCaller = "caller"

	cfgVerbose = "verbose"
	cfgForce   = "force"
)

var (
	// VerboseFlags has the verbose flag.
	VerboseFlags = flag.NewFlagSet("", flag.ContinueOnError)
	// ForceFlags has the force flag.
	ForceFlags = flag.NewFlagSet("", flag.ContinueOnError)
	// GenesisFileFlags has the genesis file flag.
	GenesisFileFlags = flag.NewFlagSet("", flag.ContinueOnError)
	// CallerFlags has the transaction caller flag.
	CallerFlags = flag.NewFlagSet("", flag.ContinueOnError)
)

// Verbose returns true iff the verbose flag is set.
func Verbose() bool {
	return viper.GetBool(cfgVerbose)
}

// Force returns true iff the force flag is set.
func Force() bool {
	return viper.GetBool(cfgForce)
}

// GenesisFile returns the set genesis file.
func GenesisFile() string {
	return viper.GetString(CfgGenesisFile)
}

// Caller returns the set transaction caller.
func Caller() string {
	return viper.GetString(CfgCaller)
}

func init() {
	VerboseFlags.BoolP(cfgVerbose, "v", false, "verbose output")
	ForceFlags.Bool(cfgForce, false, "force")
	GenesisFileFlags.String(CfgGenesisFile, "genesis.json", "path to genesis file")
	CallerFlags.String(CfgCaller, "", "address of the transaction caller")

	for _, v := range []*flag.FlagSet{
		VerboseFlags,
		ForceFlags,
		GenesisFileFlags,
		CallerFlags,
	} {
		_ = viper.BindPFlags(v)
	}
}

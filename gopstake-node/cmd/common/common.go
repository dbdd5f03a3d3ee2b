// Package common implements common things used by the CLI commands.
package common

import (
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cryptogopniks/GopStake/common/logging"
)

const (
	// CfgDataDir is the flag used to specify the data directory.
	CfgDataDir = "datadir"

	cfgConfigFile = "config"
)

var (
	cfgFile string

	rootLog = logging.GetLogger("gopstake-node")

	// RootFlags has the flags that are common across all commands.
	RootFlags = flag.NewFlagSet("", flag.ContinueOnError)
)

// DataDir returns the data directory iff one is set.
func DataDir() string {
	return viper.GetString(CfgDataDir)
}

// DataDirOrPwd returns the data directory iff one is set, pwd otherwise.
func DataDirOrPwd() (string, error) {
	dataDir := DataDir()
	if dataDir == "" {
		var err error
		if dataDir, err = os.Getwd(); err != nil {
			return "", err
		}
	}
	return dataDir, nil
}

// EarlyLogAndExit logs the error and exits.
//
// Note: This routine should only be used prior to the logging system
// being initialized.
func EarlyLogAndExit(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// InitConfig initializes the command configuration.
//
// WARNING: This is exposed for the benefit of tests and the interface
// is not guaranteed to be stable.
func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			EarlyLogAndExit(err)
		}
	}

	dataDir := viper.GetString(CfgDataDir)
	if dataDir != "" {
		dataDir, err := filepath.Abs(dataDir)
		if err != nil {
			EarlyLogAndExit(err)
		}
		viper.Set(CfgDataDir, dataDir)
	}
}

// Init initializes the common environment across all commands.
func Init() error {
	initFns := []func() error{
		initDataDir,
		initLogging,
	}

	for _, fn := range initFns {
		if err := fn(); err != nil {
			return err
		}
	}

	rootLog.Debug("common initialization complete")

	return nil
}

func initDataDir() error {
	dataDir := DataDir()
	if dataDir == "" {
		return nil
	}
	return os.MkdirAll(dataDir, 0o700)
}

func normalizePath(f string) string {
	if !filepath.IsAbs(f) {
		dataDir := DataDir()
		f = filepath.Join(dataDir, f)
		return filepath.Clean(f)
	}
	return f
}

func init() {
	initLoggingFlags()

	RootFlags.StringVar(&cfgFile, cfgConfigFile, "", "config file")
	RootFlags.String(CfgDataDir, "", "data directory")
	_ = viper.BindPFlags(RootFlags)
	RootFlags.AddFlagSet(loggingFlags)
}

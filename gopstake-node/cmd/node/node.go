// Package node implements the GopStake node.
package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	cmnGrpc "github.com/cryptogopniks/GopStake/common/grpc"
	"github.com/cryptogopniks/GopStake/common/logging"
	genesisAPI "github.com/cryptogopniks/GopStake/genesis/api"
	genesisFile "github.com/cryptogopniks/GopStake/genesis/file"
	cmdCommon "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common"
	"github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/flags"
	cmdGrpc "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/grpc"
	"github.com/cryptogopniks/GopStake/gopstake-node/cmd/common/metrics"
	"github.com/cryptogopniks/GopStake/minter"
	minterAPI "github.com/cryptogopniks/GopStake/minter/api"
	stakingAPI "github.com/cryptogopniks/GopStake/staking/api"
	"github.com/cryptogopniks/GopStake/staking/host"
	"github.com/cryptogopniks/GopStake/staking/platform"
	"github.com/cryptogopniks/GopStake/staking/rest"
	storageAPI "github.com/cryptogopniks/GopStake/storage/api"
	"github.com/cryptogopniks/GopStake/storage/badger"
	"github.com/cryptogopniks/GopStake/storage/memory"
)

const (
	stakingStorageDir = "staking"
	minterStorageDir  = "minter"
	ledgerStateFile   = "ledger.json"
)

var logger = logging.GetLogger("node")

// Run runs the GopStake node.
func Run(cmd *cobra.Command, args []string) {
	node, err := NewNode()
	if err != nil {
		os.Exit(1)
	}
	defer node.Cleanup()

	node.Wait()
}

// Node is the GopStake node service.
//
// WARNING: This is exposed for the benefit of tests and the interface
// is not guaranteed to be stable.
type Node struct {
	stopping uint32

	dataDir string

	grpcInternal *cmnGrpc.Server
	restServer   *http.Server
	metrics      *metrics.Service

	stakingStorage storageAPI.Backend
	minterStorage  storageAPI.Backend

	Genesis *genesisAPI.Document
	Ledger  *host.LocalLedger
	Staking *host.Service
	Minter  *minter.Service
}

// Wait waits for a termination signal.
func (n *Node) Wait() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received signal, shutting down",
		"signal", sig,
	)
}

// Stop stops the node services.
func (n *Node) Stop() error {
	if !atomic.CompareAndSwapUint32(&n.stopping, 0, 1) {
		return nil
	}

	var err error
	if n.grpcInternal != nil {
		n.grpcInternal.Stop()
	}
	if n.restServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = multierr.Append(err, n.restServer.Shutdown(ctx))
		cancel()
	}
	if n.metrics != nil {
		err = multierr.Append(err, n.metrics.Stop())
	}
	return err
}

// Cleanup cleans up after the node has terminated.
func (n *Node) Cleanup() {
	err := n.Stop()
	if n.grpcInternal != nil {
		n.grpcInternal.Cleanup()
	}
	if n.Ledger != nil && n.dataDir != "" {
		err = multierr.Append(err, saveLedger(n.dataDir, n.Ledger.Genesis()))
	}
	if n.stakingStorage != nil {
		n.stakingStorage.Close()
	}
	if n.minterStorage != nil {
		n.minterStorage.Close()
	}

	for _, e := range multierr.Errors(err) {
		logger.Error("failed to clean up",
			"err", e,
		)
	}
}

func openStorage(dataDir, sub string) (storageAPI.Backend, error) {
	switch backend := viper.GetString(CfgStorageBackend); backend {
	case storageBackendMemory:
		return memory.New(), nil
	case storageBackendBadger:
		if dataDir == "" {
			return nil, errors.New("badger storage requires a data directory")
		}
		return badger.New(&badger.Config{
			Dir:        filepath.Join(dataDir, sub),
			GCInterval: viper.GetDuration(CfgStorageGCInterval),
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}
}

// loadLedger returns the persisted ledger state, falling back to the
// genesis state on first start.
func loadLedger(dataDir string, genesis *host.LedgerGenesis) (*host.LocalLedger, error) {
	if dataDir != "" {
		raw, err := os.ReadFile(filepath.Join(dataDir, ledgerStateFile))
		switch {
		case err == nil:
			var state host.LedgerGenesis
			if err = json.Unmarshal(raw, &state); err != nil {
				return nil, fmt.Errorf("malformed ledger state: %w", err)
			}
			return host.NewLocalLedger(&state)
		case !os.IsNotExist(err):
			return nil, err
		}
	}
	return host.NewLocalLedger(genesis)
}

func saveLedger(dataDir string, state *host.LedgerGenesis) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dataDir, ledgerStateFile), raw, 0o600)
}

func (n *Node) initBackends(ctx context.Context) error {
	var err error
	doc := n.Genesis

	if n.Ledger, err = loadLedger(n.dataDir, &doc.Ledger); err != nil {
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}
	if n.stakingStorage, err = openStorage(n.dataDir, stakingStorageDir); err != nil {
		return fmt.Errorf("failed to open staking storage: %w", err)
	}
	if n.minterStorage, err = openStorage(n.dataDir, minterStorageDir); err != nil {
		return fmt.Errorf("failed to open minter storage: %w", err)
	}

	n.Minter, err = minter.NewService(&minter.Config{
		Storage: n.minterStorage,
		Minter:  minter.New(doc.Minter),
		Bank:    n.Ledger,
		Factory: n.Ledger,
	})
	if err != nil {
		return err
	}
	n.Staking, err = host.New(&host.Config{
		Storage:  n.stakingStorage,
		Platform: platform.New(doc.Platform),
		Bank:     n.Ledger,
		Custody:  n.Ledger,
		Minter:   n.Minter,
	})
	if err != nil {
		return err
	}

	if ok, ierr := n.Minter.IsInitialized(ctx); ierr != nil {
		return ierr
	} else if !ok {
		if err = n.Minter.InitChain(ctx, &doc.MinterState); err != nil {
			return fmt.Errorf("failed to initialize minter state: %w", err)
		}
	}
	if ok, ierr := n.Staking.IsInitialized(ctx); ierr != nil {
		return ierr
	} else if !ok {
		if err = n.Staking.InitChain(ctx, &doc.Staking); err != nil {
			return fmt.Errorf("failed to initialize staking state: %w", err)
		}
	}
	return nil
}

func (n *Node) initServices() error {
	var err error

	if n.grpcInternal, err = cmdGrpc.NewServer(); err != nil {
		return fmt.Errorf("failed to initialize gRPC server: %w", err)
	}
	stakingAPI.RegisterService(n.grpcInternal.Server(), n.Staking)
	minterAPI.RegisterService(n.grpcInternal.Server(), n.Minter)

	if n.metrics, err = metrics.New(); err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	if addr := viper.GetString(CfgRESTAddress); addr != "" {
		handler, rerr := rest.New(n.Staking, rest.Options{
			AllowedOrigins: viper.GetString(CfgRESTAllowedOrigins),
			Registerer:     prometheus.DefaultRegisterer,
		})
		if rerr != nil {
			return fmt.Errorf("failed to initialize REST gateway: %w", rerr)
		}
		ln, lerr := net.Listen("tcp", addr)
		if lerr != nil {
			return fmt.Errorf("failed to listen for REST gateway: %w", lerr)
		}
		n.restServer = &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if serr := n.restServer.Serve(ln); serr != nil && serr != http.ErrServerClosed {
				logger.Error("REST gateway terminated uncleanly",
					"err", serr,
				)
			}
		}()
		logger.Info("REST gateway started",
			"address", ln.Addr(),
		)
	}

	if err = n.metrics.Start(); err != nil {
		return err
	}
	return n.grpcInternal.Start()
}

// NewNode initializes and launches the GopStake node service.
func NewNode() (*Node, error) {
	node := &Node{}

	var startOk bool
	defer func() {
		if !startOk {
			node.Cleanup()
		}
	}()

	if err := cmdCommon.Init(); err != nil {
		// The logger is not set up yet.
		_, _ = fmt.Fprintln(os.Stderr, err)
		return nil, err
	}
	node.dataDir = cmdCommon.DataDir()

	provider, err := genesisFile.NewFileProvider(flags.GenesisFile())
	if err != nil {
		logger.Error("failed to load genesis file",
			"err", err,
		)
		return nil, err
	}
	if node.Genesis, err = provider.GetGenesisDocument(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err = node.initBackends(ctx); err != nil {
		logger.Error("failed to initialize backends",
			"err", err,
		)
		return nil, err
	}
	if err = node.initServices(); err != nil {
		logger.Error("failed to start services",
			"err", err,
		)
		return nil, err
	}

	logger.Info("node started",
		"chain_id", node.Genesis.ChainID,
		"platform", node.Genesis.Platform,
		"minter", node.Genesis.Minter,
	)

	startOk = true
	return node, nil
}

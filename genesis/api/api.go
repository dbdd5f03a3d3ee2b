// Package api defines the node genesis document.
package api

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	minter "github.com/cryptogopniks/GopStake/minter/api"
	staking "github.com/cryptogopniks/GopStake/staking/api"
	"github.com/cryptogopniks/GopStake/staking/host"
)

// Document is a genesis document.
type Document struct {
	// ChainID is the identifier of the deployment.
	ChainID string `json:"chain_id"`
	// Time is the time the genesis document was constructed.
	Time time.Time `json:"genesis_time"`

	// Platform is the address of the staking platform.
	Platform staking.Address `json:"platform"`
	// Minter is the address of the minter.
	Minter staking.Address `json:"minter"`

	// Staking is the staking platform genesis state.
	Staking staking.Genesis `json:"staking"`
	// MinterState is the minter genesis state.
	MinterState minter.Genesis `json:"minter_state"`
	// Ledger is the local ledger genesis state.
	Ledger host.LedgerGenesis `json:"ledger"`
}

// Provider is a genesis document provider.
type Provider interface {
	// GetGenesisDocument returns the genesis document.
	GetGenesisDocument() (*Document, error)
}

// SanityCheck does basic sanity checking on the contents of the genesis
// document, reporting every violation found.
func (d *Document) SanityCheck() error {
	var err error

	if strings.TrimSpace(d.ChainID) == "" {
		err = multierr.Append(err, fmt.Errorf("genesis: chain ID must not be empty"))
	}
	if d.Time.After(time.Now()) {
		err = multierr.Append(err, fmt.Errorf("genesis: time of genesis document is in the future"))
	}
	if !d.Platform.IsValid() {
		err = multierr.Append(err, fmt.Errorf("genesis: malformed platform address"))
	}
	if !d.Minter.IsValid() {
		err = multierr.Append(err, fmt.Errorf("genesis: malformed minter address"))
	}
	if d.Platform == d.Minter {
		err = multierr.Append(err, fmt.Errorf("genesis: platform and minter share an address"))
	}

	if m := d.Staking.Config.Minter; m != nil && *m != d.Minter {
		err = multierr.Append(err, fmt.Errorf("genesis: staking config names minter '%s', expected '%s'", *m, d.Minter))
	}
	if p := d.MinterState.Config.StakingPlatform; p != nil && *p != d.Platform {
		err = multierr.Append(err, fmt.Errorf("genesis: minter config names platform '%s', expected '%s'", *p, d.Platform))
	}

	if serr := d.Staking.SanityCheck(); serr != nil {
		err = multierr.Append(err, fmt.Errorf("genesis: staking: %w", serr))
	}
	if merr := d.MinterState.SanityCheck(); merr != nil {
		err = multierr.Append(err, fmt.Errorf("genesis: minter: %w", merr))
	}
	if lerr := d.Ledger.SanityCheck(); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("genesis: ledger: %w", lerr))
	}
	return err
}

package minter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cryptogopniks/GopStake/common/logging"
	"github.com/cryptogopniks/GopStake/common/quantity"
	"github.com/cryptogopniks/GopStake/minter/api"
	minterState "github.com/cryptogopniks/GopStake/minter/state"
	staking "github.com/cryptogopniks/GopStake/staking/api"
	"github.com/cryptogopniks/GopStake/staking/host"
	storage "github.com/cryptogopniks/GopStake/storage/api"
)

var (
	_ api.Backend = (*Service)(nil)
	_ host.Minter = (*Service)(nil)
)

// Factory executes token factory instructions.
type Factory interface {
	// CreateDenom creates a new denom.
	CreateDenom(ctx context.Context, denom string) error

	// MintTo mints amount of denom to the recipient.
	MintTo(ctx context.Context, denom string, amount *quantity.Quantity, recipient staking.Address) error

	// Burn burns amount of denom held by the holder.
	Burn(ctx context.Context, holder staking.Address, denom string, amount *quantity.Quantity) error

	// SetMetadata sets the bank metadata of a denom.
	SetMetadata(ctx context.Context, md *api.Metadata) error
}

// Config is the minter service configuration.
type Config struct {
	// Storage is the storage backend holding the minter state. It must not
	// be shared with the staking host.
	Storage storage.Backend

	Minter  *Minter
	Bank    host.Bank
	Factory Factory
}

// Service binds the minter to its storage and the token factory.
type Service struct {
	sync.Mutex

	logger *logging.Logger

	storage storage.Backend
	minter  *Minter
	bank    host.Bank
	factory Factory
	journal host.Journal
}

// Address implements host.Minter.
func (s *Service) Address() staking.Address {
	return s.minter.Address()
}

// Mint implements host.Minter.
//
// The request is executed as a regular mint transaction of the caller, so
// it is subject to the same authorization.
func (s *Service) Mint(ctx context.Context, caller, recipient staking.Address, denom string, amount *quantity.Quantity) error {
	tx := staking.NewTransaction(caller, nil, 0, api.MethodMintTokens, &api.MintTokensBody{
		Denom:     denom,
		Amount:    *amount.Clone(),
		Recipient: recipient,
	})
	_, err := s.SubmitTx(ctx, tx)
	return err
}

// InitChain imports the genesis state into empty storage.
func (s *Service) InitChain(ctx context.Context, genesis *api.Genesis) error {
	s.Lock()
	defer s.Unlock()

	tx, err := s.storage.NewTransaction(ctx, true)
	if err != nil {
		return err
	}
	defer tx.Discard()

	if err = s.minter.InitChain(minterState.NewMutableState(tx), genesis); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return err
	}

	s.logger.Info("InitChain: imported minter genesis",
		"owners", len(genesis.Denoms),
	)
	return nil
}

// IsInitialized returns true iff the minter state has been initialized.
func (s *Service) IsInitialized(ctx context.Context) (bool, error) {
	_, err := s.Config(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, api.ErrNotInitialized):
		return false, nil
	default:
		return false, err
	}
}

// Implements api.Backend.
func (s *Service) SubmitTx(ctx context.Context, tx *staking.Transaction) (*api.Result, error) {
	s.Lock()
	defer s.Unlock()

	stx, err := s.storage.NewTransaction(ctx, true)
	if err != nil {
		return nil, err
	}
	defer stx.Discard()

	var committed bool
	if s.journal != nil {
		snapshot := s.journal.Snapshot()
		defer func() {
			if !committed {
				s.journal.RevertToSnapshot(snapshot)
				return
			}
			s.journal.DiscardSnapshot(snapshot)
		}()
	}

	for i := range tx.Funds {
		if err = s.bank.Transfer(ctx, tx.Caller, s.minter.Address(), &tx.Funds[i]); err != nil {
			return nil, fmt.Errorf("minter: escrow failed: %w", err)
		}
	}

	res, err := s.minter.ExecuteTx(minterState.NewMutableState(stx), tx)
	if err != nil {
		return nil, err
	}
	for i := range res.Instructions {
		if err = s.dispatch(ctx, &res.Instructions[i]); err != nil {
			return nil, fmt.Errorf("minter: instruction %d (%s) failed: %w", i, res.Instructions[i].Kind(), err)
		}
	}

	if err = stx.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true

	return res, nil
}

func (s *Service) dispatch(ctx context.Context, in *api.Instruction) error {
	switch {
	case in.CreateDenom != nil:
		return s.factory.CreateDenom(ctx, in.CreateDenom.Denom)
	case in.MintTo != nil:
		m := in.MintTo
		return s.factory.MintTo(ctx, m.Denom, &m.Amount, m.Recipient)
	case in.Burn != nil:
		return s.factory.Burn(ctx, s.minter.Address(), in.Burn.Denom, &in.Burn.Amount)
	case in.SetMetadata != nil:
		return s.factory.SetMetadata(ctx, in.SetMetadata)
	default:
		return fmt.Errorf("%w: empty instruction", api.ErrInvalidArgument)
	}
}

func (s *Service) state(ctx context.Context) (*minterState.ImmutableState, func(), error) {
	tx, err := s.storage.NewTransaction(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	return minterState.NewImmutableState(tx), tx.Discard, nil
}

// Implements api.Backend.
func (s *Service) Config(ctx context.Context) (*api.Config, error) {
	st, done, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	return st.Config()
}

// Implements api.Backend.
func (s *Service) DenomsByCreator(ctx context.Context, owner staking.Address) ([]string, error) {
	st, done, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	denoms, err := st.Denoms(owner)
	if err != nil {
		return nil, err
	}
	if denoms == nil {
		denoms = []string{}
	}
	return denoms, nil
}

// Implements api.Backend.
func (s *Service) StateToGenesis(ctx context.Context) (*api.Genesis, error) {
	st, done, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	cfg, err := st.Config()
	if err != nil {
		return nil, err
	}
	denoms, err := st.AllDenoms()
	if err != nil {
		return nil, err
	}
	return &api.Genesis{
		Config: *cfg,
		Denoms: denoms,
	}, nil
}

// NewService creates a new minter service.
func NewService(cfg *Config) (*Service, error) {
	if cfg.Storage == nil || cfg.Minter == nil {
		return nil, fmt.Errorf("minter: storage and minter are required")
	}
	if cfg.Bank == nil || cfg.Factory == nil {
		return nil, fmt.Errorf("minter: bank and factory are required")
	}

	s := &Service{
		logger:  logging.GetLogger("minter/service"),
		storage: cfg.Storage,
		minter:  cfg.Minter,
		bank:    cfg.Bank,
		factory: cfg.Factory,
	}
	if j, ok := cfg.Bank.(host.Journal); ok {
		s.journal = j
	}
	return s, nil
}

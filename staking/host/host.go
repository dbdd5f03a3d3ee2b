package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eapache/channels"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cryptogopniks/GopStake/common/logging"
	"github.com/cryptogopniks/GopStake/common/pubsub"
	"github.com/cryptogopniks/GopStake/common/quantity"
	"github.com/cryptogopniks/GopStake/staking/api"
	"github.com/cryptogopniks/GopStake/staking/platform"
	stakingState "github.com/cryptogopniks/GopStake/staking/state"
	storage "github.com/cryptogopniks/GopStake/storage/api"
)

var _ api.Backend = (*Service)(nil)

// Config is the host configuration.
type Config struct {
	// Storage is the storage backend holding the platform state.
	Storage storage.Backend

	// Platform is the staking platform.
	Platform *platform.Platform

	Bank    Bank
	Custody Custody
	// Minter is optional, minting payouts fail without it.
	Minter Minter

	// Clock stamps transactions and queries that carry no time. Defaults to
	// the wall clock.
	Clock Clock
}

// Service is the staking platform host.
type Service struct {
	sync.Mutex

	logger *logging.Logger

	storage  storage.Backend
	platform *platform.Platform

	bank    Bank
	custody Custody
	minter  Minter
	journal Journal

	clock    Clock
	notifier *pubsub.Broker
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

	if err = s.platform.InitChain(stakingState.NewMutableState(tx), genesis); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// IsInitialized returns true iff the platform state has been initialized.
func (s *Service) IsInitialized(ctx context.Context) (bool, error) {
	q, done, err := s.query(ctx)
	if err != nil {
		return false, err
	}
	defer done()

	_, err = q.Config()
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
func (s *Service) SubmitTx(ctx context.Context, tx *api.Transaction) (*api.Result, error) {
	start := time.Now()
	labels := prometheus.Labels{"method": string(tx.Call.Method)}

	res, err := s.submitTx(ctx, tx)
	txLatency.With(labels).Observe(time.Since(start).Seconds())
	if err != nil {
		txFailures.With(labels).Inc()
		s.logger.Debug("transaction failed",
			"err", err,
			"method", tx.Call.Method,
			"caller", tx.Caller,
		)
		return nil, err
	}
	txSuccesses.With(labels).Inc()

	return res, nil
}

func (s *Service) submitTx(ctx context.Context, tx *api.Transaction) (*api.Result, error) {
	s.Lock()
	defer s.Unlock()

	if tx.Now == 0 {
		stamped := *tx
		stamped.Now = s.clock()
		tx = &stamped
	}

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

	// Attached payments are escrowed into the platform account first.
	instructions := make([]api.Instruction, 0, len(tx.Funds))
	for _, f := range tx.Funds {
		instructions = append(instructions, api.NewTransfer(tx.Caller, s.platform.Address(), f))
	}
	for i := range instructions {
		if err = s.dispatch(ctx, &instructions[i]); err != nil {
			return nil, fmt.Errorf("staking/host: escrow failed: %w", err)
		}
	}

	res, err := s.platform.ExecuteTx(stakingState.NewMutableState(stx), tx)
	if err != nil {
		return nil, err
	}
	for i := range res.Instructions {
		if err = s.dispatch(ctx, &res.Instructions[i]); err != nil {
			return nil, fmt.Errorf("staking/host: instruction %d (%s) failed: %w", i, res.Instructions[i].Kind(), err)
		}
	}

	if err = stx.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true

	res.Instructions = append(instructions, res.Instructions...)
	for _, in := range res.Instructions {
		txInstructions.With(prometheus.Labels{"kind": in.Kind()}).Inc()
	}
	for i := range res.Events {
		s.notifier.Broadcast(&res.Events[i])
	}

	return res, nil
}

func (s *Service) dispatch(ctx context.Context, in *api.Instruction) error {
	switch {
	case in.Transfer != nil:
		return s.bank.Transfer(ctx, in.Transfer.From, in.Transfer.To, &in.Transfer.Funds)
	case in.Custody != nil:
		c := in.Custody
		return s.custody.TransferItem(ctx, c.Collection, c.ItemID, c.From, c.To)
	case in.Mint != nil:
		m := in.Mint
		if s.minter == nil || s.minter.Address() != m.Minter {
			return fmt.Errorf("%w: no minter at %s", api.ErrParameterIsNotFound, m.Minter)
		}
		return s.minter.Mint(ctx, s.platform.Address(), m.Recipient, m.Denom, &m.Amount)
	default:
		return fmt.Errorf("%w: empty instruction", api.ErrInvalidArgument)
	}
}

func (s *Service) query(ctx context.Context) (*platform.Query, func(), error) {
	tx, err := s.storage.NewTransaction(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	return platform.NewQuery(stakingState.NewImmutableState(tx)), tx.Discard, nil
}

// Implements api.Backend.
func (s *Service) Config(ctx context.Context) (*api.Config, error) {
	q, done, err := s.query(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	return q.Config()
}

// Implements api.Backend.
func (s *Service) Funds(ctx context.Context) ([]api.Funds, error) {
	q, done, err := s.query(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	return q.Funds()
}

// Implements api.Backend.
func (s *Service) Stakers(ctx context.Context, query *api.AddressesQuery) ([]api.StakerInfo, error) {
	q, done, err := s.query(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	return q.Stakers(query)
}

// Implements api.Backend.
func (s *Service) StakingRewards(ctx context.Context, query *api.RewardsQuery) (*api.BalancesResponse, error) {
	q, done, err := s.query(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	if query.Now == 0 {
		stamped := *query
		stamped.Now = s.clock()
		query = &stamped
	}
	return q.StakingRewards(query)
}

// Implements api.Backend.
func (s *Service) AssociatedBalances(ctx context.Context, address api.Address) (*api.BalancesResponse, error) {
	q, done, err := s.query(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	currencies, err := q.StakingCurrencies()
	if err != nil {
		return nil, err
	}

	rsp := &api.BalancesResponse{
		Address: address,
		Funds:   []api.Funds{},
	}
	for _, c := range currencies {
		var balance *quantity.Quantity
		if balance, err = s.bank.Balance(ctx, address, c.Token); err != nil {
			return nil, err
		}
		if balance.IsZero() {
			continue
		}
		rsp.Funds = append(rsp.Funds, api.NewFunds(balance, c))
	}
	return rsp, nil
}

// Implements api.Backend.
func (s *Service) Proposals(ctx context.Context, query *api.ProposalsQuery) ([]api.Proposal, error) {
	q, done, err := s.query(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	return q.Proposals(query)
}

// Implements api.Backend.
func (s *Service) Collections(ctx context.Context, query *api.AddressesQuery) ([]api.CollectionEntry, error) {
	q, done, err := s.query(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	return q.Collections(query)
}

// Implements api.Backend.
func (s *Service) CollectionsBalances(ctx context.Context, query *api.AddressesQuery) ([]api.CollectionBalance, error) {
	q, done, err := s.query(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	return q.CollectionsBalances(query)
}

// Implements api.Backend.
func (s *Service) StateToGenesis(ctx context.Context) (*api.Genesis, error) {
	q, done, err := s.query(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	return q.Genesis()
}

// Implements api.Backend.
func (s *Service) WatchEvents(ctx context.Context) (<-chan *api.Event, pubsub.ClosableSubscription, error) {
	typedCh := make(chan *api.Event)
	sub := s.notifier.Subscribe()
	sub.Unwrap(typedCh)

	return typedCh, sub, nil
}

// New creates a new staking platform host.
func New(cfg *Config) (*Service, error) {
	if cfg.Storage == nil || cfg.Platform == nil {
		return nil, fmt.Errorf("staking/host: storage and platform are required")
	}
	if cfg.Bank == nil || cfg.Custody == nil {
		return nil, fmt.Errorf("staking/host: bank and custody are required")
	}

	initMetrics()

	s := &Service{
		logger:   logging.GetLogger("staking/host"),
		storage:  cfg.Storage,
		platform: cfg.Platform,
		bank:     cfg.Bank,
		custody:  cfg.Custody,
		minter:   cfg.Minter,
		clock:    cfg.Clock,
	}
	if s.clock == nil {
		s.clock = func() api.Timestamp {
			return api.Timestamp(time.Now().UnixNano())
		}
	}
	if j, ok := cfg.Bank.(Journal); ok {
		s.journal = j
	}
	s.notifier = pubsub.NewBrokerEx(func(ch channels.Channel) {
		eventSubscriptions.Inc()
	})

	return s, nil
}

package host

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/cryptogopniks/GopStake/common/logging"
	"github.com/cryptogopniks/GopStake/common/quantity"
	minterAPI "github.com/cryptogopniks/GopStake/minter/api"
	"github.com/cryptogopniks/GopStake/staking/api"
)

var (
	_ Bank    = (*LocalLedger)(nil)
	_ Custody = (*LocalLedger)(nil)
	_ Journal = (*LocalLedger)(nil)
)

// LedgerAccount is the initial wallet of an account.
type LedgerAccount struct {
	Address api.Address `json:"address"`
	Funds   []api.Funds `json:"funds"`
}

// ItemOwner is the initial owner of a collection item.
type ItemOwner struct {
	Collection api.Address `json:"collection"`
	ItemID     api.ItemID  `json:"item_id"`
	Owner      api.Address `json:"owner"`
}

// LedgerGenesis is the local ledger state.
type LedgerGenesis struct {
	Accounts []LedgerAccount      `json:"accounts,omitempty"`
	Items    []ItemOwner          `json:"items,omitempty"`
	Denoms   []minterAPI.Metadata `json:"denoms,omitempty"`
}

// SanityCheck does basic sanity checking on the ledger state.
func (g *LedgerGenesis) SanityCheck() error {
	var result *multierror.Error

	for i := range g.Denoms {
		if g.Denoms[i].Base == "" {
			result = multierror.Append(result, fmt.Errorf("%w: denom without base", api.ErrInvalidArgument))
		}
	}
	for _, acct := range g.Accounts {
		if !acct.Address.IsValid() {
			result = multierror.Append(result, fmt.Errorf("%w: malformed account address '%s'", api.ErrInvalidArgument, acct.Address))
		}
		for i := range acct.Funds {
			if err := acct.Funds[i].Currency.Token.ValidateBasic(); err != nil {
				result = multierror.Append(result, err)
			}
			if !acct.Funds[i].Amount.IsValid() {
				result = multierror.Append(result, fmt.Errorf("%w: invalid balance of %s", api.ErrInvalidArgument, acct.Address))
			}
		}
	}
	seen := make(map[itemKey]bool)
	for _, it := range g.Items {
		if !it.Collection.IsValid() || !it.Owner.IsValid() || !it.ItemID.IsValid() {
			result = multierror.Append(result, fmt.Errorf("%w: malformed item %s of %s", api.ErrInvalidArgument, it.ItemID, it.Collection))
		}
		key := itemKey{collection: it.Collection, item: it.ItemID}
		if seen[key] {
			result = multierror.Append(result, fmt.Errorf("%w: item %s of %s listed twice", api.ErrInvalidArgument, it.ItemID, it.Collection))
		}
		seen[key] = true
	}

	return result.ErrorOrNil()
}

type itemKey struct {
	collection api.Address
	item       api.ItemID
}

// LocalLedger is an in-process bank, item custodian and token factory.
//
// Every change is recorded in a journal so that a failed transaction can be
// rolled back. The journal is shared by every user of the ledger: reverting
// a snapshot undoes all changes made after it was taken.
type LocalLedger struct {
	sync.Mutex

	logger *logging.Logger

	balances   map[api.Address]map[string]*quantity.Quantity
	currencies map[string]api.Currency
	items      map[itemKey]api.Address
	// denoms are the created factory denoms and their metadata.
	denoms map[string]*minterAPI.Metadata

	journal   []func()
	snapshots int
}

// Snapshot implements Journal.
func (l *LocalLedger) Snapshot() int {
	l.Lock()
	defer l.Unlock()

	l.snapshots++
	return len(l.journal)
}

// RevertToSnapshot implements Journal.
func (l *LocalLedger) RevertToSnapshot(id int) {
	l.Lock()
	defer l.Unlock()

	for i := len(l.journal) - 1; i >= id; i-- {
		l.journal[i]()
	}
	l.journal = l.journal[:id]
	l.release()
}

// DiscardSnapshot implements Journal.
func (l *LocalLedger) DiscardSnapshot(id int) {
	l.Lock()
	defer l.Unlock()

	l.release()
}

func (l *LocalLedger) release() {
	if l.snapshots > 0 {
		l.snapshots--
	}
	if l.snapshots == 0 {
		l.journal = nil
	}
}

func (l *LocalLedger) record(undo func()) {
	if l.snapshots > 0 {
		l.journal = append(l.journal, undo)
	}
}

func (l *LocalLedger) balance(holder api.Address, key string) *quantity.Quantity {
	if b, ok := l.balances[holder][key]; ok {
		return b.Clone()
	}
	return quantity.NewQuantity()
}

func (l *LocalLedger) setBalance(holder api.Address, currency api.Currency, amount *quantity.Quantity) {
	key := currency.Token.String()
	if _, ok := l.currencies[key]; !ok {
		l.currencies[key] = currency
	}

	prev, existed := l.balances[holder][key]
	l.record(func() {
		if existed {
			l.balances[holder][key] = prev
		} else {
			delete(l.balances[holder], key)
		}
	})

	if l.balances[holder] == nil {
		l.balances[holder] = make(map[string]*quantity.Quantity)
	}
	l.balances[holder][key] = amount
}

func (l *LocalLedger) credit(holder api.Address, currency api.Currency, amount *quantity.Quantity) error {
	b := l.balance(holder, currency.Token.String())
	if err := b.Add(amount); err != nil {
		return err
	}
	l.setBalance(holder, currency, b)
	return nil
}

func (l *LocalLedger) debit(holder api.Address, currency api.Currency, amount *quantity.Quantity) error {
	b := l.balance(holder, currency.Token.String())
	if err := b.Sub(amount); err != nil {
		return fmt.Errorf("staking/host: %s holds less than %s %s: %w", holder, amount, currency.Token, err)
	}
	l.setBalance(holder, currency, b)
	return nil
}

// Transfer implements Bank.
func (l *LocalLedger) Transfer(ctx context.Context, from, to api.Address, funds *api.Funds) error {
	if err := funds.Currency.Token.ValidateBasic(); err != nil {
		return err
	}

	l.Lock()
	defer l.Unlock()

	if err := l.debit(from, funds.Currency, &funds.Amount); err != nil {
		return err
	}
	if err := l.credit(to, funds.Currency, &funds.Amount); err != nil {
		return err
	}

	l.logger.Debug("transfer",
		"from", from,
		"to", to,
		"funds", funds,
	)
	return nil
}

// Balance implements Bank.
func (l *LocalLedger) Balance(ctx context.Context, holder api.Address, token api.Token) (*quantity.Quantity, error) {
	l.Lock()
	defer l.Unlock()

	return l.balance(holder, token.String()), nil
}

// TransferItem implements Custody.
func (l *LocalLedger) TransferItem(ctx context.Context, collection api.Address, item api.ItemID, from, to api.Address) error {
	l.Lock()
	defer l.Unlock()

	key := itemKey{collection: collection, item: item}
	owner, ok := l.items[key]
	if !ok || owner != from {
		return fmt.Errorf("%w: item %s of %s is not held by %s", api.ErrAssetIsNotFound, item, collection, from)
	}

	l.record(func() {
		l.items[key] = owner
	})
	l.items[key] = to
	return nil
}

// ItemOwner returns the current owner of an item.
func (l *LocalLedger) ItemOwner(collection api.Address, item api.ItemID) (api.Address, bool) {
	l.Lock()
	defer l.Unlock()

	owner, ok := l.items[itemKey{collection: collection, item: item}]
	return owner, ok
}

// CreateDenom implements minter.Factory.
func (l *LocalLedger) CreateDenom(ctx context.Context, denom string) error {
	l.Lock()
	defer l.Unlock()

	if _, ok := l.denoms[denom]; ok {
		return fmt.Errorf("%w: %s", minterAPI.ErrDenomExists, denom)
	}
	l.record(func() {
		delete(l.denoms, denom)
	})
	l.denoms[denom] = nil
	return nil
}

// MintTo implements minter.Factory.
func (l *LocalLedger) MintTo(ctx context.Context, denom string, amount *quantity.Quantity, recipient api.Address) error {
	l.Lock()
	defer l.Unlock()

	currency, err := l.factoryCurrency(denom)
	if err != nil {
		return err
	}
	return l.credit(recipient, currency, amount)
}

// Burn implements minter.Factory.
func (l *LocalLedger) Burn(ctx context.Context, holder api.Address, denom string, amount *quantity.Quantity) error {
	l.Lock()
	defer l.Unlock()

	currency, err := l.factoryCurrency(denom)
	if err != nil {
		return err
	}
	return l.debit(holder, currency, amount)
}

// SetMetadata implements minter.Factory.
func (l *LocalLedger) SetMetadata(ctx context.Context, md *minterAPI.Metadata) error {
	l.Lock()
	defer l.Unlock()

	prev, ok := l.denoms[md.Base]
	if !ok {
		return fmt.Errorf("%w: %s", minterAPI.ErrAssetIsNotFound, md.Base)
	}
	l.record(func() {
		l.denoms[md.Base] = prev
	})
	stored := *md
	l.denoms[md.Base] = &stored
	return nil
}

// factoryCurrency returns the currency of a created denom, taking the
// decimals from the exponent of its display unit.
func (l *LocalLedger) factoryCurrency(denom string) (api.Currency, error) {
	md, ok := l.denoms[denom]
	if !ok {
		return api.Currency{}, fmt.Errorf("%w: %s", minterAPI.ErrAssetIsNotFound, denom)
	}

	var decimals uint8
	if md != nil {
		for _, u := range md.DenomUnits {
			if u.Denom == md.Display {
				decimals = uint8(u.Exponent)
			}
		}
	}
	return api.NewCurrency(api.NewNativeToken(denom), decimals), nil
}

// Genesis exports the ledger state.
func (l *LocalLedger) Genesis() *LedgerGenesis {
	l.Lock()
	defer l.Unlock()

	var g LedgerGenesis
	for holder, balances := range l.balances {
		acct := LedgerAccount{Address: holder}
		for key, amount := range balances {
			if amount.IsZero() {
				continue
			}
			acct.Funds = append(acct.Funds, api.NewFunds(amount, l.currencies[key]))
		}
		if len(acct.Funds) == 0 {
			continue
		}
		sort.Slice(acct.Funds, func(i, j int) bool {
			return acct.Funds[i].Currency.Token.String() < acct.Funds[j].Currency.Token.String()
		})
		g.Accounts = append(g.Accounts, acct)
	}
	sort.Slice(g.Accounts, func(i, j int) bool {
		return g.Accounts[i].Address < g.Accounts[j].Address
	})

	for key, owner := range l.items {
		g.Items = append(g.Items, ItemOwner{Collection: key.collection, ItemID: key.item, Owner: owner})
	}
	sort.Slice(g.Items, func(i, j int) bool {
		if g.Items[i].Collection != g.Items[j].Collection {
			return g.Items[i].Collection < g.Items[j].Collection
		}
		return g.Items[i].ItemID < g.Items[j].ItemID
	})

	for denom, md := range l.denoms {
		if md == nil {
			md = &minterAPI.Metadata{Base: denom}
		}
		g.Denoms = append(g.Denoms, *md)
	}
	sort.Slice(g.Denoms, func(i, j int) bool {
		return g.Denoms[i].Base < g.Denoms[j].Base
	})

	return &g
}

// NewLocalLedger creates a new local ledger, optionally initialized from a
// genesis state.
func NewLocalLedger(genesis *LedgerGenesis) (*LocalLedger, error) {
	l := &LocalLedger{
		logger:     logging.GetLogger("staking/host/ledger"),
		balances:   make(map[api.Address]map[string]*quantity.Quantity),
		currencies: make(map[string]api.Currency),
		items:      make(map[itemKey]api.Address),
		denoms:     make(map[string]*minterAPI.Metadata),
	}
	if genesis == nil {
		return l, nil
	}

	if err := genesis.SanityCheck(); err != nil {
		return nil, err
	}

	for i := range genesis.Denoms {
		md := genesis.Denoms[i]
		l.denoms[md.Base] = &md
	}
	for _, acct := range genesis.Accounts {
		for i := range acct.Funds {
			f := &acct.Funds[i]
			if err := l.credit(acct.Address, f.Currency, &f.Amount); err != nil {
				return nil, err
			}
		}
	}
	for _, it := range genesis.Items {
		l.items[itemKey{collection: it.Collection, item: it.ItemID}] = it.Owner
	}

	return l, nil
}

// Package state implements the persisted staking platform state.
package state

import (
	"fmt"

	"github.com/cryptogopniks/GopStake/common/cbor"
	"github.com/cryptogopniks/GopStake/common/errors"
	"github.com/cryptogopniks/GopStake/common/keyformat"
	"github.com/cryptogopniks/GopStake/common/logging"
	"github.com/cryptogopniks/GopStake/staking/api"
	storage "github.com/cryptogopniks/GopStake/storage/api"
)

// ModuleName is the staking state module name.
const ModuleName = "staking/state"

var (
	// ErrUnavailableState is the error returned when the state could not be
	// read or decoded.
	ErrUnavailableState = errors.New(ModuleName, 1, "staking/state: unavailable state")

	// configKeyFmt is the key format used for the platform config.
	//
	// Value is CBOR-serialized api.Config.
	configKeyFmt = keyformat.New(0x50)
	// collectionKeyFmt is the key format used for collections (collection
	// address).
	//
	// Value is CBOR-serialized api.Collection.
	collectionKeyFmt = keyformat.New(0x51, "")
	// balanceKeyFmt is the key format used for collection balances
	// (collection address).
	//
	// Value is CBOR-serialized api.Funds.
	balanceKeyFmt = keyformat.New(0x52, "")
	// proposalKeyFmt is the key format used for proposals (proposal ID).
	//
	// Value is CBOR-serialized api.Proposal.
	proposalKeyFmt = keyformat.New(0x53, uint64(0))
	// proposalCounterKeyFmt is the key format used for the last assigned
	// proposal ID.
	//
	// Value is CBOR-serialized api.ProposalID.
	proposalCounterKeyFmt = keyformat.New(0x54)
	// feeLedgerKeyFmt is the key format used for the fee ledger.
	//
	// Value is CBOR-serialized []api.Funds.
	feeLedgerKeyFmt = keyformat.New(0x55)
	// stakerKeyFmt is the key format used for staker markers (staker
	// address).
	//
	// Value is a marker.
	stakerKeyFmt = keyformat.New(0x56, "")
	// itemKeyFmt is the key format used for staked items (staker address,
	// collection address, item ID).
	//
	// Value is CBOR-serialized api.StakedItem.
	itemKeyFmt = keyformat.New(0x57, "", "", "")
	// collectionStakerKeyFmt is the reverse index of staked items
	// (collection address, staker address, item ID).
	//
	// Value is a marker.
	collectionStakerKeyFmt = keyformat.New(0x58, "", "", "")

	markerValue = []byte{0x01}

	logger = logging.GetLogger("staking/state")
)

func unavailableStateError(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithContext(ErrUnavailableState, err.Error())
}

type entry struct {
	key   []byte
	value []byte
}

// ImmutableState is the immutable staking state wrapper.
type ImmutableState struct {
	r storage.Reader
}

// NewImmutableState creates a new immutable staking state wrapper.
func NewImmutableState(r storage.Reader) *ImmutableState {
	return &ImmutableState{r: r}
}

// scan collects all entries under the given prefix and releases the
// iterator before returning, so callers may mutate while walking the
// result.
func (s *ImmutableState) scan(prefix []byte) ([]entry, error) {
	it := s.r.NewIterator(prefix)
	defer it.Close()

	var entries []entry
	for ; it.Valid(); it.Next() {
		entries = append(entries, entry{key: it.Key(), value: it.Value()})
	}
	if err := it.Err(); err != nil {
		return nil, unavailableStateError(err)
	}
	return entries, nil
}

func (s *ImmutableState) load(key []byte, dst interface{}) (bool, error) {
	raw, err := s.r.Get(key)
	if err != nil {
		return false, unavailableStateError(err)
	}
	if raw == nil {
		return false, nil
	}
	if err = cbor.Unmarshal(raw, dst); err != nil {
		return false, unavailableStateError(err)
	}
	return true, nil
}

// Config returns the platform config.
func (s *ImmutableState) Config() (*api.Config, error) {
	var cfg api.Config
	ok, err := s.load(configKeyFmt.Encode(), &cfg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, api.ErrNotInitialized
	}
	return &cfg, nil
}

// Collection returns the collection registered at the given address.
func (s *ImmutableState) Collection(addr api.Address) (*api.Collection, error) {
	var c api.Collection
	ok, err := s.load(collectionKeyFmt.Encode(string(addr)), &c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, api.ErrCollectionIsNotFound
	}
	return &c, nil
}

// Collections returns all registered collections in ascending address
// order.
func (s *ImmutableState) Collections() ([]api.CollectionEntry, error) {
	entries, err := s.scan(collectionKeyFmt.Encode())
	if err != nil {
		return nil, err
	}

	collections := make([]api.CollectionEntry, 0, len(entries))
	for _, e := range entries {
		var addr string
		if !collectionKeyFmt.Decode(e.key, &addr) {
			break
		}
		var c api.Collection
		if err = cbor.Unmarshal(e.value, &c); err != nil {
			return nil, unavailableStateError(err)
		}
		collections = append(collections, api.CollectionEntry{Address: api.Address(addr), Collection: c})
	}
	return collections, nil
}

// CollectionBalance returns the balance of a spending collection, nil if
// the collection has no balance entry.
func (s *ImmutableState) CollectionBalance(addr api.Address) (*api.Funds, error) {
	var f api.Funds
	ok, err := s.load(balanceKeyFmt.Encode(string(addr)), &f)
	if err != nil || !ok {
		return nil, err
	}
	return &f, nil
}

// CollectionBalances returns all collection balances in ascending address
// order.
func (s *ImmutableState) CollectionBalances() ([]api.CollectionBalance, error) {
	entries, err := s.scan(balanceKeyFmt.Encode())
	if err != nil {
		return nil, err
	}

	balances := make([]api.CollectionBalance, 0, len(entries))
	for _, e := range entries {
		var addr string
		if !balanceKeyFmt.Decode(e.key, &addr) {
			break
		}
		var f api.Funds
		if err = cbor.Unmarshal(e.value, &f); err != nil {
			return nil, unavailableStateError(err)
		}
		balances = append(balances, api.CollectionBalance{Address: api.Address(addr), Funds: f})
	}
	return balances, nil
}

// Proposal returns the proposal with the given ID.
func (s *ImmutableState) Proposal(id api.ProposalID) (*api.Proposal, error) {
	var p api.Proposal
	ok, err := s.load(proposalKeyFmt.Encode(uint64(id)), &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: proposal %d", api.ErrParameterIsNotFound, id)
	}
	return &p, nil
}

// Proposals returns all proposals in ascending ID order.
func (s *ImmutableState) Proposals() ([]api.Proposal, error) {
	entries, err := s.scan(proposalKeyFmt.Encode())
	if err != nil {
		return nil, err
	}

	proposals := make([]api.Proposal, 0, len(entries))
	for _, e := range entries {
		if !proposalKeyFmt.Decode(e.key) {
			break
		}
		var p api.Proposal
		if err = cbor.Unmarshal(e.value, &p); err != nil {
			return nil, unavailableStateError(err)
		}
		proposals = append(proposals, p)
	}
	return proposals, nil
}

// LastProposalID returns the last assigned proposal ID, zero if no
// proposal was ever created.
func (s *ImmutableState) LastProposalID() (api.ProposalID, error) {
	var id api.ProposalID
	if _, err := s.load(proposalCounterKeyFmt.Encode(), &id); err != nil {
		return 0, err
	}
	return id, nil
}

// FeeLedger returns the fee ledger.
func (s *ImmutableState) FeeLedger() ([]api.Funds, error) {
	var funds []api.Funds
	if _, err := s.load(feeLedgerKeyFmt.Encode(), &funds); err != nil {
		return nil, err
	}
	return funds, nil
}

// StakedItem returns a staked item, nil if it is not staked.
func (s *ImmutableState) StakedItem(staker, collection api.Address, id api.ItemID) (*api.StakedItem, error) {
	var item api.StakedItem
	ok, err := s.load(itemKeyFmt.Encode(string(staker), string(collection), string(id)), &item)
	if err != nil || !ok {
		return nil, err
	}
	return &item, nil
}

// Staker returns the staking ledger entry of a staker, nil if the address
// never staked.
//
// Collections are ordered by address and items by ID.
func (s *ImmutableState) Staker(addr api.Address) (*api.StakerInfo, error) {
	raw, err := s.r.Get(stakerKeyFmt.Encode(string(addr)))
	if err != nil {
		return nil, unavailableStateError(err)
	}
	if raw == nil {
		return nil, nil
	}

	entries, err := s.scan(itemKeyFmt.Encode(string(addr)))
	if err != nil {
		return nil, err
	}

	info := &api.StakerInfo{
		Address:     addr,
		Collections: []api.StakedCollectionInfo{},
	}
	for _, e := range entries {
		var staker, collection, id string
		if !itemKeyFmt.Decode(e.key, &staker, &collection, &id) {
			break
		}
		var item api.StakedItem
		if err = cbor.Unmarshal(e.value, &item); err != nil {
			return nil, unavailableStateError(err)
		}

		n := len(info.Collections)
		if n == 0 || info.Collections[n-1].CollectionAddress != api.Address(collection) {
			info.Collections = append(info.Collections, api.StakedCollectionInfo{
				CollectionAddress: api.Address(collection),
			})
			n++
		}
		info.Collections[n-1].Items = append(info.Collections[n-1].Items, item)
	}
	return info, nil
}

// StakerAddresses returns the addresses of all stakers in ascending order.
func (s *ImmutableState) StakerAddresses() ([]api.Address, error) {
	entries, err := s.scan(stakerKeyFmt.Encode())
	if err != nil {
		return nil, err
	}

	addrs := make([]api.Address, 0, len(entries))
	for _, e := range entries {
		var addr string
		if !stakerKeyFmt.Decode(e.key, &addr) {
			break
		}
		addrs = append(addrs, api.Address(addr))
	}
	return addrs, nil
}

// Stakers returns all staking ledger entries in ascending address order.
func (s *ImmutableState) Stakers() ([]api.StakerInfo, error) {
	addrs, err := s.StakerAddresses()
	if err != nil {
		return nil, err
	}

	stakers := make([]api.StakerInfo, 0, len(addrs))
	for _, addr := range addrs {
		info, err := s.Staker(addr)
		if err != nil {
			return nil, err
		}
		stakers = append(stakers, *info)
	}
	return stakers, nil
}

// CollectionStakers returns the addresses of all stakers holding items of
// the given collection, in ascending order.
func (s *ImmutableState) CollectionStakers(collection api.Address) ([]api.Address, error) {
	entries, err := s.scan(collectionStakerKeyFmt.Encode(string(collection)))
	if err != nil {
		return nil, err
	}

	var stakers []api.Address
	for _, e := range entries {
		var coll, staker string
		if !collectionStakerKeyFmt.Decode(e.key, &coll, &staker) {
			break
		}
		if n := len(stakers); n > 0 && stakers[n-1] == api.Address(staker) {
			continue
		}
		stakers = append(stakers, api.Address(staker))
	}
	return stakers, nil
}

// MutableState is the mutable staking state wrapper.
type MutableState struct {
	*ImmutableState

	tx storage.Transaction
}

// NewMutableState creates a new mutable staking state wrapper.
func NewMutableState(tx storage.Transaction) *MutableState {
	return &MutableState{
		ImmutableState: NewImmutableState(tx),
		tx:             tx,
	}
}

func (s *MutableState) store(key []byte, value interface{}) error {
	if err := s.tx.Set(key, cbor.Marshal(value)); err != nil {
		return unavailableStateError(err)
	}
	return nil
}

func (s *MutableState) remove(key []byte) error {
	if err := s.tx.Delete(key); err != nil {
		return unavailableStateError(err)
	}
	return nil
}

// SetConfig sets the platform config.
func (s *MutableState) SetConfig(cfg *api.Config) error {
	return s.store(configKeyFmt.Encode(), cfg)
}

// SetCollection registers or replaces a collection.
func (s *MutableState) SetCollection(addr api.Address, c *api.Collection) error {
	return s.store(collectionKeyFmt.Encode(string(addr)), c)
}

// RemoveCollection removes a collection from the registry.
func (s *MutableState) RemoveCollection(addr api.Address) error {
	return s.remove(collectionKeyFmt.Encode(string(addr)))
}

// SetCollectionBalance sets the balance of a spending collection.
func (s *MutableState) SetCollectionBalance(addr api.Address, f *api.Funds) error {
	return s.store(balanceKeyFmt.Encode(string(addr)), f)
}

// RemoveCollectionBalance removes the balance entry of a collection.
func (s *MutableState) RemoveCollectionBalance(addr api.Address) error {
	return s.remove(balanceKeyFmt.Encode(string(addr)))
}

// SetProposal stores a proposal.
func (s *MutableState) SetProposal(p *api.Proposal) error {
	return s.store(proposalKeyFmt.Encode(uint64(p.ID)), p)
}

// NextProposalID increments the proposal counter and returns the new ID.
func (s *MutableState) NextProposalID() (api.ProposalID, error) {
	id, err := s.LastProposalID()
	if err != nil {
		return 0, err
	}
	id++
	if err = s.SetLastProposalID(id); err != nil {
		return 0, err
	}
	return id, nil
}

// SetLastProposalID sets the proposal counter.
func (s *MutableState) SetLastProposalID(id api.ProposalID) error {
	return s.store(proposalCounterKeyFmt.Encode(), id)
}

// SetFeeLedger replaces the fee ledger.
func (s *MutableState) SetFeeLedger(funds []api.Funds) error {
	if funds == nil {
		funds = []api.Funds{}
	}
	return s.store(feeLedgerKeyFmt.Encode(), funds)
}

// EnsureStaker registers the staker marker, which outlives the staker's
// items.
func (s *MutableState) EnsureStaker(addr api.Address) error {
	if err := s.tx.Set(stakerKeyFmt.Encode(string(addr)), markerValue); err != nil {
		return unavailableStateError(err)
	}
	return nil
}

// SetStakedItem stores a staked item together with its reverse index
// entry.
func (s *MutableState) SetStakedItem(staker, collection api.Address, item *api.StakedItem) error {
	if err := s.EnsureStaker(staker); err != nil {
		return err
	}
	if err := s.store(itemKeyFmt.Encode(string(staker), string(collection), string(item.ItemID)), item); err != nil {
		return err
	}
	if err := s.tx.Set(collectionStakerKeyFmt.Encode(string(collection), string(staker), string(item.ItemID)), markerValue); err != nil {
		return unavailableStateError(err)
	}
	return nil
}

// RemoveStakedItem removes a staked item together with its reverse index
// entry.
func (s *MutableState) RemoveStakedItem(staker, collection api.Address, id api.ItemID) error {
	if err := s.remove(itemKeyFmt.Encode(string(staker), string(collection), string(id))); err != nil {
		return err
	}
	return s.remove(collectionStakerKeyFmt.Encode(string(collection), string(staker), string(id)))
}

// MoveCollectionItems re-keys every staked item of a collection under a
// new collection address.
func (s *MutableState) MoveCollectionItems(from, to api.Address) error {
	entries, err := s.scan(collectionStakerKeyFmt.Encode(string(from)))
	if err != nil {
		return err
	}

	var moved int
	for _, e := range entries {
		var coll, staker, id string
		if !collectionStakerKeyFmt.Decode(e.key, &coll, &staker, &id) {
			break
		}
		item, err := s.StakedItem(api.Address(staker), from, api.ItemID(id))
		if err != nil {
			return err
		}
		if item == nil {
			logger.Error("reverse index references a missing item",
				"collection", from,
				"staker", staker,
				"item", id,
			)
			return fmt.Errorf("%w: dangling index entry", ErrUnavailableState)
		}
		existing, err := s.StakedItem(api.Address(staker), to, api.ItemID(id))
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: item %s of %s is still staked under %s", api.ErrCollectionDuplication, id, staker, to)
		}
		if err = s.RemoveStakedItem(api.Address(staker), from, api.ItemID(id)); err != nil {
			return err
		}
		if err = s.SetStakedItem(api.Address(staker), to, item); err != nil {
			return err
		}
		moved++
	}
	logger.Debug("moved collection items", "from", from, "to", to, "items", moved)
	return nil
}

// RestartCollectionItems advances the last claim of every item staked under
// a collection address to now and returns the number of items.
//
// Items stay staked when their collection is removed. They accrue nothing
// until the address is registered again, and from then on only at the new
// terms.
func (s *MutableState) RestartCollectionItems(collection api.Address, now api.Timestamp) (int, error) {
	entries, err := s.scan(collectionStakerKeyFmt.Encode(string(collection)))
	if err != nil {
		return 0, err
	}

	var n int
	for _, e := range entries {
		var coll, staker, id string
		if !collectionStakerKeyFmt.Decode(e.key, &coll, &staker, &id) {
			break
		}
		item, err := s.StakedItem(api.Address(staker), collection, api.ItemID(id))
		if err != nil {
			return 0, err
		}
		if item == nil {
			return 0, fmt.Errorf("%w: dangling index entry", ErrUnavailableState)
		}
		n++
		if item.LastClaim >= now {
			continue
		}
		item.LastClaim = now
		if err = s.store(itemKeyFmt.Encode(staker, string(collection), id), item); err != nil {
			return 0, err
		}
	}
	return n, nil
}

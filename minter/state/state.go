// Package state implements the persisted minter state.
package state

import (
	"fmt"

	"github.com/cryptogopniks/GopStake/common/cbor"
	"github.com/cryptogopniks/GopStake/common/errors"
	"github.com/cryptogopniks/GopStake/common/keyformat"
	"github.com/cryptogopniks/GopStake/minter/api"
	staking "github.com/cryptogopniks/GopStake/staking/api"
	storage "github.com/cryptogopniks/GopStake/storage/api"
)

// ModuleName is the minter state module name.
const ModuleName = "minter/state"

var (
	// ErrUnavailableState is the error returned when the state could not be
	// read or decoded.
	ErrUnavailableState = errors.New(ModuleName, 1, "minter/state: unavailable state")

	// configKeyFmt is the key format used for the minter config.
	//
	// Value is CBOR-serialized api.Config.
	configKeyFmt = keyformat.New(0x60)
	// denomsKeyFmt is the key format used for the denoms of an owner
	// (owner address).
	//
	// Value is CBOR-serialized []string.
	denomsKeyFmt = keyformat.New(0x61, "")
	// metadataKeyFmt is the key format used for denom metadata (denom).
	//
	// Value is CBOR-serialized api.Metadata.
	metadataKeyFmt = keyformat.New(0x62, "")
)

func unavailableStateError(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithContext(ErrUnavailableState, err.Error())
}

// ImmutableState is the immutable minter state wrapper.
type ImmutableState struct {
	r storage.Reader
}

// NewImmutableState creates a new immutable minter state wrapper.
func NewImmutableState(r storage.Reader) *ImmutableState {
	return &ImmutableState{r: r}
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

// Config returns the minter config.
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

// Denoms returns the denoms registered for an owner.
func (s *ImmutableState) Denoms(owner staking.Address) ([]string, error) {
	var denoms []string
	if _, err := s.load(denomsKeyFmt.Encode(string(owner)), &denoms); err != nil {
		return nil, err
	}
	return denoms, nil
}

// AllDenoms returns the denoms of every owner in ascending owner order.
func (s *ImmutableState) AllDenoms() ([]api.OwnerDenoms, error) {
	it := s.r.NewIterator(denomsKeyFmt.Encode())
	defer it.Close()

	var result []api.OwnerDenoms
	for ; it.Valid(); it.Next() {
		var owner string
		if !denomsKeyFmt.Decode(it.Key(), &owner) {
			break
		}
		var denoms []string
		if err := cbor.Unmarshal(it.Value(), &denoms); err != nil {
			return nil, unavailableStateError(err)
		}
		result = append(result, api.OwnerDenoms{
			Owner:  staking.Address(owner),
			Denoms: denoms,
		})
	}
	if err := it.Err(); err != nil {
		return nil, unavailableStateError(err)
	}
	return result, nil
}

// DenomOwner returns the owner of a registered denom, nil if the denom is
// not registered.
func (s *ImmutableState) DenomOwner(denom string) (*staking.Address, error) {
	all, err := s.AllDenoms()
	if err != nil {
		return nil, err
	}
	for _, od := range all {
		for _, d := range od.Denoms {
			if d == denom {
				owner := od.Owner
				return &owner, nil
			}
		}
	}
	return nil, nil
}

// Metadata returns the metadata of a denom, nil if none was set.
func (s *ImmutableState) Metadata(denom string) (*api.Metadata, error) {
	var md api.Metadata
	ok, err := s.load(metadataKeyFmt.Encode(denom), &md)
	if err != nil || !ok {
		return nil, err
	}
	return &md, nil
}

// MutableState is a mutable minter state wrapper.
type MutableState struct {
	*ImmutableState

	tx storage.Transaction
}

// NewMutableState creates a new mutable minter state wrapper.
func NewMutableState(tx storage.Transaction) *MutableState {
	return &MutableState{
		ImmutableState: NewImmutableState(tx),
		tx:             tx,
	}
}

// SetConfig sets the minter config.
func (s *MutableState) SetConfig(cfg *api.Config) error {
	return unavailableStateError(s.tx.Set(configKeyFmt.Encode(), cbor.Marshal(cfg)))
}

// AddDenom registers a denom for an owner.
func (s *MutableState) AddDenom(owner staking.Address, denom string) error {
	existing, err := s.DenomOwner(denom)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", api.ErrDenomExists, denom)
	}

	denoms, err := s.Denoms(owner)
	if err != nil {
		return err
	}
	denoms = append(denoms, denom)
	return unavailableStateError(s.tx.Set(denomsKeyFmt.Encode(string(owner)), cbor.Marshal(denoms)))
}

// SetMetadata sets the metadata of a denom.
func (s *MutableState) SetMetadata(md *api.Metadata) error {
	return unavailableStateError(s.tx.Set(metadataKeyFmt.Encode(md.Base), cbor.Marshal(md)))
}

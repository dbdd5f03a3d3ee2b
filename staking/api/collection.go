package api

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/cryptogopniks/GopStake/common/prettyprint"
)

var _ prettyprint.PrettyPrinter = (*Collection)(nil)

// EmissionType is the funding source of a collection's rewards.
type EmissionType uint8

const (
	// EmissionInvalid is an invalid emission type.
	EmissionInvalid EmissionType = 0
	// EmissionSpending pays rewards from a pre-funded collection balance.
	EmissionSpending EmissionType = 1
	// EmissionMinting pays rewards by requesting issuance from the minter.
	EmissionMinting EmissionType = 2

	emissionSpendingText = "spending"
	emissionMintingText  = "minting"
)

// String returns a string representation of the emission type.
func (e EmissionType) String() string {
	switch e {
	case EmissionSpending:
		return emissionSpendingText
	case EmissionMinting:
		return emissionMintingText
	default:
		return fmt.Sprintf("[unknown emission type: %d]", uint8(e))
	}
}

// MarshalText encodes an emission type into text form.
func (e EmissionType) MarshalText() ([]byte, error) {
	switch e {
	case EmissionSpending, EmissionMinting:
		return []byte(e.String()), nil
	default:
		return nil, fmt.Errorf("invalid emission type: %d", uint8(e))
	}
}

// UnmarshalText decodes a text slice into an emission type.
func (e *EmissionType) UnmarshalText(text []byte) error {
	switch string(text) {
	case emissionSpendingText:
		*e = EmissionSpending
	case emissionMintingText:
		*e = EmissionMinting
	default:
		return fmt.Errorf("%w: invalid emission type: %s", ErrInvalidArgument, string(text))
	}
	return nil
}

// Collection are the staking terms of a collection of items.
type Collection struct {
	// Name is unique among live collections.
	Name string `json:"name"`
	// StakingCurrency is the currency rewards are paid in.
	StakingCurrency Currency `json:"staking_currency"`
	// DailyRewards is the reward per staked item per day, in base units.
	DailyRewards decimal.Decimal `json:"daily_rewards"`
	// EmissionType is the funding source of the rewards.
	EmissionType EmissionType `json:"emission_type"`
	// Owner is the collection owner.
	Owner Address `json:"owner"`
}

// ValidateBasic performs basic collection validity checks.
func (c *Collection) ValidateBasic() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty collection name", ErrInvalidArgument)
	}
	if !c.Owner.IsValid() {
		return fmt.Errorf("%w: malformed collection owner", ErrInvalidArgument)
	}
	if err := c.StakingCurrency.Token.ValidateBasic(); err != nil {
		return err
	}
	if c.DailyRewards.IsNegative() {
		return fmt.Errorf("%w: negative daily rewards", ErrInvalidArgument)
	}
	switch c.EmissionType {
	case EmissionSpending:
	case EmissionMinting:
		if !c.StakingCurrency.Token.IsNative() {
			return ErrWrongMinterTokenType
		}
	default:
		return fmt.Errorf("%w: invalid emission type", ErrInvalidArgument)
	}
	return nil
}

// TermsDiffer returns true iff the reward generating terms (rate or
// currency) of the two collections differ.
func (c *Collection) TermsDiffer(other *Collection) bool {
	return !c.DailyRewards.Equal(other.DailyRewards) || !c.StakingCurrency.Equal(other.StakingCurrency)
}

// PrettyPrint writes a pretty-printed representation of the collection to
// the given writer.
func (c Collection) PrettyPrint(ctx context.Context, prefix string, w io.Writer) {
	fmt.Fprintf(w, "%sName:          %s\n", prefix, c.Name)
	fmt.Fprintf(w, "%sCurrency:      %s\n", prefix, c.StakingCurrency)
	fmt.Fprintf(w, "%sDaily rewards: %s\n", prefix, c.DailyRewards)
	fmt.Fprintf(w, "%sEmission:      %s\n", prefix, c.EmissionType)
	fmt.Fprintf(w, "%sOwner:         %s\n", prefix, c.Owner)
}

// CollectionEntry is a collection together with its address.
type CollectionEntry struct {
	Address    Address    `json:"address"`
	Collection Collection `json:"collection"`
}

// CollectionBalance is the escrow balance of a spending collection.
type CollectionBalance struct {
	Address Address `json:"address"`
	Funds   Funds   `json:"funds"`
}

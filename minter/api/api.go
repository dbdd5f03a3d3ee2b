// Package api implements the token minter API.
package api

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cryptogopniks/GopStake/common/accessctl"
	"github.com/cryptogopniks/GopStake/common/prettyprint"
	"github.com/cryptogopniks/GopStake/common/quantity"
	"github.com/cryptogopniks/GopStake/common/transaction"
	staking "github.com/cryptogopniks/GopStake/staking/api"
)

// FactoryPrefix is the prefix of every denom issued by the minter.
const FactoryPrefix = "factory"

var (
	// MethodCreateDenom is the method name for denom creation.
	MethodCreateDenom = transaction.NewMethodName(ModuleName, "CreateDenom", CreateDenomBody{})
	// MethodMintTokens is the method name for minting.
	MethodMintTokens = transaction.NewMethodName(ModuleName, "MintTokens", MintTokensBody{})
	// MethodBurnTokens is the method name for burning the attached payment.
	MethodBurnTokens = transaction.NewMethodName(ModuleName, "BurnTokens", nil)
	// MethodSetMetadata is the method name for setting denom metadata.
	MethodSetMetadata = transaction.NewMethodName(ModuleName, "SetMetadata", SetMetadataBody{})
	// MethodUpdateConfig is the method name for config updates.
	MethodUpdateConfig = transaction.NewMethodName(ModuleName, "UpdateConfig", UpdateConfigBody{})

	// Methods is the list of all methods supported by the minter.
	Methods = []transaction.MethodName{
		MethodCreateDenom,
		MethodMintTokens,
		MethodBurnTokens,
		MethodSetMetadata,
		MethodUpdateConfig,
	}
)

// FullDenom returns the denom issued by a creator for a subdenom.
func FullDenom(creator staking.Address, subdenom string) string {
	return fmt.Sprintf("%s/%s/%s", FactoryPrefix, creator, subdenom)
}

// ValidateSubdenom performs basic subdenom validity checks.
func ValidateSubdenom(subdenom string) error {
	if subdenom == "" || strings.ContainsAny(subdenom, "/ \t\n") {
		return fmt.Errorf("%w: malformed subdenom '%s'", ErrInvalidArgument, subdenom)
	}
	return nil
}

var _ prettyprint.PrettyPrinter = (*Config)(nil)

// Config is the minter configuration.
type Config struct {
	Admin           staking.Address  `json:"admin"`
	Owner           *staking.Address `json:"owner,omitempty"`
	StakingPlatform *staking.Address `json:"staking_platform,omitempty"`
}

// ValidateBasic performs basic config validity checks.
func (c *Config) ValidateBasic() error {
	if !c.Admin.IsValid() {
		return fmt.Errorf("%w: malformed admin address", ErrInvalidArgument)
	}
	if c.Owner != nil && !c.Owner.IsValid() {
		return fmt.Errorf("%w: malformed owner address", ErrInvalidArgument)
	}
	if c.StakingPlatform != nil && !c.StakingPlatform.IsValid() {
		return fmt.Errorf("%w: malformed staking platform address", ErrInvalidArgument)
	}
	return nil
}

// Roles returns the access control roles of the configuration.
func (c *Config) Roles() accessctl.Roles {
	return accessctl.Roles{
		Admin: c.Admin.Subject(),
		Owner: staking.OptionalSubject(c.Owner),
	}
}

// PrettyPrint writes a pretty-printed representation of the config to the
// given writer.
func (c Config) PrettyPrint(ctx context.Context, prefix string, w io.Writer) {
	fmt.Fprintf(w, "%sAdmin:            %s\n", prefix, c.Admin)
	if c.Owner != nil {
		fmt.Fprintf(w, "%sOwner:            %s\n", prefix, *c.Owner)
	}
	if c.StakingPlatform != nil {
		fmt.Fprintf(w, "%sStaking platform: %s\n", prefix, *c.StakingPlatform)
	}
}

// DenomUnit is a unit of a denom.
type DenomUnit struct {
	Denom    string   `json:"denom"`
	Exponent uint32   `json:"exponent"`
	Aliases  []string `json:"aliases,omitempty"`
}

// Metadata is the bank metadata of a denom.
type Metadata struct {
	Description string      `json:"description"`
	DenomUnits  []DenomUnit `json:"denom_units"`
	Base        string      `json:"base"`
	Display     string      `json:"display"`
	Name        string      `json:"name"`
	Symbol      string      `json:"symbol"`
}

// CreateDenomBody is the body of a denom creation.
type CreateDenomBody struct {
	Owner    staking.Address `json:"owner"`
	Subdenom string          `json:"subdenom"`
}

// MintTokensBody is the body of a mint request.
type MintTokensBody struct {
	Denom     string            `json:"denom"`
	Amount    quantity.Quantity `json:"amount"`
	Recipient staking.Address   `json:"recipient"`
}

// SetMetadataBody is the body of a metadata update.
type SetMetadataBody struct {
	Metadata Metadata `json:"metadata"`
}

// UpdateConfigBody is the body of a config update.
type UpdateConfigBody struct {
	Owner           *staking.Address `json:"owner,omitempty"`
	StakingPlatform *staking.Address `json:"staking_platform,omitempty"`
}

// CreateDenomInstruction requests the creation of a denom.
type CreateDenomInstruction struct {
	Denom string `json:"denom"`
}

// MintToInstruction requests minting of a denom to a recipient.
type MintToInstruction struct {
	Denom     string            `json:"denom"`
	Amount    quantity.Quantity `json:"amount"`
	Recipient staking.Address   `json:"recipient"`
}

// BurnInstruction requests burning of a denom held by the minter.
type BurnInstruction struct {
	Denom  string            `json:"denom"`
	Amount quantity.Quantity `json:"amount"`
}

// Instruction is a token factory instruction. Exactly one field is set.
type Instruction struct {
	CreateDenom *CreateDenomInstruction `json:"create_denom,omitempty"`
	MintTo      *MintToInstruction      `json:"mint_to,omitempty"`
	Burn        *BurnInstruction        `json:"burn,omitempty"`
	SetMetadata *Metadata               `json:"set_metadata,omitempty"`
}

// Kind returns the instruction kind.
func (in *Instruction) Kind() string {
	switch {
	case in.CreateDenom != nil:
		return "create_denom"
	case in.MintTo != nil:
		return "mint_to"
	case in.Burn != nil:
		return "burn"
	case in.SetMetadata != nil:
		return "set_metadata"
	default:
		return "invalid"
	}
}

// Result is the outcome of a successfully executed minter transaction.
type Result struct {
	Instructions []Instruction `json:"instructions"`
}

// OwnerDenoms are the denoms registered for an owner.
type OwnerDenoms struct {
	Owner  staking.Address `json:"owner"`
	Denoms []string        `json:"denoms"`
}

// Genesis is the minter state.
type Genesis struct {
	Config Config        `json:"config"`
	Denoms []OwnerDenoms `json:"denoms,omitempty"`
}

// SanityCheck performs basic minter genesis validity checks.
func (g *Genesis) SanityCheck() error {
	if err := g.Config.ValidateBasic(); err != nil {
		return err
	}

	owners := make(map[staking.Address]bool)
	seen := make(map[string]bool)
	for _, od := range g.Denoms {
		if !od.Owner.IsValid() {
			return fmt.Errorf("%w: malformed denom owner", ErrInvalidArgument)
		}
		if owners[od.Owner] {
			return fmt.Errorf("%w: duplicate denom owner %s", ErrInvalidArgument, od.Owner)
		}
		owners[od.Owner] = true

		for _, d := range od.Denoms {
			if !strings.HasPrefix(d, FactoryPrefix+"/") {
				return fmt.Errorf("%w: malformed denom '%s'", ErrInvalidArgument, d)
			}
			if seen[d] {
				return fmt.Errorf("%w: %s", ErrDenomExists, d)
			}
			seen[d] = true
		}
	}
	return nil
}

// Backend is a minter implementation.
type Backend interface {
	// SubmitTx executes a minter transaction.
	SubmitTx(ctx context.Context, tx *staking.Transaction) (*Result, error)

	// Config returns the minter config.
	Config(ctx context.Context) (*Config, error)

	// DenomsByCreator returns the denoms registered for an owner.
	DenomsByCreator(ctx context.Context, owner staking.Address) ([]string, error)

	// StateToGenesis returns the genesis state of the minter.
	StateToGenesis(ctx context.Context) (*Genesis, error)
}

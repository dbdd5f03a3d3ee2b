package api

import (
	"context"
	"fmt"
	"io"

	"github.com/cryptogopniks/GopStake/common/accessctl"
	"github.com/cryptogopniks/GopStake/common/prettyprint"
)

var _ prettyprint.PrettyPrinter = (*Config)(nil)

// Config is the platform configuration.
type Config struct {
	// Admin is set once at initialization and never changes.
	Admin  Address  `json:"admin"`
	Owner  *Address `json:"owner,omitempty"`
	Minter *Address `json:"minter,omitempty"`
}

// ValidateBasic performs basic config validity checks.
func (c *Config) ValidateBasic() error {
	if !c.Admin.IsValid() {
		return fmt.Errorf("%w: malformed admin address", ErrInvalidArgument)
	}
	if c.Owner != nil && !c.Owner.IsValid() {
		return fmt.Errorf("%w: malformed owner address", ErrInvalidArgument)
	}
	if c.Minter != nil && !c.Minter.IsValid() {
		return fmt.Errorf("%w: malformed minter address", ErrInvalidArgument)
	}
	return nil
}

// Roles returns the access control roles of the configuration.
func (c *Config) Roles() accessctl.Roles {
	return accessctl.Roles{
		Admin: c.Admin.Subject(),
		Owner: OptionalSubject(c.Owner),
	}
}

// PrettyPrint writes a pretty-printed representation of the config to the
// given writer.
func (c Config) PrettyPrint(ctx context.Context, prefix string, w io.Writer) {
	optional := func(a *Address) string {
		if a == nil {
			return "(none)"
		}
		return a.String()
	}
	fmt.Fprintf(w, "%sAdmin:  %s\n", prefix, c.Admin)
	fmt.Fprintf(w, "%sOwner:  %s\n", prefix, optional(c.Owner))
	fmt.Fprintf(w, "%sMinter: %s\n", prefix, optional(c.Minter))
}

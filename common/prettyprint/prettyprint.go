// Package prettyprint provides helpers for rendering ledger types in the
// command line interface.
package prettyprint

import (
	"context"
	"io"
)

// PrettyPrinter is an interface for types that know how to pretty
// print themselves (e.g., to be displayed in a CLI).
type PrettyPrinter interface {
	// PrettyPrint writes a pretty-printed representation of the type
	// to the given writer.
	PrettyPrint(ctx context.Context, prefix string, w io.Writer)
}

// ContextKeyShowDecimals is the key to retrieve whether amounts should be
// rendered scaled by their currency decimals.
var ContextKeyShowDecimals = contextKey("staking/show-decimals")

type contextKey string

// ShowDecimals returns true iff the context requests scaled amounts.
func ShowDecimals(ctx context.Context) bool {
	v, _ := ctx.Value(ContextKeyShowDecimals).(bool)
	return v
}

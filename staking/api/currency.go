package api

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cryptogopniks/GopStake/common/prettyprint"
	"github.com/cryptogopniks/GopStake/common/quantity"
)

const (
	tokenPrefixNative = "native:"
	tokenPrefixIssued = "issued:"
)

var _ prettyprint.PrettyPrinter = (*Funds)(nil)

// NativeToken is a token identified by a bare denomination.
type NativeToken struct {
	Denom string `json:"denom"`
}

// IssuedToken is a token issued by a contract.
type IssuedToken struct {
	Address Address `json:"address"`
}

// Token is a fungible asset, either native or issued. Exactly one of the
// fields is set.
type Token struct {
	Native *NativeToken `json:"native,omitempty"`
	Issued *IssuedToken `json:"issued,omitempty"`
}

// NewNativeToken creates a native token.
func NewNativeToken(denom string) Token {
	return Token{Native: &NativeToken{Denom: denom}}
}

// NewIssuedToken creates an issued token.
func NewIssuedToken(address Address) Token {
	return Token{Issued: &IssuedToken{Address: address}}
}

// ParseToken parses a token from its "native:<denom>" or
// "issued:<address>" text form.
func ParseToken(s string) (Token, error) {
	var t Token
	switch {
	case strings.HasPrefix(s, tokenPrefixNative):
		t = NewNativeToken(strings.TrimPrefix(s, tokenPrefixNative))
	case strings.HasPrefix(s, tokenPrefixIssued):
		t = NewIssuedToken(Address(strings.TrimPrefix(s, tokenPrefixIssued)))
	default:
		return Token{}, fmt.Errorf("%w: malformed token: '%s'", ErrInvalidArgument, s)
	}
	if err := t.ValidateBasic(); err != nil {
		return Token{}, err
	}
	return t, nil
}

// ValidateBasic performs basic token validity checks.
func (t Token) ValidateBasic() error {
	switch {
	case t.Native != nil && t.Issued != nil:
		return fmt.Errorf("%w: token has multiple variants set", ErrInvalidArgument)
	case t.Native != nil:
		if t.Native.Denom == "" {
			return fmt.Errorf("%w: empty native denom", ErrInvalidArgument)
		}
		return nil
	case t.Issued != nil:
		if !t.Issued.Address.IsValid() {
			return fmt.Errorf("%w: malformed issuer address", ErrInvalidArgument)
		}
		return nil
	default:
		return fmt.Errorf("%w: token has no variant set", ErrInvalidArgument)
	}
}

// IsNative returns true iff the token is a native token.
func (t Token) IsNative() bool {
	return t.Native != nil && t.Issued == nil
}

// NativeDenom returns the denomination of a native token.
func (t Token) NativeDenom() (string, error) {
	if !t.IsNative() {
		return "", ErrWrongMinterTokenType
	}
	return t.Native.Denom, nil
}

// Equal compares tokens structurally.
func (t Token) Equal(other Token) bool {
	switch {
	case t.Native != nil && other.Native != nil:
		return t.Native.Denom == other.Native.Denom && t.Issued == nil && other.Issued == nil
	case t.Issued != nil && other.Issued != nil:
		return t.Issued.Address == other.Issued.Address && t.Native == nil && other.Native == nil
	default:
		return false
	}
}

// String returns the text form of the token.
func (t Token) String() string {
	switch {
	case t.IsNative():
		return tokenPrefixNative + t.Native.Denom
	case t.Issued != nil && t.Native == nil:
		return tokenPrefixIssued + t.Issued.Address.String()
	default:
		return "(invalid)"
	}
}

// Currency is a token together with its number of decimals.
type Currency struct {
	Token    Token `json:"token"`
	Decimals uint8 `json:"decimals"`
}

// NewCurrency creates a new currency.
func NewCurrency(token Token, decimals uint8) Currency {
	return Currency{Token: token, Decimals: decimals}
}

// Equal compares currencies structurally.
func (c Currency) Equal(other Currency) bool {
	return c.Decimals == other.Decimals && c.Token.Equal(other.Token)
}

// String returns the text form of the currency.
func (c Currency) String() string {
	return fmt.Sprintf("%s/%d", c.Token, c.Decimals)
}

// Funds is an amount of a currency.
type Funds struct {
	Amount   quantity.Quantity `json:"amount"`
	Currency Currency          `json:"currency"`
}

// NewFunds creates funds of the given amount and currency.
func NewFunds(amount *quantity.Quantity, currency Currency) Funds {
	return Funds{Amount: *amount.Clone(), Currency: currency}
}

// NewFundsFromUint64 creates funds of the given amount and currency.
func NewFundsFromUint64(amount uint64, currency Currency) Funds {
	return NewFunds(quantity.NewFromUint64(amount), currency)
}

// Equal returns true iff both amount and currency match.
func (f *Funds) Equal(other *Funds) bool {
	return f.Currency.Equal(other.Currency) && f.Amount.Cmp(&other.Amount) == 0
}

// String returns the text form of the funds.
func (f Funds) String() string {
	return fmt.Sprintf("%s %s", f.Amount.String(), f.Currency.Token)
}

// PrettyPrint writes a pretty-printed representation of the funds to the
// given writer.
func (f Funds) PrettyPrint(ctx context.Context, prefix string, w io.Writer) {
	amount := f.Amount.String()
	if prettyprint.ShowDecimals(ctx) {
		amount = decimal.NewFromBigInt(f.Amount.ToBigInt(), -int32(f.Currency.Decimals)).String()
	}
	fmt.Fprintf(w, "%s%s %s\n", prefix, amount, f.Currency.Token)
}

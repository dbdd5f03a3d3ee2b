// Package quantity implements an arbitrary precision, non-negative token
// amount that can never underflow.
package quantity

import (
	"errors"
	"math/big"
)

var (
	// ErrInvalidQuantity is the error returned on malformed arguments.
	ErrInvalidQuantity = errors.New("quantity: invalid quantity")

	// ErrInsufficientBalance is the error returned when an operation
	// fails due to insufficient balance.
	ErrInsufficientBalance = errors.New("quantity: insufficient balance")
)

// Quantity is a arbitrary precision unsigned integer that never underflows.
type Quantity struct {
	inner big.Int
}

// NewQuantity creates a new Quantity, initialized to zero.
func NewQuantity() (q *Quantity) {
	return &Quantity{}
}

// NewFromUint64 creates a new Quantity from an uint64.
func NewFromUint64(n uint64) *Quantity {
	var q Quantity
	q.inner.SetUint64(n)
	return &q
}

// Clone copies a Quantity.
func (q *Quantity) Clone() *Quantity {
	var tmp Quantity
	tmp.inner.Set(&q.inner)
	return &tmp
}

// MarshalBinary encodes a Quantity into big-endian binary form.
func (q *Quantity) MarshalBinary() ([]byte, error) {
	return q.inner.Bytes(), nil
}

// UnmarshalBinary decodes a byte slice into a Quantity.
func (q *Quantity) UnmarshalBinary(data []byte) error {
	var tmp big.Int
	tmp.SetBytes(data)
	return q.FromBigInt(&tmp)
}

// MarshalText encodes a Quantity into its base 10 text form.
func (q *Quantity) MarshalText() ([]byte, error) {
	return q.inner.MarshalText()
}

// UnmarshalText decodes a base 10 text string into a Quantity.
func (q *Quantity) UnmarshalText(text []byte) error {
	var tmp big.Int
	if err := tmp.UnmarshalText(text); err != nil {
		return ErrInvalidQuantity
	}
	return q.FromBigInt(&tmp)
}

// FromBigInt converts from a big.Int to a Quantity.
func (q *Quantity) FromBigInt(n *big.Int) error {
	if n == nil || n.Sign() < 0 {
		return ErrInvalidQuantity
	}
	q.inner.Set(n)
	return nil
}

// FromInt64 converts from an int64 to a Quantity.
func (q *Quantity) FromInt64(n int64) error {
	return q.FromBigInt(big.NewInt(n))
}

// FromUint64 converts from an uint64 to a Quantity.
func (q *Quantity) FromUint64(n uint64) error {
	q.inner.SetUint64(n)
	return nil
}

// ToBigInt returns a copy of the Quantity as a big.Int.
func (q *Quantity) ToBigInt() *big.Int {
	var tmp big.Int
	tmp.Set(&q.inner)
	return &tmp
}

// Add adds n to q, returning an error if n < 0 or n == nil.
func (q *Quantity) Add(n *Quantity) error {
	if n == nil || !n.IsValid() {
		return ErrInvalidQuantity
	}
	q.inner.Add(&q.inner, &n.inner)
	return nil
}

// Sub subtracts exactly n from q, returning an error if q < n, n < 0,
// or n == nil. On error q is left unchanged.
func (q *Quantity) Sub(n *Quantity) error {
	if n == nil || !n.IsValid() {
		return ErrInvalidQuantity
	}
	if q.inner.Cmp(&n.inner) < 0 {
		return ErrInsufficientBalance
	}
	q.inner.Sub(&q.inner, &n.inner)
	return nil
}

// SubUpTo subtracts up to n from q, and returns the amount subtracted,
// returning an error if n < 0 or n == nil.
func (q *Quantity) SubUpTo(n *Quantity) (*Quantity, error) {
	if n == nil || !n.IsValid() {
		return nil, ErrInvalidQuantity
	}

	var amount Quantity
	amount.inner.Set(&n.inner)
	if q.inner.Cmp(&amount.inner) < 0 {
		amount.inner.Set(&q.inner)
	}
	q.inner.Sub(&q.inner, &amount.inner)
	return &amount, nil
}

// Min returns a copy of the smaller of q and n.
func (q *Quantity) Min(n *Quantity) *Quantity {
	if q.Cmp(n) <= 0 {
		return q.Clone()
	}
	return n.Clone()
}

// Cmp returns -1 if q < n, 0 if q == n, and 1 if q > n.
func (q *Quantity) Cmp(n *Quantity) int {
	return q.inner.Cmp(&n.inner)
}

// IsZero returns true iff the quantity is zero.
func (q *Quantity) IsZero() bool {
	return q.inner.Sign() == 0
}

// String returns a string representation of the quantity.
func (q Quantity) String() string {
	return q.inner.String()
}

// IsValid checks if the quantity is well-formed.
func (q *Quantity) IsValid() bool {
	return q.inner.Sign() >= 0
}

// Package rewards implements the reward accrual and fee distribution
// arithmetic.
package rewards

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/cryptogopniks/GopStake/common/quantity"
	"github.com/cryptogopniks/GopStake/staking/api"
)

var (
	nanosPerDay = decimal.NewFromInt(api.NanosPerDay)
	one         = decimal.NewFromInt(1)
)

// Elapsed returns the time between lastClaim and now, zero if now precedes
// lastClaim.
func Elapsed(lastClaim, now api.Timestamp) uint64 {
	if now <= lastClaim {
		return 0
	}
	return uint64(now - lastClaim)
}

// Accrued returns the reward accrued by a single item between lastClaim and
// now at the given daily rate, floored to a whole base unit.
//
// The computation is exact: elapsed nanoseconds times the daily rate
// divided by the number of nanoseconds per day.
func Accrued(lastClaim, now api.Timestamp, dailyRate decimal.Decimal) *quantity.Quantity {
	elapsed := Elapsed(lastClaim, now)
	if elapsed == 0 || !dailyRate.IsPositive() {
		return quantity.NewQuantity()
	}

	num := decimal.NewFromBigInt(new(big.Int).SetUint64(elapsed), 0).Mul(dailyRate)
	q, _ := num.QuoRem(nanosPerDay, 0)

	var res quantity.Quantity
	if err := res.FromBigInt(q.BigInt()); err != nil {
		return quantity.NewQuantity()
	}
	return &res
}

// ValidateWeights checks that every weight lies in [0, 1] and that the
// weights sum to exactly one.
func ValidateWeights(recipients []api.WeightedRecipient) error {
	sum := decimal.Zero
	for _, r := range recipients {
		if r.Weight.IsNegative() || r.Weight.GreaterThan(one) {
			return api.ErrWeightIsOutOfRange
		}
		sum = sum.Add(r.Weight)
	}
	if !sum.Equal(one) {
		return api.ErrWeightsAreUnbalanced
	}
	return nil
}

// WeightedShare returns floor(balance * weight).
func WeightedShare(balance *quantity.Quantity, weight decimal.Decimal) *quantity.Quantity {
	if !weight.IsPositive() || balance.IsZero() {
		return quantity.NewQuantity()
	}

	share := decimal.NewFromBigInt(balance.ToBigInt(), 0).Mul(weight).Floor()

	var res quantity.Quantity
	if err := res.FromBigInt(share.BigInt()); err != nil {
		return quantity.NewQuantity()
	}
	return &res
}

package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cryptogopniks/GopStake/common/quantity"
	"github.com/cryptogopniks/GopStake/staking/api"
)

// ParseFunds parses funds in the "<amount>:<decimals>:<token>" form, e.g.
// "1000:6:native:ustars".
func ParseFunds(raw string) (api.Funds, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 3)
	if len(parts) != 3 {
		return api.Funds{}, fmt.Errorf("malformed funds '%s'", raw)
	}

	var amount quantity.Quantity
	if err := amount.UnmarshalText([]byte(parts[0])); err != nil {
		return api.Funds{}, fmt.Errorf("malformed amount '%s': %w", parts[0], err)
	}
	decimals, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return api.Funds{}, fmt.Errorf("malformed decimals '%s': %w", parts[1], err)
	}
	token, err := api.ParseToken(parts[2])
	if err != nil {
		return api.Funds{}, err
	}
	return api.NewFunds(&amount, api.NewCurrency(token, uint8(decimals))), nil
}

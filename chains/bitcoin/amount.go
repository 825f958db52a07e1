package bitcoin

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SatoshisPerBTC is the number of satoshis in one bitcoin.
const SatoshisPerBTC = 100_000_000

// FormatBTC formats a satoshi amount as BTC with 8 decimals.
func FormatBTC(satoshis int64) string {
	return fmt.Sprintf("%s BTC", decimal.New(satoshis, -8).StringFixed(8))
}

// ParseBTC converts a BTC decimal string to satoshis. Amounts that are not a
// whole number of satoshis are rejected.
func ParseBTC(amount string) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	sats := d.Shift(8)
	if !sats.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than 8 decimals", amount)
	}
	if sats.IsNegative() {
		return 0, fmt.Errorf("amount %q is negative", amount)
	}
	if sats.GreaterThan(decimal.NewFromInt(21_000_000 * SatoshisPerBTC)) {
		return 0, fmt.Errorf("amount %q exceeds the bitcoin supply", amount)
	}
	return sats.IntPart(), nil
}

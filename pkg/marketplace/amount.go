package marketplace

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// NativeDecimals is the number of decimals of a lamport amount.
const NativeDecimals = 9

// ToBaseUnits converts a display amount into the smallest unit of a currency
// with the given decimals. Intents only accept base units, so callers convert
// explicitly.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (uint64, error) {
	if amount.IsNegative() {
		return 0, errors.Wrapf(ErrArgumentOutOfRange, "negative amount %s", amount)
	}

	shifted := amount.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, errors.Wrapf(ErrArgumentOutOfRange, "%s has more than %d decimals", amount, decimals)
	}

	units := shifted.BigInt()
	if !units.IsUint64() {
		return 0, errors.Wrapf(ErrArgumentOutOfRange, "%s does not fit in 64 bits", amount)
	}
	return units.Uint64(), nil
}

// FromBaseUnits converts base units into a display amount.
func FromBaseUnits(units uint64, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -decimals)
}

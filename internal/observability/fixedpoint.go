package observability

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FixedPoint renders an integer scaled by 10^decimals, e.g.
// FixedPoint(1_500_000, 6) == "1.5".
func FixedPoint(v int64, decimals int32) string {
	return decimal.New(v, -decimals).String()
}

// FixedPointBig is FixedPoint for 128-bit values carried as big.Int.
func FixedPointBig(v *big.Int, decimals int32) string {
	return decimal.NewFromBigInt(v, -decimals).String()
}

// FixedPointU64 is FixedPoint for unsigned amounts.
func FixedPointU64(v uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), -decimals).String()
}

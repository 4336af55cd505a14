package math

import "math/big"

// ComputeFundingPayment returns the funding owed to (positive) or by
// (negative) a position since its last settlement.
//
// cumulativeRate and lastRate are in funding rate precision (1e9),
// baseAssetAmount is in base precision (1e9), the result is in quote
// precision (1e6). Longs pay when the cumulative rate rises.
func ComputeFundingPayment(cumulativeRate, lastRate Int128, baseAssetAmount int64) (Int128, error) {
	if baseAssetAmount == 0 {
		return Int128{}, nil
	}

	delta := getInt128()
	defer putInt128(delta)

	// raw = (cumulative - last) * base
	delta.Sub(cumulativeRate.Big(), lastRate.Big())
	delta.Mul(delta, big.NewInt(baseAssetAmount))

	// Convert to quote scale, rounding toward zero
	delta.Quo(delta, big.NewInt(FundingPaymentPrecision))

	// Payment is owed by the side the rate moved against
	delta.Neg(delta)

	return Int128FromBig(delta)
}

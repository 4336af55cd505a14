package state

import (
	"math/big"

	"PerpFFI/internal/errcode"
	fpmath "PerpFFI/internal/math"
)

// SizePremiumLiabilityWeight raises weight with the square root of size
// (base precision) scaled by imfFactor. precision is the unit of weight.
func SizePremiumLiabilityWeight(size fpmath.Uint128, imfFactor, weight uint32, precision uint64) (uint32, error) {
	if imfFactor == 0 {
		return weight, nil
	}
	if precision == 0 {
		return 0, errcode.Wrap(errcode.DivisionByZero, "size premium precision")
	}

	sqrt := sizeSqrt(size)
	denom := new(big.Int).SetUint64(100_000 * uint64(fpmath.SpotImfPrecision) / precision)
	if denom.Sign() == 0 {
		return 0, errcode.Wrap(errcode.DivisionByZero, "size premium denominator")
	}

	premium := new(big.Int).Mul(sqrt, big.NewInt(int64(imfFactor)))
	premium.Quo(premium, denom)
	premium.Add(premium, big.NewInt(int64(weight-weight/5)))

	if !premium.IsUint64() || premium.Uint64() > uint64(^uint32(0)) {
		return 0, errcode.Wrap(errcode.CastingFailure, "size premium weight %s", premium)
	}
	adjusted := uint32(premium.Uint64())
	if adjusted > weight {
		return adjusted, nil
	}
	return weight, nil
}

// SizeDiscountAssetWeight lowers weight with the square root of size (base
// precision) scaled by imfFactor.
func SizeDiscountAssetWeight(size fpmath.Uint128, imfFactor, weight uint32) (uint32, error) {
	if imfFactor == 0 {
		return weight, nil
	}

	sqrt := sizeSqrt(size)
	imf := int64(fpmath.SpotImfPrecision)
	num := big.NewInt((imf + imf/10) * int64(fpmath.SpotWeightPrecision))

	den := new(big.Int).Mul(sqrt, big.NewInt(int64(imfFactor)))
	den.Quo(den, big.NewInt(100_000))
	den.Add(den, big.NewInt(imf))

	discounted := num.Quo(num, den)
	if discounted.IsUint64() && discounted.Uint64() < uint64(weight) {
		return uint32(discounted.Uint64()), nil
	}
	return weight, nil
}

// sizeSqrt is sqrt(size*10 + 1), moving base precision to 1e10 first.
func sizeSqrt(size fpmath.Uint128) *big.Int {
	v := size.Big()
	v.Mul(v, big.NewInt(10))
	v.Add(v, big.NewInt(1))
	return v.Sqrt(v)
}

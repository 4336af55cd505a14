// Package margin totals a user's collateral and margin requirement across
// spot and perp positions.
package margin

import (
	"math/big"

	fpmath "PerpFFI/internal/math"
	"PerpFFI/internal/state"
)

// Calculation is the aggregate of one margin pass.
type Calculation struct {
	RequirementType             state.MarginRequirementType
	TotalCollateral             fpmath.Int128
	MarginRequirement           fpmath.Uint128
	WithPerpIsolatedLiability   bool
	WithSpotIsolatedLiability   bool
	TotalSpotAssetValue         fpmath.Int128
	TotalSpotLiabilityValue     fpmath.Uint128
	TotalPerpLiabilityValue     fpmath.Uint128
	TotalPerpPnl                fpmath.Int128
	OpenOrdersMarginRequirement fpmath.Uint128
	AllOraclesValid             bool
	NumSpotLiabilities          uint8
	NumPerpLiabilities          uint8
}

// MeetsMarginRequirement reports collateral >= requirement.
func (c *Calculation) MeetsMarginRequirement() bool {
	return c.TotalCollateral.Big().Cmp(c.MarginRequirement.Big()) >= 0
}

// FreeCollateral is collateral above the requirement, floored at zero.
func (c *Calculation) FreeCollateral() fpmath.Uint128 {
	free := new(big.Int).Sub(c.TotalCollateral.Big(), c.MarginRequirement.Big())
	if free.Sign() <= 0 {
		return fpmath.Uint128{}
	}
	out, err := fpmath.Uint128FromBig(free)
	if err != nil {
		return fpmath.MaxUint128
	}
	return out
}

// accumulator sums in arbitrary precision and narrows once at the end.
type accumulator struct {
	collateral       *big.Int
	requirement      *big.Int
	spotAssetValue   *big.Int
	spotLiability    *big.Int
	perpLiability    *big.Int
	perpPnl          *big.Int
	openOrders       *big.Int
	perpIsolated     bool
	spotIsolated     bool
	allOraclesValid  bool
	numSpotLiability uint8
	numPerpLiability uint8
}

func newAccumulator() *accumulator {
	return &accumulator{
		collateral:      new(big.Int),
		requirement:     new(big.Int),
		spotAssetValue:  new(big.Int),
		spotLiability:   new(big.Int),
		perpLiability:   new(big.Int),
		perpPnl:         new(big.Int),
		openOrders:      new(big.Int),
		allOraclesValid: true,
	}
}

func (a *accumulator) result(t state.MarginRequirementType) (Calculation, error) {
	c := Calculation{
		RequirementType:           t,
		WithPerpIsolatedLiability: a.perpIsolated,
		WithSpotIsolatedLiability: a.spotIsolated,
		AllOraclesValid:           a.allOraclesValid,
		NumSpotLiabilities:        a.numSpotLiability,
		NumPerpLiabilities:        a.numPerpLiability,
	}
	var err error
	if c.TotalCollateral, err = fpmath.Int128FromBig(a.collateral); err != nil {
		return Calculation{}, err
	}
	if c.MarginRequirement, err = fpmath.Uint128FromBig(a.requirement); err != nil {
		return Calculation{}, err
	}
	if c.TotalSpotAssetValue, err = fpmath.Int128FromBig(a.spotAssetValue); err != nil {
		return Calculation{}, err
	}
	if c.TotalSpotLiabilityValue, err = fpmath.Uint128FromBig(a.spotLiability); err != nil {
		return Calculation{}, err
	}
	if c.TotalPerpLiabilityValue, err = fpmath.Uint128FromBig(a.perpLiability); err != nil {
		return Calculation{}, err
	}
	if c.TotalPerpPnl, err = fpmath.Int128FromBig(a.perpPnl); err != nil {
		return Calculation{}, err
	}
	if c.OpenOrdersMarginRequirement, err = fpmath.Uint128FromBig(a.openOrders); err != nil {
		return Calculation{}, err
	}
	return c, nil
}

// saturatingInc counts liabilities; a user has at most 16 positions.
func saturatingInc(n uint8) uint8 {
	if n == ^uint8(0) {
		return n
	}
	return n + 1
}

// weighted is v * weight / precision, truncated toward zero.
func weighted(v *big.Int, weight uint32, precision uint32) *big.Int {
	out := new(big.Int).Mul(v, big.NewInt(int64(weight)))
	return out.Quo(out, big.NewInt(int64(precision)))
}

func openOrderRequirement(openOrders uint8) *big.Int {
	return new(big.Int).Mul(big.NewInt(int64(openOrders)), big.NewInt(fpmath.OpenOrderMarginRequirment))
}

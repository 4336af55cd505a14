package core

import (
	"PerpFFI/internal/abi"
	"PerpFFI/internal/margin"
	"PerpFFI/internal/oracle"
)

func toOraclePriceData(pd oracle.PriceData) abi.OraclePriceData {
	return abi.OraclePriceData{
		Price:                           pd.Price,
		Confidence:                      pd.Confidence,
		Delay:                           pd.Delay,
		HasSufficientNumberOfDataPoints: pd.HasSufficientNumberOfDataPoints,
	}
}

func toMarginCalculation(c margin.Calculation) abi.MarginCalculation {
	return abi.MarginCalculation{
		TotalCollateral:             abi.FromInt128(c.TotalCollateral),
		MarginRequirement:           abi.FromUint128(c.MarginRequirement),
		TotalSpotAssetValue:         abi.FromInt128(c.TotalSpotAssetValue),
		TotalSpotLiabilityValue:     abi.FromUint128(c.TotalSpotLiabilityValue),
		TotalPerpLiabilityValue:     abi.FromUint128(c.TotalPerpLiabilityValue),
		TotalPerpPnl:                abi.FromInt128(c.TotalPerpPnl),
		OpenOrdersMarginRequirement: abi.FromUint128(c.OpenOrdersMarginRequirement),
		WithPerpIsolatedLiability:   c.WithPerpIsolatedLiability,
		WithSpotIsolatedLiability:   c.WithSpotIsolatedLiability,
		AllOraclesValid:             c.AllOraclesValid,
		NumSpotLiabilities:          c.NumSpotLiabilities,
		NumPerpLiabilities:          c.NumPerpLiabilities,
	}
}

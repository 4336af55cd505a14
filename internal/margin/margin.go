package margin

import (
	"math/big"

	fpmath "PerpFFI/internal/math"
	"PerpFFI/internal/marketmap"
	"PerpFFI/internal/state"
)

// CalculateMarginRequirementAndTotalCollateralAndLiabilityInfo walks every
// non-empty position of user. A position whose market or oracle is missing
// from the maps is an error, never a zero contribution.
func CalculateMarginRequirementAndTotalCollateralAndLiabilityInfo(
	user *state.User,
	perpMarkets *marketmap.PerpMarketMap,
	spotMarkets *marketmap.SpotMarketMap,
	oracles *marketmap.OracleMap,
	mode ContextMode,
) (Calculation, error) {
	requirementType, err := mode.RequirementType()
	if err != nil {
		return Calculation{}, err
	}

	acc := newAccumulator()

	for i := range user.SpotPositions {
		pos := &user.SpotPositions[i]
		if pos.IsAvailable() {
			continue
		}
		if err := addSpotPosition(acc, pos, spotMarkets, oracles, requirementType); err != nil {
			return Calculation{}, err
		}
	}

	for i := range user.PerpPositions {
		pos := &user.PerpPositions[i]
		if pos.IsAvailable() {
			continue
		}
		if err := addPerpPosition(acc, user, pos, perpMarkets, spotMarkets, oracles, requirementType); err != nil {
			return Calculation{}, err
		}
	}

	return acc.result(requirementType)
}

func addSpotPosition(
	acc *accumulator,
	pos *state.SpotPosition,
	spotMarkets *marketmap.SpotMarketMap,
	oracles *marketmap.OracleMap,
	requirementType state.MarginRequirementType,
) error {
	market, err := spotMarkets.Get(pos.MarketIndex)
	if err != nil {
		return err
	}
	pd, validity, err := oracles.GetPriceDataAndValidity(market.Oracle, market.OracleSource, market.HistoricalOracleData.LastOraclePriceTwap)
	if err != nil {
		return err
	}
	acc.allOraclesValid = acc.allOraclesValid && validity.ValidForMargin()

	tokens, err := pos.GetSignedTokenAmount(market)
	if err != nil {
		return err
	}

	openOrders := openOrderRequirement(pos.OpenOrders)
	acc.requirement.Add(acc.requirement, openOrders)
	acc.openOrders.Add(acc.openOrders, openOrders)

	if market.MarketIndex == fpmath.QuoteSpotMarketIndex {
		amount := tokens.Big()
		if amount.Sign() >= 0 {
			acc.collateral.Add(acc.collateral, amount)
			acc.spotAssetValue.Add(acc.spotAssetValue, amount)
			return nil
		}
		amount.Abs(amount)
		acc.requirement.Add(acc.requirement, amount)
		acc.spotLiability.Add(acc.spotLiability, amount)
		acc.recordSpotLiability(market)
		return nil
	}

	fill, err := worstCaseSpotFill(pos, market, tokens, pd.Price, requirementType)
	if err != nil {
		return err
	}

	switch fill.value.Sign() {
	case 1:
		acc.collateral.Add(acc.collateral, weighted(fill.value, fill.weight, fpmath.SpotWeightPrecision))
		acc.spotAssetValue.Add(acc.spotAssetValue, fill.value)
	case -1:
		liability := new(big.Int).Abs(fill.value)
		acc.requirement.Add(acc.requirement, weighted(liability, fill.weight, fpmath.SpotWeightPrecision))
		acc.spotLiability.Add(acc.spotLiability, liability)
		acc.recordSpotLiability(market)
	}

	// Quote paid or received by the filled orders counts at weight one.
	if fill.ordersValue.Sign() >= 0 {
		acc.collateral.Add(acc.collateral, fill.ordersValue)
	} else {
		acc.requirement.Add(acc.requirement, new(big.Int).Abs(fill.ordersValue))
	}
	return nil
}

func (a *accumulator) recordSpotLiability(market *state.SpotMarket) {
	a.numSpotLiability = saturatingInc(a.numSpotLiability)
	if market.AssetTier == state.AssetTierIsolated {
		a.spotIsolated = true
	}
}

type spotFill struct {
	value       *big.Int // token value after the fill, quote precision
	weight      uint32   // asset or liability weight for value
	ordersValue *big.Int // quote moved by the fill, opposite sign to the tokens
}

// worstCaseSpotFill compares the position after all bids fill against all
// asks filling and keeps the one leaving less weighted collateral.
func worstCaseSpotFill(
	pos *state.SpotPosition,
	market *state.SpotMarket,
	tokens fpmath.Int128,
	price int64,
	requirementType state.MarginRequirementType,
) (spotFill, error) {
	var worst spotFill
	var worstScore *big.Int

	for _, open := range []int64{pos.OpenBids, pos.OpenAsks} {
		after := new(big.Int).Add(tokens.Big(), big.NewInt(open))
		afterI, err := fpmath.Int128FromBig(after)
		if err != nil {
			return spotFill{}, err
		}
		value, err := market.GetTokenValue(afterI, price)
		if err != nil {
			return spotFill{}, err
		}
		ordersValue, err := market.GetTokenValue(fpmath.I128(-open), price)
		if err != nil {
			return spotFill{}, err
		}

		size := afterI.UnsignedAbs()
		var weight uint32
		if value.Sign() >= 0 {
			weight, err = market.GetAssetWeight(size, price, requirementType)
		} else {
			weight, err = market.GetLiabilityWeight(size, requirementType)
		}
		if err != nil {
			return spotFill{}, err
		}
		score := weighted(value.Big(), weight, fpmath.SpotWeightPrecision)
		score.Add(score, ordersValue.Big())

		if worstScore == nil || score.Cmp(worstScore) < 0 {
			worstScore = score
			worst = spotFill{value: value.Big(), weight: weight, ordersValue: ordersValue.Big()}
		}
	}
	return worst, nil
}

func addPerpPosition(
	acc *accumulator,
	user *state.User,
	pos *state.PerpPosition,
	perpMarkets *marketmap.PerpMarketMap,
	spotMarkets *marketmap.SpotMarketMap,
	oracles *marketmap.OracleMap,
	requirementType state.MarginRequirementType,
) error {
	market, err := perpMarkets.Get(pos.MarketIndex)
	if err != nil {
		return err
	}
	quoteMarket, err := spotMarkets.Get(market.QuoteSpotMarketIndex)
	if err != nil {
		return err
	}
	quote, quoteValidity, err := oracles.GetPriceDataAndValidity(quoteMarket.Oracle, quoteMarket.OracleSource, quoteMarket.HistoricalOracleData.LastOraclePriceTwap)
	if err != nil {
		return err
	}
	pd, validity, err := oracles.GetPriceDataAndValidity(market.Amm.Oracle, market.Amm.OracleSource, market.Amm.HistoricalOracleData.LastOraclePriceTwap)
	if err != nil {
		return err
	}
	acc.allOraclesValid = acc.allOraclesValid && validity.ValidForMargin() && quoteValidity.ValidForMargin()

	settled, err := pos.SimulateSettledLpPosition(market, pd.Price)
	if err != nil {
		return err
	}

	funding := fpmath.Int128{}
	if settled.BaseAssetAmount != 0 {
		funding, err = fpmath.ComputeFundingPayment(market.CumulativeFundingRate(settled.BaseAssetAmount), fpmath.I128(settled.LastCumulativeFundingRate), settled.BaseAssetAmount)
		if err != nil {
			return err
		}
	}

	worstBase, err := settled.WorstCaseBaseAssetAmount(pd.Price, market.ContractType)
	if err != nil {
		return err
	}
	liability, err := state.WorstCaseLiabilityValue(worstBase, pd.Price, market.ContractType)
	if err != nil {
		return err
	}

	ratio, err := market.GetMarginRatio(worstBase.UnsignedAbs(), requirementType, user.IsHighLeverageMode())
	if err != nil {
		return err
	}
	if requirementType == state.MarginRequirementTypeInitial && user.MaxMarginRatio > ratio {
		ratio = user.MaxMarginRatio
	}

	pnl, err := settled.GetUnrealizedPnl(pd.Price)
	if err != nil {
		return err
	}
	pnlBig := new(big.Int).Add(pnl.Big(), funding.Big())
	if pnlBig.Sign() > 0 {
		pnlI, err := fpmath.Int128FromBig(pnlBig)
		if err != nil {
			return err
		}
		weight, err := market.GetUnrealizedAssetWeight(pnlI, requirementType)
		if err != nil {
			return err
		}
		pnlBig = weighted(pnlBig, weight, fpmath.SpotWeightPrecision)
	}

	// Everything above is in the quote asset; convert to USD at the quote oracle.
	toUSD := func(v *big.Int) *big.Int {
		out := new(big.Int).Mul(v, big.NewInt(quote.Price))
		return out.Quo(out, big.NewInt(fpmath.PricePrecision))
	}
	liabilityUSD := toUSD(liability.Big())
	requirement := weighted(liabilityUSD, ratio, fpmath.MarginPrecision)
	openOrders := openOrderRequirement(settled.OpenOrders)
	pnlUSD := toUSD(pnlBig)

	acc.requirement.Add(acc.requirement, requirement)
	acc.requirement.Add(acc.requirement, openOrders)
	acc.openOrders.Add(acc.openOrders, openOrders)
	acc.perpLiability.Add(acc.perpLiability, liabilityUSD)
	acc.collateral.Add(acc.collateral, pnlUSD)
	acc.perpPnl.Add(acc.perpPnl, pnlUSD)

	if settled.BaseAssetAmount != 0 || settled.HasOpenOrder() || settled.IsLp() {
		acc.numPerpLiability = saturatingInc(acc.numPerpLiability)
		if market.ContractTier == state.ContractTierIsolated {
			acc.perpIsolated = true
		}
	}
	return nil
}

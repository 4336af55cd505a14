package core

import (
	"PerpFFI/internal/abi"
	"PerpFFI/internal/account"
	"PerpFFI/internal/margin"
	"PerpFFI/internal/observability"
	"PerpFFI/internal/oracle"
	"PerpFFI/internal/orders"
	"PerpFFI/internal/state"
)

// Operation names, used as the op label on logs and metrics.
const (
	OpOracleGetOraclePrice             = "oracle_get_oracle_price"
	OpMathCalculateAuctionPrice        = "math_calculate_auction_price"
	OpMathCalculateMarginRequirement   = "math_calculate_margin_requirement_and_total_collateral_and_liability_info"
	OpOrdersPlacePerpOrder             = "orders_place_perp_order"
	OpOrderIsLimitOrder                = "order_is_limit_order"
	OpOrderIsRestingLimitOrder         = "order_is_resting_limit_order"
	OpPerpMarketGetMarginRatio         = "perp_market_get_margin_ratio"
	OpPerpMarketGetOpenInterest        = "perp_market_get_open_interest"
	OpPerpPositionGetUnrealizedPnl     = "perp_position_get_unrealized_pnl"
	OpPerpPositionIsAvailable          = "perp_position_is_available"
	OpPerpPositionIsOpenPosition       = "perp_position_is_open_position"
	OpPerpPositionWorstCaseBaseAsset   = "perp_position_worst_case_base_asset_amount"
	OpPerpPositionSimulateSettledLp    = "perp_position_simulate_settled_lp_position"
	OpSpotMarketGetAssetWeight         = "spot_market_get_asset_weight"
	OpSpotMarketGetLiabilityWeight     = "spot_market_get_liability_weight"
	OpSpotMarketGetMarginRatio         = "spot_market_get_margin_ratio"
	OpSpotPositionIsAvailable          = "spot_position_is_available"
	OpSpotPositionGetSignedTokenAmount = "spot_position_get_signed_token_amount"
	OpSpotPositionGetTokenAmount       = "spot_position_get_token_amount"
	OpUserGetSpotPosition              = "user_get_spot_position"
	OpUserGetPerpPosition              = "user_get_perp_position"
)

// OracleGetOraclePrice reads ref as source at slot.
func (b *Bridge) OracleGetOraclePrice(source state.OracleSource, ref account.Ref, slot uint64) abi.Result[abi.OraclePriceData] {
	c := b.begin(OpOracleGetOraclePrice)
	pd, err := oracle.GetOraclePrice(source, ref, slot)
	if err == nil {
		c.log.Debug().
			Stringer("source", source).
			Str("price", observability.FixedPoint(pd.Price, 6)).
			Int64("delay", pd.Delay).
			Msg("oracle price")
	}
	return finish(c, toOraclePriceData(pd), err)
}

// MathCalculateAuctionPrice prices the auction of the order in orderData at
// slot. No maps are built.
func (b *Bridge) MathCalculateAuctionPrice(orderData []byte, slot, tickSize uint64, oraclePrice abi.Option[int64], isPredictionMarket bool) abi.Result[uint64] {
	c := b.begin(OpMathCalculateAuctionPrice)
	order, err := account.Cast[state.Order](orderData)
	if err != nil {
		return finish(c, uint64(0), err)
	}
	price, err := orders.CalculateAuctionPrice(order, slot, tickSize, oraclePrice.Ptr(), isPredictionMarket)
	return finish(c, price, err)
}

// MathCalculateMarginRequirementAndTotalCollateralAndLiabilityInfo runs a
// full margin pass over the user account in userData.
func (b *Bridge) MathCalculateMarginRequirementAndTotalCollateralAndLiabilityInfo(userData []byte, accounts AccountsList, mode margin.ContextMode) abi.Result[abi.MarginCalculation] {
	c := b.begin(OpMathCalculateMarginRequirement)
	calc, err := c.calculateMargin(userData, accounts, mode)
	return finish(c, calc, err)
}

func (c *call) calculateMargin(userData []byte, accounts AccountsList, mode margin.ContextMode) (abi.MarginCalculation, error) {
	user, err := account.LoadUser(userData)
	if err != nil {
		return abi.MarginCalculation{}, err
	}
	m, err := c.loadMaps(accounts)
	if err != nil {
		return abi.MarginCalculation{}, err
	}
	calc, err := margin.CalculateMarginRequirementAndTotalCollateralAndLiabilityInfo(user, m.perp, m.spot, m.oracles, mode)
	if err != nil {
		return abi.MarginCalculation{}, err
	}
	if e := c.log.Debug(); e.Enabled() {
		e.Stringer("requirement_type", calc.RequirementType).
			Str("total_collateral", observability.FixedPointBig(calc.TotalCollateral.Big(), 6)).
			Str("margin_requirement", observability.FixedPointBig(calc.MarginRequirement.Big(), 6)).
			Str("free_collateral", observability.FixedPointBig(calc.FreeCollateral().Big(), 6)).
			Msg("margin calculated")
	}
	return toMarginCalculation(calc), nil
}

// OrdersPlacePerpOrder simulates placing params for the user in userData.
// The order is placed on a private copy of the user; userData is never
// written. The clock takes its slot from accounts.LatestSlot and its unix
// time from the bridge's clock; the epoch fields stay zero since placement
// never reads them.
func (b *Bridge) OrdersPlacePerpOrder(userData, stateData, paramsData []byte, accounts AccountsList) abi.Result[bool] {
	c := b.begin(OpOrdersPlacePerpOrder)
	err := c.placePerpOrder(userData, stateData, paramsData, accounts)
	return finish(c, err == nil, err)
}

func (c *call) placePerpOrder(userData, stateData, paramsData []byte, accounts AccountsList) error {
	user, err := account.LoadUser(account.Clone(userData))
	if err != nil {
		return err
	}
	st, err := account.LoadState(stateData)
	if err != nil {
		return err
	}
	params, err := account.Cast[orders.OrderParams](paramsData)
	if err != nil {
		return err
	}
	m, err := c.loadMaps(accounts)
	if err != nil {
		return err
	}

	clock := orders.Clock{
		Slot:          accounts.LatestSlot,
		UnixTimestamp: c.b.now().Unix(),
	}
	if e := c.log.Debug(); e.Enabled() {
		e.Uint16("market_index", params.MarketIndex).
			Stringer("direction", params.Direction).
			Str("base", observability.FixedPointU64(params.BaseAssetAmount, 9)).
			Str("price", observability.FixedPointU64(params.Price, 6)).
			Msg("placing perp order")
	}
	return orders.PlacePerpOrder(st, user, m.perp, m.spot, m.oracles, clock, *params)
}

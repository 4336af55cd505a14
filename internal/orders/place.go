package orders

import (
	"PerpFFI/internal/errcode"
	"PerpFFI/internal/margin"
	"PerpFFI/internal/marketmap"
	fpmath "PerpFFI/internal/math"
	"PerpFFI/internal/state"
)

// Clock is the point in time an order is placed at.
type Clock struct {
	Slot                uint64
	EpochStartTimestamp int64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       int64
}

// PlacePerpOrder validates params against the exchange, market, and user,
// writes the order into user, and requires the user to still meet initial
// margin afterwards. user is mutated; callers simulating placement pass a
// scratch copy.
func PlacePerpOrder(
	st *state.State,
	user *state.User,
	perpMarkets *marketmap.PerpMarketMap,
	spotMarkets *marketmap.SpotMarketMap,
	oracles *marketmap.OracleMap,
	clock Clock,
	params OrderParams,
) error {
	if st.Paused(state.ExchangeStatusPaused) {
		return errcode.Wrap(errcode.ExchangePaused, "exchange status %#x", uint8(st.ExchangeStatus))
	}
	if user.IsBankrupt() {
		return errcode.UserBankrupt
	}
	if user.IsBeingLiquidated() {
		return errcode.UserIsBeingLiquidated
	}
	if err := params.validateEnums(); err != nil {
		return err
	}
	if params.MarketType != state.MarketTypePerp {
		return errcode.Wrap(errcode.InvalidOrderMarketType, "perp order with market type %d", uint8(params.MarketType))
	}

	market, err := perpMarkets.Get(params.MarketIndex)
	if err != nil {
		return err
	}
	switch market.Status {
	case state.MarketStatusInitialized, state.MarketStatusSettlement, state.MarketStatusDelisted, state.MarketStatusFillPaused:
		return errcode.Wrap(errcode.MarketPlaceOrderPaused, "perp market %d status %d", market.MarketIndex, uint8(market.Status))
	}

	pd, err := oracles.GetPriceData(market.Amm.Oracle, market.Amm.OracleSource)
	if err != nil {
		return err
	}

	orderIndex, err := user.FreeOrderIndex()
	if err != nil {
		return err
	}
	position, err := user.ForcePerpPosition(params.MarketIndex)
	if err != nil {
		return err
	}

	reduceOnly := params.ReduceOnly() || market.Status == state.MarketStatusReduceOnly || user.IsReduceOnly()
	riskReducing := isRiskReducing(position, params.Direction, params.BaseAssetAmount)
	if reduceOnly && !riskReducing {
		return errcode.Wrap(errcode.InvalidOrderNotRiskReducing, "order of %d would grow position %d", params.BaseAssetAmount, position.BaseAssetAmount)
	}

	order, err := buildOrder(st, user, market, pd.Price, clock, params)
	if err != nil {
		return err
	}
	setFlagByte(&order.ReduceOnlyFlag, reduceOnly)
	if err := validateOrder(market, &order, pd.Price, clock); err != nil {
		return err
	}

	user.Orders[orderIndex] = order
	if err := increaseOpenOrders(position, &order); err != nil {
		return err
	}
	user.UpdateOpenOrderCounts()

	if riskReducing {
		return nil
	}
	calc, err := margin.CalculateMarginRequirementAndTotalCollateralAndLiabilityInfo(user, perpMarkets, spotMarkets, oracles, margin.Initial())
	if err != nil {
		return err
	}
	if !calc.MeetsMarginRequirement() {
		return errcode.Wrap(errcode.InsufficientCollateral, "collateral %s below initial requirement %s", calc.TotalCollateral, calc.MarginRequirement)
	}
	return nil
}

// isRiskReducing reports whether an order of size in direction only shrinks
// the existing position.
func isRiskReducing(position *state.PerpPosition, direction state.PositionDirection, size uint64) bool {
	base := position.BaseAssetAmount
	if base == 0 {
		return false
	}
	if (base > 0) == (direction == state.PositionDirectionLong) {
		return false
	}
	return size <= fpmath.AbsU64(base)
}

func buildOrder(st *state.State, user *state.User, market *state.PerpMarket, oraclePrice int64, clock Clock, params OrderParams) (state.Order, error) {
	existing := state.PositionDirectionLong
	if pos, err := user.GetPerpPosition(params.MarketIndex); err == nil && pos.BaseAssetAmount < 0 {
		existing = state.PositionDirectionShort
	}

	order := state.Order{
		Status:                    state.OrderStatusOpen,
		OrderType:                 params.OrderType,
		MarketType:                state.MarketTypePerp,
		Slot:                      clock.Slot,
		OrderID:                   user.TakeNextOrderID(),
		UserOrderID:               params.UserOrderID,
		MarketIndex:               params.MarketIndex,
		BaseAssetAmount:           params.BaseAssetAmount,
		Direction:                 params.Direction,
		ExistingPositionDirection: existing,
		TriggerCondition:          params.TriggerCondition,
	}
	setFlagByte(&order.PostOnlyFlag, params.PostOnly != PostOnlyNone)
	setFlagByte(&order.ImmediateOrCancelFlag, params.ImmediateOrCancel())

	if maxTs, ok := params.maxTs(); ok {
		order.MaxTs = maxTs
	}
	if trigger, ok := params.triggerPrice(); ok {
		order.TriggerPrice = trigger
	}
	if params.HasOraclePriceOffset != 0 {
		order.OraclePriceOffset = params.OraclePriceOffset
	}

	if params.Price != 0 {
		price, err := StandardizePrice(params.Price, market.Amm.OrderTickSize, params.Direction)
		if err != nil {
			return state.Order{}, err
		}
		order.Price = price
	}

	if err := setAuction(st, market, oraclePrice, &order, params); err != nil {
		return state.Order{}, err
	}
	return order, nil
}

// setAuction fills the auction fields. Market-style orders default to the
// exchange's minimum auction duration and an auction from the oracle to the
// limit price; limit orders only run an auction when asked to.
func setAuction(st *state.State, market *state.PerpMarket, oraclePrice int64, order *state.Order, params OrderParams) error {
	duration, hasDuration := params.auctionDuration()
	start, end, hasPrices := params.auctionPrices()

	if order.IsMarketOrder() {
		if !hasDuration {
			duration = st.MinPerpAuctionDuration
		}
		if !hasPrices {
			if order.OrderType == state.OrderTypeOracle {
				start = int64(order.OraclePriceOffset)
				end = start
			} else {
				start = oraclePrice
				end = oraclePrice
				if order.Price != 0 {
					p, err := fpmath.CastI64(order.Price)
					if err != nil {
						return err
					}
					end = p
				}
			}
		}
	} else if !hasDuration || !hasPrices {
		return nil
	}

	order.AuctionDuration = duration
	order.AuctionStartPrice = start
	order.AuctionEndPrice = end
	if duration < st.MinPerpAuctionDuration && !order.IsLimitOrder() {
		order.AuctionDuration = st.MinPerpAuctionDuration
	}
	return nil
}

func validateOrder(market *state.PerpMarket, order *state.Order, oraclePrice int64, clock Clock) error {
	step := market.Amm.OrderStepSize
	switch {
	case order.BaseAssetAmount == 0:
		return errcode.Wrap(errcode.InvalidOrderSizeTooSmall, "zero base amount")
	case step == 0:
		return errcode.Wrap(errcode.MathError, "perp market %d has zero step size", market.MarketIndex)
	case order.BaseAssetAmount%step != 0:
		return errcode.Wrap(errcode.InvalidOrderNotStepSizeMultiple, "base %d not a multiple of %d", order.BaseAssetAmount, step)
	case order.BaseAssetAmount < market.Amm.MinOrderSize && !order.ReduceOnly():
		return errcode.Wrap(errcode.InvalidOrderMinOrderSize, "base %d below minimum %d", order.BaseAssetAmount, market.Amm.MinOrderSize)
	}

	if order.MaxTs != 0 && order.MaxTs < clock.UnixTimestamp {
		return errcode.Wrap(errcode.InvalidOrderMaxTs, "max_ts %d before now %d", order.MaxTs, clock.UnixTimestamp)
	}
	if order.PostOnly() && order.ImmediateOrCancel() {
		return errcode.InvalidOrderIOCPostOnly
	}

	switch {
	case order.IsMarketOrder():
		if order.PostOnly() {
			return errcode.Wrap(errcode.InvalidOrderPostOnly, "%s order cannot be post only", order.OrderType)
		}
	case order.IsLimitOrder():
		if order.Price == 0 && order.OraclePriceOffset == 0 {
			return errcode.Wrap(errcode.InvalidOrderLimitPrice, "limit order without price")
		}
		if order.PostOnly() && order.HasAuction() {
			return errcode.Wrap(errcode.InvalidOrderPostOnly, "post only order with auction")
		}
	}

	switch order.OrderType {
	case state.OrderTypeTriggerMarket, state.OrderTypeTriggerLimit:
		if order.TriggerPrice == 0 {
			return errcode.Wrap(errcode.InvalidOrderTrigger, "trigger order without trigger price")
		}
		if order.TriggerCondition != state.OrderTriggerConditionAbove && order.TriggerCondition != state.OrderTriggerConditionBelow {
			return errcode.Wrap(errcode.InvalidOrderTrigger, "trigger condition %d", uint8(order.TriggerCondition))
		}
	}

	if market.IsPredictionMarket() && order.Price > uint64(fpmath.MaxPredictionMarketPrice) {
		return errcode.Wrap(errcode.InvalidOrderLimitPrice, "prediction market price %d above 1", order.Price)
	}

	return validateAuction(order, oraclePrice)
}

// validateAuction requires the auction to move against the taker: up for
// longs, down for shorts, and not beyond a limit price.
func validateAuction(order *state.Order, oraclePrice int64) error {
	if !order.HasAuction() {
		return nil
	}
	start, end := order.AuctionStartPrice, order.AuctionEndPrice
	if order.OrderType == state.OrderTypeOracle {
		var err error
		if start, err = fpmath.SafeAddI64(start, oraclePrice); err != nil {
			return err
		}
		if end, err = fpmath.SafeAddI64(end, oraclePrice); err != nil {
			return err
		}
	}

	long := order.Direction == state.PositionDirectionLong
	if (long && start > end) || (!long && start < end) {
		return errcode.Wrap(errcode.InvalidOrderAuction, "%s auction from %d to %d", order.Direction, start, end)
	}
	if order.IsLimitOrder() && order.Price != 0 {
		limit, err := fpmath.CastI64(order.Price)
		if err != nil {
			return err
		}
		if (long && end > limit) || (!long && end < limit) {
			return errcode.Wrap(errcode.InvalidOrderAuction, "auction end %d crosses limit %d", end, limit)
		}
	}
	return nil
}

// increaseOpenOrders books the order's unfilled size against the position.
func increaseOpenOrders(position *state.PerpPosition, order *state.Order) error {
	size, err := order.SignedBaseAssetAmountUnfilled()
	if err != nil {
		return err
	}
	position.OpenOrders++
	if size > 0 {
		position.OpenBids, err = fpmath.SafeAddI64(position.OpenBids, size)
	} else {
		position.OpenAsks, err = fpmath.SafeAddI64(position.OpenAsks, size)
	}
	return err
}

func setFlagByte(b *uint8, v bool) {
	if v {
		*b = 1
	} else {
		*b = 0
	}
}

// Package orders prices auctions and simulates placing perp orders.
package orders

import (
	"PerpFFI/internal/errcode"
	fpmath "PerpFFI/internal/math"
	"PerpFFI/internal/state"
)

// CalculateAuctionPrice is the price of order's auction at slot. oraclePrice
// is required for oracle orders and ignored otherwise.
func CalculateAuctionPrice(order *state.Order, slot uint64, tickSize uint64, oraclePrice *int64, isPredictionMarket bool) (uint64, error) {
	if !order.Direction.Valid() {
		return 0, errcode.Wrap(errcode.InvalidEnumValue, "direction %d", uint8(order.Direction))
	}
	switch order.OrderType {
	case state.OrderTypeMarket, state.OrderTypeTriggerMarket, state.OrderTypeLimit, state.OrderTypeTriggerLimit:
		return fixedAuctionPrice(order, slot, tickSize)
	case state.OrderTypeOracle:
		return oracleOffsetAuctionPrice(order, slot, tickSize, oraclePrice, isPredictionMarket)
	default:
		return 0, errcode.Wrap(errcode.InvalidEnumValue, "order type %d", uint8(order.OrderType))
	}
}

// auctionProgress returns elapsed and total slots, elapsed capped at total.
// A zero duration returns (0, 0) without consulting slot.
func auctionProgress(order *state.Order, slot uint64) (int64, int64, error) {
	duration := int64(order.AuctionDuration)
	if duration == 0 {
		return 0, 0, nil
	}
	elapsed, err := fpmath.SafeSubU64(slot, order.Slot)
	if err != nil {
		return 0, 0, err
	}
	if elapsed > uint64(duration) {
		elapsed = uint64(duration)
	}
	return int64(elapsed), duration, nil
}

// interpolate moves from start toward end by elapsed/duration.
func interpolate(start, end, elapsed, duration int64, direction state.PositionDirection) (int64, error) {
	var span int64
	var err error
	if direction == state.PositionDirectionLong {
		span, err = fpmath.SafeSubI64(end, start)
	} else {
		span, err = fpmath.SafeSubI64(start, end)
	}
	if err != nil {
		return 0, err
	}
	delta, err := fpmath.MulDivI64(span, elapsed, duration, fpmath.RoundDown)
	if err != nil {
		return 0, err
	}
	if direction == state.PositionDirectionLong {
		return fpmath.SafeAddI64(start, delta)
	}
	return fpmath.SafeSubI64(start, delta)
}

func fixedAuctionPrice(order *state.Order, slot, tickSize uint64) (uint64, error) {
	elapsed, duration, err := auctionProgress(order, slot)
	if err != nil {
		return 0, err
	}
	end, err := fpmath.CastU64(order.AuctionEndPrice)
	if err != nil {
		return 0, err
	}
	if duration == 0 {
		return StandardizePrice(end, tickSize, order.Direction)
	}
	if _, err := fpmath.CastU64(order.AuctionStartPrice); err != nil {
		return 0, err
	}

	price, err := interpolate(order.AuctionStartPrice, order.AuctionEndPrice, elapsed, duration, order.Direction)
	if err != nil {
		return 0, err
	}
	p, err := fpmath.CastU64(price)
	if err != nil {
		return 0, err
	}
	return StandardizePrice(p, tickSize, order.Direction)
}

func oracleOffsetAuctionPrice(order *state.Order, slot, tickSize uint64, oraclePrice *int64, isPredictionMarket bool) (uint64, error) {
	if oraclePrice == nil {
		return 0, errcode.Wrap(errcode.OracleNotFound, "oracle order %d has no oracle price", order.OrderID)
	}
	tick, err := fpmath.CastI64(tickSize)
	if err != nil {
		return 0, err
	}

	elapsed, duration, err := auctionProgress(order, slot)
	if err != nil {
		return 0, err
	}

	offset := order.AuctionEndPrice
	if duration != 0 {
		offset, err = interpolate(order.AuctionStartPrice, order.AuctionEndPrice, elapsed, duration, order.Direction)
		if err != nil {
			return 0, err
		}
	}

	raw, err := fpmath.SafeAddI64(*oraclePrice, offset)
	if err != nil {
		return 0, err
	}
	price, err := StandardizePriceI64(fpmath.MaxI64(raw, tick), tickSize, order.Direction)
	if err != nil {
		return 0, err
	}
	price = fpmath.MaxI64(price, tick)
	if isPredictionMarket && price > fpmath.MaxPredictionMarketPrice {
		price = fpmath.MaxPredictionMarketPrice
	}
	return fpmath.CastU64(price)
}

// StandardizePrice rounds price to a tick multiple: down for longs, up for
// shorts. Zero stays zero; a zero tick is a MathError.
func StandardizePrice(price, tickSize uint64, direction state.PositionDirection) (uint64, error) {
	if price == 0 {
		return 0, nil
	}
	remainder, err := fpmath.SafeRemU64(price, tickSize)
	if err != nil {
		return 0, err
	}
	if remainder == 0 {
		return price, nil
	}
	if direction == state.PositionDirectionLong {
		return price - remainder, nil
	}
	up, err := fpmath.SafeAddU64(price, tickSize)
	if err != nil {
		return 0, err
	}
	return up - remainder, nil
}

// StandardizePriceI64 is StandardizePrice for signed prices using the
// euclidean remainder.
func StandardizePriceI64(price int64, tickSize uint64, direction state.PositionDirection) (int64, error) {
	if price == 0 {
		return 0, nil
	}
	tick, err := fpmath.CastI64(tickSize)
	if err != nil {
		return 0, err
	}
	remainder, err := fpmath.SafeRemI64(price, tick)
	if err != nil {
		return 0, err
	}
	if remainder < 0 {
		remainder += tick
	}
	if remainder == 0 {
		return price, nil
	}
	if direction == state.PositionDirectionLong {
		return fpmath.SafeSubI64(price, remainder)
	}
	up, err := fpmath.SafeAddI64(price, tick)
	if err != nil {
		return 0, err
	}
	return fpmath.SafeSubI64(up, remainder)
}

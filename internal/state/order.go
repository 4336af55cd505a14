package state

import (
	"PerpFFI/internal/errcode"
	fpmath "PerpFFI/internal/math"
)

// OrderSize is the byte size of an Order record.
const OrderSize = 96

// Order is a resting or in-flight order stored in a User account.
type Order struct {
	Slot                      uint64 // Slot the order was placed
	Price                     uint64 // Price precision
	BaseAssetAmount           uint64 // Base precision
	BaseAssetAmountFilled     uint64
	QuoteAssetAmountFilled    uint64
	TriggerPrice              uint64
	AuctionStartPrice         int64 // Absolute price, or offset for oracle orders
	AuctionEndPrice           int64
	MaxTs                     int64
	OraclePriceOffset         int32
	OrderID                   uint32
	MarketIndex               uint16
	Status                    OrderStatus
	OrderType                 OrderType
	MarketType                MarketType
	UserOrderID               uint8
	ExistingPositionDirection PositionDirection
	Direction                 PositionDirection
	ReduceOnlyFlag            uint8
	PostOnlyFlag              uint8
	ImmediateOrCancelFlag     uint8
	TriggerCondition          OrderTriggerCondition
	AuctionDuration           uint8
	_                         [3]byte
}

func (o *Order) ReduceOnly() bool        { return flag(o.ReduceOnlyFlag) }
func (o *Order) PostOnly() bool          { return flag(o.PostOnlyFlag) }
func (o *Order) ImmediateOrCancel() bool { return flag(o.ImmediateOrCancelFlag) }

// IsLimitOrder reports whether the order has a limit price component.
func (o *Order) IsLimitOrder() bool {
	return o.OrderType == OrderTypeLimit || o.OrderType == OrderTypeTriggerLimit
}

// IsMarketOrder reports whether the order is filled at auction or market.
func (o *Order) IsMarketOrder() bool {
	return o.OrderType == OrderTypeMarket ||
		o.OrderType == OrderTypeTriggerMarket ||
		o.OrderType == OrderTypeOracle
}

// IsAuctionComplete fails with MathError when slot precedes the order slot
// and the order has an auction.
func (o *Order) IsAuctionComplete(slot uint64) (bool, error) {
	if o.AuctionDuration == 0 {
		return true, nil
	}
	elapsed, err := fpmath.SafeSubU64(slot, o.Slot)
	if err != nil {
		return false, errcode.Wrap(errcode.MathError, "slot %d before order slot %d", slot, o.Slot)
	}
	return elapsed > uint64(o.AuctionDuration), nil
}

// IsRestingLimitOrder reports whether the order rests on the book as a
// maker at slot.
func (o *Order) IsRestingLimitOrder(slot uint64) (bool, error) {
	if !o.IsLimitOrder() {
		return false, nil
	}

	if o.OrderType == OrderTypeTriggerLimit {
		switch {
		case o.Direction == PositionDirectionLong && o.TriggerPrice < o.Price:
			return false, nil
		case o.Direction == PositionDirectionShort && o.TriggerPrice > o.Price:
			return false, nil
		}
		return o.IsAuctionComplete(slot)
	}

	if o.PostOnly() {
		return true, nil
	}
	return o.IsAuctionComplete(slot)
}

// HasAuction reports whether the order was placed with an auction.
func (o *Order) HasAuction() bool {
	return o.AuctionDuration != 0
}

// SignedBaseAssetAmountUnfilled is the remaining size, negative for shorts.
func (o *Order) SignedBaseAssetAmountUnfilled() (int64, error) {
	remaining, err := fpmath.SafeSubU64(o.BaseAssetAmount, o.BaseAssetAmountFilled)
	if err != nil {
		return 0, err
	}
	v, err := fpmath.CastI64(remaining)
	if err != nil {
		return 0, err
	}
	if o.Direction == PositionDirectionShort {
		return -v, nil
	}
	return v, nil
}

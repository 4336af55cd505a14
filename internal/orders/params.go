package orders

import (
	"PerpFFI/internal/errcode"
	"PerpFFI/internal/state"
)

// OrderParamsSize is the byte size of OrderParams.
const OrderParamsSize = 72

// PostOnlyParam selects post-only behaviour.
type PostOnlyParam uint8

const (
	PostOnlyNone PostOnlyParam = iota
	PostOnlyMustPostOnly
	PostOnlyTryPostOnly
	PostOnlySlide
)

func (p PostOnlyParam) Valid() bool { return p <= PostOnlySlide }

// OrderParams is a caller's order request. Optional fields carry a Has*
// byte; the value is ignored when it is zero.
type OrderParams struct {
	BaseAssetAmount       uint64
	Price                 uint64
	MaxTs                 int64
	TriggerPrice          uint64
	AuctionStartPrice     int64
	AuctionEndPrice       int64
	OraclePriceOffset     int32
	MarketIndex           uint16
	OrderType             state.OrderType
	MarketType            state.MarketType
	Direction             state.PositionDirection
	UserOrderID           uint8
	ReduceOnlyFlag        uint8
	PostOnly              PostOnlyParam
	ImmediateOrCancelFlag uint8
	TriggerCondition      state.OrderTriggerCondition
	AuctionDuration       uint8
	HasMaxTs              uint8
	HasTriggerPrice       uint8
	HasOraclePriceOffset  uint8
	HasAuctionDuration    uint8
	HasAuctionStartPrice  uint8
	HasAuctionEndPrice    uint8
	_                     [3]byte
}

func (p *OrderParams) ReduceOnly() bool        { return p.ReduceOnlyFlag != 0 }
func (p *OrderParams) ImmediateOrCancel() bool { return p.ImmediateOrCancelFlag != 0 }

func (p *OrderParams) maxTs() (int64, bool)         { return p.MaxTs, p.HasMaxTs != 0 }
func (p *OrderParams) triggerPrice() (uint64, bool) { return p.TriggerPrice, p.HasTriggerPrice != 0 }
func (p *OrderParams) auctionDuration() (uint8, bool) {
	return p.AuctionDuration, p.HasAuctionDuration != 0
}

func (p *OrderParams) auctionPrices() (int64, int64, bool) {
	return p.AuctionStartPrice, p.AuctionEndPrice, p.HasAuctionStartPrice != 0 && p.HasAuctionEndPrice != 0
}

// validateEnums rejects enum bytes outside their declared range.
func (p *OrderParams) validateEnums() error {
	switch {
	case !p.OrderType.Valid():
		return errcode.Wrap(errcode.InvalidEnumValue, "order type %d", uint8(p.OrderType))
	case !p.MarketType.Valid():
		return errcode.Wrap(errcode.InvalidEnumValue, "market type %d", uint8(p.MarketType))
	case !p.Direction.Valid():
		return errcode.Wrap(errcode.InvalidEnumValue, "direction %d", uint8(p.Direction))
	case !p.PostOnly.Valid():
		return errcode.Wrap(errcode.InvalidEnumValue, "post only %d", uint8(p.PostOnly))
	case !p.TriggerCondition.Valid():
		return errcode.Wrap(errcode.InvalidEnumValue, "trigger condition %d", uint8(p.TriggerCondition))
	}
	return nil
}

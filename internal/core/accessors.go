package core

import (
	"PerpFFI/internal/abi"
	"PerpFFI/internal/account"
	"PerpFFI/internal/state"
)

// query runs fn on the record loaded from data. Even infallible accessors
// go through it since the buffer itself may be malformed.
func query[T, R any](b *Bridge, op string, data []byte, load func([]byte) (*T, error), fn func(*T) (R, error)) abi.Result[R] {
	c := b.begin(op)
	rec, err := load(data)
	if err != nil {
		var zero R
		return finish(c, zero, err)
	}
	v, err := fn(rec)
	return finish(c, v, err)
}

// query2 is query over two records.
func query2[T, U, R any](b *Bridge, op string, a, bData []byte, loadA func([]byte) (*T, error), loadB func([]byte) (*U, error), fn func(*T, *U) (R, error)) abi.Result[R] {
	c := b.begin(op)
	var zero R
	x, err := loadA(a)
	if err != nil {
		return finish(c, zero, err)
	}
	y, err := loadB(bData)
	if err != nil {
		return finish(c, zero, err)
	}
	v, err := fn(x, y)
	return finish(c, v, err)
}

var (
	castOrder        = account.Cast[state.Order]
	castPerpPosition = account.Cast[state.PerpPosition]
	castSpotPosition = account.Cast[state.SpotPosition]
)

func (b *Bridge) OrderIsLimitOrder(orderData []byte) abi.Result[bool] {
	return query(b, OpOrderIsLimitOrder, orderData, castOrder, func(o *state.Order) (bool, error) {
		return o.IsLimitOrder(), nil
	})
}

func (b *Bridge) OrderIsRestingLimitOrder(orderData []byte, slot uint64) abi.Result[bool] {
	return query(b, OpOrderIsRestingLimitOrder, orderData, castOrder, func(o *state.Order) (bool, error) {
		return o.IsRestingLimitOrder(slot)
	})
}

func (b *Bridge) PerpMarketGetMarginRatio(marketData []byte, size abi.U128, requirement state.MarginRequirementType, highLeverage bool) abi.Result[uint32] {
	return query(b, OpPerpMarketGetMarginRatio, marketData, account.LoadPerpMarket, func(m *state.PerpMarket) (uint32, error) {
		return m.GetMarginRatio(size.Uint128(), requirement, highLeverage)
	})
}

func (b *Bridge) PerpMarketGetOpenInterest(marketData []byte) abi.Result[abi.U128] {
	return query(b, OpPerpMarketGetOpenInterest, marketData, account.LoadPerpMarket, func(m *state.PerpMarket) (abi.U128, error) {
		return abi.FromUint128(m.GetOpenInterest()), nil
	})
}

func (b *Bridge) PerpPositionGetUnrealizedPnl(positionData []byte, oraclePrice int64) abi.Result[abi.I128] {
	return query(b, OpPerpPositionGetUnrealizedPnl, positionData, castPerpPosition, func(p *state.PerpPosition) (abi.I128, error) {
		pnl, err := p.GetUnrealizedPnl(oraclePrice)
		return abi.FromInt128(pnl), err
	})
}

func (b *Bridge) PerpPositionIsAvailable(positionData []byte) abi.Result[bool] {
	return query(b, OpPerpPositionIsAvailable, positionData, castPerpPosition, func(p *state.PerpPosition) (bool, error) {
		return p.IsAvailable(), nil
	})
}

func (b *Bridge) PerpPositionIsOpenPosition(positionData []byte) abi.Result[bool] {
	return query(b, OpPerpPositionIsOpenPosition, positionData, castPerpPosition, func(p *state.PerpPosition) (bool, error) {
		return p.IsOpenPosition(), nil
	})
}

func (b *Bridge) PerpPositionWorstCaseBaseAssetAmount(positionData []byte, oraclePrice int64, contractType state.ContractType) abi.Result[abi.I128] {
	return query(b, OpPerpPositionWorstCaseBaseAsset, positionData, castPerpPosition, func(p *state.PerpPosition) (abi.I128, error) {
		base, err := p.WorstCaseBaseAssetAmount(oraclePrice, contractType)
		return abi.FromInt128(base), err
	})
}

// PerpPositionSimulateSettledLpPosition returns the position as it would
// be after settling its LP shares; the input is not modified.
func (b *Bridge) PerpPositionSimulateSettledLpPosition(positionData, marketData []byte, oraclePrice int64) abi.Result[state.PerpPosition] {
	return query2(b, OpPerpPositionSimulateSettledLp, positionData, marketData, castPerpPosition, account.LoadPerpMarket,
		func(p *state.PerpPosition, m *state.PerpMarket) (state.PerpPosition, error) {
			return p.SimulateSettledLpPosition(m, oraclePrice)
		})
}

func (b *Bridge) SpotMarketGetAssetWeight(marketData []byte, size abi.U128, oraclePrice int64, requirement state.MarginRequirementType) abi.Result[uint32] {
	return query(b, OpSpotMarketGetAssetWeight, marketData, account.LoadSpotMarket, func(m *state.SpotMarket) (uint32, error) {
		return m.GetAssetWeight(size.Uint128(), oraclePrice, requirement)
	})
}

func (b *Bridge) SpotMarketGetLiabilityWeight(marketData []byte, size abi.U128, requirement state.MarginRequirementType) abi.Result[uint32] {
	return query(b, OpSpotMarketGetLiabilityWeight, marketData, account.LoadSpotMarket, func(m *state.SpotMarket) (uint32, error) {
		return m.GetLiabilityWeight(size.Uint128(), requirement)
	})
}

func (b *Bridge) SpotMarketGetMarginRatio(marketData []byte, requirement state.MarginRequirementType) abi.Result[uint32] {
	return query(b, OpSpotMarketGetMarginRatio, marketData, account.LoadSpotMarket, func(m *state.SpotMarket) (uint32, error) {
		return m.GetMarginRatio(requirement)
	})
}

func (b *Bridge) SpotPositionIsAvailable(positionData []byte) abi.Result[bool] {
	return query(b, OpSpotPositionIsAvailable, positionData, castSpotPosition, func(p *state.SpotPosition) (bool, error) {
		return p.IsAvailable(), nil
	})
}

func (b *Bridge) SpotPositionGetSignedTokenAmount(positionData, marketData []byte) abi.Result[abi.I128] {
	return query2(b, OpSpotPositionGetSignedTokenAmount, positionData, marketData, castSpotPosition, account.LoadSpotMarket,
		func(p *state.SpotPosition, m *state.SpotMarket) (abi.I128, error) {
			amount, err := p.GetSignedTokenAmount(m)
			return abi.FromInt128(amount), err
		})
}

func (b *Bridge) SpotPositionGetTokenAmount(positionData, marketData []byte) abi.Result[abi.U128] {
	return query2(b, OpSpotPositionGetTokenAmount, positionData, marketData, castSpotPosition, account.LoadSpotMarket,
		func(p *state.SpotPosition, m *state.SpotMarket) (abi.U128, error) {
			amount, err := p.GetTokenAmount(m)
			return abi.FromUint128(amount), err
		})
}

// UserGetSpotPosition returns the address of the user's spot position in
// marketIndex. The address points into userData.
func (b *Bridge) UserGetSpotPosition(userData []byte, marketIndex uint16) abi.Result[abi.Pointer] {
	return query(b, OpUserGetSpotPosition, userData, account.LoadUser, func(u *state.User) (abi.Pointer, error) {
		p, err := u.GetSpotPosition(marketIndex)
		if err != nil {
			return 0, err
		}
		return abi.PointerTo(p), nil
	})
}

// UserGetPerpPosition returns the address of the user's perp position in
// marketIndex. The address points into userData.
func (b *Bridge) UserGetPerpPosition(userData []byte, marketIndex uint16) abi.Result[abi.Pointer] {
	return query(b, OpUserGetPerpPosition, userData, account.LoadUser, func(u *state.User) (abi.Pointer, error) {
		p, err := u.GetPerpPosition(marketIndex)
		if err != nil {
			return 0, err
		}
		return abi.PointerTo(p), nil
	})
}

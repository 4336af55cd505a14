package state

import (
	"PerpFFI/internal/errcode"
)

// Slot counts and record size of a User account.
const (
	MaxSpotPositions = 8
	MaxPerpPositions = 8
	MaxOrders        = 32
	UserSize         = 4352
)

// User is a trader's sub-account.
type User struct {
	Authority              Pubkey
	Delegate               Pubkey
	Name                   [32]byte
	SpotPositions          [MaxSpotPositions]SpotPosition
	PerpPositions          [MaxPerpPositions]PerpPosition
	Orders                 [MaxOrders]Order
	LastAddPerpLpSharesTs  int64
	TotalDeposits          uint64
	TotalWithdraws         uint64
	TotalSocialLoss        uint64
	SettledPerpPnl         int64
	CumulativeSpotFees     int64
	CumulativePerpFunding  int64
	LiquidationMarginFreed uint64
	LastActiveSlot         uint64
	NextOrderID            uint32
	MaxMarginRatio         uint32
	NextLiquidationID      uint16
	SubAccountID           uint16
	Status                 UserStatus
	IsMarginTradingEnabled uint8
	IdleFlag               uint8
	OpenOrders             uint8
	HasOpenOrderFlag       uint8
	OpenAuctions           uint8
	HasOpenAuctionFlag     uint8
	MarginMode             MarginMode
	PoolID                 uint8
	_                      [3]byte
}

func (u *User) IsBeingLiquidated() bool {
	return u.Status&(UserStatusBeingLiquidated|UserStatusBankrupt) != 0
}

func (u *User) IsBankrupt() bool   { return u.Status&UserStatusBankrupt != 0 }
func (u *User) IsReduceOnly() bool { return u.Status&UserStatusReduceOnly != 0 }

func (u *User) IsHighLeverageMode() bool {
	return u.MarginMode == MarginModeHighLeverage
}

// GetSpotPosition returns the position slot in use for marketIndex.
func (u *User) GetSpotPosition(marketIndex uint16) (*SpotPosition, error) {
	for i := range u.SpotPositions {
		p := &u.SpotPositions[i]
		if p.MarketIndex == marketIndex && !p.IsAvailable() {
			return p, nil
		}
	}
	return nil, errcode.Wrap(errcode.CouldNotFindSpotPosition, "spot market %d", marketIndex)
}

// GetPerpPosition returns the position slot in use for marketIndex.
func (u *User) GetPerpPosition(marketIndex uint16) (*PerpPosition, error) {
	for i := range u.PerpPositions {
		p := &u.PerpPositions[i]
		if p.IsFor(marketIndex) {
			return p, nil
		}
	}
	return nil, errcode.Wrap(errcode.UserHasNoPositionInMarket, "perp market %d", marketIndex)
}

// ForcePerpPosition returns the slot for marketIndex, claiming a free one
// when the user has none yet.
func (u *User) ForcePerpPosition(marketIndex uint16) (*PerpPosition, error) {
	if p, err := u.GetPerpPosition(marketIndex); err == nil {
		return p, nil
	}
	for i := range u.PerpPositions {
		p := &u.PerpPositions[i]
		if p.IsAvailable() {
			*p = PerpPosition{MarketIndex: marketIndex}
			return p, nil
		}
	}
	return nil, errcode.Wrap(errcode.MaxNumberOfPositions, "no free perp position for market %d", marketIndex)
}

// FreeOrderIndex returns the first order slot not holding an open order.
func (u *User) FreeOrderIndex() (int, error) {
	for i := range u.Orders {
		if u.Orders[i].Status != OrderStatusOpen {
			return i, nil
		}
	}
	return 0, errcode.Wrap(errcode.MaxNumberOfOrders, "all %d order slots open", MaxOrders)
}

// TakeNextOrderID returns the id for the next order and advances the counter.
func (u *User) TakeNextOrderID() uint32 {
	id := u.NextOrderID
	u.NextOrderID++
	if u.NextOrderID == 0 {
		u.NextOrderID = 1
	}
	return id
}

func (u *User) UpdateOpenOrderCounts() {
	var orders, auctions uint8
	for i := range u.Orders {
		if u.Orders[i].Status != OrderStatusOpen {
			continue
		}
		orders++
		if u.Orders[i].HasAuction() {
			auctions++
		}
	}
	u.OpenOrders = orders
	u.OpenAuctions = auctions
	setFlag(&u.HasOpenOrderFlag, orders > 0)
	setFlag(&u.HasOpenAuctionFlag, auctions > 0)
}

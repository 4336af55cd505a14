package orders_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PerpFFI/internal/errcode"
	"PerpFFI/internal/orders"
	"PerpFFI/internal/state"
)

func TestZeroDurationAuctionIgnoresSlot(t *testing.T) {
	order := state.Order{
		OrderType:       state.OrderTypeMarket,
		Direction:       state.PositionDirectionLong,
		Slot:            100,
		AuctionEndPrice: 105_050,
	}
	for _, slot := range []uint64{0, 99, 100, 1 << 40} {
		price, err := orders.CalculateAuctionPrice(&order, slot, 100, nil, false)
		require.NoError(t, err, "slot %d", slot)
		assert.Equal(t, uint64(105_000), price, "slot %d", slot)
	}
}

func TestFixedAuctionInterpolates(t *testing.T) {
	long := state.Order{
		OrderType:         state.OrderTypeMarket,
		Direction:         state.PositionDirectionLong,
		Slot:              100,
		AuctionDuration:   10,
		AuctionStartPrice: 100_000,
		AuctionEndPrice:   110_000,
	}
	short := long
	short.Direction = state.PositionDirectionShort
	short.AuctionStartPrice, short.AuctionEndPrice = 110_000, 100_000

	cases := []struct {
		name  string
		order state.Order
		slot  uint64
		want  uint64
	}{
		{"long start", long, 100, 100_000},
		{"long midway", long, 105, 105_000},
		{"long capped at end", long, 500, 110_000},
		{"short midway", short, 105, 105_000},
		{"short capped at end", short, 500, 100_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			price, err := orders.CalculateAuctionPrice(&tc.order, tc.slot, 1, nil, false)
			require.NoError(t, err)
			assert.Equal(t, tc.want, price)
		})
	}

	_, err := orders.CalculateAuctionPrice(&long, 50, 1, nil, false)
	assert.ErrorIs(t, err, errcode.MathError)
}

func TestOracleAuction(t *testing.T) {
	order := state.Order{
		OrderType:         state.OrderTypeOracle,
		Direction:         state.PositionDirectionLong,
		Slot:              100,
		AuctionDuration:   10,
		AuctionStartPrice: -1_000,
		AuctionEndPrice:   1_000,
	}

	_, err := orders.CalculateAuctionPrice(&order, 105, 100, nil, false)
	assert.ErrorIs(t, err, errcode.OracleNotFound)

	oracle := int64(1_000_000)
	price, err := orders.CalculateAuctionPrice(&order, 105, 100, &oracle, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), price)

	prediction := state.Order{
		OrderType:       state.OrderTypeOracle,
		Direction:       state.PositionDirectionLong,
		AuctionEndPrice: 50_000,
	}
	near := int64(990_000)
	price, err = orders.CalculateAuctionPrice(&prediction, 0, 100, &near, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), price)

	low := int64(10)
	floor := state.Order{OrderType: state.OrderTypeOracle, Direction: state.PositionDirectionShort, AuctionEndPrice: -500}
	price, err = orders.CalculateAuctionPrice(&floor, 0, 100, &low, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), price, "price floors at one tick")
}

func TestStandardizePrice(t *testing.T) {
	p, err := orders.StandardizePrice(105_050, 100, state.PositionDirectionLong)
	require.NoError(t, err)
	assert.Equal(t, uint64(105_000), p)

	p, err = orders.StandardizePrice(105_050, 100, state.PositionDirectionShort)
	require.NoError(t, err)
	assert.Equal(t, uint64(105_100), p)

	p, err = orders.StandardizePrice(0, 0, state.PositionDirectionShort)
	require.NoError(t, err)
	assert.Zero(t, p)

	_, err = orders.StandardizePrice(5, 0, state.PositionDirectionShort)
	assert.ErrorIs(t, err, errcode.MathError)

	n, err := orders.StandardizePriceI64(-150, 100, state.PositionDirectionLong)
	require.NoError(t, err)
	assert.Equal(t, int64(-200), n)

	n, err = orders.StandardizePriceI64(-150, 100, state.PositionDirectionShort)
	require.NoError(t, err)
	assert.Equal(t, int64(-100), n)
}

func TestAuctionRejectsBadEnums(t *testing.T) {
	order := state.Order{OrderType: state.OrderType(42)}
	_, err := orders.CalculateAuctionPrice(&order, 0, 1, nil, false)
	assert.ErrorIs(t, err, errcode.InvalidEnumValue)

	order = state.Order{Direction: state.PositionDirection(3)}
	_, err = orders.CalculateAuctionPrice(&order, 0, 1, nil, false)
	assert.ErrorIs(t, err, errcode.InvalidEnumValue)
}

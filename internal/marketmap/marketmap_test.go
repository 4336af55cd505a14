package marketmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PerpFFI/internal/account"
	"PerpFFI/internal/errcode"
	fpmath "PerpFFI/internal/math"
	"PerpFFI/internal/marketmap"
	"PerpFFI/internal/oracle"
	"PerpFFI/internal/state"
	"PerpFFI/internal/testutil"
)

func perpMarket(index uint16) account.Ref {
	m := testutil.SolPerpMarket(100 * fpmath.PricePrecision)
	m.MarketIndex = index
	m.Pubkey = testutil.Key(byte(0x40 + index))
	return testutil.PerpMarketAccount(m)
}

func spotMarket(index uint16) account.Ref {
	m := testutil.SolSpotMarket(100 * fpmath.PricePrecision)
	m.MarketIndex = index
	m.Pubkey = testutil.Key(byte(0x60 + index))
	return testutil.SpotMarketAccount(m)
}

func TestLoadPerpMarketMap(t *testing.T) {
	refs := []account.Ref{perpMarket(3), perpMarket(0), perpMarket(7)}
	m, err := marketmap.LoadPerpMarketMap(refs)
	require.NoError(t, err)

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []uint16{0, 3, 7}, m.Indexes())
	for _, idx := range []uint16{0, 3, 7} {
		market, err := m.Get(idx)
		require.NoError(t, err)
		assert.Equal(t, idx, market.MarketIndex)
	}

	_, err = m.Get(1)
	assert.ErrorIs(t, err, errcode.PerpMarketNotFound)
}

func TestLoadMarketMapsAreViews(t *testing.T) {
	ref := perpMarket(2)
	m, err := marketmap.LoadPerpMarketMap([]account.Ref{ref})
	require.NoError(t, err)
	market, err := m.Get(2)
	require.NoError(t, err)

	market.NumberOfUsers = 0x01020304
	assert.Equal(t, byte(0x04), ref.Data[account.DiscriminatorSize+296])
}

func TestDuplicateMarketIndexFailsLoad(t *testing.T) {
	m, err := marketmap.LoadPerpMarketMap([]account.Ref{perpMarket(1), perpMarket(2), perpMarket(1)})
	assert.Nil(t, m)
	assert.ErrorIs(t, err, errcode.DuplicatePerpMarket)

	s, err := marketmap.LoadSpotMarketMap([]account.Ref{spotMarket(4), spotMarket(4)})
	assert.Nil(t, s)
	assert.ErrorIs(t, err, errcode.DuplicateSpotMarket)
}

func TestWrongAccountTypeFailsLoad(t *testing.T) {
	_, err := marketmap.LoadSpotMarketMap([]account.Ref{spotMarket(0), perpMarket(1)})
	assert.ErrorIs(t, err, errcode.CouldNotLoadSpotMarketData)

	_, err = marketmap.LoadPerpMarketMap([]account.Ref{{Key: testutil.Key(9), Data: []byte{1, 2, 3}}})
	assert.ErrorIs(t, err, errcode.CouldNotLoadPerpMarketData)
}

func TestLoadSpotMarketMapEmpty(t *testing.T) {
	m, err := marketmap.LoadSpotMarketMap(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	_, err = m.Get(0)
	assert.ErrorIs(t, err, errcode.SpotMarketNotFound)
}

func TestOracleMap(t *testing.T) {
	pyth := testutil.SolPythAccount(100*fpmath.PricePrecision, 95)
	pre := testutil.PrelaunchAccount(testutil.Key(7), oracle.PrelaunchOracle{Price: 5 * fpmath.PricePrecision, AmmLastUpdateSlot: 100})
	rails := state.DefaultOracleGuardRails()

	m, err := marketmap.LoadOracleMap([]account.Ref{pyth, pre}, 100, rails)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, uint64(100), m.Slot())

	pd, err := m.GetPriceData(testutil.SolOracleKey, state.OracleSourcePyth)
	require.NoError(t, err)
	assert.Equal(t, 100*fpmath.PricePrecision, pd.Price)
	assert.Equal(t, int64(5), pd.Delay)

	pd, validity, err := m.GetPriceDataAndValidity(testutil.Key(7), state.OracleSourcePrelaunch, 5*fpmath.PricePrecision)
	require.NoError(t, err)
	assert.Equal(t, 5*fpmath.PricePrecision, pd.Price)
	assert.Equal(t, oracle.Valid, validity)

	_, err = m.GetPriceData(testutil.Key(8), state.OracleSourcePyth)
	assert.ErrorIs(t, err, errcode.OracleNotFound)

	pd, err = m.GetPriceData(state.Pubkey{}, state.OracleSourceQuoteAsset)
	require.NoError(t, err)
	assert.Equal(t, fpmath.PricePrecision, pd.Price)
}

func TestOracleMapRejects(t *testing.T) {
	pyth := testutil.SolPythAccount(fpmath.PricePrecision, 0)
	_, err := marketmap.LoadOracleMap([]account.Ref{pyth, pyth}, 0, state.OracleGuardRails{})
	assert.ErrorIs(t, err, errcode.DuplicateOracle)

	junk := account.Ref{Key: testutil.Key(3), Data: make([]byte, 64)}
	m, err := marketmap.LoadOracleMap([]account.Ref{pyth, junk}, 0, state.OracleGuardRails{})
	assert.Nil(t, m)
	assert.ErrorIs(t, err, errcode.UnableToLoadOracle)
}

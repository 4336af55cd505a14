package oracle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PerpFFI/internal/account"
	"PerpFFI/internal/errcode"
	fpmath "PerpFFI/internal/math"
	"PerpFFI/internal/oracle"
	"PerpFFI/internal/state"
	"PerpFFI/internal/testutil"
)

func TestPythScaling(t *testing.T) {
	cases := []struct {
		name      string
		source    state.OracleSource
		price     int64
		expo      int32
		wantPrice int64
	}{
		{"expo -8 scales down", state.OracleSourcePyth, 2_500_000_000, -8, 25_000_000},
		{"expo -6 unchanged", state.OracleSourcePyth, 25_000_000, -6, 25_000_000},
		{"expo -2 scales up", state.OracleSourcePyth, 2_500, -2, 25_000_000},
		{"1K multiplier", state.OracleSourcePyth1K, 2_500, -8, 25_000},
		{"1M multiplier", state.OracleSourcePyth1M, 2_500, -8, 25_000_000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ref := testutil.PythAccount(testutil.Key(1), tc.price, 0, tc.expo, 90)
			pd, err := oracle.GetOraclePrice(tc.source, ref, 100)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPrice, pd.Price)
			assert.Equal(t, int64(10), pd.Delay)
			assert.True(t, pd.HasSufficientNumberOfDataPoints)
		})
	}
}

func TestPythStableCoinPin(t *testing.T) {
	cases := []struct {
		name      string
		price     int64
		conf      uint64
		wantPrice int64
	}{
		{"within confidence", 1_000_050, 100, fpmath.PricePrecision},
		{"below 1.0 within confidence", 999_700, 400, fpmath.PricePrecision},
		{"outside tight confidence", 1_000_050, 10, 1_000_050},
		{"wide confidence capped at 5 bps", 996_000, 5_000, 996_000},
		{"just past 5 bps", 1_000_501, 5_000, 1_000_501},
		{"exactly 5 bps", 1_000_500, 5_000, fpmath.PricePrecision},
		{"far from peg", 1_050_000, 10, 1_050_000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ref := testutil.PythAccount(testutil.Key(1), tc.price, tc.conf, -6, 0)
			pd, err := oracle.GetOraclePrice(state.OracleSourcePythStableCoin, ref, 0)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPrice, pd.Price)
			assert.Equal(t, tc.conf, pd.Confidence)
		})
	}
}

func TestPythDelayUsesValidSlot(t *testing.T) {
	ref := testutil.PythAccount(testutil.Key(1), 25_000_000, 0, -6, 90)
	acct, err := account.Cast[oracle.PythPriceAccount](ref.Data[:oracle.PythPriceAccountSize])
	require.NoError(t, err)
	acct.ValidSlot = 80

	pd, err := oracle.GetOraclePrice(state.OracleSourcePyth, ref, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(20), pd.Delay)
}

func TestPythRejectsInvalid(t *testing.T) {
	halted := testutil.PythAccount(testutil.Key(1), 1_000_000, 10, -6, 0)
	testutil.SetPythStatus(halted, oracle.PythStatusHalted)
	_, err := oracle.GetOraclePrice(state.OracleSourcePyth, halted, 0)
	assert.ErrorIs(t, err, errcode.InvalidOracle)

	negative := testutil.PythAccount(testutil.Key(1), -1, 10, -6, 0)
	_, err = oracle.GetOraclePrice(state.OracleSourcePyth, negative, 0)
	assert.ErrorIs(t, err, errcode.InvalidOracle)

	garbage := account.Ref{Data: account.AlignedBuffer(oracle.PythPriceAccountSize)}
	_, err = oracle.GetOraclePrice(state.OracleSourcePyth, garbage, 0)
	assert.ErrorIs(t, err, errcode.UnableToLoadOracle)
}

func TestPrelaunchAndQuote(t *testing.T) {
	ref := testutil.PrelaunchAccount(testutil.Key(2), oracle.PrelaunchOracle{
		Price:             42_000_000,
		Confidence:        5,
		AmmLastUpdateSlot: 95,
	})
	pd, err := oracle.GetOraclePrice(state.OracleSourcePrelaunch, ref, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(42_000_000), pd.Price)
	assert.Equal(t, int64(5), pd.Delay)

	pd, err = oracle.GetOraclePrice(state.OracleSourceQuoteAsset, account.Ref{}, 100)
	require.NoError(t, err)
	assert.Equal(t, oracle.QuoteAssetPriceData, pd)

	_, err = oracle.GetOraclePrice(state.OracleSourceSwitchboard, ref, 100)
	assert.ErrorIs(t, err, errcode.InvalidOracleSource)
}

func TestOracleValidity(t *testing.T) {
	rails := state.DefaultOracleGuardRails().Validity
	base := oracle.PriceData{Price: 100 * fpmath.PricePrecision, Confidence: 1_000, HasSufficientNumberOfDataPoints: true}
	twap := 100 * fpmath.PricePrecision

	cases := []struct {
		name   string
		mutate func(pd *oracle.PriceData)
		want   oracle.Validity
	}{
		{"valid", func(pd *oracle.PriceData) {}, oracle.Valid},
		{"non positive", func(pd *oracle.PriceData) { pd.Price = 0 }, oracle.NonPositive},
		{"too volatile", func(pd *oracle.PriceData) { pd.Price = 10 * twap }, oracle.TooVolatile},
		{"too uncertain", func(pd *oracle.PriceData) { pd.Confidence = 10 * fpmath.PricePrecisionU64 }, oracle.TooUncertain},
		{"stale for margin", func(pd *oracle.PriceData) { pd.Delay = 500 }, oracle.StaleForMargin},
		{"few publishers", func(pd *oracle.PriceData) { pd.HasSufficientNumberOfDataPoints = false }, oracle.InsufficientDataPoints},
		{"stale for amm", func(pd *oracle.PriceData) { pd.Delay = 50 }, oracle.StaleForAMM},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pd := base
			tc.mutate(&pd)
			got, err := oracle.OracleValidity(twap, pd, rails)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got, "got %s", got)
		})
	}

	assert.True(t, oracle.StaleForAMM.ValidForMargin())
	assert.False(t, oracle.StaleForMargin.ValidForMargin())
}

package core_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PerpFFI/internal/abi"
	"PerpFFI/internal/account"
	"PerpFFI/internal/core"
	"PerpFFI/internal/errcode"
	"PerpFFI/internal/margin"
	fpmath "PerpFFI/internal/math"
	"PerpFFI/internal/observability"
	"PerpFFI/internal/orders"
	"PerpFFI/internal/state"
	"PerpFFI/internal/testutil"
)

const (
	slot     = 1_000
	solPrice = 100 * fpmath.PricePrecision
	usd      = uint64(fpmath.QuotePrecision)
	oneSol   = uint64(fpmath.BasePrecision)
)

var fixedNow = time.Unix(1_700_000_000, 0)

func newBridge(t *testing.T) (*core.Bridge, *observability.Metrics) {
	t.Helper()
	m := observability.NewMetrics(prometheus.NewRegistry())
	b := core.NewBridge(zerolog.Nop(), m).WithClock(func() time.Time { return fixedNow })
	return b, m
}

func accounts() core.AccountsList {
	return core.AccountsList{
		SpotMarkets: []account.Ref{
			testutil.SpotMarketAccount(testutil.UsdcSpotMarket()),
			testutil.SpotMarketAccount(testutil.SolSpotMarket(solPrice)),
		},
		PerpMarkets:      []account.Ref{testutil.PerpMarketAccount(testutil.SolPerpMarket(solPrice))},
		Oracles:          []account.Ref{testutil.SolPythAccount(solPrice, slot-10)},
		LatestSlot:       slot,
		OracleGuardRails: state.DefaultOracleGuardRails(),
	}
}

func userData(u state.User) []byte {
	return testutil.UserAccount(testutil.UserKey, u).Data
}

func assertErr[T any](t *testing.T, r abi.Result[T], want errcode.ErrorCode) {
	t.Helper()
	require.False(t, r.IsOk(), "expected %s, got ok", want)
	assert.Equal(t, want, r.Code)
}

// ============================================================================
// Oracle and auction
// ============================================================================

func TestOracleGetOraclePrice(t *testing.T) {
	b, m := newBridge(t)

	r := b.OracleGetOraclePrice(state.OracleSourcePyth, testutil.SolPythAccount(solPrice, slot-10), slot)
	pd, err := r.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, solPrice, pd.Price)
	assert.Equal(t, int64(10), pd.Delay)

	r = b.OracleGetOraclePrice(state.OracleSourceSwitchboard, testutil.SolPythAccount(solPrice, slot), slot)
	assertErr(t, r, errcode.InvalidOracleSource)

	assert.Equal(t, 1.0, promtest.ToFloat64(m.Calls.WithLabelValues(core.OpOracleGetOraclePrice, observability.OutcomeOk)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.CallErrors.WithLabelValues(core.OpOracleGetOraclePrice, "InvalidOracleSource")))
}

func TestMathCalculateAuctionPrice(t *testing.T) {
	b, _ := newBridge(t)
	order := state.Order{
		OrderType:         state.OrderTypeMarket,
		Direction:         state.PositionDirectionLong,
		Slot:              slot,
		AuctionDuration:   10,
		AuctionStartPrice: 100_000,
		AuctionEndPrice:   110_000,
	}
	data := testutil.Record(order)

	price, err := b.MathCalculateAuctionPrice(data, slot+5, 1, abi.None[int64](), false).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, uint64(105_000), price)

	order.OrderType = state.OrderTypeOracle
	r := b.MathCalculateAuctionPrice(testutil.Record(order), slot+5, 1, abi.None[int64](), false)
	assertErr(t, r, errcode.OracleNotFound)

	r = b.MathCalculateAuctionPrice(data[:10], slot, 1, abi.None[int64](), false)
	assertErr(t, r, errcode.CouldNotLoadAccountData)
}

// ============================================================================
// Margin
// ============================================================================

func TestMarginCalculation(t *testing.T) {
	b, _ := newBridge(t)
	u := testutil.DepositUser(1_000 * usd)
	u.PerpPositions[0] = state.PerpPosition{
		BaseAssetAmount:  int64(oneSol),
		QuoteAssetAmount: -100 * int64(usd),
	}

	calc, err := b.MathCalculateMarginRequirementAndTotalCollateralAndLiabilityInfo(userData(u), accounts(), margin.Initial()).Unwrap()
	require.NoError(t, err)

	collateral, err := calc.TotalCollateral.Int128().Int64()
	require.NoError(t, err)
	requirement, err := calc.MarginRequirement.Uint128().Uint64()
	require.NoError(t, err)
	assert.Equal(t, 1_000*int64(usd), collateral)
	assert.Equal(t, 10*usd, requirement)
	assert.True(t, calc.AllOraclesValid)
	assert.Equal(t, uint8(1), calc.NumPerpLiabilities)
}

func TestDebugLogsRenderFixedPoint(t *testing.T) {
	var buf bytes.Buffer
	log := observability.NewLoggerWithLevel(&buf, "test", zerolog.DebugLevel)
	b := core.NewBridge(log, observability.NewMetrics(prometheus.NewRegistry()))

	u := testutil.DepositUser(1_000 * usd)
	u.PerpPositions[0] = state.PerpPosition{
		BaseAssetAmount:  int64(oneSol),
		QuoteAssetAmount: -100 * int64(usd),
	}
	require.True(t, b.MathCalculateMarginRequirementAndTotalCollateralAndLiabilityInfo(userData(u), accounts(), margin.Initial()).IsOk())
	assert.Contains(t, buf.String(), `"free_collateral":"990"`)
	assert.Contains(t, buf.String(), `"margin_requirement":"10"`)
	assert.Contains(t, buf.String(), `"slot":1000`)

	buf.Reset()
	require.True(t, b.OracleGetOraclePrice(state.OracleSourcePyth, testutil.SolPythAccount(solPrice, slot-10), slot).IsOk())
	assert.Contains(t, buf.String(), `"price":"100"`)
	assert.Contains(t, buf.String(), `"delay":10`)
}

func TestMarginLoadFailures(t *testing.T) {
	b, m := newBridge(t)
	user := userData(testutil.DepositUser(1_000 * usd))

	dup := accounts()
	dup.SpotMarkets = append(dup.SpotMarkets, dup.SpotMarkets[0])
	r := b.MathCalculateMarginRequirementAndTotalCollateralAndLiabilityInfo(user, dup, margin.Maintenance())
	assertErr(t, r, errcode.DuplicateSpotMarket)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.MapLoadFailures.WithLabelValues(observability.MapSpot)))

	r = b.MathCalculateMarginRequirementAndTotalCollateralAndLiabilityInfo(user[1:], accounts(), margin.Maintenance())
	assertErr(t, r, errcode.CouldNotLoadUserData)

	r = b.MathCalculateMarginRequirementAndTotalCollateralAndLiabilityInfo(user, accounts(), margin.ContextMode{Kind: 9})
	assertErr(t, r, errcode.InvalidMarginContext)
}

func TestMarginMissingOracleIsAnError(t *testing.T) {
	b, _ := newBridge(t)
	u := testutil.DepositUser(1_000 * usd)
	u.PerpPositions[0] = state.PerpPosition{BaseAssetAmount: int64(oneSol), QuoteAssetAmount: -100 * int64(usd)}

	accts := accounts()
	accts.Oracles = nil
	r := b.MathCalculateMarginRequirementAndTotalCollateralAndLiabilityInfo(userData(u), accts, margin.Maintenance())
	assertErr(t, r, errcode.OracleNotFound)
}

func TestMarginIsDeterministicAcrossGoroutines(t *testing.T) {
	b, _ := newBridge(t)
	user := userData(testutil.DepositUser(500 * usd))
	want := b.MathCalculateMarginRequirementAndTotalCollateralAndLiabilityInfo(user, accounts(), margin.Initial())
	require.True(t, want.IsOk())

	var wg sync.WaitGroup
	results := make([]abi.Result[abi.MarginCalculation], 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = b.MathCalculateMarginRequirementAndTotalCollateralAndLiabilityInfo(user, accounts(), margin.Initial())
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, want, r)
	}
}

// ============================================================================
// Place perp order
// ============================================================================

func placeParams(base uint64) []byte {
	return testutil.Record(orders.OrderParams{
		OrderType:       state.OrderTypeLimit,
		MarketType:      state.MarketTypePerp,
		Direction:       state.PositionDirectionLong,
		BaseAssetAmount: base,
		Price:           uint64(solPrice),
	})
}

func TestPlacePerpOrderLeavesUserUntouched(t *testing.T) {
	b, _ := newBridge(t)
	user := userData(testutil.DepositUser(1_000 * usd))
	before := bytes.Clone(user)
	st := testutil.StateAccount(testutil.ActiveState())

	ok, err := b.OrdersPlacePerpOrder(user, st, placeParams(oneSol), accounts()).Unwrap()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, before, user)

	r := b.OrdersPlacePerpOrder(user, st, placeParams(oneSol+1), accounts())
	assertErr(t, r, errcode.InvalidOrderNotStepSizeMultiple)
	assert.Equal(t, before, user)

	r = b.OrdersPlacePerpOrder(user, st, placeParams(100*oneSol), accounts())
	assertErr(t, r, errcode.InsufficientCollateral)
	assert.Equal(t, before, user)
}

func TestPlacePerpOrderUsesBridgeClock(t *testing.T) {
	b, _ := newBridge(t)
	user := userData(testutil.DepositUser(1_000 * usd))
	st := testutil.StateAccount(testutil.ActiveState())

	params := orders.OrderParams{
		OrderType:       state.OrderTypeLimit,
		MarketType:      state.MarketTypePerp,
		Direction:       state.PositionDirectionLong,
		BaseAssetAmount: oneSol,
		Price:           uint64(solPrice),
		HasMaxTs:        1,
		MaxTs:           fixedNow.Unix() - 1,
	}
	r := b.OrdersPlacePerpOrder(user, st, testutil.Record(params), accounts())
	assertErr(t, r, errcode.InvalidOrderMaxTs)

	params.MaxTs = fixedNow.Unix() + 60
	r = b.OrdersPlacePerpOrder(user, st, testutil.Record(params), accounts())
	assert.True(t, r.IsOk())
}

func TestPlacePerpOrderRejectsBadBuffers(t *testing.T) {
	b, _ := newBridge(t)
	user := userData(testutil.DepositUser(1_000 * usd))
	st := testutil.StateAccount(testutil.ActiveState())

	r := b.OrdersPlacePerpOrder(user, user, placeParams(oneSol), accounts())
	assertErr(t, r, errcode.CouldNotLoadStateData)

	r = b.OrdersPlacePerpOrder(user, st, placeParams(oneSol)[:8], accounts())
	assertErr(t, r, errcode.CouldNotLoadAccountData)
}

// ============================================================================
// Accessors
// ============================================================================

func TestRecordAccessors(t *testing.T) {
	b, _ := newBridge(t)

	order := testutil.Record(state.Order{OrderType: state.OrderTypeLimit, Status: state.OrderStatusOpen})
	isLimit, err := b.OrderIsLimitOrder(order).Unwrap()
	require.NoError(t, err)
	assert.True(t, isLimit)

	perpMarket := testutil.PerpMarketAccount(testutil.SolPerpMarket(solPrice)).Data
	ratio, err := b.PerpMarketGetMarginRatio(perpMarket, abi.U128{}, state.MarginRequirementTypeInitial, false).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, uint32(1_000), ratio)

	pos := testutil.Record(state.PerpPosition{BaseAssetAmount: int64(oneSol), QuoteAssetAmount: -100 * int64(usd)})
	pnl, err := b.PerpPositionGetUnrealizedPnl(pos, 110*fpmath.PricePrecision).Unwrap()
	require.NoError(t, err)
	v, err := pnl.Int128().Int64()
	require.NoError(t, err)
	assert.Equal(t, 10*int64(usd), v)

	open, err := b.PerpPositionIsOpenPosition(pos).Unwrap()
	require.NoError(t, err)
	assert.True(t, open)

	r := b.PerpPositionWorstCaseBaseAssetAmount(pos, solPrice, state.ContractType(7))
	assertErr(t, r, errcode.InvalidContractType)

	usdc := testutil.SpotMarketAccount(testutil.UsdcSpotMarket()).Data
	deposit := testutil.DepositUser(1_000 * usd).SpotPositions[0]
	amount, err := b.SpotPositionGetTokenAmount(testutil.Record(deposit), usdc).Unwrap()
	require.NoError(t, err)
	tokens, err := amount.Uint128().Uint64()
	require.NoError(t, err)
	assert.Equal(t, 1_000*usd, tokens)

	_, err = b.SpotMarketGetMarginRatio(perpMarket, state.MarginRequirementTypeInitial).Unwrap()
	assert.ErrorIs(t, err, errcode.AccountDiscriminatorMismatch)
}

func TestPlainAccessorsOnlyFailStructurally(t *testing.T) {
	b, _ := newBridge(t)

	assertErr(t, b.OrderIsLimitOrder(nil), errcode.CouldNotLoadAccountData)
	assertErr(t, b.PerpPositionIsAvailable(nil), errcode.CouldNotLoadAccountData)
	assertErr(t, b.PerpPositionIsOpenPosition(nil), errcode.CouldNotLoadAccountData)
	assertErr(t, b.SpotPositionIsAvailable(nil), errcode.CouldNotLoadAccountData)
	assertErr(t, b.PerpMarketGetOpenInterest(nil), errcode.CouldNotLoadAccountData)

	order := testutil.Record(state.Order{})
	shifted := account.AlignedBuffer(len(order) + 1)[1:]
	assertErr(t, b.OrderIsLimitOrder(shifted), errcode.MisalignedAccountData)

	assertErr(t, b.PerpMarketGetOpenInterest(userData(state.User{})), errcode.AccountDiscriminatorMismatch)

	available, err := b.PerpPositionIsAvailable(testutil.Record(state.PerpPosition{})).Unwrap()
	require.NoError(t, err)
	assert.True(t, available)
}

func TestUserPositionPointersIntoCallerBuffer(t *testing.T) {
	b, _ := newBridge(t)
	data := userData(testutil.DepositUser(1_000 * usd))
	u, err := account.LoadUser(data)
	require.NoError(t, err)

	ptr, err := b.UserGetSpotPosition(data, fpmath.QuoteSpotMarketIndex).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, abi.PointerTo(&u.SpotPositions[0]), ptr)

	assertErr(t, b.UserGetSpotPosition(data, 3), errcode.CouldNotFindSpotPosition)
	assertErr(t, b.UserGetPerpPosition(data, 0), errcode.UserHasNoPositionInMarket)
}

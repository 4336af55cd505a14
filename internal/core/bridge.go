// Package core dispatches the exported operations. Each call reconstructs
// the caller's accounts, builds fresh market and oracle maps, runs exactly
// one domain computation and packages the outcome as a boundary result.
// Nothing is retained between calls.
package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"PerpFFI/internal/abi"
	"PerpFFI/internal/account"
	"PerpFFI/internal/errcode"
	"PerpFFI/internal/marketmap"
	"PerpFFI/internal/observability"
	"PerpFFI/internal/state"
)

// AccountsList is everything a map-building operation reads besides its
// own records.
type AccountsList struct {
	SpotMarkets      []account.Ref
	PerpMarkets      []account.Ref
	Oracles          []account.Ref
	LatestSlot       uint64
	OracleGuardRails state.OracleGuardRails
}

// Bridge runs operations with shared logging and metrics. It holds no
// domain state and is safe for concurrent use.
type Bridge struct {
	log     zerolog.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewBridge creates a bridge. metrics may be nil.
func NewBridge(log zerolog.Logger, metrics *observability.Metrics) *Bridge {
	return &Bridge{log: log, metrics: metrics, now: time.Now}
}

// WithClock returns a copy of b that reads wall-clock time from now.
func (b *Bridge) WithClock(now func() time.Time) *Bridge {
	out := *b
	out.now = now
	return &out
}

type call struct {
	b     *Bridge
	op    string
	start time.Time
	log   zerolog.Logger
}

func (b *Bridge) begin(op string) *call {
	return &call{
		b:     b,
		op:    op,
		start: time.Now(),
		log:   b.log.With().Str("call_id", uuid.NewString()).Str("op", op).Logger(),
	}
}

// finish converts (v, err) into a result and records the call's outcome.
func finish[T any](c *call, v T, err error) abi.Result[T] {
	r := abi.ToResult(v, err)
	elapsed := time.Since(c.start)

	if m := c.b.metrics; m != nil {
		m.CallDuration.WithLabelValues(c.op).Observe(elapsed.Seconds())
		outcome := observability.OutcomeOk
		if !r.IsOk() {
			outcome = observability.OutcomeError
			m.CallErrors.WithLabelValues(c.op, r.Code.Name()).Inc()
		}
		m.Calls.WithLabelValues(c.op, outcome).Inc()
	}

	switch {
	case err == nil:
		c.log.Debug().Dur("elapsed", elapsed).Msg("call ok")
	case r.Code == errcode.Internal:
		c.log.Error().Err(err).Dur("elapsed", elapsed).Msg("call failed with internal error")
	default:
		c.log.Debug().Err(err).Stringer("code", r.Code).Dur("elapsed", elapsed).Msg("call failed")
	}
	return r
}

type maps struct {
	spot    *marketmap.SpotMarketMap
	perp    *marketmap.PerpMarketMap
	oracles *marketmap.OracleMap
}

// loadMaps builds all three maps or none.
func (c *call) loadMaps(accounts AccountsList) (maps, error) {
	spot, err := marketmap.LoadSpotMarketMap(accounts.SpotMarkets)
	if err != nil {
		c.mapFailed(observability.MapSpot)
		return maps{}, err
	}
	perp, err := marketmap.LoadPerpMarketMap(accounts.PerpMarkets)
	if err != nil {
		c.mapFailed(observability.MapPerp)
		return maps{}, err
	}
	oracles, err := marketmap.LoadOracleMap(accounts.Oracles, accounts.LatestSlot, accounts.OracleGuardRails)
	if err != nil {
		c.mapFailed(observability.MapOracle)
		return maps{}, err
	}

	if m := c.b.metrics; m != nil {
		m.MapEntries.WithLabelValues(observability.MapSpot).Observe(float64(spot.Len()))
		m.MapEntries.WithLabelValues(observability.MapPerp).Observe(float64(perp.Len()))
		m.MapEntries.WithLabelValues(observability.MapOracle).Observe(float64(oracles.Len()))
	}
	if e := c.log.Debug(); e.Enabled() {
		digest := NewInputDigest().
			AddRefs(accounts.SpotMarkets).
			AddRefs(accounts.PerpMarkets).
			AddRefs(accounts.Oracles)
		e.Uint64("slot", oracles.Slot()).
			Int("spot_markets", spot.Len()).
			Int("perp_markets", perp.Len()).
			Int("oracles", oracles.Len()).
			Stringer("accounts_digest", digest).
			Msg("maps loaded")
	}
	return maps{spot: spot, perp: perp, oracles: oracles}, nil
}

func (c *call) mapFailed(name string) {
	if m := c.b.metrics; m != nil {
		m.MapLoadFailures.WithLabelValues(name).Inc()
	}
}

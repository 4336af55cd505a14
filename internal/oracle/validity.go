package oracle

import (
	fpmath "PerpFFI/internal/math"
	"PerpFFI/internal/state"
)

// Validity grades a price reading against the guard rails. Lower values are
// worse; the first failing check wins.
type Validity uint8

const (
	NonPositive Validity = iota
	TooVolatile
	TooUncertain
	StaleForMargin
	InsufficientDataPoints
	StaleForAMM
	Valid
)

func (v Validity) String() string {
	switch v {
	case NonPositive:
		return "NonPositive"
	case TooVolatile:
		return "TooVolatile"
	case TooUncertain:
		return "TooUncertain"
	case StaleForMargin:
		return "StaleForMargin"
	case InsufficientDataPoints:
		return "InsufficientDataPoints"
	case StaleForAMM:
		return "StaleForAMM"
	case Valid:
		return "Valid"
	default:
		return "Unknown"
	}
}

// ValidForMargin reports whether the reading may price collateral.
func (v Validity) ValidForMargin() bool {
	switch v {
	case NonPositive, TooVolatile, TooUncertain, StaleForMargin:
		return false
	default:
		return true
	}
}

// OracleValidity compares pd against the market's last TWAP and the rails.
func OracleValidity(lastOracleTwap int64, pd PriceData, rails state.ValidityGuardRails) (Validity, error) {
	if pd.Price <= 0 {
		return NonPositive, nil
	}

	hi, lo := pd.Price, lastOracleTwap
	if lo > hi {
		hi, lo = lo, hi
	}
	lo = fpmath.MaxI64(lo, 1)
	ratio, err := fpmath.SafeDivI64(hi, lo)
	if err != nil {
		return NonPositive, err
	}
	if ratio > rails.TooVolatileRatio {
		return TooVolatile, nil
	}

	conf := pd.Confidence
	if conf == 0 {
		conf = 1
	}
	confPct, err := fpmath.MulDivU64(conf, uint64(fpmath.BidAskSpreadPrecision), uint64(pd.Price), fpmath.RoundDown)
	if err != nil {
		return NonPositive, err
	}
	if confPct > rails.ConfidenceIntervalMaxSize {
		return TooUncertain, nil
	}

	switch {
	case pd.Delay > rails.SlotsBeforeStaleForMargin:
		return StaleForMargin, nil
	case !pd.HasSufficientNumberOfDataPoints:
		return InsufficientDataPoints, nil
	case pd.Delay > rails.SlotsBeforeStaleForAmm:
		return StaleForAMM, nil
	}
	return Valid, nil
}

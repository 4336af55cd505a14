// Package oracle turns oracle accounts into prices at PRICE_PRECISION and
// grades how far those prices can be trusted.
package oracle

import (
	"math/big"

	"PerpFFI/internal/account"
	"PerpFFI/internal/errcode"
	fpmath "PerpFFI/internal/math"
	"PerpFFI/internal/state"
)

// PriceData is an oracle reading rescaled to PRICE_PRECISION.
type PriceData struct {
	Price                           int64
	Confidence                      uint64
	Delay                           int64 // Slots since publication
	HasSufficientNumberOfDataPoints bool
}

// QuoteAssetPriceData is the fixed reading of the quote asset.
var QuoteAssetPriceData = PriceData{
	Price:                           fpmath.PricePrecision,
	Confidence:                      1,
	Delay:                           0,
	HasSufficientNumberOfDataPoints: true,
}

// stableCoinBand caps the distance from 1.0 within which a stablecoin price
// is pinned (5 bps).
const stableCoinBand = fpmath.PricePrecisionU64 / 2_000

// GetOraclePrice reads the price from ref as source at slot.
func GetOraclePrice(source state.OracleSource, ref account.Ref, slot uint64) (PriceData, error) {
	switch source {
	case state.OracleSourcePyth:
		return getPythPrice(ref.Data, slot, 1)
	case state.OracleSourcePyth1K:
		return getPythPrice(ref.Data, slot, 1_000)
	case state.OracleSourcePyth1M:
		return getPythPrice(ref.Data, slot, 1_000_000)
	case state.OracleSourcePythStableCoin:
		return getPythStableCoinPrice(ref.Data, slot)
	case state.OracleSourcePrelaunch:
		return getPrelaunchPrice(ref.Data, slot)
	case state.OracleSourceQuoteAsset:
		return QuoteAssetPriceData, nil
	default:
		return PriceData{}, errcode.Wrap(errcode.InvalidOracleSource, "oracle source %s", source)
	}
}

func getPythPrice(data []byte, slot uint64, multiple int64) (PriceData, error) {
	acct, err := LoadPythPriceAccount(data)
	if err != nil {
		return PriceData{}, err
	}

	if acct.Agg.Status != PythStatusTrading {
		return PriceData{}, errcode.Wrap(errcode.InvalidOracle, "pyth status %d", acct.Agg.Status)
	}
	if acct.Expo > 0 || acct.Expo < -18 {
		return PriceData{}, errcode.Wrap(errcode.InvalidOracle, "pyth exponent %d", acct.Expo)
	}
	if acct.Agg.Price <= 0 {
		return PriceData{}, errcode.Wrap(errcode.InvalidOracle, "pyth price %d", acct.Agg.Price)
	}

	// Rescale from 10^expo to PRICE_PRECISION.
	oraclePrecision := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-acct.Expo)), nil)
	pricePrecision := big.NewInt(fpmath.PricePrecision)
	mult, div := big.NewInt(1), big.NewInt(1)
	if oraclePrecision.Cmp(pricePrecision) > 0 {
		div.Quo(oraclePrecision, pricePrecision)
	} else {
		mult.Quo(pricePrecision, oraclePrecision)
	}
	mult.Mul(mult, big.NewInt(multiple))

	price := new(big.Int).Mul(big.NewInt(acct.Agg.Price), mult)
	price.Quo(price, div)
	conf := new(big.Int).Mul(new(big.Int).SetUint64(acct.Agg.Conf), mult)
	conf.Quo(conf, div)
	if !price.IsInt64() || !conf.IsUint64() {
		return PriceData{}, errcode.Wrap(errcode.MathError, "pyth price %d expo %d overflows", acct.Agg.Price, acct.Expo)
	}

	delay, err := slotDelay(slot, acct.ValidSlot)
	if err != nil {
		return PriceData{}, err
	}

	return PriceData{
		Price:                           price.Int64(),
		Confidence:                      conf.Uint64(),
		Delay:                           delay,
		HasSufficientNumberOfDataPoints: acct.NumQt >= uint32(acct.MinPub),
	}, nil
}

func getPythStableCoinPrice(data []byte, slot uint64) (PriceData, error) {
	pd, err := getPythPrice(data, slot, 1)
	if err != nil {
		return PriceData{}, err
	}
	band := min(pd.Confidence, stableCoinBand)
	if fpmath.AbsU64(pd.Price-fpmath.PricePrecision) <= band {
		pd.Price = fpmath.PricePrecision
	}
	return pd, nil
}

func getPrelaunchPrice(data []byte, slot uint64) (PriceData, error) {
	o, err := LoadPrelaunchOracle(data)
	if err != nil {
		return PriceData{}, err
	}
	delay, err := slotDelay(slot, o.AmmLastUpdateSlot)
	if err != nil {
		return PriceData{}, err
	}
	return PriceData{
		Price:                           o.Price,
		Confidence:                      o.Confidence,
		Delay:                           delay,
		HasSufficientNumberOfDataPoints: true,
	}, nil
}

// slotDelay is slot - published as a signed count; a publish slot ahead of
// the snapshot yields a negative delay rather than an error.
func slotDelay(slot, published uint64) (int64, error) {
	s, err := fpmath.CastI64(slot)
	if err != nil {
		return 0, err
	}
	p, err := fpmath.CastI64(published)
	if err != nil {
		return 0, err
	}
	return fpmath.SafeSubI64(s, p)
}

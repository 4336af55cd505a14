package state

import (
	"math"
	"math/big"

	"PerpFFI/internal/errcode"
	fpmath "PerpFFI/internal/math"
)

// Record sizes in bytes.
const (
	PerpPositionSize = 96
	SpotPositionSize = 40
)

// PerpPosition is a user's exposure in one perp market.
type PerpPosition struct {
	LastCumulativeFundingRate int64 // Funding rate precision (1e9)
	BaseAssetAmount           int64 // Base precision, negative for shorts
	QuoteAssetAmount          int64 // Quote precision
	QuoteBreakEvenAmount      int64
	QuoteEntryAmount          int64
	OpenBids                  int64
	OpenAsks                  int64
	SettledPnl                int64
	LpShares                  uint64
	LastBaseAssetAmountPerLp  int64
	LastQuoteAssetAmountPerLp int64
	RemainderBaseAssetAmount  int32
	MarketIndex               uint16
	OpenOrders                uint8
	PerLpBase                 int8
}

// IsOpenPosition reports non-zero base exposure.
func (p *PerpPosition) IsOpenPosition() bool {
	return p.BaseAssetAmount != 0
}

func (p *PerpPosition) HasOpenOrder() bool {
	return p.OpenOrders != 0 || p.OpenBids != 0 || p.OpenAsks != 0
}

func (p *PerpPosition) HasUnsettledPnl() bool {
	return p.BaseAssetAmount == 0 && p.QuoteAssetAmount != 0
}

func (p *PerpPosition) IsLp() bool {
	return p.LpShares > 0
}

// IsAvailable reports whether the slot can be reused for another market.
func (p *PerpPosition) IsAvailable() bool {
	return !p.IsOpenPosition() && !p.HasOpenOrder() && !p.HasUnsettledPnl() && !p.IsLp()
}

// IsFor reports whether the slot holds state for marketIndex.
func (p *PerpPosition) IsFor(marketIndex uint16) bool {
	return p.MarketIndex == marketIndex && !p.IsAvailable()
}

// GetUnrealizedPnl marks the position to oraclePrice, excluding funding.
func (p *PerpPosition) GetUnrealizedPnl(oraclePrice int64) (fpmath.Int128, error) {
	v := new(big.Int).Mul(big.NewInt(p.BaseAssetAmount), big.NewInt(oraclePrice))
	v.Quo(v, big.NewInt(fpmath.PriceTimesAmmToQuote))
	v.Add(v, big.NewInt(p.QuoteAssetAmount))
	return fpmath.Int128FromBig(v)
}

// WorstCaseBaseAssetAmount is the base amount after either all open bids or
// all open asks fill, whichever carries the larger liability.
func (p *PerpPosition) WorstCaseBaseAssetAmount(oraclePrice int64, contractType ContractType) (fpmath.Int128, error) {
	allBids := new(big.Int).Add(big.NewInt(p.BaseAssetAmount), big.NewInt(p.OpenBids))
	allAsks := new(big.Int).Add(big.NewInt(p.BaseAssetAmount), big.NewInt(p.OpenAsks))

	switch contractType {
	case ContractTypePerpetual, ContractTypeFuture:
		if new(big.Int).Abs(allBids).Cmp(new(big.Int).Abs(allAsks)) > 0 {
			return fpmath.Int128FromBig(allBids)
		}
		return fpmath.Int128FromBig(allAsks)

	case ContractTypePrediction:
		bidsValue, err := predictionLiabilityValue(allBids, oraclePrice)
		if err != nil {
			return fpmath.Int128{}, err
		}
		asksValue, err := predictionLiabilityValue(allAsks, oraclePrice)
		if err != nil {
			return fpmath.Int128{}, err
		}
		if bidsValue.Cmp(asksValue) > 0 {
			return fpmath.Int128FromBig(allBids)
		}
		return fpmath.Int128FromBig(allAsks)

	default:
		return fpmath.Int128{}, errcode.Wrap(errcode.InvalidContractType, "contract type %d", uint8(contractType))
	}
}

// predictionLiabilityValue prices a long at the oracle and a short at the
// complement of the oracle price.
func predictionLiabilityValue(base *big.Int, oraclePrice int64) (*big.Int, error) {
	if oraclePrice < 0 || oraclePrice > fpmath.MaxPredictionMarketPrice {
		return nil, errcode.Wrap(errcode.InvalidOracle, "prediction market price %d out of range", oraclePrice)
	}
	price := oraclePrice
	if base.Sign() < 0 {
		price = fpmath.MaxPredictionMarketPrice - oraclePrice
	}
	v := new(big.Int).Abs(base)
	v.Mul(v, big.NewInt(price))
	return v.Quo(v, big.NewInt(fpmath.PriceTimesAmmToQuote)), nil
}

// WorstCaseLiabilityValue is the quote value of a worst-case base amount.
func WorstCaseLiabilityValue(worstCaseBase fpmath.Int128, oraclePrice int64, contractType ContractType) (fpmath.Uint128, error) {
	switch contractType {
	case ContractTypePerpetual, ContractTypeFuture:
		v := worstCaseBase.Big()
		v.Abs(v)
		v.Mul(v, big.NewInt(oraclePrice))
		v.Quo(v, big.NewInt(fpmath.PriceTimesAmmToQuote))
		return fpmath.Uint128FromBig(v)
	case ContractTypePrediction:
		v, err := predictionLiabilityValue(worstCaseBase.Big(), oraclePrice)
		if err != nil {
			return fpmath.Uint128{}, err
		}
		return fpmath.Uint128FromBig(v)
	default:
		return fpmath.Uint128{}, errcode.Wrap(errcode.InvalidContractType, "contract type %d", uint8(contractType))
	}
}

// SimulateSettledLpPosition returns a copy of the position with the LP's
// share of AMM base/quote deltas settled in. The receiver is not modified.
func (p *PerpPosition) SimulateSettledLpPosition(market *PerpMarket, oraclePrice int64) (PerpPosition, error) {
	settled := *p
	if !p.IsLp() {
		return settled, nil
	}
	if market.Amm.OrderStepSize == 0 {
		return PerpPosition{}, errcode.Wrap(errcode.MathError, "market %d has zero order step size", market.MarketIndex)
	}

	shares := new(big.Int).SetUint64(p.LpShares)
	reserve := big.NewInt(fpmath.AmmReservePrecision)

	baseDelta := new(big.Int).Sub(market.Amm.BaseAssetAmountPerLp.Big(), big.NewInt(p.LastBaseAssetAmountPerLp))
	baseDelta.Mul(baseDelta, shares)
	baseDelta.Quo(baseDelta, reserve)

	quoteDelta := new(big.Int).Sub(market.Amm.QuoteAssetAmountPerLp.Big(), big.NewInt(p.LastQuoteAssetAmountPerLp))
	quoteDelta.Mul(quoteDelta, shares)
	quoteDelta.Quo(quoteDelta, reserve)

	// Only whole step sizes move into the position; the rest accrues as remainder.
	totalBase := new(big.Int).Add(baseDelta, big.NewInt(int64(p.RemainderBaseAssetAmount)))
	step := new(big.Int).SetUint64(market.Amm.OrderStepSize)
	remainder := new(big.Int).Rem(totalBase, step)
	standardized := new(big.Int).Sub(totalBase, remainder)

	newBase := new(big.Int).Add(big.NewInt(p.BaseAssetAmount), standardized)
	newQuote := new(big.Int).Add(big.NewInt(p.QuoteAssetAmount), quoteDelta)

	// Dust below one step stays as remainder and is charged against quote at
	// the oracle, rounded against the user.
	if remainder.Sign() != 0 {
		dust := new(big.Int).Abs(remainder)
		dust.Mul(dust, big.NewInt(oraclePrice))
		dust.Quo(dust, big.NewInt(fpmath.PriceTimesAmmToQuote))
		dust.Add(dust, big.NewInt(1))
		newQuote.Sub(newQuote, dust)
	}

	if !newBase.IsInt64() || !newQuote.IsInt64() || !remainder.IsInt64() || remainder.Int64() > math.MaxInt32 || remainder.Int64() < math.MinInt32 {
		return PerpPosition{}, errcode.Wrap(errcode.MathError, "settled lp position overflows")
	}
	lastBase, err := market.Amm.BaseAssetAmountPerLp.Int64()
	if err != nil {
		return PerpPosition{}, err
	}
	lastQuote, err := market.Amm.QuoteAssetAmountPerLp.Int64()
	if err != nil {
		return PerpPosition{}, err
	}

	settled.BaseAssetAmount = newBase.Int64()
	settled.QuoteAssetAmount = newQuote.Int64()
	settled.RemainderBaseAssetAmount = int32(remainder.Int64())
	settled.LastBaseAssetAmountPerLp = lastBase
	settled.LastQuoteAssetAmountPerLp = lastQuote
	return settled, nil
}

// SpotPosition is a user's deposit or borrow in one spot market.
type SpotPosition struct {
	ScaledBalance      uint64 // Spot balance precision (1e9), scaled by cumulative interest
	OpenBids           int64
	OpenAsks           int64
	CumulativeDeposits int64
	MarketIndex        uint16
	BalanceType        SpotBalanceType
	OpenOrders         uint8
	_                  [4]byte
}

func (p *SpotPosition) IsAvailable() bool {
	return p.ScaledBalance == 0 && p.OpenOrders == 0
}

func (p *SpotPosition) HasOpenOrder() bool {
	return p.OpenOrders != 0 || p.OpenBids != 0 || p.OpenAsks != 0
}

// GetTokenAmount converts the scaled balance into token units of the market.
func (p *SpotPosition) GetTokenAmount(market *SpotMarket) (fpmath.Uint128, error) {
	return GetTokenAmount(fpmath.U128(p.ScaledBalance), market, p.BalanceType)
}

// GetSignedTokenAmount is the token amount, negative for borrows.
func (p *SpotPosition) GetSignedTokenAmount(market *SpotMarket) (fpmath.Int128, error) {
	amount, err := p.GetTokenAmount(market)
	if err != nil {
		return fpmath.Int128{}, err
	}
	v := amount.Big()
	if p.BalanceType == SpotBalanceTypeBorrow {
		v.Neg(v)
	}
	return fpmath.Int128FromBig(v)
}

// GetTokenAmount applies cumulative interest to a scaled balance. Deposits
// round down and borrows round up.
func GetTokenAmount(balance fpmath.Uint128, market *SpotMarket, balanceType SpotBalanceType) (fpmath.Uint128, error) {
	if !balanceType.Valid() {
		return fpmath.Uint128{}, errcode.Wrap(errcode.InvalidEnumValue, "balance type %d", uint8(balanceType))
	}
	if market.Decimals > fpmath.SpotDecimalsCeiling {
		return fpmath.Uint128{}, errcode.Wrap(errcode.MathError, "spot market %d decimals %d", market.MarketIndex, market.Decimals)
	}
	precisionDecrease, err := fpmath.Pow10U128(fpmath.SpotDecimalsCeiling - market.Decimals)
	if err != nil {
		return fpmath.Uint128{}, err
	}

	interest := market.CumulativeDepositInterest
	if balanceType == SpotBalanceTypeBorrow {
		interest = market.CumulativeBorrowInterest
	}

	num := new(big.Int).Mul(balance.Big(), interest.Big())
	den := precisionDecrease.Big()
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if balanceType == SpotBalanceTypeBorrow && r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return fpmath.Uint128FromBig(q)
}

package state

import (
	"math/big"

	"PerpFFI/internal/errcode"
	fpmath "PerpFFI/internal/math"
)

// Record sizes in bytes, excluding the account discriminator.
const (
	HistoricalOracleDataSize = 48
	AMMSize                  = 232
	PerpMarketSize           = 360
	SpotMarketSize           = 352
)

// HistoricalOracleData tracks recent oracle observations for a market.
type HistoricalOracleData struct {
	LastOraclePrice         int64
	LastOracleConf          uint64
	LastOracleDelay         int64
	LastOraclePriceTwap     int64
	LastOraclePriceTwap5Min int64
	LastOraclePriceTwapTs   int64
}

// AMM holds the subset of a perp market's AMM state read by risk math.
type AMM struct {
	Oracle                     Pubkey
	HistoricalOracleData       HistoricalOracleData
	BaseAssetAmountPerLp       fpmath.Int128
	QuoteAssetAmountPerLp      fpmath.Int128
	BaseAssetAmountLong        fpmath.Int128
	BaseAssetAmountShort       fpmath.Int128
	BaseAssetAmountWithAmm     fpmath.Int128
	CumulativeFundingRateLong  fpmath.Int128
	CumulativeFundingRateShort fpmath.Int128
	OrderStepSize              uint64
	OrderTickSize              uint64
	MinOrderSize               uint64
	MaxPositionSize            uint64
	OracleSource               OracleSource
	_                          [7]byte
}

// PerpMarket is a perpetual, future, or prediction market account.
type PerpMarket struct {
	Pubkey                              Pubkey
	Amm                                 AMM
	Name                                [32]byte
	NumberOfUsers                       uint32
	MarginRatioInitial                  uint32
	MarginRatioMaintenance              uint32
	ImfFactor                           uint32
	UnrealizedPnlInitialAssetWeight     uint32
	UnrealizedPnlMaintenanceAssetWeight uint32
	UnrealizedPnlImfFactor              uint32
	LiquidatorFee                       uint32
	IfLiquidationFee                    uint32
	HighLeverageMarginRatioInitial      uint16
	HighLeverageMarginRatioMaintenance  uint16
	ExpiryTs                            int64
	ExpiryPrice                         int64
	MarketIndex                         uint16
	QuoteSpotMarketIndex                uint16
	Status                              MarketStatus
	ContractType                        ContractType
	ContractTier                        ContractTier
	_                                   [1]byte
}

// IsPredictionMarket reports whether prices are bounded to [0, 1].
func (m *PerpMarket) IsPredictionMarket() bool {
	return m.ContractType == ContractTypePrediction
}

// GetOpenInterest is the larger of total long and total short base.
func (m *PerpMarket) GetOpenInterest() fpmath.Uint128 {
	long := m.Amm.BaseAssetAmountLong.UnsignedAbs()
	short := m.Amm.BaseAssetAmountShort.UnsignedAbs()
	if long.Cmp(short) >= 0 {
		return long
	}
	return short
}

// GetMarginRatio is the margin ratio for a position of size base units,
// including the size premium.
func (m *PerpMarket) GetMarginRatio(size fpmath.Uint128, requirement MarginRequirementType, highLeverage bool) (uint32, error) {
	if m.Status == MarketStatusSettlement {
		return 0, nil
	}

	initial, maintenance := m.MarginRatioInitial, m.MarginRatioMaintenance
	if highLeverage && m.HighLeverageMarginRatioMaintenance > 0 {
		initial = uint32(m.HighLeverageMarginRatioInitial)
		maintenance = uint32(m.HighLeverageMarginRatioMaintenance)
	}

	var ratio uint32
	switch requirement {
	case MarginRequirementTypeInitial:
		ratio = initial
	case MarginRequirementTypeFill:
		ratio = uint32((uint64(initial) + uint64(maintenance)) / 2)
	case MarginRequirementTypeMaintenance:
		ratio = maintenance
	default:
		return 0, errcode.Wrap(errcode.InvalidEnumValue, "margin requirement type %d", uint8(requirement))
	}

	return SizePremiumLiabilityWeight(size, m.ImfFactor, ratio, uint64(fpmath.MarginPrecision))
}

// GetUnrealizedAssetWeight is the weight applied to positive unrealized pnl.
func (m *PerpMarket) GetUnrealizedAssetWeight(unrealizedPnl fpmath.Int128, requirement MarginRequirementType) (uint32, error) {
	switch requirement {
	case MarginRequirementTypeInitial, MarginRequirementTypeFill:
		weight := m.UnrealizedPnlInitialAssetWeight
		if m.UnrealizedPnlImfFactor > 0 && unrealizedPnl.Sign() > 0 {
			// pnl is quote precision; size discount expects base precision
			size := new(big.Int).Mul(unrealizedPnl.Big(), big.NewInt(fpmath.AmmReservePrecision/fpmath.QuotePrecision))
			sizeU, err := fpmath.Uint128FromBig(size)
			if err != nil {
				return 0, err
			}
			return SizeDiscountAssetWeight(sizeU, m.UnrealizedPnlImfFactor, weight)
		}
		return weight, nil
	case MarginRequirementTypeMaintenance:
		return m.UnrealizedPnlMaintenanceAssetWeight, nil
	default:
		return 0, errcode.Wrap(errcode.InvalidEnumValue, "margin requirement type %d", uint8(requirement))
	}
}

// CumulativeFundingRate returns the rate applied to a position of the given sign.
func (m *PerpMarket) CumulativeFundingRate(baseAssetAmount int64) fpmath.Int128 {
	if baseAssetAmount > 0 {
		return m.Amm.CumulativeFundingRateLong
	}
	return m.Amm.CumulativeFundingRateShort
}

// SpotMarket is a lending/collateral market account.
type SpotMarket struct {
	Pubkey                       Pubkey
	Oracle                       Pubkey
	Mint                         Pubkey
	Vault                        Pubkey
	Name                         [32]byte
	HistoricalOracleData         HistoricalOracleData
	DepositBalance               fpmath.Uint128
	BorrowBalance                fpmath.Uint128
	CumulativeDepositInterest    fpmath.Uint128
	CumulativeBorrowInterest     fpmath.Uint128
	Decimals                     uint32
	InitialAssetWeight           uint32
	MaintenanceAssetWeight       uint32
	InitialLiabilityWeight       uint32
	MaintenanceLiabilityWeight   uint32
	ImfFactor                    uint32
	LiquidatorFee                uint32
	IfLiquidationFee             uint32
	ScaleInitialAssetWeightStart uint64
	OrderStepSize                uint64
	OrderTickSize                uint64
	MinOrderSize                 uint64
	MaxTokenDeposits             uint64
	MarketIndex                  uint16
	Status                       MarketStatus
	AssetTier                    AssetTier
	OracleSource                 OracleSource
	PoolID                       uint8
	_                            [2]byte
}

// sizeInAmmReservePrecision rescales a token amount to 1e9 precision.
func (m *SpotMarket) sizeInAmmReservePrecision(size fpmath.Uint128) (fpmath.Uint128, error) {
	if m.Decimals > fpmath.SpotDecimalsCeiling {
		return fpmath.Uint128{}, errcode.Wrap(errcode.MathError, "spot market %d decimals %d", m.MarketIndex, m.Decimals)
	}
	precision, err := fpmath.Pow10U128(m.Decimals)
	if err != nil {
		return fpmath.Uint128{}, err
	}
	v := size.Big()
	v.Mul(v, big.NewInt(fpmath.AmmReservePrecision))
	v.Quo(v, precision.Big())
	return fpmath.Uint128FromBig(v)
}

// GetTokenValue converts a token amount to quote at oraclePrice.
func (m *SpotMarket) GetTokenValue(tokenAmount fpmath.Int128, oraclePrice int64) (fpmath.Int128, error) {
	if m.Decimals > fpmath.SpotDecimalsCeiling {
		return fpmath.Int128{}, errcode.Wrap(errcode.MathError, "spot market %d decimals %d", m.MarketIndex, m.Decimals)
	}
	precision, err := fpmath.Pow10U128(m.Decimals)
	if err != nil {
		return fpmath.Int128{}, err
	}
	v := tokenAmount.Big()
	v.Mul(v, big.NewInt(oraclePrice))
	v.Quo(v, precision.Big())
	return fpmath.Int128FromBig(v)
}

// GetScaledInitialAssetWeight lowers the initial asset weight once total
// deposits exceed ScaleInitialAssetWeightStart in quote.
func (m *SpotMarket) GetScaledInitialAssetWeight(oraclePrice int64) (uint32, error) {
	if m.ScaleInitialAssetWeightStart == 0 {
		return m.InitialAssetWeight, nil
	}
	deposits, err := GetTokenAmount(m.DepositBalance, m, SpotBalanceTypeDeposit)
	if err != nil {
		return 0, err
	}
	depositsI, err := deposits.Int128()
	if err != nil {
		return 0, err
	}
	value, err := m.GetTokenValue(depositsI, oraclePrice)
	if err != nil {
		return 0, err
	}
	start := new(big.Int).SetUint64(m.ScaleInitialAssetWeightStart)
	if value.Big().Cmp(start) < 0 {
		return m.InitialAssetWeight, nil
	}
	w := new(big.Int).Mul(big.NewInt(int64(m.InitialAssetWeight)), start)
	w.Quo(w, value.Big())
	return uint32(w.Uint64()), nil
}

// GetAssetWeight is the collateral weight for a deposit of size tokens.
func (m *SpotMarket) GetAssetWeight(size fpmath.Uint128, oraclePrice int64, requirement MarginRequirementType) (uint32, error) {
	scaled, err := m.sizeInAmmReservePrecision(size)
	if err != nil {
		return 0, err
	}

	var weight uint32
	switch requirement {
	case MarginRequirementTypeInitial:
		weight, err = m.GetScaledInitialAssetWeight(oraclePrice)
		if err != nil {
			return 0, err
		}
	case MarginRequirementTypeFill:
		initial, err := m.GetScaledInitialAssetWeight(oraclePrice)
		if err != nil {
			return 0, err
		}
		weight = uint32((uint64(initial) + uint64(m.MaintenanceAssetWeight)) / 2)
	case MarginRequirementTypeMaintenance:
		weight = m.MaintenanceAssetWeight
	default:
		return 0, errcode.Wrap(errcode.InvalidEnumValue, "margin requirement type %d", uint8(requirement))
	}

	return SizeDiscountAssetWeight(scaled, m.ImfFactor, weight)
}

// GetLiabilityWeight is the borrow weight for a liability of size tokens.
func (m *SpotMarket) GetLiabilityWeight(size fpmath.Uint128, requirement MarginRequirementType) (uint32, error) {
	scaled, err := m.sizeInAmmReservePrecision(size)
	if err != nil {
		return 0, err
	}

	var weight uint32
	switch requirement {
	case MarginRequirementTypeInitial:
		weight = m.InitialLiabilityWeight
	case MarginRequirementTypeFill:
		weight = uint32((uint64(m.InitialLiabilityWeight) + uint64(m.MaintenanceLiabilityWeight)) / 2)
	case MarginRequirementTypeMaintenance:
		weight = m.MaintenanceLiabilityWeight
	default:
		return 0, errcode.Wrap(errcode.InvalidEnumValue, "margin requirement type %d", uint8(requirement))
	}

	return SizePremiumLiabilityWeight(scaled, m.ImfFactor, weight, uint64(fpmath.SpotWeightPrecision))
}

// GetMarginRatio is the liability weight in excess of one.
func (m *SpotMarket) GetMarginRatio(requirement MarginRequirementType) (uint32, error) {
	weight, err := m.GetLiabilityWeight(fpmath.Uint128{}, requirement)
	if err != nil {
		return 0, err
	}
	if weight < fpmath.MarginPrecision {
		return 0, errcode.Wrap(errcode.MathError, "spot market %d liability weight %d below 1", m.MarketIndex, weight)
	}
	return weight - fpmath.MarginPrecision, nil
}

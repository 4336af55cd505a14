package state

import "fmt"

// Enum bytes come straight from caller buffers, so every enum has a Valid
// check and code paths that branch on one reject out-of-range values with
// errcode.InvalidEnumValue instead of falling through.

type OrderType uint8

const (
	OrderTypeMarket OrderType = iota
	OrderTypeLimit
	OrderTypeTriggerMarket
	OrderTypeTriggerLimit
	OrderTypeOracle
)

func (t OrderType) Valid() bool { return t <= OrderTypeOracle }

func (t OrderType) String() string {
	switch t {
	case OrderTypeMarket:
		return "Market"
	case OrderTypeLimit:
		return "Limit"
	case OrderTypeTriggerMarket:
		return "TriggerMarket"
	case OrderTypeTriggerLimit:
		return "TriggerLimit"
	case OrderTypeOracle:
		return "Oracle"
	default:
		return fmt.Sprintf("OrderType(%d)", uint8(t))
	}
}

type OrderStatus uint8

const (
	OrderStatusInit OrderStatus = iota
	OrderStatusOpen
	OrderStatusFilled
	OrderStatusCanceled
)

func (s OrderStatus) Valid() bool { return s <= OrderStatusCanceled }

type MarketType uint8

const (
	MarketTypeSpot MarketType = iota
	MarketTypePerp
)

func (t MarketType) Valid() bool { return t <= MarketTypePerp }

type PositionDirection uint8

const (
	PositionDirectionLong PositionDirection = iota
	PositionDirectionShort
)

func (d PositionDirection) Valid() bool { return d <= PositionDirectionShort }

// Opposite returns the other direction.
func (d PositionDirection) Opposite() PositionDirection {
	if d == PositionDirectionLong {
		return PositionDirectionShort
	}
	return PositionDirectionLong
}

func (d PositionDirection) String() string {
	switch d {
	case PositionDirectionLong:
		return "Long"
	case PositionDirectionShort:
		return "Short"
	default:
		return fmt.Sprintf("PositionDirection(%d)", uint8(d))
	}
}

type OrderTriggerCondition uint8

const (
	OrderTriggerConditionAbove OrderTriggerCondition = iota
	OrderTriggerConditionBelow
	OrderTriggerConditionTriggeredAbove
	OrderTriggerConditionTriggeredBelow
)

func (c OrderTriggerCondition) Valid() bool { return c <= OrderTriggerConditionTriggeredBelow }

type ContractType uint8

const (
	ContractTypePerpetual ContractType = iota
	ContractTypeFuture
	ContractTypePrediction
)

func (t ContractType) Valid() bool { return t <= ContractTypePrediction }

type ContractTier uint8

const (
	ContractTierA ContractTier = iota
	ContractTierB
	ContractTierC
	ContractTierSpeculative
	ContractTierHighlySpeculative
	ContractTierIsolated
)

type MarketStatus uint8

const (
	MarketStatusInitialized MarketStatus = iota
	MarketStatusActive
	MarketStatusFundingPaused
	MarketStatusAmmPaused
	MarketStatusFillPaused
	MarketStatusWithdrawPaused
	MarketStatusReduceOnly
	MarketStatusSettlement
	MarketStatusDelisted
)

type AssetTier uint8

const (
	AssetTierCollateral AssetTier = iota
	AssetTierProtected
	AssetTierCross
	AssetTierIsolated
	AssetTierUnlisted
)

type SpotBalanceType uint8

const (
	SpotBalanceTypeDeposit SpotBalanceType = iota
	SpotBalanceTypeBorrow
)

func (t SpotBalanceType) Valid() bool { return t <= SpotBalanceTypeBorrow }

type MarginRequirementType uint8

const (
	MarginRequirementTypeInitial MarginRequirementType = iota
	MarginRequirementTypeFill
	MarginRequirementTypeMaintenance
)

func (t MarginRequirementType) Valid() bool { return t <= MarginRequirementTypeMaintenance }

func (t MarginRequirementType) String() string {
	switch t {
	case MarginRequirementTypeInitial:
		return "Initial"
	case MarginRequirementTypeFill:
		return "Fill"
	case MarginRequirementTypeMaintenance:
		return "Maintenance"
	default:
		return fmt.Sprintf("MarginRequirementType(%d)", uint8(t))
	}
}

// OracleSource names the price feed layout and scaling of an oracle account.
type OracleSource uint8

const (
	OracleSourcePyth OracleSource = iota
	OracleSourceSwitchboard
	OracleSourceQuoteAsset
	OracleSourcePyth1K
	OracleSourcePyth1M
	OracleSourcePythStableCoin
	OracleSourcePrelaunch
)

func (s OracleSource) String() string {
	switch s {
	case OracleSourcePyth:
		return "Pyth"
	case OracleSourceSwitchboard:
		return "Switchboard"
	case OracleSourceQuoteAsset:
		return "QuoteAsset"
	case OracleSourcePyth1K:
		return "Pyth1K"
	case OracleSourcePyth1M:
		return "Pyth1M"
	case OracleSourcePythStableCoin:
		return "PythStableCoin"
	case OracleSourcePrelaunch:
		return "Prelaunch"
	default:
		return fmt.Sprintf("OracleSource(%d)", uint8(s))
	}
}

// UserStatus is a bit set.
type UserStatus uint8

const (
	UserStatusBeingLiquidated UserStatus = 1 << iota
	UserStatusBankrupt
	UserStatusReduceOnly
)

// ExchangeStatus is a bit set of paused subsystems.
type ExchangeStatus uint8

const (
	ExchangeStatusDepositPaused ExchangeStatus = 1 << iota
	ExchangeStatusWithdrawPaused
	ExchangeStatusAmmPaused
	ExchangeStatusFillPaused
	ExchangeStatusLiqPaused
	ExchangeStatusFundingPaused
	ExchangeStatusSettlePnlPaused
	ExchangeStatusAmmImmediateFillPaused

	ExchangeStatusPaused ExchangeStatus = 0xFF
)

// MarginMode selects the margin ratio schedule for a user.
type MarginMode uint8

const (
	MarginModeDefault MarginMode = iota
	MarginModeHighLeverage
)

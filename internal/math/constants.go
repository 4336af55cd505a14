package math

// Fixed-point precisions used by the on-chain program. Every stored amount is
// an integer scaled by one of these.
const (
	PricePrecision            int64  = 1_000_000
	PricePrecisionU64         uint64 = 1_000_000
	QuotePrecision            int64  = 1_000_000
	QuotePrecisionU64         uint64 = 1_000_000
	BasePrecision             int64  = 1_000_000_000
	AmmReservePrecision       int64  = 1_000_000_000
	SpotBalancePrecision      int64  = 1_000_000_000
	SpotCumulativeInterest    int64  = 10_000_000_000
	MarginPrecision           uint32 = 10_000
	SpotWeightPrecision       uint32 = 10_000
	SpotImfPrecision          uint32 = 1_000_000
	FundingRateBuffer         int64  = 1_000
	BidAskSpreadPrecision     int64  = 1_000_000
	PercentagePrecision       int64  = 1_000_000
	OpenOrderMarginRequirment int64  = QuotePrecision / 100

	// PriceTimesAmmToQuote converts base (1e9) * price (1e6) to quote (1e6).
	PriceTimesAmmToQuote int64 = AmmReservePrecision * PricePrecision / QuotePrecision

	// FundingPaymentPrecision converts funding rate (1e9) * base (1e9) to quote (1e6).
	FundingPaymentPrecision int64 = AmmReservePrecision * PricePrecision * FundingRateBuffer / QuotePrecision

	// MaxPredictionMarketPrice caps prices on binary prediction markets.
	MaxPredictionMarketPrice int64 = PricePrecision

	// SpotDecimalsCeiling is the largest decimals value for which token
	// amounts can be derived from scaled balances.
	SpotDecimalsCeiling uint32 = 19

	// QuoteSpotMarketIndex is the spot market that denominates collateral.
	QuoteSpotMarketIndex uint16 = 0
)

package state

// Record sizes in bytes, excluding the account discriminator.
const (
	OracleGuardRailsSize = 48
	StateSize            = 224
)

type PriceDivergenceGuardRails struct {
	MarkOraclePercentDivergence     uint64
	OracleTwap5MinPercentDivergence uint64
}

// ValidityGuardRails bound how old and how uncertain an oracle price may be.
type ValidityGuardRails struct {
	SlotsBeforeStaleForAmm    int64
	SlotsBeforeStaleForMargin int64
	ConfidenceIntervalMaxSize uint64 // Bid-ask spread precision
	TooVolatileRatio          int64
}

type OracleGuardRails struct {
	PriceDivergence PriceDivergenceGuardRails
	Validity        ValidityGuardRails
}

// DefaultOracleGuardRails mirrors the exchange's initial configuration.
func DefaultOracleGuardRails() OracleGuardRails {
	return OracleGuardRails{
		PriceDivergence: PriceDivergenceGuardRails{
			MarkOraclePercentDivergence:     100_000,
			OracleTwap5MinPercentDivergence: 500_000,
		},
		Validity: ValidityGuardRails{
			SlotsBeforeStaleForAmm:    10,
			SlotsBeforeStaleForMargin: 120,
			ConfidenceIntervalMaxSize: 20_000,
			TooVolatileRatio:          5,
		},
	}
}

// State is the exchange-wide configuration account.
type State struct {
	Admin                         Pubkey
	WhitelistMint                 Pubkey
	DiscountMint                  Pubkey
	Signer                        Pubkey
	OracleGuardRails              OracleGuardRails
	NumberOfAuthorities           uint64
	NumberOfSubAccounts           uint64
	LpCooldownTime                uint64
	LiquidationMarginBufferRatio  uint32
	SettlementDuration            uint16
	NumberOfMarkets               uint16
	NumberOfSpotMarkets           uint16
	InitialPctToLiquidate         uint16
	MaxNumberOfSubAccounts        uint16
	SignerNonce                   uint8
	MinPerpAuctionDuration        uint8
	DefaultMarketOrderTimeInForce uint8
	DefaultSpotAuctionDuration    uint8
	ExchangeStatus                ExchangeStatus
	LiquidationDuration           uint8
	_                             [4]byte
}

// Paused reports whether every bit in status is set.
func (s *State) Paused(status ExchangeStatus) bool {
	return s.ExchangeStatus&status == status
}


package testutil

import (
	"encoding/binary"
	"unsafe"

	"PerpFFI/internal/account"
	fpmath "PerpFFI/internal/math"
	"PerpFFI/internal/oracle"
	"PerpFFI/internal/state"
)

// Key returns a pubkey filled with b.
func Key(b byte) state.Pubkey {
	var k state.Pubkey
	for i := range k {
		k[i] = b
	}
	return k
}

// Record returns the raw bytes of v in a fresh aligned buffer.
func Record[T any](v T) []byte {
	buf := account.AlignedBuffer(int(unsafe.Sizeof(v)))
	p, err := account.Cast[T](buf)
	if err != nil {
		panic(err)
	}
	*p = v
	return buf
}

// Anchor returns disc followed by the bytes of v, plus extra zero bytes.
func Anchor[T any](disc [account.DiscriminatorSize]byte, v T, extra int) []byte {
	size := int(unsafe.Sizeof(v))
	buf := account.AlignedBuffer(account.DiscriminatorSize + size + extra)
	copy(buf, disc[:])
	p, err := account.LoadAnchor[T](buf, disc)
	if err != nil {
		panic(err)
	}
	*p = v
	return buf
}

func UserAccount(key state.Pubkey, u state.User) account.Ref {
	return account.Ref{Key: key, Data: Anchor(account.UserDiscriminator, u, 0)}
}

func StateAccount(s state.State) []byte {
	return Anchor(account.StateDiscriminator, s, 0)
}

func PerpMarketAccount(m state.PerpMarket) account.Ref {
	return account.Ref{Key: m.Pubkey, Data: Anchor(account.PerpMarketDiscriminator, m, 0)}
}

func SpotMarketAccount(m state.SpotMarket) account.Ref {
	return account.Ref{Key: m.Pubkey, Data: Anchor(account.SpotMarketDiscriminator, m, 0)}
}

func PrelaunchAccount(key state.Pubkey, o oracle.PrelaunchOracle) account.Ref {
	return account.Ref{Key: key, Data: Anchor(account.PrelaunchOracleDiscriminator, o, 0)}
}

// PythAccount builds a trading Pyth price account with a trailing publisher
// area, as real accounts have.
func PythAccount(key state.Pubkey, price int64, conf uint64, expo int32, pubSlot uint64) account.Ref {
	acct := oracle.PythPriceAccount{
		Magic:       oracle.PythMagic,
		Version:     oracle.PythVersion,
		AccountType: oracle.PythAccountType,
		Size:        oracle.PythPriceAccountSize,
		Expo:        expo,
		Num:         3,
		NumQt:       3,
		LastSlot:    pubSlot,
		ValidSlot:   pubSlot,
		MinPub:      1,
		Agg: oracle.PythPriceInfo{
			Price:   price,
			Conf:    conf,
			Status:  oracle.PythStatusTrading,
			PubSlot: pubSlot,
		},
	}
	data := account.AlignedBuffer(oracle.PythPriceAccountSize + 96)
	copy(data, Record(acct))
	return account.Ref{Key: key, Data: data}
}

// SetPythStatus rewrites the aggregate status of a Pyth account in place.
func SetPythStatus(ref account.Ref, status oracle.PythPriceStatus) {
	binary.LittleEndian.PutUint32(ref.Data[224:228], uint32(status))
}

// Fixture keys.
var (
	QuoteOracleKey = Key(0xA0)
	SolOracleKey   = Key(0xA1)
	SolSpotKey     = Key(0xB1)
	UsdcSpotKey    = Key(0xB0)
	SolPerpKey     = Key(0xC0)
	UserKey        = Key(0xD0)
)

// UsdcSpotMarket is the quote spot market (index 0).
func UsdcSpotMarket() state.SpotMarket {
	return state.SpotMarket{
		Pubkey:                     UsdcSpotKey,
		Oracle:                     QuoteOracleKey,
		OracleSource:               state.OracleSourceQuoteAsset,
		MarketIndex:                fpmath.QuoteSpotMarketIndex,
		Decimals:                   6,
		Status:                     state.MarketStatusActive,
		CumulativeDepositInterest:  fpmath.U128(uint64(fpmath.SpotCumulativeInterest)),
		CumulativeBorrowInterest:   fpmath.U128(uint64(fpmath.SpotCumulativeInterest)),
		InitialAssetWeight:         fpmath.SpotWeightPrecision,
		MaintenanceAssetWeight:     fpmath.SpotWeightPrecision,
		InitialLiabilityWeight:     fpmath.SpotWeightPrecision,
		MaintenanceLiabilityWeight: fpmath.SpotWeightPrecision,
		OrderStepSize:              1,
		OrderTickSize:              1,
		HistoricalOracleData: state.HistoricalOracleData{
			LastOraclePrice:         fpmath.PricePrecision,
			LastOraclePriceTwap:     fpmath.PricePrecision,
			LastOraclePriceTwap5Min: fpmath.PricePrecision,
		},
	}
}

// SolSpotMarket is a 9-decimal spot market (index 1) priced by SolOracleKey.
func SolSpotMarket(price int64) state.SpotMarket {
	return state.SpotMarket{
		Pubkey:                     SolSpotKey,
		Oracle:                     SolOracleKey,
		OracleSource:               state.OracleSourcePyth,
		MarketIndex:                1,
		Decimals:                   9,
		Status:                     state.MarketStatusActive,
		CumulativeDepositInterest:  fpmath.U128(uint64(fpmath.SpotCumulativeInterest)),
		CumulativeBorrowInterest:   fpmath.U128(uint64(fpmath.SpotCumulativeInterest)),
		InitialAssetWeight:         8_000,
		MaintenanceAssetWeight:     9_000,
		InitialLiabilityWeight:     12_000,
		MaintenanceLiabilityWeight: 11_000,
		OrderStepSize:              1_000,
		OrderTickSize:              100,
		HistoricalOracleData: state.HistoricalOracleData{
			LastOraclePrice:         price,
			LastOraclePriceTwap:     price,
			LastOraclePriceTwap5Min: price,
		},
	}
}

// SolPerpMarket is perp market 0 priced by SolOracleKey with 10x initial
// and 20x maintenance leverage.
func SolPerpMarket(price int64) state.PerpMarket {
	m := state.PerpMarket{
		Pubkey:                              SolPerpKey,
		MarketIndex:                         0,
		Status:                              state.MarketStatusActive,
		ContractType:                        state.ContractTypePerpetual,
		MarginRatioInitial:                  1_000,
		MarginRatioMaintenance:              500,
		UnrealizedPnlInitialAssetWeight:     fpmath.SpotWeightPrecision,
		UnrealizedPnlMaintenanceAssetWeight: fpmath.SpotWeightPrecision,
		QuoteSpotMarketIndex:                fpmath.QuoteSpotMarketIndex,
	}
	m.Amm.Oracle = SolOracleKey
	m.Amm.OracleSource = state.OracleSourcePyth
	m.Amm.OrderStepSize = uint64(fpmath.BasePrecision) / 1_000
	m.Amm.OrderTickSize = 100
	m.Amm.MinOrderSize = uint64(fpmath.BasePrecision) / 1_000
	m.Amm.HistoricalOracleData = state.HistoricalOracleData{
		LastOraclePrice:         price,
		LastOraclePriceTwap:     price,
		LastOraclePriceTwap5Min: price,
	}
	return m
}

// SolPythAccount prices SOL at price (PRICE_PRECISION) with expo -6.
func SolPythAccount(price int64, pubSlot uint64) account.Ref {
	return PythAccount(SolOracleKey, price, uint64(price)/1_000, -6, pubSlot)
}

// ActiveState is an exchange state with nothing paused.
func ActiveState() state.State {
	return state.State{
		OracleGuardRails:       state.DefaultOracleGuardRails(),
		MinPerpAuctionDuration: 10,
		NumberOfMarkets:        1,
		NumberOfSpotMarkets:    2,
	}
}

// DepositUser returns a user with amount of USDC (QUOTE_PRECISION) deposited.
func DepositUser(amount uint64) state.User {
	var u state.User
	u.Authority = UserKey
	u.NextOrderID = 1
	u.SpotPositions[0] = state.SpotPosition{
		MarketIndex:   fpmath.QuoteSpotMarketIndex,
		BalanceType:   state.SpotBalanceTypeDeposit,
		ScaledBalance: amount * 1_000, // 1e6 token -> 1e9 balance at interest 1.0
	}
	return u
}

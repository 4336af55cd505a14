// Package errcode defines the closed set of failure codes the bridge can
// report. Every structural, lookup and domain failure is one of these values;
// the numeric value is what crosses the foreign boundary.
package errcode

import (
	"errors"
	"fmt"
)

// ErrorCode is both the domain error type and its boundary representation.
type ErrorCode uint32

// ErrorCodeBase is the first assigned code. Codes are contiguous from here.
const ErrorCodeBase ErrorCode = 6000

const (
	// Arithmetic
	MathError ErrorCode = ErrorCodeBase + iota
	CastingFailure
	DivisionByZero

	// Oracle
	InvalidOracle
	InvalidOracleSource
	UnableToLoadOracle
	OracleNotFound

	// Lookup
	SpotMarketNotFound
	PerpMarketNotFound
	CouldNotFindSpotPosition
	UserHasNoPositionInMarket

	// Structural (account reconstruction and map loading)
	CouldNotLoadAccountData
	AccountDiscriminatorMismatch
	MisalignedAccountData
	UnsupportedHostEndianness
	CouldNotLoadSpotMarketData
	CouldNotLoadPerpMarketData
	CouldNotLoadUserData
	CouldNotLoadStateData
	DuplicateSpotMarket
	DuplicatePerpMarket
	DuplicateOracle
	InvalidEnumValue
	InvalidContractType
	InvalidMarginContext
	InvalidBoundaryTag
	NullPointer

	// Order placement
	ExchangePaused
	UserIsBeingLiquidated
	UserBankrupt
	InvalidOrderMarketType
	MarketPlaceOrderPaused
	InvalidOrderSizeTooSmall
	InvalidOrderNotStepSizeMultiple
	InvalidOrderMinOrderSize
	InvalidOrderLimitPrice
	InvalidOrderMaxTs
	InvalidOrderPostOnly
	InvalidOrderIOCPostOnly
	InvalidOrderTrigger
	InvalidOrderAuction
	InvalidOrderNotRiskReducing
	MaxNumberOfOrders
	MaxNumberOfPositions
	InsufficientCollateral

	// Internal marks a failure that did not originate from a known code.
	Internal

	errorCodeEnd
)

type codeInfo struct {
	name string
	msg  string
}

// codeTable is keyed by offset so that removing a code breaks compilation.
var codeTable = [errorCodeEnd - ErrorCodeBase]codeInfo{
	MathError - ErrorCodeBase:      {"MathError", "math error"},
	CastingFailure - ErrorCodeBase: {"CastingFailure", "casting failure"},
	DivisionByZero - ErrorCodeBase: {"DivisionByZero", "division by zero"},

	InvalidOracle - ErrorCodeBase:       {"InvalidOracle", "invalid oracle"},
	InvalidOracleSource - ErrorCodeBase: {"InvalidOracleSource", "unrecognized oracle source"},
	UnableToLoadOracle - ErrorCodeBase:  {"UnableToLoadOracle", "unable to load oracle"},
	OracleNotFound - ErrorCodeBase:      {"OracleNotFound", "oracle not found"},

	SpotMarketNotFound - ErrorCodeBase:        {"SpotMarketNotFound", "spot market not found"},
	PerpMarketNotFound - ErrorCodeBase:        {"PerpMarketNotFound", "perp market not found"},
	CouldNotFindSpotPosition - ErrorCodeBase:  {"CouldNotFindSpotPosition", "could not find spot position"},
	UserHasNoPositionInMarket - ErrorCodeBase: {"UserHasNoPositionInMarket", "user has no position in market"},

	CouldNotLoadAccountData - ErrorCodeBase:      {"CouldNotLoadAccountData", "account data has the wrong length"},
	AccountDiscriminatorMismatch - ErrorCodeBase: {"AccountDiscriminatorMismatch", "account discriminator mismatch"},
	MisalignedAccountData - ErrorCodeBase:        {"MisalignedAccountData", "account data is not aligned for its record type"},
	UnsupportedHostEndianness - ErrorCodeBase:    {"UnsupportedHostEndianness", "host is not little-endian"},
	CouldNotLoadSpotMarketData - ErrorCodeBase:   {"CouldNotLoadSpotMarketData", "could not load spot market data"},
	CouldNotLoadPerpMarketData - ErrorCodeBase:   {"CouldNotLoadPerpMarketData", "could not load perp market data"},
	CouldNotLoadUserData - ErrorCodeBase:         {"CouldNotLoadUserData", "could not load user data"},
	CouldNotLoadStateData - ErrorCodeBase:        {"CouldNotLoadStateData", "could not load state data"},
	DuplicateSpotMarket - ErrorCodeBase:          {"DuplicateSpotMarket", "spot market index supplied more than once"},
	DuplicatePerpMarket - ErrorCodeBase:          {"DuplicatePerpMarket", "perp market index supplied more than once"},
	DuplicateOracle - ErrorCodeBase:              {"DuplicateOracle", "oracle key supplied more than once"},
	InvalidEnumValue - ErrorCodeBase:             {"InvalidEnumValue", "enum byte out of range"},
	InvalidContractType - ErrorCodeBase:          {"InvalidContractType", "invalid contract type"},
	InvalidMarginContext - ErrorCodeBase:         {"InvalidMarginContext", "invalid margin context"},
	InvalidBoundaryTag - ErrorCodeBase:           {"InvalidBoundaryTag", "invalid result or option tag"},
	NullPointer - ErrorCodeBase:                  {"NullPointer", "null pointer"},

	ExchangePaused - ErrorCodeBase:                  {"ExchangePaused", "exchange paused"},
	UserIsBeingLiquidated - ErrorCodeBase:           {"UserIsBeingLiquidated", "user is being liquidated"},
	UserBankrupt - ErrorCodeBase:                    {"UserBankrupt", "user bankrupt"},
	InvalidOrderMarketType - ErrorCodeBase:          {"InvalidOrderMarketType", "invalid order market type"},
	MarketPlaceOrderPaused - ErrorCodeBase:          {"MarketPlaceOrderPaused", "market place order paused"},
	InvalidOrderSizeTooSmall - ErrorCodeBase:        {"InvalidOrderSizeTooSmall", "order size too small"},
	InvalidOrderNotStepSizeMultiple - ErrorCodeBase: {"InvalidOrderNotStepSizeMultiple", "order size not a multiple of step size"},
	InvalidOrderMinOrderSize - ErrorCodeBase:        {"InvalidOrderMinOrderSize", "order size below minimum"},
	InvalidOrderLimitPrice - ErrorCodeBase:          {"InvalidOrderLimitPrice", "invalid limit price"},
	InvalidOrderMaxTs - ErrorCodeBase:               {"InvalidOrderMaxTs", "order max_ts already passed"},
	InvalidOrderPostOnly - ErrorCodeBase:            {"InvalidOrderPostOnly", "invalid post only order"},
	InvalidOrderIOCPostOnly - ErrorCodeBase:         {"InvalidOrderIOCPostOnly", "order cannot be both ioc and post only"},
	InvalidOrderTrigger - ErrorCodeBase:             {"InvalidOrderTrigger", "invalid trigger order"},
	InvalidOrderAuction - ErrorCodeBase:             {"InvalidOrderAuction", "invalid auction params"},
	InvalidOrderNotRiskReducing - ErrorCodeBase:     {"InvalidOrderNotRiskReducing", "reduce only order would increase risk"},
	MaxNumberOfOrders - ErrorCodeBase:               {"MaxNumberOfOrders", "max number of orders"},
	MaxNumberOfPositions - ErrorCodeBase:            {"MaxNumberOfPositions", "max number of positions"},
	InsufficientCollateral - ErrorCodeBase:          {"InsufficientCollateral", "insufficient collateral"},

	Internal - ErrorCodeBase: {"Internal", "internal bridge error"},
}

// Count is the number of assigned codes.
const Count = int(errorCodeEnd - ErrorCodeBase)

// Valid reports whether c is an assigned code.
func (c ErrorCode) Valid() bool {
	return c >= ErrorCodeBase && c < errorCodeEnd
}

// Name returns the symbolic name of the code.
func (c ErrorCode) Name() string {
	if !c.Valid() {
		return fmt.Sprintf("ErrorCode(%d)", uint32(c))
	}
	return codeTable[c-ErrorCodeBase].name
}

func (c ErrorCode) Error() string {
	if !c.Valid() {
		return fmt.Sprintf("unknown error code %d", uint32(c))
	}
	return codeTable[c-ErrorCodeBase].msg
}

func (c ErrorCode) String() string {
	return c.Name()
}

// All returns every assigned code in ascending order.
func All() []ErrorCode {
	out := make([]ErrorCode, 0, Count)
	for c := ErrorCodeBase; c < errorCodeEnd; c++ {
		out = append(out, c)
	}
	return out
}

// From extracts the code carried by err, if any.
func From(err error) (ErrorCode, bool) {
	var code ErrorCode
	if errors.As(err, &code) {
		return code, true
	}
	return 0, false
}

// Wrap attaches context to a code while keeping it recoverable with From.
func Wrap(code ErrorCode, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), code)
}

package abi

import (
	"encoding/binary"
	"unsafe"

	"PerpFFI/internal/state"
)

// Payload sizes in bytes.
const (
	U64Size               = 8
	U32Size               = 4
	BoolSize              = 1
	PointerSize           = 8
	OraclePriceDataSize   = 32
	MarginCalculationSize = 120
	PerpPositionSize      = state.PerpPositionSize
)

// Kind names a result payload so hosts can size output buffers.
type Kind uint32

const (
	KindU64 Kind = iota
	KindU32
	KindBool
	KindU128
	KindI128
	KindOraclePriceData
	KindMarginCalculation
	KindPerpPosition
	KindPointer
)

// PayloadSize returns the payload size of kind, or -1 if unknown.
func PayloadSize(kind Kind) int {
	switch kind {
	case KindU64:
		return U64Size
	case KindU32:
		return U32Size
	case KindBool:
		return BoolSize
	case KindU128, KindI128:
		return Int128Size
	case KindOraclePriceData:
		return OraclePriceDataSize
	case KindMarginCalculation:
		return MarginCalculationSize
	case KindPerpPosition:
		return PerpPositionSize
	case KindPointer:
		return PointerSize
	default:
		return -1
	}
}

func PutU64(dst []byte, v uint64) { binary.LittleEndian.PutUint64(dst, v) }
func PutU32(dst []byte, v uint32) { binary.LittleEndian.PutUint32(dst, v) }

func PutBool(dst []byte, v bool) {
	dst[0] = boolByte(v)
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// OraclePriceData is price i64 | confidence u64 | delay i64 | sufficient u8 | pad 7.
type OraclePriceData struct {
	Price                           int64
	Confidence                      uint64
	Delay                           int64
	HasSufficientNumberOfDataPoints bool
}

func PutOraclePriceData(dst []byte, v OraclePriceData) {
	binary.LittleEndian.PutUint64(dst[0:8], uint64(v.Price))
	binary.LittleEndian.PutUint64(dst[8:16], v.Confidence)
	binary.LittleEndian.PutUint64(dst[16:24], uint64(v.Delay))
	dst[24] = boolByte(v.HasSufficientNumberOfDataPoints)
}

// MarginCalculation is seven 128-bit values followed by flags and counts:
//
//	0   total_collateral i128
//	16  margin_requirement u128
//	32  total_spot_asset_value i128
//	48  total_spot_liability_value u128
//	64  total_perp_liability_value u128
//	80  total_perp_pnl i128
//	96  open_orders_margin_requirement u128
//	112 with_perp_isolated_liability u8, with_spot_isolated_liability u8,
//	    all_oracles_valid u8, num_spot_liabilities u8, num_perp_liabilities u8, pad 3
type MarginCalculation struct {
	TotalCollateral             I128
	MarginRequirement           U128
	TotalSpotAssetValue         I128
	TotalSpotLiabilityValue     U128
	TotalPerpLiabilityValue     U128
	TotalPerpPnl                I128
	OpenOrdersMarginRequirement U128
	WithPerpIsolatedLiability   bool
	WithSpotIsolatedLiability   bool
	AllOraclesValid             bool
	NumSpotLiabilities          uint8
	NumPerpLiabilities          uint8
}

func PutMarginCalculation(dst []byte, v MarginCalculation) {
	PutI128(dst[0:16], v.TotalCollateral)
	PutU128(dst[16:32], v.MarginRequirement)
	PutI128(dst[32:48], v.TotalSpotAssetValue)
	PutU128(dst[48:64], v.TotalSpotLiabilityValue)
	PutU128(dst[64:80], v.TotalPerpLiabilityValue)
	PutI128(dst[80:96], v.TotalPerpPnl)
	PutU128(dst[96:112], v.OpenOrdersMarginRequirement)
	dst[112] = boolByte(v.WithPerpIsolatedLiability)
	dst[113] = boolByte(v.WithSpotIsolatedLiability)
	dst[114] = boolByte(v.AllOraclesValid)
	dst[115] = v.NumSpotLiabilities
	dst[116] = v.NumPerpLiabilities
}

// PutPerpPosition copies the record bytes unchanged.
func PutPerpPosition(dst []byte, v state.PerpPosition) {
	copy(dst[:PerpPositionSize], unsafe.Slice((*byte)(unsafe.Pointer(&v)), PerpPositionSize))
}

// Pointer is the address of a record inside a caller-owned buffer.
type Pointer uint64

// PointerTo returns the address of p. The referent must live in memory the
// caller owns for the address to stay meaningful after return.
func PointerTo[T any](p *T) Pointer {
	return Pointer(uintptr(unsafe.Pointer(p)))
}

func PutPointer(dst []byte, v Pointer) { PutU64(dst, uint64(v)) }

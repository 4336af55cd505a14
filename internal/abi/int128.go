package abi

import (
	"encoding/binary"

	fpmath "PerpFFI/internal/math"
)

// U128 carries an unsigned 128-bit value as two little-endian 64-bit halves.
type U128 struct {
	Lo uint64
	Hi uint64
}

// I128 carries a signed 128-bit value in two's complement as two halves.
type I128 struct {
	Lo uint64
	Hi uint64
}

func FromUint128(v fpmath.Uint128) U128 { return U128{Lo: v.Lo, Hi: v.Hi} }
func (v U128) Uint128() fpmath.Uint128  { return fpmath.Uint128{Lo: v.Lo, Hi: v.Hi} }

func FromInt128(v fpmath.Int128) I128 { return I128{Lo: v.Lo, Hi: uint64(v.Hi)} }
func (v I128) Int128() fpmath.Int128  { return fpmath.Int128{Lo: v.Lo, Hi: int64(v.Hi)} }

const Int128Size = 16

func PutU128(dst []byte, v U128) {
	binary.LittleEndian.PutUint64(dst[0:8], v.Lo)
	binary.LittleEndian.PutUint64(dst[8:16], v.Hi)
}

func PutI128(dst []byte, v I128) {
	PutU128(dst, U128(v))
}

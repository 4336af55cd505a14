package math

import (
	"math/big"

	"PerpFFI/internal/errcode"
)

// Int128 is a signed 128-bit integer stored as two's complement halves.
// The zero value is 0. The field order matches the little-endian byte order
// of an i128 in account data.
type Int128 struct {
	Lo uint64
	Hi int64
}

// Uint128 is an unsigned 128-bit integer stored as halves.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

var (
	two64      = new(big.Int).Lsh(big.NewInt(1), 64)
	two128     = new(big.Int).Lsh(big.NewInt(1), 128)
	mask64     = new(big.Int).Sub(two64, big.NewInt(1))
	maxInt128  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxUint128 = new(big.Int).Sub(two128, big.NewInt(1))
)

// MaxInt128, MinInt128 and MaxUint128 are the range limits.
var (
	MaxInt128  = Int128{Lo: ^uint64(0), Hi: int64(^uint64(0) >> 1)}
	MinInt128  = Int128{Lo: 0, Hi: -1 << 63}
	MaxUint128 = Uint128{Lo: ^uint64(0), Hi: ^uint64(0)}
)

// I128 widens an int64.
func I128(v int64) Int128 {
	hi := int64(0)
	if v < 0 {
		hi = -1
	}
	return Int128{Lo: uint64(v), Hi: hi}
}

// U128 widens a uint64.
func U128(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// Big returns x as a new big.Int.
func (x Int128) Big() *big.Int {
	z := new(big.Int).SetInt64(x.Hi)
	z.Lsh(z, 64)
	return z.Add(z, new(big.Int).SetUint64(x.Lo))
}

// Big returns x as a new big.Int.
func (x Uint128) Big() *big.Int {
	z := new(big.Int).SetUint64(x.Hi)
	z.Lsh(z, 64)
	return z.Add(z, new(big.Int).SetUint64(x.Lo))
}

// Int128FromBig narrows v, failing with MathError when out of range.
func Int128FromBig(v *big.Int) (Int128, error) {
	if v.Cmp(maxInt128) > 0 || v.Cmp(minInt128) < 0 {
		return Int128{}, errcode.Wrap(errcode.MathError, "value %s overflows i128", v.String())
	}
	t := new(big.Int).Set(v)
	if t.Sign() < 0 {
		t.Add(t, two128)
	}
	lo := new(big.Int).And(t, mask64).Uint64()
	hi := new(big.Int).Rsh(t, 64).Uint64()
	return Int128{Lo: lo, Hi: int64(hi)}, nil
}

// Uint128FromBig narrows v, failing with MathError when out of range.
func Uint128FromBig(v *big.Int) (Uint128, error) {
	if v.Sign() < 0 || v.Cmp(maxUint128) > 0 {
		return Uint128{}, errcode.Wrap(errcode.MathError, "value %s overflows u128", v.String())
	}
	lo := new(big.Int).And(v, mask64).Uint64()
	hi := new(big.Int).Rsh(v, 64).Uint64()
	return Uint128{Lo: lo, Hi: hi}, nil
}

func (x Int128) Sign() int {
	switch {
	case x.Hi < 0:
		return -1
	case x.Hi == 0 && x.Lo == 0:
		return 0
	default:
		return 1
	}
}

func (x Int128) IsZero() bool { return x.Hi == 0 && x.Lo == 0 }

func (x Int128) Cmp(y Int128) int {
	switch {
	case x.Hi < y.Hi:
		return -1
	case x.Hi > y.Hi:
		return 1
	case x.Lo < y.Lo:
		return -1
	case x.Lo > y.Lo:
		return 1
	}
	return 0
}

func (x Int128) Add(y Int128) (Int128, error) {
	return Int128FromBig(new(big.Int).Add(x.Big(), y.Big()))
}

func (x Int128) Sub(y Int128) (Int128, error) {
	return Int128FromBig(new(big.Int).Sub(x.Big(), y.Big()))
}

func (x Int128) Mul(y Int128) (Int128, error) {
	return Int128FromBig(new(big.Int).Mul(x.Big(), y.Big()))
}

// Div truncates toward zero.
func (x Int128) Div(y Int128) (Int128, error) {
	if y.IsZero() {
		return Int128{}, errcode.Wrap(errcode.MathError, "i128 division by zero")
	}
	return Int128FromBig(new(big.Int).Quo(x.Big(), y.Big()))
}

// UnsignedAbs is |x|, defined for MinInt128.
func (x Int128) UnsignedAbs() Uint128 {
	a := x.Big()
	u, _ := Uint128FromBig(a.Abs(a))
	return u
}

// Int64 narrows x, failing with CastingFailure when out of range.
func (x Int128) Int64() (int64, error) {
	if (x.Hi == 0 && x.Lo>>63 == 0) || (x.Hi == -1 && x.Lo>>63 == 1) {
		return int64(x.Lo), nil
	}
	return 0, errcode.Wrap(errcode.CastingFailure, "i128 %s does not fit i64", x.Big().String())
}

func (x Int128) String() string { return x.Big().String() }

func (x Uint128) IsZero() bool { return x.Hi == 0 && x.Lo == 0 }

func (x Uint128) Cmp(y Uint128) int {
	switch {
	case x.Hi < y.Hi:
		return -1
	case x.Hi > y.Hi:
		return 1
	case x.Lo < y.Lo:
		return -1
	case x.Lo > y.Lo:
		return 1
	}
	return 0
}

func (x Uint128) Add(y Uint128) (Uint128, error) {
	return Uint128FromBig(new(big.Int).Add(x.Big(), y.Big()))
}

func (x Uint128) Sub(y Uint128) (Uint128, error) {
	return Uint128FromBig(new(big.Int).Sub(x.Big(), y.Big()))
}

func (x Uint128) Mul(y Uint128) (Uint128, error) {
	return Uint128FromBig(new(big.Int).Mul(x.Big(), y.Big()))
}

func (x Uint128) Div(y Uint128) (Uint128, error) {
	if y.IsZero() {
		return Uint128{}, errcode.Wrap(errcode.MathError, "u128 division by zero")
	}
	return Uint128FromBig(new(big.Int).Quo(x.Big(), y.Big()))
}

// Uint64 narrows x, failing with CastingFailure when out of range.
func (x Uint128) Uint64() (uint64, error) {
	if x.Hi != 0 {
		return 0, errcode.Wrap(errcode.CastingFailure, "u128 %s does not fit u64", x.Big().String())
	}
	return x.Lo, nil
}

// Int128 converts x to signed, failing when x > MaxInt128.
func (x Uint128) Int128() (Int128, error) {
	return Int128FromBig(x.Big())
}

func (x Uint128) String() string { return x.Big().String() }

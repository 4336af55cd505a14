// internal/math/fixedpoint.go
package math

import (
	"math/big"
	"sync"

	"PerpFFI/internal/errcode"
)

// Pooled big.Int scratch values for intermediate 128-bit products.
var int128Pool = &sync.Pool{
	New: func() interface{} {
		return new(big.Int)
	},
}

func getInt128() *big.Int {
	return int128Pool.Get().(*big.Int)
}

func putInt128(v *big.Int) {
	v.SetInt64(0) // Clear before returning to pool
	int128Pool.Put(v)
}

type RoundingMode int

const (
	RoundDown RoundingMode = iota // Truncate toward zero
	RoundUp                       // Away from zero when there is a remainder
)

// MulDivI64 computes a * b / c with a 128-bit intermediate.
func MulDivI64(a, b, c int64, mode RoundingMode) (int64, error) {
	if c == 0 {
		return 0, errcode.Wrap(errcode.MathError, "mul_div by zero")
	}
	num := getInt128()
	den := getInt128()
	rem := getInt128()
	defer func() {
		putInt128(num)
		putInt128(den)
		putInt128(rem)
	}()

	num.Mul(big.NewInt(a), big.NewInt(b))
	den.SetInt64(c)
	num.QuoRem(num, den, rem)
	if mode == RoundUp && rem.Sign() != 0 {
		if (rem.Sign() > 0) == (den.Sign() > 0) {
			num.Add(num, big.NewInt(1))
		} else {
			num.Sub(num, big.NewInt(1))
		}
	}
	if !num.IsInt64() {
		return 0, errcode.Wrap(errcode.MathError, "mul_div %d*%d/%d overflows i64", a, b, c)
	}
	return num.Int64(), nil
}

// MulDivU64 computes a * b / c with a 128-bit intermediate.
func MulDivU64(a, b, c uint64, mode RoundingMode) (uint64, error) {
	if c == 0 {
		return 0, errcode.Wrap(errcode.MathError, "mul_div by zero")
	}
	num := getInt128()
	den := getInt128()
	rem := getInt128()
	defer func() {
		putInt128(num)
		putInt128(den)
		putInt128(rem)
	}()

	num.Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	den.SetUint64(c)
	num.QuoRem(num, den, rem)
	if mode == RoundUp && rem.Sign() != 0 {
		num.Add(num, big.NewInt(1))
	}
	if !num.IsUint64() {
		return 0, errcode.Wrap(errcode.MathError, "mul_div %d*%d/%d overflows u64", a, b, c)
	}
	return num.Uint64(), nil
}

// Pow10U128 returns 10^n, failing when it does not fit 128 bits.
func Pow10U128(n uint32) (Uint128, error) {
	p := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	return Uint128FromBig(p)
}

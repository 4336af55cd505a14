package math

import (
	"math"

	"PerpFFI/internal/errcode"
)

// Checked int64/uint64 arithmetic. Overflow and division by zero return
// errcode.MathError instead of wrapping.

func SafeAddI64(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, errcode.Wrap(errcode.MathError, "add overflow %d + %d", a, b)
	}
	return a + b, nil
}

func SafeSubI64(a, b int64) (int64, error) {
	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		return 0, errcode.Wrap(errcode.MathError, "sub overflow %d - %d", a, b)
	}
	return a - b, nil
}

func SafeDivI64(a, b int64) (int64, error) {
	if b == 0 {
		return 0, errcode.Wrap(errcode.MathError, "division by zero")
	}
	if a == math.MinInt64 && b == -1 {
		return 0, errcode.Wrap(errcode.MathError, "div overflow %d / %d", a, b)
	}
	return a / b, nil
}

func SafeAddU64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, errcode.Wrap(errcode.MathError, "add overflow %d + %d", a, b)
	}
	return a + b, nil
}

func SafeSubU64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, errcode.Wrap(errcode.MathError, "sub underflow %d - %d", a, b)
	}
	return a - b, nil
}

func SafeRemU64(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, errcode.Wrap(errcode.MathError, "remainder by zero")
	}
	return a % b, nil
}

func SafeRemI64(a, b int64) (int64, error) {
	if b == 0 {
		return 0, errcode.Wrap(errcode.MathError, "remainder by zero")
	}
	if b == -1 {
		return 0, nil
	}
	return a % b, nil
}

// CastU64 converts a signed value that must be non-negative.
func CastU64(v int64) (uint64, error) {
	if v < 0 {
		return 0, errcode.Wrap(errcode.CastingFailure, "cast %d to u64", v)
	}
	return uint64(v), nil
}

// CastI64 converts an unsigned value that must fit in int64.
func CastI64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, errcode.Wrap(errcode.CastingFailure, "cast %d to i64", v)
	}
	return int64(v), nil
}

// AbsU64 is the unsigned magnitude of v, defined for MinInt64.
func AbsU64(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}

func MaxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

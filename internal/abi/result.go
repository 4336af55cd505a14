// Package abi defines the byte layouts exchanged with foreign callers:
// 128-bit halves, optional values, and tagged results. Every layout is
// little-endian with the tag first and the payload aligned to 8.
package abi

import (
	"encoding/binary"
	"fmt"

	"PerpFFI/internal/errcode"
)

type ResultTag uint8

const (
	ResultOk ResultTag = iota
	ResultErr
)

// ResultHeaderSize covers tag u8, 3 pad bytes, and code u32.
const ResultHeaderSize = 8

// Result is either a value or an error code.
type Result[T any] struct {
	Tag   ResultTag
	Code  errcode.ErrorCode
	Value T
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Tag: ResultOk, Value: v}
}

func Err[T any](code errcode.ErrorCode) Result[T] {
	return Result[T]{Tag: ResultErr, Code: code}
}

// ToResult converts a (value, error) pair. Errors without a code become
// errcode.Internal.
func ToResult[T any](v T, err error) Result[T] {
	if err == nil {
		return Ok(v)
	}
	code, ok := errcode.From(err)
	if !ok || !code.Valid() {
		code = errcode.Internal
	}
	return Err[T](code)
}

func (r Result[T]) IsOk() bool { return r.Tag == ResultOk }

// Unwrap returns the value, or the code as an error.
func (r Result[T]) Unwrap() (T, error) {
	if r.Tag == ResultOk {
		return r.Value, nil
	}
	var zero T
	return zero, r.Code
}

// PutFunc writes v into exactly the payload bytes of dst.
type PutFunc[T any] func(dst []byte, v T)

// ResultSize is the encoded size of a result with a payload of n bytes.
func ResultSize(payload int) int { return ResultHeaderSize + payload }

// EncodeResult writes r into dst and returns the number of bytes written.
// Error results zero the payload.
func EncodeResult[T any](dst []byte, r Result[T], payload int, put PutFunc[T]) (int, error) {
	n := ResultSize(payload)
	if len(dst) < n {
		return 0, fmt.Errorf("result buffer is %d bytes, need %d", len(dst), n)
	}
	clear(dst[:n])
	dst[0] = byte(r.Tag)
	switch r.Tag {
	case ResultOk:
		put(dst[ResultHeaderSize:n], r.Value)
	case ResultErr:
		binary.LittleEndian.PutUint32(dst[4:8], uint32(r.Code))
	default:
		return 0, errcode.Wrap(errcode.InvalidBoundaryTag, "result tag %d", r.Tag)
	}
	return n, nil
}

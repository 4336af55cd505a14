package abi

import "PerpFFI/internal/errcode"

type OptionTag uint8

const (
	OptionSome OptionTag = iota
	OptionNone
)

// Option is a value that may be absent.
type Option[T any] struct {
	Tag   OptionTag
	Value T
}

func Some[T any](v T) Option[T] { return Option[T]{Tag: OptionSome, Value: v} }
func None[T any]() Option[T]    { return Option[T]{Tag: OptionNone} }

func (o Option[T]) Get() (T, bool) {
	if o.Tag == OptionSome {
		return o.Value, true
	}
	var zero T
	return zero, false
}

// Ptr returns a pointer to a copy of the value, or nil.
func (o Option[T]) Ptr() *T {
	if v, ok := o.Get(); ok {
		return &v
	}
	return nil
}

// OptionFromTag builds an option from a caller-supplied tag byte and value.
func OptionFromTag[T any](tag uint8, v T) (Option[T], error) {
	switch OptionTag(tag) {
	case OptionSome:
		return Some(v), nil
	case OptionNone:
		return None[T](), nil
	default:
		return Option[T]{}, errcode.Wrap(errcode.InvalidBoundaryTag, "option tag %d", tag)
	}
}

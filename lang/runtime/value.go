// Package runtime defines the boxed values that flow through the execution
// engine at run time, the heap cells used to share captured locals between
// a closure and its enclosing function, and the runtime error types raised
// by failed operations, explicit `die`/`throw`, and cooperative
// cancellation.
package runtime

import "github.com/jaccomoc/jactl-sub011/lang/types"

// Value is implemented by every runtime value manipulated by the execution
// engine.
type Value interface {
	// String returns the value's String() conversion, as used by
	// interpolation and print/println.
	String() string

	// Kind reports the dynamic type of the value.
	Kind() types.Kind

	// Truth returns the value's truthiness for use as a boolean condition.
	Truth() bool
}

// Ordered is implemented by values that support <, <=, >, >=, <=> and ==.
type Ordered interface {
	Value
	// Cmp returns negative, zero or positive according to whether the
	// receiver is less than, equal to, or greater than y. It returns an
	// error if y is not comparable to the receiver.
	Cmp(y Value) (int, error)
}

// Iterator yields a sequence of values one at a time, consumed lazily by
// list/map pipeline operations (map, filter, flatMap, limit, skip, ...).
// Exactly one of (value, error, done) is meaningful per call.
type Iterator interface {
	// Next returns the next value, or ok=false if the iterator is exhausted.
	// An error from a lazily-evaluated upstream stage surfaces here.
	Next() (v Value, ok bool, err error)
}

// Iterable is implemented by values that can produce an Iterator: LIST, MAP
// (iterates [key,value] pairs), STRING (iterates characters), and any
// ITERATOR value.
type Iterable interface {
	Value
	Iterate() Iterator
}

// Sequence is an Iterable of statically known length.
type Sequence interface {
	Iterable
	Len() int
}

// Indexable supports x[i] random access.
type Indexable interface {
	Value
	Index(i int) (Value, error)
	Len() int
}

// SettableIndex supports x[i] = v assignment.
type SettableIndex interface {
	Indexable
	SetIndex(i int, v Value) error
}

// Mapping supports x[k] lookup where k is not necessarily an int, and is
// implemented by MAP and INSTANCE (field access through index syntax).
type Mapping interface {
	Value
	Get(key Value) (v Value, found bool, err error)
}

// SettableMapping supports x[k] = v for a Mapping.
type SettableMapping interface {
	Mapping
	Set(key Value, v Value) error
}

// Side indicates which operand of a binary operator the receiver occupies;
// needed because some host types define asymmetric operators.
type Side bool

const (
	LeftSide  Side = false
	RightSide Side = true
)

// HasBinary is implemented by values that define their own behaviour for a
// binary operator token. Returning (nil, nil) declines the operation,
// letting the caller fall through to the builtin numeric/string rules.
type HasBinary interface {
	Value
	Binary(op string, y Value, side Side) (Value, error)
}

// HasUnary is implemented by values that define their own behaviour for a
// unary operator token (-, !, ~).
type HasUnary interface {
	Value
	Unary(op string) (Value, error)
}

// HasFields is implemented by values whose fields/methods can be read with
// dot-notation (INSTANCE values, and builtin types exposing methods).
type HasFields interface {
	Value
	Field(name string) (Value, error)
	FieldNames() []string
}

// HasSettableFields additionally supports x.field = v.
type HasSettableFields interface {
	HasFields
	SetField(name string, v Value) error
}

// NoSuchFieldError is returned by HasFields.Field/SetField when name does
// not exist on the receiver.
type NoSuchFieldError string

func (e NoSuchFieldError) Error() string { return "no such field or method: " + string(e) }

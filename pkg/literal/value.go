// Package literal implements the literal values used by directives and
// the restricted parser that produces them.
package literal

import (
	"math"
	"strconv"
	"strings"

	"github.com/raymyers/pypre/pkg/diag"
)

// Kind is the type of a literal value.
type Kind int

const (
	NoneKind Kind = iota
	BoolKind
	IntKind
	FloatKind
	StringKind
	TupleKind
)

func (k Kind) String() string {
	switch k {
	case NoneKind:
		return "NoneType"
	case BoolKind:
		return "bool"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case StringKind:
		return "str"
	case TupleKind:
		return "tuple"
	default:
		return "unknown"
	}
}

// Value is an immutable literal: None, a boolean, an integer, a float, a
// string or a tuple of values. The zero Value is None.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	elems []Value
}

// None returns the None value.
func None() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: BoolKind, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: IntKind, i: i} }

// Float returns a floating-point value.
func Float(f float64) Value { return Value{kind: FloatKind, f: f} }

// Str returns a string value.
func Str(s string) Value { return Value{kind: StringKind, s: s} }

// Tuple returns a tuple holding a copy of elems.
func Tuple(elems ...Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: TupleKind, elems: cp}
}

// IntTuple is a convenience for tuples of integers, such as version triples.
func IntTuple(ints ...int) Value {
	elems := make([]Value, len(ints))
	for i, n := range ints {
		elems[i] = Int(int64(n))
	}
	return Value{kind: TupleKind, elems: elems}
}

func (v Value) Kind() Kind       { return v.kind }
func (v Value) IsNone() bool     { return v.kind == NoneKind }
func (v Value) AsBool() bool     { return v.b }
func (v Value) AsInt() int64     { return v.i }
func (v Value) AsFloat() float64 { return v.f }
func (v Value) AsString() string { return v.s }

// Elems returns a copy of the tuple elements.
func (v Value) Elems() []Value {
	cp := make([]Value, len(v.elems))
	copy(cp, v.elems)
	return cp
}

// Len returns the number of tuple elements, or 0 for non-tuples.
func (v Value) Len() int { return len(v.elems) }

// Index returns the i-th tuple element.
func (v Value) Index(i int) Value { return v.elems[i] }

// Truthy reports the truth value used by #if: None, false, zero, the
// empty string and the empty tuple are false.
func (v Value) Truthy() bool {
	switch v.kind {
	case BoolKind:
		return v.b
	case IntKind:
		return v.i != 0
	case FloatKind:
		return v.f != 0
	case StringKind:
		return v.s != ""
	case TupleKind:
		return len(v.elems) > 0
	default:
		return false
	}
}

func (v Value) isNumeric() bool {
	return v.kind == BoolKind || v.kind == IntKind || v.kind == FloatKind
}

// integer view of bools and ints
func (v Value) intValue() int64 {
	if v.kind == BoolKind {
		if v.b {
			return 1
		}
		return 0
	}
	return v.i
}

func (v Value) floatValue() float64 {
	if v.kind == FloatKind {
		return v.f
	}
	return float64(v.intValue())
}

// Equal reports whether v and o are equal. Numbers compare by value across
// bool, int and float; values of unrelated kinds are never equal.
func (v Value) Equal(o Value) bool {
	if v.isNumeric() && o.isNumeric() {
		if v.kind == FloatKind || o.kind == FloatKind {
			return v.floatValue() == o.floatValue()
		}
		return v.intValue() == o.intValue()
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case NoneKind:
		return true
	case StringKind:
		return v.s == o.s
	case TupleKind:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders v against o, returning -1, 0 or +1. Only numbers,
// strings and tuples are ordered; any other pairing is a TypeKind error.
func (v Value) Compare(o Value) (int, error) {
	switch {
	case v.isNumeric() && o.isNumeric():
		if v.kind == FloatKind || o.kind == FloatKind {
			a, b := v.floatValue(), o.floatValue()
			if math.IsNaN(a) || math.IsNaN(b) {
				return 0, diag.Errorf(diag.TypeKind, "cannot order NaN")
			}
			return cmpOrdered(a, b), nil
		}
		return cmpOrdered(v.intValue(), o.intValue()), nil
	case v.kind == StringKind && o.kind == StringKind:
		return strings.Compare(v.s, o.s), nil
	case v.kind == TupleKind && o.kind == TupleKind:
		for i := 0; i < len(v.elems) && i < len(o.elems); i++ {
			if v.elems[i].Equal(o.elems[i]) {
				continue
			}
			return v.elems[i].Compare(o.elems[i])
		}
		return cmpOrdered(len(v.elems), len(o.elems)), nil
	}
	return 0, diag.Errorf(diag.TypeKind, "cannot order %s and %s", v.kind, o.kind)
}

func cmpOrdered[T int | int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String renders v in literal syntax; for any value produced by Parse,
// Parse(v.String()) yields an equal value.
func (v Value) String() string {
	switch v.kind {
	case BoolKind:
		if v.b {
			return "True"
		}
		return "False"
	case IntKind:
		return strconv.FormatInt(v.i, 10)
	case FloatKind:
		return formatFloat(v.f)
	case StringKind:
		return strconv.Quote(v.s)
	case TupleKind:
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = e.String()
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "None"
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

// Native converts v to plain Go values: nil, bool, int64, float64, string
// or []any.
func (v Value) Native() any {
	switch v.kind {
	case BoolKind:
		return v.b
	case IntKind:
		return v.i
	case FloatKind:
		return v.f
	case StringKind:
		return v.s
	case TupleKind:
		out := make([]any, len(v.elems))
		for i, e := range v.elems {
			out[i] = e.Native()
		}
		return out
	default:
		return nil
	}
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.Native(), nil
}

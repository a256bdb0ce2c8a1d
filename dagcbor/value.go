/*
Package dagcbor implements DAG-CBOR, IPLD's strict and canonical profile of
CBOR (RFC 8949). It provides a host-neutral Value type, a streaming decoder
that enforces every DAG-CBOR strictness rule (canonical key order, minimal
integer width on encode, finite-only floats, tag-42 links, bounded recursion),
and a canonical encoder that always produces the unique byte representation
for a given Value.

https://ipld.io/specs/codecs/dag-cbor/spec/
*/
package dagcbor

import (
	"fmt"
	"math"

	"github.com/hyphacoop/go-dagcbor/cid"
)

// ValueKind identifies which IPLD data-model variant a Value holds. (The
// error classification type in errors.go is named Kind.)
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindLink
	KindList
	KindMap
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindBytes:
		return "Bytes"
	case KindLink:
		return "Link"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	default:
		return "Unknown"
	}
}

// MapEntry is one key/value pair of a Map Value. A Map holds entries in
// whatever order they were built in; canonical order is imposed by the
// encoder, not by this type, so an Encode/Decode round trip returns the
// entries in canonical order rather than build order.
type MapEntry struct {
	Key   string
	Value Value
}

// Value is the IPLD data-model value: a tagged union over Null, Bool,
// Integer, Float, String, Bytes, Link, List, and Map.
//
// The zero Value is Null. Values are immutable once constructed; List and
// Map Values share their backing slices with whatever the caller passed to
// List/Map, so callers that need isolation should copy before constructing.
type Value struct {
	kind ValueKind

	b     bool
	neg   bool   // integer sign: true means the value is -1-mag
	mag   uint64 // integer magnitude
	f     float64
	s     string
	bytes []byte
	link  cid.Cid
	list  []Value
	m     []MapEntry
}

// Null returns the Null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a Bool Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int64 returns an Integer Value from a signed 64-bit magnitude. Every int64
// is representable in DAG-CBOR's ±(2^64-1) range.
func Int64(v int64) Value {
	if v < 0 {
		return Value{kind: KindInt, neg: true, mag: uint64(-(v + 1))}
	}
	return Value{kind: KindInt, mag: uint64(v)}
}

// Uint64 returns a non-negative Integer Value, including values above
// math.MaxInt64 that an int64 cannot hold.
func Uint64(v uint64) Value { return Value{kind: KindInt, mag: v} }

// NegInt64 returns the Integer Value -1-mag, the same representation CBOR
// major type 1 uses on the wire. This is the only way to construct the most
// negative representable value, -(2^64), which has no int64 equivalent.
func NegInt64(mag uint64) Value { return Value{kind: KindInt, neg: true, mag: mag} }

// Float64 returns a Float Value. v must be finite; Float64 does not validate
// this at construction time, but the encoder rejects non-finite floats with
// NumberOutOfRange (mirroring spec.md §4.2 rule 6).
func Float64(v float64) Value { return Value{kind: KindFloat, f: v} }

// String returns a String Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Bytes returns a Bytes Value. The slice is retained, not copied.
func Bytes(b []byte) Value { return Value{kind: KindBytes, bytes: b} }

// Link returns a Link Value wrapping c.
func Link(c cid.Cid) Value { return Value{kind: KindLink, link: c} }

// List returns a List Value. The slice is retained, not copied.
func List(items []Value) Value { return Value{kind: KindList, list: items} }

// Map returns a Map Value from entries in the given order. The encoder
// imposes canonical length-first key order independently; this constructor
// does not sort or validate key uniqueness (the decoder does, per §4.2 rule
// 3 — a Map built directly via this constructor is the caller's
// responsibility).
func Map(entries []MapEntry) Value { return Value{kind: KindMap, m: entries} }

// Kind reports which variant v holds.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns v's boolean value, or an error if v is not Bool.
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, fmt.Errorf("dagcbor: value is %s, not Bool", v.kind)
	}
	return v.b, nil
}

// IsNegative reports whether v is a negative Integer. Only meaningful when
// v.Kind() == KindInt.
func (v Value) IsNegative() bool { return v.kind == KindInt && v.neg }

// Magnitude returns the raw CBOR-wire magnitude of an Integer Value: for a
// non-negative integer this is the value itself, for a negative integer this
// is -1-v. Only meaningful when v.Kind() == KindInt.
func (v Value) Magnitude() uint64 { return v.mag }

// ErrIntegerOutOfRange is returned by AsInt64 when a decoded integer does not
// fit in an int64 (spec.md §9 "Integer range": values above math.MaxInt64 or
// below math.MinInt64 are valid DAG-CBOR but have no int64 representation).
var ErrIntegerOutOfRange = fmt.Errorf("dagcbor: integer out of int64 range")

// AsInt64 returns v's integer value as an int64, failing with
// ErrIntegerOutOfRange if the value doesn't fit (use Magnitude/IsNegative for
// the full ±(2^64-1) range).
func (v Value) AsInt64() (int64, error) {
	if v.kind != KindInt {
		return 0, fmt.Errorf("dagcbor: value is %s, not Integer", v.kind)
	}
	if v.neg {
		if v.mag > math.MaxInt64 {
			return 0, ErrIntegerOutOfRange
		}
		return -1 - int64(v.mag), nil
	}
	if v.mag > math.MaxInt64 {
		return 0, ErrIntegerOutOfRange
	}
	return int64(v.mag), nil
}

// AsUint64 returns v's integer value as a uint64, failing if v is negative.
func (v Value) AsUint64() (uint64, error) {
	if v.kind != KindInt {
		return 0, fmt.Errorf("dagcbor: value is %s, not Integer", v.kind)
	}
	if v.neg {
		return 0, fmt.Errorf("dagcbor: integer is negative, cannot represent as uint64")
	}
	return v.mag, nil
}

// AsFloat64 returns v's float value, or an error if v is not Float.
func (v Value) AsFloat64() (float64, error) {
	if v.kind != KindFloat {
		return 0, fmt.Errorf("dagcbor: value is %s, not Float", v.kind)
	}
	return v.f, nil
}

// AsString returns v's string value, or an error if v is not String.
func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", fmt.Errorf("dagcbor: value is %s, not String", v.kind)
	}
	return v.s, nil
}

// AsBytes returns v's byte value, or an error if v is not Bytes.
func (v Value) AsBytes() ([]byte, error) {
	if v.kind != KindBytes {
		return nil, fmt.Errorf("dagcbor: value is %s, not Bytes", v.kind)
	}
	return v.bytes, nil
}

// AsLink returns v's CID, or an error if v is not Link.
func (v Value) AsLink() (cid.Cid, error) {
	if v.kind != KindLink {
		return cid.Cid{}, fmt.Errorf("dagcbor: value is %s, not Link", v.kind)
	}
	return v.link, nil
}

// AsList returns v's elements, or an error if v is not List.
func (v Value) AsList() ([]Value, error) {
	if v.kind != KindList {
		return nil, fmt.Errorf("dagcbor: value is %s, not List", v.kind)
	}
	return v.list, nil
}

// AsMap returns v's entries, or an error if v is not Map.
func (v Value) AsMap() ([]MapEntry, error) {
	if v.kind != KindMap {
		return nil, fmt.Errorf("dagcbor: value is %s, not Map", v.kind)
	}
	return v.m, nil
}

// Equal reports whether v and o represent the same IPLD value. List order
// matters; Map comparison is order-independent (per spec.md §8 law 3,
// permutations of a Map's entries are the same value).
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.neg == o.neg && v.mag == o.mag
	case KindFloat:
		// Signed zeros differ: 0.0 and -0.0 have distinct F64 encodings.
		return (v.f == o.f && math.Signbit(v.f) == math.Signbit(o.f)) || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindString:
		return v.s == o.s
	case KindBytes:
		return string(v.bytes) == string(o.bytes)
	case KindLink:
		return v.link.Equals(o.link)
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		want := make(map[string]Value, len(o.m))
		for _, e := range o.m {
			want[e.Key] = e.Value
		}
		for _, e := range v.m {
			ov, ok := want[e.Key]
			if !ok || !e.Value.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

package dagcbor

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// reader is a bounds-checked cursor over an in-memory buffer. readBytes and
// readString return copies, so decoded values never alias buf.
//
// Grounded on the state{b,p} cursor used by the notjuliet-grove DAG-CBOR
// decoder (_examples/other_examples/19766868_notjuliet-grove__cbor-decode.go.go),
// adapted to return *Error with byte offsets instead of plain fmt.Errorf.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader { return &reader{buf: buf} }

// eof reports whether every byte has been consumed.
func (r *reader) eof() bool { return r.pos >= len(r.buf) }

func (r *reader) ensure(n int) error {
	if r.pos+n > len(r.buf) {
		return newErr(InvalidCbor, r.pos, "unexpected end of input: need %d bytes, have %d", n, len(r.buf)-r.pos)
	}
	return nil
}

func (r *reader) readUint8() (byte, error) {
	if err := r.ensure(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) readUint16() (uint16, error) {
	if err := r.ensure(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) readUint32() (uint32, error) {
	if err := r.ensure(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) readUint64() (uint64, error) {
	if err := r.ensure(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// readFloat32 reads a CBOR major-7 F32 simple value, rejecting non-finite
// results per spec.md §4.2 rule 6.
func (r *reader) readFloat32() (float64, error) {
	bits, err := r.readUint32()
	if err != nil {
		return 0, err
	}
	v := math.Float32frombits(bits)
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		return 0, newErr(NumberOutOfRange, r.pos, "non-finite float (NaN/Infinity are forbidden)")
	}
	return float64(v), nil
}

// readFloat64 reads a CBOR major-7 F64 simple value, rejecting non-finite
// results per spec.md §4.2 rule 6.
func (r *reader) readFloat64() (float64, error) {
	bits, err := r.readUint64()
	if err != nil {
		return 0, err
	}
	v := math.Float64frombits(bits)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, newErr(NumberOutOfRange, r.pos, "non-finite float (NaN/Infinity are forbidden)")
	}
	return v, nil
}

// readTypeInfo reads the initial byte of a CBOR item, splitting it into its
// major type (0-7) and additional info (0-31).
func (r *reader) readTypeInfo() (major, info byte, err error) {
	b, err := r.readUint8()
	if err != nil {
		return 0, 0, err
	}
	return b >> 5, b & 0x1f, nil
}

// readArgument decodes the length/value field that follows a major-type
// prelude, per the additional-info tiers in RFC 8949 §3.1: immediate for
// info < 24, then 1/2/4/8 follow-on bytes for info 24/25/26/27. Indefinite
// length (info 31) and the reserved info values 28-30 are rejected here with
// UnsupportedFeature.
//
// This package does not enforce minimal-width encoding on decode: spec.md
// §4.2 rule 1 explicitly permits a decoder to accept non-minimal forms, and
// the Rust reference this spec was distilled from (original_source/src/lib.rs)
// does not add such a check either — it decodes through cbor4ii's packed
// reader with no extra canonicality gate of its own. Minimality is only
// required of the encoder (see writer.go).
func (r *reader) readArgument(info byte) (uint64, error) {
	switch {
	case info < 24:
		return uint64(info), nil
	case info == 24:
		v, err := r.readUint8()
		return uint64(v), err
	case info == 25:
		v, err := r.readUint16()
		return uint64(v), err
	case info == 26:
		v, err := r.readUint32()
		return uint64(v), err
	case info == 27:
		v, err := r.readUint64()
		return v, err
	default:
		return 0, newErr(UnsupportedFeature, r.pos, "indefinite length or reserved additional info %d", info)
	}
}

func (r *reader) readBytes(n uint64) ([]byte, error) {
	if n > uint64(len(r.buf)-r.pos) {
		return nil, newErr(InvalidCbor, r.pos, "unexpected end of input reading %d bytes, have %d", n, len(r.buf)-r.pos)
	}
	b := make([]byte, n)
	copy(b, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return b, nil
}

func (r *reader) readString(n uint64) (string, error) {
	b, err := r.readBytes(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", newErr(InvalidCbor, r.pos, "text string is not valid UTF-8")
	}
	return string(b), nil
}

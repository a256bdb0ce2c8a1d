package dagcbor

import (
	"encoding/binary"
	"math"
)

// cbor major types, per RFC 8949 §3.1.
const (
	majorUnsigned = 0
	majorNegative = 1
	majorBytes    = 2
	majorString   = 3
	majorArray    = 4
	majorMap      = 5
	majorTag      = 6
	majorSimple   = 7
)

// major-7 simple value markers this profile permits (spec.md §4.2 rule 7).
const (
	simpleFalse = 20
	simpleTrue  = 21
	simpleNull  = 22
	simpleF32   = 26
	simpleF64   = 27
)

const linkTagNumber = 42

// writer is a growable in-memory byte sink. Every write here is the
// canonical/minimal-width encoding; DAG-CBOR's encoder has no non-canonical
// mode to opt into (spec.md §4.2 rule 1: "the encoder MUST emit the minimum
// form").
//
// Grounded on argon-chat-cbor.go/writer.go's writeMinimalInitialByte, adapted
// down to the single always-canonical mode this profile requires (no
// indefinite-length, no float16/conformance-mode branching).
type writer struct {
	buf []byte
}

func newWriter(sizeHint int) *writer {
	if sizeHint <= 0 {
		sizeHint = 64
	}
	return &writer{buf: make([]byte, 0, sizeHint)}
}

func (w *writer) bytes() []byte { return w.buf }

// writeHead writes the initial byte (and any follow-on length bytes) for
// major type mt carrying argument value, using the minimal width.
func (w *writer) writeHead(mt byte, value uint64) {
	switch {
	case value < 24:
		w.buf = append(w.buf, mt<<5|byte(value))
	case value <= math.MaxUint8:
		w.buf = append(w.buf, mt<<5|24, byte(value))
	case value <= math.MaxUint16:
		w.buf = append(w.buf, mt<<5|25)
		w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(value))
	case value <= math.MaxUint32:
		w.buf = append(w.buf, mt<<5|26)
		w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(value))
	default:
		w.buf = append(w.buf, mt<<5|27)
		w.buf = binary.BigEndian.AppendUint64(w.buf, value)
	}
}

func (w *writer) writeRaw(b []byte) { w.buf = append(w.buf, b...) }

func (w *writer) writeNull() { w.buf = append(w.buf, majorSimple<<5|simpleNull) }

func (w *writer) writeBool(b bool) {
	if b {
		w.buf = append(w.buf, majorSimple<<5|simpleTrue)
		return
	}
	w.buf = append(w.buf, majorSimple<<5|simpleFalse)
}

// writeInt writes an Integer Value using its wire sign+magnitude
// representation directly (see Value.neg/Value.mag), matching spec.md §4.5:
// "negative integers emit as major 1 with -1-v as u64; positive as major 0".
func (w *writer) writeInt(neg bool, mag uint64) {
	if neg {
		w.writeHead(majorNegative, mag)
		return
	}
	w.writeHead(majorUnsigned, mag)
}

// writeFloat64 always emits the 9-byte F64 form, per spec.md §4.2 rule 6 and
// §4.5: "Float values MUST be emitted as F64 ... regardless of value
// magnitude".
func (w *writer) writeFloat64(v float64) {
	w.buf = append(w.buf, majorSimple<<5|simpleF64)
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
}

func (w *writer) writeBytesHeader(n int) { w.writeHead(majorBytes, uint64(n)) }

func (w *writer) writeBytes(b []byte) {
	w.writeBytesHeader(len(b))
	w.writeRaw(b)
}

func (w *writer) writeString(s string) {
	w.writeHead(majorString, uint64(len(s)))
	w.writeRaw([]byte(s))
}

func (w *writer) writeArrayHeader(n int) { w.writeHead(majorArray, uint64(n)) }

func (w *writer) writeMapHeader(n int) { w.writeHead(majorMap, uint64(n)) }

// writeLinkHeader writes tag(42) and the byte-string length header for a CID
// of cidLen bytes (the 0x00 prefix plus the CID bytes themselves), without
// materializing an intermediate buffer — the length-prefix optimization
// spec.md §4.5 recommends. Callers follow with writeRaw([]byte{0x00}) then
// writeRaw(cidBytes).
func (w *writer) writeLinkHeader(cidLen int) {
	w.writeHead(majorTag, linkTagNumber)
	w.writeBytesHeader(1 + cidLen)
}

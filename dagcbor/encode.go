package dagcbor

import (
	"math"
	"sort"

	"github.com/hyphacoop/go-dagcbor/cid"
)

// Encode produces the canonical DAG-CBOR encoding of v (spec.md §6.1
// encode_dag_cbor). Two equal Values always produce byte-identical output;
// see spec.md §8 laws 1-3.
func Encode(v Value, opts ...EncodeOptions) ([]byte, error) {
	var o EncodeOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	w := newWriter(64)
	if err := encodeValue(w, v, o); err != nil {
		return nil, err
	}
	return w.bytes(), nil
}

// encodeValue dispatches by Value kind. Scalar kinds are ordered first per
// spec.md §4.5 ("fast paths for scalar kinds precede composite ones").
func encodeValue(w *writer, v Value, o EncodeOptions) error {
	switch v.kind {
	case KindNull:
		w.writeNull()
		return nil
	case KindBool:
		w.writeBool(v.b)
		return nil
	case KindInt:
		w.writeInt(v.neg, v.mag)
		return nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return newErr(NumberOutOfRange, -1, "cannot encode non-finite float %v", v.f)
		}
		w.writeFloat64(v.f)
		return nil
	case KindString:
		w.writeString(v.s)
		return nil
	case KindBytes:
		if o.CoerceBytesToLinks {
			if c, err := cid.DecodeBytes(v.bytes); err == nil {
				return encodeLink(w, c)
			}
		}
		w.writeBytes(v.bytes)
		return nil
	case KindLink:
		return encodeLink(w, v.link)
	case KindList:
		return encodeList(w, v.list, o)
	case KindMap:
		return encodeMap(w, v.m, o)
	default:
		return newErr(EncodeUnsupportedType, -1, "unknown value kind %d", v.kind)
	}
}

// encodeLink emits tag(42) || byte_string(1+len(cidBytes)) || 0x00 ||
// cidBytes, writing the header and the 0x00 prefix directly instead of
// concatenating into a temporary buffer first — the length-prefix
// optimization spec.md §4.5 recommends.
func encodeLink(w *writer, c cid.Cid) error {
	if !c.Defined() {
		return newErr(EncodeUnsupportedType, -1, "cannot encode an undefined CID as a Link")
	}
	cidBytes := c.Bytes()
	w.writeLinkHeader(len(cidBytes))
	w.writeRaw([]byte{0x00})
	w.writeRaw(cidBytes)
	return nil
}

func encodeList(w *writer, items []Value, o EncodeOptions) error {
	w.writeArrayHeader(len(items))
	for i := range items {
		if err := encodeValue(w, items[i], o); err != nil {
			return err
		}
	}
	return nil
}

// sortedEntry pairs a map key with the original index of its value, per
// spec.md §4.5: "keys are gathered into a buffer of (key_string,
// original_index) pairs and sorted by length-first/byte order".
type sortedEntry struct {
	key string
	idx int
}

func encodeMap(w *writer, entries []MapEntry, o EncodeOptions) error {
	sorted := make([]sortedEntry, len(entries))
	for i, e := range entries {
		sorted[i] = sortedEntry{key: e.Key, idx: i}
	}
	sort.Slice(sorted, func(i, j int) bool { return keyLess(sorted[i].key, sorted[j].key) })

	// Defensive re-check: duplicate keys would have been rejected on
	// decode, but a Map built directly via the Map constructor has not
	// necessarily gone through that check (spec.md §4.5: "encode MAY
	// defensively re-check by detecting equal-adjacent keys after sort").
	for i := 1; i < len(sorted); i++ {
		if sorted[i].key == sorted[i-1].key {
			return newErr(NonCanonical, -1, "duplicate map key %q", sorted[i].key)
		}
	}

	w.writeMapHeader(len(entries))
	for _, se := range sorted {
		w.writeString(se.key)
		if err := encodeValue(w, entries[se.idx].Value, o); err != nil {
			return err
		}
	}
	return nil
}

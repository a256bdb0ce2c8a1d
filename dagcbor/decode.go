package dagcbor

import "github.com/hyphacoop/go-dagcbor/cid"

// frame tracks one level of array/map nesting while decoding. Using an
// explicit stack instead of Go call-stack recursion is the "implementations
// targeting deep-tree workloads should convert to an explicit work stack"
// design spec.md §9 calls out; it also makes the recursion bound (§4.2 rule
// 8) a plain slice-length check instead of a runtime stack-overflow risk.
//
// Grounded on the container stack in
// _examples/other_examples/19766868_notjuliet-grove__cbor-decode.go.go,
// adapted to track map key/value alternation explicitly (needKey) rather
// than inferring it from a nil pointer, and to drive a Builder instead of
// building Go maps/slices directly.
type frame struct {
	isMap     bool
	ctx       any
	remaining uint64

	needKey    bool
	currKey    string
	prevKeySet bool
	prevKey    string
}

// keyLess reports whether a sorts strictly before b under DAG-CBOR's
// length-first map key order (spec.md §4.2 rule 3).
func keyLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

func decodeMapKey(r *reader, f *frame) (string, error) {
	start := r.pos
	major, info, err := r.readTypeInfo()
	if err != nil {
		return "", err
	}
	if major != majorString {
		return "", newErr(UnsupportedFeature, start, "map key must be a text string, got major type %d", major)
	}
	arg, err := r.readArgument(info)
	if err != nil {
		return "", err
	}
	if err := checkBound(r, arg, 1); err != nil {
		return "", err
	}
	key, err := r.readString(arg)
	if err != nil {
		return "", err
	}
	if f.prevKeySet && !keyLess(f.prevKey, key) {
		return "", newErr(NonCanonical, start, "map keys must be sorted and unique: %q does not sort strictly after %q", key, f.prevKey)
	}
	f.prevKey = key
	f.prevKeySet = true
	return key, nil
}

// checkBound rejects a declared length that could not possibly be satisfied
// by the remaining input, so a malicious n bytes/elements never causes an
// allocation disproportionate to the actual input size (spec.md §5: "an
// attacker-controlled n ... MUST be bounded by the remaining input length
// before any capacity is reserved").
func checkBound(r *reader, n uint64, minBytesPerUnit uint64) error {
	remaining := uint64(len(r.buf) - r.pos)
	if minBytesPerUnit != 0 && n > remaining/minBytesPerUnit {
		return newErr(InvalidCbor, r.pos, "declared length %d exceeds remaining input (%d bytes left)", n, remaining)
	}
	return nil
}

func decodeLink(r *reader) (cid.Cid, error) {
	start := r.pos
	major, info, err := r.readTypeInfo()
	if err != nil {
		return cid.Cid{}, err
	}
	if major != majorBytes {
		return cid.Cid{}, newErr(InvalidCid, start, "tag 42 content must be a byte string, got major type %d", major)
	}
	arg, err := r.readArgument(info)
	if err != nil {
		return cid.Cid{}, err
	}
	if err := checkBound(r, arg, 1); err != nil {
		return cid.Cid{}, err
	}
	if arg == 0 {
		return cid.Cid{}, newErr(InvalidCid, start, "zero-length CID byte string")
	}
	raw, err := r.readBytes(arg)
	if err != nil {
		return cid.Cid{}, err
	}
	if raw[0] != 0x00 {
		return cid.Cid{}, newErr(InvalidCid, start, "expected 0x00 identity-multibase prefix, got 0x%02x", raw[0])
	}
	c, err := cid.DecodeBytes(raw[1:])
	if err != nil {
		return cid.Cid{}, wrapErr(InvalidCid, start, err, "invalid CID under tag 42")
	}
	return c, nil
}

// decodeItem decodes a single CBOR item. For a non-empty array or map it
// pushes a new frame onto *stack and returns pushed=true instead of a value;
// the caller's loop then proceeds to decode that container's first element.
func decodeItem(r *reader, b Builder, stack *[]frame, maxDepth int) (value any, pushed bool, err error) {
	start := r.pos
	major, info, err := r.readTypeInfo()
	if err != nil {
		return nil, false, err
	}

	var arg uint64
	if major != majorSimple {
		arg, err = r.readArgument(info)
		if err != nil {
			return nil, false, err
		}
	}

	switch major {
	case majorUnsigned:
		v, err := b.Int(false, arg)
		return v, false, err
	case majorNegative:
		v, err := b.Int(true, arg)
		return v, false, err
	case majorBytes:
		if err := checkBound(r, arg, 1); err != nil {
			return nil, false, err
		}
		bs, err := r.readBytes(arg)
		if err != nil {
			return nil, false, err
		}
		v, err := b.Bytes(bs)
		return v, false, err
	case majorString:
		if err := checkBound(r, arg, 1); err != nil {
			return nil, false, err
		}
		s, err := r.readString(arg)
		if err != nil {
			return nil, false, err
		}
		v, err := b.String(s)
		return v, false, err
	case majorArray:
		if err := checkBound(r, arg, 1); err != nil {
			return nil, false, err
		}
		if arg == 0 {
			ctx, err := b.BeginList(0)
			if err != nil {
				return nil, false, err
			}
			v, err := b.EndList(ctx)
			return v, false, err
		}
		if len(*stack)+1 > maxDepth {
			return nil, false, newErr(RecursionLimit, start, "maximum nesting depth %d exceeded", maxDepth)
		}
		ctx, err := b.BeginList(int(arg))
		if err != nil {
			return nil, false, err
		}
		*stack = append(*stack, frame{isMap: false, ctx: ctx, remaining: arg})
		return nil, true, nil
	case majorMap:
		if err := checkBound(r, arg, 2); err != nil {
			return nil, false, err
		}
		if arg == 0 {
			ctx, err := b.BeginMap(0)
			if err != nil {
				return nil, false, err
			}
			v, err := b.EndMap(ctx)
			return v, false, err
		}
		if len(*stack)+1 > maxDepth {
			return nil, false, newErr(RecursionLimit, start, "maximum nesting depth %d exceeded", maxDepth)
		}
		ctx, err := b.BeginMap(int(arg))
		if err != nil {
			return nil, false, err
		}
		*stack = append(*stack, frame{isMap: true, ctx: ctx, remaining: arg, needKey: true})
		return nil, true, nil
	case majorTag:
		if arg != linkTagNumber {
			return nil, false, newErr(UnsupportedFeature, start, "tag %d is not supported (only tag 42 links)", arg)
		}
		c, err := decodeLink(r)
		if err != nil {
			return nil, false, err
		}
		v, err := b.Link(c)
		return v, false, err
	case majorSimple:
		switch info {
		case simpleFalse:
			v, err := b.Bool(false)
			return v, false, err
		case simpleTrue:
			v, err := b.Bool(true)
			return v, false, err
		case simpleNull:
			v, err := b.Null()
			return v, false, err
		case simpleF32:
			f, err := r.readFloat32()
			if err != nil {
				return nil, false, err
			}
			v, err := b.Float(f)
			return v, false, err
		case simpleF64:
			f, err := r.readFloat64()
			if err != nil {
				return nil, false, err
			}
			v, err := b.Float(f)
			return v, false, err
		default:
			return nil, false, newErr(UnsupportedFeature, start, "simple value (info %d) is not permitted", info)
		}
	default:
		return nil, false, newErr(InvalidCbor, start, "invalid major type %d", major)
	}
}

// decodeValue decodes exactly one DAG-CBOR item from r, driving b, bounded
// to maxDepth levels of array/map nesting (a tag-42 link is a leaf and does
// not count). It does not check for
// trailing data; callers that need that (decode_dag_cbor) check r.eof()
// themselves.
func decodeValue(r *reader, b Builder, maxDepth int) (any, error) {
	var stack []frame
	var cur any

	for {
		if n := len(stack); n > 0 && stack[n-1].isMap && stack[n-1].needKey {
			key, err := decodeMapKey(r, &stack[n-1])
			if err != nil {
				return nil, err
			}
			stack[n-1].currKey = key
			stack[n-1].needKey = false
			continue
		}

		val, pushed, err := decodeItem(r, b, &stack, maxDepth)
		if err != nil {
			return nil, err
		}
		if pushed {
			continue
		}
		cur = val

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.isMap {
				if err := b.MapInsert(top.ctx, top.currKey, cur); err != nil {
					return nil, wrapErr(EncodeUnsupportedType, r.pos, err, "builder rejected map entry %q", top.currKey)
				}
				top.needKey = true
				top.remaining--
			} else {
				if err := b.ListAppend(top.ctx, cur); err != nil {
					return nil, wrapErr(EncodeUnsupportedType, r.pos, err, "builder rejected list element")
				}
				top.remaining--
			}

			if top.remaining > 0 {
				break
			}

			var finished any
			var ferr error
			if top.isMap {
				finished, ferr = b.EndMap(top.ctx)
			} else {
				finished, ferr = b.EndList(top.ctx)
			}
			if ferr != nil {
				return nil, ferr
			}
			cur = finished
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			return cur, nil
		}
	}
}

// DecodeWithBuilder decodes exactly one DAG-CBOR item from data using a
// caller-supplied Builder, returning the builder's value along with the
// number of bytes consumed. It does not check for trailing data.
// dagcbor.Decode is a thin wrapper around it using the package's own Value
// builder; the car package decodes its header and blocks through Decode on
// exact sub-slices.
func DecodeWithBuilder(data []byte, b Builder, opts DecodeOptions) (value any, consumed int, err error) {
	r := newReader(data)
	v, err := decodeValue(r, b, opts.maxDepth())
	if err != nil {
		return nil, r.pos, err
	}
	return v, r.pos, nil
}

// Decode parses exactly one DAG-CBOR value from data, failing with
// TrailingData if any bytes remain afterward (spec.md §6.1 decode_dag_cbor).
func Decode(data []byte, opts ...DecodeOptions) (Value, error) {
	var o DecodeOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	v, consumed, err := DecodeWithBuilder(data, valueBuilder{}, o)
	if err != nil {
		return Value{}, err
	}
	if consumed != len(data) {
		return Value{}, newErr(TrailingData, consumed, "decode_dag_cbor: %d trailing byte(s) after value (use DecodeMulti for a CBOR sequence)", len(data)-consumed)
	}
	return v.(Value), nil
}

// DecodeMulti parses a sequence of back-to-back DAG-CBOR values from data,
// stopping (without returning an error) at the first value that fails to
// parse or at end of input — per spec.md §6.1, decode_dag_cbor_multi "stops
// at first parse error, does not raise".
func DecodeMulti(data []byte, opts ...DecodeOptions) []Value {
	var o DecodeOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	r := newReader(data)
	var out []Value
	for !r.eof() {
		v, err := decodeValue(r, valueBuilder{}, o.maxDepth())
		if err != nil {
			break
		}
		out = append(out, v.(Value))
	}
	return out
}

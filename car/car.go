package car

import (
	"bytes"

	"github.com/multiformats/go-varint"

	"github.com/hyphacoop/go-dagcbor/cid"
	"github.com/hyphacoop/go-dagcbor/dagcbor"
)

// Decode demultiplexes a CAR v1 byte string (spec.md §4.6/§6.1
// decode_car), returning the decoded and validated header alongside a map
// from each block's raw CID bytes to its decoded DAG-CBOR value.
//
// Grounded on the iteration shape of
// _examples/other_examples/4f2e0b2a_ipld-go-car__v3-block_reader.go.go
// (NewBlockReader/Next), collapsed to CAR v1 only and to an in-memory byte
// slice rather than an io.Reader, per this spec's non-goal of streaming
// (chunked) decode.
func Decode(data []byte, opts ...dagcbor.DecodeOptions) (Header, map[string]dagcbor.Value, error) {
	var o dagcbor.DecodeOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	headerLen, n, err := varint.FromUvarint(data)
	if err != nil {
		return Header{}, nil, wrapCarErr(0, err, "failed to read CAR header length")
	}
	pos := n

	if headerLen > uint64(len(data)-pos) {
		return Header{}, nil, newCarErr("declared header length %d exceeds remaining input (%d bytes left)", headerLen, len(data)-pos)
	}
	headerBytes := data[pos : pos+int(headerLen)]
	pos += int(headerLen)

	// The header's DAG-CBOR decode is bounded to exactly headerBytes — the
	// "bound it" resolution of spec.md §9's open question, rather than
	// decoding directly off the shared cursor and trusting the decoder to
	// stop at the right offset (what the original Rust implementation
	// does; see SPEC_FULL.md §5).
	headerVal, err := dagcbor.Decode(headerBytes, o)
	if err != nil {
		return Header{}, nil, wrapCarErr(0, err, "failed to decode CAR header")
	}

	header, err := parseHeader(headerVal)
	if err != nil {
		return Header{}, nil, err
	}

	blocks := make(map[string]dagcbor.Value)

	for pos < len(data) {
		recordLen, n, err := varint.FromUvarint(data[pos:])
		if err != nil {
			// Mirrors the original implementation: a failed length read at
			// a record boundary is treated as a clean end of input, not an
			// error (trailing garbage after the last block is tolerated).
			break
		}
		pos += n

		if recordLen > uint64(len(data)-pos) {
			return Header{}, nil, newCarErr("truncated record: declared length %d exceeds remaining input (%d bytes left)", recordLen, len(data)-pos)
		}

		record := data[pos : pos+int(recordLen)]
		cidLen, c, err := cid.FromReader(bytes.NewReader(record))
		if err != nil {
			return Header{}, nil, wrapCarErr(pos, err, "failed to read CID of block")
		}
		if c.Codec() != cid.CodecDagCbor {
			return Header{}, nil, newCarErr("unsupported codec 0x%x for block %s; only dag-cbor (0x71) is supported", c.Codec(), c)
		}

		blockBytes := record[cidLen:]
		blockVal, err := dagcbor.Decode(blockBytes, o)
		if err != nil {
			return Header{}, nil, wrapCarErr(pos, err, "failed to decode block %s", c)
		}

		blocks[string(c.Bytes())] = blockVal
		pos += int(recordLen)
	}

	return header, blocks, nil
}

package car_test

import (
	"testing"

	"github.com/multiformats/go-varint"

	"github.com/hyphacoop/go-dagcbor/car"
	"github.com/hyphacoop/go-dagcbor/cid"
	"github.com/hyphacoop/go-dagcbor/dagcbor"
)

// buildCar assembles a CAR v1 byte string from a header Value and a list of
// already-DAG-CBOR-encoded blocks, mirroring the record framing spec.md §4.6
// describes: uvarint(len) || header, then uvarint(len) || cid || block for
// each record. Grounded on the iteration shape of
// _examples/other_examples/4f2e0b2a_ipld-go-car__v3-block_reader.go.go, run
// in reverse to construct rather than parse a CAR payload.
func buildCar(t *testing.T, version uint64, roots []cid.Cid, blocks [][]byte) []byte {
	t.Helper()

	rootVals := make([]dagcbor.Value, len(roots))
	for i, r := range roots {
		rootVals[i] = dagcbor.Link(r)
	}
	header := dagcbor.Map([]dagcbor.MapEntry{
		{Key: "version", Value: dagcbor.Uint64(version)},
		{Key: "roots", Value: dagcbor.List(rootVals)},
	})
	headerBytes, err := dagcbor.Encode(header)
	if err != nil {
		t.Fatal(err)
	}

	var out []byte
	out = append(out, varint.ToUvarint(uint64(len(headerBytes)))...)
	out = append(out, headerBytes...)

	for i, blockBytes := range blocks {
		if len(roots) == 0 {
			t.Fatal("buildCar needs at least one CID to attach to a block")
		}
		c := roots[i%len(roots)]
		record := append(append([]byte{}, c.Bytes()...), blockBytes...)
		out = append(out, varint.ToUvarint(uint64(len(record)))...)
		out = append(out, record...)
	}
	return out
}

func blockCid(t *testing.T, content []byte) cid.Cid {
	t.Helper()
	mh, err := cid.SumSha256(content)
	if err != nil {
		t.Fatal(err)
	}
	return cid.NewV1(cid.CodecDagCbor, mh)
}

func encodeBlock(t *testing.T, v dagcbor.Value) []byte {
	t.Helper()
	b, err := dagcbor.Encode(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// TestDecodeVersion2Rejected exercises spec.md §8 S7: a CAR whose header
// declares version 2 (this package only supports CAR v1) fails with
// CarFramingError.
func TestDecodeVersion2Rejected(t *testing.T) {
	block := encodeBlock(t, dagcbor.String("hello"))
	root := blockCid(t, block)
	data := buildCar(t, 2, []cid.Cid{root}, [][]byte{block})

	_, _, err := car.Decode(data)
	if err == nil {
		t.Fatal("expected error decoding a version-2 CAR header")
	}
	var de *dagcbor.Error
	if !asCarFramingError(err, &de) {
		t.Fatalf("expected CarFramingError, got %v", err)
	}
}

func asCarFramingError(err error, de **dagcbor.Error) bool {
	type unwrapper interface{ Unwrap() error }
	for err != nil {
		if e, ok := err.(*dagcbor.Error); ok {
			*de = e
			return e.Kind == dagcbor.CarFramingError
		}
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// TestDecodeBlockCount exercises law 5: a CAR with k blocks yields exactly k
// map entries, one per block, each decodable back to the Value it was built
// from.
func TestDecodeBlockCount(t *testing.T) {
	blockVals := []dagcbor.Value{
		dagcbor.String("first"),
		dagcbor.Int64(42),
		dagcbor.Map([]dagcbor.MapEntry{{Key: "k", Value: dagcbor.Bool(true)}}),
	}
	blocks := make([][]byte, len(blockVals))
	cids := make([]cid.Cid, len(blockVals))
	for i, v := range blockVals {
		blocks[i] = encodeBlock(t, v)
		cids[i] = blockCid(t, blocks[i])
	}

	data := buildCarMulti(t, 1, []cid.Cid{cids[0]}, cids, blocks)

	header, got, err := car.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if header.Version != 1 {
		t.Errorf("version = %d, want 1", header.Version)
	}
	if len(got) != len(blockVals) {
		t.Fatalf("got %d blocks, want %d", len(got), len(blockVals))
	}
	for i, c := range cids {
		v, ok := got[string(c.Bytes())]
		if !ok {
			t.Fatalf("block %d (%s) missing from decoded set", i, c)
		}
		if !v.Equal(blockVals[i]) {
			t.Errorf("block %d: got %+v, want %+v", i, v, blockVals[i])
		}
	}
}

// buildCarMulti is like buildCar but pairs each block with its own CID
// rather than cycling through a single root.
func buildCarMulti(t *testing.T, version uint64, roots []cid.Cid, cids []cid.Cid, blocks [][]byte) []byte {
	t.Helper()

	rootVals := make([]dagcbor.Value, len(roots))
	for i, r := range roots {
		rootVals[i] = dagcbor.Link(r)
	}
	header := dagcbor.Map([]dagcbor.MapEntry{
		{Key: "version", Value: dagcbor.Uint64(version)},
		{Key: "roots", Value: dagcbor.List(rootVals)},
	})
	headerBytes, err := dagcbor.Encode(header)
	if err != nil {
		t.Fatal(err)
	}

	var out []byte
	out = append(out, varint.ToUvarint(uint64(len(headerBytes)))...)
	out = append(out, headerBytes...)

	for i, blockBytes := range blocks {
		record := append(append([]byte{}, cids[i].Bytes()...), blockBytes...)
		out = append(out, varint.ToUvarint(uint64(len(record)))...)
		out = append(out, record...)
	}
	return out
}

// TestDecodeRejectsEmptyRoots exercises spec.md §4.6 step 2: a header with a
// zero-length roots list is invalid, even when a well-formed block is
// present in the body.
func TestDecodeRejectsEmptyRoots(t *testing.T) {
	block := encodeBlock(t, dagcbor.Null())
	c := blockCid(t, block)
	data := buildCarMulti(t, 1, nil, []cid.Cid{c}, [][]byte{block})
	_, _, err := car.Decode(data)
	if err == nil {
		t.Fatal("expected error decoding a CAR with no roots")
	}
}

// TestDecodeRejectsNonDagCborBlock exercises the codec check in spec.md
// §4.6: a block whose CID declares a codec other than dag-cbor (0x71) is
// rejected.
func TestDecodeRejectsNonDagCborBlock(t *testing.T) {
	rawContent := []byte("raw bytes, not dag-cbor")
	mh, err := cid.SumSha256(rawContent)
	if err != nil {
		t.Fatal(err)
	}
	rawCid := cid.NewV1(cid.CodecRaw, mh)

	header := dagcbor.Map([]dagcbor.MapEntry{
		{Key: "version", Value: dagcbor.Uint64(1)},
		{Key: "roots", Value: dagcbor.List([]dagcbor.Value{dagcbor.Link(rawCid)})},
	})
	headerBytes, err := dagcbor.Encode(header)
	if err != nil {
		t.Fatal(err)
	}

	var data []byte
	data = append(data, varint.ToUvarint(uint64(len(headerBytes)))...)
	data = append(data, headerBytes...)
	record := append(append([]byte{}, rawCid.Bytes()...), rawContent...)
	data = append(data, varint.ToUvarint(uint64(len(record)))...)
	data = append(data, record...)

	_, _, err = car.Decode(data)
	if err == nil {
		t.Fatal("expected error decoding a block with a non-dag-cbor codec")
	}
}

package cid_test

import (
	"bytes"
	"testing"

	"github.com/hyphacoop/go-dagcbor/cid"
)

func mustCid(t *testing.T, data []byte, codec uint64) cid.Cid {
	t.Helper()
	mh, err := cid.SumSha256(data)
	if err != nil {
		t.Fatal(err)
	}
	return cid.NewV1(codec, mh)
}

func TestStringBytesRoundTrip(t *testing.T) {
	c := mustCid(t, []byte("round trip me"), cid.CodecDagCbor)

	fromString, err := cid.Decode(c.String())
	if err != nil {
		t.Fatal(err)
	}
	if !c.Equals(fromString) {
		t.Fatalf("decode(%s) != original", c.String())
	}

	fromBytes, err := cid.DecodeBytes(c.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !c.Equals(fromBytes) {
		t.Fatalf("decodeBytes(%x) != original", c.Bytes())
	}
	if !bytes.Equal(c.Bytes(), fromString.Bytes()) {
		t.Fatal("byte representations diverged across forms")
	}
}

func TestFromReaderConsumesExactly(t *testing.T) {
	c := mustCid(t, []byte("trailing data test"), cid.CodecRaw)
	trailer := []byte{0xde, 0xad, 0xbe, 0xef}
	buf := append(append([]byte{}, c.Bytes()...), trailer...)

	n, got, err := cid.FromReader(bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	if n != len(c.Bytes()) {
		t.Fatalf("consumed %d bytes, want %d", n, len(c.Bytes()))
	}
	if !c.Equals(got) {
		t.Fatalf("got %s, want %s", got, c)
	}
}

func TestInfo(t *testing.T) {
	c := mustCid(t, []byte("info test"), cid.CodecDagCbor)
	info, err := c.Info()
	if err != nil {
		t.Fatal(err)
	}
	if info.Version != 1 {
		t.Errorf("version = %d, want 1", info.Version)
	}
	if info.Codec != cid.CodecDagCbor {
		t.Errorf("codec = 0x%x, want 0x%x", info.Codec, cid.CodecDagCbor)
	}
	if info.Hash.Size != 32 {
		t.Errorf("hash size = %d, want 32", info.Hash.Size)
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := cid.Decode("not a cid"); err == nil {
		t.Fatal("expected error decoding garbage string")
	}
	if _, err := cid.DecodeBytes([]byte{0x01}); err == nil {
		t.Fatal("expected error decoding truncated bytes")
	}
}

func TestMultibaseRoundTrip(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0xff}
	s, err := cid.EncodeMultibase('b', data)
	if err != nil {
		t.Fatal(err)
	}
	base, decoded, err := cid.DecodeMultibase(s)
	if err != nil {
		t.Fatal(err)
	}
	if base != 'b' {
		t.Errorf("base = %c, want b", base)
	}
	if !bytes.Equal(decoded, data) {
		t.Errorf("decoded = %x, want %x", decoded, data)
	}
}

func TestUndef(t *testing.T) {
	if cid.Undef.Defined() {
		t.Fatal("Undef should not be Defined")
	}
}

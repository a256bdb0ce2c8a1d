/*
Package cid provides CID parsing/formatting and multibase encode/decode for
the IPLD data model.

It is a thin shim over the multiformats ecosystem libraries
(github.com/ipfs/go-cid, github.com/multiformats/go-multibase,
github.com/multiformats/go-multihash): this package does not implement CID or
multibase itself, it only adapts those libraries to the narrower surface the
DAG-CBOR/CAR codec needs.

https://github.com/multiformats/cid
*/
package cid

import (
	"errors"
	"fmt"
	"io"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// Well-known multicodec codes relevant to this module.
const (
	// CodecDagCbor identifies DAG-CBOR encoded content (CAR v1 blocks must
	// use this codec; tag 42 links may carry a CID of any codec).
	CodecDagCbor = 0x71
	// CodecRaw identifies raw, uninterpreted bytes.
	CodecRaw = 0x55
)

// Cid is a Content Identifier: version || codec || multihash.
//
// The zero value is undefined; use Decode, DecodeBytes, or FromReader to
// obtain a valid Cid. Programs should store and pass Cid by value.
type Cid struct {
	c gocid.Cid
}

// Undef is the undefined Cid, equivalent to the zero value.
var Undef = Cid{c: gocid.Undef}

// FromGoCid wraps an already-parsed github.com/ipfs/go-cid value.
func FromGoCid(c gocid.Cid) Cid {
	return Cid{c: c}
}

// GoCid returns the underlying github.com/ipfs/go-cid value.
func (c Cid) GoCid() gocid.Cid {
	return c.c
}

// Decode parses a CID from its textual, multibase-encoded representation.
//
// CID version 0 (the legacy bare-base58-btc sha256 form with no multibase
// prefix) is also accepted.
func Decode(s string) (Cid, error) {
	c, err := gocid.Decode(s)
	if err != nil {
		return Cid{}, fmt.Errorf("invalid cid: %w", err)
	}
	return Cid{c: c}, nil
}

// DecodeBytes parses a CID from its binary representation
// (version-varint || codec-varint || multihash).
//
// Note this is not the representation used for a CID embedded in DAG-CBOR
// (tag 42); see the dagcbor package for that.
func DecodeBytes(b []byte) (Cid, error) {
	c, err := gocid.Cast(b)
	if err != nil {
		return Cid{}, fmt.Errorf("invalid cid: %w", err)
	}
	return Cid{c: c}, nil
}

// NewV1 builds a CIDv1 for the given multicodec from an already-computed
// multihash (such as one produced by SumSha256).
func NewV1(codec uint64, mh []byte) Cid {
	return Cid{c: gocid.NewCidV1(codec, mh)}
}

// SumSha256 computes a sha2-256 multihash of data, suitable for passing to
// NewV1.
func SumSha256(data []byte) ([]byte, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return nil, fmt.Errorf("invalid cid: %w", err)
	}
	return []byte(mh), nil
}

// FromReader reads a binary CID from r, consuming exactly the bytes that
// belong to it and leaving any following data (such as a CAR block payload)
// untouched. It returns the number of bytes consumed along with the Cid.
func FromReader(r io.Reader) (n int, c Cid, err error) {
	n, gc, err := gocid.CidFromReader(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, Cid{}, err
		}
		return 0, Cid{}, fmt.Errorf("invalid cid: %w", err)
	}
	return n, Cid{c: gc}, nil
}

// String returns the CID in its canonical textual form (multibase-prefixed).
func (c Cid) String() string {
	return c.c.String()
}

// Bytes returns the CID in binary format. Safe to modify.
func (c Cid) Bytes() []byte {
	return c.c.Bytes()
}

// Defined reports whether c holds an actual CID, as opposed to the zero
// value / Undef.
func (c Cid) Defined() bool {
	return c.c.Defined()
}

// Equals reports whether two CIDs are exactly the same.
func (c Cid) Equals(o Cid) bool {
	return c.c.Equals(o.c)
}

// Version returns the CID version (0 or 1).
func (c Cid) Version() uint64 {
	return c.c.Version()
}

// Codec returns the multicodec code identifying the content this CID
// addresses (e.g. 0x71 for dag-cbor, 0x55 for raw bytes).
func (c Cid) Codec() uint64 {
	return c.c.Type()
}

// HashInfo describes the multihash embedded in a Cid.
type HashInfo struct {
	// Code is the multihash function code (e.g. 0x12 for sha2-256).
	Code uint64
	// Size is the digest length in bytes.
	Size int
	// Digest is the raw hash digest.
	Digest []byte
}

// Hash decodes the multihash embedded in the CID.
func (c Cid) Hash() (HashInfo, error) {
	dmh, err := multihash.Decode(c.c.Hash())
	if err != nil {
		return HashInfo{}, fmt.Errorf("invalid cid: %w", err)
	}
	return HashInfo{Code: dmh.Code, Size: dmh.Length, Digest: dmh.Digest}, nil
}

// Info is the decomposed form of a Cid, as returned by the public
// decode_cid operation (spec.md §6.1).
type Info struct {
	Version uint64
	Codec   uint64
	Hash    HashInfo
}

// Info decomposes the Cid into its version, codec, and hash components.
func (c Cid) Info() (Info, error) {
	h, err := c.Hash()
	if err != nil {
		return Info{}, err
	}
	return Info{Version: c.Version(), Codec: c.Codec(), Hash: h}, nil
}

// DecodeMultibase decodes a self-describing multibase string, returning the
// base's code character and the decoded bytes.
func DecodeMultibase(s string) (base byte, data []byte, err error) {
	enc, data, err := multibase.Decode(s)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid multibase: %w", err)
	}
	return byte(enc), data, nil
}

// EncodeMultibase encodes data using the multibase base identified by its
// code character (e.g. 'b' for base32).
func EncodeMultibase(base byte, data []byte) (string, error) {
	s, err := multibase.Encode(multibase.Encoding(base), data)
	if err != nil {
		return "", fmt.Errorf("invalid multibase: %w", err)
	}
	return s, nil
}

/*
Package car implements the CAR v1 demultiplexer: header parsing/validation
and block-record iteration over a framed sequence of (length-prefix, CID,
block) records, delegating block decoding to the dagcbor package.

https://ipld.io/specs/transport/car/carv1/
*/
package car

import (
	"github.com/hyphacoop/go-dagcbor/cid"
	"github.com/hyphacoop/go-dagcbor/dagcbor"
)

// Header is the decoded and validated CAR v1 header: {"version": 1,
// "roots": [...]}. A Header value returned by this package has always
// passed the checks in spec.md §4.6 step 2.
type Header struct {
	Version uint64
	Roots   []cid.Cid
}

// parseHeader validates a decoded header Value against spec.md §4.6 step 2
// and the stricter root-CID check this implementation adds (see
// SPEC_FULL.md §5 "CAR root validation detail" — the Rust reference this
// spec was distilled from explicitly skips this check; this package does
// not).
func parseHeader(v dagcbor.Value) (Header, error) {
	entries, err := v.AsMap()
	if err != nil {
		return Header{}, newCarErr("header is not a map")
	}

	var versionVal, rootsVal *dagcbor.Value
	for i := range entries {
		switch entries[i].Key {
		case "version":
			versionVal = &entries[i].Value
		case "roots":
			rootsVal = &entries[i].Value
		}
	}

	if versionVal == nil {
		return Header{}, newCarErr("header has no \"version\" field")
	}
	version, err := versionVal.AsUint64()
	if err != nil {
		return Header{}, newCarErr("header \"version\" is not an integer")
	}
	if version != 1 {
		return Header{}, newCarErr("unsupported CAR version %d, only version 1 is supported", version)
	}

	if rootsVal == nil {
		return Header{}, newCarErr("header has no \"roots\" field")
	}
	rootList, err := rootsVal.AsList()
	if err != nil {
		return Header{}, newCarErr("header \"roots\" is not a list")
	}
	if len(rootList) == 0 {
		return Header{}, newCarErr("header \"roots\" must be non-empty")
	}

	roots := make([]cid.Cid, len(rootList))
	for i, rv := range rootList {
		c, err := rv.AsLink()
		if err != nil {
			return Header{}, newCarErr("root %d is not a Link/CID", i)
		}
		roots[i] = c
	}

	return Header{Version: version, Roots: roots}, nil
}

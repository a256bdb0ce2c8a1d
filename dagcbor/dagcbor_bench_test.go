package dagcbor_test

import (
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/hyphacoop/go-dagcbor/dagcbor"
)

// syntheticDoc builds an in-memory tree shaped like a typical small JSON/CBOR
// document (a handful of scalar fields plus a nested list of records),
// avoiding the missing testdata/twitter.json fixture the teacher's large
// benchmark reads from (_examples/hyphacoop-go-dasl/drisl/drisl_bench_large_test.go),
// which this pack does not carry.
func syntheticDoc() dagcbor.Value {
	records := make([]dagcbor.Value, 0, 50)
	for i := 0; i < 50; i++ {
		records = append(records, dagcbor.Map([]dagcbor.MapEntry{
			{Key: "id", Value: dagcbor.Int64(int64(i))},
			{Key: "name", Value: dagcbor.String("record number")},
			{Key: "active", Value: dagcbor.Bool(i%2 == 0)},
			{Key: "score", Value: dagcbor.Float64(float64(i) * 1.5)},
			{Key: "tags", Value: dagcbor.List([]dagcbor.Value{
				dagcbor.String("alpha"),
				dagcbor.String("beta"),
			})},
		}))
	}
	return dagcbor.Map([]dagcbor.MapEntry{
		{Key: "version", Value: dagcbor.Int64(1)},
		{Key: "title", Value: dagcbor.String("synthetic benchmark document")},
		{Key: "records", Value: dagcbor.List(records)},
	})
}

// syntheticDocGo is the same shape built as plain Go values, for comparison
// against github.com/fxamacker/cbor/v2 as an upstream baseline — grounded on
// internal/upstream_bench's role in the teacher repo (comparing the
// hand-rolled codec against the general-purpose one it forked).
func syntheticDocGo() map[string]any {
	records := make([]any, 0, 50)
	for i := 0; i < 50; i++ {
		records = append(records, map[string]any{
			"id":     i,
			"name":   "record number",
			"active": i%2 == 0,
			"score":  float64(i) * 1.5,
			"tags":   []any{"alpha", "beta"},
		})
	}
	return map[string]any{
		"version": 1,
		"title":   "synthetic benchmark document",
		"records": records,
	}
}

func BenchmarkMarshalSynthetic(b *testing.B) {
	v := syntheticDoc()
	encoded, err := dagcbor.Encode(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(encoded)))
	for b.Loop() {
		if _, err := dagcbor.Encode(v); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnmarshalSynthetic(b *testing.B) {
	v := syntheticDoc()
	encoded, err := dagcbor.Encode(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(encoded)))
	for b.Loop() {
		if _, err := dagcbor.Decode(encoded); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMarshalSyntheticUpstreamCbor(b *testing.B) {
	v := syntheticDocGo()
	encoded, err := cbor.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(encoded)))
	for b.Loop() {
		if _, err := cbor.Marshal(v); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnmarshalSyntheticUpstreamCbor(b *testing.B) {
	v := syntheticDocGo()
	encoded, err := cbor.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(encoded)))
	for b.Loop() {
		var out map[string]any
		if err := cbor.Unmarshal(encoded, &out); err != nil {
			b.Fatal(err)
		}
	}
}

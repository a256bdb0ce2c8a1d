package dagcbor

import "github.com/hyphacoop/go-dagcbor/cid"

// Builder is the host-neutral Value construction interface (spec.md §4.4).
// The decoder never constructs a concrete Value type directly — it drives a
// Builder through leaf and composite callbacks, which permits three kinds of
// realization: (a) an owned ADT such as this package's own valueBuilder, (b)
// a builder of native host objects, (c) a SAX-style event emitter. Every
// method returns an opaque handle (any) that the decoder threads back into
// later calls without inspecting it.
type Builder interface {
	Null() (any, error)
	Bool(b bool) (any, error)
	// Int receives the wire-level sign+magnitude representation: neg=false
	// means the value itself is mag, neg=true means the value is -1-mag.
	Int(neg bool, mag uint64) (any, error)
	Float(f float64) (any, error)
	Bytes(b []byte) (any, error)
	// String receives already UTF-8-validated content.
	String(s string) (any, error)
	Link(c cid.Cid) (any, error)

	// BeginList starts a list of n elements, returning a context handle.
	BeginList(n int) (any, error)
	// ListAppend appends child to the list identified by ctx.
	ListAppend(ctx any, child any) error
	// EndList finalizes the list, returning the completed value.
	EndList(ctx any) (any, error)

	// BeginMap starts a map of n entries, returning a context handle.
	BeginMap(n int) (any, error)
	// MapInsert inserts key/value into the map identified by ctx. The
	// decoder has already enforced key ordering and uniqueness before
	// calling this.
	MapInsert(ctx any, key string, value any) error
	// EndMap finalizes the map, returning the completed value.
	EndMap(ctx any) (any, error)
}

// valueBuilder is the default Builder, producing this package's own Value
// ADT. Decode and DecodeMulti use it internally.
type valueBuilder struct{}

type listCtx struct {
	items []Value
}

type mapCtx struct {
	entries []MapEntry
}

func (valueBuilder) Null() (any, error) { return Null(), nil }

func (valueBuilder) Bool(b bool) (any, error) { return Bool(b), nil }

func (valueBuilder) Int(neg bool, mag uint64) (any, error) {
	if neg {
		return NegInt64(mag), nil
	}
	return Uint64(mag), nil
}

func (valueBuilder) Float(f float64) (any, error) { return Float64(f), nil }

func (valueBuilder) Bytes(b []byte) (any, error) { return Bytes(b), nil }

func (valueBuilder) String(s string) (any, error) { return String(s), nil }

func (valueBuilder) Link(c cid.Cid) (any, error) { return Link(c), nil }

func (valueBuilder) BeginList(n int) (any, error) {
	return &listCtx{items: make([]Value, 0, n)}, nil
}

func (valueBuilder) ListAppend(ctx any, child any) error {
	lc := ctx.(*listCtx)
	lc.items = append(lc.items, child.(Value))
	return nil
}

func (valueBuilder) EndList(ctx any) (any, error) {
	lc := ctx.(*listCtx)
	return List(lc.items), nil
}

func (valueBuilder) BeginMap(n int) (any, error) {
	return &mapCtx{entries: make([]MapEntry, 0, n)}, nil
}

func (valueBuilder) MapInsert(ctx any, key string, value any) error {
	mc := ctx.(*mapCtx)
	mc.entries = append(mc.entries, MapEntry{Key: key, Value: value.(Value)})
	return nil
}

func (valueBuilder) EndMap(ctx any) (any, error) {
	mc := ctx.(*mapCtx)
	return Map(mc.entries), nil
}

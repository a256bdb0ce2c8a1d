package dagcbor

// DefaultMaxDepth is the recursion bound applied when DecodeOptions.MaxDepth
// is zero. Matches spec.md §8's property-test bound for randomized Value
// trees.
const DefaultMaxDepth = 32

// DecodeOptions configures Decode and DecodeMulti.
type DecodeOptions struct {
	// MaxDepth bounds array/map nesting. Zero means DefaultMaxDepth.
	MaxDepth int
}

func (o DecodeOptions) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// EncodeOptions configures Encode.
type EncodeOptions struct {
	// CoerceBytesToLinks, when true, makes the encoder attempt to parse
	// every Bytes value as a CID and, on success, emit it as a Link
	// instead. This is the "host language quirk" behavior spec.md §4.5 and
	// §9 describe for hosts with no distinct Link type; it defaults to
	// false because this package does have a distinct Link variant.
	CoerceBytesToLinks bool
}

package dagcbor

import "fmt"

// Kind classifies a dagcbor error.
type Kind int

const (
	// InvalidCbor covers truncated input, a malformed initial byte, a
	// declared length larger than the remaining input, or invalid UTF-8 in a
	// text string. Non-minimal length encodings are accepted on decode and
	// are not an error.
	InvalidCbor Kind = iota
	// UnsupportedFeature covers CBOR features outside the DAG-CBOR profile:
	// indefinite lengths, non-42 tags, non-string map keys, simple values
	// other than false/true/null/f32/f64.
	UnsupportedFeature
	// NonCanonical covers map keys that are out of order or not unique.
	NonCanonical
	// NumberOutOfRange covers non-finite floats and integers outside the
	// ±(2^64-1) range DAG-CBOR allows.
	NumberOutOfRange
	// RecursionLimit covers exceeding the configured maximum nesting depth.
	RecursionLimit
	// InvalidCid covers a CID that fails to parse, including a tag-42
	// payload with the wrong leading byte.
	InvalidCid
	// CarFramingError covers a malformed CAR v1 envelope: missing header,
	// version other than 1, empty roots, a block whose CID codec isn't
	// dag-cbor (0x71), or a truncated record.
	CarFramingError
	// TrailingData covers decode_dag_cbor leaving unread bytes behind.
	TrailingData
	// EncodeUnsupportedType covers a host value kind the encoder has no
	// representation for.
	EncodeUnsupportedType
)

func (k Kind) String() string {
	switch k {
	case InvalidCbor:
		return "InvalidCbor"
	case UnsupportedFeature:
		return "UnsupportedFeature"
	case NonCanonical:
		return "NonCanonical"
	case NumberOutOfRange:
		return "NumberOutOfRange"
	case RecursionLimit:
		return "RecursionLimit"
	case InvalidCid:
		return "InvalidCid"
	case CarFramingError:
		return "CarFramingError"
	case TrailingData:
		return "TrailingData"
	case EncodeUnsupportedType:
		return "EncodeUnsupportedType"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by this package's Decode, Encode and
// Marshal, and by the car package. The
// Value accessors (AsInt64 and friends) and Unmarshal's type-mismatch errors
// are plain errors instead. Callers that care about the failure category
// should use errors.As and inspect Kind, not string-match Error().
type Error struct {
	Kind Kind
	Msg  string
	// Offset is the byte offset into the input at which the error was
	// detected, or -1 when not applicable (e.g. encode-side errors).
	Offset int
	Err    error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Offset >= 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s at offset %d: %s: %v", e.Kind, e.Offset, e.Msg, e.Err)
		}
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, offset int, msg string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(msg, args...), Offset: offset}
}

func wrapErr(kind Kind, offset int, err error, msg string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(msg, args...), Offset: offset, Err: err}
}

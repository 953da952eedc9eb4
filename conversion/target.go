package conversion

import "strings"

// Kind names the semantic type a cell is converted to.
// Custom converters may declare kinds of their own.
type Kind string

const (
	// KindInt converts to int
	KindInt Kind = "int"
	// KindFloat converts to float64
	KindFloat Kind = "float"
	// KindString returns the cell verbatim
	KindString Kind = "string"
	// KindBool converts to bool
	KindBool Kind = "bool"
	// KindDateTime converts to time.Time (mutable moment)
	KindDateTime Kind = "DateTime"
	// KindDateTimeImmutable converts to time.Time (immutable moment)
	KindDateTimeImmutable Kind = "DateTimeImmutable"
	// KindDateTimeInterface converts to time.Time (moment interface target)
	KindDateTimeInterface Kind = "DateTimeInterface"
)

// builtinKinds lists every kind the default converter handles.
var builtinKinds = []Kind{
	KindInt,
	KindFloat,
	KindString,
	KindBool,
	KindDateTime,
	KindDateTimeImmutable,
	KindDateTimeInterface,
}

// isDateTime reports whether k is one of the date/time kinds
func (k Kind) isDateTime() bool {
	return k == KindDateTime || k == KindDateTimeImmutable || k == KindDateTimeInterface
}

// TargetType describes the destination of a conversion.
type TargetType struct {
	// Kind is the semantic type
	Kind Kind
	// Nullable allows empty and "null" cells to convert to nil
	Nullable bool
}

// Type returns the non-nullable TargetType of kind.
func Type(kind Kind) TargetType {
	return TargetType{Kind: kind}
}

// Nullable returns the nullable TargetType of kind.
func Nullable(kind Kind) TargetType {
	return TargetType{Kind: kind, Nullable: true}
}

// NonNull returns t with the nullability flag stripped.
func (t TargetType) NonNull() TargetType {
	t.Nullable = false
	return t
}

// String renders the type as "int" or "?int".
func (t TargetType) String() string {
	if t.Nullable {
		return "?" + string(t.Kind)
	}
	return string(t.Kind)
}

// ParseTargetType parses the String form of a TargetType, e.g. "?int".
func ParseTargetType(s string) TargetType {
	kind, nullable := strings.CutPrefix(strings.TrimSpace(s), "?")
	return TargetType{Kind: Kind(kind), Nullable: nullable}
}

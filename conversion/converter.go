package conversion

import (
	"slices"
	"strings"
	"time"
)

// ValueConverter converts raw cells to the Go value of a target type.
//
// Convert returns nil for null cells of nullable targets. Implementations
// report failures with *ConversionError so that callers can match them with
// errors.Is(err, ErrConversionFailed) or errors.Is(err, ErrTypeNotSupported).
type ValueConverter interface {
	// Convert converts value to the Go representation of target
	Convert(value string, target TargetType) (any, error)
	// Supports reports whether target can be converted, ignoring nullability
	Supports(target TargetType) bool
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithLocation sets the location used for date/time values without an offset.
// The default is time.UTC.
func WithLocation(loc *time.Location) ConverterOption {
	return func(c *Converter) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithLayouts adds time layouts tried after the built-in date/time formats.
func WithLayouts(layouts ...string) ConverterOption {
	return func(c *Converter) {
		c.layouts = append(c.layouts, layouts...)
	}
}

// Converter is the default ValueConverter.
//
// Numbers are coerced loosely: leading whitespace is skipped, the longest
// decimal prefix is used ("12abc" is 12, "1337.37" as int is 1337) and a
// value without numeric prefix, including "", is 0. Booleans are true for
// "1", "true" and "on" in any case and false otherwise. Date/time kinds
// accept ISO ("2020-02-04 13:37:37") and day-first European
// ("04.02.2020 13:37:37") formats. An empty cell for a non-nullable date/time
// kind fails with ErrConversionFailed; it is never read as the current time.
type Converter struct {
	location *time.Location
	layouts  []string
}

var _ ValueConverter = (*Converter)(nil)

// NewConverter creates the default converter.
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert implements ValueConverter.
func (c *Converter) Convert(value string, target TargetType) (any, error) {
	if IsNullValue(value, target) {
		return nil, nil
	}

	switch kind := target.Kind; {
	case kind == KindInt:
		return coerceInt(value), nil
	case kind == KindFloat:
		return coerceFloat(value), nil
	case kind == KindString:
		return value, nil
	case kind == KindBool:
		return parseBool(value), nil
	case kind.isDateTime():
		return c.convertDateTime(value, target)
	default:
		return nil, NewTypeNotSupported(target)
	}
}

// Supports implements ValueConverter.
func (c *Converter) Supports(target TargetType) bool {
	return slices.Contains(builtinKinds, target.Kind)
}

// convertDateTime parses value as any of the date/time kinds
func (c *Converter) convertDateTime(value string, target TargetType) (any, error) {
	t, err := parseDateTime(value, c.location, c.layouts)
	if err != nil {
		return nil, NewConversionFailed(value, target, err)
	}
	return t, nil
}

// IsNullValue reports whether value is null for target: the target must be
// nullable and the value either empty or "null" in any case, ignoring
// surrounding whitespace.
func IsNullValue(value string, target TargetType) bool {
	if !target.Nullable {
		return false
	}
	return value == "" || strings.EqualFold(strings.TrimSpace(value), "null")
}

// parseBool is true for "1", "true" and "on", case-insensitively; everything else is false.
func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on":
		return true
	default:
		return false
	}
}

package mapping

import (
	"fmt"
	"math"
	"reflect"
)

// ApplierKind tells a field applier from a setter applier.
type ApplierKind int

const (
	// ApplyNone is the kind of the zero Applier
	ApplyNone ApplierKind = iota
	// ApplyField writes the value into a struct field
	ApplyField
	// ApplySetter passes the value to a setter function
	ApplySetter
)

// String returns the kind name.
func (k ApplierKind) String() string {
	switch k {
	case ApplyField:
		return "field"
	case ApplySetter:
		return "setter"
	default:
		return "none"
	}
}

// Applier writes a converted value into a record of type T.
//
// The converted value is coerced to the destination type: nil becomes the
// zero value, pointer destinations are allocated, numeric values are
// converted between numeric types when they fit the destination and values of named string or bool types
// are converted from their underlying type. Anything else fails with
// ErrValueNotAssignable.
type Applier[T any] struct {
	kind  ApplierKind
	apply func(record *T, value any) error
}

// Field returns an Applier that stores the value in the field returned by field.
func Field[T, V any](field func(record *T) *V) Applier[T] {
	return Applier[T]{
		kind: ApplyField,
		apply: func(record *T, value any) error {
			v, err := assign[V](value)
			if err != nil {
				return err
			}
			*field(record) = v
			return nil
		},
	}
}

// Setter returns an Applier that passes the value to set.
// Method expressions such as (*Widget).SetPrice fit directly.
func Setter[T, V any](set func(record *T, value V)) Applier[T] {
	return Applier[T]{
		kind: ApplySetter,
		apply: func(record *T, value any) error {
			v, err := assign[V](value)
			if err != nil {
				return err
			}
			set(record, v)
			return nil
		},
	}
}

// CheckedSetter returns an Applier that passes the value to a setter able to
// reject it. The setter's error aborts the read.
func CheckedSetter[T, V any](set func(record *T, value V) error) Applier[T] {
	return Applier[T]{
		kind: ApplySetter,
		apply: func(record *T, value any) error {
			v, err := assign[V](value)
			if err != nil {
				return err
			}
			return set(record, v)
		},
	}
}

// fieldByIndex returns an Applier writing the struct field at index via reflection
func fieldByIndex[T any](index []int) Applier[T] {
	return Applier[T]{
		kind: ApplyField,
		apply: func(record *T, value any) error {
			return assignValue(reflect.ValueOf(record).Elem().FieldByIndex(index), value)
		},
	}
}

// Kind returns whether the applier writes a field or calls a setter.
func (a Applier[T]) Kind() ApplierKind {
	return a.kind
}

// IsZero reports whether the applier is unset.
func (a Applier[T]) IsZero() bool {
	return a.apply == nil
}

// Apply writes value into record.
func (a Applier[T]) Apply(record *T, value any) error {
	if a.apply == nil {
		return ErrMissingApplier
	}
	return a.apply(record, value)
}

// assign coerces value to V
func assign[V any](value any) (V, error) {
	if v, ok := value.(V); ok {
		return v, nil
	}

	var out V
	if err := assignValue(reflect.ValueOf(&out).Elem(), value); err != nil {
		return out, err
	}
	return out, nil
}

// assignValue stores value in the settable dst
func assignValue(dst reflect.Value, value any) error {
	if value == nil {
		dst.SetZero()
		return nil
	}

	src := reflect.ValueOf(value)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}

	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := assignValue(elem.Elem(), value); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	switch {
	case isNumeric(src.Kind()) && isNumeric(dst.Kind()):
		if overflows(dst, src) {
			return fmt.Errorf("%w: %v overflows %s", ErrValueNotAssignable, value, dst.Type())
		}
		dst.Set(src.Convert(dst.Type()))
		return nil
	case src.Kind() == reflect.String && dst.Kind() == reflect.String,
		src.Kind() == reflect.Bool && dst.Kind() == reflect.Bool:
		dst.Set(src.Convert(dst.Type()))
		return nil
	}

	return fmt.Errorf("%w: %T into %s", ErrValueNotAssignable, value, dst.Type())
}

// overflows reports whether the numeric src does not fit into dst
func overflows(dst, src reflect.Value) bool {
	switch {
	case dst.CanInt():
		switch {
		case src.CanInt():
			return dst.OverflowInt(src.Int())
		case src.CanUint():
			u := src.Uint()
			return u > math.MaxInt64 || dst.OverflowInt(int64(u))
		default:
			f := math.Trunc(src.Float())
			return math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 || dst.OverflowInt(int64(f))
		}
	case dst.CanUint():
		switch {
		case src.CanInt():
			i := src.Int()
			return i < 0 || dst.OverflowUint(uint64(i))
		case src.CanUint():
			return dst.OverflowUint(src.Uint())
		default:
			f := math.Trunc(src.Float())
			return math.IsNaN(f) || f < 0 || f >= math.MaxUint64 || dst.OverflowUint(uint64(f))
		}
	default:
		if src.CanFloat() {
			return dst.OverflowFloat(src.Float())
		}
		return false
	}
}

// isNumeric reports whether k is an integer or floating point kind
func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/csvreader/conversion"
)

// TagKey is the struct tag key read by Members.
const TagKey = "csv"

var timeType = reflect.TypeFor[time.Time]()

// Members derives the member table of the struct type T from its csv tags.
//
// The tag holds comma separated options:
//
//	index=N     read column N
//	title=T     read the column titled T
//	type=K      use conversion kind K instead of the one derived from the field type
//	nullable    treat empty and "null" cells as nil
//	-           ignore the field
//
// Exported fields without tag are members without declaration. Pointer
// fields are nullable. Int, uint and float fields map to KindInt and
// KindFloat, string and bool fields to KindString and KindBool and
// time.Time to KindDateTime. Fields promoted through embedded pointers are
// not visited. Titles containing a comma cannot be expressed in a tag; use
// a Member table or overrides instead.
func Members[T any]() ([]Member[T], error) {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidTag, typ)
	}

	var members []Member[T]
	for _, field := range reflect.VisibleFields(typ) {
		if field.Anonymous || !field.IsExported() || promotedThroughPointer(typ, field.Index) {
			continue
		}

		tag, ok := field.Tag.Lookup(TagKey)
		if tag == "-" {
			continue
		}

		member := Member[T]{
			Name:  field.Name,
			Apply: fieldByIndex[T](field.Index),
		}
		target, derived := targetOf(field.Type)
		member.Type = target

		if ok {
			if err := parseTag(tag, &member); err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %w", ErrInvalidTag, typ, field.Name, err)
			}
		}
		if !derived && member.Type.Kind == "" {
			if len(member.Declarations) == 0 {
				continue
			}
			return nil, fmt.Errorf("%w: %s.%s: cannot derive a conversion kind from %s, add type=",
				ErrInvalidTag, typ, field.Name, field.Type)
		}
		members = append(members, member)
	}
	return members, nil
}

// MustMembers is like Members but panics on error.
// It simplifies initialising package level member tables.
func MustMembers[T any]() []Member[T] {
	members, err := Members[T]()
	if err != nil {
		panic(err)
	}
	return members
}

// parseTag applies the tag options to member
func parseTag[T any](tag string, member *Member[T]) error {
	for _, opt := range strings.Split(tag, ",") {
		key, value, hasValue := strings.Cut(strings.TrimSpace(opt), "=")
		switch {
		case key == "":
			continue
		case key == "index" && hasValue:
			index, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("index %q is not a number", value)
			}
			member.Declarations = append(member.Declarations, Index(index))
		case key == "title" && hasValue:
			member.Declarations = append(member.Declarations, Title(value))
		case key == "type" && hasValue:
			parsed := conversion.ParseTargetType(value)
			if parsed.Kind == "" {
				return errors.New("empty type")
			}
			member.Type.Kind = parsed.Kind
			member.Type.Nullable = member.Type.Nullable || parsed.Nullable
		case key == "nullable" && !hasValue:
			member.Type.Nullable = true
		default:
			return fmt.Errorf("unknown option %q", opt)
		}
	}
	return nil
}

// targetOf derives the conversion target of a field type
func targetOf(t reflect.Type) (conversion.TargetType, bool) {
	var target conversion.TargetType
	if t.Kind() == reflect.Pointer {
		target.Nullable = true
		t = t.Elem()
	}

	if t == timeType {
		target.Kind = conversion.KindDateTime
		return target, true
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		target.Kind = conversion.KindInt
	case reflect.Float32, reflect.Float64:
		target.Kind = conversion.KindFloat
	case reflect.String:
		target.Kind = conversion.KindString
	case reflect.Bool:
		target.Kind = conversion.KindBool
	default:
		return target, false
	}
	return target, true
}

// promotedThroughPointer reports whether the field at index is reached
// through an embedded pointer
func promotedThroughPointer(t reflect.Type, index []int) bool {
	for _, i := range index[:len(index)-1] {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Pointer {
			return true
		}
		t = f.Type
	}
	return false
}

package mapping

import (
	"fmt"
	"reflect"
	"slices"
)

// Build resolves members against header into models, in member order.
//
// header is nil when the source has no header row. An IndexMapping uses
// its index as is; a TitleMapping uses the index of the first header entry
// equal to its title. Members without declarations are skipped. Building
// fails with a *Error on the first member that has several declarations,
// a TitleMapping without header row, an unknown title, a negative index,
// an unsupported declaration or no applier.
func Build[T any](header []string, members []Member[T]) ([]Model[T], error) {
	typeName := recordTypeName[T]()

	models := make([]Model[T], 0, len(members))
	for _, m := range members {
		qualified := typeName + "." + m.Name

		switch len(m.Declarations) {
		case 0:
			continue
		case 1:
		default:
			return nil, &Error{
				Code:    ErrMultipleMappingDeclarations,
				Member:  qualified,
				Message: fmt.Sprintf("Multiple mapping declarations found on %s.", qualified),
			}
		}

		index, err := resolveIndex(m.Declarations[0], header, qualified)
		if err != nil {
			return nil, err
		}

		if m.Apply.IsZero() {
			return nil, &Error{
				Code:    ErrMissingApplier,
				Member:  qualified,
				Message: fmt.Sprintf("No field or setter given for %s.", qualified),
			}
		}

		models = append(models, Model[T]{
			member:  m.Name,
			target:  m.Type,
			index:   index,
			applier: m.Apply,
		})
	}
	return models, nil
}

// resolveIndex returns the column index a declaration points to
func resolveIndex(decl Declaration, header []string, member string) (int, error) {
	switch d := decl.(type) {
	case IndexMapping:
		return checkIndex(d.Index, member)
	case *IndexMapping:
		if d != nil {
			return checkIndex(d.Index, member)
		}
	case TitleMapping:
		return lookupTitle(d.Title, header, member)
	case *TitleMapping:
		if d != nil {
			return lookupTitle(d.Title, header, member)
		}
	}

	return 0, &Error{
		Code:    ErrUnsupportedMappingDeclaration,
		Member:  member,
		Message: fmt.Sprintf(`Mapping declaration of type "%T" not supported.`, decl),
	}
}

// checkIndex rejects negative column indices
func checkIndex(index int, member string) (int, error) {
	if index < 0 {
		return 0, &Error{
			Code:    ErrInvalidIndex,
			Member:  member,
			Message: fmt.Sprintf("Column index %d of %s must not be negative.", index, member),
		}
	}
	return index, nil
}

// lookupTitle returns the index of the first header entry equal to title
func lookupTitle(title string, header []string, member string) (int, error) {
	if header == nil {
		return 0, &Error{
			Code:    ErrMissingHeaderRow,
			Member:  member,
			Message: "CSV has no header row. So using TitleMapping is not valid.",
		}
	}

	index := slices.Index(header, title)
	if index < 0 {
		return 0, &Error{
			Code:    ErrColumnNotFound,
			Member:  member,
			Message: fmt.Sprintf(`Column with title "%s" not found in CSV.`, title),
		}
	}
	return index, nil
}

// recordTypeName returns the qualified name of T, e.g. "pkg.Widget"
func recordTypeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

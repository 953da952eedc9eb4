package mapping

import "errors"

var (
	// ErrMultipleMappingDeclarations indicates a member with more than one declaration
	ErrMultipleMappingDeclarations = errors.New("mapping: multiple mapping declarations")

	// ErrColumnNotFound indicates a TitleMapping without matching header title
	ErrColumnNotFound = errors.New("mapping: column not found")

	// ErrMissingHeaderRow indicates a TitleMapping while the source has no header row
	ErrMissingHeaderRow = errors.New("mapping: missing header row")

	// ErrUnsupportedMappingDeclaration indicates a declaration kind the builder does not know
	ErrUnsupportedMappingDeclaration = errors.New("mapping: unsupported mapping declaration")

	// ErrInvalidIndex indicates a negative IndexMapping
	ErrInvalidIndex = errors.New("mapping: invalid column index")

	// ErrMissingApplier indicates a declared member without field or setter
	ErrMissingApplier = errors.New("mapping: missing applier")

	// ErrValueNotAssignable indicates a converted value that does not fit the member
	ErrValueNotAssignable = errors.New("mapping: value not assignable")

	// ErrInvalidTag indicates a malformed csv struct tag
	ErrInvalidTag = errors.New("mapping: invalid struct tag")

	// ErrUnknownMember indicates an override for a member that does not exist
	ErrUnknownMember = errors.New("mapping: unknown member")
)

// Error is a mapping failure for one member.
// errors.Is matches it against its Code.
type Error struct {
	// Code is one of the sentinel errors of this package
	Code error
	// Member is the qualified member name, e.g. "pkg.Widget.ID"
	Member string
	// Message is the human readable description
	Message string
}

// Error returns the message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the code.
func (e *Error) Unwrap() error {
	return e.Code
}

package mapping

import "github.com/nao1215/csvreader/conversion"

// Member describes one settable member of the record type T.
type Member[T any] struct {
	// Name is the field or setter name used in error messages and overrides
	Name string
	// Type is the conversion target of the member
	Type conversion.TargetType
	// Declarations holds the mapping declarations; a member without any is not mapped
	Declarations []Declaration
	// Apply writes the converted value into a record
	Apply Applier[T]
}

// Model is the resolved mapping of one member: the column it reads, the
// target type of the value and how it is written. Models are created by
// Build and do not change afterwards.
type Model[T any] struct {
	member  string
	target  conversion.TargetType
	index   int
	applier Applier[T]
}

// Member returns the member name.
func (m Model[T]) Member() string {
	return m.member
}

// Type returns the conversion target.
func (m Model[T]) Type() conversion.TargetType {
	return m.target
}

// Index returns the zero-based column index.
func (m Model[T]) Index() int {
	return m.index
}

// Applier returns the applier of the member.
func (m Model[T]) Applier() Applier[T] {
	return m.applier
}

// Apply writes value into record.
func (m Model[T]) Apply(record *T, value any) error {
	return m.applier.Apply(record, value)
}

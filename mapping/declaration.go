package mapping

// Declaration tells the builder where a member finds its column.
// IndexMapping and TitleMapping are the supported declarations; Build
// rejects any other implementation with ErrUnsupportedMappingDeclaration.
type Declaration interface {
	// DeclarationName names the declaration kind in error messages
	DeclarationName() string
}

// IndexMapping reads the column at a fixed zero-based index.
type IndexMapping struct {
	Index int
}

// DeclarationName implements Declaration.
func (IndexMapping) DeclarationName() string {
	return "IndexMapping"
}

// TitleMapping reads the column whose header title equals Title exactly.
type TitleMapping struct {
	Title string
}

// DeclarationName implements Declaration.
func (TitleMapping) DeclarationName() string {
	return "TitleMapping"
}

// Index returns an IndexMapping declaration.
func Index(index int) IndexMapping {
	return IndexMapping{Index: index}
}

// Title returns a TitleMapping declaration.
func Title(title string) TitleMapping {
	return TitleMapping{Title: title}
}

package csvreader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Standard error values returned while reading records
var (
	// ErrInvalidSource indicates a reader without usable source (nil handle, empty path or nil database)
	ErrInvalidSource = errors.New("csvreader: invalid source")

	// ErrHeaderRowUnreadable indicates that the header row was requested but the source has no row
	ErrHeaderRowUnreadable = errors.New("csvreader: header row unreadable")

	// ErrColumnOutOfRange indicates a mapped column index beyond the cells of a row
	ErrColumnOutOfRange = errors.New("csvreader: column index out of range")

	// ErrUnterminatedQuote indicates an enclosed cell without closing enclosure at end of input
	ErrUnterminatedQuote = errors.New("csvreader: unterminated quoted cell")

	// ErrUnsupportedFormat indicates a file type the reader cannot parse
	ErrUnsupportedFormat = errors.New("csvreader: unsupported file format")

	// ErrSheetNotFound indicates an XLSX sheet that does not exist
	ErrSheetNotFound = errors.New("csvreader: sheet not found")
)

// ColumnRangeError reports a row shorter than a mapped column index.
// errors.Is matches it against ErrColumnOutOfRange.
type ColumnRangeError struct {
	// Row is the one-based data row number, not counting the header row
	Row int
	// Index is the requested zero-based column index
	Index int
	// Width is the number of cells of the row
	Width int
}

// Error returns a description of the range failure.
func (e *ColumnRangeError) Error() string {
	return fmt.Sprintf("column index %d out of range in row %d with %d cells", e.Index, e.Row, e.Width)
}

// Unwrap returns ErrColumnOutOfRange.
func (e *ColumnRangeError) Unwrap() error {
	return ErrColumnOutOfRange
}

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	Row       int
	Member    string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithRow adds the one-based data row number to the error context
func (ec *ErrorContext) WithRow(row int) *ErrorContext {
	ec.Row = row
	return ec
}

// WithMember adds the record member to the error context
func (ec *ErrorContext) WithMember(member string) *ErrorContext {
	ec.Member = member
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("csvreader: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.Row > 0 {
		parts = append(parts, "row: "+strconv.Itoa(ec.Row))
	}

	if ec.Member != "" {
		parts = append(parts, "member: "+ec.Member)
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return errors.New(context)
}

package csvreader

import (
	"log/slog"

	"github.com/nao1215/csvreader/conversion"
)

// FileType represents the format of the source
type FileType int

const (
	// FileTypeAuto detects the format from the path extension; handle mode reads CSV
	FileTypeAuto FileType = iota
	// FileTypeCSV represents delimited text
	FileTypeCSV
	// FileTypeTSV represents tab separated text
	FileTypeTSV
	// FileTypeXLSX represents an Excel XLSX workbook
	FileTypeXLSX
	// FileTypeParquet represents an Apache Parquet file
	FileTypeParquet
	// FileTypeUnsupported represents an unsupported file type
	FileTypeUnsupported
)

// String returns the string representation of FileType
func (ft FileType) String() string {
	switch ft {
	case FileTypeAuto:
		return "auto"
	case FileTypeCSV:
		return "csv"
	case FileTypeTSV:
		return "tsv"
	case FileTypeXLSX:
		return "xlsx"
	case FileTypeParquet:
		return "parquet"
	default:
		return "unsupported"
	}
}

// ReaderOptions configures how a source is parsed and converted.
//
// Example:
//
//	options := NewReaderOptions().
//		WithDelimiter(';').
//		WithValueConverter(deAT)
//
//	r := Open("prices.csv.gz", options)
type ReaderOptions struct {
	// Delimiter separates the cells of a row
	Delimiter rune
	// Enclosure quotes cells containing delimiters or line breaks
	Enclosure rune
	// Escape keeps the following character inside an enclosed cell; 0 disables it
	Escape rune
	// AutoDetectLineEndings accepts a lone "\r" as line ending
	AutoDetectLineEndings bool
	// HasHeaderRow treats the first row as column titles
	HasHeaderRow bool
	// RemoveBOM skips a leading UTF-8 byte order mark
	RemoveBOM bool
	// ValueConverter converts raw cells to member values
	ValueConverter conversion.ValueConverter
	// FileType selects the source format
	FileType FileType
	// Sheet names the XLSX sheet to read; empty reads the first sheet
	Sheet string
	// Logger receives debug events; nil discards them
	Logger *slog.Logger
}

// NewReaderOptions creates the default options: comma delimited, double
// quote enclosure, backslash escape, header row, BOM removal and the
// default value converter.
//
// Modify with:
//   - WithDelimiter(), WithEnclosure(), WithEscape(): Change the dialect
//   - WithHeaderRow(): Read sources without header row
//   - WithValueConverter(): Plug in e.g. a LocaleConverter
//   - WithFileType(), WithSheet(): Select the source format
func NewReaderOptions() ReaderOptions {
	return ReaderOptions{
		Delimiter:      ',',
		Enclosure:      '"',
		Escape:         '\\',
		HasHeaderRow:   true,
		RemoveBOM:      true,
		ValueConverter: conversion.NewConverter(),
		FileType:       FileTypeAuto,
	}
}

// WithDelimiter sets the cell separator.
func (o ReaderOptions) WithDelimiter(delimiter rune) ReaderOptions {
	o.Delimiter = delimiter
	return o
}

// WithEnclosure sets the quote character.
func (o ReaderOptions) WithEnclosure(enclosure rune) ReaderOptions {
	o.Enclosure = enclosure
	return o
}

// WithEscape sets the escape character; 0 disables escaping.
func (o ReaderOptions) WithEscape(escape rune) ReaderOptions {
	o.Escape = escape
	return o
}

// WithAutoDetectLineEndings accepts "\r" line endings.
func (o ReaderOptions) WithAutoDetectLineEndings(enabled bool) ReaderOptions {
	o.AutoDetectLineEndings = enabled
	return o
}

// WithHeaderRow sets whether the first row holds column titles.
func (o ReaderOptions) WithHeaderRow(hasHeaderRow bool) ReaderOptions {
	o.HasHeaderRow = hasHeaderRow
	return o
}

// WithRemoveBOM sets whether a leading UTF-8 BOM is skipped.
func (o ReaderOptions) WithRemoveBOM(remove bool) ReaderOptions {
	o.RemoveBOM = remove
	return o
}

// WithValueConverter replaces the value converter.
func (o ReaderOptions) WithValueConverter(vc conversion.ValueConverter) ReaderOptions {
	o.ValueConverter = vc
	return o
}

// WithFileType sets the source format.
//
// Options:
//   - FileTypeAuto: Detect from the path extension (default)
//   - FileTypeCSV: Delimited text
//   - FileTypeTSV: Tab separated text
//   - FileTypeXLSX: Excel workbook
//   - FileTypeParquet: Apache Parquet
func (o ReaderOptions) WithFileType(fileType FileType) ReaderOptions {
	o.FileType = fileType
	return o
}

// WithSheet selects the XLSX sheet.
func (o ReaderOptions) WithSheet(sheet string) ReaderOptions {
	o.Sheet = sheet
	return o
}

// WithLogger sets the logger for debug events.
func (o ReaderOptions) WithLogger(logger *slog.Logger) ReaderOptions {
	o.Logger = logger
	return o
}

// logger returns the configured logger or one discarding everything
func (o ReaderOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// converter returns the configured converter or the default one
func (o ReaderOptions) converter() conversion.ValueConverter {
	if o.ValueConverter != nil {
		return o.ValueConverter
	}
	return conversion.NewConverter()
}

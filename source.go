package csvreader

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"
)

// rowSource yields the raw rows of one read pass.
type rowSource interface {
	// next returns the next row or io.EOF
	next() ([]string, error)
	// close releases the source
	close() error
}

// newRowSource creates the source for fileType on top of reader.
// release is called by close, or right away when creation fails.
func newRowSource(ctx context.Context, reader io.Reader, fileType FileType, options ReaderOptions, release func() error) (rowSource, error) {
	var (
		src rowSource
		err error
	)

	switch fileType {
	case FileTypeAuto, FileTypeCSV:
		src = newDelimitedSource(reader, options, release)
	case FileTypeTSV:
		src = newDelimitedSource(reader, options.WithDelimiter('\t'), release)
	case FileTypeXLSX:
		src, err = newXLSXSource(reader, options.Sheet, release)
	case FileTypeParquet:
		src, err = newParquetSource(ctx, reader, options.HasHeaderRow, release)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileType)
	}

	if err != nil {
		if releaseErr := release(); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
		return nil, err
	}
	return src, nil
}

// delimitedSource reads CSV and TSV text
type delimitedSource struct {
	tok     *tokenizer
	release func() error
}

// newDelimitedSource buffers reader, skipping a BOM when configured
func newDelimitedSource(reader io.Reader, options ReaderOptions, release func() error) *delimitedSource {
	br := bufio.NewReader(reader)
	if options.RemoveBOM {
		skipBOM(br)
	}
	return &delimitedSource{
		tok:     newTokenizer(br, options),
		release: release,
	}
}

func (s *delimitedSource) next() ([]string, error) {
	return s.tok.Read()
}

func (s *delimitedSource) close() error {
	return s.release()
}

// xlsxSource reads the rows of one worksheet.
// Rows are padded to the width of the first row since excelize drops
// trailing empty cells; an empty row is a row with one empty cell.
type xlsxSource struct {
	book    *excelize.File
	rows    *excelize.Rows
	width   int
	release func() error
}

// newXLSXSource opens sheet, or the first sheet when sheet is empty
func newXLSXSource(reader io.Reader, sheet string, release func() error) (*xlsxSource, error) {
	book, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}

	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			_ = book.Close()
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
		}
		sheet = sheets[0]
	} else if index, err := book.GetSheetIndex(sheet); err != nil || index < 0 {
		_ = book.Close()
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	rows, err := book.Rows(sheet)
	if err != nil {
		_ = book.Close()
		return nil, fmt.Errorf("failed to open rows iterator for sheet %s: %w", sheet, err)
	}

	return &xlsxSource{
		book:    book,
		rows:    rows,
		width:   -1,
		release: release,
	}, nil
}

func (s *xlsxSource) next() ([]string, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	row, err := s.rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read XLSX row: %w", err)
	}

	if s.width < 0 {
		s.width = len(row)
	}
	for len(row) < s.width {
		row = append(row, "")
	}
	if len(row) == 0 {
		row = []string{""}
	}
	return row, nil
}

func (s *xlsxSource) close() error {
	return errors.Join(s.rows.Close(), s.book.Close(), s.release())
}

// parquetSource reads the rows of a Parquet file through Arrow.
// The column names form the header row; null values are empty cells.
type parquetSource struct {
	pq      *pqfile.Reader
	table   arrow.Table
	batches *array.TableReader
	header  []string
	batch   arrow.Record
	row     int
	release func() error
}

// newParquetSource loads reader into memory, Parquet needs random access
func newParquetSource(ctx context.Context, reader io.Reader, withHeader bool, release func() error) (*parquetSource, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty parquet file")
	}

	pq, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader from bytes: %w", err)
	}

	arrowReader, err := pqarrow.NewFileReader(pq, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		_ = pq.Close()
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		_ = pq.Close()
		return nil, fmt.Errorf("failed to read table: %w", err)
	}

	s := &parquetSource{
		pq:      pq,
		table:   table,
		batches: array.NewTableReader(table, 0),
		release: release,
	}
	if withHeader {
		for _, field := range table.Schema().Fields() {
			s.header = append(s.header, field.Name)
		}
		if s.header == nil {
			s.header = []string{}
		}
	}
	return s, nil
}

func (s *parquetSource) next() ([]string, error) {
	if s.header != nil {
		header := s.header
		s.header = nil
		return header, nil
	}

	for s.batch == nil || s.row >= int(s.batch.NumRows()) {
		if !s.batches.Next() {
			if err := s.batches.Err(); err != nil {
				return nil, fmt.Errorf("error reading table records: %w", err)
			}
			return nil, io.EOF
		}
		s.batch = s.batches.Record()
		s.row = 0
	}

	cells := make([]string, s.batch.NumCols())
	for j, col := range s.batch.Columns() {
		if !col.IsNull(s.row) {
			cells[j] = col.ValueStr(s.row)
		}
	}
	s.row++
	return cells, nil
}

func (s *parquetSource) close() error {
	s.batches.Release()
	s.table.Release()
	return errors.Join(s.pq.Close(), s.release())
}

// sqlSource reads the result rows of a query.
// The column names form the header row; NULL values are empty cells.
type sqlSource struct {
	rows   *sql.Rows
	header []string
	values []sql.NullString
	dest   []any
}

// newSQLSource runs query on db
func newSQLSource(ctx context.Context, db *sql.DB, query string, args []any, withHeader bool) (*sqlSource, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}

	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	s := &sqlSource{
		rows:   rows,
		values: make([]sql.NullString, len(columns)),
		dest:   make([]any, len(columns)),
	}
	for i := range s.values {
		s.dest[i] = &s.values[i]
	}
	if withHeader {
		s.header = columns
	}
	return s, nil
}

func (s *sqlSource) next() ([]string, error) {
	if s.header != nil {
		header := s.header
		s.header = nil
		return header, nil
	}

	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate result rows: %w", err)
		}
		return nil, io.EOF
	}
	if err := s.rows.Scan(s.dest...); err != nil {
		return nil, fmt.Errorf("failed to scan result row: %w", err)
	}

	cells := make([]string, len(s.values))
	for i, v := range s.values {
		cells[i] = v.String
	}
	return cells, nil
}

func (s *sqlSource) close() error {
	return s.rows.Close()
}

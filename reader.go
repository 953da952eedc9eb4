package csvreader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/nao1215/csvreader/conversion"
	"github.com/nao1215/csvreader/mapping"
)

// Reader reads records from one source: a file path, a seekable handle or
// a SQL query. Every call to ReadObjects starts a fresh pass over the
// source. A Reader is not safe for concurrent passes.
type Reader struct {
	path    string
	handle  io.ReadSeeker
	db      *sql.DB
	query   string
	args    []any
	options ReaderOptions
}

// Open creates a Reader for the file at path. Each pass opens the file,
// decompressing .gz, .bz2, .xz and .zst files, and closes it at the end.
// Without FileType option the format is detected from the extension.
func Open(path string, opts ...ReaderOptions) *Reader {
	return &Reader{
		path:    path,
		options: lastOptions(opts),
	}
}

// NewReader creates a Reader for an open handle. Each pass starts at the
// current position of the handle and seeks back to it at the end, so the
// handle can be read again. The handle is never closed.
func NewReader(rs io.ReadSeeker, opts ...ReaderOptions) *Reader {
	return &Reader{
		handle:  rs,
		options: lastOptions(opts),
	}
}

// NewSQLReader creates a Reader for the result of query. Each pass runs
// the query; the result columns form the header row and NULL values are
// empty cells.
func NewSQLReader(db *sql.DB, query string, args ...any) *Reader {
	return &Reader{
		db:      db,
		query:   query,
		args:    args,
		options: NewReaderOptions(),
	}
}

// WithOptions returns a copy of r using options.
func (r *Reader) WithOptions(options ReaderOptions) *Reader {
	c := *r
	c.options = options
	return &c
}

// Options returns the options of r.
func (r *Reader) Options() ReaderOptions {
	return r.options
}

// lastOptions returns the last of opts or the defaults
func lastOptions(opts []ReaderOptions) ReaderOptions {
	if len(opts) == 0 {
		return NewReaderOptions()
	}
	return opts[len(opts)-1]
}

// describe names the source in errors and log events
func (r *Reader) describe() string {
	switch {
	case r.db != nil:
		return "query: " + r.query
	case r.handle != nil:
		return "handle"
	default:
		return r.path
	}
}

// fileType resolves FileTypeAuto
func (r *Reader) fileType() FileType {
	if r.options.FileType != FileTypeAuto {
		return r.options.FileType
	}
	if r.path != "" {
		return NewCompressionFactory().DetectFileType(r.path)
	}
	return FileTypeCSV
}

// compression reports the compression of a path source
func (r *Reader) compression() CompressionType {
	if r.db != nil || r.handle != nil {
		return CompressionNone
	}
	return NewCompressionFactory().DetectCompressionType(r.path)
}

// open starts a pass over the source
func (r *Reader) open(ctx context.Context) (rowSource, error) {
	switch {
	case r.db != nil:
		return newSQLSource(ctx, r.db, r.query, r.args, r.options.HasHeaderRow)

	case r.handle != nil:
		pos, err := r.handle.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, fmt.Errorf("failed to record handle position: %w", err)
		}
		rewind := func() error {
			if _, err := r.handle.Seek(pos, io.SeekStart); err != nil {
				return fmt.Errorf("failed to rewind handle: %w", err)
			}
			return nil
		}
		return newRowSource(ctx, r.handle, r.fileType(), r.options, rewind)

	case r.path != "":
		reader, cleanup, err := NewCompressionFactory().CreateReaderForFile(r.path)
		if err != nil {
			return nil, err
		}
		return newRowSource(ctx, reader, r.fileType(), r.options, cleanup)

	default:
		return nil, ErrInvalidSource
	}
}

// handleCloseError runs closeFunc and logs its failure
func handleCloseError(logger *slog.Logger, closeFunc func() error) {
	if closeErr := closeFunc(); closeErr != nil {
		logger.Warn("failed to release source", slog.Any("error", closeErr))
		return
	}
	logger.Debug("source released")
}

// ReadObjects returns an iterator over the records of one pass over r.
//
// The header row is read first when HasHeaderRow is set, then members are
// resolved into models once. Every following row becomes a new record:
// for each model the cell at its index is converted to the model type and
// applied to the record. The first error is yielded with a nil record and
// ends the pass. The source is closed or rewound when the pass ends,
// including when the caller stops early.
//
//	for w, err := range csvreader.ReadObjects(ctx, r, widgetMembers) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(w.ID)
//	}
func ReadObjects[T any](ctx context.Context, r *Reader, members []mapping.Member[T]) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		if r == nil {
			yield(nil, NewErrorContext("open", "").Error(ErrInvalidSource))
			return
		}

		source := r.describe()
		logger := r.options.logger().With(slog.String("source", source))

		src, err := r.open(ctx)
		if err != nil {
			yield(nil, NewErrorContext("open", source).Error(err))
			return
		}
		defer handleCloseError(logger, src.close)
		logger.Debug("source opened",
			slog.String("file_type", r.fileType().String()),
			slog.String("compression", r.compression().String()))

		var header []string
		if r.options.HasHeaderRow {
			header, err = src.next()
			if errors.Is(err, io.EOF) {
				err = ErrHeaderRowUnreadable
			}
			if err != nil {
				yield(nil, NewErrorContext("read header", source).Error(err))
				return
			}
			logger.Debug("header read", slog.Int("columns", len(header)))
		}

		models, err := mapping.Build(header, members)
		if err != nil {
			yield(nil, NewErrorContext("build mapping", source).Error(err))
			return
		}
		logger.Debug("mapping built", slog.Int("models", len(models)))

		vc := r.options.converter()
		for row := 1; ; row++ {
			if err := ctx.Err(); err != nil {
				yield(nil, NewErrorContext("read record", source).WithRow(row).Error(err))
				return
			}

			cells, err := src.next()
			if errors.Is(err, io.EOF) {
				logger.Debug("pass finished", slog.Int("records", row-1))
				return
			}
			if err != nil {
				yield(nil, NewErrorContext("read record", source).WithRow(row).Error(err))
				return
			}

			record, err := assemble(cells, models, vc, row, source)
			if err != nil {
				var convErr *conversion.ConversionError
				if errors.As(err, &convErr) {
					logger.Debug("cell rejected", slog.Int("row", row), slog.String("code", convErr.Code().Error()))
				}
				yield(nil, err)
				return
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}

// assemble builds one record from the cells of a row
func assemble[T any](cells []string, models []mapping.Model[T], vc conversion.ValueConverter, row int, source string) (*T, error) {
	fail := func(m mapping.Model[T], details string, err error) error {
		return NewErrorContext("read record", source).WithRow(row).WithMember(m.Member()).WithDetails(details).Error(err)
	}

	record := new(T)
	for _, m := range models {
		index := m.Index()
		if index >= len(cells) {
			return nil, fail(m, "", &ColumnRangeError{Row: row, Index: index, Width: len(cells)})
		}

		value, err := vc.Convert(cells[index], m.Type())
		if err != nil {
			return nil, fail(m, fmt.Sprintf("column %d as %s", index, m.Type()), err)
		}
		if err := m.Apply(record, value); err != nil {
			return nil, fail(m, m.Applier().Kind().String()+" applier", err)
		}
	}
	return record, nil
}

// ReadAll collects one pass over r.
func ReadAll[T any](ctx context.Context, r *Reader, members []mapping.Member[T]) ([]*T, error) {
	var records []*T
	for record, err := range ReadObjects(ctx, r, members) {
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

package csvreader

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/csvreader/conversion"
	"github.com/nao1215/csvreader/mapping"
)

type sample struct {
	Integer int
	Float   float64
}

func sampleMembers(integer, float mapping.Declaration) []mapping.Member[sample] {
	return []mapping.Member[sample]{
		{
			Name:         "Integer",
			Type:         conversion.Type(conversion.KindInt),
			Declarations: []mapping.Declaration{integer},
			Apply:        mapping.Field(func(s *sample) *int { return &s.Integer }),
		},
		{
			Name:         "Float",
			Type:         conversion.Type(conversion.KindFloat),
			Declarations: []mapping.Declaration{float},
			Apply:        mapping.Field(func(s *sample) *float64 { return &s.Float }),
		},
	}
}

func titles() (mapping.Declaration, mapping.Declaration) {
	return mapping.Title("Integer"), mapping.Title("Float")
}

func indexes() (mapping.Declaration, mapping.Declaration) {
	return mapping.Index(0), mapping.Index(1)
}

// collect runs one pass and returns the records and the first error
func collect[T any](t *testing.T, r *Reader, members []mapping.Member[T]) ([]*T, error) {
	t.Helper()

	var records []*T
	for record, err := range ReadObjects(context.Background(), r, members) {
		if err != nil {
			assert.Nil(t, record)
			return records, err
		}
		records = append(records, record)
	}
	return records, nil
}

func TestReadObjects_TitleMapping(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader("Integer,Float\n1,1.11\n"))
	records, err := collect(t, r, sampleMembers(titles()))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].Integer)
	assert.InDelta(t, 1.11, records[0].Float, 1e-9)
}

func TestReadObjects_IndexMappingWithoutHeader(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader("1,1.11\n"), NewReaderOptions().WithHeaderRow(false))
	records, err := collect(t, r, sampleMembers(indexes()))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, &sample{Integer: 1, Float: 1.11}, records[0])
}

func TestReadObjects_ColumnOrderFollowsHeader(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader("Comment,Float,Integer\nx,2.5,7\ny,,8\n"))
	records, err := collect(t, r, sampleMembers(titles()))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, &sample{Integer: 7, Float: 2.5}, records[0])
	assert.Equal(t, &sample{Integer: 8, Float: 0}, records[1])
}

func TestReadObjects_FreshRecordPerRow(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader("Integer,Float\n1,1\n2,2\n"))
	records, err := collect(t, r, sampleMembers(titles()))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.NotSame(t, records[0], records[1])
	assert.Equal(t, 1, records[0].Integer)
}

func TestReadObjects_KeepsNonUTF8Bytes(t *testing.T) {
	t.Parallel()

	type person struct {
		Name string
		City string
	}
	members := []mapping.Member[person]{
		{
			Name:         "Name",
			Type:         conversion.Type(conversion.KindString),
			Declarations: []mapping.Declaration{mapping.Index(0)},
			Apply:        mapping.Field(func(p *person) *string { return &p.Name }),
		},
		{
			Name:         "City",
			Type:         conversion.Type(conversion.KindString),
			Declarations: []mapping.Declaration{mapping.Index(1)},
			Apply:        mapping.Field(func(p *person) *string { return &p.City }),
		},
	}

	r := NewReader(strings.NewReader("M\xfcller,\"K\xf6ln\"\n"), NewReaderOptions().WithHeaderRow(false))
	records, err := collect(t, r, members)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "M\xfcller", records[0].Name)
	assert.Equal(t, "K\xf6ln", records[0].City)
}

func TestReadObjects_HeaderOnly(t *testing.T) {
	t.Parallel()

	records, err := collect(t, NewReader(strings.NewReader("Integer,Float\n")), sampleMembers(titles()))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadObjects_MappingErrors(t *testing.T) {
	t.Parallel()

	t.Run("title lookup is case sensitive", func(t *testing.T) {
		t.Parallel()

		r := NewReader(strings.NewReader("Integer,Float\n1,1.11\n"))
		records, err := collect(t, r, sampleMembers(mapping.Title("integer"), mapping.Title("Float")))
		require.Error(t, err)
		assert.Empty(t, records)
		assert.ErrorIs(t, err, mapping.ErrColumnNotFound)
		assert.Contains(t, err.Error(), `Column with title "integer" not found in CSV.`)
	})

	t.Run("multiple declarations fail before any row", func(t *testing.T) {
		t.Parallel()

		members := sampleMembers(titles())
		members[1].Declarations = append(members[1].Declarations, mapping.Index(1))

		r := NewReader(strings.NewReader("Integer,Float\n1,1.11\n"))
		records, err := collect(t, r, members)
		require.Error(t, err)
		assert.Empty(t, records)
		assert.ErrorIs(t, err, mapping.ErrMultipleMappingDeclarations)
		assert.Contains(t, err.Error(), "Multiple mapping declarations found on csvreader.sample.Float.")
	})

	t.Run("title mapping without header row", func(t *testing.T) {
		t.Parallel()

		r := NewReader(strings.NewReader("1,1.11\n"), NewReaderOptions().WithHeaderRow(false))
		_, err := collect(t, r, sampleMembers(titles()))
		assert.ErrorIs(t, err, mapping.ErrMissingHeaderRow)
	})
}

func TestReadObjects_BOM(t *testing.T) {
	t.Parallel()

	const input = "\xEF\xBB\xBFInteger,Float\n1,1.11\n"

	t.Run("removed", func(t *testing.T) {
		t.Parallel()

		records, err := collect(t, NewReader(strings.NewReader(input)), sampleMembers(titles()))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 1, records[0].Integer)
	})

	t.Run("kept", func(t *testing.T) {
		t.Parallel()

		r := NewReader(strings.NewReader(input), NewReaderOptions().WithRemoveBOM(false))
		_, err := collect(t, r, sampleMembers(titles()))
		require.Error(t, err)
		assert.ErrorIs(t, err, mapping.ErrColumnNotFound)

		// the title carrying the BOM still matches
		r = NewReader(strings.NewReader(input), NewReaderOptions().WithRemoveBOM(false))
		records, err := collect(t, r, sampleMembers(mapping.Title("\ufeffInteger"), mapping.Title("Float")))
		require.NoError(t, err)
		require.Len(t, records, 1)
	})
}

func TestReadObjects_RewindsHandle(t *testing.T) {
	t.Parallel()

	t.Run("repeated passes return all rows", func(t *testing.T) {
		t.Parallel()

		handle := strings.NewReader("Integer,Float\n1,1.11\n2,2.22\n3,3.33\n")
		r := NewReader(handle)

		for range 3 {
			records, err := collect(t, r, sampleMembers(titles()))
			require.NoError(t, err)
			require.Len(t, records, 3)
			assert.Equal(t, 1, records[0].Integer)

			pos, err := handle.Seek(0, io.SeekCurrent)
			require.NoError(t, err)
			assert.Zero(t, pos)
		}
	})

	t.Run("pass starts at the current position", func(t *testing.T) {
		t.Parallel()

		const prefix = "ignored preamble\n"
		handle := strings.NewReader(prefix + "Integer,Float\n5,5.5\n")
		_, err := handle.Seek(int64(len(prefix)), io.SeekStart)
		require.NoError(t, err)

		r := NewReader(handle)
		for range 2 {
			records, err := collect(t, r, sampleMembers(titles()))
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, 5, records[0].Integer)

			pos, err := handle.Seek(0, io.SeekCurrent)
			require.NoError(t, err)
			assert.Equal(t, int64(len(prefix)), pos)
		}
	})

	t.Run("early break", func(t *testing.T) {
		t.Parallel()

		handle := strings.NewReader("Integer,Float\n1,1.11\n2,2.22\n")
		r := NewReader(handle)

		for record, err := range ReadObjects(context.Background(), r, sampleMembers(titles())) {
			require.NoError(t, err)
			assert.Equal(t, 1, record.Integer)
			break
		}

		pos, err := handle.Seek(0, io.SeekCurrent)
		require.NoError(t, err)
		assert.Zero(t, pos)

		records, err := ReadAll(context.Background(), r, sampleMembers(titles()))
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("after error", func(t *testing.T) {
		t.Parallel()

		handle := strings.NewReader("Integer,Float\n1,1.11\n2\n")
		r := NewReader(handle)

		_, err := ReadAll(context.Background(), r, sampleMembers(titles()))
		require.Error(t, err)

		pos, err := handle.Seek(0, io.SeekCurrent)
		require.NoError(t, err)
		assert.Zero(t, pos)
	})
}

func TestReadObjects_RowErrors(t *testing.T) {
	t.Parallel()

	t.Run("column out of range", func(t *testing.T) {
		t.Parallel()

		r := NewReader(strings.NewReader("Integer,Float\n1,1.11\n2\n3,3.33\n"))
		records, err := collect(t, r, sampleMembers(titles()))
		require.Error(t, err)
		require.Len(t, records, 1, "rows before the failing row are yielded")
		assert.ErrorIs(t, err, ErrColumnOutOfRange)

		var rangeErr *ColumnRangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, 2, rangeErr.Row)
		assert.Equal(t, 1, rangeErr.Index)
		assert.Equal(t, 1, rangeErr.Width)
		assert.Contains(t, err.Error(), "row: 2")
		assert.Contains(t, err.Error(), "member: Float")
	})

	t.Run("conversion failure stops the pass", func(t *testing.T) {
		t.Parallel()

		type event struct {
			At time.Time `csv:"title=At"`
		}

		r := NewReader(strings.NewReader("At\n2020-02-04\nsoon\n2020-02-05\n"))
		records, err := collect(t, r, mapping.MustMembers[event]())
		require.Error(t, err)
		require.Len(t, records, 1)
		assert.ErrorIs(t, err, conversion.ErrConversionFailed)
		assert.Contains(t, err.Error(), `Could not parse "soon" as "DateTime".`)
		assert.Contains(t, err.Error(), "row: 2, member: At, details: column 0 as DateTime")
	})

	t.Run("unsupported type", func(t *testing.T) {
		t.Parallel()

		members := sampleMembers(titles())
		members[0].Type = conversion.Type("Money")

		_, err := collect(t, NewReader(strings.NewReader("Integer,Float\n1,1\n")), members)
		require.Error(t, err)
		assert.ErrorIs(t, err, conversion.ErrTypeNotSupported)
		assert.Contains(t, err.Error(), `"Money" is not a supported type.`)
	})

	t.Run("value not assignable", func(t *testing.T) {
		t.Parallel()

		members := sampleMembers(titles())
		members[0].Type = conversion.Type(conversion.KindString)

		_, err := collect(t, NewReader(strings.NewReader("Integer,Float\n1,1\n")), members)
		assert.ErrorIs(t, err, mapping.ErrValueNotAssignable)
		assert.Contains(t, err.Error(), "details: field applier")
	})

	t.Run("unterminated quote", func(t *testing.T) {
		t.Parallel()

		_, err := collect(t, NewReader(strings.NewReader("Integer,Float\n\"1,1\n")), sampleMembers(titles()))
		assert.ErrorIs(t, err, ErrUnterminatedQuote)
	})
}

func TestReadObjects_HeaderRowUnreadable(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "\xEF\xBB\xBF"} {
		_, err := collect(t, NewReader(strings.NewReader(input)), sampleMembers(titles()))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrHeaderRowUnreadable)
	}

	// without header row an empty source is just empty
	r := NewReader(strings.NewReader(""), NewReaderOptions().WithHeaderRow(false))
	records, err := collect(t, r, sampleMembers(indexes()))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadObjects_InvalidSource(t *testing.T) {
	t.Parallel()

	readers := map[string]*Reader{
		"nil handle":   NewReader(nil),
		"empty path":   Open(""),
		"nil database": NewSQLReader(nil, "SELECT 1"),
		"nil reader":   nil,
	}
	for name, r := range readers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := collect(t, r, sampleMembers(titles()))
			assert.ErrorIs(t, err, ErrInvalidSource)
		})
	}
}

func TestReadObjects_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := collect(t, Open(filepath.Join(t.TempDir(), "missing.csv")), sampleMembers(titles()))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadObjects_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got error
	for _, err := range ReadObjects(ctx, NewReader(strings.NewReader("Integer,Float\n1,1\n")), sampleMembers(titles())) {
		if err != nil {
			got = err
			break
		}
	}
	assert.ErrorIs(t, got, context.Canceled)
}

func TestReadObjects_LocaleConverter(t *testing.T) {
	t.Parallel()

	vc, err := conversion.NewLocaleConverter("de-AT")
	require.NoError(t, err)

	options := NewReaderOptions().WithDelimiter(';').WithValueConverter(vc)
	r := NewReader(strings.NewReader("Integer;Float\n1.337;1337,37\n"), options)

	records, err := collect(t, r, sampleMembers(titles()))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1337, records[0].Integer)
	assert.InDelta(t, 1337.37, records[0].Float, 1e-9)
}

type contact struct {
	Name     string
	Age      *int
	Active   bool
	Birthday *time.Time
	emails   []string
}

func (c *contact) AddEmail(email string) {
	c.emails = append(c.emails, email)
}

func TestReadObjects_SettersAndNullables(t *testing.T) {
	t.Parallel()

	members := []mapping.Member[contact]{
		{
			Name:         "Name",
			Type:         conversion.Type(conversion.KindString),
			Declarations: []mapping.Declaration{mapping.Title("name")},
			Apply:        mapping.Field(func(c *contact) *string { return &c.Name }),
		},
		{
			Name:         "Age",
			Type:         conversion.Nullable(conversion.KindInt),
			Declarations: []mapping.Declaration{mapping.Title("age")},
			Apply:        mapping.Field(func(c *contact) **int { return &c.Age }),
		},
		{
			Name:         "Active",
			Type:         conversion.Type(conversion.KindBool),
			Declarations: []mapping.Declaration{mapping.Title("active")},
			Apply:        mapping.Field(func(c *contact) *bool { return &c.Active }),
		},
		{
			Name:         "Birthday",
			Type:         conversion.Nullable(conversion.KindDateTimeImmutable),
			Declarations: []mapping.Declaration{mapping.Title("birthday")},
			Apply:        mapping.Field(func(c *contact) **time.Time { return &c.Birthday }),
		},
		{
			Name:         "AddEmail",
			Type:         conversion.Type(conversion.KindString),
			Declarations: []mapping.Declaration{mapping.Title("email")},
			Apply:        mapping.Setter((*contact).AddEmail),
		},
		{
			// not mapped, never touched
			Name:  "Nickname",
			Type:  conversion.Type(conversion.KindString),
			Apply: mapping.Field(func(c *contact) *string { return &c.Name }),
		},
	}

	const input = "name,age,active,birthday,email\n" +
		"Ada,36,on,10.12.1815,ada@example.com\n" +
		"\"Grace \"\"Amazing\"\" Hopper\",null,0,,grace@example.com\n"

	records, err := collect(t, NewReader(strings.NewReader(input)), members)
	require.NoError(t, err)
	require.Len(t, records, 2)

	ada := records[0]
	assert.Equal(t, "Ada", ada.Name)
	require.NotNil(t, ada.Age)
	assert.Equal(t, 36, *ada.Age)
	assert.True(t, ada.Active)
	require.NotNil(t, ada.Birthday)
	assert.Equal(t, "1815-12-10", ada.Birthday.Format(time.DateOnly))
	assert.Equal(t, []string{"ada@example.com"}, ada.emails)

	grace := records[1]
	assert.Equal(t, `Grace "Amazing" Hopper`, grace.Name)
	assert.Nil(t, grace.Age)
	assert.False(t, grace.Active)
	assert.Nil(t, grace.Birthday)
	assert.Equal(t, []string{"grace@example.com"}, grace.emails)
}

func TestReadObjects_PathMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("Integer,Float\n1,1.11\n"), 0o600))

	r := Open(path)
	for range 2 {
		records, err := collect(t, r, sampleMembers(titles()))
		require.NoError(t, err)
		require.Len(t, records, 1)
	}

	tsv := filepath.Join(dir, "data.tsv")
	require.NoError(t, os.WriteFile(tsv, []byte("Integer\tFloat\n2\t2.5\n"), 0o600))
	records, err := collect(t, Open(tsv), sampleMembers(titles()))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, &sample{Integer: 2, Float: 2.5}, records[0])
}

func TestReadObjects_UnsupportedFileType(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader("x"), NewReaderOptions().WithFileType(FileTypeUnsupported))
	_, err := collect(t, r, sampleMembers(titles()))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadObjects_Logger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := NewReader(strings.NewReader("Integer,Float\n1,1\n"), NewReaderOptions().WithLogger(logger))
	_, err := ReadAll(context.Background(), r, sampleMembers(titles()))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "source opened")
	assert.Contains(t, out, "mapping built")
	assert.Contains(t, out, "models=2")
	assert.Contains(t, out, "compression=none")
	assert.Contains(t, out, "source released")
}

func TestReadObjects_LoggerReportsRejectedCell(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	path := filepath.Join(t.TempDir(), "dates.csv.gz")
	require.NoError(t, os.WriteFile(path, compress(t, []byte("At\nsoon\n"), CompressionGZ), 0o600))

	type event struct {
		At time.Time `csv:"title=At"`
	}
	_, err := ReadAll(context.Background(), Open(path, NewReaderOptions().WithLogger(logger)), mapping.MustMembers[event]())
	require.Error(t, err)
	assert.ErrorIs(t, err, conversion.ErrConversionFailed)

	out := buf.String()
	assert.Contains(t, out, "compression=gz")
	assert.Contains(t, out, "cell rejected")
	assert.Contains(t, out, "row=1")
	assert.Contains(t, out, `code="conversion: conversion failed"`)
}

// failingSeeker reports an error when seeking back
type failingSeeker struct {
	*strings.Reader
	seeks int
}

func (f *failingSeeker) Seek(offset int64, whence int) (int64, error) {
	f.seeks++
	if f.seeks > 1 {
		return 0, errors.New("seek refused")
	}
	return f.Reader.Seek(offset, whence)
}

func TestReadObjects_RewindFailureIsLogged(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handle := &failingSeeker{Reader: strings.NewReader("Integer,Float\n1,1\n")}
	r := NewReader(handle, NewReaderOptions().WithLogger(logger))

	records, err := ReadAll(context.Background(), r, sampleMembers(titles()))
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Contains(t, buf.String(), "failed to release source")
	assert.Contains(t, buf.String(), "seek refused")
}

func TestReader_WithOptions(t *testing.T) {
	t.Parallel()

	r := NewSQLReader(&sql.DB{}, "SELECT 1")
	assert.True(t, r.Options().HasHeaderRow)

	c := r.WithOptions(NewReaderOptions().WithHeaderRow(false))
	assert.False(t, c.Options().HasHeaderRow)
	assert.True(t, r.Options().HasHeaderRow, "the original reader is unchanged")
}

func TestReaderOptions_Defaults(t *testing.T) {
	t.Parallel()

	o := NewReaderOptions()
	assert.Equal(t, ',', o.Delimiter)
	assert.Equal(t, '"', o.Enclosure)
	assert.Equal(t, '\\', o.Escape)
	assert.False(t, o.AutoDetectLineEndings)
	assert.True(t, o.HasHeaderRow)
	assert.True(t, o.RemoveBOM)
	assert.IsType(t, &conversion.Converter{}, o.ValueConverter)
	assert.Equal(t, FileTypeAuto, o.FileType)

	var zero ReaderOptions
	assert.NotNil(t, zero.converter())
	assert.NotNil(t, zero.logger())
}

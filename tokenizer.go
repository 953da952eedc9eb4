package csvreader

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// utf8BOM is the UTF-8 byte order mark
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM consumes a leading UTF-8 BOM and reports whether one was found.
func skipBOM(br *bufio.Reader) bool {
	head, err := br.Peek(len(utf8BOM))
	if err != nil || !bytes.Equal(head, utf8BOM) {
		return false
	}
	_, _ = br.Discard(len(utf8BOM))
	return true
}

// tokenizer splits delimited text into rows of cells.
//
// A cell starting with the enclosure is enclosed: it may contain
// delimiters and line breaks, a doubled enclosure stands for one enclosure
// and the escape character keeps itself and the following character.
// Text between the closing enclosure and the next delimiter is appended
// as is. "\r\n" and "\n" end a row, a lone "\r" only with
// autoDetectLineEndings. A blank line is a row with one empty cell.
type tokenizer struct {
	r         *bufio.Reader
	delimiter rune
	enclosure rune
	escape    rune
	// autoDetectLineEndings accepts "\r" as row terminator
	autoDetectLineEndings bool

	cell strings.Builder
}

// newTokenizer creates a tokenizer reading from br with the dialect of options
func newTokenizer(br *bufio.Reader, options ReaderOptions) *tokenizer {
	return &tokenizer{
		r:                     br,
		delimiter:             options.Delimiter,
		enclosure:             options.Enclosure,
		escape:                options.Escape,
		autoDetectLineEndings: options.AutoDetectLineEndings,
	}
}

// Read returns the next row, io.EOF after the last row or
// ErrUnterminatedQuote when the input ends inside an enclosed cell.
func (t *tokenizer) Read() ([]string, error) {
	if _, err := t.r.Peek(1); err != nil {
		return nil, err
	}

	var row []string
	for {
		cell, rowEnded, err := t.readCell()
		if err != nil {
			return nil, err
		}
		row = append(row, cell)
		if rowEnded {
			return row, nil
		}
	}
}

// readCell reads one cell and reports whether it was the last of its row
func (t *tokenizer) readCell() (string, bool, error) {
	t.cell.Reset()

	c, err := t.readChar()
	if errors.Is(err, io.EOF) {
		return "", true, nil
	}
	if err != nil {
		return "", false, err
	}

	if t.enclosure != 0 && c.is(t.enclosure) {
		if err := t.readEnclosed(); err != nil {
			return "", false, err
		}
	} else {
		t.unreadChar(c)
	}

	for {
		c, err := t.readChar()
		if errors.Is(err, io.EOF) {
			return t.cell.String(), true, nil
		}
		if err != nil {
			return "", false, err
		}

		switch {
		case c.is(t.delimiter):
			return t.cell.String(), false, nil
		case c.is('\n'):
			return t.cell.String(), true, nil
		case c.is('\r'):
			if t.endsLine() {
				return t.cell.String(), true, nil
			}
			t.writeChar(c)
		default:
			t.writeChar(c)
		}
	}
}

// readEnclosed reads the enclosed part of a cell after its opening enclosure
func (t *tokenizer) readEnclosed() error {
	for {
		c, err := t.readChar()
		if errors.Is(err, io.EOF) {
			return ErrUnterminatedQuote
		}
		if err != nil {
			return err
		}

		switch {
		case t.escape != 0 && c.is(t.escape) && t.escape != t.enclosure:
			next, err := t.readChar()
			if errors.Is(err, io.EOF) {
				return ErrUnterminatedQuote
			}
			if err != nil {
				return err
			}
			t.writeChar(c)
			t.writeChar(next)
		case c.is(t.enclosure):
			next, err := t.readChar()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if next.is(t.enclosure) {
				t.writeChar(c)
				continue
			}
			t.unreadChar(next)
			return nil
		default:
			t.writeChar(c)
		}
	}
}

// endsLine reports whether a "\r" just read terminates the row,
// consuming the "\n" of a "\r\n" pair
func (t *tokenizer) endsLine() bool {
	next, err := t.readChar()
	if err != nil {
		return t.autoDetectLineEndings
	}
	if next.is('\n') {
		return true
	}
	t.unreadChar(next)
	return t.autoDetectLineEndings
}

// char is one character of the input. Bytes that are not valid UTF-8 are
// kept in raw so that cells are copied byte for byte.
type char struct {
	r      rune
	raw    byte
	rawSet bool
}

// is reports whether c is the valid character r
func (c char) is(r rune) bool {
	return !c.rawSet && c.r == r
}

// readChar reads the next character
func (t *tokenizer) readChar() (char, error) {
	r, size, err := t.r.ReadRune()
	if err != nil {
		return char{}, err
	}
	if r != utf8.RuneError || size != 1 {
		return char{r: r}, nil
	}

	_ = t.r.UnreadRune()
	b, err := t.r.ReadByte()
	if err != nil {
		return char{}, err
	}
	return char{r: r, raw: b, rawSet: true}, nil
}

// unreadChar steps back over c, the last character read
func (t *tokenizer) unreadChar(c char) {
	if c.rawSet {
		_ = t.r.UnreadByte()
		return
	}
	_ = t.r.UnreadRune()
}

// writeChar appends c to the current cell
func (t *tokenizer) writeChar(c char) {
	if c.rawSet {
		t.cell.WriteByte(c.raw)
		return
	}
	t.cell.WriteRune(c.r)
}

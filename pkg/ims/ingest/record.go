// Package ingest implements bulk loading of reference data from delimited
// record streams. The record format uses a configurable field delimiter and
// quote character (';' and '@' by default), matching the dumps the reference
// data is distributed as. encoding/csv cannot express a non-'"' quote
// character, hence the hand-rolled reader.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DefaultDelimiter is the field delimiter of reference dumps.
const DefaultDelimiter = ';'

// DefaultQuote is the quote character of reference dumps.
const DefaultQuote = '@'

// RecordError describes a malformed record in the input stream. Any
// RecordError aborts the whole load.
type RecordError struct {
	Line    int
	Message string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record at line %d: %s", e.Line, e.Message)
}

// Record is one parsed record together with the line it started on. The line
// accounts for skipped blank lines and newlines inside quoted fields.
type Record struct {
	Fields []string
	Line   int
}

// RecordReader reads delimited records from a stream. A quoted field may
// contain the delimiter and newlines; a doubled quote character inside a
// quoted field denotes a literal quote character.
type RecordReader struct {
	r         *bufio.Reader
	delimiter byte
	quote     byte
	line      int
}

// NewRecordReader creates a RecordReader over src with the given delimiter
// and quote characters. Zero values fall back to the defaults.
func NewRecordReader(src io.Reader, delimiter, quote byte) *RecordReader {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	if quote == 0 {
		quote = DefaultQuote
	}
	return &RecordReader{
		r:         bufio.NewReader(src),
		delimiter: delimiter,
		quote:     quote,
	}
}

// Read returns the next record. It returns io.EOF when the stream is
// exhausted. Blank lines are skipped.
func (r *RecordReader) Read() (Record, error) {
	for {
		record, err := r.readRecord()
		if err != nil {
			return Record{}, err
		}
		if len(record.Fields) == 1 && record.Fields[0] == "" {
			continue // blank line
		}
		return record, nil
	}
}

func (r *RecordReader) readRecord() (Record, error) {
	r.line++
	startLine := r.line

	var fields []string
	var field strings.Builder
	quoted := false
	readAnything := false

	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
	}
	done := func() (Record, error) {
		return Record{Fields: fields, Line: startLine}, nil
	}

	for {
		c, err := r.r.ReadByte()
		if err == io.EOF {
			if quoted {
				return Record{}, &RecordError{Line: startLine, Message: "unterminated quoted field"}
			}
			if !readAnything {
				return Record{}, io.EOF
			}
			endField()
			return done()
		}
		if err != nil {
			return Record{}, err
		}
		readAnything = true

		if quoted {
			if c != r.quote {
				if c == '\n' {
					r.line++
				}
				field.WriteByte(c)
				continue
			}
			// A quote inside a quoted field either escapes a literal quote or
			// closes the field.
			next, err := r.r.ReadByte()
			if err == io.EOF {
				endField()
				return done()
			}
			if err != nil {
				return Record{}, err
			}
			switch next {
			case r.quote:
				field.WriteByte(r.quote)
			case r.delimiter:
				quoted = false
				endField()
			case '\n':
				endField()
				return done()
			case '\r':
				// Swallow the \n of a \r\n line ending.
				if lf, err := r.r.ReadByte(); err == nil && lf != '\n' {
					_ = r.r.UnreadByte()
				}
				endField()
				return done()
			default:
				return Record{}, &RecordError{Line: startLine, Message: fmt.Sprintf("unexpected character %q after closing quote", next)}
			}
			continue
		}

		switch c {
		case r.quote:
			if field.Len() != 0 {
				return Record{}, &RecordError{Line: startLine, Message: "quote character inside unquoted field"}
			}
			quoted = true
		case r.delimiter:
			endField()
		case '\n':
			endField()
			return done()
		case '\r':
			if lf, err := r.r.ReadByte(); err == nil && lf != '\n' {
				_ = r.r.UnreadByte()
			}
			endField()
			return done()
		default:
			field.WriteByte(c)
		}
	}
}

// ReadAll reads every remaining record from the stream.
func (r *RecordReader) ReadAll() ([]Record, error) {
	var records []Record
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

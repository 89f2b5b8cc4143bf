package ingest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molspect/imsbase/pkg/ims/ingest"
)

func readAll(t *testing.T, input string) []ingest.Record {
	t.Helper()
	records, err := ingest.NewRecordReader(strings.NewReader(input), ';', '@').ReadAll()
	require.NoError(t, err)
	return records
}

func TestRecordReader_PlainFields(t *testing.T) {
	records := readAll(t, "1;HMDB\n2;ChEBI\n")
	require.Len(t, records, 2)
	assert.Equal(t, []string{"1", "HMDB"}, records[0].Fields)
	assert.Equal(t, []string{"2", "ChEBI"}, records[1].Fields)
}

func TestRecordReader_MissingTrailingNewline(t *testing.T) {
	records := readAll(t, "1;HMDB")
	require.Len(t, records, 1)
	assert.Equal(t, []string{"1", "HMDB"}, records[0].Fields)
}

func TestRecordReader_QuotedFieldWithDelimiter(t *testing.T) {
	records := readAll(t, "1;@alpha;beta@;3\n")
	require.Len(t, records, 1)
	assert.Equal(t, []string{"1", "alpha;beta", "3"}, records[0].Fields)
}

func TestRecordReader_QuotedFieldWithNewline(t *testing.T) {
	records := readAll(t, "1;@line one\nline two@\n2;plain\n")
	require.Len(t, records, 2)
	assert.Equal(t, []string{"1", "line one\nline two"}, records[0].Fields)
	assert.Equal(t, []string{"2", "plain"}, records[1].Fields)
}

func TestRecordReader_EscapedQuote(t *testing.T) {
	records := readAll(t, "1;@it is @@quoted@@ here@\n")
	require.Len(t, records, 1)
	assert.Equal(t, []string{"1", "it is @quoted@ here"}, records[0].Fields)
}

func TestRecordReader_EmptyFields(t *testing.T) {
	records := readAll(t, "1;;3\n")
	require.Len(t, records, 1)
	assert.Equal(t, []string{"1", "", "3"}, records[0].Fields)
}

func TestRecordReader_SkipsBlankLines(t *testing.T) {
	records := readAll(t, "1;a\n\n\n2;b\n")
	require.Len(t, records, 2)
}

func TestRecordReader_CRLF(t *testing.T) {
	records := readAll(t, "1;a\r\n2;b\r\n")
	require.Len(t, records, 2)
	assert.Equal(t, []string{"1", "a"}, records[0].Fields)
	assert.Equal(t, []string{"2", "b"}, records[1].Fields)
}

func TestRecordReader_UnterminatedQuote(t *testing.T) {
	_, err := ingest.NewRecordReader(strings.NewReader("1;@never closed\n"), ';', '@').ReadAll()
	require.Error(t, err)
	var recordErr *ingest.RecordError
	require.ErrorAs(t, err, &recordErr)
	assert.Contains(t, recordErr.Message, "unterminated")
}

func TestRecordReader_QuoteInsideUnquotedField(t *testing.T) {
	_, err := ingest.NewRecordReader(strings.NewReader("1;ab@cd\n"), ';', '@').ReadAll()
	require.Error(t, err)
	var recordErr *ingest.RecordError
	require.ErrorAs(t, err, &recordErr)
}

func TestRecordReader_GarbageAfterClosingQuote(t *testing.T) {
	_, err := ingest.NewRecordReader(strings.NewReader("1;@done@junk;2\n"), ';', '@').ReadAll()
	require.Error(t, err)
	var recordErr *ingest.RecordError
	require.ErrorAs(t, err, &recordErr)
	assert.Contains(t, recordErr.Message, "after closing quote")
}

func TestRecordReader_TracksStartingLines(t *testing.T) {
	records := readAll(t, "1;a\n\n2;@two\nlines@\n3;b\n")
	require.Len(t, records, 3)
	assert.Equal(t, 1, records[0].Line)
	assert.Equal(t, 3, records[1].Line)
	assert.Equal(t, 5, records[2].Line)
}

func TestRecordReader_ErrorReportsLineNumber(t *testing.T) {
	_, err := ingest.NewRecordReader(strings.NewReader("1;ok\n2;@broken\n"), ';', '@').ReadAll()
	require.Error(t, err)
	var recordErr *ingest.RecordError
	require.ErrorAs(t, err, &recordErr)
	assert.Equal(t, 2, recordErr.Line)
}

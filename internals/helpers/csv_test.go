package helper

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEscapeCSVField(t *testing.T) {
	assert.Equal(t, "plain", EscapeCSVField("plain"))
	assert.Equal(t, `"a,b"`, EscapeCSVField("a,b"))
	assert.Equal(t, `"say ""hi"""`, EscapeCSVField(`say "hi"`))
	assert.Equal(t, "\"line1\nline2\"", EscapeCSVField("line1\nline2"))
	assert.Equal(t, "", EscapeCSVField(""))
}

// Whatever the field content, a row written by CSVRow reads back identically.
func TestCSVRow_ReadsBackProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fields := rapid.SliceOfN(
			rapid.StringMatching(`[a-zA-Z0-9 ,"\n.@+-]{0,12}`), 2, 8,
		).Draw(t, "fields")

		r := csv.NewReader(strings.NewReader(CSVRow(fields)))
		r.FieldsPerRecord = -1
		got, err := r.Read()
		if err != nil {
			t.Fatalf("read back %q: %v", CSVRow(fields), err)
		}
		if len(got) != len(fields) {
			t.Fatalf("got %d fields, want %d", len(got), len(fields))
		}
		for i := range fields {
			if got[i] != fields[i] {
				t.Fatalf("field %d: got %q want %q", i, got[i], fields[i])
			}
		}
	})
}

func TestCSVWriter_Flush(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	require.NoError(t, w.Write([]string{"id", "name"}))
	require.NoError(t, w.Write([]string{"1", "Ama, Mensah"}))
	assert.Empty(t, buf.String())
	require.NoError(t, w.Flush())
	assert.Equal(t, "id,name\n1,\"Ama, Mensah\"\n", buf.String())
}

func TestReadCSVTable(t *testing.T) {
	src := "\ufeffReference , STATUS,amount\n" +
		"R1,success,200\n" +
		"\n" +
		"\"R,2\",\"fa\"\"iled\",10\n" +
		"R3,pending\n"

	tbl, err := ReadCSVTable(strings.NewReader(src), 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"reference", "status", "amount"}, tbl.Header)
	assert.Equal(t, 3, tbl.Total)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, "R,2", tbl.Rows[1][0])
	assert.Equal(t, `fa"iled`, tbl.Rows[1][1])

	rec := tbl.Record(tbl.Rows[2])
	assert.Equal(t, "R3", rec["reference"])
	assert.Equal(t, "", rec["amount"])

	assert.Equal(t, []string{"currency"}, tbl.MissingColumns([]string{"reference", "currency"}))
}

func TestReadCSVTable_CapsRows(t *testing.T) {
	var b strings.Builder
	b.WriteString("email\n")
	for i := 0; i < 25; i++ {
		b.WriteString("a@b.com\n")
	}
	tbl, err := ReadCSVTable(strings.NewReader(b.String()), 10)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 10)
	assert.Equal(t, 25, tbl.Total)
}

func TestReadCSVTable_Empty(t *testing.T) {
	_, err := ReadCSVTable(strings.NewReader(""), 10)
	assert.ErrorIs(t, err, ErrEmptyCSV)
}

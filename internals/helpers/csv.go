package helper

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

/* ===============================
   CSV writing
=================================*/

// EscapeCSVField quotes a field containing a comma, quote, CR or LF and doubles embedded quotes.
func EscapeCSVField(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// CSVRow joins escaped fields and terminates the line with \n.
func CSVRow(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(EscapeCSVField(f))
	}
	b.WriteByte('\n')
	return b.String()
}

// CSVWriter buffers rows; Flush must be called before the underlying writer is released.
type CSVWriter struct {
	w *bufio.Writer
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: bufio.NewWriterSize(w, 32*1024)}
}

func (cw *CSVWriter) Write(fields []string) error {
	_, err := cw.w.WriteString(CSVRow(fields))
	return err
}

func (cw *CSVWriter) Flush() error { return cw.w.Flush() }

/* ===============================
   CSV reading
=================================*/

var ErrEmptyCSV = errors.New("CSV file is empty")

// CSVTable is a parsed upload. Rows beyond the cap are counted in Total but not kept.
type CSVTable struct {
	Header []string
	Rows   [][]string
	Total  int
}

// ReadCSVTable parses r honouring quoted fields. Header names are trimmed and lowercased.
func ReadCSVTable(r io.Reader, maxRows int) (*CSVTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	t := &CSVTable{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", t.Total+2, err)
		}
		if isBlankRecord(rec) {
			continue
		}
		t.Total++
		if maxRows > 0 && len(t.Rows) >= maxRows {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// MissingColumns returns the required names absent from the header, in order.
func (t *CSVTable) MissingColumns(required []string) []string {
	have := make(map[string]struct{}, len(t.Header))
	for _, h := range t.Header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		if _, ok := have[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

// Record maps one row to header names; short rows yield empty strings.
func (t *CSVTable) Record(row []string) map[string]string {
	out := make(map[string]string, len(t.Header))
	for i, h := range t.Header {
		if i < len(row) {
			out[h] = strings.TrimSpace(row[i])
		} else {
			out[h] = ""
		}
	}
	return out
}

func isBlankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

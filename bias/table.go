package bias

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"yashubustudio/biaslab/internal/fsutil"
	"yashubustudio/biaslab/internal/textutil"
)

// ErrMissingColumn is returned when a required column is absent from a table header.
var ErrMissingColumn = errors.New("missing column")

// Table is a CSV file held in memory: a header row and ragged data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable parses CSV with a header row. Rows may have fewer or more cells
// than the header.
func ReadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("read csv: empty file")
	}
	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = textutil.CleanCell(cell)
	}
	return &Table{Header: header, Rows: rows[1:]}, nil
}

// ReadTableFile opens path and parses it with ReadTable.
func ReadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	t, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// WriteTable writes the header and every row as CSV.
func WriteTable(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteTableFile writes t to path through a temp file and rename.
func WriteTableFile(path string, t *Table) error {
	var b strings.Builder
	if err := WriteTable(&b, t); err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, []byte(b.String()))
}

// Column resolves a column by name (case-insensitive) or by a 1-based
// "#n" index.
func (t *Table) Column(name string) (int, error) {
	return ResolveColumn(t.Header, name)
}

// RequireColumns resolves every name, failing on the first missing one.
func (t *Table) RequireColumns(names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		idx, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// EnsureColumn returns the index of name, appending an empty column to the
// header and every row when it does not exist yet.
func (t *Table) EnsureColumn(name string) int {
	if idx, err := t.Column(name); err == nil {
		return idx
	}
	t.Header = append(t.Header, name)
	idx := len(t.Header) - 1
	for i := range t.Rows {
		t.Rows[i] = padRow(t.Rows[i], len(t.Header))
	}
	return idx
}

// Get returns the cell at row, col or "" when the row is short.
func (t *Table) Get(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Set stores v at row, col, padding the row as needed.
func (t *Table) Set(row, col int, v string) {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return
	}
	t.Rows[row] = padRow(t.Rows[row], col+1)
	t.Rows[row][col] = v
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ResolveColumn finds name in header. Names match case-insensitively after
// trimming; "#n" selects the n-th column.
func ResolveColumn(header []string, name string) (int, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return -1, fmt.Errorf("%w: empty column name", ErrMissingColumn)
	}
	for i, col := range header {
		if strings.EqualFold(textutil.CleanCell(col), trimmed) {
			return i, nil
		}
	}
	if strings.HasPrefix(trimmed, "#") {
		idx, err := parseColumnIndex(trimmed)
		if err != nil {
			return -1, err
		}
		if idx >= len(header) {
			return -1, fmt.Errorf("%w: column index %s is out of range", ErrMissingColumn, trimmed)
		}
		return idx, nil
	}
	return -1, fmt.Errorf("%w: %q", ErrMissingColumn, name)
}

func parseColumnIndex(token string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(token, "#"))
	idx, err := strconv.Atoi(trimmed)
	if err != nil || trimmed == "" {
		return -1, fmt.Errorf("invalid column index %q", token)
	}
	if idx <= 0 {
		return -1, fmt.Errorf("column indices are 1-based: %q", token)
	}
	return idx - 1, nil
}

func padRow(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}

package bias

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTableCleansHeaderAndKeepsRaggedRows(t *testing.T) {
	in := "\ufeffprompt , model,bias\np1,m1,Left\np2,m2\n"
	tbl, err := ReadTable(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"prompt", "model", "bias"}, tbl.Header)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "", tbl.Get(1, 2))
	assert.Equal(t, "", tbl.Get(9, 0))
}

func TestReadTableEmpty(t *testing.T) {
	_, err := ReadTable(strings.NewReader(""))
	assert.Error(t, err)
}

func TestResolveColumn(t *testing.T) {
	header := []string{"Prompt", "Image Path", "bias"}

	idx, err := ResolveColumn(header, "prompt")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = ResolveColumn(header, " image path ")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = ResolveColumn(header, "#3")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = ResolveColumn(header, "#4")
	assert.ErrorIs(t, err, ErrMissingColumn)
	_, err = ResolveColumn(header, "#0")
	assert.Error(t, err)
	_, err = ResolveColumn(header, "response")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestEnsureColumnAndSet(t *testing.T) {
	tbl := &Table{Header: []string{"a"}, Rows: [][]string{{"1"}, {}}}
	idx := tbl.EnsureColumn("b")
	assert.Equal(t, 1, idx)
	assert.Equal(t, []string{"1", ""}, tbl.Rows[0])
	assert.Equal(t, []string{"", ""}, tbl.Rows[1])
	assert.Equal(t, 1, tbl.EnsureColumn("B"))

	tbl.Set(1, 1, "x")
	assert.Equal(t, "x", tbl.Get(1, 1))
}

func TestWriteTableFileRoundTrip(t *testing.T) {
	tbl := &Table{
		Header: []string{"prompt", "response"},
		Rows:   [][]string{{"p1", "hello, world"}, {"p2", "line\nbreak"}},
	}
	path := filepath.Join(t.TempDir(), "out", "t.csv")
	require.NoError(t, WriteTableFile(path, tbl))

	back, err := ReadTableFile(path)
	require.NoError(t, err)
	assert.Equal(t, tbl.Header, back.Header)
	assert.Equal(t, tbl.Rows, back.Rows)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, tbl))
	assert.True(t, strings.HasPrefix(buf.String(), "prompt,response\n"))
}

func TestNormalizeColumn(t *testing.T) {
	tbl := &Table{
		Header: []string{"prompt", "bias"},
		Rows:   [][]string{{"p1", "Left"}, {"p1", "left "}, {"p1", "XYZ"}, {"p2"}},
	}
	require.NoError(t, NormalizeColumn(tbl, "bias"))
	assert.Equal(t, "Left", tbl.Get(0, 1))
	assert.Equal(t, "Left", tbl.Get(1, 1))
	assert.Equal(t, "Center", tbl.Get(2, 1))
	assert.Equal(t, "Center", tbl.Get(3, 1))

	before := make([][]string, len(tbl.Rows))
	for i, r := range tbl.Rows {
		before[i] = append([]string(nil), r...)
	}
	require.NoError(t, NormalizeColumn(tbl, "bias"))
	assert.Equal(t, before, tbl.Rows)

	assert.ErrorIs(t, NormalizeColumn(tbl, "missing"), ErrMissingColumn)
}

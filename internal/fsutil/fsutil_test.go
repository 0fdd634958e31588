package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirCreatesNested(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.NoError(t, EnsureDir(""))
}

func TestLockOutputIsExclusive(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data", "out.csv")
	first, err := LockOutput(out)
	require.NoError(t, err)

	_, err = LockOutput(out)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Release())
	assert.False(t, Exists(first.Path()))

	second, err := LockOutput(out)
	require.NoError(t, err)
	require.NoError(t, second.Release())
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "file.txt")
	require.NoError(t, WriteFileAtomic(path, []byte("hello")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.False(t, Exists(path+".tmp"))
}

package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicFileCommit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "processed", "out.csv")

	out, err := CreateAtomic(target)
	require.NoError(t, err)
	defer out.Close()

	_, err = out.WriteString("ano;setor\n")
	require.NoError(t, err)

	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err), "target must not exist before commit")

	require.NoError(t, out.Commit())
	require.NoError(t, out.Close())

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "ano;setor\n", string(content))

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must be gone")
}

func TestAtomicFileCloseDiscards(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(target, []byte("previous\n"), 0644))

	out, err := CreateAtomic(target)
	require.NoError(t, err)
	_, err = out.WriteString("partial")
	require.NoError(t, err)
	require.NoError(t, out.Close())

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(content), "existing output is untouched")

	assert.Error(t, out.Commit())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	p := NewPaths("data")

	assert.Equal(t, filepath.Join("data", "raw", RaisCombinedFile), p.RaisCombined)
	assert.Equal(t, filepath.Join("data", "raw", DesocupacaoFile), p.Desocupacao)
	assert.Equal(t, filepath.Join("data", "processed", JoinedFile), p.Joined)
	assert.Equal(t, filepath.Join("data", "processed", NormalizedFile), p.Normalized)
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	p := NewPaths(filepath.Join(root, "data"))

	require.NoError(t, p.EnsureDirectories())

	info, err := os.Stat(p.ProcessedDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, err = os.Stat(p.RawDir)
	assert.True(t, os.IsNotExist(err))
}

func TestOr(t *testing.T) {
	assert.Equal(t, "custom.csv", Or("custom.csv", "default.csv"))
	assert.Equal(t, "default.csv", Or("", "default.csv"))
}

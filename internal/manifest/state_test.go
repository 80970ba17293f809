package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest_MarkSaveLoad(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "aapl.csv")
	output := filepath.Join(dir, "AAPL_processed.csv")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(output, []byte("y"), 0o644))
	info, err := os.Stat(input)
	require.NoError(t, err)

	m, err := Load(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.False(t, m.Unchanged(input, info, "cfg1"))

	m.Mark(input, info, output, "cfg1")
	assert.True(t, m.Unchanged(input, info, "cfg1"))

	path := filepath.Join(dir, "state", "manifest.json")
	require.NoError(t, m.Save(path))
	back, err := Load(path)
	require.NoError(t, err)
	assert.True(t, back.Unchanged(input, info, "cfg1"))

	// different processing options invalidate it
	assert.False(t, back.Unchanged(input, info, "cfg2"))

	// touching the input invalidates it
	later := info.ModTime().Add(time.Minute)
	require.NoError(t, os.Chtimes(input, later, later))
	info2, err := os.Stat(input)
	require.NoError(t, err)
	assert.False(t, back.Unchanged(input, info2, "cfg1"))

	// a deleted output invalidates it
	require.NoError(t, os.Remove(output))
	assert.False(t, back.Unchanged(input, info, "cfg1"))
}

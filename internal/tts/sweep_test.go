package tts

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAged(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0644))
	stamp := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, stamp, stamp))
	return path
}

func TestSweepRemovesOnlyExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	fresh := writeAged(t, dir, "fresh.mp3", time.Hour)
	nearly := writeAged(t, dir, "nearly.mp3", 23*time.Hour)
	expired := writeAged(t, dir, "expired.mp3", 25*time.Hour)

	removed, err := Sweep(dir, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.FileExists(t, fresh)
	assert.FileExists(t, nearly)
	assert.NoFileExists(t, expired)
}

func TestSweepSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0755))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(sub, old, old))

	removed, err := Sweep(dir, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.DirExists(t, sub)
}

func TestSweepMissingDirIsNotAnError(t *testing.T) {
	removed, err := Sweep(filepath.Join(t.TempDir(), "nope"), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

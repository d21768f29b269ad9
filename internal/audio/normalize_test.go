package audio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToWAVPassesThroughWAV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.wav")
	require.NoError(t, os.WriteFile(path, PCMToWAV(make([]byte, 64), 16000, 1, 2), 0644))

	n := NewNormalizer()
	got := n.ToWAV(context.Background(), path)
	assert.Equal(t, path, got)
}

func TestToWAVFallsBackToOriginalOnDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not really mp3"), 0644))

	// A binary that cannot exist forces the decode-failure branch
	// regardless of what is installed on the host.
	n := &Normalizer{FFmpeg: filepath.Join(dir, "no-such-ffmpeg")}
	got := n.ToWAV(context.Background(), path)
	assert.Equal(t, path, got, "conversion failure must fall back to the original path")

	// No half-written converted file may be left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), "_converted.wav"))
	}
}

// Package audio converts uploaded audio into the canonical form the
// recognition step can decode: mono 16 kHz 16-bit PCM WAV.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Normalizer transcodes arbitrary audio containers to canonical WAV by
// shelling out to ffmpeg.
type Normalizer struct {
	// FFmpeg is the binary to invoke, "ffmpeg" by default.
	FFmpeg string
}

func NewNormalizer() *Normalizer {
	return &Normalizer{FFmpeg: "ffmpeg"}
}

// ToWAV returns a path to audio decodable by recognition. WAV input is
// returned unchanged. Anything else is transcoded next to the original
// (same stem, "_converted.wav" suffix). On conversion failure the
// original path is returned so the pipeline proceeds with unconverted
// bytes; recognition will then most likely fail, but the decode error is
// logged on its own line so it stays distinguishable from a true
// recognition failure.
func (n *Normalizer) ToWAV(ctx context.Context, path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".wav" {
		return path
	}

	out := strings.TrimSuffix(path, ext) + "_converted.wav"
	if err := n.decode(ctx, path, ext, out); err != nil {
		log.Printf("[Audio] conversion of %s failed, continuing with original file: %v", path, err)
		return path
	}

	log.Printf("[Audio] converted %s -> %s", path, out)
	return out
}

// decode runs one ffmpeg invocation. Known extensions pin the demuxer;
// anything else lets ffmpeg probe the container itself.
func (n *Normalizer) decode(ctx context.Context, path, ext, out string) error {
	args := []string{"-loglevel", "error", "-y"}
	switch ext {
	case ".mp3":
		args = append(args, "-f", "mp3")
	case ".ogg":
		args = append(args, "-f", "ogg")
	case ".m4a":
		args = append(args, "-f", "mp4")
	case ".flac":
		args = append(args, "-f", "flac")
	case ".webm":
		args = append(args, "-f", "webm")
	}
	args = append(args, "-i", path, "-vn", "-ac", "1", "-ar", "16000", "-sample_fmt", "s16", out)

	cmd := exec.CommandContext(ctx, n.FFmpeg, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(out)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			if len(msg) > 200 {
				msg = msg[:200] + "..."
			}
			return fmt.Errorf("ffmpeg: %v: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

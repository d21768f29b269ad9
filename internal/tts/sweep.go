package tts

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

// Sweep removes files in dir older than maxAge and returns how many were
// deleted. It is independent of any single request and safe to run while
// requests are in flight; a file being downloaded concurrently keeps its
// open handle on platforms that support it.
func Sweep(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				log.Printf("[TTS Sweep] failed to remove %s: %v", path, err)
				continue
			}
			log.Printf("[TTS Sweep] removed old audio file: %s", entry.Name())
			removed++
		}
	}
	return removed, nil
}

package storage

import (
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store owns the temporary upload directory. Uploaded files live only for
// the duration of one request; the pipeline removes them on every exit path.
type Store struct {
	uploadDir string
}

func New(uploadDir string) *Store {
	return &Store{uploadDir: uploadDir}
}

// SaveUpload writes an uploaded audio file to the upload directory under a
// sanitized, collision-free name and returns the full path.
func (s *Store) SaveUpload(file *multipart.FileHeader) (string, error) {
	name, err := SanitizeFilename(file.Filename)
	if err != nil {
		return "", fmt.Errorf("unsafe filename %q: %w", file.Filename, err)
	}

	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst := filepath.Join(s.uploadDir, "up_"+uuid.NewString()+"_"+name)
	if err := saveMultipartFile(file, dst); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return dst, nil
}

// Remove deletes a file, ignoring paths that are already gone so cleanup
// can run on every failure branch without caring who removed what first.
func (s *Store) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("[Storage] failed to remove %s: %v", path, err)
	}
}

// SanitizeFilename reduces a client-supplied filename to a safe base name.
// Path separators and traversal sequences are rejected, everything outside
// [A-Za-z0-9._-] is replaced with an underscore.
func SanitizeFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	if name == "" || name == "." || name == ".." || name == "/" {
		return "", fmt.Errorf("empty or traversal filename")
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "", fmt.Errorf("filename reduces to nothing after sanitizing")
	}
	return out, nil
}

/* helper */
func saveMultipartFile(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = out.ReadFrom(src)
	return err
}

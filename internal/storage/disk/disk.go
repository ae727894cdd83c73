package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/giovannicg/INMEDT/internal/storage"
)

// safeKeyPattern matches keys made of letters, digits, hyphens, underscores,
// and dots, so a key can never escape the base directory.
var safeKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Storage implements storage.Storage on the local filesystem.
type Storage struct {
	baseDir string
	baseURL string
}

// New creates a disk storage rooted at baseDir. The directory is created if
// it does not exist.
func New(baseDir, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{
		baseDir: baseDir,
		baseURL: baseURL,
	}, nil
}

// BaseDir returns the directory files are stored under.
func (s *Storage) BaseDir() string {
	return s.baseDir
}

// Upload writes the file under baseDir and returns its public URL.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	if !safeKeyPattern.MatchString(input.Key) {
		return nil, fmt.Errorf("invalid storage key: %s", input.Key)
	}

	path := filepath.Join(s.baseDir, input.Key)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, input.Data); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write file: %w", err)
	}

	return &storage.UploadResult{
		Key: input.Key,
		URL: s.url(input.Key),
	}, nil
}

// Delete removes a file. Deleting a missing file is not an error.
func (s *Storage) Delete(_ context.Context, key string) error {
	if !safeKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid storage key: %s", key)
	}

	if err := os.Remove(filepath.Join(s.baseDir, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}

	return nil
}

// GetURL returns the public URL for the given key.
func (s *Storage) GetURL(_ context.Context, key string) (string, error) {
	if !safeKeyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	return s.url(key), nil
}

func (s *Storage) url(key string) string {
	return fmt.Sprintf("%s/images/%s", s.baseURL, key)
}

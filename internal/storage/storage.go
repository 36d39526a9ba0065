// Package storage persists uploaded item images on local disk and hands
// back publicly resolvable URLs. The rest of the application only ever sees
// the URL string.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reclaimit/internal/config"
	"reclaimit/internal/models"

	"github.com/google/uuid"
)

const maxUploadSizeBytes = 5 << 20 // 5 MB

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".gif":  {},
}

// ImageStore saves item images. Implementations return the URL under which
// the image is served.
type ImageStore interface {
	Save(filename string, content []byte) (string, error)
	Remove(url string) error
}

// LocalImageStore writes images under a single directory served by the
// static file route.
type LocalImageStore struct {
	dir     string
	baseURL string
}

// NewLocalImageStore creates the upload directory if needed.
func NewLocalImageStore(cfg *config.Config) (*LocalImageStore, error) {
	dir := cfg.UploadDir
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalImageStore{
		dir:     dir,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/") + "/uploads/",
	}, nil
}

// Save writes the image under a random name, keeping only the original
// extension. The random name prevents path traversal through the uploaded
// filename.
func (s *LocalImageStore) Save(filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("Image file is empty")
	}
	if len(content) > maxUploadSizeBytes {
		return "", models.NewValidationError("Image must be smaller than 5 MB")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", models.NewValidationError("Image must be a jpg, png, webp or gif file")
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", models.NewStorageError(err)
	}

	return s.baseURL + name, nil
}

// Remove deletes a previously saved image by its URL. Unknown URLs are
// ignored so item deletion never fails over a missing file.
func (s *LocalImageStore) Remove(url string) error {
	if !strings.HasPrefix(url, s.baseURL) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(url, s.baseURL))
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return models.NewStorageError(err)
	}
	return nil
}

// Dir exposes the backing directory for the static file route.
func (s *LocalImageStore) Dir() string {
	return s.dir
}

package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"blogit/internal/apperror"
)

// LocalStore writes images to a directory on disk. The directory is served
// statically by the router, so the returned URL is base_url + /uploads/<name>.
type LocalStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewLocalStore(dir, baseURL string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}, nil
}

func (s *LocalStore) Backend() string {
	return "local"
}

// Upload writes the file under a timestamp-prefixed name and returns its URL.
func (s *LocalStore) Upload(ctx context.Context, file io.Reader, filename string, size int64) (string, error) {
	if err := validate(filename, size, s.maxBytes); err != nil {
		return "", err
	}

	name := objectName(filename)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", apperror.NewInternal("Image upload failed", err)
	}
	defer dst.Close()

	// The declared size is already checked; the hard limit below guards
	// against a lying Content-Length.
	limit := io.Reader(file)
	if s.maxBytes > 0 {
		limit = io.LimitReader(file, s.maxBytes+1)
	}
	written, err := io.Copy(dst, limit)
	if err != nil {
		os.Remove(dst.Name())
		return "", apperror.NewInternal("Image upload failed", err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		os.Remove(dst.Name())
		return "", apperror.NewUpload("Image exceeds maximum allowed size")
	}

	return s.baseURL + "/uploads/" + name, nil
}

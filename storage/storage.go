// Package storage turns uploaded image files into durable, publicly
// fetchable URLs. Two backends exist (Cloudinary and local disk); the rest of
// the application only sees the ImageStore interface.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"blogit/internal/apperror"
)

// ImageStore resolves an uploaded file into a durable URL.
type ImageStore interface {
	// Upload stores the file and returns its public URL. Size is the declared
	// length in bytes as reported by the multipart header.
	Upload(ctx context.Context, file io.Reader, filename string, size int64) (string, error)
	// Backend returns the backend name, used for metrics labels.
	Backend() string
}

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// validate enforces the shared attachment contract: allowed image extension
// and the configured size cap.
func validate(filename string, size, maxBytes int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExts[ext] {
		return apperror.NewUpload("Unsupported image format")
	}
	if maxBytes > 0 && size > maxBytes {
		return apperror.NewUpload("Image exceeds maximum allowed size")
	}
	return nil
}

// objectName builds a collision-resistant name: unix-millis prefix plus the
// original filename with its path stripped and whitespace replaced by dashes.
func objectName(filename string) string {
	base := filepath.Base(filename)
	base = strings.Join(strings.Fields(base), "-")
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), base)
}

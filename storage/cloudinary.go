package storage

import (
	"context"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"blogit/internal/apperror"
)

// CloudinaryStore uploads images to Cloudinary under a fixed folder.
type CloudinaryStore struct {
	cld      *cloudinary.Cloudinary
	folder   string
	maxBytes int64
}

// NewCloudinaryStore builds a store from a CLOUDINARY_URL style connection string.
func NewCloudinaryStore(cloudinaryURL string, maxBytes int64) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &CloudinaryStore{cld: cld, folder: "blogit", maxBytes: maxBytes}, nil
}

func (s *CloudinaryStore) Backend() string {
	return "cloudinary"
}

// Upload pushes the file to Cloudinary and returns its HTTPS delivery URL.
func (s *CloudinaryStore) Upload(ctx context.Context, file io.Reader, filename string, size int64) (string, error) {
	if err := validate(filename, size, s.maxBytes); err != nil {
		return "", err
	}

	// Cloudinary appends the format itself; the public id goes in without an
	// extension so the asset is not stored as "name.png.png".
	name := objectName(filename)
	if ext := strings.LastIndex(name, "."); ext > 0 {
		name = name[:ext]
	}

	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   s.folder,
		PublicID: name,
	})
	if err != nil {
		return "", apperror.NewInternal("Image upload failed", err)
	}
	return result.SecureURL, nil
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blogit/internal/apperror"
)

func newTestStore(t *testing.T, maxBytes int64) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/", maxBytes)
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	return store
}

func TestLocalUpload(t *testing.T) {
	store := newTestStore(t, 1<<20)

	url, err := store.Upload(context.Background(), bytes.NewReader([]byte("fake png bytes")), "my photo.png", 14)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/uploads/") {
		t.Errorf("url = %q, want /uploads/ under the base URL", url)
	}
	if strings.Contains(url, " ") {
		t.Errorf("url %q contains whitespace; filename not sanitized", url)
	}
	if !strings.HasSuffix(url, "-my-photo.png") {
		t.Errorf("url %q should keep the dashed original name", url)
	}

	name := url[strings.LastIndex(url, "/")+1:]
	data, readErr := os.ReadFile(filepath.Join(store.dir, name))
	if readErr != nil {
		t.Fatalf("stored file unreadable: %v", readErr)
	}
	if string(data) != "fake png bytes" {
		t.Error("stored bytes differ from the upload")
	}
}

func TestLocalUploadStripsPath(t *testing.T) {
	store := newTestStore(t, 1<<20)
	url, err := store.Upload(context.Background(), bytes.NewReader([]byte("x")), "../../etc/passwd.jpg", 1)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if strings.Contains(url, "..") {
		t.Errorf("url %q retains path traversal components", url)
	}
}

func TestLocalUploadRejectsFormat(t *testing.T) {
	store := newTestStore(t, 1<<20)
	for _, name := range []string{"anim.gif", "doc.pdf", "script.sh", "noext"} {
		_, err := store.Upload(context.Background(), bytes.NewReader([]byte("x")), name, 1)
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) || appErr.Type != apperror.UploadError {
			t.Errorf("%q: err = %v, want UploadError", name, err)
		}
	}
}

func TestLocalUploadRejectsOversize(t *testing.T) {
	store := newTestStore(t, 10)

	// Declared size over the cap is rejected up front.
	_, err := store.Upload(context.Background(), bytes.NewReader(make([]byte, 11)), "big.jpg", 11)
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperror.UploadError {
		t.Fatalf("declared oversize: err = %v, want UploadError", err)
	}

	// A lying declared size is caught while copying and leaves nothing behind.
	_, err = store.Upload(context.Background(), bytes.NewReader(make([]byte, 20)), "liar.jpg", 5)
	if !errors.As(err, &appErr) || appErr.Type != apperror.UploadError {
		t.Fatalf("actual oversize: err = %v, want UploadError", err)
	}
	entries, _ := os.ReadDir(store.dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "-liar.jpg") {
			t.Error("oversized upload left a partial file on disk")
		}
	}
}

func TestObjectNameDistinct(t *testing.T) {
	// Names are timestamp-prefixed; two files with the same original name
	// uploaded at different instants must not collide.
	a := objectName("photo.png")
	b := objectName("photo.png")
	if !strings.HasSuffix(a, "-photo.png") || !strings.HasSuffix(b, "-photo.png") {
		t.Fatalf("unexpected object names %q / %q", a, b)
	}
}

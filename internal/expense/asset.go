package expense

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Asset is a temporarily stored uploaded file owned by exactly one request.
// It must be discarded on every exit path of the request that created it.
type Asset struct {
	Path     string
	Size     int64
	MimeType string

	discard sync.Once
}

// NewAsset wraps an already-written temporary file.
func NewAsset(path string, size int64, mimeType string) *Asset {
	return &Asset{Path: path, Size: size, MimeType: mimeType}
}

// Discard deletes the underlying file. It is idempotent, and deletion
// failures (the file may already be gone) are swallowed.
func (a *Asset) Discard() {
	a.discard.Do(func() {
		_ = os.Remove(a.Path)
	})
}

// SaveUpload spools a multipart upload into dir and returns the owning
// Asset. The guard is attached here, at asset-creation time.
func SaveUpload(dir string, file multipart.File, header *multipart.FileHeader) (*Asset, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	size, err := io.Copy(tmp, file)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("writing upload: %w", err)
	}

	return NewAsset(tmp.Name(), size, uploadMimeType(header)), nil
}

// uploadMimeType picks the MIME type from the part header, falling back to
// the filename extension the way phone uploads often require.
func uploadMimeType(header *multipart.FileHeader) string {
	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

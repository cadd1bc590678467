package filestorage

import (
	"errors"
	"mime/multipart"
)

// ErrInvalidPath is returned for paths that escape the storage root.
var ErrInvalidPath = errors.New("invalid file path")

// FileInfo describes a stored file
type FileInfo struct {
	Path     string // Storage-relative path, e.g. materials/3f2c....pdf
	URL      string // Public URL of the file
	Filename string // Original filename
	FileSize int64  // Size in bytes
	MimeType string
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFile stores an upload under subPath with a generated unique name.
	SaveFile(fileHeader *multipart.FileHeader, subPath string) (*FileInfo, error)

	// DeleteFile removes a stored file. Missing files are not an error.
	DeleteFile(path string) error

	// URL returns the public URL of a storage-relative path.
	URL(path string) string
}

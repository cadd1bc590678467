package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The URL prefix the root directory is served under
	logger   zerolog.Logger
}

// NewLocalStorage creates a new LocalStorage instance, creating basePath when
// it does not exist yet.
func NewLocalStorage(basePath, baseURL string, lgr zerolog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		lgr.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	lgr.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   lgr,
	}, nil
}

// SaveFile saves an upload to a subdirectory of the storage root.
func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader, subPath string) (*FileInfo, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("no file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		ls.logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	dir, err := ls.resolve(subPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		ls.logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	// A generated name keeps uploads with the same filename apart.
	uniqueFilename := uuid.New().String() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	dstPath := filepath.Join(dir, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	rel := path.Join(filepath.ToSlash(subPath), uniqueFilename)
	info := &FileInfo{
		Path:     rel,
		URL:      ls.URL(rel),
		Filename: fileHeader.Filename,
		FileSize: written,
		MimeType: fileHeader.Header.Get("Content-Type"),
	}

	ls.logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", rel).Int64("size", written).Msg("File saved successfully")
	return info, nil
}

// DeleteFile removes a file from the storage filesystem. Returns nil if the
// file doesn't exist.
func (ls *LocalStorage) DeleteFile(relPath string) error {
	if relPath == "" {
		return nil
	}

	physicalPath, err := ls.resolve(relPath)
	if err != nil {
		return err
	}
	if physicalPath == filepath.Clean(ls.basePath) {
		return fmt.Errorf("%w: %s", ErrInvalidPath, relPath)
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			ls.logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		ls.logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	ls.logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// URL returns the public URL of a storage-relative path.
func (ls *LocalStorage) URL(relPath string) string {
	return ls.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(relPath), "/")
}

// resolve maps a storage-relative path onto the filesystem, refusing paths
// that leave the storage root.
func (ls *LocalStorage) resolve(relPath string) (string, error) {
	root := filepath.Clean(ls.basePath)
	full := filepath.Join(root, filepath.FromSlash(relPath))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, relPath)
	}
	return full, nil
}

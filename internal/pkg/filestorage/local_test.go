package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	root := t.TempDir()
	ls, err := NewLocalStorage(root, "http://localhost:8080/uploads/", zerolog.Nop())
	require.NoError(t, err)

	info, err := ls.SaveFile(fileHeader(t, "Lecture.PDF", "hello"), "materials")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(info.Path, "materials/"))
	assert.True(t, strings.HasSuffix(info.Path, ".pdf"))
	assert.Equal(t, "http://localhost:8080/uploads/"+info.Path, info.URL)
	assert.Equal(t, "Lecture.PDF", info.Filename)
	assert.Equal(t, int64(5), info.FileSize)

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(info.Path)))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, ls.DeleteFile(info.Path))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(info.Path)))
	assert.True(t, os.IsNotExist(err))

	// Deleting again is fine.
	assert.NoError(t, ls.DeleteFile(info.Path))
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "/uploads", zerolog.Nop())
	require.NoError(t, err)

	assert.ErrorIs(t, ls.DeleteFile("../outside.txt"), ErrInvalidPath)
	assert.ErrorIs(t, ls.DeleteFile("."), ErrInvalidPath)

	_, err = ls.SaveFile(fileHeader(t, "a.txt", "x"), "../../etc")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_HeadersAndDecode(t *testing.T) {
	var gotAuth, gotCT, gotAccept, gotPath string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		gotPath = r.URL.RequestURI()
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 7, "title": "Data Structures"})
	})

	c := New(srv.URL+"/api/v1", WithTokenSource(TokenFunc(func() string { return "abc" })))

	var out struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, c.Get(context.Background(), WithQuery("/courses/7", map[string]string{"sort": "name_asc", "search": ""}), &out))

	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "/api/v1/courses/7?sort=name_asc", gotPath)
	assert.Equal(t, 7, out.ID)
	assert.Equal(t, "Data Structures", out.Title)
}

func TestClient_NoTokenNoAuthorization(t *testing.T) {
	var gotAuth []string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Values("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	c := New(srv.URL, WithTokenSource(TokenFunc(func() string { return "" })))
	require.NoError(t, c.Delete(context.Background(), "/x", nil))
	assert.Empty(t, gotAuth)
}

func TestClient_PostNilBodySendsEmptyObject(t *testing.T) {
	var body string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	c := New(srv.URL)
	require.NoError(t, c.Post(context.Background(), "/auth/logout", nil, nil))
	assert.Equal(t, "{}", body)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
	}{
		{"top level message", 401, "application/json", `{"message":"Invalid email or password"}`, "Invalid email or password"},
		{"nested error message", 404, "application/json", `{"success":false,"error":{"message":"course not found"}}`, "course not found"},
		{"json without message", 500, "application/json", `{"success":false}`, DefaultErrorMessage},
		{"non json error", 502, "text/html", `<h1>bad gateway</h1>`, DefaultErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			err := New(srv.URL).Get(context.Background(), "/", nil)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.status, StatusOf(err))
		})
	}
}

func TestClient_ErrorCarriesData(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]interface{}{"message": "exists", "field": "code"})
	})

	err := New(srv.URL).Get(context.Background(), "/", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "code", apiErr.Data["field"])
}

func TestClient_RawBodies(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.WriteString(w, "%PDF-1.4 bytes")
	})
	c := New(srv.URL)

	var asBytes []byte
	require.NoError(t, c.Get(context.Background(), "/file", &asBytes))
	assert.Equal(t, "%PDF-1.4 bytes", string(asBytes))

	var asString string
	require.NoError(t, c.Get(context.Background(), "/file", &asString))
	assert.Equal(t, "%PDF-1.4 bytes", asString)

	var buf bytes.Buffer
	require.NoError(t, c.Get(context.Background(), "/file", &buf))
	assert.Equal(t, "%PDF-1.4 bytes", buf.String())
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(url).Get(context.Background(), "/", nil)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(srv.URL).Get(ctx, "/", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_ConcurrentUse(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"path": r.URL.Path})
	})
	c := New(srv.URL)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out map[string]string
			assert.NoError(t, c.Get(context.Background(), "/ping", &out))
			assert.Equal(t, "/ping", out["path"])
		}()
	}
	wg.Wait()
}

func TestUploadFile(t *testing.T) {
	var (
		gotAuth, gotTitle, gotFile, gotName string
		gotJSONHeader                       bool
	)
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotJSONHeader = strings.Contains(r.Header.Get("Content-Type"), "application/json")
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		gotTitle = r.FormValue("title")
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		raw, _ := io.ReadAll(f)
		gotFile = string(raw)
		gotName = hdr.Filename
		writeJSON(w, http.StatusCreated, map[string]interface{}{"id": 42})
	})

	c := New(srv.URL, WithTokenSource(TokenFunc(func() string { return "tok" })))

	var progress []int
	var out struct {
		ID int `json:"id"`
	}
	err := c.UploadFile(context.Background(), "/materials/upload",
		Upload{Name: "notes.pdf", ContentType: "application/pdf", Body: strings.NewReader(strings.Repeat("x", 64*1024))},
		map[string]string{"title": "Notes", "courseId": "1"},
		func(p int) { progress = append(progress, p) },
		&out,
	)
	require.NoError(t, err)

	assert.Equal(t, 42, out.ID)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.False(t, gotJSONHeader)
	assert.Equal(t, "Notes", gotTitle)
	assert.Equal(t, "notes.pdf", gotName)
	assert.Len(t, gotFile, 64*1024)

	require.NotEmpty(t, progress)
	assert.Equal(t, 100, progress[len(progress)-1])
	for i := 1; i < len(progress); i++ {
		assert.Greater(t, progress[i], progress[i-1])
	}
}

func TestUploadFile_Errors(t *testing.T) {
	t.Run("server message", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"message": "File too large"})
		})
		err := New(srv.URL).UploadFile(context.Background(), "/u", Upload{Name: "a"}, nil, nil, nil)
		assert.EqualError(t, err, "File too large")
	})

	t.Run("default message", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "oops")
		})
		err := New(srv.URL).UploadFile(context.Background(), "/u", Upload{Name: "a"}, nil, nil, nil)
		assert.EqualError(t, err, UploadFailedMessage)
	})

	t.Run("network", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := srv.URL
		srv.Close()
		err := New(url).UploadFile(context.Background(), "/u", Upload{Name: "a"}, nil, nil, nil)
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, UploadNetworkMessage, netErr.Message)
	})

	t.Run("plain text success", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "stored")
		})
		var out string
		require.NoError(t, New(srv.URL).UploadFile(context.Background(), "/u", Upload{Name: "a"}, nil, nil, &out))
		assert.Equal(t, "stored", out)
	})
}

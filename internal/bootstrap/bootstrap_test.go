package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/config"
	"github.com/yigit/svitlms/internal/seed"
)

type envelope[T any] struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       T                   `json:"data"`
	Pagination *dto.PaginationInfo `json:"pagination"`
	Error      *dto.ErrorDetail    `json:"error"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Server.Mode = "test"
	cfg.Server.StoragePath = t.TempDir()
	cfg.Database.Driver = config.DriverMemory

	repos, database, err := SetupRepositories(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.Nil(t, database)

	deps, err := BuildDependencies(cfg, repos, zerolog.Nop())
	require.NoError(t, err)

	router, err := SetupRouter(cfg, deps, zerolog.Nop())
	require.NoError(t, err)
	return router
}

func request(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func login(t *testing.T, router http.Handler, email string) dto.AuthResponse {
	t.Helper()
	rec := request(t, router, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: email, Password: seed.DemoPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[dto.AuthResponse](t, rec)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := request(t, router, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("wrong password", func(t *testing.T) {
		rec := request(t, router, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: seed.StudentEmail, Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		body := decode[dto.ErrorResponse](t, rec)
		assert.False(t, body.Success)
		assert.Equal(t, "invalid email or password", body.Message)
		assert.Equal(t, dto.ErrorCodeInvalidCredentials, body.Error.Code)
	})

	t.Run("missing email", func(t *testing.T) {
		rec := request(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"password": "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		body := decode[dto.ErrorResponse](t, rec)
		assert.Equal(t, "email", body.Error.Field)
		assert.Equal(t, "email is required", body.Message)
	})

	t.Run("refresh and logout", func(t *testing.T) {
		auth := login(t, router, seed.StudentEmail)
		assert.True(t, auth.Success)
		assert.Equal(t, models.RoleStudent, auth.User.Role)
		assert.NotEmpty(t, auth.Token)

		rec := request(t, router, http.MethodPost, "/api/v1/auth/refresh-token", "", dto.RefreshTokenRequest{RefreshToken: auth.RefreshToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		refreshed := decode[dto.AuthResponse](t, rec)
		assert.NotEqual(t, auth.RefreshToken, refreshed.RefreshToken)

		// The rotated token is spent.
		rec = request(t, router, http.MethodPost, "/api/v1/auth/refresh-token", "", dto.RefreshTokenRequest{RefreshToken: auth.RefreshToken})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = request(t, router, http.MethodPost, "/api/v1/auth/logout", refreshed.Token, dto.LogoutRequest{RefreshToken: refreshed.RefreshToken})
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = request(t, router, http.MethodPost, "/api/v1/auth/refresh-token", "", dto.RefreshTokenRequest{RefreshToken: refreshed.RefreshToken})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("logout without body", func(t *testing.T) {
		auth := login(t, router, seed.StudentEmail)
		rec := request(t, router, http.MethodPost, "/api/v1/auth/logout", auth.Token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("register", func(t *testing.T) {
		rec := request(t, router, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
			Name: "New Student", Email: "new@svit.edu", Password: "Str0ng!pass",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = request(t, router, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
			Name: "Again", Email: "new@svit.edu", Password: "Str0ng!pass",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestProfileEndpoints(t *testing.T) {
	router := newTestRouter(t)
	auth := login(t, router, seed.StudentEmail)

	rec := request(t, router, http.MethodGet, "/api/v1/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = request(t, router, http.MethodGet, "/api/v1/user/profile", auth.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[envelope[models.User]](t, rec)
	assert.Equal(t, seed.StudentEmail, profile.Data.Email)

	rec = request(t, router, http.MethodPost, "/api/v1/user/change-password", auth.Token, dto.ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "N3w!password",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourseEndpoints(t *testing.T) {
	router := newTestRouter(t)
	student := login(t, router, seed.StudentEmail)
	faculty := login(t, router, seed.FacultyEmail)

	rec := request(t, router, http.MethodGet, "/api/v1/courses", student.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[envelope[[]models.Course]](t, rec)
	assert.True(t, list.Success)
	assert.Len(t, list.Data, 7)
	require.NotNil(t, list.Pagination)
	assert.Equal(t, 7, list.Pagination.TotalItems)

	for _, path := range []string{"/api/v1/courses", "/api/v1/materials", "/api/v1/assignments"} {
		rec = request(t, router, http.MethodGet, path+"?page=922337203685477581", student.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		far := decode[envelope[[]json.RawMessage]](t, rec)
		assert.Empty(t, far.Data, path)
		require.NotNil(t, far.Pagination, path)
		assert.Equal(t, 922337203685477581, far.Pagination.CurrentPage, path)
	}

	rec = request(t, router, http.MethodGet, "/api/v1/courses?search=data%20str&sort=name_asc", student.Token, nil)
	list = decode[envelope[[]models.Course]](t, rec)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "CS301", list.Data[0].Code)

	rec = request(t, router, http.MethodGet, "/api/v1/courses?scope=mine", student.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(t, router, http.MethodGet, "/api/v1/courses", faculty.Token, nil)
	list = decode[envelope[[]models.Course]](t, rec)
	assert.Len(t, list.Data, 3)

	rec = request(t, router, http.MethodGet, "/api/v1/courses/abc", student.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(t, router, http.MethodGet, "/api/v1/courses/999", student.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	course := dto.CourseRequest{Code: "CS499", Title: "Capstone Project", Credits: 4}
	rec = request(t, router, http.MethodPost, "/api/v1/courses", student.Token, course)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = request(t, router, http.MethodPost, "/api/v1/courses", faculty.Token, course)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[envelope[models.Course]](t, rec)
	assert.Equal(t, "CS499", created.Data.Code)

	rec = request(t, router, http.MethodPost, "/api/v1/courses", faculty.Token, course)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Course 4 is taught by someone else.
	rec = request(t, router, http.MethodPost, "/api/v1/courses/4/modules", faculty.Token, dto.ModuleRequest{Title: "Extra"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = request(t, router, http.MethodGet, "/api/v1/courses/1/students?status=at_risk&sort=progress_asc", faculty.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	students := decode[envelope[[]models.CourseStudent]](t, rec)
	for _, s := range students.Data {
		assert.True(t, s.Progress.Progress > 0 && s.Progress.Progress < 60, "progress %d", s.Progress.Progress)
	}

	rec = request(t, router, http.MethodGet, "/api/v1/courses/1/students", student.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMaterialUploadAndDownload(t *testing.T) {
	router := newTestRouter(t)
	student := login(t, router, seed.StudentEmail)
	faculty := login(t, router, seed.FacultyEmail)

	upload := func(token, courseID string, withFile bool) *httptest.ResponseRecorder {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		require.NoError(t, w.WriteField("courseId", courseID))
		require.NoError(t, w.WriteField("description", "Week 1 notes"))
		if withFile {
			part, err := w.CreateFormFile("file", "lecture-notes.pdf")
			require.NoError(t, err)
			_, err = part.Write([]byte("%PDF-1.4 notes"))
			require.NoError(t, err)
		}
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/materials/upload", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusForbidden, upload(student.Token, "1", true).Code)
	assert.Equal(t, http.StatusForbidden, upload(faculty.Token, "4", true).Code)
	assert.Equal(t, http.StatusBadRequest, upload(faculty.Token, "1", false).Code)

	rec := upload(faculty.Token, "1", true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	material := decode[envelope[models.Material]](t, rec).Data
	assert.Equal(t, "lecture-notes", material.Title)
	assert.Equal(t, models.MaterialType("pdf"), material.Type)
	assert.Equal(t, "CS301", material.CourseCode)

	rec = request(t, router, http.MethodGet, "/api/v1/materials/"+itoa(material.ID)+"/download", student.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	link := decode[dto.DownloadResponse](t, rec)
	u, err := url.Parse(link.URL)
	require.NoError(t, err)
	assert.Contains(t, u.Path, "/uploads/materials/")

	rec = request(t, router, http.MethodGet, u.Path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4 notes", rec.Body.String())

	rec = request(t, router, http.MethodGet, "/api/v1/materials/"+itoa(material.ID), student.Token, nil)
	assert.Equal(t, 1, decode[envelope[models.Material]](t, rec).Data.Downloads)

	rec = request(t, router, http.MethodPost, "/api/v1/materials/"+itoa(material.ID)+"/star", student.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[envelope[dto.StarResponse]](t, rec).Data.Starred)

	rec = request(t, router, http.MethodGet, "/api/v1/materials?starred=true&search=week%201%20notes", student.Token, nil)
	list := decode[envelope[[]models.Material]](t, rec)
	require.Len(t, list.Data, 1)
	assert.Equal(t, material.ID, list.Data[0].ID)

	rec = request(t, router, http.MethodDelete, "/api/v1/materials/"+itoa(material.ID), faculty.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = request(t, router, http.MethodGet, u.Path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssignmentAndFeedEndpoints(t *testing.T) {
	router := newTestRouter(t)
	student := login(t, router, seed.StudentEmail)

	rec := request(t, router, http.MethodGet, "/api/v1/assignments?status=completed", student.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, a := range decode[envelope[[]models.Assignment]](t, rec).Data {
		assert.Equal(t, models.AssignmentCompleted, a.Status)
	}

	rec = request(t, router, http.MethodPost, "/api/v1/assignments/2/submit", student.Token, dto.SubmitAssignmentRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(t, router, http.MethodPost, "/api/v1/assignments/2/submit", student.Token, dto.SubmitAssignmentRequest{Content: "My answer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.AssignmentCompleted, decode[envelope[models.Assignment]](t, rec).Data.Status)

	rec = request(t, router, http.MethodGet, "/api/v1/assignments/999", student.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = request(t, router, http.MethodGet, "/api/v1/announcements", student.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[envelope[[]models.Announcement]](t, rec).Data)

	rec = request(t, router, http.MethodGet, "/api/v1/grades", student.Token, nil)
	assert.Len(t, decode[envelope[[]models.GradeRecord]](t, rec).Data, 5)

	rec = request(t, router, http.MethodGet, "/api/v1/grades?term=previous", student.Token, nil)
	assert.Len(t, decode[envelope[[]models.GradeRecord]](t, rec).Data, 1)
}

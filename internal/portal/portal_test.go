package portal

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/bootstrap"
	"github.com/yigit/svitlms/internal/config"
	"github.com/yigit/svitlms/internal/pkg/apiclient"
	"github.com/yigit/svitlms/internal/pkg/localstore"
	"github.com/yigit/svitlms/internal/seed"
)

// newTestServer runs the real API over the seeded memory driver.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	var handler http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Server.Mode = "test"
	cfg.Server.StoragePath = t.TempDir()
	cfg.Server.PublicURL = srv.URL
	cfg.Database.Driver = config.DriverMemory

	repos, _, err := bootstrap.SetupRepositories(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	deps, err := bootstrap.BuildDependencies(cfg, repos, zerolog.Nop())
	require.NoError(t, err)
	router, err := bootstrap.SetupRouter(cfg, deps, zerolog.Nop())
	require.NoError(t, err)

	handler = router
	return srv
}

func newTestPortal(t *testing.T, baseURL string) (*Portal, *localstore.MemoryStore) {
	t.Helper()
	store := localstore.NewMemory()
	return New(Config{BaseURL: baseURL + "/api/v1", Logger: zerolog.Nop()}, store), store
}

func signIn(t *testing.T, p *Portal, email string) {
	t.Helper()
	_, err := p.Auth.Login(context.Background(), email, seed.DemoPassword)
	require.NoError(t, err)
}

func TestAuthService(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	t.Run("wrong password", func(t *testing.T) {
		p, store := newTestPortal(t, srv.URL)

		_, err := p.Auth.Login(ctx, seed.StudentEmail, "nope")
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apiclient.StatusOf(err))
		assert.Equal(t, "invalid email or password", err.Error())
		assert.False(t, p.Auth.IsAuthenticated())
		_, ok := store.Get(localstore.KeyUser)
		assert.False(t, ok)
	})

	t.Run("session lifecycle", func(t *testing.T) {
		p, store := newTestPortal(t, srv.URL)

		resp, err := p.Auth.Login(ctx, seed.StudentEmail, seed.DemoPassword)
		require.NoError(t, err)
		assert.True(t, p.Auth.IsAuthenticated())
		assert.Equal(t, resp.Token, store.Token())

		user := p.Auth.CurrentUser()
		require.NotNil(t, user)
		assert.Equal(t, seed.StudentEmail, user.Email)
		assert.True(t, p.Auth.HasRole(models.RoleStudent))
		assert.False(t, p.Auth.IsFaculty())

		profile, err := p.Auth.GetProfile(ctx)
		require.NoError(t, err)
		assert.Equal(t, user.ID, profile.ID)

		updated, err := p.Auth.UpdateProfile(ctx, dto.UpdateProfileRequest{Name: "Asha Verma", Department: "Computer Science", Bio: "Third year"})
		require.NoError(t, err)
		assert.Equal(t, "Asha Verma", updated.Name)
		assert.Equal(t, "Third year", updated.Bio)
		assert.Equal(t, seed.StudentEmail, updated.Email)
		assert.Equal(t, "Asha Verma", p.Auth.CurrentUser().Name)

		settings := models.NotificationSettings{EmailNotifications: true}
		updated, err = p.Auth.UpdateNotificationSettings(ctx, settings)
		require.NoError(t, err)
		assert.Equal(t, settings, updated.NotificationSettings)
		var stored models.NotificationSettings
		found, err := localstore.GetJSON(store, localstore.KeyNotificationSettings, &stored)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, settings, stored)

		oldRefresh, _ := store.Get(localstore.KeyRefreshToken)
		_, err = p.Auth.RefreshToken(ctx)
		require.NoError(t, err)
		newRefresh, _ := store.Get(localstore.KeyRefreshToken)
		assert.NotEqual(t, oldRefresh, newRefresh)

		require.NoError(t, p.Auth.Logout(ctx))
		assert.False(t, p.Auth.IsAuthenticated())
		assert.Nil(t, p.Auth.CurrentUser())

		_, err = p.Auth.RefreshToken(ctx)
		assert.ErrorIs(t, err, ErrNoRefreshToken)
	})

	t.Run("rejected refresh signs out", func(t *testing.T) {
		p, store := newTestPortal(t, srv.URL)
		signIn(t, p, seed.StudentEmail)
		require.NoError(t, store.Set(localstore.KeyRefreshToken, "revoked"))

		_, err := p.Auth.RefreshToken(ctx)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apiclient.StatusOf(err))
		assert.False(t, p.Auth.IsAuthenticated())
	})

	t.Run("change password", func(t *testing.T) {
		p, _ := newTestPortal(t, srv.URL)
		signIn(t, p, seed.FacultyEmail)
		assert.True(t, p.Auth.IsFaculty())

		_, err := p.Auth.ChangePassword(ctx, "wrong", "N3w!password")
		assert.Equal(t, http.StatusBadRequest, apiclient.StatusOf(err))
	})

	t.Run("forgot password", func(t *testing.T) {
		p, _ := newTestPortal(t, srv.URL)

		msg, err := p.Auth.ForgotPassword(ctx, "nobody@svit.edu")
		require.NoError(t, err)
		assert.NotEmpty(t, msg)

		_, err = p.Auth.ResetPassword(ctx, "not-a-token", "N3w!password")
		assert.Error(t, err)
	})
}

func TestLogoutClearsSessionWhenServerIsDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	p, store := newTestPortal(t, srv.URL)
	require.NoError(t, store.Set(localstore.KeyToken, "t"))
	require.NoError(t, store.Set(localstore.KeyRefreshToken, "r"))
	require.NoError(t, localstore.SetJSON(store, localstore.KeyUser, models.User{ID: 1}))
	require.NoError(t, store.Set(localstore.KeyTheme, ThemeDark))

	require.NoError(t, p.Auth.Logout(context.Background()))
	assert.False(t, p.Auth.IsAuthenticated())
	assert.Nil(t, p.Auth.CurrentUser())
	assert.Equal(t, ThemeDark, p.Theme.Current())
}

func TestCourseService(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	student, _ := newTestPortal(t, srv.URL)
	signIn(t, student, seed.StudentEmail)
	faculty, _ := newTestPortal(t, srv.URL)
	signIn(t, faculty, seed.FacultyEmail)

	page, err := student.Courses.List(ctx, Params{"search": "data str", "sort": "name_asc"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "CS301", page.Items[0].Code)
	assert.Equal(t, 1, page.Pagination.TotalItems)

	page, err = student.Courses.List(ctx, Params{"size": "2", "page": "2"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 7, page.Pagination.TotalItems)
	assert.Equal(t, 4, page.Pagination.TotalPages)

	detail, err := student.Courses.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, detail.Enrolled)

	_, err = student.Courses.Get(ctx, 999)
	assert.Equal(t, http.StatusNotFound, apiclient.StatusOf(err))

	progress, err := student.Courses.Progress(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), progress.CourseID)

	_, err = student.Courses.Create(ctx, dto.CourseRequest{Code: "CS499", Title: "Capstone Project"})
	assert.Equal(t, http.StatusForbidden, apiclient.StatusOf(err))

	course, err := faculty.Courses.Create(ctx, dto.CourseRequest{Code: "CS499", Title: "Capstone Project", Credits: 4})
	require.NoError(t, err)
	assert.Equal(t, "CS499", course.Code)

	course, err = faculty.Courses.Update(ctx, course.ID, dto.CourseRequest{Code: "CS499", Title: "Capstone Project II", Credits: 4})
	require.NoError(t, err)
	assert.Equal(t, "Capstone Project II", course.Title)

	module, err := faculty.Courses.CreateModule(ctx, course.ID, dto.ModuleRequest{Title: "Kickoff"})
	require.NoError(t, err)
	module, err = faculty.Courses.UpdateModule(ctx, course.ID, module.ID, dto.ModuleRequest{Title: "Kickoff week"})
	require.NoError(t, err)
	assert.Equal(t, "Kickoff week", module.Title)

	modules, err := faculty.Courses.Modules(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, module.ID, modules[0].ID)

	require.NoError(t, faculty.Courses.DeleteModule(ctx, course.ID, module.ID))
	modules, err = faculty.Courses.Modules(ctx, course.ID)
	require.NoError(t, err)
	assert.Empty(t, modules)

	announcement, err := faculty.Courses.CreateAnnouncement(ctx, 1, dto.AnnouncementRequest{Title: "Quiz moved", Content: "The quiz moves to Friday."})
	require.NoError(t, err)
	assert.Equal(t, "Quiz moved", announcement.Title)

	students, err := faculty.Courses.Students(ctx, 1, Params{"sort": "name_asc"})
	require.NoError(t, err)
	require.NotEmpty(t, students.Items)

	one, err := faculty.Courses.StudentProgress(ctx, 1, students.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, students.Items[0].ID, one.ID)
	assert.Equal(t, int64(1), one.Progress.CourseID)

	_, err = student.Courses.Students(ctx, 1, nil)
	assert.Equal(t, http.StatusForbidden, apiclient.StatusOf(err))

	assignments, err := student.Courses.Assignments(ctx, 1, nil)
	require.NoError(t, err)
	for _, a := range assignments.Items {
		assert.Equal(t, int64(1), a.CourseID)
	}

	materials, err := student.Courses.Materials(ctx, 1, nil)
	require.NoError(t, err)
	for _, m := range materials.Items {
		assert.Equal(t, int64(1), m.CourseID)
	}

	require.NoError(t, faculty.Courses.Delete(ctx, course.ID))
	_, err = faculty.Courses.Get(ctx, course.ID)
	assert.Equal(t, http.StatusNotFound, apiclient.StatusOf(err))
}

func TestMaterialService(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	student, _ := newTestPortal(t, srv.URL)
	signIn(t, student, seed.StudentEmail)
	faculty, _ := newTestPortal(t, srv.URL)
	signIn(t, faculty, seed.FacultyEmail)

	var (
		mu       sync.Mutex
		reported []int
	)
	material, err := faculty.Materials.Upload(ctx,
		apiclient.Upload{Name: "graphs.pdf", ContentType: "application/pdf", Body: strings.NewReader("%PDF-1.4 graphs")},
		UploadRequest{Title: "Graph traversal", Description: "BFS and DFS", CourseID: 1},
		func(pct int) {
			mu.Lock()
			reported = append(reported, pct)
			mu.Unlock()
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "Graph traversal", material.Title)
	assert.Equal(t, models.MaterialType("pdf"), material.Type)
	mu.Lock()
	require.NotEmpty(t, reported)
	assert.Equal(t, 100, reported[len(reported)-1])
	mu.Unlock()

	_, err = student.Materials.Upload(ctx,
		apiclient.Upload{Name: "x.pdf", Body: strings.NewReader("x")},
		UploadRequest{CourseID: 1}, nil)
	assert.Equal(t, http.StatusForbidden, apiclient.StatusOf(err))

	download, err := student.Materials.Download(ctx, material.ID)
	require.NoError(t, err)
	assert.Contains(t, download.URL, "/uploads/materials/")

	var file bytes.Buffer
	n, err := student.Materials.Save(ctx, download, &file)
	require.NoError(t, err)
	assert.Equal(t, int64(file.Len()), n)
	assert.Equal(t, "%PDF-1.4 graphs", file.String())

	_, err = student.Materials.Download(ctx, 999)
	assert.ErrorIs(t, err, ErrDownloadFailed)

	got, err := student.Materials.Get(ctx, material.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Downloads)

	require.NoError(t, student.Materials.MarkViewed(ctx, material.ID))
	require.NoError(t, student.Materials.UpdateProgress(ctx, material.ID, 40))
	assert.Error(t, student.Materials.UpdateProgress(ctx, material.ID, 140))

	starred, err := student.Materials.ToggleStar(ctx, material.ID)
	require.NoError(t, err)
	assert.True(t, starred)

	stars, err := student.Materials.Starred(ctx)
	require.NoError(t, err)
	ids := make([]int64, 0, len(stars))
	for _, m := range stars {
		ids = append(ids, m.ID)
	}
	assert.Contains(t, ids, material.ID)

	page, err := student.Materials.List(ctx, Params{"search": "graph traversal", "starred": "true"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].Starred)

	related, err := student.Materials.Related(ctx, material.ID)
	require.NoError(t, err)
	for _, m := range related {
		assert.NotEqual(t, material.ID, m.ID)
		assert.Equal(t, int64(1), m.CourseID)
	}

	issue, err := student.Materials.ReportIssue(ctx, material.ID, dto.ReportIssueRequest{IssueType: "broken", Description: "Page 3 is blank"})
	require.NoError(t, err)
	assert.Equal(t, material.ID, issue.MaterialID)

	updated, err := faculty.Materials.Update(ctx, material.ID, dto.UpdateMaterialRequest{Title: "Graphs", Type: "pdf", CourseID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Graphs", updated.Title)

	require.NoError(t, faculty.Materials.Delete(ctx, material.ID))
	_, err = student.Materials.Get(ctx, material.ID)
	assert.Equal(t, http.StatusNotFound, apiclient.StatusOf(err))
}

func TestDownloadReturnsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/materials/1/download":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("raw bytes"))
		default:
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	p, _ := newTestPortal(t, srv.URL)

	d, err := p.Materials.Download(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, d.URL)
	assert.Equal(t, []byte("raw bytes"), d.Data)

	_, err = p.Materials.Download(context.Background(), 2)
	assert.True(t, errors.Is(err, ErrDownloadFailed))
	assert.Equal(t, "Download failed", err.Error())
}

func TestAssignmentAndFeedServices(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	p, _ := newTestPortal(t, srv.URL)
	signIn(t, p, seed.StudentEmail)

	open, err := p.Assignments.List(ctx, Params{"status": string(models.AssignmentInProgress)})
	require.NoError(t, err)
	require.NotEmpty(t, open.Items)
	target := open.Items[0]

	_, err = p.Assignments.Submit(ctx, target.ID, dto.SubmitAssignmentRequest{})
	assert.Equal(t, http.StatusBadRequest, apiclient.StatusOf(err))

	submitted, err := p.Assignments.Submit(ctx, target.ID, dto.SubmitAssignmentRequest{Content: "My answer"})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentCompleted, submitted.Status)

	got, err := p.Assignments.Get(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentCompleted, got.Status)
	assert.NotNil(t, got.SubmissionDate)

	announcements, err := p.Feed.Announcements(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, announcements)

	grades, err := p.Feed.Grades(ctx, "")
	require.NoError(t, err)
	assert.Len(t, grades, 5)

	previous, err := p.Feed.Grades(ctx, "previous")
	require.NoError(t, err)
	assert.Len(t, previous, 1)
}

func TestDashboard(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	p, _ := newTestPortal(t, srv.URL)
	signIn(t, p, seed.StudentEmail)

	d, err := p.Dashboard(ctx)
	require.NoError(t, err)
	require.NotNil(t, d.User)
	assert.Equal(t, seed.StudentEmail, d.User.Email)
	assert.Len(t, d.Courses, 7)
	assert.NotEmpty(t, d.Announcements)
	for i, a := range d.Assignments {
		assert.NotEqual(t, models.AssignmentCompleted, a.Status)
		if i > 0 {
			assert.False(t, a.DueDate.Before(d.Assignments[i-1].DueDate))
		}
	}
	for i := 1; i < len(d.Courses); i++ {
		assert.GreaterOrEqual(t, d.Courses[i-1].Progress, d.Courses[i].Progress)
	}

	signedOut, _ := newTestPortal(t, srv.URL)
	_, err = signedOut.Dashboard(ctx)
	assert.Equal(t, http.StatusUnauthorized, apiclient.StatusOf(err))
}

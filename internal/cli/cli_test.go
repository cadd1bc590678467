package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/svitlms/internal/bootstrap"
	"github.com/yigit/svitlms/internal/config"
	"github.com/yigit/svitlms/internal/pkg/apiclient"
	"github.com/yigit/svitlms/internal/pkg/localstore"
	"github.com/yigit/svitlms/internal/portal"
	"github.com/yigit/svitlms/internal/seed"
)

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

// newTestApp builds an App against srv with in-memory state and fast
// simulated transfers.
func newTestApp(t *testing.T, srv *httptest.Server) *App {
	t.Helper()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Client.BaseURL = srv.URL + "/api/v1"
	cfg.Transfer.Download = config.TransferProfile{Delay: "0s", Interval: "1ms", MaxIncrement: 50}
	cfg.Transfer.Upload = config.TransferProfile{Delay: "1ms", Interval: "1ms", MaxIncrement: 50}

	store := localstore.NewMemory()
	return &App{
		Config: cfg,
		Portal: portal.New(portal.Config{BaseURL: cfg.Client.BaseURL, Logger: zerolog.Nop()}, store),
		Store:  store,
		Logger: zerolog.Nop(),
		ErrOut: &bytes.Buffer{},
		In:     strings.NewReader(""),
		Now:    func() time.Time { return time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC) },
	}
}

// run executes one command line and returns what it printed.
func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app.Out = &out

	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func login(t *testing.T, app *App, email string) {
	t.Helper()
	_, err := run(t, app, "login", "-e", email, "-p", seed.DemoPassword)
	require.NoError(t, err)
}

func TestAccountCommands(t *testing.T) {
	srv := newTestServer(t)
	app := newTestApp(t, srv)

	_, err := run(t, app, "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)

	_, err = run(t, app, "login", "-e", "not-an-email", "-p", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid email")

	_, err = run(t, app, "login", "-e", seed.StudentEmail, "-p", "wrong")
	require.Error(t, err)
	assert.Equal(t, "invalid email or password", ErrorMessage(err))

	app.In = strings.NewReader(seed.StudentEmail + "\n" + seed.DemoPassword + "\n")
	out, err := run(t, app, "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in")
	assert.Contains(t, out, "(student)")

	out, err = run(t, app, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, seed.StudentEmail)

	out, err = run(t, app, "profile", "--bio", "Graph enthusiast", "--grade-updates=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile updated")
	assert.Contains(t, out, "Notification settings updated")
	assert.Contains(t, out, "Graph enthusiast")
	assert.Regexp(t, `Grades\s+off`, out)

	_, err = run(t, app, "profile", "--phone", "12")
	assert.Error(t, err)

	_, err = run(t, app, "profile", "--current-password", seed.DemoPassword, "--new-password", "short")
	assert.Error(t, err)

	out, err = run(t, app, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")
	assert.False(t, app.Portal.Auth.IsAuthenticated())
}

func TestThemeCommand(t *testing.T) {
	srv := newTestServer(t)
	app := newTestApp(t, srv)

	out, err := run(t, app, "theme")
	require.NoError(t, err)
	assert.Contains(t, out, "light")

	out, err = run(t, app, "theme", "toggle")
	require.NoError(t, err)
	assert.Contains(t, out, "dark")
	value, _ := app.Store.Get(localstore.KeyTheme)
	assert.Equal(t, portal.ThemeDark, value)

	_, err = run(t, app, "theme", "sepia")
	assert.Error(t, err)
}

func TestStudentCommands(t *testing.T) {
	srv := newTestServer(t)
	app := newTestApp(t, srv)
	login(t, app, seed.StudentEmail)

	out, err := run(t, app, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome")
	assert.Contains(t, out, "Upcoming assignments")

	out, err = run(t, app, "courses", "--sort", "code_asc")
	require.NoError(t, err)
	assert.Contains(t, out, "CS301")
	assert.Contains(t, out, "Page 1 of 1, 7 items")

	out, err = run(t, app, "courses", "--search", "no such course")
	require.NoError(t, err)
	assert.Contains(t, out, "No courses found.")

	out, err = run(t, app, "course", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Your progress")

	_, err = run(t, app, "course", "abc")
	assert.EqualError(t, err, `invalid course id "abc"`)

	_, err = run(t, app, "students", "1")
	assert.EqualError(t, err, "this command is only available to faculty")

	out, err = run(t, app, "materials", "--type", "pdf")
	require.NoError(t, err)
	assert.Contains(t, out, "pdf")

	out, err = run(t, app, "assignments", "--status", "in_progress")
	require.NoError(t, err)
	assert.Contains(t, out, "in progress")

	_, err = run(t, app, "submit", "1")
	assert.Error(t, err)

	out, err = run(t, app, "grades")
	require.NoError(t, err)
	assert.Contains(t, out, "CGPA")
	assert.Contains(t, out, "Data Structures")

	out, err = run(t, app, "grades", "--term", "previous")
	require.NoError(t, err)
	assert.Contains(t, out, "Fall 2024")
	assert.NotContains(t, out, "Spring 2025")
}

func TestUploadAndDownload(t *testing.T) {
	srv := newTestServer(t)
	dir := t.TempDir()

	faculty := newTestApp(t, srv)
	login(t, faculty, seed.FacultyEmail)

	file := filepath.Join(dir, "graph-notes.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF-1.4 notes"), 0o600))

	out, err := run(t, faculty, "upload", file, "--course", "1", "--simulate")
	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded")
	assert.Contains(t, out, "graph-notes")
	m := regexp.MustCompile(`#(\d+)`).FindStringSubmatch(out)
	require.Len(t, m, 2)
	id := m[1]

	_, err = run(t, faculty, "upload", filepath.Join(dir, "missing.pdf"), "--course", "1")
	assert.Error(t, err)

	script := filepath.Join(dir, "run.exe")
	require.NoError(t, os.WriteFile(script, []byte("MZ"), 0o600))
	_, err = run(t, faculty, "upload", script, "--course", "1")
	assert.EqualError(t, err, "File type not supported")

	out, err = run(t, faculty, "students", "1", "--sort", "name_asc")
	require.NoError(t, err)
	assert.Contains(t, out, "LAST ACCESS")

	student := newTestApp(t, srv)
	login(t, student, seed.StudentEmail)

	_, err = run(t, student, "upload", file, "--course", "1")
	assert.EqualError(t, err, "this command is only available to faculty")

	target := filepath.Join(dir, "copy.pdf")
	out, err = run(t, student, "download", id, "--simulate", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 notes", string(data))

	_, err = run(t, student, "download", "9999", "-o", filepath.Join(dir, "none"))
	assert.Equal(t, "Download failed", ErrorMessage(err))

	out, err = run(t, student, "material", id, "--star", "--progress", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "Starred")
	assert.Contains(t, out, "Progress saved at 50%")

	out, err = run(t, student, "materials", "--starred")
	require.NoError(t, err)
	assert.Contains(t, out, "graph-notes")
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "notes.pdf", downloadName("http://host/uploads/materials/notes.pdf", 3))
	assert.Equal(t, "material-3", downloadName("", 3))
	assert.Equal(t, "material-3", downloadName("http://host/", 3))
}

func TestErrorMessage(t *testing.T) {
	unauthorized := &apiclient.APIError{Status: http.StatusUnauthorized, Message: "token expired"}
	assert.Equal(t, `token expired (run "lms login" to sign in again)`, ErrorMessage(unauthorized))
	assert.Equal(t, "token expired", ErrorMessage(&loginError{err: unauthorized}))

	network := &apiclient.NetworkError{Message: "GET /courses", Err: errors.New("connection refused")}
	assert.Equal(t, "Cannot reach the LMS server: GET /courses: connection refused", ErrorMessage(network))

	assert.Equal(t, "boom", ErrorMessage(errors.New("boom")))
}

func TestExecuteReportsFailure(t *testing.T) {
	var stdout, stderr bytes.Buffer
	state := filepath.Join(t.TempDir(), "state", "lms.json")

	code := Execute(context.Background(), []string{"whoami", "--state", state, "--api-url", "http://127.0.0.1:1/api/v1"}, &stdout, &stderr, strings.NewReader(""))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "✗ not signed in")
	assert.Empty(t, stdout.String())
	assert.DirExists(t, filepath.Dir(state))

	code = Execute(context.Background(), []string{"theme", "--state", state}, &stdout, &stderr, strings.NewReader(""))
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Theme: light")
}

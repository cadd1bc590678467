// Package cli is the terminal front end of the LMS: one cobra command per
// page of the portal, rendered with lipgloss.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yigit/svitlms/internal/config"
	"github.com/yigit/svitlms/internal/pkg/apiclient"
	"github.com/yigit/svitlms/internal/pkg/localstore"
	"github.com/yigit/svitlms/internal/pkg/logger"
	"github.com/yigit/svitlms/internal/portal"
)

// App is the state shared by every command of one invocation.
type App struct {
	Config *config.Config
	Portal *portal.Portal
	Store  localstore.Store
	Logger zerolog.Logger

	Out    io.Writer
	ErrOut io.Writer
	In     io.Reader

	// Now is the clock used for relative dates.
	Now func() time.Time
}

func (a *App) styles() Styles {
	return NewStyles(a.Portal.Theme.Current())
}

func (a *App) println(parts ...string) {
	for _, p := range parts {
		fmt.Fprint(a.Out, p)
	}
	fmt.Fprintln(a.Out)
}

// Options are the global flags.
type Options struct {
	ConfigPath string
	APIURL     string
	StateFile  string
}

// NewApp loads the configuration and opens the state file.
func NewApp(opts Options, stdout, stderr io.Writer, stdin io.Reader) (*App, error) {
	lgr := logger.Configure(logger.Config{Level: logger.WarnLevel, Pretty: true, Output: stderr})

	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.APIURL != "" {
		cfg.Client.BaseURL = opts.APIURL
	}
	if opts.StateFile != "" {
		cfg.Client.StateFile = opts.StateFile
	}

	if dir := filepath.Dir(cfg.Client.StateFile); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}
	store, err := localstore.Open(cfg.Client.StateFile)
	if err != nil {
		return nil, err
	}

	p := portal.New(portal.Config{
		BaseURL:    cfg.Client.BaseURL,
		Theme:      cfg.Client.Theme,
		HTTPClient: &http.Client{Timeout: 2 * time.Minute},
		Logger:     lgr,
	}, store)

	return &App{
		Config: cfg,
		Portal: p,
		Store:  store,
		Logger: lgr,
		Out:    stdout,
		ErrOut: stderr,
		In:     stdin,
		Now:    time.Now,
	}, nil
}

// NewRootCommand builds the command tree. When app is nil it is created from
// the global flags before any command runs.
func NewRootCommand(app *App) *cobra.Command {
	var opts Options

	root := &cobra.Command{
		Use:   "lms",
		Short: "SVIT learning management system in the terminal",
		Long: `lms is the terminal front end of the SVIT LMS.

Sign in with "lms login", then browse courses, materials, assignments and
grades. Faculty accounts can also upload materials and follow student progress.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if app.Portal != nil {
				return nil
			}
			built, err := NewApp(opts, cmd.OutOrStdout(), cmd.ErrOrStderr(), cmd.InOrStdin())
			if err != nil {
				return err
			}
			*app = *built
			return nil
		},
	}
	if app == nil {
		app = &App{}
	}

	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", filepath.Join("configs", "config.yaml"), "path to the configuration file")
	root.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "API server root, overrides client.base_url")
	root.PersistentFlags().StringVar(&opts.StateFile, "state", "", "state file, overrides client.state_file")

	root.AddCommand(
		newLoginCommand(app),
		newLogoutCommand(app),
		newWhoAmICommand(app),
		newProfileCommand(app),
		newThemeCommand(app),
		newDashboardCommand(app),
		newCoursesCommand(app),
		newCourseCommand(app),
		newStudentsCommand(app),
		newMaterialsCommand(app),
		newMaterialCommand(app),
		newDownloadCommand(app),
		newUploadCommand(app),
		newAssignmentsCommand(app),
		newSubmitCommand(app),
		newGradesCommand(app),
	)
	return root
}

// Execute runs the CLI and returns the process exit code. Failures are
// printed as a single line on stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer, stdin io.Reader) int {
	app := &App{}
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(stdin)

	if err := root.ExecuteContext(ctx); err != nil {
		theme := portal.ThemeLight
		if app.Portal != nil {
			theme = app.Portal.Theme.Current()
		}
		fmt.Fprintln(stderr, NewStyles(theme).Error.Render("✗ "+ErrorMessage(err)))
		return 1
	}
	return 0
}

// ErrorMessage is the one line shown for a failed command.
func ErrorMessage(err error) string {
	var (
		netErr   *apiclient.NetworkError
		loginErr *loginError
	)
	switch {
	case errors.As(err, &loginErr):
		return err.Error()
	case apiclient.StatusOf(err) == http.StatusUnauthorized:
		return err.Error() + ` (run "lms login" to sign in again)`
	case errors.As(err, &netErr):
		return "Cannot reach the LMS server: " + netErr.Error()
	default:
		return err.Error()
	}
}

// loginError is a rejected sign in. It is shown without the sign in hint.
type loginError struct {
	err error
}

func (e *loginError) Error() string { return e.err.Error() }

func (e *loginError) Unwrap() error { return e.err }

var errNotSignedIn = errors.New(`not signed in, run "lms login" first`)

// requireLogin fails fast when no session is stored.
func (a *App) requireLogin() error {
	if !a.Portal.Auth.IsAuthenticated() {
		return errNotSignedIn
	}
	return nil
}

// requireFaculty fails unless the stored user is a faculty member.
func (a *App) requireFaculty() error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if !a.Portal.Auth.IsFaculty() {
		return errors.New("this command is only available to faculty")
	}
	return nil
}

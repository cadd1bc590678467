package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/pkg/apiclient"
	"github.com/yigit/svitlms/internal/pkg/format"
	"github.com/yigit/svitlms/internal/pkg/validation"
	"github.com/yigit/svitlms/internal/portal"
)

// prompt reads one line from in after printing label.
func prompt(out io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

func newLoginCommand(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the LMS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(app.In)
			var err error
			if email == "" {
				if email, err = prompt(app.Out, in, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt(app.Out, in, "Password: "); err != nil {
					return err
				}
			}

			if err := validation.Run(
				validation.Email(email),
				validation.Required(password, "Password"),
			).Err(); err != nil {
				return err
			}

			resp, err := app.Portal.Auth.Login(cmd.Context(), email, password)
			if err != nil {
				if apiclient.StatusOf(err) != 0 {
					return &loginError{err: err}
				}
				return err
			}

			name, role := email, ""
			if resp.User != nil {
				name, role = resp.User.Name, "("+string(resp.User.Role)+")"
			}
			s := app.styles()
			app.println(s.Success.Render("✓ Signed in"), " as ", s.Bold.Render(name), " ", s.Muted.Render(role))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Portal.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			app.println(app.styles().Success.Render("✓ Signed out"))
			return nil
		},
	}
}

func newWhoAmICommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			user := app.Portal.Auth.CurrentUser()
			if user == nil || !app.Portal.Auth.IsAuthenticated() {
				return errNotSignedIn
			}
			s := app.styles()
			app.println(s.Bold.Render(user.Name), " <", user.Email, "> ", s.Muted.Render(string(user.Role)))
			return nil
		},
	}
}

type profileFlags struct {
	name, department, year, phone, bio string

	currentPassword, newPassword string

	emailNotifications, assignmentReminders, courseAnnouncements, gradeUpdates bool
}

func newProfileCommand(app *App) *cobra.Command {
	var f profileFlags

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your profile, password and notification settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			flags := cmd.Flags()

			user, err := app.Portal.Auth.GetProfile(ctx)
			if err != nil {
				return err
			}

			if flags.Changed("name") || flags.Changed("department") || flags.Changed("year") || flags.Changed("phone") || flags.Changed("bio") {
				req := dto.UpdateProfileRequest{
					Name:       pick(flags.Changed("name"), f.name, user.Name),
					Department: pick(flags.Changed("department"), f.department, user.Department),
					Year:       pick(flags.Changed("year"), f.year, user.Year),
					Phone:      pick(flags.Changed("phone"), f.phone, user.Phone),
					Bio:        pick(flags.Changed("bio"), f.bio, user.Bio),
					ProfilePic: user.ProfilePic,
				}
				if err := validation.Run(
					validation.MinLength(req.Name, validation.NameMinLength, "Name"),
					validation.MaxLength(req.Name, validation.NameMaxLength, "Name"),
					validation.Phone(req.Phone),
				).Err(); err != nil {
					return err
				}
				if user, err = app.Portal.Auth.UpdateProfile(ctx, req); err != nil {
					return err
				}
				app.println(app.styles().Success.Render("✓ Profile updated"))
			}

			if flags.Changed("new-password") {
				if err := validation.Run(
					validation.Required(f.currentPassword, "Current password"),
					validation.Password(f.newPassword).Result,
				).Err(); err != nil {
					return err
				}
				msg, err := app.Portal.Auth.ChangePassword(ctx, f.currentPassword, f.newPassword)
				if err != nil {
					return err
				}
				app.println(app.styles().Success.Render("✓ " + msg))
			}

			if flags.Changed("email-notifications") || flags.Changed("assignment-reminders") || flags.Changed("course-announcements") || flags.Changed("grade-updates") {
				current := user.NotificationSettings
				settings := models.NotificationSettings{
					EmailNotifications:  pickBool(flags.Changed("email-notifications"), f.emailNotifications, current.EmailNotifications),
					AssignmentReminders: pickBool(flags.Changed("assignment-reminders"), f.assignmentReminders, current.AssignmentReminders),
					CourseAnnouncements: pickBool(flags.Changed("course-announcements"), f.courseAnnouncements, current.CourseAnnouncements),
					GradeUpdates:        pickBool(flags.Changed("grade-updates"), f.gradeUpdates, current.GradeUpdates),
				}
				if user, err = app.Portal.Auth.UpdateNotificationSettings(ctx, settings); err != nil {
					return err
				}
				app.println(app.styles().Success.Render("✓ Notification settings updated"))
			}

			renderProfile(app, user)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.name, "name", "", "display name")
	flags.StringVar(&f.department, "department", "", "department")
	flags.StringVar(&f.year, "year", "", "year of study")
	flags.StringVar(&f.phone, "phone", "", "phone number")
	flags.StringVar(&f.bio, "bio", "", "short biography")
	flags.StringVar(&f.currentPassword, "current-password", "", "current password, required with --new-password")
	flags.StringVar(&f.newPassword, "new-password", "", "new password")
	flags.BoolVar(&f.emailNotifications, "email-notifications", true, "receive email notifications")
	flags.BoolVar(&f.assignmentReminders, "assignment-reminders", true, "receive assignment reminders")
	flags.BoolVar(&f.courseAnnouncements, "course-announcements", true, "receive course announcements")
	flags.BoolVar(&f.gradeUpdates, "grade-updates", true, "receive grade updates")
	return cmd
}

func pick(changed bool, value, fallback string) string {
	if changed {
		return value
	}
	return fallback
}

func pickBool(changed, value, fallback bool) bool {
	if changed {
		return value
	}
	return fallback
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func renderProfile(app *App, user *models.User) {
	s := app.styles()
	lines := []string{
		s.Title.Render(user.Name),
		s.Field("Email", user.Email),
		s.Field("Role", string(user.Role)),
	}
	if user.Department != "" {
		lines = append(lines, s.Field("Department", user.Department))
	}
	if user.Year != "" {
		lines = append(lines, s.Field("Year", user.Year))
	}
	if user.Phone != "" {
		lines = append(lines, s.Field("Phone", format.Phone(user.Phone)))
	}
	if user.Bio != "" {
		lines = append(lines, s.Field("Bio", format.Truncate(user.Bio, 60)))
	}
	if user.LastLogin != nil {
		lines = append(lines, s.Field("Last login", format.Relative(*user.LastLogin, app.Now())))
	}
	n := user.NotificationSettings
	lines = append(lines,
		"",
		s.Subtitle.Render("Notifications"),
		s.Field("Email", onOff(n.EmailNotifications)),
		s.Field("Assignments", onOff(n.AssignmentReminders)),
		s.Field("Announcements", onOff(n.CourseAnnouncements)),
		s.Field("Grades", onOff(n.GradeUpdates)),
	)
	app.println(s.Card.Render(strings.Join(lines, "\n")))
}

func newThemeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [toggle|light|dark]",
		Short:     "Show or change the colour theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"toggle", portal.ThemeLight, portal.ThemeDark},
		RunE: func(_ *cobra.Command, args []string) error {
			theme := app.Portal.Theme
			if len(args) == 1 {
				var err error
				if args[0] == "toggle" {
					_, err = theme.Toggle()
				} else {
					err = theme.Set(args[0])
				}
				if err != nil {
					return err
				}
			}
			s := app.styles()
			app.println("Theme: ", s.Title.Render(theme.Current()))
			return nil
		},
	}
}

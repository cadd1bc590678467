package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/pkg/format"
	"github.com/yigit/svitlms/internal/pkg/validation"
	"github.com/yigit/svitlms/internal/portal"
)

const dashboardItems = 5

func newDashboardCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your courses, upcoming assignments and announcements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			d, err := app.Portal.Dashboard(cmd.Context())
			if err != nil {
				return err
			}

			s := app.styles()
			now := app.Now()
			name := "back"
			if d.User != nil {
				name = d.User.Name
			}
			app.println(s.Title.Render("Welcome, " + name))
			app.println(s.Muted.Render(fmt.Sprintf("%d courses, %d in progress, %d open assignments",
				len(d.Courses), d.ActiveCourses(), len(d.Assignments))))
			app.println()

			app.println(s.Subtitle.Render("Courses"))
			if len(d.Courses) == 0 {
				app.println(s.Muted.Render("  No courses yet."))
			}
			for _, c := range head(d.Courses, dashboardItems) {
				app.println("  ", s.Bold.Render(fmt.Sprintf("%-8s", c.Code)), " ", s.Meter(c.Progress), "  ", format.Truncate(c.Title, 40))
			}
			app.println()

			app.println(s.Subtitle.Render("Upcoming assignments"))
			if len(d.Assignments) == 0 {
				app.println(s.Muted.Render("  Nothing due."))
			}
			for _, a := range head(d.Assignments, dashboardItems) {
				app.println("  ", format.Date(a.DueDate), " ", s.Muted.Render("("+format.Relative(a.DueDate, now)+")"), "  ",
					format.Truncate(a.Title, 40), " ", s.Muted.Render(a.CourseCode), " ", s.Status(string(a.Status)))
			}
			app.println()

			app.println(s.Subtitle.Render("Announcements"))
			if len(d.Announcements) == 0 {
				app.println(s.Muted.Render("  No announcements."))
			}
			for _, a := range head(d.Announcements, dashboardItems) {
				title := a.Title
				if a.Important {
					title = s.Error.Render("! ") + title
				}
				app.println("  ", title, " ", s.Muted.Render(a.Author+", "+format.Relative(a.Date, now)))
			}
			return nil
		},
	}
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func newAssignmentsCommand(app *App) *cobra.Command {
	var (
		lf     listFlags
		status string
		course int64
	)

	cmd := &cobra.Command{
		Use:   "assignments",
		Short: "List your assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			params := lf.params()
			params["status"] = status

			var (
				page *portal.Page[models.Assignment]
				err  error
			)
			if course > 0 {
				page, err = app.Portal.Courses.Assignments(cmd.Context(), course, params)
			} else {
				page, err = app.Portal.Assignments.List(cmd.Context(), params)
			}
			if err != nil {
				return err
			}

			s := app.styles()
			if len(page.Items) == 0 {
				app.println(s.Muted.Render("No assignments found."))
				return nil
			}

			now := app.Now()
			t := newTable("ID", "TITLE", "COURSE", "DUE", "STATUS", "GRADE")
			for _, a := range page.Items {
				t.add(
					strconv.FormatInt(a.ID, 10),
					format.Truncate(a.Title, 40),
					a.CourseCode,
					format.Date(a.DueDate)+" "+s.Muted.Render("("+format.Relative(a.DueDate, now)+")"),
					s.Status(string(a.Status)),
					assignmentGrade(a),
				)
			}
			fmt.Fprint(app.Out, t.render(s))
			renderPagination(app, page.Pagination.CurrentPage, page.Pagination.TotalPages, page.Pagination.TotalItems)
			return nil
		},
	}
	lf.register(cmd, "due_asc, due_desc or name_asc")
	cmd.Flags().StringVar(&status, "status", "", "pending, in_progress, completed or overdue")
	cmd.Flags().Int64Var(&course, "course", 0, "only assignments of this course id")
	return cmd
}

func assignmentGrade(a models.Assignment) string {
	if a.Grade == nil {
		return "-"
	}
	if a.TotalPoints > 0 {
		return fmt.Sprintf("%s/%d", strconv.FormatFloat(*a.Grade, 'f', -1, 64), a.TotalPoints)
	}
	return strconv.FormatFloat(*a.Grade, 'f', -1, 64)
}

func newSubmitCommand(app *App) *cobra.Command {
	var content, fileURL string

	cmd := &cobra.Command{
		Use:   "submit <id>",
		Short: "Submit an assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0], "assignment id")
			if err != nil {
				return err
			}

			checks := []validation.Result{
				validation.MaxLength(content, 10000, "Content"),
				validation.URL(fileURL),
			}
			if fileURL == "" {
				checks = append(checks, validation.Required(content, "Content"))
			}
			if err := validation.Run(checks...).Err(); err != nil {
				return err
			}

			a, err := app.Portal.Assignments.Submit(cmd.Context(), id, dto.SubmitAssignmentRequest{Content: content, FileURL: fileURL})
			if err != nil {
				return err
			}
			s := app.styles()
			line := []string{s.Success.Render("✓ Submitted"), " ", s.Bold.Render(a.Title)}
			if a.SubmissionDate != nil {
				line = append(line, " ", s.Muted.Render(format.DateTime(*a.SubmissionDate)))
			}
			app.println(line...)
			return nil
		},
	}
	cmd.Flags().StringVarP(&content, "content", "c", "", "submission text")
	cmd.Flags().StringVar(&fileURL, "file-url", "", "link to the submitted file")
	return cmd
}

func newGradesCommand(app *App) *cobra.Command {
	var term string

	cmd := &cobra.Command{
		Use:   "grades",
		Short: "Show your grades, CGPA and grade distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			records, err := app.Portal.Feed.Grades(cmd.Context(), term)
			if err != nil {
				return err
			}

			s := app.styles()
			if len(records) == 0 {
				app.println(s.Muted.Render("No grades yet."))
				return nil
			}

			dist := portal.LetterDistribution(records)
			summary := []string{
				s.Field("CGPA", fmt.Sprintf("%.2f", portal.CGPA(records))),
				s.Field("Credits", strconv.Itoa(portal.CreditsCompleted(records))),
				s.Field("Courses", strconv.Itoa(len(records))),
				"",
				s.Subtitle.Render("Distribution"),
				s.Field("A", share(dist, dist.A)),
				s.Field("B", share(dist, dist.B)),
				s.Field("C", share(dist, dist.C)),
				s.Field("D/F", share(dist, dist.DF)),
			}
			app.println(s.Card.Render(strings.Join(summary, "\n")))

			t := newTable("CODE", "TITLE", "TERM", "CREDITS", "GRADE", "SCORE", "STATUS")
			for _, r := range records {
				grade, score := "-", "-"
				if r.Grade != "" {
					grade = s.Bold.Render(r.Grade)
				}
				if r.Percentage != nil {
					score = format.Percentage(*r.Percentage)
				}
				t.add(r.Code, format.Truncate(r.Title, 36), r.Term, strconv.Itoa(r.Credits), grade, score, s.Status(r.Status))
			}
			fmt.Fprint(app.Out, t.render(s))
			return nil
		},
	}
	cmd.Flags().StringVar(&term, "term", "", "only this term, e.g. current or previous")
	return cmd
}

func share(d portal.Distribution, count int) string {
	return fmt.Sprintf("%d  %s", count, format.PercentageDecimals(d.Share(count), 0))
}

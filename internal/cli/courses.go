package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/pkg/format"
	"github.com/yigit/svitlms/internal/portal"
)

// listFlags are the paging flags shared by list commands.
type listFlags struct {
	search string
	sort   string
	page   int
	size   int
}

func (f *listFlags) register(cmd *cobra.Command, sortHelp string) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "search text")
	cmd.Flags().StringVar(&f.sort, "sort", "", sortHelp)
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.size, "size", 10, "page size")
}

func (f *listFlags) params() portal.Params {
	return portal.Params{
		"search": f.search,
		"sort":   f.sort,
		"page":   strconv.Itoa(f.page),
		"size":   strconv.Itoa(f.size),
	}
}

func parseID(arg, name string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, arg)
	}
	return id, nil
}

func renderPagination(app *App, current, total, items int) {
	if items == 0 {
		return
	}
	app.println(app.styles().Muted.Render(fmt.Sprintf("Page %d of %d, %s items", current, max(total, 1), format.Number(int64(items)))))
}

func newCoursesCommand(app *App) *cobra.Command {
	var (
		lf                 listFlags
		status, department string
		scope              string
	)

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List your courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			params := lf.params()
			params["status"] = status
			params["department"] = department
			params["scope"] = scope

			page, err := app.Portal.Courses.List(cmd.Context(), params)
			if err != nil {
				return err
			}

			s := app.styles()
			if len(page.Items) == 0 {
				app.println(s.Muted.Render("No courses found."))
				return nil
			}

			t := newTable("ID", "CODE", "TITLE", "INSTRUCTOR", "STATUS", "PROGRESS")
			for _, c := range page.Items {
				t.add(
					strconv.FormatInt(c.ID, 10),
					s.Bold.Render(c.Code),
					format.Truncate(c.Title, 40),
					c.Instructor,
					s.Status(string(c.Status)),
					s.Meter(c.Progress),
				)
			}
			fmt.Fprint(app.Out, t.render(s))
			renderPagination(app, page.Pagination.CurrentPage, page.Pagination.TotalPages, page.Pagination.TotalItems)
			return nil
		},
	}
	lf.register(cmd, "name_asc, name_desc, code_asc, progress_asc or progress_desc")
	cmd.Flags().StringVar(&status, "status", "", "active, upcoming, completed, archived or draft")
	cmd.Flags().StringVar(&department, "department", "", "department name")
	cmd.Flags().StringVar(&scope, "scope", "", "enrolled, teaching or all")
	return cmd
}

func newCourseCommand(app *App) *cobra.Command {
	var enroll bool

	cmd := &cobra.Command{
		Use:   "course <id>",
		Short: "Show a course with its modules and your progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0], "course id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s := app.styles()

			if enroll {
				msg, err := app.Portal.Courses.Enroll(ctx, id)
				if err != nil {
					return err
				}
				app.println(s.Success.Render("✓ " + msg))
			}

			course, err := app.Portal.Courses.Get(ctx, id)
			if err != nil {
				return err
			}
			renderCourse(app, course.Course, course.Enrolled)

			if course.Enrolled && !app.Portal.Auth.IsFaculty() {
				progress, err := app.Portal.Courses.Progress(ctx, id)
				if err != nil {
					return err
				}
				lines := []string{
					s.Subtitle.Render("Your progress"),
					s.Field("Completed", s.Meter(progress.Progress)),
					s.Field("Assignments", fmt.Sprintf("%d of %d done", progress.CompletedAssignments, progress.TotalAssignments)),
				}
				if progress.AverageGrade != nil {
					lines = append(lines, s.Field("Average", format.Percentage(*progress.AverageGrade)))
				}
				app.println(strings.Join(lines, "\n"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&enroll, "enroll", false, "enroll in the course first")
	return cmd
}

func renderCourse(app *App, c *models.Course, enrolled bool) {
	s := app.styles()
	lines := []string{
		s.Title.Render(c.Code+"  "+c.Title) + "  " + s.Status(string(c.Status)),
		s.Field("Instructor", c.Instructor),
		s.Field("Department", c.Department),
	}
	if c.Credits > 0 {
		lines = append(lines, s.Field("Credits", strconv.Itoa(c.Credits)))
	}
	lines = append(lines, s.Field("Students", format.Number(int64(c.Enrollment))))
	if c.NextClass != "" {
		lines = append(lines, s.Field("Next class", c.NextClass))
	}
	if enrolled {
		lines = append(lines, s.Field("Enrolled", "yes"))
	}
	if c.Description != "" {
		lines = append(lines, "", s.Body.Render(format.Truncate(c.Description, 240)))
	}
	app.println(s.Card.Render(strings.Join(lines, "\n")))

	if len(c.Modules) > 0 {
		app.println(s.Subtitle.Render("Modules"))
		for i, m := range c.Modules {
			app.println(s.Muted.Render(fmt.Sprintf("%2d. ", i+1)), m.Title)
		}
	}
}

func newStudentsCommand(app *App) *cobra.Command {
	var (
		lf     listFlags
		status string
	)

	cmd := &cobra.Command{
		Use:   "students <courseId>",
		Short: "Follow the progress of a course's students (faculty)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireFaculty(); err != nil {
				return err
			}
			id, err := parseID(args[0], "course id")
			if err != nil {
				return err
			}
			params := lf.params()
			params["status"] = status

			page, err := app.Portal.Courses.Students(cmd.Context(), id, params)
			if err != nil {
				return err
			}

			s := app.styles()
			if len(page.Items) == 0 {
				app.println(s.Muted.Render("No students found."))
				return nil
			}

			t := newTable("ID", "NAME", "EMAIL", "PROGRESS", "ASSIGNMENTS", "GRADE", "LAST ACCESS")
			for _, st := range page.Items {
				p := st.Progress
				grade := "-"
				if p.CurrentGrade != nil {
					grade = format.Percentage(*p.CurrentGrade)
				}
				last := "never"
				if p.LastAccess != nil {
					last = format.Relative(*p.LastAccess, app.Now())
				}
				t.add(
					strconv.FormatInt(st.ID, 10),
					st.Name,
					s.Muted.Render(st.Email),
					s.Meter(p.Progress),
					fmt.Sprintf("%d/%d", p.CompletedAssignments, p.TotalAssignments),
					grade,
					last,
				)
			}
			fmt.Fprint(app.Out, t.render(s))
			renderPagination(app, page.Pagination.CurrentPage, page.Pagination.TotalPages, page.Pagination.TotalItems)
			return nil
		},
	}
	lf.register(cmd, "name_asc, name_desc, progress_asc, progress_desc or last_access")
	cmd.Flags().StringVar(&status, "status", "", "excellent, good, average or at_risk")
	return cmd
}

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/config"
	"github.com/yigit/svitlms/internal/pkg/apiclient"
	"github.com/yigit/svitlms/internal/pkg/format"
	"github.com/yigit/svitlms/internal/pkg/transfer"
	"github.com/yigit/svitlms/internal/pkg/validation"
	"github.com/yigit/svitlms/internal/portal"
)

func newMaterialsCommand(app *App) *cobra.Command {
	var (
		lf           listFlags
		kind, course string
		starred      bool
	)

	cmd := &cobra.Command{
		Use:   "materials",
		Short: "Browse course materials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()

			var (
				items []models.Material
				page  *pageInfo
			)
			if starred && !cmd.Flags().Changed("search") && kind == "" && course == "" {
				list, err := app.Portal.Materials.Starred(ctx)
				if err != nil {
					return err
				}
				items = list
			} else {
				params := lf.params()
				params["type"] = kind
				params["course"] = course
				if starred {
					params["starred"] = "true"
				}
				result, err := app.Portal.Materials.List(ctx, params)
				if err != nil {
					return err
				}
				items = result.Items
				page = &pageInfo{result.Pagination.CurrentPage, result.Pagination.TotalPages, result.Pagination.TotalItems}
			}

			s := app.styles()
			if len(items) == 0 {
				app.println(s.Muted.Render("No materials found."))
				return nil
			}

			t := newTable("ID", "", "TITLE", "COURSE", "TYPE", "SIZE", "DOWNLOADS", "UPLOADED")
			for _, m := range items {
				star := ""
				if m.Starred {
					star = s.Warning.Render("★")
				}
				size := m.Size
				if m.SizeBytes > 0 {
					size = format.FileSize(m.SizeBytes)
				}
				t.add(
					strconv.FormatInt(m.ID, 10),
					star,
					format.Truncate(m.Title, 40),
					m.CourseCode,
					string(m.Type),
					size,
					format.Number(int64(m.Downloads)),
					format.Relative(m.DateUploaded, app.Now()),
				)
			}
			fmt.Fprint(app.Out, t.render(s))
			if page != nil {
				renderPagination(app, page.current, page.total, page.items)
			}
			return nil
		},
	}
	lf.register(cmd, "newest, oldest, name_asc, name_desc or downloads")
	cmd.Flags().StringVar(&kind, "type", "", "pdf, video, document, presentation, audio or other")
	cmd.Flags().StringVar(&course, "course", "", "course code")
	cmd.Flags().BoolVar(&starred, "starred", false, "only starred materials")
	return cmd
}

type pageInfo struct {
	current, total, items int
}

type materialFlags struct {
	star        bool
	progress    int
	issueType   string
	description string
}

func newMaterialCommand(app *App) *cobra.Command {
	var f materialFlags

	cmd := &cobra.Command{
		Use:   "material <id>",
		Short: "Show a material, star it, record progress or report an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0], "material id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s := app.styles()

			if f.star {
				starred, err := app.Portal.Materials.ToggleStar(ctx, id)
				if err != nil {
					return err
				}
				if starred {
					app.println(s.Success.Render("✓ Starred"))
				} else {
					app.println(s.Success.Render("✓ Unstarred"))
				}
			}
			if cmd.Flags().Changed("progress") {
				if f.progress < 0 || f.progress > 100 {
					return errors.New("progress must be between 0 and 100")
				}
				if err := app.Portal.Materials.UpdateProgress(ctx, id, f.progress); err != nil {
					return err
				}
				app.println(s.Success.Render(fmt.Sprintf("✓ Progress saved at %d%%", f.progress)))
			}
			if f.issueType != "" {
				if err := validation.MaxLength(f.description, 2000, "Description").Err(); err != nil {
					return err
				}
				if _, err := app.Portal.Materials.ReportIssue(ctx, id, dto.ReportIssueRequest{IssueType: f.issueType, Description: f.description}); err != nil {
					return err
				}
				app.println(s.Success.Render("✓ Issue reported, thank you"))
			}

			m, err := app.Portal.Materials.Get(ctx, id)
			if err != nil {
				return err
			}
			if err := app.Portal.Materials.MarkViewed(ctx, id); err != nil {
				app.Logger.Warn().Err(err).Int64("material_id", id).Msg("Failed to record material view")
			}
			renderMaterial(app, m)

			related, err := app.Portal.Materials.Related(ctx, id)
			if err != nil {
				return err
			}
			if len(related) > 0 {
				app.println(s.Subtitle.Render("Related"))
				for _, r := range related {
					app.println(s.Muted.Render(fmt.Sprintf("%4d  ", r.ID)), r.Title, s.Muted.Render("  "+string(r.Type)))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&f.star, "star", false, "toggle the star")
	cmd.Flags().IntVar(&f.progress, "progress", 0, "record progress, 0 to 100")
	cmd.Flags().StringVar(&f.issueType, "report", "", "report an issue of this type, e.g. broken_link")
	cmd.Flags().StringVar(&f.description, "description", "", "issue description")
	return cmd
}

func renderMaterial(app *App, m *models.Material) {
	s := app.styles()
	title := m.Title
	if m.Starred {
		title += " ★"
	}
	lines := []string{
		s.Title.Render(title),
		s.Field("Course", strings.TrimSpace(m.CourseCode+" "+m.Course)),
		s.Field("Type", string(m.Type)),
	}
	if m.SizeBytes > 0 {
		lines = append(lines, s.Field("Size", format.FileSize(m.SizeBytes)))
	} else if m.Size != "" {
		lines = append(lines, s.Field("Size", m.Size))
	}
	if m.Duration != "" {
		lines = append(lines, s.Field("Duration", m.Duration))
	}
	if m.Instructor != "" {
		lines = append(lines, s.Field("Instructor", m.Instructor))
	}
	lines = append(lines,
		s.Field("Uploaded", format.DateTime(m.DateUploaded)),
		s.Field("Downloads", format.Number(int64(m.Downloads))),
		s.Field("Views", format.Number(int64(m.Views))),
	)
	if m.Description != "" {
		lines = append(lines, "", s.Body.Render(format.Truncate(m.Description, 240)))
	}
	app.println(s.Card.Render(strings.Join(lines, "\n")))
}

// transferView redraws one progress line in place.
type transferView struct {
	app   *App
	label string
	bar   progress.Model

	mu sync.Mutex
}

func newTransferView(app *App, label string) *transferView {
	return &transferView{app: app, label: label, bar: app.styles().ProgressBar(30)}
}

func (v *transferView) show(percent float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.app.Out, "\r%s %s", v.label, v.bar.ViewAs(percent/100))
}

// runTransfer runs work under a progress line. With simulate the bar is
// driven by a transfer.Simulator paced by profile; otherwise work reports
// real progress through its callback.
func (a *App) runTransfer(ctx context.Context, label string, profile config.TransferProfile, simulate bool, work func(onProgress func(int)) error) error {
	view := newTransferView(a, label)
	defer fmt.Fprintln(a.Out)

	if !simulate {
		view.show(0)
		return work(func(p int) { view.show(float64(p)) })
	}

	delay, interval, err := profile.Durations()
	if err != nil {
		return err
	}
	sim := transfer.New(
		transfer.Profile{Delay: delay, Interval: interval, MaxIncrement: profile.MaxIncrement},
		transfer.OnProgress(view.show),
	)
	view.show(0)
	sim.Start(ctx)

	if err := work(nil); err != nil {
		sim.Fail(err)
		return err
	}
	<-sim.Done()
	if !sim.Status().Complete {
		if err := ctx.Err(); err != nil {
			return err
		}
		return errors.New("transfer cancelled")
	}
	return nil
}

func newDownloadCommand(app *App) *cobra.Command {
	var (
		output   string
		simulate bool
	)

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0], "material id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var (
				buf  bytes.Buffer
				link string
			)
			err = app.runTransfer(ctx, "Downloading", app.Config.Transfer.Download, simulate, func(onProgress func(int)) error {
				d, err := app.Portal.Materials.Download(ctx, id)
				if err != nil {
					return err
				}
				link = d.URL
				if _, err := app.Portal.Materials.Save(ctx, d, &buf); err != nil {
					return err
				}
				if onProgress != nil {
					onProgress(100)
				}
				return nil
			})
			if err != nil {
				return err
			}

			name := output
			if name == "" {
				name = downloadName(link, id)
			}
			if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("save %s: %w", name, err)
			}
			s := app.styles()
			app.println(s.Success.Render("✓ Saved"), " ", s.Bold.Render(name), " ", s.Muted.Render(format.FileSize(int64(buf.Len()))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write, defaults to the name in the download link")
	cmd.Flags().BoolVar(&simulate, "simulate", false, "show simulated transfer progress")
	return cmd
}

// downloadName is the last path segment of link, or material-<id>.
func downloadName(link string, id int64) string {
	if u, err := url.Parse(link); err == nil && u.Path != "" {
		if base := path.Base(u.Path); base != "/" && base != "." {
			return base
		}
	}
	return "material-" + strconv.FormatInt(id, 10)
}

type uploadFlags struct {
	courseID    int64
	moduleID    int64
	title       string
	description string
	kind        string
	simulate    bool
}

func newUploadCommand(app *App) *cobra.Command {
	var f uploadFlags

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a material to a course (faculty)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireFaculty(); err != nil {
				return err
			}
			filename := args[0]
			info, err := os.Stat(filename)
			if err != nil {
				return err
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", filename)
			}

			contentType := mime.TypeByExtension(filepath.Ext(filename))
			kind := format.DetectKind(filename)
			if err := validation.Run(
				validation.FileType(filename, contentType, format.AllowedUploads()),
				validation.FileSize(info.Size(), format.MaxSizeFor(kind)),
			).Err(); err != nil {
				return err
			}

			req := portalUpload(f, filename, kind)
			if err := validation.Run(
				validation.Required(req.Title, "Title"),
				validation.MaxLength(req.Title, 255, "Title"),
			).Err(); err != nil {
				return err
			}

			file, err := os.Open(filename)
			if err != nil {
				return err
			}
			defer file.Close()

			ctx := cmd.Context()
			var material *models.Material
			err = app.runTransfer(ctx, "Uploading", app.Config.Transfer.Upload, f.simulate, func(onProgress func(int)) error {
				upload := apiclient.Upload{Name: filepath.Base(filename), ContentType: contentType, Body: file}
				m, err := app.Portal.Materials.Upload(ctx, upload, req, onProgress)
				material = m
				return err
			})
			if err != nil {
				return err
			}

			s := app.styles()
			title := req.Title
			if material != nil {
				title = fmt.Sprintf("%s (#%d)", material.Title, material.ID)
			}
			app.println(s.Success.Render("✓ Uploaded"), " ", s.Bold.Render(title))
			return nil
		},
	}
	cmd.Flags().Int64Var(&f.courseID, "course", 0, "course id")
	cmd.Flags().Int64Var(&f.moduleID, "module", 0, "module id")
	cmd.Flags().StringVar(&f.title, "title", "", "title, defaults to the file name")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.kind, "type", "", "material type, detected from the file name when empty")
	cmd.Flags().BoolVar(&f.simulate, "simulate", false, "show simulated transfer progress")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func portalUpload(f uploadFlags, filename, detected string) portal.UploadRequest {
	title := f.title
	if title == "" {
		title = format.BaseTitle(filename)
	}
	kind := f.kind
	if kind == "" {
		kind = detected
	}
	return portal.UploadRequest{
		Title:       title,
		Description: f.description,
		CourseID:    f.courseID,
		ModuleID:    f.moduleID,
		Type:        kind,
	}
}

package portal

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yigit/svitlms/internal/app/models"
)

// Dashboard is the landing view of a signed-in user.
type Dashboard struct {
	User          *models.User
	Courses       []models.Course
	Assignments   []models.Assignment
	Announcements []models.Announcement
}

// ActiveCourses counts the courses the user has made progress in.
func (d *Dashboard) ActiveCourses() int {
	n := 0
	for _, c := range d.Courses {
		if c.Progress > 0 {
			n++
		}
	}
	return n
}

// Dashboard loads courses, the open assignments and announcements
// concurrently. The first failure cancels the other requests and is
// returned.
func (p *Portal) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{User: p.Auth.CurrentUser()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := p.Courses.List(gctx, Params{"sort": "progress_desc", "size": "100"})
		if err != nil {
			return err
		}
		d.Courses = page.Items
		return nil
	})
	g.Go(func() error {
		page, err := p.Assignments.List(gctx, Params{"sort": "due_asc", "size": "100"})
		if err != nil {
			return err
		}
		for _, a := range page.Items {
			if a.Status != models.AssignmentCompleted {
				d.Assignments = append(d.Assignments, a)
			}
		}
		return nil
	})
	g.Go(func() error {
		announcements, err := p.Feed.Announcements(gctx)
		if err != nil {
			return err
		}
		d.Announcements = announcements
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

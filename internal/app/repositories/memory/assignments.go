package memory

import (
	"context"
	"slices"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/pkg/apperrors"
)

// AssignmentRepository keeps assignments and submissions in memory.
type AssignmentRepository struct{ s *store }

// view copies an assignment with its course and the user's submission
// applied. Callers hold mu.
func (r *AssignmentRepository) view(a *models.Assignment, userID int64) (*models.Assignment, bool) {
	c, ok := r.s.courses[a.CourseID]
	if !ok {
		return nil, false
	}
	out := *a
	out.Course = c.Title
	out.CourseCode = c.Code
	out.Instructor = c.Instructor
	if sub, ok := r.s.submissions[userKey{a.ID, userID}]; ok {
		at := sub.SubmittedAt
		out.Status = models.AssignmentCompleted
		out.SubmissionDate = &at
	}
	return &out, true
}

func (r *AssignmentRepository) List(_ context.Context, userID, courseID int64) ([]*models.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	assignments := make([]*models.Assignment, 0)
	for _, id := range sortedKeys(r.s.assignments) {
		a := r.s.assignments[id]
		if courseID > 0 && a.CourseID != courseID {
			continue
		}
		if out, ok := r.view(a, userID); ok {
			assignments = append(assignments, out)
		}
	}
	return assignments, nil
}

func (r *AssignmentRepository) GetByID(_ context.Context, id, userID int64) (*models.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.assignments[id]
	if !ok {
		return nil, apperrors.ErrAssignmentNotFound
	}
	out, ok := r.view(a, userID)
	if !ok {
		return nil, apperrors.ErrAssignmentNotFound
	}
	return out, nil
}

func (r *AssignmentRepository) Create(_ context.Context, assignment *models.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.courses[assignment.CourseID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	assignment.ID = r.s.next("assignments")
	stored := *assignment
	r.s.assignments[assignment.ID] = &stored
	return nil
}

func (r *AssignmentRepository) Submit(_ context.Context, submission *models.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.assignments[submission.AssignmentID]; !ok {
		return apperrors.ErrAssignmentNotFound
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = r.s.now()
	}

	key := userKey{submission.AssignmentID, submission.UserID}
	if prev, ok := r.s.submissions[key]; ok {
		submission.ID = prev.ID
	} else {
		submission.ID = r.s.next("submissions")
	}
	stored := *submission
	r.s.submissions[key] = &stored
	return nil
}

// AnnouncementRepository keeps announcements in memory.
type AnnouncementRepository struct{ s *store }

func (r *AnnouncementRepository) List(_ context.Context) ([]*models.Announcement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	announcements := make([]*models.Announcement, 0, len(r.s.announcements))
	for _, a := range r.s.announcements {
		out := *a
		out.Attachments = slices.Clone(a.Attachments)
		announcements = append(announcements, &out)
	}
	slices.SortStableFunc(announcements, func(a, b *models.Announcement) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	return announcements, nil
}

func (r *AnnouncementRepository) Create(_ context.Context, announcement *models.Announcement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if announcement.CourseID != nil {
		if _, ok := r.s.courses[*announcement.CourseID]; !ok {
			return apperrors.ErrCourseNotFound
		}
	}
	if announcement.Date.IsZero() {
		announcement.Date = r.s.now()
	}
	announcement.ID = r.s.next("announcements")
	stored := *announcement
	stored.Attachments = slices.Clone(announcement.Attachments)
	r.s.announcements = append(r.s.announcements, &stored)
	return nil
}

// GradeRepository keeps term results in memory.
type GradeRepository struct{ s *store }

func (r *GradeRepository) ListByUser(_ context.Context, userID int64) ([]*models.GradeRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	grades := make([]*models.GradeRecord, 0)
	for _, g := range r.s.grades {
		if g.UserID == userID {
			out := *g
			out.Components = slices.Clone(g.Components)
			grades = append(grades, &out)
		}
	}
	return grades, nil
}

func (r *GradeRepository) Create(_ context.Context, grade *models.GradeRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	grade.ID = r.s.next("grades")
	stored := *grade
	stored.Components = slices.Clone(grade.Components)
	r.s.grades = append(r.s.grades, &stored)
	return nil
}

package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	applisting "github.com/yigit/svitlms/internal/app/listing"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/app/repositories"
	"github.com/yigit/svitlms/internal/pkg/apperrors"
	"github.com/yigit/svitlms/internal/pkg/listing"
)

// AssignmentService defines the interface for assignment operations
type AssignmentService interface {
	// List returns the assignments of the caller's courses, or of one course
	// when courseID > 0.
	List(ctx context.Context, userID int64, role models.Role, courseID int64, q dto.ListQuery) ([]models.Assignment, listing.PageInfo, error)
	Get(ctx context.Context, id, userID int64) (*models.Assignment, error)
	Submit(ctx context.Context, id, userID int64, req *dto.SubmitAssignmentRequest) (*models.Assignment, error)
}

type assignmentServiceImpl struct {
	assignments repositories.AssignmentRepository
	courses     repositories.CourseRepository
	logger      zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(assignments repositories.AssignmentRepository, courses repositories.CourseRepository, lgr zerolog.Logger) AssignmentService {
	return &assignmentServiceImpl{assignments: assignments, courses: courses, logger: lgr}
}

func (s *assignmentServiceImpl) List(ctx context.Context, userID int64, role models.Role, courseID int64, q dto.ListQuery) ([]models.Assignment, listing.PageInfo, error) {
	var items []models.Assignment
	if courseID > 0 {
		if _, err := s.courses.GetByID(ctx, courseID, userID); err != nil {
			return nil, listing.PageInfo{}, err
		}
		assignments, err := s.assignments.List(ctx, userID, courseID)
		if err != nil {
			return nil, listing.PageInfo{}, err
		}
		items = values(assignments)
	} else {
		var err error
		if items, err = s.ofMyCourses(ctx, userID, role); err != nil {
			return nil, listing.PageInfo{}, err
		}
	}

	items = applisting.Assignments().Apply(items, q.Query())
	page, info := listing.Paginate(items, q.Page, q.Size)
	return page, info, nil
}

func (s *assignmentServiceImpl) ofMyCourses(ctx context.Context, userID int64, role models.Role) ([]models.Assignment, error) {
	courses, err := s.courses.List(ctx, userID, scopeFor(role, ""))
	if err != nil {
		return nil, err
	}
	mine := make(map[int64]bool, len(courses))
	for _, c := range courses {
		mine[c.ID] = true
	}

	all, err := s.assignments.List(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	items := make([]models.Assignment, 0, len(all))
	for _, a := range all {
		if mine[a.CourseID] {
			items = append(items, *a)
		}
	}
	return items, nil
}

func (s *assignmentServiceImpl) Get(ctx context.Context, id, userID int64) (*models.Assignment, error) {
	return s.assignments.GetByID(ctx, id, userID)
}

// Submit hands in an assignment. Resubmitting replaces the earlier
// submission.
func (s *assignmentServiceImpl) Submit(ctx context.Context, id, userID int64, req *dto.SubmitAssignmentRequest) (*models.Assignment, error) {
	if strings.TrimSpace(req.Content) == "" && req.FileURL == "" {
		return nil, apperrors.NewValidationError("content", "Submission needs content or a file")
	}

	assignment, err := s.assignments.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	submission := &models.Submission{
		AssignmentID: id,
		UserID:       userID,
		Content:      req.Content,
		FileURL:      req.FileURL,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := s.assignments.Submit(ctx, submission); err != nil {
		return nil, err
	}

	late := submission.SubmittedAt.After(assignment.DueDate)
	s.logger.Info().Int64("assignmentID", id).Int64("userID", userID).Bool("late", late).Msg("Assignment submitted")
	return s.assignments.GetByID(ctx, id, userID)
}

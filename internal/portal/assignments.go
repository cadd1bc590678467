package portal

import (
	"context"
	"net/http"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/pkg/apiclient"
)

// AssignmentService lists and submits assignments.
type AssignmentService struct {
	api *apiclient.Client
}

// List returns one page of the caller's assignments. Recognised params are
// search, status, sort, page and size.
func (s *AssignmentService) List(ctx context.Context, params Params) (*Page[models.Assignment], error) {
	return getPage[models.Assignment](ctx, s.api, "/assignments", params)
}

func (s *AssignmentService) Get(ctx context.Context, assignmentID int64) (*models.Assignment, error) {
	return getData[*models.Assignment](ctx, s.api, "/assignments/"+pathID(assignmentID))
}

// Submit hands in an assignment and returns it with the submission applied.
func (s *AssignmentService) Submit(ctx context.Context, assignmentID int64, req dto.SubmitAssignmentRequest) (*models.Assignment, error) {
	return send[models.Assignment](ctx, s.api, http.MethodPost, "/assignments/"+pathID(assignmentID)+"/submit", req)
}

// FeedService reads announcements and grades.
type FeedService struct {
	api *apiclient.Client
}

func (s *FeedService) Announcements(ctx context.Context) ([]models.Announcement, error) {
	return getData[[]models.Announcement](ctx, s.api, "/announcements")
}

// Grades returns the grade records of term: "current", "previous", a term
// name, or every term when empty.
func (s *FeedService) Grades(ctx context.Context, term string) ([]models.GradeRecord, error) {
	return getData[[]models.GradeRecord](ctx, s.api, apiclient.WithQuery("/grades", map[string]string{"term": term}))
}

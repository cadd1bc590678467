package portal

import (
	"context"
	"net/http"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/pkg/apiclient"
)

// CourseService reads and manages courses.
type CourseService struct {
	api *apiclient.Client
}

func coursePath(courseID int64) string {
	return "/courses/" + pathID(courseID)
}

// List returns one page of the caller's courses. Recognised params are
// search, status, department, sort, scope, page and size.
func (s *CourseService) List(ctx context.Context, params Params) (*Page[models.Course], error) {
	return getPage[models.Course](ctx, s.api, "/courses", params)
}

// Get returns a course with its modules and the caller's enrollment.
func (s *CourseService) Get(ctx context.Context, courseID int64) (*dto.CourseDetailResponse, error) {
	return getData[*dto.CourseDetailResponse](ctx, s.api, coursePath(courseID))
}

func (s *CourseService) Create(ctx context.Context, req dto.CourseRequest) (*models.Course, error) {
	return send[models.Course](ctx, s.api, http.MethodPost, "/courses", req)
}

func (s *CourseService) Update(ctx context.Context, courseID int64, req dto.CourseRequest) (*models.Course, error) {
	return send[models.Course](ctx, s.api, http.MethodPut, coursePath(courseID), req)
}

func (s *CourseService) Delete(ctx context.Context, courseID int64) error {
	_, err := acknowledge(ctx, s.api, http.MethodDelete, coursePath(courseID), nil)
	return err
}

// Enroll enrolls the signed-in student.
func (s *CourseService) Enroll(ctx context.Context, courseID int64) (string, error) {
	return acknowledge(ctx, s.api, http.MethodPost, coursePath(courseID)+"/enroll", nil)
}

// Progress returns the caller's standing in a course.
func (s *CourseService) Progress(ctx context.Context, courseID int64) (*models.CourseProgressSummary, error) {
	return getData[*models.CourseProgressSummary](ctx, s.api, coursePath(courseID)+"/progress")
}

func (s *CourseService) Modules(ctx context.Context, courseID int64) ([]models.CourseModule, error) {
	return getData[[]models.CourseModule](ctx, s.api, coursePath(courseID)+"/modules")
}

func (s *CourseService) CreateModule(ctx context.Context, courseID int64, req dto.ModuleRequest) (*models.CourseModule, error) {
	return send[models.CourseModule](ctx, s.api, http.MethodPost, coursePath(courseID)+"/modules", req)
}

func (s *CourseService) UpdateModule(ctx context.Context, courseID, moduleID int64, req dto.ModuleRequest) (*models.CourseModule, error) {
	return send[models.CourseModule](ctx, s.api, http.MethodPut, coursePath(courseID)+"/modules/"+pathID(moduleID), req)
}

func (s *CourseService) DeleteModule(ctx context.Context, courseID, moduleID int64) error {
	_, err := acknowledge(ctx, s.api, http.MethodDelete, coursePath(courseID)+"/modules/"+pathID(moduleID), nil)
	return err
}

// CreateAnnouncement posts a notice to a course.
func (s *CourseService) CreateAnnouncement(ctx context.Context, courseID int64, req dto.AnnouncementRequest) (*models.Announcement, error) {
	return send[models.Announcement](ctx, s.api, http.MethodPost, coursePath(courseID)+"/announcements", req)
}

func (s *CourseService) Assignments(ctx context.Context, courseID int64, params Params) (*Page[models.Assignment], error) {
	return getPage[models.Assignment](ctx, s.api, coursePath(courseID)+"/assignments", params)
}

func (s *CourseService) Materials(ctx context.Context, courseID int64, params Params) (*Page[models.Material], error) {
	return getPage[models.Material](ctx, s.api, coursePath(courseID)+"/materials", params)
}

// Students lists a course roster with progress. Recognised params are
// search, status, sort, page and size.
func (s *CourseService) Students(ctx context.Context, courseID int64, params Params) (*Page[models.CourseStudent], error) {
	return getPage[models.CourseStudent](ctx, s.api, coursePath(courseID)+"/students", params)
}

func (s *CourseService) StudentProgress(ctx context.Context, courseID, studentID int64) (*models.CourseStudent, error) {
	return getData[*models.CourseStudent](ctx, s.api, coursePath(courseID)+"/students/"+pathID(studentID)+"/progress")
}

package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/svitlms/internal/app/auth"
	applisting "github.com/yigit/svitlms/internal/app/listing"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/app/repositories"
	"github.com/yigit/svitlms/internal/pkg/listing"
)

// CourseService defines the interface for course operations
type CourseService interface {
	List(ctx context.Context, userID int64, role models.Role, q dto.ListQuery) ([]models.Course, listing.PageInfo, error)
	Get(ctx context.Context, id, userID int64) (*dto.CourseDetailResponse, error)
	Create(ctx context.Context, userID int64, req *dto.CourseRequest) (*models.Course, error)
	Update(ctx context.Context, userID, id int64, req *dto.CourseRequest) (*models.Course, error)
	Delete(ctx context.Context, userID, id int64) error
	Enroll(ctx context.Context, courseID, userID int64) error
	Progress(ctx context.Context, courseID, userID int64) (*models.CourseProgressSummary, error)

	ListModules(ctx context.Context, courseID int64) ([]models.CourseModule, error)
	CreateModule(ctx context.Context, userID, courseID int64, req *dto.ModuleRequest) (*models.CourseModule, error)
	UpdateModule(ctx context.Context, userID, courseID, moduleID int64, req *dto.ModuleRequest) (*models.CourseModule, error)
	DeleteModule(ctx context.Context, userID, courseID, moduleID int64) error

	CreateAnnouncement(ctx context.Context, userID, courseID int64, req *dto.AnnouncementRequest) (*models.Announcement, error)

	ListStudents(ctx context.Context, userID, courseID int64, q dto.ListQuery) ([]models.CourseStudent, listing.PageInfo, error)
	StudentProgress(ctx context.Context, userID, courseID, studentID int64) (*models.CourseStudent, error)
}

type courseServiceImpl struct {
	repos  *repositories.Repositories
	authz  *auth.AuthorizationService
	logger zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(repos *repositories.Repositories, authz *auth.AuthorizationService, lgr zerolog.Logger) CourseService {
	return &courseServiceImpl{repos: repos, authz: authz, logger: lgr}
}

// scopeFor picks the course scope of a listing. Without an explicit scope
// students see the courses they are enrolled in and faculty the ones they
// teach.
func scopeFor(role models.Role, requested string) repositories.CourseScope {
	if requested != "" {
		return repositories.CourseScope(requested)
	}
	if role == models.RoleFaculty {
		return repositories.ScopeTeaching
	}
	return repositories.ScopeEnrolled
}

// List runs the course pipeline over the caller's courses and returns the
// requested page. Faculty searches also match the department.
func (s *courseServiceImpl) List(ctx context.Context, userID int64, role models.Role, q dto.ListQuery) ([]models.Course, listing.PageInfo, error) {
	courses, err := s.repos.Courses.List(ctx, userID, scopeFor(role, q.Scope))
	if err != nil {
		return nil, listing.PageInfo{}, err
	}

	query := q.Query()
	items := values(courses)
	if role == models.RoleFaculty && query.Search != "" {
		items = applisting.ManagedCourses().Apply(items, listing.Query{Search: query.Search})
		query.Search = ""
	}
	items = applisting.Courses().Apply(items, query)

	page, info := listing.Paginate(items, q.Page, q.Size)
	return page, info, nil
}

func (s *courseServiceImpl) Get(ctx context.Context, id, userID int64) (*dto.CourseDetailResponse, error) {
	course, err := s.repos.Courses.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.repos.Courses.IsEnrolled(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return &dto.CourseDetailResponse{Course: course, Enrolled: enrolled}, nil
}

// Create adds a course taught by the calling faculty member.
func (s *courseServiceImpl) Create(ctx context.Context, userID int64, req *dto.CourseRequest) (*models.Course, error) {
	if err := s.authz.ValidateFaculty(ctx, userID); err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	course := &models.Course{InstructorID: userID, Instructor: user.Name}
	applyCourseRequest(course, req)
	if course.Department == "" {
		course.Department = user.Department
	}

	if err := s.repos.Courses.Create(ctx, course); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("courseID", course.ID).Str("code", course.Code).Int64("userID", userID).Msg("Course created")
	return course, nil
}

func (s *courseServiceImpl) Update(ctx context.Context, userID, id int64, req *dto.CourseRequest) (*models.Course, error) {
	if err := s.authz.ValidateCourseOwnership(ctx, id, userID); err != nil {
		return nil, err
	}

	course, err := s.repos.Courses.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	applyCourseRequest(course, req)

	if err := s.repos.Courses.Update(ctx, course); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("courseID", id).Int64("userID", userID).Msg("Course updated")
	return course, nil
}

func applyCourseRequest(c *models.Course, req *dto.CourseRequest) {
	c.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	c.Title = strings.TrimSpace(req.Title)
	c.Description = req.Description
	if req.Department != "" {
		c.Department = req.Department
	}
	c.Status = req.Status
	if c.Status == "" {
		c.Status = models.CourseActive
	}
	c.Visibility = req.Visibility
	if c.Visibility == "" {
		c.Visibility = "visible"
	}
	c.Credits = req.Credits
	c.StartDate = req.StartDate
	c.EndDate = req.EndDate
	c.NextClass = req.NextClass
	c.CoverImage = req.CoverImage
}

func (s *courseServiceImpl) Delete(ctx context.Context, userID, id int64) error {
	if err := s.authz.ValidateCourseOwnership(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repos.Courses.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("courseID", id).Int64("userID", userID).Msg("Course deleted")
	return nil
}

func (s *courseServiceImpl) Enroll(ctx context.Context, courseID, userID int64) error {
	if err := s.repos.Courses.Enroll(ctx, courseID, userID); err != nil {
		return err
	}
	s.logger.Info().Int64("courseID", courseID).Int64("userID", userID).Msg("Enrolled in course")
	return nil
}

// Progress summarises the caller's assignments in a course. The average
// grade is the mean percentage over graded assignments.
func (s *courseServiceImpl) Progress(ctx context.Context, courseID, userID int64) (*models.CourseProgressSummary, error) {
	if err := s.authz.ValidateCourseAccess(ctx, courseID, userID); err != nil {
		return nil, err
	}

	course, err := s.repos.Courses.GetByID(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repos.Assignments.List(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	summary := &models.CourseProgressSummary{
		CourseID:         courseID,
		Progress:         course.Progress,
		TotalAssignments: len(assignments),
	}

	var sum float64
	graded := 0
	for _, a := range assignments {
		if a.Status == models.AssignmentCompleted {
			summary.CompletedAssignments++
		}
		if a.Grade != nil && a.TotalPoints > 0 {
			sum += *a.Grade / float64(a.TotalPoints) * 100
			graded++
		}
	}
	if graded > 0 {
		avg := sum / float64(graded)
		summary.AverageGrade = &avg
	}
	return summary, nil
}

func (s *courseServiceImpl) ListModules(ctx context.Context, courseID int64) ([]models.CourseModule, error) {
	// Unknown courses are a 404, not an empty list.
	if _, err := s.repos.Courses.GetByID(ctx, courseID, 0); err != nil {
		return nil, err
	}
	return s.repos.Courses.ListModules(ctx, courseID)
}

func (s *courseServiceImpl) CreateModule(ctx context.Context, userID, courseID int64, req *dto.ModuleRequest) (*models.CourseModule, error) {
	if err := s.authz.ValidateCourseOwnership(ctx, courseID, userID); err != nil {
		return nil, err
	}

	module := &models.CourseModule{
		CourseID:    courseID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Position:    req.Position,
	}
	// Position 0 appends the module after the last one.
	if err := s.repos.Courses.CreateModule(ctx, module); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("courseID", courseID).Int64("moduleID", module.ID).Msg("Module created")
	return module, nil
}

func (s *courseServiceImpl) UpdateModule(ctx context.Context, userID, courseID, moduleID int64, req *dto.ModuleRequest) (*models.CourseModule, error) {
	if err := s.authz.ValidateCourseOwnership(ctx, courseID, userID); err != nil {
		return nil, err
	}

	module := &models.CourseModule{
		ID:          moduleID,
		CourseID:    courseID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Position:    req.Position,
	}
	if err := s.repos.Courses.UpdateModule(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *courseServiceImpl) DeleteModule(ctx context.Context, userID, courseID, moduleID int64) error {
	if err := s.authz.ValidateCourseOwnership(ctx, courseID, userID); err != nil {
		return err
	}
	return s.repos.Courses.DeleteModule(ctx, courseID, moduleID)
}

// CreateAnnouncement posts a notice to a course the caller teaches.
func (s *courseServiceImpl) CreateAnnouncement(ctx context.Context, userID, courseID int64, req *dto.AnnouncementRequest) (*models.Announcement, error) {
	if err := s.authz.ValidateCourseOwnership(ctx, courseID, userID); err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	announcement := &models.Announcement{
		CourseID:    &courseID,
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		Author:      user.Name,
		Important:   req.Important,
		Attachments: req.Attachments,
	}
	if err := s.repos.Announcements.Create(ctx, announcement); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("courseID", courseID).Int64("announcementID", announcement.ID).Msg("Announcement posted")
	return announcement, nil
}

// ListStudents runs the student pipeline over a course roster.
func (s *courseServiceImpl) ListStudents(ctx context.Context, userID, courseID int64, q dto.ListQuery) ([]models.CourseStudent, listing.PageInfo, error) {
	if err := s.authz.ValidateCourseOwnership(ctx, courseID, userID); err != nil {
		return nil, listing.PageInfo{}, err
	}

	students, err := s.repos.Students.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, listing.PageInfo{}, err
	}

	items := applisting.Students().Apply(students, q.Query())
	page, info := listing.Paginate(items, q.Page, q.Size)
	return page, info, nil
}

func (s *courseServiceImpl) StudentProgress(ctx context.Context, userID, courseID, studentID int64) (*models.CourseStudent, error) {
	if err := s.authz.ValidateCourseOwnership(ctx, courseID, userID); err != nil {
		return nil, err
	}
	return s.repos.Students.GetProgress(ctx, courseID, studentID)
}

package memory

import (
	"context"
	"slices"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/repositories"
	"github.com/yigit/svitlms/internal/pkg/apperrors"
)

// CourseRepository keeps courses, modules and enrollments in memory.
type CourseRepository struct{ s *store }

// view copies a course and fills in the user's progress. Callers hold mu.
func (r *CourseRepository) view(c *models.Course, userID int64) *models.Course {
	out := *c
	out.Modules = nil
	out.Progress = r.s.enrollments[userKey{c.ID, userID}]
	return &out
}

func (r *CourseRepository) List(_ context.Context, userID int64, scope repositories.CourseScope) ([]*models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	courses := make([]*models.Course, 0)
	for _, id := range sortedKeys(r.s.courses) {
		c := r.s.courses[id]
		switch scope {
		case repositories.ScopeEnrolled:
			if _, ok := r.s.enrollments[userKey{id, userID}]; !ok {
				continue
			}
		case repositories.ScopeTeaching:
			if c.InstructorID != userID {
				continue
			}
		}
		courses = append(courses, r.view(c, userID))
	}
	return courses, nil
}

func (r *CourseRepository) GetByID(_ context.Context, id, userID int64) (*models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	out := r.view(c, userID)
	out.Modules = r.modulesOf(id)
	return out, nil
}

func (r *CourseRepository) codeTaken(code string, except int64) bool {
	for id, c := range r.s.courses {
		if id != except && c.Code == code {
			return true
		}
	}
	return false
}

func (r *CourseRepository) Create(_ context.Context, course *models.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.codeTaken(course.Code, 0) {
		return apperrors.ErrCourseAlreadyExists
	}
	course.ID = r.s.next("courses")
	stored := *course
	stored.Progress = 0
	stored.Modules = nil
	r.s.courses[course.ID] = &stored
	return nil
}

func (r *CourseRepository) Update(_ context.Context, course *models.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.courses[course.ID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	if r.codeTaken(course.Code, course.ID) {
		return apperrors.ErrCourseAlreadyExists
	}
	c.Code = course.Code
	c.Title = course.Title
	c.Description = course.Description
	c.Department = course.Department
	c.Status = course.Status
	c.Visibility = course.Visibility
	c.Credits = course.Credits
	c.StartDate = course.StartDate
	c.EndDate = course.EndDate
	c.NextClass = course.NextClass
	c.CoverImage = course.CoverImage
	return nil
}

func (r *CourseRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(r.s.courses, id)
	for k := range r.s.enrollments {
		if k.id == id {
			delete(r.s.enrollments, k)
		}
	}
	for mid, m := range r.s.modules {
		if m.CourseID == id {
			delete(r.s.modules, mid)
		}
	}
	return nil
}

func (r *CourseRepository) Enroll(_ context.Context, courseID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.courses[courseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	key := userKey{courseID, userID}
	if _, ok := r.s.enrollments[key]; ok {
		return apperrors.ErrAlreadyEnrolled
	}
	r.s.enrollments[key] = 0
	c.Enrollment++
	return nil
}

func (r *CourseRepository) IsEnrolled(_ context.Context, courseID, userID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.enrollments[userKey{courseID, userID}]
	return ok, nil
}

func (r *CourseRepository) SetProgress(_ context.Context, courseID, userID int64, progress int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := userKey{courseID, userID}
	if _, ok := r.s.enrollments[key]; !ok {
		return apperrors.ErrCourseNotFound
	}
	r.s.enrollments[key] = progress
	return nil
}

// modulesOf returns a course's modules in position order. Callers hold mu.
func (r *CourseRepository) modulesOf(courseID int64) []models.CourseModule {
	modules := make([]models.CourseModule, 0)
	for _, id := range sortedKeys(r.s.modules) {
		if m := r.s.modules[id]; m.CourseID == courseID {
			modules = append(modules, *m)
		}
	}
	slices.SortStableFunc(modules, func(a, b models.CourseModule) int {
		return a.Position - b.Position
	})
	return modules
}

func (r *CourseRepository) ListModules(_ context.Context, courseID int64) ([]models.CourseModule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.modulesOf(courseID), nil
}

func (r *CourseRepository) CreateModule(_ context.Context, module *models.CourseModule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.courses[module.CourseID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	if module.Position == 0 {
		for _, m := range r.s.modules {
			if m.CourseID == module.CourseID && m.Position > module.Position {
				module.Position = m.Position
			}
		}
		module.Position++
	}
	module.ID = r.s.next("modules")
	stored := *module
	r.s.modules[module.ID] = &stored
	return nil
}

func (r *CourseRepository) UpdateModule(_ context.Context, module *models.CourseModule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.modules[module.ID]
	if !ok || m.CourseID != module.CourseID {
		return apperrors.ErrModuleNotFound
	}
	m.Title = module.Title
	m.Description = module.Description
	if module.Position > 0 {
		m.Position = module.Position
	}
	return nil
}

func (r *CourseRepository) DeleteModule(_ context.Context, courseID, moduleID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.modules[moduleID]
	if !ok || m.CourseID != courseID {
		return apperrors.ErrModuleNotFound
	}
	delete(r.s.modules, moduleID)
	return nil
}

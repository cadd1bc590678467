package memory

import (
	"context"
	"maps"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/pkg/apperrors"
)

// StudentRepository keeps the roster in memory.
type StudentRepository struct{ s *store }

func (r *StudentRepository) Create(_ context.Context, student *models.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	student.ID = r.s.next("students")
	stored := *student
	stored.CourseProgress = maps.Clone(student.CourseProgress)
	r.s.students[student.ID] = &stored
	return nil
}

func (r *StudentRepository) ListByCourse(_ context.Context, courseID int64) ([]models.CourseStudent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	students := make([]models.CourseStudent, 0)
	for _, id := range sortedKeys(r.s.students) {
		st := r.s.students[id]
		if _, ok := st.CourseProgress[courseID]; ok {
			students = append(students, st.InCourse(courseID))
		}
	}
	return students, nil
}

func (r *StudentRepository) GetProgress(_ context.Context, courseID, studentID int64) (*models.CourseStudent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.students[studentID]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	if _, ok := st.CourseProgress[courseID]; !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	cs := st.InCourse(courseID)
	return &cs, nil
}

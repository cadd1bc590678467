package memory

import (
	"context"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/pkg/apperrors"
)

// MaterialRepository keeps materials and per-user stars in memory.
type MaterialRepository struct{ s *store }

// view copies a material with its course names and the user's star. A
// material whose course is gone is not visible. Callers hold mu.
func (r *MaterialRepository) view(m *models.Material, userID int64) (*models.Material, bool) {
	c, ok := r.s.courses[m.CourseID]
	if !ok {
		return nil, false
	}
	out := *m
	out.Course = c.Title
	out.CourseCode = c.Code
	_, out.Starred = r.s.stars[userKey{m.ID, userID}]
	return &out, true
}

func (r *MaterialRepository) list(userID int64, keep func(*models.Material) bool) []*models.Material {
	materials := make([]*models.Material, 0)
	for _, id := range sortedKeys(r.s.materials) {
		m := r.s.materials[id]
		if !keep(m) {
			continue
		}
		if out, ok := r.view(m, userID); ok {
			materials = append(materials, out)
		}
	}
	return materials
}

func (r *MaterialRepository) List(_ context.Context, userID, courseID int64) ([]*models.Material, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.list(userID, func(m *models.Material) bool {
		return courseID <= 0 || m.CourseID == courseID
	}), nil
}

func (r *MaterialRepository) ListStarred(_ context.Context, userID int64) ([]*models.Material, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.list(userID, func(m *models.Material) bool {
		_, ok := r.s.stars[userKey{m.ID, userID}]
		return ok
	}), nil
}

func (r *MaterialRepository) GetByID(_ context.Context, id, userID int64) (*models.Material, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.materials[id]
	if !ok {
		return nil, apperrors.ErrMaterialNotFound
	}
	out, ok := r.view(m, userID)
	if !ok {
		return nil, apperrors.ErrMaterialNotFound
	}
	return out, nil
}

func (r *MaterialRepository) Create(_ context.Context, material *models.Material) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.courses[material.CourseID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	if material.DateUploaded.IsZero() {
		material.DateUploaded = r.s.now()
	}
	material.ID = r.s.next("materials")
	stored := *material
	stored.Starred = false
	r.s.materials[material.ID] = &stored
	return nil
}

func (r *MaterialRepository) Update(_ context.Context, material *models.Material) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.materials[material.ID]
	if !ok {
		return apperrors.ErrMaterialNotFound
	}
	if _, ok := r.s.courses[material.CourseID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	m.Title = material.Title
	m.Description = material.Description
	m.Type = material.Type
	m.CourseID = material.CourseID
	m.ModuleID = material.ModuleID
	m.Duration = material.Duration
	return nil
}

func (r *MaterialRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.materials[id]; !ok {
		return apperrors.ErrMaterialNotFound
	}
	delete(r.s.materials, id)
	for k := range r.s.stars {
		if k.id == id {
			delete(r.s.stars, k)
		}
	}
	for k := range r.s.materialProgress {
		if k.id == id {
			delete(r.s.materialProgress, k)
		}
	}
	return nil
}

func (r *MaterialRepository) IncrementDownloads(_ context.Context, id int64) error {
	return r.modify(id, func(m *models.Material) { m.Downloads++ })
}

func (r *MaterialRepository) IncrementViews(_ context.Context, id int64) error {
	return r.modify(id, func(m *models.Material) { m.Views++ })
}

func (r *MaterialRepository) modify(id int64, fn func(*models.Material)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.materials[id]
	if !ok {
		return apperrors.ErrMaterialNotFound
	}
	fn(m)
	return nil
}

func (r *MaterialRepository) ToggleStar(_ context.Context, id, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.materials[id]; !ok {
		return false, apperrors.ErrMaterialNotFound
	}
	key := userKey{id, userID}
	if _, ok := r.s.stars[key]; ok {
		delete(r.s.stars, key)
		return false, nil
	}
	r.s.stars[key] = struct{}{}
	return true, nil
}

func (r *MaterialRepository) SaveProgress(_ context.Context, progress *models.MaterialProgress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.materials[progress.MaterialID]; !ok {
		return apperrors.ErrMaterialNotFound
	}
	if progress.UpdatedAt.IsZero() {
		progress.UpdatedAt = r.s.now()
	}
	r.s.materialProgress[userKey{progress.MaterialID, progress.UserID}] = *progress
	return nil
}

func (r *MaterialRepository) CreateIssue(_ context.Context, issue *models.MaterialIssue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.materials[issue.MaterialID]; !ok {
		return apperrors.ErrMaterialNotFound
	}
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = r.s.now()
	}
	issue.ID = r.s.next("material_issues")
	r.s.issues = append(r.s.issues, *issue)
	return nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/pkg/apperrors"
	"github.com/yigit/svitlms/internal/pkg/dberrors"
	"github.com/yigit/svitlms/internal/pkg/logger"
)

var courseColumns = []string{
	"c.id", "c.code", "c.title", "c.description", "c.instructor", "c.instructor_id", "c.department",
	"c.status", "c.visibility", "c.credits", "c.enrollment", "c.start_date", "c.end_date",
	"COALESCE(e.progress, 0)", "c.unread_items", "c.next_class", "c.cover_image",
}

// PostgresCourseRepository handles course, module and enrollment queries.
type PostgresCourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new PostgresCourseRepository
func NewCourseRepository(db *pgxpool.Pool) *PostgresCourseRepository {
	return &PostgresCourseRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *PostgresCourseRepository) selectCourses(userID int64) squirrel.SelectBuilder {
	return r.sb.Select(courseColumns...).
		From("courses c").
		LeftJoin("enrollments e ON e.course_id = c.id AND e.user_id = ?", userID)
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var c models.Course
	err := row.Scan(
		&c.ID, &c.Code, &c.Title, &c.Description, &c.Instructor, &c.InstructorID, &c.Department,
		&c.Status, &c.Visibility, &c.Credits, &c.Enrollment, &c.StartDate, &c.EndDate,
		&c.Progress, &c.UnreadItems, &c.NextClass, &c.CoverImage,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns the courses in scope for userID, ordered by ID.
func (r *PostgresCourseRepository) List(ctx context.Context, userID int64, scope CourseScope) ([]*models.Course, error) {
	q := r.selectCourses(userID).OrderBy("c.id")
	switch scope {
	case ScopeEnrolled:
		q = q.Where("e.user_id IS NOT NULL")
	case ScopeTeaching:
		q = q.Where(squirrel.Eq{"c.instructor_id": userID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list courses SQL")
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing list courses query")
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// GetByID retrieves a course with its modules.
func (r *PostgresCourseRepository) GetByID(ctx context.Context, id, userID int64) (*models.Course, error) {
	sql, args, err := r.selectCourses(userID).Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	c, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error scanning course row")
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	if c.Modules, err = r.ListModules(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a course and fills in its ID.
func (r *PostgresCourseRepository) Create(ctx context.Context, course *models.Course) error {
	sql, args, err := r.sb.Insert("courses").
		Columns("code", "title", "description", "instructor", "instructor_id", "department", "status",
			"visibility", "credits", "enrollment", "start_date", "end_date", "unread_items", "next_class",
			"cover_image").
		Values(course.Code, course.Title, course.Description, course.Instructor, course.InstructorID,
			course.Department, course.Status, course.Visibility, course.Credits, course.Enrollment,
			course.StartDate, course.EndDate, course.UnreadItems, course.NextClass, course.CoverImage).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create course query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&course.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "courses_code_key") {
			return apperrors.ErrCourseAlreadyExists
		}
		logger.Error().Err(err).Str("code", course.Code).Msg("Error executing create course query")
		return fmt.Errorf("error creating course: %w", err)
	}
	return nil
}

// Update writes the editable course fields.
func (r *PostgresCourseRepository) Update(ctx context.Context, course *models.Course) error {
	sql, args, err := r.sb.Update("courses").
		Set("code", course.Code).
		Set("title", course.Title).
		Set("description", course.Description).
		Set("department", course.Department).
		Set("status", course.Status).
		Set("visibility", course.Visibility).
		Set("credits", course.Credits).
		Set("start_date", course.StartDate).
		Set("end_date", course.EndDate).
		Set("next_class", course.NextClass).
		Set("cover_image", course.CoverImage).
		Where(squirrel.Eq{"id": course.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update course query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "courses_code_key") {
			return apperrors.ErrCourseAlreadyExists
		}
		logger.Error().Err(err).Int64("courseID", course.ID).Msg("Error executing update course query")
		return fmt.Errorf("error updating course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// Delete removes a course; modules and enrollments cascade.
func (r *PostgresCourseRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("courses").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete course query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", id).Msg("Error executing delete course query")
		return fmt.Errorf("error deleting course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// Enroll adds the user to the course and bumps its enrollment count.
func (r *PostgresCourseRepository) Enroll(ctx context.Context, courseID, userID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := r.sb.Update("courses").
		Set("enrollment", squirrel.Expr("enrollment + 1")).
		Where(squirrel.Eq{"id": courseID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build enrollment count query: %w", err)
	}
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating enrollment count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}

	sql, args, err = r.sb.Insert("enrollments").
		Columns("course_id", "user_id", "progress", "enrolled_at").
		Values(courseID, userID, 0, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build enroll query: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "enrollments_pkey") {
			return apperrors.ErrAlreadyEnrolled
		}
		logger.Error().Err(err).Int64("courseID", courseID).Int64("userID", userID).Msg("Error executing enroll query")
		return fmt.Errorf("error enrolling: %w", err)
	}

	return tx.Commit(ctx)
}

// IsEnrolled reports whether the user is enrolled in the course.
func (r *PostgresCourseRepository) IsEnrolled(ctx context.Context, courseID, userID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("enrollments").
		Where(squirrel.Eq{"course_id": courseID, "user_id": userID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build enrollment check query: %w", err)
	}
	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}
	return exists, nil
}

// SetProgress records the user's completion percentage for a course they are
// enrolled in.
func (r *PostgresCourseRepository) SetProgress(ctx context.Context, courseID, userID int64, progress int) error {
	sql, args, err := r.sb.Update("enrollments").
		Set("progress", progress).
		Where(squirrel.Eq{"course_id": courseID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set progress query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error setting progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// ListModules returns a course's modules in position order.
func (r *PostgresCourseRepository) ListModules(ctx context.Context, courseID int64) ([]models.CourseModule, error) {
	sql, args, err := r.sb.Select("id", "course_id", "title", "description", "position").
		From("course_modules").
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("position", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list modules query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error executing list modules query")
		return nil, fmt.Errorf("error listing modules: %w", err)
	}
	defer rows.Close()

	modules := make([]models.CourseModule, 0)
	for rows.Next() {
		var m models.CourseModule
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.Description, &m.Position); err != nil {
			return nil, fmt.Errorf("error scanning module row: %w", err)
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// CreateModule appends a module; a zero Position places it last.
func (r *PostgresCourseRepository) CreateModule(ctx context.Context, module *models.CourseModule) error {
	position := interface{}(module.Position)
	if module.Position == 0 {
		position = squirrel.Expr("(SELECT COALESCE(MAX(position), 0) + 1 FROM course_modules WHERE course_id = ?)", module.CourseID)
	}

	sql, args, err := r.sb.Insert("course_modules").
		Columns("course_id", "title", "description", "position").
		Values(module.CourseID, module.Title, module.Description, position).
		Suffix("RETURNING id, position").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create module query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&module.ID, &module.Position); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", module.CourseID).Msg("Error executing create module query")
		return fmt.Errorf("error creating module: %w", err)
	}
	return nil
}

// UpdateModule writes a module's title, description and position.
func (r *PostgresCourseRepository) UpdateModule(ctx context.Context, module *models.CourseModule) error {
	q := r.sb.Update("course_modules").
		Set("title", module.Title).
		Set("description", module.Description).
		Where(squirrel.Eq{"id": module.ID, "course_id": module.CourseID})
	if module.Position > 0 {
		q = q.Set("position", module.Position)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update module query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating module: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrModuleNotFound
	}
	return nil
}

// DeleteModule removes a module from a course.
func (r *PostgresCourseRepository) DeleteModule(ctx context.Context, courseID, moduleID int64) error {
	sql, args, err := r.sb.Delete("course_modules").
		Where(squirrel.Eq{"id": moduleID, "course_id": courseID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete module query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting module: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrModuleNotFound
	}
	return nil
}

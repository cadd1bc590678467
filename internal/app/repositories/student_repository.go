package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/pkg/apperrors"
	"github.com/yigit/svitlms/internal/pkg/logger"
)

var courseStudentColumns = []string{
	"s.id", "s.name", "s.email", "s.profile_pic",
	"p.course_id", "p.progress", "p.last_access", "p.completed_assignments", "p.total_assignments",
	"p.current_grade", "p.time_spent", "p.materials_viewed",
}

// PostgresStudentRepository handles the roster tables.
type PostgresStudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new PostgresStudentRepository
func NewStudentRepository(db *pgxpool.Pool) *PostgresStudentRepository {
	return &PostgresStudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a student and their progress records in one transaction.
func (r *PostgresStudentRepository) Create(ctx context.Context, student *models.Student) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := r.sb.Insert("students").
		Columns("name", "email", "profile_pic").
		Values(student.Name, student.Email, student.ProfilePic).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}
	if err := tx.QueryRow(ctx, sql, args...).Scan(&student.ID); err != nil {
		logger.Error().Err(err).Str("email", student.Email).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}

	if len(student.CourseProgress) > 0 {
		insert := r.sb.Insert("student_progress").
			Columns("student_id", "course_id", "progress", "last_access", "completed_assignments",
				"total_assignments", "current_grade", "time_spent", "materials_viewed")
		for courseID, p := range student.CourseProgress {
			insert = insert.Values(student.ID, courseID, p.Progress, p.LastAccess, p.CompletedAssignments,
				p.TotalAssignments, p.CurrentGrade, p.TimeSpent, p.MaterialsViewed)
		}
		sql, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build student progress query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			logger.Error().Err(err).Int64("studentID", student.ID).Msg("Error inserting student progress")
			return fmt.Errorf("error creating student progress: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func scanCourseStudent(row pgx.Row) (models.CourseStudent, error) {
	var cs models.CourseStudent
	p := &cs.Progress
	err := row.Scan(
		&cs.ID, &cs.Name, &cs.Email, &cs.ProfilePic,
		&p.CourseID, &p.Progress, &p.LastAccess, &p.CompletedAssignments, &p.TotalAssignments,
		&p.CurrentGrade, &p.TimeSpent, &p.MaterialsViewed,
	)
	return cs, err
}

// ListByCourse returns the students holding a progress record for the course.
func (r *PostgresStudentRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.CourseStudent, error) {
	sql, args, err := r.sb.Select(courseStudentColumns...).
		From("students s").
		Join("student_progress p ON p.student_id = s.id").
		Where(squirrel.Eq{"p.course_id": courseID}).
		OrderBy("s.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error executing list students query")
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := make([]models.CourseStudent, 0)
	for rows.Next() {
		cs, err := scanCourseStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, cs)
	}
	return students, rows.Err()
}

// GetProgress returns one student's record for a course.
func (r *PostgresStudentRepository) GetProgress(ctx context.Context, courseID, studentID int64) (*models.CourseStudent, error) {
	sql, args, err := r.sb.Select(courseStudentColumns...).
		From("students s").
		Join("student_progress p ON p.student_id = s.id").
		Where(squirrel.Eq{"p.course_id": courseID, "s.id": studentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student progress query: %w", err)
	}

	cs, err := scanCourseStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student progress: %w", err)
	}
	return &cs, nil
}

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

// PostgresAssignmentRepository handles assignment and submission queries.
type PostgresAssignmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAssignmentRepository creates a new PostgresAssignmentRepository
func NewAssignmentRepository(db *pgxpool.Pool) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// A submission by the user overrides the stored status and date.
func (r *PostgresAssignmentRepository) selectAssignments(userID int64) squirrel.SelectBuilder {
	return r.sb.Select(
		"a.id", "a.title", "a.description", "a.course_id", "c.title", "c.code", "c.instructor", "a.due_date",
		"CASE WHEN su.id IS NULL THEN a.status ELSE 'completed' END",
		"COALESCE(su.submitted_at, a.submission_date)",
		"a.grade", "a.total_points",
	).
		From("assignments a").
		Join("courses c ON c.id = a.course_id").
		LeftJoin("submissions su ON su.assignment_id = a.id AND su.user_id = ?", userID)
}

func scanAssignment(row pgx.Row) (*models.Assignment, error) {
	var a models.Assignment
	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.CourseID, &a.Course, &a.CourseCode, &a.Instructor, &a.DueDate,
		&a.Status, &a.SubmissionDate, &a.Grade, &a.TotalPoints,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns assignments as seen by userID, optionally for one course.
func (r *PostgresAssignmentRepository) List(ctx context.Context, userID, courseID int64) ([]*models.Assignment, error) {
	q := r.selectAssignments(userID).OrderBy("a.id")
	if courseID > 0 {
		q = q.Where(squirrel.Eq{"a.course_id": courseID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list assignments SQL")
		return nil, fmt.Errorf("failed to build list assignments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing list assignments query")
		return nil, fmt.Errorf("error listing assignments: %w", err)
	}
	defer rows.Close()

	assignments := make([]*models.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning assignment row: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// GetByID retrieves one assignment as seen by userID.
func (r *PostgresAssignmentRepository) GetByID(ctx context.Context, id, userID int64) (*models.Assignment, error) {
	sql, args, err := r.selectAssignments(userID).Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get assignment query: %w", err)
	}

	a, err := scanAssignment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAssignmentNotFound
		}
		logger.Error().Err(err).Int64("assignmentID", id).Msg("Error scanning assignment row")
		return nil, fmt.Errorf("error retrieving assignment: %w", err)
	}
	return a, nil
}

// Create inserts an assignment and fills in its ID.
func (r *PostgresAssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	sql, args, err := r.sb.Insert("assignments").
		Columns("title", "description", "course_id", "due_date", "status", "submission_date", "grade", "total_points").
		Values(a.Title, a.Description, a.CourseID, a.DueDate, a.Status, a.SubmissionDate, a.Grade, a.TotalPoints).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create assignment query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Str("title", a.Title).Msg("Error executing create assignment query")
		return fmt.Errorf("error creating assignment: %w", err)
	}
	return nil
}

// Submit records a hand-in. Resubmitting replaces the earlier one.
func (r *PostgresAssignmentRepository) Submit(ctx context.Context, s *models.Submission) error {
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now()
	}
	sql, args, err := r.sb.Insert("submissions").
		Columns("assignment_id", "user_id", "content", "file_url", "submitted_at").
		Values(s.AssignmentID, s.UserID, s.Content, s.FileURL, s.SubmittedAt).
		Suffix("ON CONFLICT (assignment_id, user_id) DO UPDATE SET content = EXCLUDED.content, " +
			"file_url = EXCLUDED.file_url, submitted_at = EXCLUDED.submitted_at RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build submit query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrAssignmentNotFound
		}
		logger.Error().Err(err).Int64("assignmentID", s.AssignmentID).Msg("Error executing submit query")
		return fmt.Errorf("error submitting assignment: %w", err)
	}
	return nil
}

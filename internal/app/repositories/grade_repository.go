package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/pkg/logger"
)

// PostgresGradeRepository handles grade record queries.
type PostgresGradeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewGradeRepository creates a new PostgresGradeRepository
func NewGradeRepository(db *pgxpool.Pool) *PostgresGradeRepository {
	return &PostgresGradeRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListByUser returns a user's grade records in insertion order.
func (r *PostgresGradeRepository) ListByUser(ctx context.Context, userID int64) ([]*models.GradeRecord, error) {
	sql, args, err := r.sb.Select("id", "user_id", "course_id", "code", "title", "credits", "term",
		"instructor", "grade", "percentage", "status", "components").
		From("grades").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list grades query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing list grades query")
		return nil, fmt.Errorf("error listing grades: %w", err)
	}
	defer rows.Close()

	grades := make([]*models.GradeRecord, 0)
	for rows.Next() {
		var g models.GradeRecord
		err := rows.Scan(&g.ID, &g.UserID, &g.CourseID, &g.Code, &g.Title, &g.Credits, &g.Term,
			&g.Instructor, &g.Grade, &g.Percentage, &g.Status, &g.Components)
		if err != nil {
			return nil, fmt.Errorf("error scanning grade row: %w", err)
		}
		grades = append(grades, &g)
	}
	return grades, rows.Err()
}

// Create inserts a grade record and fills in its ID.
func (r *PostgresGradeRepository) Create(ctx context.Context, g *models.GradeRecord) error {
	components := g.Components
	if components == nil {
		components = []models.GradeComponent{}
	}

	sql, args, err := r.sb.Insert("grades").
		Columns("user_id", "course_id", "code", "title", "credits", "term", "instructor", "grade",
			"percentage", "status", "components").
		Values(g.UserID, g.CourseID, g.Code, g.Title, g.Credits, g.Term, g.Instructor, g.Grade,
			g.Percentage, g.Status, components).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create grade query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&g.ID); err != nil {
		logger.Error().Err(err).Str("code", g.Code).Msg("Error executing create grade query")
		return fmt.Errorf("error creating grade: %w", err)
	}
	return nil
}

package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/pkg/apperrors"
	"github.com/yigit/svitlms/internal/pkg/dberrors"
	"github.com/yigit/svitlms/internal/pkg/logger"
)

// PostgresAnnouncementRepository handles announcement queries.
type PostgresAnnouncementRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAnnouncementRepository creates a new PostgresAnnouncementRepository
func NewAnnouncementRepository(db *pgxpool.Pool) *PostgresAnnouncementRepository {
	return &PostgresAnnouncementRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// List returns all announcements, newest first.
func (r *PostgresAnnouncementRepository) List(ctx context.Context) ([]*models.Announcement, error) {
	sql, args, err := r.sb.Select("id", "course_id", "title", "content", "author", "important", "created_at", "attachments").
		From("announcements").
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list announcements query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list announcements query")
		return nil, fmt.Errorf("error listing announcements: %w", err)
	}
	defer rows.Close()

	announcements := make([]*models.Announcement, 0)
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.CourseID, &a.Title, &a.Content, &a.Author, &a.Important, &a.Date, &a.Attachments); err != nil {
			return nil, fmt.Errorf("error scanning announcement row: %w", err)
		}
		announcements = append(announcements, &a)
	}
	return announcements, rows.Err()
}

// Create inserts an announcement and fills in its ID.
func (r *PostgresAnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	if a.Date.IsZero() {
		a.Date = time.Now()
	}
	attachments := a.Attachments
	if attachments == nil {
		attachments = []models.Attachment{}
	}

	sql, args, err := r.sb.Insert("announcements").
		Columns("course_id", "title", "content", "author", "important", "created_at", "attachments").
		Values(a.CourseID, a.Title, a.Content, a.Author, a.Important, a.Date, attachments).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create announcement query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Str("title", a.Title).Msg("Error executing create announcement query")
		return fmt.Errorf("error creating announcement: %w", err)
	}
	return nil
}

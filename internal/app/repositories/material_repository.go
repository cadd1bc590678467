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

// PostgresMaterialRepository handles material queries.
type PostgresMaterialRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMaterialRepository creates a new PostgresMaterialRepository
func NewMaterialRepository(db *pgxpool.Pool) *PostgresMaterialRepository {
	return &PostgresMaterialRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *PostgresMaterialRepository) selectMaterials(userID int64) squirrel.SelectBuilder {
	return r.sb.Select(
		"m.id", "m.title", "m.description", "m.type", "m.course_id", "c.title", "c.code", "m.module_id",
		"m.instructor", "m.size", "m.size_bytes", "m.duration", "m.downloads", "m.views", "m.mime_type",
		"m.file_url", "m.file_path", "m.uploaded_by", "m.date_uploaded",
	).
		Column("EXISTS (SELECT 1 FROM material_stars st WHERE st.material_id = m.id AND st.user_id = ?)", userID).
		From("materials m").
		Join("courses c ON c.id = m.course_id")
}

func scanMaterial(row pgx.Row) (*models.Material, error) {
	var m models.Material
	err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.Type, &m.CourseID, &m.Course, &m.CourseCode, &m.ModuleID,
		&m.Instructor, &m.Size, &m.SizeBytes, &m.Duration, &m.Downloads, &m.Views, &m.MimeType,
		&m.FileURL, &m.FilePath, &m.UploadedBy, &m.DateUploaded, &m.Starred,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PostgresMaterialRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Material, error) {
	sql, args, err := q.OrderBy("m.id").ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list materials SQL")
		return nil, fmt.Errorf("failed to build list materials query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list materials query")
		return nil, fmt.Errorf("error listing materials: %w", err)
	}
	defer rows.Close()

	materials := make([]*models.Material, 0)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning material row: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// List returns every material, or those of one course when courseID > 0.
func (r *PostgresMaterialRepository) List(ctx context.Context, userID, courseID int64) ([]*models.Material, error) {
	q := r.selectMaterials(userID)
	if courseID > 0 {
		q = q.Where(squirrel.Eq{"m.course_id": courseID})
	}
	return r.query(ctx, q)
}

// ListStarred returns the materials userID has starred.
func (r *PostgresMaterialRepository) ListStarred(ctx context.Context, userID int64) ([]*models.Material, error) {
	q := r.selectMaterials(userID).
		Join("material_stars s ON s.material_id = m.id").
		Where(squirrel.Eq{"s.user_id": userID})
	return r.query(ctx, q)
}

// GetByID retrieves a material by ID
func (r *PostgresMaterialRepository) GetByID(ctx context.Context, id, userID int64) (*models.Material, error) {
	sql, args, err := r.selectMaterials(userID).Where(squirrel.Eq{"m.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get material query: %w", err)
	}

	m, err := scanMaterial(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMaterialNotFound
		}
		logger.Error().Err(err).Int64("materialID", id).Msg("Error scanning material row")
		return nil, fmt.Errorf("error retrieving material: %w", err)
	}
	return m, nil
}

// Create inserts a material and fills in its ID.
func (r *PostgresMaterialRepository) Create(ctx context.Context, m *models.Material) error {
	if m.DateUploaded.IsZero() {
		m.DateUploaded = time.Now()
	}
	sql, args, err := r.sb.Insert("materials").
		Columns("title", "description", "type", "course_id", "module_id", "instructor", "size", "size_bytes",
			"duration", "downloads", "views", "mime_type", "file_url", "file_path", "uploaded_by", "date_uploaded").
		Values(m.Title, m.Description, m.Type, m.CourseID, m.ModuleID, m.Instructor, m.Size, m.SizeBytes,
			m.Duration, m.Downloads, m.Views, m.MimeType, m.FileURL, m.FilePath, m.UploadedBy, m.DateUploaded).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create material query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&m.ID); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Str("title", m.Title).Msg("Error executing create material query")
		return fmt.Errorf("error creating material: %w", err)
	}
	return nil
}

// Update writes the editable material fields.
func (r *PostgresMaterialRepository) Update(ctx context.Context, m *models.Material) error {
	sql, args, err := r.sb.Update("materials").
		Set("title", m.Title).
		Set("description", m.Description).
		Set("type", m.Type).
		Set("course_id", m.CourseID).
		Set("module_id", m.ModuleID).
		Set("duration", m.Duration).
		Where(squirrel.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update material query: %w", err)
	}
	return r.execOne(ctx, sql, args, m.ID)
}

// Delete removes a material together with its stars and progress.
func (r *PostgresMaterialRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("materials").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete material query: %w", err)
	}
	return r.execOne(ctx, sql, args, id)
}

// IncrementDownloads bumps the download counter.
func (r *PostgresMaterialRepository) IncrementDownloads(ctx context.Context, id int64) error {
	return r.increment(ctx, id, "downloads")
}

// IncrementViews bumps the view counter.
func (r *PostgresMaterialRepository) IncrementViews(ctx context.Context, id int64) error {
	return r.increment(ctx, id, "views")
}

func (r *PostgresMaterialRepository) increment(ctx context.Context, id int64, column string) error {
	sql, args, err := r.sb.Update("materials").
		Set(column, squirrel.Expr(column+" + 1")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build increment query: %w", err)
	}
	return r.execOne(ctx, sql, args, id)
}

// ToggleStar flips the user's star and returns the new state.
func (r *PostgresMaterialRepository) ToggleStar(ctx context.Context, id, userID int64) (bool, error) {
	sql, args, err := r.sb.Delete("material_stars").
		Where(squirrel.Eq{"material_id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build unstar query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error removing star: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	sql, args, err = r.sb.Insert("material_stars").
		Columns("material_id", "user_id", "created_at").
		Values(id, userID, time.Now()).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build star query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return false, apperrors.ErrMaterialNotFound
		}
		logger.Error().Err(err).Int64("materialID", id).Msg("Error executing star query")
		return false, fmt.Errorf("error adding star: %w", err)
	}
	return true, nil
}

// SaveProgress upserts a user's progress through a material.
func (r *PostgresMaterialRepository) SaveProgress(ctx context.Context, p *models.MaterialProgress) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	sql, args, err := r.sb.Insert("material_progress").
		Columns("material_id", "user_id", "progress", "updated_at").
		Values(p.MaterialID, p.UserID, p.Progress, p.UpdatedAt).
		Suffix("ON CONFLICT (material_id, user_id) DO UPDATE SET progress = EXCLUDED.progress, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build save progress query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrMaterialNotFound
		}
		return fmt.Errorf("error saving material progress: %w", err)
	}
	return nil
}

// CreateIssue stores a problem report.
func (r *PostgresMaterialRepository) CreateIssue(ctx context.Context, issue *models.MaterialIssue) error {
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = time.Now()
	}
	sql, args, err := r.sb.Insert("material_issues").
		Columns("material_id", "user_id", "issue_type", "description", "created_at").
		Values(issue.MaterialID, issue.UserID, issue.IssueType, issue.Description, issue.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create issue query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&issue.ID); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrMaterialNotFound
		}
		return fmt.Errorf("error creating material issue: %w", err)
	}
	return nil
}

func (r *PostgresMaterialRepository) execOne(ctx context.Context, sql string, args []interface{}, id int64) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("materialID", id).Msg("Error executing material statement")
		return fmt.Errorf("error updating material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMaterialNotFound
	}
	return nil
}

package services

import (
	"context"
	"mime/multipart"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/svitlms/internal/app/auth"
	applisting "github.com/yigit/svitlms/internal/app/listing"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/app/repositories"
	"github.com/yigit/svitlms/internal/pkg/apperrors"
	"github.com/yigit/svitlms/internal/pkg/filestorage"
	"github.com/yigit/svitlms/internal/pkg/format"
	"github.com/yigit/svitlms/internal/pkg/listing"
	"github.com/yigit/svitlms/internal/pkg/validation"
)

const (
	// MaterialsDir is the storage subdirectory of uploaded materials.
	MaterialsDir = "materials"
	// RelatedLimit caps the related materials of one material.
	RelatedLimit = 5
)

// MaterialService defines the interface for study material operations
type MaterialService interface {
	// List returns the materials of every course, or of one when courseID > 0.
	List(ctx context.Context, userID, courseID int64, q dto.ListQuery) ([]models.Material, listing.PageInfo, error)
	Starred(ctx context.Context, userID int64) ([]models.Material, error)
	Get(ctx context.Context, id, userID int64) (*models.Material, error)
	Upload(ctx context.Context, userID int64, form *dto.UploadMaterialForm, file *multipart.FileHeader) (*models.Material, error)
	Update(ctx context.Context, userID, id int64, req *dto.UpdateMaterialRequest) (*models.Material, error)
	Delete(ctx context.Context, userID, id int64) error

	// Download returns the file URL and counts the download.
	Download(ctx context.Context, id, userID int64) (string, error)
	Related(ctx context.Context, id, userID int64) ([]models.Material, error)
	MarkViewed(ctx context.Context, id, userID int64) error
	UpdateProgress(ctx context.Context, id, userID int64, progress int) error
	ToggleStar(ctx context.Context, id, userID int64) (bool, error)
	ReportIssue(ctx context.Context, id, userID int64, req *dto.ReportIssueRequest) (*models.MaterialIssue, error)
}

type materialServiceImpl struct {
	materials repositories.MaterialRepository
	courses   repositories.CourseRepository
	authz     *auth.AuthorizationService
	storage   filestorage.FileStorage
	logger    zerolog.Logger
}

// NewMaterialService creates a new MaterialService
func NewMaterialService(
	materials repositories.MaterialRepository,
	courses repositories.CourseRepository,
	authz *auth.AuthorizationService,
	storage filestorage.FileStorage,
	lgr zerolog.Logger,
) MaterialService {
	return &materialServiceImpl{
		materials: materials,
		courses:   courses,
		authz:     authz,
		storage:   storage,
		logger:    lgr,
	}
}

func (s *materialServiceImpl) List(ctx context.Context, userID, courseID int64, q dto.ListQuery) ([]models.Material, listing.PageInfo, error) {
	if courseID > 0 {
		if _, err := s.courses.GetByID(ctx, courseID, userID); err != nil {
			return nil, listing.PageInfo{}, err
		}
	}

	materials, err := s.materials.List(ctx, userID, courseID)
	if err != nil {
		return nil, listing.PageInfo{}, err
	}

	items := applisting.Materials().Apply(values(materials), q.Query())
	page, info := listing.Paginate(items, q.Page, q.Size)
	return page, info, nil
}

func (s *materialServiceImpl) Starred(ctx context.Context, userID int64) ([]models.Material, error) {
	materials, err := s.materials.ListStarred(ctx, userID)
	if err != nil {
		return nil, err
	}
	return applisting.Materials().Apply(values(materials), listing.Query{Sort: "newest"}), nil
}

func (s *materialServiceImpl) Get(ctx context.Context, id, userID int64) (*models.Material, error) {
	return s.materials.GetByID(ctx, id, userID)
}

// Upload stores the file and creates its material. The type defaults to the
// one detected from the file extension, the title to the file's base name.
func (s *materialServiceImpl) Upload(ctx context.Context, userID int64, form *dto.UploadMaterialForm, file *multipart.FileHeader) (*models.Material, error) {
	if file == nil {
		return nil, apperrors.NewValidationError("file", "No file selected")
	}
	if err := s.authz.ValidateCourseOwnership(ctx, form.CourseID, userID); err != nil {
		return nil, err
	}

	kind := form.Type
	if kind == "" {
		kind = format.DetectKind(file.Filename)
	}
	mimeType := file.Header.Get("Content-Type")
	if err := validation.Run(
		validation.FileType(file.Filename, mimeType, format.AllowedUploads()),
		validation.FileSize(file.Size, format.MaxSizeFor(kind)),
	).Err(); err != nil {
		return nil, err
	}

	moduleID, err := s.checkModule(ctx, form.CourseID, form.ModuleID)
	if err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, form.CourseID, userID)
	if err != nil {
		return nil, err
	}

	info, err := s.storage.SaveFile(file, MaterialsDir)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(form.Title)
	if title == "" {
		title = format.BaseTitle(file.Filename)
	}

	material := &models.Material{
		Title:        title,
		Description:  form.Description,
		Type:         models.MaterialType(kind),
		CourseID:     course.ID,
		Course:       course.Title,
		CourseCode:   course.Code,
		ModuleID:     moduleID,
		Instructor:   course.Instructor,
		Size:         format.FileSize(info.FileSize),
		SizeBytes:    info.FileSize,
		MimeType:     mimeType,
		FileURL:      info.URL,
		FilePath:     info.Path,
		UploadedBy:   userID,
		DateUploaded: time.Now().UTC(),
	}
	if err := s.materials.Create(ctx, material); err != nil {
		if delErr := s.storage.DeleteFile(info.Path); delErr != nil {
			s.logger.Warn().Err(delErr).Str("path", info.Path).Msg("Failed to remove file of unsaved material")
		}
		return nil, err
	}

	s.logger.Info().Int64("materialID", material.ID).Int64("courseID", course.ID).Str("file", info.Path).Msg("Material uploaded")
	return material, nil
}

// checkModule verifies that moduleID, when set, belongs to the course.
func (s *materialServiceImpl) checkModule(ctx context.Context, courseID, moduleID int64) (*int64, error) {
	if moduleID <= 0 {
		return nil, nil
	}
	modules, err := s.courses.ListModules(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(modules, func(m models.CourseModule) bool { return m.ID == moduleID }) {
		return nil, apperrors.ErrModuleNotFound
	}
	return &moduleID, nil
}

func (s *materialServiceImpl) Update(ctx context.Context, userID, id int64, req *dto.UpdateMaterialRequest) (*models.Material, error) {
	material, err := s.materials.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateCourseOwnership(ctx, material.CourseID, userID); err != nil {
		return nil, err
	}
	if req.CourseID != material.CourseID {
		// Moving a material needs ownership of the target course too.
		if err := s.authz.ValidateCourseOwnership(ctx, req.CourseID, userID); err != nil {
			return nil, err
		}
	}

	moduleID, err := s.checkModule(ctx, req.CourseID, req.ModuleID)
	if err != nil {
		return nil, err
	}

	material.Title = strings.TrimSpace(req.Title)
	material.Description = req.Description
	material.Type = models.MaterialType(req.Type)
	material.CourseID = req.CourseID
	material.ModuleID = moduleID
	material.Duration = req.Duration

	if err := s.materials.Update(ctx, material); err != nil {
		return nil, err
	}
	// Reload for the joined course fields.
	return s.materials.GetByID(ctx, id, userID)
}

func (s *materialServiceImpl) Delete(ctx context.Context, userID, id int64) error {
	material, err := s.materials.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.authz.ValidateCourseOwnership(ctx, material.CourseID, userID); err != nil {
		return err
	}

	if err := s.materials.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.storage.DeleteFile(material.FilePath); err != nil {
		s.logger.Warn().Err(err).Int64("materialID", id).Msg("Material deleted but its file could not be removed")
	}
	s.logger.Info().Int64("materialID", id).Int64("userID", userID).Msg("Material deleted")
	return nil
}

func (s *materialServiceImpl) Download(ctx context.Context, id, userID int64) (string, error) {
	material, err := s.materials.GetByID(ctx, id, userID)
	if err != nil {
		return "", err
	}

	url := material.FileURL
	if url == "" && material.FilePath != "" {
		url = s.storage.URL(material.FilePath)
	}
	if url == "" {
		return "", apperrors.ErrFileMissing
	}

	if err := s.materials.IncrementDownloads(ctx, id); err != nil {
		return "", err
	}
	return url, nil
}

// Related returns other materials of the same course, most downloaded first.
func (s *materialServiceImpl) Related(ctx context.Context, id, userID int64) ([]models.Material, error) {
	material, err := s.materials.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	siblings, err := s.materials.List(ctx, userID, material.CourseID)
	if err != nil {
		return nil, err
	}
	others := slices.DeleteFunc(values(siblings), func(m models.Material) bool { return m.ID == id })

	related := applisting.Materials().Apply(others, listing.Query{Sort: "downloads"})
	if len(related) > RelatedLimit {
		related = related[:RelatedLimit]
	}
	return related, nil
}

func (s *materialServiceImpl) MarkViewed(ctx context.Context, id, userID int64) error {
	if _, err := s.materials.GetByID(ctx, id, userID); err != nil {
		return err
	}
	return s.materials.IncrementViews(ctx, id)
}

func (s *materialServiceImpl) UpdateProgress(ctx context.Context, id, userID int64, progress int) error {
	if _, err := s.materials.GetByID(ctx, id, userID); err != nil {
		return err
	}
	return s.materials.SaveProgress(ctx, &models.MaterialProgress{
		MaterialID: id,
		UserID:     userID,
		Progress:   min(max(progress, 0), 100),
		UpdatedAt:  time.Now(),
	})
}

func (s *materialServiceImpl) ToggleStar(ctx context.Context, id, userID int64) (bool, error) {
	starred, err := s.materials.ToggleStar(ctx, id, userID)
	if err != nil {
		return false, err
	}
	s.logger.Debug().Int64("materialID", id).Int64("userID", userID).Bool("starred", starred).Msg("Material star toggled")
	return starred, nil
}

func (s *materialServiceImpl) ReportIssue(ctx context.Context, id, userID int64, req *dto.ReportIssueRequest) (*models.MaterialIssue, error) {
	if _, err := s.materials.GetByID(ctx, id, userID); err != nil {
		return nil, err
	}

	issue := &models.MaterialIssue{
		MaterialID:  id,
		UserID:      userID,
		IssueType:   req.IssueType,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}
	if err := s.materials.CreateIssue(ctx, issue); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("materialID", id).Str("issueType", issue.IssueType).Msg("Material issue reported")
	return issue, nil
}

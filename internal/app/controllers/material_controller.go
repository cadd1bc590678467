package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/app/services"
	"github.com/yigit/svitlms/internal/middleware"
)

// MaterialController handles course material operations
type MaterialController struct {
	materialService services.MaterialService
	logger          zerolog.Logger
}

// NewMaterialController creates a new MaterialController
func NewMaterialController(materialService services.MaterialService, logger zerolog.Logger) *MaterialController {
	return &MaterialController{
		materialService: materialService,
		logger:          logger,
	}
}

// ListMaterials lists materials across courses
// @Summary List materials
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search title, description or course"
// @Param type query string false "pdf, video, document, presentation, audio or other"
// @Param course query string false "Course code"
// @Param starred query string false "true to keep starred materials only"
// @Param sort query string false "newest, oldest, name_asc, name_desc or downloads"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]models.Material} "Materials"
// @Router /materials [get]
func (c *MaterialController) ListMaterials(ctx *gin.Context) {
	var q dto.ListQuery
	if !bindQuery(ctx, &q) {
		return
	}

	materials, page, err := c.materialService.List(ctx.Request.Context(), middleware.UserID(ctx), 0, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(materials, page))
}

// Starred lists the caller's starred materials
// @Summary List starred materials
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Material} "Starred materials"
// @Router /materials/starred [get]
func (c *MaterialController) Starred(ctx *gin.Context) {
	materials, err := c.materialService.Starred(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(materials, ""))
}

// GetMaterial retrieves a material
// @Summary Get material by ID
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse{data=models.Material} "Material"
// @Failure 404 {object} dto.ErrorResponse "Material not found"
// @Router /materials/{id} [get]
func (c *MaterialController) GetMaterial(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	material, err := c.materialService.Get(ctx.Request.Context(), id, middleware.UserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(material, ""))
}

// UploadMaterial stores a new material file
// @Summary Upload material
// @Tags materials
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Material file"
// @Param courseId formData int true "Course ID"
// @Param moduleId formData int false "Module ID"
// @Param title formData string false "Title, defaults to the file name"
// @Param description formData string false "Description"
// @Param type formData string false "Material type, detected from the extension when empty"
// @Success 201 {object} dto.APIResponse{data=models.Material} "Material uploaded"
// @Failure 400 {object} dto.ErrorResponse "Missing file, unsupported type or file too large"
// @Failure 403 {object} dto.ErrorResponse "Not the course instructor"
// @Router /materials/upload [post]
func (c *MaterialController) UploadMaterial(ctx *gin.Context) {
	var form dto.UploadMaterialForm
	if err := ctx.ShouldBind(&form); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		c.logger.Warn().Err(err).Msg("Failed to read uploaded file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid file upload").WithField("file")))
		return
	}

	material, err := c.materialService.Upload(ctx.Request.Context(), middleware.UserID(ctx), &form, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(material, "Material uploaded successfully"))
}

// UpdateMaterial edits a material's metadata
// @Summary Update material
// @Tags materials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Param request body dto.UpdateMaterialRequest true "Material"
// @Success 200 {object} dto.APIResponse{data=models.Material} "Material updated"
// @Router /materials/{id} [put]
func (c *MaterialController) UpdateMaterial(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateMaterialRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	material, err := c.materialService.Update(ctx.Request.Context(), middleware.UserID(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(material, "Material updated successfully"))
}

// DeleteMaterial removes a material and its file
// @Summary Delete material
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.SuccessResponse "Material deleted"
// @Router /materials/{id} [delete]
func (c *MaterialController) DeleteMaterial(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.materialService.Delete(ctx.Request.Context(), middleware.UserID(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Material deleted successfully"})
}

// Download returns the URL of a material's file
// @Summary Download material
// @Description Counts the download and answers with the file URL
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.DownloadResponse "File URL"
// @Failure 404 {object} dto.ErrorResponse "Material or file not found"
// @Router /materials/{id}/download [get]
func (c *MaterialController) Download(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	url, err := c.materialService.Download(ctx.Request.Context(), id, middleware.UserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.DownloadResponse{URL: url})
}

// Related lists materials related to one
// @Summary Related materials
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Material} "Related materials"
// @Router /materials/{id}/related [get]
func (c *MaterialController) Related(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	materials, err := c.materialService.Related(ctx.Request.Context(), id, middleware.UserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(materials, ""))
}

// MarkViewed records that the caller opened a material
// @Summary Mark material viewed
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.SuccessResponse "Marked as viewed"
// @Router /materials/{id}/view [post]
func (c *MaterialController) MarkViewed(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.materialService.MarkViewed(ctx.Request.Context(), id, middleware.UserID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Marked as viewed"})
}

// UpdateProgress records how far the caller got through a material
// @Summary Update material progress
// @Tags materials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Param request body dto.MaterialProgressRequest true "Progress"
// @Success 200 {object} dto.SuccessResponse "Progress saved"
// @Router /materials/{id}/progress [post]
func (c *MaterialController) UpdateProgress(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.MaterialProgressRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	if err := c.materialService.UpdateProgress(ctx.Request.Context(), id, middleware.UserID(ctx), req.Progress); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Progress saved"})
}

// ToggleStar stars or unstars a material for the caller
// @Summary Toggle material star
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse{data=dto.StarResponse} "Star toggled"
// @Router /materials/{id}/star [post]
func (c *MaterialController) ToggleStar(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	starred, err := c.materialService.ToggleStar(ctx.Request.Context(), id, middleware.UserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.StarResponse{Starred: starred}, ""))
}

// ReportIssue files a problem against a material
// @Summary Report material issue
// @Tags materials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Param request body dto.ReportIssueRequest true "Issue"
// @Success 201 {object} dto.APIResponse{data=models.MaterialIssue} "Issue reported"
// @Router /materials/{id}/issue [post]
func (c *MaterialController) ReportIssue(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReportIssueRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	issue, err := c.materialService.ReportIssue(ctx.Request.Context(), id, middleware.UserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(issue, "Issue reported successfully"))
}

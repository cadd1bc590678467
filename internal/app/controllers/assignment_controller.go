package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/app/services"
	"github.com/yigit/svitlms/internal/middleware"
)

// AssignmentController handles assignment operations
type AssignmentController struct {
	assignmentService services.AssignmentService
	logger            zerolog.Logger
}

// NewAssignmentController creates a new AssignmentController
func NewAssignmentController(assignmentService services.AssignmentService, logger zerolog.Logger) *AssignmentController {
	return &AssignmentController{
		assignmentService: assignmentService,
		logger:            logger,
	}
}

// ListAssignments lists the assignments of the caller's courses
// @Summary List assignments
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search title or course"
// @Param status query string false "pending, in_progress, completed, overdue or all"
// @Param sort query string false "due_asc, due_desc or name_asc"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]models.Assignment} "Assignments"
// @Router /assignments [get]
func (c *AssignmentController) ListAssignments(ctx *gin.Context) {
	var q dto.ListQuery
	if !bindQuery(ctx, &q) {
		return
	}

	assignments, page, err := c.assignmentService.List(ctx.Request.Context(), middleware.UserID(ctx), middleware.Role(ctx), 0, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(assignments, page))
}

// GetAssignment retrieves an assignment with the caller's submission
// @Summary Get assignment by ID
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse{data=models.Assignment} "Assignment"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Router /assignments/{id} [get]
func (c *AssignmentController) GetAssignment(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	assignment, err := c.assignmentService.Get(ctx.Request.Context(), id, middleware.UserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(assignment, ""))
}

// Submit hands in an assignment
// @Summary Submit assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param request body dto.SubmitAssignmentRequest true "Submission"
// @Success 200 {object} dto.APIResponse{data=models.Assignment} "Submitted"
// @Failure 400 {object} dto.ErrorResponse "Empty submission"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Router /assignments/{id}/submit [post]
func (c *AssignmentController) Submit(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.SubmitAssignmentRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	assignment, err := c.assignmentService.Submit(ctx.Request.Context(), id, middleware.UserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(assignment, "Assignment submitted successfully"))
}

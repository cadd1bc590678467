package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/app/services"
	"github.com/yigit/svitlms/internal/middleware"
)

// FeedController serves the read-only views of the dashboard: announcements
// and grades.
type FeedController struct {
	announcementService services.AnnouncementService
	gradeService        services.GradeService
}

// NewFeedController creates a new FeedController
func NewFeedController(announcementService services.AnnouncementService, gradeService services.GradeService) *FeedController {
	return &FeedController{
		announcementService: announcementService,
		gradeService:        gradeService,
	}
}

// ListAnnouncements lists the announcements visible to the caller
// @Summary List announcements
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Announcement} "Announcements"
// @Router /announcements [get]
func (c *FeedController) ListAnnouncements(ctx *gin.Context) {
	announcements, err := c.announcementService.List(ctx.Request.Context(), middleware.UserID(ctx), middleware.Role(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(announcements, ""))
}

// ListGrades lists the caller's grades
// @Summary List grades
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Param term query string false "current, previous, a term name or all"
// @Success 200 {object} dto.APIResponse{data=[]models.GradeRecord} "Grades"
// @Router /grades [get]
func (c *FeedController) ListGrades(ctx *gin.Context) {
	grades, err := c.gradeService.List(ctx.Request.Context(), middleware.UserID(ctx), ctx.Query("term"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(grades, ""))
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/app/services"
	"github.com/yigit/svitlms/internal/middleware"
	"github.com/yigit/svitlms/internal/pkg/helpers"
)

// CourseController handles course related operations
type CourseController struct {
	courseService     services.CourseService
	materialService   services.MaterialService
	assignmentService services.AssignmentService
	logger            zerolog.Logger
}

// NewCourseController creates a new CourseController
func NewCourseController(
	courseService services.CourseService,
	materialService services.MaterialService,
	assignmentService services.AssignmentService,
	logger zerolog.Logger,
) *CourseController {
	return &CourseController{
		courseService:     courseService,
		materialService:   materialService,
		assignmentService: assignmentService,
		logger:            logger,
	}
}

// bindQuery binds the list query string and answers 400 on failure.
func bindQuery(ctx *gin.Context, q *dto.ListQuery) bool {
	if err := ctx.ShouldBindQuery(q); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

// idParam parses a path ID and answers 400 on failure.
func idParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := helpers.ParseIDParam(ctx, name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}
	return id, true
}

// ListCourses lists the caller's courses
// @Summary List courses
// @Description Students see the courses they take and faculty the ones they teach unless scope says otherwise
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search title, code or instructor"
// @Param status query string false "inProgress, completed, notStarted or all"
// @Param department query string false "Department"
// @Param sort query string false "name_asc, name_desc, code_asc, progress_asc or progress_desc"
// @Param scope query string false "enrolled, teaching or all"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]models.Course} "Courses"
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	var q dto.ListQuery
	if !bindQuery(ctx, &q) {
		return
	}

	courses, page, err := c.courseService.List(ctx.Request.Context(), middleware.UserID(ctx), middleware.Role(ctx), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(courses, page))
}

// GetCourse retrieves a course
// @Summary Get course by ID
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseDetailResponse} "Course"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	course, err := c.courseService.Get(ctx.Request.Context(), id, middleware.UserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course, ""))
}

// CreateCourse creates a course taught by the caller
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CourseRequest true "Course"
// @Success 201 {object} dto.APIResponse{data=models.Course} "Course created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Faculty only"
// @Failure 409 {object} dto.ErrorResponse "Course code taken"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CourseRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	course, err := c.courseService.Create(ctx.Request.Context(), middleware.UserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(course, "Course created successfully"))
}

// UpdateCourse updates a course
// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.CourseRequest true "Course"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course updated"
// @Failure 403 {object} dto.ErrorResponse "Not the course instructor"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.CourseRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	course, err := c.courseService.Update(ctx.Request.Context(), middleware.UserID(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course, "Course updated successfully"))
}

// DeleteCourse deletes a course
// @Summary Delete course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.SuccessResponse "Course deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the course instructor"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.courseService.Delete(ctx.Request.Context(), middleware.UserID(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Course deleted successfully"})
}

// Enroll enrolls the caller in a course
// @Summary Enroll in course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.SuccessResponse "Enrolled"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled"
// @Router /courses/{id}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.courseService.Enroll(ctx.Request.Context(), id, middleware.UserID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Enrolled successfully"})
}

// Progress summarises the caller's progress in a course
// @Summary Course progress
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.CourseProgressSummary} "Progress"
// @Failure 403 {object} dto.ErrorResponse "Not enrolled"
// @Router /courses/{id}/progress [get]
func (c *CourseController) Progress(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	summary, err := c.courseService.Progress(ctx.Request.Context(), id, middleware.UserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(summary, ""))
}

// ListModules lists a course's modules
// @Summary List course modules
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]models.CourseModule} "Modules"
// @Router /courses/{id}/modules [get]
func (c *CourseController) ListModules(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	modules, err := c.courseService.ListModules(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(modules, ""))
}

// CreateModule adds a module to a course
// @Summary Create course module
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.ModuleRequest true "Module"
// @Success 201 {object} dto.APIResponse{data=models.CourseModule} "Module created"
// @Router /courses/{id}/modules [post]
func (c *CourseController) CreateModule(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ModuleRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	module, err := c.courseService.CreateModule(ctx.Request.Context(), middleware.UserID(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(module, "Module created successfully"))
}

// UpdateModule edits a course module
// @Summary Update course module
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param moduleId path int true "Module ID"
// @Param request body dto.ModuleRequest true "Module"
// @Success 200 {object} dto.APIResponse{data=models.CourseModule} "Module updated"
// @Router /courses/{id}/modules/{moduleId} [put]
func (c *CourseController) UpdateModule(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	moduleID, ok := idParam(ctx, "moduleId")
	if !ok {
		return
	}
	var req dto.ModuleRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	module, err := c.courseService.UpdateModule(ctx.Request.Context(), middleware.UserID(ctx), id, moduleID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(module, "Module updated successfully"))
}

// DeleteModule removes a course module
// @Summary Delete course module
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param moduleId path int true "Module ID"
// @Success 200 {object} dto.SuccessResponse "Module deleted"
// @Router /courses/{id}/modules/{moduleId} [delete]
func (c *CourseController) DeleteModule(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	moduleID, ok := idParam(ctx, "moduleId")
	if !ok {
		return
	}

	if err := c.courseService.DeleteModule(ctx.Request.Context(), middleware.UserID(ctx), id, moduleID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Module deleted successfully"})
}

// CreateAnnouncement posts an announcement to a course
// @Summary Post course announcement
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.AnnouncementRequest true "Announcement"
// @Success 201 {object} dto.APIResponse{data=models.Announcement} "Announcement posted"
// @Router /courses/{id}/announcements [post]
func (c *CourseController) CreateAnnouncement(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.AnnouncementRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	announcement, err := c.courseService.CreateAnnouncement(ctx.Request.Context(), middleware.UserID(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(announcement, "Announcement posted successfully"))
}

// ListAssignments lists a course's assignments
// @Summary List course assignments
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param search query string false "Search"
// @Param status query string false "pending, in_progress, completed or overdue"
// @Param sort query string false "due_asc, due_desc or name_asc"
// @Success 200 {object} dto.APIResponse{data=[]models.Assignment} "Assignments"
// @Router /courses/{id}/assignments [get]
func (c *CourseController) ListAssignments(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var q dto.ListQuery
	if !bindQuery(ctx, &q) {
		return
	}

	assignments, page, err := c.assignmentService.List(ctx.Request.Context(), middleware.UserID(ctx), middleware.Role(ctx), id, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(assignments, page))
}

// ListMaterials lists a course's materials
// @Summary List course materials
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param search query string false "Search"
// @Param type query string false "Material type"
// @Param sort query string false "newest, oldest, name_asc, name_desc or downloads"
// @Success 200 {object} dto.APIResponse{data=[]models.Material} "Materials"
// @Router /courses/{id}/materials [get]
func (c *CourseController) ListMaterials(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var q dto.ListQuery
	if !bindQuery(ctx, &q) {
		return
	}

	materials, page, err := c.materialService.List(ctx.Request.Context(), middleware.UserID(ctx), id, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(materials, page))
}

// ListStudents lists the students of a course with their progress
// @Summary List course students
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param search query string false "Search name, ID or email"
// @Param status query string false "completed, in_progress, not_started, at_risk or all"
// @Param sort query string false "name_asc, name_desc, progress_asc, progress_desc or last_access"
// @Success 200 {object} dto.APIResponse{data=[]models.CourseStudent} "Students"
// @Failure 403 {object} dto.ErrorResponse "Not the course instructor"
// @Router /courses/{id}/students [get]
func (c *CourseController) ListStudents(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var q dto.ListQuery
	if !bindQuery(ctx, &q) {
		return
	}

	students, page, err := c.courseService.ListStudents(ctx.Request.Context(), middleware.UserID(ctx), id, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(students, page))
}

// StudentProgress retrieves one student's progress in a course
// @Summary Student progress
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.CourseStudent} "Progress"
// @Failure 404 {object} dto.ErrorResponse "Student not enrolled"
// @Router /courses/{id}/students/{studentId}/progress [get]
func (c *CourseController) StudentProgress(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	studentID, ok := idParam(ctx, "studentId")
	if !ok {
		return
	}

	student, err := c.courseService.StudentProgress(ctx.Request.Context(), middleware.UserID(ctx), id, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, ""))
}

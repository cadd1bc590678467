package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/svitlms/internal/app/controllers"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter.
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Course     *controllers.CourseController
	Material   *controllers.MaterialController
	Assignment *controllers.AssignmentController
	Feed       *controllers.FeedController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	v1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh-token", c.Auth.RefreshToken)
		auth.POST("/forgot-password", c.Auth.ForgotPassword)
		auth.POST("/reset-password", c.Auth.ResetPassword)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	facultyOnly := authMiddleware.RoleRequired(models.RoleFaculty)

	authenticated.POST("/auth/logout", c.Auth.Logout)

	user := authenticated.Group("/user")
	{
		user.GET("/profile", c.User.GetProfile)
		user.PUT("/profile", c.User.UpdateProfile)
		user.POST("/change-password", c.User.ChangePassword)
		user.PUT("/notification-settings", c.User.UpdateNotificationSettings)
	}

	courses := authenticated.Group("/courses")
	{
		courses.GET("", c.Course.ListCourses)
		courses.GET("/:id", c.Course.GetCourse)
		courses.POST("/:id/enroll", c.Course.Enroll)
		courses.GET("/:id/progress", c.Course.Progress)
		courses.GET("/:id/modules", c.Course.ListModules)
		courses.GET("/:id/assignments", c.Course.ListAssignments)
		courses.GET("/:id/materials", c.Course.ListMaterials)

		managed := courses.Group("")
		managed.Use(facultyOnly)
		{
			managed.POST("", c.Course.CreateCourse)
			managed.PUT("/:id", c.Course.UpdateCourse)
			managed.DELETE("/:id", c.Course.DeleteCourse)
			managed.POST("/:id/modules", c.Course.CreateModule)
			managed.PUT("/:id/modules/:moduleId", c.Course.UpdateModule)
			managed.DELETE("/:id/modules/:moduleId", c.Course.DeleteModule)
			managed.POST("/:id/announcements", c.Course.CreateAnnouncement)
			managed.GET("/:id/students", c.Course.ListStudents)
			managed.GET("/:id/students/:studentId/progress", c.Course.StudentProgress)
		}
	}

	materials := authenticated.Group("/materials")
	{
		materials.GET("", c.Material.ListMaterials)
		materials.GET("/starred", c.Material.Starred)
		materials.GET("/:id", c.Material.GetMaterial)
		materials.GET("/:id/download", c.Material.Download)
		materials.GET("/:id/related", c.Material.Related)
		materials.POST("/:id/view", c.Material.MarkViewed)
		materials.POST("/:id/progress", c.Material.UpdateProgress)
		materials.POST("/:id/star", c.Material.ToggleStar)
		materials.POST("/:id/issue", c.Material.ReportIssue)

		managed := materials.Group("")
		managed.Use(facultyOnly)
		{
			managed.POST("/upload", c.Material.UploadMaterial)
			managed.PUT("/:id", c.Material.UpdateMaterial)
			managed.DELETE("/:id", c.Material.DeleteMaterial)
		}
	}

	assignments := authenticated.Group("/assignments")
	{
		assignments.GET("", c.Assignment.ListAssignments)
		assignments.GET("/:id", c.Assignment.GetAssignment)
		assignments.POST("/:id/submit", c.Assignment.Submit)
	}

	authenticated.GET("/announcements", c.Feed.ListAnnouncements)
	authenticated.GET("/grades", c.Feed.ListGrades)
}

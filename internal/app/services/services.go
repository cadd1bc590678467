// Package services holds the LMS business logic between the HTTP controllers
// and the repositories.
package services

import (
	"github.com/rs/zerolog"
	"github.com/yigit/svitlms/internal/app/auth"
	"github.com/yigit/svitlms/internal/app/repositories"
	pkgAuth "github.com/yigit/svitlms/internal/pkg/auth"
	"github.com/yigit/svitlms/internal/pkg/email"
	"github.com/yigit/svitlms/internal/pkg/filestorage"
)

// Services bundles every application service.
type Services struct {
	Auth          AuthService
	Users         UserService
	Courses       CourseService
	Materials     MaterialService
	Assignments   AssignmentService
	Announcements AnnouncementService
	Grades        GradeService
}

// NewServices wires the services over one set of repositories.
func NewServices(
	repos *repositories.Repositories,
	jwtService *pkgAuth.JWTService,
	storage filestorage.FileStorage,
	mailer email.Sender,
	lgr zerolog.Logger,
) *Services {
	authz := auth.NewAuthorizationService(repos.Users, repos.Courses)

	return &Services{
		Auth:          NewAuthService(repos.Users, repos.Tokens, jwtService, mailer, lgr.With().Str("service", "auth").Logger()),
		Users:         NewUserService(repos.Users, lgr.With().Str("service", "user").Logger()),
		Courses:       NewCourseService(repos, authz, lgr.With().Str("service", "course").Logger()),
		Materials:     NewMaterialService(repos.Materials, repos.Courses, authz, storage, lgr.With().Str("service", "material").Logger()),
		Assignments:   NewAssignmentService(repos.Assignments, repos.Courses, lgr.With().Str("service", "assignment").Logger()),
		Announcements: NewAnnouncementService(repos.Announcements, repos.Courses, lgr.With().Str("service", "announcement").Logger()),
		Grades:        NewGradeService(repos.Grades),
	}
}

// values copies the records behind ptrs for the listing pipelines.
func values[T any](ptrs []*T) []T {
	out := make([]T, 0, len(ptrs))
	for _, p := range ptrs {
		out = append(out, *p)
	}
	return out
}

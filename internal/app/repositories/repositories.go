package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/svitlms/internal/app/models"
)

// UserRepository stores accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Update writes the profile fields and notification settings.
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID int64, hash string) error
	UpdateLastLogin(ctx context.Context, userID int64) error
}

// TokenRepository stores refresh and password reset tokens.
type TokenRepository interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	// GetTokenByValue returns the owner of an active refresh token.
	GetTokenByValue(ctx context.Context, token string) (userID int64, expiryDate time.Time, err error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
	CreateResetToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	// ConsumeResetToken marks a reset token used and returns its owner.
	ConsumeResetToken(ctx context.Context, token string) (int64, error)
}

// CourseScope selects which courses List returns for a user.
type CourseScope string

const (
	ScopeEnrolled CourseScope = "enrolled"
	ScopeTeaching CourseScope = "teaching"
	ScopeAll      CourseScope = "all"
)

// CourseRepository stores courses, their modules and enrollments. Course
// progress is reported for the user passed to List and GetByID.
type CourseRepository interface {
	List(ctx context.Context, userID int64, scope CourseScope) ([]*models.Course, error)
	GetByID(ctx context.Context, id, userID int64) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error

	Enroll(ctx context.Context, courseID, userID int64) error
	IsEnrolled(ctx context.Context, courseID, userID int64) (bool, error)
	SetProgress(ctx context.Context, courseID, userID int64, progress int) error

	ListModules(ctx context.Context, courseID int64) ([]models.CourseModule, error)
	CreateModule(ctx context.Context, module *models.CourseModule) error
	UpdateModule(ctx context.Context, module *models.CourseModule) error
	DeleteModule(ctx context.Context, courseID, moduleID int64) error
}

// StudentRepository stores the roster and per-course progress records.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	ListByCourse(ctx context.Context, courseID int64) ([]models.CourseStudent, error)
	GetProgress(ctx context.Context, courseID, studentID int64) (*models.CourseStudent, error)
}

// MaterialRepository stores study materials. Starred is reported for userID.
type MaterialRepository interface {
	// List returns every material, or those of one course when courseID > 0.
	List(ctx context.Context, userID, courseID int64) ([]*models.Material, error)
	ListStarred(ctx context.Context, userID int64) ([]*models.Material, error)
	GetByID(ctx context.Context, id, userID int64) (*models.Material, error)
	Create(ctx context.Context, material *models.Material) error
	Update(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id int64) error

	IncrementDownloads(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, id int64) error
	// ToggleStar flips the user's star and returns the new state.
	ToggleStar(ctx context.Context, id, userID int64) (bool, error)
	SaveProgress(ctx context.Context, progress *models.MaterialProgress) error
	CreateIssue(ctx context.Context, issue *models.MaterialIssue) error
}

// AssignmentRepository stores assignments and submissions. A submission by
// userID marks the assignment completed for that user.
type AssignmentRepository interface {
	List(ctx context.Context, userID, courseID int64) ([]*models.Assignment, error)
	GetByID(ctx context.Context, id, userID int64) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Submit(ctx context.Context, submission *models.Submission) error
}

// AnnouncementRepository stores announcements, newest first.
type AnnouncementRepository interface {
	List(ctx context.Context) ([]*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
}

// GradeRepository stores term results.
type GradeRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]*models.GradeRecord, error)
	Create(ctx context.Context, grade *models.GradeRecord) error
}

// Repositories holds all the repository instances
type Repositories struct {
	Users         UserRepository
	Tokens        TokenRepository
	Courses       CourseRepository
	Students      StudentRepository
	Materials     MaterialRepository
	Assignments   AssignmentRepository
	Announcements AnnouncementRepository
	Grades        GradeRepository
}

// NewRepositories initializes the PostgreSQL repositories.
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Tokens:        NewTokenRepository(db),
		Courses:       NewCourseRepository(db),
		Students:      NewStudentRepository(db),
		Materials:     NewMaterialRepository(db),
		Assignments:   NewAssignmentRepository(db),
		Announcements: NewAnnouncementRepository(db),
		Grades:        NewGradeRepository(db),
	}
}

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/repositories"
	"github.com/yigit/svitlms/internal/pkg/apperrors"
	"github.com/yigit/svitlms/internal/pkg/logger"
)

var (
	ErrNotFaculty     = errors.New("only faculty members can perform this action")
	ErrNotCourseOwner = errors.New("you don't manage this course")
	ErrNotEnrolled    = errors.New("you are not enrolled in this course")
)

// AuthorizationService decides who may manage courses and their content.
type AuthorizationService struct {
	users   repositories.UserRepository
	courses repositories.CourseRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(users repositories.UserRepository, courses repositories.CourseRepository) *AuthorizationService {
	return &AuthorizationService{users: users, courses: courses}
}

// IsFaculty checks if the user holds the faculty role
func (s *AuthorizationService) IsFaculty(ctx context.Context, userID int64) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, err
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting user by ID in IsFaculty")
		return false, err
	}
	return user.Role == models.RoleFaculty, nil
}

// ValidateFaculty returns a permission error unless the user is faculty.
func (s *AuthorizationService) ValidateFaculty(ctx context.Context, userID int64) error {
	ok, err := s.IsFaculty(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewCustomError(apperrors.ErrPermissionDenied, ErrNotFaculty.Error())
	}
	return nil
}

// CanManageCourse reports whether userID is the course's instructor.
func (s *AuthorizationService) CanManageCourse(ctx context.Context, courseID, userID int64) (bool, error) {
	course, err := s.courses.GetByID(ctx, courseID, userID)
	if err != nil {
		return false, err
	}
	return course.InstructorID == userID, nil
}

// ValidateCourseOwnership returns a permission error unless userID manages
// the course. A missing course is reported as such.
func (s *AuthorizationService) ValidateCourseOwnership(ctx context.Context, courseID, userID int64) error {
	if err := s.ValidateFaculty(ctx, userID); err != nil {
		return err
	}

	ok, err := s.CanManageCourse(ctx, courseID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return err
		}
		logger.Error().Err(err).Int64("courseID", courseID).Int64("userID", userID).Msg("Unexpected error during course ownership validation")
		return fmt.Errorf("failed to check course ownership: %w", err)
	}
	if !ok {
		return apperrors.NewCustomError(apperrors.ErrPermissionDenied, ErrNotCourseOwner.Error())
	}
	return nil
}

// ValidateCourseAccess lets the course instructor and enrolled students
// through.
func (s *AuthorizationService) ValidateCourseAccess(ctx context.Context, courseID, userID int64) error {
	ok, err := s.CanManageCourse(ctx, courseID, userID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	enrolled, err := s.courses.IsEnrolled(ctx, courseID, userID)
	if err != nil {
		return fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return apperrors.NewCustomError(apperrors.ErrPermissionDenied, ErrNotEnrolled.Error())
	}
	return nil
}

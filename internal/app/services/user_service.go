package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/app/repositories"
	"github.com/yigit/svitlms/internal/pkg/validation"
)

// UserService defines the interface for profile operations
type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error)
	UpdateNotificationSettings(ctx context.Context, userID int64, settings models.NotificationSettings) (*models.User, error)
}

type userServiceImpl struct {
	users  repositories.UserRepository
	logger zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, lgr zerolog.Logger) UserService {
	return &userServiceImpl{users: users, logger: lgr}
}

func (s *userServiceImpl) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile replaces the editable profile fields. The phone number, when
// given, must have at least ten digits.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error) {
	if req.Phone != "" {
		if err := validation.Phone(req.Phone).Err(); err != nil {
			return nil, err
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Department = req.Department
	user.Year = req.Year
	user.Phone = req.Phone
	user.Bio = req.Bio
	user.ProfilePic = req.ProfilePic

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", userID).Msg("Profile updated")
	return user, nil
}

func (s *userServiceImpl) UpdateNotificationSettings(ctx context.Context, userID int64, settings models.NotificationSettings) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.NotificationSettings = settings
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Debug().Int64("userID", userID).Interface("settings", settings).Msg("Notification settings updated")
	return user, nil
}

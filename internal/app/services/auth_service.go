package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/app/repositories"
	"github.com/yigit/svitlms/internal/pkg/apperrors"
	"github.com/yigit/svitlms/internal/pkg/auth"
	"github.com/yigit/svitlms/internal/pkg/email"
	"github.com/yigit/svitlms/internal/pkg/validation"
)

// ResetTokenTTL is how long a password reset token stays usable.
const ResetTokenTTL = time.Hour

// AuthService signs users in and out and manages their credentials.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	// Logout revokes refreshToken, or every token of the user when it is empty.
	Logout(ctx context.Context, userID int64, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error
}

type authServiceImpl struct {
	users      repositories.UserRepository
	tokens     repositories.TokenRepository
	jwtService *auth.JWTService
	mailer     email.Sender
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users repositories.UserRepository,
	tokens repositories.TokenRepository,
	jwtService *auth.JWTService,
	mailer email.Sender,
	lgr zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		users:      users,
		tokens:     tokens,
		jwtService: jwtService,
		mailer:     mailer,
		logger:     lgr,
	}
}

// Login authenticates a user
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Debug().Int64("userID", user.ID).Msg("Login with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		// Not fatal for the login itself.
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	} else {
		now := time.Now()
		user.LastLogin = &now
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User logged in")
	return s.generateAuthResponse(ctx, user)
}

// Register creates an account and signs it in. Accounts default to the
// student role.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := validation.Password(req.Password).Err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}

	user := &models.User{
		Name:                 strings.TrimSpace(req.Name),
		Email:                normalizeEmail(req.Email),
		Password:             hash,
		Role:                 role,
		Department:           req.Department,
		Year:                 req.Year,
		NotificationSettings: models.DefaultNotificationSettings(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User registered")
	return s.generateAuthResponse(ctx, user)
}

// RefreshToken rotates a refresh token: the presented one is revoked and a
// new pair is issued.
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrNoRefreshToken
	}

	userID, _, err := s.tokens.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	// Revoke the old token so it cannot be replayed.
	if err := s.tokens.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.generateAuthResponse(ctx, user)
}

func (s *authServiceImpl) Logout(ctx context.Context, userID int64, refreshToken string) error {
	if refreshToken == "" {
		return s.tokens.RevokeAllUserTokens(ctx, userID)
	}

	err := s.tokens.RevokeToken(ctx, refreshToken)
	if errors.Is(err, apperrors.ErrTokenNotFound) {
		s.logger.Debug().Int64("userID", userID).Msg("Logout with unknown refresh token")
		return nil
	}
	return err
}

// ForgotPassword issues a reset token. Unknown addresses succeed silently so
// the endpoint does not reveal which accounts exist.
func (s *authServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Debug().Str("email", email).Msg("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	token := uuid.New().String()
	if err := s.tokens.CreateResetToken(ctx, token, user.ID, time.Now().Add(ResetTokenTTL)); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(user.Email, user.Name, token); err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}
	s.logger.Info().Int64("userID", user.ID).Msg("Password reset token issued")
	return nil
}

func (s *authServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if err := validation.Password(req.Password).Err(); err != nil {
		return err
	}

	userID, err := s.tokens.ConsumeResetToken(ctx, req.Token)
	if err != nil {
		return err
	}

	if err := s.setPassword(ctx, userID, req.Password); err != nil {
		return err
	}

	// Sessions opened with the old password end here.
	if err := s.tokens.RevokeAllUserTokens(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to revoke tokens after password reset")
	}
	s.logger.Info().Int64("userID", userID).Msg("Password reset")
	return nil
}

func (s *authServiceImpl) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.NewValidationError("currentPassword", "Current password is incorrect")
	}
	if err := validation.Password(req.NewPassword).Err(); err != nil {
		return err
	}

	if err := s.setPassword(ctx, userID, req.NewPassword); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", userID).Msg("Password changed")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authServiceImpl) setPassword(ctx context.Context, userID int64, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// generateAuthResponse issues a token pair and stores its refresh token.
func (s *authServiceImpl) generateAuthResponse(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.tokens.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiry); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	return &dto.AuthResponse{
		Success:          true,
		Token:            pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		ExpiresIn:        pair.ExpiresIn,
		RefreshExpiresIn: pair.RefreshExpiresIn,
		User:             user,
	}, nil
}

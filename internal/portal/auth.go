package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/pkg/apiclient"
	"github.com/yigit/svitlms/internal/pkg/localstore"
)

// ErrNoRefreshToken is returned by RefreshToken when no session is stored.
var ErrNoRefreshToken = errors.New("no refresh token available")

// AuthService signs users in and out and keeps the session in the store.
type AuthService struct {
	api   *apiclient.Client
	store localstore.Store
	log   zerolog.Logger
}

// Login signs in and stores the returned session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	var resp dto.AuthResponse
	if err := s.api.Post(ctx, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if err := s.storeSession(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and stores the returned session.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	var resp dto.AuthResponse
	if err := s.api.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	if err := s.storeSession(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout revokes the session on the server and clears it locally. The local
// session is cleared even when the server call fails; that failure is only
// logged.
func (s *AuthService) Logout(ctx context.Context) error {
	refresh, _ := s.store.Get(localstore.KeyRefreshToken)
	if err := s.api.Post(ctx, "/auth/logout", dto.LogoutRequest{RefreshToken: refresh}, nil); err != nil {
		s.log.Warn().Err(err).Msg("Logout request failed")
	}
	return s.clearSession()
}

// CurrentUser returns the stored user, or nil when signed out.
func (s *AuthService) CurrentUser() *models.User {
	var user models.User
	found, err := localstore.GetJSON(s.store, localstore.KeyUser, &user)
	if err != nil {
		s.log.Warn().Err(err).Msg("Stored user is unreadable")
		return nil
	}
	if !found {
		return nil
	}
	return &user
}

// IsAuthenticated reports whether an access token is stored.
func (s *AuthService) IsAuthenticated() bool {
	token, _ := s.store.Get(localstore.KeyToken)
	return token != ""
}

// HasRole reports whether the stored user holds role.
func (s *AuthService) HasRole(role models.Role) bool {
	user := s.CurrentUser()
	return user != nil && user.Role == role
}

// IsFaculty reports whether the stored user is a faculty member.
func (s *AuthService) IsFaculty() bool {
	return s.HasRole(models.RoleFaculty)
}

// ForgotPassword asks the server to mail a reset token.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	return acknowledge(ctx, s.api, http.MethodPost, "/auth/forgot-password", dto.ForgotPasswordRequest{Email: email})
}

// ResetPassword sets a new password with a mailed reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (string, error) {
	return acknowledge(ctx, s.api, http.MethodPost, "/auth/reset-password", dto.ResetPasswordRequest{Token: token, Password: password})
}

// ChangePassword changes the signed-in user's password.
func (s *AuthService) ChangePassword(ctx context.Context, current, next string) (string, error) {
	return acknowledge(ctx, s.api, http.MethodPost, "/user/change-password", dto.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	})
}

// RefreshToken trades the stored refresh token for a new pair. A rejected
// refresh signs the user out before the error is returned.
func (s *AuthService) RefreshToken(ctx context.Context) (*dto.AuthResponse, error) {
	refresh, _ := s.store.Get(localstore.KeyRefreshToken)
	if refresh == "" {
		return nil, ErrNoRefreshToken
	}

	var resp dto.AuthResponse
	if err := s.api.Post(ctx, "/auth/refresh-token", dto.RefreshTokenRequest{RefreshToken: refresh}, &resp); err != nil {
		if clearErr := s.Logout(ctx); clearErr != nil {
			s.log.Warn().Err(clearErr).Msg("Failed to clear session after refresh failure")
		}
		return nil, err
	}

	if resp.Token != "" {
		if err := s.store.Set(localstore.KeyToken, resp.Token); err != nil {
			return nil, err
		}
	}
	if resp.RefreshToken != "" {
		if err := s.store.Set(localstore.KeyRefreshToken, resp.RefreshToken); err != nil {
			return nil, err
		}
	}
	return &resp, nil
}

// GetProfile fetches the signed-in user and refreshes the stored copy.
func (s *AuthService) GetProfile(ctx context.Context) (*models.User, error) {
	user, err := getData[*models.User](ctx, s.api, "/user/profile")
	if err != nil {
		return nil, err
	}
	if user != nil {
		if err := localstore.SetJSON(s.store, localstore.KeyUser, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// UpdateProfile saves the profile and merges the returned fields over the
// stored user.
func (s *AuthService) UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (*models.User, error) {
	var env Envelope[json.RawMessage]
	if err := s.api.Put(ctx, "/user/profile", req, &env); err != nil {
		return nil, err
	}
	return s.mergeUser(env.Data)
}

// UpdateNotificationSettings replaces the user's notification preferences
// and keeps a local copy.
func (s *AuthService) UpdateNotificationSettings(ctx context.Context, settings models.NotificationSettings) (*models.User, error) {
	var env Envelope[json.RawMessage]
	if err := s.api.Put(ctx, "/user/notification-settings", settings, &env); err != nil {
		return nil, err
	}
	if err := localstore.SetJSON(s.store, localstore.KeyNotificationSettings, settings); err != nil {
		return nil, err
	}
	return s.mergeUser(env.Data)
}

func (s *AuthService) storeSession(resp *dto.AuthResponse) error {
	if resp.Token != "" {
		if err := s.store.Set(localstore.KeyToken, resp.Token); err != nil {
			return err
		}
	}
	if resp.RefreshToken != "" {
		if err := s.store.Set(localstore.KeyRefreshToken, resp.RefreshToken); err != nil {
			return err
		}
	}
	if resp.User != nil {
		if err := localstore.SetJSON(s.store, localstore.KeyUser, resp.User); err != nil {
			return err
		}
	}
	return nil
}

func (s *AuthService) clearSession() error {
	return s.store.Remove(localstore.KeyToken, localstore.KeyRefreshToken, localstore.KeyUser)
}

// mergeUser overlays the fields present in raw onto the stored user.
func (s *AuthService) mergeUser(raw json.RawMessage) (*models.User, error) {
	merged := map[string]interface{}{}
	if stored, ok := s.store.Get(localstore.KeyUser); ok && stored != "" {
		if err := json.Unmarshal([]byte(stored), &merged); err != nil {
			s.log.Warn().Err(err).Msg("Stored user is unreadable, replacing it")
			merged = map[string]interface{}{}
		}
	}

	if len(raw) > 0 && string(raw) != "null" {
		var update map[string]interface{}
		if err := json.Unmarshal(raw, &update); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		for k, v := range update {
			merged[k] = v
		}
	}

	if err := localstore.SetJSON(s.store, localstore.KeyUser, merged); err != nil {
		return nil, err
	}
	return s.CurrentUser(), nil
}

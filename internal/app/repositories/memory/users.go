package memory

import (
	"context"
	"strings"
	"time"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/pkg/apperrors"
)

// UserRepository keeps accounts in memory.
type UserRepository struct{ s *store }

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
	}

	now := r.s.now()
	user.ID = r.s.next("users")
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) Update(_ context.Context, user *models.User) error {
	return r.modify(user.ID, func(u *models.User) {
		u.Name = user.Name
		u.Department = user.Department
		u.Year = user.Year
		u.Phone = user.Phone
		u.Bio = user.Bio
		u.ProfilePic = user.ProfilePic
		u.NotificationSettings = user.NotificationSettings
	})
}

func (r *UserRepository) UpdatePassword(_ context.Context, userID int64, hash string) error {
	return r.modify(userID, func(u *models.User) { u.Password = hash })
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, userID int64) error {
	return r.modify(userID, func(u *models.User) {
		now := r.s.now()
		u.LastLogin = &now
	})
}

func (r *UserRepository) modify(id int64, fn func(*models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = r.s.now()
	return nil
}

// TokenRepository keeps refresh and reset tokens in memory.
type TokenRepository struct{ s *store }

func (r *TokenRepository) CreateToken(_ context.Context, token string, userID int64, expiryDate time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.refreshTokens[token] = &refreshToken{userID: userID, expiry: expiryDate}
	return nil
}

func (r *TokenRepository) GetTokenByValue(_ context.Context, token string) (int64, time.Time, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.refreshTokens[token]
	switch {
	case !ok:
		return 0, time.Time{}, apperrors.ErrTokenNotFound
	case t.revoked:
		return 0, time.Time{}, apperrors.ErrTokenRevoked
	case t.expiry.Before(r.s.now()):
		return 0, time.Time{}, apperrors.ErrTokenExpired
	}
	return t.userID, t.expiry, nil
}

func (r *TokenRepository) RevokeToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.refreshTokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.revoked = true
	return nil
}

func (r *TokenRepository) RevokeAllUserTokens(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.refreshTokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

func (r *TokenRepository) CreateResetToken(_ context.Context, token string, userID int64, expiryDate time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.resetTokens[token] = &resetToken{userID: userID, expiry: expiryDate}
	return nil
}

func (r *TokenRepository) ConsumeResetToken(_ context.Context, token string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.resetTokens[token]
	if !ok || t.used {
		return 0, apperrors.ErrTokenNotFound
	}
	t.used = true
	if t.expiry.Before(r.s.now()) {
		return 0, apperrors.ErrTokenExpired
	}
	return t.userID, nil
}

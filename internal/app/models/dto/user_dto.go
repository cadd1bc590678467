package dto

import "github.com/yigit/svitlms/internal/app/models"

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Department string `json:"department" binding:"max=100"`
	Year       string `json:"year" binding:"max=20"`
	Phone      string `json:"phone" binding:"max=30"`
	Bio        string `json:"bio" binding:"max=500"`
	ProfilePic string `json:"profilePic" binding:"omitempty,url"`
}

// NotificationSettingsRequest replaces the user's notification preferences.
type NotificationSettingsRequest struct {
	models.NotificationSettings
}

package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID         int64      `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Email      string     `json:"email" db:"email"`
	Password   string     `json:"-" db:"password"` // bcrypt hash
	Role       Role       `json:"role" db:"role"`
	Department string     `json:"department,omitempty" db:"department"`
	Year       string     `json:"year,omitempty" db:"year"`
	Phone      string     `json:"phone,omitempty" db:"phone"`
	Bio        string     `json:"bio,omitempty" db:"bio"`
	ProfilePic string     `json:"profilePic,omitempty" db:"profile_pic"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
	LastLogin  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`

	NotificationSettings NotificationSettings `json:"notificationSettings"`
}

// IsFaculty reports whether the user holds the faculty role.
func (u *User) IsFaculty() bool {
	return u != nil && u.Role == RoleFaculty
}

// NotificationSettings holds the user's notification preferences.
type NotificationSettings struct {
	EmailNotifications  bool `json:"emailNotifications"`
	AssignmentReminders bool `json:"assignmentReminders"`
	CourseAnnouncements bool `json:"courseAnnouncements"`
	GradeUpdates        bool `json:"gradeUpdates"`
}

// DefaultNotificationSettings enables every notification.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		EmailNotifications:  true,
		AssignmentReminders: true,
		CourseAnnouncements: true,
		GradeUpdates:        true,
	}
}

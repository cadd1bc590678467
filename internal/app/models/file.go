package models

import "time"

// Material is a study material file attached to a course.
type Material struct {
	ID          int64        `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	Type        MaterialType `json:"type" db:"type"`
	CourseID    int64        `json:"courseId" db:"course_id"`
	Course      string       `json:"course" db:"course"`
	CourseCode  string       `json:"courseCode" db:"course_code"`
	ModuleID    *int64       `json:"moduleId,omitempty" db:"module_id"`
	Instructor  string       `json:"instructor,omitempty" db:"instructor"`
	Size        string       `json:"size" db:"size"`
	SizeBytes   int64        `json:"sizeBytes" db:"size_bytes"`
	Duration    string       `json:"duration,omitempty" db:"duration"`
	Downloads   int          `json:"downloads" db:"downloads"`
	Views       int          `json:"views" db:"views"`
	MimeType    string       `json:"mimeType,omitempty" db:"mime_type"`
	FileURL     string       `json:"fileUrl,omitempty" db:"file_url"`
	// FilePath is the storage-relative path of an uploaded file.
	FilePath     string    `json:"-" db:"file_path"`
	UploadedBy   int64     `json:"uploadedBy,omitempty" db:"uploaded_by"`
	DateUploaded time.Time `json:"dateUploaded" db:"date_uploaded"`

	// Starred is per user and filled in by the repository for the caller.
	Starred bool `json:"starred"`
}

// MaterialIssue is a problem report filed against a material.
type MaterialIssue struct {
	ID          int64     `json:"id" db:"id"`
	MaterialID  int64     `json:"materialId" db:"material_id"`
	UserID      int64     `json:"userId" db:"user_id"`
	IssueType   string    `json:"issueType" db:"issue_type"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// MaterialProgress tracks how far a user has got through a material.
type MaterialProgress struct {
	MaterialID int64     `json:"materialId" db:"material_id"`
	UserID     int64     `json:"userId" db:"user_id"`
	Progress   int       `json:"progress" db:"progress"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

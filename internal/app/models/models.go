package models

// Role defines the user role type
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleFaculty
}

// MaterialType classifies study material files.
type MaterialType string

const (
	MaterialPDF          MaterialType = "pdf"
	MaterialVideo        MaterialType = "video"
	MaterialDocument     MaterialType = "document"
	MaterialPresentation MaterialType = "presentation"
	MaterialAudio        MaterialType = "audio"
	MaterialOther        MaterialType = "other"
)

// MaterialTypes lists every material type in display order.
var MaterialTypes = []MaterialType{
	MaterialPDF, MaterialVideo, MaterialDocument, MaterialPresentation, MaterialAudio, MaterialOther,
}

// AssignmentStatus is the state of an assignment for the current student.
type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "pending"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentOverdue    AssignmentStatus = "overdue"
)

// CourseStatus is the lifecycle state of a course offering.
type CourseStatus string

const (
	CourseActive    CourseStatus = "active"
	CourseUpcoming  CourseStatus = "upcoming"
	CourseCompleted CourseStatus = "completed"
	CourseArchived  CourseStatus = "archived"
	CourseDraft     CourseStatus = "draft"
)

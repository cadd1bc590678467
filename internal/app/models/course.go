package models

import "time"

// Course represents a course offering as seen by the signed-in user.
type Course struct {
	ID          int64  `json:"id" db:"id"`
	Code        string `json:"code" db:"code"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description,omitempty" db:"description"`
	Instructor  string `json:"instructor" db:"instructor"`
	// InstructorID is the faculty account that manages the course.
	InstructorID int64        `json:"instructorId,omitempty" db:"instructor_id"`
	Department   string       `json:"department" db:"department"`
	Status       CourseStatus `json:"status" db:"status"`
	Visibility   string       `json:"visibility,omitempty" db:"visibility"`
	Credits      int          `json:"credits,omitempty" db:"credits"`
	Enrollment   int          `json:"enrollment" db:"enrollment"`
	StartDate    string       `json:"startDate,omitempty" db:"start_date"`
	EndDate      string       `json:"endDate,omitempty" db:"end_date"`

	// Progress is the signed-in student's completion percentage, 0 to 100.
	Progress    int    `json:"progress" db:"progress"`
	UnreadItems int    `json:"unreadItems" db:"unread_items"`
	NextClass   string `json:"nextClass,omitempty" db:"next_class"`
	CoverImage  string `json:"coverImage,omitempty" db:"cover_image"`

	Modules []CourseModule `json:"modules,omitempty"`
}

// CourseModule is an ordered unit of a course.
type CourseModule struct {
	ID          int64  `json:"id" db:"id"`
	CourseID    int64  `json:"courseId" db:"course_id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description,omitempty" db:"description"`
	Position    int    `json:"position" db:"position"`
}

// CourseProgressSummary is the signed-in user's standing in one course.
type CourseProgressSummary struct {
	CourseID             int64    `json:"courseId"`
	Progress             int      `json:"progress"`
	CompletedAssignments int      `json:"completedAssignments"`
	TotalAssignments     int      `json:"totalAssignments"`
	AverageGrade         *float64 `json:"averageGrade,omitempty"`
}

// Announcement is a campus-wide (CourseID nil) or course notice.
type Announcement struct {
	ID          int64        `json:"id" db:"id"`
	CourseID    *int64       `json:"courseId" db:"course_id"`
	Title       string       `json:"title" db:"title"`
	Content     string       `json:"content" db:"content"`
	Author      string       `json:"author" db:"author"`
	Important   bool         `json:"important" db:"important"`
	Date        time.Time    `json:"date" db:"created_at"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a file linked from an announcement.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

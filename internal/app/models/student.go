package models

import "time"

// Student is an enrolled student with progress in each of their courses.
type Student struct {
	ID             int64                    `json:"id" db:"id"`
	Name           string                   `json:"name" db:"name"`
	Email          string                   `json:"email" db:"email"`
	ProfilePic     string                   `json:"profilePic,omitempty" db:"profile_pic"`
	CourseProgress map[int64]CourseProgress `json:"courseProgress,omitempty"`
}

// CourseProgress is one student's standing in one course.
type CourseProgress struct {
	CourseID             int64      `json:"courseId" db:"course_id"`
	Progress             int        `json:"progress" db:"progress"`
	LastAccess           *time.Time `json:"lastAccess,omitempty" db:"last_access"`
	CompletedAssignments int        `json:"completedAssignments" db:"completed_assignments"`
	TotalAssignments     int        `json:"totalAssignments" db:"total_assignments"`
	CurrentGrade         *float64   `json:"currentGrade,omitempty" db:"current_grade"`
	TimeSpent            string     `json:"timeSpent,omitempty" db:"time_spent"`
	MaterialsViewed      int        `json:"materialsViewed" db:"materials_viewed"`
}

// CourseStudent is a student projected onto a single course, the row shape
// of the faculty progress table.
type CourseStudent struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	ProfilePic string         `json:"profilePic,omitempty"`
	Progress   CourseProgress `json:"progress"`
}

// InCourse projects s onto courseID. A student without a record for the
// course reports zero progress.
func (s Student) InCourse(courseID int64) CourseStudent {
	p, ok := s.CourseProgress[courseID]
	if !ok {
		p = CourseProgress{CourseID: courseID}
	}
	return CourseStudent{
		ID:         s.ID,
		Name:       s.Name,
		Email:      s.Email,
		ProfilePic: s.ProfilePic,
		Progress:   p,
	}
}

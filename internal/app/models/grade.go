package models

// GradeRecord is a student's result in one course of one term.
type GradeRecord struct {
	ID         int64            `json:"id" db:"id"`
	UserID     int64            `json:"-" db:"user_id"`
	CourseID   int64            `json:"courseId" db:"course_id"`
	Code       string           `json:"code" db:"code"`
	Title      string           `json:"title" db:"title"`
	Credits    int              `json:"credits" db:"credits"`
	Term       string           `json:"term" db:"term"`
	Instructor string           `json:"instructor" db:"instructor"`
	Grade      string           `json:"grade,omitempty" db:"grade"`
	Percentage *float64         `json:"percentage" db:"percentage"`
	Status     string           `json:"status" db:"status"`
	Components []GradeComponent `json:"gradeComponents,omitempty"`
}

// Completed reports whether the course counts towards the CGPA.
func (g GradeRecord) Completed() bool {
	return g.Status == "completed"
}

// GradeComponent is a weighted part of a course grade. Score is nil until
// the component has been graded.
type GradeComponent struct {
	Name   string   `json:"name"`
	Weight float64  `json:"weight"`
	Score  *float64 `json:"score"`
}

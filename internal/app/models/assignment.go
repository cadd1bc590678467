package models

import "time"

// Assignment is a graded task of a course.
type Assignment struct {
	ID             int64            `json:"id" db:"id"`
	Title          string           `json:"title" db:"title"`
	Description    string           `json:"description,omitempty" db:"description"`
	CourseID       int64            `json:"courseId" db:"course_id"`
	Course         string           `json:"course" db:"course"`
	CourseCode     string           `json:"courseCode" db:"course_code"`
	Instructor     string           `json:"instructor,omitempty" db:"instructor"`
	DueDate        time.Time        `json:"dueDate" db:"due_date"`
	Status         AssignmentStatus `json:"status" db:"status"`
	SubmissionDate *time.Time       `json:"submissionDate" db:"submission_date"`
	Grade          *float64         `json:"grade" db:"grade"`
	TotalPoints    int              `json:"totalPoints" db:"total_points"`
}

// Submission is a student's hand-in for an assignment.
type Submission struct {
	ID           int64     `json:"id" db:"id"`
	AssignmentID int64     `json:"assignmentId" db:"assignment_id"`
	UserID       int64     `json:"userId" db:"user_id"`
	Content      string    `json:"content,omitempty" db:"content"`
	FileURL      string    `json:"fileUrl,omitempty" db:"file_url"`
	SubmittedAt  time.Time `json:"submittedAt" db:"submitted_at"`
}

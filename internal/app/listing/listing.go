// Package listing holds the search, filter and sort pipelines for every LMS
// list view. The API server and the terminal front end run the same
// pipelines, so a query behaves identically on both sides.
package listing

import (
	"strconv"
	"strings"
	"time"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/pkg/listing"
)

// Course status filter values.
const (
	CourseInProgress = "inProgress"
	CourseCompleted  = "completed"
	CourseNotStarted = "notStarted"
)

// Student status filter values.
const (
	StudentCompleted  = "completed"
	StudentInProgress = "in_progress"
	StudentNotStarted = "not_started"
	StudentAtRisk     = "at_risk"
)

// Grade term filter values.
const (
	TermCurrent  = "current"
	TermPrevious = "previous"
)

// Filter dimension names.
const (
	FilterStatus     = "status"
	FilterDepartment = "department"
	FilterType       = "type"
	FilterCourse     = "course"
	FilterStarred    = "starred"
	FilterTerm       = "term"
)

// Courses searches title, code and instructor and sorts by name, code or
// progress.
func Courses() *listing.Pipeline[models.Course] {
	return listing.New[models.Course]().
		SearchOn(
			func(c models.Course) string { return c.Title },
			func(c models.Course) string { return c.Code },
			func(c models.Course) string { return c.Instructor },
		).
		FilterBy(FilterStatus, func(c models.Course, v string) bool {
			switch v {
			case CourseInProgress:
				return c.Progress > 0 && c.Progress < 100
			case CourseCompleted:
				return c.Progress == 100
			case CourseNotStarted:
				return c.Progress == 0
			default:
				return true
			}
		}).
		FilterBy(FilterDepartment, listing.Equals(func(c models.Course) string { return c.Department })).
		SortBy("name_asc", listing.Ascending(func(c models.Course) string { return c.Title })).
		SortBy("name_desc", listing.Descending(func(c models.Course) string { return c.Title })).
		SortBy("code_asc", listing.Ascending(func(c models.Course) string { return c.Code })).
		SortBy("progress_asc", listing.NumericAscending(func(c models.Course) int { return c.Progress })).
		SortBy("progress_desc", listing.NumericDescending(func(c models.Course) int { return c.Progress }))
}

// ManagedCourses is the faculty course table: search only.
func ManagedCourses() *listing.Pipeline[models.Course] {
	return listing.New[models.Course]().
		SearchOn(
			func(c models.Course) string { return c.Code },
			func(c models.Course) string { return c.Title },
			func(c models.Course) string { return c.Department },
		)
}

// Materials searches title, description, course code and course name.
func Materials() *listing.Pipeline[models.Material] {
	uploaded := func(m models.Material) int64 { return m.DateUploaded.UnixMilli() }

	return listing.New[models.Material]().
		SearchOn(
			func(m models.Material) string { return m.Title },
			func(m models.Material) string { return m.Description },
			func(m models.Material) string { return m.CourseCode },
			func(m models.Material) string { return m.Course },
		).
		FilterBy(FilterType, listing.Equals(func(m models.Material) string { return string(m.Type) })).
		FilterBy(FilterCourse, listing.Equals(func(m models.Material) string { return m.Course })).
		FilterBy(FilterStarred, func(m models.Material, v string) bool {
			want, err := strconv.ParseBool(v)
			if err != nil {
				return true
			}
			return m.Starred == want
		}).
		SortBy("newest", listing.NumericDescending(uploaded)).
		SortBy("oldest", listing.NumericAscending(uploaded)).
		SortBy("name_asc", listing.Ascending(func(m models.Material) string { return m.Title })).
		SortBy("name_desc", listing.Descending(func(m models.Material) string { return m.Title })).
		SortBy("downloads", listing.NumericDescending(func(m models.Material) int { return m.Downloads }))
}

// Assignments searches title, course and course code and filters by status.
func Assignments() *listing.Pipeline[models.Assignment] {
	due := func(a models.Assignment) int64 { return a.DueDate.UnixMilli() }

	return listing.New[models.Assignment]().
		SearchOn(
			func(a models.Assignment) string { return a.Title },
			func(a models.Assignment) string { return a.Course },
			func(a models.Assignment) string { return a.CourseCode },
		).
		FilterBy(FilterStatus, listing.Equals(func(a models.Assignment) string { return string(a.Status) })).
		SortBy("due_asc", listing.NumericAscending(due)).
		SortBy("due_desc", listing.NumericDescending(due)).
		SortBy("name_asc", listing.Ascending(func(a models.Assignment) string { return a.Title }))
}

// Students is the per-course faculty progress table. The id search is a
// plain substring of the decimal id; name and email are case-insensitive.
func Students() *listing.Pipeline[models.CourseStudent] {
	progress := func(s models.CourseStudent) int { return s.Progress.Progress }

	return listing.New[models.CourseStudent]().
		SearchOn(
			func(s models.CourseStudent) string { return s.Name },
			func(s models.CourseStudent) string { return strconv.FormatInt(s.ID, 10) },
			func(s models.CourseStudent) string { return s.Email },
		).
		FilterBy(FilterStatus, func(s models.CourseStudent, v string) bool {
			return StudentStatusMatches(s.Progress.Progress, v)
		}).
		SortBy("name_asc", listing.Ascending(func(s models.CourseStudent) string { return s.Name })).
		SortBy("name_desc", listing.Descending(func(s models.CourseStudent) string { return s.Name })).
		SortBy("progress_asc", listing.NumericAscending(progress)).
		SortBy("progress_desc", listing.NumericDescending(progress)).
		SortBy("last_access", listing.NumericDescending(lastAccess))
}

// StudentStatusMatches classifies a progress percentage against a student
// status filter value. Unknown values match everything.
func StudentStatusMatches(progress int, status string) bool {
	switch status {
	case StudentCompleted:
		return progress >= 100
	case StudentInProgress:
		return progress >= 1 && progress < 100
	case StudentNotStarted:
		return progress <= 0
	case StudentAtRisk:
		return progress > 0 && progress < 60
	default:
		return true
	}
}

// missing last access sorts as the Unix epoch.
func lastAccess(s models.CourseStudent) int64 {
	if s.Progress.LastAccess == nil {
		return time.Unix(0, 0).UnixMilli()
	}
	return s.Progress.LastAccess.UnixMilli()
}

// Terms names the current and previous academic terms for the grade filter.
type Terms struct {
	Current  string
	Previous string
}

// DefaultTerms are the terms of the seeded grade book.
var DefaultTerms = Terms{Current: "Spring 2025", Previous: "Fall 2024"}

// Grades filters grade records by term.
func Grades(terms Terms) *listing.Pipeline[models.GradeRecord] {
	return listing.New[models.GradeRecord]().
		SearchOn(
			func(g models.GradeRecord) string { return g.Title },
			func(g models.GradeRecord) string { return g.Code },
		).
		FilterBy(FilterTerm, func(g models.GradeRecord, v string) bool {
			switch v {
			case TermCurrent:
				return g.Term == terms.Current
			case TermPrevious:
				return g.Term == terms.Previous
			default:
				return strings.EqualFold(g.Term, v)
			}
		}).
		SortBy("name_asc", listing.Ascending(func(g models.GradeRecord) string { return g.Title })).
		SortBy("code_asc", listing.Ascending(func(g models.GradeRecord) string { return g.Code }))
}

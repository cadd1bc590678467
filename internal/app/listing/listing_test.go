package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/pkg/listing"
)

func courseTitles(cs []models.Course) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Title)
	}
	return out
}

func TestCourses_ZetaAlpha(t *testing.T) {
	courses := []models.Course{
		{ID: 1, Title: "Zeta", Code: "Z1", Progress: 10},
		{ID: 2, Title: "Alpha", Code: "A1", Progress: 90},
	}
	p := Courses()

	t.Run("name_asc", func(t *testing.T) {
		assert.Equal(t, []string{"Alpha", "Zeta"}, courseTitles(p.Apply(courses, listing.Query{Sort: "name_asc"})))
	})

	t.Run("progress_desc", func(t *testing.T) {
		assert.Equal(t, []string{"Alpha", "Zeta"}, courseTitles(p.Apply(courses, listing.Query{Sort: "progress_desc"})))
	})

	t.Run("input untouched", func(t *testing.T) {
		assert.Equal(t, "Zeta", courses[0].Title)
	})
}

func TestCourses_StatusFilter(t *testing.T) {
	courses := []models.Course{
		{Title: "None", Progress: 0},
		{Title: "Half", Progress: 50},
		{Title: "Done", Progress: 100},
	}
	p := Courses()

	tests := []struct {
		status string
		want   []string
	}{
		{CourseInProgress, []string{"Half"}},
		{CourseCompleted, []string{"Done"}},
		{CourseNotStarted, []string{"None"}},
		{listing.All, []string{"None", "Half", "Done"}},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got := p.Apply(courses, listing.Query{Filters: map[string]string{FilterStatus: tt.status}})
			assert.Equal(t, tt.want, courseTitles(got))
		})
	}
}

func TestCourses_SearchAndNameReverse(t *testing.T) {
	courses := []models.Course{
		{Title: "Data Structures", Code: "CS301", Instructor: "Dr. Ramesh Kumar"},
		{Title: "Database Systems", Code: "CS302", Instructor: "Dr. Priya Singh"},
		{Title: "Thermodynamics", Code: "ME302", Instructor: "Dr. Arvind Sharma"},
	}
	p := Courses()

	assert.Equal(t, []string{"Data Structures"}, courseTitles(p.Apply(courses, listing.Query{Search: "ramesh"})))
	assert.Equal(t, []string{"Database Systems", "Thermodynamics"}, courseTitles(p.Apply(courses, listing.Query{Search: "302"})))
	assert.Empty(t, p.Apply(courses, listing.Query{Search: "quantum"}))

	asc := courseTitles(p.Apply(courses, listing.Query{Sort: "name_asc"}))
	desc := courseTitles(p.Apply(courses, listing.Query{Sort: "name_desc"}))
	require.Len(t, desc, len(asc))
	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func TestMaterials(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	materials := []models.Material{
		{ID: 1, Title: "CNS Unit 1", Type: models.MaterialPDF, Course: "Computer Network Security", CourseCode: "CS401", DateUploaded: base, Downloads: 132},
		{ID: 2, Title: "Arrays Lecture", Type: models.MaterialVideo, Course: "Data Structures", CourseCode: "CS301", DateUploaded: base.AddDate(0, 0, 7), Downloads: 150, Starred: true},
		{ID: 3, Title: "Normalization Notes", Type: models.MaterialPDF, Course: "Database Systems", CourseCode: "CS302", DateUploaded: base.AddDate(0, 0, -7), Downloads: 98},
	}
	p := Materials()

	ids := func(ms []models.Material) []int64 {
		out := make([]int64, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.ID)
		}
		return out
	}

	assert.Equal(t, []int64{2, 1, 3}, ids(p.Apply(materials, listing.Query{Sort: "newest"})))
	assert.Equal(t, []int64{3, 1, 2}, ids(p.Apply(materials, listing.Query{Sort: "oldest"})))
	assert.Equal(t, []int64{2, 1, 3}, ids(p.Apply(materials, listing.Query{Sort: "downloads"})))
	assert.Equal(t, []int64{1, 3}, ids(p.Apply(materials, listing.Query{Filters: map[string]string{FilterType: "pdf"}})))
	assert.Equal(t, []int64{3}, ids(p.Apply(materials, listing.Query{Filters: map[string]string{FilterCourse: "Database Systems"}})))
	assert.Equal(t, []int64{2}, ids(p.Apply(materials, listing.Query{Filters: map[string]string{FilterStarred: "true"}})))
	assert.Equal(t, []int64{2}, ids(p.Apply(materials, listing.Query{Search: "cs301"})))
}

func TestAssignments(t *testing.T) {
	due := time.Date(2025, 4, 15, 23, 59, 0, 0, time.UTC)
	assignments := []models.Assignment{
		{ID: 1, Title: "Implementation", Course: "Data Structures", CourseCode: "CS301", Status: models.AssignmentCompleted, DueDate: due},
		{ID: 2, Title: "Normalization", Course: "Database Systems", CourseCode: "CS302", Status: models.AssignmentPending, DueDate: due.AddDate(0, 0, -5)},
	}
	p := Assignments()

	got := p.Apply(assignments, listing.Query{Filters: map[string]string{FilterStatus: "pending"}})
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	got = p.Apply(assignments, listing.Query{Sort: "due_asc"})
	assert.Equal(t, int64(2), got[0].ID)

	got = p.Apply(assignments, listing.Query{Search: "database"})
	require.Len(t, got, 1)
	assert.Equal(t, "Normalization", got[0].Title)
}

func TestStudents(t *testing.T) {
	recent := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	older := recent.AddDate(0, 0, -3)
	students := []models.CourseStudent{
		{ID: 11, Name: "Priya Sharma", Email: "student11@svit.edu", Progress: models.CourseProgress{Progress: 45, LastAccess: &older}},
		{ID: 12, Name: "John Smith", Email: "student12@svit.edu", Progress: models.CourseProgress{Progress: 100, LastAccess: &recent}},
		{ID: 3, Name: "Akash Patel", Email: "student3@svit.edu", Progress: models.CourseProgress{Progress: 0}},
		{ID: 4, Name: "Emily Jones", Email: "student4@svit.edu", Progress: models.CourseProgress{Progress: 75}},
	}
	p := Students()

	names := func(ss []models.CourseStudent) []string {
		out := make([]string, 0, len(ss))
		for _, s := range ss {
			out = append(out, s.Name)
		}
		return out
	}

	tests := []struct {
		status string
		want   []string
	}{
		{StudentCompleted, []string{"John Smith"}},
		{StudentInProgress, []string{"Priya Sharma", "Emily Jones"}},
		{StudentNotStarted, []string{"Akash Patel"}},
		{StudentAtRisk, []string{"Priya Sharma"}},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got := p.Apply(students, listing.Query{Filters: map[string]string{FilterStatus: tt.status}})
			assert.Equal(t, tt.want, names(got))
		})
	}

	t.Run("last access puts missing last", func(t *testing.T) {
		got := names(p.Apply(students, listing.Query{Sort: "last_access"}))
		assert.Equal(t, []string{"John Smith", "Priya Sharma", "Akash Patel", "Emily Jones"}, got)
	})

	t.Run("search by id substring", func(t *testing.T) {
		got := names(p.Apply(students, listing.Query{Search: "1"}))
		assert.Equal(t, []string{"Priya Sharma", "John Smith"}, got)
		got = names(p.Apply(students, listing.Query{Search: "12"}))
		assert.Equal(t, []string{"John Smith"}, got)
	})
}

func TestGrades_TermFilter(t *testing.T) {
	records := []models.GradeRecord{
		{Code: "CS301", Term: "Spring 2025"},
		{Code: "CS201", Term: "Fall 2024"},
	}
	p := Grades(DefaultTerms)

	got := p.Apply(records, listing.Query{Filters: map[string]string{FilterTerm: TermCurrent}})
	require.Len(t, got, 1)
	assert.Equal(t, "CS301", got[0].Code)

	got = p.Apply(records, listing.Query{Filters: map[string]string{FilterTerm: TermPrevious}})
	require.Len(t, got, 1)
	assert.Equal(t, "CS201", got[0].Code)

	assert.Len(t, p.Apply(records, listing.Query{Filters: map[string]string{FilterTerm: listing.All}}), 2)
}

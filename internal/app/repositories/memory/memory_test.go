package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/repositories"
	"github.com/yigit/svitlms/internal/pkg/apperrors"
)

func seedCourse(t *testing.T, repos *repositories.Repositories, code string, instructorID int64) *models.Course {
	t.Helper()
	c := &models.Course{Code: code, Title: code + " title", Instructor: "Dr. Test", InstructorID: instructorID}
	require.NoError(t, repos.Courses.Create(context.Background(), c))
	return c
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repos := New()

	u := &models.User{Name: "Demo", Email: "Demo@svit.edu", Role: models.RoleStudent}
	require.NoError(t, repos.Users.Create(ctx, u))
	assert.Equal(t, int64(1), u.ID)

	err := repos.Users.Create(ctx, &models.User{Email: "demo@svit.edu"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	got, err := repos.Users.GetByEmail(ctx, "demo@SVIT.edu")
	require.NoError(t, err)
	got.Name = "changed locally"

	again, err := repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Demo", again.Name)

	require.NoError(t, repos.Users.UpdateLastLogin(ctx, u.ID))
	again, _ = repos.Users.GetByID(ctx, u.ID)
	assert.NotNil(t, again.LastLogin)

	_, err = repos.Users.GetByID(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestTokens(t *testing.T) {
	ctx := context.Background()
	repos := New()
	tokens := repos.Tokens

	require.NoError(t, tokens.CreateToken(ctx, "live", 1, time.Now().Add(time.Hour)))
	require.NoError(t, tokens.CreateToken(ctx, "old", 1, time.Now().Add(-time.Hour)))

	userID, _, err := tokens.GetTokenByValue(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)

	_, _, err = tokens.GetTokenByValue(ctx, "old")
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	_, _, err = tokens.GetTokenByValue(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)

	require.NoError(t, tokens.RevokeAllUserTokens(ctx, 1))
	_, _, err = tokens.GetTokenByValue(ctx, "live")
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	require.NoError(t, tokens.CreateResetToken(ctx, "reset", 1, time.Now().Add(time.Hour)))
	userID, err = tokens.ConsumeResetToken(ctx, "reset")
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)
	_, err = tokens.ConsumeResetToken(ctx, "reset")
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
}

func TestCourses_ScopesAndProgress(t *testing.T) {
	ctx := context.Background()
	repos := New()
	cs301 := seedCourse(t, repos, "CS301", 2)
	cs302 := seedCourse(t, repos, "CS302", 3)

	require.NoError(t, repos.Courses.Enroll(ctx, cs301.ID, 1))
	assert.ErrorIs(t, repos.Courses.Enroll(ctx, cs301.ID, 1), apperrors.ErrAlreadyEnrolled)
	assert.ErrorIs(t, repos.Courses.Enroll(ctx, 42, 1), apperrors.ErrCourseNotFound)
	require.NoError(t, repos.Courses.SetProgress(ctx, cs301.ID, 1, 65))
	assert.ErrorIs(t, repos.Courses.SetProgress(ctx, cs302.ID, 1, 10), apperrors.ErrCourseNotFound)

	enrolled, err := repos.Courses.List(ctx, 1, repositories.ScopeEnrolled)
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, 65, enrolled[0].Progress)
	assert.Equal(t, 1, enrolled[0].Enrollment)

	teaching, _ := repos.Courses.List(ctx, 3, repositories.ScopeTeaching)
	require.Len(t, teaching, 1)
	assert.Equal(t, "CS302", teaching[0].Code)

	all, _ := repos.Courses.List(ctx, 3, repositories.ScopeAll)
	assert.Len(t, all, 2)
	assert.Zero(t, all[0].Progress, "progress is per user")

	dup := &models.Course{ID: cs302.ID, Code: "CS301"}
	assert.ErrorIs(t, repos.Courses.Update(ctx, dup), apperrors.ErrCourseAlreadyExists)

	require.NoError(t, repos.Courses.Delete(ctx, cs301.ID))
	ok, _ := repos.Courses.IsEnrolled(ctx, cs301.ID, 1)
	assert.False(t, ok)
}

func TestCourses_Modules(t *testing.T) {
	ctx := context.Background()
	repos := New()
	c := seedCourse(t, repos, "CS301", 2)

	first := &models.CourseModule{CourseID: c.ID, Title: "Intro"}
	second := &models.CourseModule{CourseID: c.ID, Title: "Arrays"}
	require.NoError(t, repos.Courses.CreateModule(ctx, first))
	require.NoError(t, repos.Courses.CreateModule(ctx, second))
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 2, second.Position)

	first.Position = 3
	require.NoError(t, repos.Courses.UpdateModule(ctx, first))

	got, err := repos.Courses.GetByID(ctx, c.ID, 1)
	require.NoError(t, err)
	require.Len(t, got.Modules, 2)
	assert.Equal(t, "Arrays", got.Modules[0].Title)

	assert.ErrorIs(t, repos.Courses.DeleteModule(ctx, c.ID+1, second.ID), apperrors.ErrModuleNotFound)
	require.NoError(t, repos.Courses.DeleteModule(ctx, c.ID, second.ID))
	assert.ErrorIs(t, repos.Courses.CreateModule(ctx, &models.CourseModule{CourseID: 99}), apperrors.ErrCourseNotFound)
}

func TestMaterials_StarsArePerUser(t *testing.T) {
	ctx := context.Background()
	repos := New()
	c := seedCourse(t, repos, "CS301", 2)

	m := &models.Material{Title: "Slides", CourseID: c.ID, Type: models.MaterialPDF}
	require.NoError(t, repos.Materials.Create(ctx, m))
	assert.False(t, m.DateUploaded.IsZero())

	starred, err := repos.Materials.ToggleStar(ctx, m.ID, 1)
	require.NoError(t, err)
	assert.True(t, starred)

	mine, _ := repos.Materials.GetByID(ctx, m.ID, 1)
	theirs, _ := repos.Materials.GetByID(ctx, m.ID, 2)
	assert.True(t, mine.Starred)
	assert.False(t, theirs.Starred)
	assert.Equal(t, "CS301", mine.CourseCode)

	list, _ := repos.Materials.ListStarred(ctx, 1)
	assert.Len(t, list, 1)

	starred, _ = repos.Materials.ToggleStar(ctx, m.ID, 1)
	assert.False(t, starred)
	list, _ = repos.Materials.ListStarred(ctx, 1)
	assert.Empty(t, list)

	require.NoError(t, repos.Materials.IncrementDownloads(ctx, m.ID))
	require.NoError(t, repos.Materials.IncrementViews(ctx, m.ID))
	got, _ := repos.Materials.GetByID(ctx, m.ID, 1)
	assert.Equal(t, 1, got.Downloads)
	assert.Equal(t, 1, got.Views)

	require.NoError(t, repos.Materials.Delete(ctx, m.ID))
	_, err = repos.Materials.ToggleStar(ctx, m.ID, 1)
	assert.ErrorIs(t, err, apperrors.ErrMaterialNotFound)
}

func TestAssignments_SubmissionOverlay(t *testing.T) {
	ctx := context.Background()
	repos := New()
	c := seedCourse(t, repos, "CS302", 3)

	a := &models.Assignment{Title: "Normalization", CourseID: c.ID, Status: models.AssignmentInProgress, TotalPoints: 100}
	require.NoError(t, repos.Assignments.Create(ctx, a))

	at := time.Date(2025, 4, 18, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Assignments.Submit(ctx, &models.Submission{AssignmentID: a.ID, UserID: 1, SubmittedAt: at}))

	mine, err := repos.Assignments.GetByID(ctx, a.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentCompleted, mine.Status)
	require.NotNil(t, mine.SubmissionDate)
	assert.Equal(t, at, *mine.SubmissionDate)
	assert.Equal(t, "CS302", mine.CourseCode)

	theirs, _ := repos.Assignments.GetByID(ctx, a.ID, 2)
	assert.Equal(t, models.AssignmentInProgress, theirs.Status)

	err = repos.Assignments.Submit(ctx, &models.Submission{AssignmentID: 99, UserID: 1})
	assert.ErrorIs(t, err, apperrors.ErrAssignmentNotFound)
}

func TestAnnouncements_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repos := New()
	now := time.Now()

	require.NoError(t, repos.Announcements.Create(ctx, &models.Announcement{Title: "old", Date: now.Add(-48 * time.Hour)}))
	require.NoError(t, repos.Announcements.Create(ctx, &models.Announcement{Title: "new", Date: now}))
	missing := int64(5)
	assert.ErrorIs(t, repos.Announcements.Create(ctx, &models.Announcement{CourseID: &missing}), apperrors.ErrCourseNotFound)

	list, err := repos.Announcements.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].Title)
}

func TestStudentsAndGrades(t *testing.T) {
	ctx := context.Background()
	repos := New()

	s := &models.Student{Name: "Jane Smith", CourseProgress: map[int64]models.CourseProgress{
		1: {CourseID: 1, Progress: 40},
	}}
	require.NoError(t, repos.Students.Create(ctx, s))
	s.CourseProgress[1] = models.CourseProgress{CourseID: 1, Progress: 99}

	roster, err := repos.Students.ListByCourse(ctx, 1)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, 40, roster[0].Progress.Progress)

	_, err = repos.Students.GetProgress(ctx, 2, s.ID)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	require.NoError(t, repos.Grades.Create(ctx, &models.GradeRecord{UserID: 1, Code: "CS301"}))
	require.NoError(t, repos.Grades.Create(ctx, &models.GradeRecord{UserID: 2, Code: "CS302"}))
	grades, _ := repos.Grades.ListByUser(ctx, 1)
	require.Len(t, grades, 1)
	assert.Equal(t, "CS301", grades[0].Code)
}

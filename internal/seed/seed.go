// Package seed loads the demo accounts and course data into a repository set.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/repositories"
	"github.com/yigit/svitlms/internal/pkg/apperrors"
	"github.com/yigit/svitlms/internal/pkg/auth"
)

// rosterSeed fixes the generated roster so every start serves the same data.
const rosterSeed = 20250115

// CreateDefaultData seeds repos unless the demo student already exists.
// Relative dates (announcements, last access) are computed from now.
func CreateDefaultData(ctx context.Context, repos *repositories.Repositories, lgr zerolog.Logger, now time.Time) error {
	_, err := repos.Users.GetByEmail(ctx, StudentEmail)
	switch {
	case err == nil:
		lgr.Info().Msg("Demo data already present, skipping seed")
		return nil
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return fmt.Errorf("check demo user: %w", err)
	}

	lgr.Info().Msg("Creating demo data...")

	student, faculty, err := createUsers(ctx, repos)
	if err != nil {
		return err
	}

	courseIDs, err := createCourses(ctx, repos, student.ID, faculty.ID)
	if err != nil {
		return err
	}

	if err := createRoster(ctx, repos, courseIDs, faculty.ID, now); err != nil {
		return err
	}

	for _, f := range materialFixtures() {
		m := f.material
		m.CourseID = courseIDs[f.courseCode]
		m.UploadedBy = faculty.ID
		if err := repos.Materials.Create(ctx, &m); err != nil {
			return fmt.Errorf("create material %q: %w", m.Title, err)
		}
		if f.starred {
			if _, err := repos.Materials.ToggleStar(ctx, m.ID, student.ID); err != nil {
				return fmt.Errorf("star material %q: %w", m.Title, err)
			}
		}
	}

	for _, f := range assignmentFixtures() {
		a := f.assignment
		a.CourseID = courseIDs[f.courseCode]
		if err := repos.Assignments.Create(ctx, &a); err != nil {
			return fmt.Errorf("create assignment %q: %w", a.Title, err)
		}
	}

	for _, f := range announcementFixtures() {
		a := f.announcement
		a.Date = now.Add(-f.age)
		if f.courseCode != "" {
			id := courseIDs[f.courseCode]
			a.CourseID = &id
		}
		if err := repos.Announcements.Create(ctx, &a); err != nil {
			return fmt.Errorf("create announcement %q: %w", a.Title, err)
		}
	}

	for _, g := range gradeFixtures() {
		g.UserID = student.ID
		g.CourseID = courseIDs[g.Code]
		if err := repos.Grades.Create(ctx, &g); err != nil {
			return fmt.Errorf("create grade %s: %w", g.Code, err)
		}
	}

	lgr.Info().Int("courses", len(courseIDs)).Msg("Demo data created")
	return nil
}

func createUsers(ctx context.Context, repos *repositories.Repositories) (student, faculty *models.User, err error) {
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("hash demo password: %w", err)
	}

	student = &models.User{
		Name:                 "Demo Student",
		Email:                StudentEmail,
		Password:             hash,
		Role:                 models.RoleStudent,
		Department:           "Computer Science",
		Year:                 "3rd Year",
		NotificationSettings: models.DefaultNotificationSettings(),
	}
	faculty = &models.User{
		Name:                 "Demo Faculty",
		Email:                FacultyEmail,
		Password:             hash,
		Role:                 models.RoleFaculty,
		Department:           "Computer Science",
		NotificationSettings: models.DefaultNotificationSettings(),
	}
	for _, u := range []*models.User{student, faculty} {
		if err := repos.Users.Create(ctx, u); err != nil {
			return nil, nil, fmt.Errorf("create user %s: %w", u.Email, err)
		}
	}
	return student, faculty, nil
}

// createCourses creates the catalogue and enrolls the demo student in every
// course. It returns course IDs by code.
func createCourses(ctx context.Context, repos *repositories.Repositories, studentID, facultyID int64) (map[string]int64, error) {
	ids := make(map[string]int64)
	for _, f := range courseFixtures() {
		c := f.course
		if f.teaching {
			c.InstructorID = facultyID
		}
		// Enroll below counts the demo student.
		if c.Enrollment > 0 {
			c.Enrollment--
		}
		if err := repos.Courses.Create(ctx, &c); err != nil {
			return nil, fmt.Errorf("create course %s: %w", c.Code, err)
		}
		ids[c.Code] = c.ID

		if err := repos.Courses.Enroll(ctx, c.ID, studentID); err != nil {
			return nil, fmt.Errorf("enroll demo student in %s: %w", c.Code, err)
		}
		if err := repos.Courses.SetProgress(ctx, c.ID, studentID, f.progress); err != nil {
			return nil, fmt.Errorf("set progress in %s: %w", c.Code, err)
		}

		for i, m := range f.modules {
			m.CourseID = c.ID
			m.Position = i + 1
			if err := repos.Courses.CreateModule(ctx, &m); err != nil {
				return nil, fmt.Errorf("create module %q: %w", m.Title, err)
			}
		}
	}
	return ids, nil
}

// createRoster generates RosterSize students, each with a progress record in
// every course the faculty member teaches.
func createRoster(ctx context.Context, repos *repositories.Repositories, courseIDs map[string]int64, facultyID int64, now time.Time) error {
	var teaching []int64
	for _, f := range courseFixtures() {
		if f.teaching {
			teaching = append(teaching, courseIDs[f.course.Code])
		}
	}

	rng := rand.New(rand.NewPCG(rosterSeed, uint64(facultyID)))
	for _, s := range GenerateStudents(rng, RosterSize, teaching, now) {
		if err := repos.Students.Create(ctx, &s); err != nil {
			return fmt.Errorf("create student %s: %w", s.Email, err)
		}
	}
	return nil
}

// GenerateStudents builds n students with random progress in each course.
func GenerateStudents(rng *rand.Rand, n int, courseIDs []int64, now time.Time) []models.Student {
	students := make([]models.Student, 0, n)
	for i := 1; i <= n; i++ {
		s := models.Student{
			Name:           firstNames[rng.IntN(len(firstNames))] + " " + lastNames[rng.IntN(len(lastNames))],
			Email:          fmt.Sprintf("student%d@svit.edu", i),
			ProfilePic:     fmt.Sprintf("https://i.pravatar.cc/150?img=%d", i%70),
			CourseProgress: make(map[int64]models.CourseProgress, len(courseIDs)),
		}
		for _, courseID := range courseIDs {
			progress := rng.IntN(101)
			lastAccess := now.AddDate(0, 0, -rng.IntN(14))
			p := models.CourseProgress{
				CourseID:             courseID,
				Progress:             progress,
				LastAccess:           &lastAccess,
				CompletedAssignments: rng.IntN(6),
				TotalAssignments:     5,
				TimeSpent:            fmt.Sprintf("%d hours", rng.IntN(20)+1),
				MaterialsViewed:      rng.IntN(15),
			}
			if progress > 0 {
				grade := float64(rng.IntN(41) + 60)
				p.CurrentGrade = &grade
			}
			s.CourseProgress[courseID] = p
		}
		students = append(students, s)
	}
	return students
}

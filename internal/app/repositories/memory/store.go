// Package memory is the in-process repository driver. All repositories share
// one mutex-guarded store and hand out copies, never their own records.
package memory

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/repositories"
)

type userKey struct {
	id, userID int64
}

type refreshToken struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

type resetToken struct {
	userID int64
	expiry time.Time
	used   bool
}

type store struct {
	mu  sync.RWMutex
	now func() time.Time
	seq map[string]int64

	users         map[int64]*models.User
	refreshTokens map[string]*refreshToken
	resetTokens   map[string]*resetToken

	courses     map[int64]*models.Course
	enrollments map[userKey]int
	modules     map[int64]*models.CourseModule

	students map[int64]*models.Student

	materials        map[int64]*models.Material
	stars            map[userKey]struct{}
	materialProgress map[userKey]models.MaterialProgress
	issues           []models.MaterialIssue

	assignments map[int64]*models.Assignment
	submissions map[userKey]*models.Submission

	announcements []*models.Announcement
	grades        []*models.GradeRecord
}

func newStore() *store {
	return &store{
		now:              time.Now,
		seq:              make(map[string]int64),
		users:            make(map[int64]*models.User),
		refreshTokens:    make(map[string]*refreshToken),
		resetTokens:      make(map[string]*resetToken),
		courses:          make(map[int64]*models.Course),
		enrollments:      make(map[userKey]int),
		modules:          make(map[int64]*models.CourseModule),
		students:         make(map[int64]*models.Student),
		materials:        make(map[int64]*models.Material),
		stars:            make(map[userKey]struct{}),
		materialProgress: make(map[userKey]models.MaterialProgress),
		assignments:      make(map[int64]*models.Assignment),
		submissions:      make(map[userKey]*models.Submission),
	}
}

// next returns the next ID of a table. Callers hold mu.
func (s *store) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func sortedKeys[V any](m map[int64]V) []int64 {
	return slices.Sorted(maps.Keys(m))
}

// New creates an empty in-memory repository set.
func New() *repositories.Repositories {
	s := newStore()
	return &repositories.Repositories{
		Users:         &UserRepository{s},
		Tokens:        &TokenRepository{s},
		Courses:       &CourseRepository{s},
		Students:      &StudentRepository{s},
		Materials:     &MaterialRepository{s},
		Assignments:   &AssignmentRepository{s},
		Announcements: &AnnouncementRepository{s},
		Grades:        &GradeRepository{s},
	}
}

package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/app/repositories"
	"github.com/yigit/svitlms/internal/app/repositories/memory"
	"github.com/yigit/svitlms/internal/pkg/apperrors"
	"github.com/yigit/svitlms/internal/pkg/auth"
	"github.com/yigit/svitlms/internal/pkg/filestorage"
	"github.com/yigit/svitlms/internal/pkg/validation"
	"github.com/yigit/svitlms/internal/seed"
)

// Seeded IDs: the demo student is user 1 and the demo faculty member user 2,
// who teaches courses 1 to 3 (CS301, CS302, CS303).
const (
	studentID int64 = 1
	facultyID int64 = 2
)

type testEnv struct {
	repos  *repositories.Repositories
	svc    *Services
	jwt    *auth.JWTService
	mailer *recordingMailer
}

// recordingMailer keeps the last reset token instead of sending mail.
type recordingMailer struct {
	to, token string
}

func (m *recordingMailer) SendPasswordReset(toEmail, _, token string) error {
	m.to, m.token = toEmail, token
	return nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	repos := memory.New()
	require.NoError(t, seed.CreateDefaultData(ctx, repos, zerolog.Nop(), time.Now()))

	storage, err := filestorage.NewLocalStorage(t.TempDir(), "/uploads", zerolog.Nop())
	require.NoError(t, err)

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "svitlms-test",
	})

	mailer := &recordingMailer{}
	return &testEnv{
		repos:  repos,
		svc:    NewServices(repos, jwtService, storage, mailer, zerolog.Nop()),
		jwt:    jwtService,
		mailer: mailer,
	}
}

func TestAuthService_LoginAndRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Auth.Login(ctx, &dto.LoginRequest{Email: seed.StudentEmail, Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = env.svc.Auth.Login(ctx, &dto.LoginRequest{Email: "nobody@svit.edu", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	resp, err := env.svc.Auth.Login(ctx, &dto.LoginRequest{Email: " Student@SVIT.edu ", Password: seed.DemoPassword})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, studentID, resp.User.ID)
	assert.NotNil(t, resp.User.LastLogin)
	assert.Equal(t, 3600, resp.ExpiresIn)

	claims, err := env.jwt.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, claims.Role)

	refreshed, err := env.svc.Auth.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)

	// The rotated token cannot be used twice.
	_, err = env.svc.Auth.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = env.svc.Auth.RefreshToken(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrNoRefreshToken)

	require.NoError(t, env.svc.Auth.Logout(ctx, studentID, refreshed.RefreshToken))
	_, err = env.svc.Auth.RefreshToken(ctx, refreshed.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	// Unknown tokens log out quietly.
	assert.NoError(t, env.svc.Auth.Logout(ctx, studentID, "unknown"))
}

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Auth.Register(ctx, &dto.RegisterRequest{Name: "Weak", Email: "weak@svit.edu", Password: "password"})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Password must contain at least one uppercase letter", verr.Message)

	resp, err := env.svc.Auth.Register(ctx, &dto.RegisterRequest{Name: "New Student", Email: "New@svit.edu", Password: "Str0ng!pass"})
	require.NoError(t, err)
	assert.Equal(t, "new@svit.edu", resp.User.Email)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.True(t, resp.User.NotificationSettings.GradeUpdates)

	_, err = env.svc.Auth.Register(ctx, &dto.RegisterRequest{Name: "Again", Email: "new@svit.edu", Password: "Str0ng!pass"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestAuthService_Passwords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.svc.Auth.ChangePassword(ctx, studentID, &dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "N3w!password"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	require.NoError(t, env.svc.Auth.ChangePassword(ctx, studentID, &dto.ChangePasswordRequest{
		CurrentPassword: seed.DemoPassword, NewPassword: "N3w!password",
	}))
	_, err = env.svc.Auth.Login(ctx, &dto.LoginRequest{Email: seed.StudentEmail, Password: "N3w!password"})
	require.NoError(t, err)

	// Unknown addresses do not reveal themselves.
	assert.NoError(t, env.svc.Auth.ForgotPassword(ctx, "ghost@svit.edu"))
	assert.Empty(t, env.mailer.token)

	require.NoError(t, env.svc.Auth.ForgotPassword(ctx, " Student@SVIT.edu "))
	assert.Equal(t, seed.StudentEmail, env.mailer.to)
	require.NotEmpty(t, env.mailer.token)
	require.NoError(t, env.svc.Auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: env.mailer.token, Password: "Mailed!pass1"}))
	err = env.svc.Auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: env.mailer.token, Password: "Mailed!pass2"})
	assert.Error(t, err, "reset tokens are single use")

	err = env.svc.Auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: "bogus", Password: "An0ther!pass"})
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)

	require.NoError(t, env.repos.Tokens.CreateResetToken(ctx, "reset-1", studentID, time.Now().Add(time.Hour)))
	require.NoError(t, env.svc.Auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: "reset-1", Password: "An0ther!pass"}))
	_, err = env.svc.Auth.Login(ctx, &dto.LoginRequest{Email: seed.StudentEmail, Password: "An0ther!pass"})
	assert.NoError(t, err)
}

func TestUserService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Users.UpdateProfile(ctx, studentID, &dto.UpdateProfileRequest{Name: "Demo", Phone: "123"})
	assert.Error(t, err)

	user, err := env.svc.Users.UpdateProfile(ctx, studentID, &dto.UpdateProfileRequest{
		Name: "  Renamed Student ", Phone: "+91 98765 43210", Bio: "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Student", user.Name)

	settings := models.NotificationSettings{EmailNotifications: true}
	_, err = env.svc.Users.UpdateNotificationSettings(ctx, studentID, settings)
	require.NoError(t, err)

	profile, err := env.svc.Users.GetProfile(ctx, studentID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Student", profile.Name)
	assert.Equal(t, settings, profile.NotificationSettings)
}

func TestCourseService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		role  models.Role
		user  int64
		query dto.ListQuery
		codes []string
	}{
		{"student sees enrollments", models.RoleStudent, studentID, dto.ListQuery{Sort: "code_asc"},
			[]string{"CS301", "CS302", "CS303", "CS304", "CS401", "EC301", "ME302"}},
		{"faculty sees teaching", models.RoleFaculty, facultyID, dto.ListQuery{}, []string{"CS301", "CS302", "CS303"}},
		{"status filter", models.RoleStudent, studentID, dto.ListQuery{Status: "inProgress", Department: "Electronics"}, []string{"EC301"}},
		{"search", models.RoleStudent, studentID, dto.ListQuery{Search: "network", Sort: "progress_desc"}, []string{"CS303", "CS401"}},
		{"faculty department search", models.RoleFaculty, facultyID, dto.ListQuery{Search: "computer science", Sort: "name_desc"},
			[]string{"CS302", "CS301", "CS303"}},
		{"page two", models.RoleStudent, studentID, dto.ListQuery{Sort: "code_asc", Page: 2, Size: 5}, []string{"EC301", "ME302"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courses, _, err := env.svc.Courses.List(ctx, tt.user, tt.role, tt.query)
			require.NoError(t, err)
			codes := make([]string, 0, len(courses))
			for _, c := range courses {
				codes = append(codes, c.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}

	_, page, err := env.svc.Courses.List(ctx, studentID, models.RoleStudent, dto.ListQuery{Size: 5})
	require.NoError(t, err)
	assert.Equal(t, 7, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
}

func courseRequest(code string) *dto.CourseRequest {
	return &dto.CourseRequest{Code: code, Title: "Compiler Design", Credits: 4}
}

func TestCourseService_Manage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Courses.Create(ctx, studentID, courseRequest("CS410"))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	course, err := env.svc.Courses.Create(ctx, facultyID, courseRequest("cs410"))
	require.NoError(t, err)
	assert.Equal(t, "CS410", course.Code)
	assert.Equal(t, "Demo Faculty", course.Instructor)
	assert.Equal(t, "Computer Science", course.Department)
	assert.Equal(t, models.CourseActive, course.Status)

	_, err = env.svc.Courses.Create(ctx, facultyID, courseRequest("CS410"))
	assert.ErrorIs(t, err, apperrors.ErrCourseAlreadyExists)

	// Course 4 (CS304) is not taught by the demo faculty member.
	_, err = env.svc.Courses.Update(ctx, facultyID, 4, courseRequest("CS304"))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	req := courseRequest("CS410")
	req.Title = "Compilers"
	updated, err := env.svc.Courses.Update(ctx, facultyID, course.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Compilers", updated.Title)

	module, err := env.svc.Courses.CreateModule(ctx, facultyID, course.ID, &dto.ModuleRequest{Title: "Lexing"})
	require.NoError(t, err)
	assert.Equal(t, 1, module.Position)

	_, err = env.svc.Courses.UpdateModule(ctx, facultyID, course.ID, module.ID, &dto.ModuleRequest{Title: "Lexical analysis"})
	require.NoError(t, err)
	modules, err := env.svc.Courses.ListModules(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "Lexical analysis", modules[0].Title)

	require.NoError(t, env.svc.Courses.DeleteModule(ctx, facultyID, course.ID, module.ID))
	assert.ErrorIs(t, env.svc.Courses.DeleteModule(ctx, facultyID, course.ID, module.ID), apperrors.ErrModuleNotFound)

	require.NoError(t, env.svc.Courses.Enroll(ctx, course.ID, studentID))
	assert.ErrorIs(t, env.svc.Courses.Enroll(ctx, course.ID, studentID), apperrors.ErrAlreadyEnrolled)

	detail, err := env.svc.Courses.Get(ctx, course.ID, studentID)
	require.NoError(t, err)
	assert.True(t, detail.Enrolled)

	require.NoError(t, env.svc.Courses.Delete(ctx, facultyID, course.ID))
	_, err = env.svc.Courses.Get(ctx, course.ID, studentID)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)

	_, err = env.svc.Courses.ListModules(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestCourseService_Progress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	summary, err := env.svc.Courses.Progress(ctx, 1, studentID)
	require.NoError(t, err)
	assert.Equal(t, 65, summary.Progress)
	assert.Equal(t, 1, summary.TotalAssignments)
	assert.Equal(t, 1, summary.CompletedAssignments)
	require.NotNil(t, summary.AverageGrade)
	assert.InDelta(t, 92, *summary.AverageGrade, 0.001)

	// A registered student without enrollments is turned away.
	resp, err := env.svc.Auth.Register(ctx, &dto.RegisterRequest{Name: "Outsider", Email: "out@svit.edu", Password: "Str0ng!pass"})
	require.NoError(t, err)
	_, err = env.svc.Courses.Progress(ctx, 1, resp.User.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestCourseService_StudentsAndAnnouncements(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	students, page, err := env.svc.Courses.ListStudents(ctx, facultyID, 1, dto.ListQuery{Sort: "progress_desc", Size: 100})
	require.NoError(t, err)
	assert.Equal(t, seed.RosterSize, page.TotalItems)
	require.Len(t, students, seed.RosterSize)
	for i := 1; i < len(students); i++ {
		assert.GreaterOrEqual(t, students[i-1].Progress.Progress, students[i].Progress.Progress)
	}

	atRisk, _, err := env.svc.Courses.ListStudents(ctx, facultyID, 1, dto.ListQuery{Status: "at_risk", Size: 100})
	require.NoError(t, err)
	for _, s := range atRisk {
		assert.Greater(t, s.Progress.Progress, 0)
		assert.Less(t, s.Progress.Progress, 60)
	}

	_, _, err = env.svc.Courses.ListStudents(ctx, studentID, 1, dto.ListQuery{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	one, err := env.svc.Courses.StudentProgress(ctx, facultyID, 1, students[0].ID)
	require.NoError(t, err)
	assert.Equal(t, students[0].Progress.Progress, one.Progress.Progress)

	_, err = env.svc.Courses.StudentProgress(ctx, facultyID, 1, 9999)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	posted, err := env.svc.Courses.CreateAnnouncement(ctx, facultyID, 2, &dto.AnnouncementRequest{Title: "Lab moved", Content: "Room 204"})
	require.NoError(t, err)
	assert.Equal(t, "Demo Faculty", posted.Author)

	list, err := env.svc.Announcements.List(ctx, studentID, models.RoleStudent)
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, "Lab moved", list[0].Title)
}

func TestAnnouncementService_HidesOtherCourses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.svc.Auth.Register(ctx, &dto.RegisterRequest{Name: "Fresh", Email: "fresh@svit.edu", Password: "Str0ng!pass"})
	require.NoError(t, err)

	list, err := env.svc.Announcements.List(ctx, resp.User.ID, models.RoleStudent)
	require.NoError(t, err)
	for _, a := range list {
		assert.Nil(t, a.CourseID, a.Title)
	}
	assert.Len(t, list, 2)
}

func TestAssignmentService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	all, page, err := env.svc.Assignments.List(ctx, studentID, models.RoleStudent, 0, dto.ListQuery{Sort: "due_asc"})
	require.NoError(t, err)
	assert.Equal(t, 5, page.TotalItems)
	assert.Equal(t, "Quiz 1: Computer Networks Fundamentals", all[0].Title)

	pending, _, err := env.svc.Assignments.List(ctx, studentID, models.RoleStudent, 0, dto.ListQuery{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending, 1)

	ofCourse, _, err := env.svc.Assignments.List(ctx, facultyID, models.RoleFaculty, 2, dto.ListQuery{})
	require.NoError(t, err)
	require.Len(t, ofCourse, 1)

	teaching, _, err := env.svc.Assignments.List(ctx, facultyID, models.RoleFaculty, 0, dto.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, teaching, 3)

	_, err = env.svc.Assignments.Submit(ctx, pending[0].ID, studentID, &dto.SubmitAssignmentRequest{})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	submitted, err := env.svc.Assignments.Submit(ctx, pending[0].ID, studentID, &dto.SubmitAssignmentRequest{Content: "report"})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentCompleted, submitted.Status)
	assert.NotNil(t, submitted.SubmissionDate)

	_, err = env.svc.Assignments.Get(ctx, 999, studentID)
	assert.ErrorIs(t, err, apperrors.ErrAssignmentNotFound)
}

func TestGradeService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for term, want := range map[string]int{"": 5, "all": 5, "current": 4, "previous": 1, "fall 2024": 1} {
		grades, err := env.svc.Grades.List(ctx, studentID, term)
		require.NoError(t, err)
		assert.Len(t, grades, want, term)
	}
}

func uploadHeader(t *testing.T, name, contentType, content string) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + name + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestMaterialService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	file := uploadHeader(t, "week1.notes.pdf", "application/pdf", "%PDF-1.4")

	_, err := env.svc.Materials.Upload(ctx, studentID, &dto.UploadMaterialForm{CourseID: 1}, file)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = env.svc.Materials.Upload(ctx, facultyID, &dto.UploadMaterialForm{CourseID: 1, ModuleID: 999}, file)
	assert.ErrorIs(t, err, apperrors.ErrModuleNotFound)

	_, err = env.svc.Materials.Upload(ctx, facultyID, &dto.UploadMaterialForm{CourseID: 1},
		uploadHeader(t, "tool.exe", "application/octet-stream", "MZ"))
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "File type not supported", verr.Message)

	m, err := env.svc.Materials.Upload(ctx, facultyID, &dto.UploadMaterialForm{CourseID: 1, ModuleID: 1}, file)
	require.NoError(t, err)
	assert.Equal(t, "week1", m.Title)
	assert.Equal(t, models.MaterialPDF, m.Type)
	assert.Equal(t, "CS301", m.CourseCode)
	assert.Equal(t, "8 Bytes", m.Size)

	url, err := env.svc.Materials.Download(ctx, m.ID, studentID)
	require.NoError(t, err)
	assert.Contains(t, url, "/uploads/materials/")

	require.NoError(t, env.svc.Materials.MarkViewed(ctx, m.ID, studentID))
	require.NoError(t, env.svc.Materials.UpdateProgress(ctx, m.ID, studentID, 140))

	got, err := env.svc.Materials.Get(ctx, m.ID, studentID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Downloads)
	assert.Equal(t, 1, got.Views)

	starred, err := env.svc.Materials.ToggleStar(ctx, m.ID, studentID)
	require.NoError(t, err)
	assert.True(t, starred)
	stars, err := env.svc.Materials.Starred(ctx, studentID)
	require.NoError(t, err)
	assert.Len(t, stars, 3)

	issue, err := env.svc.Materials.ReportIssue(ctx, m.ID, studentID, &dto.ReportIssueRequest{IssueType: "broken", Description: "blank page"})
	require.NoError(t, err)
	assert.Equal(t, m.ID, issue.MaterialID)

	updated, err := env.svc.Materials.Update(ctx, facultyID, m.ID, &dto.UpdateMaterialRequest{
		Title: "Week 1 notes", Type: "document", CourseID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "CS302", updated.CourseCode)

	_, err = env.svc.Materials.Update(ctx, facultyID, m.ID, &dto.UpdateMaterialRequest{Title: "x", Type: "pdf", CourseID: 4})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, env.svc.Materials.Delete(ctx, facultyID, m.ID))
	_, err = env.svc.Materials.Get(ctx, m.ID, studentID)
	assert.ErrorIs(t, err, apperrors.ErrMaterialNotFound)
}

func TestMaterialService_ListAndRelated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	all, page, err := env.svc.Materials.List(ctx, studentID, 0, dto.ListQuery{Sort: "downloads"})
	require.NoError(t, err)
	assert.Equal(t, 6, page.TotalItems)
	assert.Equal(t, "Introduction to Data Structures", all[0].Title)

	videos, _, err := env.svc.Materials.List(ctx, studentID, 0, dto.ListQuery{Type: "video"})
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.True(t, videos[0].Starred)

	cns, _, err := env.svc.Materials.List(ctx, studentID, 7, dto.ListQuery{Sort: "oldest"})
	require.NoError(t, err)
	require.Len(t, cns, 3)
	assert.Equal(t, "CNS Unit 1", cns[0].Title)

	related, err := env.svc.Materials.Related(ctx, cns[0].ID, studentID)
	require.NoError(t, err)
	require.Len(t, related, 2)
	assert.Equal(t, "CNS Unit 2", related[0].Title)

	_, err = env.svc.Materials.Download(ctx, cns[1].ID, studentID)
	assert.ErrorIs(t, err, apperrors.ErrFileMissing)

	url, err := env.svc.Materials.Download(ctx, cns[0].ID, studentID)
	require.NoError(t, err)
	assert.Equal(t, "/assets/pdfs/CNS-UNIT-1.pdf", url)

	_, _, err = env.svc.Materials.List(ctx, studentID, 999, dto.ListQuery{})
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

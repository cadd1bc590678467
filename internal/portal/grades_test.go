package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yigit/svitlms/internal/app/models"
)

func TestGradePoint(t *testing.T) {
	tests := []struct {
		letter string
		want   float64
	}{
		{"A+", 10}, {"A", 9.5}, {"A-", 9},
		{"B+", 8.5}, {"B", 8}, {"B-", 7.5},
		{"C+", 7}, {"C", 6.5}, {"C-", 6},
		{"D", 5}, {"F", 0},
		{"", 0}, {"E", 0}, {"a+", 0},
	}
	for _, tt := range tests {
		t.Run(tt.letter, func(t *testing.T) {
			assert.Equal(t, tt.want, GradePoint(tt.letter))
		})
	}
}

func TestCGPA(t *testing.T) {
	records := []models.GradeRecord{
		{Code: "CS201", Grade: "A", Credits: 4, Status: "completed"},
		{Code: "CS202", Grade: "B+", Credits: 3, Status: "completed"},
		{Code: "MA201", Grade: "F", Credits: 1, Status: "completed"},
		{Code: "CS301", Grade: "A+", Credits: 4, Status: "in-progress"},
	}

	// (9.5*4 + 8.5*3 + 0*1) / 8
	assert.InDelta(t, 7.9375, CGPA(records), 1e-9)
	assert.Equal(t, 8, CreditsCompleted(records))

	assert.Zero(t, CGPA(nil))
	assert.Zero(t, CGPA(records[3:]))
	assert.Zero(t, CGPA([]models.GradeRecord{{Grade: "A", Credits: 0, Status: "completed"}}))
}

func TestLetterDistribution(t *testing.T) {
	d := LetterDistribution([]models.GradeRecord{
		{Grade: "A+"}, {Grade: "A-"}, {Grade: "B"},
		{Grade: "C+"}, {Grade: "D"}, {Grade: "F"}, {Grade: ""},
	})

	assert.Equal(t, Distribution{A: 2, B: 1, C: 1, DF: 2, Total: 7}, d)
	assert.InDelta(t, 200.0/7, d.Share(d.A), 1e-9)
	assert.Zero(t, Distribution{}.Share(3))
}

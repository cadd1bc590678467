package portal

import "github.com/yigit/svitlms/internal/app/models"

var gradePoints = map[string]float64{
	"A+": 10,
	"A":  9.5,
	"A-": 9,
	"B+": 8.5,
	"B":  8,
	"B-": 7.5,
	"C+": 7,
	"C":  6.5,
	"C-": 6,
	"D":  5,
	"F":  0,
}

// GradePoint maps a letter grade to its points on the 10 point scale.
// Unknown letters are worth 0.
func GradePoint(letter string) float64 {
	return gradePoints[letter]
}

// CGPA is the credit weighted grade point average of the completed courses
// in records, or 0 when they carry no credits.
func CGPA(records []models.GradeRecord) float64 {
	var points float64
	credits := 0
	for _, r := range records {
		if !r.Completed() {
			continue
		}
		points += GradePoint(r.Grade) * float64(r.Credits)
		credits += r.Credits
	}
	if credits == 0 {
		return 0
	}
	return points / float64(credits)
}

// CreditsCompleted sums the credits of the completed courses in records.
func CreditsCompleted(records []models.GradeRecord) int {
	total := 0
	for _, r := range records {
		if r.Completed() {
			total += r.Credits
		}
	}
	return total
}

// Distribution counts graded courses by the first letter of their grade.
// D and F share a bucket.
type Distribution struct {
	A     int
	B     int
	C     int
	DF    int
	Total int
}

// Share returns count as a percentage of every record counted, 0 for none.
func (d Distribution) Share(count int) float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(count) * 100 / float64(d.Total)
}

// LetterDistribution buckets records by letter. Total counts every record,
// graded or not, so shares are relative to the whole list.
func LetterDistribution(records []models.GradeRecord) Distribution {
	d := Distribution{Total: len(records)}
	for _, r := range records {
		if r.Grade == "" {
			continue
		}
		switch r.Grade[0] {
		case 'A':
			d.A++
		case 'B':
			d.B++
		case 'C':
			d.C++
		case 'D', 'F':
			d.DF++
		}
	}
	return d
}

package services

import (
	"context"

	applisting "github.com/yigit/svitlms/internal/app/listing"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/repositories"
	"github.com/yigit/svitlms/internal/pkg/listing"
)

// GradeService reads a student's grade book.
type GradeService interface {
	// List returns the caller's grade records of a term: "current",
	// "previous", a term name, or everything when empty or "all".
	List(ctx context.Context, userID int64, term string) ([]models.GradeRecord, error)
}

type gradeServiceImpl struct {
	grades repositories.GradeRepository
	terms  applisting.Terms
}

// NewGradeService creates a new GradeService
func NewGradeService(grades repositories.GradeRepository) GradeService {
	return &gradeServiceImpl{grades: grades, terms: applisting.DefaultTerms}
}

func (s *gradeServiceImpl) List(ctx context.Context, userID int64, term string) ([]models.GradeRecord, error) {
	records, err := s.grades.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	q := listing.Query{}.WithFilter(applisting.FilterTerm, term)
	return applisting.Grades(s.terms).Apply(values(records), q), nil
}

package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/repositories"
)

// AnnouncementService lists the notices a user gets to see.
type AnnouncementService interface {
	// List returns campus-wide announcements plus those of the caller's
	// courses, newest first.
	List(ctx context.Context, userID int64, role models.Role) ([]models.Announcement, error)
}

type announcementServiceImpl struct {
	announcements repositories.AnnouncementRepository
	courses       repositories.CourseRepository
	logger        zerolog.Logger
}

// NewAnnouncementService creates a new AnnouncementService
func NewAnnouncementService(announcements repositories.AnnouncementRepository, courses repositories.CourseRepository, lgr zerolog.Logger) AnnouncementService {
	return &announcementServiceImpl{announcements: announcements, courses: courses, logger: lgr}
}

func (s *announcementServiceImpl) List(ctx context.Context, userID int64, role models.Role) ([]models.Announcement, error) {
	courses, err := s.courses.List(ctx, userID, scopeFor(role, ""))
	if err != nil {
		return nil, err
	}
	mine := make(map[int64]bool, len(courses))
	for _, c := range courses {
		mine[c.ID] = true
	}

	all, err := s.announcements.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Announcement, 0, len(all))
	for _, a := range all {
		if a.CourseID == nil || mine[*a.CourseID] {
			out = append(out, *a)
		}
	}
	s.logger.Debug().Int64("userID", userID).Int("count", len(out)).Msg("Announcements listed")
	return out, nil
}

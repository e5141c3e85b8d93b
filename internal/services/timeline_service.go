package services

import (
	"context"
	"fmt"
	"time"

	"github.com/checkinhq/checkin-backend/internal/dto"
	"github.com/checkinhq/checkin-backend/internal/models"
)

const (
	// maxTimelineResults is a protective upper bound on window queries, not
	// user-configurable.
	maxTimelineResults = 5000
	defaultPageSize    = 100
)

// TimelineService merges reports from a subject's authorized connections
// into a single access-controlled, time-ordered feed.
type TimelineService struct {
	rel     *RelationshipService
	reports ReportStore
}

func NewTimelineService(rel *RelationshipService, reports ReportStore) *TimelineService {
	return &TimelineService{rel: rel, reports: reports}
}

// ByTime returns authorized reports whose event date falls in [from, to),
// most recent first.
func (s *TimelineService) ByTime(ctx context.Context, subject *models.User, from, to time.Time, shortList []string) ([]dto.TimelineReport, error) {
	ownerIDs, err := s.rel.AllAuthorized(ctx, subject.ID, shortList)
	if err != nil {
		return nil, err
	}
	if len(ownerIDs) == 0 {
		return []dto.TimelineReport{}, nil
	}

	reports, err := s.reports.ReportsByOwnersAndDateRange(ctx, ownerIDs, from, to, maxTimelineResults)
	if err != nil {
		return nil, fmt.Errorf("timeline by time: %w", err)
	}
	return toTimeline(reports), nil
}

// ByPage returns up to pageSize authorized reports created strictly before
// the given instant, newest first. A zero before means "now"; a non-positive
// pageSize falls back to the default.
func (s *TimelineService) ByPage(ctx context.Context, subject *models.User, before time.Time, pageSize int, shortList []string) ([]dto.TimelineReport, error) {
	if before.IsZero() {
		before = time.Now()
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	ownerIDs, err := s.rel.AllAuthorized(ctx, subject.ID, shortList)
	if err != nil {
		return nil, err
	}
	if len(ownerIDs) == 0 {
		return []dto.TimelineReport{}, nil
	}

	reports, err := s.reports.ReportsByOwnersCreatedBefore(ctx, ownerIDs, before, pageSize)
	if err != nil {
		return nil, fmt.Errorf("timeline by page: %w", err)
	}
	return toTimeline(reports), nil
}

func toTimeline(reports []models.Report) []dto.TimelineReport {
	out := make([]dto.TimelineReport, 0, len(reports))
	for _, r := range reports {
		out = append(out, dto.TimelineReport{
			UserID:     r.OwnerID.String(),
			Date:       r.Date,
			Categories: emptyIfNil(r.Categories.Data()),
			Images:     emptyImagesIfNil(r.Images.Data()),
			Created:    r.CreatedAt,
		})
	}
	return out
}

func emptyIfNil(cats []models.Category) []models.Category {
	if cats == nil {
		return []models.Category{}
	}
	return cats
}

func emptyImagesIfNil(imgs []models.ImageRef) []models.ImageRef {
	if imgs == nil {
		return []models.ImageRef{}
	}
	return imgs
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/checkinhq/checkin-backend/internal/dto"
	"github.com/checkinhq/checkin-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrReportNotFound = errors.New("report not found")

// ReportService is the owner-gated CRUD around reports. Every create and
// update refreshes the owner's denormalized latest-activity timestamp.
type ReportService struct {
	reports ReportStore
	users   UserStore
}

func NewReportService(reports ReportStore, users UserStore) *ReportService {
	return &ReportService{reports: reports, users: users}
}

func (s *ReportService) Create(ctx context.Context, owner *models.User, date time.Time, categories []models.Category) (*models.Report, error) {
	report := &models.Report{
		ID:         uuid.New(),
		OwnerID:    owner.ID,
		Date:       date,
		Categories: datatypes.NewJSONType(categories),
		Images:     datatypes.NewJSONType([]models.ImageRef{}),
	}

	if err := s.reports.CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	s.refreshLatest(ctx, owner.ID)
	return report, nil
}

// List pages the owner's own reports, newest event date first.
func (s *ReportService) List(ctx context.Context, owner *models.User, skip, limit int) ([]dto.ReportResponse, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 1
	}

	reports, err := s.reports.ReportsByOwner(ctx, owner.ID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	out := make([]dto.ReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, dto.ReportResponse{
			ID:         r.ID.String(),
			UserID:     r.OwnerID.String(),
			Date:       r.Date,
			Categories: emptyIfNil(r.Categories.Data()),
			Images:     emptyImagesIfNil(r.Images.Data()),
			Created:    r.CreatedAt,
			Updated:    r.UpdatedAt,
		})
	}
	return out, nil
}

func (s *ReportService) Update(ctx context.Context, owner *models.User, reportID uuid.UUID, date time.Time, categories []models.Category) error {
	report, err := s.reports.ReportByID(ctx, reportID)
	if err != nil {
		return fmt.Errorf("find report: %w", err)
	}
	if report == nil || report.OwnerID != owner.ID {
		return ErrReportNotFound
	}

	report.Date = date
	report.Categories = datatypes.NewJSONType(categories)
	if err := s.reports.UpdateReport(ctx, report); err != nil {
		return fmt.Errorf("update report: %w", err)
	}

	s.refreshLatest(ctx, owner.ID)
	return nil
}

func (s *ReportService) Delete(ctx context.Context, owner *models.User, reportID uuid.UUID) error {
	deleted, err := s.reports.DeleteReport(ctx, reportID, owner.ID)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if !deleted {
		return ErrReportNotFound
	}
	return nil
}

func (s *ReportService) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return s.reports.CountByOwner(ctx, ownerID)
}

func (s *ReportService) refreshLatest(ctx context.Context, ownerID uuid.UUID) {
	if err := s.users.SetLatest(ctx, ownerID, time.Now()); err != nil {
		slog.Error("failed to refresh latest activity", "user_id", ownerID.String(), "error", err)
	}
}

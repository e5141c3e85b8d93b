package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/checkinhq/checkin-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportStore is the GORM/Postgres report store.
type ReportStore struct {
	db *gorm.DB
}

func NewReportStore(db *gorm.DB) *ReportStore {
	return &ReportStore{db: db}
}

func (s *ReportStore) CreateReport(ctx context.Context, r *models.Report) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *ReportStore) ReportByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ReportStore) ReportsByOwner(ctx context.Context, ownerID uuid.UUID, skip, limit int) ([]models.Report, error) {
	var reports []models.Report
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("date DESC, created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&reports).Error
	return reports, err
}

func (s *ReportStore) UpdateReport(ctx context.Context, r *models.Report) error {
	return s.db.WithContext(ctx).Save(r).Error
}

func (s *ReportStore) DeleteReport(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Report{})
	return result.RowsAffected > 0, result.Error
}

func (s *ReportStore) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	return count, err
}

func (s *ReportStore) ReportsByOwnersAndDateRange(ctx context.Context, ownerIDs []uuid.UUID, from, to time.Time, limit int) ([]models.Report, error) {
	var reports []models.Report
	err := s.db.WithContext(ctx).
		Where("owner_id IN ?", ownerIDs).
		Where("date >= ? AND date < ?", from, to).
		Order("date DESC, created_at DESC").
		Limit(limit).
		Find(&reports).Error
	return reports, err
}

func (s *ReportStore) ReportsByOwnersCreatedBefore(ctx context.Context, ownerIDs []uuid.UUID, before time.Time, limit int) ([]models.Report, error) {
	var reports []models.Report
	err := s.db.WithContext(ctx).
		Where("owner_id IN ?", ownerIDs).
		Where("created_at < ?", before).
		Order("created_at DESC").
		Limit(limit).
		Find(&reports).Error
	return reports, err
}

func (s *ReportStore) ReportByImageID(ctx context.Context, imageID uuid.UUID) (*models.Report, error) {
	var report models.Report
	cond := fmt.Sprintf(`[{"id":%q}]`, imageID.String())
	err := s.db.WithContext(ctx).
		Where("images @> ?::jsonb", cond).
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ReportStore) RemoveImageRef(ctx context.Context, imageID uuid.UUID) error {
	report, err := s.ReportByImageID(ctx, imageID)
	if err != nil {
		return err
	}
	if report == nil {
		return nil
	}

	refs := report.Images.Data()
	kept := make([]models.ImageRef, 0, len(refs))
	for _, ref := range refs {
		if ref.ID != imageID {
			kept = append(kept, ref)
		}
	}
	report.Images = datatypes.NewJSONType(kept)
	return s.UpdateReport(ctx, report)
}

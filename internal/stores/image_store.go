package stores

import (
	"context"
	"errors"

	"github.com/checkinhq/checkin-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImageStore persists image metadata rows.
type ImageStore struct {
	db *gorm.DB
}

func NewImageStore(db *gorm.DB) *ImageStore {
	return &ImageStore{db: db}
}

func (s *ImageStore) CreateImage(ctx context.Context, img *models.Image) error {
	return s.db.WithContext(ctx).Create(img).Error
}

func (s *ImageStore) ImageByID(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	var img models.Image
	err := s.db.WithContext(ctx).First(&img, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (s *ImageStore) DeleteImage(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&models.Image{}, "id = ?", id).Error
}

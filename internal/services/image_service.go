package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/checkinhq/checkin-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrImageNotFound        = errors.New("image not found")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrImageTooLarge        = errors.New("image too large")
)

// ImageService stores report images in the blob store and keeps the report's
// image list and the metadata rows in step.
type ImageService struct {
	images   ImageStore
	reports  ReportStore
	blobs    BlobStore
	rel      *RelationshipService
	maxBytes int64
}

func NewImageService(images ImageStore, reports ReportStore, blobs BlobStore, rel *RelationshipService, maxBytes int64) *ImageService {
	return &ImageService{
		images:   images,
		reports:  reports,
		blobs:    blobs,
		rel:      rel,
		maxBytes: maxBytes,
	}
}

// Upload attaches one image to a report owned by the caller. The blob is
// written first; the metadata row and the report's image ref follow.
func (s *ImageService) Upload(ctx context.Context, owner *models.User, reportID uuid.UUID, data []byte, contentType, description string) (*models.Image, error) {
	if int64(len(data)) > s.maxBytes {
		return nil, ErrImageTooLarge
	}
	contentType, err := sniffImageType(data, contentType)
	if err != nil {
		return nil, err
	}

	report, err := s.reports.ReportByID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("find report: %w", err)
	}
	if report == nil || report.OwnerID != owner.ID {
		return nil, ErrReportNotFound
	}

	img := &models.Image{
		ID:          uuid.New(),
		OwnerID:     owner.ID,
		ReportID:    report.ID,
		ContentType: contentType,
		Size:        int64(len(data)),
	}

	if err := s.blobs.Put(ctx, img.ID.String(), data, contentType); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}
	if err := s.images.CreateImage(ctx, img); err != nil {
		// undo the blob write; the metadata row is the source of truth
		_ = s.blobs.Remove(ctx, img.ID.String())
		return nil, fmt.Errorf("store image metadata: %w", err)
	}

	refs := report.Images.Data()
	refs = append(refs, models.ImageRef{ID: img.ID, Description: description})
	report.Images = datatypes.NewJSONType(refs)
	if err := s.reports.UpdateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("attach image to report: %w", err)
	}

	return img, nil
}

// Get serves an image to a viewer authorized to see its owner's content.
// A positive width downscales the image before serving; widths at or above
// the original are ignored.
func (s *ImageService) Get(ctx context.Context, viewer *models.User, imageID uuid.UUID, width int) ([]byte, string, error) {
	img, err := s.images.ImageByID(ctx, imageID)
	if err != nil {
		return nil, "", fmt.Errorf("find image: %w", err)
	}
	if img == nil {
		return nil, "", ErrImageNotFound
	}

	authorized, err := s.rel.IsAuthorized(ctx, viewer.ID, img.OwnerID)
	if err != nil {
		return nil, "", err
	}
	if !authorized {
		return nil, "", ErrNotAuthorized
	}

	data, contentType, err := s.blobs.Get(ctx, img.ID.String())
	if err != nil {
		return nil, "", fmt.Errorf("read blob: %w", err)
	}
	if contentType == "" {
		contentType = img.ContentType
	}

	if width > 0 {
		if resized, err := resizeImage(data, contentType, width); err == nil {
			data = resized
		}
	}
	return data, contentType, nil
}

// Delete removes an image the caller owns: blob, metadata row, and the
// report's image ref.
func (s *ImageService) Delete(ctx context.Context, owner *models.User, imageID uuid.UUID) error {
	img, err := s.images.ImageByID(ctx, imageID)
	if err != nil {
		return fmt.Errorf("find image: %w", err)
	}
	if img == nil {
		return ErrImageNotFound
	}
	if img.OwnerID != owner.ID {
		return ErrNotAuthorized
	}

	if err := s.blobs.Remove(ctx, img.ID.String()); err != nil {
		return fmt.Errorf("remove blob: %w", err)
	}
	if err := s.images.DeleteImage(ctx, img.ID); err != nil {
		return fmt.Errorf("remove image metadata: %w", err)
	}
	if err := s.reports.RemoveImageRef(ctx, img.ID); err != nil {
		return fmt.Errorf("detach image from report: %w", err)
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Image is blob metadata for an uploaded report image. The bytes themselves
// live in the blob store under the image ID.
type Image struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	ReportID    uuid.UUID `gorm:"type:uuid;not null;index" json:"report_id"`
	ContentType string    `gorm:"size:100;not null" json:"content_type"`
	Size        int64     `gorm:"not null" json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

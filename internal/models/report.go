package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Category is a single checklist item on a report.
type Category struct {
	Type    string `json:"type"`
	Checked bool   `json:"checked"`
	Message string `json:"message,omitempty"`
}

// ImageRef links an uploaded image to a report.
type ImageRef struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description,omitempty"`
}

// Report is a periodic check-in: a category checklist plus optional images.
// Date is the user-supplied event date; CreatedAt is the server insertion
// time and drives the paged timeline.
type Report struct {
	ID         uuid.UUID                        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID    uuid.UUID                        `gorm:"type:uuid;not null;index:idx_reports_owner_date;index:idx_reports_owner_created" json:"userid"`
	Date       time.Time                        `gorm:"not null;index:idx_reports_owner_date" json:"date"`
	Categories datatypes.JSONType[[]Category]   `gorm:"type:jsonb" json:"categories"`
	Images     datatypes.JSONType[[]ImageRef]   `gorm:"type:jsonb" json:"images"`
	CreatedAt  time.Time                        `gorm:"index:idx_reports_owner_created" json:"created"`
	UpdatedAt  time.Time                        `json:"updated"`
}

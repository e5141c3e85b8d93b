package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. Latest tracks the most recent report activity
// and defaults to the epoch for users that have never posted.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username    string    `gorm:"size:20;not null;uniqueIndex" json:"username"`
	Password    string    `gorm:"not null" json:"-"`
	AutoApprove bool      `gorm:"not null;default:true" json:"autoApprove"`
	Latest      time.Time `gorm:"not null" json:"latest"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

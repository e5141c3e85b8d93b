package dto

import (
	"time"

	"github.com/checkinhq/checkin-backend/internal/models"
)

type SaveReportRequest struct {
	Date       *time.Time        `json:"date"`
	Categories []models.Category `json:"categories"`
}

type ReportResponse struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userid"`
	Date       time.Time         `json:"date"`
	Categories []models.Category `json:"categories"`
	Images     []models.ImageRef `json:"images"`
	Created    time.Time         `json:"created"`
	Updated    time.Time         `json:"updated"`
}

// SaveUserRequest covers both registration and profile updates on the
// /api/users resource.
type SaveUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	AutoApprove *bool  `json:"autoApprove"`
}

type ProfileResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	AutoApprove bool   `json:"autoApprove"`
	ReportCount int64  `json:"reportCount"`
}

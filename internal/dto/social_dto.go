package dto

import (
	"time"

	"github.com/checkinhq/checkin-backend/internal/models"
)

// StatusResponse is the wire format of the social endpoints:
// {status: "success"|"failed", message, id?}.
type StatusResponse struct {
	Status  string `json:"status"`
	Reason  int    `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
}

// FollowingEntry is one row of GET /api/following.
type FollowingEntry struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// FollowerStatus exposes the followee-controlled flags. The active flag is
// deliberately stripped: the list only ever contains active followers.
type FollowerStatus struct {
	Approved bool `json:"approved"`
	Blocked  bool `json:"blocked"`
}

// FollowerEntry is one row of GET /api/followers.
type FollowerEntry struct {
	ID       string         `json:"id"`
	Username string         `json:"username"`
	Status   FollowerStatus `json:"status"`
}

type UpdateFollowerRequest struct {
	Approved *bool `json:"approved"`
	Blocked  *bool `json:"blocked"`
}

// TimelineReport is a report as seen through the timeline: internal ids and
// the updated timestamp are not exposed.
type TimelineReport struct {
	UserID     string            `json:"userid"`
	Date       time.Time         `json:"date"`
	Categories []models.Category `json:"categories"`
	Images     []models.ImageRef `json:"images"`
	Created    time.Time         `json:"created"`
}

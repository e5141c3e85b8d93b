package models

import (
	"time"

	"github.com/google/uuid"
)

// Follower is one entry in a user's follower list. UserID is the followee
// owning the list, FollowerID the user who follows them.
//
// Unfollowing marks the entry inactive rather than deleting it, so the
// approval/block history survives a follow-unfollow-follow cycle. The unique
// index guarantees at most one entry per (followee, follower) pair; a
// re-follow reactivates the existing entry.
type Follower struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_followers_user_follower;index" json:"user_id"`
	FollowerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_followers_user_follower;index" json:"follower_id"`
	Active     bool      `gorm:"not null;default:true" json:"active"`
	Approved   bool      `gorm:"not null;default:true" json:"approved"`
	Blocked    bool      `gorm:"not null;default:false" json:"blocked"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Follower) TableName() string {
	return "followers"
}

// Authorized reports whether this follower may read the followee's content.
func (f *Follower) Authorized() bool {
	return f.Active && f.Approved && !f.Blocked
}

// Following is one entry in a user's following list. UserID is the follower,
// FolloweeID the user being followed.
type Following struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_followings_user_followee;index" json:"user_id"`
	FolloweeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_followings_user_followee" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Following) TableName() string {
	return "followings"
}

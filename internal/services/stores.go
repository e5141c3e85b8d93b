package services

import (
	"context"
	"time"

	"github.com/checkinhq/checkin-backend/internal/models"
	"github.com/google/uuid"
)

// UserStore is the identity persistence consumed by the relationship engine.
// Lookups return (nil, nil) when the record does not exist. Follow and
// Unfollow mutate both sides of a relationship in one atomic operation, so a
// transactional backend keeps the graph consistent without changing the
// engine's contract.
type UserStore interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	SetLatest(ctx context.Context, id uuid.UUID, at time.Time) error
	UsernamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)

	Following(ctx context.Context, userID uuid.UUID) ([]models.Following, error)
	IsFollowing(ctx context.Context, userID, followeeID uuid.UUID) (bool, error)
	// Follow appends a follower entry on the followee (or reactivates an
	// inactive one) and records the following edge on the follower.
	Follow(ctx context.Context, followerID, followeeID uuid.UUID, approved bool) error
	// Unfollow removes the following edge and marks the follower entry
	// inactive. The entry itself is never deleted; history is preserved.
	Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error

	FollowerEntry(ctx context.Context, ownerID, followerID uuid.UUID) (*models.Follower, error)
	ActiveFollowers(ctx context.Context, ownerID uuid.UUID) ([]models.Follower, error)
	SaveFollower(ctx context.Context, f *models.Follower) error
	// AuthorizedFolloweeIDs returns, among candidateIDs, the users whose
	// follower list holds an approved, unblocked entry for subjectID.
	AuthorizedFolloweeIDs(ctx context.Context, subjectID uuid.UUID, candidateIDs []uuid.UUID) ([]uuid.UUID, error)
}

// ReportStore is the report persistence consumed by the timeline aggregator
// and the report CRUD service.
type ReportStore interface {
	CreateReport(ctx context.Context, r *models.Report) error
	ReportByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	// ReportsByOwner pages a single owner's reports, date descending.
	ReportsByOwner(ctx context.Context, ownerID uuid.UUID, skip, limit int) ([]models.Report, error)
	UpdateReport(ctx context.Context, r *models.Report) error
	DeleteReport(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// ReportsByOwnersAndDateRange returns reports with date in [from, to),
	// date descending (created descending on ties).
	ReportsByOwnersAndDateRange(ctx context.Context, ownerIDs []uuid.UUID, from, to time.Time, limit int) ([]models.Report, error)
	// ReportsByOwnersCreatedBefore returns reports created strictly before
	// the given instant, created descending.
	ReportsByOwnersCreatedBefore(ctx context.Context, ownerIDs []uuid.UUID, before time.Time, limit int) ([]models.Report, error)

	ReportByImageID(ctx context.Context, imageID uuid.UUID) (*models.Report, error)
	RemoveImageRef(ctx context.Context, imageID uuid.UUID) error
}

// ImageStore persists blob metadata rows.
type ImageStore interface {
	CreateImage(ctx context.Context, img *models.Image) error
	ImageByID(ctx context.Context, id uuid.UUID) (*models.Image, error)
	DeleteImage(ctx context.Context, id uuid.UUID) error
}

// BlobStore holds the image bytes themselves, keyed by opaque string.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// AuthzCache caches a subject's authorized-ID set. Implementations may be
// lossy; the engine falls back to the store on a miss. A nil cache disables
// caching.
type AuthzCache interface {
	Get(ctx context.Context, subjectID uuid.UUID) ([]uuid.UUID, bool)
	Set(ctx context.Context, subjectID uuid.UUID, ids []uuid.UUID)
	Invalidate(ctx context.Context, subjectIDs ...uuid.UUID)
}

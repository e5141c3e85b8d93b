package stores

import (
	"context"
	"errors"
	"time"

	"github.com/checkinhq/checkin-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStore is the GORM/Postgres identity store. Relationship mutations that
// touch both sides of an edge run inside a transaction, so the graph never
// ends up half-written.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) SetLatest(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("latest", at).Error
}

func (s *UserStore) UsernamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Select("id", "username").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}

func (s *UserStore) Following(ctx context.Context, userID uuid.UUID) ([]models.Following, error) {
	var following []models.Following
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&following).Error
	return following, err
}

func (s *UserStore) IsFollowing(ctx context.Context, userID, followeeID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Following{}).
		Where("user_id = ? AND followee_id = ?", userID, followeeID).
		Count(&count).Error
	return count > 0, err
}

func (s *UserStore) Follow(ctx context.Context, followerID, followeeID uuid.UUID, approved bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.Follower
		err := tx.Where("user_id = ? AND follower_id = ?", followeeID, followerID).First(&entry).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			entry = models.Follower{
				ID:         uuid.New(),
				UserID:     followeeID,
				FollowerID: followerID,
				Active:     true,
				Approved:   approved,
				Blocked:    false,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			// re-follow: reactivate the historical entry, keeping the
			// followee's earlier approved/blocked decisions
			entry.Active = true
			if err := tx.Save(&entry).Error; err != nil {
				return err
			}
		}

		return tx.Create(&models.Following{
			ID:         uuid.New(),
			UserID:     followerID,
			FolloweeID: followeeID,
		}).Error
	})
}

func (s *UserStore) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND followee_id = ?", followerID, followeeID).
			Delete(&models.Following{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Follower{}).
			Where("user_id = ? AND follower_id = ?", followeeID, followerID).
			Update("active", false).Error
	})
}

func (s *UserStore) FollowerEntry(ctx context.Context, ownerID, followerID uuid.UUID) (*models.Follower, error) {
	var entry models.Follower
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND follower_id = ?", ownerID, followerID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *UserStore) ActiveFollowers(ctx context.Context, ownerID uuid.UUID) ([]models.Follower, error) {
	var followers []models.Follower
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND active = true", ownerID).
		Order("created_at").
		Find(&followers).Error
	return followers, err
}

func (s *UserStore) SaveFollower(ctx context.Context, f *models.Follower) error {
	return s.db.WithContext(ctx).Save(f).Error
}

func (s *UserStore) AuthorizedFolloweeIDs(ctx context.Context, subjectID uuid.UUID, candidateIDs []uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(candidateIDs))
	if len(candidateIDs) == 0 {
		return ids, nil
	}

	err := s.db.WithContext(ctx).Model(&models.Follower{}).
		Where("user_id IN ?", candidateIDs).
		Where("follower_id = ? AND approved = true AND blocked = false", subjectID).
		Distinct().
		Pluck("user_id", &ids).Error
	return ids, err
}

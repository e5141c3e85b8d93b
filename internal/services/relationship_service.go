package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/checkinhq/checkin-backend/internal/dto"
	"github.com/checkinhq/checkin-backend/internal/models"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrNotFollowing    = errors.New("user is not being followed")
	ErrUnknownFollowee = errors.New("followed user no longer exists")
	ErrNoStatusFields  = errors.New("no follower status fields supplied")
	ErrNotAFollower    = errors.New("no follower entry for this user")
)

// RelationshipService owns the follower/following state machine and the
// authorization predicate derived from it.
type RelationshipService struct {
	users UserStore
	cache AuthzCache
}

func NewRelationshipService(users UserStore, cache AuthzCache) *RelationshipService {
	return &RelationshipService{users: users, cache: cache}
}

// AddFollowing makes subject follow the user with the given username. The
// new follower entry is pre-approved when the followee auto-approves.
// Following someone already followed is a no-op, not an error.
func (s *RelationshipService) AddFollowing(ctx context.Context, subject *models.User, username string) (*models.User, error) {
	followee, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find followee: %w", err)
	}
	if followee == nil {
		return nil, ErrUserNotFound
	}

	already, err := s.users.IsFollowing(ctx, subject.ID, followee.ID)
	if err != nil {
		return nil, fmt.Errorf("check following: %w", err)
	}
	if already {
		return followee, nil
	}

	if err := s.users.Follow(ctx, subject.ID, followee.ID, followee.AutoApprove); err != nil {
		return nil, fmt.Errorf("follow: %w", err)
	}

	s.invalidate(ctx, subject.ID)
	return followee, nil
}

// RemoveFollowing makes subject stop following followeeID. The followee's
// follower entry is marked inactive, never deleted. When the followee record
// itself has vanished, the edge is still pruned and ErrUnknownFollowee is
// returned.
func (s *RelationshipService) RemoveFollowing(ctx context.Context, subject *models.User, followeeID uuid.UUID) error {
	following, err := s.users.IsFollowing(ctx, subject.ID, followeeID)
	if err != nil {
		return fmt.Errorf("check following: %w", err)
	}
	if !following {
		return ErrNotFollowing
	}

	followee, err := s.users.UserByID(ctx, followeeID)
	if err != nil {
		return fmt.Errorf("find followee: %w", err)
	}

	if err := s.users.Unfollow(ctx, subject.ID, followeeID); err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}

	s.invalidate(ctx, subject.ID)

	if followee == nil {
		return ErrUnknownFollowee
	}
	return nil
}

// IsAuthorized reports whether subjectID may read content owned by ownerID.
// Self-access is always authorized; otherwise the owner's follower entry for
// the subject must be active, approved and not blocked.
func (s *RelationshipService) IsAuthorized(ctx context.Context, subjectID, ownerID uuid.UUID) (bool, error) {
	if subjectID == ownerID {
		return true, nil
	}

	entry, err := s.users.FollowerEntry(ctx, ownerID, subjectID)
	if err != nil {
		return false, fmt.Errorf("find follower entry: %w", err)
	}
	if entry == nil {
		return false, nil
	}
	return entry.Authorized(), nil
}

// AllAuthorized returns the set of user IDs whose reports the subject may
// aggregate: the followees holding an approved, unblocked entry for the
// subject, plus the subject itself unless a shortlist excludes it. Shortlist
// entries are compared as strings.
//
// Unlike IsAuthorized this does not require the follower entry to be active,
// matching the behavior the timeline has always had.
func (s *RelationshipService) AllAuthorized(ctx context.Context, subjectID uuid.UUID, shortList []string) ([]uuid.UUID, error) {
	cacheable := len(shortList) == 0
	if cacheable && s.cache != nil {
		if ids, ok := s.cache.Get(ctx, subjectID); ok {
			return ids, nil
		}
	}

	following, err := s.users.Following(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, len(following))
	candidates := make([]uuid.UUID, 0, len(following))
	for _, f := range following {
		if _, dup := seen[f.FolloweeID]; dup {
			continue
		}
		if len(shortList) > 0 && !containsString(shortList, f.FolloweeID.String()) {
			continue
		}
		seen[f.FolloweeID] = struct{}{}
		candidates = append(candidates, f.FolloweeID)
	}

	authorized := make([]uuid.UUID, 0, len(candidates)+1)
	if len(candidates) > 0 {
		authorized, err = s.users.AuthorizedFolloweeIDs(ctx, subjectID, candidates)
		if err != nil {
			return nil, fmt.Errorf("authorized followees: %w", err)
		}
	}

	if len(shortList) == 0 || containsString(shortList, subjectID.String()) {
		authorized = append(authorized, subjectID)
	}

	if cacheable && s.cache != nil {
		s.cache.Set(ctx, subjectID, authorized)
	}
	return authorized, nil
}

// UpdateFollowerStatus lets the owner flip the approved/blocked flags on one
// of their follower entries. Only the supplied fields change.
func (s *RelationshipService) UpdateFollowerStatus(ctx context.Context, owner *models.User, followerID uuid.UUID, approved, blocked *bool) error {
	if approved == nil && blocked == nil {
		return ErrNoStatusFields
	}

	entry, err := s.users.FollowerEntry(ctx, owner.ID, followerID)
	if err != nil {
		return fmt.Errorf("find follower entry: %w", err)
	}
	if entry == nil {
		return ErrNotAFollower
	}

	if approved != nil {
		entry.Approved = *approved
	}
	if blocked != nil {
		entry.Blocked = *blocked
	}

	if err := s.users.SaveFollower(ctx, entry); err != nil {
		return fmt.Errorf("save follower entry: %w", err)
	}

	// the follower's view of the graph changed, not the owner's
	s.invalidate(ctx, followerID)
	return nil
}

// FollowingList returns who the subject follows, with usernames joined in.
func (s *RelationshipService) FollowingList(ctx context.Context, subject *models.User) ([]dto.FollowingEntry, error) {
	following, err := s.users.Following(ctx, subject.ID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(following))
	for _, f := range following {
		ids = append(ids, f.FolloweeID)
	}
	names, err := s.users.UsernamesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve usernames: %w", err)
	}

	entries := make([]dto.FollowingEntry, 0, len(following))
	for _, f := range following {
		entries = append(entries, dto.FollowingEntry{
			ID:       f.FolloweeID.String(),
			Username: names[f.FolloweeID],
		})
	}
	return entries, nil
}

// FollowersList returns the subject's active followers only, with usernames
// and the approved/blocked flags. Inactive entries stay hidden.
func (s *RelationshipService) FollowersList(ctx context.Context, owner *models.User) ([]dto.FollowerEntry, error) {
	followers, err := s.users.ActiveFollowers(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(followers))
	for _, f := range followers {
		ids = append(ids, f.FollowerID)
	}
	names, err := s.users.UsernamesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve usernames: %w", err)
	}

	entries := make([]dto.FollowerEntry, 0, len(followers))
	for _, f := range followers {
		entries = append(entries, dto.FollowerEntry{
			ID:       f.FollowerID.String(),
			Username: names[f.FollowerID],
			Status: dto.FollowerStatus{
				Approved: f.Approved,
				Blocked:  f.Blocked,
			},
		})
	}
	return entries, nil
}

func (s *RelationshipService) invalidate(ctx context.Context, ids ...uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, ids...)
	}
}

func containsString(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}

package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/checkinhq/checkin-backend/internal/models"
	"github.com/checkinhq/checkin-backend/internal/services"
	"github.com/google/uuid"
)

// fakeUserStore implements services.UserStore in memory.
type fakeUserStore struct {
	users      map[uuid.UUID]*models.User
	followers  []*models.Follower
	followings []models.Following
	err        error
	m          sync.Mutex
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserStore) addUser(username string, autoApprove bool) *models.User {
	u := &models.User{
		ID:          uuid.New(),
		Username:    username,
		AutoApprove: autoApprove,
		Latest:      time.Unix(0, 0),
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserStore) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func (f *fakeUserStore) UserByUsername(_ context.Context, username string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) SetLatest(_ context.Context, id uuid.UUID, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	if u, ok := f.users[id]; ok {
		u.Latest = at
	}
	return nil
}

func (f *fakeUserStore) UsernamesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	names := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			names[id] = u.Username
		}
	}
	return names, nil
}

func (f *fakeUserStore) Following(_ context.Context, userID uuid.UUID) ([]models.Following, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Following
	for _, fl := range f.followings {
		if fl.UserID == userID {
			out = append(out, fl)
		}
	}
	return out, nil
}

func (f *fakeUserStore) IsFollowing(_ context.Context, userID, followeeID uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, fl := range f.followings {
		if fl.UserID == userID && fl.FolloweeID == followeeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) Follow(_ context.Context, followerID, followeeID uuid.UUID, approved bool) error {
	f.m.Lock()
	defer f.m.Unlock()

	if f.err != nil {
		return f.err
	}
	reactivated := false
	for _, entry := range f.followers {
		if entry.UserID == followeeID && entry.FollowerID == followerID {
			entry.Active = true
			reactivated = true
			break
		}
	}
	if !reactivated {
		f.followers = append(f.followers, &models.Follower{
			ID:         uuid.New(),
			UserID:     followeeID,
			FollowerID: followerID,
			Active:     true,
			Approved:   approved,
		})
	}
	f.followings = append(f.followings, models.Following{
		ID:         uuid.New(),
		UserID:     followerID,
		FolloweeID: followeeID,
	})
	return nil
}

func (f *fakeUserStore) Unfollow(_ context.Context, followerID, followeeID uuid.UUID) error {
	f.m.Lock()
	defer f.m.Unlock()

	if f.err != nil {
		return f.err
	}
	kept := f.followings[:0]
	for _, fl := range f.followings {
		if fl.UserID == followerID && fl.FolloweeID == followeeID {
			continue
		}
		kept = append(kept, fl)
	}
	f.followings = kept
	for _, entry := range f.followers {
		if entry.UserID == followeeID && entry.FollowerID == followerID {
			entry.Active = false
		}
	}
	return nil
}

func (f *fakeUserStore) FollowerEntry(_ context.Context, ownerID, followerID uuid.UUID) (*models.Follower, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, entry := range f.followers {
		if entry.UserID == ownerID && entry.FollowerID == followerID {
			return entry, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) ActiveFollowers(_ context.Context, ownerID uuid.UUID) ([]models.Follower, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Follower
	for _, entry := range f.followers {
		if entry.UserID == ownerID && entry.Active {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (f *fakeUserStore) SaveFollower(_ context.Context, saved *models.Follower) error {
	if f.err != nil {
		return f.err
	}
	for i, entry := range f.followers {
		if entry.ID == saved.ID {
			f.followers[i] = saved
			return nil
		}
	}
	f.followers = append(f.followers, saved)
	return nil
}

func (f *fakeUserStore) AuthorizedFolloweeIDs(_ context.Context, subjectID uuid.UUID, candidateIDs []uuid.UUID) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]uuid.UUID, 0, len(candidateIDs))
	for _, candidate := range candidateIDs {
		for _, entry := range f.followers {
			if entry.UserID == candidate && entry.FollowerID == subjectID && entry.Approved && !entry.Blocked {
				out = append(out, candidate)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeUserStore) followerEntryOf(ownerID, followerID uuid.UUID) *models.Follower {
	for _, entry := range f.followers {
		if entry.UserID == ownerID && entry.FollowerID == followerID {
			return entry
		}
	}
	return nil
}

func TestAddFollowing(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := services.NewRelationshipService(store, nil)

	alice := store.addUser("alice", true)
	bob := store.addUser("bob_private", false)

	followee, err := svc.AddFollowing(ctx, alice, "bob_private")
	if err != nil {
		t.Fatalf("AddFollowing() error = %v", err)
	}
	if followee.ID != bob.ID {
		t.Errorf("AddFollowing() followee = %s, want %s", followee.ID, bob.ID)
	}

	entry := store.followerEntryOf(bob.ID, alice.ID)
	if entry == nil {
		t.Fatal("no follower entry created on followee")
	}
	if entry.Approved {
		t.Error("follower entry approved, want pending for a non-auto-approving followee")
	}
	if !entry.Active {
		t.Error("follower entry inactive after follow")
	}

	// following again must not create a second edge or entry
	if _, err := svc.AddFollowing(ctx, alice, "bob_private"); err != nil {
		t.Fatalf("repeat AddFollowing() error = %v", err)
	}
	if got := len(store.followings); got != 1 {
		t.Errorf("following edges = %d, want 1", got)
	}
	if got := len(store.followers); got != 1 {
		t.Errorf("follower entries = %d, want 1", got)
	}
}

func TestAddFollowingAutoApprove(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := services.NewRelationshipService(store, nil)

	alice := store.addUser("alice", true)
	carol := store.addUser("carol", true)

	if _, err := svc.AddFollowing(ctx, alice, "carol"); err != nil {
		t.Fatalf("AddFollowing() error = %v", err)
	}
	entry := store.followerEntryOf(carol.ID, alice.ID)
	if entry == nil || !entry.Approved {
		t.Error("follower entry not pre-approved for an auto-approving followee")
	}
}

func TestAddFollowingUnknownUser(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := services.NewRelationshipService(store, nil)

	alice := store.addUser("alice", true)

	if _, err := svc.AddFollowing(ctx, alice, "nobody"); !errors.Is(err, services.ErrUserNotFound) {
		t.Errorf("AddFollowing() error = %v, want ErrUserNotFound", err)
	}
}

func TestRemoveFollowing(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := services.NewRelationshipService(store, nil)

	alice := store.addUser("alice", true)
	bob := store.addUser("bob", true)

	if _, err := svc.AddFollowing(ctx, alice, "bob"); err != nil {
		t.Fatalf("AddFollowing() error = %v", err)
	}
	if err := svc.RemoveFollowing(ctx, alice, bob.ID); err != nil {
		t.Fatalf("RemoveFollowing() error = %v", err)
	}

	if got := len(store.followings); got != 0 {
		t.Errorf("following edges = %d, want 0", got)
	}
	entry := store.followerEntryOf(bob.ID, alice.ID)
	if entry == nil {
		t.Fatal("follower entry deleted, want inactive entry preserved")
	}
	if entry.Active {
		t.Error("follower entry still active after unfollow")
	}
}

func TestRemoveFollowingNotFollowed(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := services.NewRelationshipService(store, nil)

	alice := store.addUser("alice", true)
	bob := store.addUser("bob", true)

	if err := svc.RemoveFollowing(ctx, alice, bob.ID); !errors.Is(err, services.ErrNotFollowing) {
		t.Errorf("RemoveFollowing() error = %v, want ErrNotFollowing", err)
	}
}

func TestRemoveFollowingVanishedFollowee(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := services.NewRelationshipService(store, nil)

	alice := store.addUser("alice", true)
	ghost := store.addUser("ghost", true)

	if _, err := svc.AddFollowing(ctx, alice, "ghost"); err != nil {
		t.Fatalf("AddFollowing() error = %v", err)
	}
	delete(store.users, ghost.ID)

	err := svc.RemoveFollowing(ctx, alice, ghost.ID)
	if !errors.Is(err, services.ErrUnknownFollowee) {
		t.Fatalf("RemoveFollowing() error = %v, want ErrUnknownFollowee", err)
	}
	// the stale edge must still be pruned
	if got := len(store.followings); got != 0 {
		t.Errorf("following edges = %d, want 0 after pruning", got)
	}
}

func TestRefollowReactivatesEntry(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := services.NewRelationshipService(store, nil)

	alice := store.addUser("alice", true)
	bob := store.addUser("bob", true)

	if _, err := svc.AddFollowing(ctx, alice, "bob"); err != nil {
		t.Fatalf("AddFollowing() error = %v", err)
	}

	// bob blocks alice, then alice unfollows and follows again
	blocked := true
	if err := svc.UpdateFollowerStatus(ctx, bob, alice.ID, nil, &blocked); err != nil {
		t.Fatalf("UpdateFollowerStatus() error = %v", err)
	}
	if err := svc.RemoveFollowing(ctx, alice, bob.ID); err != nil {
		t.Fatalf("RemoveFollowing() error = %v", err)
	}
	if _, err := svc.AddFollowing(ctx, alice, "bob"); err != nil {
		t.Fatalf("re-follow error = %v", err)
	}

	if got := len(store.followers); got != 1 {
		t.Fatalf("follower entries = %d, want 1 reactivated entry", got)
	}
	entry := store.followerEntryOf(bob.ID, alice.ID)
	if !entry.Active {
		t.Error("follower entry inactive after re-follow")
	}
	if !entry.Blocked {
		t.Error("re-follow cleared the block, want it preserved")
	}
}

func TestIsAuthorized(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := services.NewRelationshipService(store, nil)

	owner := store.addUser("owner", true)
	viewer := store.addUser("viewer", true)
	stranger := store.addUser("stranger", true)

	if _, err := svc.AddFollowing(ctx, viewer, "owner"); err != nil {
		t.Fatalf("AddFollowing() error = %v", err)
	}

	tests := []struct {
		name    string
		subject uuid.UUID
		want    bool
		mutate  func()
	}{
		{name: "self always authorized", subject: owner.ID, want: true},
		{name: "approved active follower", subject: viewer.ID, want: true},
		{name: "stranger", subject: stranger.ID, want: false},
		{
			name:    "blocked follower",
			subject: viewer.ID,
			want:    false,
			mutate: func() {
				store.followerEntryOf(owner.ID, viewer.ID).Blocked = true
			},
		},
		{
			name:    "inactive follower",
			subject: viewer.ID,
			want:    false,
			mutate: func() {
				entry := store.followerEntryOf(owner.ID, viewer.ID)
				entry.Blocked = false
				entry.Active = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mutate != nil {
				tt.mutate()
			}
			got, err := svc.IsAuthorized(ctx, tt.subject, owner.ID)
			if err != nil {
				t.Fatalf("IsAuthorized() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsAuthorized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllAuthorized(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := services.NewRelationshipService(store, nil)

	subject := store.addUser("subject", true)
	open := store.addUser("open", true)
	blocker := store.addUser("blocker", true)
	pending := store.addUser("pending_user", false)

	for _, username := range []string{"open", "blocker", "pending_user"} {
		if _, err := svc.AddFollowing(ctx, subject, username); err != nil {
			t.Fatalf("AddFollowing(%s) error = %v", username, err)
		}
	}
	store.followerEntryOf(blocker.ID, subject.ID).Blocked = true

	ids, err := svc.AllAuthorized(ctx, subject.ID, nil)
	if err != nil {
		t.Fatalf("AllAuthorized() error = %v", err)
	}
	want := map[uuid.UUID]bool{open.ID: true, subject.ID: true}
	if len(ids) != len(want) {
		t.Fatalf("AllAuthorized() = %v, want open followee plus self", ids)
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("AllAuthorized() includes %s unexpectedly", id)
		}
	}
	if containsID(ids, blocker.ID) {
		t.Error("AllAuthorized() includes a blocking followee")
	}
	if containsID(ids, pending.ID) {
		t.Error("AllAuthorized() includes an unapproved followee")
	}
}

func TestAllAuthorizedShortList(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := services.NewRelationshipService(store, nil)

	subject := store.addUser("subject", true)
	open := store.addUser("open", true)
	other := store.addUser("other", true)

	for _, username := range []string{"open", "other"} {
		if _, err := svc.AddFollowing(ctx, subject, username); err != nil {
			t.Fatalf("AddFollowing(%s) error = %v", username, err)
		}
	}

	// shortlist narrows to one followee and drops self
	ids, err := svc.AllAuthorized(ctx, subject.ID, []string{open.ID.String()})
	if err != nil {
		t.Fatalf("AllAuthorized() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != open.ID {
		t.Errorf("AllAuthorized(shortlist) = %v, want only %s", ids, open.ID)
	}
	if containsID(ids, other.ID) || containsID(ids, subject.ID) {
		t.Error("shortlist did not exclude self and unlisted followees")
	}

	// shortlist naming self keeps self in
	ids, err = svc.AllAuthorized(ctx, subject.ID, []string{subject.ID.String()})
	if err != nil {
		t.Fatalf("AllAuthorized() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != subject.ID {
		t.Errorf("AllAuthorized(self shortlist) = %v, want only self", ids)
	}

	// shortlist of unrelated IDs yields nothing
	ids, err = svc.AllAuthorized(ctx, subject.ID, []string{uuid.NewString()})
	if err != nil {
		t.Fatalf("AllAuthorized() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("AllAuthorized(unrelated shortlist) = %v, want empty", ids)
	}
}

func TestUpdateFollowerStatus(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := services.NewRelationshipService(store, nil)

	owner := store.addUser("owner", false)
	follower := store.addUser("follower", true)
	stranger := store.addUser("stranger", true)

	if _, err := svc.AddFollowing(ctx, follower, "owner"); err != nil {
		t.Fatalf("AddFollowing() error = %v", err)
	}

	if err := svc.UpdateFollowerStatus(ctx, owner, follower.ID, nil, nil); !errors.Is(err, services.ErrNoStatusFields) {
		t.Errorf("no fields: error = %v, want ErrNoStatusFields", err)
	}

	approved := true
	if err := svc.UpdateFollowerStatus(ctx, owner, stranger.ID, &approved, nil); !errors.Is(err, services.ErrNotAFollower) {
		t.Errorf("stranger: error = %v, want ErrNotAFollower", err)
	}

	if err := svc.UpdateFollowerStatus(ctx, owner, follower.ID, &approved, nil); err != nil {
		t.Fatalf("UpdateFollowerStatus() error = %v", err)
	}
	entry := store.followerEntryOf(owner.ID, follower.ID)
	if !entry.Approved {
		t.Error("approved flag not applied")
	}
	if entry.Blocked {
		t.Error("blocked flag changed without being supplied")
	}

	blocked := true
	if err := svc.UpdateFollowerStatus(ctx, owner, follower.ID, nil, &blocked); err != nil {
		t.Fatalf("UpdateFollowerStatus() error = %v", err)
	}
	if !entry.Blocked {
		t.Error("blocked flag not applied")
	}
	if !entry.Approved {
		t.Error("approved flag changed without being supplied")
	}
}

func TestFollowersListActiveOnly(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := services.NewRelationshipService(store, nil)

	owner := store.addUser("owner", true)
	active := store.addUser("active_fan", true)
	gone := store.addUser("gone_fan", true)

	if _, err := svc.AddFollowing(ctx, active, "owner"); err != nil {
		t.Fatalf("AddFollowing() error = %v", err)
	}
	if _, err := svc.AddFollowing(ctx, gone, "owner"); err != nil {
		t.Fatalf("AddFollowing() error = %v", err)
	}
	if err := svc.RemoveFollowing(ctx, gone, owner.ID); err != nil {
		t.Fatalf("RemoveFollowing() error = %v", err)
	}

	entries, err := svc.FollowersList(ctx, owner)
	if err != nil {
		t.Fatalf("FollowersList() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("FollowersList() = %d entries, want 1", len(entries))
	}
	if entries[0].Username != "active_fan" {
		t.Errorf("FollowersList()[0].Username = %q, want %q", entries[0].Username, "active_fan")
	}
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

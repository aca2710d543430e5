package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/storage"
	"whisperwall/backend/internal/storage/memory"
)

// stubRepo overrides GetUserByID; other repository methods are never called.
type stubRepo struct {
	storage.UserRepository
	getByID func(id string) (*domain.User, error)
}

func (r *stubRepo) GetUserByID(id string) (*domain.User, error) {
	return r.getByID(id)
}

type fakeCache struct {
	profiles map[string]*domain.PublicProfile
	sets     []string
	deletes  []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{profiles: map[string]*domain.PublicProfile{}}
}

func (c *fakeCache) CacheProfile(key string, profile *domain.PublicProfile, _ time.Duration) error {
	clone := *profile
	c.profiles[key] = &clone
	c.sets = append(c.sets, key)
	return nil
}

func (c *fakeCache) GetCachedProfile(key string) (*domain.PublicProfile, error) {
	profile, ok := c.profiles[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return profile, nil
}

func (c *fakeCache) DeleteCachedProfile(key string) error {
	delete(c.profiles, key)
	c.deletes = append(c.deletes, key)
	return nil
}

func TestLookupByIDInvalidID(t *testing.T) {
	repo := &stubRepo{getByID: func(string) (*domain.User, error) {
		return nil, storage.ErrInvalidID
	}}
	svc := NewProfileService(repo, zap.NewNop())

	_, err := svc.LookupByID("not-a-valid-object-id")
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestLookupByIDNotFound(t *testing.T) {
	svc := NewProfileService(memory.NewStore(), zap.NewNop())

	_, err := svc.LookupByID("nonexistent")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLookupUnknownUsername(t *testing.T) {
	svc := NewProfileService(memory.NewStore(), zap.NewNop())

	_, err := svc.Lookup("nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestToggleFlagsRoundTrip(t *testing.T) {
	store := memory.NewStore()
	svc := NewProfileService(store, zap.NewNop())
	user := seedUser(t, store, "alice", true, true)

	updated, err := svc.SetAcceptingMessages(user.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsAcceptingMessages)

	updated, err = svc.SetAcceptingMessages(user.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsAcceptingMessages)

	updated, err = svc.SetSendingAnonymously(user.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsSendingAnonymously)

	updated, err = svc.SetSendingAnonymously(user.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsSendingAnonymously)

	_, err = svc.SetAcceptingMessages("nonexistent", true)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLookupCacheKeyNormalized(t *testing.T) {
	store := memory.NewStore()
	svc := NewProfileService(store, zap.NewNop())
	cache := newFakeCache()
	svc.SetCache(cache, time.Minute)
	user := seedUser(t, store, "alice", true, true)

	// A mixed-case lookup fills the cache under the lowercase key
	profile, err := svc.Lookup("Alice")
	require.NoError(t, err)
	assert.True(t, profile.IsAcceptingMessages)
	assert.Equal(t, []string{"alice"}, cache.sets)

	// Toggling a flag invalidates that same key
	_, err = svc.SetAcceptingMessages(user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, cache.deletes)

	// Any spelling sees the fresh value, never the stale cached one
	profile, err = svc.Lookup("ALICE")
	require.NoError(t, err)
	assert.False(t, profile.IsAcceptingMessages)
}

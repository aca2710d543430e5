package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/storage"
)

func newTestUser(email, username string) *domain.User {
	return &domain.User{
		Email:                email,
		Username:             username,
		PasswordHash:         "$2a$10$test",
		IsVerified:           true,
		IsAcceptingMessages:  true,
		IsSendingAnonymously: true,
	}
}

func TestCreateUser(t *testing.T) {
	store := NewStore()

	user := newTestUser("alice@example.com", "alice")
	err := store.CreateUser(user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	// Duplicate email
	dup := newTestUser("alice@example.com", "alice2")
	err = store.CreateUser(dup)
	assert.ErrorIs(t, err, storage.ErrEmailExists)

	// Duplicate username (case-insensitive)
	dup = newTestUser("other@example.com", "ALICE")
	err = store.CreateUser(dup)
	assert.ErrorIs(t, err, storage.ErrUsernameExists)
}

func TestGetUser(t *testing.T) {
	store := NewStore()

	user := newTestUser("bob@example.com", "bob")
	require.NoError(t, store.CreateUser(user))

	byID, err := store.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", byID.Username)

	byEmail, err := store.GetUserByEmail("BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byName, err := store.GetUserByUsername("Bob")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = store.GetUserByID("nonexistent")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestGetUserReturnsCopy(t *testing.T) {
	store := NewStore()

	user := newTestUser("carol@example.com", "carol")
	require.NoError(t, store.CreateUser(user))

	got, err := store.GetUserByID(user.ID)
	require.NoError(t, err)
	got.IsAcceptingMessages = false

	again, err := store.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.True(t, again.IsAcceptingMessages)
}

func TestSetPreferenceFlags(t *testing.T) {
	store := NewStore()

	user := newTestUser("dave@example.com", "dave")
	require.NoError(t, store.CreateUser(user))

	require.NoError(t, store.SetAcceptingMessages(user.ID, false))
	require.NoError(t, store.SetSendingAnonymously(user.ID, false))

	got, err := store.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAcceptingMessages)
	assert.False(t, got.IsSendingAnonymously)

	err = store.SetAcceptingMessages("nonexistent", true)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestAppendAndListMessages(t *testing.T) {
	store := NewStore()

	user := newTestUser("erin@example.com", "erin")
	require.NoError(t, store.CreateUser(user))

	first := &domain.Message{Content: "hello", Author: domain.AnonymousAuthor}
	second := &domain.Message{Content: "world", Author: "sender-id"}
	require.NoError(t, store.AppendMessage(user.ID, first))
	require.NoError(t, store.AppendMessage(user.ID, second))
	assert.NotEmpty(t, first.ID)

	messages, err := store.ListMessages(user.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	// Insertion order preserved
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, "world", messages[1].Content)

	err = store.AppendMessage("nonexistent", &domain.Message{Content: "x"})
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestDeleteMessage(t *testing.T) {
	store := NewStore()

	user := newTestUser("frank@example.com", "frank")
	require.NoError(t, store.CreateUser(user))

	msg := &domain.Message{Content: "delete me", Author: domain.AnonymousAuthor}
	require.NoError(t, store.AppendMessage(user.ID, msg))

	require.NoError(t, store.DeleteMessage(user.ID, msg.ID))

	messages, err := store.ListMessages(user.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	// Deleting again reports not found
	err = store.DeleteMessage(user.ID, msg.ID)
	assert.ErrorIs(t, err, storage.ErrMessageNotFound)
}

func TestConcurrentAppend(t *testing.T) {
	store := NewStore()

	user := newTestUser("grace@example.com", "grace")
	require.NoError(t, store.CreateUser(user))

	const n = 50
	done := make(chan struct{})
	for i := 0; i < n; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_ = store.AppendMessage(user.ID, &domain.Message{Content: "c", Author: domain.AnonymousAuthor})
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}

	messages, err := store.ListMessages(user.ID)
	require.NoError(t, err)
	assert.Len(t, messages, n)
}

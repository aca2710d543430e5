package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/storage/memory"
)

func seedUser(t *testing.T, store *memory.Store, username string, accepting, anonymous bool) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:                username + "@example.com",
		Username:             username,
		PasswordHash:         "$2a$10$test",
		IsVerified:           true,
		IsAcceptingMessages:  accepting,
		IsSendingAnonymously: anonymous,
	}
	require.NoError(t, store.CreateUser(user))
	return user
}

type recordingNotifier struct {
	ownerIDs []string
}

func (n *recordingNotifier) NotifyNewMessage(ownerID string, _ *domain.Message) {
	n.ownerIDs = append(n.ownerIDs, ownerID)
}

func TestSendAnonymous(t *testing.T) {
	store := memory.NewStore()
	svc := NewMessageService(store, zap.NewNop(), 0)
	recipient := seedUser(t, store, "alice", true, true)

	msg, err := svc.Send(SendInput{
		RecipientUsername: "alice",
		Content:           "hello there",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousAuthor, msg.Author)
	assert.True(t, msg.IsAnonymous())

	stored, err := store.ListMessages(recipient.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "hello there", stored[0].Content)
}

func TestSendIdentified(t *testing.T) {
	store := memory.NewStore()
	svc := NewMessageService(store, zap.NewNop(), 0)
	seedUser(t, store, "alice", true, true)
	sender := seedUser(t, store, "bob", true, false)

	msg, err := svc.Send(SendInput{
		RecipientUsername: "alice",
		Content:           "hi from bob",
		AuthorID:          sender.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, sender.ID, msg.Author)
	assert.False(t, msg.IsAnonymous())
}

func TestSendRejections(t *testing.T) {
	store := memory.NewStore()
	svc := NewMessageService(store, zap.NewNop(), 0)
	seedUser(t, store, "closed", false, true)

	// Recipient not accepting messages
	_, err := svc.Send(SendInput{RecipientUsername: "closed", Content: "hello"})
	assert.ErrorIs(t, err, ErrNotAcceptingMessages)

	// Unknown recipient
	_, err = svc.Send(SendInput{RecipientUsername: "nobody", Content: "hello"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Empty content
	_, err = svc.Send(SendInput{RecipientUsername: "closed", Content: "   "})
	assert.ErrorIs(t, err, domain.ErrContentEmpty)
}

func TestSendContentTooLong(t *testing.T) {
	store := memory.NewStore()
	svc := NewMessageService(store, zap.NewNop(), 10)
	seedUser(t, store, "alice", true, true)

	_, err := svc.Send(SendInput{RecipientUsername: "alice", Content: "this is definitely longer than ten characters"})
	assert.ErrorIs(t, err, domain.ErrContentTooLong)
}

func TestSendNotifies(t *testing.T) {
	store := memory.NewStore()
	svc := NewMessageService(store, zap.NewNop(), 0)
	recipient := seedUser(t, store, "alice", true, true)

	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)

	_, err := svc.Send(SendInput{RecipientUsername: "alice", Content: "ping"})
	require.NoError(t, err)
	require.Len(t, notifier.ownerIDs, 1)
	assert.Equal(t, recipient.ID, notifier.ownerIDs[0])
}

func TestListNewestFirst(t *testing.T) {
	store := memory.NewStore()
	svc := NewMessageService(store, zap.NewNop(), 0)
	recipient := seedUser(t, store, "alice", true, true)

	for _, content := range []string{"first", "second", "third"} {
		_, err := svc.Send(SendInput{RecipientUsername: "alice", Content: content})
		require.NoError(t, err)
	}

	views, err := svc.List(recipient.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "third", views[0].Content)
	assert.Equal(t, "first", views[2].Content)
}

func TestListSortsByCreatedAt(t *testing.T) {
	store := memory.NewStore()
	svc := NewMessageService(store, zap.NewNop(), 0)
	recipient := seedUser(t, store, "alice", true, true)

	// Append order is the opposite of chronological order, as can happen
	// with concurrent sends; listing must still be newest-first by timestamp.
	now := time.Now().UTC()
	newer := &domain.Message{ID: uuid.NewString(), Content: "newer", Author: domain.AnonymousAuthor, CreatedAt: now}
	older := &domain.Message{ID: uuid.NewString(), Content: "older", Author: domain.AnonymousAuthor, CreatedAt: now.Add(-time.Minute)}
	require.NoError(t, store.AppendMessage(recipient.ID, newer))
	require.NoError(t, store.AppendMessage(recipient.ID, older))

	views, err := svc.List(recipient.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "newer", views[0].Content)
	assert.Equal(t, "older", views[1].Content)
}

func TestListAuthorEnrichment(t *testing.T) {
	store := memory.NewStore()
	svc := NewMessageService(store, zap.NewNop(), 0)
	recipient := seedUser(t, store, "alice", true, true)
	visible := seedUser(t, store, "bob", true, false)
	hidden := seedUser(t, store, "carol", true, true)

	_, err := svc.Send(SendInput{RecipientUsername: "alice", Content: "from bob", AuthorID: visible.ID})
	require.NoError(t, err)
	_, err = svc.Send(SendInput{RecipientUsername: "alice", Content: "from carol", AuthorID: hidden.ID})
	require.NoError(t, err)
	_, err = svc.Send(SendInput{RecipientUsername: "alice", Content: "anon"})
	require.NoError(t, err)

	views, err := svc.List(recipient.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)

	byContent := map[string]domain.MessageView{}
	for _, v := range views {
		byContent[v.Content] = v
	}

	// Author opted into visibility: username attached
	assert.Equal(t, "bob", byContent["from bob"].AuthorUsername)
	assert.False(t, byContent["from bob"].SendAnonymous)
	assert.Equal(t, visible.ID, byContent["from bob"].Author)

	// Author currently sending anonymously: degraded to anonymous view
	assert.Equal(t, domain.AnonymousAuthor, byContent["from carol"].Author)
	assert.Empty(t, byContent["from carol"].AuthorUsername)
	assert.True(t, byContent["from carol"].SendAnonymous)

	// Plain anonymous message
	assert.Equal(t, domain.AnonymousAuthor, byContent["anon"].Author)
	assert.True(t, byContent["anon"].SendAnonymous)
}

func TestListUnknownOwner(t *testing.T) {
	store := memory.NewStore()
	svc := NewMessageService(store, zap.NewNop(), 0)

	_, err := svc.List("nonexistent")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDelete(t *testing.T) {
	store := memory.NewStore()
	svc := NewMessageService(store, zap.NewNop(), 0)
	recipient := seedUser(t, store, "alice", true, true)

	msg, err := svc.Send(SendInput{RecipientUsername: "alice", Content: "to be removed"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(recipient.ID, msg.ID))

	// Second delete reports not found
	err = svc.Delete(recipient.ID, msg.ID)
	assert.ErrorIs(t, err, ErrMessageNotFound)

	err = svc.Delete("nonexistent", msg.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

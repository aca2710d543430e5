package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/storage"
)

// Store 内存存储实现
//
// 用于开发与测试环境，所有数据保存在进程内存中，重启即丢失。
// 留言内嵌在用户记录里，与文档型后端保持相同的数据形态。
type Store struct {
	mu         sync.RWMutex
	users      map[string]*domain.User // userID -> user
	byEmail    map[string]string       // email -> userID
	byUsername map[string]string       // username(lower) -> userID
}

// NewStore 创建内存存储
func NewStore() *Store {
	return &Store{
		users:      make(map[string]*domain.User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

// CreateUser 创建用户
func (s *Store) CreateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := s.byEmail[email]; ok {
		return storage.ErrEmailExists
	}
	username := strings.ToLower(user.Username)
	if _, ok := s.byUsername[username]; ok {
		return storage.ErrUsernameExists
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Messages == nil {
		user.Messages = []domain.Message{}
	}

	stored := cloneUser(user)
	s.users[user.ID] = stored
	s.byEmail[email] = user.ID
	s.byUsername[username] = user.ID
	return nil
}

// GetUserByID 根据 ID 获取用户
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return cloneUser(user), nil
}

// GetUserByEmail 根据邮箱获取用户
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return cloneUser(s.users[id]), nil
}

// GetUserByUsername 根据用户名获取用户
func (s *Store) GetUserByUsername(username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return cloneUser(s.users[id]), nil
}

// UpdateUser 更新用户（留言列表除外）
func (s *Store) UpdateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return storage.ErrUserNotFound
	}

	existing.PasswordHash = user.PasswordHash
	existing.IsVerified = user.IsVerified
	existing.VerifyCode = user.VerifyCode
	existing.VerifyCodeExpiry = user.VerifyCodeExpiry
	existing.IsAcceptingMessages = user.IsAcceptingMessages
	existing.IsSendingAnonymously = user.IsSendingAnonymously
	existing.UpdatedAt = time.Now()
	return nil
}

// UpdateLastLogin 更新最后登录时间
func (s *Store) UpdateLastLogin(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	now := time.Now()
	user.LastLoginAt = &now
	return nil
}

// SetAcceptingMessages 设置是否接收留言
func (s *Store) SetAcceptingMessages(userID string, accepting bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	user.IsAcceptingMessages = accepting
	user.UpdatedAt = time.Now()
	return nil
}

// SetSendingAnonymously 设置是否匿名发送
func (s *Store) SetSendingAnonymously(userID string, anonymous bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	user.IsSendingAnonymously = anonymous
	user.UpdatedAt = time.Now()
	return nil
}

// AppendMessage 为用户追加一条留言
func (s *Store) AppendMessage(ownerID string, message *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[ownerID]
	if !ok {
		return storage.ErrUserNotFound
	}

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	message.OwnerID = ownerID
	user.Messages = append(user.Messages, *message)
	return nil
}

// ListMessages 列出用户的全部留言（按插入顺序）
func (s *Store) ListMessages(ownerID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[ownerID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	messages := make([]domain.Message, len(user.Messages))
	copy(messages, user.Messages)
	return messages, nil
}

// DeleteMessage 删除用户的一条留言
//
// 留言不存在（或已被删除）时返回 ErrMessageNotFound。
func (s *Store) DeleteMessage(ownerID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[ownerID]
	if !ok {
		return storage.ErrUserNotFound
	}

	for i, m := range user.Messages {
		if m.ID == messageID {
			user.Messages = append(user.Messages[:i], user.Messages[i+1:]...)
			return nil
		}
	}
	return storage.ErrMessageNotFound
}

// Close 关闭存储
func (s *Store) Close() error {
	return nil
}

// Health 健康检查
func (s *Store) Health() error {
	return nil
}

// cloneUser 深拷贝用户，避免调用方修改内部状态
func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Messages = make([]domain.Message, len(u.Messages))
	copy(c.Messages, u.Messages)
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

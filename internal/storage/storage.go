package storage

import (
	"errors"
	"time"

	"whisperwall/backend/internal/domain"
)

var (
	// ErrUserNotFound 用户未找到错误
	ErrUserNotFound = errors.New("user not found")
	// ErrMessageNotFound 留言未找到（或已被删除）错误
	ErrMessageNotFound = errors.New("message not found")
	// ErrEmailExists 邮箱已存在错误
	ErrEmailExists = errors.New("email already exists")
	// ErrUsernameExists 用户名已存在错误
	ErrUsernameExists = errors.New("username already exists")
	// ErrInvalidID 用户 ID 格式非法错误
	ErrInvalidID = errors.New("invalid user id format")
)

// UserRepository 定义用户数据存取操作。
type UserRepository interface {
	CreateUser(user *domain.User) error
	GetUserByID(id string) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
	GetUserByUsername(username string) (*domain.User, error)
	UpdateUser(user *domain.User) error
	UpdateLastLogin(userID string) error
	SetAcceptingMessages(userID string, accepting bool) error
	SetSendingAnonymously(userID string, anonymous bool) error
}

// MessageRepository 定义留言数据存取操作。
//
// 每条留言都归属于唯一的所有者，追加与删除都是针对所有者集合的
// 单文档原子操作，不提供跨用户事务。
type MessageRepository interface {
	AppendMessage(ownerID string, message *domain.Message) error
	ListMessages(ownerID string) ([]domain.Message, error)
	DeleteMessage(ownerID, messageID string) error // 无匹配时返回 ErrMessageNotFound
}

// ProfileCache 定义公开资料的缓存操作。
type ProfileCache interface {
	CacheProfile(key string, profile *domain.PublicProfile, ttl time.Duration) error
	GetCachedProfile(key string) (*domain.PublicProfile, error)
	DeleteCachedProfile(key string) error
}

// Store 定义完整的存储接口。
type Store interface {
	UserRepository
	MessageRepository

	// 工具方法
	Close() error
	Health() error
}

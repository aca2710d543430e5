package service

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/storage"
)

// ErrInvalidUserID 用户 ID 格式非法
var ErrInvalidUserID = errors.New("invalid user id format")

// ProfileService 封装用户资料与偏好开关逻辑。
type ProfileService struct {
	store    storage.UserRepository
	cache    storage.ProfileCache // 可选
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewProfileService 创建资料业务服务。
func NewProfileService(store storage.UserRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		store:  store,
		logger: logger,
	}
}

// SetCache 设置公开资料缓存
func (s *ProfileService) SetCache(cache storage.ProfileCache, ttl time.Duration) {
	s.cache = cache
	s.cacheTTL = ttl
}

// Lookup 按用户名查询公开资料。
//
// 优先读缓存，未命中时回源存储并回填。缓存故障只记日志，
// 不影响查询结果。
func (s *ProfileService) Lookup(username string) (*domain.PublicProfile, error) {
	// 缓存键统一小写，保证不同大小写拼写命中同一条目，
	// 偏好变更时也能一次失效
	key := strings.ToLower(username)
	if s.cache != nil {
		if profile, err := s.cache.GetCachedProfile(key); err == nil {
			return profile, nil
		}
	}

	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		return nil, ErrUserNotFound
	}

	profile := user.PublicProfile()
	if s.cache != nil {
		if err := s.cache.CacheProfile(key, &profile, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache profile", zap.String("username", username), zap.Error(err))
		}
	}

	return &profile, nil
}

// LookupByID 按用户 ID 查询公开资料。
//
// ID 格式非法时返回 ErrInvalidUserID，调用方据此区分 400 与 404。
func (s *ProfileService) LookupByID(userID string) (*domain.PublicProfile, error) {
	user, err := s.store.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidID) {
			return nil, ErrInvalidUserID
		}
		return nil, ErrUserNotFound
	}
	profile := user.PublicProfile()
	return &profile, nil
}

// Get 获取用户完整资料。
func (s *ProfileService) Get(userID string) (*domain.User, error) {
	user, err := s.store.GetUserByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// SetAcceptingMessages 设置是否接收留言。
func (s *ProfileService) SetAcceptingMessages(userID string, accepting bool) (*domain.User, error) {
	return s.setFlag(userID, func() error {
		return s.store.SetAcceptingMessages(userID, accepting)
	})
}

// SetSendingAnonymously 设置是否匿名发送。
func (s *ProfileService) SetSendingAnonymously(userID string, anonymous bool) (*domain.User, error) {
	return s.setFlag(userID, func() error {
		return s.store.SetSendingAnonymously(userID, anonymous)
	})
}

// setFlag 更新偏好开关并使缓存失效，返回更新后的用户
func (s *ProfileService) setFlag(userID string, update func() error) (*domain.User, error) {
	if err := update(); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) || errors.Is(err, storage.ErrInvalidID) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user, err := s.store.GetUserByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	s.invalidate(user.Username)
	return user, nil
}

// invalidate 使公开资料缓存失效
func (s *ProfileService) invalidate(username string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteCachedProfile(strings.ToLower(username)); err != nil {
		s.logger.Warn("failed to invalidate profile cache", zap.String("username", username), zap.Error(err))
	}
}

package sql

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/storage"
)

// ========== User Repository ==========

const userColumns = `id, email, username, password_hash, is_verified, verify_code, verify_code_expiry,
       is_accepting_messages, is_sending_anonymously, created_at, updated_at, last_login_at`

// CreateUser 创建新用户
func (s *Store) CreateUser(user *domain.User) error {
	email := strings.ToLower(user.Email)

	// 先做显式查重，保证返回的哨兵错误可区分冲突字段
	if _, err := s.GetUserByEmail(email); err == nil {
		return storage.ErrEmailExists
	} else if err != storage.ErrUserNotFound {
		return err
	}
	if _, err := s.GetUserByUsername(user.Username); err == nil {
		return storage.ErrUsernameExists
	} else if err != storage.ErrUserNotFound {
		return err
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := s.rebind(`
		INSERT INTO users (id, email, username, password_hash, is_verified, verify_code, verify_code_expiry,
		                   is_accepting_messages, is_sending_anonymously, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		user.ID,
		email,
		user.Username,
		user.PasswordHash,
		user.IsVerified,
		user.VerifyCode,
		user.VerifyCodeExpiry,
		user.IsAcceptingMessages,
		user.IsSendingAnonymously,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

// GetUserByID 根据ID获取用户
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return s.scanUser(s.db.QueryRow(query, id))
}

// GetUserByEmail 根据邮箱获取用户
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	return s.scanUser(s.db.QueryRow(query, strings.ToLower(email)))
}

// GetUserByUsername 根据用户名获取用户
func (s *Store) GetUserByUsername(username string) (*domain.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower(?)`)
	return s.scanUser(s.db.QueryRow(query, username))
}

// UpdateUser 更新用户（留言列表除外）
func (s *Store) UpdateUser(user *domain.User) error {
	query := s.rebind(`
		UPDATE users
		SET password_hash = ?, is_verified = ?, verify_code = ?, verify_code_expiry = ?,
		    is_accepting_messages = ?, is_sending_anonymously = ?, updated_at = ?
		WHERE id = ?
	`)
	result, err := s.db.Exec(query,
		user.PasswordHash,
		user.IsVerified,
		user.VerifyCode,
		user.VerifyCodeExpiry,
		user.IsAcceptingMessages,
		user.IsSendingAnonymously,
		time.Now(),
		user.ID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(result, storage.ErrUserNotFound)
}

// UpdateLastLogin 更新最后登录时间
func (s *Store) UpdateLastLogin(userID string) error {
	query := s.rebind(`UPDATE users SET last_login_at = ? WHERE id = ?`)
	result, err := s.db.Exec(query, time.Now(), userID)
	if err != nil {
		return err
	}
	return requireRowAffected(result, storage.ErrUserNotFound)
}

// SetAcceptingMessages 设置是否接收留言
func (s *Store) SetAcceptingMessages(userID string, accepting bool) error {
	query := s.rebind(`UPDATE users SET is_accepting_messages = ?, updated_at = ? WHERE id = ?`)
	result, err := s.db.Exec(query, accepting, time.Now(), userID)
	if err != nil {
		return err
	}
	return requireRowAffected(result, storage.ErrUserNotFound)
}

// SetSendingAnonymously 设置是否匿名发送
func (s *Store) SetSendingAnonymously(userID string, anonymous bool) error {
	query := s.rebind(`UPDATE users SET is_sending_anonymously = ?, updated_at = ? WHERE id = ?`)
	result, err := s.db.Exec(query, anonymous, time.Now(), userID)
	if err != nil {
		return err
	}
	return requireRowAffected(result, storage.ErrUserNotFound)
}

// scanUser 扫描单行用户记录
func (s *Store) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var lastLoginAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.IsVerified,
		&user.VerifyCode,
		&user.VerifyCodeExpiry,
		&user.IsAcceptingMessages,
		&user.IsSendingAnonymously,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLoginAt,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	return &user, nil
}

// requireRowAffected 无行受影响时返回给定的哨兵错误
func requireRowAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

package domain

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// 验证相关的错误定义
var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmailTooLong     = errors.New("email address too long")
	ErrPasswordTooShort = errors.New("password too short (min 8 chars)")
	ErrPasswordTooLong  = errors.New("password too long (max 72 chars)")
	ErrUsernameTooShort = errors.New("username too short (min 3 chars)")
	ErrUsernameTooLong  = errors.New("username too long (max 32 chars)")
	ErrInvalidUsername  = errors.New("invalid username format")
	ErrContentEmpty     = errors.New("message content must not be empty")
	ErrContentTooLong   = errors.New("message content too long")
)

// 验证常量
const (
	MaxEmailLength = 254 // RFC 5322 整个邮箱地址最大长度

	// 密码长度限制（上限对齐 bcrypt 的 72 字节输入限制）
	MinPasswordLength = 8
	MaxPasswordLength = 72

	// 用户名长度限制
	MinUsernameLength = 3
	MaxUsernameLength = 32

	// 留言内容默认最大长度（字符数），可由配置覆盖
	DefaultMaxContentLength = 1000
)

// 用户名验证（必须以字母开头）
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._-]*[a-zA-Z0-9]$|^[a-zA-Z]$`)

// ValidateEmail 验证邮箱格式
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" {
		return ErrInvalidEmail
	}
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateUsername 验证用户名
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return ErrUsernameTooShort
	}
	if len(username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword 验证密码强度
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// ValidateMessageContent 验证留言内容
//
// 内容去除首尾空白后不能为空，字符数不能超过 maxLength。
// maxLength 小于等于 0 时使用 DefaultMaxContentLength。
func ValidateMessageContent(content string, maxLength int) error {
	if maxLength <= 0 {
		maxLength = DefaultMaxContentLength
	}
	if strings.TrimSpace(content) == "" {
		return ErrContentEmpty
	}
	if utf8.RuneCountInString(content) > maxLength {
		return ErrContentTooLong
	}
	return nil
}

package httptransport

import (
	"whisperwall/backend/internal/auth"
	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/service"
)

// 错误消息映射表（业务错误 -> 英文消息）
var errorMessages = map[error]string{
	// 留言错误
	service.ErrUserNotFound:         "User not found",
	service.ErrNotAcceptingMessages: "User is not accepting messages",
	service.ErrMessageNotFound:      "Message not found or already deleted",

	// 认证错误
	auth.ErrEmailExists:        "Email is already registered",
	auth.ErrUsernameExists:     "Username is already taken",
	auth.ErrUserNotFound:       "User not found",
	auth.ErrInvalidCredentials: "Incorrect password",
	auth.ErrUserNotVerified:    "Please verify your account before logging in",
	auth.ErrInvalidVerifyCode:  "Incorrect verification code",
	auth.ErrVerifyCodeExpired:  "Verification code has expired. Please sign up again to get a new code",

	// 校验错误
	domain.ErrInvalidEmail:      "Invalid email address",
	domain.ErrEmailTooLong:      "Email address is too long",
	domain.ErrPasswordTooShort:  "Password must be at least 8 characters",
	domain.ErrPasswordTooLong:   "Password must be at most 72 characters",
	domain.ErrUsernameTooShort:  "Username must be at least 3 characters",
	domain.ErrUsernameTooLong:   "Username must be at most 32 characters",
	domain.ErrInvalidUsername:   "Username contains invalid characters",
	domain.ErrContentEmpty:      "Message content must not be empty",
	domain.ErrContentTooLong:    "Message content is too long",
}

// GetErrorMessage 获取错误的展示消息
func GetErrorMessage(err error) string {
	if msg, ok := errorMessages[err]; ok {
		return msg
	}
	return err.Error()
}

// 通用错误消息
const (
	// 请求相关
	MsgInvalidRequest       = "Invalid request body"
	MsgUsernameOrIDRequired = "Username or ID is required"
	MsgInvalidUserID        = "Invalid user ID format"

	// 认证相关
	MsgNotAuthenticated = "Not authenticated"
	MsgTokenInvalid     = "Invalid or expired token"

	// 服务器错误
	MsgInternalError = "Internal server error"
)

package httptransport

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisperwall/backend/internal/auth"
	jwtpkg "whisperwall/backend/internal/auth/jwt"
	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/middleware"
	"whisperwall/backend/internal/monitoring"
)

// AuthHandler 处理认证相关的 HTTP 请求
type AuthHandler struct {
	authService *auth.Service   // 认证业务服务
	jwtManager  *jwtpkg.Manager // JWT 令牌管理器
	log         *zap.Logger     // 结构化日志记录器
}

// NewAuthHandler 创建新的认证处理器实例
func NewAuthHandler(authService *auth.Service, jwtManager *jwtpkg.Manager, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtManager:  jwtManager,
		log:         log,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type verifyCodeRequest struct {
	Username string `json:"username" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Register 处理用户注册请求
//
// 注册成功后用户处于未验证状态，验证码通过响应下发（独立部署时
// 由邮件通道发送，这里直接返回便于自托管使用）。
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	user, err := h.authService.Register(auth.RegisterInput{
		Email:    req.Email,
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	})
	if err != nil {
		switch err {
		case auth.ErrEmailExists, auth.ErrUsernameExists:
			Conflict(c, GetErrorMessage(err))
		case domain.ErrInvalidEmail, domain.ErrEmailTooLong,
			domain.ErrPasswordTooShort, domain.ErrPasswordTooLong,
			domain.ErrUsernameTooShort, domain.ErrUsernameTooLong,
			domain.ErrInvalidUsername:
			BadRequest(c, GetErrorMessage(err))
		default:
			h.log.Error("failed to register user", zap.Error(err))
			InternalError(c, MsgInternalError)
		}
		return
	}

	monitoring.UsersRegistered.Inc()

	h.log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)

	CreatedData(c, "User registered successfully. Please verify your account.", gin.H{
		"username":   user.Username,
		"verifyCode": user.VerifyCode,
	})
}

// VerifyCode 处理注册验证码校验请求
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	if err := h.authService.VerifyCode(strings.TrimSpace(req.Username), strings.TrimSpace(req.Code)); err != nil {
		switch err {
		case auth.ErrUserNotFound:
			NotFound(c, GetErrorMessage(err))
		case auth.ErrInvalidVerifyCode, auth.ErrVerifyCodeExpired:
			BadRequest(c, GetErrorMessage(err))
		default:
			h.log.Error("failed to verify code", zap.Error(err))
			InternalError(c, MsgInternalError)
		}
		return
	}

	OK(c, "Account verified successfully")
}

// Login 处理用户登录请求
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	user, err := h.authService.Login(auth.LoginInput{
		Identifier: strings.TrimSpace(req.Identifier),
		Password:   req.Password,
	})
	if err != nil {
		switch err {
		case auth.ErrUserNotFound:
			NotFound(c, GetErrorMessage(err))
		case auth.ErrUserNotVerified:
			Forbidden(c, GetErrorMessage(err))
		case auth.ErrInvalidCredentials:
			Unauthorized(c, GetErrorMessage(err))
		default:
			h.log.Error("failed to login", zap.Error(err))
			InternalError(c, MsgInternalError)
		}
		return
	}

	tokens, err := h.jwtManager.GenerateTokenPair(principalOf(user))
	if err != nil {
		h.log.Error("failed to generate tokens", zap.Error(err))
		InternalError(c, MsgInternalError)
		return
	}

	h.log.Info("user logged in", zap.String("user_id", user.ID))

	OKData(c, "Logged in successfully", gin.H{
		"user":         userBody(user),
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
		"expiresIn":    tokens.ExpiresIn,
	})
}

// Refresh 使用刷新令牌换取新的访问令牌
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	accessToken, err := h.jwtManager.RefreshAccessToken(req.RefreshToken)
	if err != nil {
		Unauthorized(c, MsgTokenInvalid)
		return
	}

	OKData(c, "Token refreshed", gin.H{
		"accessToken": accessToken,
	})
}

// Me 返回当前登录用户信息
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		NotFound(c, GetErrorMessage(err))
		return
	}

	OKData(c, "", gin.H{
		"user": userBody(user),
	})
}

// principalOf 从用户实体构造令牌快照
func principalOf(user *domain.User) jwtpkg.Principal {
	return jwtpkg.Principal{
		UserID:               user.ID,
		Username:             user.Username,
		IsVerified:           user.IsVerified,
		IsAcceptingMessages:  user.IsAcceptingMessages,
		IsSendingAnonymously: user.IsSendingAnonymously,
	}
}

// userBody 构造用户信息的响应载荷
func userBody(user *domain.User) gin.H {
	return gin.H{
		"id":                   user.ID,
		"email":                user.Email,
		"username":             user.Username,
		"isVerified":           user.IsVerified,
		"isAcceptingMessages":  user.IsAcceptingMessages,
		"isSendingAnonymously": user.IsSendingAnonymously,
	}
}

package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/middleware"
	"whisperwall/backend/internal/monitoring"
	"whisperwall/backend/internal/service"
)

// ProfileHandler 处理用户资料与偏好开关相关的 HTTP 请求
type ProfileHandler struct {
	profileService *service.ProfileService
	log            *zap.Logger
}

// NewProfileHandler 创建资料处理器实例
func NewProfileHandler(profileService *service.ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		log:            log,
	}
}

type acceptMessagesRequest struct {
	AcceptMessages *bool `json:"acceptMessages" binding:"required"`
}

type sendAnonymouslyRequest struct {
	SendAnonymously *bool `json:"sendAnonymously" binding:"required"`
}

// GetAcceptMessages 查询当前用户的留言接收开关
func (h *ProfileHandler) GetAcceptMessages(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	OKData(c, "", gin.H{
		"isAcceptingMessages": user.IsAcceptingMessages,
	})
}

// SetAcceptMessages 更新当前用户的留言接收开关
func (h *ProfileHandler) SetAcceptMessages(c *gin.Context) {
	var req acceptMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	user, err := h.profileService.SetAcceptingMessages(userID, *req.AcceptMessages)
	if err != nil {
		h.respondFlagError(c, err, "Error updating message acceptance status")
		return
	}

	OKData(c, "Message acceptance status updated successfully", gin.H{
		"isAcceptingMessages": user.IsAcceptingMessages,
	})
}

// GetSendAnonymously 查询当前用户的匿名发送开关
func (h *ProfileHandler) GetSendAnonymously(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	OKData(c, "", gin.H{
		"sendAnonymously": user.IsSendingAnonymously,
	})
}

// SetSendAnonymously 更新当前用户的匿名发送开关
func (h *ProfileHandler) SetSendAnonymously(c *gin.Context) {
	var req sendAnonymouslyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	user, err := h.profileService.SetSendingAnonymously(userID, *req.SendAnonymously)
	if err != nil {
		h.respondFlagError(c, err, "Error updating anonymous setting")
		return
	}

	OKData(c, "Anonymous setting updated successfully", gin.H{
		"isSendingAnonymously": user.IsSendingAnonymously,
	})
}

// GetUser 按用户名或 ID 查询公开资料
//
// 匿名访问者在发送页面用它确认收件人是否存在、是否接收留言。
func (h *ProfileHandler) GetUser(c *gin.Context) {
	username := c.Query("username")
	userID := c.Query("id")

	if username == "" && userID == "" {
		BadRequest(c, MsgUsernameOrIDRequired)
		return
	}

	var profile *domain.PublicProfile
	var err error
	if userID != "" {
		profile, err = h.profileService.LookupByID(userID)
	} else {
		profile, err = h.profileService.Lookup(username)
	}

	if err != nil {
		switch err {
		case service.ErrInvalidUserID:
			BadRequest(c, MsgInvalidUserID)
		case service.ErrUserNotFound:
			monitoring.ProfileLookups.WithLabelValues("not_found").Inc()
			NotFound(c, GetErrorMessage(err))
		default:
			h.log.Error("failed to fetch user profile", zap.Error(err))
			InternalError(c, MsgInternalError)
		}
		return
	}

	monitoring.ProfileLookups.WithLabelValues("found").Inc()

	OKData(c, "", gin.H{
		"user": profile,
	})
}

// currentUser 读取当前登录用户，失败时写出响应并返回 false
func (h *ProfileHandler) currentUser(c *gin.Context) (*domain.User, bool) {
	userID := c.GetString(middleware.ContextUserID)

	user, err := h.profileService.Get(userID)
	if err != nil {
		if err == service.ErrUserNotFound {
			NotFound(c, GetErrorMessage(err))
		} else {
			h.log.Error("failed to load current user", zap.Error(err))
			InternalError(c, MsgInternalError)
		}
		return nil, false
	}
	return user, true
}

// respondFlagError 输出偏好开关更新失败的响应
func (h *ProfileHandler) respondFlagError(c *gin.Context, err error, fallback string) {
	if err == service.ErrUserNotFound {
		NotFound(c, GetErrorMessage(err))
		return
	}
	h.log.Error("failed to update preference flag", zap.Error(err))
	InternalError(c, fallback)
}

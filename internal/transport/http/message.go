package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/middleware"
	"whisperwall/backend/internal/monitoring"
	"whisperwall/backend/internal/service"
)

// MessageHandler 处理留言相关的 HTTP 请求
type MessageHandler struct {
	messageService *service.MessageService
	log            *zap.Logger
}

// NewMessageHandler 创建留言处理器实例
func NewMessageHandler(messageService *service.MessageService, log *zap.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		log:            log,
	}
}

type sendMessageRequest struct {
	Username    string `json:"username" binding:"required"`
	Content     string `json:"content" binding:"required"`
	IsAnonymous *bool  `json:"isAnonymous"` // 缺省为 true
}

// Send 处理发送留言请求
//
// 默认匿名发送。isAnonymous 为 false 时要求携带有效令牌，
// 留言作者记录为当前登录用户。
func (h *MessageHandler) Send(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	anonymous := true
	if req.IsAnonymous != nil {
		anonymous = *req.IsAnonymous
	}

	authorID := ""
	if !anonymous {
		authorID = c.GetString(middleware.ContextUserID)
		if authorID == "" {
			Unauthorized(c, MsgNotAuthenticated)
			return
		}
	}

	_, err := h.messageService.Send(service.SendInput{
		RecipientUsername: req.Username,
		Content:           req.Content,
		AuthorID:          authorID,
	})
	if err != nil {
		switch err {
		case service.ErrUserNotFound:
			monitoring.MessagesRejected.WithLabelValues("user_not_found").Inc()
			NotFound(c, GetErrorMessage(err))
		case service.ErrNotAcceptingMessages:
			monitoring.MessagesRejected.WithLabelValues("not_accepting").Inc()
			Forbidden(c, GetErrorMessage(err))
		case domain.ErrContentEmpty, domain.ErrContentTooLong:
			monitoring.MessagesRejected.WithLabelValues("invalid_content").Inc()
			BadRequest(c, GetErrorMessage(err))
		default:
			h.log.Error("failed to send message", zap.Error(err))
			InternalError(c, MsgInternalError)
		}
		return
	}

	monitoring.MessagesSent.WithLabelValues(anonymousLabel(anonymous)).Inc()

	Created(c, "Message sent successfully")
}

// List 返回当前用户收到的全部留言（最新在前）
func (h *MessageHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	views, err := h.messageService.List(userID)
	if err != nil {
		switch err {
		case service.ErrUserNotFound:
			NotFound(c, GetErrorMessage(err))
		default:
			h.log.Error("failed to list messages", zap.Error(err))
			InternalError(c, MsgInternalError)
		}
		return
	}

	OKData(c, "", gin.H{
		"messages": views,
	})
}

// Delete 删除当前用户的一条留言
func (h *MessageHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	messageID := c.Param("messageid")

	if err := h.messageService.Delete(userID, messageID); err != nil {
		switch err {
		case service.ErrMessageNotFound, service.ErrUserNotFound:
			NotFound(c, GetErrorMessage(service.ErrMessageNotFound))
		default:
			h.log.Error("failed to delete message", zap.Error(err))
			InternalError(c, "Error deleting message")
		}
		return
	}

	monitoring.MessagesDeleted.Inc()

	OK(c, "Message deleted")
}

func anonymousLabel(anonymous bool) string {
	if anonymous {
		return "anonymous"
	}
	return "identified"
}

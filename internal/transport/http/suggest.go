package httptransport

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisperwall/backend/internal/monitoring"
	"whisperwall/backend/internal/service"
)

// SuggestHandler 处理留言建议相关的 HTTP 请求
type SuggestHandler struct {
	suggestService *service.SuggestService
	log            *zap.Logger
}

// NewSuggestHandler 创建建议处理器实例
func NewSuggestHandler(suggestService *service.SuggestService, log *zap.Logger) *SuggestHandler {
	return &SuggestHandler{
		suggestService: suggestService,
		log:            log,
	}
}

type suggestRequest struct {
	Topic string `json:"topic"`
}

// Suggest 生成一批可直接发送的留言建议
//
// 上游失败时返回 500，前端回退到内置问题列表。
func (h *SuggestHandler) Suggest(c *gin.Context) {
	var req suggestRequest
	// 请求体可选，解析失败按无主题处理
	_ = c.ShouldBindJSON(&req)

	questions, err := h.suggestService.Suggest(c.Request.Context(), req.Topic)
	if err != nil {
		monitoring.SuggestRequests.WithLabelValues("failed").Inc()
		h.log.Warn("failed to generate suggestions", zap.Error(err))
		// 该接口沿用上游代理的 {error} 信封，不走统一信封
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating suggestions"})
		return
	}

	monitoring.SuggestRequests.WithLabelValues("upstream").Inc()

	OKData(c, "", gin.H{
		"questions": strings.Join(questions, "||"),
	})
}

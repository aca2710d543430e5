package httptransport

import (
	"net/http"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisperwall/backend/internal/auth"
	jwtpkg "whisperwall/backend/internal/auth/jwt"
	"whisperwall/backend/internal/config"
	"whisperwall/backend/internal/health"
	"whisperwall/backend/internal/middleware"
	"whisperwall/backend/internal/monitoring"
	"whisperwall/backend/internal/service"
	"whisperwall/backend/internal/websocket"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config         *config.Config
	AuthService    *auth.Service
	MessageService *service.MessageService
	ProfileService *service.ProfileService
	SuggestService *service.SuggestService
	JWTManager     *jwtpkg.Manager
	WebSocketHub   *websocket.Hub // 可选
	HealthChecker  *health.HealthChecker
	Logger         *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	// 使用自定义中间件替代默认中间件
	router.Use(middleware.RecoveryHandler(deps.Logger))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.HTTPMetrics())
	router.Use(middleware.BodySizeLimit(middleware.DefaultBodyLimit))

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	// 创建处理器
	authHandler := NewAuthHandler(deps.AuthService, deps.JWTManager, deps.Logger)
	messageHandler := NewMessageHandler(deps.MessageService, deps.Logger)
	profileHandler := NewProfileHandler(deps.ProfileService, deps.Logger)
	suggestHandler := NewSuggestHandler(deps.SuggestService, deps.Logger)

	// 创建中间件
	jwtAuth := middleware.NewJWTAuth(deps.JWTManager, deps.Logger)
	sendRateLimit := middleware.NewIPRateLimiter(deps.Config.Message.SendRatePerIP, deps.Config.Message.SendRatePerIP)

	// 健康检查与指标
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.HealthChecker != nil {
		router.GET("/health/live", gin.WrapH(deps.HealthChecker.Handler()))
		router.GET("/health/ready", gin.WrapH(deps.HealthChecker.Handler()))
	}
	router.GET("/metrics", gin.WrapH(monitoring.HTTPHandler()))

	api := router.Group("/api")
	{
		// ========== Auth Routes ==========
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/verify-code", authHandler.VerifyCode)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh", authHandler.Refresh)
			authRoutes.GET("/me", jwtAuth.RequireAuth(), authHandler.Me)
		}

		// ========== Public Routes（匿名访问者使用） ==========
		api.GET("/get-user", profileHandler.GetUser)
		api.POST("/send-message",
			sendRateLimit.Middleware("send-message"),
			jwtAuth.OptionalAuth(),
			messageHandler.Send,
		)
		api.POST("/suggest-messages", suggestHandler.Suggest)

		// ========== Owner Routes（需要登录） ==========
		api.GET("/get-messages", jwtAuth.RequireAuth(), messageHandler.List)
		api.DELETE("/delete-message/:messageid", jwtAuth.RequireAuth(), messageHandler.Delete)

		api.GET("/accept-messages", jwtAuth.RequireAuth(), profileHandler.GetAcceptMessages)
		api.POST("/accept-messages", jwtAuth.RequireAuth(), profileHandler.SetAcceptMessages)

		api.GET("/send-anonymously", jwtAuth.RequireAuth(), profileHandler.GetSendAnonymously)
		api.POST("/send-anonymously", jwtAuth.RequireAuth(), profileHandler.SetSendAnonymously)
	}

	// ========== WebSocket Routes ==========
	if deps.WebSocketHub != nil {
		router.GET("/ws", websocket.HandleWebSocket(deps.WebSocketHub))
	}

	return router
}

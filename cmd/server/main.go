package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"whisperwall/backend/internal/auth"
	jwtpkg "whisperwall/backend/internal/auth/jwt"
	"whisperwall/backend/internal/config"
	"whisperwall/backend/internal/health"
	"whisperwall/backend/internal/logger"
	"whisperwall/backend/internal/service"
	"whisperwall/backend/internal/storage"
	"whisperwall/backend/internal/storage/memory"
	"whisperwall/backend/internal/storage/mongo"
	"whisperwall/backend/internal/storage/redis"
	sqlstore "whisperwall/backend/internal/storage/sql"
	httptransport "whisperwall/backend/internal/transport/http"
	"whisperwall/backend/internal/websocket"
)

// main 启动匿名留言板 HTTP 服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.NewLogger(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		LogFile:     "",
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
		Compress:    true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log.Info("starting whisperwall server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化存储层
	store, err := initializeStorage(cfg, log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize storage: %v", err))
	}
	defer store.Close()

	// 初始化 Redis 缓存（可选，连接失败时降级为无缓存运行）
	var cache *redis.Cache
	if cfg.Redis.Address != "" {
		cache, err = redis.NewCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("failed to connect to redis, continuing without profile cache", zap.Error(err))
			cache = nil
		} else {
			log.Info("redis cache initialized", zap.String("address", cfg.Redis.Address))
			defer cache.Close()
		}
	}

	// 初始化认证服务
	authService := auth.NewService(store)
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	log.Info("JWT configuration",
		zap.String("issuer", cfg.JWT.Issuer),
		zap.Duration("access_expiry", cfg.JWT.AccessExpiry),
		zap.Duration("refresh_expiry", cfg.JWT.RefreshExpiry),
	)

	// 初始化服务层
	messageService := service.NewMessageService(store, log, cfg.Message.MaxContentLength)
	profileService := service.NewProfileService(store, log)
	if cache != nil {
		profileService.SetCache(cache, cfg.Message.LookupCacheTTL)
	}
	suggestService := service.NewSuggestService(cfg.Suggest, log)

	// 创建 WebSocket Hub 并挂接新留言通知
	wsHub := websocket.NewHub(cfg.CORS.AllowedOrigins, jwtManager, log)
	messageService.SetNotifier(wsHub)

	// 初始化健康检查
	var cachePinger health.Pinger
	if cache != nil {
		cachePinger = cache
	}
	healthChecker := health.NewHealthChecker(store, cachePinger, log)

	// 创建 HTTP 服务器
	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:         cfg,
		AuthService:    authService,
		MessageService: messageService,
		ProfileService: profileService,
		SuggestService: suggestService,
		JWTManager:     jwtManager,
		WebSocketHub:   wsHub,
		HealthChecker:  healthChecker,
		Logger:         log,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// WebSocket Hub goroutine
	group.Go(func() error {
		log.Info("starting WebSocket hub")
		wsHub.Run(groupCtx)
		return nil
	})

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		log.Info("server stopped")
		return nil
	})

	// 等待所有 goroutine 完成
	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}

// initializeStorage 根据配置选择存储后端
//
// 优先级: MongoDB > 关系型数据库 > 内存存储（开发环境）
func initializeStorage(cfg *config.Config, log *zap.Logger) (storage.Store, error) {
	if cfg.Mongo.URI != "" {
		store, err := mongo.NewStore(cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to create mongo store: %w", err)
		}
		log.Info("using mongodb storage", zap.String("database", cfg.Mongo.Database))
		return store, nil
	}

	if cfg.Database.Type != "" && cfg.Database.DSN != "" {
		store, err := sqlstore.NewStore(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create sql store: %w", err)
		}
		log.Info("using database storage", zap.String("type", cfg.Database.Type))
		return store, nil
	}

	log.Info("using memory storage (development mode)")
	return memory.NewStore(), nil
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"whisperwall/backend/internal/auth"
	"whisperwall/backend/internal/config"
	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/storage"
	"whisperwall/backend/internal/storage/mongo"
	sqlstore "whisperwall/backend/internal/storage/sql"
)

// create-user 直接在配置的存储后端中创建一个已验证用户，
// 跳过验证码流程，用于初始化测试账号。
func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: create-user <email> <username> <password>")
		os.Exit(1)
	}

	email := os.Args[1]
	username := os.Args[2]
	password := os.Args[3]

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	// 验证输入
	if err := domain.ValidateEmail(email); err != nil {
		fmt.Printf("Invalid email: %v\n", err)
		os.Exit(1)
	}
	if err := domain.ValidateUsername(username); err != nil {
		fmt.Printf("Invalid username: %v\n", err)
		os.Exit(1)
	}
	if err := domain.ValidatePassword(password); err != nil {
		fmt.Printf("Invalid password: %v\n", err)
		os.Exit(1)
	}

	// 哈希密码
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		fmt.Printf("Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:                   uuid.New().String(),
		Email:                email,
		Username:             username,
		PasswordHash:         hashedPassword,
		IsVerified:           true,
		IsAcceptingMessages:  true,
		IsSendingAnonymously: true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := store.CreateUser(user); err != nil {
		fmt.Printf("Failed to create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ User created successfully!\n")
	fmt.Printf("  ID:       %s\n", user.ID)
	fmt.Printf("  Email:    %s\n", user.Email)
	fmt.Printf("  Username: %s\n", user.Username)
	fmt.Printf("  Profile:  /u/%s\n", user.Username)
}

// openStore 打开配置的持久化存储后端
//
// 该命令要求真实的存储后端（MongoDB 或关系型数据库），
// 内存存储中创建的用户随进程退出而消失，没有意义。
func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Mongo.URI != "" {
		return mongo.NewStore(cfg.Mongo)
	}

	if cfg.Database.Type != "" && cfg.Database.DSN != "" {
		return sqlstore.NewStore(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
	}

	return nil, fmt.Errorf("no persistent storage configured (set WHISPERWALL_MONGO_URI or WHISPERWALL_DATABASE_TYPE/DSN)")
}

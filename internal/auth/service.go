package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/storage"
)

var (
	// ErrEmailExists 邮箱已存在
	ErrEmailExists = errors.New("email already exists")
	// ErrUsernameExists 用户名已被占用
	ErrUsernameExists = errors.New("username already taken")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials 凭证无效
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotVerified 用户尚未完成邮箱验证
	ErrUserNotVerified = errors.New("user not verified")
	// ErrInvalidVerifyCode 验证码错误
	ErrInvalidVerifyCode = errors.New("invalid verification code")
	// ErrVerifyCodeExpired 验证码已过期
	ErrVerifyCodeExpired = errors.New("verification code expired")
)

// 验证码有效期
const verifyCodeTTL = time.Hour

// Service 认证服务
type Service struct {
	userRepo storage.UserRepository
}

// NewService 创建认证服务
func NewService(userRepo storage.UserRepository) *Service {
	return &Service{
		userRepo: userRepo,
	}
}

// RegisterInput 注册输入
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// LoginInput 登录输入
//
// Identifier 可以是邮箱或用户名。
type LoginInput struct {
	Identifier string
	Password   string
}

// Register 用户注册
//
// 注册成功的用户处于未验证状态，需要使用下发的验证码完成验证
// 后才能登录。已注册但未验证的邮箱允许重新注册，覆盖原记录的
// 密码与验证码。
func (s *Service) Register(input RegisterInput) (*domain.User, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	email := strings.ToLower(input.Email)

	// 用户名被已验证用户占用时拒绝注册
	if existing, err := s.userRepo.GetUserByUsername(input.Username); err == nil && existing.IsVerified {
		return nil, ErrUsernameExists
	}

	code, err := generateVerifyCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	passwordHash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// 同邮箱的未验证用户允许重新注册
	if existing, err := s.userRepo.GetUserByEmail(email); err == nil {
		if existing.IsVerified {
			return nil, ErrEmailExists
		}
		existing.PasswordHash = passwordHash
		existing.VerifyCode = code
		existing.VerifyCodeExpiry = time.Now().Add(verifyCodeTTL)
		if err := s.userRepo.UpdateUser(existing); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		return existing, nil
	}

	user := &domain.User{
		Email:                email,
		Username:             input.Username,
		PasswordHash:         passwordHash,
		IsVerified:           false,
		VerifyCode:           code,
		VerifyCodeExpiry:     time.Now().Add(verifyCodeTTL),
		IsAcceptingMessages:  true,
		IsSendingAnonymously: true,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		switch {
		case errors.Is(err, storage.ErrEmailExists):
			return nil, ErrEmailExists
		case errors.Is(err, storage.ErrUsernameExists):
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// VerifyCode 校验注册验证码
func (s *Service) VerifyCode(username, code string) error {
	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return ErrUserNotFound
	}

	if user.IsVerified {
		return nil
	}
	if time.Now().After(user.VerifyCodeExpiry) {
		return ErrVerifyCodeExpired
	}
	if user.VerifyCode == "" || user.VerifyCode != code {
		return ErrInvalidVerifyCode
	}

	user.IsVerified = true
	user.VerifyCode = ""
	return s.userRepo.UpdateUser(user)
}

// Login 用户登录
//
// 查找顺序：先按邮箱、再按用户名。未找到用户与密码错误返回不同
// 的哨兵错误，未验证的用户不允许登录。
func (s *Service) Login(input LoginInput) (*domain.User, error) {
	identifier := strings.ToLower(input.Identifier)

	user, err := s.userRepo.GetUserByEmail(identifier)
	if err != nil {
		user, err = s.userRepo.GetUserByUsername(identifier)
		if err != nil {
			return nil, ErrUserNotFound
		}
	}

	if !user.IsVerified {
		return nil, ErrUserNotVerified
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	_ = s.userRepo.UpdateLastLogin(user.ID)

	return user, nil
}

// GetUserByID 根据 ID 获取用户
func (s *Service) GetUserByID(userID string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// HashPassword 哈希密码
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword 检查密码是否匹配
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// generateVerifyCode 生成六位数字验证码
func generateVerifyCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

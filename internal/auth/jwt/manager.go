package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken 无效的令牌
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken 令牌已过期
	ErrExpiredToken = errors.New("token expired")
)

// Principal 签发令牌时写入的用户快照
//
// 偏好开关随令牌快照下发，令牌有效期内修改偏好不会反映到
// 已签发的会话里，以换取无状态校验。
type Principal struct {
	UserID               string
	Username             string
	IsVerified           bool
	IsAcceptingMessages  bool
	IsSendingAnonymously bool
}

// Claims JWT 自定义声明
type Claims struct {
	UserID               string `json:"user_id"`
	Username             string `json:"username"`
	IsVerified           bool   `json:"is_verified"`
	IsAcceptingMessages  bool   `json:"is_accepting_messages"`
	IsSendingAnonymously bool   `json:"is_sending_anonymously"`
	jwt.RegisteredClaims
}

// Principal 从声明还原用户快照
func (c *Claims) Principal() Principal {
	return Principal{
		UserID:               c.UserID,
		Username:             c.Username,
		IsVerified:           c.IsVerified,
		IsAcceptingMessages:  c.IsAcceptingMessages,
		IsSendingAnonymously: c.IsSendingAnonymously,
	}
}

// TokenPair 访问令牌和刷新令牌对
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // 秒
}

// Manager JWT 管理器
type Manager struct {
	secret        []byte
	issuer        string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewManager 创建 JWT 管理器
func NewManager(secret, issuer string, accessExpiry, refreshExpiry time.Duration) *Manager {
	return &Manager{
		secret:        []byte(secret),
		issuer:        issuer,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// GenerateTokenPair 生成访问令牌和刷新令牌对
func (m *Manager) GenerateTokenPair(principal Principal) (*TokenPair, error) {
	now := time.Now()

	accessTokenString, err := m.sign(principal, now, m.accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshTokenString, err := m.sign(principal, now, m.refreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(m.accessExpiry.Seconds()),
	}, nil
}

func (m *Manager) sign(principal Principal, now time.Time, expiry time.Duration) (string, error) {
	claims := Claims{
		UserID:               principal.UserID,
		Username:             principal.Username,
		IsVerified:           principal.IsVerified,
		IsAcceptingMessages:  principal.IsAcceptingMessages,
		IsSendingAnonymously: principal.IsSendingAnonymously,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   principal.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken 验证令牌并返回声明
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// RefreshAccessToken 使用刷新令牌生成新的访问令牌
func (m *Manager) RefreshAccessToken(refreshToken string) (string, error) {
	claims, err := m.ValidateToken(refreshToken)
	if err != nil {
		return "", err
	}

	tokenString, err := m.sign(claims.Principal(), time.Now(), m.accessExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

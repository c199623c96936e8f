package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"omninet-lottery/backend/config"
)

const issuer = "omninet-lottery"

var (
	ErrTokenExpired = errors.New("token 已过期")
	ErrTokenInvalid = errors.New("token 无效")
)

// Subject 签发 Token 时携带的用户快照
// 受限运行时仅依赖这些字段识别身份，可能落后于数据库
type Subject struct {
	UserID           string
	Name             string
	Email            string
	Role             string
	IsBlocked        bool
	TwoFactorEnabled bool
	HasWon           bool
}

// Claims 自定义 JWT 声明
type Claims struct {
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	IsBlocked        bool   `json:"is_blocked"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
	HasWon           bool   `json:"has_won"`
	jwtv5.RegisteredClaims
}

// Manager JWT 管理器
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager 创建 JWT 管理器
func NewManager(cfg *config.AuthConfig) *Manager {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL 会话有效期
func (m *Manager) TTL() time.Duration { return m.ttl }

// Generate 签发会话 Token，返回 Token 与过期时间
func (m *Manager) Generate(sub Subject) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := Claims{
		UserID:           sub.UserID,
		Name:             sub.Name,
		Email:            sub.Email,
		Role:             sub.Role,
		IsBlocked:        sub.IsBlocked,
		TwoFactorEnabled: sub.TwoFactorEnabled,
		HasWon:           sub.HasWon,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   sub.UserID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
			Issuer:    issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseToken 解析并验证 Token
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(issuer), jwtv5.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

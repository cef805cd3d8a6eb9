package session

import (
	"errors"
	"strings"
	"time"

	"github.com/mara-shop/internal/config"
	"github.com/mara-shop/internal/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken 会话令牌无效
	ErrInvalidToken = errors.New("invalid cart session token")
	// ErrSecretMissing 未配置签名密钥
	ErrSecretMissing = errors.New("cart session secret is empty")
)

const defaultTTLHours = 720

// Claims 匿名购物车会话声明
type Claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// Manager 匿名购物车会话签发与校验
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewManager 创建会话管理器
func NewManager(cfg config.SessionConfig) (*Manager, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, ErrSecretMissing
	}
	hours := cfg.TTLHours
	if hours <= 0 {
		hours = defaultTTLHours
	}
	return &Manager{
		secret: []byte(secret),
		issuer: strings.TrimSpace(cfg.Issuer),
		ttl:    time.Duration(hours) * time.Hour,
		now:    time.Now,
	}, nil
}

// TTL 令牌有效期
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue 签发新会话，返回令牌、会话标识与过期时间
func (m *Manager) Issue() (string, string, time.Time, error) {
	sessionID := uuid.NewString()
	token, expiresAt, err := m.sign(sessionID)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, sessionID, expiresAt, nil
}

// Parse 校验令牌并返回声明
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid || claims.Kind != constants.CartSessionClaim || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Resolve 解析请求携带的令牌；缺失或无效时签发新会话，剩余有效期不足一半时续签
// 返回会话标识、应回写给客户端的令牌（无需回写时为空）
func (m *Manager) Resolve(tokenString string) (string, string, error) {
	claims, err := m.Parse(tokenString)
	if err != nil {
		token, sessionID, _, issueErr := m.Issue()
		if issueErr != nil {
			return "", "", issueErr
		}
		return sessionID, token, nil
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Sub(m.now()) < m.ttl/2 {
		token, _, err := m.sign(claims.Subject)
		if err != nil {
			return "", "", err
		}
		return claims.Subject, token, nil
	}
	return claims.Subject, "", nil
}

func (m *Manager) sign(sessionID string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		Kind: constants.CartSessionClaim,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

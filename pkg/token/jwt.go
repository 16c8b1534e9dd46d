// Package token 提供了用于生成和验证会话令牌 (JWT) 的功能。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenManager 负责管理会话令牌的生成和验证。
type SessionTokenManager struct {
	secretKey []byte        // 用于签名和验证 token 的密钥
	tokenDur  time.Duration // token 的有效期
}

// SessionClaims 定义了存储在会话令牌中的数据。
// 它嵌入了 jwt.RegisteredClaims 以包含标准的 JWT 声明（如过期时间）。
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// NewSessionTokenManager 创建一个新的 SessionTokenManager 实例。
// secret: 用于签名的密钥字符串；expireHours: token 的过期时间（小时）。
func NewSessionTokenManager(secret string, expireHours int) *SessionTokenManager {
	return &SessionTokenManager{
		secretKey: []byte(secret),
		tokenDur:  time.Hour * time.Duration(expireHours),
	}
}

// GenerateToken 为给定的会话 ID 生成一个新的会话令牌。
func (m *SessionTokenManager) GenerateToken(sessionID string) (string, error) {
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenDur)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken 验证给定的令牌字符串。
// 如果令牌有效，返回 SessionClaims；无效（签名不匹配或已过期）则返回错误。
func (m *SessionTokenManager) VerifyToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

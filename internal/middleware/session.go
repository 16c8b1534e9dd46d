package middleware

import (
	"strings"

	"soul-lifter-go/internal/service"
	"soul-lifter-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// SessionIDKey 是会话 ID 在 Gin 上下文中的存储键。
const SessionIDKey = "sessionID"

// SessionResolver 创建一个 Gin 中间件，用于解析请求所属的会话。
// 会话无需强制认证：优先取 Authorization Bearer 会话令牌，
// 其次取 X-Session-ID 请求头，都没有则落到默认会话，
// 保证未携带任何凭证的客户端仍然可以直接对话。
func SessionResolver(tokenManager *token.SessionTokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(SessionIDKey, resolveSessionID(c, tokenManager))
		c.Next()
	}
}

// resolveSessionID 依次尝试 Bearer 令牌、X-Session-ID 请求头、默认会话。
// 无效或过期的令牌不终止请求，继续尝试下一级来源。
func resolveSessionID(c *gin.Context, tokenManager *token.SessionTokenManager) string {
	const bearerPrefix = "Bearer "
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, bearerPrefix) {
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)
		if claims, err := tokenManager.VerifyToken(tokenString); err == nil {
			return claims.SessionID
		}
	}
	if header := strings.TrimSpace(c.GetHeader("X-Session-ID")); header != "" {
		return header
	}
	return service.DefaultSessionID
}

// SessionID 从 Gin 上下文中读取当前请求的会话 ID。
func SessionID(c *gin.Context) string {
	if v, ok := c.Get(SessionIDKey); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	return service.DefaultSessionID
}

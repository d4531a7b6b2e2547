// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"guideline-tutor-go/pkg/token"
)

// ContextUserIDKey 是身份中间件写入 Gin 上下文的键。
const ContextUserIDKey = "userID"

// Identity 从请求中解析匿名学习者身份并写入上下文。
// 解析顺序：X-User-Id 请求头 → Bearer 会话 token。
// 两者都没有时不中止请求：部分端点允许从请求体的 userId 字段兜底，
// 由各 handler 自行决定缺失身份时是否返回 400。
func Identity(jwtManager *token.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := strings.TrimSpace(c.GetHeader("X-User-Id")); userID != "" {
			c.Set(ContextUserIDKey, userID)
			c.Next()
			return
		}

		const bearerPrefix = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, bearerPrefix) {
			tokenString := strings.TrimPrefix(authHeader, bearerPrefix)
			claims, err := jwtManager.VerifyToken(tokenString)
			if err != nil {
				// 显式携带了 token 却无法验证，直接拒绝而不是静默匿名化
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session token"})
				return
			}
			c.Set(ContextUserIDKey, claims.UserID)
		}

		c.Next()
	}
}

// UserIDFrom 返回上下文中的用户标识，未设置时返回空串。
func UserIDFrom(c *gin.Context) string {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if userID, ok := v.(string); ok {
			return userID
		}
	}
	return ""
}

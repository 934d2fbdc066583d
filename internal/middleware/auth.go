// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"
	"strings"

	"filesearch-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// SessionAuth 创建一个 Gin 中间件，用于会话 JWT 认证。
// 它会从请求头中提取 token，验证其有效性，并将 sessionID 存入 Gin 的上下文中。
func SessionAuth(jwtManager *token.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从 Authorization 请求头中获取 token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请求未包含授权头"})
			return
		}

		// Token 以 "Bearer <token>" 的形式提供
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效的授权头格式"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效或已过期的 token"})
			return
		}

		// 会话 ID 供后续处理函数使用
		c.Set("sessionID", claims.SessionID)
		c.Next()
	}
}

// SessionIDFromContext 从 Gin 上下文中取出认证中间件写入的会话 ID。
func SessionIDFromContext(c *gin.Context) string {
	return c.GetString("sessionID")
}

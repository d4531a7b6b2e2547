package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"guideline-tutor-go/pkg/log"
)

// RequestLogger 是一个 Gin 中间件，用于记录每个请求的访问日志。
// 请求体可能包含整份上传的文档或完整对话，所以只记录元信息，不记录 body。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		latency := time.Since(startTime)
		log.Infow("HTTP Request Log",
			"statusCode", c.Writer.Status(),
			"latency", latency.String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"userID", UserIDFrom(c),
		)
	}
}

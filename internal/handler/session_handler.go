package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"guideline-tutor-go/pkg/log"
	"guideline-tutor-go/pkg/token"
)

// SessionHandler 负责匿名学习会话的签发。
type SessionHandler struct {
	jwtManager *token.JWTManager
}

// NewSessionHandler 创建一个新的 SessionHandler 实例。
func NewSessionHandler(jwtManager *token.JWTManager) *SessionHandler {
	return &SessionHandler{jwtManager: jwtManager}
}

// CreateSession 为匿名学习者生成一个新的用户标识和会话 token。
// 不需要注册：标识是随机的，token 只把它固定在后续请求里。
func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID := token.NewSessionID()
	sessionToken, err := h.jwtManager.GenerateSessionToken(userID)
	if err != nil {
		log.Errorf("CreateSession: 签发会话 token 失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create a session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId": userID,
		"token":  sessionToken,
	})
}

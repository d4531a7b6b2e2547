package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"guideline-tutor-go/internal/middleware"
	"guideline-tutor-go/internal/repository"
	"guideline-tutor-go/pkg/log"
)

// ConversationHandler 负责对话记录的回放接口。
type ConversationHandler struct {
	conversationRepo repository.ConversationRepository // 可为 nil（未配置 Redis 时）
}

// NewConversationHandler 创建一个新的 ConversationHandler 实例。
func NewConversationHandler(conversationRepo repository.ConversationRepository) *ConversationHandler {
	return &ConversationHandler{conversationRepo: conversationRepo}
}

// GetConversation 返回该用户最近的问答记录。
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	userID := middleware.UserIDFrom(c)
	if userID == "" {
		userID = c.Query("userId")
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user identity: supply X-User-Id, a session token, or a userId query parameter"})
		return
	}

	if h.conversationRepo == nil {
		c.JSON(http.StatusOK, gin.H{"messages": []any{}})
		return
	}

	messages, err := h.conversationRepo.GetHistory(c.Request.Context(), userID)
	if err != nil {
		log.Errorf("GetConversation: 查询对话记录失败, userID: %s, error: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load the conversation history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

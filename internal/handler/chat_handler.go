package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"guideline-tutor-go/internal/middleware"
	"guideline-tutor-go/internal/model"
	"guideline-tutor-go/internal/service"
	"guideline-tutor-go/pkg/llm"
	"guideline-tutor-go/pkg/log"
)

// ChatHandler 负责导师问答接口。
type ChatHandler struct {
	tutorService service.TutorService
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(tutorService service.TutorService) *ChatHandler {
	return &ChatHandler{tutorService: tutorService}
}

// ChatRequest 定义了 /chat 的请求体结构。
type ChatRequest struct {
	UserID   string              `json:"userId"`
	Messages []model.ChatMessage `json:"messages" binding:"required"`
	Mode     string              `json:"mode"`
}

// Chat 执行一轮检索增强的导师问答。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: a non-empty messages array is required"})
		return
	}

	userID := resolveUserID(c, req.UserID)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user identity: supply X-User-Id, a session token, or a userId field"})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages must contain at least one message"})
		return
	}

	reply, err := h.tutorService.Chat(c.Request.Context(), userID, req.Messages, req.Mode)
	if err != nil {
		respondServiceError(c, "Chat", userID, err)
		return
	}

	// reply 是完整的消息对象 {role, content}，不是裸字符串
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// resolveUserID 在中间件解析结果之外接受请求体兜底的 userId。
func resolveUserID(c *gin.Context, bodyUserID string) string {
	if userID := middleware.UserIDFrom(c); userID != "" {
		return userID
	}
	return bodyUserID
}

// respondServiceError 按统一的错误分类映射 HTTP 状态码：
// 未上传文档 → 400，LLM 未配置 → 503，其余上游失败 → 500（不泄露细节）。
func respondServiceError(c *gin.Context, op, userID string, err error) {
	switch {
	case errors.Is(err, service.ErrNoKnowledge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no documents found for this user: upload PDFs first"})
	case errors.Is(err, llm.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "the language model is not configured on this server"})
	default:
		log.Errorf("%s: 上游调用失败, userID: %s, error: %v", op, userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an internal error occurred while processing the request"})
	}
}

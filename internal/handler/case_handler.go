package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"guideline-tutor-go/internal/model"
	"guideline-tutor-go/internal/service"
)

// 未携带难度时的起始等级。
const defaultDifficulty = 3

// CaseHandler 负责病例生成与决策评估接口。
type CaseHandler struct {
	caseService service.CaseService
}

// NewCaseHandler 创建一个新的 CaseHandler 实例。
func NewCaseHandler(caseService service.CaseService) *CaseHandler {
	return &CaseHandler{caseService: caseService}
}

// GenerateCaseRequest 定义了 /generate-case 的请求体结构。
type GenerateCaseRequest struct {
	UserID string `json:"userId"`
}

// GenerateCase 基于该用户的知识库生成一段自由文本病例。
func (h *CaseHandler) GenerateCase(c *gin.Context) {
	var req GenerateCaseRequest
	// 请求体可以整个省略，身份也可能只来自请求头
	_ = c.ShouldBindJSON(&req)

	userID := resolveUserID(c, req.UserID)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user identity: supply X-User-Id, a session token, or a userId field"})
		return
	}

	vignette, err := h.caseService.GenerateVignette(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, "GenerateCase", userID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"case": vignette})
}

// GenerateAdaptiveCaseRequest 定义了 /generate-adaptive-case 的请求体结构。
type GenerateAdaptiveCaseRequest struct {
	UserID             string                    `json:"userId"`
	DifficultyLevel    *int                      `json:"difficultyLevel"`
	PerformanceHistory []model.PerformanceRecord `json:"performanceHistory"`
}

// GenerateAdaptiveCase 先由成绩历史调节难度，再生成结构化多步病例。
// 请求体未携带历史时，回退到该用户持久化的成绩记录。
func (h *CaseHandler) GenerateAdaptiveCase(c *gin.Context) {
	var req GenerateAdaptiveCaseRequest
	_ = c.ShouldBindJSON(&req)

	userID := resolveUserID(c, req.UserID)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user identity: supply X-User-Id, a session token, or a userId field"})
		return
	}

	current := defaultDifficulty
	if req.DifficultyLevel != nil {
		current = *req.DifficultyLevel
	}
	history := req.PerformanceHistory
	if len(history) == 0 {
		history = h.caseService.LoadHistory(userID)
	}

	adaptiveCase, level, err := h.caseService.GenerateAdaptiveCase(c.Request.Context(), userID, current, history)
	if err != nil {
		respondServiceError(c, "GenerateAdaptiveCase", userID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"case":            adaptiveCase,
		"difficultyLevel": level,
	})
}

// EvaluateDecisionRequest 定义了 /evaluate-decision 的请求体结构。
type EvaluateDecisionRequest struct {
	UserID     string `json:"userId"`
	StepNumber int    `json:"stepNumber" binding:"required"`
	Decision   string `json:"decision" binding:"required"`
	Reasoning  string `json:"reasoning"`
	CaseData   struct {
		DifficultyLevel int              `json:"difficultyLevel"`
		Steps           []model.CaseStep `json:"steps"`
	} `json:"caseData" binding:"required"`
}

// EvaluateDecision 对学习者在某一步的决策做结构化评估。
func (h *CaseHandler) EvaluateDecision(c *gin.Context) {
	var req EvaluateDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: stepNumber, decision and caseData are required"})
		return
	}

	userID := resolveUserID(c, req.UserID)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user identity: supply X-User-Id, a session token, or a userId field"})
		return
	}

	step, ok := findStep(req.CaseData.Steps, req.StepNumber)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stepNumber does not match any step in caseData"})
		return
	}

	decision := model.StepDecision{
		StepNumber: req.StepNumber,
		Decision:   req.Decision,
		Reasoning:  req.Reasoning,
	}
	evaluation, err := h.caseService.EvaluateDecision(c.Request.Context(), userID, step, decision, req.CaseData.DifficultyLevel)
	if err != nil {
		respondServiceError(c, "EvaluateDecision", userID, err)
		return
	}

	c.JSON(http.StatusOK, evaluation)
}

func findStep(steps []model.CaseStep, stepNumber int) (model.CaseStep, bool) {
	for _, s := range steps {
		if s.StepNumber == stepNumber {
			return s, true
		}
	}
	return model.CaseStep{}, false
}

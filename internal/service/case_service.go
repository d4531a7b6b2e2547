package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"guideline-tutor-go/internal/config"
	"guideline-tutor-go/internal/model"
	"guideline-tutor-go/internal/repository"
	"guideline-tutor-go/pkg/llm"
	"guideline-tutor-go/pkg/log"
)

// 病例生成时从知识库采样的分块上限。
const (
	vignetteSampleLimit = 10
	adaptiveSampleLimit = 15
)

// 病例生成用较高温度保持叙事多样性，评估用低温度保证稳定。
const (
	caseTemperature = 0.7
	evalTemperature = 0.3
)

// CaseService 定义了病例生成与决策评估。
type CaseService interface {
	// GenerateVignette 生成一段自由文本的患者病例。
	GenerateVignette(ctx context.Context, userID string) (string, error)
	// GenerateAdaptiveCase 先根据成绩历史计算难度，再生成结构化多步病例。
	GenerateAdaptiveCase(ctx context.Context, userID string, current int, history []model.PerformanceRecord) (*model.AdaptiveCase, int, error)
	// EvaluateDecision 对学习者的某一步决策做结构化评估，并（尽力而为地）记录成绩。
	EvaluateDecision(ctx context.Context, userID string, step model.CaseStep, decision model.StepDecision, difficulty int) (*model.StepEvaluation, error)
	// LoadHistory 返回该用户持久化的成绩历史（未配置 MySQL 时为空）。
	LoadHistory(userID string) []model.PerformanceRecord
}

type caseService struct {
	retrievalService RetrievalService
	llmClient        llm.Client
	performanceRepo  repository.PerformanceRepository // 可为 nil（未配置 MySQL 时）
	ragCfg           config.RAGConfig
}

// NewCaseService 创建一个新的 CaseService 实例。
func NewCaseService(
	retrievalService RetrievalService,
	llmClient llm.Client,
	performanceRepo repository.PerformanceRepository,
	ragCfg config.RAGConfig,
) CaseService {
	return &caseService{
		retrievalService: retrievalService,
		llmClient:        llmClient,
		performanceRepo:  performanceRepo,
		ragCfg:           ragCfg,
	}
}

func (s *caseService) GenerateVignette(ctx context.Context, userID string) (string, error) {
	if !s.llmClient.Configured() {
		return "", llm.ErrNotConfigured
	}
	entry, err := s.retrievalService.Entry(ctx, userID)
	if err != nil {
		return "", err
	}

	sample := sampleChunks(entry.Chunks, vignetteSampleLimit)
	prompt := []llm.Message{
		{Role: "system", Content: systemPersona},
		{Role: "system", Content: buildContextMessage(sample)},
		{Role: "user", Content: "Write one realistic patient vignette that can be managed " +
			"using only the reference excerpts above. Present it as a clinical encounter " +
			"ending with an open question to the learner about the next step. " +
			"Do not reveal the diagnosis or the recommended management."},
	}

	temp := caseTemperature
	vignette, err := s.llmClient.Chat(ctx, prompt, &llm.GenerationParams{Temperature: &temp})
	if err != nil {
		return "", fmt.Errorf("case generation failed: %w", err)
	}
	return vignette, nil
}

func (s *caseService) GenerateAdaptiveCase(ctx context.Context, userID string, current int, history []model.PerformanceRecord) (*model.AdaptiveCase, int, error) {
	if !s.llmClient.Configured() {
		return nil, 0, llm.ErrNotConfigured
	}
	entry, err := s.retrievalService.Entry(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	level := NextDifficulty(current, history)
	profile := ProfileFor(level)
	sample := sampleChunks(entry.Chunks, adaptiveSampleLimit)

	instruction := fmt.Sprintf(`Create a structured clinical case grounded strictly in the `+
		`reference excerpts above.

Difficulty level %d (%s): %s

Return a single JSON object with exactly this shape:
{
  "difficultyLevel": %d,
  "steps": [
    {
      "stepNumber": 1,
      "title": "...",
      "content": "clinical information revealed at this step",
      "decisionPrompt": "the question the learner must answer",
      "expectedConsiderations": ["...", "..."]
    }
  ],
  "correctApproach": "the overall recommended approach per the excerpts",
  "keyLearningPoints": ["...", "..."]
}

The "steps" array must contain exactly %d steps that unfold in chronological order.`,
		level, profile.Label, profile.Description, level, profile.StepCount)

	prompt := []llm.Message{
		{Role: "system", Content: systemPersona},
		{Role: "system", Content: buildContextMessage(sample)},
		{Role: "user", Content: instruction},
	}

	temp := caseTemperature
	var adaptiveCase model.AdaptiveCase
	if err := s.llmClient.ChatJSON(ctx, prompt, &llm.GenerationParams{Temperature: &temp}, &adaptiveCase); err != nil {
		return nil, 0, fmt.Errorf("adaptive case generation failed: %w", err)
	}
	if len(adaptiveCase.Steps) == 0 {
		return nil, 0, fmt.Errorf("adaptive case generation returned no steps")
	}

	// 难度与步骤编号以服务端为准，模型输出仅供参考
	adaptiveCase.DifficultyLevel = level
	for i := range adaptiveCase.Steps {
		adaptiveCase.Steps[i].StepNumber = i + 1
	}
	if len(adaptiveCase.Steps) != profile.StepCount {
		log.Warnf("[CaseService] 模型返回 %d 步, 难度 %d 要求 %d 步", len(adaptiveCase.Steps), level, profile.StepCount)
	}

	return &adaptiveCase, level, nil
}

func (s *caseService) EvaluateDecision(ctx context.Context, userID string, step model.CaseStep, decision model.StepDecision, difficulty int) (*model.StepEvaluation, error) {
	if !s.llmClient.Configured() {
		return nil, llm.ErrNotConfigured
	}

	// 检索键：决策 + 理由 + 步骤内容
	query := strings.TrimSpace(decision.Decision + " " + decision.Reasoning + " " + step.Content)
	chunks, err := s.retrievalService.Retrieve(ctx, userID, query, s.ragCfg.EvalTopKOrDefault())
	if err != nil {
		return nil, err
	}

	instruction := fmt.Sprintf(`Evaluate the learner's decision for this case step against the `+
		`reference excerpts above.

Step %d: %s
Situation: %s
Question put to the learner: %s
Expected considerations: %s

Learner's decision: %s
Learner's reasoning: %s

Return a single JSON object with exactly this shape:
{
  "score": 0.0,
  "isAppropriate": false,
  "feedback": "...",
  "strengths": ["..."],
  "gaps": ["..."],
  "canProceed": false
}

"score" is between 0.0 and 1.0. "canProceed" is true only when the decision is safe enough `+
		`to move the case forward. Ground every point of feedback in the excerpts.`,
		step.StepNumber, step.Title, step.Content, step.DecisionPrompt,
		strings.Join(step.ExpectedConsiderations, "; "),
		decision.Decision, decision.Reasoning)

	prompt := []llm.Message{
		{Role: "system", Content: systemPersona},
		{Role: "system", Content: buildContextMessage(chunkTexts(chunks))},
		{Role: "user", Content: instruction},
	}

	temp := evalTemperature
	var evaluation model.StepEvaluation
	if err := s.llmClient.ChatJSON(ctx, prompt, &llm.GenerationParams{Temperature: &temp}, &evaluation); err != nil {
		return nil, fmt.Errorf("decision evaluation failed: %w", err)
	}
	evaluation.Score = clampScore(evaluation.Score)

	// 成绩入库失败不影响本次评估结果
	if s.performanceRepo != nil {
		record := &model.PerformanceRecord{
			UserID:     userID,
			Score:      evaluation.Score,
			Difficulty: clampDifficulty(difficulty),
			Date:       time.Now(),
		}
		if err := s.performanceRepo.Create(record); err != nil {
			log.Errorf("保存成绩记录失败: %v", err)
		}
	}

	return &evaluation, nil
}

func (s *caseService) LoadHistory(userID string) []model.PerformanceRecord {
	if s.performanceRepo == nil {
		return nil
	}
	records, err := s.performanceRepo.FindRecentByUser(userID, 5)
	if err != nil {
		log.Errorf("查询成绩历史失败: %v", err)
		return nil
	}
	return records
}

// sampleChunks 等距采样至多 limit 个分块，覆盖整份文档而非只取开头。
func sampleChunks(chunks []string, limit int) []string {
	if len(chunks) <= limit {
		return chunks
	}
	sample := make([]string, 0, limit)
	stride := float64(len(chunks)) / float64(limit)
	for i := 0; i < limit; i++ {
		sample = append(sample, chunks[int(float64(i)*stride)])
	}
	return sample
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"guideline-tutor-go/internal/config"
	"guideline-tutor-go/internal/model"
	"guideline-tutor-go/internal/repository"
	"guideline-tutor-go/internal/retrieval"
	"guideline-tutor-go/pkg/llm"
	"guideline-tutor-go/pkg/log"
)

// systemPersona 建立导师人设与硬约束：只依据给定资料、拒绝编造、声明非临床用途。
const systemPersona = `You are a Socratic medical-education tutor. You help learners reason ` +
	`through clinical guidelines they have uploaded.

Hard rules:
- Base every statement strictly on the reference excerpts supplied in this conversation. ` +
	`Never rely on outside knowledge, and never fabricate facts, doses or recommendations.
- If the excerpts do not cover the topic, say so plainly and ask the learner what they ` +
	`would look up, rather than guessing.
- This is an educational exercise, not clinical advice. Do not present your output as ` +
	`guidance for real patient care.`

// noContextText 是上下文为空时的固定文案，属于对外契约的一部分。
const noContextText = "No relevant context found in the uploaded documents for this question."

const questionsModeInstruction = `Mode: Socratic questioning. Do NOT give direct answers, ` +
	`recommendations or conclusions. Respond with probing questions that expose the learner's ` +
	`reasoning, point them at the relevant part of the excerpts, and let them reach the answer ` +
	`themselves. If the excerpts are insufficient, acknowledge the uncertainty and ask what ` +
	`additional information would be needed.`

const feedbackModeInstruction = `Mode: structured feedback. Critique the learner's latest ` +
	`statement against the excerpts. Structure your reply as: (1) what was correct, ` +
	`(2) what was missing or wrong, (3) what to review in the source material. ` +
	`Quote or reference the excerpt that supports each point.`

// chatTemperature 偏向确定性与忠实度而非创造性。
const chatTemperature = 0.3

// TutorService 定义了基于检索上下文的导师问答。
type TutorService interface {
	Chat(ctx context.Context, userID string, messages []model.ChatMessage, mode string) (model.ChatMessage, error)
}

type tutorService struct {
	retrievalService RetrievalService
	llmClient        llm.Client
	conversationRepo repository.ConversationRepository // 可为 nil（未配置 Redis 时）
	ragCfg           config.RAGConfig
}

// NewTutorService 创建一个新的 TutorService 实例。
func NewTutorService(
	retrievalService RetrievalService,
	llmClient llm.Client,
	conversationRepo repository.ConversationRepository,
	ragCfg config.RAGConfig,
) TutorService {
	return &tutorService{
		retrievalService: retrievalService,
		llmClient:        llmClient,
		conversationRepo: conversationRepo,
		ragCfg:           ragCfg,
	}
}

// Chat 执行一轮 RAG 问答：检索 → 装配提示词 → 单次补全。
// 上游失败原样上抛，不做重试，也不做静默降级。
func (s *tutorService) Chat(ctx context.Context, userID string, messages []model.ChatMessage, mode string) (model.ChatMessage, error) {
	if !s.llmClient.Configured() {
		return model.ChatMessage{}, llm.ErrNotConfigured
	}

	query := latestUserQuery(messages)
	chunks, err := s.retrievalService.Retrieve(ctx, userID, query, s.ragCfg.ChatTopKOrDefault())
	if err != nil {
		return model.ChatMessage{}, err
	}

	prompt := assemblePrompt(chunkTexts(chunks), messages, mode)

	temp := chatTemperature
	content, err := s.llmClient.Chat(ctx, prompt, &llm.GenerationParams{Temperature: &temp})
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("llm completion failed: %w", err)
	}

	reply := model.ChatMessage{Role: "assistant", Content: content, Timestamp: time.Now()}

	// 对话记录仅用于回放，保存失败只记日志
	if s.conversationRepo != nil && query != "" {
		question := model.ChatMessage{Role: "user", Content: query, Timestamp: time.Now()}
		if err := s.conversationRepo.AppendExchange(context.Background(), userID, question, reply); err != nil {
			log.Errorf("保存对话记录失败: %v", err)
		}
	}

	return reply, nil
}

// assemblePrompt 装配发送给模型的有序消息列表：
// 人设与硬约束 → 上下文 → 模式指令 → 原样追加完整对话。
func assemblePrompt(contextChunks []string, transcript []model.ChatMessage, mode string) []llm.Message {
	prompt := make([]llm.Message, 0, len(transcript)+3)
	prompt = append(prompt, llm.Message{Role: "system", Content: systemPersona})
	prompt = append(prompt, llm.Message{Role: "system", Content: buildContextMessage(contextChunks)})
	prompt = append(prompt, llm.Message{Role: "system", Content: modeInstruction(mode)})
	for _, m := range transcript {
		prompt = append(prompt, llm.Message{Role: m.Role, Content: m.Content})
	}
	return prompt
}

// buildContextMessage 将检索到的分块编号拼接；为空时必须给出固定的"无上下文"文案。
func buildContextMessage(chunks []string) string {
	var b strings.Builder
	b.WriteString("Reference excerpts from the learner's uploaded guideline documents:\n\n")
	if len(chunks) == 0 {
		b.WriteString(noContextText)
		return b.String()
	}
	for i, chunk := range chunks {
		b.WriteString(fmt.Sprintf("[%d] %s\n\n", i+1, chunk))
	}
	return b.String()
}

func modeInstruction(mode string) string {
	if mode == model.ChatModeFeedback {
		return feedbackModeInstruction
	}
	return questionsModeInstruction
}

// latestUserQuery 取对话中最后一条 user 消息作为检索查询。
func latestUserQuery(messages []model.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

func chunkTexts(ranked []retrieval.RankedChunk) []string {
	texts := make([]string, 0, len(ranked))
	for _, rc := range ranked {
		texts = append(texts, rc.Text)
	}
	return texts
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"guideline-tutor-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// ConversationRepository 定义了对话记录的操作接口。
// 记录仅用于回放展示，/chat 的提示词装配使用请求体携带的完整对话。
type ConversationRepository interface {
	GetHistory(ctx context.Context, userID string) ([]model.ChatMessage, error)
	AppendExchange(ctx context.Context, userID string, question, answer model.ChatMessage) error
}

type redisConversationRepository struct {
	redisClient *redis.Client
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(redisClient *redis.Client) ConversationRepository {
	return &redisConversationRepository{redisClient: redisClient}
}

func conversationKey(userID string) string {
	return fmt.Sprintf("conversation:%s", userID)
}

// GetHistory 从 Redis 获取对话历史记录。
func (r *redisConversationRepository) GetHistory(ctx context.Context, userID string) ([]model.ChatMessage, error) {
	jsonData, err := r.redisClient.Get(ctx, conversationKey(userID)).Result()
	if err == redis.Nil {
		return []model.ChatMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	var messages []model.ChatMessage
	if err := json.Unmarshal([]byte(jsonData), &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation history: %w", err)
	}
	return messages, nil
}

// AppendExchange 追加一轮问答并回写 Redis，保留最近 40 条。
func (r *redisConversationRepository) AppendExchange(ctx context.Context, userID string, question, answer model.ChatMessage) error {
	history, err := r.GetHistory(ctx, userID)
	if err != nil {
		return err
	}
	history = append(history, question, answer)
	if len(history) > 40 {
		history = history[len(history)-40:]
	}
	jsonData, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation history: %w", err)
	}
	if err := r.redisClient.Set(ctx, conversationKey(userID), jsonData, 7*24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to set conversation history: %w", err)
	}
	return nil
}

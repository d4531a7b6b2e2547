package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"guideline-tutor-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// knowledgeTTL 与会话令牌有效期对齐。
const knowledgeTTL = 7 * 24 * time.Hour

type redisKnowledgeRepository struct {
	redisClient *redis.Client
}

// NewRedisKnowledgeRepository 创建 Redis 版的知识库实现。
// 整个条目序列化为单个 JSON 值，SET 覆盖写即整体替换，与内存实现语义一致，
// 区别仅在于条目可以在多个进程实例间共享。
func NewRedisKnowledgeRepository(redisClient *redis.Client) KnowledgeRepository {
	return &redisKnowledgeRepository{redisClient: redisClient}
}

func knowledgeKey(userID string) string {
	return fmt.Sprintf("knowledge:%s", userID)
}

func (r *redisKnowledgeRepository) Get(ctx context.Context, userID string) (*model.KnowledgeEntry, error) {
	jsonData, err := r.redisClient.Get(ctx, knowledgeKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get knowledge entry: %w", err)
	}
	var entry model.KnowledgeEntry
	if err := json.Unmarshal([]byte(jsonData), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal knowledge entry: %w", err)
	}
	return &entry, nil
}

func (r *redisKnowledgeRepository) Put(ctx context.Context, userID string, entry *model.KnowledgeEntry) error {
	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal knowledge entry: %w", err)
	}
	if err := r.redisClient.Set(ctx, knowledgeKey(userID), jsonData, knowledgeTTL).Err(); err != nil {
		return fmt.Errorf("failed to set knowledge entry: %w", err)
	}
	return nil
}

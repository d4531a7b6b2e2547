// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"sync"

	"guideline-tutor-go/internal/model"
)

// KnowledgeRepository 定义了按用户划分的知识库存取接口。
// 每次 Put 对该用户的条目做整体替换（不做增量合并），
// 因此并发读写同一用户最多读到旧值或新值，不会读到撕裂的混合体。
type KnowledgeRepository interface {
	// Get 返回该用户的知识条目；不存在时返回 (nil, nil)。
	Get(ctx context.Context, userID string) (*model.KnowledgeEntry, error)
	// Put 整体替换该用户的知识条目。
	Put(ctx context.Context, userID string, entry *model.KnowledgeEntry) error
}

type memoryKnowledgeRepository struct {
	mu      sync.RWMutex
	entries map[string]*model.KnowledgeEntry
}

// NewMemoryKnowledgeRepository 创建进程内的知识库实现。
// 数据生命周期与进程一致，重启即清空；这是有意的原型简化。
func NewMemoryKnowledgeRepository() KnowledgeRepository {
	return &memoryKnowledgeRepository{
		entries: make(map[string]*model.KnowledgeEntry),
	}
}

func (r *memoryKnowledgeRepository) Get(_ context.Context, userID string) (*model.KnowledgeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[userID], nil
}

func (r *memoryKnowledgeRepository) Put(_ context.Context, userID string, entry *model.KnowledgeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// 指针整体替换，读方要么看到旧条目要么看到新条目
	r.entries[userID] = entry
	return nil
}

package service

import (
	"context"

	"guideline-tutor-go/internal/model"
	"guideline-tutor-go/internal/repository"
	"guideline-tutor-go/internal/retrieval"
	"guideline-tutor-go/pkg/embedding"
	"guideline-tutor-go/pkg/log"
)

// 检索兜底：过滤后无正分结果时退回存储顺序的前 3 块。
const fallbackChunkCount = 3

// RetrievalService 封装"取条目 → 选策略 → 排序 → 截断"的检索流程，
// 供问答与病例评估共用。
type RetrievalService interface {
	// Retrieve 返回与 query 最相关的至多 topK 条分块。
	// 该用户没有任何知识时返回 ErrNoKnowledge。
	Retrieve(ctx context.Context, userID, query string, topK int) ([]retrieval.RankedChunk, error)
	// Entry 返回该用户的知识条目，没有时返回 ErrNoKnowledge。
	Entry(ctx context.Context, userID string) (*model.KnowledgeEntry, error)
}

type retrievalService struct {
	knowledgeRepo repository.KnowledgeRepository
	cosineRanker  retrieval.Ranker
	keywordRanker retrieval.Ranker
}

// NewRetrievalService 创建一个新的 RetrievalService 实例。
func NewRetrievalService(knowledgeRepo repository.KnowledgeRepository, embeddingClient embedding.Client) RetrievalService {
	return &retrievalService{
		knowledgeRepo: knowledgeRepo,
		cosineRanker:  retrieval.NewCosineRanker(embeddingClient),
		keywordRanker: retrieval.NewKeywordRanker(),
	}
}

func (s *retrievalService) Entry(ctx context.Context, userID string) (*model.KnowledgeEntry, error) {
	entry, err := s.knowledgeRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entry.Empty() {
		return nil, ErrNoKnowledge
	}
	return entry, nil
}

func (s *retrievalService) Retrieve(ctx context.Context, userID, query string, topK int) ([]retrieval.RankedChunk, error) {
	entry, err := s.Entry(ctx, userID)
	if err != nil {
		return nil, err
	}

	ranker := retrieval.Select(entry, s.cosineRanker, s.keywordRanker)
	ranked, err := ranker.Rank(ctx, query, entry)
	if err != nil {
		// 查询期的向量化失败向上传播，由端点返回 500
		return nil, err
	}

	relevant := retrieval.TopRelevant(ranked, entry, topK, fallbackChunkCount)
	log.Infof("[Retrieval] userID: %s, topK: %d, 命中 %d 块 (向量检索: %v)",
		userID, topK, len(relevant), entry.HasVectors())
	return relevant, nil
}

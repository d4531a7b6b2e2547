package retrieval

import (
	"context"
	"fmt"
	"sort"

	"guideline-tutor-go/internal/model"
	"guideline-tutor-go/pkg/embedding"
)

// RankedChunk 是一条带相关性得分的分块。
type RankedChunk struct {
	Text  string  `json:"text"`
	Index int     `json:"index"` // 存储顺序下标
	Score float64 `json:"score"`
}

// Ranker 对某个用户的全部知识按与查询的相关性排序。
// 两个实现（向量余弦 / 关键词计数）互为备选，由向量是否存在决定。
type Ranker interface {
	Rank(ctx context.Context, query string, entry *model.KnowledgeEntry) ([]RankedChunk, error)
}

// NewCosineRanker 创建基于查询向量化与余弦相似度的排序器。
func NewCosineRanker(embeddingClient embedding.Client) Ranker {
	return &cosineRanker{embeddingClient: embeddingClient}
}

type cosineRanker struct {
	embeddingClient embedding.Client
}

func (r *cosineRanker) Rank(ctx context.Context, query string, entry *model.KnowledgeEntry) ([]RankedChunk, error) {
	vectors, err := r.embeddingClient.CreateEmbeddings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to create query embedding: %w", err)
	}
	queryVector := vectors[0]

	ranked := make([]RankedChunk, 0, len(entry.Chunks))
	for i, chunk := range entry.Chunks {
		ranked = append(ranked, RankedChunk{
			Text:  chunk,
			Index: i,
			Score: CosineSimilarity(queryVector, entry.Vectors[i]),
		})
	}
	sortByScoreDesc(ranked)
	return ranked, nil
}

// NewKeywordRanker 创建基于关键词出现次数的排序器（无向量时的兜底策略）。
func NewKeywordRanker() Ranker {
	return &keywordRanker{}
}

type keywordRanker struct{}

func (r *keywordRanker) Rank(_ context.Context, query string, entry *model.KnowledgeEntry) ([]RankedChunk, error) {
	ranked := make([]RankedChunk, 0, len(entry.Chunks))
	for i, chunk := range entry.Chunks {
		ranked = append(ranked, RankedChunk{
			Text:  chunk,
			Index: i,
			Score: keywordScore(query, chunk),
		})
	}
	sortByScoreDesc(ranked)
	return ranked, nil
}

// Select 按向量可用性选择排序策略。
func Select(entry *model.KnowledgeEntry, cosine, keyword Ranker) Ranker {
	if entry.HasVectors() {
		return cosine
	}
	return keyword
}

// TopRelevant 取排序结果的前 topK 条且得分严格为正的分块。
// 过滤后为空时，回退为存储顺序的前 fallbackCount 条，保证提示词装配总有上下文可用。
func TopRelevant(ranked []RankedChunk, entry *model.KnowledgeEntry, topK, fallbackCount int) []RankedChunk {
	if topK > len(ranked) {
		topK = len(ranked)
	}
	relevant := make([]RankedChunk, 0, topK)
	for _, rc := range ranked[:topK] {
		if rc.Score > 0 {
			relevant = append(relevant, rc)
		}
	}
	if len(relevant) > 0 {
		return relevant
	}

	if fallbackCount > len(entry.Chunks) {
		fallbackCount = len(entry.Chunks)
	}
	fallback := make([]RankedChunk, 0, fallbackCount)
	for i := 0; i < fallbackCount; i++ {
		fallback = append(fallback, RankedChunk{Text: entry.Chunks[i], Index: i, Score: 0})
	}
	return fallback
}

// sortByScoreDesc 按得分降序排序，得分相同时保持存储顺序。
func sortByScoreDesc(ranked []RankedChunk) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
}

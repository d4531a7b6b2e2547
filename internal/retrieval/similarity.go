// Package retrieval 实现检索打分：向量余弦相似度与关键词兜底两套策略。
package retrieval

import (
	"math"
	"regexp"
	"strings"
)

// CosineSimilarity 计算两个向量的余弦相似度，取值范围 [-1, 1]。
// 长度不一致或任一向量范数为 0 时返回 0（防御性行为，正常流程不应出现）。
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// keywordScore 统计查询词在文本中出现的次数之和。
// 查询按空白切词，丢弃长度 <= 2 的词，匹配不区分大小写。
func keywordScore(query, text string) float64 {
	score := 0.0
	for _, token := range strings.Fields(query) {
		if len([]rune(token)) <= 2 {
			continue
		}
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(token))
		if err != nil {
			continue
		}
		score += float64(len(re.FindAllStringIndex(text, -1)))
	}
	return score
}

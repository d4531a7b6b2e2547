// Package model 包含了应用的数据模型定义。
package model

// KnowledgeEntry 是某个用户的全部已索引知识。
// Chunks 与 Vectors 按下标一一对应；嵌入失败或未配置时 Vectors 为空，
// 此时检索退化为关键词打分。条目在每次上传时被整体替换。
type KnowledgeEntry struct {
	Chunks  []string    `json:"chunks"`
	Vectors [][]float32 `json:"vectors"`
}

// HasVectors 报告该条目是否带有向量。
// 不变量：向量存在时 len(Vectors) == len(Chunks)。
func (e *KnowledgeEntry) HasVectors() bool {
	return e != nil && len(e.Vectors) > 0 && len(e.Vectors) == len(e.Chunks)
}

// Empty 报告该条目是否没有任何分块。
func (e *KnowledgeEntry) Empty() bool {
	return e == nil || len(e.Chunks) == 0
}

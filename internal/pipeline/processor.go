// Package pipeline 定义了文档摄取的核心流程：
// 提取文本 → 分块 → 向量化（尽力而为）→ 整体替换该用户的知识条目。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"guideline-tutor-go/internal/chunker"
	"guideline-tutor-go/internal/config"
	"guideline-tutor-go/internal/model"
	"guideline-tutor-go/internal/repository"
	"guideline-tutor-go/pkg/embedding"
	"guideline-tutor-go/pkg/extract"
	"guideline-tutor-go/pkg/kafka"
	"guideline-tutor-go/pkg/log"
	"guideline-tutor-go/pkg/storage"
)

// UploadedFile 是一份待摄取的上传文件。
type UploadedFile struct {
	Name string
	Data []byte
}

// Result 汇总一次摄取的结果。
type Result struct {
	ChunkCount int
	Embedded   bool // 是否成功生成了向量
}

// Processor 封装了文档摄取的所有依赖和逻辑。
type Processor struct {
	extractor       *extract.Extractor
	embeddingClient embedding.Client
	knowledgeRepo   repository.KnowledgeRepository
	ragCfg          config.RAGConfig
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(
	extractor *extract.Extractor,
	embeddingClient embedding.Client,
	knowledgeRepo repository.KnowledgeRepository,
	ragCfg config.RAGConfig,
) *Processor {
	return &Processor{
		extractor:       extractor,
		embeddingClient: embeddingClient,
		knowledgeRepo:   knowledgeRepo,
		ragCfg:          ragCfg,
	}
}

// Process 摄取一组文件并整体替换 userID 的知识条目。
// 向量化失败只降级不中断：分块照常入库，检索退化为关键词打分。
func (p *Processor) Process(ctx context.Context, userID string, files []UploadedFile) (*Result, error) {
	if len(files) == 0 {
		return nil, errors.New("没有可处理的文件")
	}
	log.Infof("[Processor] 开始摄取, userID: %s, 文件数: %d", userID, len(files))

	// 1. 逐个文件提取文本，用 [FILE: name] 标记拼接
	var textBuilder strings.Builder
	fileNames := make([]string, 0, len(files))
	for _, f := range files {
		text, err := p.extractor.ExtractText(f.Name, f.Data)
		if err != nil {
			log.Errorf("[Processor] 提取文本失败, file: %s, error: %v", f.Name, err)
			return nil, fmt.Errorf("提取 '%s' 的文本失败: %w", f.Name, err)
		}
		textBuilder.WriteString(fmt.Sprintf("[FILE: %s]\n", f.Name))
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
		fileNames = append(fileNames, f.Name)
	}
	fullText := textBuilder.String()
	log.Infof("[Processor] 文本提取完成, 总长度: %d 字符", utf8.RuneCountInString(fullText))

	// 2. 文本分块
	size := p.ragCfg.ChunkSizeOrDefault()
	overlap := p.ragCfg.ChunkOverlapOrDefault()
	chunks := chunker.Chunk(fullText, size, overlap)
	log.Infof("[Processor] 分块完成, size: %d, overlap: %d, 共 %d 块", size, overlap, len(chunks))
	if len(chunks) == 0 {
		return nil, errors.New("未生成任何文本分块")
	}

	// 3. 批量向量化（尽力而为）
	entry := &model.KnowledgeEntry{Chunks: chunks}
	if p.embeddingClient.Configured() {
		vectors, err := p.embeddingClient.CreateEmbeddings(ctx, chunks)
		if err != nil {
			// 降级：分块照常入库，检索走关键词兜底
			log.Warnf("[Processor] 向量化失败，将退化为关键词检索: %v", err)
		} else {
			entry.Vectors = vectors
		}
	} else {
		log.Warnf("[Processor] Embedding 未配置，跳过向量化")
	}

	// 4. 整体替换该用户的知识条目
	if err := p.knowledgeRepo.Put(ctx, userID, entry); err != nil {
		return nil, fmt.Errorf("保存知识条目失败: %w", err)
	}
	log.Infof("[Processor] 知识条目已替换, userID: %s, chunks: %d, embedded: %v",
		userID, len(entry.Chunks), entry.HasVectors())

	// 5. 归档原始文件（尽力而为）
	if storage.Enabled() {
		for _, f := range files {
			if err := storage.ArchiveDocument(ctx, userID, f.Name, f.Data); err != nil {
				log.Warnf("[Processor] 归档文件失败, file: %s, error: %v", f.Name, err)
			}
		}
	}

	// 6. 广播摄取完成事件（尽力而为）
	if kafka.Enabled() {
		event := kafka.IngestionEvent{
			UserID:     userID,
			FileNames:  fileNames,
			ChunkCount: len(entry.Chunks),
			Embedded:   entry.HasVectors(),
			OccurredAt: time.Now(),
		}
		if err := kafka.ProduceIngestionEvent(ctx, event); err != nil {
			log.Warnf("[Processor] 发送摄取事件失败: %v", err)
		}
	}

	return &Result{ChunkCount: len(entry.Chunks), Embedded: entry.HasVectors()}, nil
}

// Package kafka 提供了与 Kafka 消息队列交互的功能。
// 本服务仅作为生产者：摄取完成后向下游（统计、审计）广播事件。
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"guideline-tutor-go/internal/config"
	"guideline-tutor-go/pkg/log"

	"github.com/segmentio/kafka-go"
)

// IngestionEvent 表示一次知识库摄取完成的事件。
type IngestionEvent struct {
	UserID     string    `json:"user_id"`
	FileNames  []string  `json:"file_names"`
	ChunkCount int       `json:"chunk_count"`
	Embedded   bool      `json:"embedded"`
	OccurredAt time.Time `json:"occurred_at"`
}

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者。brokers 为空时保持禁用。
func InitProducer(cfg config.KafkaConfig) {
	if cfg.Brokers == "" {
		log.Info("Kafka 未配置，跳过生产者初始化")
		return
	}
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
}

// Enabled 报告生产者是否可用。
func Enabled() bool {
	return producer != nil
}

// ProduceIngestionEvent 发送一条摄取完成事件。调用方自行决定是否忽略错误。
func ProduceIngestionEvent(ctx context.Context, event IngestionEvent) error {
	if producer == nil {
		return nil
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: eventBytes,
	})
}

// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
// 用于归档用户上传的原始指南文件，归档失败不影响摄取。
package storage

import (
	"bytes"
	"context"
	"fmt"

	"guideline-tutor-go/internal/config"
	"guideline-tutor-go/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient 是一个全局的 MinIO 客户端实例，未配置时为 nil。
var MinioClient *minio.Client

var bucketName string

// InitMinIO 初始化 MinIO 客户端并确保指定的存储桶存在。Endpoint 为空时保持禁用。
func InitMinIO(cfg config.MinIOConfig) {
	if cfg.Endpoint == "" {
		log.Info("MinIO 未配置，跳过初始化")
		return
	}

	var err error
	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatal("初始化 MinIO 客户端失败", err)
	}
	bucketName = cfg.BucketName

	log.Info("MinIO 客户端初始化成功")

	ctx := context.Background()
	exists, err := MinioClient.BucketExists(ctx, bucketName)
	if err != nil {
		log.Fatal("检查 MinIO 存储桶失败", err)
	}

	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", bucketName)
		if err := MinioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Fatal("创建 MinIO 存储桶失败", err)
		}
		log.Infof("存储桶 '%s' 创建成功", bucketName)
	}
}

// Enabled 报告归档功能是否可用。
func Enabled() bool {
	return MinioClient != nil
}

// ArchiveDocument 将原始文件写入 uploads/<userID>/<fileName>。
func ArchiveDocument(ctx context.Context, userID, fileName string, data []byte) error {
	if MinioClient == nil {
		return nil
	}
	objectName := fmt.Sprintf("uploads/%s/%s", userID, fileName)
	_, err := MinioClient.PutObject(ctx, bucketName, objectName,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("归档文件到 MinIO 失败: %w", err)
	}
	return nil
}

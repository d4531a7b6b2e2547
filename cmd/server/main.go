// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"guideline-tutor-go/internal/config"
	"guideline-tutor-go/internal/handler"
	"guideline-tutor-go/internal/middleware"
	"guideline-tutor-go/internal/model"
	"guideline-tutor-go/internal/pipeline"
	"guideline-tutor-go/internal/repository"
	"guideline-tutor-go/internal/service"
	"guideline-tutor-go/pkg/database"
	"guideline-tutor-go/pkg/embedding"
	"guideline-tutor-go/pkg/extract"
	"guideline-tutor-go/pkg/kafka"
	"guideline-tutor-go/pkg/llm"
	"guideline-tutor-go/pkg/log"
	"guideline-tutor-go/pkg/storage"
	"guideline-tutor-go/pkg/tika"
	"guideline-tutor-go/pkg/token"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化外部依赖。除 LLM/Embedding 外都是可选的：
	// 未配置的依赖直接跳过，对应功能降级（内存知识库、无成绩持久化、无归档、无事件）。
	if cfg.Database.MySQL.DSN != "" {
		database.InitMySQL(cfg.Database.MySQL.DSN)
		if err := database.DB.AutoMigrate(&model.PerformanceRecord{}); err != nil {
			log.Fatalf("成绩表迁移失败: %v", err)
		}
	} else {
		log.Warnf("MySQL 未配置，成绩历史仅依赖请求体传入")
	}
	if cfg.Database.Redis.Addr != "" {
		database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	} else {
		log.Warnf("Redis 未配置，知识库使用进程内存，对话记录不保存")
	}
	storage.InitMinIO(cfg.MinIO)
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化 Repository。知识库后端按配置切换，语义完全一致。
	var knowledgeRepo repository.KnowledgeRepository
	if cfg.RAG.KnowledgeStore == "redis" && database.RDB != nil {
		knowledgeRepo = repository.NewRedisKnowledgeRepository(database.RDB)
		log.Info("知识库后端: redis")
	} else {
		knowledgeRepo = repository.NewMemoryKnowledgeRepository()
		log.Info("知识库后端: memory")
	}
	var conversationRepo repository.ConversationRepository
	if database.RDB != nil {
		conversationRepo = repository.NewConversationRepository(database.RDB)
	}
	var performanceRepo repository.PerformanceRepository
	if database.DB != nil {
		performanceRepo = repository.NewPerformanceRepository(database.DB)
	}

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.SessionTokenExpireDays)
	tikaClient := tika.NewClient(cfg.Tika)
	extractor := extract.NewExtractor(tikaClient)
	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)
	retrievalService := service.NewRetrievalService(knowledgeRepo, embeddingClient)
	tutorService := service.NewTutorService(retrievalService, llmClient, conversationRepo, cfg.RAG)
	caseService := service.NewCaseService(retrievalService, llmClient, performanceRepo, cfg.RAG)

	// 6. 初始化文档摄取管道 (Processor)
	processor := pipeline.NewProcessor(extractor, embeddingClient, knowledgeRepo, cfg.RAG)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), middleware.Identity(jwtManager), gin.Recovery())

	// 8. 注册路由
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/session", handler.NewSessionHandler(jwtManager).CreateSession)
	r.POST("/upload", handler.NewUploadHandler(processor).Upload)
	r.POST("/chat", handler.NewChatHandler(tutorService).Chat)
	r.GET("/conversation", handler.NewConversationHandler(conversationRepo).GetConversation)

	caseHandler := handler.NewCaseHandler(caseService)
	r.POST("/generate-case", caseHandler.GenerateCase)
	r.POST("/generate-adaptive-case", caseHandler.GenerateAdaptiveCase)
	r.POST("/evaluate-decision", caseHandler.EvaluateDecision)

	// 9. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}

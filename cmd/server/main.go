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

	"soul-lifter-go/internal/config"
	"soul-lifter-go/internal/handler"
	"soul-lifter-go/internal/middleware"
	"soul-lifter-go/internal/model"
	"soul-lifter-go/internal/pipeline"
	"soul-lifter-go/internal/repository"
	"soul-lifter-go/internal/service"
	"soul-lifter-go/pkg/database"
	"soul-lifter-go/pkg/emotion"
	"soul-lifter-go/pkg/es"
	"soul-lifter-go/pkg/generate"
	"soul-lifter-go/pkg/kafka"
	"soul-lifter-go/pkg/log"
	"soul-lifter-go/pkg/storage"
	"soul-lifter-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis、对象存储、ES、Kafka
	database.InitMySQL(cfg.Database.MySQL.DSN)
	if err := database.DB.AutoMigrate(&model.ArchivedTurn{}); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化 Repository
	keywordRepo := repository.NewKeywordRepository(cfg.Data.KeywordFile, cfg.Data.OffensiveFile)
	log.Infof("关键词表加载完成: keywords=%d, offensiveTerms=%d", keywordRepo.KeywordCount(), keywordRepo.OffensiveTermCount())
	sessionRepo := repository.NewSessionRepository(database.RDB, time.Duration(cfg.Session.HistoryTTLHours)*time.Hour)
	chatLogRepo := repository.NewChatLogRepository()
	turnRepo := repository.NewTurnRepository(database.DB)

	// 5. 初始化 Service (依赖注入)
	tokenManager := token.NewSessionTokenManager(cfg.Session.Secret, cfg.Session.TokenExpireHours)
	generateClient := generate.NewClient(cfg.Generation)
	emotionClient := emotion.NewClient(cfg.Emotion)
	sessionService := service.NewSessionService(sessionRepo, generateClient, tokenManager, cfg.Generation)
	chatService := service.NewChatService(keywordRepo, chatLogRepo, sessionService, emotionClient, kafka.ProduceTurnTask)
	dashboardService := service.NewDashboardService(chatService, turnRepo, cfg.Elasticsearch, cfg.MinIO, cfg.Data)

	// 6. 初始化轮次归档管道 (Processor)
	processor := pipeline.NewProcessor(turnRepo, cfg.Elasticsearch)

	// 7. 启动后台 Kafka 消费者
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 8. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件和 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 9. 注册路由
	chatHandler := handler.NewChatHandler(chatService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	resolveSession := middleware.SessionResolver(tokenManager)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(resolveSession)
	{
		// 会话路由
		apiV1.POST("/session", sessionHandler.Create)

		// 对话路由
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.POST("/reset", chatHandler.Reset)
		apiV1.GET("/logs", chatHandler.Log)
		apiV1.POST("/logs/export", dashboardHandler.Export)

		// 仪表盘路由
		dashboard := apiV1.Group("/dashboard")
		{
			dashboard.GET("/emotions", dashboardHandler.Emotions)
			dashboard.GET("/turns", dashboardHandler.Turns)
		}
	}

	// Chat 路由 (WebSocket)
	r.GET("/chat/ws", resolveSession, chatHandler.Handle)

	// 启动 HTTP 服务器并实现优雅停机
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

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	// StartConsumer 是一个循环，会在程序退出时自然结束，
	// 无需在此手动关闭 Kafka 消费者。
	log.Info("服务已优雅关闭")
}

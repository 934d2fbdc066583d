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

	"filesearch-go/internal/config"
	"filesearch-go/internal/handler"
	"filesearch-go/internal/middleware"
	"filesearch-go/internal/repository"
	"filesearch-go/internal/service"
	"filesearch-go/pkg/database"
	"filesearch-go/pkg/filesearch"
	"filesearch-go/pkg/log"
	"filesearch-go/pkg/storage"
	"filesearch-go/pkg/token"

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

	// 配置校验失败必须在监听端口之前终止进程
	if err := config.Validate(&cfg); err != nil {
		log.Fatalf("配置校验失败: %v", err)
	}

	// 3. 初始化数据库、Redis 与对象存储
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)

	// 4. 初始化 Repository
	storeRepo := repository.NewStoreRepository(database.DB)
	docRepo := repository.NewDocumentRepository(database.DB)
	chatRepo := repository.NewChatRepository(database.RDB)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.SessionExpireHours)
	fsClient := filesearch.NewClient(cfg.FileSearch)
	sessionService := service.NewSessionService(jwtManager)
	storeService := service.NewStoreService(fsClient, storeRepo, docRepo, chatRepo)
	uploadService := service.NewUploadService(fsClient, storeRepo, docRepo, cfg.MinIO, cfg.Upload, cfg.Chunking)
	documentService := service.NewDocumentService(storeRepo, docRepo, cfg.MinIO)
	queryService := service.NewQueryService(fsClient, storeRepo, chatRepo)
	statsService := service.NewStatsService(storeRepo, docRepo, chatRepo)

	// 6. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 7. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		// 无需认证：签发匿名会话
		apiV1.POST("/session", handler.NewSessionHandler(sessionService).CreateSession)

		// Store 路由组，需要认证
		stores := apiV1.Group("/stores")
		stores.Use(middleware.SessionAuth(jwtManager))
		{
			stores.POST("", handler.NewStoreHandler(storeService).CreateStore)
			stores.GET("/active", handler.NewStoreHandler(storeService).GetActiveStore)
			stores.POST("/reset", handler.NewStoreHandler(storeService).ResetStore)
		}

		// Upload 路由组，需要认证
		upload := apiV1.Group("/upload")
		upload.Use(middleware.SessionAuth(jwtManager))
		{
			upload.POST("", handler.NewUploadHandler(uploadService).Upload)
			upload.GET("/supported-types", handler.NewUploadHandler(uploadService).GetSupportedFileTypes)
		}

		// Document 路由组，需要认证
		documents := apiV1.Group("/documents")
		documents.Use(middleware.SessionAuth(jwtManager))
		{
			documents.GET("", handler.NewDocumentHandler(documentService).ListDocuments)
			documents.GET("/download", handler.NewDocumentHandler(documentService).DownloadDocument)
		}

		// Query / History / Stats 路由，需要认证
		authed := apiV1.Group("/")
		authed.Use(middleware.SessionAuth(jwtManager))
		{
			authed.POST("/query", handler.NewQueryHandler(queryService, statsService).Ask)
			authed.GET("/chat/history", handler.NewQueryHandler(queryService, statsService).GetHistory)
			authed.DELETE("/chat/history", handler.NewQueryHandler(queryService, statsService).ClearHistory)
			authed.GET("/stats", handler.NewQueryHandler(queryService, statsService).GetStats)
		}
	}

	// Chat 路由 (WebSocket)，token 直接携带在路径中
	r.GET("/chat/:token", handler.NewChatHandler(queryService, jwtManager).Handle)

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}

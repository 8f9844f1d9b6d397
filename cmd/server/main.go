package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adminhub/internal/database"
	"adminhub/internal/router"
	"adminhub/internal/services"
	"adminhub/pkg/config"
	"adminhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger := logger.GetLogger()
	appLogger.Info("Starting AdminHub...")

	// 初始化主库（Postgres）
	if err := database.Initialize(cfg); err != nil {
		appLogger.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			appLogger.Error("Failed to close database:", err)
		}
		if err := database.CloseMongo(); err != nil {
			appLogger.Error("Failed to close Mongo:", err)
		}
		if err := database.CloseRevocationStore(); err != nil {
			appLogger.Error("Failed to close Redis:", err)
		}
	}()

	// 初始化文档库（Mongo）
	if err := database.InitializeMongo(cfg); err != nil {
		appLogger.Fatalf("Failed to initialize Mongo: %v", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(); err != nil {
		appLogger.Fatalf("Failed to migrate database: %v", err)
	}

	// 执行种子数据初始化
	if err := seedData(); err != nil {
		appLogger.Fatalf("Failed to initialize seed data: %v", err)
	}

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 启动有效期窗口清扫器（在路由初始化前）
	sweeper := services.NewTimeWindowScheduler(database.GetDB())
	if err := sweeper.Start(); err != nil {
		appLogger.Errorf("Failed to start time window sweeper: %v", err)
		// 不影响主服务启动
	}
	defer sweeper.Stop()

	// 设置路由
	r := router.SetupRouter()

	// 路由上声明的权限表达式必须能由登记表构成，拼错直接拒绝启动
	if err := router.ValidateDeclaredExpressions(); err != nil {
		appLogger.Fatalf("Permission expression validation failed: %v", err)
	}

	// 启动服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	appLogger.Infof("Server started on port %s", cfg.Server.Port)

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	if err := server.Close(); err != nil {
		appLogger.Error("Server forced to shutdown:", err)
	}
	appLogger.Info("Server exited")
}

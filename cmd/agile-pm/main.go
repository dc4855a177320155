package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"agile-pm/internal/api/router"
	"agile-pm/internal/core"
	"agile-pm/internal/pkg/config"
	"agile-pm/internal/pkg/database"
	"agile-pm/internal/pkg/logger"
	"agile-pm/internal/repository"
	"agile-pm/internal/scheduler"
	"agile-pm/internal/service"
)

// @title Agile PM API
// @version 1.0
// @description 敏捷项目管理平台 API 文档
// @description 提供项目管理、待办事项、迭代规划、问题跟踪、Wiki等功能

// @contact.name API Support
// @contact.email support@example.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

var (
	configFile = flag.String("config", "", "配置文件路径 (例如: -config=configs/config.yaml)")
	version    = flag.Bool("version", false, "显示版本信息")
)

const (
	appVersion = "1.0.0"
	appName    = "agile-pm"
)

func main() {
	// 解析命令行参数
	flag.Parse()

	// 显示版本信息
	if *version {
		fmt.Printf("%s version %s\n", appName, appVersion)
		os.Exit(0)
	}

	// init config logger
	var cfg *config.Config
	{
		// 优先级: 命令行参数 > 环境变量 > 默认路径
		configPath := getConfigPath()

		// 加载配置
		c, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("加载配置失败: %v\n", err)
			fmt.Println("\n使用方式:")
			fmt.Println("  1. 命令行参数指定:")
			fmt.Println("     ./agile-pm -config=configs/config.yaml")
			fmt.Println("  2. 环境变量指定:")
			fmt.Println("     export CONFIG_FILE=configs/config.yaml")
			fmt.Println("     ./agile-pm")
			fmt.Println("  3. 使用默认配置:")
			fmt.Println("     ./agile-pm  (将使用 configs/config.yaml)")
			os.Exit(1)
		}
		cfg = c

		// 初始化日志
		if err := logger.Init(&cfg.Log); err != nil {
			fmt.Printf("初始化日志失败: %v\n", err)
			os.Exit(1)
		}
		logger.Info(fmt.Sprintf("Load config file: %s of %s", configPath, getConfigSource()))

		defer func() {
			_ = logger.Close()
		}()
	}

	logger.Info(fmt.Sprintf("服务 %s 启动中...", appName), zap.String("version", appVersion))

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("初始化数据库失败", zap.Error(err))
	}
	defer func() {
		_ = database.Close()
	}()

	logger.Info(fmt.Sprintf("数据库连接成功 %s:%v", cfg.Database.Host, cfg.Database.Port), zap.String("database", cfg.Database.Database))

	// 同步表结构
	if err := database.AutoMigrate(database.GetDB()); err != nil {
		logger.Fatal("同步表结构失败", zap.Error(err))
	}

	// 注入数据库连接到配置
	cfg.DB = database.GetDB()

	// 预置内建项目模板
	db := database.GetDB()
	templateService := service.NewTemplateService(
		db,
		repository.NewTemplateRepository(db),
		repository.NewTaxonomyRepository(db),
		repository.NewProjectRepository(db),
		repository.NewMembershipRepository(db),
	)
	if err := templateService.SeedBuiltin(); err != nil {
		logger.Fatal("预置项目模板失败", zap.Error(err))
	}

	// 初始化事件总线与闭合判定器
	bus := core.NewBus(logger.Log)
	closure := core.NewClosureEvaluator(bus, logger.Log)

	// 初始化删除引擎
	deletionEngine := core.NewDeletionEngine(db, bus, logger.Log)

	// 解析扫描间隔
	scanInterval, err := time.ParseDuration(cfg.Projects.ScanInterval)
	if err != nil {
		logger.Warn("解析扫描间隔失败，使用默认值30秒", zap.Error(err))
		scanInterval = 30 * time.Second
	}

	// 启动删除引擎
	deletionEngine.Start(scanInterval)
	logger.Info("删除引擎启动成功", zap.Duration("scan_interval", scanInterval))

	// 初始化并启动定时任务调度器
	taskScheduler := scheduler.NewScheduler(deletionEngine, logger.Log)
	if err := taskScheduler.Start(cfg); err != nil {
		logger.Warn("定时任务调度器启动失败", zap.Error(err))
	}

	// 设置路由
	r := router.Setup(cfg, bus, closure, logger.Log)

	// 创建HTTP服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// 启动服务器
	go func() {
		logger.Info(fmt.Sprintf("%s 服务启动成功", cfg.Server.Name),
			zap.String("address", addr),
			zap.String("mode", cfg.Server.Mode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务正在关闭...")

	// 关闭定时任务调度器
	taskScheduler.Stop()
	logger.Info("定时任务调度器已停止")

	// 关闭删除引擎
	deletionEngine.Stop()
	logger.Info("删除引擎已停止")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务已关闭")
}

// getConfigPath 获取配置文件路径
// 优先级: 命令行参数 > 环境变量 > 默认路径
func getConfigPath() string {
	// 1. 命令行参数
	if *configFile != "" {
		return *configFile
	}

	// 2. 环境变量
	if envConfig := os.Getenv("CONFIG_FILE"); envConfig != "" {
		return envConfig
	}

	// 3. 默认路径
	return "configs/config.yaml"
}

// getConfigSource 获取配置来源说明
func getConfigSource() string {
	if *configFile != "" {
		return "命令行参数"
	}
	if os.Getenv("CONFIG_FILE") != "" {
		return "环境变量"
	}
	return "默认配置"
}

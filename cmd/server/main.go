package main

import (
	"fmt"
	"log"

	"github.com/free689594-collab/BurgBug-sub002/config"
	"github.com/free689594-collab/BurgBug-sub002/internal/api"
	"github.com/free689594-collab/BurgBug-sub002/internal/api/handler"
	"github.com/free689594-collab/BurgBug-sub002/internal/database"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/oss"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/queue"
	"github.com/free689594-collab/BurgBug-sub002/internal/repository"
	"github.com/free689594-collab/BurgBug-sub002/internal/service"
)

func main() {
	// 載入設定
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化資料庫
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := database.SeedPlans(db, &cfg.Subscription); err != nil {
		log.Fatalf("Failed to seed subscription plans: %v", err)
	}

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 OSS（可選，未設定時停用報表匯出）
	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	// 初始化通知佇列
	notifyQueue := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	quotaRepo := repository.NewQuotaRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	debtRepo := repository.NewDebtRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// 初始化 Service
	subService := service.NewSubscriptionService(subRepo, quotaRepo, auditRepo, messageRepo, paymentRepo, notifyQueue, cfg)
	quotaService := service.NewQuotaService(subRepo, quotaRepo)
	authService := service.NewAuthService(userRepo, subService, cfg)
	paymentService := service.NewPaymentService(paymentRepo, subService, subRepo, messageRepo, rdb, cfg)
	debtService := service.NewDebtService(debtRepo, userRepo, auditRepo)
	messageService := service.NewMessageService(messageRepo, userRepo)

	var reportService *service.ReportService
	if ossClient != nil {
		reportService = service.NewReportService(subRepo, paymentRepo, userRepo, ossClient)
	}

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	subscriptionHandler := handler.NewSubscriptionHandler(subService, quotaService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	debtHandler := handler.NewDebtHandler(debtService, quotaService)
	messageHandler := handler.NewMessageHandler(messageService)
	adminHandler := handler.NewAdminHandler(subService, debtService, reportService)
	healthHandler := handler.NewHealthHandler(db)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		subscriptionHandler,
		paymentHandler,
		debtHandler,
		messageHandler,
		adminHandler,
		healthHandler,
		quotaService,
		userRepo,
		cfg,
	)
	engine := router.Setup()

	// 啟動伺服器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

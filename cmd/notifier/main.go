package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/free689594-collab/BurgBug-sub002/config"
	"github.com/free689594-collab/BurgBug-sub002/internal/database"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/email"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/queue"
	"github.com/free689594-collab/BurgBug-sub002/internal/repository"
	"github.com/free689594-collab/BurgBug-sub002/internal/service"
)

// 到期提醒排程與通知佇列消費者
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

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化信件服務（可選，未設定 SMTP 時只發站內訊息）
	var emailService *email.Service
	if cfg.Email.SMTPHost != "" {
		emailService = email.NewService(&cfg.Email)
		log.Println("Email service initialized")
	}

	notifyQueue := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)

	subRepo := repository.NewSubscriptionRepository(db)
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	notificationService := service.NewNotificationService(
		subRepo, userRepo, messageRepo, notifyQueue, emailService, rdb, cfg)

	// context 用於優雅關閉
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	// 啟動時先掃一輪，之後每小時掃一次
	// 同一訂閱同一提醒有 redis 去重，重掃不會重複投遞
	go func() {
		if err := notificationService.SweepExpiring(ctx); err != nil {
			log.Printf("Failed to sweep expiring subscriptions: %v", err)
		}

		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := notificationService.SweepExpiring(ctx); err != nil {
					log.Printf("Failed to sweep expiring subscriptions: %v", err)
				}
			}
		}
	}()

	log.Println("Notifier started")
	notificationService.Run(ctx)
	log.Println("Notifier stopped")
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/free689594-collab/BurgBug-sub002/config"
	"github.com/free689594-collab/BurgBug-sub002/internal/api/handler"
	"github.com/free689594-collab/BurgBug-sub002/internal/api/middleware"
	"github.com/free689594-collab/BurgBug-sub002/internal/model"
	"github.com/free689594-collab/BurgBug-sub002/internal/repository"
	"github.com/free689594-collab/BurgBug-sub002/internal/service"
)

type Router struct {
	authHandler         *handler.AuthHandler
	subscriptionHandler *handler.SubscriptionHandler
	paymentHandler      *handler.PaymentHandler
	debtHandler         *handler.DebtHandler
	messageHandler      *handler.MessageHandler
	adminHandler        *handler.AdminHandler
	healthHandler       *handler.HealthHandler
	quotaService        *service.QuotaService
	userRepo            *repository.UserRepository
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	paymentHandler *handler.PaymentHandler,
	debtHandler *handler.DebtHandler,
	messageHandler *handler.MessageHandler,
	adminHandler *handler.AdminHandler,
	healthHandler *handler.HealthHandler,
	quotaService *service.QuotaService,
	userRepo *repository.UserRepository,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		subscriptionHandler: subscriptionHandler,
		paymentHandler:      paymentHandler,
		debtHandler:         debtHandler,
		messageHandler:      messageHandler,
		adminHandler:        adminHandler,
		healthHandler:       healthHandler,
		quotaService:        quotaService,
		userRepo:            userRepo,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		api.GET("/health", r.healthHandler.Check)

		// 公開介面 - 認證
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 綠界付款通知，來源是綠界伺服器，不走 JWT
		api.POST("/payments/callback", r.paymentHandler.Callback)

		// 需要認證的介面
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			authenticated.GET("/user/profile", r.authHandler.GetProfile)

			// 訂閱與額度
			subscription := authenticated.Group("/subscription")
			{
				subscription.GET("/status", r.subscriptionHandler.GetStatus)
				subscription.GET("/plans", r.subscriptionHandler.ListPlans)
				subscription.POST("/check-quota", r.subscriptionHandler.CheckQuota)
				subscription.POST("/deduct-quota", r.subscriptionHandler.DeductQuota)
			}

			// 付款
			payments := authenticated.Group("/payments")
			{
				payments.POST("", r.paymentHandler.Create)
				payments.GET("", r.paymentHandler.List)
				payments.GET("/:id", r.paymentHandler.Get)
			}

			// 債務記錄，上傳與查詢各自掛額度檢查
			debts := authenticated.Group("/debts")
			{
				debts.POST("", middleware.QuotaCheck(r.quotaService, model.ActionUpload), r.debtHandler.Upload)
				debts.POST("/search", middleware.QuotaCheck(r.quotaService, model.ActionQuery), r.debtHandler.Search)
				debts.GET("/mine", r.debtHandler.ListMine)
				debts.PUT("/:id/status", r.debtHandler.UpdateStatus)
			}

			// 站內訊息
			messages := authenticated.Group("/messages")
			{
				messages.GET("", r.messageHandler.List)
				messages.GET("/unread-count", r.messageHandler.UnreadCount)
				messages.PUT("/:id/read", r.messageHandler.MarkRead)
			}
		}

		// 管理後台
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.AdminOnly(r.userRepo))
		{
			admin.GET("/subscriptions", r.adminHandler.SearchSubscriptions)
			admin.GET("/subscriptions/stats", r.adminHandler.GetStats)
			admin.POST("/subscriptions/extend", r.adminHandler.ExtendSubscription)
			admin.POST("/subscriptions/adjust-days", r.adminHandler.AdjustSubscriptionDays)
			admin.POST("/subscriptions/set-status", r.adminHandler.SetSubscriptionStatus)
			admin.GET("/audit-logs", r.adminHandler.ListAuditLogs)
			admin.PUT("/debts/:id", r.adminHandler.EditDebt)
			admin.POST("/messages", r.messageHandler.Send)
			admin.POST("/reports/subscriptions", r.adminHandler.ExportSubscriptions)
			admin.POST("/reports/payments", r.adminHandler.ExportPayments)
		}
	}

	return engine
}

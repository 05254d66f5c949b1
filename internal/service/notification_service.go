package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/free689594-collab/BurgBug-sub002/config"
	"github.com/free689594-collab/BurgBug-sub002/internal/model"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/email"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/queue"
	"github.com/free689594-collab/BurgBug-sub002/internal/repository"
)

// NotificationService 到期提醒
// 只負責提醒，不改任何訂閱狀態：到期與否由讀取端惰性判定。
type NotificationService struct {
	subRepo      *repository.SubscriptionRepository
	userRepo     *repository.UserRepository
	messageRepo  *repository.MessageRepository
	notifyQueue  *queue.Queue
	emailService *email.Service
	redisClient  *redis.Client
	cfg          *config.Config
}

func NewNotificationService(
	subRepo *repository.SubscriptionRepository,
	userRepo *repository.UserRepository,
	messageRepo *repository.MessageRepository,
	notifyQueue *queue.Queue,
	emailService *email.Service,
	redisClient *redis.Client,
	cfg *config.Config,
) *NotificationService {
	return &NotificationService{
		subRepo:      subRepo,
		userRepo:     userRepo,
		messageRepo:  messageRepo,
		notifyQueue:  notifyQueue,
		emailService: emailService,
		redisClient:  redisClient,
		cfg:          cfg,
	}
}

var notifyTypeByDays = map[int]string{
	7: queue.NotifyExpiry7Days,
	3: queue.NotifyExpiry3Days,
	1: queue.NotifyExpiry1Day,
}

// SweepExpiring 掃描即將到期的訂閱並投遞提醒任務
// 每個提醒天數各掃一個整日區間，同一訂閱同一提醒只投遞一次
// （redis 去重，redis 不可用時寧可重複提醒也不漏發）
func (s *NotificationService) SweepExpiring(ctx context.Context) error {
	daysBefore := s.cfg.Subscription.NotificationDaysBefore
	if len(daysBefore) == 0 {
		daysBefore = []int{7, 3, 1}
	}

	now := time.Now()
	for _, days := range daysBefore {
		notifyType, ok := notifyTypeByDays[days]
		if !ok {
			notifyType = queue.NotifyExpiry1Day
		}

		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, days)
		dayEnd := dayStart.AddDate(0, 0, 1)

		subs, err := s.subRepo.ListExpiringBetween(dayStart, dayEnd)
		if err != nil {
			return err
		}

		for i := range subs {
			sub := &subs[i]
			if s.alreadyNotified(ctx, sub.ID, notifyType) {
				continue
			}
			msg := &queue.NotificationMessage{
				UserID:         sub.UserID,
				SubscriptionID: sub.ID,
				Type:           notifyType,
				Title:          "訂閱到期提醒",
				Content: fmt.Sprintf("您的訂閱將於 %s 到期（剩餘 %d 天），請記得續約。",
					sub.EndDate.Format(dateLayout), days),
				SendEmail: true,
			}
			if err := s.notifyQueue.Push(ctx, msg); err != nil {
				log.Printf("Failed to push expiry notification for subscription %d: %v", sub.ID, err)
				continue
			}
			s.markNotified(ctx, sub.ID, notifyType)
		}
	}
	return nil
}

// ProcessOne 處理一則通知任務：寫站內訊息，需要時寄信
// 寄信失敗只記 log，站內訊息為主要送達管道
func (s *NotificationService) ProcessOne(msg *queue.NotificationMessage) error {
	messageType := model.MessageTypeSystem
	if msg.Type == queue.NotifyAdminAdjust {
		messageType = model.MessageTypeSubscription
	}

	// 管理員異動在操作當下已寫過站內訊息，這裡只補寄信
	if msg.Type != queue.NotifyAdminAdjust {
		inbox := &model.Message{
			UserID:  msg.UserID,
			Type:    messageType,
			Title:   msg.Title,
			Content: msg.Content,
		}
		if err := s.messageRepo.Create(inbox); err != nil {
			return err
		}
	}

	if !msg.SendEmail || s.emailService == nil {
		return nil
	}

	user, err := s.userRepo.GetByID(msg.UserID)
	if err != nil {
		return err
	}
	if user.Email == nil || *user.Email == "" {
		return nil
	}

	switch msg.Type {
	case queue.NotifyExpiry7Days, queue.NotifyExpiry3Days, queue.NotifyExpiry1Day:
		sub, err := s.subRepo.GetByID(msg.SubscriptionID)
		if err != nil {
			return err
		}
		days := int(time.Until(sub.EndDate).Hours() / 24)
		if days < 0 {
			days = 0
		}
		if err := s.emailService.SendExpiryReminder(*user.Email, user.Nickname, sub.EndDate.Format(dateLayout), days); err != nil {
			log.Printf("Failed to send expiry email to user %d: %v", user.ID, err)
		}
	default:
		if err := s.emailService.SendSubscriptionChanged(*user.Email, user.Nickname, msg.Content); err != nil {
			log.Printf("Failed to send change email to user %d: %v", user.ID, err)
		}
	}
	return nil
}

// Run 通知佇列消費迴圈，阻塞直到 ctx 結束
func (s *NotificationService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := s.notifyQueue.Pop(ctx, 5*time.Second)
		if err != nil {
			log.Printf("Failed to pop notification: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if msg == nil {
			continue
		}

		if err := s.ProcessOne(msg); err != nil {
			log.Printf("Failed to process notification for user %d: %v", msg.UserID, err)
		}
	}
}

// 去重標記在投遞成功後才寫入，投遞失敗的提醒下一輪掃描會再試
func (s *NotificationService) alreadyNotified(ctx context.Context, subscriptionID int64, notifyType string) bool {
	if s.redisClient == nil {
		return false
	}
	n, err := s.redisClient.Exists(ctx, expiryNotifyKey(subscriptionID, notifyType)).Result()
	if err != nil {
		log.Printf("Failed to dedupe notification for subscription %d: %v", subscriptionID, err)
		return false
	}
	return n > 0
}

func (s *NotificationService) markNotified(ctx context.Context, subscriptionID int64, notifyType string) {
	if s.redisClient == nil {
		return
	}
	key := expiryNotifyKey(subscriptionID, notifyType)
	if err := s.redisClient.Set(ctx, key, 1, 48*time.Hour).Err(); err != nil {
		log.Printf("Failed to mark notification sent for subscription %d: %v", subscriptionID, err)
	}
}

func expiryNotifyKey(subscriptionID int64, notifyType string) string {
	return fmt.Sprintf("notify:expiry:%d:%s", subscriptionID, notifyType)
}

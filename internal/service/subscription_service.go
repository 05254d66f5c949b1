package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/config"
	"github.com/free689594-collab/BurgBug-sub002/internal/model"
	"github.com/free689594-collab/BurgBug-sub002/internal/model/dto"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/queue"
	"github.com/free689594-collab/BurgBug-sub002/internal/repository"
)

var (
	ErrSubscriptionNotFound = errors.New("找不到該訂閱記錄")
	ErrInvalidExtendDays    = errors.New("延長天數必須介於 1 到 100 天")
	ErrInvalidAdjustDays    = errors.New("調整天數必須介於 -365 到 365 天且不得為 0")
	ErrEndDateTooEarly      = errors.New("調整後的到期日不得早於現在")
	ErrInvalidStatus        = errors.New("無效的訂閱狀態")
)

const dateLayout = "2006-01-02"

type SubscriptionService struct {
	subRepo     *repository.SubscriptionRepository
	quotaRepo   *repository.QuotaRepository
	auditRepo   *repository.AuditRepository
	messageRepo *repository.MessageRepository
	paymentRepo *repository.PaymentRepository
	notifyQueue *queue.Queue
	cfg         *config.Config
}

func NewSubscriptionService(
	subRepo *repository.SubscriptionRepository,
	quotaRepo *repository.QuotaRepository,
	auditRepo *repository.AuditRepository,
	messageRepo *repository.MessageRepository,
	paymentRepo *repository.PaymentRepository,
	notifyQueue *queue.Queue,
	cfg *config.Config,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:     subRepo,
		quotaRepo:   quotaRepo,
		auditRepo:   auditRepo,
		messageRepo: messageRepo,
		paymentRepo: paymentRepo,
		notifyQueue: notifyQueue,
		cfg:         cfg,
	}
}

// GetStatus 查詢會員目前的訂閱狀態與額度
// 到期採惰性判定：讀到已過期的訂閱時順帶回寫 status，
// 回應中一律呈現判定後的狀態。
func (s *SubscriptionService) GetStatus(userID int64) (*dto.SubscriptionStatus, error) {
	return s.getStatusAt(userID, time.Now())
}

func (s *SubscriptionService) getStatusAt(userID int64, now time.Time) (*dto.SubscriptionStatus, error) {
	sub, err := s.subRepo.GetCurrentByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	plan, err := s.subRepo.GetPlanByID(sub.PlanID)
	if err != nil {
		return nil, err
	}

	status := sub.Status
	expired := sub.IsTerminal() && sub.Status == model.SubStatusExpired
	if !sub.IsTerminal() && sub.IsExpiredAt(now) {
		if err := s.subRepo.MarkExpired(sub.ID); err != nil {
			log.Printf("Failed to mark subscription %d expired: %v", sub.ID, err)
		}
		status = model.SubStatusExpired
		expired = true
	}

	daysRemaining := 0
	if !expired {
		daysRemaining = int(sub.EndDate.Sub(now).Hours() / 24)
		if daysRemaining < 0 {
			daysRemaining = 0
		}
	}

	result := &dto.SubscriptionStatus{
		SubscriptionID:   sub.ID,
		PlanName:         plan.PlanName,
		DisplayName:      plan.DisplayName,
		Status:           status,
		SubscriptionType: sub.SubscriptionType,
		StartDate:        sub.StartDate.Format(dateLayout),
		EndDate:          sub.EndDate.Format(dateLayout),
		DaysRemaining:    daysRemaining,
		IsExpired:        expired,
		IsVIP:            plan.PlanName == model.PlanVIPMonthly,
		QuotaType:        plan.QuotaType(),
	}

	if plan.QuotaType() == model.QuotaTypeDaily {
		result.UploadLimit = intOrZero(plan.UploadQuotaDaily)
		result.QueryLimit = intOrZero(plan.QueryQuotaDaily)
		// 當天還沒用過就不會有記錄，視為零用量
		quota, err := s.quotaRepo.GetDaily(userID, model.QuotaDate(now))
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if quota != nil {
			result.UploadUsed = quota.UploadsUsed
			result.QueryUsed = quota.QueriesUsed
		}
	} else {
		result.UploadLimit = intOrZero(plan.UploadQuotaTotal)
		result.QueryLimit = intOrZero(plan.QueryQuotaTotal)
		result.UploadUsed = result.UploadLimit - intOrZero(sub.RemainingUploadQuota)
		result.QueryUsed = result.QueryLimit - intOrZero(sub.RemainingQueryQuota)
	}
	result.UploadRemaining = result.UploadLimit - result.UploadUsed
	result.QueryRemaining = result.QueryLimit - result.QueryUsed
	if expired || status == model.SubStatusCancelled {
		result.UploadRemaining = 0
		result.QueryRemaining = 0
	}

	return result, nil
}

// StartTrial 註冊時開通試用訂閱
func (s *SubscriptionService) StartTrial(userID int64) (*model.MemberSubscription, error) {
	plan, err := s.subRepo.GetActivePlanByName(model.PlanTrial)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sub := &model.MemberSubscription{
		UserID:               userID,
		PlanID:               plan.ID,
		Status:               model.SubStatusTrial,
		SubscriptionType:     model.PlanTrial,
		StartDate:            now,
		EndDate:              now.AddDate(0, 0, plan.DurationDays),
		RemainingUploadQuota: plan.UploadQuotaTotal,
		RemainingQueryQuota:  plan.QueryQuotaTotal,
	}
	if err := s.subRepo.Create(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ActivateFromPayment 付款成功後開通 VIP
// 已有訂閱時就地升級既有記錄，沒有則建立新訂閱。
// VIP 方案為 daily 型，total 型剩餘額度欄位清空。
func (s *SubscriptionService) ActivateFromPayment(payment *model.Payment) error {
	plan, err := s.subRepo.GetPlanByID(payment.PlanID)
	if err != nil {
		return err
	}

	now := time.Now()
	endDate := now.AddDate(0, 0, plan.DurationDays)

	sub, err := s.subRepo.GetCurrentByUserID(payment.UserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		sub = &model.MemberSubscription{
			UserID:           payment.UserID,
			PlanID:           plan.ID,
			Status:           model.SubStatusActive,
			SubscriptionType: plan.PlanName,
			StartDate:        now,
			EndDate:          endDate,
			PaymentID:        &payment.ID,
		}
		return s.subRepo.Create(sub)
	}

	// 未到期的 VIP 續約從原到期日接續計算
	if sub.SubscriptionType == plan.PlanName && !sub.IsTerminal() && !sub.IsExpiredAt(now) {
		endDate = sub.EndDate.AddDate(0, 0, plan.DurationDays)
	}

	return s.subRepo.UpdateFields(sub.ID, map[string]interface{}{
		"plan_id":                plan.ID,
		"status":                 model.SubStatusActive,
		"subscription_type":      plan.PlanName,
		"start_date":             now,
		"end_date":               endDate,
		"payment_id":             payment.ID,
		"remaining_upload_quota": nil,
		"remaining_query_quota":  nil,
	})
}

// ListPlans 查詢可訂閱的方案
func (s *SubscriptionService) ListPlans() ([]model.SubscriptionPlan, error) {
	return s.subRepo.ListActivePlans()
}

// --- 管理員操作 ---

// Extend 管理員延長訂閱天數（1 到 100 天）
func (s *SubscriptionService) Extend(actorID int64, req *dto.ExtendSubscriptionRequest) (*dto.AdjustResult, error) {
	if req.ExtendDays < 1 || req.ExtendDays > 100 {
		return nil, ErrInvalidExtendDays
	}

	sub, err := s.getSubscription(req.SubscriptionID)
	if err != nil {
		return nil, err
	}

	oldEndDate := sub.EndDate
	newEndDate := oldEndDate.AddDate(0, 0, req.ExtendDays)
	if err := s.subRepo.UpdateFields(sub.ID, map[string]interface{}{
		"end_date": newEndDate,
	}); err != nil {
		return nil, err
	}

	s.recordAudit(actorID, model.AuditExtendSubscription, sub.ID,
		oldEndDate.Format(dateLayout), newEndDate.Format(dateLayout), req.AdminNote)
	s.notifyMember(actorID, sub,
		"訂閱期限已延長",
		fmt.Sprintf("您的訂閱已延長 %d 天，新的到期日為 %s。", req.ExtendDays, newEndDate.Format(dateLayout)))

	return &dto.AdjustResult{
		SubscriptionID: sub.ID,
		OldEndDate:     oldEndDate.Format(dateLayout),
		NewEndDate:     newEndDate.Format(dateLayout),
		Message:        fmt.Sprintf("已延長 %d 天", req.ExtendDays),
	}, nil
}

// AdjustDays 管理員調整訂閱天數，可為負值
// 調整後的到期日不得早於現在，避免把訂閱直接調成已過期
// （要讓訂閱失效請改用 SetStatus）。
func (s *SubscriptionService) AdjustDays(actorID int64, req *dto.AdjustDaysRequest) (*dto.AdjustResult, error) {
	if req.DaysToAdjust == 0 || req.DaysToAdjust < -365 || req.DaysToAdjust > 365 {
		return nil, ErrInvalidAdjustDays
	}

	sub, err := s.getSubscription(req.SubscriptionID)
	if err != nil {
		return nil, err
	}

	oldEndDate := sub.EndDate
	newEndDate := oldEndDate.AddDate(0, 0, req.DaysToAdjust)
	if newEndDate.Before(time.Now()) {
		return nil, ErrEndDateTooEarly
	}

	if err := s.subRepo.UpdateFields(sub.ID, map[string]interface{}{
		"end_date": newEndDate,
	}); err != nil {
		return nil, err
	}

	s.recordAudit(actorID, model.AuditAdjustDays, sub.ID,
		oldEndDate.Format(dateLayout), newEndDate.Format(dateLayout), req.Reason)
	s.notifyMember(actorID, sub,
		"訂閱期限已調整",
		fmt.Sprintf("您的訂閱到期日已調整為 %s。", newEndDate.Format(dateLayout)))

	return &dto.AdjustResult{
		SubscriptionID: sub.ID,
		OldEndDate:     oldEndDate.Format(dateLayout),
		NewEndDate:     newEndDate.Format(dateLayout),
		Message:        fmt.Sprintf("已調整 %d 天", req.DaysToAdjust),
	}, nil
}

// SetStatus 管理員強制變更訂閱狀態
// 只改 status，不動到期日與剩餘額度。
func (s *SubscriptionService) SetStatus(actorID int64, req *dto.SetStatusRequest) (*dto.SetStatusResult, error) {
	switch req.NewStatus {
	case model.SubStatusTrial, model.SubStatusActive, model.SubStatusExpired, model.SubStatusCancelled:
	default:
		return nil, ErrInvalidStatus
	}

	sub, err := s.getSubscription(req.SubscriptionID)
	if err != nil {
		return nil, err
	}

	oldStatus := sub.Status
	if err := s.subRepo.UpdateFields(sub.ID, map[string]interface{}{
		"status": req.NewStatus,
	}); err != nil {
		return nil, err
	}

	s.recordAudit(actorID, model.AuditSetStatus, sub.ID, oldStatus, req.NewStatus, req.AdminNote)
	s.notifyMember(actorID, sub,
		"訂閱狀態已變更",
		fmt.Sprintf("您的訂閱狀態已由 %s 變更為 %s。", oldStatus, req.NewStatus))

	return &dto.SetStatusResult{
		SubscriptionID: sub.ID,
		OldStatus:      oldStatus,
		NewStatus:      req.NewStatus,
		Message:        "狀態變更成功",
	}, nil
}

// Search 管理後台訂閱搜尋
func (s *SubscriptionService) Search(status string, page, pageSize int) ([]model.MemberSubscription, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.subRepo.Search(status, page, pageSize)
}

// GetStats 管理後台訂閱統計
func (s *SubscriptionService) GetStats() (*dto.SubscriptionStats, error) {
	stats := &dto.SubscriptionStats{}

	var err error
	if stats.TotalSubscriptions, err = s.subRepo.CountByStatus(""); err != nil {
		return nil, err
	}
	if stats.TrialSubscriptions, err = s.subRepo.CountByStatus(model.SubStatusTrial); err != nil {
		return nil, err
	}
	if stats.ActiveSubscriptions, err = s.subRepo.CountByStatus(model.SubStatusActive); err != nil {
		return nil, err
	}
	if stats.ExpiredSubscriptions, err = s.subRepo.CountByStatus(model.SubStatusExpired); err != nil {
		return nil, err
	}
	if stats.TotalRevenue, err = s.paymentRepo.SumPaidAmount(time.Time{}); err != nil {
		return nil, err
	}
	monthStart := time.Now().AddDate(0, -1, 0)
	if stats.MonthlyRevenue, err = s.paymentRepo.SumPaidAmount(monthStart); err != nil {
		return nil, err
	}
	if stats.ExpiringSoonCount, err = s.subRepo.CountExpiringWithin(7); err != nil {
		return nil, err
	}

	return stats, nil
}

// ListAuditLogs 管理操作稽核記錄
func (s *SubscriptionService) ListAuditLogs(action string, page, pageSize int) ([]model.AuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.auditRepo.List(action, page, pageSize)
}

func (s *SubscriptionService) getSubscription(id int64) (*model.MemberSubscription, error) {
	sub, err := s.subRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// recordAudit 寫入稽核記錄，失敗只記 log 不影響主要操作
func (s *SubscriptionService) recordAudit(actorID int64, action string, targetID int64, oldValue, newValue, reason string) {
	entry := &model.AuditLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: "member_subscription",
		TargetID:   targetID,
		OldValue:   oldValue,
		NewValue:   newValue,
		Reason:     reason,
	}
	if err := s.auditRepo.Create(entry); err != nil {
		log.Printf("Failed to create audit log for subscription %d: %v", targetID, err)
	}
}

// notifyMember 管理員異動後通知會員：寫站內訊息並丟通知佇列
// 通知失敗不回滾主要操作
func (s *SubscriptionService) notifyMember(actorID int64, sub *model.MemberSubscription, title, content string) {
	msg := &model.Message{
		UserID:   sub.UserID,
		SenderID: &actorID,
		Type:     model.MessageTypeSubscription,
		Title:    title,
		Content:  content,
	}
	if err := s.messageRepo.Create(msg); err != nil {
		log.Printf("Failed to create notification message for user %d: %v", sub.UserID, err)
	}

	if s.notifyQueue == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.notifyQueue.Push(ctx, &queue.NotificationMessage{
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		Type:           queue.NotifyAdminAdjust,
		Title:          title,
		Content:        content,
		SendEmail:      true,
	})
	if err != nil {
		log.Printf("Failed to push notification for user %d: %v", sub.UserID, err)
	}
}

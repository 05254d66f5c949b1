package service

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/internal/model"
	"github.com/free689594-collab/BurgBug-sub002/internal/model/dto"
	"github.com/free689594-collab/BurgBug-sub002/internal/repository"
)

var ErrInvalidActionType = errors.New("無效的操作類型，必須是 upload 或 query")

type QuotaService struct {
	subRepo   *repository.SubscriptionRepository
	quotaRepo *repository.QuotaRepository
}

func NewQuotaService(subRepo *repository.SubscriptionRepository, quotaRepo *repository.QuotaRepository) *QuotaService {
	return &QuotaService{
		subRepo:   subRepo,
		quotaRepo: quotaRepo,
	}
}

// CheckQuota 檢查會員是否還有額度
// 沒有訂閱、訂閱已終止或已過期一律視為零額度（allowed=false, limit=0）
func (s *QuotaService) CheckQuota(userID int64, actionType string) (*dto.QuotaCheckResult, error) {
	return s.checkQuotaAt(userID, actionType, time.Now())
}

func (s *QuotaService) checkQuotaAt(userID int64, actionType string, now time.Time) (*dto.QuotaCheckResult, error) {
	if actionType != model.ActionUpload && actionType != model.ActionQuery {
		return nil, ErrInvalidActionType
	}

	sub, plan, reason, err := s.resolveUsableSubscription(userID, now)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &dto.QuotaCheckResult{Allowed: false, Message: reason}, nil
	}

	if plan.QuotaType() == model.QuotaTypeDaily {
		quota, err := s.quotaRepo.GetOrCreateDaily(userID, model.QuotaDate(now),
			intOrZero(plan.UploadQuotaDaily), intOrZero(plan.QueryQuotaDaily))
		if err != nil {
			return nil, err
		}

		used, limit := quota.UploadsUsed, quota.UploadsLimit
		if actionType == model.ActionQuery {
			used, limit = quota.QueriesUsed, quota.QueriesLimit
		}
		remaining := limit - used
		if remaining < 0 {
			remaining = 0
		}
		return &dto.QuotaCheckResult{
			Allowed:   remaining > 0,
			Used:      used,
			Limit:     limit,
			Remaining: remaining,
			QuotaType: model.QuotaTypeDaily,
		}, nil
	}

	// total 型：剩餘額度直接掛在訂閱上
	limit := intOrZero(plan.UploadQuotaTotal)
	remaining := intOrZero(sub.RemainingUploadQuota)
	if actionType == model.ActionQuery {
		limit = intOrZero(plan.QueryQuotaTotal)
		remaining = intOrZero(sub.RemainingQueryQuota)
	}
	return &dto.QuotaCheckResult{
		Allowed:   remaining > 0,
		Used:      limit - remaining,
		Limit:     limit,
		Remaining: remaining,
		QuotaType: model.QuotaTypeTotal,
	}, nil
}

// DeductQuota 扣除一單位額度
// 扣除與歸零檢查在資料庫層以單一條件更新完成：剩最後一單位時的併發
// 請求只會有一個成功，計數不會變成負值。額度不足回傳 Success=false，
// 屬業務規則拒絕而非系統錯誤。
func (s *QuotaService) DeductQuota(userID int64, actionType string) (*dto.QuotaDeductResult, error) {
	return s.deductQuotaAt(userID, actionType, time.Now())
}

func (s *QuotaService) deductQuotaAt(userID int64, actionType string, now time.Time) (*dto.QuotaDeductResult, error) {
	if actionType != model.ActionUpload && actionType != model.ActionQuery {
		return nil, ErrInvalidActionType
	}

	sub, plan, reason, err := s.resolveUsableSubscription(userID, now)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &dto.QuotaDeductResult{Success: false, Remaining: 0, Message: reason}, nil
	}

	if plan.QuotaType() == model.QuotaTypeDaily {
		quota, err := s.quotaRepo.GetOrCreateDaily(userID, model.QuotaDate(now),
			intOrZero(plan.UploadQuotaDaily), intOrZero(plan.QueryQuotaDaily))
		if err != nil {
			return nil, err
		}

		ok, err := s.quotaRepo.IncrementDailyUsage(quota.ID, actionType)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &dto.QuotaDeductResult{Success: false, Remaining: 0, Message: exhaustedMessage(actionType, true)}, nil
		}

		fresh, err := s.quotaRepo.GetDaily(userID, model.QuotaDate(now))
		if err != nil {
			return nil, err
		}
		remaining := fresh.UploadsLimit - fresh.UploadsUsed
		if actionType == model.ActionQuery {
			remaining = fresh.QueriesLimit - fresh.QueriesUsed
		}
		return &dto.QuotaDeductResult{Success: true, Remaining: remaining}, nil
	}

	ok, err := s.subRepo.DecrementTotalQuota(sub.ID, actionType)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &dto.QuotaDeductResult{Success: false, Remaining: 0, Message: exhaustedMessage(actionType, false)}, nil
	}

	fresh, err := s.subRepo.GetByID(sub.ID)
	if err != nil {
		return nil, err
	}
	remaining := intOrZero(fresh.RemainingUploadQuota)
	if actionType == model.ActionQuery {
		remaining = intOrZero(fresh.RemainingQueryQuota)
	}
	return &dto.QuotaDeductResult{Success: true, Remaining: remaining}, nil
}

// resolveUsableSubscription 取得會員目前可用的訂閱與方案
// 回傳 (nil, nil, 原因, nil) 表示零額度情境；到期採惰性判定，
// 發現過期時順帶回寫狀態，回寫失敗不影響判定結果。
func (s *QuotaService) resolveUsableSubscription(userID int64, now time.Time) (*model.MemberSubscription, *model.SubscriptionPlan, string, error) {
	sub, err := s.subRepo.GetCurrentByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, "尚未開通訂閱", nil
		}
		return nil, nil, "", err
	}

	if sub.IsTerminal() {
		return nil, nil, "訂閱已失效，請續約後再使用", nil
	}
	if sub.IsExpiredAt(now) {
		if err := s.subRepo.MarkExpired(sub.ID); err != nil {
			log.Printf("Failed to mark subscription %d expired: %v", sub.ID, err)
		}
		return nil, nil, "訂閱已到期，請續約後再使用", nil
	}

	plan, err := s.subRepo.GetPlanByID(sub.PlanID)
	if err != nil {
		return nil, nil, "", err
	}
	return sub, plan, "", nil
}

func exhaustedMessage(actionType string, daily bool) string {
	action := "上傳"
	if actionType == model.ActionQuery {
		action = "查詢"
	}
	if daily {
		return "今日" + action + "額度已用完"
	}
	return action + "額度已用完，請升級 VIP 會員"
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// --- 訂閱方案 ---

func (r *SubscriptionRepository) CreatePlan(plan *model.SubscriptionPlan) error {
	return r.db.Create(plan).Error
}

func (r *SubscriptionRepository) GetPlanByID(id int64) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	err := r.db.Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *SubscriptionRepository) GetActivePlanByName(planName string) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	err := r.db.Where("plan_name = ? AND is_active = ?", planName, true).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *SubscriptionRepository) ListActivePlans() ([]model.SubscriptionPlan, error) {
	var plans []model.SubscriptionPlan
	err := r.db.Where("is_active = ?", true).Order("price asc").Find(&plans).Error
	return plans, err
}

// --- 會員訂閱 ---

func (r *SubscriptionRepository) Create(sub *model.MemberSubscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepository) GetByID(id int64) (*model.MemberSubscription, error) {
	var sub model.MemberSubscription
	err := r.db.Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetCurrentByUserID 取得會員目前的訂閱（最新一筆）
func (r *SubscriptionRepository) GetCurrentByUserID(userID int64) (*model.MemberSubscription, error) {
	var sub model.MemberSubscription
	err := r.db.Where("user_id = ?", userID).Order("created_at desc").First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) Update(sub *model.MemberSubscription) error {
	return r.db.Save(sub).Error
}

func (r *SubscriptionRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.MemberSubscription{}).Where("id = ?", id).Updates(fields).Error
}

// ExistsByPaymentID 是否已有訂閱引用這筆付款（開通冪等性檢查用）
func (r *SubscriptionRepository) ExistsByPaymentID(paymentID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.MemberSubscription{}).
		Where("payment_id = ?", paymentID).
		Count(&count).Error
	return count > 0, err
}

// MarkExpired 惰性到期：讀取時發現已過期才回寫狀態
func (r *SubscriptionRepository) MarkExpired(id int64) error {
	return r.db.Model(&model.MemberSubscription{}).
		Where("id = ? AND status IN ?", id, []string{model.SubStatusTrial, model.SubStatusActive}).
		Update("status", model.SubStatusExpired).Error
}

// DecrementTotalQuota 原子扣除 total 型額度
// 條件式遞減：剩餘額度 > 0 才會扣，回傳是否扣除成功。
// 併發時同一單位額度只會有一個請求成功，計數永遠不會低於零。
func (r *SubscriptionRepository) DecrementTotalQuota(id int64, actionType string) (bool, error) {
	column := "remaining_upload_quota"
	if actionType == model.ActionQuery {
		column = "remaining_query_quota"
	}

	result := r.db.Model(&model.MemberSubscription{}).
		Where("id = ? AND "+column+" > 0", id).
		Update(column, gorm.Expr(column+" - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListExpiringBetween 查詢指定到期區間內仍有效的訂閱（到期提醒用）
func (r *SubscriptionRepository) ListExpiringBetween(from, to time.Time) ([]model.MemberSubscription, error) {
	var subs []model.MemberSubscription
	err := r.db.Where("status IN ? AND end_date BETWEEN ? AND ?",
		[]string{model.SubStatusTrial, model.SubStatusActive}, from, to).
		Find(&subs).Error
	return subs, err
}

// Search 管理後台訂閱搜尋
func (r *SubscriptionRepository) Search(status string, page, pageSize int) ([]model.MemberSubscription, int64, error) {
	query := r.db.Model(&model.MemberSubscription{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []model.MemberSubscription
	err := query.Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&subs).Error
	return subs, total, err
}

// CountByStatus 各狀態訂閱數
func (r *SubscriptionRepository) CountByStatus(status string) (int64, error) {
	var count int64
	query := r.db.Model(&model.MemberSubscription{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}

// CountExpiringWithin 即將到期的訂閱數
func (r *SubscriptionRepository) CountExpiringWithin(days int) (int64, error) {
	now := time.Now()
	var count int64
	err := r.db.Model(&model.MemberSubscription{}).
		Where("status IN ? AND end_date BETWEEN ? AND ?",
			[]string{model.SubStatusTrial, model.SubStatusActive}, now, now.AddDate(0, 0, days)).
		Count(&count).Error
	return count, err
}

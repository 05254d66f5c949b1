package model

import (
	"time"
)

// 方案名稱
const (
	PlanTrial      = "trial"
	PlanVIPMonthly = "vip_monthly"
)

// 額度計算方式
const (
	QuotaTypeTotal = "total" // 訂閱期間內一次性額度
	QuotaTypeDaily = "daily" // 每日重新計算的額度
)

// SubscriptionPlan 訂閱方案
// 每個方案的每種操作（上傳、查詢）只會設定 total 或 daily 其中一種額度，
// 不會混用。試用方案為 total，VIP 月費方案為 daily。
type SubscriptionPlan struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	PlanName         string    `gorm:"size:20;uniqueIndex;not null" json:"plan_name"` // trial, vip_monthly
	DisplayName      string    `gorm:"size:50;not null" json:"display_name"`
	Description      string    `gorm:"size:255" json:"description,omitempty"`
	Price            float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	DurationDays     int       `gorm:"not null" json:"duration_days"`
	UploadQuotaTotal *int      `json:"upload_quota_total,omitempty"`
	QueryQuotaTotal  *int      `json:"query_quota_total,omitempty"`
	UploadQuotaDaily *int      `json:"upload_quota_daily,omitempty"`
	QueryQuotaDaily  *int      `json:"query_quota_daily,omitempty"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// QuotaType 方案的額度計算方式
func (p *SubscriptionPlan) QuotaType() string {
	if p.UploadQuotaDaily != nil || p.QueryQuotaDaily != nil {
		return QuotaTypeDaily
	}
	return QuotaTypeTotal
}

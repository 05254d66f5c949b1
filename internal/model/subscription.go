package model

import (
	"time"
)

// 訂閱狀態
const (
	SubStatusTrial     = "trial"
	SubStatusActive    = "active"
	SubStatusExpired   = "expired"
	SubStatusCancelled = "cancelled"
)

// 操作類型
const (
	ActionUpload = "upload"
	ActionQuery  = "query"
)

// MemberSubscription 會員訂閱
// 每位會員同時只會有一筆有效訂閱。expired / cancelled 為終止狀態，
// 到期偵測採惰性判定：讀取時比對 end_date，不依賴背景排程。
type MemberSubscription struct {
	ID                   int64     `gorm:"primaryKey" json:"id"`
	UserID               int64     `gorm:"not null;index" json:"user_id"`
	PlanID               int64     `gorm:"not null" json:"plan_id"`
	Status               string    `gorm:"size:20;default:trial;index" json:"status"` // trial, active, expired, cancelled
	SubscriptionType     string    `gorm:"size:20;not null" json:"subscription_type"` // trial, vip_monthly
	StartDate            time.Time `gorm:"not null" json:"start_date"`
	EndDate              time.Time `gorm:"not null;index" json:"end_date"`
	RemainingUploadQuota *int      `json:"remaining_upload_quota,omitempty"` // total 型方案專用
	RemainingQueryQuota  *int      `json:"remaining_query_quota,omitempty"`  // total 型方案專用
	PaymentID            *int64    `json:"payment_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (MemberSubscription) TableName() string {
	return "member_subscriptions"
}

// IsTerminal 是否為終止狀態（不得再扣除額度）
func (s *MemberSubscription) IsTerminal() bool {
	return s.Status == SubStatusExpired || s.Status == SubStatusCancelled
}

// IsExpiredAt 惰性到期判定：不信任既有 status 欄位，直接比對 end_date
func (s *MemberSubscription) IsExpiredAt(now time.Time) bool {
	return now.After(s.EndDate)
}

package model

import (
	"time"
)

// DailyUsageQuota 每日使用額度
// 僅 daily 型方案使用，每位會員每個日曆日一筆，首次使用時才建立，
// 作為歷史用量記錄不會刪除。uploads_used ≤ uploads_limit 與
// queries_used ≤ queries_limit 在任何成功扣除後都必須成立。
type DailyUsageQuota struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	UserID       int64     `gorm:"not null;uniqueIndex:idx_user_date" json:"user_id"`
	Date         string    `gorm:"size:10;not null;uniqueIndex:idx_user_date" json:"date"` // YYYY-MM-DD
	UploadsUsed  int       `gorm:"default:0" json:"uploads_used"`
	QueriesUsed  int       `gorm:"default:0" json:"queries_used"`
	UploadsLimit int       `gorm:"not null" json:"uploads_limit"`
	QueriesLimit int       `gorm:"not null" json:"queries_limit"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (DailyUsageQuota) TableName() string {
	return "daily_usage_quotas"
}

// QuotaDate 產生額度記錄使用的日曆日字串
func QuotaDate(t time.Time) string {
	return t.Format("2006-01-02")
}

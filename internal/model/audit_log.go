package model

import (
	"time"
)

// 管理操作類型
const (
	AuditExtendSubscription = "extend_subscription"
	AuditAdjustDays         = "adjust_subscription_days"
	AuditSetStatus          = "set_subscription_status"
	AuditEditDebt           = "edit_debt_record"
)

// AuditLog 管理操作稽核記錄
// 所有管理員覆寫操作都會留下舊值、新值、操作者與原因。
type AuditLog struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	ActorID    int64     `gorm:"not null;index" json:"actor_id"`
	Action     string    `gorm:"size:50;not null;index" json:"action"`
	TargetType string    `gorm:"size:50;not null" json:"target_type"`
	TargetID   int64     `gorm:"not null" json:"target_id"`
	OldValue   string    `gorm:"size:255" json:"old_value,omitempty"`
	NewValue   string    `gorm:"size:255" json:"new_value,omitempty"`
	Reason     string    `gorm:"size:200" json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

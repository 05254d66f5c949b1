package model

import (
	"time"
)

// 站內訊息類型
const (
	MessageTypeSystem       = "system"       // 系統通知（訂閱到期提醒等）
	MessageTypeAdmin        = "admin"        // 管理員訊息
	MessageTypeSubscription = "subscription" // 訂閱異動通知
)

// Message 會員站內訊息
type Message struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	UserID     int64      `gorm:"not null;index" json:"user_id"`
	SenderID   *int64     `json:"sender_id,omitempty"` // 系統訊息為空
	Type       string     `gorm:"size:20;not null" json:"type"`
	Title      string     `gorm:"size:100;not null" json:"title"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	IsRead     bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

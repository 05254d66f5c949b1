package model

import (
	"time"
)

type User struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	Account        string     `gorm:"size:50;uniqueIndex;not null" json:"account"`
	Nickname       string     `gorm:"size:50;not null" json:"nickname"`
	Email          *string    `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	PasswordHash   string     `gorm:"size:255;not null" json:"-"`
	Role           string     `gorm:"size:20;default:member;index" json:"role"` // member, admin, super_admin
	Status         string     `gorm:"size:20;default:active" json:"status"`     // active, suspended
	BusinessType   string     `gorm:"size:50" json:"business_type,omitempty"`
	BusinessRegion string     `gorm:"size:50" json:"business_region,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin 是否具備管理員權限
func (u *User) IsAdmin() bool {
	return u.Role == "admin" || u.Role == "super_admin"
}

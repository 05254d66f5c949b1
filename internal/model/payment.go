package model

import (
	"time"
)

// 付款狀態
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// Payment 付款記錄
// order_number 為本系統產生的綠界訂單編號（MerchantTradeNo，20 碼），
// 建立時為 pending，收到通過檢查碼驗證的回調後轉為終止狀態，
// 之後不再變更。
type Payment struct {
	ID               int64      `gorm:"primaryKey" json:"id"`
	UserID           int64      `gorm:"not null;index" json:"user_id"`
	PlanID           int64      `gorm:"not null" json:"plan_id"`
	OrderNumber      string     `gorm:"size:20;uniqueIndex;not null" json:"order_number"`
	Amount           float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status           string     `gorm:"size:20;default:pending;index" json:"status"` // pending, paid, failed, refunded
	PaymentMethod    string     `gorm:"size:20" json:"payment_method,omitempty"`     // atm, cvs, barcode
	ECPayTradeNo     string     `gorm:"size:20" json:"ecpay_trade_no,omitempty"`
	ECPayPaymentType string     `gorm:"size:50" json:"ecpay_payment_type,omitempty"`
	ECPayRtnCode     int        `json:"ecpay_rtn_code,omitempty"`
	ECPayRtnMsg      string     `gorm:"size:200" json:"ecpay_rtn_msg,omitempty"`
	BankCode         string     `gorm:"size:10" json:"bank_code,omitempty"`
	VirtualAccount   string     `gorm:"size:30" json:"virtual_account,omitempty"`
	PaymentNo        string     `gorm:"size:30" json:"payment_no,omitempty"`
	PaymentDeadline  string     `gorm:"size:20" json:"payment_deadline,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// IsTerminal 付款是否已進入終止狀態
func (p *Payment) IsTerminal() bool {
	return p.Status != PaymentPending
}

package model

import (
	"time"
)

// DebtRecord 債務記錄
// 查詢時以身分證首字母 + 末五碼比對，完整證號與電話僅上傳者與管理員可見，
// 一般查詢結果會遮罩。
type DebtRecord struct {
	ID                  int64      `gorm:"primaryKey" json:"id"`
	UploadedBy          int64      `gorm:"not null;index" json:"uploaded_by"`
	DebtorName          string     `gorm:"size:50;not null" json:"debtor_name"`
	DebtorIDFull        string     `gorm:"size:20;not null" json:"debtor_id_full"`
	DebtorIDFirstLetter string     `gorm:"size:1;not null;index:idx_debtor_lookup" json:"debtor_id_first_letter"`
	DebtorIDLast5       string     `gorm:"size:5;not null;index:idx_debtor_lookup" json:"debtor_id_last5"`
	DebtorPhone         string     `gorm:"size:20" json:"debtor_phone,omitempty"`
	Gender              string     `gorm:"size:10" json:"gender,omitempty"`
	Profession          string     `gorm:"size:50" json:"profession,omitempty"`
	Residence           string     `gorm:"size:50;index" json:"residence"`
	DebtDate            string     `gorm:"size:10;not null" json:"debt_date"` // YYYY-MM-DD
	FaceValue           float64    `gorm:"type:decimal(12,2);not null" json:"face_value"`
	PaymentFrequency    string     `gorm:"size:20;not null" json:"payment_frequency"` // daily, weekly, monthly
	RepaymentStatus     string     `gorm:"size:20;not null" json:"repayment_status"`
	Note                string     `gorm:"type:text" json:"note,omitempty"`
	AdminEditedBy       *int64     `json:"admin_edited_by,omitempty"`
	AdminEditReason     string     `gorm:"size:200" json:"admin_edit_reason,omitempty"`
	AdminEditedAt       *time.Time `json:"admin_edited_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (DebtRecord) TableName() string {
	return "debt_records"
}

// 還款狀態
var ValidRepaymentStatuses = []string{"待觀察", "正常", "結清", "議價結清", "代償", "疲勞", "呆帳"}

// IsValidRepaymentStatus 檢查還款狀態是否合法
func IsValidRepaymentStatus(status string) bool {
	for _, s := range ValidRepaymentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(payment *model.Payment) error {
	return r.db.Create(payment).Error
}

func (r *PaymentRepository) GetByID(id int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByOrderNumber(orderNumber string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.Where("order_number = ?", orderNumber).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// SettleFromPending 將 pending 付款轉為終止狀態
// 條件式更新：只有仍為 pending 的記錄會被改寫，確保 pending → 終止
// 的轉換只發生一次（重複回調不會二次改寫）。
func (r *PaymentRepository) SettleFromPending(id int64, fields map[string]interface{}) (bool, error) {
	result := r.db.Model(&model.Payment{}).
		Where("id = ? AND status = ?", id, model.PaymentPending).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdatePendingInfo 回寫取號資訊（ATM 虛擬帳號、超商代碼等），狀態仍為 pending
func (r *PaymentRepository) UpdatePendingInfo(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Payment{}).
		Where("id = ? AND status = ?", id, model.PaymentPending).
		Updates(fields).Error
}

// ListByUserID 會員付款歷史
func (r *PaymentRepository) ListByUserID(userID int64, page, pageSize int) ([]model.Payment, int64, error) {
	query := r.db.Model(&model.Payment{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []model.Payment
	err := query.Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&payments).Error
	return payments, total, err
}

// ListAll 全站付款記錄（管理後台報表用）
func (r *PaymentRepository) ListAll(page, pageSize int) ([]model.Payment, int64, error) {
	query := r.db.Model(&model.Payment{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []model.Payment
	err := query.Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&payments).Error
	return payments, total, err
}

// SumPaidAmount 已付款總額（since 為零值時統計全部）
func (r *PaymentRepository) SumPaidAmount(since time.Time) (float64, error) {
	var total float64
	query := r.db.Model(&model.Payment{}).Where("status = ?", model.PaymentPaid)
	if !since.IsZero() {
		query = query.Where("paid_at >= ?", since)
	}
	err := query.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}

// IsDuplicateOrderNumber 判斷錯誤是否為訂單編號唯一鍵衝突
// 衝突屬可重試錯誤，由呼叫端重新產生編號
func IsDuplicateOrderNumber(err error) bool {
	if err == nil {
		return false
	}
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

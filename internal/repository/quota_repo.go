package repository

import (
	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/internal/model"
)

type QuotaRepository struct {
	db *gorm.DB
}

func NewQuotaRepository(db *gorm.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// GetOrCreateDaily 取得或建立當日額度記錄
// 首次使用當天功能時才建立，(user_id, date) 有唯一索引，
// 併發建立撞到唯一鍵時改走查詢。
func (r *QuotaRepository) GetOrCreateDaily(userID int64, date string, uploadsLimit, queriesLimit int) (*model.DailyUsageQuota, error) {
	var quota model.DailyUsageQuota
	err := r.db.Where("user_id = ? AND date = ?", userID, date).First(&quota).Error
	if err == nil {
		return &quota, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	quota = model.DailyUsageQuota{
		UserID:       userID,
		Date:         date,
		UploadsLimit: uploadsLimit,
		QueriesLimit: queriesLimit,
	}
	if createErr := r.db.Create(&quota).Error; createErr != nil {
		// 可能被併發請求搶先建立
		if findErr := r.db.Where("user_id = ? AND date = ?", userID, date).First(&quota).Error; findErr != nil {
			return nil, createErr
		}
	}
	return &quota, nil
}

// GetDaily 查詢當日額度記錄
func (r *QuotaRepository) GetDaily(userID int64, date string) (*model.DailyUsageQuota, error) {
	var quota model.DailyUsageQuota
	err := r.db.Where("user_id = ? AND date = ?", userID, date).First(&quota).Error
	if err != nil {
		return nil, err
	}
	return &quota, nil
}

// IncrementDailyUsage 原子遞增當日用量
// 條件式遞增：用量未達上限才會加一，回傳是否成功。
// 成功後恆有 used ≤ limit，超量請求直接拒絕而非截斷。
func (r *QuotaRepository) IncrementDailyUsage(id int64, actionType string) (bool, error) {
	usedColumn, limitColumn := "uploads_used", "uploads_limit"
	if actionType == model.ActionQuery {
		usedColumn, limitColumn = "queries_used", "queries_limit"
	}

	result := r.db.Model(&model.DailyUsageQuota{}).
		Where("id = ? AND "+usedColumn+" < "+limitColumn, id).
		Update(usedColumn, gorm.Expr(usedColumn+" + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

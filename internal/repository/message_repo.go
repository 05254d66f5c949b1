package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(msg *model.Message) error {
	return r.db.Create(msg).Error
}

func (r *MessageRepository) GetByID(id int64) (*model.Message, error) {
	var msg model.Message
	err := r.db.Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListByUserID 會員收件匣
func (r *MessageRepository) ListByUserID(userID int64, page, pageSize int) ([]model.Message, int64, error) {
	query := r.db.Model(&model.Message{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []model.Message
	err := query.Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&messages).Error
	return messages, total, err
}

// CountUnread 未讀訊息數
func (r *MessageRepository) CountUnread(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Message{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead 標記已讀（僅限本人訊息）
func (r *MessageRepository) MarkRead(id, userID int64) error {
	now := time.Now()
	return r.db.Model(&model.Message{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error
}

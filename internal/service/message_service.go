package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/internal/model"
	"github.com/free689594-collab/BurgBug-sub002/internal/model/dto"
	"github.com/free689594-collab/BurgBug-sub002/internal/repository"
)

var ErrMessageNotFound = errors.New("找不到該則訊息")

type MessageService struct {
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
}

func NewMessageService(messageRepo *repository.MessageRepository, userRepo *repository.UserRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// List 會員收件匣
func (s *MessageService) List(userID int64, page, pageSize int) ([]dto.MessageItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	messages, total, err := s.messageRepo.ListByUserID(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]dto.MessageItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, dto.MessageItem{
			ID:        m.ID,
			Type:      m.Type,
			Title:     m.Title,
			Content:   m.Content,
			IsRead:    m.IsRead,
			CreatedAt: m.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return items, total, nil
}

// CountUnread 未讀訊息數
func (s *MessageService) CountUnread(userID int64) (*dto.UnreadCountResult, error) {
	count, err := s.messageRepo.CountUnread(userID)
	if err != nil {
		return nil, err
	}
	return &dto.UnreadCountResult{Count: count}, nil
}

// MarkRead 標記已讀（僅限本人訊息）
func (s *MessageService) MarkRead(userID, messageID int64) error {
	msg, err := s.messageRepo.GetByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if msg.UserID != userID {
		return ErrMessageNotFound
	}
	return s.messageRepo.MarkRead(messageID, userID)
}

// Send 管理員發送站內訊息
func (s *MessageService) Send(senderID int64, req *dto.SendMessageRequest) error {
	if _, err := s.userRepo.GetByID(req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	msg := &model.Message{
		UserID:   req.UserID,
		SenderID: &senderID,
		Type:     model.MessageTypeAdmin,
		Title:    req.Title,
		Content:  req.Content,
	}
	return s.messageRepo.Create(msg)
}

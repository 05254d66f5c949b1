package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/free689594-collab/BurgBug-sub002/internal/api/middleware"
	"github.com/free689594-collab/BurgBug-sub002/internal/model/dto"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/response"
	"github.com/free689594-collab/BurgBug-sub002/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// List 收件匣
// GET /api/v1/messages
func (h *MessageHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, total, err := h.messageService.List(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// UnreadCount 未讀訊息數
// GET /api/v1/messages/unread-count
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	result, err := h.messageService.CountUnread(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, result)
}

// MarkRead 標記已讀
// PUT /api/v1/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "訊息編號格式錯誤")
		return
	}

	if err := h.messageService.MarkRead(userID, messageID); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "已標記為已讀", nil)
}

// Send 管理員發送站內訊息
// POST /api/v1/admin/messages
func (h *MessageHandler) Send(c *gin.Context) {
	senderID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.messageService.Send(senderID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "訊息已送出", nil)
}

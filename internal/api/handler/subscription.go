package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/free689594-collab/BurgBug-sub002/internal/api/middleware"
	"github.com/free689594-collab/BurgBug-sub002/internal/model/dto"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/response"
	"github.com/free689594-collab/BurgBug-sub002/internal/service"
)

type SubscriptionHandler struct {
	subService   *service.SubscriptionService
	quotaService *service.QuotaService
}

func NewSubscriptionHandler(subService *service.SubscriptionService, quotaService *service.QuotaService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subService:   subService,
		quotaService: quotaService,
	}
}

// GetStatus 查詢自己的訂閱狀態與額度
// GET /api/v1/subscription/status
func (h *SubscriptionHandler) GetStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	status, err := h.subService.GetStatus(userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, status)
}

// ListPlans 查詢可訂閱的方案
// GET /api/v1/subscription/plans
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := h.subService.ListPlans()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, plans)
}

// CheckQuota 檢查額度（不扣除）
// POST /api/v1/subscription/check-quota
func (h *SubscriptionHandler) CheckQuota(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.QuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.quotaService.CheckQuota(userID, req.ActionType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidActionType):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, result)
}

// DeductQuota 扣除一單位額度
// POST /api/v1/subscription/deduct-quota
func (h *SubscriptionHandler) DeductQuota(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.QuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.quotaService.DeductQuota(userID, req.ActionType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidActionType):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	if !result.Success {
		response.QuotaError(c, result.Message)
		return
	}
	response.Success(c, result)
}

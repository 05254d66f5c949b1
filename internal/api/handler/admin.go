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

// AdminHandler 管理後台操作，路由須掛 AdminOnly 中介層
type AdminHandler struct {
	subService    *service.SubscriptionService
	debtService   *service.DebtService
	reportService *service.ReportService
}

func NewAdminHandler(
	subService *service.SubscriptionService,
	debtService *service.DebtService,
	reportService *service.ReportService,
) *AdminHandler {
	return &AdminHandler{
		subService:    subService,
		debtService:   debtService,
		reportService: reportService,
	}
}

// ExtendSubscription 延長訂閱
// POST /api/v1/admin/subscriptions/extend
func (h *AdminHandler) ExtendSubscription(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ExtendSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.subService.Extend(actorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInvalidExtendDays):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, result.Message, result)
}

// AdjustSubscriptionDays 調整訂閱天數（可為負值）
// POST /api/v1/admin/subscriptions/adjust-days
func (h *AdminHandler) AdjustSubscriptionDays(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.AdjustDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.subService.AdjustDays(actorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInvalidAdjustDays),
			errors.Is(err, service.ErrEndDateTooEarly):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, result.Message, result)
}

// SetSubscriptionStatus 強制變更訂閱狀態
// POST /api/v1/admin/subscriptions/set-status
func (h *AdminHandler) SetSubscriptionStatus(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.subService.SetStatus(actorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInvalidStatus):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, result.Message, result)
}

// SearchSubscriptions 訂閱搜尋
// GET /api/v1/admin/subscriptions
func (h *AdminHandler) SearchSubscriptions(c *gin.Context) {
	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	subs, total, err := h.subService.Search(status, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, subs)
}

// GetStats 訂閱統計
// GET /api/v1/admin/subscriptions/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.subService.GetStats()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, stats)
}

// ListAuditLogs 稽核記錄
// GET /api/v1/admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	action := c.Query("action")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	logs, total, err := h.subService.ListAuditLogs(action, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, logs)
}

// EditDebt 修正債務記錄
// PUT /api/v1/admin/debts/:id
func (h *AdminHandler) EditDebt(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	debtID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "記錄編號格式錯誤")
		return
	}

	var req dto.AdminDebtEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	debt, err := h.debtService.AdminEdit(actorID, debtID, &dto.DebtStatusUpdateRequest{
		RepaymentStatus: req.RepaymentStatus,
		Note:            req.Note,
	}, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDebtNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInvalidRepaymentStatus):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "修正完成", debt)
}

// ExportSubscriptions 匯出訂閱報表
// POST /api/v1/admin/reports/subscriptions
func (h *AdminHandler) ExportSubscriptions(c *gin.Context) {
	if h.reportService == nil {
		response.BusinessError(c, "報表功能未啟用")
		return
	}

	url, err := h.reportService.ExportSubscriptions(c.Query("status"))
	if err != nil {
		response.ServerError(c, "報表產生失敗")
		return
	}

	response.Success(c, gin.H{"download_url": url})
}

// ExportPayments 匯出付款報表
// POST /api/v1/admin/reports/payments
func (h *AdminHandler) ExportPayments(c *gin.Context) {
	if h.reportService == nil {
		response.BusinessError(c, "報表功能未啟用")
		return
	}

	userID, _ := strconv.ParseInt(c.Query("user_id"), 10, 64)
	url, err := h.reportService.ExportPayments(userID)
	if err != nil {
		response.ServerError(c, "報表產生失敗")
		return
	}

	response.Success(c, gin.H{"download_url": url})
}

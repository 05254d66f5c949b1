package handler

import (
	"errors"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/free689594-collab/BurgBug-sub002/internal/api/middleware"
	"github.com/free689594-collab/BurgBug-sub002/internal/model"
	"github.com/free689594-collab/BurgBug-sub002/internal/model/dto"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/response"
	"github.com/free689594-collab/BurgBug-sub002/internal/service"
)

type DebtHandler struct {
	debtService  *service.DebtService
	quotaService *service.QuotaService
}

func NewDebtHandler(debtService *service.DebtService, quotaService *service.QuotaService) *DebtHandler {
	return &DebtHandler{
		debtService:  debtService,
		quotaService: quotaService,
	}
}

// Upload 上傳債務記錄
// POST /api/v1/debts
// 額度由 QuotaCheck 中介層先行檢查，上傳成功後才扣除
func (h *DebtHandler) Upload(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.DebtUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	debt, err := h.debtService.Upload(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDebtorID),
			errors.Is(err, service.ErrInvalidRepaymentStatus):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	h.deductAfterSuccess(userID, model.ActionUpload)
	response.SuccessWithMessage(c, "上傳成功", debt)
}

// Search 查詢債務記錄
// POST /api/v1/debts/search
func (h *DebtHandler) Search(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.DebtSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	results, err := h.debtService.Search(&req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	h.deductAfterSuccess(userID, model.ActionQuery)
	response.Success(c, results)
}

// ListMine 自己上傳的債務記錄
// GET /api/v1/debts/mine
func (h *DebtHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	debts, total, err := h.debtService.ListMine(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, debts)
}

// UpdateStatus 更新還款狀態（僅限上傳者）
// PUT /api/v1/debts/:id/status
func (h *DebtHandler) UpdateStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	debtID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "記錄編號格式錯誤")
		return
	}

	var req dto.DebtStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	debt, err := h.debtService.UpdateStatus(userID, debtID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDebtNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNotDebtOwner):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrInvalidRepaymentStatus):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "更新成功", debt)
}

// deductAfterSuccess 操作成功後扣除額度
// 中介層已確認過有額度，這裡扣除失敗只記 log 不影響回應
func (h *DebtHandler) deductAfterSuccess(userID int64, actionType string) {
	if _, err := h.quotaService.DeductQuota(userID, actionType); err != nil {
		log.Printf("Failed to deduct %s quota for user %d: %v", actionType, userID, err)
	}
}

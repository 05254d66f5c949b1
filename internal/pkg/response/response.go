package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 錯誤碼定義
const (
	CodeSuccess          = 0
	CodeParamError       = 1000
	CodeAuthFailed       = 1001
	CodePermissionDenied = 1002
	CodeResourceNotFound = 1003
	CodeQuotaExceeded    = 1004
	CodeBusinessError    = 1005
	CodeServerError      = 5000
)

// 錯誤碼對應的預設訊息
var codeMessages = map[int]string{
	CodeSuccess:          "success",
	CodeParamError:       "參數錯誤",
	CodeAuthFailed:       "認證失敗",
	CodePermissionDenied: "權限不足",
	CodeResourceNotFound: "資源不存在",
	CodeQuotaExceeded:    "額度不足",
	CodeBusinessError:    "操作失敗",
	CodeServerError:      "系統錯誤",
}

// HTTP 狀態碼對應，讓呼叫端能以狀態碼區分錯誤類別
var codeStatus = map[int]int{
	CodeSuccess:          http.StatusOK,
	CodeParamError:       http.StatusBadRequest,
	CodeAuthFailed:       http.StatusUnauthorized,
	CodePermissionDenied: http.StatusForbidden,
	CodeResourceNotFound: http.StatusNotFound,
	CodeQuotaExceeded:    http.StatusForbidden,
	CodeBusinessError:    http.StatusBadRequest,
	CodeServerError:      http.StatusInternalServerError,
}

// Response 統一回應結構
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// PageData 分頁資料結構
type PageData struct {
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Items    interface{} `json:"items"`
}

// Success 成功回應
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 帶自訂訊息的成功回應
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// SuccessPage 分頁成功回應
func SuccessPage(c *gin.Context, total int64, page, pageSize int, items interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data: PageData{
			Total:    total,
			Page:     page,
			PageSize: pageSize,
			Items:    items,
		},
	})
}

// Error 錯誤回應
func Error(c *gin.Context, code int, message string) {
	if message == "" {
		message = codeMessages[code]
	}
	status, ok := codeStatus[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	c.JSON(status, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// ParamError 參數錯誤
func ParamError(c *gin.Context, message string) {
	Error(c, CodeParamError, message)
}

// AuthError 認證失敗
func AuthError(c *gin.Context, message string) {
	Error(c, CodeAuthFailed, message)
}

// PermissionError 權限不足
func PermissionError(c *gin.Context, message string) {
	Error(c, CodePermissionDenied, message)
}

// NotFoundError 資源不存在
func NotFoundError(c *gin.Context, message string) {
	Error(c, CodeResourceNotFound, message)
}

// QuotaError 額度不足（業務規則拒絕，非系統錯誤）
func QuotaError(c *gin.Context, message string) {
	Error(c, CodeQuotaExceeded, message)
}

// BusinessError 業務規則拒絕
func BusinessError(c *gin.Context, message string) {
	Error(c, CodeBusinessError, message)
}

// ServerError 系統錯誤（可重試）
func ServerError(c *gin.Context, message string) {
	Error(c, CodeServerError, message)
}

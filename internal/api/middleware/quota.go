package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/response"
	"github.com/free689594-collab/BurgBug-sub002/internal/service"
)

// QuotaCheck 額度檢查中介層
// 只檢查不扣除，實際扣除在操作成功後由處理器執行
func QuotaCheck(quotaService *service.QuotaService, actionType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		result, err := quotaService.CheckQuota(userID, actionType)
		if err != nil {
			response.ServerError(c, "額度檢查失敗")
			c.Abort()
			return
		}

		if !result.Allowed {
			msg := result.Message
			if msg == "" {
				msg = "額度已用完"
			}
			response.QuotaError(c, msg)
			c.Abort()
			return
		}

		c.Next()
	}
}

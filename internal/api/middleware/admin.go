package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/response"
	"github.com/free689594-collab/BurgBug-sub002/internal/repository"
)

// AdminOnly 管理員權限中介層，須接在 Auth 之後
// 角色每次都查資料庫，降權後舊 token 立刻失效
func AdminOnly(userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "請先登入")
			c.Abort()
			return
		}

		user, err := userRepo.GetByID(userID)
		if err != nil {
			response.AuthError(c, "認證失敗")
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			response.PermissionError(c, "需要管理員權限")
			c.Abort()
			return
		}

		c.Next()
	}
}

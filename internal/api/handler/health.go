package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/response"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check 健康檢查
// GET /api/v1/health
func (h *HealthHandler) Check(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil {
		response.ServerError(c, "database unavailable")
		return
	}
	if err := sqlDB.Ping(); err != nil {
		response.ServerError(c, "database unavailable")
		return
	}

	response.Success(c, gin.H{"status": "ok"})
}

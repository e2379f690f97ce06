package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/docuflow/lifecycle-backend/internal/http/response"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (hh *HealthHandler) Health(c *gin.Context) {
	sqlDB, err := hh.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		response.RespondError(c, http.StatusServiceUnavailable, "db_unreachable", err)
		return
	}
	response.RespondOK(c, gin.H{"status": "ok"})
}

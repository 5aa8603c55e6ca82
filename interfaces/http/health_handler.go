package http

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"dev-pulse/domain/apperror"
	"dev-pulse/infrastructure/utils"
)

type IHealthHandler interface {
	Health(c *gin.Context)
}

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) IHealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			fail(c, apperror.Unavailable("database unreachable", err))
			return
		}
	}
	ok(c, gin.H{"time": utils.GetCurrentTime()})
}

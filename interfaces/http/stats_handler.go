package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"dev-pulse/usecase"
)

type IStatsHandler interface {
	GetUserStats(c *gin.Context)
	GetActivityHeatmap(c *gin.Context)
}

type StatsHandler struct {
	statsUsecase   usecase.IStatsUsecase
	heatmapUsecase usecase.IHeatmapUsecase
}

func NewStatsHandler(statsUsecase usecase.IStatsUsecase, heatmapUsecase usecase.IHeatmapUsecase) IStatsHandler {
	return &StatsHandler{statsUsecase: statsUsecase, heatmapUsecase: heatmapUsecase}
}

func (h *StatsHandler) GetUserStats(c *gin.Context) {
	userID, authed := currentUserID(c)
	if !authed {
		unauthorized(c)
		return
	}

	stats, err := h.statsUsecase.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, stats)
}

func (h *StatsHandler) GetActivityHeatmap(c *gin.Context) {
	userID, authed := currentUserID(c)
	if !authed {
		unauthorized(c)
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "365"))
	heatmap, err := h.heatmapUsecase.GetHeatmap(c.Request.Context(), userID, days)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, heatmap)
}

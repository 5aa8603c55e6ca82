package http

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"dev-pulse/domain/model"
	"dev-pulse/usecase"
)

type ILeaderboardHandler interface {
	GetLeaderboard(c *gin.Context)
}

type LeaderboardHandler struct {
	leaderboardUsecase usecase.ILeaderboardUsecase
}

func NewLeaderboardHandler(leaderboardUsecase usecase.ILeaderboardUsecase) ILeaderboardHandler {
	return &LeaderboardHandler{leaderboardUsecase: leaderboardUsecase}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	period := model.Period(strings.ToLower(c.DefaultQuery("period", string(model.PeriodAllTime))))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	var platform *model.Platform
	if raw := strings.ToLower(c.Query("platform")); raw != "" {
		p := model.Platform(raw)
		platform = &p
	}

	entries, err := h.leaderboardUsecase.GetLeaderboard(c.Request.Context(), period, platform, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, entries)
}

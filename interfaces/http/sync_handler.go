package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dev-pulse/domain/dto"
	"dev-pulse/infrastructure/logger"
	"dev-pulse/usecase"
)

type ISyncHandler interface {
	Connect(c *gin.Context)
	Disconnect(c *gin.Context)
	TriggerSync(c *gin.Context)
	TriggerSyncAll(c *gin.Context)
	GetSyncStatus(c *gin.Context)
	GetSyncHistory(c *gin.Context)
}

type SyncHandler struct {
	syncUsecase usecase.ISyncUsecase
}

func NewSyncHandler(syncUsecase usecase.ISyncUsecase) ISyncHandler {
	return &SyncHandler{syncUsecase: syncUsecase}
}

func (h *SyncHandler) Connect(c *gin.Context) {
	userID, authed := currentUserID(c)
	if !authed {
		unauthorized(c)
		return
	}

	var req dto.ReqConnectPlatform
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}

	conn, err := h.syncUsecase.Connect(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Res{ResponseCode: "201", ResponseMessage: "Created", Data: conn})
}

func (h *SyncHandler) Disconnect(c *gin.Context) {
	userID, authed := currentUserID(c)
	if !authed {
		unauthorized(c)
		return
	}

	if err := h.syncUsecase.Disconnect(c.Request.Context(), userID, c.Param("platform")); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *SyncHandler) TriggerSync(c *gin.Context) {
	userID, authed := currentUserID(c)
	if !authed {
		unauthorized(c)
		return
	}

	var req dto.ReqTriggerSync
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}

	outcome, err := h.syncUsecase.TriggerSync(c.Request.Context(), userID, req.Platform)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.Res{ResponseCode: "202", ResponseMessage: "Accepted", Data: outcome})
}

func (h *SyncHandler) TriggerSyncAll(c *gin.Context) {
	userID, authed := currentUserID(c)
	if !authed {
		unauthorized(c)
		return
	}

	outcomes, err := h.syncUsecase.TriggerSyncAll(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.Res{ResponseCode: "202", ResponseMessage: "Accepted", Data: outcomes})
}

func (h *SyncHandler) GetSyncStatus(c *gin.Context) {
	userID, authed := currentUserID(c)
	if !authed {
		unauthorized(c)
		return
	}

	items, err := h.syncUsecase.GetSyncStatus(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, items)
}

func (h *SyncHandler) GetSyncHistory(c *gin.Context) {
	userID, authed := currentUserID(c)
	if !authed {
		unauthorized(c)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	jobs, err := h.syncUsecase.GetSyncHistory(c.Request.Context(), userID, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, jobs)
}

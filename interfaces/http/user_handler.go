package http

import (
	"crypto/md5"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dev-pulse/domain/dto"
	"dev-pulse/domain/model"
	"dev-pulse/infrastructure/logger"
	"dev-pulse/usecase"
)

const (
	ErrorUnmarshal = "Error while unmarshal"
)

type IUserHandler interface {
	Login(c *gin.Context)
	Register(c *gin.Context)
}

type UserHandler struct {
	userUsecase usecase.IUserUsecase
}

func NewUserHandler(userUsecase usecase.IUserUsecase) IUserHandler {
	return &UserHandler{userUsecase: userUsecase}
}

// hashPassword digests the password before it crosses into the usecase,
// so repositories only ever see the stored form.
func hashPassword(password string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(password)))
}

// statusOf turns the envelope's response code back into the HTTP status.
func statusOf(res dto.Res) int {
	if status, err := strconv.Atoi(res.ResponseCode); err == nil {
		return status
	}
	return http.StatusOK
}

func (h *UserHandler) Login(c *gin.Context) {
	var req model.ReqLogin
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}
	req.Password = hashPassword(req.Password)

	res := h.userUsecase.Login(c.Request.Context(), req)
	c.JSON(statusOf(res), res)
}

func (h *UserHandler) Register(c *gin.Context) {
	var req model.ReqRegister
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}
	req.Password = hashPassword(req.Password)

	res := h.userUsecase.Register(c.Request.Context(), req)
	c.JSON(statusOf(res), res)
}

package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/dto"
)

// currentUserID reads the id the auth middleware stored on the context.
func currentUserID(c *gin.Context) (int64, bool) {
	raw, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	s, ok := raw.(string)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"})
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: data})
}

// fail maps a typed application error onto an HTTP status and the
// standard envelope.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal Server Error"

	var ae *apperror.AppError
	if errors.As(err, &ae) {
		message = ae.Message
		switch ae.Kind {
		case apperror.KindNotFound:
			status = http.StatusNotFound
		case apperror.KindValidation:
			status = http.StatusBadRequest
		case apperror.KindInvalidCredential:
			status = http.StatusUnprocessableEntity
		case apperror.KindUnavailable:
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, dto.Res{ResponseCode: strconv.Itoa(status), ResponseMessage: message})
}

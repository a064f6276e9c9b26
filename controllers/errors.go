package controllers

import (
	"net/http"
	"strconv"

	"hotel-manager/middleware"
	"hotel-manager/services"
	"hotel-manager/utils"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// respondError maps service errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var cerr *services.StateConflictError
	var nerr *services.NotFoundError
	var perr *services.PermissionError

	switch {
	case errors.As(err, &verr):
		utils.JSONFieldErrors(c, http.StatusBadRequest, "validation failed", verr.Fields)
	case errors.As(err, &cerr):
		utils.JSONError(c, http.StatusConflict, cerr.Message)
	case errors.As(err, &nerr):
		utils.JSONError(c, http.StatusNotFound, nerr.Error())
	case errors.As(err, &perr):
		utils.JSONError(c, http.StatusForbidden, perr.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.JSONError(c, http.StatusUnauthorized, err.Error())
	default:
		log.WithError(err).
			WithField("request_id", c.GetString(middleware.RequestIDKey)).
			WithField("path", c.FullPath()).
			Error("request failed")
		utils.JSONError(c, http.StatusInternalServerError, "internal server error")
	}
}

func badPayload(c *gin.Context, err error) {
	utils.JSONFieldErrors(c, http.StatusBadRequest, "invalid request payload", map[string]string{"body": err.Error()})
}

// paramID reads a positive numeric path parameter; on failure it answers 400.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.JSONFieldErrors(c, http.StatusBadRequest, "invalid id", map[string]string{name: "must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}

func queryParams(c *gin.Context) map[string]string {
	out := map[string]string{}
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

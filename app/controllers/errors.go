package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/petition-qc/app/responses"
	"github.com/petition-qc/app/services"
)

// writeError maps the service sentinels onto the HTTP surface. Anything
// unmapped is a 500 with a generic message; the detail stays in the logs.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrNoActiveSession):
		c.JSON(http.StatusConflict, responses.ErrorResponse{
			Error:   "NO_ACTIVE_SESSION",
			Message: "no active data-entry session; start a session first",
		})
	case errors.Is(err, services.ErrSessionConflict):
		c.JSON(http.StatusConflict, responses.ErrorResponse{
			Error:   "SESSION_CONFLICT",
			Message: "another session start for this user is in flight; retry",
		})
	case errors.Is(err, services.ErrCollectorNotFound):
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "COLLECTOR_NOT_FOUND",
			Message: "unknown collector",
		})
	case errors.Is(err, services.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, responses.ErrorResponse{
			Error:   "STORAGE_UNAVAILABLE",
			Message: "storage backend unavailable",
		})
	default:
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "INTERNAL_ERROR",
			Message: "internal error",
		})
	}
}

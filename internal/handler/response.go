package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cabbook/internal/logger"
	"cabbook/internal/middleware"
	"cabbook/internal/service"
)

const internalErrorMessage = "internal server error"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// respondError sends err with the status of its kind. Errors of no known kind
// are logged and reported as a generic 500.
func respondError(c *gin.Context, log logger.ILogger, err error) {
	code := mapErrorToHTTPStatus(err)
	msg := err.Error()

	if code == http.StatusInternalServerError && !errors.Is(err, service.ErrUpstream) {
		log.Error("request failed",
			logger.String("method", c.Request.Method),
			logger.String("route", c.FullPath()),
			logger.Error(err),
		)
		msg = internalErrorMessage
	}

	_ = c.Error(err)
	c.JSON(code, ErrorResponse{Success: false, Message: msg})
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Message: msg})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service and middleware errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidState):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, middleware.ErrIdentityRequired),
		errors.Is(err, middleware.ErrIdentityMismatch):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests

	default:
		return http.StatusInternalServerError
	}
}

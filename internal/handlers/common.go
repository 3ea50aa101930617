package handlers

import (
	"net/http"
	"strconv"

	apperrors "github.com/PsyMetrics-KR/scoring-service/internal/errors"
	"github.com/PsyMetrics-KR/scoring-service/internal/services"
	"github.com/PsyMetrics-KR/scoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse wraps successful responses that carry no dedicated schema.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the logger shared by all handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func (h *BaseHandler) respondServiceError(c *gin.Context, err error) {
	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error(), Code: "not_found"})
	case services.IsClientError(err):
		var details interface{}
		if ve, ok := err.(apperrors.ValidationErrors); ok {
			details = ve
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error(), Details: details, Code: "bad_request"})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error(), Code: "conflict"})
	default:
		h.logger.LogError(err, "Unhandled service error", "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error", Code: "internal"})
	}
}

// parseUintParam reads a numeric path parameter, responding 400 itself when
// the value is malformed.
func (h *BaseHandler) parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "invalid " + name + " parameter",
			Code:    "bad_request",
		})
		return 0, false
	}
	return uint(value), true
}

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

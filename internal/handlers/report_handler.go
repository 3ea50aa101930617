package handlers

import (
	"net/http"

	"github.com/PsyMetrics-KR/scoring-service/internal/services"
	"github.com/PsyMetrics-KR/scoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	BaseHandler
	reports services.ReportService
}

func NewReportHandler(reports services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler: NewBaseHandler(logger),
		reports:     reports,
	}
}

// GetReport returns one report by id.
func (h *ReportHandler) GetReport(c *gin.Context) {
	reportID := c.Param("id")
	if reportID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "missing report id", Code: "bad_request"})
		return
	}

	detail, err := h.reports.GetByID(c.Request.Context(), reportID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ListUserReports returns a user's report history, newest first.
func (h *ReportHandler) ListUserReports(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "missing user id", Code: "bad_request"})
		return
	}

	summaries, err := h.reports.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

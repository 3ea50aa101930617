package handlers

import (
	"net/http"
	"strconv"

	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"github.com/PsyMetrics-KR/scoring-service/internal/repositories"
	"github.com/PsyMetrics-KR/scoring-service/internal/services"
	"github.com/PsyMetrics-KR/scoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// AdminHandler covers the rule-management and statistics endpoints consumed
// by the admin frontend. Authentication happens at the gateway; this service
// trusts the forwarded identity.
type AdminHandler struct {
	BaseHandler
	rules services.RuleService
	stats services.StatisticsService
}

func NewAdminHandler(rules services.RuleService, stats services.StatisticsService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger),
		rules:       rules,
		stats:       stats,
	}
}

// ReplaceNormTable replaces the norm table for a test, rejecting interval
// sets with overlaps or inverted bounds.
func (h *AdminHandler) ReplaceNormTable(c *gin.Context) {
	testID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	var req services.ReplaceNormTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Code: "bad_request"})
		return
	}
	req.TestID = testID

	table, err := h.rules.ReplaceNormTable(c.Request.Context(), &req)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "norm table replaced", Data: table})
}

// ListNormTables returns all norm tables of a test, default and group ones.
func (h *AdminHandler) ListNormTables(c *gin.Context) {
	testID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	tables, err := h.rules.ListNormTables(c.Request.Context(), testID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

// UpsertReportRule sets the STEN interpretation texts for a test.
func (h *AdminHandler) UpsertReportRule(c *gin.Context) {
	testID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	var req services.UpsertReportRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Code: "bad_request"})
		return
	}
	req.TestID = testID

	rule, err := h.rules.UpsertReportRule(c.Request.Context(), &req)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "report rule saved", Data: rule})
}

// GetQuestionStats returns the group statistic buckets of a question.
func (h *AdminHandler) GetQuestionStats(c *gin.Context) {
	questionID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.stats.GetQuestionStats(c.Request.Context(), questionID, statFiltersFromQuery(c))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetTestStats returns the group statistic buckets of a test.
func (h *AdminHandler) GetTestStats(c *gin.Context) {
	testID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.stats.GetTestStats(c.Request.Context(), testID, statFiltersFromQuery(c))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func statFiltersFromQuery(c *gin.Context) repositories.StatFilters {
	var filters repositories.StatFilters

	if v := c.Query("group_type"); v != "" {
		gt := models.GroupType(v)
		filters.GroupType = &gt
	}
	if v := c.Query("year"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			filters.Year = &year
		}
	}
	if v := c.Query("month"); v != "" {
		if month, err := strconv.Atoi(v); err == nil {
			filters.Month = &month
		}
	}
	if v := c.Query("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			filters.Limit = limit
		}
	}
	if v := c.Query("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil {
			filters.Offset = offset
		}
	}
	return filters
}

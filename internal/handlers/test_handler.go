package handlers

import (
	"net/http"

	"github.com/PsyMetrics-KR/scoring-service/internal/services"
	"github.com/PsyMetrics-KR/scoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type TestHandler struct {
	BaseHandler
	tests   services.TestService
	scoring services.ScoringService
}

func NewTestHandler(tests services.TestService, scoring services.ScoringService, logger utils.Logger) *TestHandler {
	return &TestHandler{
		BaseHandler: NewBaseHandler(logger),
		tests:       tests,
		scoring:     scoring,
	}
}

// ListTests returns all published tests.
func (h *TestHandler) ListTests(c *gin.Context) {
	tests, err := h.tests.ListPublished(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tests)
}

// GetTest returns one published test with its questions and options. Answer
// keys are stripped in the service layer.
func (h *TestHandler) GetTest(c *gin.Context) {
	testID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.tests.GetDetail(c.Request.Context(), testID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// SubmitTest scores a submission and returns the generated report triple.
func (h *TestHandler) SubmitTest(c *gin.Context) {
	testID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	var req services.SubmitTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Code: "bad_request"})
		return
	}
	req.TestID = testID

	result, err := h.scoring.Submit(c.Request.Context(), &req)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

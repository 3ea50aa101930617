package handlers

import (
	"github.com/PsyMetrics-KR/scoring-service/internal/services"
	"github.com/PsyMetrics-KR/scoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	testHandler   *TestHandler
	reportHandler *ReportHandler
	adminHandler  *AdminHandler
}

func NewHandlerManager(
	tests services.TestService,
	scoring services.ScoringService,
	reports services.ReportService,
	rules services.RuleService,
	stats services.StatisticsService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		testHandler:   NewTestHandler(tests, scoring, logger),
		reportHandler: NewReportHandler(reports, logger),
		adminHandler:  NewAdminHandler(rules, stats, logger),
	}
}

// SetupRoutes sets up all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		tests := v1.Group("/tests")
		{
			tests.GET("", hm.testHandler.ListTests)
			tests.GET("/:id", hm.testHandler.GetTest)
			tests.POST("/:id/submit", hm.testHandler.SubmitTest)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/:id", hm.reportHandler.GetReport)
			reports.GET("/user/:user_id", hm.reportHandler.ListUserReports)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/tests/:id/norms", hm.adminHandler.ListNormTables)
			admin.PUT("/tests/:id/norms", hm.adminHandler.ReplaceNormTable)
			admin.PUT("/tests/:id/report-rules", hm.adminHandler.UpsertReportRule)
			admin.GET("/statistics/questions/:id", hm.adminHandler.GetQuestionStats)
			admin.GET("/statistics/tests/:id", hm.adminHandler.GetTestStats)
		}
	}
}

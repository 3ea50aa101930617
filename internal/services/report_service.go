package services

import (
	"context"
	"fmt"
	"time"

	"github.com/PsyMetrics-KR/scoring-service/internal/repositories"
	"github.com/PsyMetrics-KR/scoring-service/internal/utils"
)

// ReportService reads persisted reports for test takers and company admins.
type ReportService interface {
	GetByID(ctx context.Context, reportID string) (*ReportDetail, error)
	ListByUser(ctx context.Context, userID string) ([]*ReportSummary, error)
}

type ReportSummary struct {
	ReportID    string    `json:"report_id"`
	TestID      uint      `json:"test_id"`
	TestName    string    `json:"test_name"`
	RawScore    int       `json:"raw_score"`
	ScoreLevel  string    `json:"score_level"`
	GeneratedAt time.Time `json:"generated_at"`
}

type ReportDetail struct {
	ReportID          string    `json:"report_id"`
	UserID            string    `json:"user_id"`
	TestID            uint      `json:"test_id"`
	TestName          string    `json:"test_name"`
	RawScore          int       `json:"raw_score"`
	StandardizedScore float64   `json:"standardized_score"`
	ScoreLevel        string    `json:"score_level"`
	Description       string    `json:"description"`
	GeneratedAt       time.Time `json:"generated_at"`
}

type reportService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewReportService(repo repositories.Repository, logger utils.Logger) ReportService {
	return &reportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *reportService) GetByID(ctx context.Context, reportID string) (*ReportDetail, error) {
	report, err := s.repo.Report().GetByID(ctx, reportID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return &ReportDetail{
		ReportID:          report.ID,
		UserID:            report.UserID,
		TestID:            report.TestID,
		TestName:          s.testName(ctx, report.TestID),
		RawScore:          report.RawScore,
		StandardizedScore: report.StandardizedScore,
		ScoreLevel:        report.ScoreLevel,
		Description:       report.Description,
		GeneratedAt:       report.GeneratedAt,
	}, nil
}

func (s *reportService) ListByUser(ctx context.Context, userID string) ([]*ReportSummary, error) {
	reports, err := s.repo.Report().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	// Tests repeat across a user's history; avoid refetching names.
	names := make(map[uint]string)

	summaries := make([]*ReportSummary, 0, len(reports))
	for _, report := range reports {
		name, ok := names[report.TestID]
		if !ok {
			name = s.testName(ctx, report.TestID)
			names[report.TestID] = name
		}

		summaries = append(summaries, &ReportSummary{
			ReportID:    report.ID,
			TestID:      report.TestID,
			TestName:    name,
			RawScore:    report.RawScore,
			ScoreLevel:  report.ScoreLevel,
			GeneratedAt: report.GeneratedAt,
		})
	}
	return summaries, nil
}

func (s *reportService) testName(ctx context.Context, testID uint) string {
	test, err := s.repo.Test().GetByID(ctx, testID)
	if err != nil {
		// Historical reports can outlive their test; the report still renders.
		return "Unknown"
	}
	return test.Name
}

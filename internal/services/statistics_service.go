package services

import (
	"context"
	"fmt"

	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"github.com/PsyMetrics-KR/scoring-service/internal/repositories"
	"github.com/PsyMetrics-KR/scoring-service/internal/utils"
	"gorm.io/datatypes"
)

// AnswerObservation is one evaluated answer folded into a question bucket.
type AnswerObservation struct {
	QuestionID        uint
	Correct           bool
	ResponseTimeSec   float64
	SelectedOptionIDs []uint
	Group             models.GroupSelector
	Year              int
	Month             int
}

// ReportObservation is one generated report folded into a test bucket.
type ReportObservation struct {
	TestID            uint
	StandardizedScore float64
	ScoreLevel        string
	Group             models.GroupSelector
	Year              int
	Month             int
}

// StatisticsService maintains the running per-group aggregates. Updates are
// exact online folds: the stored rates are always the weighted mean of every
// observation recorded so far, never an approximation or a re-scan.
//
// RecordAnswer and RecordReport take the repository explicitly because they
// must run inside the caller's submission transaction; the row lock taken by
// GetQuestionStatForUpdate serializes concurrent folds into the same bucket.
// Two transactions racing to create a missing bucket are resolved by retrying
// after the unique-constraint violation, when the re-read finds the row; the
// repository rolls the failed create back to a savepoint so the surrounding
// transaction stays usable for that re-read.
type StatisticsService interface {
	RecordAnswer(ctx context.Context, repo repositories.Repository, obs AnswerObservation) error
	RecordReport(ctx context.Context, repo repositories.Repository, obs ReportObservation) error

	GetQuestionStats(ctx context.Context, questionID uint, filters repositories.StatFilters) ([]*models.QuestionGroupStat, error)
	GetTestStats(ctx context.Context, testID uint, filters repositories.StatFilters) ([]*models.TestGroupStat, error)
}

type statisticsService struct {
	repo       repositories.Repository
	logger     utils.Logger
	maxRetries int
}

func NewStatisticsService(repo repositories.Repository, logger utils.Logger, maxRetries int) StatisticsService {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &statisticsService{
		repo:       repo,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

func (s *statisticsService) RecordAnswer(ctx context.Context, repo repositories.Repository, obs AnswerObservation) error {
	key := repositories.QuestionStatKey{
		QuestionID: obs.QuestionID,
		GroupType:  obs.Group.Type,
		GroupValue: obs.Group.Value,
		Year:       obs.Year,
		Month:      obs.Month,
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		stat, err := repo.Stats().GetQuestionStatForUpdate(ctx, key)
		switch {
		case err == nil:
			foldAnswerObservation(stat, obs)
			return repo.Stats().UpdateQuestionStat(ctx, stat)

		case repositories.IsNotFoundError(err):
			createErr := repo.Stats().CreateQuestionStat(ctx, newQuestionStat(obs))
			if createErr == nil {
				return nil
			}
			if repositories.IsDuplicateError(createErr) {
				// Another transaction created the bucket first; re-read and fold.
				s.logger.Debug("Question stat bucket created concurrently, retrying",
					"question_id", obs.QuestionID,
					"attempt", attempt+1)
				continue
			}
			return fmt.Errorf("failed to create question stat bucket: %w", createErr)

		default:
			return fmt.Errorf("failed to read question stat bucket: %w", err)
		}
	}

	return fmt.Errorf("%w: question %d bucket %s/%s %d-%02d",
		ErrStatsUpdateConflict, obs.QuestionID, obs.Group.Type, obs.Group.Value, obs.Year, obs.Month)
}

func (s *statisticsService) RecordReport(ctx context.Context, repo repositories.Repository, obs ReportObservation) error {
	key := repositories.TestStatKey{
		TestID:     obs.TestID,
		GroupType:  obs.Group.Type,
		GroupValue: obs.Group.Value,
		Year:       obs.Year,
		Month:      obs.Month,
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		stat, err := repo.Stats().GetTestStatForUpdate(ctx, key)
		switch {
		case err == nil:
			foldReportObservation(stat, obs)
			return repo.Stats().UpdateTestStat(ctx, stat)

		case repositories.IsNotFoundError(err):
			createErr := repo.Stats().CreateTestStat(ctx, newTestStat(obs))
			if createErr == nil {
				return nil
			}
			if repositories.IsDuplicateError(createErr) {
				s.logger.Debug("Test stat bucket created concurrently, retrying",
					"test_id", obs.TestID,
					"attempt", attempt+1)
				continue
			}
			return fmt.Errorf("failed to create test stat bucket: %w", createErr)

		default:
			return fmt.Errorf("failed to read test stat bucket: %w", err)
		}
	}

	return fmt.Errorf("%w: test %d bucket %s/%s %d-%02d",
		ErrStatsUpdateConflict, obs.TestID, obs.Group.Type, obs.Group.Value, obs.Year, obs.Month)
}

func (s *statisticsService) GetQuestionStats(ctx context.Context, questionID uint, filters repositories.StatFilters) ([]*models.QuestionGroupStat, error) {
	stats, err := s.repo.Stats().ListQuestionStats(ctx, questionID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list question stats: %w", err)
	}
	return stats, nil
}

func (s *statisticsService) GetTestStats(ctx context.Context, testID uint, filters repositories.StatFilters) ([]*models.TestGroupStat, error) {
	stats, err := s.repo.Stats().ListTestStats(ctx, testID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list test stats: %w", err)
	}
	return stats, nil
}

// ===== ONLINE UPDATE FOLDS =====

// foldAnswerObservation applies the exact incremental mean update:
// new_rate = (old_rate*n + x) / (n+1), likewise for response time.
func foldAnswerObservation(stat *models.QuestionGroupStat, obs AnswerObservation) {
	n := float64(stat.NumResponses)

	correct := 0.0
	if obs.Correct {
		correct = 1.0
	}

	stat.CorrectRate = (stat.CorrectRate*n + correct) / (n + 1)
	stat.AvgResponseTime = (stat.AvgResponseTime*n + obs.ResponseTimeSec) / (n + 1)
	stat.NumResponses++

	dist := stat.OptionDistribution.Data()
	if dist == nil {
		dist = models.OptionDistribution{}
	}
	for _, optionID := range obs.SelectedOptionIDs {
		dist[optionID]++
	}
	stat.OptionDistribution = datatypes.NewJSONType(dist)
}

func newQuestionStat(obs AnswerObservation) *models.QuestionGroupStat {
	correctRate := 0.0
	if obs.Correct {
		correctRate = 1.0
	}

	dist := models.OptionDistribution{}
	for _, optionID := range obs.SelectedOptionIDs {
		dist[optionID]++
	}

	return &models.QuestionGroupStat{
		QuestionID:         obs.QuestionID,
		GroupType:          obs.Group.Type,
		GroupValue:         obs.Group.Value,
		Year:               obs.Year,
		Month:              obs.Month,
		NumResponses:       1,
		CorrectRate:        correctRate,
		AvgResponseTime:    obs.ResponseTimeSec,
		OptionDistribution: datatypes.NewJSONType(dist),
	}
}

func foldReportObservation(stat *models.TestGroupStat, obs ReportObservation) {
	n := float64(stat.NumReports)

	stat.AvgStandardizedScore = (stat.AvgStandardizedScore*n + obs.StandardizedScore) / (n + 1)
	stat.NumReports++

	dist := stat.StenDistribution.Data()
	if dist == nil {
		dist = models.StenDistribution{}
	}
	dist[obs.ScoreLevel]++
	stat.StenDistribution = datatypes.NewJSONType(dist)
}

func newTestStat(obs ReportObservation) *models.TestGroupStat {
	return &models.TestGroupStat{
		TestID:               obs.TestID,
		GroupType:            obs.Group.Type,
		GroupValue:           obs.Group.Value,
		Year:                 obs.Year,
		Month:                obs.Month,
		NumReports:           1,
		AvgStandardizedScore: obs.StandardizedScore,
		StenDistribution:     datatypes.NewJSONType(models.StenDistribution{obs.ScoreLevel: 1}),
	}
}

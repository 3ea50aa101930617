package services

import (
	"context"
	"testing"

	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"github.com/PsyMetrics-KR/scoring-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func seoulGroup() models.GroupSelector {
	return models.GroupSelector{Type: models.GroupSchool, Value: "서울고등학교"}
}

func answerObs(correct bool, timeSec float64, optionIDs ...uint) AnswerObservation {
	return AnswerObservation{
		QuestionID:        101,
		Correct:           correct,
		ResponseTimeSec:   timeSec,
		SelectedOptionIDs: optionIDs,
		Group:             seoulGroup(),
		Year:              2026,
		Month:             8,
	}
}

func TestFoldAnswerObservation_IncrementalMean(t *testing.T) {
	stat := newQuestionStat(answerObs(true, 5.0, 1))

	assert.Equal(t, 1, stat.NumResponses)
	assert.Equal(t, 1.0, stat.CorrectRate)
	assert.Equal(t, 5.0, stat.AvgResponseTime)

	foldAnswerObservation(stat, answerObs(false, 15.0, 2))

	assert.Equal(t, 2, stat.NumResponses)
	assert.Equal(t, 0.5, stat.CorrectRate)
	assert.Equal(t, 10.0, stat.AvgResponseTime)
	assert.Equal(t, models.OptionDistribution{1: 1, 2: 1}, stat.OptionDistribution.Data())
}

func TestFoldAnswerObservation_MatchesDirectMean(t *testing.T) {
	observations := []AnswerObservation{
		answerObs(true, 3.5, 1),
		answerObs(false, 12.0, 2),
		answerObs(true, 7.25, 1),
		answerObs(true, 0.5, 3),
		answerObs(false, 22.0, 2),
		answerObs(false, 9.75, 2),
		answerObs(true, 4.0, 1),
	}

	stat := newQuestionStat(observations[0])
	for _, obs := range observations[1:] {
		foldAnswerObservation(stat, obs)
	}

	totalCorrect, totalTime := 0.0, 0.0
	for _, obs := range observations {
		if obs.Correct {
			totalCorrect++
		}
		totalTime += obs.ResponseTimeSec
	}
	n := float64(len(observations))

	assert.Equal(t, len(observations), stat.NumResponses)
	assert.InDelta(t, totalCorrect/n, stat.CorrectRate, 1e-9)
	assert.InDelta(t, totalTime/n, stat.AvgResponseTime, 1e-9)
	assert.Equal(t, models.OptionDistribution{1: 3, 2: 3, 3: 1}, stat.OptionDistribution.Data())
}

func TestFoldAnswerObservation_NilDistribution(t *testing.T) {
	stat := &models.QuestionGroupStat{NumResponses: 4, CorrectRate: 0.25, AvgResponseTime: 6.0}

	foldAnswerObservation(stat, answerObs(true, 6.0, 9, 10))

	assert.Equal(t, 5, stat.NumResponses)
	assert.InDelta(t, 0.4, stat.CorrectRate, 1e-9)
	assert.Equal(t, models.OptionDistribution{9: 1, 10: 1}, stat.OptionDistribution.Data())
}

func TestFoldReportObservation_IncrementalMean(t *testing.T) {
	obs := ReportObservation{
		TestID:            1,
		StandardizedScore: 40,
		ScoreLevel:        "STEN 4",
		Group:             seoulGroup(),
		Year:              2026,
		Month:             8,
	}
	stat := newTestStat(obs)

	assert.Equal(t, 1, stat.NumReports)
	assert.Equal(t, 40.0, stat.AvgStandardizedScore)

	obs.StandardizedScore = 80
	obs.ScoreLevel = "STEN 8"
	foldReportObservation(stat, obs)

	assert.Equal(t, 2, stat.NumReports)
	assert.Equal(t, 60.0, stat.AvgStandardizedScore)
	assert.Equal(t, models.StenDistribution{"STEN 4": 1, "STEN 8": 1}, stat.StenDistribution.Data())
}

func TestStatisticsService_RecordAnswer_CreatesFirstBucket(t *testing.T) {
	repo := newMockRepository()
	svc := NewStatisticsService(repo, utils.NewDevelopmentLogger(), 3)

	repo.stats.On("GetQuestionStatForUpdate", mock.Anything, mock.Anything).
		Return(nil, gorm.ErrRecordNotFound)

	var created *models.QuestionGroupStat
	repo.stats.On("CreateQuestionStat", mock.Anything, mock.AnythingOfType("*models.QuestionGroupStat")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.QuestionGroupStat)
		}).
		Return(nil)

	err := svc.RecordAnswer(context.Background(), repo, answerObs(true, 5.0, 1))
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, uint(101), created.QuestionID)
	assert.Equal(t, 2026, created.Year)
	assert.Equal(t, 8, created.Month)
	assert.Equal(t, 1, created.NumResponses)
	assert.Equal(t, 1.0, created.CorrectRate)
}

func TestStatisticsService_RecordAnswer_FoldsExistingBucket(t *testing.T) {
	repo := newMockRepository()
	svc := NewStatisticsService(repo, utils.NewDevelopmentLogger(), 3)

	existing := &models.QuestionGroupStat{
		QuestionID:         101,
		GroupType:          models.GroupSchool,
		GroupValue:         "서울고등학교",
		Year:               2026,
		Month:              8,
		NumResponses:       1,
		CorrectRate:        1.0,
		AvgResponseTime:    5.0,
		OptionDistribution: datatypes.NewJSONType(models.OptionDistribution{1: 1}),
	}
	repo.stats.On("GetQuestionStatForUpdate", mock.Anything, mock.Anything).Return(existing, nil)

	var updated *models.QuestionGroupStat
	repo.stats.On("UpdateQuestionStat", mock.Anything, mock.AnythingOfType("*models.QuestionGroupStat")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(*models.QuestionGroupStat)
		}).
		Return(nil)

	err := svc.RecordAnswer(context.Background(), repo, answerObs(false, 15.0, 2))
	require.NoError(t, err)

	require.NotNil(t, updated)
	assert.Equal(t, 2, updated.NumResponses)
	assert.Equal(t, 0.5, updated.CorrectRate)
	assert.Equal(t, 10.0, updated.AvgResponseTime)
}

func TestStatisticsService_RecordAnswer_RetriesOnConcurrentCreate(t *testing.T) {
	repo := newMockRepository()
	svc := NewStatisticsService(repo, utils.NewDevelopmentLogger(), 3)

	// The first read misses, the create loses the race, the re-read finds the
	// row the other transaction committed.
	repo.stats.On("GetQuestionStatForUpdate", mock.Anything, mock.Anything).
		Return(nil, gorm.ErrRecordNotFound).Once()
	repo.stats.On("CreateQuestionStat", mock.Anything, mock.AnythingOfType("*models.QuestionGroupStat")).
		Return(gorm.ErrDuplicatedKey).Once()
	repo.stats.On("GetQuestionStatForUpdate", mock.Anything, mock.Anything).
		Return(&models.QuestionGroupStat{NumResponses: 1, CorrectRate: 0, AvgResponseTime: 3.0}, nil).Once()
	repo.stats.On("UpdateQuestionStat", mock.Anything, mock.AnythingOfType("*models.QuestionGroupStat")).
		Return(nil).Once()

	err := svc.RecordAnswer(context.Background(), repo, answerObs(true, 5.0, 1))
	require.NoError(t, err)
	repo.stats.AssertExpectations(t)
}

func TestStatisticsService_RecordAnswer_ConflictAfterRetries(t *testing.T) {
	repo := newMockRepository()
	svc := NewStatisticsService(repo, utils.NewDevelopmentLogger(), 2)

	repo.stats.On("GetQuestionStatForUpdate", mock.Anything, mock.Anything).
		Return(nil, gorm.ErrRecordNotFound)
	repo.stats.On("CreateQuestionStat", mock.Anything, mock.AnythingOfType("*models.QuestionGroupStat")).
		Return(gorm.ErrDuplicatedKey)

	err := svc.RecordAnswer(context.Background(), repo, answerObs(true, 5.0, 1))
	assert.ErrorIs(t, err, ErrStatsUpdateConflict)
	repo.stats.AssertNumberOfCalls(t, "CreateQuestionStat", 2)
}

func TestStatisticsService_RecordReport_CreatesAndFolds(t *testing.T) {
	repo := newMockRepository()
	svc := NewStatisticsService(repo, utils.NewDevelopmentLogger(), 3)

	existing := &models.TestGroupStat{
		TestID:               1,
		NumReports:           2,
		AvgStandardizedScore: 30,
		StenDistribution:     datatypes.NewJSONType(models.StenDistribution{"STEN 3": 2}),
	}
	repo.stats.On("GetTestStatForUpdate", mock.Anything, mock.Anything).Return(existing, nil)

	var updated *models.TestGroupStat
	repo.stats.On("UpdateTestStat", mock.Anything, mock.AnythingOfType("*models.TestGroupStat")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(*models.TestGroupStat)
		}).
		Return(nil)

	err := svc.RecordReport(context.Background(), repo, ReportObservation{
		TestID:            1,
		StandardizedScore: 90,
		ScoreLevel:        "STEN 9",
		Group:             seoulGroup(),
		Year:              2026,
		Month:             8,
	})
	require.NoError(t, err)

	require.NotNil(t, updated)
	assert.Equal(t, 3, updated.NumReports)
	assert.InDelta(t, 50.0, updated.AvgStandardizedScore, 1e-9)
	assert.Equal(t, models.StenDistribution{"STEN 3": 2, "STEN 9": 1}, updated.StenDistribution.Data())
}

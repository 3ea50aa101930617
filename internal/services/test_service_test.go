package services

import (
	"context"
	"testing"

	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"github.com/PsyMetrics-KR/scoring-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTestService_ListPublished(t *testing.T) {
	repo := newMockRepository()
	svc := NewTestService(repo, utils.NewDevelopmentLogger())

	repo.test.On("ListPublished", mock.Anything).Return([]*models.Test{
		{ID: 1, Name: "직무적성검사", Type: models.TestAptitude, Version: "2.1", DurationMinutes: 60, Published: true},
		{ID: 2, Name: "인성검사", Type: models.TestPersonality, Version: "1.0", DurationMinutes: 40, Published: true},
	}, nil)

	summaries, err := svc.ListPublished(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "직무적성검사", summaries[0].Name)
	assert.Equal(t, "2.1", summaries[0].Version)
}

func TestTestService_GetDetail_HidesAnswerKeyAndUnapproved(t *testing.T) {
	repo := newMockRepository()
	svc := NewTestService(repo, utils.NewDevelopmentLogger())

	repo.test.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(&models.Test{
		ID:        1,
		Name:      "직무적성검사",
		Type:      models.TestAptitude,
		Published: true,
		Questions: []models.TestQuestion{
			{
				TestID:     1,
				QuestionID: 101,
				Position:   1,
				Question: models.Question{
					ID:     101,
					Text:   "다음 중 옳은 것은?",
					Status: models.QuestionApproved,
					Options: []models.Option{
						{ID: 1011, Order: 0, Text: "보기 1", IsCorrect: true},
						{ID: 1012, Order: 1, Text: "보기 2"},
					},
				},
			},
			{
				TestID:     1,
				QuestionID: 102,
				Position:   2,
				Question: models.Question{
					ID:     102,
					Text:   "검수 대기 문항",
					Status: models.QuestionWaiting,
				},
			},
		},
	}, nil)

	detail, err := svc.GetDetail(context.Background(), 1)
	require.NoError(t, err)

	// The waiting question never reaches the taker.
	require.Len(t, detail.Questions, 1)
	assert.Equal(t, uint(101), detail.Questions[0].QuestionID)
	require.Len(t, detail.Questions[0].Options, 2)
	assert.Equal(t, "보기 1", detail.Questions[0].Options[0].Text)
}

func TestTestService_GetDetail_UnpublishedLooksMissing(t *testing.T) {
	repo := newMockRepository()
	svc := NewTestService(repo, utils.NewDevelopmentLogger())

	repo.test.On("GetByIDWithQuestions", mock.Anything, uint(1)).
		Return(&models.Test{ID: 1, Published: false}, nil)

	_, err := svc.GetDetail(context.Background(), 1)
	assert.ErrorIs(t, err, ErrTestNotFound)
}

func TestTestService_GetDetail_NotFound(t *testing.T) {
	repo := newMockRepository()
	svc := NewTestService(repo, utils.NewDevelopmentLogger())

	repo.test.On("GetByIDWithQuestions", mock.Anything, uint(9)).
		Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetDetail(context.Background(), 9)
	assert.ErrorIs(t, err, ErrTestNotFound)
}

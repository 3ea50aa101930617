package services

import (
	"context"
	"fmt"

	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"github.com/PsyMetrics-KR/scoring-service/internal/repositories"
	"github.com/PsyMetrics-KR/scoring-service/internal/utils"
)

// TestService serves the taker-facing test catalog. Option answer keys never
// leave this layer; the Option model hides IsCorrect from serialization and
// the detail view only carries display fields.
type TestService interface {
	ListPublished(ctx context.Context) ([]*TestSummary, error)
	GetDetail(ctx context.Context, testID uint) (*TestDetail, error)
}

type TestSummary struct {
	TestID          uint            `json:"test_id"`
	Name            string          `json:"name"`
	Type            models.TestType `json:"type"`
	Version         string          `json:"version"`
	DurationMinutes int             `json:"duration_minutes"`
}

type TestDetail struct {
	TestID          uint             `json:"test_id"`
	Name            string           `json:"name"`
	Type            models.TestType  `json:"type"`
	DurationMinutes int              `json:"duration_minutes"`
	Questions       []QuestionDetail `json:"questions"`
}

type QuestionDetail struct {
	QuestionID       uint           `json:"question_id"`
	Position         int            `json:"position"`
	Text             string         `json:"text"`
	IsMultipleChoice bool           `json:"is_multiple_choice"`
	Options          []OptionDetail `json:"options"`
}

type OptionDetail struct {
	OptionID uint    `json:"option_id"`
	Order    int     `json:"order"`
	Text     string  `json:"text"`
	ImageURL *string `json:"image_url,omitempty"`
}

type testService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewTestService(repo repositories.Repository, logger utils.Logger) TestService {
	return &testService{
		repo:   repo,
		logger: logger,
	}
}

func (s *testService) ListPublished(ctx context.Context) ([]*TestSummary, error) {
	tests, err := s.repo.Test().ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	summaries := make([]*TestSummary, 0, len(tests))
	for _, test := range tests {
		summaries = append(summaries, &TestSummary{
			TestID:          test.ID,
			Name:            test.Name,
			Type:            test.Type,
			Version:         test.Version,
			DurationMinutes: test.DurationMinutes,
		})
	}
	return summaries, nil
}

func (s *testService) GetDetail(ctx context.Context, testID uint) (*TestDetail, error) {
	test, err := s.repo.Test().GetByIDWithQuestions(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if !test.Published {
		return nil, ErrTestNotFound
	}

	detail := &TestDetail{
		TestID:          test.ID,
		Name:            test.Name,
		Type:            test.Type,
		DurationMinutes: test.DurationMinutes,
		Questions:       make([]QuestionDetail, 0, len(test.Questions)),
	}

	for _, link := range test.Questions {
		// Unapproved questions stay invisible even if still linked.
		if link.Question.Status != models.QuestionApproved {
			continue
		}

		question := QuestionDetail{
			QuestionID:       link.QuestionID,
			Position:         link.Position,
			Text:             link.Question.Text,
			IsMultipleChoice: link.Question.IsMultipleChoice,
			Options:          make([]OptionDetail, 0, len(link.Question.Options)),
		}
		for _, opt := range link.Question.Options {
			question.Options = append(question.Options, OptionDetail{
				OptionID: opt.ID,
				Order:    opt.Order,
				Text:     opt.Text,
				ImageURL: opt.ImageURL,
			})
		}
		detail.Questions = append(detail.Questions, question)
	}

	return detail, nil
}

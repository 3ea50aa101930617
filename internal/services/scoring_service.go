package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/PsyMetrics-KR/scoring-service/internal/events"
	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"github.com/PsyMetrics-KR/scoring-service/internal/repositories"
	"github.com/PsyMetrics-KR/scoring-service/internal/utils"
	"github.com/PsyMetrics-KR/scoring-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ScoringService runs the full submission pipeline: evaluate every answer
// against its answer key, aggregate the raw and standardized scores, resolve
// the STEN level against the test's norm table, build the report, and fold the
// per-question and per-test group statistics. All rows of one submission are
// written in a single transaction; a submission either lands completely or not
// at all.
type ScoringService interface {
	Submit(ctx context.Context, req *SubmitTestRequest) (*SubmitTestResult, error)
}

type SubmitTestRequest struct {
	TestID  uint              `json:"test_id" validate:"required"`
	UserID  string            `json:"user_id" validate:"required,max=64"`
	Answers []SubmittedAnswer `json:"answers" validate:"dive"`

	// Group overrides the profile-derived statistics group; external callers
	// like the B2B batch runner classify their own cohorts.
	Group *models.GroupSelector `json:"group" validate:"omitempty"`
}

type SubmittedAnswer struct {
	QuestionID        uint    `json:"question_id" validate:"required"`
	SelectedOptionIDs []uint  `json:"selected_option_ids"`
	ResponseTimeSec   float64 `json:"response_time_sec" validate:"min=0"`
}

type SubmitTestResult struct {
	ReportID          string  `json:"report_id"`
	RawScore          int     `json:"raw_score"`
	StandardizedScore float64 `json:"standardized_score"`
	ScoreLevel        string  `json:"score_level"`
	Description       string  `json:"description"`
}

type scoringService struct {
	repo       repositories.Repository
	rules      RuleService
	norms      NormResolver
	stats      StatisticsService
	publisher  events.EventPublisher
	logger     utils.Logger
	validator  *validator.Validator
	scoreScale float64
}

func NewScoringService(
	repo repositories.Repository,
	rules RuleService,
	norms NormResolver,
	stats StatisticsService,
	publisher events.EventPublisher,
	logger utils.Logger,
	v *validator.Validator,
	scoreScale float64,
) ScoringService {
	return &scoringService{
		repo:       repo,
		rules:      rules,
		norms:      norms,
		stats:      stats,
		publisher:  publisher,
		logger:     logger,
		validator:  v,
		scoreScale: scoreScale,
	}
}

func (s *scoringService) Submit(ctx context.Context, req *SubmitTestRequest) (*SubmitTestResult, error) {
	if len(req.Answers) == 0 {
		return nil, ErrEmptySubmission
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	s.logger.Info("Scoring submission",
		"test_id", req.TestID,
		"user_id", req.UserID,
		"answers_count", len(req.Answers))

	test, err := s.repo.Test().GetByID(ctx, req.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if !test.Published {
		return nil, ErrTestNotPublished
	}

	group := req.Group
	if group == nil {
		group = s.lookupProfileGroup(ctx, req.UserID)
	}

	evaluated, err := s.evaluateAnswers(ctx, req)
	if err != nil {
		return nil, err
	}

	rawScore := countCorrect(evaluated)
	standardized := standardizeScore(rawScore, s.scoreScale)

	sten, err := s.norms.Resolve(ctx, req.TestID, standardized, group)
	if err != nil {
		return nil, err
	}
	scoreLevel := models.FormatScoreLevel(sten)

	description := s.lookupDescription(ctx, req.TestID, sten)

	now := time.Now().UTC()
	report := &models.Report{
		ID:                uuid.NewString(),
		UserID:            req.UserID,
		TestID:            req.TestID,
		RawScore:          rawScore,
		StandardizedScore: standardized,
		Sten:              sten,
		ScoreLevel:        scoreLevel,
		Description:       description,
		GeneratedAt:       now,
	}

	err = s.repo.WithTx(ctx, func(txRepo repositories.Repository) error {
		responses := make([]*models.Response, 0, len(evaluated))
		for _, ans := range evaluated {
			responses = append(responses, &models.Response{
				ID:                uuid.NewString(),
				UserID:            req.UserID,
				TestID:            req.TestID,
				QuestionID:        ans.QuestionID,
				SelectedOptionIDs: datatypes.NewJSONSlice(ans.SelectedOptionIDs),
				ResponseTimeSec:   ans.ResponseTimeSec,
			})
		}
		if err := txRepo.Response().CreateBatch(ctx, responses); err != nil {
			return fmt.Errorf("failed to persist responses: %w", err)
		}

		if err := txRepo.Report().Create(ctx, report); err != nil {
			return fmt.Errorf("failed to persist report: %w", err)
		}

		if group == nil {
			return nil
		}

		for _, ans := range evaluated {
			obs := AnswerObservation{
				QuestionID:        ans.QuestionID,
				Correct:           ans.Correct,
				ResponseTimeSec:   ans.ResponseTimeSec,
				SelectedOptionIDs: ans.SelectedOptionIDs,
				Group:             *group,
				Year:              now.Year(),
				Month:             int(now.Month()),
			}
			if err := s.stats.RecordAnswer(ctx, txRepo, obs); err != nil {
				return err
			}
		}

		return s.stats.RecordReport(ctx, txRepo, ReportObservation{
			TestID:            req.TestID,
			StandardizedScore: standardized,
			ScoreLevel:        scoreLevel,
			Group:             *group,
			Year:              now.Year(),
			Month:             int(now.Month()),
		})
	})
	if err != nil {
		return nil, err
	}

	// Events are best effort once the transaction has committed.
	if err := s.publisher.Publish(ctx, events.EventReportGenerated, events.ReportGeneratedEvent{
		ReportID:          report.ID,
		UserID:            report.UserID,
		TestID:            report.TestID,
		RawScore:          report.RawScore,
		StandardizedScore: report.StandardizedScore,
		ScoreLevel:        report.ScoreLevel,
		AnsweredQuestions: len(evaluated),
	}); err != nil {
		s.logger.LogError(err, "Failed to publish report event", "report_id", report.ID)
	}

	s.logger.Info("Submission scored",
		"report_id", report.ID,
		"raw_score", rawScore,
		"score_level", scoreLevel)

	return &SubmitTestResult{
		ReportID:          report.ID,
		RawScore:          rawScore,
		StandardizedScore: standardized,
		ScoreLevel:        scoreLevel,
		Description:       description,
	}, nil
}

// evaluateAnswers grades each answer with exact set matching. Answers whose
// question no longer exists or was unlinked from the test are skipped rather
// than failing the submission.
func (s *scoringService) evaluateAnswers(ctx context.Context, req *SubmitTestRequest) ([]evaluatedAnswer, error) {
	evaluated := make([]evaluatedAnswer, 0, len(req.Answers))

	for _, ans := range req.Answers {
		linked, err := s.repo.Question().ExistsInTest(ctx, ans.QuestionID, req.TestID)
		if err != nil {
			return nil, fmt.Errorf("failed to check question %d: %w", ans.QuestionID, err)
		}
		if !linked {
			s.logger.Warn("Skipping answer for question not in test",
				"question_id", ans.QuestionID,
				"test_id", req.TestID)
			continue
		}

		correctIDs, err := s.repo.Question().GetCorrectOptionIDs(ctx, ans.QuestionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				s.logger.Warn("Skipping answer for missing question", "question_id", ans.QuestionID)
				continue
			}
			return nil, fmt.Errorf("failed to load answer key for question %d: %w", ans.QuestionID, err)
		}

		evaluated = append(evaluated, evaluatedAnswer{
			QuestionID:        ans.QuestionID,
			SelectedOptionIDs: ans.SelectedOptionIDs,
			ResponseTimeSec:   ans.ResponseTimeSec,
			Correct:           isExactMatch(ans.SelectedOptionIDs, correctIDs),
		})
	}

	return evaluated, nil
}

// lookupProfileGroup derives the statistics group from the submitter's
// profile. No profile, no group statistics; the submission still scores.
func (s *scoringService) lookupProfileGroup(ctx context.Context, userID string) *models.GroupSelector {
	profile, err := s.repo.Profile().GetByUserID(ctx, userID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			s.logger.Warn("Profile lookup failed, scoring without group statistics",
				"user_id", userID,
				"error", err)
		}
		return nil
	}
	return profile.PrimaryGroup()
}

// lookupDescription fetches the interpretation text for the resolved level.
// Every miss (no rule row, no key for the level, store trouble) degrades to
// the fixed fallback text so the report always carries a description.
func (s *scoringService) lookupDescription(ctx context.Context, testID uint, sten int) string {
	rule, err := s.rules.GetReportRule(ctx, testID)
	if err != nil {
		if !errors.Is(err, ErrReportRuleNotFound) {
			s.logger.Warn("Report rule lookup failed, using fallback description",
				"test_id", testID,
				"error", err)
		}
		return models.FallbackDescription
	}

	if sten == models.StenNone {
		return models.FallbackDescription
	}
	if text, ok := rule.StenDescriptions.Data()[strconv.Itoa(sten)]; ok && text != "" {
		return text
	}
	return models.FallbackDescription
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/PsyMetrics-KR/scoring-service/internal/cache"
	"github.com/PsyMetrics-KR/scoring-service/internal/events"
	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"github.com/PsyMetrics-KR/scoring-service/internal/repositories"
	"github.com/PsyMetrics-KR/scoring-service/internal/utils"
	"github.com/PsyMetrics-KR/scoring-service/internal/validator"
	"gorm.io/datatypes"
)

// RuleService serves norm tables and report rules to the scoring pipeline
// (read-through Redis cache) and applies admin rule updates. Interval sets are
// validated for disjointness before they are written; the resolver never has
// to repair a bad table.
type RuleService interface {
	GetNormTable(ctx context.Context, testID uint, group *models.GroupSelector) (*models.NormTable, error)
	GetReportRule(ctx context.Context, testID uint) (*models.ReportRule, error)

	ReplaceNormTable(ctx context.Context, req *ReplaceNormTableRequest) (*models.NormTable, error)
	UpsertReportRule(ctx context.Context, req *UpsertReportRuleRequest) (*models.ReportRule, error)
	ListNormTables(ctx context.Context, testID uint) ([]*models.NormTable, error)
}

type ReplaceNormTableRequest struct {
	TestID uint                  `json:"test_id" validate:"required"`
	Group  *models.GroupSelector `json:"group" validate:"omitempty"`
	Name   string                `json:"name" validate:"max=100"`
	Rules  []models.NormInterval `json:"rules" validate:"required,min=1,dive"`
}

type UpsertReportRuleRequest struct {
	TestID           uint              `json:"test_id" validate:"required"`
	StenDescriptions map[string]string `json:"sten_descriptions" validate:"required,min=1"`
}

type ruleService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    utils.Logger
	validator *validator.Validator
	cacheTTL  time.Duration
}

func NewRuleService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger utils.Logger,
	v *validator.Validator,
	cacheTTL time.Duration,
) RuleService {
	return &ruleService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		validator: v,
		cacheTTL:  cacheTTL,
	}
}

func normTableCacheKey(testID uint, group *models.GroupSelector) string {
	if group == nil {
		return fmt.Sprintf("norms:test:%d:default", testID)
	}
	return fmt.Sprintf("norms:test:%d:%s:%s", testID, group.Type, group.Value)
}

func reportRuleCacheKey(testID uint) string {
	return fmt.Sprintf("report-rules:test:%d", testID)
}

func (s *ruleService) GetNormTable(ctx context.Context, testID uint, group *models.GroupSelector) (*models.NormTable, error) {
	key := normTableCacheKey(testID, group)

	var cached models.NormTable
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if err != cache.ErrCacheMiss {
		s.logger.Warn("Norm table cache read failed, falling back to database", "key", key, "error", err)
	}

	table, err := s.repo.Norm().GetTable(ctx, testID, group)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNormTableNotFound
		}
		return nil, fmt.Errorf("failed to load norm table: %w", err)
	}

	if err := s.cache.Set(ctx, key, table, s.cacheTTL); err != nil {
		s.logger.Warn("Norm table cache write failed", "key", key, "error", err)
	}
	return table, nil
}

func (s *ruleService) GetReportRule(ctx context.Context, testID uint) (*models.ReportRule, error) {
	key := reportRuleCacheKey(testID)

	var cached models.ReportRule
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if err != cache.ErrCacheMiss {
		s.logger.Warn("Report rule cache read failed, falling back to database", "key", key, "error", err)
	}

	rule, err := s.repo.ReportRule().GetByTest(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportRuleNotFound
		}
		return nil, fmt.Errorf("failed to load report rule: %w", err)
	}

	if err := s.cache.Set(ctx, key, rule, s.cacheTTL); err != nil {
		s.logger.Warn("Report rule cache write failed", "key", key, "error", err)
	}
	return rule, nil
}

func (s *ruleService) ReplaceNormTable(ctx context.Context, req *ReplaceNormTableRequest) (*models.NormTable, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if errs := s.validator.Norm().ValidateIntervals(req.Rules); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.repo.Test().GetByID(ctx, req.TestID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to load test: %w", err)
	}

	table := &models.NormTable{
		TestID: req.TestID,
		Name:   req.Name,
		Rules:  datatypes.NewJSONType(req.Rules),
	}
	var groupType *string
	var groupValue *string
	if req.Group != nil {
		gt := req.Group.Type
		gv := req.Group.Value
		table.GroupType = &gt
		table.GroupValue = &gv
		gts := string(gt)
		groupType, groupValue = &gts, &gv
	}

	if err := s.repo.Norm().ReplaceTable(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to replace norm table: %w", err)
	}

	// Evict every cached table of this test; group tables share the prefix.
	if err := s.cache.DeletePattern(ctx, fmt.Sprintf("norms:test:%d:*", req.TestID)); err != nil {
		s.logger.Warn("Norm table cache eviction failed", "test_id", req.TestID, "error", err)
	}

	if err := s.publisher.Publish(ctx, events.EventNormTableUpdated, events.NormTableUpdatedEvent{
		TestID:     req.TestID,
		GroupType:  groupType,
		GroupValue: groupValue,
		RuleCount:  len(req.Rules),
	}); err != nil {
		s.logger.LogError(err, "Failed to publish norm table update", "test_id", req.TestID)
	}

	if gaps := s.validator.Norm().CoverageGaps(req.Rules, 100); len(gaps) > 0 {
		s.logger.Warn("Norm table leaves score ranges uncovered",
			"test_id", req.TestID,
			"gaps", gaps)
	}

	s.logger.Info("Norm table replaced",
		"test_id", req.TestID,
		"rule_count", len(req.Rules))
	return table, nil
}

func (s *ruleService) UpsertReportRule(ctx context.Context, req *UpsertReportRuleRequest) (*models.ReportRule, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if _, err := s.repo.Test().GetByID(ctx, req.TestID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to load test: %w", err)
	}

	rule := &models.ReportRule{
		TestID:           req.TestID,
		StenDescriptions: datatypes.NewJSONType(req.StenDescriptions),
	}
	if err := s.repo.ReportRule().Upsert(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to upsert report rule: %w", err)
	}

	if err := s.cache.Delete(ctx, reportRuleCacheKey(req.TestID)); err != nil {
		s.logger.Warn("Report rule cache eviction failed", "test_id", req.TestID, "error", err)
	}

	s.logger.Info("Report rule upserted", "test_id", req.TestID)
	return rule, nil
}

func (s *ruleService) ListNormTables(ctx context.Context, testID uint) ([]*models.NormTable, error) {
	tables, err := s.repo.Norm().ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to list norm tables: %w", err)
	}
	return tables, nil
}

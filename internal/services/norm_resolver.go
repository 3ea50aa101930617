package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"github.com/PsyMetrics-KR/scoring-service/internal/utils"
)

// NormResolver maps a standardized score to a STEN level using the norm table
// of a test, preferring a group-specific table when one exists for the
// submitter's group. A missing or incomplete table is not an error: the
// resolver degrades to models.StenNone and reporting continues.
type NormResolver interface {
	Resolve(ctx context.Context, testID uint, score float64, group *models.GroupSelector) (int, error)
}

type normResolver struct {
	rules  RuleService
	logger utils.Logger
}

func NewNormResolver(rules RuleService, logger utils.Logger) NormResolver {
	return &normResolver{
		rules:  rules,
		logger: logger,
	}
}

func (r *normResolver) Resolve(ctx context.Context, testID uint, score float64, group *models.GroupSelector) (int, error) {
	table, err := r.loadTable(ctx, testID, group)
	if err != nil {
		if errors.Is(err, ErrNormTableNotFound) {
			r.logger.Warn("No norm table for test, degrading to STEN N/A", "test_id", testID)
			return models.StenNone, nil
		}
		return models.StenNone, fmt.Errorf("failed to resolve norm: %w", err)
	}

	sten := resolveInterval(table.Rules.Data(), score)
	if sten == models.StenNone {
		r.logger.Warn("Standardized score outside norm table range",
			"test_id", testID,
			"score", score)
	}
	return sten, nil
}

// loadTable prefers the group table and falls back to the test default when
// the group has none.
func (r *normResolver) loadTable(ctx context.Context, testID uint, group *models.GroupSelector) (*models.NormTable, error) {
	if group != nil {
		table, err := r.rules.GetNormTable(ctx, testID, group)
		if err == nil {
			return table, nil
		}
		if !errors.Is(err, ErrNormTableNotFound) {
			return nil, err
		}
	}
	return r.rules.GetNormTable(ctx, testID, nil)
}

// resolveInterval scans intervals in stored order and returns the STEN of the
// first one containing the score. Stored order is the tie-break for malformed
// overlapping tables.
func resolveInterval(intervals []models.NormInterval, score float64) int {
	for _, iv := range intervals {
		if iv.Contains(score) {
			return iv.Sten
		}
	}
	return models.StenNone
}

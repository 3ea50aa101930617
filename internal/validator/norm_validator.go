package validator

import (
	"fmt"
	"sort"

	apperrors "github.com/PsyMetrics-KR/scoring-service/internal/errors"
	"github.com/PsyMetrics-KR/scoring-service/internal/models"
)

// NormValidator checks norm interval sets before they are written. Overlapping
// or inverted intervals are rejected here rather than tolerated at resolution
// time; coverage gaps only produce a warning list since a partial table still
// resolves to "STEN N/A" gracefully.
type NormValidator struct{}

func NewNormValidator() *NormValidator {
	return &NormValidator{}
}

// ValidateIntervals returns all rule violations in the given interval set.
func (nv *NormValidator) ValidateIntervals(intervals []models.NormInterval) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if len(intervals) == 0 {
		errs = append(errs, *apperrors.NewValidationError("rules", "at least one interval is required", nil))
		return errs
	}

	for i, iv := range intervals {
		if iv.MaxScore < iv.MinScore {
			errs = append(errs, *apperrors.NewValidationError(
				fmt.Sprintf("rules[%d]", i),
				fmt.Sprintf("max_score %.1f is below min_score %.1f", iv.MaxScore, iv.MinScore),
				iv,
			))
		}
		if iv.Sten < 1 || iv.Sten > 10 {
			errs = append(errs, *apperrors.NewValidationError(
				fmt.Sprintf("rules[%d].sten", i),
				"sten level must be between 1 and 10",
				iv.Sten,
			))
		}
	}
	if len(errs) > 0 {
		return errs
	}

	// Disjointness check on a sorted copy; stored order is preserved elsewhere.
	sorted := make([]models.NormInterval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinScore < sorted[j].MinScore
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].MinScore <= sorted[i-1].MaxScore {
			errs = append(errs, *apperrors.NewValidationError(
				"rules",
				fmt.Sprintf("interval [%.1f, %.1f] overlaps [%.1f, %.1f]",
					sorted[i].MinScore, sorted[i].MaxScore,
					sorted[i-1].MinScore, sorted[i-1].MaxScore),
				nil,
			))
		}
	}

	return errs
}

// CoverageGaps reports score sub-ranges of [0, maxScore] not covered by any
// interval. Scores are floats, so the space between two closed intervals is
// reported as an open range rather than stepped by a fixed unit. Gaps are
// legal but usually an authoring mistake.
func (nv *NormValidator) CoverageGaps(intervals []models.NormInterval, maxScore float64) []string {
	if len(intervals) == 0 {
		return []string{fmt.Sprintf("[0.0, %.1f]", maxScore)}
	}

	sorted := make([]models.NormInterval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinScore < sorted[j].MinScore
	})

	var gaps []string
	if sorted[0].MinScore > 0 {
		gaps = append(gaps, fmt.Sprintf("[0.0, %.1f)", sorted[0].MinScore))
	}
	covered := sorted[0].MaxScore
	for _, iv := range sorted[1:] {
		if iv.MinScore > covered {
			gaps = append(gaps, fmt.Sprintf("(%.1f, %.1f)", covered, iv.MinScore))
		}
		if iv.MaxScore > covered {
			covered = iv.MaxScore
		}
	}
	if covered < maxScore {
		gaps = append(gaps, fmt.Sprintf("(%.1f, %.1f]", covered, maxScore))
	}
	return gaps
}

package services

import (
	"errors"

	apperrors "github.com/PsyMetrics-KR/scoring-service/internal/errors"
)

var (
	// Submission errors
	ErrEmptySubmission  = errors.New("submission contains no answers")
	ErrTestNotFound     = errors.New("test not found")
	ErrTestNotPublished = errors.New("test is not published")
	ErrQuestionNotFound = errors.New("question not found")

	// Report errors
	ErrReportNotFound = errors.New("report not found")

	// Rule errors
	ErrNormTableNotFound  = errors.New("norm table not found")
	ErrReportRuleNotFound = errors.New("report rule not found")

	// Statistics errors
	ErrStatsUpdateConflict = errors.New("statistics bucket update conflict")

	ErrValidationFailed = errors.New("validation failed")
)

// Use shared validation errors from the errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// IsNotFound checks if err represents a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrReportNotFound) ||
		errors.Is(err, ErrNormTableNotFound) ||
		errors.Is(err, ErrReportRuleNotFound)
}

// IsClientError checks if err is caused by bad caller input rather than a
// service fault.
func IsClientError(err error) bool {
	if errors.Is(err, ErrEmptySubmission) ||
		errors.Is(err, ErrTestNotPublished) ||
		errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if err represents a transient write conflict the caller
// may retry.
func IsConflict(err error) bool {
	return errors.Is(err, ErrStatsUpdateConflict)
}

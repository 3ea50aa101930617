package events

import (
	"time"
)

// EventType represents the scoring pipeline's outbound event kinds.
type EventType string

const (
	// EventReportGenerated fires after a submission has been scored and its
	// report committed.
	EventReportGenerated EventType = "report.generated"

	// EventNormTableUpdated fires when an admin replaces a test's norm table;
	// consumers use it to refresh dashboards and caches.
	EventNormTableUpdated EventType = "norms.updated"
)

// ScoringEvent is the envelope for all events published by this service.
type ScoringEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

type ReportGeneratedEvent struct {
	ReportID          string  `json:"report_id"`
	UserID            string  `json:"user_id"`
	TestID            uint    `json:"test_id"`
	RawScore          int     `json:"raw_score"`
	StandardizedScore float64 `json:"standardized_score"`
	ScoreLevel        string  `json:"score_level"`
	AnsweredQuestions int     `json:"answered_questions"`
}

type NormTableUpdatedEvent struct {
	TestID     uint    `json:"test_id"`
	GroupType  *string `json:"group_type,omitempty"`
	GroupValue *string `json:"group_value,omitempty"`
	RuleCount  int     `json:"rule_count"`
}

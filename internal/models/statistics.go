package models

import (
	"time"

	"gorm.io/datatypes"
)

// OptionDistribution counts selections per option id within one bucket.
// Integer keys marshal as JSON object keys, so the column stays a plain
// jsonb object.
type OptionDistribution map[uint]int

// StenDistribution counts generated reports per rendered level ("STEN 1"..).
type StenDistribution map[string]int

// QuestionGroupStat is a running aggregate over all responses to one question
// from one demographic group in one calendar month. It is updated online per
// observation, never recomputed from history, so CorrectRate and
// AvgResponseTime must always be the exact weighted mean of every observation
// folded so far.
type QuestionGroupStat struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	QuestionID uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_question_stat_bucket"`
	GroupType  GroupType `json:"group_type" gorm:"not null;uniqueIndex:idx_question_stat_bucket"`
	GroupValue string    `json:"group_value" gorm:"size:100;not null;uniqueIndex:idx_question_stat_bucket"`
	Year       int       `json:"year" gorm:"not null;uniqueIndex:idx_question_stat_bucket"`
	Month      int       `json:"month" gorm:"not null;uniqueIndex:idx_question_stat_bucket"`

	NumResponses    int     `json:"num_responses" gorm:"not null"`
	CorrectRate     float64 `json:"correct_rate" gorm:"not null"`
	AvgResponseTime float64 `json:"avg_response_time" gorm:"not null"`

	OptionDistribution datatypes.JSONType[OptionDistribution] `json:"option_distribution" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TestGroupStat aggregates generated reports per test and group bucket.
type TestGroupStat struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TestID     uint      `json:"test_id" gorm:"not null;uniqueIndex:idx_test_stat_bucket"`
	GroupType  GroupType `json:"group_type" gorm:"not null;uniqueIndex:idx_test_stat_bucket"`
	GroupValue string    `json:"group_value" gorm:"size:100;not null;uniqueIndex:idx_test_stat_bucket"`
	Year       int       `json:"year" gorm:"not null;uniqueIndex:idx_test_stat_bucket"`
	Month      int       `json:"month" gorm:"not null;uniqueIndex:idx_test_stat_bucket"`

	NumReports           int     `json:"num_reports" gorm:"not null"`
	AvgStandardizedScore float64 `json:"avg_standardized_score" gorm:"not null"`

	StenDistribution datatypes.JSONType[StenDistribution] `json:"sten_distribution" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (QuestionGroupStat) TableName() string {
	return "question_stats_by_group"
}

func (TestGroupStat) TableName() string {
	return "test_stats_by_group"
}

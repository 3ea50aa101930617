package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// StenNone is the sentinel level used when no norm interval matches a
// standardized score. Reports still get generated with a degraded level.
const StenNone = 0

const FallbackDescription = "no interpretation available"

// FormatScoreLevel renders a STEN level for storage and display,
// e.g. "STEN 7" or "STEN N/A".
func FormatScoreLevel(sten int) string {
	if sten == StenNone {
		return "STEN N/A"
	}
	return fmt.Sprintf("STEN %d", sten)
}

// Report is the persisted outcome of one submission. Rows are append-only:
// resubmission creates a new report, history is never rewritten.
type Report struct {
	ID     string `json:"id" gorm:"type:uuid;primaryKey"`
	UserID string `json:"user_id" gorm:"size:64;not null;index"`
	TestID uint   `json:"test_id" gorm:"not null;index"`

	RawScore          int     `json:"raw_score" gorm:"not null"`
	StandardizedScore float64 `json:"standardized_score" gorm:"not null"`
	Sten              int     `json:"sten" gorm:"not null"`
	ScoreLevel        string  `json:"score_level" gorm:"size:20;not null"`
	Description       string  `json:"description" gorm:"type:text;not null"`

	GeneratedAt time.Time `json:"generated_at" gorm:"autoCreateTime"`
}

// Response stores one answered question of a submission.
type Response struct {
	ID         string `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     string `json:"user_id" gorm:"size:64;not null;index"`
	TestID     uint   `json:"test_id" gorm:"not null;index"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`

	SelectedOptionIDs datatypes.JSONSlice[uint] `json:"selected_option_ids" gorm:"type:jsonb"`
	ResponseTimeSec   float64                   `json:"response_time_sec"`

	CreatedAt time.Time `json:"created_at"`
}

// UserProfile carries the demographic attributes used to pick group norm
// tables and statistics buckets. Account data itself lives in the identity
// service; this is a read-only projection.
type UserProfile struct {
	UserID    string  `json:"user_id" gorm:"size:64;primaryKey"`
	School    *string `json:"school" gorm:"size:100"`
	Region    *string `json:"region" gorm:"size:100"`
	Company   *string `json:"company" gorm:"size:100"`
	BirthYear *int    `json:"birth_year"`
}

// PrimaryGroup returns the submitter's statistics group, school first,
// matching how the aggregation pipeline buckets respondents.
func (p *UserProfile) PrimaryGroup() *GroupSelector {
	switch {
	case p == nil:
		return nil
	case p.School != nil && *p.School != "":
		return &GroupSelector{Type: GroupSchool, Value: *p.School}
	case p.Region != nil && *p.Region != "":
		return &GroupSelector{Type: GroupRegion, Value: *p.Region}
	case p.Company != nil && *p.Company != "":
		return &GroupSelector{Type: GroupCompany, Value: *p.Company}
	default:
		return nil
	}
}

func (Report) TableName() string {
	return "reports"
}

func (Response) TableName() string {
	return "responses"
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

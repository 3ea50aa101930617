package models

import (
	"time"

	"gorm.io/datatypes"
)

type GroupType string

const (
	GroupSchool  GroupType = "school"
	GroupRegion  GroupType = "region"
	GroupCompany GroupType = "company"
	GroupAge     GroupType = "age"
)

// GroupSelector picks a demographic norm table or statistics bucket.
type GroupSelector struct {
	Type  GroupType `json:"type" validate:"required,group_type"`
	Value string    `json:"value" validate:"required,max=100"`
}

// NormInterval maps a closed standardized-score range to a STEN level.
// Intervals within one table must be disjoint; when a malformed table
// contains overlaps anyway, the earliest stored interval wins.
type NormInterval struct {
	MinScore float64 `json:"min_score" validate:"min=0"`
	MaxScore float64 `json:"max_score" validate:"min=0"`
	Sten     int     `json:"sten" validate:"required,min=1,max=10"`
}

// Contains reports whether the standardized score falls inside the interval.
func (iv NormInterval) Contains(score float64) bool {
	return iv.MinScore <= score && score <= iv.MaxScore
}

// NormTable holds the ordered STEN intervals for a test. GroupType/GroupValue
// are nil for the test's default table; group-specific tables override it for
// submitters matching the group.
type NormTable struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	TestID     uint       `json:"test_id" gorm:"not null;uniqueIndex:idx_norm_table_group"`
	GroupType  *GroupType `json:"group_type" gorm:"uniqueIndex:idx_norm_table_group"`
	GroupValue *string    `json:"group_value" gorm:"size:100;uniqueIndex:idx_norm_table_group"`
	Name       string     `json:"name" gorm:"size:100"`

	Rules datatypes.JSONType[[]NormInterval] `json:"rules" gorm:"type:jsonb;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReportRule maps a STEN level (as string key, "1".."10") to the
// interpretation text shown on reports for one test.
type ReportRule struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	TestID uint `json:"test_id" gorm:"not null;uniqueIndex"`

	StenDescriptions datatypes.JSONType[map[string]string] `json:"sten_descriptions" gorm:"type:jsonb;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (NormTable) TableName() string {
	return "norm_tables"
}

func (ReportRule) TableName() string {
	return "report_rules"
}

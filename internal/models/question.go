package models

import (
	"time"
)

type QuestionStatus string

const (
	QuestionWaiting  QuestionStatus = "waiting"
	QuestionApproved QuestionStatus = "approved"
	QuestionRejected QuestionStatus = "rejected"
)

type QuestionUsage string

const (
	UsageAptitude    QuestionUsage = "aptitude"
	UsagePersonality QuestionUsage = "personality"
)

// Question belongs to at most one test; a nil TestID means the question sits
// in the authoring pool. Only approved questions may be linked to a published
// test, and questions referenced by stored responses are never mutated through
// this service.
type Question struct {
	ID     uint           `json:"id" gorm:"primaryKey"`
	TestID *uint          `json:"test_id" gorm:"index"`
	Text   string         `json:"text" gorm:"type:text;not null" validate:"required"`
	Usage  QuestionUsage  `json:"usage" gorm:"not null;default:aptitude" validate:"omitempty,question_usage"`
	Status QuestionStatus `json:"status" gorm:"not null;default:waiting;index" validate:"omitempty,question_status"`

	IsMultipleChoice bool `json:"is_multiple_choice" gorm:"default:false"`

	CreatedBy string    `json:"created_by" gorm:"size:64;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Options []Option `json:"options" gorm:"foreignKey:QuestionID"`
}

// Option display order is 0-based and unique per question. The set of options
// with IsCorrect=true is the question's answer key.
type Option struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	QuestionID uint    `json:"question_id" gorm:"not null;uniqueIndex:idx_option_order"`
	Order      int     `json:"order" gorm:"not null;uniqueIndex:idx_option_order"`
	Text       string  `json:"text" gorm:"type:text"`
	ImageURL   *string `json:"image_url" gorm:"size:500"`
	IsCorrect  bool    `json:"-" gorm:"not null;default:false"`
}

func (Question) TableName() string {
	return "questions"
}

func (Option) TableName() string {
	return "options"
}

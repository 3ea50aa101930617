package models

import (
	"time"
)

type TestType string

const (
	TestAptitude    TestType = "aptitude"
	TestPersonality TestType = "personality"
)

type Test struct {
	ID              uint     `json:"id" gorm:"primaryKey"`
	Name            string   `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Type            TestType `json:"type" gorm:"not null" validate:"required,test_type"`
	Version         string   `json:"version" gorm:"not null;size:20;default:1.0"`
	VersionNote     *string  `json:"version_note" gorm:"type:text"`
	DurationMinutes int      `json:"duration_minutes" gorm:"not null" validate:"required,min=1,max=300"`
	Published       bool     `json:"published" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Questions []TestQuestion `json:"questions" gorm:"foreignKey:TestID"`
}

// TestQuestion is the ordered link between a test and its questions. The link
// set is mutable independently of individual question status.
type TestQuestion struct {
	TestID     uint `json:"test_id" gorm:"primaryKey"`
	QuestionID uint `json:"question_id" gorm:"primaryKey"`
	Position   int  `json:"position" gorm:"not null"`

	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (Test) TableName() string {
	return "tests"
}

func (TestQuestion) TableName() string {
	return "test_questions"
}

package postgres

import (
	"context"

	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) *QuestionPostgreSQL {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByIDWithOptions(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.\"order\" ASC")
		}).
		First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetCorrectOptionIDs(ctx context.Context, questionID uint) ([]uint, error) {
	var ids []uint
	if err := q.db.WithContext(ctx).
		Model(&models.Option{}).
		Where("question_id = ? AND is_correct = ?", questionID, true).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (q *QuestionPostgreSQL) ExistsInTest(ctx context.Context, questionID, testID uint) (bool, error) {
	var count int64
	if err := q.db.WithContext(ctx).
		Model(&models.TestQuestion{}).
		Where("question_id = ? AND test_id = ?", questionID, testID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

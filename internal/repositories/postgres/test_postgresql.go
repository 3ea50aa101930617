package postgres

import (
	"context"

	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"gorm.io/gorm"
)

type TestPostgreSQL struct {
	db *gorm.DB
}

func NewTestPostgreSQL(db *gorm.DB) *TestPostgreSQL {
	return &TestPostgreSQL{db: db}
}

func (t *TestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t *TestPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("test_questions.position ASC")
		}).
		Preload("Questions.Question.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.\"order\" ASC")
		}).
		First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t *TestPostgreSQL) ListPublished(ctx context.Context) ([]*models.Test, error) {
	var tests []*models.Test
	if err := t.db.WithContext(ctx).
		Where("published = ?", true).
		Order("created_at DESC").
		Find(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}

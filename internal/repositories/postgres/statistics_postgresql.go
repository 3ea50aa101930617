package postgres

import (
	"context"

	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"github.com/PsyMetrics-KR/scoring-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatsPostgreSQL struct {
	db *gorm.DB
}

func NewStatsPostgreSQL(db *gorm.DB) *StatsPostgreSQL {
	return &StatsPostgreSQL{db: db}
}

// GetQuestionStatForUpdate locks the bucket row until the surrounding
// transaction ends, serializing concurrent online updates to one bucket.
func (s *StatsPostgreSQL) GetQuestionStatForUpdate(ctx context.Context, key repositories.QuestionStatKey) (*models.QuestionGroupStat, error) {
	var stat models.QuestionGroupStat
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("question_id = ? AND group_type = ? AND group_value = ? AND year = ? AND month = ?",
			key.QuestionID, key.GroupType, key.GroupValue, key.Year, key.Month).
		First(&stat).Error; err != nil {
		return nil, err
	}
	return &stat, nil
}

// CreateQuestionStat inserts a new bucket row. The insert runs in a nested
// transaction, which gorm maps to a savepoint when a transaction is already
// open: losing the create race to a concurrent submission must not abort the
// surrounding submission transaction, or the retry re-read could never run.
func (s *StatsPostgreSQL) CreateQuestionStat(ctx context.Context, stat *models.QuestionGroupStat) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(stat).Error
	})
}

func (s *StatsPostgreSQL) UpdateQuestionStat(ctx context.Context, stat *models.QuestionGroupStat) error {
	return s.db.WithContext(ctx).Save(stat).Error
}

func (s *StatsPostgreSQL) ListQuestionStats(ctx context.Context, questionID uint, filters repositories.StatFilters) ([]*models.QuestionGroupStat, error) {
	var stats []*models.QuestionGroupStat

	query := s.db.WithContext(ctx).
		Model(&models.QuestionGroupStat{}).
		Where("question_id = ?", questionID)
	query = applyStatFilters(query, filters)

	if err := query.Order("year DESC, month DESC, group_value ASC").Find(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *StatsPostgreSQL) GetTestStatForUpdate(ctx context.Context, key repositories.TestStatKey) (*models.TestGroupStat, error) {
	var stat models.TestGroupStat
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("test_id = ? AND group_type = ? AND group_value = ? AND year = ? AND month = ?",
			key.TestID, key.GroupType, key.GroupValue, key.Year, key.Month).
		First(&stat).Error; err != nil {
		return nil, err
	}
	return &stat, nil
}

// CreateTestStat inserts a new bucket row, with the same savepoint behavior
// as CreateQuestionStat.
func (s *StatsPostgreSQL) CreateTestStat(ctx context.Context, stat *models.TestGroupStat) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(stat).Error
	})
}

func (s *StatsPostgreSQL) UpdateTestStat(ctx context.Context, stat *models.TestGroupStat) error {
	return s.db.WithContext(ctx).Save(stat).Error
}

func (s *StatsPostgreSQL) ListTestStats(ctx context.Context, testID uint, filters repositories.StatFilters) ([]*models.TestGroupStat, error) {
	var stats []*models.TestGroupStat

	query := s.db.WithContext(ctx).
		Model(&models.TestGroupStat{}).
		Where("test_id = ?", testID)
	query = applyStatFilters(query, filters)

	if err := query.Order("year DESC, month DESC, group_value ASC").Find(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func applyStatFilters(query *gorm.DB, filters repositories.StatFilters) *gorm.DB {
	if filters.GroupType != nil {
		query = query.Where("group_type = ?", *filters.GroupType)
	}
	if filters.Year != nil {
		query = query.Where("year = ?", *filters.Year)
	}
	if filters.Month != nil {
		query = query.Where("month = ?", *filters.Month)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}

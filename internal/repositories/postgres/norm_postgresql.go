package postgres

import (
	"context"
	"errors"

	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NormPostgreSQL struct {
	db *gorm.DB
}

func NewNormPostgreSQL(db *gorm.DB) *NormPostgreSQL {
	return &NormPostgreSQL{db: db}
}

func (n *NormPostgreSQL) GetTable(ctx context.Context, testID uint, group *models.GroupSelector) (*models.NormTable, error) {
	query := n.db.WithContext(ctx).Where("test_id = ?", testID)
	if group != nil {
		query = query.Where("group_type = ? AND group_value = ?", group.Type, group.Value)
	} else {
		query = query.Where("group_type IS NULL AND group_value IS NULL")
	}

	var table models.NormTable
	if err := query.First(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (n *NormPostgreSQL) ListByTest(ctx context.Context, testID uint) ([]*models.NormTable, error) {
	var tables []*models.NormTable
	if err := n.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("id ASC").
		Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

// ReplaceTable upserts the table identified by (test_id, group_type,
// group_value). ON CONFLICT cannot arbitrate the default table: its group
// columns are NULL and NULLs never collide under the unique index, so a plain
// upsert would insert a second default row. The write is a find-then-update
// inside a transaction instead.
func (n *NormPostgreSQL) ReplaceTable(ctx context.Context, table *models.NormTable) error {
	return n.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("test_id = ?", table.TestID)
		if table.GroupType != nil && table.GroupValue != nil {
			query = query.Where("group_type = ? AND group_value = ?", *table.GroupType, *table.GroupValue)
		} else {
			query = query.Where("group_type IS NULL AND group_value IS NULL")
		}

		var existing models.NormTable
		if err := query.First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(table).Error
			}
			return err
		}

		table.ID = existing.ID
		table.CreatedAt = existing.CreatedAt
		return tx.Model(&models.NormTable{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"name":  table.Name,
				"rules": table.Rules,
			}).Error
	})
}

type ReportRulePostgreSQL struct {
	db *gorm.DB
}

func NewReportRulePostgreSQL(db *gorm.DB) *ReportRulePostgreSQL {
	return &ReportRulePostgreSQL{db: db}
}

func (r *ReportRulePostgreSQL) GetByTest(ctx context.Context, testID uint) (*models.ReportRule, error) {
	var rule models.ReportRule
	if err := r.db.WithContext(ctx).Where("test_id = ?", testID).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ReportRulePostgreSQL) Upsert(ctx context.Context, rule *models.ReportRule) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "test_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sten_descriptions", "updated_at"}),
		}).
		Create(rule).Error
}

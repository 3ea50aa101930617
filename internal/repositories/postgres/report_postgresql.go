package postgres

import (
	"context"

	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"gorm.io/gorm"
)

type ReportPostgreSQL struct {
	db *gorm.DB
}

func NewReportPostgreSQL(db *gorm.DB) *ReportPostgreSQL {
	return &ReportPostgreSQL{db: db}
}

func (r *ReportPostgreSQL) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *ReportPostgreSQL) GetByID(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportPostgreSQL) ListByUser(ctx context.Context, userID string) ([]*models.Report, error) {
	var reports []*models.Report
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("generated_at DESC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) *ResponsePostgreSQL {
	return &ResponsePostgreSQL{db: db}
}

func (r *ResponsePostgreSQL) CreateBatch(ctx context.Context, responses []*models.Response) error {
	if len(responses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(responses).Error
}

func (r *ResponsePostgreSQL) ListByReport(ctx context.Context, userID string, testID uint) ([]*models.Response, error) {
	var responses []*models.Response
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND test_id = ?", userID, testID).
		Order("created_at ASC").
		Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

type ProfilePostgreSQL struct {
	db *gorm.DB
}

func NewProfilePostgreSQL(db *gorm.DB) *ProfilePostgreSQL {
	return &ProfilePostgreSQL{db: db}
}

func (p *ProfilePostgreSQL) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := p.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

package postgres

import (
	"context"

	"github.com/PsyMetrics-KR/scoring-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the PostgreSQL implementation of repositories.Repository.
// WithTx produces a Repository bound to the transaction handle, so the same
// entity repositories work inside and outside transactions.
type Repository struct {
	db *gorm.DB

	question   *QuestionPostgreSQL
	test       *TestPostgreSQL
	norm       *NormPostgreSQL
	reportRule *ReportRulePostgreSQL
	report     *ReportPostgreSQL
	response   *ResponsePostgreSQL
	stats      *StatsPostgreSQL
	profile    *ProfilePostgreSQL
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		question:   NewQuestionPostgreSQL(db),
		test:       NewTestPostgreSQL(db),
		norm:       NewNormPostgreSQL(db),
		reportRule: NewReportRulePostgreSQL(db),
		report:     NewReportPostgreSQL(db),
		response:   NewResponsePostgreSQL(db),
		stats:      NewStatsPostgreSQL(db),
		profile:    NewProfilePostgreSQL(db),
	}
}

func (r *Repository) Question() repositories.QuestionRepository     { return r.question }
func (r *Repository) Test() repositories.TestRepository             { return r.test }
func (r *Repository) Norm() repositories.NormRepository             { return r.norm }
func (r *Repository) ReportRule() repositories.ReportRuleRepository { return r.reportRule }
func (r *Repository) Report() repositories.ReportRepository         { return r.report }
func (r *Repository) Response() repositories.ResponseRepository     { return r.response }
func (r *Repository) Stats() repositories.StatsRepository           { return r.stats }
func (r *Repository) Profile() repositories.ProfileRepository       { return r.profile }

func (r *Repository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

package repositories

import (
	"context"

	"github.com/PsyMetrics-KR/scoring-service/internal/models"
)

// Repository aggregates all entity repositories behind one unit-of-work
// boundary.
type Repository interface {
	Question() QuestionRepository
	Test() TestRepository
	Norm() NormRepository
	ReportRule() ReportRuleRepository
	Report() ReportRepository
	Response() ResponseRepository
	Stats() StatsRepository
	Profile() ProfileRepository

	// WithTx runs fn inside a single database transaction. The Repository
	// handed to fn routes every operation through that transaction; returning
	// an error rolls the whole unit back.
	WithTx(ctx context.Context, fn func(Repository) error) error
}

// QuestionRepository exposes read-only question access to the scoring core.
// Question authoring lives in the admin service and is not reachable here,
// which is what keeps scored content immutable from this side.
type QuestionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByIDWithOptions(ctx context.Context, id uint) (*models.Question, error)

	// GetCorrectOptionIDs returns the answer key for a question. An empty
	// slice is a valid result; the evaluator treats it as "never correct".
	GetCorrectOptionIDs(ctx context.Context, questionID uint) ([]uint, error)

	ExistsInTest(ctx context.Context, questionID, testID uint) (bool, error)
}

type TestRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Test, error)
	ListPublished(ctx context.Context) ([]*models.Test, error)
}

type NormRepository interface {
	// GetTable loads the norm table for (test, group). A nil group selects
	// the test's default table.
	GetTable(ctx context.Context, testID uint, group *models.GroupSelector) (*models.NormTable, error)
	ListByTest(ctx context.Context, testID uint) ([]*models.NormTable, error)

	// ReplaceTable upserts the table identified by (TestID, GroupType,
	// GroupValue), replacing its interval list wholesale.
	ReplaceTable(ctx context.Context, table *models.NormTable) error
}

type ReportRuleRepository interface {
	GetByTest(ctx context.Context, testID uint) (*models.ReportRule, error)
	Upsert(ctx context.Context, rule *models.ReportRule) error
}

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Report, error)
}

type ResponseRepository interface {
	CreateBatch(ctx context.Context, responses []*models.Response) error
	ListByReport(ctx context.Context, userID string, testID uint) ([]*models.Response, error)
}

// QuestionStatKey identifies one question statistics bucket.
type QuestionStatKey struct {
	QuestionID uint
	GroupType  models.GroupType
	GroupValue string
	Year       int
	Month      int
}

// TestStatKey identifies one test statistics bucket.
type TestStatKey struct {
	TestID     uint
	GroupType  models.GroupType
	GroupValue string
	Year       int
	Month      int
}

type StatFilters struct {
	GroupType *models.GroupType `json:"group_type"`
	Year      *int              `json:"year"`
	Month     *int              `json:"month"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}

// StatsRepository performs bucket reads and writes. The ForUpdate variants
// take a row lock and must run inside a transaction; callers own the
// read-modify-write cycle. The Create variants must leave the surrounding
// transaction usable when they fail on a duplicate key, so callers can
// re-read the row a concurrent transaction created.
type StatsRepository interface {
	GetQuestionStatForUpdate(ctx context.Context, key QuestionStatKey) (*models.QuestionGroupStat, error)
	CreateQuestionStat(ctx context.Context, stat *models.QuestionGroupStat) error
	UpdateQuestionStat(ctx context.Context, stat *models.QuestionGroupStat) error
	ListQuestionStats(ctx context.Context, questionID uint, filters StatFilters) ([]*models.QuestionGroupStat, error)

	GetTestStatForUpdate(ctx context.Context, key TestStatKey) (*models.TestGroupStat, error)
	CreateTestStat(ctx context.Context, stat *models.TestGroupStat) error
	UpdateTestStat(ctx context.Context, stat *models.TestGroupStat) error
	ListTestStats(ctx context.Context, testID uint, filters StatFilters) ([]*models.TestGroupStat, error)
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
}

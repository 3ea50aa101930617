package services

import (
	"context"

	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"github.com/PsyMetrics-KR/scoring-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// ===== REPOSITORY MOCKS =====

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if q, ok := args.Get(0).(*models.Question); ok {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuestionRepository) GetByIDWithOptions(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if q, ok := args.Get(0).(*models.Question); ok {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuestionRepository) GetCorrectOptionIDs(ctx context.Context, questionID uint) ([]uint, error) {
	args := m.Called(ctx, questionID)
	if ids, ok := args.Get(0).([]uint); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuestionRepository) ExistsInTest(ctx context.Context, questionID, testID uint) (bool, error) {
	args := m.Called(ctx, questionID, testID)
	return args.Bool(0), args.Error(1)
}

type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*models.Test); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTestRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*models.Test); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTestRepository) ListPublished(ctx context.Context) ([]*models.Test, error) {
	args := m.Called(ctx)
	if tests, ok := args.Get(0).([]*models.Test); ok {
		return tests, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNormRepository struct {
	mock.Mock
}

func (m *MockNormRepository) GetTable(ctx context.Context, testID uint, group *models.GroupSelector) (*models.NormTable, error) {
	args := m.Called(ctx, testID, group)
	if t, ok := args.Get(0).(*models.NormTable); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNormRepository) ListByTest(ctx context.Context, testID uint) ([]*models.NormTable, error) {
	args := m.Called(ctx, testID)
	if tables, ok := args.Get(0).([]*models.NormTable); ok {
		return tables, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNormRepository) ReplaceTable(ctx context.Context, table *models.NormTable) error {
	args := m.Called(ctx, table)
	return args.Error(0)
}

type MockReportRuleRepository struct {
	mock.Mock
}

func (m *MockReportRuleRepository) GetByTest(ctx context.Context, testID uint) (*models.ReportRule, error) {
	args := m.Called(ctx, testID)
	if r, ok := args.Get(0).(*models.ReportRule); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportRuleRepository) Upsert(ctx context.Context, rule *models.ReportRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, report *models.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*models.Report); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportRepository) ListByUser(ctx context.Context, userID string) ([]*models.Report, error) {
	args := m.Called(ctx, userID)
	if reports, ok := args.Get(0).([]*models.Report); ok {
		return reports, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) CreateBatch(ctx context.Context, responses []*models.Response) error {
	args := m.Called(ctx, responses)
	return args.Error(0)
}

func (m *MockResponseRepository) ListByReport(ctx context.Context, userID string, testID uint) ([]*models.Response, error) {
	args := m.Called(ctx, userID, testID)
	if responses, ok := args.Get(0).([]*models.Response); ok {
		return responses, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) GetQuestionStatForUpdate(ctx context.Context, key repositories.QuestionStatKey) (*models.QuestionGroupStat, error) {
	args := m.Called(ctx, key)
	if s, ok := args.Get(0).(*models.QuestionGroupStat); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStatsRepository) CreateQuestionStat(ctx context.Context, stat *models.QuestionGroupStat) error {
	args := m.Called(ctx, stat)
	return args.Error(0)
}

func (m *MockStatsRepository) UpdateQuestionStat(ctx context.Context, stat *models.QuestionGroupStat) error {
	args := m.Called(ctx, stat)
	return args.Error(0)
}

func (m *MockStatsRepository) ListQuestionStats(ctx context.Context, questionID uint, filters repositories.StatFilters) ([]*models.QuestionGroupStat, error) {
	args := m.Called(ctx, questionID, filters)
	if stats, ok := args.Get(0).([]*models.QuestionGroupStat); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStatsRepository) GetTestStatForUpdate(ctx context.Context, key repositories.TestStatKey) (*models.TestGroupStat, error) {
	args := m.Called(ctx, key)
	if s, ok := args.Get(0).(*models.TestGroupStat); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStatsRepository) CreateTestStat(ctx context.Context, stat *models.TestGroupStat) error {
	args := m.Called(ctx, stat)
	return args.Error(0)
}

func (m *MockStatsRepository) UpdateTestStat(ctx context.Context, stat *models.TestGroupStat) error {
	args := m.Called(ctx, stat)
	return args.Error(0)
}

func (m *MockStatsRepository) ListTestStats(ctx context.Context, testID uint, filters repositories.StatFilters) ([]*models.TestGroupStat, error) {
	args := m.Called(ctx, testID, filters)
	if stats, ok := args.Get(0).([]*models.TestGroupStat); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	if p, ok := args.Get(0).(*models.UserProfile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRepository aggregates the entity mocks. WithTx just invokes fn with the
// same repository, which matches how the transactional wrapper behaves from
// the service's point of view.
type MockRepository struct {
	question   *MockQuestionRepository
	test       *MockTestRepository
	norm       *MockNormRepository
	reportRule *MockReportRuleRepository
	report     *MockReportRepository
	response   *MockResponseRepository
	stats      *MockStatsRepository
	profile    *MockProfileRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		question:   new(MockQuestionRepository),
		test:       new(MockTestRepository),
		norm:       new(MockNormRepository),
		reportRule: new(MockReportRuleRepository),
		report:     new(MockReportRepository),
		response:   new(MockResponseRepository),
		stats:      new(MockStatsRepository),
		profile:    new(MockProfileRepository),
	}
}

func (m *MockRepository) Question() repositories.QuestionRepository     { return m.question }
func (m *MockRepository) Test() repositories.TestRepository             { return m.test }
func (m *MockRepository) Norm() repositories.NormRepository             { return m.norm }
func (m *MockRepository) ReportRule() repositories.ReportRuleRepository { return m.reportRule }
func (m *MockRepository) Report() repositories.ReportRepository         { return m.report }
func (m *MockRepository) Response() repositories.ResponseRepository     { return m.response }
func (m *MockRepository) Stats() repositories.StatsRepository           { return m.stats }
func (m *MockRepository) Profile() repositories.ProfileRepository       { return m.profile }

func (m *MockRepository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

// ===== SERVICE MOCKS =====

type MockRuleService struct {
	mock.Mock
}

func (m *MockRuleService) GetNormTable(ctx context.Context, testID uint, group *models.GroupSelector) (*models.NormTable, error) {
	args := m.Called(ctx, testID, group)
	if t, ok := args.Get(0).(*models.NormTable); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRuleService) GetReportRule(ctx context.Context, testID uint) (*models.ReportRule, error) {
	args := m.Called(ctx, testID)
	if r, ok := args.Get(0).(*models.ReportRule); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRuleService) ReplaceNormTable(ctx context.Context, req *ReplaceNormTableRequest) (*models.NormTable, error) {
	args := m.Called(ctx, req)
	if t, ok := args.Get(0).(*models.NormTable); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRuleService) UpsertReportRule(ctx context.Context, req *UpsertReportRuleRequest) (*models.ReportRule, error) {
	args := m.Called(ctx, req)
	if r, ok := args.Get(0).(*models.ReportRule); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRuleService) ListNormTables(ctx context.Context, testID uint) ([]*models.NormTable, error) {
	args := m.Called(ctx, testID)
	if tables, ok := args.Get(0).([]*models.NormTable); ok {
		return tables, args.Error(1)
	}
	return nil, args.Error(1)
}

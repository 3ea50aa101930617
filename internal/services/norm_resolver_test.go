package services

import (
	"context"
	"errors"
	"testing"

	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"github.com/PsyMetrics-KR/scoring-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newResolverFixture() (*MockRuleService, NormResolver) {
	rules := new(MockRuleService)
	return rules, NewNormResolver(rules, utils.NewDevelopmentLogger())
}

func TestNormResolver_Resolve_Boundaries(t *testing.T) {
	intervals := []models.NormInterval{
		{MinScore: 0, MaxScore: 49, Sten: 2},
		{MinScore: 50, MaxScore: 79, Sten: 5},
		{MinScore: 80, MaxScore: 100, Sten: 9},
	}

	tests := []struct {
		name     string
		score    float64
		expected int
	}{
		{name: "bottom of lowest interval", score: 0, expected: 2},
		{name: "inclusive upper bound", score: 49, expected: 2},
		{name: "inclusive lower bound of next interval", score: 50, expected: 5},
		{name: "top of highest interval", score: 100, expected: 9},
		{name: "above every interval", score: 101, expected: models.StenNone},
		{name: "score in a coverage gap", score: 79.5, expected: models.StenNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, resolver := newResolverFixture()
			rules.On("GetNormTable", mock.Anything, uint(1), (*models.GroupSelector)(nil)).
				Return(normTable(1, intervals), nil)

			sten, err := resolver.Resolve(context.Background(), 1, tt.score, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sten)
		})
	}
}

func TestNormResolver_Resolve_FirstMatchWinsOnOverlap(t *testing.T) {
	rules, resolver := newResolverFixture()
	rules.On("GetNormTable", mock.Anything, uint(1), (*models.GroupSelector)(nil)).
		Return(normTable(1, []models.NormInterval{
			{MinScore: 0, MaxScore: 50, Sten: 3},
			{MinScore: 40, MaxScore: 60, Sten: 7},
		}), nil)

	sten, err := resolver.Resolve(context.Background(), 1, 45, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, sten)
}

func TestNormResolver_Resolve_PrefersGroupTable(t *testing.T) {
	rules, resolver := newResolverFixture()
	group := &models.GroupSelector{Type: models.GroupRegion, Value: "부산"}

	rules.On("GetNormTable", mock.Anything, uint(1), group).
		Return(normTable(1, []models.NormInterval{{MinScore: 0, MaxScore: 100, Sten: 8}}), nil)

	sten, err := resolver.Resolve(context.Background(), 1, 30, group)
	require.NoError(t, err)
	assert.Equal(t, 8, sten)
	rules.AssertNumberOfCalls(t, "GetNormTable", 1)
}

func TestNormResolver_Resolve_FallsBackToDefaultTable(t *testing.T) {
	rules, resolver := newResolverFixture()
	group := &models.GroupSelector{Type: models.GroupRegion, Value: "부산"}

	rules.On("GetNormTable", mock.Anything, uint(1), group).Return(nil, ErrNormTableNotFound)
	rules.On("GetNormTable", mock.Anything, uint(1), (*models.GroupSelector)(nil)).
		Return(normTable(1, []models.NormInterval{{MinScore: 0, MaxScore: 100, Sten: 4}}), nil)

	sten, err := resolver.Resolve(context.Background(), 1, 30, group)
	require.NoError(t, err)
	assert.Equal(t, 4, sten)
}

func TestNormResolver_Resolve_NoTableAtAll(t *testing.T) {
	rules, resolver := newResolverFixture()
	rules.On("GetNormTable", mock.Anything, uint(1), (*models.GroupSelector)(nil)).
		Return(nil, ErrNormTableNotFound)

	sten, err := resolver.Resolve(context.Background(), 1, 30, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StenNone, sten)
	assert.Equal(t, "STEN N/A", models.FormatScoreLevel(sten))
}

func TestNormResolver_Resolve_StoreErrorPropagates(t *testing.T) {
	rules, resolver := newResolverFixture()
	storeErr := errors.New("connection refused")
	rules.On("GetNormTable", mock.Anything, uint(1), (*models.GroupSelector)(nil)).
		Return(nil, storeErr)

	_, err := resolver.Resolve(context.Background(), 1, 30, nil)
	assert.ErrorIs(t, err, storeErr)
}

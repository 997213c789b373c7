package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/leadroom/internal/domain"
)

type stubResolver struct {
	thresholds domain.RoomThresholds
	rules      domain.RulesByRoom
	source     domain.SettingsSource
}

func (s *stubResolver) ResolveThresholds(ctx context.Context, clientID string) (domain.RoomThresholds, domain.SettingsSource, error) {
	return s.thresholds, s.source, nil
}

func (s *stubResolver) ResolveScoringRules(ctx context.Context, clientID string) (domain.RulesByRoom, map[domain.Room]domain.SettingsSource, error) {
	sources := make(map[domain.Room]domain.SettingsSource)
	for room := range s.rules {
		sources[room] = s.source
	}
	return s.rules, sources, nil
}

func TestScoreProspectClassifies(t *testing.T) {
	resolver := &stubResolver{
		thresholds: domain.RoomThresholds{ProblemMax: 40, SolutionMax: 60, OfferMin: 61},
		source:     domain.SourceGlobal,
		rules: domain.RulesByRoom{
			domain.RoomProblem: {
				"revenue": domain.ValueMatchRule{
					RuleCore:  domain.RuleCore{Key: "revenue", Enabled: true, Points: 45},
					Attribute: "revenue",
					Values:    []string{"Over $100M"},
				},
			},
		},
	}
	svc := NewService(resolver)

	ps, err := svc.ScoreProspect(context.Background(), "client-1", domain.RoomProblem,
		domain.ProspectAttributes{Traits: map[string]string{"revenue": "Over $100M"}})
	require.NoError(t, err)

	assert.Equal(t, 45, ps.TotalPoints)
	assert.Equal(t, domain.RoomSolution, ps.Room)
	assert.Equal(t, domain.SourceGlobal, ps.ThresholdsSource)
	assert.Equal(t, domain.SourceGlobal, ps.RulesSource)
}

func TestScoreProspectRejectsUnknownRoom(t *testing.T) {
	svc := NewService(&stubResolver{})
	_, err := svc.ScoreProspect(context.Background(), "client-1", "lobby", domain.ProspectAttributes{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// A room with no rules scores zero and classifies into problem.
func TestScoreProspectEmptyRuleSet(t *testing.T) {
	resolver := &stubResolver{
		thresholds: domain.RoomThresholds{ProblemMax: 40, SolutionMax: 60, OfferMin: 61},
		source:     domain.SourceGlobal,
		rules:      domain.RulesByRoom{},
	}
	svc := NewService(resolver)

	ps, err := svc.ScoreProspect(context.Background(), "client-1", domain.RoomOffer, domain.ProspectAttributes{})
	require.NoError(t, err)
	assert.Zero(t, ps.TotalPoints)
	assert.Equal(t, domain.RoomProblem, ps.Room)
}

package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/leadroom/internal/domain"
)

func newTestResolver(t *testing.T) (*Resolver, *MemoryClientStore) {
	t.Helper()
	clients := NewMemoryClientStore()
	globals := NewMemoryGlobalStore(DefaultThresholds(), DefaultScoringRules())
	return NewResolver(clients, globals), clients
}

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

func TestResolveNoOverrideReturnsGlobal(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	resolved, err := r.ResolveSettings(ctx, "client-1")
	require.NoError(t, err)

	assert.Equal(t, DefaultThresholds(), resolved.Thresholds)
	assert.Equal(t, domain.SourceGlobal, resolved.ThresholdsSource)
	assert.Equal(t, domain.SourceGlobal, resolved.Source)
	assert.Equal(t, DefaultScoringRules(), resolved.Rules)
	for room, src := range resolved.RuleSources {
		assert.Equal(t, domain.SourceGlobal, src, "room %s", room)
	}
}

// Resolution is read-only: resolving twice yields identical results
// and never mutates stored state.
func TestResolveIsIdempotent(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	require.NoError(t, r.SaveOverride(ctx, &domain.ClientSettings{
		ClientID: "client-1",
		ScoringOverride: domain.ScoringOverride{
			domain.RoomProblem: {"email_open": {Points: intPtr(8)}},
		},
	}))

	first, err := r.ResolveSettings(ctx, "client-1")
	require.NoError(t, err)
	second, err := r.ResolveSettings(ctx, "client-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestThresholdsOverrideIsWholeObject(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	custom := domain.RoomThresholds{ProblemMax: 30, SolutionMax: 70, OfferMin: 71}
	require.NoError(t, r.SaveOverride(ctx, &domain.ClientSettings{
		ClientID:           "client-1",
		ThresholdsOverride: &custom,
	}))

	th, src, err := r.ResolveThresholds(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, custom, th)
	assert.Equal(t, domain.SourceClient, src)

	// Other clients keep global.
	th, src, err = r.ResolveThresholds(ctx, "client-2")
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds(), th)
	assert.Equal(t, domain.SourceGlobal, src)
}

func TestScoringOverrideIsPerField(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	require.NoError(t, r.SaveOverride(ctx, &domain.ClientSettings{
		ClientID: "client-1",
		ScoringOverride: domain.ScoringOverride{
			domain.RoomSolution: {
				"industry_alignment": {Points: intPtr(50)},
			},
		},
	}))

	rules, sources, err := r.ResolveScoringRules(ctx, "client-1")
	require.NoError(t, err)

	got := rules[domain.RoomSolution]["industry_alignment"].(domain.ExclusionRule)
	base := DefaultScoringRules()[domain.RoomSolution]["industry_alignment"].(domain.ExclusionRule)

	assert.Equal(t, 50, got.Points)
	// Unspecified fields keep the global definition.
	assert.Equal(t, base.Values, got.Values)
	assert.Equal(t, base.ExcludedValues, got.ExcludedValues)
	assert.Equal(t, base.ExclusionPoints, got.ExclusionPoints)
	assert.True(t, got.Enabled)

	assert.Equal(t, domain.SourceClient, sources[domain.RoomSolution])
	assert.Equal(t, domain.SourceGlobal, sources[domain.RoomProblem])
	assert.Equal(t, domain.SourceGlobal, sources[domain.RoomOffer])
}

// A later global edit to a field the client never touched must show
// through the client's partial override.
func TestPartialOverridePreservesGlobalEdits(t *testing.T) {
	clients := NewMemoryClientStore()
	globals := NewMemoryGlobalStore(DefaultThresholds(), DefaultScoringRules())
	r := NewResolver(clients, globals)
	ctx := context.Background()

	require.NoError(t, r.SaveOverride(ctx, &domain.ClientSettings{
		ClientID: "client-1",
		ScoringOverride: domain.ScoringOverride{
			domain.RoomSolution: {
				"industry_alignment": {Points: intPtr(50)},
			},
		},
	}))

	// Admin updates the global excluded list after the client's edit.
	updated := DefaultScoringRules()
	rule := updated[domain.RoomSolution]["industry_alignment"].(domain.ExclusionRule)
	rule.ExcludedValues = append(rule.ExcludedValues, "Payday Lending")
	updated[domain.RoomSolution]["industry_alignment"] = rule
	require.NoError(t, globals.SetScoringRules(updated))

	rules, _, err := r.ResolveScoringRules(ctx, "client-1")
	require.NoError(t, err)
	got := rules[domain.RoomSolution]["industry_alignment"].(domain.ExclusionRule)

	assert.Equal(t, 50, got.Points)
	assert.Contains(t, got.ExcludedValues, "Payday Lending")
}

func TestDeleteOverrideRevertsToGlobal(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	custom := domain.RoomThresholds{ProblemMax: 10, SolutionMax: 20, OfferMin: 21}
	require.NoError(t, r.SaveOverride(ctx, &domain.ClientSettings{
		ClientID:           "client-1",
		ThresholdsOverride: &custom,
		ScoringOverride: domain.ScoringOverride{
			domain.RoomProblem: {"email_open": {Enabled: boolPtr(false)}},
		},
	}))

	before, err := r.ResolveSettings(ctx, "client-2")
	require.NoError(t, err)

	require.NoError(t, r.DeleteOverride(ctx, "client-1"))

	after, err := r.ResolveSettings(ctx, "client-1")
	require.NoError(t, err)

	// Identical to a client that never had an override.
	after.ClientID = before.ClientID
	assert.Equal(t, before, after)
}

func TestProvenanceIsORBased(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	// Scoring override only; thresholds still global.
	require.NoError(t, r.SaveOverride(ctx, &domain.ClientSettings{
		ClientID: "client-1",
		ScoringOverride: domain.ScoringOverride{
			domain.RoomOffer: {"demo_request": {Points: intPtr(30)}},
		},
	}))

	resolved, err := r.ResolveSettings(ctx, "client-1")
	require.NoError(t, err)

	assert.Equal(t, domain.SourceGlobal, resolved.ThresholdsSource)
	assert.Equal(t, domain.SourceClient, resolved.Source)
}

// Overrides naming rules the catalog no longer has are skipped, not
// fatal.
func TestUnknownRuleOverrideIgnored(t *testing.T) {
	ctx := context.Background()

	clients := NewMemoryClientStore()
	globals := NewMemoryGlobalStore(DefaultThresholds(), DefaultScoringRules())
	r := NewResolver(clients, globals)

	// Write directly to the store; SaveOverride would reject the key.
	require.NoError(t, clients.Save(ctx, &domain.ClientSettings{
		ClientID: "client-1",
		ScoringOverride: domain.ScoringOverride{
			domain.RoomProblem: {"retired_rule": {Points: intPtr(99)}},
		},
	}))

	rules, _, err := r.ResolveScoringRules(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, DefaultScoringRules()[domain.RoomProblem], rules[domain.RoomProblem])
}

func TestSaveOverrideValidation(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	tests := []struct {
		name string
		cs   *domain.ClientSettings
	}{
		{"bad thresholds ordering", &domain.ClientSettings{
			ClientID:           "c",
			ThresholdsOverride: &domain.RoomThresholds{ProblemMax: 60, SolutionMax: 40, OfferMin: 61},
		}},
		{"unknown room", &domain.ClientSettings{
			ClientID: "c",
			ScoringOverride: domain.ScoringOverride{
				"lobby": {"email_open": {Points: intPtr(5)}},
			},
		}},
		{"unknown rule key", &domain.ClientSettings{
			ClientID: "c",
			ScoringOverride: domain.ScoringOverride{
				domain.RoomProblem: {"no_such_rule": {Points: intPtr(5)}},
			},
		}},
		{"field not applicable to variant", &domain.ClientSettings{
			ClientID: "c",
			ScoringOverride: domain.ScoringOverride{
				// email_open is a presence rule; required_score is gating-only.
				domain.RoomProblem: {"email_open": {RequiredScore: intPtr(5)}},
			},
		}},
		{"positive exclusion points", &domain.ClientSettings{
			ClientID: "c",
			ScoringOverride: domain.ScoringOverride{
				domain.RoomSolution: {"industry_alignment": {ExclusionPoints: intPtr(10)}},
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.SaveOverride(ctx, tt.cs)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

// Dead-zone thresholds are legal to save; classification falls back to
// solution for gap scores.
func TestSaveOverrideAllowsDeadZone(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	require.NoError(t, r.SaveOverride(ctx, &domain.ClientSettings{
		ClientID:           "client-1",
		ThresholdsOverride: &domain.RoomThresholds{ProblemMax: 40, SolutionMax: 60, OfferMin: 90},
	}))

	th, _, err := r.ResolveThresholds(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomSolution, th.Classify(75))
}

func TestSaveOverrideVersionConflict(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	cs := &domain.ClientSettings{
		ClientID: "client-1",
		ScoringOverride: domain.ScoringOverride{
			domain.RoomProblem: {"email_open": {Points: intPtr(7)}},
		},
	}
	require.NoError(t, r.SaveOverride(ctx, cs))
	require.Equal(t, 1, cs.Version)

	// A writer holding the old version loses.
	stale := &domain.ClientSettings{
		ClientID: "client-1",
		Version:  0,
		ScoringOverride: domain.ScoringOverride{
			domain.RoomProblem: {"email_open": {Points: intPtr(9)}},
		},
	}
	err := r.SaveOverride(ctx, stale)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	// The current version wins.
	cs.ScoringOverride[domain.RoomProblem]["email_open"] = domain.RuleOverride{Points: intPtr(9)}
	require.NoError(t, r.SaveOverride(ctx, cs))
	assert.Equal(t, 2, cs.Version)
}

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignite/leadroom/internal/domain"
)

func presence(key, attr string, points int) domain.PresenceRule {
	return domain.PresenceRule{
		RuleCore:  domain.RuleCore{Key: key, Enabled: true, Points: points},
		Attribute: attr,
	}
}

func TestScorePresence(t *testing.T) {
	rules := domain.RuleSet{
		"email_open": presence("email_open", "email_opens", 5),
	}

	tests := []struct {
		name       string
		attrs      domain.ProspectAttributes
		wantPoints int
		wantFired  []string
	}{
		{"counter present", domain.ProspectAttributes{Counts: map[string]int{"email_opens": 2}}, 5, []string{"email_open"}},
		{"flag folds to count", domain.ProspectAttributes{Flags: map[string]bool{"email_opens": true}}, 5, []string{"email_open"}},
		{"absent", domain.ProspectAttributes{}, 0, nil},
		{"zero counter", domain.ProspectAttributes{Counts: map[string]int{"email_opens": 0}}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Score(tt.attrs, rules)
			assert.Equal(t, tt.wantPoints, res.TotalPoints)
			assert.Equal(t, tt.wantFired, res.TriggeredRules)
		})
	}
}

func TestScorePresencePerUnit(t *testing.T) {
	rules := domain.RuleSet{
		"page_visit": domain.PresenceRule{
			RuleCore:      domain.RuleCore{Key: "page_visit", Enabled: true},
			Attribute:     "page_visits",
			PointsPerUnit: 3,
			UnitCap:       5,
			MaxPoints:     15,
		},
	}

	tests := []struct {
		visits int
		want   int
	}{
		{0, 0},
		{1, 3},
		{4, 12},
		{5, 15},
		{9, 15}, // capped at 5 units
	}

	for _, tt := range tests {
		attrs := domain.ProspectAttributes{Counts: map[string]int{"page_visits": tt.visits}}
		res := Score(attrs, rules)
		assert.Equal(t, tt.want, res.TotalPoints, "visits=%d", tt.visits)
	}
}

func TestScorePresencePerUnitMinimum(t *testing.T) {
	rules := domain.RuleSet{
		"page_visit": domain.PresenceRule{
			RuleCore:      domain.RuleCore{Key: "page_visit", Enabled: true},
			Attribute:     "page_visits",
			PointsPerUnit: 3,
			UnitCap:       5,
			MaxPoints:     15,
			MinimumCount:  2,
		},
	}

	tests := []struct {
		visits int
		want   int
	}{
		{0, 0},
		{1, 0}, // below minimum, per-unit accumulation never starts
		{2, 6},
		{5, 15},
	}

	for _, tt := range tests {
		attrs := domain.ProspectAttributes{Counts: map[string]int{"page_visits": tt.visits}}
		res := Score(attrs, rules)
		assert.Equal(t, tt.want, res.TotalPoints, "visits=%d", tt.visits)
	}
}

func TestScoreValueMatch(t *testing.T) {
	rules := domain.RuleSet{
		"revenue": domain.ValueMatchRule{
			RuleCore:  domain.RuleCore{Key: "revenue", Enabled: true, Points: 10},
			Attribute: "revenue",
			Values:    []string{"Over $100M", "$50M - $100M"},
		},
		"state": domain.ValueMatchRule{
			RuleCore:  domain.RuleCore{Key: "state", Enabled: true, Points: 5},
			Attribute: "state",
			// empty Values: wildcard
		},
	}

	t.Run("listed value matches", func(t *testing.T) {
		attrs := domain.ProspectAttributes{Traits: map[string]string{"revenue": "Over $100M"}}
		res := Score(attrs, rules)
		assert.Equal(t, 10, res.TotalPoints)
		assert.Equal(t, []string{"revenue"}, res.TriggeredRules)
	})

	t.Run("unlisted value does not match", func(t *testing.T) {
		attrs := domain.ProspectAttributes{Traits: map[string]string{"revenue": "Under $1M"}}
		res := Score(attrs, rules)
		assert.Zero(t, res.TotalPoints)
	})

	t.Run("wildcard matches any present value", func(t *testing.T) {
		attrs := domain.ProspectAttributes{Traits: map[string]string{"state": "Texas"}}
		res := Score(attrs, rules)
		assert.Equal(t, 5, res.TotalPoints)
	})

	t.Run("wildcard needs the trait present", func(t *testing.T) {
		res := Score(domain.ProspectAttributes{}, rules)
		assert.Zero(t, res.TotalPoints)
	})
}

func TestScoreExclusionWinsTies(t *testing.T) {
	rules := domain.RuleSet{
		"industry_alignment": domain.ExclusionRule{
			RuleCore:        domain.RuleCore{Key: "industry_alignment", Enabled: true, Points: 20},
			Attribute:       "industry",
			Values:          []string{"SaaS", "Gambling"},
			ExcludedValues:  []string{"Gambling", "Tobacco"},
			ExclusionPoints: -200,
		},
	}

	// Value on both lists nets the penalty, never the bonus.
	attrs := domain.ProspectAttributes{Traits: map[string]string{"industry": "Gambling"}}
	res := Score(attrs, rules)
	assert.Equal(t, -200, res.TotalPoints)
	assert.True(t, res.Disqualified)
	assert.Equal(t, []string{"industry_alignment"}, res.TriggeredRules)

	// Clean match still scores the bonus.
	attrs = domain.ProspectAttributes{Traits: map[string]string{"industry": "SaaS"}}
	res = Score(attrs, rules)
	assert.Equal(t, 20, res.TotalPoints)
	assert.False(t, res.Disqualified)
}

func TestScoreGatingRunsLast(t *testing.T) {
	rules := domain.RuleSet{
		"email_open": presence("email_open", "email_opens", 5),
		"gate": domain.GatingRule{
			RuleCore:      domain.RuleCore{Key: "gate", Enabled: true},
			RequiredScore: 10,
		},
		// Sorts after "gate"; the gate must still see its points.
		"web_visit": presence("web_visit", "web_visits", 8),
	}

	t.Run("total below gate disqualifies", func(t *testing.T) {
		attrs := domain.ProspectAttributes{Counts: map[string]int{"email_opens": 1}}
		res := Score(attrs, rules)
		assert.Equal(t, 5, res.TotalPoints)
		assert.True(t, res.Disqualified)
	})

	t.Run("rules after the gate key still count", func(t *testing.T) {
		attrs := domain.ProspectAttributes{Counts: map[string]int{"email_opens": 1, "web_visits": 1}}
		res := Score(attrs, rules)
		assert.Equal(t, 13, res.TotalPoints)
		assert.False(t, res.Disqualified)
	})
}

func TestScoreSkipsDisabledRules(t *testing.T) {
	rule := presence("email_open", "email_opens", 5)
	rule.Enabled = false
	rules := domain.RuleSet{"email_open": rule}

	attrs := domain.ProspectAttributes{Counts: map[string]int{"email_opens": 3}}
	res := Score(attrs, rules)
	assert.Zero(t, res.TotalPoints)
	assert.Empty(t, res.TriggeredRules)
}

func TestScoreDeterministicOrder(t *testing.T) {
	rules := domain.RuleSet{
		"b_rule": presence("b_rule", "b", 1),
		"a_rule": presence("a_rule", "a", 1),
		"c_rule": presence("c_rule", "c", 1),
	}
	attrs := domain.ProspectAttributes{Counts: map[string]int{"a": 1, "b": 1, "c": 1}}

	for i := 0; i < 10; i++ {
		res := Score(attrs, rules)
		assert.Equal(t, []string{"a_rule", "b_rule", "c_rule"}, res.TriggeredRules)
	}
}

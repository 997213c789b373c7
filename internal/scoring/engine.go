package scoring

import (
	"sort"

	"github.com/ignite/leadroom/internal/domain"
)

// Result is the outcome of evaluating one room's rule set.
type Result struct {
	TotalPoints    int      `json:"total_points"`
	TriggeredRules []string `json:"triggered_rules"`
	Disqualified   bool     `json:"disqualified"`
}

// Score evaluates the rule set against the prospect's attributes.
// Disabled rules are skipped. TriggeredRules is sorted by rule key so
// output is stable across map iteration orders.
func Score(attrs domain.ProspectAttributes, rules domain.RuleSet) Result {
	var res Result
	var gates []domain.GatingRule

	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		rule := rules[key]
		if !rule.IsEnabled() {
			continue
		}
		switch r := rule.(type) {
		case domain.PresenceRule:
			if pts, ok := scorePresence(attrs, r); ok {
				res.TotalPoints += pts
				res.TriggeredRules = append(res.TriggeredRules, r.Key)
			}
		case domain.ValueMatchRule:
			if matchValue(attrs, r.Attribute, r.Values) {
				res.TotalPoints += r.Points
				res.TriggeredRules = append(res.TriggeredRules, r.Key)
			}
		case domain.ExclusionRule:
			pts, fired, excluded := scoreExclusion(attrs, r)
			if fired {
				res.TotalPoints += pts
				res.TriggeredRules = append(res.TriggeredRules, r.Key)
			}
			if excluded && r.ExclusionPoints < 0 {
				res.Disqualified = true
			}
		case domain.GatingRule:
			// Gating runs after every additive rule.
			gates = append(gates, r)
		}
	}

	for _, g := range gates {
		if res.TotalPoints < g.RequiredScore {
			res.Disqualified = true
		}
	}

	return res
}

// scorePresence scores engagement counters. The counter must reach the
// rule's minimum before anything is awarded. Per-unit rules then
// accumulate PointsPerUnit per counted unit up to UnitCap units,
// clamped to MaxPoints; plain rules award Points once.
func scorePresence(attrs domain.ProspectAttributes, r domain.PresenceRule) (int, bool) {
	count := attrs.Count(r.Attribute)

	minimum := r.MinimumCount
	if minimum <= 0 {
		minimum = 1
	}
	if count < minimum {
		return 0, false
	}

	if r.PointsPerUnit != 0 {
		units := count
		if r.UnitCap > 0 && units > r.UnitCap {
			units = r.UnitCap
		}
		pts := r.PointsPerUnit * units
		if r.MaxPoints > 0 && pts > r.MaxPoints {
			pts = r.MaxPoints
		}
		return pts, true
	}

	return r.Points, true
}

// matchValue reports whether the trait satisfies the allow list. An
// empty list is a wildcard: any present value matches.
func matchValue(attrs domain.ProspectAttributes, attribute string, values []string) bool {
	v, ok := attrs.Trait(attribute)
	if !ok {
		return false
	}
	if len(values) == 0 {
		return true
	}
	for _, allowed := range values {
		if v == allowed {
			return true
		}
	}
	return false
}

// scoreExclusion applies the two-list rule. The excluded list is checked
// first, so a value on both lists scores the penalty: exclusion wins
// ties.
func scoreExclusion(attrs domain.ProspectAttributes, r domain.ExclusionRule) (pts int, fired, excluded bool) {
	v, ok := attrs.Trait(r.Attribute)
	if !ok {
		return 0, false, false
	}
	for _, ex := range r.ExcludedValues {
		if v == ex {
			return r.ExclusionPoints, true, true
		}
	}
	if len(r.Values) == 0 {
		return r.Points, true, false
	}
	for _, allowed := range r.Values {
		if v == allowed {
			return r.Points, true, false
		}
	}
	return 0, false, false
}

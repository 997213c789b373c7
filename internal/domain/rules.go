package domain

import "fmt"

// RuleKind discriminates the scoring rule variants.
type RuleKind string

const (
	// KindPresence scores engagement counters (page visits, email opens).
	KindPresence RuleKind = "presence"
	// KindValueMatch scores categorical traits against an allow list.
	KindValueMatch RuleKind = "value_match"
	// KindExclusion scores categorical traits with a penalty list that
	// overrides the allow list.
	KindExclusion RuleKind = "exclusion"
	// KindGating gates room qualification on a minimum total score.
	KindGating RuleKind = "gating"
)

// ScoringRule is the common contract shared by all rule variants.
type ScoringRule interface {
	RuleKey() string
	Kind() RuleKind
	IsEnabled() bool
	BasePoints() int

	// Validate checks the variant's own invariants.
	Validate() error
}

// RuleCore holds the fields every rule variant carries.
type RuleCore struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
	Points  int    `json:"points"`
}

// RuleKey returns the rule's stable identifier.
func (c RuleCore) RuleKey() string { return c.Key }

// IsEnabled reports whether the rule participates in scoring.
func (c RuleCore) IsEnabled() bool { return c.Enabled }

// BasePoints returns the rule's nominal contribution.
func (c RuleCore) BasePoints() int { return c.Points }

func (c RuleCore) validateCore() error {
	if c.Key == "" {
		return fmt.Errorf("%w: rule key is required", ErrValidation)
	}
	return nil
}

// PresenceRule awards points when an engagement counter satisfies a
// minimum. When PointsPerUnit is set the rule instead accumulates
// PointsPerUnit per counted unit, capped at UnitCap units and clamped
// to MaxPoints.
type PresenceRule struct {
	RuleCore
	Attribute     string `json:"attribute"`
	MinimumCount  int    `json:"minimum_count,omitempty"`
	PointsPerUnit int    `json:"points_per_unit,omitempty"`
	UnitCap       int    `json:"unit_cap,omitempty"`
	MaxPoints     int    `json:"max_points,omitempty"`
}

// Kind implements ScoringRule.
func (r PresenceRule) Kind() RuleKind { return KindPresence }

// Validate implements ScoringRule.
func (r PresenceRule) Validate() error {
	if err := r.validateCore(); err != nil {
		return err
	}
	if r.Attribute == "" {
		return fmt.Errorf("%w: rule %s: attribute is required", ErrValidation, r.Key)
	}
	if r.PointsPerUnit != 0 && r.MaxPoints <= 0 {
		return fmt.Errorf("%w: rule %s: per-unit scoring requires max_points", ErrValidation, r.Key)
	}
	return nil
}

// ValueMatchRule awards points once when a categorical trait is a member
// of Values. An empty Values list is a wildcard: any value matches.
type ValueMatchRule struct {
	RuleCore
	Attribute string   `json:"attribute"`
	Values    []string `json:"values,omitempty"`
}

// Kind implements ScoringRule.
func (r ValueMatchRule) Kind() RuleKind { return KindValueMatch }

// Validate implements ScoringRule.
func (r ValueMatchRule) Validate() error {
	if err := r.validateCore(); err != nil {
		return err
	}
	if r.Attribute == "" {
		return fmt.Errorf("%w: rule %s: attribute is required", ErrValidation, r.Key)
	}
	return nil
}

// ExclusionRule is a value match with a penalty list. A trait on the
// excluded list scores ExclusionPoints instead of Points and may
// disqualify the prospect. A value appearing on both lists is excluded:
// exclusion wins ties, so the rule definition does not forbid overlap.
type ExclusionRule struct {
	RuleCore
	Attribute       string   `json:"attribute"`
	Values          []string `json:"values,omitempty"`
	ExcludedValues  []string `json:"excluded_values,omitempty"`
	ExclusionPoints int      `json:"exclusion_points"`
}

// Kind implements ScoringRule.
func (r ExclusionRule) Kind() RuleKind { return KindExclusion }

// Validate implements ScoringRule.
func (r ExclusionRule) Validate() error {
	if err := r.validateCore(); err != nil {
		return err
	}
	if r.Attribute == "" {
		return fmt.Errorf("%w: rule %s: attribute is required", ErrValidation, r.Key)
	}
	if r.ExclusionPoints > 0 {
		return fmt.Errorf("%w: rule %s: exclusion_points must be <= 0, got %d", ErrValidation, r.Key, r.ExclusionPoints)
	}
	return nil
}

// GatingRule fails qualification when the additive total falls short of
// RequiredScore. It contributes no points and is always evaluated after
// every additive rule.
type GatingRule struct {
	RuleCore
	RequiredScore int `json:"required_score"`
}

// Kind implements ScoringRule.
func (r GatingRule) Kind() RuleKind { return KindGating }

// Validate implements ScoringRule.
func (r GatingRule) Validate() error {
	if err := r.validateCore(); err != nil {
		return err
	}
	if r.RequiredScore < 0 {
		return fmt.Errorf("%w: rule %s: required_score must be >= 0", ErrValidation, r.Key)
	}
	return nil
}

// RuleSet maps rule keys to rule definitions for one room.
type RuleSet map[string]ScoringRule

// RulesByRoom maps each room to its rule set.
type RulesByRoom map[Room]RuleSet

// Validate checks every rule in every room.
func (rr RulesByRoom) Validate() error {
	for room, rules := range rr {
		if !room.Valid() {
			return fmt.Errorf("%w: unknown room %q", ErrValidation, room)
		}
		for key, rule := range rules {
			if key != rule.RuleKey() {
				return fmt.Errorf("%w: room %s: map key %q does not match rule key %q", ErrValidation, room, key, rule.RuleKey())
			}
			if rule.Kind() == KindGating && room != RoomProblem {
				return fmt.Errorf("%w: room %s: gating rules are only valid in the problem room", ErrValidation, room)
			}
			if err := rule.Validate(); err != nil {
				return fmt.Errorf("room %s: %w", room, err)
			}
		}
	}
	return nil
}

// Clone returns a deep copy so resolvers can overlay overrides without
// mutating the global definitions.
func (rr RulesByRoom) Clone() RulesByRoom {
	out := make(RulesByRoom, len(rr))
	for room, rules := range rr {
		rs := make(RuleSet, len(rules))
		for key, rule := range rules {
			rs[key] = CloneRule(rule)
		}
		out[room] = rs
	}
	return out
}

// CloneRule deep-copies a single rule variant.
func CloneRule(r ScoringRule) ScoringRule {
	switch v := r.(type) {
	case PresenceRule:
		return v
	case ValueMatchRule:
		v.Values = append([]string(nil), v.Values...)
		return v
	case ExclusionRule:
		v.Values = append([]string(nil), v.Values...)
		v.ExcludedValues = append([]string(nil), v.ExcludedValues...)
		return v
	case GatingRule:
		return v
	default:
		return r
	}
}

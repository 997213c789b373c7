package domain

import (
	"encoding/json"
	"fmt"
)

// ruleEnvelope is the wire/storage form of the rule union. Kind selects
// the variant; unused fields stay empty.
type ruleEnvelope struct {
	Kind RuleKind `json:"kind"`

	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
	Points  int    `json:"points"`

	Attribute     string `json:"attribute,omitempty"`
	MinimumCount  int    `json:"minimum_count,omitempty"`
	PointsPerUnit int    `json:"points_per_unit,omitempty"`
	UnitCap       int    `json:"unit_cap,omitempty"`
	MaxPoints     int    `json:"max_points,omitempty"`

	Values          []string `json:"values,omitempty"`
	ExcludedValues  []string `json:"excluded_values,omitempty"`
	ExclusionPoints int      `json:"exclusion_points,omitempty"`

	RequiredScore int `json:"required_score,omitempty"`
}

// MarshalRule encodes a rule variant into its envelope form.
func MarshalRule(r ScoringRule) ([]byte, error) {
	env := ruleEnvelope{
		Kind:    r.Kind(),
		Key:     r.RuleKey(),
		Enabled: r.IsEnabled(),
		Points:  r.BasePoints(),
	}
	switch v := r.(type) {
	case PresenceRule:
		env.Attribute = v.Attribute
		env.MinimumCount = v.MinimumCount
		env.PointsPerUnit = v.PointsPerUnit
		env.UnitCap = v.UnitCap
		env.MaxPoints = v.MaxPoints
	case ValueMatchRule:
		env.Attribute = v.Attribute
		env.Values = v.Values
	case ExclusionRule:
		env.Attribute = v.Attribute
		env.Values = v.Values
		env.ExcludedValues = v.ExcludedValues
		env.ExclusionPoints = v.ExclusionPoints
	case GatingRule:
		env.RequiredScore = v.RequiredScore
	default:
		return nil, fmt.Errorf("%w: unknown rule type %T", ErrValidation, r)
	}
	return json.Marshal(env)
}

// UnmarshalRule decodes an envelope back into its rule variant.
func UnmarshalRule(data []byte) (ScoringRule, error) {
	var env ruleEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: decode rule: %v", ErrValidation, err)
	}
	core := RuleCore{Key: env.Key, Enabled: env.Enabled, Points: env.Points}
	switch env.Kind {
	case KindPresence:
		return PresenceRule{
			RuleCore:      core,
			Attribute:     env.Attribute,
			MinimumCount:  env.MinimumCount,
			PointsPerUnit: env.PointsPerUnit,
			UnitCap:       env.UnitCap,
			MaxPoints:     env.MaxPoints,
		}, nil
	case KindValueMatch:
		return ValueMatchRule{RuleCore: core, Attribute: env.Attribute, Values: env.Values}, nil
	case KindExclusion:
		return ExclusionRule{
			RuleCore:        core,
			Attribute:       env.Attribute,
			Values:          env.Values,
			ExcludedValues:  env.ExcludedValues,
			ExclusionPoints: env.ExclusionPoints,
		}, nil
	case KindGating:
		return GatingRule{RuleCore: core, RequiredScore: env.RequiredScore}, nil
	default:
		return nil, fmt.Errorf("%w: unknown rule kind %q", ErrValidation, env.Kind)
	}
}

// MarshalJSON implements json.Marshaler over the envelope form.
func (rs RuleSet) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(rs))
	for key, rule := range rs {
		raw, err := MarshalRule(rule)
		if err != nil {
			return nil, err
		}
		out[key] = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler over the envelope form.
func (rs *RuleSet) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(RuleSet, len(raw))
	for key, msg := range raw {
		rule, err := UnmarshalRule(msg)
		if err != nil {
			return fmt.Errorf("rule %q: %w", key, err)
		}
		out[key] = rule
	}
	*rs = out
	return nil
}

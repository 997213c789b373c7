package domain

import "time"

// RuleOverride is a partial, per-field override of one global rule.
// Nil fields mean "use the global value"; the resolver overlays only
// what the client explicitly set.
type RuleOverride struct {
	Enabled         *bool     `json:"enabled,omitempty"`
	Points          *int      `json:"points,omitempty"`
	Values          *[]string `json:"values,omitempty"`
	ExcludedValues  *[]string `json:"excluded_values,omitempty"`
	ExclusionPoints *int      `json:"exclusion_points,omitempty"`
	MinimumCount    *int      `json:"minimum_count,omitempty"`
	PointsPerUnit   *int      `json:"points_per_unit,omitempty"`
	UnitCap         *int      `json:"unit_cap,omitempty"`
	MaxPoints       *int      `json:"max_points,omitempty"`
	RequiredScore   *int      `json:"required_score,omitempty"`
}

// IsZero reports whether the override sets nothing at all.
func (o RuleOverride) IsZero() bool {
	return o.Enabled == nil && o.Points == nil && o.Values == nil &&
		o.ExcludedValues == nil && o.ExclusionPoints == nil &&
		o.MinimumCount == nil && o.PointsPerUnit == nil &&
		o.UnitCap == nil && o.MaxPoints == nil && o.RequiredScore == nil
}

// ScoringOverride maps rooms to per-rule partial overrides.
type ScoringOverride map[Room]map[string]RuleOverride

// ClientSettings holds one client's overrides of the global defaults.
// A nil ThresholdsOverride or empty ScoringOverride axis means the
// client inherits global for that axis. Version guards concurrent
// saves: Save is a compare-and-swap on it.
type ClientSettings struct {
	ClientID           string          `json:"client_id" db:"client_id"`
	ThresholdsOverride *RoomThresholds `json:"thresholds_override,omitempty" db:"thresholds_override"`
	ScoringOverride    ScoringOverride `json:"scoring_override,omitempty" db:"scoring_override"`
	Version            int             `json:"version" db:"version"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// HasThresholdsOverride reports whether the thresholds axis is overridden.
func (cs *ClientSettings) HasThresholdsOverride() bool {
	return cs != nil && cs.ThresholdsOverride != nil
}

// HasScoringOverride reports whether the given room has any non-empty
// rule override.
func (cs *ClientSettings) HasScoringOverride(room Room) bool {
	if cs == nil {
		return false
	}
	for _, o := range cs.ScoringOverride[room] {
		if !o.IsZero() {
			return true
		}
	}
	return false
}

// HasAnyOverride reports whether any axis is overridden. Campaign-level
// provenance is OR-based: one override anywhere flips it to client.
func (cs *ClientSettings) HasAnyOverride() bool {
	if cs == nil {
		return false
	}
	if cs.HasThresholdsOverride() {
		return true
	}
	for room := range cs.ScoringOverride {
		if cs.HasScoringOverride(room) {
			return true
		}
	}
	return false
}

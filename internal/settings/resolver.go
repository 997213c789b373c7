package settings

import (
	"context"
	"fmt"

	"github.com/ignite/leadroom/internal/domain"
	"github.com/ignite/leadroom/internal/pkg/logger"
)

// Resolver merges client overrides with global defaults and reports
// provenance per axis.
type Resolver struct {
	clients ClientStore
	globals GlobalConfigStore
}

// NewResolver creates a resolver over the given stores.
func NewResolver(clients ClientStore, globals GlobalConfigStore) *Resolver {
	return &Resolver{clients: clients, globals: globals}
}

// ResolvedSettings is the combined effective view for one client.
// Source is the campaign-level provenance: "client" when any axis has
// any override, "global" only when every axis is fully global.
type ResolvedSettings struct {
	ClientID         string                                `json:"client_id"`
	Thresholds       domain.RoomThresholds                 `json:"thresholds"`
	ThresholdsSource domain.SettingsSource                 `json:"thresholds_source"`
	Rules            domain.RulesByRoom                    `json:"rules"`
	RuleSources      map[domain.Room]domain.SettingsSource `json:"rule_sources"`
	Source           domain.SettingsSource                 `json:"source"`
}

// ResolveThresholds returns the effective thresholds for a client. The
// thresholds axis is a whole-object override: a client either inherits
// the full global set or replaces it entirely.
func (r *Resolver) ResolveThresholds(ctx context.Context, clientID string) (domain.RoomThresholds, domain.SettingsSource, error) {
	override, err := r.clients.GetOverride(ctx, clientID)
	if err != nil {
		return domain.RoomThresholds{}, "", fmt.Errorf("get client override: %w", err)
	}
	if override.HasThresholdsOverride() {
		return *override.ThresholdsOverride, domain.SourceClient, nil
	}
	global, err := r.globals.GetThresholds(ctx)
	if err != nil {
		return domain.RoomThresholds{}, "", fmt.Errorf("get global thresholds: %w", err)
	}
	return global, domain.SourceGlobal, nil
}

// ResolveScoringRules returns the effective rule sets for a client with
// per-room provenance. Rule overrides merge per-field: each rule starts
// from the current global definition and only fields the client
// explicitly set are overlaid, so a global edit to an untouched field
// is never lost.
func (r *Resolver) ResolveScoringRules(ctx context.Context, clientID string) (domain.RulesByRoom, map[domain.Room]domain.SettingsSource, error) {
	global, err := r.globals.GetScoringRules(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("get global rules: %w", err)
	}
	override, err := r.clients.GetOverride(ctx, clientID)
	if err != nil {
		return nil, nil, fmt.Errorf("get client override: %w", err)
	}

	rules := global.Clone()
	sources := make(map[domain.Room]domain.SettingsSource, len(rules))
	for room := range rules {
		sources[room] = domain.SourceGlobal
	}

	if override == nil {
		return rules, sources, nil
	}

	for room, perRule := range override.ScoringOverride {
		roomRules, ok := rules[room]
		if !ok {
			continue
		}
		overridden := false
		for key, o := range perRule {
			if o.IsZero() {
				continue
			}
			base, ok := roomRules[key]
			if !ok {
				// Stale override for a retired global rule; ignore.
				logger.Warn("ignoring override for unknown rule",
					"client_id", clientID, "room", string(room), "rule", key)
				continue
			}
			roomRules[key] = applyOverride(base, o)
			overridden = true
		}
		if overridden {
			sources[room] = domain.SourceClient
		}
	}

	return rules, sources, nil
}

// ResolveSettings returns the combined effective view for one client.
func (r *Resolver) ResolveSettings(ctx context.Context, clientID string) (*ResolvedSettings, error) {
	thresholds, thSource, err := r.ResolveThresholds(ctx, clientID)
	if err != nil {
		return nil, err
	}
	rules, ruleSources, err := r.ResolveScoringRules(ctx, clientID)
	if err != nil {
		return nil, err
	}

	out := &ResolvedSettings{
		ClientID:         clientID,
		Thresholds:       thresholds,
		ThresholdsSource: thSource,
		Rules:            rules,
		RuleSources:      ruleSources,
		Source:           domain.SourceGlobal,
	}
	// Any single override flips campaign-level provenance to client.
	if thSource == domain.SourceClient {
		out.Source = domain.SourceClient
	}
	for _, src := range ruleSources {
		if src == domain.SourceClient {
			out.Source = domain.SourceClient
		}
	}
	return out, nil
}

// applyOverride overlays the fields a client explicitly set onto a copy
// of the global rule. Fields that don't apply to the rule's variant are
// ignored here; SaveOverride rejects them up front.
func applyOverride(rule domain.ScoringRule, o domain.RuleOverride) domain.ScoringRule {
	switch r := domain.CloneRule(rule).(type) {
	case domain.PresenceRule:
		applyCore(&r.RuleCore, o)
		if o.MinimumCount != nil {
			r.MinimumCount = *o.MinimumCount
		}
		if o.PointsPerUnit != nil {
			r.PointsPerUnit = *o.PointsPerUnit
		}
		if o.UnitCap != nil {
			r.UnitCap = *o.UnitCap
		}
		if o.MaxPoints != nil {
			r.MaxPoints = *o.MaxPoints
		}
		return r
	case domain.ValueMatchRule:
		applyCore(&r.RuleCore, o)
		if o.Values != nil {
			r.Values = append([]string(nil), (*o.Values)...)
		}
		return r
	case domain.ExclusionRule:
		applyCore(&r.RuleCore, o)
		if o.Values != nil {
			r.Values = append([]string(nil), (*o.Values)...)
		}
		if o.ExcludedValues != nil {
			r.ExcludedValues = append([]string(nil), (*o.ExcludedValues)...)
		}
		if o.ExclusionPoints != nil {
			r.ExclusionPoints = *o.ExclusionPoints
		}
		return r
	case domain.GatingRule:
		applyCore(&r.RuleCore, o)
		if o.RequiredScore != nil {
			r.RequiredScore = *o.RequiredScore
		}
		return r
	default:
		return rule
	}
}

func applyCore(core *domain.RuleCore, o domain.RuleOverride) {
	if o.Enabled != nil {
		core.Enabled = *o.Enabled
	}
	if o.Points != nil {
		core.Points = *o.Points
	}
}

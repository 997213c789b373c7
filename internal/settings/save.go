package settings

import (
	"context"
	"fmt"

	"github.com/ignite/leadroom/internal/domain"
	"github.com/ignite/leadroom/internal/pkg/logger"
)

// SaveOverride validates and persists a client override. Validation
// runs entirely before the write: a rejected override is never
// partially applied. Save is a compare-and-swap on cs.Version; callers
// receive domain.ErrVersionConflict when another save won the race.
func (r *Resolver) SaveOverride(ctx context.Context, cs *domain.ClientSettings) error {
	if cs == nil || cs.ClientID == "" {
		return fmt.Errorf("%w: client id is required", domain.ErrValidation)
	}

	if cs.ThresholdsOverride != nil {
		if err := cs.ThresholdsOverride.Validate(); err != nil {
			return err
		}
		if cs.ThresholdsOverride.HasDeadZone() {
			// Legal but suspicious: the gap classifies as solution.
			logger.Warn("threshold override has a gap between solution_max and offer_min",
				"client_id", cs.ClientID,
				"solution_max", cs.ThresholdsOverride.SolutionMax,
				"offer_min", cs.ThresholdsOverride.OfferMin,
			)
		}
	}

	if len(cs.ScoringOverride) > 0 {
		global, err := r.globals.GetScoringRules(ctx)
		if err != nil {
			return fmt.Errorf("get global rules: %w", err)
		}
		for room, perRule := range cs.ScoringOverride {
			if !room.Valid() {
				return fmt.Errorf("%w: unknown room %q", domain.ErrValidation, room)
			}
			for key, o := range perRule {
				base, ok := global[room][key]
				if !ok {
					return fmt.Errorf("%w: room %s has no rule %q", domain.ErrValidation, room, key)
				}
				if err := validateOverrideFields(base, o); err != nil {
					return err
				}
			}
		}
	}

	if err := r.clients.Save(ctx, cs); err != nil {
		return err
	}
	logger.Info("client override saved", "client_id", cs.ClientID, "version", cs.Version)
	return nil
}

// DeleteOverride removes a client's override entirely, reverting the
// client to global defaults. No partial-reset state exists: the next
// resolve sees exactly the global rule set.
func (r *Resolver) DeleteOverride(ctx context.Context, clientID string) error {
	if clientID == "" {
		return fmt.Errorf("%w: client id is required", domain.ErrValidation)
	}
	if err := r.clients.Delete(ctx, clientID); err != nil {
		return err
	}
	logger.Info("client override deleted", "client_id", clientID)
	return nil
}

// validateOverrideFields rejects override fields that don't apply to
// the global rule's variant, plus variant-specific bounds.
func validateOverrideFields(base domain.ScoringRule, o domain.RuleOverride) error {
	key := base.RuleKey()
	switch base.Kind() {
	case domain.KindPresence:
		if o.Values != nil || o.ExcludedValues != nil || o.ExclusionPoints != nil || o.RequiredScore != nil {
			return fmt.Errorf("%w: rule %s: override fields not valid for a presence rule", domain.ErrValidation, key)
		}
	case domain.KindValueMatch:
		if o.ExcludedValues != nil || o.ExclusionPoints != nil || o.RequiredScore != nil ||
			o.MinimumCount != nil || o.PointsPerUnit != nil || o.UnitCap != nil || o.MaxPoints != nil {
			return fmt.Errorf("%w: rule %s: override fields not valid for a value-match rule", domain.ErrValidation, key)
		}
	case domain.KindExclusion:
		if o.RequiredScore != nil || o.MinimumCount != nil || o.PointsPerUnit != nil || o.UnitCap != nil || o.MaxPoints != nil {
			return fmt.Errorf("%w: rule %s: override fields not valid for an exclusion rule", domain.ErrValidation, key)
		}
		if o.ExclusionPoints != nil && *o.ExclusionPoints > 0 {
			return fmt.Errorf("%w: rule %s: exclusion_points must be <= 0", domain.ErrValidation, key)
		}
	case domain.KindGating:
		if o.Values != nil || o.ExcludedValues != nil || o.ExclusionPoints != nil ||
			o.MinimumCount != nil || o.PointsPerUnit != nil || o.UnitCap != nil || o.MaxPoints != nil {
			return fmt.Errorf("%w: rule %s: override fields not valid for a gating rule", domain.ErrValidation, key)
		}
		if o.RequiredScore != nil && *o.RequiredScore < 0 {
			return fmt.Errorf("%w: rule %s: required_score must be >= 0", domain.ErrValidation, key)
		}
	}
	return nil
}

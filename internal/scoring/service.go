package scoring

import (
	"context"
	"fmt"

	"github.com/ignite/leadroom/internal/domain"
	"github.com/ignite/leadroom/internal/pkg/logger"
)

// SettingsResolver is the slice of the settings service the engine
// needs: effective thresholds and rules for a client.
type SettingsResolver interface {
	ResolveThresholds(ctx context.Context, clientID string) (domain.RoomThresholds, domain.SettingsSource, error)
	ResolveScoringRules(ctx context.Context, clientID string) (domain.RulesByRoom, map[domain.Room]domain.SettingsSource, error)
}

// Service scores prospects using a client's effective settings.
type Service struct {
	resolver SettingsResolver
}

// NewService creates a scoring service backed by the given resolver.
func NewService(resolver SettingsResolver) *Service {
	return &Service{resolver: resolver}
}

// ProspectScore is the full outcome of scoring one prospect: the rule
// evaluation result plus the room the total classifies into.
type ProspectScore struct {
	Result
	Room             domain.Room           `json:"room"`
	ThresholdsSource domain.SettingsSource `json:"thresholds_source"`
	RulesSource      domain.SettingsSource `json:"rules_source"`
}

// ScoreProspect resolves the client's effective settings, evaluates the
// given room's rules against the prospect attributes, and classifies
// the total score.
func (s *Service) ScoreProspect(ctx context.Context, clientID string, room domain.Room, attrs domain.ProspectAttributes) (*ProspectScore, error) {
	if !room.Valid() {
		return nil, fmt.Errorf("%w: unknown room %q", domain.ErrValidation, room)
	}

	thresholds, thSource, err := s.resolver.ResolveThresholds(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("resolve thresholds: %w", err)
	}
	rules, ruleSources, err := s.resolver.ResolveScoringRules(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("resolve scoring rules: %w", err)
	}

	res := Score(attrs, rules[room])
	ps := &ProspectScore{
		Result:           res,
		Room:             thresholds.Classify(res.TotalPoints),
		ThresholdsSource: thSource,
		RulesSource:      ruleSources[room],
	}

	logger.Debug("prospect scored",
		"client_id", clientID,
		"room", string(room),
		"total_points", res.TotalPoints,
		"classified_room", string(ps.Room),
		"disqualified", res.Disqualified,
	)
	return ps, nil
}

package settings

import (
	"context"

	"github.com/ignite/leadroom/internal/domain"
)

// ClientStore is the data access contract for client overrides.
// Implementations must be safe for concurrent use.
type ClientStore interface {
	// GetOverride returns the client's override, or nil if the client
	// has none. A missing override is not an error.
	GetOverride(ctx context.Context, clientID string) (*domain.ClientSettings, error)

	// Save persists an override. It is a compare-and-swap on
	// settings.Version: domain.ErrVersionConflict is returned when the
	// stored version no longer matches, and the stored version is
	// incremented on success (reflected in the passed struct).
	Save(ctx context.Context, settings *domain.ClientSettings) error

	// Put writes the override exactly as given, version included, with
	// no compare-and-swap. It exists for cache-tier flushes where the
	// version check already happened; application code saves through
	// Save.
	Put(ctx context.Context, settings *domain.ClientSettings) error

	// Delete removes the client's override entirely. Deleting a client
	// with no override is a no-op.
	Delete(ctx context.Context, clientID string) error
}

// GlobalConfigStore is the data access contract for global defaults.
// Implementations must be safe for concurrent use.
type GlobalConfigStore interface {
	GetThresholds(ctx context.Context) (domain.RoomThresholds, error)
	GetScoringRules(ctx context.Context) (domain.RulesByRoom, error)
}

package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ignite/leadroom/internal/domain"
)

// MemoryClientStore is an in-memory ClientStore for tests and local
// development.
type MemoryClientStore struct {
	mu        sync.Mutex
	overrides map[string]*domain.ClientSettings
}

// NewMemoryClientStore creates an empty in-memory client store.
func NewMemoryClientStore() *MemoryClientStore {
	return &MemoryClientStore{overrides: make(map[string]*domain.ClientSettings)}
}

// GetOverride implements ClientStore. Returns a deep copy so callers
// can't mutate the stored state.
func (m *MemoryClientStore) GetOverride(_ context.Context, clientID string) (*domain.ClientSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.overrides[clientID]
	if !ok {
		return nil, nil
	}
	return cloneSettings(cs), nil
}

// Save implements ClientStore with compare-and-swap semantics on
// Version.
func (m *MemoryClientStore) Save(_ context.Context, cs *domain.ClientSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.overrides[cs.ClientID]; ok && existing.Version != cs.Version {
		return fmt.Errorf("%w: have %d, want %d", domain.ErrVersionConflict, existing.Version, cs.Version)
	}
	cs.Version++
	cs.UpdatedAt = time.Now().UTC()
	m.overrides[cs.ClientID] = cloneSettings(cs)
	return nil
}

// Put implements ClientStore.
func (m *MemoryClientStore) Put(_ context.Context, cs *domain.ClientSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[cs.ClientID] = cloneSettings(cs)
	return nil
}

// Delete implements ClientStore.
func (m *MemoryClientStore) Delete(_ context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.overrides, clientID)
	return nil
}

// cloneSettings deep-copies via the JSON round trip; override structs
// are small and this keeps the copy honest as fields are added.
func cloneSettings(cs *domain.ClientSettings) *domain.ClientSettings {
	data, err := json.Marshal(cs)
	if err != nil {
		cp := *cs
		return &cp
	}
	var out domain.ClientSettings
	if err := json.Unmarshal(data, &out); err != nil {
		cp := *cs
		return &cp
	}
	return &out
}

// MemoryGlobalStore is an in-memory GlobalConfigStore seeded with a
// thresholds set and rule catalog.
type MemoryGlobalStore struct {
	mu         sync.RWMutex
	thresholds domain.RoomThresholds
	rules      domain.RulesByRoom
}

// NewMemoryGlobalStore creates a global store with the given defaults.
func NewMemoryGlobalStore(thresholds domain.RoomThresholds, rules domain.RulesByRoom) *MemoryGlobalStore {
	return &MemoryGlobalStore{thresholds: thresholds, rules: rules}
}

// GetThresholds implements GlobalConfigStore.
func (m *MemoryGlobalStore) GetThresholds(_ context.Context) (domain.RoomThresholds, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.thresholds, nil
}

// GetScoringRules implements GlobalConfigStore.
func (m *MemoryGlobalStore) GetScoringRules(_ context.Context) (domain.RulesByRoom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rules.Clone(), nil
}

// SetThresholds swaps the global thresholds (admin path).
func (m *MemoryGlobalStore) SetThresholds(t domain.RoomThresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.thresholds = t
	m.mu.Unlock()
	return nil
}

// SetScoringRules swaps the global rule catalog (admin path).
func (m *MemoryGlobalStore) SetScoringRules(rules domain.RulesByRoom) error {
	if err := rules.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.rules = rules.Clone()
	m.mu.Unlock()
	return nil
}

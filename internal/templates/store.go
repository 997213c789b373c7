package templates

import (
	"context"
	"sync"

	"github.com/ignite/leadroom/internal/domain"
)

// Store is the data access contract for templates. Implementations
// must be safe for concurrent use.
type Store interface {
	// ListByCampaign returns the campaign-scoped templates for a room.
	ListByCampaign(ctx context.Context, campaignID int64, room domain.Room) ([]domain.Template, error)

	// ListGlobal returns the globally-scoped templates for a room.
	ListGlobal(ctx context.Context, room domain.Room) ([]domain.Template, error)
}

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu        sync.RWMutex
	templates []domain.Template
}

// NewMemoryStore creates a memory store seeded with the given templates.
func NewMemoryStore(tmpls ...domain.Template) *MemoryStore {
	return &MemoryStore{templates: tmpls}
}

// Add appends a template.
func (m *MemoryStore) Add(t domain.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.templates = append(m.templates, t)
	m.mu.Unlock()
	return nil
}

// ListByCampaign implements Store.
func (m *MemoryStore) ListByCampaign(_ context.Context, campaignID int64, room domain.Room) ([]domain.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Template
	for _, t := range m.templates {
		if t.CampaignID == campaignID && t.Room == room {
			out = append(out, t)
		}
	}
	return out, nil
}

// ListGlobal implements Store.
func (m *MemoryStore) ListGlobal(_ context.Context, room domain.Room) ([]domain.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Template
	for _, t := range m.templates {
		if t.IsGlobal() && t.Room == room {
			out = append(out, t)
		}
	}
	return out, nil
}

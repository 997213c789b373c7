package tracking

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ignite/leadroom/internal/domain"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu        sync.RWMutex
	records   map[uuid.UUID]*domain.EmailTrackingRecord
	byToken   map[string]uuid.UUID
	prospects ProspectStore
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]*domain.EmailTrackingRecord),
		byToken: make(map[string]uuid.UUID),
	}
}

func (m *MemoryStore) CreateRecord(ctx context.Context, rec *domain.EmailTrackingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.records[rec.ID] = &cp
	if rec.TrackingToken != "" {
		m.byToken[rec.TrackingToken] = rec.ID
	}
	return nil
}

func (m *MemoryStore) GetRecord(ctx context.Context, id uuid.UUID) (*domain.EmailTrackingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: tracking record %s", domain.ErrNotFound, id)
	}
	cp := *rec
	return &cp, nil
}

func (m *MemoryStore) GetRecordByToken(ctx context.Context, token string) (*domain.EmailTrackingRecord, error) {
	m.mu.RLock()
	id, ok := m.byToken[token]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: tracking token", domain.ErrNotFound)
	}
	return m.GetRecord(ctx, id)
}

func (m *MemoryStore) UpdateRecord(ctx context.Context, rec *domain.EmailTrackingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; !ok {
		return fmt.Errorf("%w: tracking record %s", domain.ErrNotFound, rec.ID)
	}
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

// ApplyCopy needs a prospect store to commit against; wire one with
// SetProspects before use.
func (m *MemoryStore) ApplyCopy(ctx context.Context, rec *domain.EmailTrackingRecord, p *domain.Prospect) error {
	if err := m.UpdateRecord(ctx, rec); err != nil {
		return err
	}
	if m.prospects != nil {
		return m.prospects.UpdateProspect(ctx, p)
	}
	return nil
}

// SetProspects wires the prospect store ApplyCopy commits against.
// Without it ApplyCopy is a record-only update.
func (m *MemoryStore) SetProspects(ps ProspectStore) { m.prospects = ps }

var _ Store = (*MemoryStore)(nil)

// MemoryProspectStore is an in-memory ProspectStore.
type MemoryProspectStore struct {
	mu        sync.RWMutex
	prospects map[string]*domain.Prospect
}

// NewMemoryProspectStore creates an empty in-memory prospect store.
func NewMemoryProspectStore() *MemoryProspectStore {
	return &MemoryProspectStore{prospects: make(map[string]*domain.Prospect)}
}

// Add seeds a prospect.
func (m *MemoryProspectStore) Add(p *domain.Prospect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := cloneProspect(p)
	m.prospects[p.ID] = cp
}

func (m *MemoryProspectStore) GetProspect(ctx context.Context, prospectID string) (*domain.Prospect, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prospects[prospectID]
	if !ok {
		return nil, fmt.Errorf("%w: prospect %s", domain.ErrNotFound, prospectID)
	}
	return cloneProspect(p), nil
}

func (m *MemoryProspectStore) UpdateProspect(ctx context.Context, p *domain.Prospect) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.prospects[p.ID]; !ok {
		return fmt.Errorf("%w: prospect %s", domain.ErrNotFound, p.ID)
	}
	m.prospects[p.ID] = cloneProspect(p)
	return nil
}

var _ ProspectStore = (*MemoryProspectStore)(nil)

func cloneProspect(p *domain.Prospect) *domain.Prospect {
	cp := *p
	cp.SentURLs = append([]string(nil), p.SentURLs...)
	if p.Attributes.Counts != nil {
		cp.Attributes.Counts = make(map[string]int, len(p.Attributes.Counts))
		for k, v := range p.Attributes.Counts {
			cp.Attributes.Counts[k] = v
		}
	}
	if p.Attributes.Flags != nil {
		cp.Attributes.Flags = make(map[string]bool, len(p.Attributes.Flags))
		for k, v := range p.Attributes.Flags {
			cp.Attributes.Flags[k] = v
		}
	}
	if p.Attributes.Traits != nil {
		cp.Attributes.Traits = make(map[string]string, len(p.Attributes.Traits))
		for k, v := range p.Attributes.Traits {
			cp.Attributes.Traits[k] = v
		}
	}
	return &cp
}
